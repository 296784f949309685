package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/martensmichael89-pixel/parking4free/internal/dto"
	"github.com/martensmichael89-pixel/parking4free/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSpotNotFound      = errors.New("parking spot not found")
	ErrInvalidRatingType = errors.New("invalid rating type")
	ErrInvalidCategory   = errors.New("invalid parking spot category")
	ErrNotOwner          = errors.New("not allowed to modify this parking spot")

	// ErrValidation marks rejected input. Handlers map it to 400; anything
	// else coming out of a write path is a storage failure and maps to 500.
	ErrValidation = errors.New("invalid request")
)

// PointsPerReport is the flat reward for reporting a spot. Ratings award
// nothing. Points are never clawed back, not even when a spot is rejected.
const PointsPerReport = 10

// ReportService owns the reported-spot event log: report creation, rating
// upserts, and the derived aggregates on spots and user statistics.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// RecordReport validates and stores a new reported spot (status pending) and
// credits the reporter. The statistics upsert is deliberately outside the
// spot's transaction: if it fails the report still stands, the miss is
// logged, and the caller responds 201 regardless.
func (s *ReportService) RecordReport(reporterID uuid.UUID, req *dto.ReportSpotRequest) (*models.ReportedSpot, error) {
	if req.Name == "" || req.Address == "" || req.Lat == nil || req.Lng == nil || req.Category == "" {
		return nil, fmt.Errorf("%w: name, address, coordinates and type are required", ErrValidation)
	}
	if *req.Lat < -90 || *req.Lat > 90 {
		return nil, fmt.Errorf("%w: latitude must be between -90 and 90", ErrValidation)
	}
	if *req.Lng < -180 || *req.Lng > 180 {
		return nil, fmt.Errorf("%w: longitude must be between -180 and 180", ErrValidation)
	}
	if !containsString(models.ValidCategories, req.Category) {
		return nil, ErrInvalidCategory
	}

	spot := models.ReportedSpot{
		ID:           uuid.New(),
		UserID:       reporterID,
		Name:         req.Name,
		Description:  req.Description,
		Address:      req.Address,
		Lat:          *req.Lat,
		Lng:          *req.Lng,
		Category:     req.Category,
		Restrictions: req.Restrictions,
		Photo:        req.Photo,
		Status:       models.StatusPending,
	}

	if err := s.db.Create(&spot).Error; err != nil {
		return nil, fmt.Errorf("failed to store reported spot: %w", err)
	}

	if err := IncrementStatistics(s.db, reporterID, StatisticsDelta{Reports: 1, Points: PointsPerReport}); err != nil {
		slog.Error("failed to update reporter statistics",
			"error", err, "user_id", reporterID.String(), "action", "record_report")
	}

	return &spot, nil
}

// RecordRating upserts the caller's rating on a spot and recomputes the
// spot's aggregates in the same transaction, so no reader can observe the
// rating without its aggregate.
//
// The (spot, user) pair is unique: resubmitting replaces type and comment in
// place, which makes retries idempotent and vote changes non-additive.
func (s *ReportService) RecordRating(userID, spotID uuid.UUID, ratingType, comment string) (*models.Rating, error) {
	if !containsString(models.ValidRatingTypes, ratingType) {
		return nil, ErrInvalidRatingType
	}

	rating := models.Rating{
		ID:         uuid.New(),
		SpotID:     spotID,
		UserID:     userID,
		RatingType: ratingType,
		Comment:    comment,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// The row lock serializes concurrent raters of the same spot so the
		// recompute below always sees every committed rating. Different
		// spots proceed independently.
		var spot models.ReportedSpot
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&spot, "id = ?", spotID).Error; err != nil {
			return ErrSpotNotFound
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "spot_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"rating_type": ratingType,
				"comment":     comment,
				"updated_at":  time.Now(),
			}),
		}).Create(&rating).Error; err != nil {
			return fmt.Errorf("failed to store rating: %w", err)
		}

		return s.recomputeSpotAggregate(tx, spotID, ratingType)
	})
	if err != nil {
		return nil, err
	}

	return &rating, nil
}

// recomputeSpotAggregate rebuilds rating_count and trust_score from the full
// rating set (never incrementally, so replays and reorders converge) and
// advances the last_confirmed_at watermark when the rating just written was a
// confirmation.
func (s *ReportService) recomputeSpotAggregate(tx *gorm.DB, spotID uuid.UUID, writtenType string) error {
	count, score, err := ratingAggregate(tx, spotID)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"rating_count": count,
		"trust_score":  score,
		"updated_at":   time.Now(),
	}
	if writtenType == models.RatingConfirm {
		updates["last_confirmed_at"] = time.Now()
	}

	return tx.Model(&models.ReportedSpot{}).Where("id = ?", spotID).Updates(updates).Error
}

// ratingAggregate folds a spot's current rating set through
// models.TrustValue. An empty set yields count 0 and score 0.
func ratingAggregate(tx *gorm.DB, spotID uuid.UUID) (int, float64, error) {
	var types []string
	if err := tx.Model(&models.Rating{}).Where("spot_id = ?", spotID).Pluck("rating_type", &types).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	if len(types) == 0 {
		return 0, 0, nil
	}

	var sum float64
	for _, t := range types {
		sum += models.TrustValue(t)
	}
	return len(types), sum / float64(len(types)), nil
}

// refreshSpotAggregates re-derives rating_count and trust_score for each
// spot after its rating set changed outside RecordRating, for example when
// a rater's account is deleted. The confirmation watermark stays put.
func refreshSpotAggregates(tx *gorm.DB, spotIDs []uuid.UUID) error {
	for _, spotID := range spotIDs {
		count, score, err := ratingAggregate(tx, spotID)
		if err != nil {
			return err
		}
		err = tx.Model(&models.ReportedSpot{}).Where("id = ?", spotID).Updates(map[string]interface{}{
			"rating_count": count,
			"trust_score":  score,
			"updated_at":   time.Now(),
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// GetSpot returns a reported spot by id.
func (s *ReportService) GetSpot(spotID uuid.UUID) (*models.ReportedSpot, error) {
	var spot models.ReportedSpot
	if err := s.db.First(&spot, "id = ?", spotID).Error; err != nil {
		return nil, ErrSpotNotFound
	}
	return &spot, nil
}

// DeleteSpot removes a reported spot and its ratings. Only the reporter or an
// admin may delete. Earned points stay with the reporter.
func (s *ReportService) DeleteSpot(spotID, userID uuid.UUID, isAdmin bool) error {
	var spot models.ReportedSpot
	if err := s.db.First(&spot, "id = ?", spotID).Error; err != nil {
		return ErrSpotNotFound
	}

	if !isAdmin && spot.UserID != userID {
		return ErrNotOwner
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("spot_id = ?", spotID).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		return tx.Delete(&spot).Error
	})
}

func containsString(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
