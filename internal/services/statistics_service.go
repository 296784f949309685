package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/martensmichael89-pixel/parking4free/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInvalidStatField = errors.New("invalid statistics field")

// StatisticsDelta is a set of counter increments applied in one upsert.
type StatisticsDelta struct {
	Reports   int
	Points    int
	Searches  int
	Favorites int
}

// IncrementStatistics applies the delta to the user's statistics row as a
// single atomic ON CONFLICT upsert, creating the row when absent. The
// increment is evaluated by the database, not read-modify-write in Go, so
// concurrent reports from the same user (multi-device, retried submissions)
// cannot lose updates.
func IncrementStatistics(db *gorm.DB, userID uuid.UUID, delta StatisticsDelta) error {
	stats := models.UserStatistics{
		ID:             uuid.New(),
		UserID:         userID,
		ReportsCount:   delta.Reports,
		Points:         delta.Points,
		SearchesCount:  delta.Searches,
		FavoritesCount: delta.Favorites,
	}

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"reports_count":   gorm.Expr("user_statistics.reports_count + EXCLUDED.reports_count"),
			"points":          gorm.Expr("user_statistics.points + EXCLUDED.points"),
			"searches_count":  gorm.Expr("user_statistics.searches_count + EXCLUDED.searches_count"),
			"favorites_count": gorm.Expr("user_statistics.favorites_count + EXCLUDED.favorites_count"),
			"updated_at":      time.Now(),
		}),
	}).Create(&stats).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user statistics: %w", err)
	}
	return nil
}

// StatisticsService reads and adjusts per-user counters.
type StatisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) *StatisticsService {
	return &StatisticsService{db: db}
}

// Get returns the user's statistics row, or a zeroed one when the user has
// not earned anything yet (the row is only created on the first award).
func (s *StatisticsService) Get(userID uuid.UUID) (*models.UserStatistics, error) {
	var stats models.UserStatistics
	if err := s.db.Where("user_id = ?", userID).First(&stats).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &models.UserStatistics{UserID: userID}, nil
		}
		return nil, err
	}
	return &stats, nil
}

// Increment bumps a single named counter, used by the client to track
// searches and favorites.
func (s *StatisticsService) Increment(userID uuid.UUID, field string, amount int) error {
	if amount <= 0 {
		amount = 1
	}

	var delta StatisticsDelta
	switch field {
	case "reports":
		delta.Reports = amount
	case "points":
		delta.Points = amount
	case "searches":
		delta.Searches = amount
	case "favorites":
		delta.Favorites = amount
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatField, field)
	}

	return IncrementStatistics(s.db, userID, delta)
}
