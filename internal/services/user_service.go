package services

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/martensmichael89-pixel/parking4free/internal/dto"
	"github.com/martensmichael89-pixel/parking4free/internal/models"
	"gorm.io/gorm"
)

var (
	ErrInvalidRole      = errors.New("invalid role: must be user or admin")
	ErrCannotDeleteSelf = errors.New("admins cannot delete their own account")
)

var validRoles = []string{"user", "admin"}

// UserService covers profile reads and updates plus the admin-side user
// management and dashboard.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes the user's name and/or email. A new email must not
// collide with another account.
func (s *UserService) UpdateProfile(userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != user.Email {
		if !emailPattern.MatchString(email) {
			return nil, errors.New("invalid email format")
		}
		var count int64
		s.db.Model(&models.User{}).Where("email = ? AND id <> ?", email, userID).Count(&count)
		if count > 0 {
			return nil, ErrEmailTaken
		}
		user.Email = email
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// Dashboard returns the admin overview counters in a single pass.
func (s *UserService) Dashboard() (*dto.DashboardResponse, error) {
	var resp dto.DashboardResponse
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&resp.Users, s.db.Model(&models.User{})},
		{&resp.ParkingSpots, s.db.Model(&models.ParkingSpot{})},
		{&resp.ReportedSpots, s.db.Model(&models.ReportedSpot{})},
		{&resp.PendingSpots, s.db.Model(&models.ReportedSpot{}).Where("status = ?", models.StatusPending)},
		{&resp.ApprovedSpots, s.db.Model(&models.ReportedSpot{}).Where("status = ?", models.StatusApproved)},
		{&resp.RejectedSpots, s.db.Model(&models.ReportedSpot{}).Where("status = ?", models.StatusRejected)},
		{&resp.Ratings, s.db.Model(&models.Rating{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to load dashboard counts: %w", err)
		}
	}
	return &resp, nil
}

// ListUsers returns a paginated user listing for the admin panel, optionally
// filtered by a name or email substring.
func (s *UserService) ListUsers(page, limit int, search string) ([]models.User, dto.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&models.User{})
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, dto.Pagination{}, err
	}

	users := make([]models.User, 0)
	err := query.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&users).Error
	if err != nil {
		return nil, dto.Pagination{}, err
	}

	pagination := dto.Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}
	return users, pagination, nil
}

func (s *UserService) ChangeRole(userID uuid.UUID, role string) (*models.User, error) {
	if !containsString(validRoles, role) {
		return nil, ErrInvalidRole
	}
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.db.Model(user).Update("role", role).Error; err != nil {
		return nil, fmt.Errorf("failed to change role: %w", err)
	}
	return user, nil
}

// DeleteUser removes an account and everything it owns. Admins may not
// delete themselves through this path.
func (s *UserService) DeleteUser(targetID, adminID uuid.UUID) error {
	if targetID == adminID {
		return ErrCannotDeleteSelf
	}
	var user models.User
	if err := s.db.First(&user, "id = ?", targetID).Error; err != nil {
		return ErrUserNotFound
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		tx.Where("user_id = ?", targetID).Delete(&models.RefreshToken{})
		tx.Where("user_id = ?", targetID).Delete(&models.Favorite{})
		tx.Where("user_id = ?", targetID).Delete(&models.UserStatistics{})

		var spotIDs []uuid.UUID
		tx.Model(&models.ReportedSpot{}).Where("user_id = ?", targetID).Pluck("id", &spotIDs)
		if len(spotIDs) > 0 {
			tx.Where("spot_id IN ?", spotIDs).Delete(&models.Rating{})
			tx.Where("user_id = ?", targetID).Delete(&models.ReportedSpot{})
		}

		// Spots by other reporters lose this user's ratings, so their
		// aggregates must be re-derived from what remains.
		var ratedSpotIDs []uuid.UUID
		tx.Model(&models.Rating{}).Where("user_id = ?", targetID).Distinct("spot_id").Pluck("spot_id", &ratedSpotIDs)
		tx.Where("user_id = ?", targetID).Delete(&models.Rating{})
		if err := refreshSpotAggregates(tx, ratedSpotIDs); err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})
}

// ListLogs returns persisted error logs for the admin console, newest first,
// optionally filtered by level.
func (s *UserService) ListLogs(level string, limit, offset int) ([]models.SystemLog, int64, error) {
	query := s.db.Model(&models.SystemLog{})
	if level != "" {
		query = query.Where("level = ?", strings.ToUpper(level))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	logs := make([]models.SystemLog, 0)
	err := query.Order("timestamp DESC").Limit(limit).Offset(offset).Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// ListReportedSpots returns the admin view over all reported spots, paginated
// and optionally filtered by status.
func (s *UserService) ListReportedSpots(page, limit int, status string) ([]models.ReportedSpot, dto.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if status != "" && !containsString(models.ValidStatuses, status) {
		return nil, dto.Pagination{}, ErrInvalidStatus
	}

	query := s.db.Model(&models.ReportedSpot{}).Preload("Reporter")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, dto.Pagination{}, err
	}

	spots := make([]models.ReportedSpot, 0)
	err := query.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&spots).Error
	if err != nil {
		return nil, dto.Pagination{}, err
	}

	pagination := dto.Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}
	return spots, pagination, nil
}
