package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/martensmichael89-pixel/parking4free/internal/models"
	"gorm.io/gorm"
)

var ErrAlreadyFavorite = errors.New("spot is already in favorites")

// FavoriteService manages per-user bookmarks on curated parking spots.
type FavoriteService struct {
	db *gorm.DB
}

func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

// Add bookmarks a curated spot for the user. The (user, spot) pair is unique
// so a repeat add surfaces as ErrAlreadyFavorite instead of a second row.
func (s *FavoriteService) Add(userID, spotID uuid.UUID) (*models.Favorite, error) {
	var spot models.ParkingSpot
	if err := s.db.First(&spot, "id = ?", spotID).Error; err != nil {
		return nil, ErrSpotNotFound
	}

	var existing models.Favorite
	err := s.db.Where("user_id = ? AND parking_spot_id = ?", userID, spotID).First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyFavorite
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	favorite := models.Favorite{
		ID:            uuid.New(),
		UserID:        userID,
		ParkingSpotID: spotID,
	}
	if err := s.db.Create(&favorite).Error; err != nil {
		return nil, fmt.Errorf("failed to add favorite: %w", err)
	}

	if err := IncrementStatistics(s.db, userID, StatisticsDelta{Favorites: 1}); err != nil {
		slog.Error("failed to update favorite statistics",
			"error", err, "user_id", userID.String(), "action", "add_favorite")
	}

	return &favorite, nil
}

func (s *FavoriteService) Remove(userID, spotID uuid.UUID) error {
	result := s.db.Where("user_id = ? AND parking_spot_id = ?", userID, spotID).Delete(&models.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns the user's bookmarked spots, most recently added first.
func (s *FavoriteService) List(userID uuid.UUID) ([]models.ParkingSpot, error) {
	spots := make([]models.ParkingSpot, 0)
	err := s.db.Model(&models.ParkingSpot{}).
		Joins("JOIN user_favorites ON user_favorites.parking_spot_id = parking_spots.id").
		Where("user_favorites.user_id = ?", userID).
		Order("user_favorites.created_at DESC").
		Find(&spots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	return spots, nil
}
