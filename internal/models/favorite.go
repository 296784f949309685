package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite bookmarks a curated parking spot for a user.
type Favorite struct {
	ID            uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_spot" json:"user_id"`
	ParkingSpotID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_spot" json:"parking_spot_id"`
	CreatedAt     time.Time   `json:"created_at"`
	Spot          ParkingSpot `gorm:"foreignKey:ParkingSpotID" json:"-"`
}

func (Favorite) TableName() string { return "user_favorites" }
