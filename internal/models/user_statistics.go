package models

import (
	"time"

	"github.com/google/uuid"
)

// UserStatistics is the per-user gamification aggregate, one row per user,
// created lazily on the first rewarded action. All increments go through a
// single atomic ON CONFLICT upsert so concurrent writers cannot lose updates.
type UserStatistics struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	ReportsCount   int       `gorm:"default:0" json:"reports"`
	Points         int       `gorm:"default:0" json:"points"`
	SearchesCount  int       `gorm:"default:0" json:"searches"`
	FavoritesCount int       `gorm:"default:0" json:"favorites"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	User           User      `gorm:"foreignKey:UserID" json:"-"`
}
