package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Moderation states for a reported spot.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Categories a reporter can assign to a spot.
const (
	CategoryPermanentlyFree = "permanently-free"
	CategoryTimeLimited     = "time-limited"
	CategoryDiscRequired    = "disc-required"
	CategoryLiftedPartial   = "restriction-lifted-partial"
	CategoryLiftedAbsolute  = "restriction-lifted-absolute"
)

// ValidCategories lists the accepted values for ReportedSpot.Category.
var ValidCategories = []string{
	CategoryPermanentlyFree,
	CategoryTimeLimited,
	CategoryDiscRequired,
	CategoryLiftedPartial,
	CategoryLiftedAbsolute,
}

// ValidStatuses lists the accepted moderation states.
var ValidStatuses = []string{StatusPending, StatusApproved, StatusRejected}

// ReportedSpot is a user-submitted parking location. It starts in "pending"
// and becomes publicly visible once an admin approves it.
//
// RatingCount and TrustScore are derived from the spot's parking_ratings rows
// and are recomputed in full on every rating write, never incrementally.
// TrustScore is the mean of the per-rating confidence values in [0,1]; a spot
// with no ratings reports 0, not null. LastConfirmedAt is a watermark that
// only advances, and only when a "confirm" rating is written.
type ReportedSpot struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name            string         `gorm:"not null;size:200" json:"name"`
	Description     string         `gorm:"size:1000" json:"description"`
	Address         string         `gorm:"not null;size:255" json:"address"`
	Lat             float64        `gorm:"not null" json:"lat"`
	Lng             float64        `gorm:"not null" json:"lng"`
	Category        string         `gorm:"not null;size:40" json:"category"`
	Restrictions    datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"restrictions"`
	Photo           string         `gorm:"size:500" json:"photo,omitempty"`
	Status          string         `gorm:"not null;default:'pending';size:20;index" json:"status"`
	RatingCount     int            `gorm:"default:0" json:"rating_count"`
	TrustScore      float64        `gorm:"default:0" json:"trust_score"`
	LastConfirmedAt *time.Time     `json:"last_confirmed_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	Reporter        User           `gorm:"foreignKey:UserID" json:"-"`
}

func (ReportedSpot) TableName() string { return "reported_parking_spots" }
