package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating types a user can submit on a reported spot.
const (
	RatingConfirm       = "confirm"
	RatingUnavailable   = "unavailable"
	RatingReportProblem = "report-problem"
)

// ValidRatingTypes lists the accepted values for Rating.RatingType.
var ValidRatingTypes = []string{RatingConfirm, RatingUnavailable, RatingReportProblem}

// Rating is one user's current vote on a reported spot. The composite unique
// index enforces at most one row per (spot, user); resubmitting replaces the
// stored type and comment in place.
type Rating struct {
	ID         uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SpotID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_spot_user" json:"spot_id"`
	UserID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_spot_user" json:"user_id"`
	RatingType string       `gorm:"not null;size:20" json:"rating_type"`
	Comment    string       `gorm:"size:500" json:"comment"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	Spot       ReportedSpot `gorm:"foreignKey:SpotID" json:"-"`
}

func (Rating) TableName() string { return "parking_ratings" }

// TrustValue maps a rating type to its confidence contribution.
func TrustValue(ratingType string) float64 {
	switch ratingType {
	case RatingConfirm:
		return 1.0
	case RatingReportProblem:
		return 0.5
	default:
		return 0.0
	}
}
