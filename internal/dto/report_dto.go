package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ReportSpotRequest struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Address      string         `json:"address"`
	Lat          *float64       `json:"latitude"`
	Lng          *float64       `json:"longitude"`
	Category     string         `json:"type"`
	Restrictions datatypes.JSON `json:"restrictions"`
	Photo        string         `json:"photo"`
}

type ReportSpotResponse struct {
	Message   string    `json:"message"`
	ParkingID uuid.UUID `json:"parkingId"`
	Points    int       `json:"points"`
}

type RateSpotRequest struct {
	RatingType string `json:"rating_type"`
	Comment    string `json:"comment"`
}

type RateSpotResponse struct {
	Message    string `json:"message"`
	RatingType string `json:"rating_type"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

// ApprovedSpot is one entry of the public reported-parking listing: the spot
// plus its reporter's display name and the derived trust aggregates.
type ApprovedSpot struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"user_id"`
	ReporterName    string         `json:"reporter_name"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Address         string         `json:"address"`
	Lat             float64        `json:"lat"`
	Lng             float64        `json:"lng"`
	Category        string         `json:"category"`
	Restrictions    datatypes.JSON `json:"restrictions"`
	Photo           string         `json:"photo,omitempty"`
	RatingCount     int            `json:"rating_count"`
	TrustScore      float64        `json:"trust_score"`
	LastConfirmedAt *time.Time     `json:"last_confirmed_at"`
	CreatedAt       time.Time      `json:"created_at"`
}
