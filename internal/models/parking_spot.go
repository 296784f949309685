package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Curated parking spot types.
const (
	SpotTypeFree        = "free"
	SpotTypePaid        = "paid"
	SpotTypeTimeLimited = "time-limited"
)

// ValidSpotTypes lists the accepted values for ParkingSpot.Type.
var ValidSpotTypes = []string{SpotTypeFree, SpotTypePaid, SpotTypeTimeLimited}

// ParkingSpot is a curated entry in the public parking inventory, as opposed
// to a ReportedSpot which is user-submitted and moderated.
type ParkingSpot struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:200" json:"name"`
	Address   string         `gorm:"not null;size:255" json:"address"`
	City      string         `gorm:"not null;size:100;index" json:"city"`
	Type      string         `gorm:"not null;size:20;index" json:"type"`
	Lat       *float64       `json:"lat"`
	Lng       *float64       `json:"lng"`
	Available bool           `gorm:"default:true" json:"available"`
	CreatedBy *uuid.UUID     `gorm:"type:uuid;index" json:"created_by,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
