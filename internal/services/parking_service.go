package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/martensmichael89-pixel/parking4free/internal/dto"
	"github.com/martensmichael89-pixel/parking4free/internal/models"
	"gorm.io/gorm"
)

var (
	ErrInvalidSpotType    = errors.New("invalid type: must be free, paid, or time-limited")
	ErrInvalidCoordinates = errors.New("lat must be between -90 and 90, lng between -180 and 180")
)

const earthRadiusKm = 6371.0

// ParkingService manages the curated parking inventory, distinct from the
// user-reported spots that flow through moderation.
type ParkingService struct {
	db *gorm.DB
}

func NewParkingService(db *gorm.DB) *ParkingService {
	return &ParkingService{db: db}
}

// ParkingFilter narrows List results. Zero values mean no filtering on that
// dimension.
type ParkingFilter struct {
	City      string
	Type      string
	Available *bool
	Page      int
	Limit     int
}

func (s *ParkingService) List(filter ParkingFilter) ([]models.ParkingSpot, dto.Pagination, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&models.ParkingSpot{})
	if filter.City != "" {
		query = query.Where("LOWER(city) = LOWER(?)", filter.City)
	}
	if filter.Type != "" {
		if !containsString(models.ValidSpotTypes, filter.Type) {
			return nil, dto.Pagination{}, ErrInvalidSpotType
		}
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Available != nil {
		query = query.Where("available = ?", *filter.Available)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, dto.Pagination{}, err
	}

	spots := make([]models.ParkingSpot, 0)
	err := query.Order("city ASC, name ASC").
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

func (s *ParkingService) GetByID(id uuid.UUID) (*models.ParkingSpot, error) {
	var spot models.ParkingSpot
	if err := s.db.First(&spot, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpotNotFound
		}
		return nil, err
	}
	return &spot, nil
}

func (s *ParkingService) Create(userID uuid.UUID, req *dto.CreateParkingSpotRequest) (*models.ParkingSpot, error) {
	name := strings.TrimSpace(req.Name)
	address := strings.TrimSpace(req.Address)
	city := strings.TrimSpace(req.City)
	if name == "" || address == "" || city == "" {
		return nil, errors.New("name, address and city are required")
	}
	if !containsString(models.ValidSpotTypes, req.Type) {
		return nil, ErrInvalidSpotType
	}
	if err := validateCoordinates(req.Lat, req.Lng); err != nil {
		return nil, err
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	spot := models.ParkingSpot{
		Name:      name,
		Address:   address,
		City:      city,
		Type:      req.Type,
		Lat:       req.Lat,
		Lng:       req.Lng,
		Available: available,
		CreatedBy: &userID,
	}
	if err := s.db.Create(&spot).Error; err != nil {
		return nil, fmt.Errorf("failed to create parking spot: %w", err)
	}
	return &spot, nil
}

func (s *ParkingService) Update(id, userID uuid.UUID, isAdmin bool, req *dto.CreateParkingSpotRequest) (*models.ParkingSpot, error) {
	spot, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && (spot.CreatedBy == nil || *spot.CreatedBy != userID) {
		return nil, ErrNotOwner
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		spot.Name = name
	}
	if address := strings.TrimSpace(req.Address); address != "" {
		spot.Address = address
	}
	if city := strings.TrimSpace(req.City); city != "" {
		spot.City = city
	}
	if req.Type != "" {
		if !containsString(models.ValidSpotTypes, req.Type) {
			return nil, ErrInvalidSpotType
		}
		spot.Type = req.Type
	}
	if req.Lat != nil || req.Lng != nil {
		if err := validateCoordinates(req.Lat, req.Lng); err != nil {
			return nil, err
		}
		spot.Lat = req.Lat
		spot.Lng = req.Lng
	}
	if req.Available != nil {
		spot.Available = *req.Available
	}

	if err := s.db.Save(spot).Error; err != nil {
		return nil, fmt.Errorf("failed to update parking spot: %w", err)
	}
	return spot, nil
}

// Delete removes a curated spot. Favorites referencing it go with it.
func (s *ParkingService) Delete(id, userID uuid.UUID, isAdmin bool) error {
	spot, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if !isAdmin && (spot.CreatedBy == nil || *spot.CreatedBy != userID) {
		return ErrNotOwner
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parking_spot_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(spot).Error
	})
}

func (s *ParkingService) SetAvailability(id uuid.UUID, available bool) (*models.ParkingSpot, error) {
	spot, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	spot.Available = available
	if err := s.db.Model(spot).Update("available", available).Error; err != nil {
		return nil, err
	}
	return spot, nil
}

// NearbySpot is a curated spot annotated with its distance from the query
// point.
type NearbySpot struct {
	models.ParkingSpot
	DistanceKm float64 `json:"distance_km"`
}

// Nearby returns spots within radiusKm of (lat, lng), closest first. Spots
// without coordinates are skipped. The inventory is small enough that a
// linear scan beats maintaining a spatial index.
func (s *ParkingService) Nearby(lat, lng, radiusKm float64) ([]NearbySpot, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, ErrInvalidCoordinates
	}
	if radiusKm <= 0 {
		radiusKm = 5
	}

	var spots []models.ParkingSpot
	if err := s.db.Where("lat IS NOT NULL AND lng IS NOT NULL").Find(&spots).Error; err != nil {
		return nil, err
	}

	nearby := make([]NearbySpot, 0)
	for _, spot := range spots {
		d := haversineKm(lat, lng, *spot.Lat, *spot.Lng)
		if d <= radiusKm {
			nearby = append(nearby, NearbySpot{ParkingSpot: spot, DistanceKm: math.Round(d*100) / 100})
		}
	}
	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	return nearby, nil
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func validateCoordinates(lat, lng *float64) error {
	if lat != nil && (*lat < -90 || *lat > 90) {
		return ErrInvalidCoordinates
	}
	if lng != nil && (*lng < -180 || *lng > 180) {
		return ErrInvalidCoordinates
	}
	return nil
}
