package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/martensmichael89-pixel/parking4free/internal/claims"
	"github.com/martensmichael89-pixel/parking4free/internal/dto"
	"github.com/martensmichael89-pixel/parking4free/internal/services"
)

type ParkingHandler struct {
	parkingService *services.ParkingService
}

func NewParkingHandler(parkingService *services.ParkingService) *ParkingHandler {
	return &ParkingHandler{parkingService: parkingService}
}

func (h *ParkingHandler) List(c *fiber.Ctx) error {
	filter := services.ParkingFilter{
		City: c.Query("city"),
		Type: c.Query("type"),
	}
	filter.Page, _ = strconv.Atoi(c.Query("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.Query("limit", "20"))
	if v := c.Query("available"); v != "" {
		available := v == "true" || v == "1"
		filter.Available = &available
	}

	spots, pagination, err := h.parkingService.List(filter)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSpotType) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load parking spots",
		})
	}

	return c.JSON(fiber.Map{"spots": spots, "pagination": pagination})
}

func (h *ParkingHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid spot id",
		})
	}

	spot, err := h.parkingService.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrSpotNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(spot)
}

// Nearby returns curated spots within a radius of the given point, closest
// first.
func (h *ParkingHandler) Nearby(c *fiber.Ctx) error {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "lat and lng query parameters are required",
		})
	}
	radius, _ := strconv.ParseFloat(c.Query("radius", "5"), 64)

	spots, err := h.parkingService.Nearby(lat, lng, radius)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCoordinates) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to search nearby spots",
		})
	}

	return c.JSON(fiber.Map{"spots": spots, "count": len(spots)})
}

func (h *ParkingHandler) Create(c *fiber.Ctx) error {
	userID, err := claims.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateParkingSpotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	spot, err := h.parkingService.Create(userID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(spot)
}

func (h *ParkingHandler) Update(c *fiber.Ctx) error {
	userID, err := claims.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid spot id",
		})
	}

	var req dto.CreateParkingSpotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	spot, err := h.parkingService.Update(id, userID, claims.IsAdmin(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSpotNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
	}
	return c.JSON(spot)
}

func (h *ParkingHandler) Delete(c *fiber.Ctx) error {
	userID, err := claims.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid spot id",
		})
	}

	if err := h.parkingService.Delete(id, userID, claims.IsAdmin(c)); err != nil {
		switch {
		case errors.Is(err, services.ErrSpotNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to delete parking spot",
			})
		}
	}
	return c.JSON(fiber.Map{"message": "Parking spot deleted"})
}

func (h *ParkingHandler) SetAvailability(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid spot id",
		})
	}

	var req dto.UpdateAvailabilityRequest
	if err := c.BodyParser(&req); err != nil || req.Available == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "available field is required",
		})
	}

	spot, err := h.parkingService.SetAvailability(id, *req.Available)
	if err != nil {
		if errors.Is(err, services.ErrSpotNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update availability",
		})
	}
	return c.JSON(spot)
}
