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

// ReportedParkingHandler exposes the crowd-sourced spot flow: reporting,
// rating, the public approved listing, and admin moderation.
type ReportedParkingHandler struct {
	reportService     *services.ReportService
	moderationService *services.ModerationService
}

func NewReportedParkingHandler(reportService *services.ReportService, moderationService *services.ModerationService) *ReportedParkingHandler {
	return &ReportedParkingHandler{
		reportService:     reportService,
		moderationService: moderationService,
	}
}

// Report stores a new pending spot and credits the reporter.
func (h *ReportedParkingHandler) Report(c *fiber.Ctx) error {
	userID, err := claims.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.ReportSpotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	spot, err := h.reportService.RecordReport(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidCategory):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to store reported spot",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(dto.ReportSpotResponse{
		Message:   "Parking spot reported successfully and is pending review",
		ParkingID: spot.ID,
		Points:    services.PointsPerReport,
	})
}

// ListApproved is public: approved spots ordered by trust, newest first among
// equals.
func (h *ReportedParkingHandler) ListApproved(c *fiber.Ctx) error {
	spots, err := h.moderationService.ListApproved()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load parking spots",
		})
	}
	return c.JSON(fiber.Map{"spots": spots, "count": len(spots)})
}

func (h *ReportedParkingHandler) Get(c *fiber.Ctx) error {
	spotID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid spot id",
		})
	}

	spot, err := h.reportService.GetSpot(spotID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Parking spot not found",
		})
	}
	return c.JSON(spot)
}

// Rate upserts the caller's rating on a spot. Comments pass through the
// content filter first.
func (h *ReportedParkingHandler) Rate(c *fiber.Ctx) error {
	userID, err := claims.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	spotID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid spot id",
		})
	}

	var req dto.RateSpotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if ok, reason := h.moderationService.FilterComment(req.Comment); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: h.moderationService.GetRejectionMessage(reason),
		})
	}

	rating, err := h.reportService.RecordRating(userID, spotID, req.RatingType, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSpotNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrInvalidRatingType):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to store rating",
			})
		}
	}

	return c.JSON(dto.RateSpotResponse{
		Message:    "Rating saved",
		RatingType: rating.RatingType,
	})
}

func (h *ReportedParkingHandler) Delete(c *fiber.Ctx) error {
	userID, err := claims.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	spotID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid spot id",
		})
	}

	if err := h.reportService.DeleteSpot(spotID, userID, claims.IsAdmin(c)); err != nil {
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

// SetStatus is the admin moderation endpoint.
func (h *ReportedParkingHandler) SetStatus(c *fiber.Ctx) error {
	spotID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid spot id",
		})
	}

	var req dto.SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.moderationService.SetStatus(spotID, req.Status); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrSpotNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to update status",
			})
		}
	}

	return c.JSON(fiber.Map{"message": "Status updated", "status": req.Status})
}

// ListPending returns the moderation queue for admins. A status query
// parameter switches to another state.
func (h *ReportedParkingHandler) ListPending(c *fiber.Ctx) error {
	status := c.Query("status", "pending")
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit < 1 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	spots, total, err := h.moderationService.ListByStatus(status, limit, offset)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load moderation queue",
		})
	}

	return c.JSON(fiber.Map{"spots": spots, "total": total})
}
