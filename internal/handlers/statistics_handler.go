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

type StatisticsHandler struct {
	statisticsService *services.StatisticsService
	rankingService    *services.RankingService
}

func NewStatisticsHandler(statisticsService *services.StatisticsService, rankingService *services.RankingService) *StatisticsHandler {
	return &StatisticsHandler{
		statisticsService: statisticsService,
		rankingService:    rankingService,
	}
}

// Leaderboard is public: the top contributors by points.
func (h *StatisticsHandler) Leaderboard(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}

	entries, err := h.rankingService.TopN(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load leaderboard",
		})
	}

	return c.JSON(fiber.Map{"leaderboard": entries})
}

// GetUser returns a user's statistics. Users may only read their own unless
// they are admins.
func (h *StatisticsHandler) GetUser(c *fiber.Ctx) error {
	callerID, err := claims.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	targetID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	if targetID != callerID && !claims.IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Forbidden",
		})
	}

	stats, err := h.statisticsService.Get(targetID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load statistics",
		})
	}

	return c.JSON(stats)
}

// Position returns a user's leaderboard rank, or "unranked" for users with
// no positive points.
func (h *StatisticsHandler) Position(c *fiber.Ctx) error {
	callerID, err := claims.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	targetID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	if targetID != callerID && !claims.IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Forbidden",
		})
	}

	rank, ranked, err := h.rankingService.RankOf(targetID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load position",
		})
	}

	if !ranked {
		return c.JSON(fiber.Map{"position": "unranked"})
	}
	return c.JSON(fiber.Map{"position": rank})
}

// Increment bumps one of the caller's counters. Only searches and favorites
// may be incremented directly; reports and points are earned through reports.
func (h *StatisticsHandler) Increment(c *fiber.Ctx) error {
	userID, err := claims.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.IncrementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if req.Field != "searches" && req.Field != "favorites" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "field must be searches or favorites",
		})
	}

	if err := h.statisticsService.Increment(userID, req.Field, req.Amount); err != nil {
		if errors.Is(err, services.ErrInvalidStatField) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update statistics",
		})
	}

	return c.JSON(fiber.Map{"message": "Statistics updated"})
}
