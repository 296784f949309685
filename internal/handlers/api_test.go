package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/martensmichael89-pixel/parking4free/internal/config"
	"github.com/martensmichael89-pixel/parking4free/internal/database"
	"github.com/martensmichael89-pixel/parking4free/internal/handlers"
	"github.com/martensmichael89-pixel/parking4free/internal/routes"
	"github.com/martensmichael89-pixel/parking4free/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestApp wires the full API against the test database. Skipped when
// TEST_DATABASE_DSN is unset.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	database.DB = db
	require.NoError(t, database.Migrate())

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
	}

	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	parkingService := services.NewParkingService(db)
	reportService := services.NewReportService(db)
	moderationService := services.NewModerationService(db)
	favoriteService := services.NewFavoriteService(db)
	statisticsService := services.NewStatisticsService(db)
	rankingService := services.NewRankingService(db)

	app := fiber.New()
	routes.Setup(app, cfg, db,
		handlers.NewAuthHandler(authService),
		handlers.NewHealthHandler(),
		handlers.NewUserHandler(userService),
		handlers.NewParkingHandler(parkingService),
		handlers.NewReportedParkingHandler(reportService, moderationService),
		handlers.NewFavoriteHandler(favoriteService),
		handlers.NewStatisticsHandler(statisticsService, rankingService),
		handlers.NewAdminHandler(userService),
	)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return resp, parsed
}

func registerUser(t *testing.T, app *fiber.App) (token string, userID string) {
	t.Helper()
	email := fmt.Sprintf("api-%s@example.com", uuid.NewString())
	resp, body := doJSON(t, app, "POST", "/api/auth/register", "", map[string]any{
		"name": "API Tester", "email": email, "password": "supersecret1",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	token, _ = body["access_token"].(string)
	require.NotEmpty(t, token)
	user, _ := body["user"].(map[string]any)
	require.NotNil(t, user)
	userID, _ = user["id"].(string)
	return token, userID
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, "GET", "/api/health", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "up", body["db"])
}

func TestReportFlow(t *testing.T) {
	app := newTestApp(t)
	token, userID := registerUser(t, app)

	// Anonymous reports are rejected.
	resp, _ := doJSON(t, app, "POST", "/api/reported-parking", "", map[string]any{
		"name": "Testspot", "address": "Teststr. 5", "latitude": 52.5, "longitude": 13.4,
		"type": "permanently-free",
	})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, body := doJSON(t, app, "POST", "/api/reported-parking", token, map[string]any{
		"name": "Testspot", "address": "Teststr. 5", "latitude": 52.5, "longitude": 13.4,
		"type": "permanently-free",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(10), body["points"])
	spotID, _ := body["parkingId"].(string)
	require.NotEmpty(t, spotID)

	// A pending spot never shows in the public listing.
	resp, body = doJSON(t, app, "GET", "/api/reported-parking", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	for _, raw := range body["spots"].([]any) {
		spot := raw.(map[string]any)
		assert.NotEqual(t, spotID, spot["id"])
	}

	// Rating it twice keeps one vote.
	resp, _ = doJSON(t, app, "POST", "/api/reported-parking/"+spotID+"/rate", token, map[string]any{
		"rating_type": "confirm",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, "POST", "/api/reported-parking/"+spotID+"/rate", token, map[string]any{
		"rating_type": "unavailable",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, "GET", "/api/reported-parking/"+spotID, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["rating_count"])
	assert.Equal(t, float64(0), body["trust_score"])

	// The reporter earned leaderboard points.
	resp, body = doJSON(t, app, "GET", "/api/statistics/user/"+userID, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.GreaterOrEqual(t, body["points"].(float64), float64(10))
}

func TestReportValidationKeepsErrorClient(t *testing.T) {
	app := newTestApp(t)
	token, _ := registerUser(t, app)

	// Rejected input stays a client error, never a 500.
	resp, body := doJSON(t, app, "POST", "/api/reported-parking", token, map[string]any{
		"name": "Badspot", "address": "Teststr. 7", "latitude": 95.0, "longitude": 13.4,
		"type": "permanently-free",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "latitude")
}

func TestChangePasswordEndpoint(t *testing.T) {
	app := newTestApp(t)
	token, _ := registerUser(t, app)

	resp, _ := doJSON(t, app, "PUT", "/api/auth/change-password", token, map[string]any{
		"current_password": "wrongpassword", "new_password": "evenmoresecret1",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, "PUT", "/api/auth/change-password", token, map[string]any{
		"current_password": "supersecret1", "new_password": "short",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body := doJSON(t, app, "PUT", "/api/auth/change-password", token, map[string]any{
		"current_password": "supersecret1", "new_password": "evenmoresecret1",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Password changed successfully", body["message"])
}

func TestRatingCommentFilter(t *testing.T) {
	app := newTestApp(t)
	token, _ := registerUser(t, app)

	resp, body := doJSON(t, app, "POST", "/api/reported-parking", token, map[string]any{
		"name": "Filterspot", "address": "Teststr. 9", "latitude": 50.9, "longitude": 6.9,
		"type": "disc-required",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	spotID := body["parkingId"].(string)

	resp, _ = doJSON(t, app, "POST", "/api/reported-parking/"+spotID+"/rate", token, map[string]any{
		"rating_type": "confirm", "comment": "more info at https://spam.example.com",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAdminEndpointsRequireAdmin(t *testing.T) {
	app := newTestApp(t)
	token, _ := registerUser(t, app)

	resp, _ := doJSON(t, app, "GET", "/api/admin/dashboard", token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, app, "PUT", "/api/reported-parking/"+uuid.NewString()+"/status", token, map[string]any{
		"status": "approved",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
