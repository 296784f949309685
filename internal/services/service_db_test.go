package services

import (
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/martensmichael89-pixel/parking4free/internal/config"
	"github.com/martensmichael89-pixel/parking4free/internal/dto"
	"github.com/martensmichael89-pixel/parking4free/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupDB opens the test database named by TEST_DATABASE_DSN and migrates
// the schema. Tests that need a live database are skipped when the variable
// is unset.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.ReportedSpot{},
		&models.Rating{},
		&models.UserStatistics{},
		&models.ParkingSpot{},
		&models.Favorite{},
		&models.SystemLog{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{
		ID:       uuid.New(),
		Name:     "Tester",
		Email:    fmt.Sprintf("tester-%s@example.com", uuid.NewString()),
		Password: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestUserWithPassword(t *testing.T, db *gorm.DB, password string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		ID:       uuid.New(),
		Name:     "Tester",
		Email:    fmt.Sprintf("tester-%s@example.com", uuid.NewString()),
		Password: string(hash),
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
	}
}

func createTestSpot(t *testing.T, db *gorm.DB, s *ReportService, reporter uuid.UUID) *models.ReportedSpot {
	t.Helper()
	spot, err := s.RecordReport(reporter, validReport())
	require.NoError(t, err)
	return spot
}

func TestRatingUpsertReplacesVote(t *testing.T) {
	db := setupDB(t)
	s := NewReportService(db)

	reporter := createTestUser(t, db)
	rater := createTestUser(t, db)
	spot := createTestSpot(t, db, s, reporter.ID)

	_, err := s.RecordRating(rater.ID, spot.ID, models.RatingConfirm, "")
	require.NoError(t, err)
	_, err = s.RecordRating(rater.ID, spot.ID, models.RatingUnavailable, "gone")
	require.NoError(t, err)

	var ratings []models.Rating
	require.NoError(t, db.Where("spot_id = ?", spot.ID).Find(&ratings).Error)
	require.Len(t, ratings, 1)
	assert.Equal(t, models.RatingUnavailable, ratings[0].RatingType)
	assert.Equal(t, "gone", ratings[0].Comment)

	var reloaded models.ReportedSpot
	require.NoError(t, db.First(&reloaded, "id = ?", spot.ID).Error)
	assert.Equal(t, 1, reloaded.RatingCount)
	assert.Equal(t, 0.0, reloaded.TrustScore)
}

func TestTrustScoreIsMeanOverCurrentVotes(t *testing.T) {
	db := setupDB(t)
	s := NewReportService(db)

	reporter := createTestUser(t, db)
	spot := createTestSpot(t, db, s, reporter.ID)

	votes := []string{models.RatingConfirm, models.RatingConfirm, models.RatingReportProblem, models.RatingUnavailable}
	for _, v := range votes {
		rater := createTestUser(t, db)
		_, err := s.RecordRating(rater.ID, spot.ID, v, "")
		require.NoError(t, err)
	}

	var reloaded models.ReportedSpot
	require.NoError(t, db.First(&reloaded, "id = ?", spot.ID).Error)
	assert.Equal(t, 4, reloaded.RatingCount)
	// (1.0 + 1.0 + 0.5 + 0.0) / 4
	assert.InDelta(t, 0.625, reloaded.TrustScore, 0.0001)
}

func TestLastConfirmedAtAdvancesOnlyOnConfirm(t *testing.T) {
	db := setupDB(t)
	s := NewReportService(db)

	reporter := createTestUser(t, db)
	rater := createTestUser(t, db)
	second := createTestUser(t, db)
	spot := createTestSpot(t, db, s, reporter.ID)

	var reloaded models.ReportedSpot
	require.NoError(t, db.First(&reloaded, "id = ?", spot.ID).Error)
	assert.Nil(t, reloaded.LastConfirmedAt)

	_, err := s.RecordRating(rater.ID, spot.ID, models.RatingUnavailable, "")
	require.NoError(t, err)
	require.NoError(t, db.First(&reloaded, "id = ?", spot.ID).Error)
	assert.Nil(t, reloaded.LastConfirmedAt)

	_, err = s.RecordRating(second.ID, spot.ID, models.RatingConfirm, "")
	require.NoError(t, err)
	require.NoError(t, db.First(&reloaded, "id = ?", spot.ID).Error)
	require.NotNil(t, reloaded.LastConfirmedAt)
	confirmedAt := *reloaded.LastConfirmedAt

	// A later non-confirm vote never moves the watermark back.
	_, err = s.RecordRating(rater.ID, spot.ID, models.RatingReportProblem, "")
	require.NoError(t, err)
	require.NoError(t, db.First(&reloaded, "id = ?", spot.ID).Error)
	require.NotNil(t, reloaded.LastConfirmedAt)
	assert.Equal(t, confirmedAt.Unix(), reloaded.LastConfirmedAt.Unix())
}

func TestConcurrentReportsNeverLosePoints(t *testing.T) {
	db := setupDB(t)
	s := NewReportService(db)

	reporter := createTestUser(t, db)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := s.RecordReport(reporter.ID, validReport())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var stats models.UserStatistics
	require.NoError(t, db.Where("user_id = ?", reporter.ID).First(&stats).Error)
	assert.Equal(t, n*PointsPerReport, stats.Points)
	assert.Equal(t, n, stats.ReportsCount)
}

func TestLeaderboardAndRankAgree(t *testing.T) {
	db := setupDB(t)
	ranking := NewRankingService(db)

	userA := createTestUser(t, db)
	userB := createTestUser(t, db)
	userC := createTestUser(t, db)

	require.NoError(t, IncrementStatistics(db, userA.ID, StatisticsDelta{Points: 30}))
	require.NoError(t, IncrementStatistics(db, userB.ID, StatisticsDelta{Points: 50}))
	require.NoError(t, IncrementStatistics(db, userC.ID, StatisticsDelta{Points: 0}))

	entries, err := ranking.TopN(100000)
	require.NoError(t, err)

	positions := make(map[uuid.UUID]int)
	for i, e := range entries {
		positions[e.UserID] = e.Rank
		// Ranks are contiguous from 1, no gaps, only positive point totals.
		assert.Equal(t, i+1, e.Rank)
		assert.Positive(t, e.Points)
	}

	for _, u := range []models.User{userA, userB} {
		rank, ranked, err := ranking.RankOf(u.ID)
		require.NoError(t, err)
		require.True(t, ranked)
		assert.Equal(t, positions[u.ID], rank)
	}

	// Zero points means unranked and absent from the leaderboard.
	_, ranked, err := ranking.RankOf(userC.ID)
	require.NoError(t, err)
	assert.False(t, ranked)
	assert.NotContains(t, positions, userC.ID)

	rankA := positions[userA.ID]
	rankB := positions[userB.ID]
	assert.Less(t, rankB, rankA)
}

func TestApprovedListingOrder(t *testing.T) {
	db := setupDB(t)
	reports := NewReportService(db)
	moderation := NewModerationService(db)

	reporter := createTestUser(t, db)
	rater := createTestUser(t, db)

	low := createTestSpot(t, db, reports, reporter.ID)
	high := createTestSpot(t, db, reports, reporter.ID)
	hidden := createTestSpot(t, db, reports, reporter.ID)

	_, err := reports.RecordRating(rater.ID, high.ID, models.RatingConfirm, "")
	require.NoError(t, err)
	_, err = reports.RecordRating(rater.ID, low.ID, models.RatingUnavailable, "")
	require.NoError(t, err)

	require.NoError(t, moderation.SetStatus(low.ID, models.StatusApproved))
	require.NoError(t, moderation.SetStatus(high.ID, models.StatusApproved))
	require.NoError(t, moderation.SetStatus(hidden.ID, models.StatusRejected))

	listed, err := moderation.ListApproved()
	require.NoError(t, err)

	posLow, posHigh := -1, -1
	for i, spot := range listed {
		switch spot.ID {
		case low.ID:
			posLow = i
		case high.ID:
			posHigh = i
		case hidden.ID:
			t.Fatal("rejected spot leaked into the approved listing")
		}
		if i > 0 {
			assert.GreaterOrEqual(t, listed[i-1].TrustScore, spot.TrustScore)
		}
	}
	require.NotEqual(t, -1, posLow)
	require.NotEqual(t, -1, posHigh)
	assert.Less(t, posHigh, posLow)
}

func TestStatusRoundTrip(t *testing.T) {
	db := setupDB(t)
	reports := NewReportService(db)
	moderation := NewModerationService(db)

	reporter := createTestUser(t, db)
	spot := createTestSpot(t, db, reports, reporter.ID)

	require.Equal(t, models.StatusPending, spot.Status)

	require.NoError(t, moderation.SetStatus(spot.ID, models.StatusApproved))
	// Approval is reversible.
	require.NoError(t, moderation.SetStatus(spot.ID, models.StatusPending))

	var reloaded models.ReportedSpot
	require.NoError(t, db.First(&reloaded, "id = ?", spot.ID).Error)
	assert.Equal(t, models.StatusPending, reloaded.Status)

	err := moderation.SetStatus(uuid.New(), models.StatusApproved)
	assert.ErrorIs(t, err, ErrSpotNotFound)
}

func TestReportRateModerateScenario(t *testing.T) {
	db := setupDB(t)
	reports := NewReportService(db)
	moderation := NewModerationService(db)

	userA := createTestUser(t, db)
	userB := createTestUser(t, db)
	userC := createTestUser(t, db)

	spot, err := reports.RecordReport(userA.ID, validReport())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, spot.Status)
	assert.Equal(t, 0, spot.RatingCount)

	var stats models.UserStatistics
	require.NoError(t, db.Where("user_id = ?", userA.ID).First(&stats).Error)
	assert.Equal(t, PointsPerReport, stats.Points)
	assert.Equal(t, 1, stats.ReportsCount)

	require.NoError(t, moderation.SetStatus(spot.ID, models.StatusApproved))
	listed, err := moderation.ListApproved()
	require.NoError(t, err)
	found := false
	for _, s := range listed {
		if s.ID == spot.ID {
			found = true
		}
	}
	assert.True(t, found)

	reload := func() models.ReportedSpot {
		var s models.ReportedSpot
		require.NoError(t, db.First(&s, "id = ?", spot.ID).Error)
		return s
	}

	_, err = reports.RecordRating(userB.ID, spot.ID, models.RatingConfirm, "")
	require.NoError(t, err)
	s := reload()
	assert.Equal(t, 1, s.RatingCount)
	assert.InDelta(t, 1.0, s.TrustScore, 0.0001)
	assert.NotNil(t, s.LastConfirmedAt)

	_, err = reports.RecordRating(userC.ID, spot.ID, models.RatingUnavailable, "")
	require.NoError(t, err)
	s = reload()
	assert.Equal(t, 2, s.RatingCount)
	assert.InDelta(t, 0.5, s.TrustScore, 0.0001)

	_, err = reports.RecordRating(userB.ID, spot.ID, models.RatingUnavailable, "")
	require.NoError(t, err)
	s = reload()
	assert.Equal(t, 2, s.RatingCount)
	assert.InDelta(t, 0.0, s.TrustScore, 0.0001)
}

func TestConcurrentRatingsCountDistinctUsers(t *testing.T) {
	db := setupDB(t)
	s := NewReportService(db)

	reporter := createTestUser(t, db)
	spot := createTestSpot(t, db, s, reporter.ID)

	const n = 20
	raters := make([]models.User, n)
	for i := range raters {
		raters[i] = createTestUser(t, db)
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(rater uuid.UUID) {
			defer wg.Done()
			_, err := s.RecordRating(rater, spot.ID, models.RatingConfirm, "")
			assert.NoError(t, err)
		}(raters[i].ID)
	}
	wg.Wait()

	var reloaded models.ReportedSpot
	require.NoError(t, db.First(&reloaded, "id = ?", spot.ID).Error)
	assert.Equal(t, n, reloaded.RatingCount)
	assert.InDelta(t, 1.0, reloaded.TrustScore, 0.0001)
}

func TestTrustScoreOrderIndependent(t *testing.T) {
	db := setupDB(t)
	s := NewReportService(db)

	reporter := createTestUser(t, db)
	forward := createTestSpot(t, db, s, reporter.ID)
	reversed := createTestSpot(t, db, s, reporter.ID)

	votes := []string{models.RatingConfirm, models.RatingReportProblem, models.RatingUnavailable, models.RatingConfirm}
	raters := make([]models.User, len(votes))
	for i := range raters {
		raters[i] = createTestUser(t, db)
	}

	for i := range votes {
		_, err := s.RecordRating(raters[i].ID, forward.ID, votes[i], "")
		require.NoError(t, err)
	}
	for i := len(votes) - 1; i >= 0; i-- {
		_, err := s.RecordRating(raters[i].ID, reversed.ID, votes[i], "")
		require.NoError(t, err)
	}

	var a, b models.ReportedSpot
	require.NoError(t, db.First(&a, "id = ?", forward.ID).Error)
	require.NoError(t, db.First(&b, "id = ?", reversed.ID).Error)
	assert.Equal(t, a.RatingCount, b.RatingCount)
	assert.InDelta(t, a.TrustScore, b.TrustScore, 0.0001)
}

func TestAccountDeletionRecomputesRatedSpots(t *testing.T) {
	db := setupDB(t)
	reports := NewReportService(db)
	auth := NewAuthService(db, testAuthConfig())

	reporter := createTestUser(t, db)
	rater := createTestUserWithPassword(t, db, "supersecret1")
	spot := createTestSpot(t, db, reports, reporter.ID)

	_, err := reports.RecordRating(rater.ID, spot.ID, models.RatingConfirm, "")
	require.NoError(t, err)

	var reloaded models.ReportedSpot
	require.NoError(t, db.First(&reloaded, "id = ?", spot.ID).Error)
	require.Equal(t, 1, reloaded.RatingCount)
	require.InDelta(t, 1.0, reloaded.TrustScore, 0.0001)

	require.NoError(t, auth.DeleteAccount(rater.ID, "supersecret1"))

	// The rater's vote is gone, so the surviving spot's aggregates must
	// match the now-empty rating set.
	var ratings int64
	require.NoError(t, db.Model(&models.Rating{}).Where("spot_id = ?", spot.ID).Count(&ratings).Error)
	assert.Equal(t, int64(0), ratings)

	require.NoError(t, db.First(&reloaded, "id = ?", spot.ID).Error)
	assert.Equal(t, 0, reloaded.RatingCount)
	assert.InDelta(t, 0.0, reloaded.TrustScore, 0.0001)
}

func TestAdminUserDeletionRecomputesRatedSpots(t *testing.T) {
	db := setupDB(t)
	reports := NewReportService(db)
	users := NewUserService(db)

	reporter := createTestUser(t, db)
	admin := createTestUser(t, db)
	rater := createTestUser(t, db)
	other := createTestUser(t, db)
	spot := createTestSpot(t, db, reports, reporter.ID)

	_, err := reports.RecordRating(rater.ID, spot.ID, models.RatingUnavailable, "")
	require.NoError(t, err)
	_, err = reports.RecordRating(other.ID, spot.ID, models.RatingConfirm, "")
	require.NoError(t, err)

	require.NoError(t, users.DeleteUser(rater.ID, admin.ID))

	var reloaded models.ReportedSpot
	require.NoError(t, db.First(&reloaded, "id = ?", spot.ID).Error)
	assert.Equal(t, 1, reloaded.RatingCount)
	assert.InDelta(t, 1.0, reloaded.TrustScore, 0.0001)
}

func TestChangePasswordRotatesCredentials(t *testing.T) {
	db := setupDB(t)
	auth := NewAuthService(db, testAuthConfig())

	user := createTestUserWithPassword(t, db, "oldpassword1")

	before, err := auth.Login(&dto.LoginRequest{Email: user.Email, Password: "oldpassword1"})
	require.NoError(t, err)

	err = auth.ChangePassword(user.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "wrongpassword",
		NewPassword:     "newpassword1",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, auth.ChangePassword(user.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "oldpassword1",
		NewPassword:     "newpassword1",
	}))

	_, err = auth.Login(&dto.LoginRequest{Email: user.Email, Password: "oldpassword1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(&dto.LoginRequest{Email: user.Email, Password: "newpassword1"})
	assert.NoError(t, err)

	// Sessions issued before the change are dead.
	_, err = auth.Refresh(&dto.RefreshRequest{RefreshToken: before.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAdminLogListing(t *testing.T) {
	db := setupDB(t)
	users := NewUserService(db)

	marker := uuid.NewString()
	older := models.SystemLog{ID: uuid.New(), Timestamp: time.Now().Add(-time.Hour), Level: "ERROR", Message: marker}
	newer := models.SystemLog{ID: uuid.New(), Timestamp: time.Now(), Level: "ERROR", Message: marker}
	info := models.SystemLog{ID: uuid.New(), Timestamp: time.Now(), Level: "INFO", Message: marker}
	require.NoError(t, db.Create([]*models.SystemLog{&older, &newer, &info}).Error)

	logs, total, err := users.ListLogs("error", 200, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(2))

	posOlder, posNewer := -1, -1
	for i, l := range logs {
		assert.Equal(t, "ERROR", l.Level)
		switch l.ID {
		case older.ID:
			posOlder = i
		case newer.ID:
			posNewer = i
		case info.ID:
			t.Fatal("level filter leaked an INFO row")
		}
	}
	require.NotEqual(t, -1, posOlder)
	require.NotEqual(t, -1, posNewer)
	assert.Less(t, posNewer, posOlder)
}

func TestFavoriteDuplicateRejected(t *testing.T) {
	db := setupDB(t)
	favorites := NewFavoriteService(db)

	user := createTestUser(t, db)
	lat, lng := 48.1374, 11.5755
	spot := models.ParkingSpot{
		ID: uuid.New(), Name: "Testplatz", Address: "Teststr. 1", City: "München",
		Type: models.SpotTypeFree, Lat: &lat, Lng: &lng, Available: true,
	}
	require.NoError(t, db.Create(&spot).Error)

	_, err := favorites.Add(user.ID, spot.ID)
	require.NoError(t, err)
	_, err = favorites.Add(user.ID, spot.ID)
	assert.ErrorIs(t, err, ErrAlreadyFavorite)

	listed, err := favorites.List(user.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, spot.ID, listed[0].ID)

	require.NoError(t, favorites.Remove(user.ID, spot.ID))
	err = favorites.Remove(user.ID, spot.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
