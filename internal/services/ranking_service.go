package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/martensmichael89-pixel/parking4free/internal/dto"
	"gorm.io/gorm"
)

// RankingService orders contributors by points. Only users with points > 0
// are ranked. Ties break by user id ascending; TopN and RankOf share the
// exact same window ordering so a user's reported position always matches
// their slot in the leaderboard.
type RankingService struct {
	db *gorm.DB
}

func NewRankingService(db *gorm.DB) *RankingService {
	return &RankingService{db: db}
}

// TopN returns the first n leaderboard entries.
func (s *RankingService) TopN(n int) ([]dto.LeaderboardEntry, error) {
	if n <= 0 {
		n = 10
	}

	entries := make([]dto.LeaderboardEntry, 0, n)
	err := s.db.Raw(`
		SELECT us.user_id AS user_id, u.name AS name, us.points AS points,
		       us.reports_count AS reports,
		       ROW_NUMBER() OVER (ORDER BY us.points DESC, us.user_id ASC) AS rank
		FROM user_statistics us
		LEFT JOIN users u ON us.user_id = u.id
		WHERE us.points > 0
		ORDER BY us.points DESC, us.user_id ASC
		LIMIT ?`, n).Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return entries, nil
}

// RankOf returns the 1-based position of the user in the full ordering.
// ranked is false when the user has no points or no statistics row.
func (s *RankingService) RankOf(userID uuid.UUID) (rank int, ranked bool, err error) {
	var result struct {
		Rank int
	}
	tx := s.db.Raw(`
		SELECT rank FROM (
			SELECT user_id, ROW_NUMBER() OVER (ORDER BY points DESC, user_id ASC) AS rank
			FROM user_statistics
			WHERE points > 0
		) ranked
		WHERE user_id = ?`, userID).Scan(&result)
	if tx.Error != nil {
		return 0, false, fmt.Errorf("failed to compute rank: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return 0, false, nil
	}
	return result.Rank, true, nil
}
