package services

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/google/uuid"
	"github.com/martensmichael89-pixel/parking4free/internal/dto"
	"github.com/martensmichael89-pixel/parking4free/internal/models"
	"gorm.io/gorm"
)

var ErrInvalidStatus = errors.New("invalid status: must be pending, approved, or rejected")

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"ass", "asshole", "bastard", "bitch", "cunt",
	"spam", "scam", "scammer", "phishing", "malware",
}

// ModerationService is the visibility gate for reported spots: the
// pending/approved/rejected state machine, the approved-only public listing,
// and the content filter applied to user-submitted rating comments.
type ModerationService struct {
	db                 *gorm.DB
	bannedWordRegexps  []*regexp.Regexp
	urlPattern         *regexp.Regexp
	contactInfoPattern *regexp.Regexp
	compiled           bool
	mu                 sync.RWMutex
}

func NewModerationService(db *gorm.DB) *ModerationService {
	s := &ModerationService{db: db}
	s.compilePatterns()
	return s
}

func (s *ModerationService) compilePatterns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.compiled {
		return
	}

	s.bannedWordRegexps = make([]*regexp.Regexp, 0, len(BannedWords))
	for _, word := range BannedWords {
		pattern := `(?i)\b` + regexp.QuoteMeta(word) + `\b`
		re, err := regexp.Compile(pattern)
		if err == nil {
			s.bannedWordRegexps = append(s.bannedWordRegexps, re)
		}
	}

	s.urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
	s.contactInfoPattern = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	s.compiled = true
}

// FilterComment reports whether a rating comment is acceptable, and the
// rejection reason when it is not.
func (s *ModerationService) FilterComment(text string) (bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if text == "" {
		return true, ""
	}
	for _, re := range s.bannedWordRegexps {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	if s.urlPattern.MatchString(text) {
		return false, "url_not_allowed"
	}
	if s.contactInfoPattern.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	return true, ""
}

// GetRejectionMessage maps a filter reason to a user-facing message.
func (s *ModerationService) GetRejectionMessage(reason string) string {
	messages := map[string]string{
		"inappropriate_language":   "Your comment contains inappropriate language.",
		"url_not_allowed":          "URLs and web links are not allowed in comments.",
		"contact_info_not_allowed": "Contact information is not allowed in comments.",
	}
	if msg, ok := messages[reason]; ok {
		return msg
	}
	return "Your comment does not meet our content guidelines."
}

// SetStatus transitions a reported spot between moderation states. Any of
// the three states may be set at any time; there is no transition matrix, so
// an admin can move an approved spot back to pending.
func (s *ModerationService) SetStatus(spotID uuid.UUID, status string) error {
	if !containsString(models.ValidStatuses, status) {
		return ErrInvalidStatus
	}

	result := s.db.Model(&models.ReportedSpot{}).
		Where("id = ?", spotID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSpotNotFound
	}
	return nil
}

// ListApproved is the public read path: approved spots only, most trusted
// first, most recently reported first among equals, each carrying its
// reporter's display name and the derived aggregates.
func (s *ModerationService) ListApproved() ([]dto.ApprovedSpot, error) {
	spots := make([]dto.ApprovedSpot, 0)
	err := s.db.Raw(`
		SELECT rp.id, rp.user_id, u.name AS reporter_name, rp.name, rp.description,
		       rp.address, rp.lat, rp.lng, rp.category, rp.restrictions, rp.photo,
		       rp.rating_count, rp.trust_score, rp.last_confirmed_at, rp.created_at
		FROM reported_parking_spots rp
		LEFT JOIN users u ON rp.user_id = u.id
		WHERE rp.status = 'approved' AND rp.deleted_at IS NULL
		ORDER BY rp.trust_score DESC, rp.created_at DESC`).Scan(&spots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load approved spots: %w", err)
	}
	return spots, nil
}

// ListByStatus returns reported spots in a given state for the admin queue,
// newest first.
func (s *ModerationService) ListByStatus(status string, limit, offset int) ([]models.ReportedSpot, int64, error) {
	if status != "" && !containsString(models.ValidStatuses, status) {
		return nil, 0, ErrInvalidStatus
	}

	var spots []models.ReportedSpot
	var total int64

	query := s.db.Model(&models.ReportedSpot{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query.Count(&total)

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&spots).Error; err != nil {
		return nil, 0, err
	}
	return spots, total, nil
}
