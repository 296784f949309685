package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFilterComment(t *testing.T) {
	ms := NewModerationService(nil)

	tests := []struct {
		name    string
		comment string
		allowed bool
		reason  string
	}{
		{"empty", "", true, ""},
		{"clean", "Great spot, free on weekends", true, ""},
		{"banned word", "this is bullshit", false, "inappropriate_language"},
		{"banned word uppercase", "SPAM here", false, "inappropriate_language"},
		{"word boundary respected", "classic assessment", true, ""},
		{"url", "check https://example.com for details", false, "url_not_allowed"},
		{"www url", "see www.example.com/parking", false, "url_not_allowed"},
		{"email", "contact me at someone@example.com", false, "contact_info_not_allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := ms.FilterComment(tt.comment)
			assert.Equal(t, tt.allowed, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestGetRejectionMessage(t *testing.T) {
	ms := NewModerationService(nil)

	assert.Contains(t, ms.GetRejectionMessage("inappropriate_language"), "inappropriate language")
	assert.Contains(t, ms.GetRejectionMessage("url_not_allowed"), "not allowed")
	assert.Contains(t, ms.GetRejectionMessage("unknown_reason"), "content guidelines")
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	ms := NewModerationService(nil)

	err := ms.SetStatus(uuid.New(), "published")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestListByStatusRejectsUnknownStatus(t *testing.T) {
	ms := NewModerationService(nil)

	_, _, err := ms.ListByStatus("published", 10, 0)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
