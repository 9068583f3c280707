package ui

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/sovahealth/courier/internal/models"
)

func TestThreadItemDescriptionTruncatesOnRunes(t *testing.T) {
	now := time.Now()
	item := threadItem{
		thread:  models.Thread{ID: "t1", LastMessageAt: &now},
		title:   "Rosa Diaz",
		snippet: strings.Repeat("café ", 20),
	}

	desc := item.Description()
	assert.True(t, utf8.ValidString(desc))
	assert.Contains(t, desc, "...")
	assert.Contains(t, desc, "just now")
}

func TestThreadItemTitleShowsUnreadBadge(t *testing.T) {
	item := threadItem{thread: models.Thread{ID: "t1", UnreadCount: 3}, title: "Rosa Diaz"}
	assert.Contains(t, item.Title(), "(3)")

	read := threadItem{thread: models.Thread{ID: "t1"}, title: "Rosa Diaz"}
	assert.Equal(t, "Rosa Diaz", read.Title())
}

func TestFormatTimeAgo(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "just now", formatTimeAgo(now))
	assert.Equal(t, "1 min ago", formatTimeAgo(now.Add(-90*time.Second)))
	assert.Equal(t, "5m ago", formatTimeAgo(now.Add(-5*time.Minute)))
	assert.Equal(t, "3h ago", formatTimeAgo(now.Add(-3*time.Hour)))
	assert.Equal(t, "yesterday", formatTimeAgo(now.Add(-30*time.Hour)))
	assert.Equal(t, "unknown", formatTimeAgo(time.Time{}))
}
