package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sovahealth/courier/internal/models"
)

func msg(id models.ID, mine bool, at time.Time) models.Message {
	return models.Message{ID: id, Body: "m" + string(id), SentAt: at, IsMine: mine}
}

func TestBuildTimelineEmpty(t *testing.T) {
	assert.Empty(t, BuildTimeline(nil))
}

func TestBuildTimelineSeparatorsAndGroups(t *testing.T) {
	day1 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.Local)
	day2 := time.Date(2026, 8, 2, 9, 0, 0, 0, time.Local)

	msgs := []models.Message{
		msg("1", false, day1),
		msg("2", false, day1.Add(5*time.Minute)),
		msg("3", true, day1.Add(10*time.Minute)),
		msg("4", false, day2),
	}

	entries := BuildTimeline(msgs)
	require.Len(t, entries, 6)

	assert.Equal(t, EntrySeparator, entries[0].Kind)

	assert.Equal(t, EntryMessage, entries[1].Kind)
	assert.True(t, entries[1].FirstInGroup)
	assert.False(t, entries[1].LastInGroup)

	assert.False(t, entries[2].FirstInGroup)
	assert.True(t, entries[2].LastInGroup) // sender changes next

	assert.True(t, entries[3].FirstInGroup) // own message opens a group
	assert.True(t, entries[3].LastInGroup)  // day changes next

	assert.Equal(t, EntrySeparator, entries[4].Kind)
	assert.True(t, entries[5].FirstInGroup)
	assert.True(t, entries[5].LastInGroup)
}

// Grouping depends only on sender and calendar day; a long quiet gap
// within the same day does not split a run.
func TestBuildTimelineIgnoresIntraDayGaps(t *testing.T) {
	day := time.Date(2026, 8, 1, 8, 0, 0, 0, time.Local)
	msgs := []models.Message{
		msg("1", false, day),
		msg("2", false, day.Add(9*time.Hour)),
	}

	entries := BuildTimeline(msgs)
	require.Len(t, entries, 3)
	assert.True(t, entries[1].FirstInGroup)
	assert.False(t, entries[1].LastInGroup)
	assert.False(t, entries[2].FirstInGroup)
	assert.True(t, entries[2].LastInGroup)
}

func TestBuildTimelineDayBoundarySplitsSameSender(t *testing.T) {
	night := time.Date(2026, 8, 1, 23, 50, 0, 0, time.Local)
	morning := time.Date(2026, 8, 2, 0, 10, 0, 0, time.Local)

	entries := BuildTimeline([]models.Message{
		msg("1", true, night),
		msg("2", true, morning),
	})

	require.Len(t, entries, 4)
	assert.Equal(t, EntrySeparator, entries[0].Kind)
	assert.True(t, entries[1].LastInGroup)
	assert.Equal(t, EntrySeparator, entries[2].Kind)
	assert.True(t, entries[3].FirstInGroup)
}

func TestDayLabels(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "Today", dayLabel(now))
	assert.Equal(t, "Yesterday", dayLabel(now.AddDate(0, 0, -1)))

	old := time.Date(2026, 3, 16, 12, 0, 0, 0, time.Local)
	assert.Equal(t, "Monday, March 16, 2026", dayLabel(old))
}

// A filtered (starred-only) view groups by adjacency in the filtered
// list, so two starred messages with unstarred ones between them can end
// up in the same group.
func TestBuildTimelineGroupsFilteredAdjacency(t *testing.T) {
	day := time.Date(2026, 8, 1, 9, 0, 0, 0, time.Local)
	filtered := []models.Message{
		msg("1", false, day),
		msg("5", false, day.Add(3*time.Hour)),
	}

	entries := BuildTimeline(filtered)
	require.Len(t, entries, 3)
	assert.True(t, entries[1].FirstInGroup)
	assert.False(t, entries[2].FirstInGroup)
	assert.True(t, entries[2].LastInGroup)
}
