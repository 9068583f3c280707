package conversation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sovahealth/courier/internal/models"
)

func engineWithThread(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine("doc1")
	e.ApplyThreads([]models.Thread{
		patientThread("t1", "pat1", "Rosa Diaz", ts("2026-08-01T10:00:00Z")),
	}, nil)
	return e
}

func mineAt(id models.ID, body string, at time.Time) models.Message {
	return models.Message{ID: id, Body: body, SentAt: at, IsMine: true}
}

func theirsAt(id models.ID, body string, at time.Time) models.Message {
	return models.Message{ID: id, Body: body, SentAt: at}
}

func TestApplyThreadsKeepsKnownGoodOnError(t *testing.T) {
	e := engineWithThread(t)
	require.Len(t, e.Threads(), 1)

	e.ApplyThreads(nil, errors.New("portal down"))
	state, err := e.ThreadState()
	assert.Equal(t, OpError, state)
	assert.Error(t, err)
	// The stale list keeps rendering.
	assert.Len(t, e.Threads(), 1)

	e.ApplyThreads([]models.Thread{}, nil)
	assert.Empty(t, e.Threads())
}

func TestApplyThreadsEnrichesNameCache(t *testing.T) {
	e := engineWithThread(t)
	name, ok := e.Names().Get("t1")
	require.True(t, ok)
	assert.Equal(t, "Rosa Diaz", name)
}

func TestDisplayNamePlaceholderAtRenderBoundary(t *testing.T) {
	e := NewEngine("doc1")
	assert.Equal(t, "Patient", e.DisplayName(models.Thread{ID: "bare"}))
	assert.Equal(t, 0, e.Names().Len())
}

func TestSelectClearsTransientState(t *testing.T) {
	e := engineWithThread(t)
	gen := e.Select("t1")
	now := time.Now()
	e.ApplyMessages(gen, []models.Message{theirsAt("m1", "hello there", now)}, nil)
	e.ToggleStar("m1")
	e.ToggleStarredOnly()
	e.SetSearch("hello")

	gen2 := e.Select("t2")
	assert.Greater(t, gen2, gen)
	assert.Empty(t, e.Messages())
	assert.False(t, e.StarredOnly())
	assert.False(t, e.Search().Active())
	// Stars are per-message, not per-thread view state; they survive.
	assert.True(t, e.Starred("m1"))
}

func TestApplyMessagesDiscardsStaleGeneration(t *testing.T) {
	e := engineWithThread(t)
	oldGen := e.Select("t1")
	newGen := e.Select("t2")

	applied := e.ApplyMessages(oldGen, []models.Message{theirsAt("m1", "late", time.Now())}, nil)
	assert.False(t, applied)
	assert.Empty(t, e.Messages())

	applied = e.ApplyMessages(newGen, []models.Message{theirsAt("m2", "fresh", time.Now())}, nil)
	assert.True(t, applied)
	assert.Len(t, e.Messages(), 1)
}

func TestApplyMessagesKeepsPendingLocalCopy(t *testing.T) {
	e := engineWithThread(t)
	gen := e.Select("t1")
	now := time.Now()
	e.ApplyMessages(gen, []models.Message{mineAt("m1", "original", now)}, nil)

	// An edit is in flight; a poll lands carrying the stale body.
	e.BeginMutation("m1")
	e.ApplyMessages(gen, []models.Message{mineAt("m1", "stale from poll", now)}, nil)
	assert.Equal(t, "original", e.Messages()[0].Body)

	// Confirmation replaces in place and releases the hold.
	edited := mineAt("m1", "edited body", now)
	e.ApplyMutation("m1", &edited, nil)
	assert.Equal(t, "edited body", e.Messages()[0].Body)

	e.ApplyMessages(gen, []models.Message{mineAt("m1", "poll after confirm", now)}, nil)
	assert.Equal(t, "poll after confirm", e.Messages()[0].Body)
}

func TestApplyMutationTombstoneKeepsPosition(t *testing.T) {
	e := engineWithThread(t)
	gen := e.Select("t1")
	now := time.Now()
	e.ApplyMessages(gen, []models.Message{
		theirsAt("m1", "first", now),
		mineAt("m2", "second", now.Add(time.Minute)),
		theirsAt("m3", "third", now.Add(2*time.Minute)),
	}, nil)

	e.BeginMutation("m2")
	tombstone := mineAt("m2", "", now.Add(time.Minute))
	tombstone.Deleted = true
	e.ApplyMutation("m2", &tombstone, nil)

	msgs := e.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, models.ID("m2"), msgs[1].ID)
	assert.True(t, msgs[1].Deleted)
}

func TestApplyMutationErrorLeavesMessage(t *testing.T) {
	e := engineWithThread(t)
	gen := e.Select("t1")
	now := time.Now()
	e.ApplyMessages(gen, []models.Message{mineAt("m1", "keep me", now)}, nil)

	e.BeginMutation("m1")
	e.ApplyMutation("m1", nil, errors.New("409"))

	state, err := e.MutateState()
	assert.Equal(t, OpError, state)
	assert.Error(t, err)
	assert.Equal(t, "keep me", e.Messages()[0].Body)

	// The hold is released, so the next poll may reconcile normally.
	e.ApplyMessages(gen, []models.Message{mineAt("m1", "from poll", now)}, nil)
	assert.Equal(t, "from poll", e.Messages()[0].Body)
}

func TestApplySendAppendsAndTouchesThread(t *testing.T) {
	e := engineWithThread(t)
	gen := e.Select("t1")
	e.ApplyMessages(gen, nil, nil)

	e.BeginSend()
	sent := mineAt("m1", "how are you feeling?", time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC))
	e.ApplySend(&sent, nil)

	require.Len(t, e.Messages(), 1)
	state, err := e.SendState()
	assert.Equal(t, OpReady, state)
	assert.NoError(t, err)

	rows := e.Threads()
	require.Len(t, rows, 1)
	assert.Equal(t, "how are you feeling?", Snippet(rows[0]))
	at, ok := LastActivity(rows[0])
	require.True(t, ok)
	assert.Equal(t, sent.SentAt, at)
}

func TestApplySendErrorLeavesListUntouched(t *testing.T) {
	e := engineWithThread(t)
	gen := e.Select("t1")
	e.ApplyMessages(gen, []models.Message{theirsAt("m1", "hi", time.Now())}, nil)

	e.BeginSend()
	e.ApplySend(nil, errors.New("503"))

	state, err := e.SendState()
	assert.Equal(t, OpError, state)
	assert.Error(t, err)
	assert.Len(t, e.Messages(), 1)
}

func TestStarredOnlyFiltersVisible(t *testing.T) {
	e := engineWithThread(t)
	gen := e.Select("t1")
	now := time.Now()
	e.ApplyMessages(gen, []models.Message{
		theirsAt("m1", "a", now),
		theirsAt("m2", "b", now),
		theirsAt("m3", "c", now),
	}, nil)

	e.ToggleStar("m2")
	assert.Len(t, e.Visible(), 3)

	e.ToggleStarredOnly()
	visible := e.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, models.ID("m2"), visible[0].ID)
	// The canonical list is untouched.
	assert.Len(t, e.Messages(), 3)

	e.ToggleStar("m2")
	assert.Empty(t, e.Visible())
}

func TestSearchIndicesTrackVisibleList(t *testing.T) {
	e := engineWithThread(t)
	gen := e.Select("t1")
	now := time.Now()
	e.ApplyMessages(gen, []models.Message{
		theirsAt("m1", "aspirin in the morning", now),
		theirsAt("m2", "with food", now),
		theirsAt("m3", "aspirin at night", now),
	}, nil)

	e.SetSearch("aspirin")
	assert.Equal(t, []int{0, 2}, e.Search().Results)

	// Narrowing to starred re-resolves hits against the filtered view.
	e.ToggleStar("m3")
	e.ToggleStarredOnly()
	assert.Equal(t, []int{0}, e.Search().Results)
	assert.Equal(t, models.ID("m3"), e.Visible()[0].ID)
}

// The search snapshot returned by Engine.Search is readable directly,
// without storing it in a variable first.
func TestSearchSnapshotReads(t *testing.T) {
	e := engineWithThread(t)
	gen := e.Select("t1")
	e.ApplyMessages(gen, []models.Message{theirsAt("m1", "aspirin daily", time.Now())}, nil)

	assert.False(t, e.Search().Active())
	assert.Equal(t, -1, e.Search().Current())

	e.SetSearch("aspirin")
	assert.True(t, e.Search().Active())
	assert.Equal(t, 0, e.Search().Current())
}

func TestMarkReadLocally(t *testing.T) {
	e := NewEngine("doc1")
	thread := patientThread("t1", "pat1", "Rosa Diaz", ts("2026-08-01T10:00:00Z"))
	thread.UnreadCount = 4
	e.ApplyThreads([]models.Thread{thread}, nil)

	e.MarkReadLocally("t1")
	assert.Zero(t, e.Threads()[0].UnreadCount)
}

func TestFindThreadByPatient(t *testing.T) {
	e := NewEngine("doc1")
	e.ApplyThreads([]models.Thread{
		patientThread("t1", "pat1", "Rosa Diaz", ts("2026-08-01T10:00:00Z")),
		patientThread("t2", "pat2", "Jake Peralta", ts("2026-08-02T10:00:00Z")),
	}, nil)

	got, ok := e.FindThreadByPatient("pat2")
	require.True(t, ok)
	assert.Equal(t, models.ID("t2"), got.ID)

	got, ok = e.FindThreadByPatient("rosa")
	require.True(t, ok)
	assert.Equal(t, models.ID("t1"), got.ID)

	_, ok = e.FindThreadByPatient("nobody")
	assert.False(t, ok)
	_, ok = e.FindThreadByPatient("  ")
	assert.False(t, ok)
}
