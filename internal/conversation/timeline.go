package conversation

import (
	"time"

	"github.com/sovahealth/courier/internal/models"
)

type EntryKind int

const (
	EntrySeparator EntryKind = iota
	EntryMessage
)

// Entry is one element of the render sequence for a message feed: either
// a day separator or a message annotated with its grouping boundaries.
type Entry struct {
	Kind         EntryKind
	Label        string
	Message      models.Message
	FirstInGroup bool
	LastInGroup  bool
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

func dayLabel(t time.Time) string {
	now := time.Now()
	switch {
	case sameDay(t, now):
		return "Today"
	case sameDay(t, now.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return t.Local().Format("Monday, January 2, 2006")
	}
}

// BuildTimeline turns an ordered message list into render entries. A
// separator precedes the first message of each new local calendar day.
// Grouping boundaries depend only on sender identity and calendar day:
// a message opens a group when the sender or the day changed, and closes
// one when the next message changes either, so same-sender same-day runs
// always group regardless of elapsed time. Callers that filter the list
// (starred-only) do so before calling, so groups reflect adjacency in
// the filtered view.
func BuildTimeline(msgs []models.Message) []Entry {
	entries := make([]Entry, 0, len(msgs)+4)
	for i, m := range msgs {
		newDay := i == 0 || !sameDay(msgs[i-1].SentAt, m.SentAt)
		if newDay {
			entries = append(entries, Entry{Kind: EntrySeparator, Label: dayLabel(m.SentAt)})
		}

		first := newDay || msgs[i-1].IsMine != m.IsMine
		last := i == len(msgs)-1 ||
			msgs[i+1].IsMine != m.IsMine ||
			!sameDay(m.SentAt, msgs[i+1].SentAt)

		entries = append(entries, Entry{
			Kind:         EntryMessage,
			Message:      m,
			FirstInGroup: first,
			LastInGroup:  last,
		})
	}
	return entries
}
