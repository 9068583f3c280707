package conversation

import (
	"strings"

	"github.com/sovahealth/courier/internal/models"
)

// SearchMessages returns the indices of messages whose body contains the
// query, case-insensitively. Bodies are matched as-is and never mutated;
// highlighting is the renderer's job. Tombstoned messages are not
// searchable. An empty query matches nothing.
func SearchMessages(msgs []models.Message, query string) []int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var hits []int
	for i, m := range msgs {
		if m.Deleted {
			continue
		}
		if strings.Contains(strings.ToLower(m.Body), q) {
			hits = append(hits, i)
		}
	}
	return hits
}

// SearchState tracks an in-thread body search: the query, the matching
// message indices, and which result currently has focus. Cycling wraps
// in both directions.
type SearchState struct {
	Query   string
	Results []int
	Focused int
}

func (s SearchState) Active() bool {
	return s.Query != ""
}

// Set recomputes the result list for a new query against the given
// (already filtered) message view.
func (s *SearchState) Set(query string, msgs []models.Message) {
	s.Query = query
	s.Results = SearchMessages(msgs, query)
	s.Focused = 0
}

func (s *SearchState) Clear() {
	*s = SearchState{}
}

// Current returns the message index of the focused result, or -1.
func (s SearchState) Current() int {
	if len(s.Results) == 0 {
		return -1
	}
	return s.Results[s.Focused]
}

func (s *SearchState) Next() {
	if len(s.Results) == 0 {
		return
	}
	s.Focused = (s.Focused + 1) % len(s.Results)
}

func (s *SearchState) Prev() {
	if len(s.Results) == 0 {
		return
	}
	s.Focused = (s.Focused - 1 + len(s.Results)) % len(s.Results)
}
