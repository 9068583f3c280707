package conversation

import (
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/sovahealth/courier/internal/identity"
	"github.com/sovahealth/courier/internal/models"
)

// LastActivity resolves a thread's most recent activity, checking
// timestamp fields in priority order: the explicit last-message
// timestamp, last-activity, updated-at, then the embedded last message's
// own sent time. ok is false when none is set.
func LastActivity(t models.Thread) (time.Time, bool) {
	for _, ts := range []*time.Time{t.LastMessageAt, t.LastActivityAt, t.UpdatedAt} {
		if ts != nil && !ts.IsZero() {
			return *ts, true
		}
	}
	if t.LastMessage != nil && !t.LastMessage.SentAt.IsZero() {
		return t.LastMessage.SentAt, true
	}
	return time.Time{}, false
}

// Snippet is the preview text for a thread row.
func Snippet(t models.Thread) string {
	if t.LastMessageSnippet != "" {
		return t.LastMessageSnippet
	}
	if t.LastMessage != nil {
		return t.LastMessage.Body
	}
	return ""
}

// DedupKey derives the string under which thread records merge. Tiers:
// the resolved counterpart id, the resolved counterpart name, a cached
// name from an earlier resolution, and finally the thread's own id so a
// record with zero resolvable identity still appears.
func DedupKey(t models.Thread, names *identity.NameCache, myID models.ID) string {
	res, ok := identity.Resolve(t, myID)
	if ok && res.CounterpartID != "" {
		return "user:" + string(res.CounterpartID)
	}
	if ok && res.DisplayName != "" {
		return "name:" + strings.ToLower(res.DisplayName)
	}
	if name, cached := names.Get(t.ID); cached {
		return "name:" + strings.ToLower(name)
	}
	return "id:" + string(t.ID)
}

func resolvedName(t models.Thread, names *identity.NameCache, myID models.ID) string {
	if name, ok := names.Get(t.ID); ok {
		return name
	}
	res, ok := identity.Resolve(t, myID)
	if !ok {
		return ""
	}
	return res.DisplayName
}

// matchesSearch decides whether a raw thread record survives the query.
// The name field matches by character subsequence, like list filtering,
// so "cardi" finds "Carl Diaz"; snippet and subject match by plain
// substring.
func matchesSearch(t models.Thread, name, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if name != "" && len(fuzzy.Find(q, []string{name})) > 0 {
		return true
	}
	for _, field := range []string{Snippet(t), t.Subject} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// DedupeThreads filters the raw thread list by the search query, merges
// records that refer to the same counterpart, and sorts the result by
// recency (threads without any derivable timestamp come last, keeping
// their relative order).
//
// The filter runs on the raw rows before the merge, so a query can
// surface any underlying record of a merged row; which record then wins
// the merge depends on what matched. That ordering is preserved from the
// original product behavior.
//
// Merge rule: the side with the more recent last activity wins; a side
// with any timestamp beats one with none; with no timestamps at all the
// first record encountered stays.
func DedupeThreads(raw []models.Thread, query string, names *identity.NameCache, myID models.ID) []models.Thread {
	type slot struct {
		t     models.Thread
		at    time.Time
		hasAt bool
	}

	var order []string
	byKey := make(map[string]*slot, len(raw))

	for _, t := range raw {
		name := resolvedName(t, names, myID)
		if !matchesSearch(t, name, query) {
			continue
		}

		key := DedupKey(t, names, myID)
		at, hasAt := LastActivity(t)

		existing, ok := byKey[key]
		if !ok {
			byKey[key] = &slot{t: t, at: at, hasAt: hasAt}
			order = append(order, key)
			continue
		}
		if hasAt && (!existing.hasAt || at.After(existing.at)) {
			existing.t, existing.at, existing.hasAt = t, at, true
		}
	}

	out := make([]models.Thread, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key].t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, iok := LastActivity(out[i])
		tj, jok := LastActivity(out[j])
		if iok != jok {
			return iok
		}
		if !iok {
			return false
		}
		return ti.After(tj)
	})
	return out
}
