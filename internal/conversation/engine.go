package conversation

import (
	"strings"

	"github.com/sovahealth/courier/internal/identity"
	"github.com/sovahealth/courier/internal/models"
)

// OpState is the lifecycle of one asynchronous concern. Each concern
// (thread list, message list, send, edit/delete) carries its own state
// instead of sharing loose flags.
type OpState int

const (
	OpIdle OpState = iota
	OpLoading
	OpError
	OpReady
)

// Engine owns the reconciled messaging state for the doctor view: the
// raw thread list as last fetched, the active thread's canonical message
// list, the display-name cache, and the client-local starred set. The
// portal is the source of truth; the engine is refreshed by polling and
// by confirmed writes, and local state is eventually consistent with it.
//
// The starred set is session-scoped on purpose: it has no backend
// persistence and is lost on exit.
//
// The engine is driven from the single UI update loop and is not
// goroutine-safe. Async results are handed back through the Apply*
// methods, which discard anything from a superseded generation: every
// thread selection bumps the generation, and fetches capture the value
// current when they start.
type Engine struct {
	myID  models.ID
	names *identity.NameCache

	threads []models.Thread
	query   string

	active   models.ID
	gen      uint64
	messages []models.Message
	pending  map[models.ID]bool

	starred     map[models.ID]bool
	starredOnly bool
	search      SearchState

	threadState  OpState
	messageState OpState
	sendState    OpState
	mutateState  OpState

	threadErr  error
	messageErr error
	sendErr    error
	mutateErr  error
}

func NewEngine(myID models.ID) *Engine {
	return &Engine{
		myID:    myID,
		names:   identity.NewNameCache(),
		pending: make(map[models.ID]bool),
		starred: make(map[models.ID]bool),
	}
}

func (e *Engine) MyID() models.ID            { return e.myID }
func (e *Engine) Names() *identity.NameCache { return e.names }

// --- thread list ---

func (e *Engine) BeginThreadLoad() {
	e.threadState = OpLoading
}

// ApplyThreads replaces the raw thread list wholesale and enriches the
// name cache from whatever resolved. On failure the previous known-good
// list stays displayed.
func (e *Engine) ApplyThreads(threads []models.Thread, err error) {
	if err != nil {
		e.threadState = OpError
		e.threadErr = err
		return
	}
	e.threads = threads
	e.threadState = OpReady
	e.threadErr = nil
	for _, t := range threads {
		if res, ok := identity.Resolve(t, e.myID); ok {
			e.names.Put(t.ID, res.DisplayName)
		}
	}
}

func (e *Engine) ThreadState() (OpState, error) {
	return e.threadState, e.threadErr
}

func (e *Engine) SetQuery(q string) { e.query = q }
func (e *Engine) Query() string     { return e.query }

// Threads returns the deduplicated, filtered, recency-sorted rows.
func (e *Engine) Threads() []models.Thread {
	return DedupeThreads(e.threads, e.query, e.names, e.myID)
}

// DisplayName resolves a thread's row title, caching successes. The
// placeholder substitution happens here, once, at the render boundary.
func (e *Engine) DisplayName(t models.Thread) string {
	name := resolvedName(t, e.names, e.myID)
	if name == "" {
		return identity.Placeholder
	}
	e.names.Put(t.ID, name)
	return name
}

// MarkReadLocally zeroes the unread count the moment mark-read is
// called; the backend response does not matter.
func (e *Engine) MarkReadLocally(threadID models.ID) {
	for i := range e.threads {
		if e.threads[i].ID == threadID {
			e.threads[i].UnreadCount = 0
		}
	}
}

// --- selection ---

// Select makes a thread active: transient search/filter state and any
// pending edit tracking are cleared, the generation is bumped so late
// results for the previous selection get dropped, and the caller is
// expected to fetch immediately with the returned generation.
func (e *Engine) Select(threadID models.ID) uint64 {
	e.active = threadID
	e.gen++
	e.messages = nil
	e.pending = make(map[models.ID]bool)
	e.search.Clear()
	e.starredOnly = false
	e.messageState = OpLoading
	e.sendState = OpIdle
	e.mutateState = OpIdle
	e.sendErr, e.mutateErr, e.messageErr = nil, nil, nil
	return e.gen
}

// Deselect returns to the idle state (no thread, no polling).
func (e *Engine) Deselect() {
	e.Select("")
	e.messageState = OpIdle
}

func (e *Engine) Active() models.ID  { return e.active }
func (e *Engine) Generation() uint64 { return e.gen }

// --- message list ---

// ApplyMessages installs a fetched message list, unless gen is stale.
// The list replaces local state wholesale except for messages with an
// in-flight edit or delete, whose local copy wins until the server
// confirms or rejects. Reports whether the result was applied.
func (e *Engine) ApplyMessages(gen uint64, msgs []models.Message, err error) bool {
	if gen != e.gen {
		return false
	}
	if err != nil {
		e.messageState = OpError
		e.messageErr = err
		return true
	}
	if len(e.pending) > 0 {
		local := make(map[models.ID]models.Message, len(e.pending))
		for _, m := range e.messages {
			if e.pending[m.ID] {
				local[m.ID] = m
			}
		}
		for i, m := range msgs {
			if kept, ok := local[m.ID]; ok {
				msgs[i] = kept
			}
		}
	}
	e.messages = msgs
	e.messageState = OpReady
	e.messageErr = nil
	e.refreshSearch()
	return true
}

func (e *Engine) MessageState() (OpState, error) {
	return e.messageState, e.messageErr
}

// Messages is the canonical (unfiltered) list for the active thread.
func (e *Engine) Messages() []models.Message {
	return e.messages
}

// Visible applies the starred-only filter to the canonical list without
// mutating it.
func (e *Engine) Visible() []models.Message {
	if !e.starredOnly {
		return e.messages
	}
	var out []models.Message
	for _, m := range e.messages {
		if e.starred[m.ID] {
			out = append(out, m)
		}
	}
	return out
}

// Timeline builds the render sequence for the current view; grouping is
// computed over the filtered list so groups reflect visible adjacency.
func (e *Engine) Timeline() []Entry {
	return BuildTimeline(e.Visible())
}

// --- send / edit / delete (confirmed writes) ---

func (e *Engine) BeginSend() {
	e.sendState = OpLoading
	e.sendErr = nil
}

// ApplySend lands a confirmed send: the created record is appended and
// the active thread's snippet and timestamp are advanced so the row
// reorders before the next poll. A failure leaves prior state untouched.
func (e *Engine) ApplySend(msg *models.Message, err error) {
	if err != nil || msg == nil {
		e.sendState = OpError
		e.sendErr = err
		return
	}
	e.sendState = OpReady
	e.messages = append(e.messages, *msg)
	e.touchThread(*msg)
	e.refreshSearch()
}

func (e *Engine) SendState() (OpState, error) {
	return e.sendState, e.sendErr
}

// BeginMutation marks a message as having an in-flight edit or delete so
// a concurrent poll cannot clobber it mid-round-trip.
func (e *Engine) BeginMutation(messageID models.ID) {
	e.pending[messageID] = true
	e.mutateState = OpLoading
	e.mutateErr = nil
}

// ApplyMutation lands a confirmed edit or delete. The returned record
// replaces the local copy by id match, in place; a tombstone keeps its
// position. Never appends.
func (e *Engine) ApplyMutation(messageID models.ID, msg *models.Message, err error) {
	delete(e.pending, messageID)
	if err != nil || msg == nil {
		e.mutateState = OpError
		e.mutateErr = err
		return
	}
	e.mutateState = OpReady
	for i := range e.messages {
		if e.messages[i].ID == msg.ID {
			e.messages[i] = *msg
			break
		}
	}
	e.refreshSearch()
}

func (e *Engine) MutateState() (OpState, error) {
	return e.mutateState, e.mutateErr
}

func (e *Engine) touchThread(msg models.Message) {
	for i := range e.threads {
		if e.threads[i].ID == e.active {
			sentAt := msg.SentAt
			e.threads[i].LastMessageSnippet = msg.Body
			e.threads[i].LastMessageAt = &sentAt
		}
	}
}

// --- stars and search ---

func (e *Engine) ToggleStar(messageID models.ID) {
	if messageID == "" {
		return
	}
	if e.starred[messageID] {
		delete(e.starred, messageID)
	} else {
		e.starred[messageID] = true
	}
	e.refreshSearch()
}

func (e *Engine) Starred(messageID models.ID) bool {
	return e.starred[messageID]
}

func (e *Engine) ToggleStarredOnly() {
	e.starredOnly = !e.starredOnly
	e.refreshSearch()
}

func (e *Engine) StarredOnly() bool { return e.starredOnly }

func (e *Engine) SetSearch(query string) {
	e.search.Set(query, e.Visible())
}

func (e *Engine) ClearSearch()        { e.search.Clear() }
func (e *Engine) SearchNext()         { e.search.Next() }
func (e *Engine) SearchPrev()         { e.search.Prev() }
func (e *Engine) Search() SearchState { return e.search }

func (e *Engine) refreshSearch() {
	if e.search.Active() {
		e.search.Set(e.search.Query, e.Visible())
	}
}

// --- compose ---

// FindThreadByPatient locates an existing conversation for a patient
// name or id. The portal has no create-thread primitive, so composing to
// a patient with no thread must fail with guidance instead.
func (e *Engine) FindThreadByPatient(target string) (models.Thread, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return models.Thread{}, false
	}
	lowered := strings.ToLower(target)
	for _, t := range DedupeThreads(e.threads, "", e.names, e.myID) {
		res, ok := identity.Resolve(t, e.myID)
		if ok && string(res.CounterpartID) == target {
			return t, true
		}
		name := e.DisplayName(t)
		if name != identity.Placeholder && strings.Contains(strings.ToLower(name), lowered) {
			return t, true
		}
	}
	return models.Thread{}, false
}
