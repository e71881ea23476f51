// Package engine applies planner mutations optimistically. Every change
// lands in local state at once, is persisted in the background, and is
// rolled back if the store refuses it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tableflip.dev/questlog/pkg/logger"
	"tableflip.dev/questlog/pkg/quest"
	"tableflip.dev/questlog/pkg/state"
	"tableflip.dev/questlog/pkg/store"
)

// ErrUnknownQuest is returned for mutations addressing an id that is not in
// the local document.
var ErrUnknownQuest = errors.New("engine: unknown quest")

// Phase is where a mutation stands when an Event is emitted.
type Phase string

const (
	PhaseApplied  Phase = "applied"
	PhaseSaved    Phase = "saved"
	PhaseReverted Phase = "reverted"
	PhaseLoaded   Phase = "loaded"
	PhaseUI       Phase = "ui"
)

// Event tells subscribers the state changed.
type Event struct {
	Mutation string
	Kind     Kind
	Phase    Phase
	QuestID  string
	Err      error
}

// Snapshot is a deep copy of the engine state for read-only views.
type Snapshot struct {
	Doc state.Document
	UI  state.UI
}

const docKey = "doc"

// Engine owns the document and the view state.
type Engine struct {
	store store.Persistence
	log   *logger.Logger
	now   func() time.Time

	mu  sync.Mutex
	doc state.Document
	ui  state.UI

	// seq numbers every local change. docVersion is the seq of the latest
	// change of any kind; floor is the seq of the last full replacement.
	// windows holds the in-flight mutations per record key.
	seq        uint64
	docVersion uint64
	floor      uint64
	windows    map[string]*window

	events chan Event
	wg     sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an engine writing through p.
func New(p store.Persistence, opts ...Option) *Engine {
	e := &Engine{
		store:    p,
		now:      time.Now,
		windows: make(map[string]*window),
		events:  make(chan Event, 64),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = logger.OrNop(e.log).With("component", "engine")
	e.doc = state.Document{}
	e.doc.EnsureDefaults()
	e.ui = state.NewUI(e.now())
	return e
}

// Events exposes change notifications. Sends never block; a slow consumer
// misses intermediate events but can always read a fresh Snapshot.
func (e *Engine) Events() <-chan Event {
	return e.events
}

func (e *Engine) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
	}
}

// Snapshot returns a deep copy of the current document and view state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{Doc: e.doc.Clone(), UI: e.ui.Clone()}
}

// Now is the engine's clock.
func (e *Engine) Now() time.Time {
	return e.now()
}

// UI runs fn with exclusive access to the view state.
func (e *Engine) UI(fn func(ui *state.UI)) {
	e.mu.Lock()
	fn(&e.ui)
	e.mu.Unlock()
	e.emit(Event{Phase: PhaseUI})
}

// Wait blocks until every in-flight mutation has resolved.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Load replaces local state with the store's document.
func (e *Engine) Load(ctx context.Context) error {
	doc, err := e.store.LoadAll(ctx)
	if err != nil {
		e.UI(func(ui *state.UI) { ui.SetStatus("Could not load quests.") })
		return fmt.Errorf("engine: load: %w", err)
	}
	doc.EnsureDefaults()

	e.mu.Lock()
	e.doc = doc
	e.seq++
	e.floor = e.seq
	e.docVersion = e.seq
	e.mu.Unlock()

	e.log.Debug("loaded", "quests", len(doc.Quests))
	e.emit(Event{Phase: PhaseLoaded})
	return nil
}

// Watch reloads whenever the store reports a change, until ctx is done.
func (e *Engine) Watch(ctx context.Context) error {
	ch, err := e.store.Watch(ctx)
	if err != nil {
		return fmt.Errorf("engine: watch: %w", err)
	}
	go func() {
		for range ch {
			if err := e.Load(ctx); err != nil && ctx.Err() == nil {
				e.log.Warn("reload after change", "error", err)
			}
		}
	}()
	return nil
}

// window is the set of mutations in flight on one record key. Failures
// are settled once the last of them resolves: confirm puts the record back
// to the newest value the store is known to hold.
type window struct {
	pending int
	since   uint64
	latest  uint64
	settled uint64
	confirm func()
	failed  bool
}

// beginLocked opens or joins the window for key. revert undoes the change
// the caller has just applied; it becomes the window's confirm step when
// the window is new. The caller holds e.mu.
func (e *Engine) beginLocked(key string, revert func()) uint64 {
	e.seq++
	e.docVersion = e.seq
	w := e.windows[key]
	if w == nil {
		w = &window{since: e.seq, confirm: revert}
		e.windows[key] = w
	}
	w.pending++
	w.latest = e.seq
	return e.seq
}

// restorableLocked reports whether a failed window may still write its
// confirmed value. A full reload since the window opened already holds the
// store's value; a failed import only rolls back while nothing else moved.
func (e *Engine) restorableLocked(key string, w *window) bool {
	if key == docKey {
		return e.docVersion == w.latest
	}
	return e.floor < w.since
}

// mutation is one optimistic change in flight.
type mutation struct {
	ticket  *Ticket
	key     string
	version uint64
	persist func(ctx context.Context) error
	// apply writes the value this mutation saved. It reconciles the record
	// on success and later serves as the window's confirm step.
	apply func()
	// committed runs after every successful save.
	committed func()
	// result is the record the ticket resolves with; nil looks it up.
	result  func() quest.Quest
	success string
	failure string
}

// run persists m in the background and settles its window.
func (e *Engine) run(ctx context.Context, m mutation) {
	e.emit(Event{Mutation: m.ticket.ID, Kind: m.ticket.Kind, Phase: PhaseApplied, QuestID: m.ticket.Quest.ID})

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		err := m.persist(ctx)

		e.mu.Lock()
		w := e.windows[m.key]
		// The saved value is written back unless a later local change to
		// the same record is pending. A reload in between does not count:
		// the store has just confirmed this value.
		newest := m.version == w.latest
		if m.key == docKey {
			newest = newest && e.docVersion == m.version
		}
		w.pending--

		saved := m.ticket.Quest
		if err != nil {
			w.failed = true
			e.ui.SetStatus(m.failure)
		} else {
			if m.apply != nil && m.version > w.settled {
				w.settled = m.version
				w.confirm = m.apply
			}
			if newest && m.apply != nil {
				m.apply()
			}
			if m.committed != nil {
				m.committed()
			}
			if m.result != nil {
				saved = m.result()
			} else if q, ok := e.doc.Find(m.ticket.Quest.ID); ok && m.ticket.Quest.ID != "" {
				saved = q
			}
			e.ui.SetStatus(m.success)
		}

		reverted := false
		if w.pending == 0 {
			delete(e.windows, m.key)
			if w.failed && w.confirm != nil && e.restorableLocked(m.key, w) {
				w.confirm()
				reverted = true
			}
		}
		e.mu.Unlock()

		if err != nil {
			e.log.Warn("mutation failed", "kind", m.ticket.Kind, "mutation", m.ticket.ID, "error", err, "reverted", reverted)
			e.emit(Event{Mutation: m.ticket.ID, Kind: m.ticket.Kind, Phase: PhaseReverted, QuestID: m.ticket.Quest.ID, Err: err})
			m.ticket.finish(quest.Quest{}, err)
			return
		}
		if reverted {
			e.emit(Event{Mutation: m.ticket.ID, Kind: m.ticket.Kind, Phase: PhaseReverted, QuestID: m.ticket.Quest.ID})
		}
		e.emit(Event{Mutation: m.ticket.ID, Kind: m.ticket.Kind, Phase: PhaseSaved, QuestID: saved.ID})
		m.ticket.finish(saved, nil)
	}()
}

// putLocked replaces the quest with q's id, or inserts q at index at.
func (e *Engine) putLocked(q quest.Quest, at int) {
	if i := e.doc.IndexOf(q.ID); i >= 0 {
		e.doc.Quests[i] = q.Clone()
		return
	}
	at = min(max(at, 0), len(e.doc.Quests))
	e.doc.Quests = append(e.doc.Quests[:at:at], append([]quest.Quest{q.Clone()}, e.doc.Quests[at:]...)...)
}

// dropLocked removes the quest with id if present.
func (e *Engine) dropLocked(id string) {
	if i := e.doc.IndexOf(id); i >= 0 {
		e.doc.Quests = append(e.doc.Quests[:i:i], e.doc.Quests[i+1:]...)
	}
}
