package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventQuestChanged indicates a single quest was written or removed.
	EventQuestChanged EventType = iota

	// EventMetaChanged indicates the course or category set changed.
	EventMetaChanged

	// EventInvalidated signals that callers should reload everything.
	EventInvalidated
)

func (t EventType) String() string {
	switch t {
	case EventQuestChanged:
		return "quest"
	case EventMetaChanged:
		return "meta"
	default:
		return "invalidated"
	}
}

// Event is emitted by Persistence.Watch when underlying storage changes.
type Event struct {
	Type EventType `json:"type"`
	// ID is the quest id for EventQuestChanged, or the meta set name.
	ID string `json:"id,omitempty"`
}

// watchDelay is how long the watcher collects writes before emitting them.
const watchDelay = 100 * time.Millisecond

// Watch streams change events until ctx is cancelled. Writes that land
// within watchDelay of each other are delivered as one batch with
// duplicates removed. Events the consumer is not ready for are dropped.
func (p *Local) Watch(ctx context.Context) (<-chan Event, error) {
	dirs := []string{p.basePath, filepath.Join(p.basePath, questsDir), filepath.Join(p.basePath, metaDir)}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: ensure %s: %w", dir, err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 64)
	go func() {
		defer close(events)
		defer func() {
			if err := watcher.Close(); err != nil {
				p.log.Warn("watcher close", "error", err)
			}
		}()

		var (
			batch = batcher{}
			flush <-chan time.Time
		)
		add := func(ev Event) {
			batch.add(ev)
			if flush == nil {
				flush = time.After(watchDelay)
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				p.log.Debug("watcher error", "error", err)
				add(Event{Type: EventInvalidated})
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&fsnotify.Chmod == evt.Op {
					continue
				}
				add(p.eventForPath(evt.Name))
			case <-flush:
				flush = nil
				for _, ev := range batch.drain() {
					select {
					case events <- ev:
					default:
					}
				}
			}
		}
	}()

	return events, nil
}

// eventForPath classifies a diskv file path.
func (p *Local) eventForPath(path string) Event {
	rel, err := filepath.Rel(p.basePath, path)
	if err != nil || rel == "." {
		return Event{Type: EventInvalidated}
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	if len(parts) != 2 {
		return Event{Type: EventInvalidated}
	}
	switch parts[0] {
	case questsDir:
		return Event{Type: EventQuestChanged, ID: fromID(parts[1])}
	case metaDir:
		return Event{Type: EventMetaChanged, ID: parts[1]}
	}
	return Event{Type: EventInvalidated}
}

// batcher collects distinct events in arrival order. An invalidation
// swallows everything else in the batch.
type batcher struct {
	seen  map[Event]bool
	order []Event
}

func (b *batcher) add(ev Event) {
	if b.seen == nil {
		b.seen = make(map[Event]bool)
	}
	if b.seen[ev] {
		return
	}
	b.seen[ev] = true
	b.order = append(b.order, ev)
}

func (b *batcher) drain() []Event {
	out := b.order
	if b.seen[Event{Type: EventInvalidated}] {
		out = []Event{{Type: EventInvalidated}}
	}
	b.seen, b.order = nil, nil
	return out
}
