package engine

import (
	"context"

	"tableflip.dev/questlog/pkg/quest"
)

// Kind names a mutation.
type Kind string

const (
	KindAddQuest       Kind = "add-quest"
	KindUpdateQuest    Kind = "update-quest"
	KindRemoveQuest    Kind = "remove-quest"
	KindAddCourse      Kind = "add-course"
	KindRemoveCourse   Kind = "remove-course"
	KindAddCategory    Kind = "add-category"
	KindRemoveCategory Kind = "remove-category"
	KindImport         Kind = "import"
)

// Ticket tracks one optimistic mutation until its persistence resolves.
type Ticket struct {
	// ID is the mutation id.
	ID   string
	Kind Kind
	// Quest is the record as applied locally, when the mutation has one.
	Quest quest.Quest

	done  chan struct{}
	saved quest.Quest
	err   error
}

func newTicket(id string, kind Kind, q quest.Quest) *Ticket {
	return &Ticket{ID: id, Kind: kind, Quest: q, done: make(chan struct{})}
}

// resolved returns a ticket that needed no persistence.
func resolved(id string, kind Kind, q quest.Quest, err error) *Ticket {
	t := newTicket(id, kind, q)
	t.finish(q, err)
	return t
}

func (t *Ticket) finish(saved quest.Quest, err error) {
	t.saved = saved
	t.err = err
	close(t.done)
}

// Done is closed once the mutation is saved or rolled back.
func (t *Ticket) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the mutation resolves and returns the saved record, or
// the persistence error that caused the rollback.
func (t *Ticket) Wait(ctx context.Context) (quest.Quest, error) {
	select {
	case <-t.done:
		return t.saved, t.err
	case <-ctx.Done():
		return quest.Quest{}, ctx.Err()
	}
}
