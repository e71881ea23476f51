package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"tableflip.dev/questlog/pkg/quest"
)

func newTestRemote(t *testing.T) *Remote {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := NewRemote(context.Background(), RemoteOptions{Addr: mr.Addr(), Prefix: "test", User: "ada"}, nil)
	if err != nil {
		t.Fatalf("new remote: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRemoteContract(t *testing.T) {
	exercise(t, newTestRemote(t))
}

func TestRemoteKeyspace(t *testing.T) {
	r := newTestRemote(t)
	if r.questsKey != "test:ada:quests" || r.channel != "test:ada:changed" {
		t.Fatalf("unexpected keys %q %q", r.questsKey, r.channel)
	}
}

func TestRemoteWatch(t *testing.T) {
	r := newTestRemote(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := r.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if _, err := r.AddQuest(ctx, quest.Normalize(map[string]any{"id": "q1"})); err != nil {
		t.Fatalf("add: %v", err)
	}

	select {
	case ev := <-ch:
		if ev.Type != EventQuestChanged || ev.ID != "q1" {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestRemoteRejectsEmptyAddress(t *testing.T) {
	if _, err := NewRemote(context.Background(), RemoteOptions{}, nil); err == nil {
		t.Fatalf("expected an error without an address")
	}
}
