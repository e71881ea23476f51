package prompt

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestResolveDate(t *testing.T) {
	now := time.Date(2025, 1, 31, 22, 0, 0, 0, time.UTC)
	tests := map[string]struct {
		in   string
		want string
		ok   bool
	}{
		"empty":    {in: "", want: "", ok: true},
		"today":    {in: "Today", want: "2025-01-31", ok: true},
		"tomorrow": {in: "tomorrow", want: "2025-02-01", ok: true},
		"iso":      {in: "2025-03-04", want: "2025-03-04", ok: true},
		"junk":     {in: "someday", ok: false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := ResolveDate(tc.in, now)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("ResolveDate(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestPickQuestEmpty(t *testing.T) {
	_, err := PickQuest(&bytes.Buffer{}, &bytes.Buffer{}, "Quest", nil, time.Now())
	if !errors.Is(err, ErrNoQuests) {
		t.Fatalf("expected ErrNoQuests, got %v", err)
	}
}
