package help

import (
	"strings"
	"testing"
)

func TestRendersMarkdown(t *testing.T) {
	m := New("# Keys\n\n- `t` jump to today\n", 60, 12)
	if m.Err() != nil {
		t.Fatalf("unexpected render error: %v", m.Err())
	}
	if out := m.View(); !strings.Contains(out, "jump to today") {
		t.Fatalf("expected help text in view, got:\n%s", out)
	}
}

func TestSizeHasFloor(t *testing.T) {
	m := New("help", 1, 1)
	if m.width != 32 || m.height != 8 {
		t.Fatalf("expected minimum size, got %dx%d", m.width, m.height)
	}
}
