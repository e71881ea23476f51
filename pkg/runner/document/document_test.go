package document

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/engine"
	"tableflip.dev/questlog/pkg/logger"
	"tableflip.dev/questlog/pkg/state"
	"tableflip.dev/questlog/pkg/store"
)

func newService(t *testing.T) *app.Service {
	t.Helper()
	p, err := store.NewLocal(t.TempDir(), logger.Nop())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	e := engine.New(p, engine.WithClock(func() time.Time { return time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC) }))
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return &app.Service{Engine: e}
}

func TestImportThenExport(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	in := strings.NewReader(`{"quests":[{"id":"q1","title":"Essay","course":"Eng","dueDate":"2025-01-12"}],"courses":["Eng"],"categories":["Assignment"]}`)
	imp := Import{Service: svc, Path: Stdio, In: in}
	if err := imp.Do(ctx); err != nil {
		t.Fatalf("Import: %v", err)
	}

	var out bytes.Buffer
	exp := Export{Service: svc, Out: &out}
	if err := exp.Do(ctx); err != nil {
		t.Fatalf("Export: %v", err)
	}
	doc, err := state.DecodeDocument(out.Bytes())
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	if len(doc.Quests) != 1 || doc.Quests[0].ID != "q1" || doc.Quests[0].Title != "Essay" {
		t.Fatalf("unexpected export %+v", doc)
	}
}

func TestImportRejectsMalformed(t *testing.T) {
	svc := newService(t)
	imp := Import{Service: svc, In: strings.NewReader(`{"quests": 7}`)}
	err := imp.Do(context.Background())
	if !errors.Is(err, state.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
}
