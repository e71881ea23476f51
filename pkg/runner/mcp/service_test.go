package mcp

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/engine"
	"tableflip.dev/questlog/pkg/logger"
	"tableflip.dev/questlog/pkg/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	p, err := store.NewLocal(t.TempDir(), logger.Nop())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	e := engine.New(p, engine.WithClock(func() time.Time { return now }))
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return NewService(&app.Service{Engine: e})
}

func TestServiceCreateQuestDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	dto, err := svc.CreateQuest(ctx, app.AddOptions{Title: "Problem set", Course: "Math", Category: "Assignment", DueDate: "2025-01-09"})
	if err != nil {
		t.Fatalf("CreateQuest failed: %v", err)
	}
	if dto.ID == "" {
		t.Fatalf("expected generated id")
	}
	if dto.Kind != "assignments" {
		t.Fatalf("expected assignments kind, got %s", dto.Kind)
	}
	if !dto.Overdue || !strings.HasSuffix(dto.DueLabel, "1 day overdue") {
		t.Fatalf("expected overdue quest, got %+v", dto)
	}
}

func TestServiceCompleteQuest(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	dto, err := svc.CreateQuest(ctx, app.AddOptions{Title: "Read chapter 3", DueDate: "2025-01-10"})
	if err != nil {
		t.Fatalf("CreateQuest failed: %v", err)
	}

	done, err := svc.SetDone(ctx, dto.ID, true)
	if err != nil {
		t.Fatalf("SetDone failed: %v", err)
	}
	if !done.Done || done.Completion != 100 || done.CompletedAt == "" {
		t.Fatalf("expected quest to be completed, got %+v", done)
	}

	list, err := svc.ListQuests(ctx, ListOptions{Status: "completed"})
	if err != nil {
		t.Fatalf("ListQuests failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != dto.ID {
		t.Fatalf("expected completed quest in list, got %+v", list)
	}
}

func TestServiceDayAndLabels(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for _, title := range []string{"Quiz", "Lab"} {
		if _, err := svc.CreateQuest(ctx, app.AddOptions{Title: title, Course: "Bio", DueDate: "2025-01-10", EstMinutes: 45}); err != nil {
			t.Fatalf("CreateQuest failed: %v", err)
		}
	}

	day, err := svc.Day(ctx, "", "")
	if err != nil {
		t.Fatalf("Day failed: %v", err)
	}
	if day.Date != "2025-01-10" || day.Stats.Count != 2 || day.Stats.EstimatedHours != 1.5 {
		t.Fatalf("unexpected day summary %+v", day)
	}

	labels, err := svc.Labels(ctx, app.Courses)
	if err != nil {
		t.Fatalf("Labels failed: %v", err)
	}
	found := false
	for _, l := range labels {
		if l.Name == "Bio" {
			found = l.Quests == 2 && l.Color != ""
		}
	}
	if !found {
		t.Fatalf("expected Bio course with two quests, got %+v", labels)
	}

	if _, err := svc.ListQuests(ctx, ListOptions{Sort: "alphabetical"}); err == nil {
		t.Fatalf("expected unknown sort error")
	}
}

func TestTemplateArg(t *testing.T) {
	if got := templateArg(map[string]any{"id": "a"}, "id"); got != "a" {
		t.Fatalf("string arg = %q", got)
	}
	if got := templateArg(map[string]any{"id": []string{"b"}}, "id"); got != "b" {
		t.Fatalf("list arg = %q", got)
	}
	if got := templateArg(nil, "id"); got != "" {
		t.Fatalf("missing arg = %q", got)
	}
}

func TestRunnerRequiresService(t *testing.T) {
	if err := (Runner{}).Do(context.Background()); err == nil {
		t.Fatalf("expected error without a service")
	}
}

func TestParseTransport(t *testing.T) {
	if tr, err := ParseTransport(""); err != nil || tr != TransportStdio {
		t.Fatalf("empty transport = %q, %v", tr, err)
	}
	if tr, err := ParseTransport(" HTTP "); err != nil || tr != TransportHTTP {
		t.Fatalf("http transport = %q, %v", tr, err)
	}
	if _, err := ParseTransport("carrier-pigeon"); err == nil {
		t.Fatalf("expected error for unknown transport")
	}
}

func TestListenURL(t *testing.T) {
	got := listenURL(&net.TCPAddr{IP: net.IPv4zero, Port: 4242}, false, "/mcp")
	if got != "http://127.0.0.1:4242/mcp" {
		t.Fatalf("wildcard url = %q", got)
	}
	got = listenURL(&net.TCPAddr{IP: net.ParseIP("::1"), Port: 443}, true, "/q")
	if got != "https://[::1]:443/q" {
		t.Fatalf("ipv6 url = %q", got)
	}
}
