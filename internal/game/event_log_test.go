package game

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestEventLog_FilterAndLookup(t *testing.T) {
	el := NewEventLog(false)
	el.Add(1, "U0", CatState, "change", "idle → moving (order move)", 0)
	el.Add(2, "U0", CatAttack, "hit", "S1 -2 (hp 98)", 2)
	el.Add(3, "U1", CatAttack, "hit", "S1 -2 (hp 96)", 2)
	el.AddVerbose(3, "U1", "move", "position", "(1,1)", 0)

	if el.Len() != 3 {
		t.Fatalf("verbose entry recorded with verbose off: %d entries", el.Len())
	}
	if n := el.CountCategory(CatAttack, "hit"); n != 2 {
		t.Fatalf("expected 2 hits, got %d", n)
	}
	if n := len(el.FilterActor("U0")); n != 2 {
		t.Fatalf("expected 2 entries for U0, got %d", n)
	}
	if n := len(el.FilterTickRange(2, 3)); n != 2 {
		t.Fatalf("expected 2 entries in ticks 2..3, got %d", n)
	}
	last, ok := el.LastOf(CatAttack, "hit")
	if !ok || last.Actor != "U1" {
		t.Fatalf("expected last hit by U1, got %+v", last)
	}
	if !el.HasEntry(CatState, "", "order move") || el.HasEntry(CatState, "", "flee") {
		t.Fatal("HasEntry substring match is wrong")
	}
	if r := el.Recent(2); len(r) != 2 || r[0].Tick != 2 {
		t.Fatalf("Recent(2) returned %+v", r)
	}
	if r := el.Recent(10); len(r) != 3 {
		t.Fatalf("Recent beyond length should return all, got %d", len(r))
	}
}

func TestEventEntry_String(t *testing.T) {
	e := EventEntry{Tick: 42, Actor: "U3", Category: CatState, Key: "change", Value: "idle → attacking"}
	got := e.String()
	if !strings.HasPrefix(got, "[T=042] U3     state") || !strings.HasSuffix(got, "idle → attacking") {
		t.Fatalf("unexpected format: %q", got)
	}
	el := NewEventLog(true)
	el.Add(5, "S0", CatWorld, "wall_down", "(5,2)", 0)
	if !strings.Contains(el.FormatRange(0, 9), "wall_down") || el.FormatRange(6, 9) != "" {
		t.Fatal("FormatRange did not filter by tick")
	}
}

func TestEventLog_MirrorsToLogrus(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	el := NewEventLog(false)
	el.Mirror(logger)
	el.Add(7, "U2", CatFlee, "start", "from S0", 260)

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a mirrored logrus entry")
	}
	if entry.Message != "from S0" || entry.Level != logrus.DebugLevel {
		t.Fatalf("unexpected entry %q at %s", entry.Message, entry.Level)
	}
	if entry.Data["actor"] != "U2" || entry.Data["tick"] != 7 || entry.Data["category"] != CatFlee {
		t.Fatalf("missing fields: %v", entry.Data)
	}
}

func TestEventLog_Summary(t *testing.T) {
	ts := NewTestSim(WithCaster(Cell{1, 1}), WithWall(Cell{4, 4}), WithUnit("larva", Cell{2, 2}))
	ts.RunTicks(2)
	ts.Structure(0).NoteAttacker(0)
	s := ts.Log.Summary(ts.World)
	for _, want := range []string{"T=002", "idle=1", "walls=1", "mana=", "Engaged: S0<-U0"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestEventLog_BoundedRing(t *testing.T) {
	el := NewBoundedEventLog(false, 3)
	for i := 1; i <= 5; i++ {
		el.Add(i, "U0", CatState, "change", "", 0)
	}
	if el.Len() != 3 || el.Dropped() != 2 {
		t.Fatalf("len=%d dropped=%d, want 3 and 2", el.Len(), el.Dropped())
	}
	got := el.Entries()
	for i, e := range got {
		if e.Tick != i+3 {
			t.Fatalf("entries out of order: %+v", got)
		}
	}
	if r := el.Recent(2); len(r) != 2 || r[0].Tick != 4 || r[1].Tick != 5 {
		t.Fatalf("Recent(2) after wrap returned %+v", r)
	}
	if last, ok := el.LastOf(CatState, "change"); !ok || last.Tick != 5 {
		t.Fatalf("LastOf after wrap: %+v", last)
	}
	if n := len(el.FilterTickRange(1, 2)); n != 0 {
		t.Fatalf("dropped entries still visible: %d", n)
	}

	unbounded := NewBoundedEventLog(false, 0)
	for i := 0; i < 10; i++ {
		unbounded.Add(i, "--", CatWorld, "tick", "", 0)
	}
	if unbounded.Len() != 10 || unbounded.Dropped() != 0 {
		t.Fatalf("zero limit should not bound the log: len=%d", unbounded.Len())
	}
}
