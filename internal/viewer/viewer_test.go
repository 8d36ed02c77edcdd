package viewer

import (
	"errors"
	"strings"
	"testing"

	"github.com/Garsondee/Siege-Sense/internal/game"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func testLogger() *logrus.Entry {
	l, _ := test.NewNullLogger()
	return logrus.NewEntry(l)
}

func TestSpeedStepping(t *testing.T) {
	if got := faster(0); got != 0.5 {
		t.Fatalf("faster(0) = %v", got)
	}
	if got := faster(4); got != 4 {
		t.Fatalf("faster should stop at 4, got %v", got)
	}
	if got := slower(1); got != 0.5 {
		t.Fatalf("slower(1) = %v", got)
	}
	if got := slower(0); got != 0 {
		t.Fatalf("slower should stop at pause, got %v", got)
	}
	s := 0.0
	for i := 0; i < len(speeds)-1; i++ {
		s = faster(s)
	}
	if s != 4 {
		t.Fatalf("walking up the speed list ended at %v", s)
	}
}

func TestSpeedLabel(t *testing.T) {
	cases := map[float64]string{0: "PAUSED", 0.5: "0.5x", 1: "1x", 4: "4x"}
	for in, want := range cases {
		if got := speedLabel(in); got != want {
			t.Errorf("speedLabel(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestTileColorsDistinct(t *testing.T) {
	seen := map[[3]uint8]game.TileType{}
	for tt := game.TileGrass; tt <= game.TileTreasure; tt++ {
		c := tileColor(tt)
		key := [3]uint8{c.R, c.G, c.B}
		if prev, dup := seen[key]; dup {
			t.Fatalf("%s and %s share a colour", prev, tt)
		}
		seen[key] = tt
	}
}

func TestDangerAlpha(t *testing.T) {
	if dangerAlpha(0, 50) != 0 || dangerAlpha(10, 0) != 0 {
		t.Fatal("no danger should be transparent")
	}
	lo, hi := dangerAlpha(5, 50), dangerAlpha(50, 50)
	if lo >= hi || hi != 200 {
		t.Fatalf("alpha should grow with danger: %d %d", lo, hi)
	}
}

func TestOrderFor(t *testing.T) {
	if orderFor(false, false) != game.OrderMove {
		t.Error("plain click should be a move")
	}
	if orderFor(false, true) != game.OrderAttackMove {
		t.Error("A should attack-move")
	}
	if orderFor(true, true) != game.OrderForcedMove {
		t.Error("shift should force the move")
	}
}

func TestPlanSummon(t *testing.T) {
	ts := game.NewTestSim(
		game.WithCaster(game.Cell{Col: 2, Row: 2}),
		game.WithStructure("guard_tower", game.Cell{Col: 10, Row: 2}),
	)
	w := ts.World

	tx, ty := game.Cell{Col: 10, Row: 2}.Center()
	if o := planSummon(w, "larva", tx, ty, false); o.Mode != game.SummonAttack || o.Target != 0 {
		t.Fatalf("cursor on a tower should attack it, got %+v", o)
	}
	if o := planSummon(w, "larva", 150, 100, false); o.Mode != game.SummonIdle || o.X != 150 || o.Y != 100 {
		t.Fatalf("open ground should summon idle at the cursor, got %+v", o)
	}
	c := w.Caster
	o := planSummon(w, "giant", c.X+80, c.Y, true)
	if o.Mode != game.SummonSearch || o.DirX != 80 || o.DirY != 0 || o.X != c.X {
		t.Fatalf("search summon should head from the caster to the cursor, got %+v", o)
	}
	if _, err := w.Summon(o); err != nil {
		t.Fatalf("planned search summon refused: %v", err)
	}
}

func TestUnitAt(t *testing.T) {
	ts := game.NewTestSim(
		game.WithUnit("giant", game.Cell{Col: 3, Row: 3}),
		game.WithUnit("larva", game.Cell{Col: 4, Row: 3}),
	)
	giant := ts.Unit(0)
	if u := unitAt(ts.World, giant.X+2, giant.Y); u != giant {
		t.Fatalf("expected the giant, got %v", u)
	}
	if u := unitAt(ts.World, 500, 500); u != nil {
		t.Fatalf("empty ground picked %s", u.Label)
	}
	giant.TakeDamage(10000)
	if u := unitAt(ts.World, giant.X, giant.Y); u != nil {
		t.Fatal("dead units should not be selectable")
	}
}

func TestPanelLine(t *testing.T) {
	e := game.EventEntry{Tick: 7, Actor: "U1", Category: game.CatState, Key: "change", Value: "idle → moving"}
	if got := panelLine(e); got != "   7 U1     change idle -> moving" {
		t.Fatalf("unexpected line %q", got)
	}
	e.Value = strings.Repeat("x", 80)
	if got := panelLine(e); len(got) != logLineChars || !strings.HasSuffix(got, "~") {
		t.Fatalf("long line not truncated: %q", got)
	}
}

func TestNew_UnknownLevel(t *testing.T) {
	if _, err := New(game.DefaultLevels(), "atlantis", 1, testLogger()); !errors.Is(err, game.ErrUnknownLevel) {
		t.Fatalf("expected ErrUnknownLevel, got %v", err)
	}
}

func TestNew_LayoutAndScreenMapping(t *testing.T) {
	g, err := New(game.DefaultLevels(), "tutorial", 1, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	mw, mh := g.World().Terrain.PixelSize()
	w, h := g.Layout(0, 0)
	if w != 2*borderWidth+int(mw)+logPanelWidth || h != 2*borderWidth+int(mh) {
		t.Fatalf("layout %dx%d for a %.0fx%.0f map", w, h, mw, mh)
	}
	if x, y, ok := g.screenToWorld(borderWidth+10, borderWidth+20); !ok || x != 10 || y != 20 {
		t.Fatalf("screenToWorld inside map: (%.0f,%.0f) %v", x, y, ok)
	}
	if _, _, ok := g.screenToWorld(borderWidth-1, borderWidth); ok {
		t.Fatal("border should be off the map")
	}
	if _, _, ok := g.screenToWorld(borderWidth+int(mw), borderWidth); ok {
		t.Fatal("log panel should be off the map")
	}
}

func TestUpdateStepsAtSpeed(t *testing.T) {
	g, err := New(game.DefaultLevels(), "corridor", 1, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	g.simSpeed = 0.5
	for i := 0; i < 4; i++ {
		g.advance()
	}
	if g.world.Tick != 2 {
		t.Fatalf("half speed over four frames should step twice, got %d", g.world.Tick)
	}
	g.simSpeed = 0
	g.advance()
	if g.world.Tick != 2 {
		t.Fatal("paused viewer advanced")
	}
	if err := g.reset(); err != nil || g.world.Tick != 0 {
		t.Fatalf("reset should rebuild at tick 0: %v tick=%d", err, g.world.Tick)
	}
}

func TestCastFeedback(t *testing.T) {
	g, err := New(game.DefaultLevels(), "tutorial", 1, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	g.cast(game.SpellShield, 0, 0)
	if c := g.World().Caster; c.Shield != 50 || g.status != "cast shield" {
		t.Fatalf("shield cast: shield=%.0f status=%q", c.Shield, g.status)
	}
	for i := 0; i < 10; i++ {
		g.World().Step()
	}
	s := g.World().Structures.Defenders()[0]
	g.cast(game.SpellFireball, s.X, s.Y)
	if !strings.Contains(g.status, "out of range") {
		t.Fatalf("distant fireball should be refused, status=%q", g.status)
	}
}

func TestHoverLine_ShowsEngagedUnits(t *testing.T) {
	g, err := New(game.DefaultLevels(), "tutorial", 1, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if g.hoverLine() != "" {
		t.Fatal("no hover line off the map")
	}
	s := g.World().Structures.Defenders()[0]
	s.NoteAttacker(3)
	g.hoverX, g.hoverY, g.hoverOK = s.X, s.Y, true
	want := s.Label + " " + s.Kind
	line := g.hoverLine()
	if !strings.HasPrefix(line, want) || !strings.HasSuffix(line, "engaged by U3") {
		t.Fatalf("hover line %q", line)
	}
	if !strings.Contains(strings.Join(g.hudLines(), "\n"), "engaged by U3") {
		t.Fatal("HUD should carry the hover line")
	}
}

func TestViewerLogIsBounded(t *testing.T) {
	g, err := New(game.DefaultLevels(), "tutorial", 1, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	el := g.World().Log
	for i := 0; i < viewerLogLimit+5; i++ {
		el.Add(i, "--", game.CatWorld, "tick", "", 0)
	}
	if el.Len() != viewerLogLimit || el.Dropped() < 5 {
		t.Fatalf("len=%d dropped=%d, want cap %d", el.Len(), el.Dropped(), viewerLogLimit)
	}
	if last := el.Recent(1)[0]; last.Tick != viewerLogLimit+4 {
		t.Fatalf("newest entry should survive, got T=%d", last.Tick)
	}
}
