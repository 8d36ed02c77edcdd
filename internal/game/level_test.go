package game

import (
	"errors"
	"testing"
)

func TestDefaultLevels_AllBuild(t *testing.T) {
	levels := DefaultLevels()
	if len(levels) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(levels))
	}
	for _, def := range levels {
		w, err := def.Build(DefaultRegistry(), nil, 1)
		if err != nil {
			t.Fatalf("%s: %v", def.ID, err)
		}
		if w.Caster == nil || !w.Terrain.IsWalkable(w.Caster.Cell()) {
			t.Errorf("%s: caster missing or on blocked ground", def.ID)
		}
		if !w.HasTreasure || w.Terrain.Tile(w.Treasure) != TileTreasure {
			t.Errorf("%s: treasure tile not set", def.ID)
		}
		walls := 0
		for row := 0; row < w.Terrain.Rows(); row++ {
			for col := 0; col < w.Terrain.Cols(); col++ {
				c := Cell{col, row}
				if w.Terrain.Tile(c) != TileWall {
					continue
				}
				walls++
				if w.Structures.WallAt(c) == nil {
					t.Fatalf("%s: wall tile %s has no wall structure", def.ID, c)
				}
			}
		}
		for _, p := range def.Towers {
			s := w.Structures.At(Cell{p.Col, p.Row})
			if s == nil || s.Kind != p.Kind {
				t.Fatalf("%s: tower %s missing at (%d,%d)", def.ID, p.Kind, p.Col, p.Row)
			}
			if !w.Terrain.IsWalkable(s.Cell) {
				t.Errorf("%s: tower %s stands on blocked ground", def.ID, s.Label)
			}
		}
		if walls == 0 {
			t.Errorf("%s: expected wall structures", def.ID)
		}
	}
}

func TestLevel_FortressGarrisons(t *testing.T) {
	def, err := FindLevel(DefaultLevels(), "fortress")
	if err != nil {
		t.Fatal(err)
	}
	w, err := def.Build(DefaultRegistry(), nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, g := range def.GarrisonedWalls {
		s := w.Structures.WallAt(g.Cell())
		if s == nil || s.Kind != "garrisoned_wall" || !s.CanAttack() {
			t.Fatalf("expected a garrison at %s, got %v", g.Cell(), s)
		}
	}
}

func TestFindLevel_Unknown(t *testing.T) {
	if _, err := FindLevel(DefaultLevels(), "atlantis"); !errors.Is(err, ErrUnknownLevel) {
		t.Fatalf("expected ErrUnknownLevel, got %v", err)
	}
}

func TestLoadLevels_Validation(t *testing.T) {
	cases := map[string]string{
		"ragged":    "levels:\n  - {id: a, caster: {col: 0, row: 0}, treasure: {col: 1, row: 0}, rows: [\"00\", \"0\"]}\n",
		"bad tile":  "levels:\n  - {id: a, caster: {col: 0, row: 0}, treasure: {col: 1, row: 0}, rows: [\"09\"]}\n",
		"caster":    "levels:\n  - {id: a, caster: {col: 5, row: 0}, treasure: {col: 1, row: 0}, rows: [\"00\"]}\n",
		"empty":     "levels:\n  - {id: a}\n",
		"non-ascii": "levels:\n  - {id: a, caster: {col: 0, row: 0}, treasure: {col: 1, row: 0}, rows: [\"0\u01300\", \"0000\"]}\n",
	}
	for name, doc := range cases {
		if _, err := LoadLevels([]byte(doc)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestTileDigit(t *testing.T) {
	if tt, ok := tileDigit('6'); !ok || tt != TileForest {
		t.Fatalf("'6' should be forest, got %s ok=%v", tt, ok)
	}
	for _, b := range []byte{'8', '/', ':', 0xC4, 0xB0} {
		if _, ok := tileDigit(b); ok {
			t.Errorf("byte %#x should be rejected", b)
		}
	}
}

func TestLevel_TutorialRun(t *testing.T) {
	ts := NewTestSim(WithLevel("tutorial"), WithSeed(9))
	if err := ts.Err(); err != nil {
		t.Fatal(err)
	}
	w := ts.World
	tower := w.Structures.At(Cell{10, 5})
	if tower == nil {
		t.Fatal("tutorial guard tower missing")
	}
	if _, err := w.Summon(SummonOrder{Kind: "giant", Mode: SummonAttack, Target: tower.ID}); err != nil {
		t.Fatal(err)
	}
	ts.RunTicks(1200)
	dumpSummary(t, ts)
	if ts.Log.CountCategory(CatSummon, "giant") != 1 {
		t.Fatal("expected one giant summon")
	}
	if ts.Log.CountCategory(CatAttack, "hit")+ts.Log.CountCategory(CatDefend, "") == 0 {
		t.Fatal("expected combat on the tutorial map")
	}
}
