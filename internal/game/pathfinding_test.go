package game

import (
	"math"
	"math/rand"
	"testing"
)

func TestFindPath_OpenGridDiagonal(t *testing.T) {
	tg := NewTerrainGrid(10, 10, TileGrass)
	pf := NewPathfinder(tg)
	p, ok := pf.FindPath(Cell{0, 0}, Cell{9, 9}, 0)
	if !ok {
		t.Fatal("expected a path on an open grid")
	}
	if len(p) != 10 {
		t.Fatalf("expected 10 cells, got %d: %v", len(p), p)
	}
	for i := 1; i < len(p); i++ {
		if p[i].Col != p[i-1].Col+1 || p[i].Row != p[i-1].Row+1 {
			t.Fatalf("step %d is not diagonal: %s → %s", i, p[i-1], p[i])
		}
	}
	if want := 9 * 10 * math.Sqrt2; math.Abs(PathCost(tg, p, 0)-want) > 1e-9 {
		t.Fatalf("expected cost %.3f got %.3f", want, PathCost(tg, p, 0))
	}
}

func TestFindPath_StartEqualsGoal(t *testing.T) {
	tg := NewTerrainGrid(5, 5, TileGrass)
	p, ok := NewPathfinder(tg).FindPath(Cell{2, 2}, Cell{2, 2}, 1)
	if !ok || len(p) != 1 || p[0] != (Cell{2, 2}) {
		t.Fatalf("expected single-cell path, got %v ok=%v", p, ok)
	}
}

func TestFindPath_UnwalkableEndpoints(t *testing.T) {
	tg := NewTerrainGrid(5, 5, TileGrass)
	_ = tg.SetTile(Cell{4, 4}, TileWater)
	pf := NewPathfinder(tg)
	if p, ok := pf.FindPath(Cell{0, 0}, Cell{4, 4}, 0); ok || p != nil {
		t.Fatalf("unwalkable goal should fail, got %v", p)
	}
	if p, ok := pf.FindPath(Cell{-1, 0}, Cell{2, 2}, 0); ok || p != nil {
		t.Fatalf("out-of-bounds start should fail, got %v", p)
	}
}

func TestFindPath_WalledOffGoal(t *testing.T) {
	tg := NewTerrainGrid(7, 7, TileGrass)
	for row := 0; row < 7; row++ {
		_ = tg.SetTile(Cell{3, row}, TileWall)
	}
	p, ok := NewPathfinder(tg).FindPath(Cell{0, 3}, Cell{6, 3}, 1)
	if ok || p != nil {
		t.Fatalf("expected no path through a solid wall, got %v", p)
	}
}

func TestFindPath_NoCornerCutting(t *testing.T) {
	tg := NewTerrainGrid(3, 3, TileGrass)
	_ = tg.SetTile(Cell{1, 0}, TileWall)
	_ = tg.SetTile(Cell{0, 1}, TileWall)
	if p, ok := NewPathfinder(tg).FindPath(Cell{0, 0}, Cell{1, 1}, 0); ok {
		t.Fatalf("diagonal squeeze between two walls must be rejected, got %v", p)
	}
}

func TestFindPath_DangerDetour(t *testing.T) {
	tg := NewTerrainGrid(11, 11, TileGrass)
	tg.RecomputeDanger([]Threat{threatAt(Cell{5, 5}, 3)})
	pf := NewPathfinder(tg)
	start, goal := Cell{0, 5}, Cell{10, 5}

	dumb, ok := pf.FindPath(start, goal, 0)
	if !ok {
		t.Fatal("intelligence 0: expected a path")
	}
	for _, c := range dumb {
		if c.Row != 5 {
			t.Fatalf("intelligence 0 should take the straight row, got %v", dumb)
		}
	}
	if got := PathCost(tg, dumb, 0); got != 100 {
		t.Fatalf("intelligence 0: expected cost 100 got %.3f", got)
	}

	smart, ok := pf.FindPath(start, goal, 1)
	if !ok {
		t.Fatal("intelligence 1: expected a path")
	}
	for _, c := range smart {
		if c == (Cell{5, 5}) {
			t.Fatalf("intelligence 1 path crosses the threat cell: %v", smart)
		}
	}
	straight := PathCost(tg, dumb, 1)
	if math.Abs(straight-250) > 1e-9 {
		t.Fatalf("straight path under intelligence 1 should cost 250, got %.3f", straight)
	}
	cost := PathCost(tg, smart, 1)
	if cost >= straight {
		t.Fatalf("detour %.3f should beat the straight path %.3f", cost, straight)
	}
	if want := dijkstraCost(tg, start, goal, 1); math.Abs(cost-want) > 1e-9 {
		t.Fatalf("A* cost %.6f differs from Dijkstra %.6f", cost, want)
	}
}

func TestFindPath_MatchesDijkstraOnRandomGrids(t *testing.T) {
	rng := rand.New(rand.NewSource(7)) // #nosec G404 -- test determinism
	tiles := []TileType{TileGrass, TileGrass, TileGrass, TileMud, TileDirt, TileFrozenWater, TileWall, TileWater}
	for trial := 0; trial < 60; trial++ {
		cols, rows := 4+rng.Intn(9), 4+rng.Intn(9)
		tg := NewTerrainGrid(cols, rows, TileGrass)
		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				_ = tg.SetTile(Cell{col, row}, tiles[rng.Intn(len(tiles))])
			}
		}
		var threats []Threat
		for i := rng.Intn(3); i > 0; i-- {
			threats = append(threats, Threat{
				Cell:          Cell{rng.Intn(cols), rng.Intn(rows)},
				Radius:        1 + rng.Float64()*4,
				AttackCapable: true,
				Damage:        1 + rng.Float64()*20,
				AttackRate:    0.2 + rng.Float64(),
			})
		}
		tg.RecomputeDanger(threats)

		start := Cell{rng.Intn(cols), rng.Intn(rows)}
		goal := Cell{rng.Intn(cols), rng.Intn(rows)}
		_ = tg.SetTile(start, TileGrass)
		_ = tg.SetTile(goal, TileGrass)
		intel := rng.Float64()

		p, ok := NewPathfinder(tg).FindPath(start, goal, intel)
		want := dijkstraCost(tg, start, goal, intel)
		if math.IsInf(want, 1) {
			if ok {
				t.Fatalf("trial %d: found %v where none exists", trial, p)
			}
			continue
		}
		if !ok {
			t.Fatalf("trial %d: no path but Dijkstra found cost %.3f", trial, want)
		}
		if p[0] != start || p[len(p)-1] != goal {
			t.Fatalf("trial %d: path endpoints %s..%s, want %s..%s", trial, p[0], p[len(p)-1], start, goal)
		}
		checkPathSteps(t, tg, p)
		if got := PathCost(tg, p, intel); math.Abs(got-want) > 1e-6 {
			t.Fatalf("trial %d: A* cost %.6f, Dijkstra %.6f", trial, got, want)
		}
	}
}

// checkPathSteps asserts every step is to a walkable neighbour and no
// diagonal step cuts a blocked corner.
func checkPathSteps(t *testing.T, tg *TerrainGrid, p Path) {
	t.Helper()
	for i, c := range p {
		if !tg.IsWalkable(c) {
			t.Fatalf("path cell %s is not walkable", c)
		}
		if i == 0 {
			continue
		}
		prev := p[i-1]
		dc, dr := c.Col-prev.Col, c.Row-prev.Row
		if iabs(dc) > 1 || iabs(dr) > 1 || (dc == 0 && dr == 0) {
			t.Fatalf("step %s → %s is not to a neighbour", prev, c)
		}
		if dc != 0 && dr != 0 {
			if !tg.IsWalkable(Cell{prev.Col + dc, prev.Row}) || !tg.IsWalkable(Cell{prev.Col, prev.Row + dr}) {
				t.Fatalf("diagonal %s → %s cuts a blocked corner", prev, c)
			}
		}
	}
}

// dijkstraCost is a brute-force reference over the same move set and costs.
func dijkstraCost(tg *TerrainGrid, start, goal Cell, intel float64) float64 {
	n := tg.Cols() * tg.Rows()
	dist := make([]float64, n)
	done := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	if !tg.IsWalkable(start) || !tg.IsWalkable(goal) {
		return math.Inf(1)
	}
	dist[tg.index(start)] = 0
	for {
		cur, best := -1, math.Inf(1)
		for i := 0; i < n; i++ {
			if !done[i] && dist[i] < best {
				cur, best = i, dist[i]
			}
		}
		if cur < 0 {
			return math.Inf(1)
		}
		c := Cell{cur % tg.Cols(), cur / tg.Cols()}
		if c == goal {
			return best
		}
		done[cur] = true
		for _, d := range dirs {
			next := Cell{c.Col + d[0], c.Row + d[1]}
			if !tg.IsWalkable(next) {
				continue
			}
			step := tg.TotalCost(next, intel)
			if d[0] != 0 && d[1] != 0 {
				if !tg.IsWalkable(Cell{c.Col + d[0], c.Row}) || !tg.IsWalkable(Cell{c.Col, c.Row + d[1]}) {
					continue
				}
				step *= math.Sqrt2
			}
			if g := best + step; g < dist[tg.index(next)] {
				dist[tg.index(next)] = g
			}
		}
	}
}
