package game

import (
	"fmt"
)

// TestSim is a headless simulation harness used by tests and the headless
// report. It drives World.Step with no Ebiten dependency and supports
// deterministic seeding and structured logging.
type TestSim struct {
	Cols  int
	Rows  int
	World *World
	Log   *EventLog

	seed      int64
	verbose   bool
	level     string
	noDefense bool
	tiles     []tilePatch
	reg       *Registry
	err       error
}

type tilePatch struct {
	cell Cell
	tile TileType
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra     simOptionKind = iota // map size, level, seed, verbose, applied first
	simOptTerrain                        // tile overrides, applied once the grid exists
	simOptStructure                      // structures, applied after terrain
	simOptUnit                           // caster and units, applied last
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithMapSize sets the grid dimensions in cells.
func WithMapSize(cols, rows int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Cols = cols
		ts.Rows = rows
	}}
}

// WithLevel builds the world from a built-in level instead of an empty grid.
func WithLevel(id string) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.level = id
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.seed = seed
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.verbose = v
	}}
}

// WithRegistry replaces the built-in kinds.
func WithRegistry(reg *Registry) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.reg = reg
	}}
}

// WithoutDefense stops structures from attacking, so tests can script hits.
func WithoutDefense() SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.noDefense = true
	}}
}

// WithTile overrides one cell of the grid.
func WithTile(c Cell, t TileType) SimOption {
	return SimOption{simOptTerrain, func(ts *TestSim) {
		ts.tiles = append(ts.tiles, tilePatch{cell: c, tile: t})
	}}
}

// WithStructure places a structure of the given kind.
func WithStructure(kind string, c Cell) SimOption {
	return SimOption{simOptStructure, func(ts *TestSim) {
		if _, err := ts.World.AddStructure(kind, c); err != nil && ts.err == nil {
			ts.err = err
		}
	}}
}

// WithWall places a plain wall structure.
func WithWall(c Cell) SimOption {
	return WithStructure("wall", c)
}

// WithUnit spawns one unit of the given kind at the centre of c.
func WithUnit(kind string, c Cell) SimOption {
	return SimOption{simOptUnit, func(ts *TestSim) {
		x, y := c.Center()
		if _, err := ts.World.SpawnUnit(kind, x, y); err != nil && ts.err == nil {
			ts.err = err
		}
	}}
}

// WithCaster places the caster on c.
func WithCaster(c Cell) SimOption {
	return SimOption{simOptUnit, func(ts *TestSim) {
		if _, err := ts.World.PlaceCaster(c); err != nil && ts.err == nil {
			ts.err = err
		}
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (map size, level, seed, verbose)
//  2. Build the world
//  3. Tile overrides
//  4. Structures
//  5. Caster and units
//
// Construction errors are kept and reported by Err.
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		Cols: 20,
		Rows: 15,
		seed: 1,
	}
	ts.applyPass(opts, simOptInfra)
	if ts.reg == nil {
		ts.reg = DefaultRegistry()
	}
	ts.Log = NewEventLog(ts.verbose)
	ts.buildWorld()
	if ts.World == nil {
		return ts
	}
	ts.applyPass(opts, simOptTerrain)
	for _, p := range ts.tiles {
		if err := ts.World.Terrain.SetTile(p.cell, p.tile); err != nil && ts.err == nil {
			ts.err = err
		}
	}
	ts.applyPass(opts, simOptStructure)
	ts.applyPass(opts, simOptUnit)
	ts.World.Defense.Enabled = !ts.noDefense
	ts.World.RefreshDanger()
	return ts
}

func (ts *TestSim) applyPass(opts []SimOption, kind simOptionKind) {
	for _, o := range opts {
		if o.kind == kind {
			o.fn(ts)
		}
	}
}

func (ts *TestSim) buildWorld() {
	if ts.level == "" {
		ts.World = NewWorld(NewTerrainGrid(ts.Cols, ts.Rows, TileGrass), ts.reg, ts.Log, ts.seed)
		return
	}
	def, err := FindLevel(DefaultLevels(), ts.level)
	if err != nil {
		ts.err = err
		return
	}
	w, err := def.Build(ts.reg, ts.Log, ts.seed)
	if err != nil {
		ts.err = err
		return
	}
	ts.World = w
	ts.Cols, ts.Rows = w.Terrain.Cols(), w.Terrain.Rows()
}

// Err returns the first error raised while applying options.
func (ts *TestSim) Err() error { return ts.err }

// Env returns the controller view for issuing orders between ticks.
func (ts *TestSim) Env() *TickEnv {
	ts.World.RefreshDanger()
	return ts.World.Env()
}

// Unit returns the i-th active unit in spawn order, or nil.
func (ts *TestSim) Unit(i int) *Unit {
	if i < 0 || i >= len(ts.World.Units) {
		return nil
	}
	return ts.World.Units[i]
}

// Structure returns the structure with the given handle, dead or alive.
func (ts *TestSim) Structure(id StructureID) *Structure {
	return ts.World.Structures.Get(id)
}

// RunTicks advances the simulation n ticks.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.runOneTick()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.runOneTick()
		if predicate(ts) {
			return ts.World.Tick
		}
	}
	return -1
}

func (ts *TestSim) runOneTick() {
	ts.World.Step()
	tick := ts.World.Tick
	for _, u := range ts.World.Units {
		ts.Log.AddVerbose(tick, u.Label, "move", "position",
			fmt.Sprintf("(%.1f,%.1f) %s", u.X, u.Y, u.State), u.HP)
	}
	if c := ts.World.Caster; c != nil {
		ts.Log.AddVerbose(tick, "caster", "move", "position",
			fmt.Sprintf("(%.1f,%.1f) mana=%.1f", c.X, c.Y, c.Mana), c.HP)
	}
}

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int {
	return ts.World.Tick
}

// SimSnapshot captures a lightweight state summary.
type SimSnapshot struct {
	Tick   int
	Status Status
	Units  []UnitSnapshot
}

// UnitSnapshot is a lightweight copy of a unit's state at a tick.
type UnitSnapshot struct {
	ID     UnitID
	Label  string
	Kind   string
	X, Y   float64
	HP     float64
	State  UnitState
	Target StructureID
}

// Snapshot returns the current state of all active units.
func (ts *TestSim) Snapshot() SimSnapshot {
	snap := SimSnapshot{Tick: ts.World.Tick, Status: ts.World.Status}
	for _, u := range ts.World.Units {
		snap.Units = append(snap.Units, UnitSnapshot{
			ID:     u.ID,
			Label:  u.Label,
			Kind:   u.Kind,
			X:      u.X,
			Y:      u.Y,
			HP:     u.HP,
			State:  u.State,
			Target: u.Target,
		})
	}
	return snap
}
