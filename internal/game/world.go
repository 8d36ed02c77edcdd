package game

import (
	"fmt"
	"math"
)

// Status is the outcome of a world.
type Status uint8

const (
	StatusPlaying Status = iota
	StatusWon
	StatusLost
)

func (s Status) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusWon:
		return "won"
	case StatusLost:
		return "lost"
	default:
		return "unknown"
	}
}

// World owns all simulation state and advances it in fixed steps.
type World struct {
	Terrain    *TerrainGrid
	Paths      *Pathfinder
	Structures *Roster
	Units      []*Unit // active roster in spawn order
	Caster     *Caster
	Defense    *Defense
	Registry   *Registry
	Log        *EventLog

	Treasure    Cell
	HasTreasure bool
	Tick        int
	Status      Status
	UnitsLost   int

	dangerDirty bool
	nextUnitID  int
}

// NewWorld wires a world around an existing terrain grid.
func NewWorld(tg *TerrainGrid, reg *Registry, log *EventLog, seed int64) *World {
	if log == nil {
		log = NewEventLog(false)
	}
	return &World{
		Terrain:     tg,
		Paths:       NewPathfinder(tg),
		Structures:  NewRoster(),
		Defense:     NewDefense(seed),
		Registry:    reg,
		Log:         log,
		dangerDirty: true,
	}
}

// Env returns the controller view of the world for the current tick.
func (w *World) Env() *TickEnv {
	return &TickEnv{
		Tick:       w.Tick,
		Terrain:    w.Terrain,
		Paths:      w.Paths,
		Structures: w.Structures,
		Log:        w.Log,
	}
}

// MarkDangerDirty schedules a danger recompute before the next unit update.
func (w *World) MarkDangerDirty() { w.dangerDirty = true }

// RefreshDanger recomputes the danger field now if it is stale. Call it
// before issuing orders outside of Step.
func (w *World) RefreshDanger() {
	if !w.dangerDirty {
		return
	}
	w.Terrain.RecomputeDanger(w.Structures.Threats())
	w.dangerDirty = false
}

// PlaceCaster puts the player caster on c.
func (w *World) PlaceCaster(c Cell) (*Caster, error) {
	if !w.Terrain.IsWalkable(c) {
		return nil, fmt.Errorf("caster at %s: %w", c, ErrOutOfBounds)
	}
	w.Caster = newCaster(w.Registry.Caster, c)
	return w.Caster, nil
}

// AddStructure places a structure of the given kind. Walls turn their cell
// into a wall tile.
func (w *World) AddStructure(tag string, c Cell) (*Structure, error) {
	if !w.Terrain.InBounds(c) {
		return nil, fmt.Errorf("structure %q at %s: %w", tag, c, ErrOutOfBounds)
	}
	k, err := w.Registry.StructureKind(tag)
	if err != nil {
		return nil, err
	}
	s, err := w.Structures.Add(tag, k, c)
	if err != nil {
		return nil, err
	}
	if s.IsWall {
		if err := w.Terrain.SetTile(c, TileWall); err != nil {
			return nil, err
		}
	}
	w.MarkDangerDirty()
	return s, nil
}

// SpawnUnit creates one unit of the given kind at a pixel position without
// charging mana.
func (w *World) SpawnUnit(tag string, x, y float64) (*Unit, error) {
	k, err := w.Registry.UnitKind(tag)
	if err != nil {
		return nil, err
	}
	if !w.Terrain.IsWalkable(CellAt(x, y)) {
		return nil, fmt.Errorf("unit %q at %s: %w", tag, CellAt(x, y), ErrOutOfBounds)
	}
	u := newUnit(UnitID(w.nextUnitID), tag, k, x, y)
	w.nextUnitID++
	w.Units = append(w.Units, u)
	return u, nil
}

// Unit returns the active unit with the given id, or nil.
func (w *World) Unit(id UnitID) *Unit {
	for _, u := range w.Units {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// SummonMode selects what freshly summoned units do.
type SummonMode uint8

const (
	SummonIdle   SummonMode = iota // wait at the spawn point
	SummonAttack                   // path to Target and destroy it
	SummonSearch                   // search toward the map edge along (DirX, DirY)
)

// SummonOrder describes one summon.
type SummonOrder struct {
	Kind       string
	Mode       SummonMode
	X, Y       float64 // spawn point for idle and search summons
	Target     StructureID
	DirX, DirY float64
}

// Summon spends the caster's mana and spawns the kind's units. Attack
// summons appear just ahead of the caster; the others must be within
// SummonRange of it.
func (w *World) Summon(o SummonOrder) ([]*Unit, error) {
	c := w.Caster
	if c == nil || !c.IsAlive() {
		return nil, ErrCasterDead
	}
	k, err := w.Registry.UnitKind(o.Kind)
	if err != nil {
		return nil, err
	}

	var target *Structure
	cx, cy := o.X, o.Y
	if o.Mode == SummonAttack {
		if target = w.Structures.Live(o.Target); target == nil {
			w.Log.Add(w.Tick, "caster", CatSummon, "refused", fmt.Sprintf("no live target S%d", o.Target), 0)
			return nil, fmt.Errorf("summon target S%d: %w", o.Target, ErrInvalidTarget)
		}
		dx, dy := target.X-c.X, target.Y-c.Y
		if d := math.Hypot(dx, dy); d > 0 {
			cx, cy = c.X+dx/d*summonLead, c.Y+dy/d*summonLead
		} else {
			cx, cy = c.X+summonLead, c.Y
		}
	} else if !c.InSummonRange(cx, cy) {
		w.Log.Add(w.Tick, "caster", CatSummon, "refused", "outside summon range", 0)
		return nil, ErrOutOfRange
	}
	if !w.Terrain.IsWalkable(CellAt(cx, cy)) {
		cx, cy = c.X, c.Y
	}

	if err := c.Spend(k.SummonCost()); err != nil {
		w.Log.Add(w.Tick, "caster", CatSummon, "refused", "insufficient mana", c.Mana)
		return nil, err
	}

	w.RefreshDanger()
	env := w.Env()
	out := make([]*Unit, 0, k.SpawnCount)
	for i := 0; i < k.SpawnCount; i++ {
		x, y := cx, cy
		if k.SpawnCount > 1 {
			angle := 2 * math.Pi * float64(i) / float64(k.SpawnCount)
			sx, sy := cx+math.Cos(angle)*summonSpread, cy+math.Sin(angle)*summonSpread
			if w.Terrain.IsWalkable(CellAt(sx, sy)) {
				x, y = sx, sy
			}
		}
		u, err := w.SpawnUnit(o.Kind, x, y)
		if err != nil {
			return out, err
		}
		switch o.Mode {
		case SummonAttack:
			u.SetAttackTarget(target.ID, env)
		case SummonSearch:
			u.SetDirectionalSearch(o.DirX, o.DirY, env)
		}
		out = append(out, u)
	}
	mode := "idle"
	switch o.Mode {
	case SummonAttack:
		mode = "→ " + target.Label
	case SummonSearch:
		mode = "search"
	}
	w.Log.Add(w.Tick, "caster", CatSummon, o.Kind, fmt.Sprintf("%dx %s (%s)", k.SpawnCount, k.Name, mode), k.SummonCost())
	return out, nil
}

// Step advances the whole world by one fixed tick.
func (w *World) Step() {
	if w.Status != StatusPlaying {
		return
	}
	w.Tick++

	// 1. DANGER: recompute once, before any unit can path.
	w.RefreshDanger()

	// 2. CASTER
	if w.Caster != nil {
		w.Caster.Update(FixedDT, w.Terrain)
	}

	// 3. UNITS in spawn order.
	env := w.Env()
	for _, u := range w.Units {
		u.Update(FixedDT, env)
	}

	// 4. DEFENSE
	w.Defense.Update(FixedDT, w)

	// 5. REAP
	w.reap()

	// 6. OUTCOME
	w.checkOutcome()
}

// reap clears fallen structures and drops dead units from the active
// roster.
func (w *World) reap() {
	w.reapStructures()

	alive := w.Units[:0]
	for _, u := range w.Units {
		if u.State == StateDead {
			w.UnitsLost++
			continue
		}
		alive = append(alive, u)
	}
	for i := len(alive); i < len(w.Units); i++ {
		w.Units[i] = nil
	}
	w.Units = alive
}

// reapStructures reverts destroyed walls to open ground and flags danger
// after any structure death.
func (w *World) reapStructures() {
	for _, s := range w.Structures.All() {
		if s.IsAlive() || s.reaped {
			continue
		}
		s.reaped = true
		if s.IsWall {
			if err := w.Terrain.SetTile(s.Cell, TileDirt); err == nil {
				w.Log.Add(w.Tick, s.Label, CatWorld, "wall_down", s.Cell.String(), 0)
			}
		} else {
			w.Log.Add(w.Tick, s.Label, CatWorld, "destroyed", s.Kind, 0)
		}
		w.MarkDangerDirty()
	}
}

func (w *World) checkOutcome() {
	c := w.Caster
	if c == nil {
		return
	}
	switch {
	case !c.IsAlive():
		w.Status = StatusLost
		w.Log.Add(w.Tick, "caster", CatWorld, "defeat", "caster fell", 0)
	case w.HasTreasure && c.Cell() == w.Treasure:
		w.Status = StatusWon
		w.Log.Add(w.Tick, "caster", CatWorld, "victory", "treasure reached", 0)
	}
}
