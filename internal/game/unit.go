package game

import (
	"fmt"
	"math"
)

// UnitID identifies a summoned unit for the lifetime of a world.
type UnitID int

// UnitState is the combat controller state of a unit.
type UnitState uint8

const (
	StateIdle UnitState = iota
	StateMoving
	StateAttacking
	StateSearchingDirectional
	StateBreachingObstacle
	StateDead
)

func (s UnitState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMoving:
		return "moving"
	case StateAttacking:
		return "attacking"
	case StateSearchingDirectional:
		return "searching"
	case StateBreachingObstacle:
		return "breaching"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// OrderType governs how a moving unit reacts to threats.
type OrderType uint8

const (
	OrderNone       OrderType = iota
	OrderMove                 // react to attackers en route
	OrderAttackMove           // engage anything sighted en route
	OrderForcedMove           // ignore everything until arrival
)

func (o OrderType) String() string {
	switch o {
	case OrderNone:
		return "none"
	case OrderMove:
		return "move"
	case OrderAttackMove:
		return "attack_move"
	case OrderForcedMove:
		return "forced_move"
	default:
		return "unknown"
	}
}

// walker is a position that follows a cell path.
type walker struct {
	X, Y      float64
	Speed     float64 // pixels per second on a 1.0 tile
	path      Path
	pathIndex int
}

// Path returns the active path; nil when none.
func (w *walker) Path() Path { return w.path }

// PathIndex is the index of the next waypoint.
func (w *walker) PathIndex() int { return w.pathIndex }

// Cell returns the cell under the walker.
func (w *walker) Cell() Cell { return CellAt(w.X, w.Y) }

func (w *walker) setPath(p Path) {
	w.path = p
	w.pathIndex = 0
}

func (w *walker) clearPath() {
	w.path = nil
	w.pathIndex = 0
}

func (w *walker) pathDone() bool {
	return w.pathIndex >= len(w.path)
}

func (w *walker) distanceTo(x, y float64) float64 {
	return math.Hypot(x-w.X, y-w.Y)
}

// followPath advances toward the current waypoint at the terrain-scaled
// speed and moves the cursor once the waypoint is reached.
func (w *walker) followPath(dt float64, tg *TerrainGrid) {
	if w.pathDone() {
		return
	}
	wx, wy := w.path[w.pathIndex].Center()
	dx, dy := wx-w.X, wy-w.Y
	dist := math.Hypot(dx, dy)
	if dist < WaypointTolerance {
		w.pathIndex++
		return
	}
	step := w.Speed * tg.SpeedMultiplier(w.Cell()) * dt
	if step >= dist {
		w.X, w.Y = wx, wy
		w.pathIndex++
		return
	}
	w.X += dx / dist * step
	w.Y += dy / dist * step
}

// Unit is a summoned combat entity driven by its controller.
type Unit struct {
	walker
	Vitals

	ID     UnitID
	Kind   string
	Label  string
	Radius float64

	Damage         float64
	AttackRate     float64
	Intelligence   float64
	ArmorReduction float64
	Value          float64 // summon cost, read by high-value targeting

	State          UnitState
	Order          OrderType
	Target         StructureID
	OriginalTarget StructureID

	moveX, moveY  float64
	hasMovePoint  bool
	searchX       float64
	searchY       float64
	ignoreThreats bool
	fleeing       bool
	cooldown      float64
	attackers     []StructureID
	unreachable   []StructureID
}

func newUnit(id UnitID, tag string, k UnitKind, x, y float64) *Unit {
	return &Unit{
		walker:         walker{X: x, Y: y, Speed: k.Speed},
		Vitals:         Vitals{HP: k.HP, MaxHP: k.HP},
		ID:             id,
		Kind:           tag,
		Label:          fmt.Sprintf("U%d", id),
		Radius:         k.Radius,
		Damage:         k.Damage,
		AttackRate:     k.AttackRate,
		Intelligence:   k.Intelligence,
		ArmorReduction: k.ArmorReduction,
		Value:          k.ManaCost,
		Target:         NoStructure,
		OriginalTarget: NoStructure,
	}
}

// TakeDamage applies damage through the shield and kills the unit when hit
// points run out.
func (u *Unit) TakeDamage(amount float64) float64 {
	if u.State == StateDead {
		return 0
	}
	dealt := u.Vitals.TakeDamage(amount)
	if !u.IsAlive() {
		u.State = StateDead
		u.clearPath()
		u.Target = NoStructure
		u.OriginalTarget = NoStructure
	}
	return dealt
}

// RegisterAttacker is called by the structure subsystem when id hits u.
func (u *Unit) RegisterAttacker(id StructureID) {
	if u.State == StateDead {
		return
	}
	for _, a := range u.attackers {
		if a == id {
			return
		}
	}
	u.attackers = append(u.attackers, id)
}

// Attackers returns the structures recorded as hitting the unit.
func (u *Unit) Attackers() []StructureID { return u.attackers }

// IgnoringThreats reports the forced-move or flee flag.
func (u *Unit) IgnoringThreats() bool { return u.ignoreThreats }

// Fleeing reports whether the unit is running from an unreachable attacker.
func (u *Unit) Fleeing() bool { return u.fleeing }

// MovePoint returns the pixel destination of the active move order.
func (u *Unit) MovePoint() (float64, float64, bool) {
	return u.moveX, u.moveY, u.hasMovePoint
}

func (u *Unit) isUnreachable(id StructureID) bool {
	for _, a := range u.unreachable {
		if a == id {
			return true
		}
	}
	return false
}

func (u *Unit) markUnreachable(id StructureID) {
	if !u.isUnreachable(id) {
		u.unreachable = append(u.unreachable, id)
	}
}

// pruneAttackers drops attackers that have died.
func (u *Unit) pruneAttackers(r *Roster) {
	kept := u.attackers[:0]
	for _, id := range u.attackers {
		if r.Live(id) != nil {
			kept = append(kept, id)
		}
	}
	u.attackers = kept
}

func (u *Unit) inAttackRange(s *Structure) bool {
	return u.distanceTo(s.X, s.Y) <= u.Radius+s.Radius+MeleeMargin
}

func (u *Unit) inSight(s *Structure) bool {
	return u.distanceTo(s.X, s.Y) <= SightRange
}
