package game

import (
	"fmt"
	"math"
)

// StructureID is a handle into a Roster.
type StructureID int

// NoStructure is the empty handle.
const NoStructure StructureID = -1

// TargetingLogic selects which unit a ranged structure fires at.
type TargetingLogic uint8

const (
	TargetProximity TargetingLogic = iota // nearest
	TargetHighValue                       // most expensive
	TargetLowHP                           // weakest
	TargetRandom
)

func (tl TargetingLogic) String() string {
	switch tl {
	case TargetProximity:
		return "proximity"
	case TargetHighValue:
		return "high_value"
	case TargetLowHP:
		return "low_hp"
	case TargetRandom:
		return "random"
	default:
		return "unknown"
	}
}

func parseTargetingLogic(s string) (TargetingLogic, error) {
	switch s {
	case "", "proximity":
		return TargetProximity, nil
	case "high_value":
		return TargetHighValue, nil
	case "low_hp":
		return TargetLowHP, nil
	case "random":
		return TargetRandom, nil
	}
	return 0, fmt.Errorf("targeting logic %q: %w", s, ErrUnknownKind)
}

// Structure is a stationary defence or wall. The unit core reads its
// position, liveness and threat parameters and calls TakeDamage on it.
type Structure struct {
	ID     StructureID
	Kind   string
	Label  string
	Cell   Cell
	X, Y   float64
	Radius float64

	HP, MaxHP float64

	Damage     float64 // ranged
	AttackRate float64
	Range      float64 // cells

	MeleeDamage float64
	MeleeRate   float64
	MeleeRange  float64 // cells

	Targeting     TargetingLogic
	ArmorPiercing bool
	IsWall        bool

	cooldown      float64
	meleeCooldown float64
	attackers     []UnitID
	reaped        bool
}

func newStructure(id StructureID, tag string, k StructureKind, c Cell) (*Structure, error) {
	logic, err := parseTargetingLogic(k.Targeting)
	if err != nil {
		return nil, err
	}
	x, y := c.Center()
	s := &Structure{
		ID:            id,
		Kind:          tag,
		Label:         fmt.Sprintf("S%d", id),
		Cell:          c,
		X:             x,
		Y:             y,
		Radius:        towerRadius,
		HP:            k.HP,
		MaxHP:         k.HP,
		Damage:        k.Damage,
		AttackRate:    k.AttackRate,
		Range:         k.Range,
		MeleeDamage:   k.MeleeDamage,
		MeleeRate:     k.MeleeRate,
		MeleeRange:    k.MeleeRange,
		Targeting:     logic,
		ArmorPiercing: k.ArmorPiercing,
		IsWall:        k.Wall,
	}
	if s.IsWall {
		s.Radius = wallRadius
	}
	return s, nil
}

// IsAlive reports whether the structure still stands.
func (s *Structure) IsAlive() bool { return s.HP > 0 }

// TakeDamage removes up to amount hit points and returns what was applied.
func (s *Structure) TakeDamage(amount float64) float64 {
	if amount <= 0 || !s.IsAlive() {
		return 0
	}
	applied := min(amount, s.HP)
	s.HP -= applied
	return applied
}

// CanAttack is true for structures with a ranged or melee attack.
func (s *Structure) CanAttack() bool {
	return s.Damage > 0 || s.MeleeDamage > 0
}

// threatStats returns the damage, rate and radius used for danger and
// priority. Ranged stats win over melee when both exist.
func (s *Structure) threatStats() (damage, rate, radius float64) {
	if s.Damage > 0 {
		return s.Damage, s.AttackRate, s.Range
	}
	return s.MeleeDamage, s.MeleeRate, s.MeleeRange
}

// ThreatRadius is the danger radius in cells.
func (s *Structure) ThreatRadius() float64 {
	_, _, r := s.threatStats()
	return r
}

// Threat describes the structure for danger recomputation.
func (s *Structure) Threat() Threat {
	dmg, rate, r := s.threatStats()
	return Threat{
		Cell:          s.Cell,
		Radius:        r,
		AttackCapable: s.CanAttack(),
		Damage:        dmg,
		AttackRate:    rate,
	}
}

// threatScore ranks attack-capable targets; lower is engaged first.
func (s *Structure) threatScore() float64 {
	dmg, _, _ := s.threatStats()
	return s.HP * dmg
}

// NoteAttacker records a unit engaging this structure.
func (s *Structure) NoteAttacker(id UnitID) {
	for _, a := range s.attackers {
		if a == id {
			return
		}
	}
	s.attackers = append(s.attackers, id)
}

// Attackers returns the units recorded as engaging this structure.
func (s *Structure) Attackers() []UnitID { return s.attackers }

func (s *Structure) distanceTo(x, y float64) float64 {
	return math.Hypot(s.X-x, s.Y-y)
}

// Roster owns every structure of a world. Handles stay valid after death;
// liveness is checked on every lookup.
type Roster struct {
	items []*Structure
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{}
}

// Add places a structure of the given kind on c and returns it.
func (r *Roster) Add(tag string, k StructureKind, c Cell) (*Structure, error) {
	s, err := newStructure(StructureID(len(r.items)), tag, k, c)
	if err != nil {
		return nil, err
	}
	r.items = append(r.items, s)
	return s, nil
}

// Get returns the structure for id regardless of liveness.
func (r *Roster) Get(id StructureID) *Structure {
	if id < 0 || int(id) >= len(r.items) {
		return nil
	}
	return r.items[id]
}

// Live returns the structure for id only while it is alive.
func (r *Roster) Live(id StructureID) *Structure {
	s := r.Get(id)
	if s == nil || !s.IsAlive() {
		return nil
	}
	return s
}

// All returns every structure, dead or alive, in creation order.
func (r *Roster) All() []*Structure { return r.items }

// Len returns the number of structures ever added.
func (r *Roster) Len() int { return len(r.items) }

// Defenders returns live attack-capable structures, walls with a garrison
// included.
func (r *Roster) Defenders() []*Structure {
	var out []*Structure
	for _, s := range r.items {
		if s.IsAlive() && s.CanAttack() {
			out = append(out, s)
		}
	}
	return out
}

// PassiveWalls returns live walls that cannot attack.
func (r *Roster) PassiveWalls() []*Structure {
	var out []*Structure
	for _, s := range r.items {
		if s.IsAlive() && s.IsWall && !s.CanAttack() {
			out = append(out, s)
		}
	}
	return out
}

// WallAt returns the live wall occupying c, or nil.
func (r *Roster) WallAt(c Cell) *Structure {
	for _, s := range r.items {
		if s.IsWall && s.Cell == c && s.IsAlive() {
			return s
		}
	}
	return nil
}

// At returns the live structure occupying c, or nil.
func (r *Roster) At(c Cell) *Structure {
	for _, s := range r.items {
		if s.Cell == c && s.IsAlive() {
			return s
		}
	}
	return nil
}

// Threats collects the danger inputs of every live structure.
func (r *Roster) Threats() []Threat {
	var out []Threat
	for _, s := range r.items {
		if s.IsAlive() && s.CanAttack() {
			out = append(out, s.Threat())
		}
	}
	return out
}
