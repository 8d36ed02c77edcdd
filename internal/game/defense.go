package game

import (
	"fmt"
	"math"
	"math/rand"
)

// Defense is the structure attack subsystem: ranged structures fire instant
// shots chosen by their targeting logic, melee structures hit every unit in
// reach. Hits register the structure as an attacker on the unit.
type Defense struct {
	rng     *rand.Rand
	Enabled bool
}

// NewDefense creates an enabled defense with a seeded RNG for random targeting.
func NewDefense(seed int64) *Defense {
	return &Defense{
		rng:     rand.New(rand.NewSource(seed)), // #nosec G404 -- gameplay randomness
		Enabled: true,
	}
}

// victim is anything a structure can shoot.
type victim struct {
	unit   *Unit
	caster *Caster
	x, y   float64
	hp     float64
	value  float64
}

func (d *Defense) victims(w *World) []victim {
	var out []victim
	if c := w.Caster; c != nil && c.IsAlive() {
		out = append(out, victim{caster: c, x: c.X, y: c.Y, hp: c.HP, value: highValueCaster})
	}
	for _, u := range w.Units {
		if u.State == StateDead {
			continue
		}
		out = append(out, victim{unit: u, x: u.X, y: u.Y, hp: u.HP, value: u.Value})
	}
	return out
}

// Update advances every structure's cooldowns and resolves its attacks.
func (d *Defense) Update(dt float64, w *World) {
	if !d.Enabled {
		return
	}
	for _, s := range w.Structures.All() {
		if !s.IsAlive() {
			continue
		}
		d.noteAttackers(s, w)
		if s.Damage > 0 && s.AttackRate > 0 {
			d.fireRanged(s, dt, w)
		}
		if s.MeleeDamage > 0 && s.MeleeRate > 0 {
			d.fireMelee(s, dt, w)
		}
	}
}

// noteAttackers records units currently striking s.
func (d *Defense) noteAttackers(s *Structure, w *World) {
	for _, u := range w.Units {
		if u.Target != s.ID {
			continue
		}
		if (u.State == StateAttacking || u.State == StateBreachingObstacle) && u.inAttackRange(s) {
			s.NoteAttacker(u.ID)
		}
	}
}

func (d *Defense) fireRanged(s *Structure, dt float64, w *World) {
	if s.cooldown > 0 {
		s.cooldown -= dt
		if s.cooldown > 0 {
			return
		}
	}
	reach := s.Range * TileSize
	var inRange []victim
	for _, v := range d.victims(w) {
		if s.distanceTo(v.x, v.y) <= reach {
			inRange = append(inRange, v)
		}
	}
	v, ok := d.choose(s, inRange)
	if !ok {
		return
	}
	d.hit(s, v, s.Damage, w, "shot")
	s.cooldown = 1 / s.AttackRate
}

func (d *Defense) fireMelee(s *Structure, dt float64, w *World) {
	if s.meleeCooldown > 0 {
		s.meleeCooldown -= dt
		if s.meleeCooldown > 0 {
			return
		}
	}
	reach := s.MeleeRange * TileSize
	struck := false
	for _, u := range w.Units {
		if u.State == StateDead {
			continue
		}
		if s.distanceTo(u.X, u.Y) <= reach+u.Radius+meleeReachMargin {
			d.hit(s, victim{unit: u, x: u.X, y: u.Y, hp: u.HP}, s.MeleeDamage, w, "oil")
			struck = true
		}
	}
	if struck {
		s.meleeCooldown = 1 / s.MeleeRate
	}
}

// choose picks a victim by the structure's targeting logic.
func (d *Defense) choose(s *Structure, vs []victim) (victim, bool) {
	if len(vs) == 0 {
		return victim{}, false
	}
	if s.Targeting == TargetRandom {
		return vs[d.rng.Intn(len(vs))], true
	}
	best := 0
	bestScore := math.Inf(1)
	for i, v := range vs {
		var score float64
		switch s.Targeting {
		case TargetHighValue:
			score = -v.value
		case TargetLowHP:
			score = v.hp
		default:
			score = s.distanceTo(v.x, v.y)
		}
		if score < bestScore {
			best, bestScore = i, score
		}
	}
	return vs[best], true
}

func (d *Defense) hit(s *Structure, v victim, damage float64, w *World, key string) {
	if v.caster != nil {
		dealt := v.caster.TakeDamage(damage)
		w.Log.Add(w.Tick, s.Label, CatDefend, key, fmt.Sprintf("caster -%.0f (hp %.0f)", dealt, v.caster.HP), dealt)
		return
	}
	u := v.unit
	if u.ArmorReduction > 0 && !s.ArmorPiercing {
		damage *= 1 - u.ArmorReduction
	}
	dealt := u.TakeDamage(damage)
	u.RegisterAttacker(s.ID)
	w.Log.Add(w.Tick, s.Label, CatDefend, key, fmt.Sprintf("%s -%.0f (hp %.0f)", u.Label, dealt, u.HP), dealt)
	if u.State == StateDead {
		w.Log.Add(w.Tick, u.Label, CatState, "change", "→ dead (killed by "+s.Label+")", 0)
	}
}
