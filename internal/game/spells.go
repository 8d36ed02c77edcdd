package game

import (
	"fmt"
	"math"
)

// Spell tags in the built-in kinds table.
const (
	SpellFireball = "fireball"
	SpellShield   = "shield"
)

// Casting reports whether the caster is still locked out by its last cast.
func (c *Caster) Casting() bool { return c.castTimer > 0 }

// InCastRange reports whether (x, y) is within the spell's cast range.
// Self spells are always in range.
func (c *Caster) InCastRange(sp SpellKind, x, y float64) bool {
	return sp.CastRange <= 0 || c.distanceTo(x, y) <= sp.CastRange*TileSize
}

// beginCast checks liveness, lockout, range and mana, then pays for the
// spell. Refusals are logged and cost nothing.
func (c *Caster) beginCast(sp SpellKind, x, y float64, env *TickEnv) error {
	var err error
	switch {
	case !c.IsAlive():
		return ErrCasterDead
	case c.Casting():
		err = fmt.Errorf("%s: %w", sp.Name, ErrCasting)
	case !c.InCastRange(sp, x, y):
		err = fmt.Errorf("%s at %s: %w", sp.Name, CellAt(x, y), ErrOutOfRange)
	default:
		err = c.Spend(sp.ManaCost)
	}
	if err != nil {
		env.log("caster", CatSpell, "refused", err.Error(), c.Mana)
		return err
	}
	c.castTimer = sp.CastTime
	return nil
}

// CastShield adds the spell's shield amount to the caster.
func (c *Caster) CastShield(sp SpellKind, env *TickEnv) error {
	if err := c.beginCast(sp, c.X, c.Y, env); err != nil {
		return err
	}
	c.AddShield(sp.ShieldAmount)
	env.log("caster", CatSpell, "shield", fmt.Sprintf("+%.0f", sp.ShieldAmount), c.Shield)
	return nil
}

// CastFireball bursts at (x, y). Every live structure within the radius
// takes the spell's damage scaled by 1 - d/r*0.5, and burnable tiles in
// the radius burn down to dirt. It returns the structures it hit.
func (c *Caster) CastFireball(x, y float64, sp SpellKind, env *TickEnv) ([]*Structure, error) {
	if err := c.beginCast(sp, x, y, env); err != nil {
		return nil, err
	}
	r := sp.Radius * TileSize
	env.log("caster", CatSpell, "fireball", CellAt(x, y).String(), sp.ManaCost)

	var hit []*Structure
	for _, s := range env.Structures.All() {
		if !s.IsAlive() {
			continue
		}
		d := s.distanceTo(x, y)
		if d > r {
			continue
		}
		dmg := math.Round(sp.Damage * (1 - d/r*0.5))
		applied := s.TakeDamage(dmg)
		env.log(s.Label, CatSpell, "hit", fmt.Sprintf("%.0f from %s", applied, sp.Name), s.HP)
		hit = append(hit, s)
	}

	for _, cell := range cellsWithin(env.Terrain, x, y, r) {
		if !env.Terrain.Tile(cell).Props().Burnable {
			continue
		}
		if err := env.Terrain.SetTile(cell, TileDirt); err == nil {
			env.log("--", CatSpell, "burn", cell.String(), 0)
		}
	}
	return hit, nil
}

// cellsWithin lists in-bounds cells whose centre lies within r pixels of
// (x, y), row by row.
func cellsWithin(tg *TerrainGrid, x, y, r float64) []Cell {
	lo, hi := CellAt(x-r, y-r), CellAt(x+r, y+r)
	var out []Cell
	for row := lo.Row; row <= hi.Row; row++ {
		for col := lo.Col; col <= hi.Col; col++ {
			c := Cell{Col: col, Row: row}
			if !tg.InBounds(c) {
				continue
			}
			cx, cy := c.Center()
			if math.Hypot(cx-x, cy-y) <= r {
				out = append(out, c)
			}
		}
	}
	return out
}

// Cast casts the spell tag at (x, y); self spells ignore the point. A
// fireball that fells a structure reaps it at once so walls clear and the
// danger field is recomputed before the next unit update.
func (w *World) Cast(tag string, x, y float64) error {
	c := w.Caster
	if c == nil || !c.IsAlive() {
		return ErrCasterDead
	}
	sp, err := w.Registry.Spell(tag)
	if err != nil {
		return err
	}
	env := w.Env()
	switch sp.Effect {
	case EffectShield:
		return c.CastShield(sp, env)
	case EffectAreaDamage:
		hit, err := c.CastFireball(x, y, sp, env)
		if err != nil {
			return err
		}
		for _, s := range hit {
			if !s.IsAlive() {
				w.reapStructures()
				break
			}
		}
		return nil
	}
	return fmt.Errorf("spell %q effect %q: %w", tag, sp.Effect, ErrUnknownKind)
}
