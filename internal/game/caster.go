package game

import "fmt"

// Caster is the player unit. It paths at full intelligence, regenerates
// mana, and pays for summons.
type Caster struct {
	walker
	Vitals

	Radius       float64
	Intelligence float64
	Mana         float64
	MaxMana      float64
	ManaRegen    float64 // per second

	castTimer float64
}

func newCaster(k CasterKind, c Cell) *Caster {
	x, y := c.Center()
	return &Caster{
		walker:       walker{X: x, Y: y, Speed: k.Speed},
		Vitals:       Vitals{HP: k.HP, MaxHP: k.HP},
		Radius:       k.Radius,
		Intelligence: k.Intelligence,
		Mana:         k.Mana,
		MaxMana:      k.Mana,
		ManaRegen:    k.ManaRegen,
	}
}

// Update regenerates mana and walks the active path.
func (c *Caster) Update(dt float64, tg *TerrainGrid) {
	if !c.IsAlive() {
		return
	}
	c.Mana = min(c.MaxMana, c.Mana+c.ManaRegen*dt)
	if c.castTimer > 0 {
		c.castTimer = max(0, c.castTimer-dt)
	}
	c.followPath(dt, tg)
	if c.pathDone() {
		c.clearPath()
	}
}

// MoveTo paths the caster to the pixel point (x, y).
func (c *Caster) MoveTo(x, y float64, env *TickEnv) error {
	if !c.IsAlive() {
		return ErrCasterDead
	}
	goal := CellAt(x, y)
	p, ok := env.Paths.FindPath(c.Cell(), goal, c.Intelligence)
	if !ok {
		env.log("caster", CatPath, "not_found", fmt.Sprintf("%s → %s", c.Cell(), goal), 0)
		return fmt.Errorf("caster to %s: %w", goal, ErrNoPath)
	}
	c.setPath(p)
	env.log("caster", CatOrder, "move", goal.String(), float64(len(p)))
	return nil
}

// Moving reports whether the caster has a path to follow.
func (c *Caster) Moving() bool { return !c.pathDone() }

// Spend deducts cost if the pool covers it.
func (c *Caster) Spend(cost float64) error {
	if c.Mana < cost {
		return fmt.Errorf("need %.1f, have %.1f: %w", cost, c.Mana, ErrInsufficientMana)
	}
	c.Mana -= cost
	return nil
}

// InSummonRange reports whether (x, y) is close enough to summon at.
func (c *Caster) InSummonRange(x, y float64) bool {
	return c.distanceTo(x, y) <= SummonRange
}
