package viewer

import (
	"fmt"
	"math"

	"github.com/Garsondee/Siege-Sense/internal/game"
	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
)

// summonKeys select UnitTags()[i], cheapest first.
var summonKeys = []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3}

// pressed records k for this frame and reports a fresh press.
func (g *Game) pressed(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !g.prevKeys[k]
}

func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	mx, my := ebiten.CursorPosition()
	wx, wy, onMap := g.screenToWorld(mx, my)
	g.hoverX, g.hoverY, g.hoverOK = wx, wy, onMap

	if g.pressed(currentKeys, ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if g.pressed(currentKeys, ebiten.KeyD) {
		g.showDanger = !g.showDanger
	}

	// P/Space=pause, ,=slower, .=faster.
	pause := g.pressed(currentKeys, ebiten.KeyP)
	if g.pressed(currentKeys, ebiten.KeySpace) || pause {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if g.pressed(currentKeys, ebiten.KeyComma) {
		g.simSpeed = slower(g.simSpeed)
	}
	if g.pressed(currentKeys, ebiten.KeyPeriod) {
		g.simSpeed = faster(g.simSpeed)
	}

	if g.pressed(currentKeys, ebiten.KeyR) {
		g.restart()
	}
	if g.pressed(currentKeys, ebiten.KeyN) {
		g.levelIdx = (g.levelIdx + 1) % len(g.levels)
		g.restart()
	}
	if g.pressed(currentKeys, ebiten.KeyC) {
		if err := clipboard.WriteAll(g.world.Log.Format()); err != nil {
			g.log.WithError(err).Warn("clipboard copy failed")
			g.status = "clipboard unavailable"
		} else {
			g.status = fmt.Sprintf("copied %d log entries", g.world.Log.Len())
		}
	}

	// Hold F to aim a fireball at the cursor, release to cast. S shields.
	aim := ebiten.IsKeyPressed(ebiten.KeyF)
	if !aim && g.aimFireball && onMap {
		g.cast(game.SpellFireball, wx, wy)
	}
	g.aimFireball = aim
	if g.pressed(currentKeys, ebiten.KeyS) {
		g.cast(game.SpellShield, 0, 0)
	}

	search := ebiten.IsKeyPressed(ebiten.KeyQ)
	tags := g.reg.UnitTags()
	for i, k := range summonKeys {
		if g.pressed(currentKeys, k) && i < len(tags) && onMap {
			g.summon(planSummon(g.world, tags[i], wx, wy, search))
		}
	}

	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if left && !g.prevLeft && onMap {
		g.handleLeftClick(wx, wy)
	}
	g.prevLeft = left

	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	if right && !g.prevRight && onMap {
		shift := ebiten.IsKeyPressed(ebiten.KeyShift)
		attack := ebiten.IsKeyPressed(ebiten.KeyA)
		g.handleRightClick(wx, wy, orderFor(shift, attack))
	}
	g.prevRight = right

	g.prevKeys = currentKeys
}

func (g *Game) restart() {
	if err := g.reset(); err != nil {
		g.log.WithError(err).Error("reset failed")
		g.status = err.Error()
	}
}

// handleLeftClick selects the unit under the cursor, or walks the caster
// there when nothing is hit.
func (g *Game) handleLeftClick(x, y float64) {
	if u := unitAt(g.world, x, y); u != nil {
		g.selected = u.ID
		g.status = fmt.Sprintf("selected %s (%s)", u.Label, u.Kind)
		return
	}
	g.selected = noSelection
	if g.world.Caster == nil {
		return
	}
	g.world.RefreshDanger()
	if err := g.world.Caster.MoveTo(x, y, g.world.Env()); err != nil {
		g.status = err.Error()
	}
}

// handleRightClick orders the selected unit: attack when a structure is
// under the cursor, otherwise move with the given order type.
func (g *Game) handleRightClick(x, y float64, order game.OrderType) {
	u := g.world.Unit(g.selected)
	if u == nil {
		g.selected = noSelection
		return
	}
	g.world.RefreshDanger()
	env := g.world.Env()
	if s := g.world.Structures.At(game.CellAt(x, y)); s != nil {
		if !u.SetAttackTarget(s.ID, env) {
			g.status = fmt.Sprintf("%s cannot reach %s", u.Label, s.Label)
		}
		return
	}
	if !u.SetMoveOrder(x, y, order, env) {
		g.status = fmt.Sprintf("%s: no path", u.Label)
	}
}

func (g *Game) summon(o game.SummonOrder) {
	units, err := g.world.Summon(o)
	if err != nil {
		g.status = fmt.Sprintf("summon %s: %v", o.Kind, err)
		return
	}
	g.status = fmt.Sprintf("summoned %d %s", len(units), o.Kind)
}

func (g *Game) cast(tag string, x, y float64) {
	if err := g.world.Cast(tag, x, y); err != nil {
		g.status = fmt.Sprintf("%s: %v", tag, err)
		return
	}
	g.status = "cast " + tag
}

// planSummon builds the summon for tag with the cursor at (x, y). Search
// summons spawn on the caster and head toward the cursor; a structure under
// the cursor becomes the attack target.
func planSummon(w *game.World, tag string, x, y float64, search bool) game.SummonOrder {
	if search && w.Caster != nil {
		c := w.Caster
		return game.SummonOrder{Kind: tag, Mode: game.SummonSearch, X: c.X, Y: c.Y, DirX: x - c.X, DirY: y - c.Y}
	}
	if s := w.Structures.At(game.CellAt(x, y)); s != nil {
		return game.SummonOrder{Kind: tag, Mode: game.SummonAttack, Target: s.ID}
	}
	return game.SummonOrder{Kind: tag, Mode: game.SummonIdle, X: x, Y: y}
}

// orderFor maps modifier keys to a move order. Shift wins over A.
func orderFor(shift, attack bool) game.OrderType {
	switch {
	case shift:
		return game.OrderForcedMove
	case attack:
		return game.OrderAttackMove
	default:
		return game.OrderMove
	}
}

// unitAt returns the live unit closest to (x, y) whose body, padded by a
// few pixels, contains the point.
func unitAt(w *game.World, x, y float64) *game.Unit {
	const pad = 4
	var best *game.Unit
	bestDist := math.Inf(1)
	for _, u := range w.Units {
		if !u.IsAlive() {
			continue
		}
		d := math.Hypot(u.X-x, u.Y-y)
		if d <= u.Radius+pad && d < bestDist {
			best, bestDist = u, d
		}
	}
	return best
}
