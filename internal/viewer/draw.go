package viewer

import (
	"fmt"
	"image/color"
	"math"

	"github.com/Garsondee/Siege-Sense/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

const (
	hudLineHeight = 14
	hudPad        = 6
	hpBarHeight   = 3
)

var tileColors = map[game.TileType]color.RGBA{
	game.TileGrass:       {R: 58, G: 96, B: 52, A: 255},
	game.TileMud:         {R: 96, G: 72, B: 44, A: 255},
	game.TileWall:        {R: 112, G: 108, B: 104, A: 255},
	game.TileWater:       {R: 36, G: 70, B: 140, A: 255},
	game.TileFrozenWater: {R: 170, G: 205, B: 230, A: 255},
	game.TileDirt:        {R: 120, G: 98, B: 70, A: 255},
	game.TileForest:      {R: 28, G: 64, B: 30, A: 255},
	game.TileTreasure:    {R: 220, G: 180, B: 40, A: 255},
}

func tileColor(t game.TileType) color.RGBA {
	if c, ok := tileColors[t]; ok {
		return c
	}
	return color.RGBA{R: 255, G: 0, B: 255, A: 255}
}

// stateColor is the body colour of a unit in state s.
func stateColor(s game.UnitState) color.RGBA {
	switch s {
	case game.StateMoving:
		return color.RGBA{R: 90, G: 170, B: 240, A: 255}
	case game.StateAttacking:
		return color.RGBA{R: 230, G: 70, B: 50, A: 255}
	case game.StateSearchingDirectional:
		return color.RGBA{R: 230, G: 200, B: 80, A: 255}
	case game.StateBreachingObstacle:
		return color.RGBA{R: 220, G: 120, B: 30, A: 255}
	case game.StateDead:
		return color.RGBA{R: 60, G: 60, B: 60, A: 255}
	default:
		return color.RGBA{R: 200, G: 200, B: 200, A: 255}
	}
}

// dangerAlpha scales a danger level against the field maximum into an
// overlay alpha. Zero danger is fully transparent.
func dangerAlpha(d, peak float64) uint8 {
	if d <= 0 || peak <= 0 {
		return 0
	}
	return uint8(30 + 170*math.Min(d/peak, 1))
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 12, B: 16, A: 255})
	ox, oy := float32(borderWidth), float32(borderWidth)

	g.drawTerrain(screen, ox, oy)
	if g.showDanger {
		g.drawDanger(screen, ox, oy)
	}
	g.drawStructures(screen, ox, oy)
	g.drawUnits(screen, ox, oy)
	g.drawCaster(screen, ox, oy)

	mw, mh := g.world.Terrain.PixelSize()
	vector.StrokeRect(screen, ox-1, oy-1, float32(mw)+2, float32(mh)+2, 2.0, color.RGBA{R: 80, G: 80, B: 100, A: 255}, false)

	_, winH := g.WindowSize()
	drawLogPanel(screen, g.world.Log, borderWidth+int(mw)+borderWidth, winH)

	if g.showHUD {
		g.drawHUD(screen, ox, oy)
	}
}

func (g *Game) drawTerrain(screen *ebiten.Image, ox, oy float32) {
	tg := g.world.Terrain
	ts := float32(game.TileSize)
	for r := 0; r < tg.Rows(); r++ {
		for c := 0; c < tg.Cols(); c++ {
			x, y := ox+float32(c)*ts, oy+float32(r)*ts
			vector.FillRect(screen, x, y, ts, ts, tileColor(tg.Tile(game.Cell{Col: c, Row: r})), false)
		}
	}
	grid := color.RGBA{R: 0, G: 0, B: 0, A: 40}
	w, h := float32(tg.Cols())*ts, float32(tg.Rows())*ts
	for c := 0; c <= tg.Cols(); c++ {
		x := ox + float32(c)*ts
		vector.StrokeLine(screen, x, oy, x, oy+h, 1.0, grid, false)
	}
	for r := 0; r <= tg.Rows(); r++ {
		y := oy + float32(r)*ts
		vector.StrokeLine(screen, ox, y, ox+w, y, 1.0, grid, false)
	}
}

func (g *Game) drawDanger(screen *ebiten.Image, ox, oy float32) {
	tg := g.world.Terrain
	peak := 0.0
	for r := 0; r < tg.Rows(); r++ {
		for c := 0; c < tg.Cols(); c++ {
			peak = math.Max(peak, tg.DangerLevel(game.Cell{Col: c, Row: r}))
		}
	}
	ts := float32(game.TileSize)
	for r := 0; r < tg.Rows(); r++ {
		for c := 0; c < tg.Cols(); c++ {
			a := dangerAlpha(tg.DangerLevel(game.Cell{Col: c, Row: r}), peak)
			if a == 0 {
				continue
			}
			vector.FillRect(screen, ox+float32(c)*ts, oy+float32(r)*ts, ts, ts, color.RGBA{R: 255, G: 40, B: 20, A: a}, false)
		}
	}
}

func (g *Game) drawStructures(screen *ebiten.Image, ox, oy float32) {
	ts := float32(game.TileSize)
	for _, s := range g.world.Structures.All() {
		if !s.IsAlive() {
			continue
		}
		x, y := ox+float32(s.X), oy+float32(s.Y)
		if s.IsWall {
			left, top := ox+float32(s.Cell.Col)*ts, oy+float32(s.Cell.Row)*ts
			fill := color.RGBA{R: 140, G: 134, B: 126, A: 255}
			if s.CanAttack() {
				fill = color.RGBA{R: 150, G: 110, B: 90, A: 255}
			}
			vector.FillRect(screen, left+2, top+2, ts-4, ts-4, fill, false)
			vector.StrokeRect(screen, left+2, top+2, ts-4, ts-4, 1.0, color.RGBA{R: 70, G: 66, B: 62, A: 255}, false)
		} else {
			vector.FillCircle(screen, x, y, float32(s.Radius), color.RGBA{R: 170, G: 40, B: 40, A: 255}, true)
			vector.StrokeCircle(screen, x, y, float32(s.Radius), 1.5, color.RGBA{R: 40, G: 10, B: 10, A: 255}, true)
			if s.Range > 0 {
				vector.StrokeCircle(screen, x, y, float32(s.Range)*ts, 1.0, color.RGBA{R: 255, G: 80, B: 80, A: 60}, true)
			}
		}
		drawHPBar(screen, x-ts/2+4, y-ts/2-hpBarHeight, ts-8, s.HP/s.MaxHP)
	}
}

func (g *Game) drawUnits(screen *ebiten.Image, ox, oy float32) {
	for _, u := range g.world.Units {
		if !u.IsAlive() {
			continue
		}
		selected := u.ID == g.selected
		g.drawPath(screen, ox, oy, u.X, u.Y, u.Path(), u.PathIndex(), selected)

		x, y := ox+float32(u.X), oy+float32(u.Y)
		vector.FillCircle(screen, x, y, float32(u.Radius), stateColor(u.State), true)
		if u.Fleeing() {
			vector.StrokeCircle(screen, x, y, float32(u.Radius)+2, 1.0, stateColor(game.StateIdle), true)
		}
		if selected {
			vector.StrokeCircle(screen, x, y, float32(u.Radius)+4, 2.0, color.RGBA{R: 255, G: 255, B: 255, A: 220}, true)
			if t := g.world.Structures.Live(u.Target); t != nil {
				vector.StrokeLine(screen, x, y, ox+float32(t.X), oy+float32(t.Y), 1.0, color.RGBA{R: 255, G: 90, B: 60, A: 160}, true)
			}
		}
		r := float32(u.Radius)
		drawHPBar(screen, x-r, y-r-hpBarHeight-2, 2*r, u.HP/u.MaxHP)
	}
}

// drawPath strokes the remaining waypoints from (fx, fy).
func (g *Game) drawPath(screen *ebiten.Image, ox, oy float32, fx, fy float64, p game.Path, from int, bright bool) {
	if from >= len(p) {
		return
	}
	col := color.RGBA{R: 255, G: 255, B: 255, A: 50}
	if bright {
		col.A = 160
	}
	px, py := ox+float32(fx), oy+float32(fy)
	for _, c := range p[from:] {
		cx, cy := c.Center()
		nx, ny := ox+float32(cx), oy+float32(cy)
		vector.StrokeLine(screen, px, py, nx, ny, 1.0, col, true)
		px, py = nx, ny
	}
	vector.FillCircle(screen, px, py, 2.5, col, true)
}

func (g *Game) drawCaster(screen *ebiten.Image, ox, oy float32) {
	c := g.world.Caster
	if c == nil || !c.IsAlive() {
		return
	}
	g.drawPath(screen, ox, oy, c.X, c.Y, c.Path(), c.PathIndex(), true)
	x, y := ox+float32(c.X), oy+float32(c.Y)
	vector.StrokeCircle(screen, x, y, game.SummonRange, 1.0, color.RGBA{R: 170, G: 120, B: 255, A: 90}, true)
	vector.FillCircle(screen, x, y, float32(c.Radius), color.RGBA{R: 150, G: 90, B: 240, A: 255}, true)
	if c.Shield > 0 {
		vector.StrokeCircle(screen, x, y, float32(c.Radius)+3, 1.5, color.RGBA{R: 120, G: 220, B: 255, A: 200}, true)
	}
	r := float32(c.Radius)
	drawHPBar(screen, x-r, y-r-hpBarHeight-2, 2*r, c.HP/c.MaxHP)

	if sp, err := g.reg.Spell(game.SpellFireball); err == nil && g.aimFireball && g.hoverOK {
		vector.StrokeCircle(screen, x, y, float32(sp.CastRange*game.TileSize), 1.0, color.RGBA{R: 255, G: 120, B: 40, A: 120}, true)
		burst := color.RGBA{R: 255, G: 90, B: 30, A: 200}
		if !c.InCastRange(sp, g.hoverX, g.hoverY) {
			burst = color.RGBA{R: 255, G: 0, B: 0, A: 200}
		}
		vector.StrokeCircle(screen, ox+float32(g.hoverX), oy+float32(g.hoverY), float32(sp.Radius*game.TileSize), 2.0, burst, true)
	}
}

func drawHPBar(screen *ebiten.Image, x, y, w float32, frac float64) {
	frac = math.Max(0, math.Min(1, frac))
	vector.FillRect(screen, x, y, w, hpBarHeight, color.RGBA{R: 30, G: 0, B: 0, A: 200}, false)
	fill := color.RGBA{R: 80, G: 210, B: 80, A: 230}
	if frac < 0.35 {
		fill = color.RGBA{R: 230, G: 80, B: 50, A: 230}
	}
	vector.FillRect(screen, x, y, w*float32(frac), hpBarHeight, fill, false)
}

// hudLines is the text of the HUD box.
func (g *Game) hudLines() []string {
	w := g.world
	lines := []string{
		fmt.Sprintf("%s  T=%d  %s  SIM %s", g.levels[g.levelIdx].Name, w.Tick, w.Status, speedLabel(g.simSpeed)),
	}
	if c := w.Caster; c != nil {
		lines = append(lines, fmt.Sprintf("caster hp %.0f/%.0f  mana %.0f/%.0f  units %d  lost %d",
			c.HP, c.MaxHP, c.Mana, c.MaxMana, len(w.Units), w.UnitsLost))
	}
	summon := ""
	for i, tag := range g.reg.UnitTags() {
		if i >= len(summonKeys) {
			break
		}
		k, _ := g.reg.UnitKind(tag)
		summon += fmt.Sprintf("[%d]%s %.0f  ", i+1, tag, k.SummonCost())
	}
	lines = append(lines, summon+"Q+n=search")
	spells := ""
	for _, sk := range []struct{ key, tag string }{{"F", game.SpellFireball}, {"S", game.SpellShield}} {
		if sp, err := g.reg.Spell(sk.tag); err == nil {
			spells += fmt.Sprintf("[%s]%s %.0f  ", sk.key, sk.tag, sp.ManaCost)
		}
	}
	if spells != "" {
		lines = append(lines, spells+"hold F to aim")
	}
	if u := w.Unit(g.selected); u != nil {
		lines = append(lines, fmt.Sprintf("%s %s hp %.0f  %s/%s  target S%d",
			u.Label, u.Kind, u.HP, u.State, u.Order, u.Target))
		if evs := w.Log.FilterActor(u.Label); len(evs) > 0 {
			e := evs[len(evs)-1]
			lines = append(lines, fmt.Sprintf("  last T=%d %s %s", e.Tick, e.Key, e.Value))
		}
	}
	if l := g.hoverLine(); l != "" {
		lines = append(lines, l)
	}
	lines = append(lines,
		"LMB select/move caster  RMB order  Shift=forced A=attack-move",
		"P pause  ,/. speed  D danger  R reset  N next  C copy  H hud",
	)
	if g.status != "" {
		lines = append(lines, "> "+g.status)
	}
	return lines
}

// hoverLine describes the structure under the cursor and the units that
// have engaged it.
func (g *Game) hoverLine() string {
	if !g.hoverOK {
		return ""
	}
	s := g.world.Structures.At(game.CellAt(g.hoverX, g.hoverY))
	if s == nil {
		return ""
	}
	line := fmt.Sprintf("%s %s hp %.0f/%.0f", s.Label, s.Kind, s.HP, s.MaxHP)
	if ids := s.Attackers(); len(ids) > 0 {
		line += "  engaged by"
		for _, id := range ids {
			line += fmt.Sprintf(" U%d", id)
		}
	}
	return line
}

func (g *Game) drawHUD(screen *ebiten.Image, ox, oy float32) {
	lines := g.hudLines()
	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	face := basicfont.Face7x13
	boxW := float32(maxLen*face.Advance + hudPad*2)
	boxH := float32(len(lines)*hudLineHeight + hudPad*2)
	bx, by := ox+4, oy+4

	vector.FillRect(screen, bx, by, boxW, boxH, color.RGBA{R: 6, G: 6, B: 10, A: 200}, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1.0, color.RGBA{R: 90, G: 90, B: 130, A: 180}, false)
	for i, line := range lines {
		tx := int(bx) + hudPad
		ty := int(by) + hudPad + (i+1)*hudLineHeight - 3 // baseline
		text.Draw(screen, line, face, tx, ty, color.White)
	}
}
