// Package viewer is the interactive ebiten front end for a siege world.
package viewer

import (
	"fmt"

	"github.com/Garsondee/Siege-Sense/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
)

// borderWidth is the pixel gap between the window edge and the map.
const borderWidth = 24

// speeds are the selectable simulation multipliers; 0 is paused.
var speeds = []float64{0, 0.5, 1, 2, 4}

const noSelection game.UnitID = -1

// viewerLogLimit caps the interactive event log; the panel only shows the tail.
const viewerLogLimit = 2000

// Game implements ebiten.Game over a single world built from a level.
type Game struct {
	levels   []game.LevelDef
	levelIdx int
	reg      *game.Registry
	seed     int64
	log      *logrus.Entry

	world    *game.World
	selected game.UnitID
	status   string // last feedback line shown in the HUD

	showDanger bool
	showHUD    bool
	prevKeys   map[ebiten.Key]bool
	prevLeft   bool
	prevRight  bool

	hoverX, hoverY float64
	hoverOK        bool
	aimFireball    bool

	simSpeed  float64
	tickAccum float64
}

// New builds a viewer starting on the level with the given id.
func New(levels []game.LevelDef, levelID string, seed int64, log *logrus.Entry) (*Game, error) {
	idx := -1
	for i, l := range levels {
		if l.ID == levelID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("level %q: %w", levelID, game.ErrUnknownLevel)
	}
	g := &Game{
		levels:   levels,
		levelIdx: idx,
		reg:      game.DefaultRegistry(),
		seed:     seed,
		log:      log,
		showHUD:  true,
		prevKeys: make(map[ebiten.Key]bool),
		simSpeed: 1,
	}
	if err := g.reset(); err != nil {
		return nil, err
	}
	return g, nil
}

// reset rebuilds the current level from scratch with the viewer's seed.
func (g *Game) reset() error {
	lvl := g.levels[g.levelIdx]
	el := game.NewBoundedEventLog(false, viewerLogLimit)
	el.Mirror(g.log)
	w, err := lvl.Build(g.reg, el, g.seed)
	if err != nil {
		return fmt.Errorf("build %s: %w", lvl.ID, err)
	}
	g.world = w
	g.selected = noSelection
	g.tickAccum = 0
	g.status = lvl.Name
	g.log.WithField("level", lvl.ID).Info("level loaded")
	return nil
}

// World exposes the running world.
func (g *Game) World() *game.World { return g.world }

// Update handles input every frame and advances the world at simSpeed.
func (g *Game) Update() error {
	g.handleInput()
	g.advance()
	return nil
}

// advance runs as many world steps as the accumulated speed allows. Speeds
// below 1 carry the remainder to later frames.
func (g *Game) advance() {
	if g.simSpeed <= 0 || g.world.Status != game.StatusPlaying {
		return
	}
	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		g.world.Step()
		if g.world.Status != game.StatusPlaying {
			g.status = "outcome: " + g.world.Status.String()
			g.log.WithFields(logrus.Fields{
				"tick":   g.world.Tick,
				"lost":   g.world.UnitsLost,
				"status": g.world.Status.String(),
			}).Info("world finished")
			g.tickAccum = 0
			return
		}
	}
}

// WindowSize is the full window in pixels for the current level.
func (g *Game) WindowSize() (int, int) {
	mw, mh := g.world.Terrain.PixelSize()
	return borderWidth + int(mw) + borderWidth + logPanelWidth, borderWidth + int(mh) + borderWidth
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.WindowSize()
}

// screenToWorld maps a window pixel to a map pixel. ok is false outside
// the map.
func (g *Game) screenToWorld(sx, sy int) (x, y float64, ok bool) {
	x = float64(sx - borderWidth)
	y = float64(sy - borderWidth)
	mw, mh := g.world.Terrain.PixelSize()
	return x, y, x >= 0 && y >= 0 && x < mw && y < mh
}

// slower returns the next lower entry in speeds.
func slower(cur float64) float64 {
	for i, s := range speeds {
		if s >= cur && i > 0 {
			return speeds[i-1]
		}
	}
	return cur
}

// faster returns the next higher entry in speeds.
func faster(cur float64) float64 {
	for _, s := range speeds {
		if s > cur {
			return s
		}
	}
	return cur
}

func speedLabel(s float64) string {
	switch s {
	case 0:
		return "PAUSED"
	case 1, 2, 4:
		return fmt.Sprintf("%.0fx", s)
	default:
		return fmt.Sprintf("%.1fx", s)
	}
}
