package viewer

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/Garsondee/Siege-Sense/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	logPanelWidth = 320
	logLineHeight = 11
	logLineChars  = 50 // debug font is 6px wide
	logHighlight  = 3  // newest rows drawn on a lighter band
)

// categoryColors tints the marker beside each log row.
var categoryColors = map[string]color.RGBA{
	game.CatState:  {R: 150, G: 150, B: 160, A: 255},
	game.CatOrder:  {R: 90, G: 170, B: 240, A: 255},
	game.CatPath:   {R: 120, G: 200, B: 200, A: 255},
	game.CatTarget: {R: 230, G: 200, B: 80, A: 255},
	game.CatAttack: {R: 230, G: 90, B: 60, A: 255},
	game.CatBreach: {R: 200, G: 120, B: 40, A: 255},
	game.CatFlee:   {R: 190, G: 110, B: 220, A: 255},
	game.CatSummon: {R: 160, G: 100, B: 240, A: 255},
	game.CatSpell:  {R: 255, G: 130, B: 40, A: 255},
	game.CatDefend: {R: 210, G: 60, B: 60, A: 255},
	game.CatWorld:  {R: 240, G: 240, B: 240, A: 255},
}

// panelLine renders an entry for the narrow log panel.
func panelLine(e game.EventEntry) string {
	line := fmt.Sprintf("%4d %-6s %s %s", e.Tick, e.Actor, e.Key, e.Value)
	line = strings.ReplaceAll(line, "→", "->")
	if len(line) > logLineChars {
		line = line[:logLineChars-1] + "~"
	}
	return line
}

// drawLogPanel draws the newest events that fit at panelX, newest at the
// bottom.
func drawLogPanel(screen *ebiten.Image, el *game.EventLog, panelX, panelH int) {
	px := float32(panelX)
	vector.FillRect(screen, px, 0, logPanelWidth, float32(panelH), color.RGBA{R: 10, G: 10, B: 14, A: 248}, false)
	vector.StrokeLine(screen, px, 0, px, float32(panelH), 1.0, color.RGBA{R: 60, G: 60, B: 80, A: 255}, false)

	vector.FillRect(screen, px, 0, logPanelWidth, 16, color.RGBA{R: 24, G: 24, B: 34, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("EVENT LOG  (%d)", el.Len()), panelX+8, 2)
	vector.StrokeLine(screen, px, 16, px+logPanelWidth, 16, 1.0, color.RGBA{R: 70, G: 70, B: 100, A: 200}, false)

	maxVisible := (panelH - 24) / logLineHeight
	if maxVisible <= 0 {
		return
	}
	visible := el.Recent(maxVisible)

	y := 20
	for i, e := range visible {
		if i >= len(visible)-logHighlight {
			vector.FillRect(screen, px+2, float32(y), logPanelWidth-4, logLineHeight, color.RGBA{R: 32, G: 32, B: 48, A: 160}, false)
		}
		dot, ok := categoryColors[e.Category]
		if !ok {
			dot = color.RGBA{R: 100, G: 100, B: 100, A: 255}
		}
		vector.FillRect(screen, px+5, float32(y+3), 3, 5, dot, false)
		ebitenutil.DebugPrintAt(screen, panelLine(e), panelX+12, y)
		y += logLineHeight
	}
}
