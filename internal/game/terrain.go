package game

import (
	"fmt"
	"math"
)

// Cell is an integer grid coordinate.
type Cell struct {
	Col, Row int
}

// CellAt returns the cell containing the pixel position (x, y).
func CellAt(x, y float64) Cell {
	return Cell{Col: int(math.Floor(x / TileSize)), Row: int(math.Floor(y / TileSize))}
}

// Center returns the pixel centre of the cell.
func (c Cell) Center() (float64, float64) {
	return float64(c.Col*TileSize) + TileSize/2, float64(c.Row*TileSize) + TileSize/2
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Col, c.Row)
}

func cellDistance(a, b Cell) float64 {
	return math.Hypot(float64(a.Col-b.Col), float64(a.Row-b.Row))
}

// TileType is the terrain kind of a cell. Values match the digits used in
// level tables.
type TileType uint8

const (
	TileGrass TileType = iota
	TileMud
	TileWall
	TileWater
	TileFrozenWater
	TileDirt
	TileForest
	TileTreasure
	tileTypeCount
)

// TileProps holds the fixed traversal attributes of a tile type.
type TileProps struct {
	Walkable bool
	SpeedMul float64
	Cost     float64 // +Inf when not walkable
	Burnable bool
}

var tileTable = [tileTypeCount]TileProps{
	TileGrass:       {Walkable: true, SpeedMul: 1.0, Cost: 10},
	TileMud:         {Walkable: true, SpeedMul: 0.5, Cost: 20},
	TileWall:        {SpeedMul: 0, Cost: math.Inf(1)},
	TileWater:       {SpeedMul: 0, Cost: math.Inf(1)},
	TileFrozenWater: {Walkable: true, SpeedMul: 1.2, Cost: 8},
	TileDirt:        {Walkable: true, SpeedMul: 1.0, Cost: 10},
	TileForest:      {SpeedMul: 0, Cost: math.Inf(1), Burnable: true},
	TileTreasure:    {Walkable: true, SpeedMul: 1.0, Cost: 1},
}

// Props returns the attributes of t. Unknown values behave like a wall.
func (t TileType) Props() TileProps {
	if t >= tileTypeCount {
		return tileTable[TileWall]
	}
	return tileTable[t]
}

func (t TileType) String() string {
	switch t {
	case TileGrass:
		return "grass"
	case TileMud:
		return "mud"
	case TileWall:
		return "wall"
	case TileWater:
		return "water"
	case TileFrozenWater:
		return "frozen_water"
	case TileDirt:
		return "dirt"
	case TileForest:
		return "forest"
	case TileTreasure:
		return "treasure"
	default:
		return fmt.Sprintf("tile(%d)", uint8(t))
	}
}

// MinTileCost is the cheapest per-cell cost of any walkable tile type. It is
// the scale of the pathfinder heuristic.
func MinTileCost() float64 {
	lowest := math.Inf(1)
	for _, p := range tileTable {
		if p.Walkable && p.Cost < lowest {
			lowest = p.Cost
		}
	}
	return lowest
}

// Threat is the read-only view of an attack-capable structure used to build
// the danger field.
type Threat struct {
	Cell          Cell
	Radius        float64 // cells
	AttackCapable bool
	Damage        float64
	AttackRate    float64 // attacks per second
}

// Weight is the danger contributed at distance zero.
func (th Threat) Weight() float64 {
	return th.Damage * th.AttackRate * DangerScale
}

// TerrainGrid stores tile types and the danger field, row-major.
type TerrainGrid struct {
	cols   int
	rows   int
	tiles  []TileType
	danger []float64
}

// NewTerrainGrid creates a cols×rows grid filled with a single tile type.
func NewTerrainGrid(cols, rows int, fill TileType) *TerrainGrid {
	n := cols * rows
	tg := &TerrainGrid{
		cols:   cols,
		rows:   rows,
		tiles:  make([]TileType, n),
		danger: make([]float64, n),
	}
	for i := range tg.tiles {
		tg.tiles[i] = fill
	}
	return tg
}

// Cols returns the grid width in cells.
func (tg *TerrainGrid) Cols() int { return tg.cols }

// Rows returns the grid height in cells.
func (tg *TerrainGrid) Rows() int { return tg.rows }

// PixelSize returns the grid extent in pixels.
func (tg *TerrainGrid) PixelSize() (float64, float64) {
	return float64(tg.cols * TileSize), float64(tg.rows * TileSize)
}

// InBounds reports whether c lies inside the grid.
func (tg *TerrainGrid) InBounds(c Cell) bool {
	return c.Col >= 0 && c.Row >= 0 && c.Col < tg.cols && c.Row < tg.rows
}

func (tg *TerrainGrid) index(c Cell) int {
	return c.Row*tg.cols + c.Col
}

// Tile returns the tile type at c. Out-of-bounds cells read as walls.
func (tg *TerrainGrid) Tile(c Cell) TileType {
	if !tg.InBounds(c) {
		return TileWall
	}
	return tg.tiles[tg.index(c)]
}

// SetTile changes the tile type of one cell. The caller owns flagging a
// danger recompute when walkability changes.
func (tg *TerrainGrid) SetTile(c Cell, t TileType) error {
	if !tg.InBounds(c) {
		return fmt.Errorf("set tile %s: %w", c, ErrOutOfBounds)
	}
	tg.tiles[tg.index(c)] = t
	return nil
}

// IsWalkable is false out of bounds and for obstruction tiles.
func (tg *TerrainGrid) IsWalkable(c Cell) bool {
	return tg.Tile(c).Props().Walkable
}

// MovementCost returns the base tile cost, +Inf when not walkable.
func (tg *TerrainGrid) MovementCost(c Cell) float64 {
	p := tg.Tile(c).Props()
	if !p.Walkable {
		return math.Inf(1)
	}
	return p.Cost
}

// SpeedMultiplier scales linear speed inside c; 0 when not walkable.
func (tg *TerrainGrid) SpeedMultiplier(c Cell) float64 {
	p := tg.Tile(c).Props()
	if !p.Walkable {
		return 0
	}
	return p.SpeedMul
}

// DangerLevel returns the danger at c, +Inf out of bounds.
func (tg *TerrainGrid) DangerLevel(c Cell) float64 {
	if !tg.InBounds(c) {
		return math.Inf(1)
	}
	return tg.danger[tg.index(c)]
}

// RecomputeDanger rebuilds the danger field from scratch. Each attack-capable
// threat with a positive radius adds weight × (1 − d/r) to every cell within r.
func (tg *TerrainGrid) RecomputeDanger(threats []Threat) {
	for i := range tg.danger {
		tg.danger[i] = 0
	}
	for _, th := range threats {
		if !th.AttackCapable || th.Radius <= 0 {
			continue
		}
		w := th.Weight()
		if w <= 0 {
			continue
		}
		reach := int(math.Ceil(th.Radius))
		for row := th.Cell.Row - reach; row <= th.Cell.Row+reach; row++ {
			for col := th.Cell.Col - reach; col <= th.Cell.Col+reach; col++ {
				c := Cell{Col: col, Row: row}
				if !tg.InBounds(c) {
					continue
				}
				d := cellDistance(c, th.Cell)
				if d > th.Radius {
					continue
				}
				tg.danger[tg.index(c)] += w * (1 - d/th.Radius)
			}
		}
	}
}

// TotalCost fuses terrain cost and danger into the single scalar the
// pathfinder minimises.
func (tg *TerrainGrid) TotalCost(c Cell, intelligence float64) float64 {
	if !tg.IsWalkable(c) {
		return math.Inf(1)
	}
	return tg.MovementCost(c) + tg.DangerLevel(c)*intelligence
}

// nearestWalkable returns c if walkable, otherwise the closest walkable cell
// within the given number of rings around it.
func (tg *TerrainGrid) nearestWalkable(c Cell, rings int) (Cell, bool) {
	if tg.IsWalkable(c) {
		return c, true
	}
	for r := 1; r <= rings; r++ {
		best, bestD, found := Cell{}, math.Inf(1), false
		for row := c.Row - r; row <= c.Row+r; row++ {
			for col := c.Col - r; col <= c.Col+r; col++ {
				n := Cell{Col: col, Row: row}
				if !tg.IsWalkable(n) {
					continue
				}
				if d := cellDistance(c, n); d < bestD {
					best, bestD, found = n, d, true
				}
			}
		}
		if found {
			return best, true
		}
	}
	return Cell{}, false
}
