package game

import "math"

// traceCells lists, in order, every cell the segment (x0,y0)→(x1,y1) passes
// through. When the segment crosses a cell corner exactly, both side cells
// are included, so a diagonal gap between two obstructions is never skipped.
func traceCells(x0, y0, x1, y1 float64) []Cell {
	c := CellAt(x0, y0)
	end := CellAt(x1, y1)
	cells := []Cell{c}
	if c == end {
		return cells
	}

	dx, dy := x1-x0, y1-y0
	stepX, tMaxX, tDeltaX := traceAxis(x0, dx, c.Col)
	stepY, tMaxY, tDeltaY := traceAxis(y0, dy, c.Row)

	limit := iabs(end.Col-c.Col) + iabs(end.Row-c.Row) + 2
	for i := 0; i < limit && c != end; i++ {
		switch {
		case tMaxX < tMaxY:
			if tMaxX > 1 {
				return cells
			}
			c.Col += stepX
			tMaxX += tDeltaX
		case tMaxY < tMaxX:
			if tMaxY > 1 {
				return cells
			}
			c.Row += stepY
			tMaxY += tDeltaY
		default:
			if tMaxX > 1 {
				return cells
			}
			cells = append(cells, Cell{Col: c.Col + stepX, Row: c.Row}, Cell{Col: c.Col, Row: c.Row + stepY})
			c.Col += stepX
			c.Row += stepY
			tMaxX += tDeltaX
			tMaxY += tDeltaY
		}
		cells = append(cells, c)
	}
	return cells
}

// traceAxis returns the step direction, the segment parameter of the first
// cell boundary crossing, and the parameter distance between crossings.
func traceAxis(origin, delta float64, cell int) (int, float64, float64) {
	switch {
	case delta > 0:
		boundary := float64((cell + 1) * TileSize)
		return 1, (boundary - origin) / delta, TileSize / delta
	case delta < 0:
		boundary := float64(cell * TileSize)
		return -1, (boundary - origin) / delta, TileSize / -delta
	default:
		return 0, math.Inf(1), math.Inf(1)
	}
}

func iabs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
