package game

import (
	"container/heap"
	"math"
)

// CostField is the cost surface the pathfinder searches.
type CostField interface {
	IsWalkable(c Cell) bool
	TotalCost(c Cell, intelligence float64) float64
}

// Path is an ordered cell sequence from start to goal, both included.
type Path []Cell

// Pathfinder runs weighted A* over a cost field. It keeps no state between
// calls; intelligence is supplied per request.
type Pathfinder struct {
	field   CostField
	minCost float64
}

// NewPathfinder binds a pathfinder to the given cost field.
func NewPathfinder(field CostField) *Pathfinder {
	return &Pathfinder{field: field, minCost: MinTileCost()}
}

// FindPath searches from start to goal minimising TotalCost weighted by
// intelligence. ok is false when either endpoint is not walkable or no
// connection exists; a nil path is returned in that case.
func (pf *Pathfinder) FindPath(start, goal Cell, intelligence float64) (Path, bool) {
	return findPath(pf.field, pf.minCost, start, goal, intelligence)
}

type pathNode struct {
	cell   Cell
	g, f   float64
	seq    int // insertion order, breaks f ties
	parent *pathNode
	index  int // heap index
}

type openList []*pathNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	if ol[i].f != ol[j].f {
		return ol[i].f < ol[j].f
	}
	return ol[i].seq < ol[j].seq
}
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

var dirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

func findPath(field CostField, minCost float64, start, goal Cell, intelligence float64) (Path, bool) {
	if !field.IsWalkable(start) || !field.IsWalkable(goal) {
		return nil, false
	}
	heuristic := func(c Cell) float64 {
		return cellDistance(c, goal) * minCost
	}

	seq := 0
	root := &pathNode{cell: start, f: heuristic(start)}
	ol := &openList{root}
	heap.Init(ol)

	closed := make(map[Cell]bool)
	best := map[Cell]*pathNode{start: root}

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		if closed[cur.cell] {
			continue
		}
		if cur.cell == goal {
			return buildPath(cur), true
		}
		closed[cur.cell] = true

		for _, d := range dirs {
			next := Cell{Col: cur.cell.Col + d[0], Row: cur.cell.Row + d[1]}
			if closed[next] || !field.IsWalkable(next) {
				continue
			}
			diagonal := d[0] != 0 && d[1] != 0
			// No cutting through blocked corners.
			if diagonal {
				if !field.IsWalkable(Cell{Col: cur.cell.Col + d[0], Row: cur.cell.Row}) ||
					!field.IsWalkable(Cell{Col: cur.cell.Col, Row: cur.cell.Row + d[1]}) {
					continue
				}
			}
			step := field.TotalCost(next, intelligence)
			if math.IsInf(step, 1) {
				continue
			}
			if diagonal {
				step *= math.Sqrt2
			}
			g := cur.g + step
			if prev, ok := best[next]; ok && g >= prev.g {
				continue
			}
			seq++
			node := &pathNode{cell: next, g: g, f: g + heuristic(next), seq: seq, parent: cur}
			best[next] = node
			heap.Push(ol, node)
		}
	}
	return nil, false
}

func buildPath(end *pathNode) Path {
	var cells Path
	for n := end; n != nil; n = n.parent {
		cells = append(cells, n.cell)
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells
}

// PathCost sums the step costs of p the same way the search accumulates them.
// It returns +Inf for a path that steps onto an unwalkable cell.
func PathCost(field CostField, p Path, intelligence float64) float64 {
	total := 0.0
	for i := 1; i < len(p); i++ {
		step := field.TotalCost(p[i], intelligence)
		if math.IsInf(step, 1) {
			return step
		}
		if p[i].Col != p[i-1].Col && p[i].Row != p[i-1].Row {
			step *= math.Sqrt2
		}
		total += step
	}
	return total
}
