package game

import (
	"fmt"
	"math"
)

// resetOrder discards everything the previous order left behind. Orders call
// it before applying themselves so no mix of old and new state survives.
func (u *Unit) resetOrder() {
	u.clearPath()
	u.Target = NoStructure
	u.OriginalTarget = NoStructure
	u.Order = OrderNone
	u.hasMovePoint = false
	u.ignoreThreats = false
	u.fleeing = false
	u.unreachable = nil
}

// SetMoveOrder sends the unit to the pixel point (x, y). It reports whether a
// path was found; on failure the unit is left idle.
func (u *Unit) SetMoveOrder(x, y float64, order OrderType, env *TickEnv) bool {
	if u.State == StateDead {
		return false
	}
	u.resetOrder()
	if order == OrderNone {
		order = OrderMove
	}
	goal := CellAt(x, y)
	p, ok := env.Paths.FindPath(u.Cell(), goal, u.Intelligence)
	if !ok {
		env.log(u.Label, CatPath, "not_found", fmt.Sprintf("%s → %s", u.Cell(), goal), 0)
		u.setState(StateIdle, env, "path not found")
		return false
	}
	u.Order = order
	u.ignoreThreats = order == OrderForcedMove
	u.moveX, u.moveY, u.hasMovePoint = x, y, true
	u.setPath(p)
	env.log(u.Label, CatOrder, order.String(), goal.String(), float64(len(p)))
	u.setState(StateMoving, env, "order "+order.String())
	return true
}

// SetAttackTarget orders the unit to path to and destroy the structure id.
// An unknown, dead or unreachable target leaves the unit idle.
func (u *Unit) SetAttackTarget(id StructureID, env *TickEnv) bool {
	if u.State == StateDead {
		return false
	}
	u.resetOrder()
	s := env.Structures.Live(id)
	if s == nil {
		env.log(u.Label, CatTarget, "invalid", fmt.Sprintf("S%d", id), 0)
		u.setState(StateIdle, env, "invalid target")
		return false
	}
	p, ok := u.approach(s, env)
	if !ok {
		env.log(u.Label, CatPath, "not_found", "unreachable "+s.Label, 0)
		u.setState(StateIdle, env, "path not found")
		return false
	}
	u.Target = s.ID
	u.setPath(p)
	env.log(u.Label, CatOrder, "attack", s.Label, float64(len(p)))
	u.setState(StateMoving, env, "order attack")
	return true
}

// SetDirectionalSearch sends the unit toward the map edge along (dx, dy),
// engaging the first target it sights.
func (u *Unit) SetDirectionalSearch(dx, dy float64, env *TickEnv) bool {
	if u.State == StateDead {
		return false
	}
	u.resetOrder()
	norm := math.Hypot(dx, dy)
	if norm == 0 {
		env.log(u.Label, CatOrder, "search", "zero direction", 0)
		u.setState(StateIdle, env, "no direction")
		return false
	}
	ex, ey := u.edgePoint(dx/norm, dy/norm, env.Terrain)
	goal, ok := env.Terrain.nearestWalkable(CellAt(ex, ey), goalSearchRings)
	if !ok {
		env.log(u.Label, CatPath, "not_found", "no walkable edge", 0)
		u.setState(StateIdle, env, "path not found")
		return false
	}
	p, ok := env.Paths.FindPath(u.Cell(), goal, u.Intelligence)
	if !ok {
		env.log(u.Label, CatPath, "not_found", fmt.Sprintf("%s → %s", u.Cell(), goal), 0)
		u.setState(StateIdle, env, "path not found")
		return false
	}
	u.searchX, u.searchY = ex, ey
	u.setPath(p)
	env.log(u.Label, CatOrder, "search", fmt.Sprintf("dir (%.2f,%.2f) edge %s", dx/norm, dy/norm, goal), float64(len(p)))
	u.setState(StateSearchingDirectional, env, "order search")
	return true
}

// SearchPoint returns the edge point of the current directional search.
func (u *Unit) SearchPoint() (float64, float64) {
	return u.searchX, u.searchY
}

// edgePoint returns where a ray from the unit along the unit vector (nx, ny)
// meets the map border inset by EdgeMargin.
func (u *Unit) edgePoint(nx, ny float64, tg *TerrainGrid) (float64, float64) {
	w, h := tg.PixelSize()
	best := math.Inf(1)
	consider := func(t float64) {
		if t > 0 && t < best {
			best = t
		}
	}
	if nx > 0 {
		consider((w - EdgeMargin - u.X) / nx)
	}
	if nx < 0 {
		consider((EdgeMargin - u.X) / nx)
	}
	if ny > 0 {
		consider((h - EdgeMargin - u.Y) / ny)
	}
	if ny < 0 {
		consider((EdgeMargin - u.Y) / ny)
	}
	x, y := u.X, u.Y
	if !math.IsInf(best, 1) {
		x, y = u.X+nx*best, u.Y+ny*best
	}
	return clamp(x, EdgeMargin, w-EdgeMargin), clamp(y, EdgeMargin, h-EdgeMargin)
}
