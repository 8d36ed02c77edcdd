package game

import (
	"fmt"
	"math"
)

// TickEnv is the world view handed to a unit controller for one tick.
type TickEnv struct {
	Tick       int
	Terrain    *TerrainGrid
	Paths      *Pathfinder
	Structures *Roster
	Log        *EventLog
}

func (env *TickEnv) log(actor, category, key, value string, num float64) {
	if env.Log != nil {
		env.Log.Add(env.Tick, actor, category, key, value, num)
	}
}

// Update advances the unit's state machine by dt seconds.
func (u *Unit) Update(dt float64, env *TickEnv) {
	if u.State == StateDead {
		return
	}
	if !u.IsAlive() {
		u.setState(StateDead, env, "no hit points")
		return
	}
	if u.cooldown > 0 {
		u.cooldown -= dt
	}
	u.pruneAttackers(env.Structures)

	switch u.State {
	case StateIdle:
		u.updateIdle(env)
	case StateMoving:
		u.updateMoving(dt, env)
	case StateAttacking:
		u.updateAttacking(dt, env)
	case StateSearchingDirectional:
		u.updateSearching(dt, env)
	case StateBreachingObstacle:
		u.updateBreaching(dt, env)
	}
}

func (u *Unit) setState(s UnitState, env *TickEnv, reason string) {
	if u.State == s {
		return
	}
	prev := u.State
	u.State = s
	env.log(u.Label, CatState, "change", fmt.Sprintf("%s → %s (%s)", prev, s, reason), 0)
}

// --- Idle ---

func (u *Unit) updateIdle(env *TickEnv) {
	if u.ignoreThreats {
		return
	}
	if primary := u.primaryAttacker(env.Structures); primary != nil {
		u.retaliate(primary, env)
	}
}

// retaliate reacts to an attacker. Intelligent units first check that the
// attacker can be reached and flee when it cannot.
func (u *Unit) retaliate(s *Structure, env *TickEnv) {
	if u.Intelligence >= ReachIntelligence && !u.canReach(s, env) {
		u.fleeFrom(s, env)
		return
	}
	u.Order = OrderNone
	env.log(u.Label, CatTarget, "retaliate", s.Label, s.threatScore())
	u.engage(s, env, "retaliate")
}

// engage makes s the current target. Intelligent units out of range path to
// it first; everyone else closes in a straight line.
func (u *Unit) engage(s *Structure, env *TickEnv, reason string) {
	u.Target = s.ID
	u.hasMovePoint = false
	if u.Intelligence >= ReachIntelligence && !u.inAttackRange(s) {
		if p, ok := u.approach(s, env); ok {
			u.setPath(p)
			u.setState(StateMoving, env, reason)
			return
		}
	}
	u.clearPath()
	u.setState(StateAttacking, env, reason)
}

// --- Moving ---

func (u *Unit) updateMoving(dt float64, env *TickEnv) {
	u.followPath(dt, env.Terrain)

	if u.Order == OrderForcedMove || u.ignoreThreats {
		u.checkArrival(env)
		return
	}

	if u.Order == OrderAttackMove {
		if s := u.bestTarget(env.Structures, true); s != nil {
			u.Order = OrderNone
			u.hasMovePoint = false
			u.clearPath()
			u.Target = s.ID
			env.log(u.Label, CatTarget, "acquire", s.Label, u.distanceTo(s.X, s.Y))
			u.setState(StateAttacking, env, "sighted")
			return
		}
		u.checkArrival(env)
		return
	}

	if u.Target != NoStructure {
		t := env.Structures.Live(u.Target)
		if t == nil {
			u.findNextTarget(env, "target lost")
			return
		}
		u.checkTargetReached(t, env)
		return
	}

	if primary := u.primaryAttacker(env.Structures); primary != nil {
		u.retaliate(primary, env)
		return
	}
	u.checkArrival(env)
}

func (u *Unit) checkTargetReached(t *Structure, env *TickEnv) {
	switch {
	case u.inAttackRange(t):
		u.clearPath()
		u.setState(StateAttacking, env, "in range")
	case u.pathDone():
		u.setState(StateAttacking, env, "closing")
	}
}

func (u *Unit) checkArrival(env *TickEnv) {
	if !u.pathDone() {
		return
	}
	if u.fleeing {
		env.log(u.Label, CatFlee, "arrived", u.Cell().String(), 0)
	}
	u.hasMovePoint = false
	u.fleeing = false
	u.ignoreThreats = false
	u.Order = OrderNone
	u.clearPath()
	u.setState(StateIdle, env, "arrived")
}

// --- Attacking ---

func (u *Unit) updateAttacking(dt float64, env *TickEnv) {
	t := env.Structures.Live(u.Target)
	if t == nil {
		u.findNextTarget(env, "target lost")
		return
	}
	if u.inAttackRange(t) {
		if u.strike(t, env) && !t.IsAlive() {
			u.findNextTarget(env, "target destroyed")
		}
		return
	}
	u.advanceToward(t, dt, env)
}

// strike hits t when the cooldown allows and reports whether it did.
func (u *Unit) strike(t *Structure, env *TickEnv) bool {
	if u.cooldown > 0 {
		return false
	}
	dealt := t.TakeDamage(u.Damage)
	u.cooldown = 1 / u.AttackRate
	env.log(u.Label, CatAttack, "hit", fmt.Sprintf("%s -%.0f (hp %.0f)", t.Label, dealt, t.HP), dealt)
	if !t.IsAlive() {
		env.log(u.Label, CatTarget, "destroyed", t.Label, 0)
	}
	return true
}

// advanceToward moves straight at t. A low-intelligence unit that runs into
// a wall other than its target switches to breaching it; an intelligent unit
// simply stops.
func (u *Unit) advanceToward(t *Structure, dt float64, env *TickEnv) {
	nx, ny, moved := u.stepToward(t.X, t.Y, dt, env.Terrain)
	if moved {
		u.X, u.Y = nx, ny
		return
	}
	if u.Intelligence >= ReachIntelligence {
		return
	}
	blocked := CellAt(nx, ny)
	if wall := env.Structures.WallAt(blocked); wall != nil && wall.ID != t.ID {
		u.OriginalTarget = t.ID
		u.Target = wall.ID
		env.log(u.Label, CatBreach, "start", fmt.Sprintf("%s blocks %s", wall.Label, t.Label), wall.HP)
		u.setState(StateBreachingObstacle, env, "blocked")
		return
	}
	u.slide(nx, ny, env.Terrain)
}

// stepToward computes one straight step toward (tx, ty). moved is false when
// the destination cell is not walkable; the blocked position is returned.
func (u *Unit) stepToward(tx, ty, dt float64, tg *TerrainGrid) (float64, float64, bool) {
	dx, dy := tx-u.X, ty-u.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return u.X, u.Y, true
	}
	step := min(u.Speed*tg.SpeedMultiplier(u.Cell())*dt, dist)
	nx, ny := u.X+dx/dist*step, u.Y+dy/dist*step
	return nx, ny, tg.IsWalkable(CellAt(nx, ny))
}

// slide keeps whichever axis of a blocked step is still walkable.
func (u *Unit) slide(nx, ny float64, tg *TerrainGrid) {
	switch {
	case tg.IsWalkable(CellAt(nx, u.Y)):
		u.X = nx
	case tg.IsWalkable(CellAt(u.X, ny)):
		u.Y = ny
	}
}

// --- Breaching ---

func (u *Unit) updateBreaching(dt float64, env *TickEnv) {
	wall := env.Structures.Live(u.Target)
	if wall == nil {
		u.afterBreach(env)
		return
	}
	if u.inAttackRange(wall) {
		u.strike(wall, env)
		return
	}
	nx, ny, moved := u.stepToward(wall.X, wall.Y, dt, env.Terrain)
	if moved {
		u.X, u.Y = nx, ny
		return
	}
	u.slide(nx, ny, env.Terrain)
}

// afterBreach runs once the blocking wall is gone: breach the next wall on
// the line, resume the original target, or re-select.
func (u *Unit) afterBreach(env *TickEnv) {
	orig := env.Structures.Live(u.OriginalTarget)
	if orig == nil {
		u.OriginalTarget = NoStructure
		u.findNextTarget(env, "original target lost")
		return
	}
	if next := u.nextObstacleToward(orig, env); next != nil {
		u.Target = next.ID
		env.log(u.Label, CatBreach, "next", next.Label, next.HP)
		return
	}
	u.Target = orig.ID
	u.OriginalTarget = NoStructure
	env.log(u.Label, CatBreach, "clear", orig.Label, 0)
	u.setState(StateAttacking, env, "line clear")
}

// nextObstacleToward walks the straight line to t and returns the first wall
// blocking it. A non-wall obstruction ends the scan with nil.
func (u *Unit) nextObstacleToward(t *Structure, env *TickEnv) *Structure {
	here := u.Cell()
	for _, c := range traceCells(u.X, u.Y, t.X, t.Y) {
		if c == here || c == t.Cell {
			continue
		}
		if env.Terrain.IsWalkable(c) {
			continue
		}
		return env.Structures.WallAt(c)
	}
	return nil
}

// --- Searching ---

func (u *Unit) updateSearching(dt float64, env *TickEnv) {
	u.followPath(dt, env.Terrain)
	if s := u.bestTarget(env.Structures, true); s != nil {
		u.clearPath()
		u.Target = s.ID
		env.log(u.Label, CatTarget, "acquire", s.Label, u.distanceTo(s.X, s.Y))
		u.setState(StateAttacking, env, "sighted")
		return
	}
	if u.pathDone() {
		u.clearPath()
		env.log(u.Label, CatTarget, "none", "search reached edge", 0)
		u.setState(StateIdle, env, "search exhausted")
	}
}

// --- Target selection ---

func (u *Unit) findNextTarget(env *TickEnv, reason string) {
	u.Target = NoStructure
	s := u.bestTarget(env.Structures, false)
	if s == nil {
		u.clearPath()
		env.log(u.Label, CatTarget, "none", reason, 0)
		u.setState(StateIdle, env, "no target")
		return
	}
	env.log(u.Label, CatTarget, "acquire", s.Label, s.threatScore())
	u.engage(s, env, reason)
}

// --- Reachability and flight ---

// adjacentWalkable returns the walkable neighbour of c nearest the unit,
// preferring orthogonal neighbours.
func (u *Unit) adjacentWalkable(c Cell, tg *TerrainGrid) (Cell, bool) {
	for _, group := range [2][4][2]int{
		{{-1, 0}, {1, 0}, {0, -1}, {0, 1}},
		{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}},
	} {
		best, bestD, found := Cell{}, math.Inf(1), false
		for _, d := range group {
			n := Cell{Col: c.Col + d[0], Row: c.Row + d[1]}
			if !tg.IsWalkable(n) {
				continue
			}
			x, y := n.Center()
			if dist := u.distanceTo(x, y); dist < bestD {
				best, bestD, found = n, dist, true
			}
		}
		if found {
			return best, true
		}
	}
	return Cell{}, false
}

// canReach reports whether a path exists to a walkable cell next to s.
func (u *Unit) canReach(s *Structure, env *TickEnv) bool {
	adj, ok := u.adjacentWalkable(s.Cell, env.Terrain)
	if !ok {
		return false
	}
	_, ok = env.Paths.FindPath(u.Cell(), adj, u.Intelligence)
	return ok
}

// approach finds a path onto s's cell, or next to it when that cell is
// blocked.
func (u *Unit) approach(s *Structure, env *TickEnv) (Path, bool) {
	if p, ok := env.Paths.FindPath(u.Cell(), s.Cell, u.Intelligence); ok {
		return p, true
	}
	adj, ok := u.adjacentWalkable(s.Cell, env.Terrain)
	if !ok {
		return nil, false
	}
	return env.Paths.FindPath(u.Cell(), adj, u.Intelligence)
}

// fleeFrom runs directly away from s to a point past its threat radius and
// ignores threats until arrival. A unit that cannot get away stays put and
// stops reacting to s.
func (u *Unit) fleeFrom(s *Structure, env *TickEnv) {
	dx, dy := u.X-s.X, u.Y-s.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		dx, dy, dist = 1, 0, 1
	}
	radius := s.ThreatRadius()
	if radius <= 0 {
		radius = defaultFleeRange
	}
	reach := radius*TileSize + FleeMargin
	w, h := env.Terrain.PixelSize()
	fx := clamp(u.X+dx/dist*reach, EdgeMargin, w-EdgeMargin)
	fy := clamp(u.Y+dy/dist*reach, EdgeMargin, h-EdgeMargin)

	goal, ok := env.Terrain.nearestWalkable(CellAt(fx, fy), goalSearchRings)
	if !ok || goal == u.Cell() {
		u.markUnreachable(s.ID)
		env.log(u.Label, CatFlee, "cornered", s.Label, 0)
		return
	}
	p, ok := env.Paths.FindPath(u.Cell(), goal, u.Intelligence)
	if !ok {
		u.markUnreachable(s.ID)
		env.log(u.Label, CatFlee, "no_path", s.Label, 0)
		return
	}
	u.Target = NoStructure
	u.Order = OrderNone
	u.setPath(p)
	u.moveX, u.moveY = goal.Center()
	u.hasMovePoint = true
	u.fleeing = true
	u.ignoreThreats = true
	env.log(u.Label, CatFlee, "start", fmt.Sprintf("from %s to %s", s.Label, goal), reach)
	u.setState(StateMoving, env, "flee")
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
