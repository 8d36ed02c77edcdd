package game

// Grid and timing.
const (
	TileSize       = 40                   // pixels per cell edge
	TicksPerSecond = 60                   // fixed simulation rate
	FixedDT        = 1.0 / TicksPerSecond // seconds per tick
)

// Danger field.
const (
	DangerScale = 5.0 // multiplier on damage × attack rate
)

// Unit behaviour tuning. Distances are in pixels unless noted.
const (
	MeleeMargin       = 10.0 // added to both radii for the attack range
	SightRangeCells   = 5    // cells
	SightRange        = SightRangeCells * TileSize
	FleeMargin        = 100.0 // beyond the attacker's threat radius
	EdgeMargin        = 20.0  // inset from the map border for flee/search points
	WaypointTolerance = 5.0
	ReachIntelligence = 0.5 // at or above: check reachability and use paths
	defaultFleeRange  = 4.0 // cells, for attackers with no threat radius
	goalSearchRings   = 2   // rings scanned for a walkable substitute goal
)

// Caster and summoning.
const (
	SummonRangeCells = 3 // cells from the caster
	SummonRange      = SummonRangeCells * TileSize
	summonLead       = 30.0 // spawn distance ahead of the caster when a target is given
	summonSpread     = 15.0 // ring radius for multi-unit spawns
)

// Structure geometry.
const (
	wallRadius  = TileSize/2 - 2
	towerRadius = 18.0

	meleeReachMargin = 10.0 // melee structures hit units within range + radius + margin
	highValueCaster  = 1000.0
)
