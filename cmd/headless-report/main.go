package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/Garsondee/Siege-Sense/internal/game"
	"github.com/Garsondee/Siege-Sense/internal/logger"
	"github.com/atotto/clipboard"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// decideEvery is how often the scripted caster picks its next action.
const decideEvery = game.TicksPerSecond

type runStats struct {
	runIndex int
	seed     int64
	runID    string

	status    game.Status
	endTick   int
	casterHP  float64
	casterMax float64

	firstSummonTick   int
	firstHitTick      int
	firstKillTick     int
	firstWallDownTick int
	firstFleeTick     int

	summons        int
	refused        int
	hits           int
	defenderShots  int
	flees          int
	breaches       int
	unitsLost      int
	structuresLost int
	wallsDown      int
	defendersLeft  int
	spells         int

	summary string
	tail    string // event log lines from the closing seconds
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var scenario string
	var copyOut bool
	var tailSecs int

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 3600, "tick limit per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenario, "scenario", "tutorial", "level id to assault")
	flag.BoolVar(&copyOut, "copy", false, "also copy the report to the clipboard")
	flag.IntVar(&tailSecs, "tail", 0, "print each run's events from its last N seconds")
	flag.Parse()

	logger.Init()
	log := logger.Component("headless-report")

	if runs <= 0 {
		log.Fatal("-runs must be > 0")
	}
	if ticks <= 0 {
		log.Fatal("-ticks must be > 0")
	}
	if _, err := game.FindLevel(game.DefaultLevels(), scenario); err != nil {
		log.WithError(err).Fatal("unsupported scenario")
	}

	var buf bytes.Buffer
	out := io.MultiWriter(os.Stdout, &buf)

	fmt.Fprintf(out, "=== Headless Siege Report ===\n")
	fmt.Fprintf(out, "scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n", scenario, runs, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		rs, err := runAssault(i+1, seed, scenario, ticks, tailSecs*game.TicksPerSecond, log)
		if err != nil {
			log.WithError(err).Fatal("run failed")
		}
		all = append(all, rs)
		printRun(out, rs)
	}
	printAggregate(out, all)

	if copyOut {
		if err := clipboard.WriteAll(buf.String()); err != nil {
			log.WithError(err).Warn("clipboard copy failed")
		} else {
			log.Info("report copied to clipboard")
		}
	}
}

// runAssault plays the level with a scripted caster: it summons units in
// rotation against the nearest live defender, then walks to the treasure,
// summoning against the nearest wall when the way is shut. tailTicks > 0
// keeps the log lines of the run's closing ticks.
func runAssault(runIndex int, seed int64, level string, ticks, tailTicks int, log *logrus.Entry) (runStats, error) {
	ts := game.NewTestSim(game.WithLevel(level), game.WithSeed(seed))
	if err := ts.Err(); err != nil {
		return runStats{}, fmt.Errorf("run %d: %w", runIndex, err)
	}
	runID := uuid.NewString()
	runLog := log.WithFields(logrus.Fields{"run_id": runID, "seed": seed})
	ts.Log.Mirror(runLog)

	w := ts.World
	next := 0
	for w.Tick < ticks && w.Status == game.StatusPlaying {
		if w.Tick%decideEvery == 0 {
			assaultStep(w, &next)
		}
		ts.RunTicks(1)
	}

	rs := collectStats(w, ts.Log.Entries())
	rs.runIndex = runIndex
	rs.seed = seed
	rs.runID = runID
	rs.summary = ts.Log.Summary(w)
	if tailTicks > 0 {
		rs.tail = ts.Log.FormatRange(w.Tick-tailTicks+1, w.Tick)
	}
	runLog.WithFields(logrus.Fields{
		"status": rs.status.String(),
		"tick":   rs.endTick,
		"lost":   rs.unitsLost,
	}).Info("run finished")
	return rs, nil
}

// assaultStep is one scripted caster decision. next rotates through the
// registry's unit kinds and only advances on a successful summon.
func assaultStep(w *game.World, next *int) {
	c := w.Caster
	if c == nil || !c.IsAlive() {
		return
	}
	if c.HP < c.MaxHP && c.Shield <= 0 {
		// Refusals are recorded in the event log.
		_ = w.Cast(game.SpellShield, c.X, c.Y)
	}
	if s := nearestStructure(w.Structures.Defenders(), c.X, c.Y); s != nil {
		tags := w.Registry.UnitTags()
		tag := tags[*next%len(tags)]
		if _, err := w.Summon(game.SummonOrder{Kind: tag, Mode: game.SummonAttack, Target: s.ID}); err == nil {
			*next++
		}
		if fb, err := w.Registry.Spell(game.SpellFireball); err == nil && c.InCastRange(fb, s.X, s.Y) {
			_ = w.Cast(game.SpellFireball, s.X, s.Y)
		}
		return
	}
	if !w.HasTreasure || c.Moving() {
		return
	}
	x, y := w.Treasure.Center()
	err := c.MoveTo(x, y, w.Env())
	if !errors.Is(err, game.ErrNoPath) {
		return
	}
	if wall := nearestStructure(w.Structures.PassiveWalls(), x, y); wall != nil {
		// Refusals are recorded in the event log.
		_, _ = w.Summon(game.SummonOrder{Kind: "giant", Mode: game.SummonAttack, Target: wall.ID})
	}
}

func nearestStructure(ss []*game.Structure, x, y float64) *game.Structure {
	var best *game.Structure
	bestD := math.Inf(1)
	for _, s := range ss {
		if d := math.Hypot(s.X-x, s.Y-y); d < bestD {
			best, bestD = s, d
		}
	}
	return best
}

func collectStats(w *game.World, entries []game.EventEntry) runStats {
	rs := runStats{
		status:            w.Status,
		endTick:           w.Tick,
		unitsLost:         w.UnitsLost,
		defendersLeft:     len(w.Structures.Defenders()),
		firstSummonTick:   -1,
		firstHitTick:      firstTick(entries, game.CatAttack, "hit", ""),
		firstKillTick:     firstTick(entries, game.CatWorld, "destroyed", ""),
		firstWallDownTick: firstTick(entries, game.CatWorld, "wall_down", ""),
		firstFleeTick:     firstTick(entries, game.CatFlee, "start", ""),
	}
	if c := w.Caster; c != nil {
		rs.casterHP, rs.casterMax = c.HP, c.MaxHP
	}
	for _, e := range entries {
		switch e.Category {
		case game.CatSummon:
			if e.Key == "refused" {
				rs.refused++
				continue
			}
			rs.summons++
			if rs.firstSummonTick < 0 {
				rs.firstSummonTick = e.Tick
			}
		case game.CatAttack:
			if e.Key == "hit" {
				rs.hits++
			}
		case game.CatDefend:
			rs.defenderShots++
		case game.CatSpell:
			if e.Key == game.SpellShield || e.Key == game.SpellFireball {
				rs.spells++
			}
		case game.CatFlee:
			if e.Key == "start" {
				rs.flees++
			}
		case game.CatBreach:
			if e.Key == "start" {
				rs.breaches++
			}
		case game.CatWorld:
			switch e.Key {
			case "destroyed":
				rs.structuresLost++
			case "wall_down":
				rs.wallsDown++
			}
		}
	}
	return rs
}

func firstTick(entries []game.EventEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(w io.Writer, rs runStats) {
	fmt.Fprintf(w, "--- Run %d (seed=%d id=%s) ---\n", rs.runIndex, rs.seed, rs.runID)
	fmt.Fprintf(w, "outcome: %s at T=%d caster_hp=%.0f/%.0f defenders_left=%d\n",
		rs.status, rs.endTick, rs.casterHP, rs.casterMax, rs.defendersLeft)
	fmt.Fprintf(w, "phase_markers: first_summon=%d first_hit=%d first_kill=%d first_wall_down=%d first_flee=%d\n",
		rs.firstSummonTick, rs.firstHitTick, rs.firstKillTick, rs.firstWallDownTick, rs.firstFleeTick)
	fmt.Fprintf(w, "event_totals: summons=%d refused=%d hits=%d defender_hits=%d flees=%d breaches=%d spells=%d\n",
		rs.summons, rs.refused, rs.hits, rs.defenderShots, rs.flees, rs.breaches, rs.spells)
	fmt.Fprintf(w, "losses: units=%d structures=%d walls=%d\n", rs.unitsLost, rs.structuresLost, rs.wallsDown)
	fmt.Fprint(w, rs.summary)
	if rs.tail != "" {
		fmt.Fprintf(w, "tail:\n%s", rs.tail)
	}
	fmt.Fprintln(w)
}

func printAggregate(w io.Writer, all []runStats) {
	won, lost, open := tally(all)
	totalSummons, totalLost, totalHits := 0, 0, 0
	endTicks := make([]int, 0, len(all))
	killTicks := make([]int, 0, len(all))
	wallTicks := make([]int, 0, len(all))
	for _, rs := range all {
		totalSummons += rs.summons
		totalLost += rs.unitsLost
		totalHits += rs.hits
		if rs.status == game.StatusWon {
			endTicks = append(endTicks, rs.endTick)
		}
		if rs.firstKillTick >= 0 {
			killTicks = append(killTicks, rs.firstKillTick)
		}
		if rs.firstWallDownTick >= 0 {
			wallTicks = append(wallTicks, rs.firstWallDownTick)
		}
	}

	fmt.Fprintln(w, "=== Aggregate ===")
	fmt.Fprintf(w, "runs=%d won=%d lost=%d unfinished=%d\n", len(all), won, lost, open)
	fmt.Fprintf(w, "avg_per_run: summons=%.1f units_lost=%.1f hits=%.1f\n",
		avg(totalSummons, len(all)), avg(totalLost, len(all)), avg(totalHits, len(all)))
	fmt.Fprintf(w, "avg_ticks: victory=%s first_kill=%s first_wall_down=%s\n",
		avgTickString(endTicks), avgTickString(killTicks), avgTickString(wallTicks))
}

// tally counts outcomes; open runs hit the tick limit still playing.
func tally(all []runStats) (won, lost, open int) {
	for _, rs := range all {
		switch rs.status {
		case game.StatusWon:
			won++
		case game.StatusLost:
			lost++
		default:
			open++
		}
	}
	return won, lost, open
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}
