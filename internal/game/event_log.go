package game

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Event categories.
const (
	CatState  = "state"
	CatOrder  = "order"
	CatPath   = "path"
	CatTarget = "target"
	CatAttack = "attack"
	CatBreach = "breach"
	CatFlee   = "flee"
	CatSummon = "summon"
	CatSpell  = "spell"
	CatDefend = "defend"
	CatWorld  = "world"
)

// EventEntry is one recorded simulation event.
type EventEntry struct {
	Tick     int
	Actor    string // "U3", "S12", "caster", or "--" for world events
	Category string
	Key      string
	Value    string
	NumVal   float64
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] U3     state     change           idle → attacking
func (e EventEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-6s %-9s %-16s %s",
		e.Tick, e.Actor, e.Category, e.Key, e.Value)
}

// EventLog collects structured simulation events. An unbounded log keeps
// everything; a bounded one is a ring buffer that drops the oldest entry
// once full.
type EventLog struct {
	entries []EventEntry
	head    int // oldest entry once a bounded log has wrapped
	limit   int // 0 means unbounded
	dropped int
	verbose bool
	mirror  logrus.FieldLogger
}

// NewEventLog creates an unbounded EventLog. Verbose enables per-tick
// movement entries.
func NewEventLog(verbose bool) *EventLog {
	return &EventLog{verbose: verbose}
}

// NewBoundedEventLog creates an EventLog that retains at most limit entries.
// A limit of zero or less is unbounded.
func NewBoundedEventLog(verbose bool, limit int) *EventLog {
	el := &EventLog{verbose: verbose, limit: max(limit, 0)}
	if el.limit > 0 {
		el.entries = make([]EventEntry, 0, el.limit)
	}
	return el
}

// Mirror forwards every new entry to a logrus logger at debug level.
func (el *EventLog) Mirror(l logrus.FieldLogger) {
	el.mirror = l
}

// Add records a new entry.
func (el *EventLog) Add(tick int, actor, category, key, value string, numVal float64) {
	e := EventEntry{
		Tick:     tick,
		Actor:    actor,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	}
	if el.limit > 0 && len(el.entries) == el.limit {
		el.entries[el.head] = e
		el.head = (el.head + 1) % el.limit
		el.dropped++
	} else {
		el.entries = append(el.entries, e)
	}
	if el.mirror != nil {
		el.mirror.WithFields(logrus.Fields{
			"tick":     e.Tick,
			"actor":    e.Actor,
			"category": e.Category,
			"key":      e.Key,
		}).Debug(e.Value)
	}
}

// AddVerbose records an entry only when verbose mode is on.
func (el *EventLog) AddVerbose(tick int, actor, category, key, value string, numVal float64) {
	if !el.verbose {
		return
	}
	el.Add(tick, actor, category, key, value, numVal)
}

// Entries returns the retained entries, oldest first.
func (el *EventLog) Entries() []EventEntry {
	if el.head == 0 {
		return el.entries
	}
	out := make([]EventEntry, 0, len(el.entries))
	out = append(out, el.entries[el.head:]...)
	return append(out, el.entries[:el.head]...)
}

// Len returns the number of retained entries.
func (el *EventLog) Len() int { return len(el.entries) }

// Dropped returns how many entries a bounded log has discarded.
func (el *EventLog) Dropped() int { return el.dropped }

// Recent returns up to n of the newest entries, oldest first.
func (el *EventLog) Recent(n int) []EventEntry {
	all := el.Entries()
	if n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (el *EventLog) Filter(category, key string) []EventEntry {
	var out []EventEntry
	for _, e := range el.Entries() {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterActor returns entries for a specific actor label.
func (el *EventLog) FilterActor(label string) []EventEntry {
	var out []EventEntry
	for _, e := range el.Entries() {
		if e.Actor == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (el *EventLog) FilterTickRange(fromTick, toTick int) []EventEntry {
	var out []EventEntry
	for _, e := range el.Entries() {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (el *EventLog) CountCategory(category, key string) int {
	return len(el.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (el *EventLog) LastOf(category, key string) (EventEntry, bool) {
	all := el.Entries()
	for i := len(all) - 1; i >= 0; i-- {
		e := all[i]
		if (category == "" || e.Category == category) && (key == "" || e.Key == key) {
			return e, true
		}
	}
	return EventEntry{}, false
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (el *EventLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range el.Entries() {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (el *EventLog) Format() string {
	return formatEntries(el.Entries())
}

// FormatRange returns a log string filtered to a tick range.
func (el *EventLog) FormatRange(fromTick, toTick int) string {
	return formatEntries(el.FilterTickRange(fromTick, toTick))
}

func formatEntries(entries []EventEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of a world.
func (el *EventLog) Summary(w *World) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d (%s) ---\n", w.Tick, w.Status)

	byState := map[UnitState]int{}
	for _, u := range w.Units {
		byState[u.State]++
	}
	sb.WriteString("Units: ")
	for s := StateIdle; s <= StateDead; s++ {
		if n := byState[s]; n > 0 {
			fmt.Fprintf(&sb, "%s=%d  ", s, n)
		}
	}
	fmt.Fprintf(&sb, "(lost %d)\n", w.UnitsLost)

	towers, walls := 0, 0
	for _, s := range w.Structures.All() {
		if !s.IsAlive() {
			continue
		}
		if s.IsWall {
			walls++
		} else {
			towers++
		}
	}
	fmt.Fprintf(&sb, "Standing: towers=%d  walls=%d\n", towers, walls)
	var engaged []string
	for _, s := range w.Structures.All() {
		if !s.IsAlive() || len(s.Attackers()) == 0 {
			continue
		}
		ids := make([]string, len(s.Attackers()))
		for i, id := range s.Attackers() {
			ids[i] = fmt.Sprintf("U%d", id)
		}
		engaged = append(engaged, s.Label+"<-"+strings.Join(ids, ","))
	}
	if len(engaged) > 0 {
		fmt.Fprintf(&sb, "Engaged: %s\n", strings.Join(engaged, "  "))
	}
	if w.Caster != nil {
		fmt.Fprintf(&sb, "Caster: hp=%.0f mana=%.1f cell=%s\n", w.Caster.HP, w.Caster.Mana, w.Caster.Cell())
	}
	fmt.Fprintf(&sb, "Attacks=%d  Breaches=%d  Flees=%d\n",
		el.CountCategory(CatAttack, "hit"), el.CountCategory(CatBreach, "start"), el.CountCategory(CatFlee, "start"))
	return sb.String()
}
