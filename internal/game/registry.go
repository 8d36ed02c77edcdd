package game

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed data/kinds.yaml
var defaultKindsYAML []byte

// UnitKind is the immutable record a summoned unit is built from.
type UnitKind struct {
	Name           string  `yaml:"name"`
	HP             float64 `yaml:"hp"`
	Damage         float64 `yaml:"damage"`
	AttackRate     float64 `yaml:"attack_rate"`
	Speed          float64 `yaml:"speed"`
	ManaCost       float64 `yaml:"mana_cost"`
	SpawnCount     int     `yaml:"spawn_count"`
	Intelligence   float64 `yaml:"intelligence"`
	Radius         float64 `yaml:"radius"`
	ArmorReduction float64 `yaml:"armor_reduction"`
}

// SummonCost is the mana spent for one summon of the kind.
func (k UnitKind) SummonCost() float64 {
	return k.ManaCost * float64(k.SpawnCount)
}

// StructureKind is the immutable record a structure is built from.
type StructureKind struct {
	Name          string  `yaml:"name"`
	HP            float64 `yaml:"hp"`
	Damage        float64 `yaml:"damage"`
	AttackRate    float64 `yaml:"attack_rate"`
	Range         float64 `yaml:"range"`
	MeleeDamage   float64 `yaml:"melee_damage"`
	MeleeRate     float64 `yaml:"melee_rate"`
	MeleeRange    float64 `yaml:"melee_range"`
	Targeting     string  `yaml:"targeting"`
	ArmorPiercing bool    `yaml:"armor_piercing"`
	Wall          bool    `yaml:"wall"`
}

// CasterKind holds the player caster's stats.
type CasterKind struct {
	HP           float64 `yaml:"hp"`
	Speed        float64 `yaml:"speed"`
	Intelligence float64 `yaml:"intelligence"`
	Radius       float64 `yaml:"radius"`
	Mana         float64 `yaml:"mana"`
	ManaRegen    float64 `yaml:"mana_regen"`
}

// SpellEffect selects what a spell does when it lands.
type SpellEffect string

const (
	EffectAreaDamage SpellEffect = "area_damage" // hurts structures around the point
	EffectShield     SpellEffect = "shield"      // adds to the caster's shield pool
)

// SpellKind is the immutable record of a caster spell.
type SpellKind struct {
	Name         string      `yaml:"name"`
	Effect       SpellEffect `yaml:"effect"`
	ManaCost     float64     `yaml:"mana_cost"`
	Damage       float64     `yaml:"damage"`
	Radius       float64     `yaml:"radius"`     // cells
	CastRange    float64     `yaml:"cast_range"` // cells; 0 casts on self
	CastTime     float64     `yaml:"cast_time"`  // seconds before the next cast
	ShieldAmount float64     `yaml:"shield_amount"`
}

// Registry maps type tags to kind records.
type Registry struct {
	Caster     CasterKind               `yaml:"caster"`
	Units      map[string]UnitKind      `yaml:"units"`
	Structures map[string]StructureKind `yaml:"structures"`
	Spells     map[string]SpellKind     `yaml:"spells"`
}

// LoadRegistry parses and validates a YAML kinds document.
func LoadRegistry(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse kinds: %w", err)
	}
	if err := reg.validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// DefaultRegistry returns the built-in kinds. The embedded table is covered
// by tests, so a parse failure here is a build defect.
func DefaultRegistry() *Registry {
	reg, err := LoadRegistry(defaultKindsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded kinds: %v", err))
	}
	return reg
}

func (r *Registry) validate() error {
	if r.Caster.HP <= 0 {
		return fmt.Errorf("caster: hp must be positive")
	}
	for tag, k := range r.Units {
		switch {
		case k.HP <= 0:
			return fmt.Errorf("unit %q: hp must be positive", tag)
		case k.AttackRate <= 0:
			return fmt.Errorf("unit %q: attack_rate must be positive", tag)
		case k.SpawnCount <= 0:
			return fmt.Errorf("unit %q: spawn_count must be positive", tag)
		case k.Intelligence < 0 || k.Intelligence > 1:
			return fmt.Errorf("unit %q: intelligence %.2f outside [0,1]", tag, k.Intelligence)
		}
	}
	for tag, k := range r.Structures {
		if k.HP <= 0 {
			return fmt.Errorf("structure %q: hp must be positive", tag)
		}
		if _, err := parseTargetingLogic(k.Targeting); err != nil {
			return fmt.Errorf("structure %q: %w", tag, err)
		}
	}
	for tag, k := range r.Spells {
		switch {
		case k.Effect != EffectAreaDamage && k.Effect != EffectShield:
			return fmt.Errorf("spell %q: effect %q: %w", tag, k.Effect, ErrUnknownKind)
		case k.ManaCost < 0:
			return fmt.Errorf("spell %q: mana_cost must not be negative", tag)
		case k.Effect == EffectAreaDamage && k.Radius <= 0:
			return fmt.Errorf("spell %q: radius must be positive", tag)
		}
	}
	return nil
}

// UnitKind looks up a unit record.
func (r *Registry) UnitKind(tag string) (UnitKind, error) {
	k, ok := r.Units[tag]
	if !ok {
		return UnitKind{}, fmt.Errorf("unit %q: %w", tag, ErrUnknownKind)
	}
	return k, nil
}

// StructureKind looks up a structure record.
func (r *Registry) StructureKind(tag string) (StructureKind, error) {
	k, ok := r.Structures[tag]
	if !ok {
		return StructureKind{}, fmt.Errorf("structure %q: %w", tag, ErrUnknownKind)
	}
	return k, nil
}

// Spell looks up a spell record.
func (r *Registry) Spell(tag string) (SpellKind, error) {
	k, ok := r.Spells[tag]
	if !ok {
		return SpellKind{}, fmt.Errorf("spell %q: %w", tag, ErrUnknownKind)
	}
	return k, nil
}

// UnitTags returns the unit tags sorted by summon cost, then name.
func (r *Registry) UnitTags() []string {
	tags := make([]string, 0, len(r.Units))
	for tag := range r.Units {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		ci, cj := r.Units[tags[i]].SummonCost(), r.Units[tags[j]].SummonCost()
		if ci != cj {
			return ci < cj
		}
		return tags[i] < tags[j]
	})
	return tags
}
