package game

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/levels.yaml
var defaultLevelsYAML []byte

// CellDef is a cell as written in level tables.
type CellDef struct {
	Col int `yaml:"col"`
	Row int `yaml:"row"`
}

// Cell converts the definition to a grid cell.
func (d CellDef) Cell() Cell { return Cell{Col: d.Col, Row: d.Row} }

// Placement puts a structure kind on a cell.
type Placement struct {
	Kind string `yaml:"kind"`
	Col  int    `yaml:"col"`
	Row  int    `yaml:"row"`
}

// LevelDef is one playable map.
type LevelDef struct {
	ID              string      `yaml:"id"`
	Name            string      `yaml:"name"`
	Rows            []string    `yaml:"rows"`
	Towers          []Placement `yaml:"towers"`
	GarrisonedWalls []CellDef   `yaml:"garrisoned_walls"`
	Caster          CellDef     `yaml:"caster"`
	Treasure        CellDef     `yaml:"treasure"`
}

type levelFile struct {
	Levels []LevelDef `yaml:"levels"`
}

// LoadLevels parses a YAML level document and checks each grid.
func LoadLevels(data []byte) ([]LevelDef, error) {
	var f levelFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse levels: %w", err)
	}
	for _, l := range f.Levels {
		if err := l.validate(); err != nil {
			return nil, err
		}
	}
	return f.Levels, nil
}

// DefaultLevels returns the built-in levels.
func DefaultLevels() []LevelDef {
	levels, err := LoadLevels(defaultLevelsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded levels: %v", err))
	}
	return levels
}

// FindLevel picks a level by id.
func FindLevel(levels []LevelDef, id string) (LevelDef, error) {
	for _, l := range levels {
		if l.ID == id {
			return l, nil
		}
	}
	return LevelDef{}, fmt.Errorf("level %q: %w", id, ErrUnknownLevel)
}

func (l LevelDef) size() (int, int) {
	if len(l.Rows) == 0 {
		return 0, 0
	}
	return len(l.Rows[0]), len(l.Rows)
}

// tileDigit maps one byte of a level row to its tile type. Rows are ASCII
// digits; anything else, including part of a multi-byte rune, is rejected.
func tileDigit(b byte) (TileType, bool) {
	if b < '0' || b > '9' {
		return 0, false
	}
	t := TileType(b - '0')
	return t, t < tileTypeCount
}

func (l LevelDef) validate() error {
	cols, rows := l.size()
	if cols == 0 {
		return fmt.Errorf("level %q: empty map", l.ID)
	}
	for i, r := range l.Rows {
		if len(r) != cols {
			return fmt.Errorf("level %q: row %d has %d cells, want %d", l.ID, i, len(r), cols)
		}
		for j := 0; j < len(r); j++ {
			if _, ok := tileDigit(r[j]); !ok {
				return fmt.Errorf("level %q: bad tile %q at (%d,%d)", l.ID, r[j], j, i)
			}
		}
	}
	in := func(d CellDef) bool { return d.Col >= 0 && d.Row >= 0 && d.Col < cols && d.Row < rows }
	if !in(l.Caster) {
		return fmt.Errorf("level %q: caster %v: %w", l.ID, l.Caster.Cell(), ErrOutOfBounds)
	}
	if !in(l.Treasure) {
		return fmt.Errorf("level %q: treasure %v: %w", l.ID, l.Treasure.Cell(), ErrOutOfBounds)
	}
	for _, t := range l.Towers {
		if !in(CellDef{Col: t.Col, Row: t.Row}) {
			return fmt.Errorf("level %q: tower %s at (%d,%d): %w", l.ID, t.Kind, t.Col, t.Row, ErrOutOfBounds)
		}
	}
	return nil
}

// Build creates a ready-to-run world for the level. Towers standing on a
// wall digit clear it to dirt; garrisoned walls replace the plain wall on
// their cell.
func (l LevelDef) Build(reg *Registry, log *EventLog, seed int64) (*World, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}
	cols, rows := l.size()
	tg := NewTerrainGrid(cols, rows, TileGrass)
	for r, line := range l.Rows {
		for c := 0; c < len(line); c++ {
			t, _ := tileDigit(line[c])
			_ = tg.SetTile(Cell{Col: c, Row: r}, t)
		}
	}
	_ = tg.SetTile(l.Treasure.Cell(), TileTreasure)

	w := NewWorld(tg, reg, log, seed)
	w.Treasure = l.Treasure.Cell()
	w.HasTreasure = true

	claimed := map[Cell]bool{}
	for _, t := range l.Towers {
		c := Cell{Col: t.Col, Row: t.Row}
		if !tg.IsWalkable(c) {
			_ = tg.SetTile(c, TileDirt)
		}
		if _, err := w.AddStructure(t.Kind, c); err != nil {
			return nil, fmt.Errorf("level %q: %w", l.ID, err)
		}
		claimed[c] = true
	}
	for _, g := range l.GarrisonedWalls {
		c := g.Cell()
		if _, err := w.AddStructure("garrisoned_wall", c); err != nil {
			return nil, fmt.Errorf("level %q: %w", l.ID, err)
		}
		claimed[c] = true
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cell := Cell{Col: c, Row: r}
			if claimed[cell] || tg.Tile(cell) != TileWall {
				continue
			}
			if _, err := w.AddStructure("wall", cell); err != nil {
				return nil, fmt.Errorf("level %q: %w", l.ID, err)
			}
		}
	}

	if _, err := w.PlaceCaster(l.Caster.Cell()); err != nil {
		return nil, fmt.Errorf("level %q: %w", l.ID, err)
	}
	w.RefreshDanger()
	w.Log.Add(0, "--", CatWorld, "level", l.Name, float64(w.Structures.Len()))
	return w, nil
}
