package world

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tile legend for the tiles block. Anything else is an error.
const (
	tileFloor = '.'
	tileWall  = '#'
	tileWater = '~'
	tileDoor  = '+'
)

// yamlMapFile is the top-level YAML structure for map files.
type yamlMapFile struct {
	Map yamlMap `yaml:"map"`
}

type yamlMap struct {
	Name     string `yaml:"name"`
	MaxSkill int    `yaml:"max_skill"`
	MaxLevel int    `yaml:"max_level"`

	Respawn yamlPoint `yaml:"respawn"`

	// Tiles is the grid as one line per row, using the tile legend.
	Tiles string `yaml:"tiles"`

	Doors     []yamlDoor     `yaml:"doors"`
	Traps     []yamlTrap     `yaml:"traps"`
	Teleports []yamlTeleport `yaml:"teleports"`
	Spawns    []yamlSpawn    `yaml:"spawns"`
}

type yamlPoint struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type yamlDoor struct {
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Locked bool   `yaml:"locked"`
	Key    string `yaml:"key"`
}

type yamlTrap struct {
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	Effect  string `yaml:"effect"`
	Potency int    `yaml:"potency"`
	Uses    int    `yaml:"uses"`
}

type yamlTeleport struct {
	X  int       `yaml:"x"`
	Y  int       `yaml:"y"`
	To yamlMapAt `yaml:"to"`
}

type yamlMapAt struct {
	Map string `yaml:"map"`
	X   int    `yaml:"x"`
	Y   int    `yaml:"y"`
}

type yamlSpawn struct {
	Template     string `yaml:"template"`
	Count        int    `yaml:"count"`
	RespawnTicks int    `yaml:"respawn_ticks"`
	X            int    `yaml:"x"`
	Y            int    `yaml:"y"`
}

// LoadMapFromFile reads and validates a single map YAML file.
//
// Precondition: path must point to a valid YAML map file.
// Postcondition: returns a validated Map or a non-nil error.
func LoadMapFromFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map file %s: %w", path, err)
	}
	return LoadMapFromBytes(data)
}

// LoadMapFromBytes parses and validates a map from YAML bytes.
func LoadMapFromBytes(data []byte) (*Map, error) {
	var file yamlMapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing map YAML: %w", err)
	}

	m, err := convertYAMLMap(file.Map)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validating map: %w", err)
	}
	return m, nil
}

// LoadMapsFromDir loads all YAML files in a directory as maps.
//
// Postcondition: returns all validated maps or the first error encountered.
func LoadMapsFromDir(dir string) ([]*Map, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading map directory %s: %w", dir, err)
	}

	var maps []*Map
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		m, err := LoadMapFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading map from %s: %w", name, err)
		}
		maps = append(maps, m)
	}

	if len(maps) == 0 {
		return nil, fmt.Errorf("no map files found in %s", dir)
	}
	return maps, nil
}

// convertYAMLMap converts the parsed YAML structures into the domain Map.
// Door tiles in the grid become unlocked doors unless a doors entry refines
// them.
func convertYAMLMap(ym yamlMap) (*Map, error) {
	m := &Map{
		Name:     ym.Name,
		MaxSkill: ym.MaxSkill,
		MaxLevel: ym.MaxLevel,
		RespawnX: ym.Respawn.X,
		RespawnY: ym.Respawn.Y,

		dense:     map[Tile]bool{},
		fluid:     map[Tile]bool{},
		Doors:     map[Tile]*Door{},
		Traps:     map[Tile]*Trap{},
		Teleports: map[Tile]*Teleport{},
	}

	rows := strings.Split(strings.Trim(ym.Tiles, "\n"), "\n")
	m.Height = len(rows)
	for y, row := range rows {
		if m.Width == 0 {
			m.Width = len(row)
		}
		if len(row) != m.Width {
			return nil, fmt.Errorf("map %q: row %d is %d tiles wide, want %d", ym.Name, y, len(row), m.Width)
		}
		for x, ch := range row {
			t := Tile{x, y}
			switch ch {
			case tileFloor:
			case tileWall:
				m.dense[t] = true
			case tileWater:
				m.fluid[t] = true
			case tileDoor:
				m.Doors[t] = &Door{X: x, Y: y}
			default:
				return nil, fmt.Errorf("map %q: unknown tile %q at (%d, %d)", ym.Name, string(ch), x, y)
			}
		}
	}

	for _, yd := range ym.Doors {
		m.Doors[Tile{yd.X, yd.Y}] = &Door{X: yd.X, Y: yd.Y, Locked: yd.Locked, KeyName: yd.Key}
	}
	for _, yt := range ym.Traps {
		uses := yt.Uses
		if uses == 0 {
			uses = 1
		}
		m.Traps[Tile{yt.X, yt.Y}] = &Trap{X: yt.X, Y: yt.Y, Effect: yt.Effect, Potency: yt.Potency, Uses: uses}
	}
	for _, yt := range ym.Teleports {
		m.Teleports[Tile{yt.X, yt.Y}] = &Teleport{
			X: yt.X, Y: yt.Y,
			TargetMap: yt.To.Map, TargetX: yt.To.X, TargetY: yt.To.Y,
		}
	}
	for _, ys := range ym.Spawns {
		m.Spawns = append(m.Spawns, SpawnConfig{
			Template:     ys.Template,
			Count:        ys.Count,
			RespawnTicks: ys.RespawnTicks,
			X:            ys.X,
			Y:            ys.Y,
		})
	}
	return m, nil
}
