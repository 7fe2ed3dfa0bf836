// Package world provides the static map model: tile grids, doors, traps,
// teleports, and spawn configuration, loaded from YAML.
package world

import "fmt"

// Tile is one grid coordinate on a map.
type Tile struct {
	X int
	Y int
}

// Door blocks a tile until opened. A locked door needs the named key item in
// hand.
type Door struct {
	X       int
	Y       int
	Locked  bool
	KeyName string
}

// Trap fires a named effect at whoever steps on its tile. Uses counts down
// per trigger; a trap at zero uses is spent and inert.
type Trap struct {
	X       int
	Y       int
	Effect  string
	Potency int
	Uses    int
}

// Teleport moves a character to a destination on this or another map the
// moment they enter its tile.
type Teleport struct {
	X         int
	Y         int
	TargetMap string
	TargetX   int
	TargetY   int
}

// SpawnConfig defines how many instances of an NPC template should exist
// around a spawn point and how long a dead one stays down.
type SpawnConfig struct {
	// Template is the NPC template name to spawn.
	Template string
	// Count is the maximum number of live instances from this spawner.
	Count int
	// RespawnTicks is how many simulation ticks a dead instance waits
	// before respawning. Zero means the template's default.
	RespawnTicks int
	X            int
	Y            int
}

// Map is one playable area: a rectangular tile grid plus everything anchored
// to its tiles. The grid is immutable after load; runtime state (open doors,
// spent traps) lives with the room owning the map.
type Map struct {
	Name   string
	Width  int
	Height int

	// RespawnX, RespawnY is where players restored on this map appear.
	RespawnX int
	RespawnY int

	// MaxSkill and MaxLevel cap progression for characters on this map.
	MaxSkill int
	MaxLevel int

	dense map[Tile]bool
	fluid map[Tile]bool

	Doors     map[Tile]*Door
	Traps     map[Tile]*Trap
	Teleports map[Tile]*Teleport
	Spawns    []SpawnConfig
}

// IsDense reports whether (x, y) is a wall tile. Out-of-bounds tiles read as
// dense so nothing walks off the grid.
func (m *Map) IsDense(x, y int) bool {
	if !m.InBounds(x, y) {
		return true
	}
	return m.dense[Tile{x, y}]
}

// IsFluid reports whether (x, y) is a water tile.
func (m *Map) IsFluid(x, y int) bool {
	return m.fluid[Tile{x, y}]
}

// InBounds reports whether (x, y) lies on the grid.
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// DoorAt returns the door on (x, y), or nil.
func (m *Map) DoorAt(x, y int) *Door {
	return m.Doors[Tile{x, y}]
}

// TrapAt returns the trap on (x, y), or nil.
func (m *Map) TrapAt(x, y int) *Trap {
	return m.Traps[Tile{x, y}]
}

// TeleportAt returns the teleport on (x, y), or nil.
func (m *Map) TeleportAt(x, y int) *Teleport {
	return m.Teleports[Tile{x, y}]
}

// Validate checks map invariants.
//
// Postcondition: returns nil if valid, or an error describing the first
// violation.
func (m *Map) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("map name must not be empty")
	}
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("map %q: dimensions must be positive, got %dx%d", m.Name, m.Width, m.Height)
	}
	if !m.InBounds(m.RespawnX, m.RespawnY) {
		return fmt.Errorf("map %q: respawn point (%d, %d) is off the grid", m.Name, m.RespawnX, m.RespawnY)
	}
	if m.IsDense(m.RespawnX, m.RespawnY) {
		return fmt.Errorf("map %q: respawn point (%d, %d) is a wall", m.Name, m.RespawnX, m.RespawnY)
	}
	for t, d := range m.Doors {
		if !m.InBounds(t.X, t.Y) {
			return fmt.Errorf("map %q: door at (%d, %d) is off the grid", m.Name, t.X, t.Y)
		}
		if d.Locked && d.KeyName == "" {
			return fmt.Errorf("map %q: locked door at (%d, %d) names no key", m.Name, t.X, t.Y)
		}
	}
	for t, tr := range m.Traps {
		if !m.InBounds(t.X, t.Y) {
			return fmt.Errorf("map %q: trap at (%d, %d) is off the grid", m.Name, t.X, t.Y)
		}
		if tr.Effect == "" {
			return fmt.Errorf("map %q: trap at (%d, %d) names no effect", m.Name, t.X, t.Y)
		}
	}
	for t := range m.Teleports {
		if !m.InBounds(t.X, t.Y) {
			return fmt.Errorf("map %q: teleport at (%d, %d) is off the grid", m.Name, t.X, t.Y)
		}
	}
	for _, s := range m.Spawns {
		if s.Template == "" {
			return fmt.Errorf("map %q: spawn at (%d, %d) names no template", m.Name, s.X, s.Y)
		}
		if s.Count <= 0 {
			return fmt.Errorf("map %q: spawn %q: count must be positive", m.Name, s.Template)
		}
		if !m.InBounds(s.X, s.Y) {
			return fmt.Errorf("map %q: spawn %q at (%d, %d) is off the grid", m.Name, s.Template, s.X, s.Y)
		}
	}
	return nil
}
