package world

import (
	"fmt"
	"sync"
)

// Manager provides thread-safe access to the loaded map set, indexed by name.
type Manager struct {
	mu       sync.RWMutex
	maps     map[string]*Map
	startMap string
}

// NewManager creates a Manager from the given maps.
//
// Precondition: maps must contain at least one map; the first map is the
// global starting map.
// Postcondition: returns a Manager with all maps indexed by name, or an
// error on duplicate names.
func NewManager(maps []*Map) (*Manager, error) {
	m := &Manager{maps: make(map[string]*Map, len(maps))}
	for _, mp := range maps {
		if _, exists := m.maps[mp.Name]; exists {
			return nil, fmt.Errorf("duplicate map name: %q", mp.Name)
		}
		m.maps[mp.Name] = mp
	}
	if len(maps) > 0 {
		m.startMap = maps[0].Name
	}
	return m, nil
}

// ValidateTeleports checks that every teleport target resolves to a known
// map and an in-bounds, non-wall tile. Call this after NewManager to catch
// dangling cross-map references.
func (m *Manager) ValidateTeleports() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, mp := range m.maps {
		for _, tp := range mp.Teleports {
			target, ok := m.maps[tp.TargetMap]
			if !ok {
				return fmt.Errorf("map %q: teleport at (%d, %d) targets unknown map %q",
					mp.Name, tp.X, tp.Y, tp.TargetMap)
			}
			if target.IsDense(tp.TargetX, tp.TargetY) {
				return fmt.Errorf("map %q: teleport at (%d, %d) lands in a wall at %s (%d, %d)",
					mp.Name, tp.X, tp.Y, tp.TargetMap, tp.TargetX, tp.TargetY)
			}
		}
	}
	return nil
}

// GetMap returns the map with the given name.
//
// Postcondition: returns (map, true) if found, or (nil, false) otherwise.
func (m *Manager) GetMap(name string) (*Map, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mp, ok := m.maps[name]
	return mp, ok
}

// StartMap returns the global starting map, or nil when the world is empty.
func (m *Manager) StartMap() *Map {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.startMap == "" {
		return nil
	}
	return m.maps[m.startMap]
}

// MapCount returns the number of loaded maps.
func (m *Manager) MapCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.maps)
}

// AllMaps returns all loaded maps.
//
// Postcondition: returns a non-nil slice; may be empty.
func (m *Manager) AllMaps() []*Map {
	m.mu.RLock()
	defer m.mu.RUnlock()
	maps := make([]*Map, 0, len(m.maps))
	for _, mp := range m.maps {
		maps = append(maps, mp)
	}
	return maps
}
