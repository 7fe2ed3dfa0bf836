package npc

import (
	"fmt"
	"strings"
	"sync"

	"github.com/seiyria/landoftherair/internal/game/dice"
	"github.com/seiyria/landoftherair/internal/game/item"
)

// Manager tracks all live NPC instances by character uuid and by map.
// All methods are safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	instances map[string]*Instance       // uuid → Instance
	mapSets   map[string]map[string]bool // map name → set of uuids
}

// NewManager creates an empty NPC Manager.
func NewManager() *Manager {
	return &Manager{
		instances: make(map[string]*Instance),
		mapSets:   make(map[string]map[string]bool),
	}
}

// Spawn builds a new Instance from tmpl and registers it on mapName. The
// returned instance's character still needs placing and context wiring.
//
// Precondition: tmpl must be non-nil; mapName must be non-empty.
func (m *Manager) Spawn(tmpl *Template, mapName string, items *item.Registry, src dice.Source) (*Instance, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("npc.Manager.Spawn: tmpl must not be nil")
	}
	if mapName == "" {
		return nil, fmt.Errorf("npc.Manager.Spawn: mapName must not be empty")
	}

	inst := NewInstance(tmpl, items, src)
	inst.Character.Map = mapName

	m.mu.Lock()
	defer m.mu.Unlock()

	m.instances[inst.Character.UUID] = inst
	if m.mapSets[mapName] == nil {
		m.mapSets[mapName] = make(map[string]bool)
	}
	m.mapSets[mapName][inst.Character.UUID] = true

	return inst, nil
}

// Remove deletes an instance by uuid.
//
// Postcondition: returns an error if the instance is not found.
func (m *Manager) Remove(uuid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.instances[uuid]
	if !ok {
		return fmt.Errorf("npc instance %q not found", uuid)
	}

	if set, ok := m.mapSets[inst.Character.Map]; ok {
		delete(set, uuid)
		if len(set) == 0 {
			delete(m.mapSets, inst.Character.Map)
		}
	}
	delete(m.instances, uuid)
	return nil
}

// Get returns the instance with the given uuid.
func (m *Manager) Get(uuid string) (*Instance, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.instances[uuid]
	return inst, ok
}

// InstancesOnMap returns a snapshot of all live instances on mapName.
//
// Postcondition: returns a non-nil slice.
func (m *Manager) InstancesOnMap(mapName string) []*Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	uuids, ok := m.mapSets[mapName]
	if !ok {
		return []*Instance{}
	}

	out := make([]*Instance, 0, len(uuids))
	for uuid := range uuids {
		if inst, ok := m.instances[uuid]; ok {
			out = append(out, inst)
		}
	}
	return out
}

// CountOnMap counts live instances of the named template on mapName.
func (m *Manager) CountOnMap(mapName, templateName string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for uuid := range m.mapSets[mapName] {
		if inst, ok := m.instances[uuid]; ok && inst.Template.Name == templateName {
			count++
		}
	}
	return count
}

// FindOnMap returns the first instance on mapName whose name has target as
// a case-insensitive prefix, or nil.
func (m *Manager) FindOnMap(mapName, target string) *Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lower := strings.ToLower(target)
	for uuid := range m.mapSets[mapName] {
		inst, ok := m.instances[uuid]
		if !ok {
			continue
		}
		if strings.HasPrefix(strings.ToLower(inst.Character.Name), lower) {
			return inst
		}
	}
	return nil
}
