package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/seiyria/landoftherair/internal/game/dice"
)

// globalKey is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no map VM is found.
const globalKey = "__global__"

// CharacterInfo is a snapshot of a character's state passed to Lua.
type CharacterInfo struct {
	UUID  string
	Name  string
	HP    int
	MaxHP int
	Level int
	Class string
}

// Manager owns one sandboxed LState per map and exposes hook dispatch.
//
// Manager is safe for concurrent CallHook after all LoadMap calls complete.
// Each map's LState is single-threaded; the read lock serializes concurrent
// calls to the same map while allowing different maps to run concurrently.
type Manager struct {
	mu      sync.RWMutex
	states  map[string]*lua.LState
	cancels map[string]func()
	roller  *dice.Roller
	logger  *zap.Logger

	// Injected after construction. nil = no-op in engine.* modules.
	GetCharacter func(uuid string) *CharacterInfo
	DealDamage   func(uuid string, amount int, damageClass string) error
	Heal         func(uuid string, amount int) error
	BoostStat    func(uuid, statName string, amount int) error
	ApplyEffect  func(uuid, effectName string, duration, potency int) error
	SendMessage  func(uuid, message string)
	Broadcast    func(message string)
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	return &Manager{
		states:  make(map[string]*lua.LState),
		cancels: make(map[string]func()),
		roller:  roller,
		logger:  logger,
	}
}

// LoadMap creates a sandboxed VM for mapName, registers all engine.*
// modules, then executes every *.lua file in scriptDir in lexicographic
// order.
//
// Precondition: mapName must be non-empty; scriptDir must be a readable
// directory.
// Postcondition: the map VM is registered; returns an error on Lua load
// failure.
func (m *Manager) LoadMap(mapName, scriptDir string, instLimit int) error {
	return m.loadInto(mapName, scriptDir, instLimit)
}

// LoadGlobal creates the shared VM for effect and common scripts,
// accessible as a CallHook fallback from any map.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(globalKey, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.states[key]; ok {
		if oldCancel := m.cancels[key]; oldCancel != nil {
			oldCancel()
		}
		old.Close()
	}
	m.states[key] = L
	m.cancels[key] = cancel
	m.mu.Unlock()
	return nil
}

// Close tears down every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, L := range m.states {
		if cancel := m.cancels[key]; cancel != nil {
			cancel()
		}
		L.Close()
	}
	m.states = make(map[string]*lua.LState)
	m.cancels = make(map[string]func())
}

// CallHook calls the named Lua global function in mapName's VM. If the map
// has no VM, the shared VM is tried as a fallback. Returns (LNil, nil) if
// the hook is not defined or no VM exists. Lua runtime errors are logged at
// Warn level and never propagated.
//
// Postcondition: returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(mapName, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	L, ok := m.states[mapName]
	if !ok {
		L = m.states[globalKey]
	}
	m.mu.RUnlock()

	if L == nil {
		m.logger.Info("scripting: no VM for map",
			zap.String("map", mapName),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("map", mapName),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// HasHook reports whether the named hook resolves to a function for
// mapName, through the fallback chain.
func (m *Manager) HasHook(mapName, hook string) bool {
	m.mu.RLock()
	L, ok := m.states[mapName]
	if !ok {
		L = m.states[globalKey]
	}
	m.mu.RUnlock()
	if L == nil {
		return false
	}
	_, isFn := L.GetGlobal(hook).(*lua.LFunction)
	return isFn
}
