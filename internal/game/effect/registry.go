package effect

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/seiyria/landoftherair/internal/game/stat"
)

// Target is the surface a behavior hook may touch on the character holding
// the effect. It is implemented by the character core; behaviors never reach
// into character internals directly.
type Target interface {
	SendMessage(message string)
	GainStat(s stat.Stat, value int)
	LoseStat(s stat.Stat, value int)
	TakeDamage(amount int, damageClass, message string)
	HealDamage(amount int)
}

// Behavior is the hook set for one effect kind. Nil hooks are skipped.
type Behavior struct {
	// OnStart runs when the effect becomes active on target.
	OnStart func(target Target, e *Effect)
	// OnTick runs once per simulation tick while active.
	OnTick func(target Target, e *Effect)
	// OnEnd runs when the effect is unapplied with prematurelyEnd set or
	// expires naturally.
	OnEnd func(target Target, e *Effect)
}

// Def is the static definition of an effect kind, loaded from YAML.
type Def struct {
	Name     string            `yaml:"name"`
	Duration int               `yaml:"duration"`
	Boosts   map[stat.Stat]int `yaml:"boosts"`

	StartMessage string `yaml:"start_message"`
	EndMessage   string `yaml:"end_message"`
	TickMessage  string `yaml:"tick_message"`

	// DamagePerTick makes the effect a damage-over-time; the damage class
	// colors resistances and the death message.
	DamagePerTick int    `yaml:"damage_per_tick"`
	DamageClass   string `yaml:"damage_class"`
	// HealPerTick makes the effect a regeneration-over-time.
	HealPerTick int `yaml:"heal_per_tick"`

	// LuaHook names a Lua function set (hook_start/hook_tick/hook_end
	// prefix) registered by a content script; empty means the built-in
	// data-driven behavior is used.
	LuaHook string `yaml:"lua_hook"`
}

// Validate checks that the Def satisfies its invariants.
func (d *Def) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("effect validation failed: Name must not be empty")
	}
	if d.DamagePerTick < 0 || d.HealPerTick < 0 {
		return fmt.Errorf("effect %q: per-tick amounts must be >= 0", d.Name)
	}
	return nil
}

// Registry holds effect definitions and behaviors keyed by effect name.
type Registry struct {
	defs      map[string]*Def
	behaviors map[string]Behavior
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		defs:      make(map[string]*Def),
		behaviors: make(map[string]Behavior),
	}
}

// Register adds def with the data-driven default behavior.
//
// Precondition: def must not be nil and must validate.
func (r *Registry) Register(def *Def) {
	r.defs[def.Name] = def
	r.behaviors[def.Name] = defaultBehavior(def)
}

// RegisterBehavior overrides the behavior for name. Content packages use
// this for effects whose hooks cannot be expressed as data.
func (r *Registry) RegisterBehavior(name string, b Behavior) {
	r.behaviors[name] = b
}

// Def returns the definition for name, or (nil, false).
func (r *Registry) Def(name string) (*Def, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Create stamps a fresh Effect instance from the named definition.
//
// Postcondition: the instance shares no mutable state with the definition.
func (r *Registry) Create(name string) (*Effect, bool) {
	def, ok := r.defs[name]
	if !ok {
		return nil, false
	}
	boosts := make(stat.Stats, len(def.Boosts))
	for k, v := range def.Boosts {
		boosts[k] = v
	}
	return &Effect{
		Name:         def.Name,
		Duration:     def.Duration,
		Boosts:       boosts,
		StartMessage: def.StartMessage,
		EndMessage:   def.EndMessage,
		TickMessage:  def.TickMessage,
		Info: Info{
			Damage:      def.DamagePerTick,
			DamageClass: def.DamageClass,
		},
	}, true
}

// Names returns every registered effect name, unsorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.defs))
	for name := range r.defs {
		out = append(out, name)
	}
	return out
}

// Behavior returns the behavior for name. Unknown names get the bare
// message-only behavior so an unregistered effect still notifies its holder.
func (r *Registry) Behavior(name string) Behavior {
	if b, ok := r.behaviors[name]; ok {
		return b
	}
	return messageOnlyBehavior()
}

// defaultBehavior builds the data-driven hook set for def: start/end/tick
// messages, damage-over-time, and heal-over-time.
func defaultBehavior(def *Def) Behavior {
	return Behavior{
		OnStart: func(t Target, e *Effect) {
			if e.StartMessage != "" {
				t.SendMessage(e.StartMessage)
			}
		},
		OnTick: func(t Target, e *Effect) {
			if def.DamagePerTick > 0 {
				dmg := def.DamagePerTick
				if e.Info.Damage > 0 {
					dmg = e.Info.Damage
				}
				t.TakeDamage(dmg, def.DamageClass, e.TickMessage)
			}
			if def.HealPerTick > 0 {
				t.HealDamage(def.HealPerTick)
			}
		},
		OnEnd: func(t Target, e *Effect) {
			if e.EndMessage != "" && !e.HideMessage {
				t.SendMessage(e.EndMessage)
			}
		},
	}
}

func messageOnlyBehavior() Behavior {
	return Behavior{
		OnStart: func(t Target, e *Effect) {
			if e.StartMessage != "" {
				t.SendMessage(e.StartMessage)
			}
		},
		OnEnd: func(t Target, e *Effect) {
			if e.EndMessage != "" && !e.HideMessage {
				t.SendMessage(e.EndMessage)
			}
		},
	}
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Def, and
// returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns a non-nil Registry, or an error if any file fails
// to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading effect dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		reg.Register(&def)
	}
	return reg, nil
}
