package item

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/seiyria/landoftherair/internal/game/stat"
)

// SkillRequirement gates an item behind a minimum skill level.
type SkillRequirement struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
}

// Requirements lists everything a character must satisfy to use an item.
// Zero-valued fields are unchecked.
type Requirements struct {
	Level      int               `yaml:"level"`
	Profession []string          `yaml:"profession"`
	Alignment  string            `yaml:"alignment"`
	Skill      *SkillRequirement `yaml:"skill"`
}

// EncrustDef describes a socketable gem bonus: the stats it grants and how
// many simultaneous applications of the same encrust type count.
type EncrustDef struct {
	Name     string            `yaml:"name"`
	Stats    map[stat.Stat]int `yaml:"stats"`
	MaxStack int               `yaml:"max_stack"`
}

// EffectRef names an effect an item carries, with optional autocast: gear
// with an autocast effect applies it permanently while equipped.
type EffectRef struct {
	Name     string `yaml:"name"`
	Potency  int    `yaml:"potency"`
	Autocast bool   `yaml:"autocast"`
}

// SuccorInfo stores a teleport-home destination baked into a consumable.
type SuccorInfo struct {
	Map string `yaml:"map"`
	X   int    `yaml:"x"`
	Y   int    `yaml:"y"`
}

// Def is the static definition of an item, loaded from YAML.
type Def struct {
	Name      string            `yaml:"name"`
	Desc      string            `yaml:"desc"`
	ItemClass Class             `yaml:"itemClass"`
	Stats     map[stat.Stat]int `yaml:"stats"`

	Requirements *Requirements `yaml:"requirements"`
	Effect       *EffectRef    `yaml:"effect"`
	Succor       *SuccorInfo   `yaml:"succor"`

	Binds     bool `yaml:"binds"`
	TellsBind bool `yaml:"tellsBind"`
	IsHeavy   bool `yaml:"isHeavy"`
	IsOffhand bool `yaml:"isOffhand"`

	Value  int `yaml:"value"`
	Ounces int `yaml:"ounces"`
}

// Validate checks that the Def satisfies its invariants.
//
// Postcondition: returns nil iff the definition is usable.
func (d *Def) Validate() error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if d.ItemClass == "" {
		errs = append(errs, errors.New("ItemClass must not be empty"))
	}
	if d.Value < 0 {
		errs = append(errs, errors.New("Value must be >= 0"))
	}
	if d.Requirements != nil && d.Requirements.Skill != nil && d.Requirements.Skill.Name == "" {
		errs = append(errs, errors.New("Requirements.Skill.Name must not be empty"))
	}
	if d.Effect != nil && d.Effect.Name == "" {
		errs = append(errs, errors.New("Effect.Name must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

// Registry holds all known item Defs keyed by name.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register adds def, overwriting any existing entry with the same name.
//
// Precondition: def must not be nil and def.Name must not be empty.
func (r *Registry) Register(def *Def) {
	r.defs[def.Name] = def
}

// Get returns the Def for name, or (nil, false) if unknown.
func (r *Registry) Get(name string) (*Def, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Count returns the number of registered definitions.
func (r *Registry) Count() int {
	return len(r.defs)
}

// LoadItems reads all *.yaml and *.yml files from dir, parses each as a Def,
// validates it, and returns a populated Registry.
//
// Precondition: dir must be a readable directory path.
// Postcondition: returns a non-nil Registry or the first encountered error.
func LoadItems(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}

	reg := NewRegistry()
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", path, err)
		}
		var d Def
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("LoadItems: cannot parse file %q: %w", path, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("LoadItems: invalid item in %q: %w", path, err)
		}
		reg.Register(&d)
	}
	return reg, nil
}
