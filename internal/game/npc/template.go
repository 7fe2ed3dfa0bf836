// Package npc provides NPC template definitions, live instance management,
// and the spawner that keeps a map populated.
package npc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/seiyria/landoftherair/internal/game/skill"
	"github.com/seiyria/landoftherair/internal/game/stat"
)

// Hostility classifies how an NPC template treats nearby players.
type Hostility string

const (
	// HostilityAlways attacks anything it can see.
	HostilityAlways Hostility = "always"
	// HostilityOnHit retaliates but never initiates.
	HostilityOnHit Hostility = "on-hit"
	// HostilityNever refuses to fight under any circumstance.
	HostilityNever Hostility = "never"
)

var validHostilities = map[Hostility]bool{
	HostilityAlways: true,
	HostilityOnHit:  true,
	HostilityNever:  true,
}

// Trigger is a keyword-activated response line. Cooldown is in ticks and
// tracked per live instance, so two copies of the same template answer
// independently.
type Trigger struct {
	Keyword  string `yaml:"keyword"`
	Response string `yaml:"response"`
	Cooldown int    `yaml:"cooldown"`
}

// GoldDrop is the range of gold an NPC spills on death.
type GoldDrop struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Template defines a reusable NPC archetype loaded from YAML. Stats and
// skills layer on top of the character defaults; gear names resolve against
// the item registry at spawn time.
type Template struct {
	Name       string    `yaml:"name"`
	Allegiance string    `yaml:"allegiance"`
	BaseClass  string    `yaml:"base_class"`
	Hostility  Hostility `yaml:"hostility"`

	Level int `yaml:"level"`
	HP    int `yaml:"hp"`
	MP    int `yaml:"mp"`

	Stats  map[string]int `yaml:"stats"`
	Skills map[string]int `yaml:"skills"`

	// SkillOnKill is the skill reward the NPC is worth to its killer.
	SkillOnKill float64 `yaml:"skill_on_kill"`

	RightHand string            `yaml:"right_hand"`
	LeftHand  string            `yaml:"left_hand"`
	Gear      map[string]string `yaml:"gear"`

	AquaticOnly bool `yaml:"aquatic_only"`

	Gold *GoldDrop  `yaml:"gold"`
	Loot *LootTable `yaml:"loot"`

	Triggers []Trigger `yaml:"triggers"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: returns nil iff the name is non-empty, Level >= 1,
// HP >= 1, the hostility (when set) is known, every stat and skill name is
// in the vocabulary, and the gold and loot blocks pass their own checks.
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("npc template: name must not be empty")
	}
	if t.Level < 1 {
		return fmt.Errorf("npc template %q: level must be >= 1", t.Name)
	}
	if t.HP < 1 {
		return fmt.Errorf("npc template %q: hp must be >= 1", t.Name)
	}
	if t.MP < 0 {
		return fmt.Errorf("npc template %q: mp must be >= 0", t.Name)
	}
	if t.Hostility != "" && !validHostilities[t.Hostility] {
		return fmt.Errorf("npc template %q: unknown hostility %q", t.Name, t.Hostility)
	}
	for name := range t.Stats {
		if !stat.IsValid(stat.Stat(name)) {
			return fmt.Errorf("npc template %q: unknown stat %q", t.Name, name)
		}
	}
	for name, level := range t.Skills {
		if !skill.IsValid(skill.Type(name)) {
			return fmt.Errorf("npc template %q: unknown skill %q", t.Name, name)
		}
		if level < 1 {
			return fmt.Errorf("npc template %q: skill %q level must be >= 1", t.Name, name)
		}
	}
	if t.SkillOnKill < 0 {
		return fmt.Errorf("npc template %q: skill_on_kill must be >= 0", t.Name)
	}
	if t.Gold != nil {
		if t.Gold.Min < 0 {
			return fmt.Errorf("npc template %q: gold min must be >= 0", t.Name)
		}
		if t.Gold.Min > t.Gold.Max {
			return fmt.Errorf("npc template %q: gold min (%d) must be <= max (%d)", t.Name, t.Gold.Min, t.Gold.Max)
		}
	}
	if t.Loot != nil {
		if err := t.Loot.Validate(); err != nil {
			return fmt.Errorf("npc template %q: %w", t.Name, err)
		}
	}
	for i, tr := range t.Triggers {
		if tr.Keyword == "" {
			return fmt.Errorf("npc template %q: trigger[%d] keyword must not be empty", t.Name, i)
		}
		if tr.Response == "" {
			return fmt.Errorf("npc template %q: trigger[%d] response must not be empty", t.Name, i)
		}
		if tr.Cooldown < 0 {
			return fmt.Errorf("npc template %q: trigger[%d] cooldown must be >= 0", t.Name, i)
		}
	}
	return nil
}

// EffectiveHostility resolves the default: a template that says nothing
// retaliates but does not initiate.
func (t *Template) EffectiveHostility() Hostility {
	if t.Hostility == "" {
		return HostilityOnHit
	}
	return t.Hostility
}

// LoadTemplateFromBytes parses a single NPC template from raw YAML bytes.
//
// Postcondition: returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml and *.yml files in dir into a map keyed by
// template name.
//
// Postcondition: returns all templates or an error on the first parse,
// validate, or duplicate-name failure; on error, the partial result is
// discarded.
func LoadTemplates(dir string) (map[string]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}

	templates := make(map[string]*Template)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if _, exists := templates[tmpl.Name]; exists {
			return nil, fmt.Errorf("loading %q: duplicate template name %q", path, tmpl.Name)
		}
		templates[tmpl.Name] = tmpl
	}
	return templates, nil
}
