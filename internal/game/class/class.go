// Package class defines the closed set of character classes and the bonus
// computations keyed by them. Each class is one implementation of the Class
// interface; dispatch is a registry lookup, not inheritance.
package class

import (
	"github.com/seiyria/landoftherair/internal/game/skill"
	"github.com/seiyria/landoftherair/internal/game/stat"
)

// Name identifies a character class.
type Name string

const (
	Undecided Name = "Undecided"
	Mage      Name = "Mage"
	Healer    Name = "Healer"
	Warrior   Name = "Warrior"
	Thief     Name = "Thief"
)

// View is the snapshot of character state a class computation reads. Class
// functions are pure over this snapshot; they never hold character
// references.
type View struct {
	Level       int
	BaseStats   stat.Stats
	SkillLevels map[skill.Type]int
}

// SkillLevel returns the snapshot's level for t, or 0.
func (v View) SkillLevel(t skill.Type) int {
	return v.SkillLevels[t]
}

// Class is the per-class bonus dispatch surface.
type Class interface {
	// ClassName returns the class identifier.
	ClassName() Name
	// CalcBonusStats returns the stat fragment folded into totals during
	// every recompute.
	CalcBonusStats(v View) stat.Stats
	// GainLevelStats returns the permanent base-stat gains for reaching a
	// new highest level; rng(n) returns a uniform value in [0, n).
	GainLevelStats(v View, rng func(n int) int) stat.Stats
	// BecomeClass returns one-time base-stat adjustments applied when a
	// character takes up the class.
	BecomeClass(v View) stat.Stats
	// CanBeEncumbered reports whether heavy equipment slows the class.
	CanBeEncumbered() bool
}

var registry = map[Name]Class{
	Undecided: undecided{},
	Mage:      mage{},
	Healer:    healer{},
	Warrior:   warrior{},
	Thief:     thief{},
}

// ForName returns the Class for name, falling back to Undecided for any
// unknown value so a corrupt snapshot still simulates.
func ForName(name Name) Class {
	if c, ok := registry[name]; ok {
		return c
	}
	return registry[Undecided]
}

// AllNames lists every class in a stable order.
var AllNames = []Name{Undecided, Mage, Healer, Warrior, Thief}

type undecided struct{}

func (undecided) ClassName() Name { return Undecided }

func (undecided) CalcBonusStats(View) stat.Stats { return stat.Stats{} }

func (undecided) GainLevelStats(v View, rng func(int) int) stat.Stats {
	return stat.Stats{stat.HP: rng(10) + 5}
}

func (undecided) BecomeClass(View) stat.Stats { return stat.Stats{} }

func (undecided) CanBeEncumbered() bool { return true }

type mage struct{}

func (mage) ClassName() Name { return Mage }

func (mage) CalcBonusStats(v View) stat.Stats {
	return stat.Stats{
		stat.MP:      v.BaseStats.Get(stat.Int) * 2,
		stat.MPRegen: v.BaseStats.Get(stat.Int) / 5,
	}
}

func (mage) GainLevelStats(v View, rng func(int) int) stat.Stats {
	return stat.Stats{
		stat.HP: rng(10) + 2,
		stat.MP: rng(15) + 5,
	}
}

func (mage) BecomeClass(v View) stat.Stats {
	if v.BaseStats.Get(stat.MP) > 0 {
		return stat.Stats{}
	}
	return stat.Stats{stat.MP: 100, stat.MPRegen: 4}
}

func (mage) CanBeEncumbered() bool { return true }

type healer struct{}

func (healer) ClassName() Name { return Healer }

func (healer) CalcBonusStats(v View) stat.Stats {
	return stat.Stats{
		stat.MP:      v.BaseStats.Get(stat.Wis) * 2,
		stat.MPRegen: v.BaseStats.Get(stat.Wis) / 5,
	}
}

func (healer) GainLevelStats(v View, rng func(int) int) stat.Stats {
	return stat.Stats{
		stat.HP: rng(15) + 4,
		stat.MP: rng(10) + 4,
	}
}

func (healer) BecomeClass(v View) stat.Stats {
	if v.BaseStats.Get(stat.MP) > 0 {
		return stat.Stats{}
	}
	return stat.Stats{stat.MP: 80, stat.MPRegen: 3}
}

func (healer) CanBeEncumbered() bool { return true }

type warrior struct{}

func (warrior) ClassName() Name { return Warrior }

func (warrior) CalcBonusStats(v View) stat.Stats {
	return stat.Stats{
		stat.Offense: v.BaseStats.Get(stat.Str) / 5,
		stat.Defense: v.BaseStats.Get(stat.Dex) / 5,
	}
}

func (warrior) GainLevelStats(v View, rng func(int) int) stat.Stats {
	return stat.Stats{stat.HP: rng(25) + 10}
}

func (warrior) BecomeClass(View) stat.Stats { return stat.Stats{} }

func (warrior) CanBeEncumbered() bool { return false }

type thief struct{}

func (thief) ClassName() Name { return Thief }

func (thief) CalcBonusStats(v View) stat.Stats {
	return stat.Stats{
		stat.Stealth:    v.SkillLevel(skill.Thievery) * 2,
		stat.Perception: v.BaseStats.Get(stat.Dex) / 5,
	}
}

func (thief) GainLevelStats(v View, rng func(int) int) stat.Stats {
	return stat.Stats{stat.HP: rng(20) + 5}
}

func (thief) BecomeClass(View) stat.Stats { return stat.Stats{} }

func (thief) CanBeEncumbered() bool { return false }
