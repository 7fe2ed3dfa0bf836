// Package skill defines the skill vocabulary and the proficiency-to-level
// progression curve shared by every character.
package skill

import "math"

// Type identifies one trainable skill.
type Type string

const (
	Mace       Type = "mace"
	Axe        Type = "axe"
	Dagger     Type = "dagger"
	OneHanded  Type = "onehanded"
	TwoHanded  Type = "twohanded"
	Shortsword Type = "shortsword"
	Polearm    Type = "polearm"
	Ranged     Type = "ranged"
	Martial    Type = "martial"
	Staff      Type = "staff"
	Throwing   Type = "throwing"
	Thievery   Type = "thievery"
	Wand       Type = "wand"

	Conjuration Type = "conjuration"
	Restoration Type = "restoration"

	Alchemy      Type = "alchemy"
	Spellforging Type = "spellforging"
)

// AllTypes lists every skill in a stable order.
var AllTypes = []Type{
	Mace, Axe, Dagger, OneHanded, TwoHanded, Shortsword, Polearm,
	Ranged, Martial, Staff, Throwing, Thievery, Wand,
	Conjuration, Restoration,
	Alchemy, Spellforging,
}

// tradeSkills are exempt from the room-wide skill cap.
var tradeSkills = map[Type]bool{
	Alchemy:      true,
	Spellforging: true,
}

var validTypes = func() map[Type]bool {
	m := make(map[Type]bool, len(AllTypes))
	for _, t := range AllTypes {
		m[t] = true
	}
	return m
}()

// IsValid reports whether t names a known skill.
func IsValid(t Type) bool {
	return validTypes[t]
}

// IsTradeSkill reports whether t is a trade skill, exempt from the skill cap.
func IsTradeSkill(t Type) bool {
	return tradeSkills[t]
}

// Set holds the proficiency value for every skill a character has trained.
// A missing key reads as zero.
type Set map[Type]float64

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Coefficient is the base of the logarithmic skill curve. Changing it shifts
// every skill level boundary in the game.
const Coefficient = 1.55

// Level maps a raw proficiency value to an integer skill level. Values below
// 100 are level 0; past that each level costs Coefficient times the previous
// one.
//
// Postcondition: non-decreasing in value; Level(v) == 0 for v < 100.
func Level(value float64) int {
	if value < 100 {
		return 0
	}
	return 1 + int(math.Floor(math.Log(value/100)/math.Log(Coefficient)))
}

// XPForLevel is the inverse of the curve: the proficiency value required to
// advance past the given level. Level 0 is fixed at 100.
func XPForLevel(level int) float64 {
	if level == 0 {
		return 100
	}
	return math.Floor(math.Pow(Coefficient, float64(level)) * 100)
}

// DampenGain scales a prospective skill gain against the room-wide cap.
// Within one level of the cap the gain is divided by 10, one level past by 33,
// and beyond that nothing is gained. Trade skills bypass the cap entirely.
//
// Postcondition: result is gain, gain/10, gain/33, or 0.
func DampenGain(t Type, currentLevel, maxSkill int, gain float64) float64 {
	if IsTradeSkill(t) {
		return gain
	}
	switch {
	case currentLevel < maxSkill:
		return gain
	case currentLevel == maxSkill:
		return gain / 10
	case currentLevel == maxSkill+1:
		return gain / 33
	default:
		return 0
	}
}
