// Package trait models permanent, purchased progression bonuses and the
// formula modifiers they grant.
package trait

import "math"

// Well-known trait names referenced by the simulation core. Content scripts
// may define others; these are the ones with hard-coded formula hooks.
const (
	NaturalArmor = "NaturalArmor"
	EagleEye     = "EagleEye"
	FunkyMoves   = "FunkyMoves"
	SwordTricks  = "SwordTricks"
	Swashbuckler = "Swashbuckler"
	Deadeye      = "Deadeye"

	MagicBoost = "MagicBoost"
	CalmMind   = "CalmMind"

	DarkerShadows = "DarkerShadows"
	ShadowSheath  = "ShadowSheath"
	SilentStrikes = "SilentStrikes"
	TrueSight     = "TrueSight"

	Shieldbearer         = "Shieldbearer"
	OffhandFinesse       = "OffhandFinesse"
	AncientTechnique     = "AncientTechnique"
	ReflectiveEncrusting = "ReflectiveEncrusting"

	FamiliarStrength  = "FamiliarStrength"
	FamiliarFortitude = "FamiliarFortitude"

	PartyDefense            = "PartyDefense"
	PartyOffense            = "PartyOffense"
	PartyMana               = "PartyMana"
	PartyHealth             = "PartyHealth"
	PartyManaRegeneration   = "PartyManaRegeneration"
	PartyHealthRegeneration = "PartyHealthRegeneration"

	ShadowSwap     = "ShadowSwap"
	ForgedFire     = "ForgedFire"
	FrostedTouch   = "FrostedTouch"
	CarefulTouch   = "CarefulTouch"
	MagicFocus     = "MagicFocus"
	NecroticFocus  = "NecroticFocus"
	HealingFocus   = "HealingFocus"
	ForcefulStrike = "ForcefulStrike"
)

// Levels maps trait name to purchased level for one character. NPCs normally
// carry an empty set; every lookup on a missing trait reads as zero.
type Levels map[string]int

// Level returns the purchased level of the named trait, or 0.
func (l Levels) Level(name string) int {
	return l[name]
}

// Clone returns an independent copy of l.
func (l Levels) Clone() Levels {
	out := make(Levels, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// UsageModifier converts a trait level into the concrete number its consuming
// formula plugs in. Most traits pass the level through unchanged; the ones
// listed here have bespoke scaling.
func UsageModifier(name string, level int) float64 {
	l := float64(level)
	switch name {
	case ShadowSwap:
		return math.Max(100, l*2)
	case ForgedFire, FrostedTouch:
		return l
	case CarefulTouch:
		return math.Min(0.95, l*0.05)
	case MagicFocus, NecroticFocus, HealingFocus, ForcefulStrike:
		return l * 5
	default:
		return l
	}
}

// AgroMitigation returns the multiplier applied to threat generated by an
// attacker with the AncientTechnique trait at the given level. Each level
// shaves 5% off, floored at 25% of the original value.
//
// Postcondition: result is in [0.25, 1.0].
func AgroMitigation(level int) float64 {
	m := 1 - float64(level)*0.05
	if m < 0.25 {
		m = 0.25
	}
	return m
}
