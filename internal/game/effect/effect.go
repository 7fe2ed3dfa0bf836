// Package effect models timed stat modifiers (buffs, debuffs, dots) and the
// behavior registry that gives each named effect its start/tick/end hooks.
//
// The original game gave every effect its own class; here an effect is data
// (Effect) plus a Behavior looked up by name at apply time.
package effect

import "github.com/seiyria/landoftherair/internal/game/stat"

// PermanentDuration marks an effect that never expires on its own.
const PermanentDuration = -1

// Well-known effect names the simulation core reconciles directly.
const (
	Encumbered   = "Encumbered"
	Hidden       = "Hidden"
	Invisible    = "Invisible"
	Frosted      = "Frosted"
	Stunned      = "Stunned"
	Nourishment  = "Nourishment"
	Malnourished = "Malnourished"
	Swimming     = "Swimming"
	Drowning     = "Drowning"
)

// DeathExempt lists the effects that survive death. The list itself is never
// cleared or overridden by content.
var DeathExempt = map[string]bool{
	Nourishment:  true,
	Malnourished: true,
}

// Info is the arbitrary payload an effect carries between its hooks.
type Info struct {
	// IsPermanent makes the effect immune to natural expiry and to
	// replacement by non-permanent castings of the same name.
	IsPermanent bool `json:"isPermanent,omitempty"`
	// IsFrozen pauses duration bookkeeping while set.
	IsFrozen bool `json:"isFrozen,omitempty"`
	// IsPartySourced marks auras applied by party logic; they may replace
	// permanent effects of the same name.
	IsPartySourced bool `json:"isPartySourced,omitempty"`

	// Caster is the UUID of the character that applied the effect.
	Caster string `json:"caster,omitempty"`
	// CasterName is the display name recorded at cast time.
	CasterName string `json:"casterName,omitempty"`

	Potency     int    `json:"potency,omitempty"`
	Damage      int    `json:"damage,omitempty"`
	DamageClass string `json:"damageClass,omitempty"`
}

// Effect is one named, timed modifier held by a character. A character keeps
// at most one Effect per Name.
type Effect struct {
	Name string `json:"name"`
	// Duration is the remaining lifetime in ticks; PermanentDuration means
	// the effect never expires.
	Duration int  `json:"duration"`
	Info     Info `json:"effectInfo"`

	// Boosts is folded into the holder's total stats while the effect is
	// active.
	Boosts stat.Stats `json:"allBoosts,omitempty"`

	StartMessage string `json:"-"`
	EndMessage   string `json:"-"`
	TickMessage  string `json:"-"`

	// HideMessage suppresses the end message when the effect is being
	// replaced rather than expiring naturally.
	HideMessage bool `json:"-"`
}

// Clone returns an independent copy of e, sharing nothing mutable.
func (e *Effect) Clone() *Effect {
	out := *e
	out.Boosts = e.Boosts.Clone()
	return &out
}

// IsPermanent reports whether the effect is exempt from expiry.
func (e *Effect) IsPermanent() bool {
	return e.Info.IsPermanent || e.Duration == PermanentDuration
}

// ShouldTickDown reports whether duration bookkeeping applies this tick.
func (e *Effect) ShouldTickDown() bool {
	return !e.IsPermanent() && !e.Info.IsFrozen
}
