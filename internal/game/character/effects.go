package character

import (
	"fmt"

	"github.com/seiyria/landoftherair/internal/game/effect"
)

// ApplyEffect runs the apply state machine for e:
//
//   - natural-resource nodes refuse all effects silently;
//   - a same-named active effect refuses the new one when the existing is
//     permanent and the new is neither permanent nor party-sourced;
//   - otherwise the old casting is force-ended with its message suppressed,
//     and the new one starts;
//   - a zero-duration non-permanent effect fires OnStart once and is never
//     retained.
func (c *Character) ApplyEffect(e *effect.Effect) {
	if e == nil || c.IsNaturalResource() {
		return
	}

	if existing, ok := c.Effects[e.Name]; ok {
		if existing.IsPermanent() && !e.IsPermanent() && !e.Info.IsPartySourced {
			c.SendMessage(fmt.Sprintf("A new casting of %s refused to take hold.", e.Name))
			return
		}
		c.UnapplyEffect(existing, true, true)
	}

	if e.Duration > 0 || e.IsPermanent() {
		c.Effects[e.Name] = e
	}

	if b := c.behavior(e.Name); b.OnStart != nil {
		b.OnStart(c, e)
	}
	c.Recalculate()
}

// UnapplyEffect retracts e's stat contributions and removes it from the
// effects map, the only terminal transition an effect has. When
// prematurelyEnd is set the OnEnd hook fires, with its message suppressed if
// hideMessage.
func (c *Character) UnapplyEffect(e *effect.Effect, prematurelyEnd, hideMessage bool) {
	if e == nil {
		return
	}
	if prematurelyEnd {
		e.HideMessage = hideMessage
		if b := c.behavior(e.Name); b.OnEnd != nil {
			b.OnEnd(c, e)
		}
	}
	delete(c.Effects, e.Name)
	c.Recalculate()
}

// HasEffect reports whether an effect with the given name is active.
func (c *Character) HasEffect(name string) bool {
	_, ok := c.Effects[name]
	return ok
}

// EffectByName returns the active effect with the given name, or nil.
func (c *Character) EffectByName(name string) *effect.Effect {
	return c.Effects[name]
}

// ClearEffects force-ends every active effect except the death-exempt ones.
// End hooks fire with their messages suppressed.
func (c *Character) ClearEffects() {
	names := make([]string, 0, len(c.Effects))
	for name := range c.Effects {
		names = append(names, name)
	}
	for _, name := range names {
		if effect.DeathExempt[name] {
			continue
		}
		c.UnapplyEffect(c.Effects[name], true, true)
	}
}

// TakeDamage applies direct damage, delivering the message and handing the
// character to Die if the hit was lethal. Implements effect.Target.
func (c *Character) TakeDamage(amount int, damageClass, message string) {
	if amount <= 0 {
		return
	}
	c.HP.Sub(amount)
	if message != "" {
		c.SendMessage(message)
	}
	if c.HP.AtMinimum() {
		c.die(c.damageSource(), false)
	}
}

// damageSource resolves the caster of the effect currently damaging c, best
// effort. Damage outside an effect has no attributable killer here.
func (c *Character) damageSource() *Character {
	if c.ctx == nil || c.ctx.World == nil {
		return nil
	}
	for _, e := range c.Effects {
		if e.Info.Damage > 0 && e.Info.Caster != "" {
			if killer := c.ctx.World.CharacterByUUID(e.Info.Caster); killer != nil {
				return killer
			}
		}
	}
	return nil
}

// HealDamage restores hit points. Implements effect.Target.
func (c *Character) HealDamage(amount int) {
	if amount <= 0 {
		return
	}
	c.HP.Add(amount)
}
