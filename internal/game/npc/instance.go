package npc

import (
	"strings"

	"github.com/seiyria/landoftherair/internal/game/character"
	"github.com/seiyria/landoftherair/internal/game/class"
	"github.com/seiyria/landoftherair/internal/game/dice"
	"github.com/seiyria/landoftherair/internal/game/item"
	"github.com/seiyria/landoftherair/internal/game/skill"
	"github.com/seiyria/landoftherair/internal/game/stat"
)

// Instance couples a live NPC character with the template it came from and
// the runtime state that is deliberately not shared between copies: trigger
// cooldowns live here, per instance, so every spawned copy answers players
// on its own clock.
type Instance struct {
	Character *character.Character
	Template  *Template

	// cooldowns maps trigger keyword to ticks remaining before it can
	// fire again on this instance.
	cooldowns map[string]int
}

// NewInstance builds a fresh character from tmpl. Gear and hand names that
// do not resolve against the item registry are skipped. The character is
// not yet in any room; the caller places it and wires its context.
//
// Precondition: tmpl must have passed Validate.
func NewInstance(tmpl *Template, items *item.Registry, src dice.Source) *Instance {
	cls := class.Name(tmpl.BaseClass)
	if cls == "" {
		cls = class.Undecided
	}

	c := character.New(tmpl.Name, character.KindNPC, cls)
	c.Level = tmpl.Level
	c.HighestLevel = tmpl.Level
	c.Allegiance = character.Allegiance(tmpl.Allegiance)
	c.NeverHostile = tmpl.EffectiveHostility() == HostilityNever
	c.AquaticOnly = tmpl.AquaticOnly
	c.SkillOnKill = tmpl.SkillOnKill

	c.BaseStats[stat.HP] = tmpl.HP
	c.BaseStats[stat.MP] = tmpl.MP
	c.HP = stat.NewBoundedCounter(0, tmpl.HP, tmpl.HP)
	c.MP = stat.NewBoundedCounter(0, tmpl.MP, tmpl.MP)
	for name, value := range tmpl.Stats {
		c.BaseStats[stat.Stat(name)] = value
	}

	// a template skill level means the instance sits at the floor of that
	// level on the proficiency curve
	for name, level := range tmpl.Skills {
		c.Skills[skill.Type(name)] = skill.XPForLevel(level - 1)
	}

	if items != nil {
		if def, ok := items.Get(tmpl.RightHand); ok && tmpl.RightHand != "" {
			c.RightHand = item.New(def)
		}
		if def, ok := items.Get(tmpl.LeftHand); ok && tmpl.LeftHand != "" {
			c.LeftHand = item.New(def)
		}
		for slot, name := range tmpl.Gear {
			if def, ok := items.Get(name); ok {
				c.Gear[item.Slot(slot)] = item.New(def)
			}
		}
	}

	if gold := RollGold(src, tmpl.Gold); gold > 0 {
		c.EarnCurrency(character.CurrencyGold, gold)
	}

	return &Instance{
		Character: c,
		Template:  tmpl,
		cooldowns: map[string]int{},
	}
}

// Hostility exposes the resolved hostility stance.
func (i *Instance) Hostility() Hostility {
	return i.Template.EffectiveHostility()
}

// TryTrigger matches text against the template's triggers and returns the
// first off-cooldown response, arming its per-instance cooldown.
//
// Postcondition: returns ("", false) when nothing matches or everything
// matching is cooling down.
func (i *Instance) TryTrigger(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, tr := range i.Template.Triggers {
		if !strings.Contains(lower, strings.ToLower(tr.Keyword)) {
			continue
		}
		if i.cooldowns[tr.Keyword] > 0 {
			continue
		}
		i.cooldowns[tr.Keyword] = tr.Cooldown
		return tr.Response, true
	}
	return "", false
}

// TickCooldowns advances this instance's trigger cooldowns by one tick.
func (i *Instance) TickCooldowns() {
	for keyword, left := range i.cooldowns {
		if left <= 1 {
			delete(i.cooldowns, keyword)
			continue
		}
		i.cooldowns[keyword] = left - 1
	}
}
