package character

import (
	"math"

	"github.com/seiyria/landoftherair/internal/game/effect"
	"github.com/seiyria/landoftherair/internal/game/trait"
)

// AddAgro accumulates threat from an attacker. Rejections: nil or self
// sources, this character's own owner, a source the character will never be
// hostile to, and same-faction NPC-on-NPC threat. Players do not track
// threat from NPCs at all.
//
// Generating threat has side effects on the attacker: a non-permanent
// Invisible effect breaks, and the added value is scaled down by the
// attacker's AncientTechnique mitigation. A partied attacking player also
// spreads a flat +1 entry to every other party member.
//
// Postcondition: every retained entry is > 0; entries that reach zero are
// deleted.
func (c *Character) AddAgro(source *Character, value int) {
	if !c.acceptsAgroFrom(source) {
		return
	}

	if inv := source.EffectByName(effect.Invisible); inv != nil && !inv.IsPermanent() {
		source.UnapplyEffect(inv, true, false)
	}

	if value > 0 {
		mitigated := float64(value) * trait.AgroMitigation(source.TraitLevel(trait.AncientTechnique))
		value = int(math.Floor(mitigated))
		if value < 1 {
			value = 1
		}
	}

	c.agroAdd(source.UUID, value)

	if source.IsPlayer() && value > 0 {
		if p := c.partyFor(source.Username); p != nil {
			for _, member := range p.OtherMembers(source.Username) {
				c.agroAdd(member, 1)
			}
		}
	}
}

// AddAgroOverTop boosts the source's threat entry past the current leader:
// the entry lands at the leading value plus value, so taunts keep their
// margin regardless of prior standing. No mitigation applies; a taunt's
// whole point is the guaranteed lead.
func (c *Character) AddAgroOverTop(source *Character, value int) {
	if value <= 0 || !c.acceptsAgroFrom(source) {
		return
	}

	highest := 0
	for _, v := range c.Agro {
		if v > highest {
			highest = v
		}
	}

	c.agroAdd(source.UUID, (highest-c.Agro[source.UUID])+value)
}

// acceptsAgroFrom applies the shared threat-rejection gates.
func (c *Character) acceptsAgroFrom(source *Character) bool {
	if source == nil || source == c || source.UUID == c.UUID {
		return false
	}
	if c.NeverHostile {
		return false
	}
	if c.OwnerUUID != "" && source.UUID == c.OwnerUUID {
		return false
	}
	if c.IsPlayer() && source.Kind == KindNPC {
		return false
	}
	if c.Kind == KindNPC && source.Kind == KindNPC && c.Allegiance == source.Allegiance {
		return false
	}
	return true
}

// RemoveAgro drops the threat entry for the given identity.
func (c *Character) RemoveAgro(identity string) {
	delete(c.Agro, identity)
}

// ResetAgro clears all threat entries.
func (c *Character) ResetAgro() {
	c.Agro = map[string]int{}
}

func (c *Character) agroAdd(identity string, value int) {
	c.Agro[identity] += value
	if c.Agro[identity] <= 0 {
		delete(c.Agro, identity)
	}
}
