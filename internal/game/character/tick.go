package character

import (
	"sort"

	"github.com/seiyria/landoftherair/internal/game/stat"
)

// Death countdown lengths, in ticks.
const (
	npcDeathTicks      = 60
	silentDeathTicks   = 2
	conRegenBonusFloor = 15
)

// Tick advances the character by one simulation step: effect hooks and
// expiry, the combat countdown, and regeneration. Natural-resource nodes do
// not tick; a dead character is handed to the dead handler instead.
func (c *Character) Tick() {
	if c.IsNaturalResource() {
		return
	}
	if c.IsDead() {
		if c.deathTicks > 0 {
			c.deathTicks--
		}
		if c.ctx != nil && c.ctx.Dead != nil {
			c.ctx.Dead.HandleDeadCharacter(c)
		}
		return
	}

	c.tickEffects()
	// an effect may have killed us this tick; the corpse waits for the
	// next one, regen must not touch it
	if c.IsDead() {
		return
	}

	if c.CombatTicks > 0 {
		c.CombatTicks--
	}

	hpRegen := c.GetTotalStat(stat.HPRegen)
	if bonus := c.GetTotalStat(stat.Con) - conRegenBonusFloor; bonus > 0 {
		hpRegen += bonus
	}
	// regen never drags a character over the lethal floor
	if c.HP.Current+hpRegen > 0 {
		c.HP.Add(hpRegen)
	}
	c.MP.Add(c.GetTotalStat(stat.MPRegen))
}

// tickEffects runs every active effect's tick hook, then decrements and
// expires durations. Frozen and permanent effects never tick down.
func (c *Character) tickEffects() {
	names := make([]string, 0, len(c.Effects))
	for name := range c.Effects {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		e, ok := c.Effects[name]
		if !ok {
			// removed by an earlier effect's hook this tick
			continue
		}
		if b := c.behavior(name); b.OnTick != nil {
			b.OnTick(c, e)
		}
		if c.IsDead() {
			return
		}
		if e.ShouldTickDown() {
			e.Duration--
			if e.Duration <= 0 {
				c.UnapplyEffect(e, true, false)
			}
		}
	}
}

// Die moves the character into the dead state: effects clear (death-exempt
// ones survive), HP drops to the floor, the corpse faces center, and the
// death countdown starts, shortened when silent. Re-triggering death while
// the countdown runs is a no-op. Pets detach from their owner on death.
func (c *Character) Die(killer *Character, silent bool) {
	if c.IsNaturalResource() {
		return
	}
	if c.deathTicks > 0 {
		return
	}

	c.ClearEffects()
	c.HP.ToMinimum()
	c.Dir = Center

	c.deathTicks = npcDeathTicks
	if silent {
		c.deathTicks = silentDeathTicks
	}

	if c.ctx != nil && c.ctx.Analytics != nil {
		c.ctx.Analytics.TrackKill(c, killer)
	}

	if c.OwnerUUID != "" && c.ctx != nil && c.ctx.World != nil {
		if owner := c.ctx.World.CharacterByUUID(c.OwnerUUID); owner != nil {
			owner.RemovePet(c.UUID)
		}
		c.OwnerUUID = ""
	}
}

// die is the lethal-damage entry point. It dispatches to the installed
// death hook when one is present, so a Player dies with the player flow
// even when damage lands on the embedded Character.
func (c *Character) die(killer *Character, silent bool) {
	if c.dier != nil {
		c.dier(killer, silent)
		return
	}
	c.Die(killer, silent)
}

// DeathTicks exposes the remaining death countdown for the room's corpse
// bookkeeping.
func (c *Character) DeathTicks() int {
	return c.deathTicks
}

// SetDeathTicks overrides the death countdown; the player death flow uses a
// much longer window than NPCs.
func (c *Character) SetDeathTicks(n int) {
	c.deathTicks = n
}

// Revive is a hook for collaborators; the base character has no revival
// flow of its own.
func (c *Character) Revive() {}
