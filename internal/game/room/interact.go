package room

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/seiyria/landoftherair/internal/game/character"
	"github.com/seiyria/landoftherair/internal/game/effect"
	"github.com/seiyria/landoftherair/internal/game/item"
	"github.com/seiyria/landoftherair/internal/game/stat"
	"github.com/seiyria/landoftherair/internal/game/world"
)

// TryOpenDoorAt implements character.MapView. A tile without a door is
// passable; an open door stays open for everyone. Locked doors need the
// named key held in a hand.
func (s *State) TryOpenDoorAt(c *character.Character, x, y int) bool {
	door := s.def.DoorAt(x, y)
	if door == nil {
		return true
	}
	t := world.Tile{X: x, Y: y}
	if s.openDoors[t] {
		return true
	}

	if door.Locked {
		if !s.holdsItemNamed(c, door.KeyName) {
			c.SendMessage("The door is locked.")
			return false
		}
		s.openDoors[t] = true
		c.SendMessage(fmt.Sprintf("You unlock the door with the %s.", door.KeyName))
		return true
	}

	s.openDoors[t] = true
	c.SendMessageToRadius("You hear a door creak open.", 4)
	return true
}

// DoorOpenAt reports whether the door on (x, y) has been opened.
func (s *State) DoorOpenAt(x, y int) bool {
	return s.openDoors[world.Tile{X: x, Y: y}]
}

// CloseDoorAt shuts an open door. Locked doors re-lock.
func (s *State) CloseDoorAt(x, y int) {
	delete(s.openDoors, world.Tile{X: x, Y: y})
}

func (s *State) holdsItemNamed(c *character.Character, name string) bool {
	if c.LeftHand != nil && c.LeftHand.Name == name {
		return true
	}
	return c.RightHand != nil && c.RightHand.Name == name
}

// TriggerTrapAt implements character.World, firing and consuming any trap on
// (x, y) against c. A spent trap is inert.
func (s *State) TriggerTrapAt(c *character.Character, x, y int) {
	trap := s.def.TrapAt(x, y)
	if trap == nil {
		return
	}
	t := world.Tile{X: x, Y: y}
	if s.trapUses[t] <= 0 {
		return
	}
	s.trapUses[t]--

	c.SendMessage("You hear a mechanism click beneath your feet!")

	e := s.trapEffect(trap)
	if e == nil {
		s.log.Warn("trap names unknown effect",
			zap.String("effect", trap.Effect),
			zap.String("map", s.def.Name),
		)
		return
	}
	c.ApplyEffect(e)
}

func (s *State) trapEffect(trap *world.Trap) *effect.Effect {
	if s.effects == nil {
		return nil
	}
	e, ok := s.effects.Create(trap.Effect)
	if !ok {
		return nil
	}
	if trap.Potency > 0 {
		e.Info.Potency = trap.Potency
		if e.Info.Damage > 0 {
			e.Info.Damage = trap.Potency
		}
	}
	return e
}

// TrapArmedAt reports whether an unspent trap waits on (x, y).
func (s *State) TrapArmedAt(x, y int) bool {
	return s.def.TrapAt(x, y) != nil && s.trapUses[world.Tile{X: x, Y: y}] > 0
}

// MoveCharacter walks c through steps, then resolves whatever the landing
// tile does: teleports fire, and swimming state reconciles against the
// water layer.
func (s *State) MoveCharacter(c *character.Character, steps []character.Step) {
	c.TakeSequenceOfSteps(steps)

	if tp := s.def.TeleportAt(c.X, c.Y); tp != nil {
		s.Teleport(c, character.Destination{Map: tp.TargetMap, X: tp.TargetX, Y: tp.TargetY})
		return
	}
	s.reconcileSwimming(c)
}

// breath duration scaling: a hardy character holds air longer.
const breathTicksPerCon = 5

// reconcileSwimming syncs a character's swim state with the tile under them.
// Entering water starts the breath countdown; once it expires the character
// begins drowning (SwimLevel drives per-tick damage) until they reach land.
func (s *State) reconcileSwimming(c *character.Character) {
	if !s.def.IsFluid(c.X, c.Y) {
		if c.SwimElement != "" || c.SwimLevel > 0 {
			c.SwimLevel = 0
			c.SwimElement = ""
			if e := c.EffectByName(effect.Swimming); e != nil {
				c.UnapplyEffect(e, true, true)
			}
		}
		return
	}

	if c.SwimElement == "" {
		c.SwimElement = "water"
		c.ApplyEffect(s.swimmingEffect(c))
		return
	}

	// still in water; breath gone means drowning
	if !c.HasEffect(effect.Swimming) && c.SwimLevel == 0 {
		c.SwimLevel = 1
		c.SendMessage("Your lungs burn as the water closes over you!")
	}
}

func (s *State) swimmingEffect(c *character.Character) *effect.Effect {
	breath := breathTicksPerCon * max(1, c.GetTotalStat(stat.Con))
	if s.effects != nil {
		if e, ok := s.effects.Create(effect.Swimming); ok {
			e.Duration = breath
			return e
		}
	}
	return &effect.Effect{
		Name:         effect.Swimming,
		Duration:     breath,
		StartMessage: "You tread water.",
	}
}

// AddGroundItem drops an item on (x, y).
func (s *State) AddGroundItem(x, y int, it *item.Item) {
	t := world.Tile{X: x, Y: y}
	s.ground[t] = append(s.ground[t], it)
}

// GroundItemsAt returns the items lying on (x, y). The slice is live; use
// TakeGroundItem to claim one.
func (s *State) GroundItemsAt(x, y int) []*item.Item {
	return s.ground[world.Tile{X: x, Y: y}]
}

// TakeGroundItem removes and returns the item with the given uuid from
// (x, y), or nil when it is not there.
func (s *State) TakeGroundItem(x, y int, uuid string) *item.Item {
	t := world.Tile{X: x, Y: y}
	for i, it := range s.ground[t] {
		if it.UUID == uuid {
			s.ground[t] = append(s.ground[t][:i], s.ground[t][i+1:]...)
			if len(s.ground[t]) == 0 {
				delete(s.ground, t)
			}
			return it
		}
	}
	return nil
}
