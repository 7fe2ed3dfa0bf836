package character

import (
	"go.uber.org/zap"

	"github.com/seiyria/landoftherair/internal/game/dice"
	"github.com/seiyria/landoftherair/internal/game/effect"
	"github.com/seiyria/landoftherair/internal/game/party"
)

// World is the slice of the owning room the core calls back into.
type World interface {
	// MaxSkill is the room-wide skill level cap.
	MaxSkill() int
	// MaxLevel is the room-wide character level cap.
	MaxLevel() int
	// CharacterByUUID resolves a weak backlink (owner, pet) to the live
	// character, or nil.
	CharacterByUUID(uuid string) *Character
	// TriggerTrapAt fires and consumes any trap at (x, y) against c.
	TriggerTrapAt(c *Character, x, y int)
	// ExecuteCommand dispatches one queued player action.
	ExecuteCommand(c *Character, command, args string)
}

// MapView exposes the tile checks movement needs.
type MapView interface {
	Width() int
	Height() int
	// IsDense reports whether (x, y) is a wall tile.
	IsDense(x, y int) bool
	// IsFluid reports whether (x, y) is a water tile.
	IsFluid(x, y int) bool
	// TryOpenDoorAt attempts to open a door blocking (x, y) on behalf of
	// c. It returns true when the tile is passable afterward, including
	// when no door was there at all.
	TryOpenDoorAt(c *Character, x, y int) bool
}

// MessageSink is the outbound notification surface. The core only ever
// hands it strings; transport framing lives elsewhere.
type MessageSink interface {
	SendMessage(c *Character, message string)
	SendMessageToRadius(c *Character, message string, radius int)
}

// Analytics records kill events.
type Analytics interface {
	TrackKill(victim, killer *Character)
}

// Destination is a teleport target.
type Destination struct {
	Map string
	X   int
	Y   int
}

// Teleporter moves a character across maps.
type Teleporter interface {
	Teleport(c *Character, dest Destination)
}

// EffectSource resolves effect prototypes and behaviors by name.
type EffectSource interface {
	Create(name string) (*effect.Effect, bool)
	Behavior(name string) effect.Behavior
}

// PartySource resolves party membership by username.
type PartySource interface {
	PartyFor(username string) *party.Party
}

// DeadHandler takes over a character once its tick finds it dead.
type DeadHandler interface {
	HandleDeadCharacter(c *Character)
}

// Context bundles the collaborator handles a character calls out to during
// simulation. Individual fields may be nil (common in tests); every call
// site checks before dispatching.
type Context struct {
	World     World
	Map       MapView
	Messages  MessageSink
	Analytics Analytics
	Teleport  Teleporter
	Effects   EffectSource
	Parties   PartySource
	Dead      DeadHandler

	Rand dice.Source
	Log  *zap.Logger
}

// maxSkill returns the room skill cap, or a no-cap sentinel when unwired.
func (c *Character) maxSkill() int {
	if c.ctx != nil && c.ctx.World != nil {
		return c.ctx.World.MaxSkill()
	}
	return int(^uint(0) >> 1)
}

// rand returns the wired random source, or the production one.
func (c *Character) rand() dice.Source {
	if c.ctx != nil && c.ctx.Rand != nil {
		return c.ctx.Rand
	}
	return dice.NewSource()
}

// partyFor resolves the party of the given username, or nil when no party
// source is wired.
func (c *Character) partyFor(username string) *party.Party {
	if username == "" || c.ctx == nil || c.ctx.Parties == nil {
		return nil
	}
	return c.ctx.Parties.PartyFor(username)
}

// behavior looks up the behavior hooks for an effect name.
func (c *Character) behavior(name string) effect.Behavior {
	if c.ctx != nil && c.ctx.Effects != nil {
		return c.ctx.Effects.Behavior(name)
	}
	return effect.Behavior{}
}
