// Package room runs the live simulation of one map: the per-tick driver over
// every character on it, and the collaborator surfaces (world callbacks,
// messaging, teleports, traps, doors) the character core calls back into.
package room

import (
	"sort"

	"go.uber.org/zap"

	"github.com/seiyria/landoftherair/internal/game/character"
	"github.com/seiyria/landoftherair/internal/game/dice"
	"github.com/seiyria/landoftherair/internal/game/effect"
	"github.com/seiyria/landoftherair/internal/game/item"
	"github.com/seiyria/landoftherair/internal/game/party"
	"github.com/seiyria/landoftherair/internal/game/world"
)

// Pusher delivers one outbound message to a connected player. The gateway
// implements it; tests use a recorder.
type Pusher interface {
	Push(username, message string)
}

// CommandExecutor dispatches a dequeued player action. The command package
// implements it.
type CommandExecutor interface {
	Execute(p *character.Player, command, args string)
}

// MapChanger transfers a character to a different map's room. The world
// driver implements it; a nil changer confines everyone to this map.
type MapChanger interface {
	ChangeMap(c *character.Character, dest character.Destination)
}

// NPCDeathListener is notified when an NPC's corpse rots away, so spawners
// can schedule a respawn.
type NPCDeathListener interface {
	NPCExpired(c *character.Character)
}

// Config carries the collaborators a State is built from. Map and Effects
// are required; everything else degrades gracefully when nil.
type Config struct {
	Map     *world.Map
	Effects *effect.Registry
	Parties *party.Manager

	Pusher    Pusher
	Commands  CommandExecutor
	MapChange MapChanger
	NPCDeaths NPCDeathListener

	Rand dice.Source
	Log  *zap.Logger

	// MaxSkill and MaxLevel apply when the map carries no caps of its own.
	MaxSkill int
	MaxLevel int
}

// State owns everything alive on one map. All access is single-goroutine:
// the tick loop is the only writer, matching the simulation's synchronous
// recompute model.
type State struct {
	def *world.Map
	log *zap.Logger

	effects *effect.Registry
	parties *party.Manager

	pusher    Pusher
	commands  CommandExecutor
	mapChange MapChanger
	npcDeaths NPCDeathListener

	rand dice.Source

	maxSkill int
	maxLevel int

	characters map[string]*character.Character
	players    map[string]*character.Player
	order      []string

	openDoors map[world.Tile]bool
	trapUses  map[world.Tile]int
	ground    map[world.Tile][]*item.Item

	kills map[string]int

	ctx *character.Context
}

// NewState builds the live state for cfg.Map.
//
// Precondition: cfg.Map must not be nil.
func NewState(cfg Config) *State {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	rnd := cfg.Rand
	if rnd == nil {
		rnd = dice.NewSource()
	}

	maxSkill := cfg.Map.MaxSkill
	if maxSkill == 0 {
		maxSkill = cfg.MaxSkill
	}
	maxLevel := cfg.Map.MaxLevel
	if maxLevel == 0 {
		maxLevel = cfg.MaxLevel
	}

	s := &State{
		def:       cfg.Map,
		log:       log,
		effects:   cfg.Effects,
		parties:   cfg.Parties,
		pusher:    cfg.Pusher,
		commands:  cfg.Commands,
		mapChange: cfg.MapChange,
		npcDeaths: cfg.NPCDeaths,
		rand:      rnd,
		maxSkill:  maxSkill,
		maxLevel:  maxLevel,

		characters: map[string]*character.Character{},
		players:    map[string]*character.Player{},
		openDoors:  map[world.Tile]bool{},
		trapUses:   map[world.Tile]int{},
		ground:     map[world.Tile][]*item.Item{},
		kills:      map[string]int{},
	}
	for t, trap := range cfg.Map.Traps {
		s.trapUses[t] = trap.Uses
	}

	s.ctx = &character.Context{
		World:     s,
		Map:       s,
		Messages:  s,
		Analytics: s,
		Teleport:  s,
		Effects:   cfg.Effects,
		Parties:   partySource(cfg.Parties),
		Dead:      s,
		Rand:      rnd,
		Log:       log,
	}
	return s
}

// partySource adapts a possibly-nil manager to the context interface without
// storing a typed-nil interface value.
func partySource(m *party.Manager) character.PartySource {
	if m == nil {
		return nil
	}
	return m
}

// Context returns the collaborator bundle characters on this map share.
func (s *State) Context() *character.Context {
	return s.ctx
}

// MapName returns the name of the map this state simulates.
func (s *State) MapName() string {
	return s.def.Name
}

// Spawns returns the map's spawn configuration for the spawner to enforce.
func (s *State) Spawns() []world.SpawnConfig {
	return s.def.Spawns
}

// AddCharacter registers an NPC or resource node and wires it into the room.
func (s *State) AddCharacter(c *character.Character) {
	c.SetContext(s.ctx)
	c.Map = s.def.Name
	s.characters[c.UUID] = c
	s.order = append(s.order, c.UUID)
	c.Recalculate()
}

// AddPlayer registers a player, running their server-side init.
func (s *State) AddPlayer(p *character.Player) {
	p.InitServer(s.ctx)
	p.Map = s.def.Name
	s.characters[p.UUID] = &p.Character
	s.players[p.UUID] = p
	s.order = append(s.order, p.UUID)
}

// RemoveCharacter drops a character from simulation. Their agro entries on
// others decay naturally; only the registration goes away.
func (s *State) RemoveCharacter(uuid string) {
	delete(s.characters, uuid)
	delete(s.players, uuid)
	for i, id := range s.order {
		if id == uuid {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// CharacterCount returns how many characters are registered.
func (s *State) CharacterCount() int {
	return len(s.characters)
}

// Tick advances the whole room one simulation step, in registration order.
// Players tick through their specialization so queued actions dispatch.
func (s *State) Tick() {
	// snapshot: dead handlers may remove characters mid-walk
	ids := make([]string, len(s.order))
	copy(ids, s.order)

	for _, id := range ids {
		if p, ok := s.players[id]; ok {
			p.Tick()
			s.reconcileSwimming(&p.Character)
			continue
		}
		if c, ok := s.characters[id]; ok {
			c.Tick()
			s.reconcileSwimming(c)
		}
	}
}

// SetNPCDeathListener wires the death listener after construction. The
// spawner needs the room to exist first, so this wiring happens in two
// steps.
func (s *State) SetNPCDeathListener(l NPCDeathListener) {
	s.npcDeaths = l
}

// MaxSkill implements character.World.
func (s *State) MaxSkill() int {
	return s.maxSkill
}

// MaxLevel implements character.World.
func (s *State) MaxLevel() int {
	return s.maxLevel
}

// CharacterByUUID implements character.World.
func (s *State) CharacterByUUID(uuid string) *character.Character {
	return s.characters[uuid]
}

// ExecuteCommand implements character.World, dispatching a dequeued player
// action to the command layer.
func (s *State) ExecuteCommand(c *character.Character, command, args string) {
	p, ok := s.players[c.UUID]
	if !ok || s.commands == nil {
		return
	}
	s.commands.Execute(p, command, args)
}

// Width implements character.MapView.
func (s *State) Width() int { return s.def.Width }

// Height implements character.MapView.
func (s *State) Height() int { return s.def.Height }

// IsDense implements character.MapView.
func (s *State) IsDense(x, y int) bool { return s.def.IsDense(x, y) }

// IsFluid implements character.MapView.
func (s *State) IsFluid(x, y int) bool { return s.def.IsFluid(x, y) }

// SendMessage implements character.MessageSink. NPC-held messages go
// nowhere; there is no client behind them.
func (s *State) SendMessage(c *character.Character, message string) {
	if s.pusher == nil || !c.IsPlayer() {
		return
	}
	s.pusher.Push(c.Username, message)
}

// SendMessageToRadius implements character.MessageSink, delivering to every
// player within radius tiles of c, the origin character included.
func (s *State) SendMessageToRadius(c *character.Character, message string, radius int) {
	if s.pusher == nil {
		return
	}
	for _, p := range s.playersInOrder() {
		if p.DistFrom(c.X, c.Y) <= radius {
			s.pusher.Push(p.Username, message)
		}
	}
}

// TrackKill implements character.Analytics.
func (s *State) TrackKill(victim, killer *character.Character) {
	if killer != nil {
		s.kills[killer.UUID]++
	}
	name := "environment"
	if killer != nil {
		name = killer.Name
	}
	s.log.Info("kill",
		zap.String("victim", victim.Name),
		zap.String("killer", name),
		zap.String("map", s.def.Name),
	)
}

// KillsBy returns how many kills the analytics ledger credits to uuid.
func (s *State) KillsBy(uuid string) int {
	return s.kills[uuid]
}

// Teleport implements character.Teleporter. Same-map destinations move
// directly; cross-map ones hand off to the map changer.
func (s *State) Teleport(c *character.Character, dest character.Destination) {
	if dest.Map == "" || dest.Map == s.def.Name {
		c.X = dest.X
		c.Y = dest.Y
		s.reconcileSwimming(c)
		return
	}
	if s.mapChange == nil {
		s.log.Warn("teleport to unreachable map dropped",
			zap.String("character", c.Name),
			zap.String("target", dest.Map),
		)
		return
	}
	s.RemoveCharacter(c.UUID)
	s.mapChange.ChangeMap(c, dest)
}

// HandleDeadCharacter implements character.DeadHandler, called once per tick
// for every dead character. Nothing happens until the countdown runs out;
// then players are restored at their respawn point and NPC corpses rot away.
func (s *State) HandleDeadCharacter(c *character.Character) {
	if c.DeathTicks() > 0 {
		return
	}
	if p, ok := s.players[c.UUID]; ok {
		p.Restore(true)
		return
	}
	s.RemoveCharacter(c.UUID)
	if s.npcDeaths != nil {
		s.npcDeaths.NPCExpired(c)
	}
}

// PlayerNames returns the username of every player on the map.
func (s *State) PlayerNames() []string {
	out := make([]string, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p.Username)
	}
	return out
}

// playersInOrder returns the registered players sorted by uuid, so message
// fan-out is deterministic.
func (s *State) playersInOrder() []*character.Player {
	out := make([]*character.Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UUID < out[j].UUID })
	return out
}

// PossibleTargetsFor returns every living character within radius tiles that
// c can actually perceive.
func (s *State) PossibleTargetsFor(c *character.Character, radius int) []*character.Character {
	var out []*character.Character
	for _, id := range s.order {
		other, ok := s.characters[id]
		if !ok || other.UUID == c.UUID || other.IsDead() || other.IsNaturalResource() {
			continue
		}
		if other.DistFrom(c.X, c.Y) > radius {
			continue
		}
		if !c.CanSeeThroughStealthOf(other) {
			continue
		}
		out = append(out, other)
	}
	return out
}

// CharactersAt returns everyone standing on (x, y), in registration order.
func (s *State) CharactersAt(x, y int) []*character.Character {
	var out []*character.Character
	for _, id := range s.order {
		if c, ok := s.characters[id]; ok && c.X == x && c.Y == y {
			out = append(out, c)
		}
	}
	return out
}
