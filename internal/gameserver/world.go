// Package gameserver runs the world simulation: one room per map, a
// shared tick clock, NPC spawning, scripting hooks, and periodic player
// persistence.
package gameserver

import (
	"context"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/seiyria/landoftherair/internal/config"
	"github.com/seiyria/landoftherair/internal/game/character"
	"github.com/seiyria/landoftherair/internal/game/command"
	"github.com/seiyria/landoftherair/internal/game/dice"
	"github.com/seiyria/landoftherair/internal/game/effect"
	"github.com/seiyria/landoftherair/internal/game/item"
	"github.com/seiyria/landoftherair/internal/game/npc"
	"github.com/seiyria/landoftherair/internal/game/party"
	"github.com/seiyria/landoftherair/internal/game/room"
	"github.com/seiyria/landoftherair/internal/game/session"
	"github.com/seiyria/landoftherair/internal/game/stat"
	"github.com/seiyria/landoftherair/internal/game/world"
	"github.com/seiyria/landoftherair/internal/scripting"
)

// PlayerStore persists player state. The postgres package implements it;
// nil disables the save sweeps.
type PlayerStore interface {
	Save(ctx context.Context, accountID int64, p *character.Player) error
}

// WorldConfig carries the collaborators a World is built from. Maps,
// Items, Effects, and Sessions are required.
type WorldConfig struct {
	Maps      *world.Manager
	Items     *item.Registry
	Effects   *effect.Registry
	Templates map[string]*npc.Template
	Sessions  *session.Manager
	Scripts   *scripting.Manager
	Store     PlayerStore
	Parties   *party.Manager

	Sim  config.SimulationConfig
	Rand dice.Source
	Log  *zap.Logger
}

// roomRuntime bundles one map's live state with the collaborators that
// drive it each tick.
type roomRuntime struct {
	state   *room.State
	exec    *command.Executor
	spawner *npc.Spawner
}

// World owns every room and advances them on a shared clock. All room
// mutation happens under the world mutex: the tick loop and the gateway's
// join/leave/enqueue calls serialize through it.
type World struct {
	cfg  WorldConfig
	log  *zap.Logger
	rand dice.Source

	mu    sync.Mutex
	rooms map[string]*roomRuntime
	npcs  *npc.Manager
	ticks int

	sink room.Pusher

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewWorld builds a room for every loaded map and populates its spawns.
//
// Precondition: cfg.Maps must hold at least one map.
func NewWorld(cfg WorldConfig) *World {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	rnd := cfg.Rand
	if rnd == nil {
		rnd = dice.NewSource()
	}

	w := &World{
		cfg:    cfg,
		log:    log,
		rand:   rnd,
		rooms:  make(map[string]*roomRuntime),
		npcs:   npc.NewManager(),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	w.bindScripts()

	for _, mp := range cfg.Maps.AllMaps() {
		exec := command.NewExecutor(rnd, log)
		state := room.NewState(room.Config{
			Map:       mp,
			Effects:   cfg.Effects,
			Parties:   cfg.Parties,
			Pusher:    w,
			Commands:  exec,
			MapChange: w,
			Rand:      rnd,
			Log:       log,
		})
		exec.Bind(state)

		rt := &roomRuntime{state: state, exec: exec}
		if len(cfg.Templates) > 0 {
			rt.spawner = npc.NewSpawner(npc.SpawnerConfig{
				Room:      state,
				Manager:   w.npcs,
				Templates: cfg.Templates,
				Items:     cfg.Items,
				Rand:      rnd,
				Log:       log,
			})
			state.SetNPCDeathListener(rt.spawner)
			rt.spawner.Populate()
		}
		exec.SetResponder(&npcResponder{world: w, mapName: mp.Name})
		w.rooms[mp.Name] = rt
	}

	return w
}

// SetSink wires the transport that receives room output. Messages pushed
// before a sink is set are dropped.
func (w *World) SetSink(sink room.Pusher) {
	w.mu.Lock()
	w.sink = sink
	w.mu.Unlock()
}

// Push implements room.Pusher by forwarding to the transport sink.
func (w *World) Push(username, message string) {
	if w.sink != nil {
		w.sink.Push(username, message)
	}
}

// ChangeMap implements room.MapChanger. The source room has already
// removed the character; this places them in the destination room.
//
// Precondition: caller holds the world mutex (rooms only call this from
// inside Tick or a join/enqueue path).
func (w *World) ChangeMap(c *character.Character, dest character.Destination) {
	rt, ok := w.rooms[dest.Map]
	if !ok {
		w.log.Warn("map change to unknown map dropped",
			zap.String("character", c.Name),
			zap.String("target", dest.Map),
		)
		return
	}

	c.X, c.Y = dest.X, dest.Y
	if sess, connected := w.cfg.Sessions.Get(c.UUID); connected {
		rt.state.AddPlayer(sess.Player)
		if _, err := w.cfg.Sessions.Move(c.UUID, dest.Map); err != nil {
			w.log.Warn("session map move failed", zap.Error(err))
		}
		w.callMapHook(dest.Map, "on_player_enter", lua.LString(c.UUID))
	} else {
		rt.state.AddCharacter(c)
	}
}

// Join places a connected session's player into the room for their saved
// map, falling back to the start map's respawn point.
func (w *World) Join(sess *session.Session) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p := sess.Player
	rt, ok := w.rooms[p.Map]
	if !ok {
		start := w.cfg.Maps.StartMap()
		rt = w.rooms[start.Name]
		p.Map = start.Name
		p.X, p.Y = start.RespawnX, start.RespawnY
	}
	rt.state.AddPlayer(p)
	if mp, found := w.cfg.Maps.GetMap(p.Map); found {
		p.RespawnPoint = character.Destination{Map: p.Map, X: mp.RespawnX, Y: mp.RespawnY}
	}
	if _, err := w.cfg.Sessions.Move(sess.Username, p.Map); err == nil {
		w.callMapHook(p.Map, "on_player_enter", lua.LString(sess.Username))
	}
}

// Leave removes the player from their room and saves them.
func (w *World) Leave(username string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	sess, ok := w.cfg.Sessions.Get(username)
	if !ok {
		return
	}
	if rt, ok := w.rooms[sess.MapName]; ok {
		rt.state.RemoveCharacter(username)
	}
	w.savePlayer(sess)
}

// Enqueue parses a command line and queues it on the player's action
// queue. The room dispatches one queued action per tick.
func (w *World) Enqueue(username, line string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	sess, ok := w.cfg.Sessions.Get(username)
	if !ok {
		return
	}
	parsed := command.Parse(line)
	if parsed.Command == "" {
		return
	}
	sess.Player.QueueAction(parsed.Command, parsed.RawArgs)
}

// RoomFor returns the live room for mapName, for tests and admin tooling.
func (w *World) RoomFor(mapName string) (*room.State, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	rt, ok := w.rooms[mapName]
	if !ok {
		return nil, false
	}
	return rt.state, true
}

// Start runs the tick loop until Stop is called. It blocks, satisfying
// the lifecycle Service contract.
func (w *World) Start() error {
	interval := w.cfg.Sim.TickInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(w.doneCh)

	w.log.Info("world started",
		zap.Int("rooms", len(w.rooms)),
		zap.Duration("tick_interval", interval),
	)

	for {
		select {
		case <-w.stopCh:
			w.finalSave()
			return nil
		case <-ticker.C:
			w.Tick()
		}
	}
}

// Stop signals the tick loop to exit and waits for the final save sweep.
func (w *World) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.doneCh
}

// Tick advances every room one step. Exported so tests and the dev server
// can drive the clock directly.
func (w *World) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.ticks++
	for name, rt := range w.rooms {
		rt.state.Tick()
		if rt.spawner != nil {
			rt.spawner.Tick()
		}
		w.callMapHook(name, "on_tick", lua.LNumber(w.ticks))
	}

	if w.cfg.Store != nil && w.cfg.Sim.SaveIntervalTicks > 0 && w.ticks%w.cfg.Sim.SaveIntervalTicks == 0 {
		for _, sess := range w.cfg.Sessions.All() {
			w.savePlayer(sess)
		}
	}
}

func (w *World) savePlayer(sess *session.Session) {
	if w.cfg.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.cfg.Store.Save(ctx, sess.AccountID, sess.Player); err != nil {
		w.log.Error("saving player failed",
			zap.String("username", sess.Username),
			zap.Error(err),
		)
	}
}

func (w *World) finalSave() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, sess := range w.cfg.Sessions.All() {
		w.savePlayer(sess)
	}
}

func (w *World) callMapHook(mapName, hook string, args ...lua.LValue) {
	s := w.cfg.Scripts
	if s == nil || !s.HasHook(mapName, hook) {
		return
	}
	if _, err := s.CallHook(mapName, hook, args...); err != nil {
		w.log.Warn("map hook failed",
			zap.String("map", mapName),
			zap.String("hook", hook),
			zap.Error(err),
		)
	}
}

// bindScripts wires the scripting engine's callbacks to world state and
// registers Lua-driven effect behaviors.
func (w *World) bindScripts() {
	s := w.cfg.Scripts
	if s == nil {
		return
	}

	s.GetCharacter = func(uuid string) *scripting.CharacterInfo {
		c := w.findCharacter(uuid)
		if c == nil {
			return nil
		}
		return &scripting.CharacterInfo{
			UUID:  c.UUID,
			Name:  c.Name,
			HP:    c.HP.Current,
			MaxHP: c.HP.Maximum,
			Level: c.Level,
			Class: string(c.BaseClass),
		}
	}
	s.DealDamage = func(uuid string, amount int, damageClass string) error {
		if c := w.findCharacter(uuid); c != nil {
			c.TakeDamage(amount, damageClass, "")
		}
		return nil
	}
	s.Heal = func(uuid string, amount int) error {
		if c := w.findCharacter(uuid); c != nil {
			c.HealDamage(amount)
		}
		return nil
	}
	s.BoostStat = func(uuid, statName string, amount int) error {
		c := w.findCharacter(uuid)
		st := stat.Stat(statName)
		if c == nil || !stat.IsValid(st) {
			return nil
		}
		if amount >= 0 {
			c.GainStat(st, amount)
		} else {
			c.LoseStat(st, -amount)
		}
		return nil
	}
	s.ApplyEffect = func(uuid, effectName string, duration, potency int) error {
		c := w.findCharacter(uuid)
		if c == nil || w.cfg.Effects == nil {
			return nil
		}
		e, ok := w.cfg.Effects.Create(effectName)
		if !ok {
			return nil
		}
		if duration > 0 {
			e.Duration = duration
		}
		if potency > 0 {
			e.Info.Potency = potency
		}
		c.ApplyEffect(e)
		return nil
	}
	s.SendMessage = func(uuid, message string) {
		if c := w.findCharacter(uuid); c != nil {
			c.SendMessage(message)
		}
	}
	s.Broadcast = func(message string) {
		for _, sess := range w.cfg.Sessions.All() {
			w.Push(sess.Username, message)
		}
	}

	if w.cfg.Effects != nil {
		for _, name := range w.cfg.Effects.Names() {
			def, ok := w.cfg.Effects.Def(name)
			if !ok || def.LuaHook == "" {
				continue
			}
			w.cfg.Effects.RegisterBehavior(name, s.EffectBehavior("", def.LuaHook))
		}
	}
}

// findCharacter resolves a uuid across every room. Caller need not hold
// the world mutex; script callbacks only ever run inside a Tick, which
// does.
func (w *World) findCharacter(uuid string) *character.Character {
	for _, rt := range w.rooms {
		if c := rt.state.CharacterByUUID(uuid); c != nil {
			return c
		}
	}
	return nil
}

// npcResponder answers player speech with NPC trigger lines.
type npcResponder struct {
	world   *World
	mapName string
}

// Respond checks every NPC near the speaker for a matching trigger and
// speaks the response into the room.
func (r *npcResponder) Respond(speaker *character.Character, text string) {
	rt, ok := r.world.rooms[r.mapName]
	if !ok {
		return
	}
	for _, inst := range r.world.npcs.InstancesOnMap(r.mapName) {
		if inst.Character.IsDead() || inst.Character.DistFrom(speaker.X, speaker.Y) > 4 {
			continue
		}
		if response, fired := inst.TryTrigger(text); fired {
			line := inst.Character.Name + " says, \"" + strings.TrimSpace(response) + "\""
			rt.state.SendMessageToRadius(inst.Character, line, 4)
		}
	}
}
