package npc

import (
	"go.uber.org/zap"

	"github.com/seiyria/landoftherair/internal/game/character"
	"github.com/seiyria/landoftherair/internal/game/dice"
	"github.com/seiyria/landoftherair/internal/game/item"
	"github.com/seiyria/landoftherair/internal/game/room"
)

// SpawnerConfig carries the collaborators a Spawner is built from. Room,
// Manager, and Templates are required.
type SpawnerConfig struct {
	Room      *room.State
	Manager   *Manager
	Templates map[string]*Template
	Items     *item.Registry
	Rand      dice.Source
	Log       *zap.Logger
}

// pendingRespawn is one scheduled refill of a spawn slot.
type pendingRespawn struct {
	spawnIdx  int
	ticksLeft int
}

// Spawner keeps one room populated according to its map's spawn
// configuration: it fills slots at startup, drops loot and schedules a
// refill when a corpse rots, and ticks trigger cooldowns for every live
// instance. It implements room.NPCDeathListener.
//
// Concurrency: Populate and Tick run on the room's tick goroutine;
// NPCExpired is called back from the same goroutine during Tick.
type Spawner struct {
	room      *room.State
	mgr       *Manager
	templates map[string]*Template
	items     *item.Registry
	rand      dice.Source
	log       *zap.Logger

	// bySpawn maps a live character uuid back to the spawn slot it fills.
	bySpawn map[string]int
	pending []pendingRespawn
}

// NewSpawner builds a spawner over cfg. The caller still wires it into the
// room as the NPC death listener.
func NewSpawner(cfg SpawnerConfig) *Spawner {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	rnd := cfg.Rand
	if rnd == nil {
		rnd = dice.NewSource()
	}
	return &Spawner{
		room:      cfg.Room,
		mgr:       cfg.Manager,
		templates: cfg.Templates,
		items:     cfg.Items,
		rand:      rnd,
		log:       log,
		bySpawn:   map[string]int{},
	}
}

// Populate fills every spawn slot on the room's map up to its count.
func (s *Spawner) Populate() {
	for idx, cfg := range s.room.Spawns() {
		for s.mgr.CountOnMap(s.room.MapName(), cfg.Template) < cfg.Count {
			if !s.spawnAt(idx) {
				break
			}
		}
	}
}

// Tick advances trigger cooldowns for every live instance on this map and
// drains respawn timers, refilling slots that are both ready and under
// their population cap.
func (s *Spawner) Tick() {
	for _, inst := range s.mgr.InstancesOnMap(s.room.MapName()) {
		inst.TickCooldowns()
	}

	var waiting []pendingRespawn
	for _, p := range s.pending {
		p.ticksLeft--
		if p.ticksLeft > 0 {
			waiting = append(waiting, p)
			continue
		}
		spawns := s.room.Spawns()
		if p.spawnIdx >= len(spawns) {
			continue
		}
		cfg := spawns[p.spawnIdx]
		if s.mgr.CountOnMap(s.room.MapName(), cfg.Template) >= cfg.Count {
			continue
		}
		s.spawnAt(p.spawnIdx)
	}
	s.pending = waiting
}

// NPCExpired implements room.NPCDeathListener: the corpse's gold and loot
// hit the ground where it fell, and the spawn slot it filled is scheduled
// for a refill.
func (s *Spawner) NPCExpired(c *character.Character) {
	inst, ok := s.mgr.Get(c.UUID)
	if !ok {
		return
	}

	s.dropLoot(inst)
	_ = s.mgr.Remove(c.UUID)

	idx, tracked := s.bySpawn[c.UUID]
	delete(s.bySpawn, c.UUID)
	if !tracked {
		return
	}
	spawns := s.room.Spawns()
	if idx >= len(spawns) || spawns[idx].RespawnTicks <= 0 {
		return
	}
	s.pending = append(s.pending, pendingRespawn{
		spawnIdx:  idx,
		ticksLeft: spawns[idx].RespawnTicks,
	})
}

// InstanceFor looks up the live instance behind a character, for the
// command and AI layers.
func (s *Spawner) InstanceFor(c *character.Character) (*Instance, bool) {
	return s.mgr.Get(c.UUID)
}

func (s *Spawner) spawnAt(idx int) bool {
	cfg := s.room.Spawns()[idx]
	tmpl, ok := s.templates[cfg.Template]
	if !ok {
		s.log.Warn("spawn names unknown template",
			zap.String("template", cfg.Template),
			zap.String("map", s.room.MapName()),
		)
		return false
	}

	inst, err := s.mgr.Spawn(tmpl, s.room.MapName(), s.items, s.rand)
	if err != nil {
		s.log.Error("spawn failed", zap.Error(err))
		return false
	}
	inst.Character.X = cfg.X
	inst.Character.Y = cfg.Y
	s.bySpawn[inst.Character.UUID] = idx
	s.room.AddCharacter(inst.Character)
	return true
}

func (s *Spawner) dropLoot(inst *Instance) {
	c := inst.Character

	if gold := c.CurrencyValue(character.CurrencyGold); gold > 0 {
		coins := item.New(&item.Def{
			Name:      "gold coin",
			ItemClass: item.ClassCoin,
			Value:     gold,
		})
		s.room.AddGroundItem(c.X, c.Y, coins)
	}

	for _, drop := range RollLoot(s.rand, inst.Template.Loot, s.items) {
		s.room.AddGroundItem(c.X, c.Y, drop)
	}
}
