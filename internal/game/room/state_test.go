package room_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seiyria/landoftherair/internal/game/character"
	"github.com/seiyria/landoftherair/internal/game/class"
	"github.com/seiyria/landoftherair/internal/game/effect"
	"github.com/seiyria/landoftherair/internal/game/item"
	"github.com/seiyria/landoftherair/internal/game/room"
	"github.com/seiyria/landoftherair/internal/game/world"
)

const testMapYAML = `
map:
  name: Rylt
  max_skill: 13
  max_level: 20
  respawn: {x: 1, y: 1}
  tiles: |
    ##########
    #........#
    #..~~...+#
    ##########
  doors:
    - {x: 8, y: 2, locked: true, key: Brass Key}
  traps:
    - {x: 5, y: 1, effect: Poisoned, potency: 4, uses: 1}
  teleports:
    - {x: 7, y: 1, to: {map: Dedlaen, x: 2, y: 2}}
`

type pushRecorder struct {
	messages map[string][]string
}

func newPushRecorder() *pushRecorder {
	return &pushRecorder{messages: map[string][]string{}}
}

func (r *pushRecorder) Push(username, message string) {
	r.messages[username] = append(r.messages[username], message)
}

type commandRecorder struct {
	executed []string
}

func (r *commandRecorder) Execute(p *character.Player, command, args string) {
	r.executed = append(r.executed, p.Username+": "+command+" "+args)
}

type mapChangeRecorder struct {
	moved []character.Destination
}

func (r *mapChangeRecorder) ChangeMap(_ *character.Character, dest character.Destination) {
	r.moved = append(r.moved, dest)
}

type npcDeathRecorder struct {
	expired []string
}

func (r *npcDeathRecorder) NPCExpired(c *character.Character) {
	r.expired = append(r.expired, c.Name)
}

type fixture struct {
	state    *room.State
	pusher   *pushRecorder
	commands *commandRecorder
	changer  *mapChangeRecorder
	deaths   *npcDeathRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m, err := world.LoadMapFromBytes([]byte(testMapYAML))
	require.NoError(t, err)

	reg := effect.NewRegistry()
	reg.Register(&effect.Def{Name: "Poisoned", Duration: 10, DamagePerTick: 2, DamageClass: "necrotic"})
	reg.Register(&effect.Def{Name: effect.Swimming, Duration: 1, StartMessage: "You tread water."})

	f := &fixture{
		pusher:   newPushRecorder(),
		commands: &commandRecorder{},
		changer:  &mapChangeRecorder{},
		deaths:   &npcDeathRecorder{},
	}
	f.state = room.NewState(room.Config{
		Map:       m,
		Effects:   reg,
		Pusher:    f.pusher,
		Commands:  f.commands,
		MapChange: f.changer,
		NPCDeaths: f.deaths,
	})
	return f
}

func (f *fixture) addNPC(name string) *character.Character {
	c := character.New(name, character.KindNPC, class.Undecided)
	c.X, c.Y = 1, 1
	f.state.AddCharacter(c)
	return c
}

func (f *fixture) addPlayer(username string) *character.Player {
	p := character.NewPlayer(username, 0, class.Warrior)
	p.RespawnPoint = character.Destination{X: 1, Y: 1}
	p.X, p.Y = 1, 1
	f.state.AddPlayer(p)
	return p
}

func TestMapCapsFlowThrough(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 13, f.state.MaxSkill())
	assert.Equal(t, 20, f.state.MaxLevel())
}

func TestTickDrivesRegenAndExpiry(t *testing.T) {
	f := newFixture(t)
	c := f.addNPC("rat")
	c.HP.Set(50)

	e, ok := f.state.Context().Effects.Create("Poisoned")
	require.True(t, ok)
	e.Duration = 1
	c.ApplyEffect(e)

	f.state.Tick()

	assert.False(t, c.HasEffect("Poisoned"), "one-tick effect expired")
	// 2 poison damage, then 1 hp regenerated
	assert.Equal(t, 49, c.HP.Current)
}

func TestTickDispatchesQueuedPlayerActions(t *testing.T) {
	f := newFixture(t)
	p := f.addPlayer("alice")
	p.QueueAction("say", "hello")
	p.QueueAction("say", "again")

	f.state.Tick()
	assert.Equal(t, []string{"alice: say hello"}, f.commands.executed, "one action per tick")
}

func TestDeadPlayerRestoresWhenCountdownEnds(t *testing.T) {
	f := newFixture(t)
	p := f.addPlayer("alice")
	p.X, p.Y = 4, 1

	p.Die(nil, false)
	require.True(t, p.IsDead())
	p.SetDeathTicks(1)

	f.state.Tick()

	assert.False(t, p.IsDead())
	assert.Equal(t, 1, p.HP.Current)
	assert.Equal(t, 1, p.X)
	assert.Equal(t, 1, p.Y)
	assert.Contains(t, f.pusher.messages["alice"], "You feel a churning sensation.")
}

func TestDeadNPCExpires(t *testing.T) {
	f := newFixture(t)
	c := f.addNPC("rat")

	c.Die(nil, false)
	c.SetDeathTicks(1)

	f.state.Tick()

	assert.Nil(t, f.state.CharacterByUUID(c.UUID), "corpse rots out of the room")
	assert.Equal(t, []string{"rat"}, f.deaths.expired)
}

func TestLockedDoorBlocksWithoutKey(t *testing.T) {
	f := newFixture(t)
	p := f.addPlayer("alice")
	p.X, p.Y = 7, 2

	f.state.MoveCharacter(&p.Character, []character.Step{{X: 1, Y: 0}})
	assert.Equal(t, 7, p.X, "locked door blocks")
	assert.Contains(t, f.pusher.messages["alice"], "The door is locked.")

	p.SetRightHand(item.New(&item.Def{Name: "Brass Key", ItemClass: item.ClassKey}))
	f.state.MoveCharacter(&p.Character, []character.Step{{X: 1, Y: 0}})
	assert.Equal(t, 8, p.X, "key in hand unlocks")
	assert.True(t, f.state.DoorOpenAt(8, 2))
}

func TestTrapFiresOnceThenIsSpent(t *testing.T) {
	f := newFixture(t)
	first := f.addNPC("scout")
	first.X, first.Y = 4, 1

	f.state.MoveCharacter(first, []character.Step{{X: 1, Y: 0}})
	assert.True(t, first.HasEffect("Poisoned"))
	assert.False(t, f.state.TrapArmedAt(5, 1))

	second := f.addNPC("follower")
	second.X, second.Y = 4, 1
	f.state.MoveCharacter(second, []character.Step{{X: 1, Y: 0}})
	assert.False(t, second.HasEffect("Poisoned"), "spent trap is inert")
}

func TestTeleportTileHandsOffToMapChanger(t *testing.T) {
	f := newFixture(t)
	p := f.addPlayer("alice")
	p.X, p.Y = 6, 1

	f.state.MoveCharacter(&p.Character, []character.Step{{X: 1, Y: 0}})

	require.Len(t, f.changer.moved, 1)
	assert.Equal(t, character.Destination{Map: "Dedlaen", X: 2, Y: 2}, f.changer.moved[0])
	assert.Nil(t, f.state.CharacterByUUID(p.UUID), "character left this room")
}

func TestSameMapTeleportMovesDirectly(t *testing.T) {
	f := newFixture(t)
	p := f.addPlayer("alice")

	f.state.Teleport(&p.Character, character.Destination{X: 6, Y: 1})
	assert.Equal(t, 6, p.X)
	assert.Equal(t, 1, p.Y)
	assert.NotNil(t, f.state.CharacterByUUID(p.UUID))
}

func TestSwimBreathThenDrowning(t *testing.T) {
	f := newFixture(t)
	p := f.addPlayer("alice")
	p.X, p.Y = 2, 1

	f.state.MoveCharacter(&p.Character, []character.Step{{X: 1, Y: 1}})
	require.Equal(t, 3, p.X)
	require.Equal(t, 2, p.Y)
	assert.True(t, p.HasEffect(effect.Swimming))
	assert.Zero(t, p.SwimLevel, "breath holds at first")

	// breath is five ticks per point of con, one at minimum; once the
	// Swimming effect expires the post-tick reconcile starts the drowning
	for i := 0; i < 5; i++ {
		f.state.Tick()
	}
	assert.Equal(t, 1, p.SwimLevel)
	hpBefore := p.HP.Current
	f.state.Tick()
	assert.Less(t, p.HP.Current, hpBefore, "drowning bleeds hit points")

	f.state.MoveCharacter(&p.Character, []character.Step{{X: 0, Y: -1}})
	assert.Zero(t, p.SwimLevel)
	assert.Empty(t, p.SwimElement)
	assert.False(t, p.HasEffect(effect.Swimming))
}

func TestRadiusMessagingReachesOnlyNearbyPlayers(t *testing.T) {
	f := newFixture(t)
	near := f.addPlayer("near")
	near.X, near.Y = 2, 1
	far := f.addPlayer("far")
	far.X, far.Y = 8, 1

	speaker := f.addNPC("crier")
	speaker.X, speaker.Y = 1, 1
	speaker.SendMessageToRadius("Hear ye!", 3)

	assert.Contains(t, f.pusher.messages["near"], "Hear ye!")
	assert.NotContains(t, f.pusher.messages["far"], "Hear ye!")
}

func TestPossibleTargetsRespectStealth(t *testing.T) {
	f := newFixture(t)
	seeker := f.addNPC("guard")
	seeker.X, seeker.Y = 1, 1

	target := f.addPlayer("alice")
	target.X, target.Y = 2, 1

	targets := f.state.PossibleTargetsFor(seeker, 5)
	require.Len(t, targets, 1)
	assert.Equal(t, "alice", targets[0].Name)

	corpse := f.addNPC("dead rat")
	corpse.X, corpse.Y = 2, 1
	corpse.Die(nil, true)
	assert.Len(t, f.state.PossibleTargetsFor(seeker, 5), 1, "the dead are not targets")
}

func TestGroundItems(t *testing.T) {
	f := newFixture(t)
	blade := item.New(&item.Def{Name: "rusty blade", ItemClass: item.ClassLongsword})

	f.state.AddGroundItem(3, 1, blade)
	require.Len(t, f.state.GroundItemsAt(3, 1), 1)

	got := f.state.TakeGroundItem(3, 1, blade.UUID)
	require.NotNil(t, got)
	assert.Equal(t, blade.UUID, got.UUID)
	assert.Empty(t, f.state.GroundItemsAt(3, 1))
	assert.Nil(t, f.state.TakeGroundItem(3, 1, blade.UUID))
}
