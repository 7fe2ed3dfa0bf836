package gameserver

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seiyria/landoftherair/internal/config"
	"github.com/seiyria/landoftherair/internal/game/character"
	"github.com/seiyria/landoftherair/internal/game/class"
	"github.com/seiyria/landoftherair/internal/game/effect"
	"github.com/seiyria/landoftherair/internal/game/item"
	"github.com/seiyria/landoftherair/internal/game/npc"
	"github.com/seiyria/landoftherair/internal/game/session"
	"github.com/seiyria/landoftherair/internal/game/world"
)

const ryltYAML = `
map:
  name: Rylt
  respawn: {x: 1, y: 1}
  tiles: |
    ########
    #......#
    #......#
    ########
  teleports:
    - {x: 6, y: 1, to: {map: Dedlaen, x: 1, y: 1}}
  spawns:
    - {template: Sewer Rat, x: 4, y: 2, count: 2, respawn_ticks: 3}
`

const dedlaenYAML = `
map:
  name: Dedlaen
  respawn: {x: 1, y: 1}
  tiles: |
    #####
    #...#
    #####
`

type sinkRecorder struct {
	mu   sync.Mutex
	msgs map[string][]string
}

func newSinkRecorder() *sinkRecorder {
	return &sinkRecorder{msgs: map[string][]string{}}
}

func (r *sinkRecorder) Push(username, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs[username] = append(r.msgs[username], message)
}

func (r *sinkRecorder) all(username string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs[username]...)
}

type fakeStore struct {
	mu    sync.Mutex
	saves map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{saves: map[string]int{}}
}

func (f *fakeStore) Save(_ context.Context, _ int64, p *character.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves[p.Username]++
	return nil
}

func ratTemplate() *npc.Template {
	return &npc.Template{
		Name:      "Sewer Rat",
		Hostility: npc.HostilityOnHit,
		Level:     1,
		HP:        10,
		MP:        0,
		Triggers: []npc.Trigger{
			{Keyword: "cheese", Response: "The rat sniffs hopefully.", Cooldown: 3},
		},
	}
}

type worldFixture struct {
	world    *World
	sessions *session.Manager
	sink     *sinkRecorder
	store    *fakeStore
}

func newWorldFixture(t *testing.T, saveInterval int) *worldFixture {
	t.Helper()

	rylt, err := world.LoadMapFromBytes([]byte(ryltYAML))
	require.NoError(t, err)
	dedlaen, err := world.LoadMapFromBytes([]byte(dedlaenYAML))
	require.NoError(t, err)
	maps, err := world.NewManager([]*world.Map{rylt, dedlaen})
	require.NoError(t, err)
	require.NoError(t, maps.ValidateTeleports())

	f := &worldFixture{
		sessions: session.NewManager(),
		sink:     newSinkRecorder(),
		store:    newFakeStore(),
	}
	f.world = NewWorld(WorldConfig{
		Maps:      maps,
		Items:     item.NewRegistry(),
		Effects:   effect.NewRegistry(),
		Templates: map[string]*npc.Template{"Sewer Rat": ratTemplate()},
		Sessions:  f.sessions,
		Store:     f.store,
		Sim:       config.SimulationConfig{SaveIntervalTicks: saveInterval},
	})
	f.world.SetSink(f.sink)
	return f
}

func (f *worldFixture) connect(t *testing.T, username string) *session.Session {
	t.Helper()
	p := character.NewPlayer(username, 0, class.Warrior)
	p.Map = "Rylt"
	p.X, p.Y = 2, 1
	sess, err := f.sessions.Add(p, 1, "player")
	require.NoError(t, err)
	f.world.Join(sess)
	return sess
}

func TestNewWorldPopulatesSpawns(t *testing.T) {
	f := newWorldFixture(t, 0)
	state, ok := f.world.RoomFor("Rylt")
	require.True(t, ok)
	assert.Equal(t, 2, state.CharacterCount())
}

func TestJoinPlacesPlayerAndSetsRespawn(t *testing.T) {
	f := newWorldFixture(t, 0)
	sess := f.connect(t, "alice")

	state, _ := f.world.RoomFor("Rylt")
	require.NotNil(t, state.CharacterByUUID("alice"))
	assert.Equal(t, character.Destination{Map: "Rylt", X: 1, Y: 1}, sess.Player.RespawnPoint)
}

func TestJoinUnknownMapFallsBackToStart(t *testing.T) {
	f := newWorldFixture(t, 0)
	p := character.NewPlayer("bob", 0, class.Warrior)
	p.Map = "Atlantis"
	sess, err := f.sessions.Add(p, 1, "player")
	require.NoError(t, err)

	f.world.Join(sess)

	assert.Equal(t, "Rylt", p.Map)
	assert.Equal(t, 1, p.X)
	state, _ := f.world.RoomFor("Rylt")
	assert.NotNil(t, state.CharacterByUUID("bob"))
}

func TestEnqueuedCommandRunsOnTick(t *testing.T) {
	f := newWorldFixture(t, 0)
	f.connect(t, "alice")
	f.connect(t, "bob")

	f.world.Enqueue("ghost", "say nothing happens")
	f.world.Enqueue("alice", "say hello there")
	f.world.Tick()

	assert.Contains(t, f.sink.all("bob"), `alice says, "hello there"`)
}

func TestTeleportTileMovesPlayerAcrossMaps(t *testing.T) {
	f := newWorldFixture(t, 0)
	sess := f.connect(t, "alice")
	sess.Player.X, sess.Player.Y = 5, 1

	f.world.Enqueue("alice", "east")
	f.world.Tick()

	rylt, _ := f.world.RoomFor("Rylt")
	dedlaen, _ := f.world.RoomFor("Dedlaen")
	assert.Nil(t, rylt.CharacterByUUID("alice"))
	require.NotNil(t, dedlaen.CharacterByUUID("alice"))
	assert.Equal(t, 1, sess.Player.X)
	assert.Equal(t, "Dedlaen", sess.MapName)
}

func TestNPCTriggerAnswersSpeech(t *testing.T) {
	f := newWorldFixture(t, 0)
	sess := f.connect(t, "alice")
	sess.Player.X, sess.Player.Y = 4, 1

	f.world.Enqueue("alice", "say got any cheese?")
	f.world.Tick()

	assert.Contains(t, f.sink.all("alice"), `Sewer Rat says, "The rat sniffs hopefully."`)
}

func TestSaveSweepRunsOnInterval(t *testing.T) {
	f := newWorldFixture(t, 3)
	f.connect(t, "alice")

	f.world.Tick()
	f.world.Tick()
	assert.Zero(t, f.store.saves["alice"])

	f.world.Tick()
	assert.Equal(t, 1, f.store.saves["alice"])
}

func TestLeaveRemovesAndSaves(t *testing.T) {
	f := newWorldFixture(t, 0)
	f.connect(t, "alice")

	f.world.Leave("alice")

	state, _ := f.world.RoomFor("Rylt")
	assert.Nil(t, state.CharacterByUUID("alice"))
	assert.Equal(t, 1, f.store.saves["alice"])
}
