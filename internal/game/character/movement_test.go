package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seiyria/landoftherair/internal/game/character"
	"github.com/seiyria/landoftherair/internal/game/class"
)

// gridMap is a dry test map with an optional set of wall tiles; door
// attempts always succeed.
type gridMap struct {
	w, h  int
	walls map[[2]int]bool
}

func (m *gridMap) Width() int            { return m.w }
func (m *gridMap) Height() int           { return m.h }
func (m *gridMap) IsDense(x, y int) bool { return m.walls[[2]int{x, y}] }
func (m *gridMap) IsFluid(int, int) bool { return false }
func (m *gridMap) TryOpenDoorAt(*character.Character, int, int) bool {
	return true
}

func TestStepsClampToTheLastTile(t *testing.T) {
	h := newHarness()
	h.ctx.Map = &gridMap{w: 5, h: 4}
	c := h.newCharacter("walker", character.KindNPC, class.Undecided)
	c.X, c.Y = 4, 3

	c.TakeSequenceOfSteps([]character.Step{{X: 1}, {Y: 1}})

	assert.Equal(t, 4, c.X, "the rightmost tile is width-1")
	assert.Equal(t, 3, c.Y, "the bottom tile is height-1")

	c.TakeSequenceOfSteps([]character.Step{{X: -10}, {Y: -10}})
	assert.Zero(t, c.X)
	assert.Zero(t, c.Y)
}

func TestStepsRefuseWallTiles(t *testing.T) {
	h := newHarness()
	h.ctx.Map = &gridMap{w: 5, h: 4, walls: map[[2]int]bool{{2, 1}: true}}
	c := h.newCharacter("walker", character.KindNPC, class.Undecided)
	c.X, c.Y = 1, 1

	c.TakeSequenceOfSteps([]character.Step{{X: 1}, {Y: 1}})

	assert.Equal(t, 1, c.X, "a wall blocks the step")
	assert.Equal(t, 2, c.Y, "later steps still apply from the blocked spot")
}
