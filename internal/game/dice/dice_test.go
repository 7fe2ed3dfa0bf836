package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/seiyria/landoftherair/internal/game/dice"
)

// seqSource replays a fixed sequence of Intn results.
type seqSource struct {
	values []int
	idx    int
}

func (s *seqSource) Intn(n int) int {
	if s.idx >= len(s.values) {
		return 0
	}
	v := s.values[s.idx] % n
	s.idx++
	return v
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want dice.Expr
	}{
		{"2d6", dice.Expr{Count: 2, Sides: 6}},
		{"2d6+3", dice.Expr{Count: 2, Sides: 6, Modifier: 3}},
		{"1d20-4", dice.Expr{Count: 1, Sides: 20, Modifier: -4}},
		{"d8", dice.Expr{Count: 1, Sides: 8}},
		{"2 D 6 + 1", dice.Expr{Count: 2, Sides: 6, Modifier: 1}},
		{"42", dice.Expr{Modifier: 42}},
	}
	for _, tc := range cases {
		got, err := dice.Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "d", "0d6", "2dx", "2d6+e", "-1d6"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, in)
	}
}

func TestRollSumsSequence(t *testing.T) {
	src := &seqSource{values: []int{2, 4}}
	got := dice.MustParse("2d6+3").Roll(src)
	assert.Equal(t, 3+5+3, got)
}

func TestBetween(t *testing.T) {
	src := &seqSource{values: []int{7}}
	assert.Equal(t, 12, dice.Between(src, 5, 20))
	assert.Equal(t, 5, dice.Between(src, 5, 5))
	assert.Equal(t, 5, dice.Between(src, 5, 1))
}

func TestRollAlwaysWithinBounds(t *testing.T) {
	src := dice.NewSource()
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(t, "count")
		sides := rapid.IntRange(1, 100).Draw(t, "sides")
		total := dice.Roll(src, count, sides)
		assert.GreaterOrEqual(t, total, count)
		assert.LessOrEqual(t, total, count*sides)
	})
}

func TestRollerLogsAndRolls(t *testing.T) {
	r := dice.NewRoller(&seqSource{values: []int{0, 0, 0}}, nil)
	got, err := r.Roll("3d4+1")
	require.NoError(t, err)
	assert.Equal(t, 4, got)

	_, err = r.Roll("nope")
	assert.Error(t, err)
}
