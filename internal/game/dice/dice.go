// Package dice provides the random rolls used by level-up stat gains and
// effect potency. All randomness flows through a Source so tests can
// substitute deterministic sequences.
package dice

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Source yields uniform random integers in [0, n).
type Source interface {
	Intn(n int) int
}

type cryptoSource struct{}

func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand failing means the platform RNG is broken; there is
		// no sensible fallback for game rolls.
		panic(fmt.Sprintf("dice: crypto source: %v", err))
	}
	return int(v.Int64())
}

// NewSource returns the production Source backed by crypto/rand.
func NewSource() Source {
	return cryptoSource{}
}

// Roll rolls count dice with the given number of sides and sums them.
// A non-positive count or sides yields zero.
func Roll(src Source, count, sides int) int {
	if count <= 0 || sides <= 0 {
		return 0
	}
	total := 0
	for i := 0; i < count; i++ {
		total += src.Intn(sides) + 1
	}
	return total
}

// Between returns a uniform integer in [low, high]. If low >= high it
// returns low.
func Between(src Source, low, high int) int {
	if low >= high {
		return low
	}
	return low + src.Intn(high-low+1)
}

// Expr is a parsed dice expression such as "2d6+3".
type Expr struct {
	Count    int
	Sides    int
	Modifier int
}

// Roll evaluates the expression against src.
func (e Expr) Roll(src Source) int {
	return Roll(src, e.Count, e.Sides) + e.Modifier
}

func (e Expr) String() string {
	s := fmt.Sprintf("%dd%d", e.Count, e.Sides)
	switch {
	case e.Modifier > 0:
		s += fmt.Sprintf("+%d", e.Modifier)
	case e.Modifier < 0:
		s += strconv.Itoa(e.Modifier)
	}
	return s
}

// Parse parses expressions of the form "NdS", "NdS+M" or "NdS-M".
// Whitespace is ignored. A bare integer parses as a zero-dice constant.
func Parse(expr string) (Expr, error) {
	cleaned := strings.ReplaceAll(strings.ToLower(expr), " ", "")
	if cleaned == "" {
		return Expr{}, fmt.Errorf("dice: empty expression")
	}

	dIdx := strings.IndexByte(cleaned, 'd')
	if dIdx < 0 {
		c, err := strconv.Atoi(cleaned)
		if err != nil {
			return Expr{}, fmt.Errorf("dice: invalid expression %q", expr)
		}
		return Expr{Modifier: c}, nil
	}

	countStr := cleaned[:dIdx]
	rest := cleaned[dIdx+1:]

	count := 1
	if countStr != "" {
		var err error
		count, err = strconv.Atoi(countStr)
		if err != nil || count < 1 {
			return Expr{}, fmt.Errorf("dice: invalid count in %q", expr)
		}
	}

	modifier := 0
	sidesStr := rest
	if idx := strings.IndexAny(rest, "+-"); idx > 0 {
		sidesStr = rest[:idx]
		m, err := strconv.Atoi(rest[idx:])
		if err != nil {
			return Expr{}, fmt.Errorf("dice: invalid modifier in %q", expr)
		}
		modifier = m
	}

	sides, err := strconv.Atoi(sidesStr)
	if err != nil || sides < 1 {
		return Expr{}, fmt.Errorf("dice: invalid sides in %q", expr)
	}

	return Expr{Count: count, Sides: sides, Modifier: modifier}, nil
}

// MustParse parses expr and panics on error. Intended for expressions
// fixed at compile time or validated content definitions.
func MustParse(expr string) Expr {
	e, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return e
}
