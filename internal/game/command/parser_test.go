package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		line string
		want ParseResult
	}{
		{"empty", "", ParseResult{}},
		{"bare command", "look", ParseResult{Command: "look"}},
		{"uppercase command", "LOOK", ParseResult{Command: "look"}},
		{"command with args", "get rusty dagger", ParseResult{
			Command: "get",
			Args:    []string{"rusty", "dagger"},
			RawArgs: "rusty dagger",
		}},
		{"speech preserves casing", "say Hello THERE", ParseResult{
			Command: "say",
			Args:    []string{"Hello", "THERE"},
			RawArgs: "Hello THERE",
		}},
		{"surrounding whitespace", "  who  ", ParseResult{Command: "who"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.line))
		})
	}
}
