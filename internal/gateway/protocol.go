// Package gateway exposes the game over websockets: account auth,
// character selection, and the play loop that bridges socket frames to
// the simulation.
package gateway

// Client frame types.
const (
	frameLogin    = "login"
	frameRegister = "register"
	frameCreate   = "create"
	frameSelect   = "select"
	frameCommand  = "command"
	frameQuit     = "quit"
)

// Server frame types.
const (
	frameMessage    = "message"
	frameError      = "error"
	frameCharacters = "characters"
	frameEntered    = "entered"
)

// clientFrame is the single envelope for everything a client sends.
// Unused fields stay zero; Type selects which ones matter.
type clientFrame struct {
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Slot     int    `json:"slot,omitempty"`
	Class    string `json:"class,omitempty"`
	Line     string `json:"line,omitempty"`
}

// serverFrame is the envelope for everything the server sends.
type serverFrame struct {
	Type       string             `json:"type"`
	Text       string             `json:"text,omitempty"`
	Characters []characterSummary `json:"characters,omitempty"`
	Map        string             `json:"map,omitempty"`
}

// characterSummary is one row of the character-select screen.
type characterSummary struct {
	Slot  int    `json:"slot"`
	Name  string `json:"name"`
	Class string `json:"class"`
	Level int    `json:"level"`
	Map   string `json:"map"`
}
