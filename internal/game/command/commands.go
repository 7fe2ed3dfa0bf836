// Package command provides the command registry, parser, and the executor
// that turns a player's dequeued action into simulation calls.
package command

// Categories for organizing commands.
const (
	CategoryMovement      = "movement"
	CategoryWorld         = "world"
	CategoryCombat        = "combat"
	CategoryCommunication = "communication"
	CategorySystem        = "system"
)

// Handler identifiers mapping commands to executor methods.
const (
	HandlerMove    = "move"
	HandlerLook    = "look"
	HandlerSay     = "say"
	HandlerEmote   = "emote"
	HandlerWho     = "who"
	HandlerStatus  = "status"
	HandlerAttack  = "attack"
	HandlerGet     = "get"
	HandlerDrop    = "drop"
	HandlerEquip   = "equip"
	HandlerUnequip = "unequip"
	HandlerHelp    = "help"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command.
	Category string
	// Handler selects the executor method.
	Handler string
	// Dir carries the step delta for directional movement commands.
	Dir [2]int
}

// BuiltinCommands returns all built-in commands for the game.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "north", Aliases: []string{"n"}, Help: "Walk one tile north.", Category: CategoryMovement, Handler: HandlerMove, Dir: [2]int{0, -1}},
		{Name: "south", Aliases: []string{"s"}, Help: "Walk one tile south.", Category: CategoryMovement, Handler: HandlerMove, Dir: [2]int{0, 1}},
		{Name: "east", Aliases: []string{"e"}, Help: "Walk one tile east.", Category: CategoryMovement, Handler: HandlerMove, Dir: [2]int{1, 0}},
		{Name: "west", Aliases: []string{"w"}, Help: "Walk one tile west.", Category: CategoryMovement, Handler: HandlerMove, Dir: [2]int{-1, 0}},

		{Name: "look", Aliases: []string{"l"}, Help: "Look around your tile.", Category: CategoryWorld, Handler: HandlerLook},
		{Name: "get", Aliases: []string{"take"}, Help: "Pick an item up off the ground.", Category: CategoryWorld, Handler: HandlerGet},
		{Name: "drop", Help: "Drop an item from your sack.", Category: CategoryWorld, Handler: HandlerDrop},
		{Name: "equip", Aliases: []string{"wield"}, Help: "Move an item from your sack to a free hand.", Category: CategoryWorld, Handler: HandlerEquip},
		{Name: "unequip", Aliases: []string{"sheathe"}, Help: "Stow a held item in your sack.", Category: CategoryWorld, Handler: HandlerUnequip},

		{Name: "attack", Aliases: []string{"a", "kill"}, Help: "Attack a nearby target.", Category: CategoryCombat, Handler: HandlerAttack},

		{Name: "say", Help: "Say something to everyone nearby.", Category: CategoryCommunication, Handler: HandlerSay},
		{Name: "emote", Aliases: []string{"me"}, Help: "Perform a visible action.", Category: CategoryCommunication, Handler: HandlerEmote},

		{Name: "who", Help: "List the players on this map.", Category: CategorySystem, Handler: HandlerWho},
		{Name: "status", Aliases: []string{"st"}, Help: "Show your vitals.", Category: CategorySystem, Handler: HandlerStatus},
		{Name: "help", Aliases: []string{"?"}, Help: "List available commands.", Category: CategorySystem, Handler: HandlerHelp},
	}
}
