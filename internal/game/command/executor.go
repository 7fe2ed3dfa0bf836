package command

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/seiyria/landoftherair/internal/game/character"
	"github.com/seiyria/landoftherair/internal/game/dice"
	"github.com/seiyria/landoftherair/internal/game/item"
	"github.com/seiyria/landoftherair/internal/game/room"
	"github.com/seiyria/landoftherair/internal/game/skill"
	"github.com/seiyria/landoftherair/internal/game/stat"
)

// speech carries this far, in tiles.
const speechRadius = 4

// Responder lets NPCs answer speech near them. The npc layer implements it;
// nil means nobody talks back.
type Responder interface {
	Respond(speaker *character.Character, text string)
}

// Executor dispatches dequeued player actions against the room it is bound
// to. It implements room.CommandExecutor.
type Executor struct {
	registry *Registry
	rand     dice.Source
	log      *zap.Logger

	state *room.State
	npcs  Responder
}

// NewExecutor builds an executor over the built-in command set. Bind must
// be called before the first Execute.
func NewExecutor(rand dice.Source, log *zap.Logger) *Executor {
	if rand == nil {
		rand = dice.NewSource()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{
		registry: DefaultRegistry(),
		rand:     rand,
		log:      log,
	}
}

// Bind wires the executor to the room it drives. The room and executor
// reference each other, so construction happens in two steps.
func (e *Executor) Bind(state *room.State) {
	e.state = state
}

// SetResponder wires the NPC speech responder.
func (e *Executor) SetResponder(r Responder) {
	e.npcs = r
}

// Execute implements room.CommandExecutor.
func (e *Executor) Execute(p *character.Player, command, args string) {
	if e.state == nil {
		e.log.Error("executor not bound to a room", zap.String("command", command))
		return
	}

	cmd, ok := e.registry.Resolve(strings.ToLower(command))
	if !ok {
		p.SendMessage(fmt.Sprintf("You don't know how to %q.", command))
		return
	}

	switch cmd.Handler {
	case HandlerMove:
		e.move(p, cmd.Dir[0], cmd.Dir[1])
	case HandlerLook:
		e.look(p)
	case HandlerSay:
		e.say(p, args)
	case HandlerEmote:
		e.emote(p, args)
	case HandlerWho:
		e.who(p)
	case HandlerStatus:
		e.status(p)
	case HandlerAttack:
		e.attack(p, args)
	case HandlerGet:
		e.get(p, args)
	case HandlerDrop:
		e.drop(p, args)
	case HandlerEquip:
		e.equip(p, args)
	case HandlerUnequip:
		e.unequip(p, args)
	case HandlerHelp:
		e.help(p)
	default:
		e.log.Error("command resolves to unknown handler",
			zap.String("command", cmd.Name),
			zap.String("handler", cmd.Handler),
		)
	}
}

func (e *Executor) move(p *character.Player, dx, dy int) {
	p.SetDirBasedOnXYDiff(dx, dy)
	e.state.MoveCharacter(&p.Character, []character.Step{{X: dx, Y: dy}})
}

func (e *Executor) look(p *character.Player) {
	var lines []string

	for _, other := range e.state.PossibleTargetsFor(&p.Character, speechRadius) {
		lines = append(lines, fmt.Sprintf("You see %s.", other.Name))
	}
	for _, it := range e.state.GroundItemsAt(p.X, p.Y) {
		lines = append(lines, fmt.Sprintf("A %s lies here.", it.Name))
	}
	if e.state.TrapArmedAt(p.X, p.Y) {
		// only perceptive characters would notice, but the tile is theirs now
		lines = append(lines, "Something about the floor here looks wrong.")
	}
	if len(lines) == 0 {
		lines = append(lines, "There is nothing of note here.")
	}
	p.SendMessage(strings.Join(lines, " "))
}

func (e *Executor) say(p *character.Player, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		p.SendMessage("Say what?")
		return
	}
	p.SendMessageToRadius(fmt.Sprintf("%s says, %q", p.Name, text), speechRadius)
	if e.npcs != nil {
		e.npcs.Respond(&p.Character, text)
	}
}

func (e *Executor) emote(p *character.Player, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	p.SendMessageToRadius(fmt.Sprintf("%s %s", p.Name, text), speechRadius)
}

func (e *Executor) who(p *character.Player) {
	names := e.state.PlayerNames()
	sort.Strings(names)
	p.SendMessage(fmt.Sprintf("Players here: %s.", strings.Join(names, ", ")))
}

func (e *Executor) status(p *character.Player) {
	p.SendMessage(fmt.Sprintf("HP %d/%d  MP %d/%d  Level %d  Gold %d",
		p.HP.Current, p.HP.Maximum,
		p.MP.Current, p.MP.Maximum,
		p.Level,
		p.CurrencyValue(character.CurrencyGold),
	))
}

func (e *Executor) attack(p *character.Player, args string) {
	target := e.findTarget(p, args)
	if target == nil {
		p.SendMessage("You see nothing like that to attack.")
		return
	}

	weaponClass := item.ClassHands
	if p.RightHand != nil {
		weaponClass = p.RightHand.ItemClass
	}
	weaponSkill := skill.Type(item.SkillFor(weaponClass))
	if weaponSkill == "" {
		p.SendMessage("You cannot attack with that.")
		return
	}
	p.FlagSkill(weaponSkill)

	str := p.GetTotalStat(stat.Str)
	if str < 2 {
		str = 2
	}
	damage := dice.Roll(e.rand, 1, str) + skill.Level(p.Skills[weaponSkill])

	target.AddAgro(&p.Character, damage)
	p.CombatTicks = 5
	target.CombatTicks = 5

	p.SendMessage(fmt.Sprintf("You hit %s for %d damage!", target.Name, damage))
	target.TakeDamage(damage, "physical", fmt.Sprintf("%s hits you!", p.Name))

	if target.IsDead() {
		p.SendMessage(fmt.Sprintf("You have slain %s!", target.Name))
		p.Kill(target)
		p.GainExpFromKills(float64(target.Level * 125))
	}
}

func (e *Executor) get(p *character.Player, args string) {
	ground := e.state.GroundItemsAt(p.X, p.Y)
	it := matchItem(ground, args)
	if it == nil {
		p.SendMessage("There is nothing like that here.")
		return
	}

	if it.ItemClass == item.ClassCoin {
		e.state.TakeGroundItem(p.X, p.Y, it.UUID)
		p.EarnCurrency(character.CurrencyGold, it.Value)
		p.SendMessage(fmt.Sprintf("You pick up %d gold.", it.Value))
		return
	}

	if reason := p.Sack.AddItem(it); reason != "" {
		p.SendMessage(reason)
		return
	}
	e.state.TakeGroundItem(p.X, p.Y, it.UUID)
	p.SendMessage(fmt.Sprintf("You pick up the %s.", it.Name))
}

func (e *Executor) drop(p *character.Player, args string) {
	it := matchItem(p.Sack.AllItems(), args)
	if it == nil {
		p.SendMessage("You are not carrying that.")
		return
	}
	p.Sack.RemoveItemByUUID(it.UUID)
	e.state.AddGroundItem(p.X, p.Y, it)
	p.SendMessage(fmt.Sprintf("You drop the %s.", it.Name))
}

func (e *Executor) equip(p *character.Player, args string) {
	it := matchItem(p.Sack.AllItems(), args)
	if it == nil {
		p.SendMessage("You are not carrying that.")
		return
	}

	switch {
	case p.RightHand == nil:
		p.Sack.RemoveItemByUUID(it.UUID)
		p.SetRightHand(it)
	case p.LeftHand == nil:
		p.Sack.RemoveItemByUUID(it.UUID)
		p.SetLeftHand(it)
	default:
		p.SendMessage("Your hands are full.")
		return
	}
	p.SendMessage(fmt.Sprintf("You ready the %s.", it.Name))
}

func (e *Executor) unequip(p *character.Player, args string) {
	hand := strings.ToLower(strings.TrimSpace(args))
	var it *item.Item
	switch hand {
	case "left":
		it = p.LeftHand
	case "right", "":
		it = p.RightHand
		hand = "right"
	default:
		p.SendMessage("Unequip which hand?")
		return
	}
	if it == nil {
		p.SendMessage("That hand is empty.")
		return
	}
	if reason := p.Sack.AddItem(it); reason != "" {
		p.SendMessage(reason)
		return
	}
	if hand == "left" {
		p.SetLeftHand(nil)
	} else {
		p.SetRightHand(nil)
	}
	p.SendMessage(fmt.Sprintf("You stow the %s.", it.Name))
}

func (e *Executor) help(p *character.Player) {
	byCategory := e.registry.CommandsByCategory()
	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var lines []string
	for _, cat := range categories {
		cmds := byCategory[cat]
		names := make([]string, 0, len(cmds))
		for _, c := range cmds {
			names = append(names, c.Name)
		}
		sort.Strings(names)
		lines = append(lines, fmt.Sprintf("%s: %s", cat, strings.Join(names, ", ")))
	}
	p.SendMessage(strings.Join(lines, "\n"))
}

// findTarget resolves a name prefix to a living adjacent character.
func (e *Executor) findTarget(p *character.Player, args string) *character.Character {
	targets := e.state.PossibleTargetsFor(&p.Character, 1)
	if len(targets) == 0 {
		return nil
	}
	prefix := strings.ToLower(strings.TrimSpace(args))
	if prefix == "" {
		return targets[0]
	}
	for _, t := range targets {
		if strings.HasPrefix(strings.ToLower(t.Name), prefix) {
			return t
		}
	}
	return nil
}

// matchItem resolves a name prefix against a slice of items; an empty
// prefix takes the first.
func matchItem(items []*item.Item, args string) *item.Item {
	if len(items) == 0 {
		return nil
	}
	prefix := strings.ToLower(strings.TrimSpace(args))
	if prefix == "" {
		return items[0]
	}
	for _, it := range items {
		if strings.HasPrefix(strings.ToLower(it.Name), prefix) {
			return it
		}
	}
	return nil
}
