package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/seiyria/landoftherair/internal/game/effect"
	"github.com/seiyria/landoftherair/internal/game/stat"
)

// EffectBehavior builds an effect.Behavior whose hooks are Lua functions:
// hook_start, hook_tick, and hook_end, looked up through mapName's VM with
// the shared VM as fallback. Each function receives a snapshot table of the
// effect and returns a table of actions that are applied to the holder:
//
//	{damage = n, damage_class = "fire", heal = n, message = "...",
//	 boosts = {str = 2, con = -1}}
//
// A nil or non-table return applies nothing. Missing hook functions are
// skipped, so a script may define only hook_tick.
func (m *Manager) EffectBehavior(mapName, hook string) effect.Behavior {
	run := func(suffix string) func(t effect.Target, e *effect.Effect) {
		name := hook + suffix
		return func(t effect.Target, e *effect.Effect) {
			if !m.HasHook(mapName, name) {
				return
			}
			ret, err := m.CallHook(mapName, name, m.effectTable(mapName, e))
			if err != nil {
				return
			}
			applyHookResult(t, ret)
		}
	}
	return effect.Behavior{
		OnStart: run("_start"),
		OnTick:  run("_tick"),
		OnEnd:   run("_end"),
	}
}

// effectTable snapshots e into a Lua table for hook arguments.
//
// Precondition: a VM for mapName (or the shared one) must exist; the caller
// checks HasHook first.
func (m *Manager) effectTable(mapName string, e *effect.Effect) lua.LValue {
	m.mu.RLock()
	L, ok := m.states[mapName]
	if !ok {
		L = m.states[globalKey]
	}
	m.mu.RUnlock()

	t := L.NewTable()
	L.SetField(t, "name", lua.LString(e.Name))
	L.SetField(t, "duration", lua.LNumber(e.Duration))
	L.SetField(t, "potency", lua.LNumber(e.Info.Potency))
	L.SetField(t, "damage", lua.LNumber(e.Info.Damage))
	return t
}

// applyHookResult interprets a hook's action table against the holder.
func applyHookResult(t effect.Target, ret lua.LValue) {
	table, ok := ret.(*lua.LTable)
	if !ok {
		return
	}

	if msg, ok := table.RawGetString("message").(lua.LString); ok && msg != "" {
		t.SendMessage(string(msg))
	}

	if dmg, ok := table.RawGetString("damage").(lua.LNumber); ok && dmg > 0 {
		class := "physical"
		if c, ok := table.RawGetString("damage_class").(lua.LString); ok && c != "" {
			class = string(c)
		}
		t.TakeDamage(int(dmg), class, "")
	}

	if heal, ok := table.RawGetString("heal").(lua.LNumber); ok && heal > 0 {
		t.HealDamage(int(heal))
	}

	if boosts, ok := table.RawGetString("boosts").(*lua.LTable); ok {
		boosts.ForEach(func(key, value lua.LValue) {
			name, kok := key.(lua.LString)
			amount, vok := value.(lua.LNumber)
			if !kok || !vok {
				return
			}
			s := stat.Stat(name)
			if !stat.IsValid(s) {
				return
			}
			if amount >= 0 {
				t.GainStat(s, int(amount))
			} else {
				t.LoseStat(s, -int(amount))
			}
		})
	}
}
