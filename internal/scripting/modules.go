package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.* Lua table into L. Every function
// degrades to a no-op (or nil return) when its backing callback is not
// injected, so content scripts stay loadable in partial wiring such as
// tests.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: the engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()

	L.SetField(engine, "roll", L.NewFunction(func(L *lua.LState) int {
		expr := L.CheckString(1)
		n, err := m.roller.Roll(expr)
		if err != nil {
			m.logger.Warn("scripting: bad dice expression", zap.String("expr", expr), zap.Error(err))
			L.Push(lua.LNumber(0))
			return 1
		}
		L.Push(lua.LNumber(n))
		return 1
	}))

	L.SetField(engine, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Info("script", zap.String("message", L.CheckString(1)))
		return 0
	}))

	L.SetField(engine, "character", L.NewFunction(func(L *lua.LState) int {
		uuid := L.CheckString(1)
		if m.GetCharacter == nil {
			L.Push(lua.LNil)
			return 1
		}
		info := m.GetCharacter(uuid)
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		t := L.NewTable()
		L.SetField(t, "uuid", lua.LString(info.UUID))
		L.SetField(t, "name", lua.LString(info.Name))
		L.SetField(t, "hp", lua.LNumber(info.HP))
		L.SetField(t, "max_hp", lua.LNumber(info.MaxHP))
		L.SetField(t, "level", lua.LNumber(info.Level))
		L.SetField(t, "class", lua.LString(info.Class))
		L.Push(t)
		return 1
	}))

	L.SetField(engine, "damage", L.NewFunction(func(L *lua.LState) int {
		if m.DealDamage == nil {
			return 0
		}
		uuid := L.CheckString(1)
		amount := L.CheckInt(2)
		class := L.OptString(3, "physical")
		if err := m.DealDamage(uuid, amount, class); err != nil {
			m.logger.Warn("scripting: damage failed", zap.String("uuid", uuid), zap.Error(err))
		}
		return 0
	}))

	L.SetField(engine, "heal", L.NewFunction(func(L *lua.LState) int {
		if m.Heal == nil {
			return 0
		}
		uuid := L.CheckString(1)
		amount := L.CheckInt(2)
		if err := m.Heal(uuid, amount); err != nil {
			m.logger.Warn("scripting: heal failed", zap.String("uuid", uuid), zap.Error(err))
		}
		return 0
	}))

	L.SetField(engine, "boost_stat", L.NewFunction(func(L *lua.LState) int {
		if m.BoostStat == nil {
			return 0
		}
		uuid := L.CheckString(1)
		statName := L.CheckString(2)
		amount := L.CheckInt(3)
		if err := m.BoostStat(uuid, statName, amount); err != nil {
			m.logger.Warn("scripting: stat boost failed",
				zap.String("uuid", uuid),
				zap.String("stat", statName),
				zap.Error(err),
			)
		}
		return 0
	}))

	L.SetField(engine, "apply_effect", L.NewFunction(func(L *lua.LState) int {
		if m.ApplyEffect == nil {
			return 0
		}
		uuid := L.CheckString(1)
		name := L.CheckString(2)
		duration := L.OptInt(3, 0)
		potency := L.OptInt(4, 0)
		if err := m.ApplyEffect(uuid, name, duration, potency); err != nil {
			m.logger.Warn("scripting: apply effect failed",
				zap.String("uuid", uuid),
				zap.String("effect", name),
				zap.Error(err),
			)
		}
		return 0
	}))

	L.SetField(engine, "message", L.NewFunction(func(L *lua.LState) int {
		if m.SendMessage == nil {
			return 0
		}
		m.SendMessage(L.CheckString(1), L.CheckString(2))
		return 0
	}))

	L.SetField(engine, "broadcast", L.NewFunction(func(L *lua.LState) int {
		if m.Broadcast == nil {
			return 0
		}
		m.Broadcast(L.CheckString(1))
		return 0
	}))

	L.SetGlobal("engine", engine)
}
