// Package script exposes the simulator to Lua scripts, for driving batch
// test programs or scripted debugging sessions without a human at the
// terminal. It binds github.com/yuin/gopher-lua, following that library's
// documented embedding idiom (NewState, register globals as lua.LGFunction
// values, run with DoFile/DoString) — no example in the corpus embeds Lua,
// so this package follows gopher-lua's own README pattern rather than a
// ported one (see DESIGN.md).
package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/frisc-toolchain/frisc/internal/sim"
)

// Host binds one Simulator to one Lua state. Scripts call:
//
//	load(path)                -- sim.Load
//	run()                     -- sim.Run
//	step()                    -- sim.Step
//	pause()                   -- sim.Pause
//	stop()                    -- sim.Stop
//	reg(name [, value])       -- read, or write when value is given
//	mem(addr, length)         -- returns a table of byte values
//	breakpoint(addr)          -- sim.ToggleBreakpoint
//	state()                   -- the current SimulatorState name
//	annotation(addr)          -- the source line recorded for addr
type Host struct {
	Sim *sim.Simulator
	L   *lua.LState
}

// New constructs a Host around sim, registering every bound function as a
// Lua global.
func New(s *sim.Simulator) *Host {
	h := &Host{Sim: s, L: lua.NewState()}
	h.L.SetGlobal("load", h.L.NewFunction(h.luaLoad))
	h.L.SetGlobal("run", h.L.NewFunction(h.luaRun))
	h.L.SetGlobal("step", h.L.NewFunction(h.luaStep))
	h.L.SetGlobal("pause", h.L.NewFunction(h.luaPause))
	h.L.SetGlobal("stop", h.L.NewFunction(h.luaStop))
	h.L.SetGlobal("reg", h.L.NewFunction(h.luaReg))
	h.L.SetGlobal("mem", h.L.NewFunction(h.luaMem))
	h.L.SetGlobal("breakpoint", h.L.NewFunction(h.luaBreakpoint))
	h.L.SetGlobal("state", h.L.NewFunction(h.luaState))
	h.L.SetGlobal("annotation", h.L.NewFunction(h.luaAnnotation))
	return h
}

// Close releases the underlying Lua state.
func (h *Host) Close() { h.L.Close() }

// RunFile executes a Lua script file against the bound simulator.
func (h *Host) RunFile(path string) error {
	return h.L.DoFile(path)
}

// RunString executes Lua source text against the bound simulator.
func (h *Host) RunString(src string) error {
	return h.L.DoString(src)
}

func raiseErr(L *lua.LState, err error) int {
	L.RaiseError("%s", err.Error())
	return 0
}

func (h *Host) luaLoad(L *lua.LState) int {
	path := L.CheckString(1)
	if err := h.Sim.Load(path); err != nil {
		return raiseErr(L, err)
	}
	return 0
}

func (h *Host) luaRun(L *lua.LState) int {
	if err := h.Sim.Run(); err != nil {
		return raiseErr(L, err)
	}
	return 0
}

func (h *Host) luaStep(L *lua.LState) int {
	if err := h.Sim.Step(); err != nil {
		return raiseErr(L, err)
	}
	return 0
}

func (h *Host) luaPause(L *lua.LState) int {
	h.Sim.Pause()
	return 0
}

func (h *Host) luaStop(L *lua.LState) int {
	if err := h.Sim.Stop(); err != nil {
		return raiseErr(L, err)
	}
	return 0
}

// luaReg implements reg(name) and reg(name, value).
func (h *Host) luaReg(L *lua.LState) int {
	name := L.CheckString(1)
	if L.GetTop() >= 2 {
		value := uint32(L.CheckNumber(2))
		if err := h.Sim.WriteRegister(name, value); err != nil {
			return raiseErr(L, err)
		}
		return 0
	}
	v, err := h.Sim.ReadRegister(name)
	if err != nil {
		return raiseErr(L, err)
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (h *Host) luaMem(L *lua.LState) int {
	addr := uint32(L.CheckNumber(1))
	length := L.CheckInt(2)
	data, err := h.Sim.ReadMemory(addr, length)
	if err != nil {
		return raiseErr(L, err)
	}
	tbl := L.NewTable()
	for i, b := range data {
		tbl.RawSetInt(i+1, lua.LNumber(b))
	}
	L.Push(tbl)
	return 1
}

func (h *Host) luaBreakpoint(L *lua.LState) int {
	addr := uint32(L.CheckNumber(1))
	if err := h.Sim.ToggleBreakpoint(addr); err != nil {
		return raiseErr(L, err)
	}
	return 0
}

func (h *Host) luaState(L *lua.LState) int {
	L.Push(lua.LString(h.Sim.State().String()))
	return 1
}

func (h *Host) luaAnnotation(L *lua.LState) int {
	addr := uint32(L.CheckNumber(1))
	L.Push(lua.LString(h.Sim.Annotation(addr)))
	return 1
}
