// Package script runs Lua automation against a running emulator.
//
// A script may define a global on_frame(frame) function, which is called
// once per frame after the frame's instructions and timer tick. The global
// chip8 table gives access to the machine:
//
//	chip8.reg(x)            -- read Vx
//	chip8.set_reg(x, v)     -- write Vx
//	chip8.index()           -- read I
//	chip8.set_index(v)      -- write I
//	chip8.pc()              -- read PC
//	chip8.timers()          -- delay and sound timers
//	chip8.peek(addr)        -- read a memory byte
//	chip8.poke(addr, v)     -- write a memory byte
//	chip8.press(key, down)  -- hold or release a keypad key, down defaults to true
//	chip8.pixel(x, y)       -- read a display pixel
//	chip8.state()           -- "running" or "awaiting-key"
//	chip8.instructions()    -- instructions executed since load
//	chip8.log(msg)          -- log a message at V(0)
//	chip8.quit()            -- end the run after this frame
package script

import (
	"fmt"

	"github.com/go-logr/logr"
	lua "github.com/yuin/gopher-lua"

	"github.com/chip8vm/chip8/driver"
	"github.com/chip8vm/chip8/emu"
)

// FrameFunc is the global a script defines to be called every frame.
const FrameFunc = "on_frame"

// Script is a loaded Lua script. It implements driver.Hook and
// driver.KeySource; keys pressed from Lua stay held until released.
type Script struct {
	name string
	L    *lua.LState
	log  logr.Logger

	emulator *emu.Emulator
	quit     bool
	keys     [emu.KeyCount]bool
}

// Load runs the Lua file at path and returns the resulting script.
func Load(path string, log logr.Logger) (*Script, error) {
	s := newScript(path, log)
	if err := s.L.DoFile(path); err != nil {
		s.Close()
		return nil, fmt.Errorf("load script %s: %w", path, err)
	}
	return s, nil
}

// LoadString runs Lua source and returns the resulting script.
func LoadString(name, source string, log logr.Logger) (*Script, error) {
	s := newScript(name, log)
	if err := s.L.DoString(source); err != nil {
		s.Close()
		return nil, fmt.Errorf("load script %s: %w", name, err)
	}
	return s, nil
}

func newScript(name string, log logr.Logger) *Script {
	s := &Script{
		name: name,
		L:    lua.NewState(),
		log:  log.WithValues("script", name),
	}

	api := s.L.NewTable()
	s.L.SetFuncs(api, map[string]lua.LGFunction{
		"reg":          s.reg,
		"set_reg":      s.setReg,
		"index":        s.index,
		"set_index":    s.setIndex,
		"pc":           s.pc,
		"timers":       s.timers,
		"peek":         s.peek,
		"poke":         s.poke,
		"press":        s.press,
		"pixel":        s.pixel,
		"state":        s.state,
		"instructions": s.instructions,
		"log":          s.logMessage,
		"quit":         s.requestQuit,
	})
	s.L.SetGlobal("chip8", api)

	return s
}

// Name returns the script's file name or label.
func (s *Script) Name() string {
	return s.name
}

// OnFrame calls the script's on_frame function. It returns driver.ErrQuit
// once the script has called chip8.quit.
func (s *Script) OnFrame(e *emu.Emulator, frame uint64) error {
	s.emulator = e

	fn := s.L.GetGlobal(FrameFunc)
	if fn.Type() == lua.LTFunction {
		err := s.L.CallByParam(lua.P{
			Fn:      fn,
			NRet:    0,
			Protect: true,
		}, lua.LNumber(frame))
		if err != nil {
			return fmt.Errorf("script %s: %w", s.name, err)
		}
	}

	if s.quit {
		s.log.V(1).Info("script requested quit", "frame", frame)
		return driver.ErrQuit
	}
	return nil
}

// Close releases the Lua state.
func (s *Script) Close() {
	s.L.Close()
}

// machine returns the attached emulator or raises a Lua error.
func (s *Script) machine(L *lua.LState) *emu.Emulator {
	if s.emulator == nil {
		L.RaiseError("no emulator attached")
	}
	return s.emulator
}

func checkRange(L *lua.LState, n, limit int) int {
	v := L.CheckInt(n)
	if v < 0 || v >= limit {
		L.ArgError(n, fmt.Sprintf("out of range [0, %d)", limit))
	}
	return v
}

func (s *Script) reg(L *lua.LState) int {
	x := checkRange(L, 1, 16)
	L.Push(lua.LNumber(s.machine(L).RegFile().ReadV(uint8(x))))
	return 1
}

func (s *Script) setReg(L *lua.LState) int {
	x := checkRange(L, 1, 16)
	v := checkRange(L, 2, 256)
	s.machine(L).RegFile().WriteV(uint8(x), uint8(v))
	return 0
}

func (s *Script) index(L *lua.LState) int {
	L.Push(lua.LNumber(s.machine(L).RegFile().I))
	return 1
}

func (s *Script) setIndex(L *lua.LState) int {
	v := checkRange(L, 1, emu.MemorySize)
	s.machine(L).RegFile().SetI(uint16(v))
	return 0
}

func (s *Script) pc(L *lua.LState) int {
	L.Push(lua.LNumber(s.machine(L).RegFile().PC))
	return 1
}

func (s *Script) timers(L *lua.LState) int {
	regs := s.machine(L).RegFile()
	L.Push(lua.LNumber(regs.DT))
	L.Push(lua.LNumber(regs.ST))
	return 2
}

func (s *Script) peek(L *lua.LState) int {
	addr := checkRange(L, 1, emu.MemorySize)
	L.Push(lua.LNumber(s.machine(L).Memory().Read8(uint16(addr))))
	return 1
}

func (s *Script) poke(L *lua.LState) int {
	addr := checkRange(L, 1, emu.MemorySize)
	v := checkRange(L, 2, 256)
	s.machine(L).Memory().Write8(uint16(addr), uint8(v))
	return 0
}

func (s *Script) press(L *lua.LState) int {
	key := checkRange(L, 1, emu.KeyCount)
	down := true
	if L.GetTop() >= 2 {
		down = L.ToBool(2)
	}
	s.keys[key] = down
	s.machine(L).SetKey(uint8(key), down)
	return 0
}

// HeldKeys returns the keys the script currently holds down.
func (s *Script) HeldKeys() [emu.KeyCount]bool {
	return s.keys
}

func (s *Script) pixel(L *lua.LState) int {
	x := L.CheckInt(1)
	y := L.CheckInt(2)
	fb := s.machine(L).Framebuffer()
	L.Push(lua.LBool(fb.Pixel(x, y)))
	return 1
}

func (s *Script) state(L *lua.LState) int {
	L.Push(lua.LString(s.machine(L).State().String()))
	return 1
}

func (s *Script) instructions(L *lua.LState) int {
	L.Push(lua.LNumber(s.machine(L).InstructionCount()))
	return 1
}

func (s *Script) logMessage(L *lua.LState) int {
	s.log.Info(L.CheckString(1))
	return 0
}

func (s *Script) requestQuit(L *lua.LState) int {
	s.quit = true
	return 0
}
