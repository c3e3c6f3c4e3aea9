package emu

import (
	"fmt"
	"math/rand/v2"

	"github.com/go-logr/logr"

	"github.com/chip8vm/chip8/insts"
)

// State is the execution sub-state of the engine.
type State uint8

// Engine states.
const (
	// Running fetches and executes one instruction per Step.
	Running State = iota
	// AwaitingKey is entered by LD Vx, K. Step does nothing until a key
	// goes from released to pressed.
	AwaitingKey
)

func (s State) String() string {
	if s == AwaitingKey {
		return "awaiting-key"
	}
	return "running"
}

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Inst is the instruction that was executed, or nil when nothing was.
	// It is only valid until the next Step.
	Inst *insts.Instruction

	// Waiting is true when the engine is blocked on LD Vx, K.
	Waiting bool

	// Err is set if an error occurred during execution. Errors are fatal:
	// PC is left on the failing instruction.
	Err error
}

// Emulator executes CHIP-8 programs functionally.
type Emulator struct {
	profile Profile
	quirks  Quirks

	regFile *RegFile
	memory  *Memory
	stack   *Stack
	display *Display
	keypad  *Keypad

	decoder *insts.Decoder
	cache   *insts.Cache
	decoded insts.Instruction

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	rng *rand.Rand
	log logr.Logger

	// Execution state
	state            State
	waitReg          uint8
	rom              []byte
	sprite           []byte
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit

	cacheConfig *insts.CacheConfig
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithProfile selects the compatibility profile. The default is
// ProfileModern.
func WithProfile(p Profile) EmulatorOption {
	return func(e *Emulator) {
		e.profile = p
	}
}

// WithRandom sets the source used by RND. Tests use it to get repeatable
// runs.
func WithRandom(src rand.Source) EmulatorOption {
	return func(e *Emulator) {
		e.rng = rand.New(src)
	}
}

// WithLogger sets the logger. Instructions are traced at V(2).
func WithLogger(log logr.Logger) EmulatorOption {
	return func(e *Emulator) {
		e.log = log
	}
}

// WithDecodeCache puts a decoded-instruction cache in front of the decoder.
func WithDecodeCache(config insts.CacheConfig) EmulatorOption {
	return func(e *Emulator) {
		e.cacheConfig = &config
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a new CHIP-8 emulator in power-on state with the font
// loaded and no program.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile: &RegFile{},
		memory:  NewMemory(),
		stack:   &Stack{},
		display: &Display{},
		keypad:  &Keypad{},
		log:     logr.Discard(),
		sprite:  make([]byte, 0, 16),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	e.quirks = e.profile.Quirks()

	var decoderOpts []insts.DecoderOption
	if e.quirks.SysIsNoop {
		decoderOpts = append(decoderOpts, insts.WithSYS())
	}
	if e.quirks.JumpUsesVx {
		decoderOpts = append(decoderOpts, insts.WithJumpVx())
	}
	e.decoder = insts.NewDecoder(decoderOpts...)
	if e.cacheConfig != nil {
		e.cache = insts.NewCache(*e.cacheConfig, e.decoder)
	}

	// Create execution units
	e.alu = NewALU(e.regFile, e.quirks)
	e.lsu = NewLoadStoreUnit(e.regFile, e.memory, e.quirks)
	e.branchUnit = NewBranchUnit(e.regFile, e.stack, e.quirks)

	e.powerOn()

	return e
}

// Profile returns the compatibility profile.
func (e *Emulator) Profile() Profile {
	return e.profile
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// Stack returns the emulator's call stack.
func (e *Emulator) Stack() *Stack {
	return e.stack
}

// DecodeCache returns the decoded-instruction cache, or nil when disabled.
func (e *Emulator) DecodeCache() *insts.Cache {
	return e.cache
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// State returns the execution sub-state.
func (e *Emulator) State() State {
	return e.state
}

// powerOn clears all machine state and installs the font.
func (e *Emulator) powerOn() {
	*e.regFile = RegFile{PC: ProgramStart}
	e.memory.Clear()
	e.memory.LoadBlock(FontBase, Font[:])
	e.stack.Reset()
	e.display.Clear()
	e.keypad.Reset()
	e.state = Running
	e.waitReg = 0
	e.instructionCount = 0
	if e.cache != nil {
		e.cache.Reset()
	}
}

// Load validates rom and, if it fits, resets the machine and copies the
// program to ProgramStart. An oversize ROM fails with ErrROMTooLarge and
// leaves the machine untouched.
func (e *Emulator) Load(rom []byte) error {
	if len(rom) > MaxROMSize {
		return fmt.Errorf("%d bytes, limit %d: %w", len(rom), MaxROMSize, ErrROMTooLarge)
	}

	e.rom = append(e.rom[:0], rom...)
	e.powerOn()
	e.memory.LoadBlock(ProgramStart, e.rom)

	e.log.V(1).Info("rom loaded", "bytes", len(rom), "profile", e.profile.String())
	return nil
}

// Reset returns the machine to power-on state with the last loaded ROM
// reloaded.
func (e *Emulator) Reset() {
	e.powerOn()
	e.memory.LoadBlock(ProgramStart, e.rom)
}

// SetKey sets the state of keypad key index (masked to 4 bits).
func (e *Emulator) SetKey(index uint8, pressed bool) {
	e.keypad.SetKey(index, pressed)
}

// KeyPressed reports whether keypad key index is held.
func (e *Emulator) KeyPressed(index uint8) bool {
	return e.keypad.Pressed(index)
}

// TickTimers decrements the delay and sound timers. The driver calls it at
// 60 Hz.
func (e *Emulator) TickTimers() {
	e.regFile.TickTimers()
}

// SoundActive reports whether the sound timer is running.
func (e *Emulator) SoundActive() bool {
	return e.regFile.ST > 0
}

// Framebuffer returns a snapshot of the display.
func (e *Emulator) Framebuffer() Framebuffer {
	return e.display.Snapshot()
}

// Step executes a single instruction, or polls for a key press while the
// engine is in AwaitingKey.
func (e *Emulator) Step() StepResult {
	// Check instruction limit before executing
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{Err: ErrInstructionLimit}
	}

	if e.state == AwaitingKey {
		return e.pollKey()
	}

	// 1. Fetch
	pc := e.regFile.PC
	word := e.memory.Read16(pc)

	// 2. Decode
	inst := e.decode(pc, word)

	if e.log.V(2).Enabled() {
		e.log.V(2).Info("exec",
			"pc", fmt.Sprintf("0x%03X", pc),
			"opcode", fmt.Sprintf("0x%04X", word),
			"inst", inst.String())
	}

	// 3. Execute
	if err := e.execute(inst); err != nil {
		e.regFile.PC = pc
		return StepResult{Inst: inst, Err: err}
	}

	e.instructionCount++
	return StepResult{Inst: inst, Waiting: e.state == AwaitingKey}
}

func (e *Emulator) decode(pc, word uint16) *insts.Instruction {
	if e.cache != nil {
		return e.cache.Decode(pc, word)
	}
	e.decoder.DecodeInto(word, &e.decoded)
	return &e.decoded
}

// pollKey completes LD Vx, K once a fresh key press has been latched.
func (e *Emulator) pollKey() StepResult {
	key, ok := e.keypad.TakeEdge()
	if !ok {
		return StepResult{Waiting: true}
	}

	if err := e.regFile.Advance(1); err != nil {
		return StepResult{Err: err}
	}
	e.regFile.WriteV(e.waitReg, key)
	e.state = Running

	e.log.V(1).Info("key wait satisfied", "key", key, "register", e.waitReg)
	return StepResult{}
}

// execute dispatches and executes a decoded instruction.
func (e *Emulator) execute(inst *insts.Instruction) error {
	// Check for unknown instruction
	if inst.Op == insts.OpUnknown {
		return &UnknownOpcodeError{Addr: e.regFile.PC, Opcode: inst.Opcode}
	}

	// Execute based on instruction class
	switch inst.Format {
	case insts.FormatSystem:
		e.executeSystem(inst)
	case insts.FormatFlow:
		return e.executeFlow(inst) // PC already updated
	case insts.FormatSkip:
		return e.executeSkip(inst) // PC already updated
	case insts.FormatRegImm:
		e.executeRegImm(inst)
	case insts.FormatALU:
		e.executeALU(inst)
	case insts.FormatIndex:
		e.executeIndex(inst)
	case insts.FormatDraw:
		e.executeDraw(inst)
	case insts.FormatTimer:
		e.executeTimer(inst)
	case insts.FormatKeyWait:
		e.executeKeyWait(inst)
		return nil // PC stays on the instruction
	case insts.FormatMemory:
		e.executeMemory(inst)
	default:
		return fmt.Errorf("unimplemented format %d at PC=0x%03X", inst.Format, e.regFile.PC)
	}

	// Advance PC by one word (for non-branch instructions)
	return e.regFile.Advance(1)
}

func (e *Emulator) executeSystem(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpCLS:
		e.display.Clear()
	case insts.OpSYS:
		// Machine-code routines are not emulated.
	}
}

func (e *Emulator) executeFlow(inst *insts.Instruction) error {
	pc := e.regFile.PC

	switch inst.Op {
	case insts.OpJP:
		if err := e.branchUnit.JP(inst.NNN); err != nil {
			return fmt.Errorf("JP at PC=0x%03X: %w", pc, err)
		}
	case insts.OpCALL:
		if err := e.branchUnit.CALL(inst.NNN); err != nil {
			return fmt.Errorf("CALL at PC=0x%03X: %w", pc, err)
		}
	case insts.OpRET:
		if err := e.branchUnit.RET(); err != nil {
			return fmt.Errorf("RET at PC=0x%03X: %w", pc, err)
		}
	case insts.OpJPV0, insts.OpJPVx:
		if err := e.branchUnit.JPOffset(inst.X, inst.NNN); err != nil {
			return fmt.Errorf("%s at PC=0x%03X: %w", inst, pc, err)
		}
	}
	return nil
}

func (e *Emulator) executeSkip(inst *insts.Instruction) error {
	vx := e.regFile.ReadV(inst.X)
	vy := e.regFile.ReadV(inst.Y)

	var cond bool
	switch inst.Op {
	case insts.OpSEImm:
		cond = vx == inst.NN
	case insts.OpSNEImm:
		cond = vx != inst.NN
	case insts.OpSEReg:
		cond = vx == vy
	case insts.OpSNEReg:
		cond = vx != vy
	case insts.OpSKP:
		cond = e.keypad.Pressed(vx)
	case insts.OpSKNP:
		cond = !e.keypad.Pressed(vx)
	}
	return e.branchUnit.Skip(cond)
}

func (e *Emulator) executeRegImm(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpLDImm:
		e.alu.LDImm(inst.X, inst.NN)
	case insts.OpADDImm:
		e.alu.ADDImm(inst.X, inst.NN)
	case insts.OpRND:
		e.alu.LDImm(inst.X, uint8(e.rng.Uint32())&inst.NN)
	}
}

func (e *Emulator) executeALU(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpLDReg:
		e.alu.LD(inst.X, inst.Y)
	case insts.OpOR:
		e.alu.OR(inst.X, inst.Y)
	case insts.OpAND:
		e.alu.AND(inst.X, inst.Y)
	case insts.OpXOR:
		e.alu.XOR(inst.X, inst.Y)
	case insts.OpADDReg:
		e.alu.ADD(inst.X, inst.Y)
	case insts.OpSUB:
		e.alu.SUB(inst.X, inst.Y)
	case insts.OpSHR:
		e.alu.SHR(inst.X, inst.Y)
	case insts.OpSUBN:
		e.alu.SUBN(inst.X, inst.Y)
	case insts.OpSHL:
		e.alu.SHL(inst.X, inst.Y)
	}
}

func (e *Emulator) executeIndex(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpLDI:
		e.lsu.LDI(inst.NNN)
	case insts.OpADDI:
		e.lsu.ADDI(inst.X)
	case insts.OpLDF:
		e.lsu.LDF(inst.X)
	}
}

func (e *Emulator) executeDraw(inst *insts.Instruction) {
	e.sprite = e.lsu.SpriteRows(inst.N, e.sprite)
	collision := e.display.DrawSprite(
		e.sprite,
		e.regFile.ReadV(inst.X),
		e.regFile.ReadV(inst.Y),
	)
	e.regFile.SetFlag(collision)
}

func (e *Emulator) executeTimer(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpLDVxDT:
		e.regFile.WriteV(inst.X, e.regFile.DT)
	case insts.OpLDDTVx:
		e.regFile.DT = e.regFile.ReadV(inst.X)
	case insts.OpLDSTVx:
		e.regFile.ST = e.regFile.ReadV(inst.X)
	}
}

func (e *Emulator) executeKeyWait(inst *insts.Instruction) {
	e.keypad.ClearEdges()
	e.waitReg = inst.X
	e.state = AwaitingKey
}

func (e *Emulator) executeMemory(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpLDB:
		e.lsu.LDB(inst.X)
	case insts.OpLDIVx:
		e.lsu.Store(inst.X)
	case insts.OpLDVxI:
		e.lsu.Load(inst.X)
	}
}
