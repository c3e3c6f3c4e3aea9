package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds instruction costs in COSMAC VIP machine cycles.
// Values are estimates of the original interpreter's execution times.
type TimingConfig struct {
	// CyclesPerFrame is the machine-cycle budget of one 60 Hz frame.
	// The VIP runs 1.76 MHz / 8 clocks per cycle. Default: 3668 cycles.
	CyclesPerFrame uint64 `json:"cycles_per_frame"`

	// FetchCycles is the fetch and dispatch overhead paid by every
	// instruction. Default: 40 cycles.
	FetchCycles uint64 `json:"fetch_cycles"`

	// SysCycles is the cost of 0NNN. Default: 12 cycles.
	SysCycles uint64 `json:"sys_cycles"`

	// ClearCycles is the cost of 00E0. Default: 3078 cycles.
	ClearCycles uint64 `json:"clear_cycles"`

	// ReturnCycles is the cost of 00EE. Default: 10 cycles.
	ReturnCycles uint64 `json:"return_cycles"`

	// JumpCycles is the cost of 1NNN. Default: 12 cycles.
	JumpCycles uint64 `json:"jump_cycles"`

	// CallCycles is the cost of 2NNN. Default: 26 cycles.
	CallCycles uint64 `json:"call_cycles"`

	// SkipCycles is the cost of the conditional skips. Default: 14 cycles.
	SkipCycles uint64 `json:"skip_cycles"`

	// LoadImmCycles is the cost of 6XNN. Default: 6 cycles.
	LoadImmCycles uint64 `json:"load_imm_cycles"`

	// AddImmCycles is the cost of 7XNN. Default: 10 cycles.
	AddImmCycles uint64 `json:"add_imm_cycles"`

	// ALUCycles is the cost of the 8XY_ group. Default: 44 cycles.
	ALUCycles uint64 `json:"alu_cycles"`

	// IndexCycles is the cost of ANNN. Default: 12 cycles.
	IndexCycles uint64 `json:"index_cycles"`

	// JumpOffsetCycles is the cost of BNNN. Default: 22 cycles.
	JumpOffsetCycles uint64 `json:"jump_offset_cycles"`

	// RandomCycles is the cost of CXNN. Default: 36 cycles.
	RandomCycles uint64 `json:"random_cycles"`

	// DrawBaseCycles is the fixed cost of DXYN. Default: 22 cycles.
	DrawBaseCycles uint64 `json:"draw_base_cycles"`

	// DrawRowCycles is the additional cost per sprite row. Default: 68 cycles.
	DrawRowCycles uint64 `json:"draw_row_cycles"`

	// KeyCycles is the cost of EX9E and EXA1. Default: 14 cycles.
	KeyCycles uint64 `json:"key_cycles"`

	// TimerCycles is the cost of FX07, FX15 and FX18. Default: 10 cycles.
	TimerCycles uint64 `json:"timer_cycles"`

	// AddIndexCycles is the cost of FX1E. Default: 16 cycles.
	AddIndexCycles uint64 `json:"add_index_cycles"`

	// FontCycles is the cost of FX29. Default: 16 cycles.
	FontCycles uint64 `json:"font_cycles"`

	// BCDCycles is the cost of FX33. Default: 84 cycles.
	BCDCycles uint64 `json:"bcd_cycles"`

	// MemoryBaseCycles is the fixed cost of FX55 and FX65. Default: 14 cycles.
	MemoryBaseCycles uint64 `json:"memory_base_cycles"`

	// MemoryRegCycles is the additional cost per register transferred by
	// FX55 and FX65. Default: 14 cycles.
	MemoryRegCycles uint64 `json:"memory_reg_cycles"`
}

// DefaultTimingConfig returns a TimingConfig with COSMAC VIP default values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		CyclesPerFrame:   3668,
		FetchCycles:      40,
		SysCycles:        12,
		ClearCycles:      3078,
		ReturnCycles:     10,
		JumpCycles:       12,
		CallCycles:       26,
		SkipCycles:       14,
		LoadImmCycles:    6,
		AddImmCycles:     10,
		ALUCycles:        44,
		IndexCycles:      12,
		JumpOffsetCycles: 22,
		RandomCycles:     36,
		DrawBaseCycles:   22,
		DrawRowCycles:    68,
		KeyCycles:        14,
		TimerCycles:      10,
		AddIndexCycles:   16,
		FontCycles:       16,
		BCDCycles:        84,
		MemoryBaseCycles: 14,
		MemoryRegCycles:  14,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that the frame budget and fetch overhead are non-zero, so
// every instruction costs at least one cycle and a frame runs at least one
// instruction.
func (c *TimingConfig) Validate() error {
	if c.CyclesPerFrame == 0 {
		return fmt.Errorf("cycles_per_frame must be > 0")
	}
	if c.FetchCycles == 0 {
		return fmt.Errorf("fetch_cycles must be > 0")
	}
	if c.FetchCycles > c.CyclesPerFrame {
		return fmt.Errorf("fetch_cycles must be <= cycles_per_frame")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
