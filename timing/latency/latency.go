// Package latency provides CHIP-8 instruction cost models for cycle-paced
// execution.
//
// The cost values approximate the COSMAC VIP interpreter and can be
// configured via TimingConfig.
package latency

import (
	"github.com/chip8vm/chip8/insts"
)

// Table provides instruction cost lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new cost table with default VIP timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new cost table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the cost in machine cycles of the given instruction,
// including the fetch overhead. Operand-dependent costs (sprite height,
// register count) are resolved from the instruction fields.
func (t *Table) GetLatency(inst *insts.Instruction) uint64 {
	c := t.config
	if inst == nil {
		return c.FetchCycles
	}

	return c.FetchCycles + t.execCycles(inst)
}

func (t *Table) execCycles(inst *insts.Instruction) uint64 {
	c := t.config

	switch inst.Op {
	case insts.OpSYS:
		return c.SysCycles
	case insts.OpCLS:
		return c.ClearCycles
	case insts.OpRET:
		return c.ReturnCycles
	case insts.OpJP:
		return c.JumpCycles
	case insts.OpCALL:
		return c.CallCycles
	case insts.OpSEImm, insts.OpSNEImm, insts.OpSEReg, insts.OpSNEReg:
		return c.SkipCycles
	case insts.OpLDImm:
		return c.LoadImmCycles
	case insts.OpADDImm:
		return c.AddImmCycles
	case insts.OpLDI:
		return c.IndexCycles
	case insts.OpJPV0, insts.OpJPVx:
		return c.JumpOffsetCycles
	case insts.OpRND:
		return c.RandomCycles
	case insts.OpDRW:
		return c.DrawBaseCycles + uint64(inst.N)*c.DrawRowCycles
	case insts.OpSKP, insts.OpSKNP:
		return c.KeyCycles
	case insts.OpLDVxDT, insts.OpLDDTVx, insts.OpLDSTVx, insts.OpLDVxK:
		return c.TimerCycles
	case insts.OpADDI:
		return c.AddIndexCycles
	case insts.OpLDF:
		return c.FontCycles
	case insts.OpLDB:
		return c.BCDCycles
	case insts.OpLDIVx, insts.OpLDVxI:
		return c.MemoryBaseCycles + uint64(inst.X+1)*c.MemoryRegCycles
	}

	if inst.Format == insts.FormatALU {
		return c.ALUCycles
	}
	return 0
}

// IsMemoryOp returns true if the instruction reads or writes memory
// through I.
func (t *Table) IsMemoryOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Format == insts.FormatMemory || inst.Op == insts.OpDRW
}

// IsBranchOp returns true if the instruction sets PC itself.
func (t *Table) IsBranchOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.IsControlFlow()
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
