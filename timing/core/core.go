// Package core provides the cycle-budgeted CPU core model.
// It wraps the functional emulator and spends a per-frame machine-cycle
// budget taken from a latency table.
package core

import (
	"github.com/chip8vm/chip8/emu"
	"github.com/chip8vm/chip8/timing/latency"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of machine cycles spent.
	Cycles uint64
	// Instructions is the number of instructions executed.
	Instructions uint64
	// Frames is the number of frames run.
	Frames uint64
	// WaitFrames is the number of frames cut short by a key wait.
	WaitFrames uint64
	// MemoryOps counts executed instructions that access memory through I.
	MemoryOps uint64
	// BranchOps counts executed instructions that set PC themselves.
	BranchOps uint64
}

// Core runs an emulator one frame at a time, executing instructions until
// their summed cost exhausts the frame's cycle budget.
type Core struct {
	emulator *emu.Emulator
	table    *latency.Table

	// debt is the overshoot of the last instruction of the previous frame.
	debt  uint64
	stats Stats
}

// NewCore creates a new Core driving e with instruction costs from table.
func NewCore(e *emu.Emulator, table *latency.Table) *Core {
	return &Core{
		emulator: e,
		table:    table,
	}
}

// RunFrame executes one frame's worth of instructions. It returns the number
// of instructions executed and the first execution error. A key wait ends
// the frame early and forfeits the rest of the budget.
func (c *Core) RunFrame() (uint64, error) {
	return c.RunCycles(c.table.Config().CyclesPerFrame)
}

// RunCycles executes instructions until budget machine cycles are spent.
// An instruction that starts inside the budget always completes; its
// overshoot is charged to the next call.
func (c *Core) RunCycles(budget uint64) (uint64, error) {
	c.stats.Frames++

	if c.debt >= budget {
		c.debt -= budget
		return 0, nil
	}
	remaining := budget - c.debt
	c.debt = 0

	var executed uint64
	for remaining > 0 {
		result := c.emulator.Step()
		if result.Err != nil {
			c.stats.Instructions += executed
			return executed, result.Err
		}

		if result.Inst != nil {
			executed++
			if c.table.IsMemoryOp(result.Inst) {
				c.stats.MemoryOps++
			}
			if c.table.IsBranchOp(result.Inst) {
				c.stats.BranchOps++
			}
			cost := c.table.GetLatency(result.Inst)
			c.stats.Cycles += cost
			if cost >= remaining {
				c.debt = cost - remaining
				remaining = 0
			} else {
				remaining -= cost
			}
		}

		if result.Waiting {
			c.stats.WaitFrames++
			c.debt = 0
			break
		}
	}

	c.stats.Instructions += executed
	return executed, nil
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	return c.stats
}

// Reset clears the core's statistics and cycle debt. The emulator is not
// touched.
func (c *Core) Reset() {
	c.debt = 0
	c.stats = Stats{}
}
