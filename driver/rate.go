package driver

import "github.com/chip8vm/chip8/emu"

// ratePacer runs a fixed number of instructions per second, spread over
// frames. The fractional remainder carries over so a rate that does not
// divide by FrameRate is still met on average.
type ratePacer struct {
	emulator *emu.Emulator
	perFrame float64
	credit   float64
}

func newRatePacer(e *emu.Emulator, ips int) *ratePacer {
	return &ratePacer{
		emulator: e,
		perFrame: float64(ips) / FrameRate,
	}
}

// RunFrame executes this frame's share of instructions. A key wait ends the
// frame early and drops the remaining share.
func (p *ratePacer) RunFrame() (uint64, error) {
	p.credit += p.perFrame
	budget := int(p.credit)
	p.credit -= float64(budget)

	var executed uint64
	for i := 0; i < budget; i++ {
		result := p.emulator.Step()
		if result.Err != nil {
			return executed, result.Err
		}
		if result.Inst != nil {
			executed++
		}
		if result.Waiting {
			break
		}
	}
	return executed, nil
}
