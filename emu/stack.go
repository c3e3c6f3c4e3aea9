package emu

// StackDepth is the number of return addresses the stack holds, matching
// the COSMAC VIP interpreter.
const StackDepth = 16

// Stack holds subroutine return addresses.
type Stack struct {
	entries [StackDepth]uint16
	sp      int
}

// Push stores a return address. It fails with ErrStackOverflow when the
// stack is full and leaves the stack unchanged.
func (s *Stack) Push(addr uint16) error {
	if s.sp >= StackDepth {
		return ErrStackOverflow
	}
	s.entries[s.sp] = addr
	s.sp++
	return nil
}

// Pop removes and returns the most recent return address. It fails with
// ErrStackUnderflow when the stack is empty.
func (s *Stack) Pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	s.sp--
	return s.entries[s.sp], nil
}

// Depth returns the number of stored return addresses.
func (s *Stack) Depth() int {
	return s.sp
}

// Peek returns the return address at depth i (0 is the oldest).
func (s *Stack) Peek(i int) (uint16, bool) {
	if i < 0 || i >= s.sp {
		return 0, false
	}
	return s.entries[i], true
}

// Reset empties the stack.
func (s *Stack) Reset() {
	*s = Stack{}
}
