package emu

// KeyCount is the number of keys on the hexadecimal keypad.
const KeyCount = 16

// Keypad holds the state of the 16 keys. Besides the level of each key it
// latches released-to-pressed transitions so a wait-for-key instruction can
// tell a fresh press from a key that was already held.
type Keypad struct {
	keys  [KeyCount]bool
	edges uint16
}

// SetKey sets the state of key index (masked to 4 bits).
func (k *Keypad) SetKey(index uint8, pressed bool) {
	index &= 0xF
	if pressed && !k.keys[index] {
		k.edges |= 1 << index
	}
	k.keys[index] = pressed
}

// Pressed reports whether key index (masked to 4 bits) is held.
func (k *Keypad) Pressed(index uint8) bool {
	return k.keys[index&0xF]
}

// ClearEdges forgets every latched press.
func (k *Keypad) ClearEdges() {
	k.edges = 0
}

// TakeEdge returns the lowest key pressed since the last ClearEdges or
// TakeEdge and clears all latched presses.
func (k *Keypad) TakeEdge() (uint8, bool) {
	if k.edges == 0 {
		return 0, false
	}
	for i := uint8(0); i < KeyCount; i++ {
		if k.edges&(1<<i) != 0 {
			k.edges = 0
			return i, true
		}
	}
	return 0, false
}

// Reset releases every key.
func (k *Keypad) Reset() {
	*k = Keypad{}
}
