package termfe

// Type queues characters as if they had just been read from the terminal.
func (f *Frontend) Type(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runes = append(f.runes, []rune(s)...)
}
