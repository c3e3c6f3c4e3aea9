// Package keymap maps host keyboard keys onto the CHIP-8 hexadecimal keypad.
//
// Keys are identified by name ("1", "Q", "Space"), matched without regard
// to case, so every frontend only has to turn its native key codes into
// names.
package keymap

import (
	"fmt"
	"sort"
	"strings"
)

// QuitKey is the host key that ends a session in every frontend.
const QuitKey = "Space"

// Binding ties a host key name to a keypad index.
type Binding struct {
	Name string
	Key  uint8
}

// Layout is a set of bindings.
type Layout struct {
	keys map[string]uint8
}

// NewLayout creates an empty layout.
func NewLayout() *Layout {
	return &Layout{keys: make(map[string]uint8)}
}

// QWERTY returns the conventional layout: the left four columns of a QWERTY
// keyboard stand in for the COSMAC VIP keypad.
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
func QWERTY() *Layout {
	l := NewLayout()
	rows := [4][4]struct {
		name string
		key  uint8
	}{
		{{"1", 0x1}, {"2", 0x2}, {"3", 0x3}, {"4", 0xC}},
		{{"Q", 0x4}, {"W", 0x5}, {"E", 0x6}, {"R", 0xD}},
		{{"A", 0x7}, {"S", 0x8}, {"D", 0x9}, {"F", 0xE}},
		{{"Z", 0xA}, {"X", 0x0}, {"C", 0xB}, {"V", 0xF}},
	}
	for _, row := range rows {
		for _, b := range row {
			_ = l.Bind(b.name, b.key)
		}
	}
	return l
}

// Bind maps name to keypad index key, replacing any previous binding.
func (l *Layout) Bind(name string, key uint8) error {
	if key > 0xF {
		return fmt.Errorf("keypad index %#x out of range", key)
	}
	if strings.EqualFold(name, QuitKey) {
		return fmt.Errorf("%s is reserved for quit", QuitKey)
	}
	l.keys[normalize(name)] = key
	return nil
}

// Lookup returns the keypad index bound to the host key name.
func (l *Layout) Lookup(name string) (uint8, bool) {
	key, ok := l.keys[normalize(name)]
	return key, ok
}

// IsQuit reports whether name is the quit key.
func IsQuit(name string) bool {
	return strings.EqualFold(name, QuitKey)
}

// Bindings returns every binding ordered by keypad index.
func (l *Layout) Bindings() []Binding {
	out := make([]Binding, 0, len(l.keys))
	for name, key := range l.keys {
		out = append(out, Binding{Name: name, Key: key})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Parse builds a layout from "name=hex" pairs separated by commas, for
// example "1=1,2=2,Up=5".
func Parse(s string) (*Layout, error) {
	l := NewLayout()
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, hex, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("binding %q: want name=key", pair)
		}
		var key uint8
		if _, err := fmt.Sscanf(strings.TrimSpace(hex), "%x", &key); err != nil {
			return nil, fmt.Errorf("binding %q: %w", pair, err)
		}
		if err := l.Bind(strings.TrimSpace(name), key); err != nil {
			return nil, fmt.Errorf("binding %q: %w", pair, err)
		}
	}
	return l, nil
}

func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
