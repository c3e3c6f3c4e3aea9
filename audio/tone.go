// Package audio turns the emulator's sound flag into a tone, either played
// on the host audio device or recorded to a WAV file.
package audio

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"
)

// Tone defaults.
const (
	DefaultSampleRate = 44100
	DefaultFrequency  = 440
	DefaultVolume     = 0.25
)

// Oscillator generates a sine wave one sample at a time. The phase persists
// across calls.
type Oscillator struct {
	step   float64
	phase  float64
	volume float64
}

// NewOscillator creates an oscillator for freq Hz at rate samples per
// second with peak amplitude volume.
func NewOscillator(rate int, freq, volume float64) *Oscillator {
	return &Oscillator{
		step:   2 * math.Pi * freq / float64(rate),
		volume: volume,
	}
}

// Next returns the next sample in [-volume, volume].
func (o *Oscillator) Next() float64 {
	v := math.Sin(o.phase) * o.volume
	o.phase += o.step
	if o.phase >= 2*math.Pi {
		o.phase -= 2 * math.Pi
	}
	return v
}

// Source is an io.Reader of mono float32 little-endian samples that plays
// the tone while switched on and silence otherwise. Read may be called from
// an audio callback goroutine.
type Source struct {
	on  atomic.Bool
	mu  sync.Mutex
	osc *Oscillator
}

// NewSource creates a source at rate samples per second.
func NewSource(rate int) *Source {
	return &Source{osc: NewOscillator(rate, DefaultFrequency, DefaultVolume)}
}

// SetOn switches the tone.
func (s *Source) SetOn(on bool) {
	s.on.Store(on)
}

// On reports whether the tone is switched on.
func (s *Source) On() bool {
	return s.on.Load()
}

// Read fills p with whole float32 samples.
func (s *Source) Read(p []byte) (int, error) {
	n := len(p) / 4 * 4
	on := s.on.Load()

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < n; i += 4 {
		var v float32
		if on {
			v = float32(s.osc.Next())
		}
		binary.LittleEndian.PutUint32(p[i:], math.Float32bits(v))
	}
	return n, nil
}
