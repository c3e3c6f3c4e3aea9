package audio

import (
	"fmt"

	"github.com/ebitengine/oto/v3"
)

// Beeper plays the tone on the host audio device.
type Beeper struct {
	ctx    *oto.Context
	player *oto.Player
	source *Source
}

// NewBeeper opens the default audio device at sampleRate and starts a
// silent stream.
func NewBeeper(sampleRate int) (*Beeper, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	b := &Beeper{
		ctx:    ctx,
		source: NewSource(sampleRate),
	}
	b.player = ctx.NewPlayer(b.source)
	b.player.Play()

	return b, nil
}

// SoundFrame switches the tone for the coming frame.
func (b *Beeper) SoundFrame(on bool) error {
	b.source.SetOn(on)
	return nil
}

// Close stops playback.
func (b *Beeper) Close() error {
	if b.player == nil {
		return nil
	}
	err := b.player.Close()
	b.player = nil
	return err
}
