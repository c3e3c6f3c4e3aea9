package audio

import (
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	recorderBitDepth = 16
	// wavFormatPCM is the WAVE_FORMAT_PCM tag.
	wavFormatPCM = 1
)

// Recorder writes the tone to a 16-bit mono WAV stream, one frame of
// samples per SoundFrame call.
type Recorder struct {
	encoder  *wav.Encoder
	closer   io.Closer
	osc      *Oscillator
	perFrame float64
	credit   float64
	buf      *goaudio.IntBuffer
	samples  int
}

// NewRecorder creates a recorder writing to ws at sampleRate with
// frameRate calls to SoundFrame per second.
func NewRecorder(ws io.WriteSeeker, sampleRate, frameRate int) *Recorder {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Recorder{
		encoder:  wav.NewEncoder(ws, sampleRate, recorderBitDepth, 1, wavFormatPCM),
		osc:      NewOscillator(sampleRate, DefaultFrequency, DefaultVolume),
		perFrame: float64(sampleRate) / float64(frameRate),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
			SourceBitDepth: recorderBitDepth,
		},
	}
}

// CreateRecorder creates a WAV file at path. Close finishes and closes it.
func CreateRecorder(path string, sampleRate, frameRate int) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create wav file: %w", err)
	}

	r := NewRecorder(f, sampleRate, frameRate)
	r.closer = f
	return r, nil
}

// SoundFrame appends one frame of tone or silence.
func (r *Recorder) SoundFrame(on bool) error {
	r.credit += r.perFrame
	n := int(r.credit)
	r.credit -= float64(n)

	data := r.buf.Data[:0]
	for i := 0; i < n; i++ {
		v := 0
		if on {
			v = int(math.Round(r.osc.Next() * math.MaxInt16))
		}
		data = append(data, v)
	}
	r.buf.Data = data
	r.samples += n

	if err := r.encoder.Write(r.buf); err != nil {
		return fmt.Errorf("failed to write wav samples: %w", err)
	}
	return nil
}

// Samples returns the number of samples written.
func (r *Recorder) Samples() int {
	return r.samples
}

// Close writes the WAV header and closes the file if the recorder opened it.
func (r *Recorder) Close() error {
	if err := r.encoder.Close(); err != nil {
		return fmt.Errorf("failed to finish wav file: %w", err)
	}
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
