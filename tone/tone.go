// Package tone synthesizes reference tones for tuning and for exercising the pitch detector.
package tone

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gopxl/beep"

	pitchdetect "github.com/FreibergVlad/go-pitchdetect"
)

const (
	wavBitDepth    = 16
	wavPCMFormat   = 1
	wavNumChannels = 1
)

// Sine is an endless sine wave streamer with identical left and right channels.
type Sine struct {
	sr        beep.SampleRate
	freq      float64
	amplitude float64
	pos       int
}

// NewSine creates a sine streamer at freq Hz. Amplitude is clamped to [0, 1].
func NewSine(sr beep.SampleRate, freq, amplitude float64) *Sine {
	return &Sine{
		sr:        sr,
		freq:      freq,
		amplitude: math.Max(0, math.Min(1, amplitude)),
	}
}

// ForNote creates a sine streamer at the exact frequency of note n, where 0 is A4.
func ForNote(sr beep.SampleRate, n int, amplitude float64) *Sine {
	return NewSine(sr, pitchdetect.FrequencyFromNoteNumber(n), amplitude)
}

// Frequency returns the frequency of the tone in Hz.
func (s *Sine) Frequency() float64 {
	return s.freq
}

func (s *Sine) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(s.pos) / float64(s.sr)
		sample := s.amplitude * math.Sin(2*math.Pi*s.freq*t)
		samples[i][0] = sample
		samples[i][1] = sample
		s.pos++
	}
	return len(samples), true
}

func (s *Sine) Err() error {
	return nil
}

// Render drains up to n samples from s, averaging both channels. The result is shorter than n only
// if s ends early.
func Render(s beep.Streamer, n int) []float64 {
	out := make([]float64, 0, n)
	buf := make([][2]float64, 512)
	take := beep.Take(n, s)
	for len(out) < n {
		got, ok := take.Stream(buf)
		for _, frame := range buf[:got] {
			out = append(out, (frame[0]+frame[1])/2)
		}
		if !ok {
			break
		}
	}
	return out
}

// WriteWAV renders n samples of s as a 16-bit mono PCM WAV stream.
func WriteWAV(w io.WriteSeeker, s beep.Streamer, sr beep.SampleRate, n int) error {
	samples := Render(s, n)
	if err := s.Err(); err != nil {
		return fmt.Errorf("failed to render tone: %w", err)
	}

	maxValue := math.Exp2(wavBitDepth-1) - 1
	buffer := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: wavNumChannels, SampleRate: int(sr)},
		Data:           make([]int, len(samples)),
		SourceBitDepth: wavBitDepth,
	}
	for i, sample := range samples {
		buffer.Data[i] = int(math.Round(math.Max(-1, math.Min(1, sample)) * maxValue))
	}

	encoder := wav.NewEncoder(w, int(sr), wavBitDepth, wavNumChannels, wavPCMFormat)
	if err := encoder.Write(buffer); err != nil {
		return fmt.Errorf("failed to write PCM data: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return nil
}
