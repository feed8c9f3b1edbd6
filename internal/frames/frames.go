// Package frames turns recorded audio into fixed-size analysis windows.
package frames

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"math"

	"github.com/go-audio/wav"
)

// Audio is decoded mono audio with samples normalized to [-1, 1].
type Audio struct {
	Samples    []float64
	SampleRate float64
}

// DecodeWAV reads a whole PCM WAV stream, averaging all channels into one.
func DecodeWAV(r io.ReadSeeker) (*Audio, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		if err := decoder.Err(); err != nil {
			return nil, fmt.Errorf("invalid WAV file: %w", err)
		}
		return nil, errors.New("invalid WAV file")
	}

	buffer, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode PCM data: %w", err)
	}

	channels := int(decoder.NumChans)
	if buffer.Format != nil && buffer.Format.NumChannels > 0 {
		channels = buffer.Format.NumChannels
	}
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}

	bitDepth := buffer.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(decoder.BitDepth)
	}
	if bitDepth <= 0 {
		return nil, fmt.Errorf("invalid bit depth: %d", bitDepth)
	}
	scale := math.Exp2(float64(bitDepth - 1))
	// 8-bit PCM is unsigned with silence at 128.
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}

	samples := make([]float64, len(buffer.Data)/channels)
	for i := range samples {
		sum := 0
		for c := range channels {
			sum += buffer.Data[i*channels+c] - offset
		}
		samples[i] = float64(sum) / float64(channels) / scale
	}

	return &Audio{Samples: samples, SampleRate: float64(decoder.SampleRate)}, nil
}

// Windows yields every complete window of size samples, starting every hop samples, together with
// the index of its first sample. A trailing window shorter than size is skipped.
func Windows(samples []float64, size, hop int) iter.Seq2[int, []float64] {
	return func(yield func(int, []float64) bool) {
		if size <= 0 || hop <= 0 {
			return
		}
		for start := 0; start+size <= len(samples); start += hop {
			if !yield(start, samples[start:start+size:start+size]) {
				return
			}
		}
	}
}
