// Package pitchdetect estimates the fundamental frequency of a short audio frame with a time-domain
// autocorrelation scan and maps the result onto equal-tempered notes (A4 = 440 Hz).
package pitchdetect

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/FreibergVlad/go-pitchdetect/internal"
	"github.com/FreibergVlad/go-pitchdetect/internal/autocorr"
)

// ErrInvalidInput is wrapped by every error caused by a malformed frame, sample rate or Params.
var ErrInvalidInput = errors.New("invalid input")

type logger interface {
	Debug(msg string, args ...any)
}

type (
	// Params defines configuration options for the autocorrelation pitch detector.
	Params struct {
		FrameSize         int     // Expected frame length in samples; 0 accepts any length >= 2.
		SampleRate        float64 // Audio sampling rate in Hz.
		ShouldInterpolate bool    // Whether to refine the detected period between lag bins.
		RMSThreshold      float64 // Frames quieter than this RMS are reported as NoPitch.
		PeakThreshold     float64 // Minimum correlation of a candidate period.
		MinCorrelation    float64 // Minimum correlation accepted when the scan never passes a peak.
		NoteNaming        string  // Note name table, "A" (A-anchored) or "C" (C-anchored).
		Logger            logger  // Optional logger for debug messages.
	}
	// PitchDetector turns frames of samples into pitch estimates. It holds no per-call state and
	// is safe for concurrent use.
	PitchDetector struct {
		params  Params
		scanner *autocorr.Scanner
		naming  noteTable
	}
)

var DefaultParams = Params{
	FrameSize:         0,
	SampleRate:        44100,
	ShouldInterpolate: true,
	RMSThreshold:      internal.DefaultRMSThreshold,
	PeakThreshold:     autocorr.DefaultPeakThreshold,
	MinCorrelation:    autocorr.DefaultMinCorrelation,
	NoteNaming:        "A",
}

// New creates a new PitchDetector instance using the provided Params.
func New(params Params) (*PitchDetector, error) {
	if !validSampleRate(params.SampleRate) {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %v", ErrInvalidInput, params.SampleRate)
	}
	if params.FrameSize < 0 || params.FrameSize == 1 {
		return nil, fmt.Errorf("%w: frame size must be 0 or at least 2, got %d", ErrInvalidInput, params.FrameSize)
	}
	if params.RMSThreshold < 0 || math.IsNaN(params.RMSThreshold) {
		return nil, fmt.Errorf("%w: RMS threshold must not be negative, got %v", ErrInvalidInput, params.RMSThreshold)
	}

	naming, ok := noteNamings[strings.ToUpper(params.NoteNaming)]
	if !ok {
		return nil, fmt.Errorf(
			"%w: invalid 'noteNaming': %s; available note namings: %+q",
			ErrInvalidInput,
			params.NoteNaming,
			availableNoteNamings,
		)
	}

	scanner, err := autocorr.New(
		autocorr.Params{
			PeakThreshold:     params.PeakThreshold,
			MinCorrelation:    params.MinCorrelation,
			ShouldInterpolate: params.ShouldInterpolate,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize autocorrelation scanner: %w", ErrInvalidInput, err)
	}

	return &PitchDetector{params: params, scanner: scanner, naming: naming}, nil
}

// NewWithDefaultParams creates a PitchDetector with built-in default settings.
func NewWithDefaultParams() (*PitchDetector, error) {
	return New(DefaultParams)
}

// EstimatePitch runs the detector with default thresholds on samples captured at sampleRate.
func EstimatePitch(samples []float64, sampleRate float64) (Estimate, error) {
	params := DefaultParams
	params.SampleRate = sampleRate
	pd, err := New(params)
	if err != nil {
		return Estimate{}, err
	}
	return pd.DetectFromFrame(samples)
}

// Params returns the configuration the detector was created with.
func (pd *PitchDetector) Params() Params {
	return pd.params
}

// NoteName returns the name of note n using the detector's note naming table.
func (pd *PitchDetector) NoteName(n int) string {
	return pd.naming.name(n)
}

// NoteFromFrequency maps a positive frequency onto the nearest note using the detector's note naming
// table.
func (pd *PitchDetector) NoteFromFrequency(frequency float64) Note {
	return pd.naming.note(frequency)
}

// DetectFromFrame estimates the pitch of frame. The frame is only read, never retained or modified.
// A frame that is too quiet or has no clear periodicity yields NoPitch with a nil error; an empty,
// single-sample or wrongly sized frame yields an error wrapping ErrInvalidInput.
func (pd *PitchDetector) DetectFromFrame(frame []float64) (Estimate, error) {
	if len(frame) < 2 {
		return NoPitch, fmt.Errorf("%w: frame must hold at least 2 samples, got %d", ErrInvalidInput, len(frame))
	}
	if pd.params.FrameSize != 0 && len(frame) != pd.params.FrameSize {
		return NoPitch, fmt.Errorf(
			"%w: invalid frame size: expected %d, got %d", ErrInvalidInput, pd.params.FrameSize, len(frame),
		)
	}

	rms, ok := internal.IsAudible(frame, pd.params.RMSThreshold)
	if !ok {
		pd.debug("frame below RMS threshold", "rms", rms, "threshold", pd.params.RMSThreshold)
		return Estimate{RMS: rms}, nil
	}

	period, ok := pd.scanner.FindPeriod(frame)
	if !ok {
		pd.debug("no periodicity found", "rms", rms, "frameSize", len(frame))
		return Estimate{RMS: rms}, nil
	}

	frequency := pd.params.SampleRate / period.Lag
	pd.debug(
		"period detected",
		"lag", period.Lag,
		"refined", period.Refined,
		"correlation", period.Correlation,
		"frequency", frequency,
	)

	return Estimate{
		Detected:    true,
		Frequency:   frequency,
		Note:        pd.naming.note(frequency),
		Correlation: period.Correlation,
		RMS:         rms,
	}, nil
}

func (pd *PitchDetector) debug(msg string, args ...any) {
	if pd.params.Logger != nil {
		pd.params.Logger.Debug(msg, args...)
	}
}

func validSampleRate(sampleRate float64) bool {
	return sampleRate > 0 && !math.IsInf(sampleRate, 1)
}
