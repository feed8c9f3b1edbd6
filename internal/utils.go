package internal

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultRMSThreshold is the RMS level below which a frame is treated as silence.
const DefaultRMSThreshold = 0.01

// RMS calculates the root mean square of the frame. An empty frame has RMS 0.
func RMS(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(frame, frame) / float64(len(frame)))
}

// IsAudible reports whether the frame carries enough energy to be analyzed, along with its RMS.
// Frames whose RMS is strictly below threshold are rejected.
func IsAudible(frame []float64, threshold float64) (rms float64, ok bool) {
	rms = RMS(frame)
	return rms, rms >= threshold
}
