package autocorr

import (
	"fmt"
	"math"
)

const (
	DefaultPeakThreshold  = 0.9
	DefaultMinCorrelation = 0.01

	// refinementScale stretches the neighbour slope into a sub-sample lag correction.
	refinementScale = 8
)

type Params struct {
	PeakThreshold     float64 // Minimum correlation for a lag to count as a candidate peak.
	MinCorrelation    float64 // Minimum best correlation accepted when the scan never short-circuits.
	ShouldInterpolate bool    // Whether to refine the peak lag using neighbouring correlations.
}

// Period is the result of a successful scan.
type Period struct {
	Lag         float64 // Period length in samples, fractional when refined.
	Correlation float64 // Correlation of the best candidate lag.
	Refined     bool    // Whether Lag went through sub-sample refinement.
}

type Scanner struct {
	params Params
}

func New(params Params) (*Scanner, error) {
	if !(params.PeakThreshold > 0 && params.PeakThreshold <= 1) {
		return nil, fmt.Errorf("PeakThreshold must be in (0, 1], got %v", params.PeakThreshold)
	}
	if !(params.MinCorrelation >= 0 && params.MinCorrelation < 1) {
		return nil, fmt.Errorf("MinCorrelation must be in [0, 1), got %v", params.MinCorrelation)
	}
	return &Scanner{params: params}, nil
}

// Correlation returns 1 minus the mean absolute difference between the first half of frame and
// the same span shifted by offset. Identical spans score 1. The caller guarantees
// offset < len(frame)/2.
func Correlation(frame []float64, offset int) float64 {
	half := len(frame) / 2
	sum := 0.0
	for i := range half {
		sum += math.Abs(frame[i] - frame[i+offset])
	}
	return 1 - sum/float64(half)
}

// FindPeriod scans lags 0..len(frame)/2-1 in increasing order and returns the period at the
// first correlation peak above the threshold. The scan stops as soon as the correlation stops
// rising after a candidate was seen, so later harmonics of the period are never considered.
func (s *Scanner) FindPeriod(frame []float64) (Period, bool) {
	half := len(frame) / 2
	if half == 0 {
		return Period{}, false
	}

	correlations := make([]float64, half)
	bestOffset, bestCorrelation := -1, 0.0
	lastCorrelation := 1.0
	found := false

	for offset := 0; offset < half; offset++ {
		correlation := Correlation(frame, offset)
		correlations[offset] = correlation

		if correlation > s.params.PeakThreshold && correlation > lastCorrelation {
			found = true
			if correlation > bestCorrelation {
				bestCorrelation = correlation
				bestOffset = offset
			}
		} else if found {
			// lastCorrelation starts at 1 and lag 0 always scores 1, so a candidate needs a
			// preceding lag: bestOffset >= 1 and bestOffset+1 <= offset are both computed.
			if !s.params.ShouldInterpolate {
				return Period{Lag: float64(bestOffset), Correlation: bestCorrelation}, true
			}
			return s.refine(correlations, bestOffset)
		}
		lastCorrelation = correlation
	}

	if bestCorrelation > s.params.MinCorrelation {
		return Period{Lag: float64(bestOffset), Correlation: bestCorrelation}, true
	}
	return Period{}, false
}

func (s *Scanner) refine(correlations []float64, bestOffset int) (Period, bool) {
	best := correlations[bestOffset]
	shift := (correlations[bestOffset+1] - correlations[bestOffset-1]) / best
	lag := float64(bestOffset) + refinementScale*shift
	if math.IsNaN(lag) || math.IsInf(lag, 0) || lag <= 0 {
		return Period{}, false
	}
	return Period{Lag: lag, Correlation: best, Refined: true}, true
}
