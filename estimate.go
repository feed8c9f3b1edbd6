package pitchdetect

import "fmt"

// Estimate is the outcome of analyzing one frame. When Detected is false the frame was either too
// quiet or not periodic enough, and only RMS is meaningful.
type Estimate struct {
	Detected    bool
	Frequency   float64 // Fundamental frequency in Hz, > 0 when Detected.
	Note        Note    // Derived from Frequency.
	Correlation float64 // Correlation of the chosen period, up to 1.
	RMS         float64 // Root mean square of the frame.
}

// NoPitch is the estimate for a frame without a usable pitch.
var NoPitch = Estimate{}

func (e Estimate) String() string {
	if !e.Detected {
		return "--"
	}
	return fmt.Sprintf("%.2f Hz %s", e.Frequency, e.Note)
}
