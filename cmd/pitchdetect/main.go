// Command pitchdetect estimates the pitch of a WAV recording window by window and writes reference
// tones.
//
// Usage:
//
//	pitchdetect detect [-frame 2048] [-hop 1024] [-naming A|C] [-no-interp] [-debug] file.wav
//	pitchdetect tone [-note 0 | -freq 440] [-duration 2s] [-rate 44100] [-amp 0.5] -o out.wav
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/gopxl/beep"
	"gonum.org/v1/gonum/stat"

	pitchdetect "github.com/FreibergVlad/go-pitchdetect"
	"github.com/FreibergVlad/go-pitchdetect/internal/frames"
	"github.com/FreibergVlad/go-pitchdetect/tone"
)

var logger = slog.Default()

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "detect":
		err = runDetect(os.Args[2:], os.Stdout)
	case "tone":
		err = runTone(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		logger.Error("pitchdetect failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  pitchdetect detect [flags] file.wav")
	fmt.Fprintln(w, "  pitchdetect tone [flags] -o out.wav")
}

func runDetect(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	frameSize := fs.Int("frame", 2048, "analysis window length in samples")
	hop := fs.Int("hop", 1024, "distance between window starts in samples")
	naming := fs.String("naming", pitchdetect.DefaultParams.NoteNaming, "note name table: A or C")
	noInterp := fs.Bool("no-interp", false, "disable sub-sample period refinement")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one WAV file, got %d arguments", fs.NArg())
	}
	if *frameSize < 2 {
		return fmt.Errorf("frame must be at least 2 samples, got %d", *frameSize)
	}
	initLogger(*debug)

	file, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer file.Close()

	recording, err := frames.DecodeWAV(file)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", fs.Arg(0), err)
	}
	logger.Debug(
		"decoded recording",
		"file", fs.Arg(0),
		"samples", len(recording.Samples),
		"sampleRate", recording.SampleRate,
	)

	params := pitchdetect.DefaultParams
	params.FrameSize = *frameSize
	params.SampleRate = recording.SampleRate
	params.ShouldInterpolate = !*noInterp
	params.NoteNaming = *naming
	params.Logger = logger
	pd, err := pitchdetect.New(params)
	if err != nil {
		return fmt.Errorf("error creating pitch detector: %w", err)
	}

	estimates, err := detectAll(pd, recording, *frameSize, *hop, out)
	if err != nil {
		return err
	}
	writeSummary(out, pd, summarize(estimates))
	return nil
}

func detectAll(pd *pitchdetect.PitchDetector, recording *frames.Audio, size, hop int, out io.Writer) ([]pitchdetect.Estimate, error) {
	if hop <= 0 {
		return nil, fmt.Errorf("hop must be positive, got %d", hop)
	}
	if len(recording.Samples) < size {
		return nil, fmt.Errorf("recording holds %d samples, shorter than one %d sample window", len(recording.Samples), size)
	}

	var estimates []pitchdetect.Estimate
	for start, window := range frames.Windows(recording.Samples, size, hop) {
		estimate, err := pd.DetectFromFrame(window)
		if err != nil {
			return nil, fmt.Errorf("error detecting pitch at sample %d: %w", start, err)
		}
		at := time.Duration(float64(start) / recording.SampleRate * float64(time.Second))
		fmt.Fprintf(out, "%10s  %s\n", at.Round(time.Millisecond), estimate)
		estimates = append(estimates, estimate)
	}
	return estimates, nil
}

type summary struct {
	windows  int
	detected int
	median   float64
	mean     float64
}

func summarize(estimates []pitchdetect.Estimate) summary {
	s := summary{windows: len(estimates)}
	var frequencies []float64
	for _, estimate := range estimates {
		if estimate.Detected {
			frequencies = append(frequencies, estimate.Frequency)
		}
	}
	s.detected = len(frequencies)
	if s.detected == 0 {
		return s
	}
	slices.Sort(frequencies)
	s.median = stat.Quantile(0.5, stat.Empirical, frequencies, nil)
	s.mean = stat.Mean(frequencies, nil)
	return s
}

func writeSummary(out io.Writer, pd *pitchdetect.PitchDetector, s summary) {
	fmt.Fprintf(out, "windows: %d, pitched: %d\n", s.windows, s.detected)
	if s.detected == 0 {
		fmt.Fprintln(out, "no pitch detected")
		return
	}
	fmt.Fprintf(out, "median: %.2f Hz %s, mean: %.2f Hz\n", s.median, pd.NoteFromFrequency(s.median), s.mean)
}

func runTone(args []string) error {
	fs := flag.NewFlagSet("tone", flag.ContinueOnError)
	note := fs.Int("note", 0, "note number relative to A4")
	freq := fs.Float64("freq", 0, "tone frequency in Hz, overrides -note")
	duration := fs.Duration("duration", 2*time.Second, "tone length")
	rate := fs.Int("rate", 44100, "sample rate in Hz")
	amp := fs.Float64("amp", 0.5, "amplitude in [0, 1]")
	output := fs.String("o", "", "output WAV file")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	initLogger(*debug)

	if *output == "" {
		return fmt.Errorf("missing output file (-o)")
	}
	if *rate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", *rate)
	}
	if *duration <= 0 {
		return fmt.Errorf("duration must be positive, got %s", *duration)
	}

	sr := beep.SampleRate(*rate)
	sine := tone.ForNote(sr, *note, *amp)
	if *freq > 0 {
		sine = tone.NewSine(sr, *freq, *amp)
	}

	file, err := os.Create(*output)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := tone.WriteWAV(file, sine, sr, sr.N(*duration)); err != nil {
		return fmt.Errorf("error writing %s: %w", *output, err)
	}
	logger.Info(
		"wrote reference tone",
		"file", *output,
		"frequency", sine.Frequency(),
		"note", pitchdetect.NoteFromFrequency(sine.Frequency()).String(),
		"duration", *duration,
	)
	return file.Close()
}
