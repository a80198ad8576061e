package waveform

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/RenatoCabral2022/wavefactory/internal/metrics"
)

const (
	SampleRate      = 44100
	MaxAmplitude    = 1 << 13
	DefaultDuration = 5.0
)

// Factory synthesizes waveforms over a fixed time axis. It is immutable after
// New returns and safe for concurrent use.
type Factory struct {
	duration float64
	timeline []float64
	logger   *zap.Logger
}

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the logger used for inspection reports and warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a factory whose waveforms last durationSec seconds.
func New(durationSec float64, opts ...Option) (*Factory, error) {
	if math.IsNaN(durationSec) || math.IsInf(durationSec, 0) || durationSec <= 0 {
		return nil, fmt.Errorf("%w: duration must be a positive number of seconds, got %v",
			ErrInvalidConfiguration, durationSec)
	}
	n := int(math.Round(SampleRate * durationSec))
	if n < 1 {
		return nil, fmt.Errorf("%w: duration %vs is shorter than one sample",
			ErrInvalidConfiguration, durationSec)
	}

	f := &Factory{
		duration: durationSec,
		timeline: linspace(0, durationSec, n),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Default creates a factory with DefaultDuration.
func Default(opts ...Option) *Factory {
	f, _ := New(DefaultDuration, opts...)
	return f
}

// linspace returns n evenly spaced values from start to stop inclusive.
func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// Duration returns the configured duration in seconds.
func (f *Factory) Duration() float64 { return f.duration }

// SampleCount returns the length of every synthesized waveform.
func (f *Factory) SampleCount() int { return len(f.timeline) }

// Timeline returns a copy of the time axis.
func (f *Factory) Timeline() []float64 {
	out := make([]float64, len(f.timeline))
	copy(out, f.timeline)
	return out
}

// Sine returns MaxAmplitude * sin(2*pi*frequency*t).
func (f *Factory) Sine(frequency float64) Waveform {
	w := f.synthesize(func(t float64) float64 {
		return MaxAmplitude * math.Sin(2*math.Pi*frequency*t)
	})
	f.observe(KindSine, len(w.Samples))
	return w
}

// Triangle returns a triangle wave built from arcsin(sin(x)), shifted a
// quarter period so it starts at -MaxAmplitude.
func (f *Factory) Triangle(frequency float64) Waveform {
	const scale = 2 * MaxAmplitude / math.Pi
	w := f.synthesize(func(t float64) float64 {
		phase := t*frequency - 0.25
		return clamp(scale*math.Asin(math.Sin(2*math.Pi*phase)), MaxAmplitude)
	})
	f.observe(KindTriangle, len(w.Samples))
	return w
}

// Square returns MaxAmplitude * sign(sin(2*pi*frequency*t)). Exact zero
// crossings produce 0.
func (f *Factory) Square(frequency float64) Waveform {
	w := f.synthesize(func(t float64) float64 {
		return MaxAmplitude * sign(math.Sin(2*math.Pi*frequency*t))
	})
	f.observe(KindSquare, len(w.Samples))
	return w
}

// Generate dispatches to the generator selected by kind.
func (f *Factory) Generate(kind Kind, frequency float64) (Waveform, error) {
	switch kind {
	case KindSine:
		return f.Sine(frequency), nil
	case KindTriangle:
		return f.Triangle(frequency), nil
	case KindSquare:
		return f.Square(frequency), nil
	}
	return Waveform{}, fmt.Errorf("%w: unknown waveform kind %v", ErrInvalidArgument, kind)
}

// FromNote returns the sine wave of the named note as int16 samples.
func (f *Factory) FromNote(name string) (Waveform, error) {
	return f.NoteWave(KindSine, name)
}

// NoteWave returns the waveform of the given kind at the named note's
// frequency, converted to int16 with ToInt16.
func (f *Factory) NoteWave(kind Kind, name string) (Waveform, error) {
	freq, err := NoteFrequency(name)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("unknown_note").Inc()
		return Waveform{}, err
	}
	w, err := f.Generate(kind, freq)
	if err != nil {
		return Waveform{}, err
	}
	return w.AsInt16(), nil
}

func (f *Factory) synthesize(fn func(t float64) float64) Waveform {
	start := time.Now()
	samples := make([]float64, len(f.timeline))
	for i, t := range f.timeline {
		samples[i] = fn(t)
	}
	metrics.RenderLatency.WithLabelValues("synthesize").Observe(float64(time.Since(start).Microseconds()) / 1000)
	return Waveform{Samples: samples, DType: Float64}
}

func (f *Factory) observe(kind Kind, n int) {
	metrics.WaveformsGeneratedTotal.WithLabelValues(kind.String()).Inc()
	metrics.SamplesGeneratedTotal.Add(float64(n))
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func clamp(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}
