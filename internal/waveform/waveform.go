package waveform

import (
	"fmt"
	"math"
	"strings"
)

// DType tags the numeric representation of a waveform's samples.
type DType int

const (
	Float64 DType = iota
	Int16
)

func (d DType) String() string {
	switch d {
	case Float64:
		return "float64"
	case Int16:
		return "int16"
	default:
		return fmt.Sprintf("dtype(%d)", int(d))
	}
}

// Waveform is an ordered sequence of samples. Int16 waveforms only hold
// integral values inside the int16 range.
type Waveform struct {
	Samples []float64
	DType   DType
}

// Len returns the number of samples.
func (w Waveform) Len() int { return len(w.Samples) }

// Clone returns a deep copy of w.
func (w Waveform) Clone() Waveform {
	samples := make([]float64, len(w.Samples))
	copy(samples, w.Samples)
	return Waveform{Samples: samples, DType: w.DType}
}

// Int16s returns the samples converted with ToInt16.
func (w Waveform) Int16s() []int16 {
	out := make([]int16, len(w.Samples))
	for i, v := range w.Samples {
		out[i] = ToInt16(v)
	}
	return out
}

// AsInt16 returns a copy of w converted to the int16 dtype.
func (w Waveform) AsInt16() Waveform {
	out := Waveform{Samples: make([]float64, len(w.Samples)), DType: Int16}
	for i, v := range w.Samples {
		out.Samples[i] = float64(ToInt16(v))
	}
	return out
}

// FromInt16 wraps raw PCM samples as an int16 waveform.
func FromInt16(samples []int16) Waveform {
	out := Waveform{Samples: make([]float64, len(samples)), DType: Int16}
	for i, s := range samples {
		out.Samples[i] = float64(s)
	}
	return out
}

// ToInt16 truncates v toward zero and wraps modulo 2^16 when the result
// does not fit, the same as a two's-complement narrowing cast. NaN and
// infinities map to 0.
// Values produced with MaxAmplitude never reach the wrapping path.
func ToInt16(v float64) int16 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	t := math.Trunc(v)
	if t >= math.MinInt64 && t < math.MaxInt64 {
		return int16(int64(t))
	}
	return int16(int64(math.Mod(t, 1<<16)))
}

// Kind selects a waveform generator.
type Kind int

const (
	KindSine Kind = iota
	KindTriangle
	KindSquare
)

func (k Kind) String() string {
	switch k {
	case KindSine:
		return "sine"
	case KindTriangle:
		return "triangle"
	case KindSquare:
		return "square"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses a generator name. The empty string selects sine.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sine", "sin":
		return KindSine, nil
	case "triangle", "tri":
		return KindTriangle, nil
	case "square", "sq":
		return KindSquare, nil
	}
	return 0, fmt.Errorf("%w: unknown waveform kind %q", ErrInvalidArgument, s)
}

// Format selects the on-disk encoding used by Save.
type Format int

const (
	// FormatText writes one floating-point sample per line.
	FormatText Format = iota
	// FormatAudio writes a mono RIFF/WAVE container.
	FormatAudio
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "txt"
	case FormatAudio:
		return "wav"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ContentType returns the MIME type for the encoding.
func (f Format) ContentType() string {
	if f == FormatAudio {
		return "audio/wav"
	}
	return "text/plain; charset=utf-8"
}

// ParseFormat parses a format name. The empty string selects text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "txt", "text":
		return FormatText, nil
	case "wav", "audio":
		return FormatAudio, nil
	}
	return 0, fmt.Errorf("%w: unknown format %q", ErrInvalidArgument, s)
}
