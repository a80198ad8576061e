package waveform

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/RenatoCabral2022/wavefactory/internal/metrics"
)

// Normalize truncates every waveform to the shortest input length and scales
// all of them by one common factor so the loudest sample reaches
// MaxAmplitude. Trailing samples are dropped, never resampled. The result is
// float64 and preserves input order.
//
// If every truncated sample is zero the waveforms are returned unscaled.
func (f *Factory) Normalize(waves ...Waveform) ([]Waveform, error) {
	if len(waves) == 0 {
		metrics.ErrorsTotal.WithLabelValues("invalid_argument").Inc()
		return nil, fmt.Errorf("%w: normalize needs at least one waveform", ErrInvalidArgument)
	}

	minLen := waves[0].Len()
	for _, w := range waves[1:] {
		minLen = min(minLen, w.Len())
	}

	var peak float64
	for _, w := range waves {
		for _, v := range w.Samples[:minLen] {
			peak = math.Max(peak, math.Abs(v))
		}
	}

	gain := 1.0
	if peak == 0 {
		metrics.NormalizeSilentTotal.Inc()
		f.logger.Warn("normalize: all inputs silent, returning unscaled",
			zap.Int("waves", len(waves)),
			zap.Int("length", minLen),
		)
	} else {
		gain = MaxAmplitude / peak
	}

	out := make([]Waveform, len(waves))
	for i, w := range waves {
		samples := make([]float64, minLen)
		for j, v := range w.Samples[:minLen] {
			samples[j] = v * gain
		}
		out[i] = Waveform{Samples: samples, DType: Float64}
	}
	return out, nil
}
