package waveform

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"go.uber.org/zap"
)

// Report summarizes a waveform.
type Report struct {
	Count  int     `json:"count"`
	DType  string  `json:"dtype"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stdDev"`
}

// Describe computes the report for w. The standard deviation is the
// population one (divides by N). An empty waveform reports zeros.
func Describe(w Waveform) Report {
	r := Report{Count: w.Len(), DType: w.DType.String()}
	if r.Count == 0 {
		return r
	}

	r.Min, r.Max = w.Samples[0], w.Samples[0]
	var sum float64
	for _, v := range w.Samples {
		r.Min = math.Min(r.Min, v)
		r.Max = math.Max(r.Max, v)
		sum += v
	}
	mean := sum / float64(r.Count)

	var sq float64
	for _, v := range w.Samples {
		d := v - mean
		sq += d * d
	}
	r.StdDev = math.Sqrt(sq / float64(r.Count))
	return r
}

// Describe computes the report for w and logs it.
func (f *Factory) Describe(w Waveform) Report {
	r := Describe(w)
	f.logger.Info("waveform details",
		zap.Int("count", r.Count),
		zap.String("dtype", r.DType),
		zap.Float64("min", r.Min),
		zap.Float64("max", r.Max),
		zap.Float64("stdDev", r.StdDev),
	)
	return r
}

// WriteTo writes the human-readable form of the report.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w,
		"Wave shape: %d\nWave dtype: %s\nMin value: %s\nMax value: %s\nStandard deviation: %.2f\n",
		r.Count, r.DType, formatValue(r.Min), formatValue(r.Max), r.StdDev)
	return int64(n), err
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
