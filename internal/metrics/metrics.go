package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters
var (
	WaveformsGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavefactory_waveforms_generated_total",
		Help: "Total waveforms synthesized by kind",
	}, []string{"kind"})
	SamplesGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wavefactory_samples_generated_total",
		Help: "Total samples synthesized across all waveforms",
	})
	FilesWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavefactory_files_written_total",
		Help: "Total waveform files written by format",
	}, []string{"format"})
	ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavefactory_errors_total",
		Help: "Total operation failures by reason",
	}, []string{"reason"})
	NormalizeSilentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wavefactory_normalize_silent_total",
		Help: "Normalize calls whose inputs were all silent and were returned unscaled",
	})
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavefactory_http_requests_total",
		Help: "Total HTTP requests by route pattern and status code",
	}, []string{"route", "code"})
)

// Histograms
var (
	RenderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wavefactory_render_duration_ms",
		Help:    "Waveform operation duration in milliseconds by stage",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
	}, []string{"stage"})
)
