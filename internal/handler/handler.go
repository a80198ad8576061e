package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/RenatoCabral2022/wavefactory/internal/metrics"
	"github.com/RenatoCabral2022/wavefactory/internal/middleware"
	"github.com/RenatoCabral2022/wavefactory/internal/model"
	"github.com/RenatoCabral2022/wavefactory/internal/waveform"
)

const maxBodyBytes = 32 << 20

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	defaultDuration float64
	maxDuration     float64
	normalizer      *waveform.Factory
	logger          *zap.Logger
}

// NewHandlers creates handlers that render waveforms of at most maxDuration
// seconds, defaulting to defaultDuration when a request omits it.
func NewHandlers(defaultDuration, maxDuration float64, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	// Normalize never reads the time axis, so one single-sample factory
	// serves every request.
	normalizer, _ := waveform.New(1.0/waveform.SampleRate, waveform.WithLogger(logger))
	return &Handlers{
		defaultDuration: defaultDuration,
		maxDuration:     maxDuration,
		normalizer:      normalizer,
		logger:          logger,
	}
}

// NewRouter wires the public API.
func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(h.logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, renderIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/notes", h.ListNotes)
		r.Route("/waveforms", func(r chi.Router) {
			r.Post("/", h.RenderWaveform)
			r.Post("/describe", h.DescribeWaveform)
			r.Post("/normalize", h.NormalizeWaveforms)
		})
	})
	return r
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// ListNotes handles GET /v1/notes.
func (h *Handlers) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes := waveform.Notes()
	resp := model.NotesResponse{Notes: make([]model.Note, len(notes))}
	for i, n := range notes {
		resp.Notes[i] = model.Note{Name: n.Name, Frequency: n.Frequency}
	}
	writeJSON(w, http.StatusOK, resp)
}

const renderIDHeader = "X-Render-Id"

// RenderWaveform handles POST /v1/waveforms.
// Note requests return int16 samples; frequency requests return float64
// samples, so their wav output is 64-bit float.
func (h *Handlers) RenderWaveform(w http.ResponseWriter, r *http.Request) {
	var req model.RenderRequest
	if !h.decode(w, r, &req) {
		return
	}
	format, err := waveform.ParseFormat(req.Format)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	start := time.Now()
	wave, label, err := h.render(r, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	renderID := uuid.NewString()
	w.Header().Set(renderIDHeader, renderID)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, label, format))

	switch format {
	case waveform.FormatAudio:
		err = waveform.EncodeWAV(w, waveform.SampleRate, wave)
	default:
		err = waveform.EncodeText(w, wave)
	}
	if err != nil {
		// headers are gone; all we can do is log
		h.logger.Warn("write waveform failed",
			zap.String("renderId", renderID),
			zap.Error(err),
		)
		return
	}
	metrics.FilesWrittenTotal.WithLabelValues(format.String()).Inc()
	metrics.RenderLatency.WithLabelValues("http_render").Observe(float64(time.Since(start).Microseconds()) / 1000)
}

// DescribeWaveform handles POST /v1/waveforms/describe.
func (h *Handlers) DescribeWaveform(w http.ResponseWriter, r *http.Request) {
	var req model.RenderRequest
	if !h.decode(w, r, &req) {
		return
	}
	wave, _, err := h.render(r, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rep := waveform.Describe(wave)
	writeJSON(w, http.StatusOK, model.DescribeResponse{
		RenderID: uuid.NewString(),
		Count:    rep.Count,
		DType:    rep.DType,
		Min:      rep.Min,
		Max:      rep.Max,
		StdDev:   rep.StdDev,
	})
}

// NormalizeWaveforms handles POST /v1/waveforms/normalize.
func (h *Handlers) NormalizeWaveforms(w http.ResponseWriter, r *http.Request) {
	var req model.NormalizeRequest
	if !h.decode(w, r, &req) {
		return
	}
	waves := make([]waveform.Waveform, len(req.Waves))
	for i, s := range req.Waves {
		waves[i] = waveform.Waveform{Samples: s, DType: waveform.Float64}
	}

	out, err := h.normalizer.Normalize(waves...)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := model.NormalizeResponse{Waves: make([][]float64, len(out))}
	for i, wave := range out {
		resp.Waves[i] = wave.Samples
	}
	if len(out) > 0 {
		resp.Length = out[0].Len()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) render(r *http.Request, req model.RenderRequest) (waveform.Waveform, string, error) {
	duration := req.Duration
	if duration == 0 {
		duration = h.defaultDuration
	}
	if duration > h.maxDuration {
		return waveform.Waveform{}, "", fmt.Errorf("%w: duration %vs exceeds limit of %vs",
			waveform.ErrInvalidArgument, duration, h.maxDuration)
	}
	kind, err := waveform.ParseKind(req.Kind)
	if err != nil {
		return waveform.Waveform{}, "", err
	}
	f, err := waveform.New(duration, waveform.WithLogger(h.requestLogger(r)))
	if err != nil {
		return waveform.Waveform{}, "", err
	}

	switch {
	case req.Note != "" && req.Frequency != nil:
		return waveform.Waveform{}, "", fmt.Errorf("%w: set note or frequency, not both", waveform.ErrInvalidArgument)
	case req.Note != "":
		wave, err := f.NoteWave(kind, req.Note)
		return wave, fmt.Sprintf("%s-%s", req.Note, kind), err
	case req.Frequency != nil:
		wave, err := f.Generate(kind, *req.Frequency)
		return wave, fmt.Sprintf("%ghz-%s", *req.Frequency, kind), err
	}
	return waveform.Waveform{}, "", fmt.Errorf("%w: note or frequency is required", waveform.ErrInvalidArgument)
}

func (h *Handlers) requestLogger(r *http.Request) *zap.Logger {
	return h.logger.With(zap.String("requestId", middleware.GetRequestID(r.Context())))
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, waveform.ErrUnknownNote),
		errors.Is(err, waveform.ErrInvalidArgument),
		errors.Is(err, waveform.ErrInvalidConfiguration),
		errors.Is(err, waveform.ErrParse):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.requestLogger(r).Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
