package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/RenatoCabral2022/wavefactory/internal/waveform"
)

// Manifest is a batch of waveforms rendered with one factory.
type Manifest struct {
	Duration  float64 `yaml:"duration"`  // seconds; 0 uses the caller's default
	Normalize bool    `yaml:"normalize"` // normalize all items together before saving
	Items     []Item  `yaml:"items"`

	// BaseDir resolves relative item paths. Load sets it to the manifest's directory.
	BaseDir string `yaml:"-"`
}

// Item describes one output file. Exactly one of Note and Frequency is set.
type Item struct {
	Name      string   `yaml:"name"`
	Note      string   `yaml:"note"`
	Frequency *float64 `yaml:"frequency"`
	Kind      string   `yaml:"kind"`
	Format    string   `yaml:"format"`
	Path      string   `yaml:"path"`
}

// Result reports the outcome of rendering one item.
type Result struct {
	Name    string
	Path    string
	Samples int
	Err     error
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	m.BaseDir = filepath.Dir(path)
	return m, nil
}

// Parse decodes and validates manifest YAML. Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks every item and returns all problems combined.
func (m *Manifest) Validate() error {
	if m.Duration < 0 {
		return fmt.Errorf("%w: duration must not be negative", waveform.ErrInvalidConfiguration)
	}
	if len(m.Items) == 0 {
		return fmt.Errorf("%w: manifest has no items", waveform.ErrInvalidArgument)
	}

	var errs error
	for i, it := range m.Items {
		if err := it.validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("item %d (%s): %w", i, it.label(), err))
		}
	}
	return errs
}

func (it Item) validate() error {
	var errs error
	switch {
	case it.Note != "" && it.Frequency != nil:
		errs = multierr.Append(errs, fmt.Errorf("%w: set note or frequency, not both", waveform.ErrInvalidArgument))
	case it.Note == "" && it.Frequency == nil:
		errs = multierr.Append(errs, fmt.Errorf("%w: note or frequency is required", waveform.ErrInvalidArgument))
	case it.Note != "":
		if _, err := waveform.NoteFrequency(it.Note); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if _, err := waveform.ParseKind(it.Kind); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := waveform.ParseFormat(it.Format); err != nil {
		errs = multierr.Append(errs, err)
	}
	if it.Path == "" {
		errs = multierr.Append(errs, fmt.Errorf("%w: path is required", waveform.ErrInvalidArgument))
	}
	return errs
}

func (it Item) label() string {
	if it.Name != "" {
		return it.Name
	}
	return it.Path
}

type rendered struct {
	idx    int
	wave   waveform.Waveform
	format waveform.Format
	path   string
}

// Run renders every item and writes it to disk. Items that fail do not stop
// the batch; their errors are combined into the returned error. When
// m.Normalize is set the successfully rendered items are normalized together.
// Wav outputs are always written as 16-bit PCM.
func Run(m *Manifest, defaultDuration float64, logger *zap.Logger) ([]Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	duration := m.Duration
	if duration == 0 {
		duration = defaultDuration
	}
	f, err := waveform.New(duration, waveform.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(m.Items))
	var (
		errs error
		ok   []rendered
	)
	for i, it := range m.Items {
		results[i] = Result{Name: it.label(), Path: m.resolve(it.Path)}
		r, err := render(f, it)
		if err != nil {
			results[i].Err = err
			errs = multierr.Append(errs, fmt.Errorf("render %s: %w", it.label(), err))
			continue
		}
		r.idx, r.path = i, results[i].Path
		ok = append(ok, r)
	}

	if m.Normalize && len(ok) > 0 {
		waves := make([]waveform.Waveform, len(ok))
		for i, r := range ok {
			waves[i] = r.wave
		}
		normalized, err := f.Normalize(waves...)
		if err != nil {
			return results, multierr.Append(errs, err)
		}
		for i := range ok {
			ok[i].wave = normalized[i]
		}
	}

	for _, r := range ok {
		wave := r.wave
		if r.format == waveform.FormatAudio && wave.DType != waveform.Int16 {
			wave = wave.AsInt16()
		}
		if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
			err = fmt.Errorf("%w: %w", waveform.ErrIO, err)
			results[r.idx].Err = err
			errs = multierr.Append(errs, err)
			continue
		}
		if err := f.Save(wave, r.path, r.format); err != nil {
			results[r.idx].Err = err
			errs = multierr.Append(errs, fmt.Errorf("save %s: %w", results[r.idx].Name, err))
			continue
		}
		results[r.idx].Samples = wave.Len()
		logger.Info("rendered",
			zap.String("name", results[r.idx].Name),
			zap.String("path", r.path),
			zap.String("format", r.format.String()),
			zap.Int("samples", wave.Len()),
		)
	}
	return results, errs
}

func render(f *waveform.Factory, it Item) (rendered, error) {
	kind, err := waveform.ParseKind(it.Kind)
	if err != nil {
		return rendered{}, err
	}
	format, err := waveform.ParseFormat(it.Format)
	if err != nil {
		return rendered{}, err
	}

	var wave waveform.Waveform
	switch {
	case it.Note != "":
		wave, err = f.NoteWave(kind, it.Note)
	case it.Frequency != nil:
		wave, err = f.Generate(kind, *it.Frequency)
	default:
		err = errors.New("note or frequency is required")
	}
	if err != nil {
		return rendered{}, err
	}
	return rendered{wave: wave, format: format}, nil
}

func (m *Manifest) resolve(path string) string {
	if filepath.IsAbs(path) || m.BaseDir == "" {
		return path
	}
	return filepath.Join(m.BaseDir, path)
}
