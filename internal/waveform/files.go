package waveform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/RenatoCabral2022/wavefactory/internal/metrics"
)

// LoadFromText reads a text waveform written by Save with FormatText, or any
// file of whitespace-separated floats.
func (f *Factory) LoadFromText(path string) (Waveform, error) {
	file, err := os.Open(path)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("io").Inc()
		return Waveform{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer file.Close()

	w, err := DecodeText(file)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues(errorReason(err)).Inc()
		return Waveform{}, fmt.Errorf("load %s: %w", path, err)
	}
	return w, nil
}

// LoadFromAudio reads a wav file written by Save with FormatAudio.
func (f *Factory) LoadFromAudio(path string) (Waveform, error) {
	file, err := os.Open(path)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("io").Inc()
		return Waveform{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer file.Close()

	w, rate, err := DecodeWAV(file)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues(errorReason(err)).Inc()
		return Waveform{}, fmt.Errorf("load %s: %w", path, err)
	}
	if rate != SampleRate {
		f.logger.Warn("wav sample rate differs from factory rate",
			zap.String("path", path),
			zap.Int("rate", rate),
			zap.Int("factoryRate", SampleRate),
		)
	}
	return w, nil
}

// Save writes wave to path in the given format, replacing any existing file.
// FormatAudio uses SampleRate and derives the sample width from the dtype;
// convert with AsInt16 first for a 16-bit PCM file. The waveform is encoded
// into a temporary file next to path and renamed over it, so a failed Save
// leaves an existing file untouched.
func (f *Factory) Save(wave Waveform, path string, format Format) (err error) {
	defer func() {
		if err != nil {
			metrics.ErrorsTotal.WithLabelValues(errorReason(err)).Inc()
		}
	}()

	var encode func(*os.File) error
	switch format {
	case FormatText:
		encode = func(file *os.File) error { return EncodeText(file, wave) }
	case FormatAudio:
		encode = func(file *os.File) error { return EncodeWAV(file, SampleRate, wave) }
	default:
		return fmt.Errorf("%w: unknown format %v", ErrInvalidArgument, format)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	err = encode(tmp)
	if err == nil {
		err = tmp.Chmod(0o644)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		os.Remove(tmp.Name())
		if errors.Is(err, ErrInvalidArgument) {
			return err
		}
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}

	metrics.FilesWrittenTotal.WithLabelValues(format.String()).Inc()
	f.logger.Debug("waveform saved",
		zap.String("path", path),
		zap.String("format", format.String()),
		zap.Int("samples", wave.Len()),
	)
	return nil
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrIO):
		return "io"
	case errors.Is(err, ErrUnknownNote):
		return "unknown_note"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrInvalidConfiguration):
		return "invalid_configuration"
	}
	return "other"
}
