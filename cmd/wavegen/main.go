package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/RenatoCabral2022/wavefactory/internal/config"
	"github.com/RenatoCabral2022/wavefactory/internal/manifest"
	"github.com/RenatoCabral2022/wavefactory/internal/waveform"
)

func main() {
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	if cfg.LogDev {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	if err := run(os.Args[1:], os.Stdout, cfg, logger); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Error("wavegen failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer, cfg *config.Config, logger *zap.Logger) error {
	fs := flag.NewFlagSet("wavegen", flag.ContinueOnError)
	fs.SetOutput(stdout)
	var (
		note         = fs.String("note", "", "note name from the note table (default a4 when -freq is not set)")
		freq         = fs.Float64("freq", 0, "frequency in Hz instead of a note")
		kind         = fs.String("kind", "sine", "waveform kind: sine, triangle or square")
		duration     = fs.Float64("duration", cfg.Duration, "waveform length in seconds")
		format       = fs.String("format", "", "output format: txt or wav (default from -out extension)")
		out          = fs.String("out", "", "output file; relative paths resolve against OUTPUT_DIR")
		pcm16        = fs.Bool("pcm16", false, "convert frequency waveforms to int16 before saving")
		describe     = fs.Bool("describe", false, "print waveform details")
		in           = fs.String("in", "", "describe an existing .txt or .wav waveform")
		manifestPath = fs.String("manifest", "", "render every item of a YAML manifest")
		listNotes    = fs.Bool("notes", false, "list the note table")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	freqSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "freq" {
			freqSet = true
		}
	})

	switch {
	case *listNotes:
		for _, n := range waveform.Notes() {
			fmt.Fprintf(stdout, "%s\t%g\n", n.Name, n.Frequency)
		}
		return nil

	case *manifestPath != "":
		m, err := manifest.Load(*manifestPath)
		if err != nil {
			return err
		}
		results, err := manifest.Run(m, *duration, logger)
		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(stdout, "FAIL %s: %v\n", r.Name, r.Err)
				continue
			}
			fmt.Fprintf(stdout, "ok   %s -> %s (%d samples)\n", r.Name, r.Path, r.Samples)
		}
		return err
	}

	f, err := waveform.New(*duration, waveform.WithLogger(logger))
	if err != nil {
		return err
	}

	if *in != "" {
		wave, err := load(f, *in)
		if err != nil {
			return err
		}
		_, err = f.Describe(wave).WriteTo(stdout)
		return err
	}

	k, err := waveform.ParseKind(*kind)
	if err != nil {
		return err
	}

	var wave waveform.Waveform
	switch {
	case freqSet && *note != "":
		return fmt.Errorf("%w: use -note or -freq, not both", waveform.ErrInvalidArgument)
	case freqSet:
		if wave, err = f.Generate(k, *freq); err != nil {
			return err
		}
		if *pcm16 {
			wave = wave.AsInt16()
		}
	default:
		name := *note
		if name == "" {
			name = "a4"
		}
		if wave, err = f.NoteWave(k, name); err != nil {
			return err
		}
	}

	if *describe || *out == "" {
		if _, err := f.Describe(wave).WriteTo(stdout); err != nil {
			return err
		}
	}
	if *out == "" {
		return nil
	}

	fmtName := *format
	if fmtName == "" {
		fmtName = strings.TrimPrefix(filepath.Ext(*out), ".")
	}
	ff, err := waveform.ParseFormat(fmtName)
	if err != nil {
		return err
	}
	path := *out
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.OutputDir, path)
	}
	if err := f.Save(wave, path, ff); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%s, %d samples)\n", path, ff, wave.Len())
	return nil
}

func load(f *waveform.Factory, path string) (waveform.Waveform, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return f.LoadFromAudio(path)
	}
	return f.LoadFromText(path)
}
