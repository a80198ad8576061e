package waveform

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/RenatoCabral2022/wavefactory/internal/metrics"
)

func TestSaveAndLoadTextRoundTrip(t *testing.T) {
	f := newFactory(t, 1)
	orig, err := f.FromNote("a4")
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "test_wave.txt")
	if err := f.Save(orig, path, FormatText); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := f.LoadFromText(path)
	if err != nil {
		t.Fatalf("LoadFromText: %v", err)
	}
	if loaded.Len() != orig.Len() {
		t.Fatalf("loaded %d samples, want %d", loaded.Len(), orig.Len())
	}
	for i := range orig.Samples {
		if math.Abs(loaded.Samples[i]-orig.Samples[i]) > 1e-8 {
			t.Fatalf("sample[%d] = %v, want %v", i, loaded.Samples[i], orig.Samples[i])
		}
	}
}

func TestTextRoundTripFloat(t *testing.T) {
	f := newFactory(t, 0.1)
	orig := f.Triangle(330)

	var buf bytes.Buffer
	if err := EncodeText(&buf, orig); err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != orig.Len() {
		t.Errorf("wrote %d lines, want %d", lines, orig.Len())
	}

	loaded, err := DecodeText(&buf)
	if err != nil {
		t.Fatal(err)
	}
	for i := range orig.Samples {
		if math.Abs(loaded.Samples[i]-orig.Samples[i]) > 1e-9*MaxAmplitude {
			t.Fatalf("sample[%d] = %v, want %v", i, loaded.Samples[i], orig.Samples[i])
		}
	}
}

func TestDecodeTextSkipsCommentsAndBlanks(t *testing.T) {
	in := "# header\n1.5\n\n  -2 3e2\n4 # trailing\n"
	w, err := DecodeText(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1.5, -2, 300, 4}
	if w.Len() != len(want) {
		t.Fatalf("got %v, want %v", w.Samples, want)
	}
	for i := range want {
		if w.Samples[i] != want[i] {
			t.Errorf("sample[%d] = %v, want %v", i, w.Samples[i], want[i])
		}
	}
}

func TestDecodeTextEmpty(t *testing.T) {
	w, err := DecodeText(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if w.Len() != 0 || w.Samples == nil {
		t.Errorf("empty input gave %#v, want empty non-nil samples", w.Samples)
	}
}

func TestLoadFromTextParseError(t *testing.T) {
	f := newFactory(t, 0.1)
	path := filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(path, []byte("1.0\n2.0\nabc\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := f.LoadFromText(path)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if pe.Line != 3 || pe.Token != "abc" {
		t.Errorf("ParseError = line %d token %q, want line 3 token abc", pe.Line, pe.Token)
	}
}

func TestLoadFromTextMissingFile(t *testing.T) {
	f := newFactory(t, 0.1)
	_, err := f.LoadFromText(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, ErrIO) {
		t.Errorf("err = %v, want ErrIO", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want it to wrap os.ErrNotExist", err)
	}
}

func TestSaveUnwritablePath(t *testing.T) {
	f := newFactory(t, 0.1)
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "wave.wav")
	for _, format := range []Format{FormatText, FormatAudio} {
		if err := f.Save(f.Sine(440), path, format); !errors.Is(err, ErrIO) {
			t.Errorf("Save(%v) err = %v, want ErrIO", format, err)
		}
	}
}

func TestSaveUnknownFormat(t *testing.T) {
	f := newFactory(t, 0.1)
	path := filepath.Join(t.TempDir(), "wave.bin")
	if err := f.Save(f.Sine(440), path, Format(9)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestSaveAudioInt16Header(t *testing.T) {
	f := newFactory(t, 0.5)
	w, err := f.FromNote("a4")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "a4.wav")
	if err := f.Save(w, path, FormatAudio); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 44+w.Len()*2 {
		t.Fatalf("file size = %d, want %d", len(data), 44+w.Len()*2)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Errorf("bad RIFF header %q", data[0:12])
	}
	if got := binary.LittleEndian.Uint32(data[4:8]); got != uint32(len(data)-8) {
		t.Errorf("RIFF size = %d, want %d", got, len(data)-8)
	}
	checks := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"format", uint32(binary.LittleEndian.Uint16(data[20:22])), wavFormatPCM},
		{"channels", uint32(binary.LittleEndian.Uint16(data[22:24])), 1},
		{"rate", binary.LittleEndian.Uint32(data[24:28]), SampleRate},
		{"byteRate", binary.LittleEndian.Uint32(data[28:32]), SampleRate * 2},
		{"bits", uint32(binary.LittleEndian.Uint16(data[34:36])), 16},
		{"dataSize", binary.LittleEndian.Uint32(data[40:44]), uint32(w.Len() * 2)},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}
}

func TestAudioRoundTrip(t *testing.T) {
	f := newFactory(t, 0.2)
	note, err := f.NoteWave(KindTriangle, "e2")
	if err != nil {
		t.Fatal(err)
	}
	normalized, err := f.Normalize(f.Sine(261.6256), f.Square(110))
	if err != nil {
		t.Fatal(err)
	}

	for _, orig := range []Waveform{note, normalized[0], normalized[1]} {
		path := filepath.Join(t.TempDir(), "wave.wav")
		if err := f.Save(orig, path, FormatAudio); err != nil {
			t.Fatalf("Save(%v): %v", orig.DType, err)
		}
		loaded, err := f.LoadFromAudio(path)
		if err != nil {
			t.Fatalf("LoadFromAudio(%v): %v", orig.DType, err)
		}
		if loaded.DType != orig.DType {
			t.Errorf("dtype = %v, want %v", loaded.DType, orig.DType)
		}
		if loaded.Len() != orig.Len() {
			t.Fatalf("length = %d, want %d", loaded.Len(), orig.Len())
		}
		for i := range orig.Samples {
			if loaded.Samples[i] != orig.Samples[i] {
				t.Fatalf("%v sample[%d] = %v, want %v", orig.DType, i, loaded.Samples[i], orig.Samples[i])
			}
		}
	}
}

func TestDecodeWAVSkipsUnknownChunks(t *testing.T) {
	var body bytes.Buffer
	if err := EncodeWAV(&body, 8000, FromInt16([]int16{1, -2, 3})); err != nil {
		t.Fatal(err)
	}
	raw := body.Bytes()

	// splice a JUNK chunk between fmt and data
	junk := append([]byte("JUNK"), 4, 0, 0, 0, 'a', 'b', 'c', 'd')
	spliced := append(append(append([]byte{}, raw[:36]...), junk...), raw[36:]...)

	w, rate, err := DecodeWAV(bytes.NewReader(spliced))
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if rate != 8000 {
		t.Errorf("rate = %d, want 8000", rate)
	}
	want := []float64{1, -2, 3}
	for i := range want {
		if w.Samples[i] != want[i] {
			t.Errorf("sample[%d] = %v, want %v", i, w.Samples[i], want[i])
		}
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	tests := map[string][]byte{
		"empty":     nil,
		"not riff":  []byte("OggS0000WAVE"),
		"no data":   []byte("RIFF\x04\x00\x00\x00WAVE"),
		"truncated": []byte("RIFF\x24\x00\x00\x00WAVEfmt \x10\x00\x00\x00\x01\x00"),
	}
	for name, in := range tests {
		if _, _, err := DecodeWAV(bytes.NewReader(in)); !errors.Is(err, ErrParse) {
			t.Errorf("%s: err = %v, want ErrParse", name, err)
		}
	}
}

func TestLoadFromAudioNotWav(t *testing.T) {
	f := newFactory(t, 0.1)
	path := filepath.Join(t.TempDir(), "wave.txt")
	if err := f.Save(f.Sine(440), path, FormatText); err != nil {
		t.Fatal(err)
	}
	if _, err := f.LoadFromAudio(path); !errors.Is(err, ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

func TestDecodeWAVOversizedDataChunk(t *testing.T) {
	tests := []struct {
		name    string
		wave    Waveform
		sizeOff int
	}{
		{"pcm16", FromInt16(nil), 40},
		{"float64", Waveform{Samples: []float64{}, DType: Float64}, 54},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := EncodeWAV(&buf, 8000, tt.wave); err != nil {
			t.Fatalf("%s: EncodeWAV: %v", tt.name, err)
		}
		raw := buf.Bytes()
		if string(raw[tt.sizeOff-4:tt.sizeOff]) != "data" {
			t.Fatalf("%s: no data chunk id at %d", tt.name, tt.sizeOff-4)
		}
		binary.LittleEndian.PutUint32(raw[tt.sizeOff:], 0xFFFFFFF0)

		var before, after runtime.MemStats
		runtime.ReadMemStats(&before)
		_, _, err := DecodeWAV(bytes.NewReader(raw))
		runtime.ReadMemStats(&after)

		if !errors.Is(err, ErrParse) {
			t.Errorf("%s: err = %v, want ErrParse", tt.name, err)
		}
		if delta := after.TotalAlloc - before.TotalAlloc; delta > 64<<20 {
			t.Errorf("%s: decoding allocated %d MiB", tt.name, delta>>20)
		}
	}
}

func TestEncodeWAVPlainWriterMatchesFile(t *testing.T) {
	f := newFactory(t, 0.05)
	w, err := f.FromNote("c5")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := EncodeWAV(&buf, SampleRate, w); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "c5.wav")
	if err := f.Save(w, path, FormatAudio); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), data) {
		t.Errorf("buffered encoding (%d bytes) differs from file (%d bytes)", buf.Len(), len(data))
	}
}

func TestSaveFailureKeepsExistingFile(t *testing.T) {
	f := newFactory(t, 0.1)
	dir := t.TempDir()
	path := filepath.Join(dir, "keep.wav")
	orig := []byte("previous")
	if err := os.WriteFile(path, orig, 0o644); err != nil {
		t.Fatal(err)
	}

	invalidErrs := testutil.ToFloat64(metrics.ErrorsTotal.WithLabelValues("invalid_argument"))
	ioErrs := testutil.ToFloat64(metrics.ErrorsTotal.WithLabelValues("io"))

	err := f.Save(Waveform{Samples: []float64{1, 2}, DType: DType(9)}, path, FormatAudio)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, orig) {
		t.Errorf("file = %q, want %q", got, orig)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only keep.wav", len(entries))
	}

	if d := testutil.ToFloat64(metrics.ErrorsTotal.WithLabelValues("invalid_argument")) - invalidErrs; d != 1 {
		t.Errorf("invalid_argument errors grew by %v, want 1", d)
	}
	if d := testutil.ToFloat64(metrics.ErrorsTotal.WithLabelValues("io")) - ioErrs; d != 0 {
		t.Errorf("io errors grew by %v, want 0", d)
	}
}

func TestSaveReplacesExistingFile(t *testing.T) {
	f := newFactory(t, 0.1)
	path := filepath.Join(t.TempDir(), "wave.txt")
	if err := os.WriteFile(path, []byte("stale contents that are much longer than one sample\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	wave := Waveform{Samples: []float64{0.5}, DType: Float64}
	if err := f.Save(wave, path, FormatText); err != nil {
		t.Fatal(err)
	}
	loaded, err := f.LoadFromText(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != 1 || loaded.Samples[0] != 0.5 {
		t.Errorf("loaded %v, want [0.5]", loaded.Samples)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Errorf("mode = %v, want 0644", perm)
	}
}
