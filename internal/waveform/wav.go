package waveform

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM   = 1
	wavFormatFloat = 3

	// samples decoded per read for float data
	floatBlock = 4096
)

// EncodeWAV writes wave as a mono RIFF/WAVE container. Int16 waveforms become
// 16-bit PCM; float64 waveforms are written as 64-bit IEEE float samples
// exactly as provided. A seekable w must be positioned at the start.
func EncodeWAV(w io.Writer, sampleRate int, wave Waveform) error {
	switch wave.DType {
	case Int16:
	case Float64:
		return encodeFloatWAV(w, sampleRate, wave.Samples)
	default:
		return fmt.Errorf("%w: cannot encode dtype %v as wav", ErrInvalidArgument, wave.DType)
	}

	ws, seekable := w.(io.WriteSeeker)
	var mem *writeSeeker
	if !seekable {
		mem = &writeSeeker{}
		ws = mem
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, wave.Len()),
		SourceBitDepth: 16,
	}
	for i, s := range wave.Int16s() {
		buf.Data[i] = int(s)
	}

	enc := wav.NewEncoder(ws, sampleRate, 16, 1, wavFormatPCM)
	if err := enc.Write(buf); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if mem != nil {
		_, err := w.Write(mem.buf)
		return err
	}
	return nil
}

// floatHeader is the non-PCM header layout: an 18-byte fmt chunk followed by
// a fact chunk holding the frame count.
type floatHeader struct {
	RIFF       [4]byte
	RIFFSize   uint32
	WAVE       [4]byte
	Fmt        [4]byte
	FmtSize    uint32
	Format     uint16
	Channels   uint16
	SampleRate uint32
	ByteRate   uint32
	BlockAlign uint16
	Bits       uint16
	CbSize     uint16
	Fact       [4]byte
	FactSize   uint32
	Frames     uint32
	Data       [4]byte
	DataSize   uint32
}

// go-audio's encoder only packs integer frames, so 64-bit float output
// writes its own header.
func encodeFloatWAV(w io.Writer, sampleRate int, samples []float64) error {
	dataSize := uint32(len(samples) * 8)
	hdr := floatHeader{
		RIFF:       [4]byte{'R', 'I', 'F', 'F'},
		WAVE:       [4]byte{'W', 'A', 'V', 'E'},
		Fmt:        [4]byte{'f', 'm', 't', ' '},
		FmtSize:    18,
		Format:     wavFormatFloat,
		Channels:   1,
		SampleRate: uint32(sampleRate),
		ByteRate:   uint32(sampleRate) * 8,
		BlockAlign: 8,
		Bits:       64,
		Fact:       [4]byte{'f', 'a', 'c', 't'},
		FactSize:   4,
		Frames:     uint32(len(samples)),
		Data:       [4]byte{'d', 'a', 't', 'a'},
		DataSize:   dataSize,
	}
	hdr.RIFFSize = uint32(binary.Size(hdr)) - 8 + dataSize

	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, samples)
}

// DecodeWAV reads a mono container (16-bit PCM or 32/64-bit IEEE float) and
// returns its samples and sample rate. Chunks other than fmt and data are
// skipped.
func DecodeWAV(r io.Reader) (Waveform, int, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return Waveform{}, 0, fmt.Errorf("%w: read wav: %w", ErrIO, err)
		}
		rs = bytes.NewReader(data)
	}

	d := wav.NewDecoder(rs)
	if !d.IsValidFile() {
		return Waveform{}, 0, fmt.Errorf("%w: not a valid RIFF/WAVE stream", ErrParse)
	}
	if d.NumChans != 1 {
		return Waveform{}, 0, fmt.Errorf("%w: only mono wav is supported, got %d channels", ErrParse, d.NumChans)
	}
	if err := d.FwdToPCM(); err != nil || d.PCMChunk == nil {
		return Waveform{}, 0, fmt.Errorf("%w: missing data chunk", ErrParse)
	}
	rate := int(d.SampleRate)

	switch {
	case d.WavAudioFormat == wavFormatPCM && d.BitDepth == 16:
		buf, err := d.FullPCMBuffer()
		if err != nil {
			return Waveform{}, 0, fmt.Errorf("%w: data chunk: %w", ErrParse, err)
		}
		want := d.PCMSize / 2
		if len(buf.Data) < want {
			return Waveform{}, 0, fmt.Errorf("%w: data chunk truncated: %d of %d samples", ErrParse, len(buf.Data), want)
		}
		samples := make([]float64, want)
		for i := range samples {
			samples[i] = float64(buf.Data[i])
		}
		return Waveform{Samples: samples, DType: Int16}, rate, nil

	case d.WavAudioFormat == wavFormatFloat && d.BitDepth == 64:
		samples, err := readFloats[float64](d.PCMChunk, d.PCMSize/8)
		return Waveform{Samples: samples, DType: Float64}, rate, err

	case d.WavAudioFormat == wavFormatFloat && d.BitDepth == 32:
		samples, err := readFloats[float32](d.PCMChunk, d.PCMSize/4)
		return Waveform{Samples: samples, DType: Float64}, rate, err
	}
	return Waveform{}, 0, fmt.Errorf("%w: unsupported wav encoding (format %d, %d bits)",
		ErrParse, d.WavAudioFormat, d.BitDepth)
}

// readFloats reads n little-endian samples in fixed blocks, so a header
// claiming more data than the stream holds fails without allocating for it.
func readFloats[T float32 | float64](r io.Reader, n int) ([]float64, error) {
	samples := make([]float64, 0, min(n, floatBlock))
	block := make([]T, floatBlock)
	for len(samples) < n {
		chunk := block[:min(floatBlock, n-len(samples))]
		if err := binary.Read(r, binary.LittleEndian, chunk); err != nil {
			return nil, fmt.Errorf("%w: data chunk truncated after %d of %d samples: %w", ErrParse, len(samples), n, err)
		}
		for _, v := range chunk {
			samples = append(samples, float64(v))
		}
	}
	return samples, nil
}

// writeSeeker is an in-memory io.WriteSeeker for encoding to plain writers.
type writeSeeker struct {
	buf []byte
	pos int
}

func (ws *writeSeeker) Write(p []byte) (int, error) {
	if end := ws.pos + len(p); end > len(ws.buf) {
		ws.buf = append(ws.buf, make([]byte, end-len(ws.buf))...)
	}
	n := copy(ws.buf[ws.pos:], p)
	ws.pos += n
	return n, nil
}

func (ws *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(ws.pos) + offset
	case io.SeekEnd:
		abs = int64(len(ws.buf)) + offset
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("seek: negative position %d", abs)
	}
	ws.pos = int(abs)
	return abs, nil
}
