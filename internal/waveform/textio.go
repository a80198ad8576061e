package waveform

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const maxTextLine = 1 << 20

// EncodeText writes one sample per line in %.18e notation, the layout
// numpy.savetxt produces.
func EncodeText(w io.Writer, wave Waveform) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 32)
	for _, v := range wave.Samples {
		buf = strconv.AppendFloat(buf[:0], v, 'e', 18, 64)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodeText reads whitespace-separated floats. Blank lines and text after
// '#' are ignored.
func DecodeText(r io.Reader) (Waveform, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxTextLine)

	var samples []float64
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		for _, tok := range strings.Fields(text) {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return Waveform{}, &ParseError{Line: line, Token: tok, Err: err}
			}
			samples = append(samples, v)
		}
	}
	if err := sc.Err(); err != nil {
		return Waveform{}, fmt.Errorf("%w: read text: %w", ErrIO, err)
	}
	if samples == nil {
		samples = []float64{}
	}
	return Waveform{Samples: samples, DType: Float64}, nil
}
