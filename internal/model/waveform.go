package model

// RenderRequest is the request body for POST /v1/waveforms and
// POST /v1/waveforms/describe. Exactly one of Note and Frequency is set.
type RenderRequest struct {
	Note      string   `json:"note,omitempty"`
	Frequency *float64 `json:"frequency,omitempty"`
	Kind      string   `json:"kind,omitempty"`
	Duration  float64  `json:"duration,omitempty"`
	Format    string   `json:"format,omitempty"`
}

// DescribeResponse is the response for POST /v1/waveforms/describe.
type DescribeResponse struct {
	RenderID string  `json:"renderId"`
	Count    int     `json:"count"`
	DType    string  `json:"dtype"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	StdDev   float64 `json:"stdDev"`
}

type NormalizeRequest struct {
	Waves [][]float64 `json:"waves"`
}

type NormalizeResponse struct {
	Length int         `json:"length"`
	Waves  [][]float64 `json:"waves"`
}

type Note struct {
	Name      string  `json:"name"`
	Frequency float64 `json:"frequency"`
}

type NotesResponse struct {
	Notes []Note `json:"notes"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
