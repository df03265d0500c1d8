// Package detlog reads recorded detector output, one JSON encoded frame per
// line, so tracking can be replayed without a camera or model.
package detlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/edgevision/go-sscma/postprocess"
)

// maxLineSize caps a single frame record
const maxLineSize = 4 * 1024 * 1024

// Detection is a single detected box in image coordinates
type Detection struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
	Score float64 `json:"score"`
	Label int     `json:"label"`
}

// Frame is the detector output for one video frame
type Frame struct {
	Frame      int         `json:"frame"`
	Detections []Detection `json:"detections"`
}

// Results converts the frame detections to post processing results.  Boxes
// are rounded to the nearest whole pixel since postprocess.BoxRect holds
// integer coordinates, so sub-pixel precision in the log does not reach the
// tracker.
func (f Frame) Results() []postprocess.DetectResult {

	res := make([]postprocess.DetectResult, 0, len(f.Detections))

	for _, d := range f.Detections {
		res = append(res, postprocess.DetectResult{
			Class: d.Label,
			Box: postprocess.BoxRect{
				Left:   int(math.Round(d.X)),
				Top:    int(math.Round(d.Y)),
				Right:  int(math.Round(d.X + d.W)),
				Bottom: int(math.Round(d.Y + d.H)),
			},
			Probability: float32(d.Score),
		})
	}

	return res
}

// Reader decodes frames from a JSON lines stream
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader returns a Reader over r
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	return &Reader{scanner: scanner}
}

// Next returns the next frame, io.EOF once the stream is exhausted.  Blank
// lines are skipped.
func (r *Reader) Next() (Frame, error) {

	for r.scanner.Scan() {
		r.line++

		data := r.scanner.Bytes()
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}

		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			return Frame{}, fmt.Errorf("error decoding line %d: %w", r.line, err)
		}

		return f, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Frame{}, fmt.Errorf("error reading line %d: %w", r.line+1, err)
	}

	return Frame{}, io.EOF
}

// ReadAll decodes every remaining frame
func (r *Reader) ReadAll() ([]Frame, error) {

	var frames []Frame

	for {
		f, err := r.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
}
