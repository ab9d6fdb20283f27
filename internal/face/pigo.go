package face

import (
	_ "embed"
	"errors"
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"

	"github.com/kozaktomas/headshot/internal/constants"
)

// Params tunes the multi-scale sliding window search.
type Params struct {
	ScaleFactor  float64 // pyramid step between window sizes
	ShiftFactor  float64 // window stride relative to window size
	MinSize      int     // smallest window side in pixels
	MaxSize      int     // largest window side; 0 means the shorter image side
	MinNeighbors int     // raw windows needed to confirm a face
	GroupEps     float64 // corner tolerance when grouping windows
	// MinQuality discards raw windows scoring at or below it.
	MinQuality float32
}

func DefaultParams() Params {
	return Params{
		ScaleFactor:  constants.DetectScaleFactor,
		ShiftFactor:  constants.DetectShiftFactor,
		MinSize:      constants.DetectMinSize,
		MinNeighbors: constants.DetectMinNeighbors,
		GroupEps:     constants.DetectGroupEps,
	}
}

// facefinder is the frontal face cascade shipped with pigo.
//
//go:embed cascade/facefinder
var facefinder []byte

// PigoDetector runs a pigo pixel-intensity-comparison cascade. The unpacked
// classifier is only read after construction.
type PigoDetector struct {
	classifier *pigo.Pigo
	params     Params
}

// NewPigoDetector unpacks a facefinder cascade.
func NewPigoDetector(cascade []byte, params Params) (*PigoDetector, error) {
	if len(cascade) == 0 {
		return nil, errors.New("empty cascade")
	}
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("error unpacking cascade file: %w", err)
	}
	return &PigoDetector{classifier: classifier, params: params}, nil
}

// NewDefaultPigoDetector uses the bundled facefinder cascade.
func NewDefaultPigoDetector(params Params) (*PigoDetector, error) {
	return NewPigoDetector(facefinder, params)
}

// LoadPigoDetector reads the cascade from path.
func LoadPigoDetector(path string, params Params) (*PigoDetector, error) {
	cascade, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cascade: %w", err)
	}
	return NewPigoDetector(cascade, params)
}

func (d *PigoDetector) Detect(gray *image.Gray) []Region {
	b := gray.Bounds()
	cols, rows := b.Dx(), b.Dy()

	maxSize := d.params.MaxSize
	if maxSize <= 0 {
		maxSize = min(cols, rows)
	}
	if maxSize < d.params.MinSize {
		return nil
	}

	pixels := gray.Pix
	if gray.Stride != cols || b.Min != (image.Point{}) {
		pixels = Grayscale(gray).Pix
	}

	dets := d.classifier.RunCascade(pigo.CascadeParams{
		MinSize:     d.params.MinSize,
		MaxSize:     maxSize,
		ShiftFactor: d.params.ShiftFactor,
		ScaleFactor: d.params.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}, 0.0)

	windows := make([]Region, 0, len(dets))
	for _, det := range dets {
		if det.Q <= d.params.MinQuality {
			continue
		}
		windows = append(windows, windowRegion(det))
	}
	return Group(windows, d.params.MinNeighbors, d.params.GroupEps)
}

// windowRegion converts a centre-based pigo window into a corner box.
func windowRegion(det pigo.Detection) Region {
	return Region{
		X: det.Col - det.Scale/2,
		Y: det.Row - det.Scale/2,
		W: det.Scale,
		H: det.Scale,
	}
}
