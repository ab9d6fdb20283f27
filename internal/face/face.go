// Package face finds the most prominent frontal face in a bitmap.
package face

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/kozaktomas/headshot/internal/fetch"
)

// Region is a face bounding box in bitmap pixel coordinates.
type Region struct {
	X, Y, W, H int
}

// Area returns W*H.
func (r Region) Area() int {
	return r.W * r.H
}

func (r Region) String() string {
	return fmt.Sprintf("(x=%d, y=%d, w=%d, h=%d)", r.X, r.Y, r.W, r.H)
}

// Clamp restricts the region to a width x height image. The second result is
// false when nothing of the region is left inside the image.
func (r Region) Clamp(width, height int) (Region, bool) {
	x1, y1 := max(r.X, 0), max(r.Y, 0)
	x2, y2 := min(r.X+r.W, width), min(r.Y+r.H, height)
	if x2 <= x1 || y2 <= y1 {
		return Region{}, false
	}
	return Region{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}, true
}

// Detector finds candidate faces in a grayscale image. Implementations must be
// safe for concurrent use.
type Detector interface {
	Detect(gray *image.Gray) []Region
}

// Locator selects the primary face of a portrait.
type Locator struct {
	detector Detector
}

func NewLocator(detector Detector) *Locator {
	return &Locator{detector: detector}
}

// Locate returns the largest face in bmp. The boolean is false when no face
// was detected, in which case the caller is expected to fall back to a
// composition-only crop.
func (l *Locator) Locate(bmp *fetch.Bitmap) (Region, bool) {
	gray := Grayscale(bmp.Image)

	var faces []Region
	for _, r := range l.detector.Detect(gray) {
		if c, ok := r.Clamp(bmp.Width(), bmp.Height()); ok {
			faces = append(faces, c)
		}
	}
	return Largest(faces)
}

// Largest picks the region with the biggest area. Equal areas are resolved by
// the smallest X, then the smallest Y, so the result never depends on
// detector output order.
func Largest(regions []Region) (Region, bool) {
	if len(regions) == 0 {
		return Region{}, false
	}
	best := regions[0]
	for _, r := range regions[1:] {
		switch {
		case r.Area() > best.Area():
			best = r
		case r.Area() == best.Area() && (r.X < best.X || (r.X == best.X && r.Y < best.Y)):
			best = r
		}
	}
	return best, true
}

// Grayscale converts img to single-channel luma anchored at the origin.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}
