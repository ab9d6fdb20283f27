// Package crop plans and applies subject-centered portrait crops.
package crop

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/kozaktomas/headshot/internal/constants"
	"github.com/kozaktomas/headshot/internal/face"
)

// Region is a crop rectangle in source pixel coordinates. Right and Bottom are
// exclusive.
type Region struct {
	Left, Top, Right, Bottom int
}

func (r Region) Width() int  { return r.Right - r.Left }
func (r Region) Height() int { return r.Bottom - r.Top }

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

// Valid reports whether the region is non-empty and lies within a width x
// height image.
func (r Region) Valid(width, height int) bool {
	return r.Left >= 0 && r.Left < r.Right && r.Right <= width &&
		r.Top >= 0 && r.Top < r.Bottom && r.Bottom <= height
}

func (r Region) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.Left, r.Top, r.Right, r.Bottom)
}

// Plan computes the crop for a width x height image. With a face, the crop is
// padded 1.5 face sizes on each side, 0.8 above and 2.0 below, which frames
// head and shoulders. Without one it falls back to a centered square covering
// 90% of the shorter side, starting 5% below the top edge.
//
// The result always satisfies Valid(width, height); width and height must be
// positive.
func Plan(width, height int, f face.Region, found bool) Region {
	var left, top, right, bottom float64
	if found {
		left, top, right, bottom = aroundFace(f)
	} else {
		left, top, right, bottom = centered(width, height)
	}

	l, r := span(left, right, width)
	t, b := span(top, bottom, height)
	return Region{Left: l, Top: t, Right: r, Bottom: b}
}

func aroundFace(f face.Region) (left, top, right, bottom float64) {
	size := float64(max(f.W, f.H))
	cx := float64(f.X + f.W/2)

	left = cx - constants.PadSide*size
	right = cx + constants.PadSide*size
	top = float64(f.Y) - constants.PadTop*size
	bottom = float64(f.Y+f.H) + constants.PadBottom*size
	return left, top, right, bottom
}

func centered(width, height int) (left, top, right, bottom float64) {
	size := constants.FallbackCropRatio * float64(min(width, height))

	left = math.Floor((float64(width) - size) / 2)
	right = left + size
	top = constants.FallbackTopRatio * float64(height)
	bottom = top + size
	return left, top, right, bottom
}

// span truncates [lo, hi) to integers inside [0, limit] and keeps at least
// one pixel.
func span(lo, hi float64, limit int) (int, int) {
	a := clamp(int(lo), 0, limit)
	b := clamp(int(hi), 0, limit)
	if b <= a {
		a = min(a, limit-1)
		b = a + 1
	}
	return a, b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Apply cuts region out of img and downscales the result with a Lanczos
// filter when its larger side exceeds maxDim. A maxDim of zero disables
// scaling. Apply panics if region is not valid for img.
func Apply(img image.Image, region Region, maxDim int) *image.NRGBA {
	b := img.Bounds()
	if !region.Valid(b.Dx(), b.Dy()) {
		panic(fmt.Sprintf("crop: region %v outside %dx%d image", region, b.Dx(), b.Dy()))
	}

	cropped := imaging.Crop(img, region.Rect().Add(b.Min))

	w, h := Scaled(region.Width(), region.Height(), maxDim)
	if w == region.Width() && h == region.Height() {
		return cropped
	}
	return imaging.Resize(cropped, w, h, imaging.Lanczos)
}

// Scaled returns the dimensions after fitting width x height into a maxDim
// box: the larger side becomes maxDim and the other keeps the aspect ratio,
// rounded and never below one pixel. Sizes already within the box are
// returned unchanged.
func Scaled(width, height, maxDim int) (int, int) {
	if maxDim <= 0 || max(width, height) <= maxDim {
		return width, height
	}
	if width >= height {
		return maxDim, scaleSide(height, maxDim, width)
	}
	return scaleSide(width, maxDim, height), maxDim
}

func scaleSide(side, maxDim, larger int) int {
	return max(1, int(math.Round(float64(side)*float64(maxDim)/float64(larger))))
}
