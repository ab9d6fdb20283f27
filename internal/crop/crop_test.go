package crop

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/kozaktomas/headshot/internal/face"
)

func TestPlan_WithFace(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		face   face.Region
		want   Region
	}{
		{
			name:   "centered portrait needs no clamping",
			width:  1000,
			height: 1000,
			face:   face.Region{X: 400, Y: 300, W: 200, H: 200},
			want:   Region{Left: 200, Top: 140, Right: 800, Bottom: 900},
		},
		{
			name:   "face touching left edge",
			width:  500,
			height: 500,
			face:   face.Region{X: 0, Y: 50, W: 100, H: 100},
			want:   Region{Left: 0, Top: 0, Right: 200, Bottom: 350},
		},
		{
			name:   "face in bottom right corner",
			width:  300,
			height: 300,
			face:   face.Region{X: 250, Y: 250, W: 50, H: 50},
			want:   Region{Left: 200, Top: 210, Right: 300, Bottom: 300},
		},
		{
			name:   "face fills the frame",
			width:  100,
			height: 100,
			face:   face.Region{X: 0, Y: 0, W: 100, H: 100},
			want:   Region{Left: 0, Top: 0, Right: 100, Bottom: 100},
		},
		{
			name:   "non-square face uses larger side",
			width:  1000,
			height: 1000,
			face:   face.Region{X: 400, Y: 400, W: 100, H: 60},
			want:   Region{Left: 300, Top: 320, Right: 600, Bottom: 660},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.width, tt.height, tt.face, true)
			if got != tt.want {
				t.Errorf("Plan() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlan_Scenario(t *testing.T) {
	got := Plan(1000, 1000, face.Region{X: 400, Y: 300, W: 200, H: 200}, true)

	if got.Width() != 600 || got.Height() != 760 {
		t.Errorf("expected 600x760 crop, got %dx%d", got.Width(), got.Height())
	}
	if w, h := Scaled(got.Width(), got.Height(), 800); w != 600 || h != 760 {
		t.Errorf("expected no downscale, got %dx%d", w, h)
	}
}

func TestPlan_Fallback(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		want   Region
	}{
		{"square", 1000, 1000, Region{Left: 50, Top: 50, Right: 950, Bottom: 950}},
		{"portrait", 600, 1200, Region{Left: 30, Top: 60, Right: 570, Bottom: 600}},
		{"landscape", 2000, 1000, Region{Left: 550, Top: 50, Right: 1450, Bottom: 950}},
		{"single pixel", 1, 1, Region{Left: 0, Top: 0, Right: 1, Bottom: 1}},
		{"one pixel wide", 1, 1000, Region{Left: 0, Top: 50, Right: 1, Bottom: 51}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.width, tt.height, face.Region{}, false)
			if got != tt.want {
				t.Errorf("Plan() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlan_AlwaysValid(t *testing.T) {
	sizes := []int{1, 2, 3, 29, 30, 31, 99, 640, 1001}
	for _, w := range sizes {
		for _, h := range sizes {
			if r := Plan(w, h, face.Region{}, false); !r.Valid(w, h) {
				t.Errorf("fallback %v invalid for %dx%d", r, w, h)
			}
			for _, f := range []face.Region{
				{X: 0, Y: 0, W: 1, H: 1},
				{X: 0, Y: 0, W: w, H: h},
				{X: w - 1, Y: h - 1, W: 1, H: 1},
				{X: w / 2, Y: h / 2, W: max(1, w/3), H: max(1, h/3)},
			} {
				f, ok := f.Clamp(w, h)
				if !ok {
					continue
				}
				if r := Plan(w, h, f, true); !r.Valid(w, h) {
					t.Errorf("face %v gave invalid %v for %dx%d", f, r, w, h)
				}
			}
		}
	}
}

func TestScaled(t *testing.T) {
	tests := []struct {
		name         string
		w, h, maxDim int
		wantW, wantH int
	}{
		{"within bounds", 600, 760, 800, 600, 760},
		{"exactly at bound", 800, 800, 800, 800, 800},
		{"landscape", 1200, 600, 800, 800, 400},
		{"portrait", 600, 1200, 800, 400, 800},
		{"rounds to nearest", 1000, 3, 800, 800, 2},
		{"rounds up", 1000, 7, 800, 800, 6},
		{"rounds down", 900, 700, 800, 800, 622},
		{"never below one pixel", 5000, 1, 800, 800, 1},
		{"scaling disabled", 5000, 4000, 0, 5000, 4000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Scaled(tt.w, tt.h, tt.maxDim)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Scaled(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.maxDim, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x + y), A: 255})
		}
	}
	return img
}

func TestApply_NoDownscale(t *testing.T) {
	src := gradient(1000, 1000)
	marker := color.NRGBA{R: 255, A: 255}
	src.SetNRGBA(200, 140, marker)

	out := Apply(src, Region{Left: 200, Top: 140, Right: 800, Bottom: 900}, 800)

	if out.Bounds().Dx() != 600 || out.Bounds().Dy() != 760 {
		t.Fatalf("expected 600x760, got %v", out.Bounds())
	}
	if got := out.NRGBAAt(0, 0); got != marker {
		t.Errorf("expected crop to start at the region corner, got %v", got)
	}
}

func TestApply_Downscale(t *testing.T) {
	src := gradient(2000, 1000)
	region := Plan(2000, 1000, face.Region{}, false)

	out := Apply(src, region, 800)

	if out.Bounds().Dx() != 800 || out.Bounds().Dy() != 800 {
		t.Errorf("expected 800x800, got %v", out.Bounds())
	}
}

func TestApply_BoundingInvariant(t *testing.T) {
	for _, size := range []image.Point{{1, 1}, {3000, 40}, {40, 3000}, {1700, 1700}} {
		src := gradient(size.X, size.Y)
		out := Apply(src, Plan(size.X, size.Y, face.Region{}, false), 800)
		w, h := out.Bounds().Dx(), out.Bounds().Dy()
		if max(w, h) > 800 || min(w, h) < 1 {
			t.Errorf("source %v produced %dx%d", size, w, h)
		}
	}
}

func TestApply_Deterministic(t *testing.T) {
	src := gradient(1500, 1200)
	region := Plan(1500, 1200, face.Region{X: 600, Y: 300, W: 300, H: 300}, true)

	a := Apply(src, region, 800)
	b := Apply(src, region, 800)

	if !bytes.Equal(a.Pix, b.Pix) || a.Bounds() != b.Bounds() {
		t.Error("expected identical output for identical input")
	}
}

func TestApply_OffsetSource(t *testing.T) {
	src := gradient(100, 100).SubImage(image.Rect(10, 10, 60, 60))

	out := Apply(src, Region{Left: 0, Top: 0, Right: 10, Bottom: 5}, 800)

	if out.Bounds().Dx() != 10 || out.Bounds().Dy() != 5 {
		t.Fatalf("expected 10x5, got %v", out.Bounds())
	}
	if got := out.NRGBAAt(0, 0); got.R != 10 || got.G != 10 {
		t.Errorf("expected region relative to source bounds, got %v", got)
	}
}

func TestApply_InvalidRegionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-bounds region")
		}
	}()
	Apply(gradient(10, 10), Region{Left: 5, Top: 0, Right: 20, Bottom: 5}, 800)
}
