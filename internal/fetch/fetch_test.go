package fetch

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func imageServer(t *testing.T, body []byte, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write(body)
	}))
}

type failingTransport struct {
	t *testing.T
}

func (ft failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	ft.t.Error("expected no HTTP request")
	return nil, errors.New("unexpected request")
}

func TestFetch_EmptyURL(t *testing.T) {
	f := New(Options{Transport: failingTransport{t}})

	for _, url := range []string{"", "   ", "\t\n"} {
		bmp, err := f.Fetch(context.Background(), url)
		if !errors.Is(err, ErrNoURL) {
			t.Errorf("Fetch(%q) error = %v, want ErrNoURL", url, err)
		}
		if bmp != nil {
			t.Errorf("Fetch(%q) returned a bitmap", url)
		}
	}
}

func TestFetch_Success(t *testing.T) {
	data := encodePNG(t, solidImage(40, 30, color.NRGBA{R: 200, G: 100, B: 50, A: 255}))
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer server.Close()

	f := New(Options{})
	bmp, err := f.Fetch(context.Background(), server.URL+"/photo.png")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if bmp.Width() != 40 || bmp.Height() != 30 {
		t.Errorf("expected 40x30, got %dx%d", bmp.Width(), bmp.Height())
	}
	if gotUA != "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36" {
		t.Errorf("unexpected User-Agent '%s'", gotUA)
	}
	if c := bmp.Image.NRGBAAt(5, 5); c.R != 200 || c.G != 100 || c.B != 50 || c.A != 255 {
		t.Errorf("unexpected pixel %v", c)
	}
}

func TestFetch_BadStatus(t *testing.T) {
	server := imageServer(t, []byte("not found"), http.StatusNotFound)
	defer server.Close()

	_, err := New(Options{}).Fetch(context.Background(), server.URL)

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Stage != StageStatus {
		t.Errorf("expected stage %q, got %q", StageStatus, fe.Stage)
	}
}

func TestFetch_UndecodableBody(t *testing.T) {
	server := imageServer(t, []byte("<html>definitely not a photo</html>"), http.StatusOK)
	defer server.Close()

	_, err := New(Options{}).Fetch(context.Background(), server.URL)

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Stage != StageDecode {
		t.Errorf("expected stage %q, got %q", StageDecode, fe.Stage)
	}
}

func TestFetch_BodyTooLarge(t *testing.T) {
	data := encodePNG(t, solidImage(64, 64, color.NRGBA{A: 255}))
	server := imageServer(t, data, http.StatusOK)
	defer server.Close()

	_, err := New(Options{MaxBytes: 10}).Fetch(context.Background(), server.URL)

	var fe *FetchError
	if !errors.As(err, &fe) || fe.Stage != StageRead {
		t.Fatalf("expected read-stage FetchError, got %v", err)
	}
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	_, err := New(Options{Timeout: 50 * time.Millisecond}).Fetch(context.Background(), server.URL)

	var fe *FetchError
	if !errors.As(err, &fe) || fe.Stage != StageRequest {
		t.Fatalf("expected request-stage FetchError, got %v", err)
	}
}

func TestFetch_InsecureTLS(t *testing.T) {
	data := encodePNG(t, solidImage(8, 8, color.NRGBA{G: 255, A: 255}))
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer server.Close()

	if _, err := New(Options{InsecureTLS: true}).Fetch(context.Background(), server.URL); err != nil {
		t.Errorf("expected self-signed host to be accepted, got %v", err)
	}

	_, err := New(Options{InsecureTLS: false}).Fetch(context.Background(), server.URL)
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Stage != StageRequest {
		t.Errorf("expected verification failure, got %v", err)
	}
}

func TestDecode_DropsAlpha(t *testing.T) {
	src := solidImage(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 128})

	bmp, err := Decode(encodePNG(t, src))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	c := bmp.Image.NRGBAAt(1, 1)
	if c.A != 255 {
		t.Errorf("expected opaque pixel, got alpha %d", c.A)
	}
	if c.R != 10 || c.G != 20 || c.B != 30 {
		t.Errorf("expected color channels to be kept, got %v", c)
	}
}

func TestDecode_Grayscale(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 2))
	for i := range src.Pix {
		src.Pix[i] = 77
	}

	bmp, err := Decode(encodePNG(t, src))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	c := bmp.Image.NRGBAAt(2, 1)
	if c.R != 77 || c.G != 77 || c.B != 77 || c.A != 255 {
		t.Errorf("expected expanded gray pixel, got %v", c)
	}
}

func TestFromImage_OffsetBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 15, 13))

	bmp, err := FromImage(src)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if bmp.Image.Bounds().Min != (image.Point{}) {
		t.Errorf("expected bitmap anchored at origin, got %v", bmp.Image.Bounds())
	}
	if bmp.Width() != 5 || bmp.Height() != 3 {
		t.Errorf("expected 5x3, got %dx%d", bmp.Width(), bmp.Height())
	}
}

func TestFromImage_Empty(t *testing.T) {
	if _, err := FromImage(image.NewNRGBA(image.Rectangle{})); err == nil {
		t.Error("expected error for empty image")
	}
}
