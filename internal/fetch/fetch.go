// Package fetch downloads remote photos and decodes them into opaque RGB bitmaps.
package fetch

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kozaktomas/headshot/internal/constants"
)

// ErrNoURL is returned for an empty or whitespace-only URL. It marks a person
// without a listed photo, which is not a failure.
var ErrNoURL = errors.New("no photo url")

// Stage identifies where a download failed.
type Stage string

const (
	StageRequest Stage = "request"
	StageStatus  Stage = "status"
	StageRead    Stage = "read"
	StageDecode  Stage = "decode"
)

// FetchError describes a failed download.
type FetchError struct {
	URL   string
	Stage Stage
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.URL, e.Stage, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Bitmap is a decoded photo. Every pixel is fully opaque.
type Bitmap struct {
	Image *image.NRGBA
}

// Width returns the bitmap width in pixels.
func (b *Bitmap) Width() int { return b.Image.Bounds().Dx() }

// Height returns the bitmap height in pixels.
func (b *Bitmap) Height() int { return b.Image.Bounds().Dy() }

// Options configures a Fetcher. Zero values fall back to the package defaults.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// InsecureTLS disables certificate and hostname verification. Photo hosts
	// are varied CDNs whose certificates do not validate everywhere; enabling
	// this trusts any of them.
	InsecureTLS bool
	MaxBytes    int64
	// PublicOnly refuses connections to loopback, private and link-local
	// addresses. Set it when URLs come from untrusted callers.
	PublicOnly bool
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxBytes   int64
	publicOnly bool
}

func New(opts Options) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = constants.BrowserUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = constants.FetchTimeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = constants.MaxDownloadBytes
	}

	transport := opts.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if opts.InsecureTLS {
			t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // photo CDNs are trusted without verification
		}
		if opts.PublicOnly {
			// A proxy would be dialed instead of the target, hiding its address.
			t.Proxy = nil
			t.DialContext = (&net.Dialer{
				Timeout:   opts.Timeout,
				KeepAlive: 30 * time.Second,
				Control:   publicOnlyControl,
			}).DialContext
		}
		transport = t
	}

	return &Fetcher{
		client:     &http.Client{Timeout: opts.Timeout, Transport: transport},
		userAgent:  opts.UserAgent,
		maxBytes:   opts.MaxBytes,
		publicOnly: opts.PublicOnly,
	}
}

// Fetch downloads url and decodes it. It makes at most one request and never
// retries.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Bitmap, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrNoURL
	}
	if f.publicOnly {
		if err := CheckTarget(url); err != nil {
			return nil, &FetchError{URL: url, Stage: StageRequest, Err: err}
		}
	}

	data, err := f.download(ctx, url)
	if err != nil {
		return nil, err
	}

	bmp, err := Decode(data)
	if err != nil {
		return nil, &FetchError{URL: url, Stage: StageDecode, Err: err}
	}
	return bmp, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Stage: StageRequest, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req) //nolint:gosec // URLs come from the roster or a PublicOnly fetch
	if err != nil {
		return nil, &FetchError{URL: url, Stage: StageRequest, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, Stage: StageStatus, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	// Read one byte past the limit to tell "exactly at limit" from "too big".
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &FetchError{URL: url, Stage: StageRead, Err: err}
	}
	if int64(len(data)) > f.maxBytes {
		return nil, &FetchError{URL: url, Stage: StageRead, Err: fmt.Errorf("body exceeds %d bytes", f.maxBytes)}
	}
	return data, nil
}

// Decode turns encoded image bytes into a Bitmap. Alpha is dropped rather than
// composited, and grayscale or paletted images are expanded to RGB.
func Decode(data []byte) (*Bitmap, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img)
}

// FromImage converts any image into a Bitmap anchored at the origin.
func FromImage(img image.Image) (*Bitmap, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("image has no pixels (%dx%d)", b.Dx(), b.Dy())
	}
	return &Bitmap{Image: toOpaqueRGB(img)}, nil
}

func toOpaqueRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
