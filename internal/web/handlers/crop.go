package handlers

import (
	"bytes"
	"errors"
	"image"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/kozaktomas/headshot/internal/fetch"
	"github.com/kozaktomas/headshot/internal/pipeline"
)

// Encoder writes a finished thumbnail in its output format.
type Encoder interface {
	Encode(w io.Writer, img image.Image) error
}

// CropOptions configures a CropHandler.
type CropOptions struct {
	MaxDimension int
	// AllowPrivateTargets skips the check that refuses loopback, private and
	// link-local photo URLs.
	AllowPrivateTargets bool
}

// CropHandler serves on-demand thumbnails for a single photo URL.
type CropHandler struct {
	fetcher pipeline.Fetcher
	locator pipeline.Locator
	encoder Encoder
	opts    CropOptions
}

// NewCropHandler creates a new crop handler
func NewCropHandler(fetcher pipeline.Fetcher, locator pipeline.Locator, encoder Encoder, opts CropOptions) *CropHandler {
	return &CropHandler{
		fetcher: fetcher,
		locator: locator,
		encoder: encoder,
		opts:    opts,
	}
}

// Crop downloads the image at ?url=, crops it around the detected face and
// returns the JPEG. The detection outcome and crop rectangle are reported in
// the X-Face-Detected and X-Crop-Region headers.
func (h *CropHandler) Crop(w http.ResponseWriter, r *http.Request) {
	url := strings.TrimSpace(r.URL.Query().Get("url"))
	if url == "" {
		respondError(w, http.StatusBadRequest, "missing url parameter")
		return
	}
	if !h.opts.AllowPrivateTargets {
		if err := fetch.CheckTarget(url); err != nil {
			respondTargetError(w, url, err)
			return
		}
	}

	bmp, err := h.fetcher.Fetch(r.Context(), url)
	switch {
	case errors.Is(err, fetch.ErrNoURL):
		respondError(w, http.StatusBadRequest, "missing url parameter")
		return
	case errors.Is(err, fetch.ErrBlockedTarget), errors.Is(err, fetch.ErrUnsupportedURL):
		respondTargetError(w, url, err)
		return
	case err != nil:
		log.Printf("crop: fetching %s: %v", sanitizeForLog(url), err)
		respondError(w, http.StatusBadGateway, "failed to fetch image")
		return
	}

	thumb := pipeline.Render(bmp, h.locator, h.opts.MaxDimension)

	var buf bytes.Buffer
	if err := h.encoder.Encode(&buf, thumb.Image); err != nil {
		log.Printf("crop: encoding %s: %v", sanitizeForLog(url), err)
		respondError(w, http.StatusInternalServerError, "failed to encode image")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Face-Detected", strconv.FormatBool(thumb.FaceFound))
	w.Header().Set("X-Crop-Region", thumb.Crop.String())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func respondTargetError(w http.ResponseWriter, url string, err error) {
	if errors.Is(err, fetch.ErrBlockedTarget) {
		log.Printf("crop: refusing %s: %v", sanitizeForLog(url), err)
		respondError(w, http.StatusForbidden, "url must point to a public host")
		return
	}
	respondError(w, http.StatusBadRequest, "url must be an absolute http or https url")
}
