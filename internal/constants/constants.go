// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Fetch constants
const (
	// BrowserUserAgent is sent with every photo download. Some CDNs reject
	// clients that identify as scripts.
	BrowserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

	// FetchTimeout bounds a single photo download
	FetchTimeout = 30 * time.Second

	// MaxDownloadBytes is the largest response body accepted as an image
	MaxDownloadBytes = 32 << 20
)

// Face detection constants
const (
	// DetectScaleFactor is the step between detector pyramid levels
	DetectScaleFactor = 1.1

	// DetectShiftFactor is the sliding window stride relative to window size
	DetectShiftFactor = 0.1

	// DetectMinNeighbors is the number of overlapping windows needed to confirm a face
	DetectMinNeighbors = 5

	// DetectMinSize is the smallest face side in pixels
	DetectMinSize = 30

	// DetectGroupEps is the relative corner tolerance for two windows to be neighbors
	DetectGroupEps = 0.2
)

// Crop geometry constants, all relative to the face size
const (
	PadSide   = 1.5
	PadTop    = 0.8
	PadBottom = 2.0

	// FallbackCropRatio is the share of the shorter image side used when no face is found
	FallbackCropRatio = 0.9

	// FallbackTopRatio places the fallback crop this far down from the top edge
	FallbackTopRatio = 0.05
)

// Output constants
const (
	// MaxDimension is the maximum width or height of a saved thumbnail
	MaxDimension = 800

	// JPEGQuality is the encoder quality for saved thumbnails
	JPEGQuality = 90

	DefaultPhotosDir   = "public/photos"
	DefaultProfilesDir = "content/candidates"
)
