// Package output persists thumbnails as JPEG files keyed by person slug.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/kozaktomas/headshot/internal/constants"
	"github.com/kozaktomas/headshot/internal/slug"
)

// ErrEmptyIdentity is returned when an identity produces an empty slug.
var ErrEmptyIdentity = errors.New("empty identity")

type Writer struct {
	dir     string
	quality int
}

// NewWriter returns a writer storing files in dir. A quality outside 1-100
// falls back to the default.
func NewWriter(dir string, quality int) *Writer {
	if quality < 1 || quality > 100 {
		quality = constants.JPEGQuality
	}
	return &Writer{dir: dir, quality: quality}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Path returns the file a thumbnail for identity is written to.
func (w *Writer) Path(identity string) (string, error) {
	s := slug.Make(identity)
	if s == "" {
		return "", ErrEmptyIdentity
	}
	return filepath.Join(w.dir, s+".jpg"), nil
}

// Save encodes img and replaces any previous file for identity. The file is
// written next to its destination and renamed into place, so readers never
// see a partial image.
func (w *Writer) Save(identity string, img image.Image) (string, error) {
	dest, err := w.Path(identity)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(w.dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := w.Encode(tmp, img); err != nil {
		tmp.Close()
		cleanup()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return "", fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		cleanup()
		return "", fmt.Errorf("replacing %s: %w", dest, err)
	}
	return dest, nil
}

// Encode writes img to out as JPEG at the writer's quality.
func (w *Writer) Encode(out io.Writer, img image.Image) error {
	bw := bufio.NewWriter(out)
	if err := imaging.Encode(bw, img, imaging.JPEG, imaging.JPEGQuality(w.quality)); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}
