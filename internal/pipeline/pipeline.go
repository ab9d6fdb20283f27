// Package pipeline runs the fetch, detect, crop and save stages for a batch
// of people, one record at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/kozaktomas/headshot/internal/constants"
	"github.com/kozaktomas/headshot/internal/crop"
	"github.com/kozaktomas/headshot/internal/face"
	"github.com/kozaktomas/headshot/internal/fetch"
)

// Record is one person to process.
type Record struct {
	Identity string
	PhotoURL string
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Bitmap, error)
}

type Locator interface {
	Locate(bmp *fetch.Bitmap) (face.Region, bool)
}

type Writer interface {
	Save(identity string, img image.Image) (string, error)
}

// Outcome is the final state of one record.
type Outcome string

const (
	OutcomeSaved   Outcome = "saved"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Skip reasons
const (
	ReasonNoIdentity = "no identity"
	ReasonNoPhotoURL = "no photo url"
	ReasonCancelled  = "cancelled"
)

// Result describes what happened to one record.
type Result struct {
	Record  Record
	Outcome Outcome
	Reason  string // set when skipped
	Err     error  // set when failed
	Path    string // set when saved

	SourceWidth  int
	SourceHeight int
	Face         face.Region
	FaceFound    bool
	Crop         crop.Region
	Width        int
	Height       int
}

// Summary aggregates a batch run.
type Summary struct {
	Saved   int
	Skipped int
	Failed  int
	Results []Result
}

// Event is a human-readable progress update.
type Event struct {
	Phase    string // "processing", "downloaded", "detected", "cropped", "saved", "skipped", "failed"
	Current  int    // 1-based record position, 0 outside a batch
	Total    int
	Identity string
	Message  string
}

type Options struct {
	MaxDimension int
	OnProgress   func(Event) // optional
}

type Pipeline struct {
	fetcher Fetcher
	locator Locator
	writer  Writer
	opts    Options
}

func New(fetcher Fetcher, locator Locator, writer Writer, opts Options) *Pipeline {
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = constants.MaxDimension
	}
	return &Pipeline{fetcher: fetcher, locator: locator, writer: writer, opts: opts}
}

// Run processes records in order. A failing record never stops the batch;
// only cancellation of ctx does, in which case the remaining records are
// reported as skipped.
func (p *Pipeline) Run(ctx context.Context, records []Record) *Summary {
	summary := &Summary{Results: make([]Result, 0, len(records))}

	for i, rec := range records {
		var res Result
		if ctx.Err() != nil {
			res = Result{Record: rec, Outcome: OutcomeSkipped, Reason: ReasonCancelled}
		} else {
			res = p.process(ctx, i+1, len(records), rec)
		}

		switch res.Outcome {
		case OutcomeSaved:
			summary.Saved++
		case OutcomeSkipped:
			summary.Skipped++
		case OutcomeFailed:
			summary.Failed++
		}
		summary.Results = append(summary.Results, res)
	}
	return summary
}

// Process handles a single record outside of a batch.
func (p *Pipeline) Process(ctx context.Context, rec Record) Result {
	return p.process(ctx, 0, 0, rec)
}

func (p *Pipeline) process(ctx context.Context, current, total int, rec Record) (res Result) {
	res.Record = rec
	identity := strings.TrimSpace(rec.Identity)
	if identity == "" {
		res.Outcome, res.Reason = OutcomeSkipped, ReasonNoIdentity
		return res
	}

	emit := func(phase, format string, args ...any) {
		if p.opts.OnProgress != nil {
			p.opts.OnProgress(Event{
				Phase:    phase,
				Current:  current,
				Total:    total,
				Identity: identity,
				Message:  fmt.Sprintf(format, args...),
			})
		}
	}

	defer func() {
		if r := recover(); r != nil {
			res.Outcome, res.Err = OutcomeFailed, fmt.Errorf("internal error: %v", r)
			emit("failed", "Failed: %v", res.Err)
		}
	}()

	emit("processing", "Processing %s...", identity)

	if strings.TrimSpace(rec.PhotoURL) == "" {
		res.Outcome, res.Reason = OutcomeSkipped, ReasonNoPhotoURL
		emit("skipped", "No photo URL, skipping")
		return res
	}

	bmp, err := p.fetcher.Fetch(ctx, rec.PhotoURL)
	switch {
	case errors.Is(err, fetch.ErrNoURL):
		res.Outcome, res.Reason = OutcomeSkipped, ReasonNoPhotoURL
		emit("skipped", "No photo URL, skipping")
		return res
	case err != nil:
		res.Outcome, res.Err = OutcomeFailed, err
		emit("failed", "Failed to download, skipping: %v", err)
		return res
	}
	res.SourceWidth, res.SourceHeight = bmp.Width(), bmp.Height()
	emit("downloaded", "Downloaded: %dx%d", res.SourceWidth, res.SourceHeight)

	thumb := Render(bmp, p.locator, p.opts.MaxDimension)
	res.Face, res.FaceFound, res.Crop = thumb.Face, thumb.FaceFound, thumb.Crop
	if thumb.FaceFound {
		emit("detected", "Face detected at %v", thumb.Face)
	} else {
		emit("detected", "No face detected, using center crop")
	}

	b := thumb.Image.Bounds()
	res.Width, res.Height = b.Dx(), b.Dy()
	emit("cropped", "Cropped to: %dx%d", res.Width, res.Height)

	path, err := p.writer.Save(identity, thumb.Image)
	if err != nil {
		res.Outcome, res.Err = OutcomeFailed, fmt.Errorf("saving thumbnail: %w", err)
		emit("failed", "Failed to save: %v", err)
		return res
	}
	res.Outcome, res.Path = OutcomeSaved, path
	emit("saved", "Saved: %s", path)
	return res
}

// Thumbnail is a rendered crop together with the geometry that produced it.
type Thumbnail struct {
	Image     *image.NRGBA
	Face      face.Region
	FaceFound bool
	Crop      crop.Region
}

// Render locates the face in bmp and applies the matching crop policy.
func Render(bmp *fetch.Bitmap, locator Locator, maxDim int) Thumbnail {
	f, found := locator.Locate(bmp)
	region := crop.Plan(bmp.Width(), bmp.Height(), f, found)
	return Thumbnail{
		Image:     crop.Apply(bmp.Image, region, maxDim),
		Face:      f,
		FaceFound: found,
		Crop:      region,
	}
}
