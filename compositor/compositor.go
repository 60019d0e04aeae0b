// Package compositor turns anchored fields into permanent image draws. It
// computes the aspect-preserving fit of each source image inside its
// placement rectangle and drives a staged, atomic batch against a
// compositing sink.
package compositor

import (
	"context"
	"errors"
	"fmt"

	"github.com/fieldink/signkit/anchor"
	"github.com/fieldink/signkit/doc"
	"github.com/fieldink/signkit/geom"
	"github.com/fieldink/signkit/observability"
	"github.com/fieldink/signkit/placement"
)

var (
	// ErrNothingToSign is returned when a burn request carries no field
	// with a drawable image value. The document is untouched.
	ErrNothingToSign = errors.New("compositor: nothing to sign")
	// ErrAllPlacementsRejected is returned when every candidate failed
	// validation. The document is untouched.
	ErrAllPlacementsRejected = errors.New("compositor: all placements rejected")
	// ErrInvalidPlacement marks a placement rectangle with non-positive
	// extent.
	ErrInvalidPlacement = errors.New("compositor: invalid placement rectangle")
	// ErrMalformedImage marks a source image with zero or undecodable
	// intrinsic dimensions.
	ErrMalformedImage = errors.New("compositor: malformed source image")
	// ErrProcessing wraps a sink failure during staging or commit. The
	// document is untouched.
	ErrProcessing = errors.New("compositor: processing failed")
)

// AspectFit computes the rectangle at which an image of intrinsic size
// (imgW, imgH) is drawn inside target: scaled by the smaller of the two
// axis ratios and centered. The image is never cropped and never stretched;
// one axis exactly fills the target unless the target is exactly
// proportional to the image, in which case both do.
func AspectFit(target geom.Rect, imgW, imgH int) (geom.Rect, error) {
	if imgW <= 0 || imgH <= 0 {
		return geom.Rect{}, fmt.Errorf("%w: %dx%d", ErrMalformedImage, imgW, imgH)
	}
	if !target.Valid() {
		return geom.Rect{}, fmt.Errorf("%w: %.2fx%.2f", ErrInvalidPlacement, target.Width, target.Height)
	}
	sx := target.Width / float64(imgW)
	sy := target.Height / float64(imgH)
	scale := sx
	if sy < sx {
		scale = sy
	}
	drawW := float64(imgW) * scale
	drawH := float64(imgH) * scale
	return geom.Rect{
		X:      target.X + (target.Width-drawW)/2,
		Y:      target.Y + (target.Height-drawH)/2,
		Width:  drawW,
		Height: drawH,
	}, nil
}

// Sink is the external rasterizer contract. ImageSize reports a blob's
// intrinsic pixel dimensions; Begin opens a staged batch against a document.
type Sink interface {
	ImageSize(blob anchor.ImageBlob) (w, h int, err error)
	Begin(d *doc.Document) (Batch, error)
}

// Batch stages draws and applies them all at once. Draw must not mutate the
// document; only Commit does. A batch that is never committed leaves the
// document exactly as it was.
type Batch interface {
	// Draw stages the blob at the given page-unit rectangle (bottom-left
	// origin) on a 1-based page.
	Draw(page int, r geom.Rect, blob anchor.ImageBlob) error
	Commit() error
}

// Draw records one performed draw.
type Draw struct {
	FieldID string
	Page    int
	Rect    geom.Rect
}

// FieldError records a per-field rejection; the rest of the batch proceeds.
type FieldError struct {
	FieldID string
	Err     error
}

func (e FieldError) Error() string { return e.FieldID + ": " + e.Err.Error() }

func (e FieldError) Unwrap() error { return e.Err }

// Result reports the outcome of a burn.
type Result struct {
	Drawn    []Draw
	Skipped  []string // field ids with no image value
	Rejected []FieldError
}

// Compositor orchestrates burn batches against a sink.
type Compositor struct {
	sink   Sink
	log    observability.Logger
	tracer observability.Tracer
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithLogger installs a structured logger.
func WithLogger(l observability.Logger) Option {
	return func(c *Compositor) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTracer installs a tracer for burn spans.
func WithTracer(t observability.Tracer) Option {
	return func(c *Compositor) {
		if t != nil {
			c.tracer = t
		}
	}
}

// New returns a compositor over the given sink.
func New(sink Sink, opts ...Option) *Compositor {
	c := &Compositor{
		sink:   sink,
		log:    observability.NopLogger{},
		tracer: observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type staged struct {
	fieldID string
	page    int
	rect    geom.Rect
	blob    anchor.ImageBlob
}

// Burn composites every signature and image field that carries a value into
// the document. Fields without a value are skipped; fields whose placement
// or image fails validation are rejected individually while the rest
// proceed. Draws happen in the order fields were supplied and each reads
// only its own target rectangle, so placements are independent of one
// another. Any returned error guarantees the document was not mutated.
func (c *Compositor) Burn(ctx context.Context, d *doc.Document, fields []*anchor.Field, pages map[int]geom.PageSize) (*Result, error) {
	ctx, span := c.tracer.StartSpan(ctx, "compositor.burn")
	defer span.Finish()

	res := &Result{}
	var stage []staged

	candidates := 0
	for _, f := range fields {
		if f == nil {
			continue
		}
		if f.Type != anchor.FieldSignature && f.Type != anchor.FieldImage {
			continue
		}
		blob, ok := f.Value.Image()
		if !ok || blob.IsZero() {
			res.Skipped = append(res.Skipped, f.ID)
			c.log.Debug("field skipped, no image value", observability.String("field", f.ID))
			continue
		}
		candidates++

		target, err := placement.FromField(f, pages[f.Page])
		if err != nil {
			res.Rejected = append(res.Rejected, FieldError{FieldID: f.ID, Err: err})
			continue
		}
		imgW, imgH, err := c.sink.ImageSize(blob)
		if err != nil {
			res.Rejected = append(res.Rejected, FieldError{FieldID: f.ID, Err: fmt.Errorf("%w: %v", ErrMalformedImage, err)})
			continue
		}
		draw, err := AspectFit(target.Rect, imgW, imgH)
		if err != nil {
			res.Rejected = append(res.Rejected, FieldError{FieldID: f.ID, Err: err})
			continue
		}
		stage = append(stage, staged{fieldID: f.ID, page: target.Page, rect: draw, blob: blob})
	}

	if candidates == 0 {
		span.SetError(ErrNothingToSign)
		return nil, ErrNothingToSign
	}
	if len(stage) == 0 {
		err := fmt.Errorf("%w: %d of %d", ErrAllPlacementsRejected, len(res.Rejected), candidates)
		span.SetError(err)
		return nil, err
	}

	batch, err := c.sink.Begin(d)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("%w: %v", ErrProcessing, err)
	}
	for _, s := range stage {
		if err := ctx.Err(); err != nil {
			span.SetError(err)
			return nil, fmt.Errorf("%w: %v", ErrProcessing, err)
		}
		if err := batch.Draw(s.page, s.rect, s.blob); err != nil {
			span.SetError(err)
			return nil, fmt.Errorf("%w: field %s: %v", ErrProcessing, s.fieldID, err)
		}
		res.Drawn = append(res.Drawn, Draw{FieldID: s.fieldID, Page: s.page, Rect: s.rect})
	}
	if err := batch.Commit(); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("%w: commit: %v", ErrProcessing, err)
	}

	span.SetTag(observability.MetricBurnPlacements, len(res.Drawn))
	span.SetTag(observability.MetricBurnSkipped, len(res.Skipped))
	span.SetTag(observability.MetricBurnRejected, len(res.Rejected))
	c.log.Info("burn complete",
		observability.Int("drawn", len(res.Drawn)),
		observability.Int("skipped", len(res.Skipped)),
		observability.Int("rejected", len(res.Rejected)))
	return res, nil
}
