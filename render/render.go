// Package render implements the compositing sink over the in-memory
// document model. Source blobs are decoded with the standard image decoders
// plus the x/image formats, converted to 8-bit RGB with an optional soft
// mask, and drawn by emitting q/cm/Do/Q operations. All mutation of the
// document is deferred to batch commit.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	_ "image/gif"  // register decoders for signature blobs
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/fieldink/signkit/anchor"
	"github.com/fieldink/signkit/compositor"
	"github.com/fieldink/signkit/coords"
	"github.com/fieldink/signkit/doc"
	"github.com/fieldink/signkit/geom"
	"github.com/fieldink/signkit/observability"
)

// Renderer implements compositor.Sink.
type Renderer struct {
	log observability.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger installs a structured logger.
func WithLogger(l observability.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// New returns a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ImageSize decodes only the blob's header and reports its intrinsic pixel
// dimensions.
func (r *Renderer) ImageSize(blob anchor.ImageBlob) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(blob.Data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Begin opens a staged batch against the document.
func (r *Renderer) Begin(d *doc.Document) (compositor.Batch, error) {
	if d == nil {
		return nil, fmt.Errorf("render: nil document")
	}
	return &batch{doc: d, log: r.log}, nil
}

type stagedDraw struct {
	page *doc.Page
	rect geom.Rect
	img  *doc.Image
}

type batch struct {
	doc   *doc.Document
	log   observability.Logger
	stage []stagedDraw
}

// Draw decodes the blob and stages the draw. The document is not touched.
func (b *batch) Draw(page int, rect geom.Rect, blob anchor.ImageBlob) error {
	p, ok := b.doc.PageAt(page)
	if !ok {
		return fmt.Errorf("render: document has no page %d", page)
	}
	src, _, err := image.Decode(bytes.NewReader(blob.Data))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	b.stage = append(b.stage, stagedDraw{page: p, rect: rect, img: FromImage(src)})
	return nil
}

// Commit registers the staged XObjects and appends their draw operations in
// staging order.
func (b *batch) Commit() error {
	for _, s := range b.stage {
		res := s.page.EnsureResources()
		name := nextImageName(b.doc)
		res.XObjects[name] = s.img

		m := coords.UnitRectTo(s.rect.X, s.rect.Y, s.rect.Width, s.rect.Height)
		s.page.Append(
			doc.Operation{Operator: "q"},
			doc.Operation{Operator: "cm", Operands: doc.Num(m[0], m[1], m[2], m[3], m[4], m[5])},
			doc.Operation{Operator: "Do", Operands: []doc.Operand{doc.NameOperand{Value: name}}},
			doc.Operation{Operator: "Q"},
		)
		b.log.Debug("image drawn",
			observability.String("xobject", name),
			observability.Int("page", s.page.Index+1),
			observability.Float64("x", s.rect.X),
			observability.Float64("y", s.rect.Y))
	}
	b.stage = nil
	return nil
}

// nextImageName allocates the next unused Im<N> resource name across the
// whole document, so names stay unique when several batches run.
func nextImageName(d *doc.Document) string {
	count := 0
	for _, p := range d.Pages {
		if p.Resources != nil {
			count += len(p.Resources.XObjects)
		}
	}
	return fmt.Sprintf("Im%d", count+1)
}

// FromImage converts a decoded image to the document's raster form: 8-bit
// DeviceRGB samples plus a DeviceGray soft mask when any pixel is not fully
// opaque.
func FromImage(src image.Image) *doc.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Non-premultiplied alpha keeps the raw color values intact.
	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)

	pixels := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)
	hasAlpha := false
	for i := 0; i < w*h; i++ {
		off := i * 4
		pixels = append(pixels, nrgba.Pix[off], nrgba.Pix[off+1], nrgba.Pix[off+2])
		a := nrgba.Pix[off+3]
		alpha = append(alpha, a)
		if a < 255 {
			hasAlpha = true
		}
	}

	img := &doc.Image{Width: w, Height: h, Data: pixels}
	if hasAlpha {
		img.SMask = &doc.Image{Width: w, Height: h, Gray: true, Data: alpha}
	}
	return img
}
