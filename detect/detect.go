// Package detect suggests signature-field placements on rendered page
// images by locating anchor phrases like "sign here" with OCR. The OCR
// engine sits behind an interface; the Tesseract-backed implementation
// lives in detect/tesseract and registers itself as the default.
package detect

import (
	"context"

	"github.com/fieldink/signkit/anchor"
	"github.com/fieldink/signkit/geom"
)

// Input is a rendered page image submitted for detection.
type Input struct {
	// ID is echoed back in the Result.
	ID string
	// Image is the encoded image payload (PNG or JPEG).
	Image []byte
	// Page is the 1-based page the image renders.
	Page int
	// Languages is a list of language hints (e.g., "eng") for the engine.
	Languages []string
	// DPI carries the effective dots-per-inch; zero means unknown.
	DPI int
}

// Word is a recognized token with its pixel bounding box (top-left origin
// relative to the input image).
type Word struct {
	Text       string
	Box        geom.Rect
	Confidence float64
}

// Result is the recognition output for one input.
type Result struct {
	InputID string
	Page    int
	Words   []Word
}

// Engine performs text recognition on page images.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (Result, error)
}

var defaultEngine Engine = noopEngine{}

// DefaultEngine returns the registered default engine. Importing
// detect/tesseract swaps in the Tesseract implementation.
func DefaultEngine() Engine { return defaultEngine }

// SetDefaultEngine replaces the default engine.
func SetDefaultEngine(e Engine) {
	if e != nil {
		defaultEngine = e
	}
}

type noopEngine struct{}

func (noopEngine) Name() string { return "noop" }

func (noopEngine) Recognize(_ context.Context, in Input) (Result, error) {
	return Result{InputID: in.ID, Page: in.Page}, nil
}

// Suggestion is a proposed field placement derived from a recognized anchor
// phrase, expressed in fractional viewport coordinates so it can be added to
// an anchoring model directly.
type Suggestion struct {
	Page       int
	Frac       geom.FracRect
	Label      string
	Confidence float64
}

// DefaultKeywords are the anchor words scanned for when none are supplied.
var DefaultKeywords = []string{"sign", "signature", "initial", "initials"}

// SuggestFields scans a recognition result for anchor keywords and converts
// each match's pixel box into a fractional rectangle against the rendered
// image size. The box is widened to a plausible signature area: three times
// the keyword width and twice its height, anchored at the keyword's
// top-left.
func SuggestFields(res Result, imageSize geom.Size, keywords ...string) []Suggestion {
	if !imageSize.Valid() {
		return nil
	}
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	match := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		match[normalize(k)] = true
	}

	var out []Suggestion
	for _, w := range res.Words {
		if !match[normalize(w.Text)] {
			continue
		}
		box := geom.Rect{
			X:      w.Box.X,
			Y:      w.Box.Y,
			Width:  w.Box.Width * 3,
			Height: w.Box.Height * 2,
		}
		frac, ok := anchor.PixelsToFraction(box, imageSize)
		if !ok {
			continue
		}
		out = append(out, Suggestion{
			Page:       res.Page,
			Frac:       frac,
			Label:      w.Text,
			Confidence: w.Confidence,
		})
	}
	return out
}

func normalize(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b = append(b, c+'a'-'A')
		case c >= 'a' && c <= 'z':
			b = append(b, c)
		}
	}
	return string(b)
}
