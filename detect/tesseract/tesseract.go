// Package tesseract provides the gosseract-backed detection engine.
// Importing it registers the engine as the package detect default.
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/fieldink/signkit/detect"
	"github.com/fieldink/signkit/geom"
)

func init() {
	detect.SetDefaultEngine(NewEngine())
}

// Engine implements detect.Engine using the gosseract client.
type Engine struct {
	clientFactory func() *gosseract.Client
}

// NewEngine constructs a Tesseract-backed engine.
func NewEngine() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize performs OCR on a single rendered page image and returns the
// word boxes.
func (e *Engine) Recognize(ctx context.Context, in detect.Input) (detect.Result, error) {
	if err := ctx.Err(); err != nil {
		return detect.Result{}, err
	}
	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(in.Image); err != nil {
		return detect.Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return detect.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return detect.Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return detect.Result{}, fmt.Errorf("bounding boxes: %w", err)
	}

	res := detect.Result{InputID: in.ID, Page: in.Page}
	for _, b := range boxes {
		res.Words = append(res.Words, detect.Word{
			Text: b.Word,
			Box: geom.Rect{
				X:      float64(b.Box.Min.X),
				Y:      float64(b.Box.Min.Y),
				Width:  float64(b.Box.Dx()),
				Height: float64(b.Box.Dy()),
			},
			Confidence: b.Confidence / 100.0,
		})
	}
	return res, nil
}
