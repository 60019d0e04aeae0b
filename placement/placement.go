// Package placement maps a field's fractional viewport geometry into
// page-unit space. Fractional space has a top-left origin; page-unit space
// has a bottom-left origin, so the y axis is flipped during conversion.
package placement

import (
	"errors"
	"fmt"

	"github.com/fieldink/signkit/anchor"
	"github.com/fieldink/signkit/geom"
)

// ErrNoGeometry is returned when the page's physical dimensions are absent
// or unusable. Callers must not proceed to compositing without a placement.
var ErrNoGeometry = errors.New("placement: page geometry unavailable")

// Rect is the page-unit rectangle a field maps to. Y is measured from the
// bottom of the page. A Rect is derived on demand and never stored.
type Rect struct {
	geom.Rect
	Page int
}

// FromFraction converts a fractional rectangle on a 1-based page into
// page-unit space.
//
// The single subtraction in the y computation is the axis-flip invariant: a
// top-left fractional y of 0 maps to page-unit y = HeightPts - fieldHeight,
// and a field whose bottom touches the viewport bottom maps to y = 0.
func FromFraction(f geom.FracRect, page int, pg geom.PageSize) (Rect, error) {
	if !pg.Valid() {
		return Rect{}, fmt.Errorf("%w: page %d", ErrNoGeometry, page)
	}
	heightPt := f.Height * pg.HeightPts
	yFromTop := f.Y * pg.HeightPts
	return Rect{
		Rect: geom.Rect{
			X:      f.X * pg.WidthPts,
			Y:      pg.HeightPts - yFromTop - heightPt,
			Width:  f.Width * pg.WidthPts,
			Height: heightPt,
		},
		Page: page,
	}, nil
}

// FromField converts a field's stored fractions using the given page
// geometry. Nil fields yield ErrNoGeometry, mirroring the absent-input
// contract of the conversion.
func FromField(f *anchor.Field, pg geom.PageSize) (Rect, error) {
	if f == nil {
		return Rect{}, fmt.Errorf("%w: no field", ErrNoGeometry)
	}
	return FromFraction(f.Frac, f.Page, pg)
}
