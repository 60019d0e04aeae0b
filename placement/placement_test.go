package placement

import (
	"errors"
	"math"
	"testing"

	"github.com/fieldink/signkit/anchor"
	"github.com/fieldink/signkit/geom"
)

func TestAxisFlip(t *testing.T) {
	pg := geom.PageSize{WidthPts: 600, HeightPts: 800}
	frac := geom.FracRect{X: 0, Y: 0, Width: 0.5, Height: 0.25}

	r, err := FromFraction(frac, 1, pg)
	if err != nil {
		t.Fatalf("FromFraction: %v", err)
	}
	want := geom.Rect{X: 0, Y: 600, Width: 300, Height: 200}
	if r.Rect != want {
		t.Errorf("placement = %+v, want %+v", r.Rect, want)
	}
	if r.Page != 1 {
		t.Errorf("page = %d", r.Page)
	}
}

func TestBottomTouchesZero(t *testing.T) {
	pg := geom.PageSize{WidthPts: 600, HeightPts: 800}
	// Field bottom at the viewport bottom: y + height = 1.
	frac := geom.FracRect{X: 0.2, Y: 0.75, Width: 0.1, Height: 0.25}

	r, err := FromFraction(frac, 3, pg)
	if err != nil {
		t.Fatalf("FromFraction: %v", err)
	}
	if math.Abs(r.Y) > 1e-9 {
		t.Errorf("bottom-anchored field y = %v, want 0", r.Y)
	}
}

func TestMissingGeometry(t *testing.T) {
	frac := geom.FracRect{X: 0.1, Y: 0.1, Width: 0.1, Height: 0.1}
	if _, err := FromFraction(frac, 1, geom.PageSize{}); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("zero geometry error = %v", err)
	}
	if _, err := FromField(nil, geom.PageSize{WidthPts: 600, HeightPts: 800}); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("nil field error = %v", err)
	}
}

func TestFromField(t *testing.T) {
	f := &anchor.Field{
		ID:   "fld-1",
		Type: anchor.FieldSignature,
		Page: 2,
		Frac: geom.FracRect{X: 0.5, Y: 0.5, Width: 0.25, Height: 0.125},
	}
	pg := geom.PageSize{WidthPts: 400, HeightPts: 800}
	r, err := FromField(f, pg)
	if err != nil {
		t.Fatalf("FromField: %v", err)
	}
	want := geom.Rect{X: 200, Y: 300, Width: 100, Height: 100}
	if r.Rect != want || r.Page != 2 {
		t.Errorf("placement = %+v page %d, want %+v page 2", r.Rect, r.Page, want)
	}
}
