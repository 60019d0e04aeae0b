package anchor

import (
	"errors"
	"math"
	"testing"

	"github.com/fieldink/signkit/geom"
)

const eps = 1e-9

func almostEqual(a, b float64) bool { return math.Abs(a-b) < eps }

func TestPixelsToFractionRoundTrip(t *testing.T) {
	viewports := []geom.Size{
		{W: 800, H: 600},
		{W: 1920, H: 1080},
		{W: 375, H: 812},
		{W: 1000, H: 1000},
	}
	rects := []geom.Rect{
		{X: 0, Y: 0, Width: 100, Height: 50},
		{X: 13.5, Y: 27.25, Width: 301.75, Height: 88.5},
		{X: 700, Y: 500, Width: 10, Height: 10},
	}
	for _, vp := range viewports {
		for _, r := range rects {
			frac, ok := PixelsToFraction(r, vp)
			if !ok {
				t.Fatalf("PixelsToFraction(%+v, %+v) not ok", r, vp)
			}
			back := FractionToPixels(frac, vp)
			if !almostEqual(back.X, r.X) || !almostEqual(back.Y, r.Y) ||
				!almostEqual(back.Width, r.Width) || !almostEqual(back.Height, r.Height) {
				t.Errorf("round trip %+v via %+v = %+v", r, vp, back)
			}
		}
	}
}

func TestResizeInvariance(t *testing.T) {
	m := NewModel()
	m.SetViewport(1000, 800)
	f := m.AddField(FieldSignature, 1, geom.FracRect{X: 0.25, Y: 0.5, Width: 0.2, Height: 0.1})
	want := f.Frac

	// Rendering at many viewport sizes must never mutate the fractions.
	for _, vp := range []geom.Size{{W: 500, H: 400}, {W: 2000, H: 100}, {W: 1, H: 1}} {
		m.SetViewport(vp.W, vp.H)
		if _, ok := m.PixelRect(f.ID); !ok {
			t.Fatalf("PixelRect not ok for %+v", vp)
		}
		if f.Frac != want {
			t.Fatalf("fractions mutated by read: %+v", f.Frac)
		}
	}
}

func TestDegenerateViewport(t *testing.T) {
	m := NewModel()
	m.SetViewport(1000, 800)
	f := m.AddField(FieldText, 1, geom.FracRect{X: 0.1, Y: 0.2, Width: 0.3, Height: 0.4})
	want := f.Frac

	m.SetViewport(0, 800)
	if err := m.UpdatePosition(f.ID, 500, 400, 800); !errors.Is(err, ErrViewportUnset) {
		t.Fatalf("UpdatePosition error = %v, want ErrViewportUnset", err)
	}
	if f.Frac != want {
		t.Errorf("fractions changed on degenerate viewport: %+v", f.Frac)
	}

	m.SetViewport(1000, 800)
	if err := m.UpdateSize(f.ID, 100, 100, 0); !errors.Is(err, ErrViewportUnset) {
		t.Fatalf("UpdateSize error = %v, want ErrViewportUnset", err)
	}
	if f.Frac != want {
		t.Errorf("fractions changed on zero height: %+v", f.Frac)
	}
	for _, v := range []float64{f.Frac.X, f.Frac.Y, f.Frac.Width, f.Frac.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("stored NaN/Inf: %v", v)
		}
	}
}

func TestUpdatePositionAndSize(t *testing.T) {
	m := NewModel()
	m.SetViewport(1000, 500)
	f := m.AddField(FieldSignature, 2, geom.FracRect{X: 0, Y: 0, Width: 0.1, Height: 0.1})

	if err := m.UpdatePosition(f.ID, 250, 125, 500); err != nil {
		t.Fatalf("UpdatePosition: %v", err)
	}
	if !almostEqual(f.Frac.X, 0.25) || !almostEqual(f.Frac.Y, 0.25) {
		t.Errorf("position fractions = %v, %v", f.Frac.X, f.Frac.Y)
	}

	if err := m.UpdateSize(f.ID, 500, 50, 500); err != nil {
		t.Fatalf("UpdateSize: %v", err)
	}
	if !almostEqual(f.Frac.Width, 0.5) || !almostEqual(f.Frac.Height, 0.1) {
		t.Errorf("size fractions = %v, %v", f.Frac.Width, f.Frac.Height)
	}

	if err := m.UpdatePosition("fld-99", 1, 1, 500); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("unknown id error = %v", err)
	}
}

func TestFieldIDsUniqueAndOrdered(t *testing.T) {
	m := NewModel()
	a := m.AddField(FieldText, 1, geom.FracRect{Width: 0.1, Height: 0.1})
	b := m.AddField(FieldDate, 1, geom.FracRect{Width: 0.1, Height: 0.1})
	if a.ID == b.ID {
		t.Fatalf("ids not unique: %s", a.ID)
	}
	fields := m.Fields()
	if len(fields) != 2 || fields[0] != a || fields[1] != b {
		t.Errorf("fields out of order: %+v", fields)
	}
	if got, ok := m.Field(b.ID); !ok || got != b {
		t.Errorf("lookup by id failed")
	}
}

func TestSetValueTypeChecking(t *testing.T) {
	m := NewModel()
	text := m.AddField(FieldText, 1, geom.FracRect{Width: 0.1, Height: 0.1})
	sig := m.AddField(FieldSignature, 1, geom.FracRect{Width: 0.1, Height: 0.1})

	if err := m.SetValue(text.ID, TextValue("hello")); err != nil {
		t.Fatalf("SetValue text: %v", err)
	}
	if err := m.SetValue(text.ID, RadioValue(true)); !errors.Is(err, ErrValueMismatch) {
		t.Errorf("mismatched value error = %v", err)
	}
	if err := m.SetValue(sig.ID, ImageValue(ImageBlob{MIME: "image/png", Data: []byte{1}})); err != nil {
		t.Fatalf("SetValue image: %v", err)
	}
	if blob, ok := sig.Value.Image(); !ok || blob.MIME != "image/png" {
		t.Errorf("image payload lost: %+v ok=%v", blob, ok)
	}
}

func TestParseDataURL(t *testing.T) {
	blob, err := ParseDataURL("data:image/png;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("ParseDataURL: %v", err)
	}
	if blob.MIME != "image/png" || string(blob.Data) != "hello" {
		t.Errorf("blob = %+v", blob)
	}

	for _, bad := range []string{
		"image/png;base64,aGVsbG8=",
		"data:image/png,plain",
		"data:image/png;base64,%%%",
		"data:image/png;base64,",
	} {
		if _, err := ParseDataURL(bad); err == nil {
			t.Errorf("ParseDataURL(%q) succeeded", bad)
		}
	}
}
