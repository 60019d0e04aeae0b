package coords

import (
	"math"
	"testing"
)

func approx(a, b Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestIdentity(t *testing.T) {
	p := Point{3, 4}
	if got := Identity().Transform(p); got != p {
		t.Errorf("identity moved point: %+v", got)
	}
}

func TestScaleThenTranslate(t *testing.T) {
	m := Scale(2, 3).Multiply(Translate(10, 20))
	got := m.Transform(Point{1, 1})
	if !approx(got, Point{12, 23}) {
		t.Errorf("got %+v", got)
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	got := Rotate(math.Pi / 2).Transform(Point{1, 0})
	if !approx(got, Point{0, 1}) {
		t.Errorf("got %+v", got)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m := Scale(2, 0.5).Multiply(Rotate(0.3)).Multiply(Translate(-7, 11))
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	p := Point{5, -3}
	if got := inv.Transform(m.Transform(p)); !approx(got, p) {
		t.Errorf("round trip gave %+v", got)
	}
}

func TestInverseSingular(t *testing.T) {
	if _, err := Scale(0, 1).Inverse(); err == nil {
		t.Errorf("singular matrix inverted")
	}
}

func TestUnitRectTo(t *testing.T) {
	m := UnitRectTo(70, 100, 160, 80)
	if got := m.Transform(Point{0, 0}); !approx(got, Point{70, 100}) {
		t.Errorf("origin maps to %+v", got)
	}
	if got := m.Transform(Point{1, 1}); !approx(got, Point{230, 180}) {
		t.Errorf("corner maps to %+v", got)
	}
}
