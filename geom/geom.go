// Package geom holds the shared geometry types of the anchoring and
// compositing pipeline. Three coordinate spaces appear throughout signkit:
//
//   - pixel space: device pixels inside a resizable viewer, top-left origin;
//   - fractional space: position and size as fractions of the current
//     viewport, top-left origin;
//   - page-unit space: fixed physical page points, bottom-left origin.
//
// Rect is origin-agnostic; the package using it fixes the interpretation.
package geom

// Size is a width/height pair, typically a viewport in pixels.
type Size struct {
	W float64
	H float64
}

// Valid reports whether both dimensions are strictly positive. A viewport
// mid-layout may report zero or negative dimensions; conversions must treat
// such a size as unusable rather than divide by it.
func (s Size) Valid() bool { return s.W > 0 && s.H > 0 }

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Valid reports whether the rectangle has positive extent.
func (r Rect) Valid() bool { return r.Width > 0 && r.Height > 0 }

// Contains returns true if the point (x, y) lies within the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// FracRect is a rectangle in fractional space: every component is a ratio of
// the viewport dimension on the same axis. X and Y are the top-left corner.
// Components are not clamped to [0,1]; a drag may transiently push a field
// past the viewport edge before commit.
type FracRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Valid reports whether the fractional extent is strictly positive.
func (f FracRect) Valid() bool { return f.Width > 0 && f.Height > 0 }

// PageSize is a page's physical dimensions in page points. The page origin
// is at the bottom-left corner. A PageSize is derived once per page load and
// is immutable afterwards; reloading a page replaces it wholesale.
type PageSize struct {
	WidthPts  float64
	HeightPts float64
}

// Valid reports whether the page has positive physical extent.
func (p PageSize) Valid() bool { return p.WidthPts > 0 && p.HeightPts > 0 }
