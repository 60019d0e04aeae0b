// Package anchor implements the anchoring model: every placed field stores
// its position and size as fractions of the rendering viewport, so pixel
// geometry can be re-derived for any viewport size. Pixel coordinates are
// never the source of truth.
package anchor

import (
	"errors"
	"fmt"

	"github.com/fieldink/signkit/geom"
	"github.com/fieldink/signkit/observability"
)

var (
	// ErrFieldNotFound is returned for an update that names an unknown id.
	ErrFieldNotFound = errors.New("anchor: field not found")
	// ErrViewportUnset is returned when a pixel conversion was requested
	// while the viewport has no usable dimensions. The field's stored
	// fractions are left untouched.
	ErrViewportUnset = errors.New("anchor: viewport dimensions unavailable")
	// ErrValueMismatch is returned when a value's payload shape does not
	// match the field's type.
	ErrValueMismatch = errors.New("anchor: value does not match field type")
)

// Field is a placed interactive element. ID and Type are immutable after
// creation; Frac holds the viewport-relative geometry written by the model.
//
// The fractions are always relative to the viewport in effect when they were
// last written. Re-deriving pixel geometry therefore needs the current
// viewport, not the one at write time.
type Field struct {
	ID    string
	Type  FieldType
	Page  int // 1-based
	Frac  geom.FracRect
	Value Value
}

// PixelsToFraction converts a pixel rectangle to fractions of the viewport.
// It reports false when the viewport has no usable dimensions; in that case
// the returned rect is zero and must not be stored.
func PixelsToFraction(r geom.Rect, vp geom.Size) (geom.FracRect, bool) {
	if !vp.Valid() {
		return geom.FracRect{}, false
	}
	return geom.FracRect{
		X:      r.X / vp.W,
		Y:      r.Y / vp.H,
		Width:  r.Width / vp.W,
		Height: r.Height / vp.H,
	}, true
}

// FractionToPixels converts fractional geometry back to pixels for the given
// viewport. Pure inverse of PixelsToFraction; it never mutates anything and
// is called on every render or resize event.
func FractionToPixels(f geom.FracRect, vp geom.Size) geom.Rect {
	return geom.Rect{
		X:      f.X * vp.W,
		Y:      f.Y * vp.H,
		Width:  f.Width * vp.W,
		Height: f.Height * vp.H,
	}
}

// Model owns the ordered collection of fields and the per-page geometry
// registry. Fields are looked up by id, never by position.
//
// A Model is not safe for concurrent use. Mutations happen in response to
// discrete, fully-applied user gestures and are expected to arrive from a
// single goroutine.
type Model struct {
	viewport geom.Size
	fields   []*Field
	byID     map[string]*Field
	pages    map[int]geom.PageSize
	nextID   int
	log      observability.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithLogger installs a structured logger. The default discards everything.
func WithLogger(l observability.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// NewModel returns an empty model.
func NewModel(opts ...Option) *Model {
	m := &Model{
		byID:  make(map[string]*Field),
		pages: make(map[int]geom.PageSize),
		log:   observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetViewport records the current rendering viewport. Zero or negative
// dimensions mark the viewport as unavailable (mid-layout); conversions are
// skipped until a usable size arrives.
func (m *Model) SetViewport(w, h float64) {
	m.viewport = geom.Size{W: w, H: h}
}

// Viewport returns the injected current viewport size.
func (m *Model) Viewport() geom.Size { return m.viewport }

// SetPageGeometry records a page's physical dimensions, replacing any prior
// value wholesale. Called once per page load.
func (m *Model) SetPageGeometry(page int, size geom.PageSize) {
	m.pages[page] = size
}

// PageGeometry returns the recorded dimensions for a 1-based page index.
func (m *Model) PageGeometry(page int) (geom.PageSize, bool) {
	s, ok := m.pages[page]
	return s, ok
}

// PageGeometries returns a copy of the page registry.
func (m *Model) PageGeometries() map[int]geom.PageSize {
	out := make(map[int]geom.PageSize, len(m.pages))
	for k, v := range m.pages {
		out[k] = v
	}
	return out
}

// AddField appends a field with the given type, page and fractional
// geometry, assigning the next unique id.
func (m *Model) AddField(t FieldType, page int, frac geom.FracRect) *Field {
	m.nextID++
	f := &Field{
		ID:   fmt.Sprintf("fld-%d", m.nextID),
		Type: t,
		Page: page,
		Frac: frac,
	}
	m.fields = append(m.fields, f)
	m.byID[f.ID] = f
	m.log.Debug("field added",
		observability.String("id", f.ID),
		observability.String("type", string(t)),
		observability.Int("page", page))
	return f
}

// Field returns the field with the given id.
func (m *Model) Field(id string) (*Field, bool) {
	f, ok := m.byID[id]
	return f, ok
}

// Fields returns the fields in creation order. The slice is a copy; the
// pointed-to fields are shared.
func (m *Model) Fields() []*Field {
	out := make([]*Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// SetValue assigns a field's value after checking the payload shape against
// the field type.
func (m *Model) SetValue(id string, v Value) error {
	f, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	if !v.matches(f.Type) {
		return fmt.Errorf("%w: field %s is %s", ErrValueMismatch, id, f.Type)
	}
	f.Value = v
	return nil
}

// UpdatePosition recomputes a field's fractional position from pixel
// coordinates. The divisor on the x axis is the model's current viewport
// width; the y divisor is the supplied height. When either divisor is not
// positive the stored fractions are retained unchanged and ErrViewportUnset
// is returned; no NaN or Inf is ever written.
func (m *Model) UpdatePosition(id string, xPx, yPx, viewportH float64) error {
	f, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	if m.viewport.W <= 0 || viewportH <= 0 {
		return ErrViewportUnset
	}
	f.Frac.X = xPx / m.viewport.W
	f.Frac.Y = yPx / viewportH
	m.log.Debug("field moved",
		observability.String("id", id),
		observability.Float64("x", f.Frac.X),
		observability.Float64("y", f.Frac.Y))
	return nil
}

// UpdateSize recomputes a field's fractional size from pixel dimensions.
// Same divisor and error behavior as UpdatePosition.
func (m *Model) UpdateSize(id string, wPx, hPx, viewportH float64) error {
	f, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	if m.viewport.W <= 0 || viewportH <= 0 {
		return ErrViewportUnset
	}
	f.Frac.Width = wPx / m.viewport.W
	f.Frac.Height = hPx / viewportH
	m.log.Debug("field resized",
		observability.String("id", id),
		observability.Float64("w", f.Frac.Width),
		observability.Float64("h", f.Frac.Height))
	return nil
}

// PixelRect derives the field's on-screen rectangle for the current
// viewport. It reports false while the viewport is unavailable. Read-only;
// the stored fractions are never touched by rendering.
func (m *Model) PixelRect(id string) (geom.Rect, bool) {
	f, ok := m.byID[id]
	if !ok || !m.viewport.Valid() {
		return geom.Rect{}, false
	}
	return FractionToPixels(f.Frac, m.viewport), true
}
