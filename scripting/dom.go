package scripting

import (
	"fmt"

	"github.com/fieldink/signkit/anchor"
)

// ModelDOM adapts an anchor.Model to the FormDOM contract. Alerts are
// forwarded to an optional callback.
type ModelDOM struct {
	model   *anchor.Model
	onAlert func(string)
}

// NewModelDOM wraps a model. onAlert may be nil.
func NewModelDOM(m *anchor.Model, onAlert func(string)) *ModelDOM {
	return &ModelDOM{model: m, onAlert: onAlert}
}

func (d *ModelDOM) GetField(id string) (FieldProxy, error) {
	f, ok := d.model.Field(id)
	if !ok {
		return nil, fmt.Errorf("field %q not found", id)
	}
	return &fieldProxy{model: d.model, field: f}, nil
}

func (d *ModelDOM) GetPage(number int) (PageProxy, error) {
	size, ok := d.model.PageGeometry(number)
	if !ok {
		return nil, fmt.Errorf("page %d not loaded", number)
	}
	return &pageProxy{number: number, w: size.WidthPts, h: size.HeightPts}, nil
}

func (d *ModelDOM) Alert(message string) {
	if d.onAlert != nil {
		d.onAlert(message)
	}
}

type fieldProxy struct {
	model *anchor.Model
	field *anchor.Field
}

// GetValue maps the tagged value union to a script value: string for text
// and date, bool for radio, data URL string for images, nil when unset.
func (p *fieldProxy) GetValue() interface{} {
	v := p.field.Value
	if s, ok := v.Text(); ok {
		return s
	}
	if b, ok := v.Selected(); ok {
		return b
	}
	if blob, ok := v.Image(); ok {
		return blob.DataURL()
	}
	return nil
}

// SetValue routes a script value through the union constructor matching the
// field's type. Mismatched shapes are ignored, mirroring the lenient
// viewer-side behavior.
func (p *fieldProxy) SetValue(val interface{}) {
	switch p.field.Type {
	case anchor.FieldText:
		if s, ok := val.(string); ok {
			p.model.SetValue(p.field.ID, anchor.TextValue(s))
		}
	case anchor.FieldDate:
		if s, ok := val.(string); ok {
			p.model.SetValue(p.field.ID, anchor.DateValue(s))
		}
	case anchor.FieldRadio:
		if b, ok := val.(bool); ok {
			p.model.SetValue(p.field.ID, anchor.RadioValue(b))
		}
	case anchor.FieldSignature, anchor.FieldImage:
		if s, ok := val.(string); ok {
			if blob, err := anchor.ParseDataURL(s); err == nil {
				p.model.SetValue(p.field.ID, anchor.ImageValue(blob))
			}
		}
	}
}

type pageProxy struct {
	number int
	w, h   float64
}

func (p *pageProxy) GetNumber() int              { return p.number }
func (p *pageProxy) GetSize() (float64, float64) { return p.w, p.h }
