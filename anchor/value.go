package anchor

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// FieldType identifies what a placed field holds.
type FieldType string

const (
	FieldSignature FieldType = "signature"
	FieldText      FieldType = "text"
	FieldDate      FieldType = "date"
	FieldRadio     FieldType = "radio"
	FieldImage     FieldType = "image"
)

// Known reports whether t is one of the supported field types.
func (t FieldType) Known() bool {
	switch t {
	case FieldSignature, FieldText, FieldDate, FieldRadio, FieldImage:
		return true
	}
	return false
}

// ImageBlob is a self-describing raster image payload: a MIME type tag plus
// the raw encoded bytes. The anchoring core never decodes pixels itself; the
// blob is handed through to the compositing sink.
type ImageBlob struct {
	MIME string
	Data []byte
}

// IsZero reports whether the blob carries no image.
func (b ImageBlob) IsZero() bool { return len(b.Data) == 0 }

// ParseDataURL decodes a data URL of the form
// "data:image/png;base64,...." into an ImageBlob.
func ParseDataURL(s string) (ImageBlob, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return ImageBlob{}, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return ImageBlob{}, fmt.Errorf("data URL has no payload")
	}
	mime, enc := meta, ""
	if i := strings.LastIndexByte(meta, ';'); i >= 0 {
		mime, enc = meta[:i], meta[i+1:]
	}
	if enc != "base64" {
		return ImageBlob{}, fmt.Errorf("unsupported data URL encoding %q", enc)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ImageBlob{}, fmt.Errorf("decode data URL payload: %w", err)
	}
	if len(data) == 0 {
		return ImageBlob{}, fmt.Errorf("empty data URL payload")
	}
	return ImageBlob{MIME: mime, Data: data}, nil
}

// DataURL re-encodes the blob as a data URL.
func (b ImageBlob) DataURL() string {
	return "data:" + b.MIME + ";base64," + base64.StdEncoding.EncodeToString(b.Data)
}

type valueKind int

const (
	valueNone valueKind = iota
	valueText
	valueDate
	valueSelected
	valueImage
)

// Value is the tagged payload of a field. Exactly one payload shape exists
// per field type: free text, an ISO date string, a boolean selection, or an
// image blob. The zero Value means "unset".
type Value struct {
	kind     valueKind
	text     string
	selected bool
	blob     ImageBlob
}

// TextValue wraps free text for a text field.
func TextValue(s string) Value { return Value{kind: valueText, text: s} }

// DateValue wraps an ISO 8601 date string for a date field.
func DateValue(s string) Value { return Value{kind: valueDate, text: s} }

// RadioValue wraps a boolean selection for a radio field.
func RadioValue(selected bool) Value { return Value{kind: valueSelected, selected: selected} }

// ImageValue wraps a raster blob for a signature or image field.
func ImageValue(b ImageBlob) Value { return Value{kind: valueImage, blob: b} }

// IsZero reports whether the value is unset.
func (v Value) IsZero() bool { return v.kind == valueNone }

// Text returns the text payload of a text or date value.
func (v Value) Text() (string, bool) {
	if v.kind == valueText || v.kind == valueDate {
		return v.text, true
	}
	return "", false
}

// Selected returns the boolean payload of a radio value.
func (v Value) Selected() (bool, bool) {
	if v.kind == valueSelected {
		return v.selected, true
	}
	return false, false
}

// Image returns the blob payload of a signature or image value.
func (v Value) Image() (ImageBlob, bool) {
	if v.kind == valueImage {
		return v.blob, true
	}
	return ImageBlob{}, false
}

// matches reports whether the value's payload shape is legal for the given
// field type. The unset value matches every type.
func (v Value) matches(t FieldType) bool {
	switch v.kind {
	case valueNone:
		return true
	case valueText:
		return t == FieldText
	case valueDate:
		return t == FieldDate
	case valueSelected:
		return t == FieldRadio
	case valueImage:
		return t == FieldSignature || t == FieldImage
	}
	return false
}
