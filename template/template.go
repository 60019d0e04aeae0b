// Package template imports field layouts authored as HTML. Form controls
// carry their anchoring geometry in data attributes, all fractional:
//
//	<input data-field-type="signature" data-page="1"
//	       data-x="0.1" data-y="0.7" data-w="0.3" data-h="0.08">
//
// Parsed controls are added to an anchoring model in document order.
package template

import (
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/fieldink/signkit/anchor"
	"github.com/fieldink/signkit/geom"
)

// ParseFields reads an HTML template and adds one field per recognized
// control to the model. It returns the number of fields added. Controls
// with a missing or unknown data-field-type, or with non-positive size, are
// skipped.
func ParseFields(r io.Reader, m *anchor.Model) (int, error) {
	root, err := html.Parse(r)
	if err != nil {
		return 0, fmt.Errorf("template: parse HTML: %w", err)
	}

	added := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Input || n.DataAtom == atom.Textarea) {
			if f, ok := fieldFromNode(n); ok {
				m.AddField(f.Type, f.Page, f.Frac)
				added++
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return added, nil
}

type parsed struct {
	Type anchor.FieldType
	Page int
	Frac geom.FracRect
}

func fieldFromNode(n *html.Node) (parsed, bool) {
	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		attrs[a.Key] = a.Val
	}

	t := anchor.FieldType(attrs["data-field-type"])
	if !t.Known() {
		return parsed{}, false
	}
	page, err := strconv.Atoi(attrs["data-page"])
	if err != nil || page < 1 {
		return parsed{}, false
	}
	frac := geom.FracRect{
		X:      floatAttr(attrs, "data-x"),
		Y:      floatAttr(attrs, "data-y"),
		Width:  floatAttr(attrs, "data-w"),
		Height: floatAttr(attrs, "data-h"),
	}
	if !frac.Valid() {
		return parsed{}, false
	}
	return parsed{Type: t, Page: page, Frac: frac}, true
}

func floatAttr(attrs map[string]string, key string) float64 {
	v, err := strconv.ParseFloat(attrs[key], 64)
	if err != nil {
		return 0
	}
	return v
}
