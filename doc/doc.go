// Package doc holds the in-memory model of the document being signed: pages
// with content-stream operations, image XObjects and text resources. The
// model is the mutation target of the compositing sink and the input of the
// writer; it carries only what burning and the signing certificate need.
package doc

import "github.com/fieldink/signkit/geom"

// Rectangle is a page-space rectangle given by its lower-left and
// upper-right corners.
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

// Width returns the horizontal extent.
func (r Rectangle) Width() float64 { return r.URX - r.LLX }

// Height returns the vertical extent.
func (r Rectangle) Height() float64 { return r.URY - r.LLY }

// Operand is a typed content-stream operand.
type Operand interface {
	operand()
}

type NumberOperand struct{ Value float64 }

func (NumberOperand) operand() {}

type NameOperand struct{ Value string }

func (NameOperand) operand() {}

type StringOperand struct{ Value []byte }

func (StringOperand) operand() {}

// Operation is a content-stream operator with its operands.
type Operation struct {
	Operator string
	Operands []Operand
}

// Num wraps float operands for an operation.
func Num(vals ...float64) []Operand {
	out := make([]Operand, len(vals))
	for i, v := range vals {
		out[i] = NumberOperand{Value: v}
	}
	return out
}

// ContentStream is an ordered list of operations.
type ContentStream struct {
	Operations []Operation
}

// Image is an 8-bit-per-component raster, DeviceRGB unless Gray is set.
// SMask, when present, is a DeviceGray alpha channel of the same size.
type Image struct {
	Width  int
	Height int
	Gray   bool
	Data   []byte
	SMask  *Image
}

// Resources holds the named resources a page's content refers to.
type Resources struct {
	XObjects map[string]*Image
	Fonts    map[string]string // resource name -> standard base font
}

// Page is a single document page.
type Page struct {
	Index     int // 0-based position in the document
	MediaBox  Rectangle
	Contents  []ContentStream
	Resources *Resources
}

// EnsureResources returns the page's resource dictionary, allocating it and
// its maps on first use.
func (p *Page) EnsureResources() *Resources {
	if p.Resources == nil {
		p.Resources = &Resources{}
	}
	if p.Resources.XObjects == nil {
		p.Resources.XObjects = make(map[string]*Image)
	}
	if p.Resources.Fonts == nil {
		p.Resources.Fonts = make(map[string]string)
	}
	return p.Resources
}

// Append adds operations to the page's first content stream, creating it on
// first use.
func (p *Page) Append(ops ...Operation) {
	if len(p.Contents) == 0 {
		p.Contents = append(p.Contents, ContentStream{})
	}
	p.Contents[0].Operations = append(p.Contents[0].Operations, ops...)
}

// Info carries document metadata for the writer.
type Info struct {
	Title    string
	Producer string
}

// Document is the mutable in-memory document.
type Document struct {
	Pages []*Page
	Info  *Info
}

// New returns an empty document.
func New() *Document { return &Document{} }

// AddPage appends a page with the given size in page points and returns it.
func (d *Document) AddPage(size geom.PageSize) *Page {
	p := &Page{
		Index:    len(d.Pages),
		MediaBox: Rectangle{LLX: 0, LLY: 0, URX: size.WidthPts, URY: size.HeightPts},
	}
	d.Pages = append(d.Pages, p)
	return p
}

// PageAt returns the page with the given 1-based number.
func (d *Document) PageAt(number int) (*Page, bool) {
	if number < 1 || number > len(d.Pages) {
		return nil, false
	}
	return d.Pages[number-1], true
}

// FromGeometries builds a document whose pages match the supplied page-unit
// sizes, indexed by 1-based page number. Missing numbers in the range are an
// error for the caller to avoid; here the maximum key decides the page count
// and absent pages take the lowest-numbered present geometry, so identical
// maps always yield identical documents.
func FromGeometries(pages map[int]geom.PageSize) *Document {
	d := New()
	max, lowest := 0, 0
	for n := range pages {
		if n > max {
			max = n
		}
		if lowest == 0 || n < lowest {
			lowest = n
		}
	}
	fallback := pages[lowest]
	for n := 1; n <= max; n++ {
		s, ok := pages[n]
		if !ok {
			s = fallback
		}
		d.AddPage(s)
	}
	return d
}
