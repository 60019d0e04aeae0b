// Package certificate appends a human-readable signing notice to a burned
// document: a markdown source rendered as plain text blocks, followed by the
// integrity digests and placements from the audit record. Markdown is
// converted through goldmark (with the math extension, so $$...$$ survives
// as its textual MathML content) and the resulting HTML is walked for block
// text.
package certificate

import (
	"bytes"
	"fmt"
	"strings"

	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/fieldink/signkit/audit"
	"github.com/fieldink/signkit/doc"
	"github.com/fieldink/signkit/geom"
)

// Options configures the appended notice page.
type Options struct {
	Title      string
	FontSize   float64       // body size, default 10
	LineHeight float64       // multiple of font size, default 1.4
	Margin     float64       // page margin in points, default 54
	PageSize   geom.PageSize // default A4 portrait
}

const fontResource = "F1"

type block struct {
	text  string
	scale float64 // font size multiplier
}

// Append renders the markdown notice and the audit record onto one or more
// new pages at the end of the document.
func Append(d *doc.Document, markdown string, rec audit.Record, opts Options) error {
	if d == nil {
		return fmt.Errorf("certificate: nil document")
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 10
	}
	if opts.LineHeight <= 0 {
		opts.LineHeight = 1.4
	}
	if opts.Margin <= 0 {
		opts.Margin = 54
	}
	if !opts.PageSize.Valid() {
		opts.PageSize = geom.PageSize{WidthPts: 595, HeightPts: 842}
	}

	blocks, err := markdownBlocks(markdown)
	if err != nil {
		return err
	}
	if opts.Title != "" {
		blocks = append([]block{{text: opts.Title, scale: 1.8}}, blocks...)
	}
	blocks = append(blocks, auditBlocks(rec)...)

	w := newTextWriter(d, opts)
	for _, b := range blocks {
		w.writeBlock(b)
	}
	return nil
}

// markdownBlocks converts markdown to HTML and collects block-level text.
func markdownBlocks(source string) ([]block, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			treeblood.MathML(),
		),
	)
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return nil, fmt.Errorf("certificate: convert markdown: %w", err)
	}

	root, err := html.Parse(strings.NewReader(buf.String()))
	if err != nil {
		return nil, fmt.Errorf("certificate: parse rendered markdown: %w", err)
	}

	var blocks []block
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.ElementNode {
				switch child.DataAtom {
				case atom.H1:
					blocks = append(blocks, block{text: textContent(child), scale: 1.6})
					continue
				case atom.H2:
					blocks = append(blocks, block{text: textContent(child), scale: 1.3})
					continue
				case atom.H3, atom.H4, atom.H5, atom.H6:
					blocks = append(blocks, block{text: textContent(child), scale: 1.15})
					continue
				case atom.P:
					blocks = append(blocks, block{text: textContent(child), scale: 1})
					continue
				case atom.Li:
					blocks = append(blocks, block{text: "• " + textContent(child), scale: 1})
					continue
				}
			}
			walk(child)
		}
	}
	walk(root)

	out := blocks[:0]
	for _, b := range blocks {
		if strings.TrimSpace(b.text) != "" {
			b.text = strings.Join(strings.Fields(b.text), " ")
			out = append(out, b)
		}
	}
	return out, nil
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteString(" ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}

func auditBlocks(rec audit.Record) []block {
	blocks := []block{
		{text: "Integrity", scale: 1.3},
		{text: "Input SHA3-256: " + rec.InputDigest, scale: 0.8},
		{text: "Output SHA3-256: " + rec.OutputDigest, scale: 0.8},
	}
	if !rec.CreatedAt.IsZero() {
		blocks = append(blocks, block{text: "Signed at: " + rec.CreatedAt.Format("2006-01-02 15:04:05 MST"), scale: 0.8})
	}
	for _, p := range rec.Placements {
		blocks = append(blocks, block{
			text:  fmt.Sprintf("• field %s on page %d at (%.1f, %.1f) size %.1fx%.1f pt", p.FieldID, p.Page, p.Rect.X, p.Rect.Y, p.Rect.Width, p.Rect.Height),
			scale: 0.8,
		})
	}
	return blocks
}

// textWriter lays text blocks onto trailing pages, breaking to a new page
// when the cursor passes the bottom margin.
type textWriter struct {
	doc  *doc.Document
	opts Options
	page *doc.Page
	y    float64
}

func newTextWriter(d *doc.Document, opts Options) *textWriter {
	w := &textWriter{doc: d, opts: opts}
	w.newPage()
	return w
}

func (w *textWriter) newPage() {
	w.page = w.doc.AddPage(w.opts.PageSize)
	w.page.EnsureResources().Fonts[fontResource] = "Helvetica"
	w.y = w.opts.PageSize.HeightPts - w.opts.Margin
}

func (w *textWriter) writeBlock(b block) {
	size := w.opts.FontSize * b.scale
	lineHeight := size * w.opts.LineHeight
	maxWidth := w.opts.PageSize.WidthPts - 2*w.opts.Margin

	for _, line := range wrapLines(b.text, maxWidth, size) {
		if w.y-lineHeight < w.opts.Margin {
			w.newPage()
		}
		w.y -= lineHeight
		w.page.Append(
			doc.Operation{Operator: "BT"},
			doc.Operation{Operator: "Tf", Operands: []doc.Operand{
				doc.NameOperand{Value: fontResource},
				doc.NumberOperand{Value: size},
			}},
			doc.Operation{Operator: "Td", Operands: doc.Num(w.opts.Margin, w.y)},
			doc.Operation{Operator: "Tj", Operands: []doc.Operand{
				doc.StringOperand{Value: []byte(line)},
			}},
			doc.Operation{Operator: "ET"},
		)
	}
	// paragraph spacing
	w.y -= lineHeight * 0.4
}
