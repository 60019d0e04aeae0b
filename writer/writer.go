// Package writer serializes the in-memory document model to a PDF byte
// stream. Content streams and image data are Flate-compressed; the output
// carries a classic cross-reference table and trailer.
package writer

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fieldink/signkit/doc"
)

// Write serializes the document to w.
func Write(w io.Writer, d *doc.Document) error {
	if d == nil {
		return fmt.Errorf("writer: nil document")
	}
	s := newSerializer()
	if err := s.build(d); err != nil {
		return err
	}
	return s.flush(w)
}

// Bytes serializes the document to a byte slice.
func Bytes(d *doc.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type object struct {
	num  int
	body []byte
}

type serializer struct {
	objects []object
	next    int
	catalog int
	info    int
}

func newSerializer() *serializer { return &serializer{next: 1} }

func (s *serializer) alloc() int {
	n := s.next
	s.next++
	return n
}

func (s *serializer) add(num int, body []byte) {
	s.objects = append(s.objects, object{num: num, body: body})
}

func (s *serializer) build(d *doc.Document) error {
	catalogNum := s.alloc()
	pagesNum := s.alloc()

	pageNums := make([]int, len(d.Pages))
	for i := range d.Pages {
		pageNums[i] = s.alloc()
	}

	infoNum := 0
	if d.Info != nil {
		infoNum = s.alloc()
	}

	s.add(catalogNum, []byte(fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesNum)))

	var kids bytes.Buffer
	kids.WriteString("[")
	for i, n := range pageNums {
		if i > 0 {
			kids.WriteString(" ")
		}
		fmt.Fprintf(&kids, "%d 0 R", n)
	}
	kids.WriteString("]")
	s.add(pagesNum, []byte(fmt.Sprintf("<< /Type /Pages /Kids %s /Count %d >>", kids.String(), len(d.Pages))))

	for i, p := range d.Pages {
		if err := s.buildPage(p, pageNums[i], pagesNum); err != nil {
			return err
		}
	}

	if d.Info != nil {
		var buf bytes.Buffer
		buf.WriteString("<<")
		if d.Info.Title != "" {
			fmt.Fprintf(&buf, " /Title (%s)", escapeString(d.Info.Title))
		}
		if d.Info.Producer != "" {
			fmt.Fprintf(&buf, " /Producer (%s)", escapeString(d.Info.Producer))
		}
		buf.WriteString(" >>")
		s.add(infoNum, buf.Bytes())
	}

	s.catalog = catalogNum
	s.info = infoNum
	return nil
}

func (s *serializer) buildPage(p *doc.Page, pageNum, parentNum int) error {
	contentNum := 0
	if len(p.Contents) > 0 {
		contentNum = s.alloc()
	}

	var res bytes.Buffer
	res.WriteString("<<")
	if p.Resources != nil && len(p.Resources.XObjects) > 0 {
		res.WriteString(" /XObject <<")
		for _, name := range sortedImageKeys(p.Resources.XObjects) {
			imgNum, err := s.buildImage(p.Resources.XObjects[name])
			if err != nil {
				return err
			}
			fmt.Fprintf(&res, " /%s %d 0 R", name, imgNum)
		}
		res.WriteString(" >>")
	}
	if p.Resources != nil && len(p.Resources.Fonts) > 0 {
		res.WriteString(" /Font <<")
		for _, name := range sortedFontKeys(p.Resources.Fonts) {
			fontNum := s.alloc()
			s.add(fontNum, []byte(fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /%s >>", p.Resources.Fonts[name])))
			fmt.Fprintf(&res, " /%s %d 0 R", name, fontNum)
		}
		res.WriteString(" >>")
	}
	res.WriteString(" >>")

	var page bytes.Buffer
	fmt.Fprintf(&page, "<< /Type /Page /Parent %d 0 R /MediaBox [%s %s %s %s] /Resources %s",
		parentNum,
		num(p.MediaBox.LLX), num(p.MediaBox.LLY), num(p.MediaBox.URX), num(p.MediaBox.URY),
		res.String())
	if contentNum != 0 {
		fmt.Fprintf(&page, " /Contents %d 0 R", contentNum)
	}
	page.WriteString(" >>")
	s.add(pageNum, page.Bytes())

	if contentNum != 0 {
		var content bytes.Buffer
		for _, cs := range p.Contents {
			for _, op := range cs.Operations {
				writeOperation(&content, op)
			}
		}
		s.addStream(contentNum, "", content.Bytes())
	}
	return nil
}

// buildImage emits the image XObject (and its soft mask first) and returns
// the object number.
func (s *serializer) buildImage(img *doc.Image) (int, error) {
	smaskNum := 0
	if img.SMask != nil {
		var err error
		smaskNum, err = s.buildImage(img.SMask)
		if err != nil {
			return 0, err
		}
	}
	if img.Width <= 0 || img.Height <= 0 {
		return 0, fmt.Errorf("writer: image has invalid dimensions %dx%d", img.Width, img.Height)
	}
	n := s.alloc()
	cs := "/DeviceRGB"
	if img.Gray {
		cs = "/DeviceGray"
	}
	extra := fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace %s /BitsPerComponent 8",
		img.Width, img.Height, cs)
	if smaskNum != 0 {
		extra += fmt.Sprintf(" /SMask %d 0 R", smaskNum)
	}
	s.addStream(n, extra, img.Data)
	return n, nil
}

// addStream emits a Flate-compressed stream object with optional extra
// dictionary entries.
func (s *serializer) addStream(num int, extra string, data []byte) {
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	zw.Write(data)
	zw.Close()

	var buf bytes.Buffer
	buf.WriteString("<< ")
	if extra != "" {
		buf.WriteString(extra)
		buf.WriteString(" ")
	}
	fmt.Fprintf(&buf, "/Filter /FlateDecode /Length %d >>\nstream\n", compressed.Len())
	buf.Write(compressed.Bytes())
	buf.WriteString("\nendstream")
	s.add(num, buf.Bytes())
}

func (s *serializer) flush(w io.Writer) error {
	var out bytes.Buffer
	out.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make(map[int]int, len(s.objects))
	for _, obj := range s.objects {
		offsets[obj.num] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n", obj.num)
		out.Write(obj.body)
		out.WriteString("\nendobj\n")
	}

	xrefStart := out.Len()
	count := s.next
	fmt.Fprintf(&out, "xref\n0 %d\n", count)
	out.WriteString("0000000000 65535 f \n")
	for i := 1; i < count; i++ {
		fmt.Fprintf(&out, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root %d 0 R", count, s.catalog)
	if s.info != 0 {
		fmt.Fprintf(&out, " /Info %d 0 R", s.info)
	}
	fmt.Fprintf(&out, " >>\nstartxref\n%d\n%%%%EOF\n", xrefStart)

	_, err := w.Write(out.Bytes())
	return err
}

func writeOperation(buf *bytes.Buffer, op doc.Operation) {
	for _, operand := range op.Operands {
		switch v := operand.(type) {
		case doc.NumberOperand:
			buf.WriteString(num(v.Value))
		case doc.NameOperand:
			buf.WriteString("/" + v.Value)
		case doc.StringOperand:
			buf.WriteString("(" + escapeString(string(v.Value)) + ")")
		}
		buf.WriteString(" ")
	}
	buf.WriteString(op.Operator)
	buf.WriteString("\n")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escapeString(s string) string {
	var buf bytes.Buffer
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '(', ')':
			buf.WriteByte('\\')
		}
		buf.WriteByte(s[i])
	}
	return buf.String()
}

func sortedImageKeys(m map[string]*doc.Image) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedFontKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
