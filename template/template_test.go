package template

import (
	"strings"
	"testing"

	"github.com/fieldink/signkit/anchor"
)

const sample = `
<html><body>
  <form>
    <input data-field-type="signature" data-page="1" data-x="0.1" data-y="0.7" data-w="0.3" data-h="0.08">
    <input data-field-type="date" data-page="1" data-x="0.5" data-y="0.7" data-w="0.2" data-h="0.04">
    <textarea data-field-type="text" data-page="2" data-x="0.1" data-y="0.1" data-w="0.8" data-h="0.2"></textarea>
    <input type="submit" value="irrelevant">
    <input data-field-type="signature" data-page="0" data-x="0.1" data-y="0.1" data-w="0.1" data-h="0.1">
    <input data-field-type="signature" data-page="1" data-x="0.1" data-y="0.1" data-w="0" data-h="0.1">
  </form>
</body></html>`

func TestParseFields(t *testing.T) {
	m := anchor.NewModel()
	n, err := ParseFields(strings.NewReader(sample), m)
	if err != nil {
		t.Fatalf("ParseFields: %v", err)
	}
	if n != 3 {
		t.Fatalf("added = %d, want 3", n)
	}
	fields := m.Fields()
	if fields[0].Type != anchor.FieldSignature || fields[0].Page != 1 {
		t.Errorf("field 0 = %+v", fields[0])
	}
	if fields[0].Frac.X != 0.1 || fields[0].Frac.Height != 0.08 {
		t.Errorf("field 0 frac = %+v", fields[0].Frac)
	}
	if fields[1].Type != anchor.FieldDate {
		t.Errorf("field 1 = %+v", fields[1])
	}
	if fields[2].Type != anchor.FieldText || fields[2].Page != 2 {
		t.Errorf("field 2 = %+v", fields[2])
	}
}

func TestParseFieldsEmpty(t *testing.T) {
	m := anchor.NewModel()
	n, err := ParseFields(strings.NewReader("<p>no controls</p>"), m)
	if err != nil || n != 0 {
		t.Errorf("n = %d, err = %v", n, err)
	}
}
