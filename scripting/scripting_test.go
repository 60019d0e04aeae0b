package scripting

import (
	"context"
	"testing"
	"time"

	"github.com/fieldink/signkit/anchor"
	"github.com/fieldink/signkit/geom"
	"github.com/fieldink/signkit/observability"
)

type recordingLogger struct {
	observability.NopLogger
	msgs []string
}

func (l *recordingLogger) Debug(msg string, _ ...observability.Field) {
	l.msgs = append(l.msgs, msg)
}

func newTestModel(t *testing.T) (*anchor.Model, *anchor.Field) {
	t.Helper()
	m := anchor.NewModel()
	m.SetViewport(1000, 800)
	m.SetPageGeometry(1, geom.PageSize{WidthPts: 595, HeightPts: 842})
	f := m.AddField(anchor.FieldText, 1, geom.FracRect{X: 0.1, Y: 0.1, Width: 0.2, Height: 0.05})
	if err := m.SetValue(f.ID, anchor.TextValue("initial")); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	return m, f
}

func TestExecuteGetSetField(t *testing.T) {
	m, f := newTestModel(t)
	e := NewEngine()
	if err := e.RegisterDOM(NewModelDOM(m, nil)); err != nil {
		t.Fatalf("RegisterDOM: %v", err)
	}

	got, err := e.Execute(context.Background(), `getField("`+f.ID+`").value`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != "initial" {
		t.Errorf("value = %v", got)
	}

	if _, err := e.Execute(context.Background(), `getField("`+f.ID+`").value = "updated"`); err != nil {
		t.Fatalf("Execute set: %v", err)
	}
	if s, _ := f.Value.Text(); s != "updated" {
		t.Errorf("field value = %q", s)
	}
}

func TestExecuteUnknownFieldIsNull(t *testing.T) {
	m, _ := newTestModel(t)
	e := NewEngine()
	if err := e.RegisterDOM(NewModelDOM(m, nil)); err != nil {
		t.Fatalf("RegisterDOM: %v", err)
	}
	got, err := e.Execute(context.Background(), `getField("fld-404") === null`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != true {
		t.Errorf("unknown field lookup = %v, want null", got)
	}
}

func TestExecutePageProxy(t *testing.T) {
	m, _ := newTestModel(t)
	e := NewEngine()
	if err := e.RegisterDOM(NewModelDOM(m, nil)); err != nil {
		t.Fatalf("RegisterDOM: %v", err)
	}
	got, err := e.Execute(context.Background(), `getPage(1).width`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if w, ok := got.(float64); !ok || w != 595 {
		t.Errorf("page width = %v", got)
	}
}

func TestAlertCallback(t *testing.T) {
	m, _ := newTestModel(t)
	var alerts []string
	e := NewEngine()
	if err := e.RegisterDOM(NewModelDOM(m, func(msg string) { alerts = append(alerts, msg) })); err != nil {
		t.Fatalf("RegisterDOM: %v", err)
	}
	if _, err := e.Execute(context.Background(), `app.alert("missing signature")`); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(alerts) != 1 || alerts[0] != "missing signature" {
		t.Errorf("alerts = %v", alerts)
	}
}

func TestExecuteCancellation(t *testing.T) {
	log := &recordingLogger{}
	e := NewEngine(WithLogger(log))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := e.Execute(ctx, `for(;;){}`)
	if err == nil {
		t.Fatalf("infinite script finished")
	}
	interrupted := false
	for _, m := range log.msgs {
		if m == "script interrupted" {
			interrupted = true
		}
	}
	if !interrupted {
		t.Errorf("interruption not logged: %v", log.msgs)
	}
}

func TestSetValueShapeMismatchIgnored(t *testing.T) {
	m, f := newTestModel(t)
	e := NewEngine()
	if err := e.RegisterDOM(NewModelDOM(m, nil)); err != nil {
		t.Fatalf("RegisterDOM: %v", err)
	}
	// Assigning a boolean to a text field is dropped, not applied.
	if _, err := e.Execute(context.Background(), `getField("`+f.ID+`").value = true`); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if s, _ := f.Value.Text(); s != "initial" {
		t.Errorf("mismatched assignment applied: %q", s)
	}
}
