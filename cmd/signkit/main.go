// Command signkit burns signature images into a document described by a
// fields file and writes the signed PDF plus an audit record.
//
// Usage:
//
//	signkit -fields fields.json -out signed.pdf [-audit audit.json]
//	        [-notice notice.md] [-validate script.js]
//
// The fields file carries the viewport, per-page geometry and the anchored
// fields with their values:
//
//	{
//	  "viewport": {"w": 1000, "h": 1400},
//	  "pages": [{"page": 1, "widthPts": 595, "heightPts": 842}],
//	  "fields": [
//	    {"type": "signature", "page": 1,
//	     "x": 0.1, "y": 0.7, "w": 0.3, "h": 0.08,
//	     "value": "data:image/png;base64,...."}
//	  ]
//	}
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/fieldink/signkit/anchor"
	"github.com/fieldink/signkit/audit"
	"github.com/fieldink/signkit/certificate"
	"github.com/fieldink/signkit/compositor"
	"github.com/fieldink/signkit/doc"
	"github.com/fieldink/signkit/geom"
	"github.com/fieldink/signkit/render"
	"github.com/fieldink/signkit/scripting"
	"github.com/fieldink/signkit/writer"
)

type fieldsFile struct {
	Viewport struct {
		W float64 `json:"w"`
		H float64 `json:"h"`
	} `json:"viewport"`
	Pages []struct {
		Page      int     `json:"page"`
		WidthPts  float64 `json:"widthPts"`
		HeightPts float64 `json:"heightPts"`
	} `json:"pages"`
	Fields []struct {
		Type  string      `json:"type"`
		Page  int         `json:"page"`
		X     float64     `json:"x"`
		Y     float64     `json:"y"`
		W     float64     `json:"w"`
		H     float64     `json:"h"`
		Value interface{} `json:"value"`
	} `json:"fields"`
}

func main() {
	fieldsPath := flag.String("fields", "", "path to the fields JSON file")
	outPath := flag.String("out", "signed.pdf", "path of the signed PDF to write")
	auditPath := flag.String("audit", "", "optional path of the audit JSON to write; its output digest covers the burned document, not any pages appended by -notice")
	noticePath := flag.String("notice", "", "optional markdown signing notice appended to the document")
	validatePath := flag.String("validate", "", "optional JavaScript validation script run before burning")
	flag.Parse()

	if *fieldsPath == "" {
		fmt.Fprintln(os.Stderr, "signkit: -fields is required")
		flag.Usage()
		os.Exit(2)
	}
	if err := run(*fieldsPath, *outPath, *auditPath, *noticePath, *validatePath); err != nil {
		fmt.Fprintln(os.Stderr, "signkit:", err)
		os.Exit(1)
	}
}

func run(fieldsPath, outPath, auditPath, noticePath, validatePath string) error {
	raw, err := os.ReadFile(fieldsPath)
	if err != nil {
		return err
	}
	var ff fieldsFile
	if err := json.Unmarshal(raw, &ff); err != nil {
		return fmt.Errorf("parse %s: %w", fieldsPath, err)
	}

	model, err := buildModel(ff)
	if err != nil {
		return err
	}

	if validatePath != "" {
		if err := runValidation(model, validatePath); err != nil {
			return err
		}
	}

	d := doc.FromGeometries(model.PageGeometries())
	input, err := writer.Bytes(d)
	if err != nil {
		return fmt.Errorf("serialize input document: %w", err)
	}

	c := compositor.New(render.New())
	res, err := c.Burn(context.Background(), d, model.Fields(), model.PageGeometries())
	if err != nil {
		return err
	}
	for _, rej := range res.Rejected {
		fmt.Fprintf(os.Stderr, "signkit: placement rejected: %v\n", rej)
	}

	output, err := writer.Bytes(d)
	if err != nil {
		return fmt.Errorf("serialize output document: %w", err)
	}
	rec := audit.NewRecord(input, output, res)

	if noticePath != "" {
		notice, err := os.ReadFile(noticePath)
		if err != nil {
			return err
		}
		// The certificate references the digest of the burned pages; the
		// notice itself is an addendum past the digested content.
		if err := certificate.Append(d, string(notice), rec, certificate.Options{Title: "Signing Certificate"}); err != nil {
			return err
		}
		if output, err = writer.Bytes(d); err != nil {
			return fmt.Errorf("serialize output document: %w", err)
		}
	}

	if err := os.WriteFile(outPath, output, 0o644); err != nil {
		return err
	}
	if auditPath != "" {
		data, err := rec.MarshalIndent()
		if err != nil {
			return err
		}
		if err := os.WriteFile(auditPath, data, 0o644); err != nil {
			return err
		}
	}

	fmt.Printf("signed %s: %d drawn, %d skipped, %d rejected\n",
		outPath, len(res.Drawn), len(res.Skipped), len(res.Rejected))
	return nil
}

func buildModel(ff fieldsFile) (*anchor.Model, error) {
	model := anchor.NewModel()
	model.SetViewport(ff.Viewport.W, ff.Viewport.H)
	for _, p := range ff.Pages {
		model.SetPageGeometry(p.Page, geom.PageSize{WidthPts: p.WidthPts, HeightPts: p.HeightPts})
	}
	for i, f := range ff.Fields {
		t := anchor.FieldType(f.Type)
		if !t.Known() {
			return nil, fmt.Errorf("field %d: unknown type %q", i, f.Type)
		}
		frac := geom.FracRect{X: f.X, Y: f.Y, Width: f.W, Height: f.H}
		field := model.AddField(t, f.Page, frac)
		if f.Value == nil {
			continue
		}
		val, err := decodeValue(t, f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.ID, err)
		}
		if err := model.SetValue(field.ID, val); err != nil {
			return nil, err
		}
	}
	return model, nil
}

func decodeValue(t anchor.FieldType, raw interface{}) (anchor.Value, error) {
	switch t {
	case anchor.FieldText:
		s, ok := raw.(string)
		if !ok {
			return anchor.Value{}, fmt.Errorf("text value must be a string")
		}
		return anchor.TextValue(s), nil
	case anchor.FieldDate:
		s, ok := raw.(string)
		if !ok {
			return anchor.Value{}, fmt.Errorf("date value must be a string")
		}
		return anchor.DateValue(s), nil
	case anchor.FieldRadio:
		b, ok := raw.(bool)
		if !ok {
			return anchor.Value{}, fmt.Errorf("radio value must be a boolean")
		}
		return anchor.RadioValue(b), nil
	case anchor.FieldSignature, anchor.FieldImage:
		s, ok := raw.(string)
		if !ok {
			return anchor.Value{}, fmt.Errorf("image value must be a data URL string")
		}
		blob, err := anchor.ParseDataURL(s)
		if err != nil {
			return anchor.Value{}, err
		}
		return anchor.ImageValue(blob), nil
	}
	return anchor.Value{}, fmt.Errorf("unsupported field type %q", t)
}

func runValidation(model *anchor.Model, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	engine := scripting.NewEngine()
	dom := scripting.NewModelDOM(model, func(msg string) {
		fmt.Fprintln(os.Stderr, "signkit: validation:", msg)
	})
	if err := engine.RegisterDOM(dom); err != nil {
		return err
	}
	result, err := engine.Execute(context.Background(), string(src))
	if err != nil {
		return fmt.Errorf("validation script: %w", err)
	}
	if ok, isBool := result.(bool); isBool && !ok {
		return fmt.Errorf("validation script rejected the request")
	}
	return nil
}
