package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-formwizard/pkg/form"
	"github.com/goliatone/go-formwizard/pkg/storage"
)

func exportFixture(t *testing.T) *storage.Persistence {
	t.Helper()
	p := newPersistence(storage.NewMemoryKV())
	err := p.Save(context.Background(), form.Record{
		"firstName": "Ada",
		"skills":    []string{"html", "react"},
		"bio":       "",
		"terms":     true,
	})
	if err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	return p
}

func TestExport_JSON(t *testing.T) {
	out, err := exportFixture(t).Export(context.Background(), storage.FormatJSON)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := `{
  "bio": "",
  "firstName": "Ada",
  "skills": [
    "html",
    "react"
  ],
  "terms": true
}`
	if string(out) != want {
		t.Fatalf("json export mismatch\nwant: %s\n got: %s", want, out)
	}
}

func TestExport_CSV(t *testing.T) {
	out, err := exportFixture(t).Export(context.Background(), storage.FormatCSV)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := "bio,firstName,skills,terms\n\"\",\"Ada\",\"html, react\",\"true\""
	if string(out) != want {
		t.Fatalf("csv export mismatch\nwant: %q\n got: %q", want, out)
	}
}

func TestExport_Text(t *testing.T) {
	out, err := exportFixture(t).Export(context.Background(), storage.FormatText)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := "FORM DATA SUMMARY\n=================\n\nFirst Name: Ada\nSkills: html, react\nTerms: true\n"
	if string(out) != want {
		t.Fatalf("text export mismatch\nwant: %q\n got: %q", want, out)
	}
}

func TestExport_TextKeepsLiteralFalseAnswers(t *testing.T) {
	p := newPersistence(storage.NewMemoryKV())
	err := p.Save(context.Background(), form.Record{
		"bio":   "false",
		"terms": false,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := p.Export(context.Background(), storage.FormatText)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := "FORM DATA SUMMARY\n=================\n\nBio: false\n"
	if string(out) != want {
		t.Fatalf("text export mismatch\nwant: %q\n got: %q", want, out)
	}
}

func TestExport_UnknownFormatFallsBackToJSON(t *testing.T) {
	p := exportFixture(t)
	ctx := context.Background()
	jsonOut, _ := p.Export(ctx, storage.FormatJSON)
	xmlOut, err := p.Export(ctx, storage.Format("xml"))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if string(jsonOut) != string(xmlOut) {
		t.Fatalf("unknown format did not fall back to json")
	}
}

func TestExport_NoData(t *testing.T) {
	p := newPersistence(storage.NewMemoryKV())
	if _, err := p.Export(context.Background(), storage.FormatJSON); !errors.Is(err, storage.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}
