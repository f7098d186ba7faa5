package wizard_test

import (
	"testing"

	"github.com/goliatone/go-formwizard/pkg/form"
	"github.com/goliatone/go-formwizard/pkg/testsupport"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

func TestBuildReview_Render(t *testing.T) {
	review := wizard.BuildReview(form.DefaultSchema(), testsupport.ValidRecord())

	out, err := review.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	const golden = "testdata/review.golden"
	if testsupport.WriteMaybeGolden(t, golden, []byte(out)) {
		return
	}
	if diff := testsupport.CompareGolden(testsupport.MustReadGoldenString(t, golden), out); diff != "" {
		t.Fatalf("review mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatValue(t *testing.T) {
	schema := form.DefaultSchema()
	field := func(key string) form.Field {
		f, ok := schema.Field(key)
		if !ok {
			t.Fatalf("unknown field %s", key)
		}
		return f
	}

	cases := []struct {
		name  string
		key   string
		value any
		want  string
	}{
		{"missing", "firstName", nil, "-"},
		{"blank", "jobRole", "   ", "-"},
		{"choice title case", "workPref", "hybrid", "Hybrid"},
		{"dashed choice", "education", "high-school", "High School"},
		{"numeric choice", "experience", "5-10", "5-10"},
		{"money", "salary", "120000", "$120,000"},
		{"date", "dob", "2002-05-15", "May 15, 2002"},
		{"skills list", "skills", []string{"python", "database"}, "python, database"},
		{"empty list", "skills", []string{}, "-"},
		{"markup stripped", "bio", "<b>Hello</b> & welcome<script>alert(1)</script>", "Hello & welcome"},
		{"markup only", "bio", "<br/>", "-"},
		{"boolean", "terms", true, "Yes"},
		{"boolean string", "terms", "true", "Yes"},
		{"boolean unset", "terms", false, "No"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := wizard.FormatValue(field(tc.key), tc.value); got != tc.want {
				t.Fatalf("FormatValue(%s, %v) = %q, want %q", tc.key, tc.value, got, tc.want)
			}
		})
	}
}

func TestReview_SkipsConsentFields(t *testing.T) {
	review := wizard.BuildReview(form.DefaultSchema(), form.Record{"terms": true})
	for _, section := range review.Sections {
		for _, item := range section.Items {
			if item.Key == "terms" {
				t.Fatalf("consent field listed in review")
			}
		}
	}
	if got := review.Value("firstName"); got != wizard.Placeholder {
		t.Fatalf("expected placeholder, got %q", got)
	}
}
