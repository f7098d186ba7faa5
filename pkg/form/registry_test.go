package form_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/form"
)

func filledRegistry(t *testing.T) *form.Registry {
	t.Helper()
	reg := form.NewRegistry(form.DefaultSchema())
	values := map[string]any{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"dob":       "1990-12-10",
		"gender":    "female",
		"email":     "ada@example.com",
		"skills":    []string{"react", "html"},
		"salary":    "55000",
		"workPref":  "remote",
		"terms":     true,
	}
	for key, value := range values {
		if err := reg.Set(key, value); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	return reg
}

func TestRegistry_CollectApplyRoundTrip(t *testing.T) {
	source := filledRegistry(t)
	snapshot := source.Collect()

	fresh := form.NewRegistry(form.DefaultSchema())
	fresh.Apply(snapshot)

	if diff := cmp.Diff(snapshot, fresh.Collect()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_MultiSelectAlwaysList(t *testing.T) {
	reg := form.NewRegistry(form.DefaultSchema())

	if got, ok := reg.Collect()["skills"].([]string); !ok || len(got) != 0 {
		t.Fatalf("expected empty skills list, got %#v", reg.Collect()["skills"])
	}

	reg.Apply(form.Record{"skills": "css"})
	if diff := cmp.Diff([]string{"css"}, reg.Collect()["skills"]); diff != "" {
		t.Fatalf("scalar skills not coerced (-want +got):\n%s", diff)
	}

	reg.Apply(form.Record{"skills": []any{"python", "unknown", "html"}})
	if diff := cmp.Diff([]string{"html", "python"}, reg.Collect()["skills"]); diff != "" {
		t.Fatalf("membership apply mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_ChoiceRequiresKnownOption(t *testing.T) {
	reg := form.NewRegistry(form.DefaultSchema())
	reg.Apply(form.Record{"gender": "female", "country": "atlantis"})

	got := reg.Collect()
	if got["gender"] != "female" {
		t.Fatalf("expected gender female, got %v", got["gender"])
	}
	if got["country"] != "" {
		t.Fatalf("expected unknown country to be cleared, got %v", got["country"])
	}
}

func TestRegistry_DisabledFieldsExcluded(t *testing.T) {
	reg := filledRegistry(t)
	reg.SetDisabled("bio", true)

	if _, ok := reg.Collect()["bio"]; ok {
		t.Fatalf("disabled field collected")
	}

	reg.SetDisabled("bio", false)
	if _, ok := reg.Collect()["bio"]; !ok {
		t.Fatalf("re-enabled field missing")
	}
}

func TestRegistry_WatchFiresOnApply(t *testing.T) {
	reg := form.NewRegistry(form.DefaultSchema())
	var seen []any
	reg.Watch("salary", func(_ string, value any) {
		seen = append(seen, value)
	})

	reg.Apply(form.Record{"salary": "72000", "city": "Paris"})

	if diff := cmp.Diff([]any{"72000"}, seen); diff != "" {
		t.Fatalf("listener calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_ResetRestoresDefaults(t *testing.T) {
	reg := filledRegistry(t)
	reg.Reset()

	got := reg.Collect()
	if got["firstName"] != "" || got["terms"] != false || got["salary"] != "50000" {
		t.Fatalf("unexpected values after reset: %#v", got)
	}
}

func TestRegistry_SetRejectsWrongShape(t *testing.T) {
	reg := form.NewRegistry(form.DefaultSchema())

	if err := reg.Set("firstName", []string{"a"}); !errors.Is(err, form.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if err := reg.Set("nope", "x"); !errors.Is(err, form.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}

	acc, err := reg.Accessor("email")
	if err != nil {
		t.Fatalf("accessor: %v", err)
	}
	if err := acc.Set("a@b.co"); err != nil {
		t.Fatalf("accessor set: %v", err)
	}
	if acc.Value() != "a@b.co" || acc.Field().Type != form.FieldTypeEmail {
		t.Fatalf("accessor mismatch: %v %v", acc.Value(), acc.Field().Type)
	}
}
