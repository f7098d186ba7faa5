package tui

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-formwizard/pkg/form"
	"github.com/goliatone/go-formwizard/pkg/notify"
	"github.com/goliatone/go-formwizard/pkg/storage"
	"github.com/goliatone/go-formwizard/pkg/submit"
	"github.com/goliatone/go-formwizard/pkg/testsupport"
	"github.com/goliatone/go-formwizard/pkg/validation"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	confirmAsked []string
	selectAsked  [][]string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	s.confirmAsked = append(s.confirmAsked, cfg.Message)
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	s.selectAsked = append(s.selectAsked, cfg.Options)
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) printed(sub string) bool {
	for _, msg := range s.infoMessages {
		if strings.Contains(msg, sub) {
			return true
		}
	}
	return false
}

type fixture struct {
	runner    *Runner
	ctrl      *wizard.Controller
	store     *storage.Persistence
	got       []form.Record
	downloads string
}

func newFixture(t *testing.T, driver *stubDriver) *fixture {
	t.Helper()
	fx := &fixture{downloads: t.TempDir()}
	schema := form.DefaultSchema()
	reg := form.NewRegistry(schema)
	store, _, _ := testsupport.Persistence(t)
	fx.store = store

	theme := DefaultTheme()
	ctrl, err := wizard.New(schema, reg, store,
		wizard.WithValidator(validation.New(schema, validation.WithClock(testsupport.Clock()))),
		wizard.WithNotifier(NewNotifier(driver, theme)),
		wizard.WithQuietPeriod(time.Hour),
		wizard.WithSubmitter(submit.SubmitterFunc(func(_ context.Context, r form.Record) (submit.Receipt, error) {
			fx.got = append(fx.got, r)
			return submit.Receipt{ID: "rcpt-42", Status: submit.StatusAccepted}, nil
		})),
	)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	fx.ctrl = ctrl

	runner, err := New(ctrl, reg,
		WithPromptDriver(driver),
		WithTheme(theme),
		WithDownloadDir(fx.downloads),
		WithNow(testsupport.Clock()),
	)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	fx.runner = runner
	return fx
}

func TestRun_CompletesWizard(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{
			"Ayesha", "Khan", "1995-03-14",
			"ayesha@example.com", "+92 300 1234567", "12 Mall Road", "Lahore",
			"FAST", "Computer Science",
			"Frontend Engineer", "55000",
		},
		textAreas: []string{"Frontend developer"},
		// gender, next, country, next, education, experience, next, workPref, next, submit,
		// download, done
		selectIdx: []int{1, 0, 4, 0, 2, 1, 0, 0, 0, 0, 0, 2},
		multiIdx:  [][]int{{0, 1, 3}},
		confirm:   []bool{true},
	}
	fx := newFixture(t, driver)

	outcome, err := fx.runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome != OutcomeSubmitted {
		t.Fatalf("expected submitted outcome, got %s", outcome)
	}
	if len(fx.got) != 1 {
		t.Fatalf("expected one submission, got %d", len(fx.got))
	}

	want := testsupport.ValidRecord()
	for _, key := range want.Keys() {
		if form.Stringify(want[key]) != form.Stringify(fx.got[0][key]) {
			t.Fatalf("%s: want %v, got %v", key, want[key], fx.got[0][key])
		}
	}

	if !fx.store.IsCompleted(context.Background()) {
		t.Fatalf("form not marked completed")
	}
	for _, expected := range []string{
		"Step 1 of 5: Personal Details",
		"Expected Salary: $55,000",
		"Country: Pakistan",
		"[ok] " + wizard.MessageSubmitted,
		"Receipt rcpt-42",
	} {
		if !driver.printed(expected) {
			t.Fatalf("expected output containing %q, got %v", expected, driver.infoMessages)
		}
	}

	lastActions := driver.selectAsked[len(driver.selectAsked)-3]
	if lastActions[0] != ActionSubmit || lastActions[1] != ActionBack {
		t.Fatalf("unexpected last step actions %v", lastActions)
	}
	done := driver.selectAsked[len(driver.selectAsked)-1]
	if len(done) != 3 || done[0] != ActionDownload || done[1] != ActionNewForm {
		t.Fatalf("unexpected post-submission actions %v", done)
	}

	path := filepath.Join(fx.downloads, "form-data-2024-06-01.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("download not written: %v", err)
	}
	var downloaded map[string]any
	if err := json.Unmarshal(data, &downloaded); err != nil {
		t.Fatalf("download is not JSON: %v", err)
	}
	if downloaded["email"] != "ayesha@example.com" {
		t.Fatalf("unexpected download %v", downloaded)
	}
	if !driver.printed("Saved " + path) {
		t.Fatalf("download path not shown: %v", driver.infoMessages)
	}
}

func TestRun_NewFormAfterSubmission(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{
			"Ayesha", "Khan", "1995-03-14",
			"ayesha@example.com", "+92 300 1234567", "12 Mall Road", "Lahore",
			"FAST", "Computer Science",
			"Frontend Engineer", "55000",
			"", "", "",
		},
		textAreas: []string{"Frontend developer", ""},
		// completion as above, then new form, gender, quit
		selectIdx: []int{1, 0, 4, 0, 2, 1, 0, 0, 0, 0, 1, 1, 2},
		multiIdx:  [][]int{{0, 1, 3}},
		confirm:   []bool{true},
	}
	fx := newFixture(t, driver)
	ctx := context.Background()

	outcome, err := fx.runner.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome != OutcomeSaved {
		t.Fatalf("expected saved outcome after starting over, got %s", outcome)
	}
	if len(fx.got) != 1 {
		t.Fatalf("expected one submission, got %d", len(fx.got))
	}
	if fx.store.IsCompleted(ctx) {
		t.Fatalf("completion flag survived the new form")
	}
	if fx.ctrl.Position() != 1 || fx.ctrl.Phase() != wizard.PhaseEditing {
		t.Fatalf("new form should start editing on step 1")
	}
}

func TestRun_ShowsErrorsAndSavesOnQuit(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"A", "Khan", "1995-03-14", "Ayesha", "Khan", "1995-03-14"},
		textAreas: []string{"", ""},
		// gender, next (fails), gender, quit
		selectIdx: []int{1, 0, 1, 2},
	}
	fx := newFixture(t, driver)

	outcome, err := fx.runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome != OutcomeSaved {
		t.Fatalf("expected saved outcome, got %s", outcome)
	}
	if fx.ctrl.Position() != 1 {
		t.Fatalf("invalid step advanced")
	}
	if !driver.printed("[x] First Name: Please enter a valid name (2-50 characters)") {
		t.Fatalf("field error not shown: %v", driver.infoMessages)
	}
	if !driver.printed(wizard.MessageStepInvalid) {
		t.Fatalf("attention signal not shown")
	}

	saved, ok := fx.store.Load(context.Background())
	if !ok || saved.String("firstName") != "Ayesha" {
		t.Fatalf("pending changes not flushed on quit: %v", saved)
	}
	first := driver.selectAsked[1]
	if len(first) != 3 || first[0] != ActionNext || first[1] != ActionReset {
		t.Fatalf("first step should not offer Back: %v", first)
	}
}

func TestRun_ResetAsksForConfirmation(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ayesha", "Khan", "1995-03-14", "", "", ""},
		textAreas: []string{"", ""},
		// gender, start over, gender, quit
		selectIdx: []int{1, 1, 0, 2},
		confirm:   []bool{true},
	}
	fx := newFixture(t, driver)

	if _, err := fx.runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(driver.confirmAsked) != 1 || driver.confirmAsked[0] != wizard.ResetPrompt {
		t.Fatalf("reset prompt not shown: %v", driver.confirmAsked)
	}
	if !driver.printed("[i] " + wizard.MessageReset) {
		t.Fatalf("reset notification not shown")
	}
}

func TestRun_AbortPropagates(t *testing.T) {
	driver := &stubDriver{}
	fx := newFixture(t, driver)

	if _, err := fx.runner.Run(context.Background()); err == nil {
		t.Fatalf("expected driver error to stop the run")
	}
}

func TestNotifier_FiltersTopics(t *testing.T) {
	driver := &stubDriver{}
	n := NewNotifier(driver, DefaultTheme())

	n.Notify(notify.New(notify.KindSuccess, notify.TopicAutosave, "Progress: 10% saved"))
	n.Notify(notify.New(notify.KindError, notify.TopicValidation, "This field is required"))
	warn := notify.New(notify.KindWarning, notify.TopicStorage, storage.StorageErrorMessage)
	warn.Title = "Storage Error"
	n.Notify(warn)

	if len(driver.infoMessages) != 1 || driver.infoMessages[0] != "[!] Storage Error: "+storage.StorageErrorMessage {
		t.Fatalf("unexpected output %v", driver.infoMessages)
	}
}

func TestNew_RequiresController(t *testing.T) {
	if _, err := New(nil, nil); !errors.Is(err, ErrNoController) {
		t.Fatalf("expected ErrNoController, got %v", err)
	}
}
