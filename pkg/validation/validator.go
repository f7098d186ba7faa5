package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formwizard/pkg/form"
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern  = regexp.MustCompile(`^\+?[0-9]{10,}$`)
	phoneStripper = regexp.MustCompile(`[\s\-()]`)
	namePattern   = regexp.MustCompile(`^[A-Za-z\s\-']{2,50}$`)
	cityPattern   = regexp.MustCompile(`^[A-Za-z\s\-']{2,50}$`)
	salaryPattern = regexp.MustCompile(`^[0-9]{4,6}$`)
)

// DateLayout is the wire format of date fields.
const DateLayout = "2006-01-02"

// Error is a single field validation failure.
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Result is the outcome of ValidateForm.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the time source used for age checks.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// WithMessages replaces the validation copy.
func WithMessages(messages Messages) Option {
	return func(v *Validator) {
		v.messages = messages
	}
}

// WithSalaryRange overrides the accepted salary bounds.
func WithSalaryRange(min, max int) Option {
	return func(v *Validator) {
		if min > 0 && max >= min {
			v.salaryMin, v.salaryMax = min, max
		}
	}
}

// Validator checks field values against their declared constraints. It holds
// no per-session state and is safe to share.
type Validator struct {
	schema    *form.Schema
	now       func() time.Time
	messages  Messages
	salaryMin int
	salaryMax int
	minAge    int
	maxAge    int
}

// New builds a Validator for schema.
func New(schema *form.Schema, opts ...Option) *Validator {
	if schema == nil {
		schema = form.DefaultSchema()
	}
	v := &Validator{
		schema:    schema,
		now:       time.Now,
		messages:  DefaultMessages(),
		salaryMin: 20000,
		salaryMax: 150000,
		minAge:    18,
		maxAge:    100,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(v)
	}
	return v
}

// Messages returns the copy in use.
func (v *Validator) Messages() Messages {
	return v.messages
}

// ValidateField returns the first failure for value or nil when it passes.
// Checks run in order: required (selects included), optional short-circuit,
// then type and constraint checks.
func (v *Validator) ValidateField(field form.Field, value any) *Error {
	trimmed := strings.TrimSpace(form.Stringify(value))

	if field.Required && trimmed == "" {
		return v.fail(field, v.messages.Required)
	}
	if trimmed == "" {
		return nil
	}

	if msg := v.checkType(field, trimmed); msg != "" {
		return v.fail(field, msg)
	}
	return nil
}

func (v *Validator) checkType(field form.Field, value string) string {
	switch field.Type {
	case form.FieldTypeEmail:
		if !emailPattern.MatchString(value) {
			return v.messages.InvalidEmail
		}
	case form.FieldTypeTel:
		if !phonePattern.MatchString(phoneStripper.ReplaceAllString(value, "")) {
			return v.messages.InvalidPhone
		}
	}

	switch field.Constraint {
	case form.ConstraintName:
		if !namePattern.MatchString(value) {
			return v.messages.InvalidName
		}
	case form.ConstraintCity:
		if !cityPattern.MatchString(value) {
			return v.messages.InvalidCity
		}
	case form.ConstraintSalary:
		return v.checkSalary(value)
	case form.ConstraintBirthdate:
		return v.checkBirthdate(value)
	}
	return ""
}

func (v *Validator) checkSalary(value string) string {
	if !salaryPattern.MatchString(value) {
		return v.messages.InvalidMoney
	}
	amount, err := strconv.Atoi(value)
	if err != nil {
		return v.messages.InvalidMoney
	}
	if amount < v.salaryMin || amount > v.salaryMax {
		return v.messages.SalaryRange
	}
	return ""
}

func (v *Validator) checkBirthdate(value string) string {
	today := v.now()
	dob, err := time.ParseInLocation(DateLayout, value, today.Location())
	if err != nil {
		return v.messages.InvalidDate
	}
	if dob.After(today) {
		return v.messages.FutureDate
	}
	age := Age(dob, today)
	if age < v.minAge {
		return v.messages.UnderAge
	}
	if age > v.maxAge {
		return v.messages.OverAge
	}
	return ""
}

// Age returns the number of whole years between dob and now.
func Age(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// ValidateStep validates every field of step n present in record and applies
// the step's selection group rule. All failures are returned, not just the
// first.
func (v *Validator) ValidateStep(n int, record form.Record) []Error {
	step, ok := v.schema.Step(n)
	if !ok {
		return nil
	}

	var errs []Error
	for _, field := range step.Fields {
		if field.Multiple {
			continue
		}
		value, present := record[field.Key]
		if !present {
			continue
		}
		if err := v.ValidateField(field, value); err != nil {
			errs = append(errs, *err)
		}
	}

	for _, key := range step.SelectionGroups {
		if len(record.Strings(key)) == 0 {
			errs = append(errs, Error{Field: key, Message: v.messages.MinSelection})
		}
	}
	return errs
}

// ValidateConsent reports unchecked consent fields of step n.
func (v *Validator) ValidateConsent(n int, record form.Record) []Error {
	step, ok := v.schema.Step(n)
	if !ok {
		return nil
	}
	var errs []Error
	for _, key := range step.ConsentFields {
		if !record.Bool(key) {
			errs = append(errs, Error{Field: key, Message: v.messages.Consent})
		}
	}
	return errs
}

// ValidateForm checks every required field present in record regardless of
// step boundaries.
func (v *Validator) ValidateForm(record form.Record) Result {
	result := Result{Valid: true}
	for _, key := range record.Keys() {
		field, ok := v.schema.Field(key)
		if !ok || !field.Required || field.Multiple {
			continue
		}
		if err := v.ValidateField(field, record[key]); err != nil {
			if result.Errors == nil {
				result.Errors = make(map[string]string)
			}
			result.Valid = false
			result.Errors[key] = err.Message
		}
	}
	return result
}

func (v *Validator) fail(field form.Field, message string) *Error {
	return &Error{Field: field.Key, Message: message}
}
