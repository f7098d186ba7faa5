package wizard

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-formwizard/pkg/form"
	"github.com/goliatone/go-formwizard/pkg/validation"
)

// Placeholder stands in for missing values.
const Placeholder = "-"

//go:embed templates/review.tpl
var reviewTemplates embed.FS

var (
	reviewOnce     sync.Once
	reviewTemplate *pongo2.Template
	reviewErr      error

	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy

	moneyPrinter = message.NewPrinter(language.English)
)

// ReviewItem is one formatted value.
type ReviewItem struct {
	Key   string
	Label string
	Value string
}

// ReviewSection groups the items of one step.
type ReviewSection struct {
	Step  int
	Title string
	Items []ReviewItem
}

// Review is the read-only summary shown on the last step.
type Review struct {
	Sections []ReviewSection
}

// BuildReview formats record for display. Consent fields are left out.
func BuildReview(schema *form.Schema, record form.Record) Review {
	var review Review
	for _, step := range schema.Steps() {
		consent := make(map[string]bool, len(step.ConsentFields))
		for _, key := range step.ConsentFields {
			consent[key] = true
		}

		section := ReviewSection{Step: step.Number, Title: step.Title}
		for _, field := range step.Fields {
			if consent[field.Key] {
				continue
			}
			section.Items = append(section.Items, ReviewItem{
				Key:   field.Key,
				Label: field.DisplayLabel(),
				Value: FormatValue(field, record[field.Key]),
			})
		}
		if len(section.Items) > 0 {
			review.Sections = append(review.Sections, section)
		}
	}
	return review
}

// Value returns the formatted value for key, or Placeholder.
func (r Review) Value(key string) string {
	for _, section := range r.Sections {
		for _, item := range section.Items {
			if item.Key == key {
				return item.Value
			}
		}
	}
	return Placeholder
}

// Render writes the review as plain text.
func (r Review) Render() (string, error) {
	tmpl, err := loadReviewTemplate()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(pongo2.Context{"sections": r.Sections}, &buf); err != nil {
		return "", fmt.Errorf("wizard: render review: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}

// FormatValue renders a single field value for the review.
func FormatValue(field form.Field, value any) string {
	if field.Multiple {
		items := form.Record{field.Key: value}.Strings(field.Key)
		if len(items) == 0 {
			return Placeholder
		}
		return strings.Join(items, ", ")
	}
	if field.IsBoolean() {
		if (form.Record{field.Key: value}).Bool(field.Key) {
			return "Yes"
		}
		return "No"
	}

	raw := strings.TrimSpace(form.Stringify(value))
	if raw == "" {
		return Placeholder
	}

	switch {
	case field.Constraint == form.ConstraintSalary:
		return formatMoney(raw)
	case field.Type == form.FieldTypeDate:
		return validation.FormatDate(raw)
	case field.Type == form.FieldTypeTel:
		return validation.FormatPhoneNumber(raw)
	case field.IsChoice():
		return titleChoice(raw)
	}

	text := stripMarkup(raw)
	if text == "" {
		return Placeholder
	}
	return text
}

func formatMoney(raw string) string {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return raw
	}
	return moneyPrinter.Sprintf("$%d", n)
}

// titleChoice turns option values such as "high-school" into "High School".
// Values whose parts do not start with a letter ("1-3") only get their first
// letter raised.
func titleChoice(raw string) string {
	parts := strings.Split(raw, "-")
	for _, part := range parts {
		if part == "" || !isLetter(part[0]) {
			return form.TitleCase(raw)
		}
	}
	for i, part := range parts {
		parts[i] = form.TitleCase(part)
	}
	return strings.Join(parts, " ")
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func stripMarkup(raw string) string {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(raw)))
}

func loadReviewTemplate() (*pongo2.Template, error) {
	reviewOnce.Do(func() {
		set := pongo2.NewSet("wizard", pongo2.NewFSLoader(reviewTemplates))
		reviewTemplate, reviewErr = set.FromFile("templates/review.tpl")
		if reviewErr != nil {
			reviewErr = fmt.Errorf("wizard: load review template: %w", reviewErr)
		}
	})
	return reviewTemplate, reviewErr
}
