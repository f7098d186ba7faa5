package form

import "fmt"

// Schema is the fixed, ordered set of wizard steps.
type Schema struct {
	steps  []Step
	fields map[string]Field
	order  []string
}

// NewSchema indexes the provided steps. Step numbers are assigned from the
// slice order (1-based) and field keys must be unique.
func NewSchema(steps ...Step) (*Schema, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("form: schema needs at least one step")
	}
	s := &Schema{
		fields: make(map[string]Field),
	}
	for i, step := range steps {
		step.Number = i + 1
		fields := make([]Field, len(step.Fields))
		for j, field := range step.Fields {
			if field.Key == "" {
				return nil, fmt.Errorf("form: step %d field %d has an empty key", step.Number, j)
			}
			if _, exists := s.fields[field.Key]; exists {
				return nil, fmt.Errorf("form: duplicate field %q", field.Key)
			}
			field.Step = step.Number
			if field.Label == "" {
				field.Label = Label(field.Key)
			}
			fields[j] = field
			s.fields[field.Key] = field
			s.order = append(s.order, field.Key)
		}
		step.Fields = fields
		s.steps = append(s.steps, step)
	}
	return s, nil
}

// Steps returns the ordered steps.
func (s *Schema) Steps() []Step {
	return s.steps
}

// Total returns the number of steps.
func (s *Schema) Total() int {
	return len(s.steps)
}

// Step returns the step with the 1-based number n.
func (s *Schema) Step(n int) (Step, bool) {
	if n < 1 || n > len(s.steps) {
		return Step{}, false
	}
	return s.steps[n-1], true
}

// Field looks a field up by key.
func (s *Schema) Field(key string) (Field, bool) {
	f, ok := s.fields[key]
	return f, ok
}

// Fields returns every field in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.fields[key])
	}
	return out
}

// MultipleKeys lists the keys of multi-select groups.
func (s *Schema) MultipleKeys() []string {
	var out []string
	for _, key := range s.order {
		if s.fields[key].Multiple {
			out = append(out, key)
		}
	}
	return out
}

// DefaultSteps returns the five onboarding steps.
func DefaultSteps() []Step {
	return []Step{
		{
			Title: "Personal Details",
			Fields: []Field{
				{Key: "firstName", Label: "First Name", Type: FieldTypeText, Required: true, Constraint: ConstraintName},
				{Key: "lastName", Label: "Last Name", Type: FieldTypeText, Required: true, Constraint: ConstraintName},
				{Key: "dob", Label: "Date of Birth", Type: FieldTypeDate, Required: true, Constraint: ConstraintBirthdate},
				{Key: "gender", Label: "Gender", Type: FieldTypeRadio, Required: true, Options: []string{"male", "female", "other"}},
				{Key: "bio", Label: "Short Bio", Type: FieldTypeTextArea},
			},
		},
		{
			Title: "Contact Information",
			Fields: []Field{
				{Key: "email", Label: "Email", Type: FieldTypeEmail, Required: true},
				{Key: "phone", Label: "Phone", Type: FieldTypeTel, Required: true},
				{Key: "address", Label: "Address", Type: FieldTypeText, Required: true},
				{Key: "city", Label: "City", Type: FieldTypeText, Required: true, Constraint: ConstraintCity},
				{Key: "country", Label: "Country", Type: FieldTypeSelect, Required: true, Options: []string{"usa", "uk", "canada", "australia", "pakistan", "india", "other"}},
			},
		},
		{
			Title: "Education & Experience",
			Fields: []Field{
				{Key: "education", Label: "Highest Education", Type: FieldTypeSelect, Required: true, Options: []string{"high-school", "associate", "bachelors", "masters", "phd"}},
				{Key: "institution", Label: "Institution", Type: FieldTypeText, Required: true},
				{Key: "field", Label: "Field of Study", Type: FieldTypeText},
				{Key: "experience", Label: "Years of Experience", Type: FieldTypeSelect, Required: true, Options: []string{"0-1", "1-3", "3-5", "5-10", "10+"}},
			},
		},
		{
			Title: "Skills & Preferences",
			Fields: []Field{
				{Key: "skills", Label: "Skills", Type: FieldTypeCheckbox, Multiple: true, Options: []string{"html", "css", "javascript", "react", "nodejs", "python", "uiux", "database"}},
				{Key: "jobRole", Label: "Desired Job Role", Type: FieldTypeText, Required: true},
				{Key: "salary", Label: "Expected Salary", Type: FieldTypeRange, Required: true, Constraint: ConstraintSalary, Min: 20000, Max: 150000, Default: "50000"},
				{Key: "workPref", Label: "Work Preference", Type: FieldTypeRadio, Required: true, Options: []string{"remote", "hybrid", "onsite"}},
			},
			SelectionGroups: []string{"skills"},
		},
		{
			Title: "Review & Submit",
			Fields: []Field{
				{Key: "terms", Label: "I accept the terms and conditions", Type: FieldTypeCheckbox, Required: true},
			},
			ConsentFields: []string{"terms"},
		},
	}
}

// DefaultSchema builds the schema for DefaultSteps.
func DefaultSchema() *Schema {
	s, err := NewSchema(DefaultSteps()...)
	if err != nil {
		panic(err)
	}
	return s
}
