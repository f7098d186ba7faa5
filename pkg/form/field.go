package form

// FieldType is the input category a field is rendered and validated as.
type FieldType string

const (
	FieldTypeEmail    FieldType = "email"
	FieldTypeTel      FieldType = "tel"
	FieldTypeText     FieldType = "text"
	FieldTypeTextArea FieldType = "textarea"
	FieldTypeDate     FieldType = "date"
	FieldTypeRange    FieldType = "range"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeSelect   FieldType = "select"
)

// Constraint names a semantic rule applied on top of the type check.
type Constraint string

const (
	ConstraintNone      Constraint = ""
	ConstraintName      Constraint = "name"
	ConstraintCity      Constraint = "city"
	ConstraintSalary    Constraint = "salary"
	ConstraintBirthdate Constraint = "birthdate"
)

// Field describes a single addressable input of the wizard.
type Field struct {
	Key        string     `json:"key" yaml:"key"`
	Label      string     `json:"label,omitempty" yaml:"label,omitempty"`
	Type       FieldType  `json:"type" yaml:"type"`
	Required   bool       `json:"required" yaml:"required"`
	Constraint Constraint `json:"constraint,omitempty" yaml:"constraint,omitempty"`
	Options    []string   `json:"options,omitempty" yaml:"options,omitempty"`
	// Multiple marks a checkbox group whose value is always a list.
	Multiple bool   `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Min      int    `json:"min,omitempty" yaml:"min,omitempty"`
	Max      int    `json:"max,omitempty" yaml:"max,omitempty"`
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
	Step     int    `json:"step" yaml:"step"`
}

// DisplayLabel returns Label or a label derived from the key.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return Label(f.Key)
}

// IsChoice reports whether the field value is one option out of a fixed set.
func (f Field) IsChoice() bool {
	return f.Type == FieldTypeRadio || f.Type == FieldTypeSelect
}

// IsBoolean reports whether the field is a single checkbox.
func (f Field) IsBoolean() bool {
	return f.Type == FieldTypeCheckbox && !f.Multiple
}

// Step is one page of the wizard.
type Step struct {
	Number int     `json:"number"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
	// SelectionGroups lists multi-select keys needing at least one item.
	SelectionGroups []string `json:"selectionGroups,omitempty"`
	// ConsentFields lists boolean keys that must be true to leave the step.
	ConsentFields []string `json:"consentFields,omitempty"`
}
