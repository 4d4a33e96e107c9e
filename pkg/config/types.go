package config

// FieldType enumerates the field kinds the engine understands. The set is
// closed on purpose: schema validation checks tags against these constants
// rather than the live widget registry, so a config can validate even when a
// renderer for a tag has not been registered yet. A missing renderer is a
// render-time condition, not a schema error.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTel      FieldType = "tel"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeSwitch   FieldType = "switch"
	FieldTypeArray    FieldType = "array"
)

// KnownFieldType reports whether tag is part of the closed field-type set.
func KnownFieldType(tag FieldType) bool {
	switch tag {
	case FieldTypeText, FieldTypeTel, FieldTypeSelect, FieldTypeRadio,
		FieldTypeCheckbox, FieldTypeSwitch, FieldTypeArray:
		return true
	}
	return false
}

// Validation rule kinds. Rules are opaque to the engine core; they are
// attached to fields and handed verbatim to the validation engine.
const (
	RuleRequired = "required"
	RuleMin      = "min"
	RuleMax      = "max"
	RulePattern  = "pattern"
	RuleCustom   = "custom"
)

// Predicate is an opaque check attached to custom rules. It is never invoked
// during schema validation, only by the validation engine at runtime.
type Predicate func(value any) bool

// ValidationRule is a single constraint applied to a field. Kind selects the
// semantics; Value carries the threshold or pattern for min/max/pattern rules;
// Predicate carries the check for custom rules.
type ValidationRule struct {
	Kind      string    `json:"kind" yaml:"kind"`
	Message   string    `json:"message" yaml:"message"`
	Value     any       `json:"value,omitempty" yaml:"value,omitempty"`
	Predicate Predicate `json:"-" yaml:"-"`
}

// Option is a selectable choice for select and radio fields.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value any    `json:"value" yaml:"value"`
}

// FieldConfig models a single input inside a form. Name is the addressing key
// into the runtime form data and must be unique across the whole form, not
// just within its step.
type FieldConfig struct {
	Type        FieldType        `json:"type" yaml:"type"`
	Name        string           `json:"name" yaml:"name"`
	Label       string           `json:"label" yaml:"label"`
	Placeholder string           `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Validation  []ValidationRule `json:"validation,omitempty" yaml:"validation,omitempty"`
	Options     []Option         `json:"options,omitempty" yaml:"options,omitempty"`

	// Item describes the sub-record template for array fields.
	Item []FieldConfig `json:"item,omitempty" yaml:"item,omitempty"`
}

// StepConfig groups fields into a single page of a multi-step form. IDs are
// 1-based and must be unique across the form.
type StepConfig struct {
	ID          int           `json:"id" yaml:"id"`
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []FieldConfig `json:"fields" yaml:"fields"`
}

// Submission customises the final submit control.
type Submission struct {
	ButtonText string `json:"buttonText,omitempty" yaml:"buttonText,omitempty"`
}

// FormConfig is the top-level declarative description of a form. It is
// user-authored data; Validate is the canonical gate before any rendering or
// store initialisation happens.
type FormConfig struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []StepConfig `json:"steps" yaml:"steps"`
	Submission  *Submission  `json:"submission,omitempty" yaml:"submission,omitempty"`
}

// Field looks up a field by name across all steps.
func (c FormConfig) Field(name string) (FieldConfig, bool) {
	for _, step := range c.Steps {
		for _, field := range step.Fields {
			if field.Name == name {
				return field, true
			}
		}
	}
	return FieldConfig{}, false
}

// Step looks up a step by its declared id.
func (c FormConfig) Step(id int) (StepConfig, bool) {
	for _, step := range c.Steps {
		if step.ID == id {
			return step, true
		}
	}
	return StepConfig{}, false
}

// Fields returns every field of the form in declaration order.
func (c FormConfig) Fields() []FieldConfig {
	var out []FieldConfig
	for _, step := range c.Steps {
		out = append(out, step.Fields...)
	}
	return out
}
