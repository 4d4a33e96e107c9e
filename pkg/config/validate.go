package config

import (
	"fmt"
	"strings"
)

// Issue is a single schema violation located by a dotted path into the config
// document (for example "steps.1.fields.0.type").
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Issues collects schema violations. It implements error so callers can thread
// a failed validation through regular error returns.
type Issues []Issue

func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	var b strings.Builder
	shown := len(iss)
	if shown > maxShown {
		shown = maxShown
	}
	for i := 0; i < shown; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s at %s", iss[i].Message, iss[i].Path)
	}
	if len(iss) > shown {
		fmt.Fprintf(&b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// Validate checks a candidate FormConfig against the schema rules and returns
// every violation found. It never short-circuits and has no side effects. A
// nil return means the config is valid.
func Validate(cfg FormConfig) Issues {
	var iss Issues
	add := func(path, format string, args ...any) {
		iss = append(iss, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(cfg.ID) == "" {
		add("id", "form id is required")
	}
	if strings.TrimSpace(cfg.Title) == "" {
		add("title", "form title is required")
	}
	if len(cfg.Steps) == 0 {
		add("steps", "at least one step is required")
	}

	stepIDs := make(map[int]string, len(cfg.Steps))
	fieldNames := make(map[string]string)

	for i, step := range cfg.Steps {
		stepPath := fmt.Sprintf("steps.%d", i)
		if step.ID <= 0 {
			add(stepPath+".id", "step id must be a positive number")
		} else if prev, dup := stepIDs[step.ID]; dup {
			add(stepPath+".id", "step id %d already used by %s", step.ID, prev)
		} else {
			if i > 0 && step.ID <= cfg.Steps[i-1].ID {
				add(stepPath+".id", "step ids must be declared in increasing order")
			}
			stepIDs[step.ID] = stepPath
		}
		if strings.TrimSpace(step.Title) == "" {
			add(stepPath+".title", "step title is required")
		}

		for j, field := range step.Fields {
			fieldPath := fmt.Sprintf("%s.fields.%d", stepPath, j)
			validateField(field, fieldPath, fieldNames, add)
		}
	}

	return iss
}

func validateField(field FieldConfig, path string, names map[string]string, add func(string, string, ...any)) {
	if strings.TrimSpace(field.Name) == "" {
		add(path+".name", "field name is required")
	} else if prev, dup := names[field.Name]; dup {
		add(path+".name", "field name %q already used by %s", field.Name, prev)
	} else {
		names[field.Name] = path
	}

	if strings.TrimSpace(field.Label) == "" {
		add(path+".label", "field label is required")
	}

	if !KnownFieldType(field.Type) {
		add(path+".type", "unknown field type %q", field.Type)
		return
	}

	switch field.Type {
	case FieldTypeSelect, FieldTypeRadio:
		if len(field.Options) == 0 {
			add(path+".options", "%s fields require at least one option", field.Type)
		}
		for k, opt := range field.Options {
			if strings.TrimSpace(opt.Label) == "" {
				add(fmt.Sprintf("%s.options.%d.label", path, k), "option label is required")
			}
		}
	case FieldTypeArray:
		if len(field.Item) == 0 {
			add(path+".item", "array fields require an item template")
		}
		// Item sub-fields live under index-qualified paths at runtime
		// ("field.0.sub"), so they only need to be unique within their own
		// template, not against the form-wide namespace.
		itemNames := make(map[string]string, len(field.Item))
		for k, sub := range field.Item {
			validateField(sub, fmt.Sprintf("%s.item.%d", path, k), itemNames, add)
		}
	default:
		if len(field.Options) > 0 {
			add(path+".options", "%s fields do not accept options", field.Type)
		}
	}

	for k, rule := range field.Validation {
		rulePath := fmt.Sprintf("%s.validation.%d", path, k)
		validateRule(rule, rulePath, add)
	}
}

func validateRule(rule ValidationRule, path string, add func(string, string, ...any)) {
	switch rule.Kind {
	case RuleRequired:
	case RuleMin, RuleMax:
		if rule.Value == nil {
			add(path+".value", "%s rules require a value", rule.Kind)
		}
	case RulePattern:
		if _, ok := rule.Value.(string); !ok {
			add(path+".value", "pattern rules require a string expression")
		}
	case RuleCustom:
		// Predicates stay opaque; absence is only detectable at runtime when
		// rules arrive from JSON/YAML, so nothing to check here.
	default:
		add(path+".kind", "unknown validation rule kind %q", rule.Kind)
	}
	if strings.TrimSpace(rule.Message) == "" {
		add(path+".message", "validation rules require a message")
	}
}
