// Package openapi derives form configurations from OpenAPI operations, so
// existing API contracts can feed the form engine without hand-written
// configs.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/config"
)

// stepExtensionKey optionally assigns a property to a numbered step. Without
// it every field lands on step one.
const stepExtensionKey = "x-formflow-step"

// Importer converts an operation's request body schema into a FormConfig.
type Importer struct {
	loader *openapi3.Loader
}

// NewImporter constructs an importer with its own kin-openapi loader.
func NewImporter() *Importer {
	return &Importer{
		loader: &openapi3.Loader{},
	}
}

// Import loads an OpenAPI document and builds a validated FormConfig for the
// operation identified by operationID. The request body's JSON schema drives
// the fields; required properties and string constraints become validation
// rules; enums become select options.
func (i *Importer) Import(ctx context.Context, document []byte, operationID string) (config.FormConfig, error) {
	if ctx == nil {
		return config.FormConfig{}, errors.New("openapi: context is required")
	}
	if operationID == "" {
		return config.FormConfig{}, errors.New("openapi: operation id is required")
	}

	i.loader.Context = ctx
	spec, err := i.loader.LoadFromData(document)
	if err != nil {
		return config.FormConfig{}, fmt.Errorf("openapi: load document: %w", err)
	}

	operation := findOperation(spec, operationID)
	if operation == nil {
		return config.FormConfig{}, fmt.Errorf("openapi: operation %q not found", operationID)
	}

	schema := requestSchema(operation)
	if schema == nil {
		return config.FormConfig{}, fmt.Errorf("openapi: operation %q has no request body schema", operationID)
	}

	cfg := buildConfig(operationID, operation, schema)
	if iss := config.Validate(cfg); len(iss) > 0 {
		return config.FormConfig{}, fmt.Errorf("openapi: derived config invalid: %w", iss)
	}
	return cfg, nil
}

func findOperation(spec *openapi3.T, operationID string) *openapi3.Operation {
	if spec.Paths == nil {
		return nil
	}
	for _, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range []*openapi3.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Patch,
		} {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestSchema(operation *openapi3.Operation) *openapi3.Schema {
	if operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return nil
	}
	content := operation.RequestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func buildConfig(operationID string, operation *openapi3.Operation, schema *openapi3.Schema) config.FormConfig {
	title := operation.Summary
	if title == "" {
		title = operationID
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	// Properties come out of kin-openapi unordered; sort for stable output.
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	stepFields := make(map[int][]config.FieldConfig)
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		field, ok := buildField(name, ref.Value, required[name])
		if !ok {
			continue
		}
		stepNumber := propertyStep(ref.Value)
		stepFields[stepNumber] = append(stepFields[stepNumber], field)
	}

	stepNumbers := make([]int, 0, len(stepFields))
	for number := range stepFields {
		stepNumbers = append(stepNumbers, number)
	}
	sort.Ints(stepNumbers)

	cfg := config.FormConfig{
		ID:          operationID,
		Title:       title,
		Description: operation.Description,
	}
	for idx, number := range stepNumbers {
		stepTitle := title
		if len(stepNumbers) > 1 {
			stepTitle = fmt.Sprintf("%s (%d)", title, number)
		}
		cfg.Steps = append(cfg.Steps, config.StepConfig{
			ID:     idx + 1,
			Title:  stepTitle,
			Fields: stepFields[number],
		})
	}
	return cfg
}

func propertyStep(schema *openapi3.Schema) int {
	raw, ok := schema.Extensions[stepExtensionKey]
	if !ok {
		return 1
	}
	switch typed := raw.(type) {
	case float64:
		if typed >= 1 {
			return int(typed)
		}
	case int:
		if typed >= 1 {
			return typed
		}
	}
	return 1
}

func buildField(name string, schema *openapi3.Schema, required bool) (config.FieldConfig, bool) {
	field := config.FieldConfig{
		Name:        name,
		Label:       labelFromName(name),
		Description: schema.Description,
	}

	switch {
	case len(schema.Enum) > 0:
		field.Type = config.FieldTypeSelect
		for _, value := range schema.Enum {
			field.Options = append(field.Options, config.Option{
				Label: fmt.Sprintf("%v", value),
				Value: value,
			})
		}
	case schemaType(schema) == "boolean":
		field.Type = config.FieldTypeSwitch
	case schemaType(schema) == "array":
		item := itemTemplate(schema)
		if len(item) == 0 {
			return config.FieldConfig{}, false
		}
		field.Type = config.FieldTypeArray
		field.Item = item
	case schemaType(schema) == "string" && schema.Format == "tel":
		field.Type = config.FieldTypeTel
	default:
		field.Type = config.FieldTypeText
	}

	field.Validation = buildRules(field.Label, schema, required)
	return field, true
}

func itemTemplate(schema *openapi3.Schema) []config.FieldConfig {
	if schema.Items == nil || schema.Items.Value == nil {
		return nil
	}
	items := schema.Items.Value
	if schemaType(items) != "object" || len(items.Properties) == 0 {
		return nil
	}

	names := make([]string, 0, len(items.Properties))
	for name := range items.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []config.FieldConfig
	for _, name := range names {
		ref := items.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		if schemaType(ref.Value) == "array" || schemaType(ref.Value) == "object" {
			// Nested collections inside repeatable groups are out of the form
			// engine's reach; flatten to what it can represent.
			continue
		}
		out = append(out, config.FieldConfig{
			Type:        config.FieldTypeText,
			Name:        name,
			Label:       labelFromName(name),
			Description: ref.Value.Description,
		})
	}
	return out
}

func buildRules(label string, schema *openapi3.Schema, required bool) []config.ValidationRule {
	var rules []config.ValidationRule
	if required {
		rules = append(rules, config.ValidationRule{
			Kind:    config.RuleRequired,
			Message: label + " is required",
		})
	}
	if schema.MinLength > 0 {
		rules = append(rules, config.ValidationRule{
			Kind:    config.RuleMin,
			Message: fmt.Sprintf("%s must be at least %d characters", label, schema.MinLength),
			Value:   int(schema.MinLength),
		})
	}
	if schema.MaxLength != nil {
		rules = append(rules, config.ValidationRule{
			Kind:    config.RuleMax,
			Message: fmt.Sprintf("%s must be at most %d characters", label, *schema.MaxLength),
			Value:   int(*schema.MaxLength),
		})
	}
	if schema.Pattern != "" {
		rules = append(rules, config.ValidationRule{
			Kind:    config.RulePattern,
			Message: label + " has an invalid format",
			Value:   schema.Pattern,
		})
	}
	return rules
}

func schemaType(schema *openapi3.Schema) string {
	if schema.Type == nil || len(*schema.Type) == 0 {
		return ""
	}
	return (*schema.Type)[0]
}

func labelFromName(name string) string {
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(name)
	words := strings.Fields(cleaned)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	if len(words) == 0 {
		return name
	}
	return strings.Join(words, " ")
}
