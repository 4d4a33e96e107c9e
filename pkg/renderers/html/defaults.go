// Package html provides the built-in HTML widget set: thin presentational
// renderers for each field type, registered against the widget registry at
// startup.
package html

import (
	"bytes"
	"fmt"
	"html"

	"github.com/goliatone/go-formflow/pkg/config"
	"github.com/goliatone/go-formflow/pkg/widgets"
)

// RegisterDefaults installs the built-in widgets for every known field type.
// Applications can re-register individual tags afterwards; the registry keeps
// the last write.
func RegisterDefaults(reg *widgets.Registry) {
	if reg == nil {
		return
	}
	reg.Register(string(config.FieldTypeText), inputRenderer("text"))
	reg.Register(string(config.FieldTypeTel), inputRenderer("tel"), config.ValidationRule{
		Kind:    config.RulePattern,
		Message: "Enter a valid phone number",
		Value:   `^\+?[0-9()\-\s]{4,20}$`,
	})
	reg.Register(string(config.FieldTypeSelect), selectRenderer)
	reg.Register(string(config.FieldTypeRadio), radioRenderer)
	reg.Register(string(config.FieldTypeCheckbox), checkboxRenderer("checkbox"))
	reg.Register(string(config.FieldTypeSwitch), checkboxRenderer("switch"))
	reg.Register(string(config.FieldTypeArray), arrayRenderer)
}

func controlID(name string) string {
	return "ff-" + name
}

func inputRenderer(inputType string) widgets.Renderer {
	return func(buf *bytes.Buffer, field widgets.FieldContext) error {
		value := ""
		if typed, ok := field.Value.(string); ok {
			value = typed
		}
		fmt.Fprintf(buf, `<input type=%q id=%q name=%q value=%q`,
			inputType, controlID(field.Field.Name), field.Field.Name, html.EscapeString(value))
		if field.Field.Placeholder != "" {
			fmt.Fprintf(buf, ` placeholder=%q`, html.EscapeString(field.Field.Placeholder))
		}
		if len(field.Errors) > 0 {
			buf.WriteString(` aria-invalid="true"`)
		}
		buf.WriteString(" />\n")
		return nil
	}
}

func selectRenderer(buf *bytes.Buffer, field widgets.FieldContext) error {
	fmt.Fprintf(buf, `<select id=%q name=%q>`+"\n", controlID(field.Field.Name), field.Field.Name)
	if field.Field.Placeholder != "" {
		fmt.Fprintf(buf, `<option value="" disabled>%s</option>`+"\n", html.EscapeString(field.Field.Placeholder))
	}
	for _, opt := range field.Field.Options {
		selected := ""
		if optionMatches(opt, field.Value) {
			selected = " selected"
		}
		fmt.Fprintf(buf, `<option value=%q%s>%s</option>`+"\n",
			html.EscapeString(optionValue(opt)), selected, html.EscapeString(opt.Label))
	}
	buf.WriteString("</select>\n")
	return nil
}

func radioRenderer(buf *bytes.Buffer, field widgets.FieldContext) error {
	buf.WriteString(`<div class="ff-radio-group" role="radiogroup">` + "\n")
	for i, opt := range field.Field.Options {
		checked := ""
		if optionMatches(opt, field.Value) {
			checked = " checked"
		}
		id := fmt.Sprintf("%s-%d", controlID(field.Field.Name), i)
		fmt.Fprintf(buf, `<label for=%q><input type="radio" id=%q name=%q value=%q%s /> %s</label>`+"\n",
			id, id, field.Field.Name, html.EscapeString(optionValue(opt)), checked, html.EscapeString(opt.Label))
	}
	buf.WriteString("</div>\n")
	return nil
}

func checkboxRenderer(role string) widgets.Renderer {
	return func(buf *bytes.Buffer, field widgets.FieldContext) error {
		checked := ""
		if on, _ := field.Value.(bool); on {
			checked = " checked"
		}
		fmt.Fprintf(buf, `<input type="checkbox" id=%q name=%q class="ff-%s"%s />`+"\n",
			controlID(field.Field.Name), field.Field.Name, role, checked)
		return nil
	}
}

// arrayRenderer emits one fieldset per existing item, rendering the item
// template's sub-fields with index-qualified names, plus an add control. Item
// mutation itself is wired up by the host application through the manager's
// array helpers.
func arrayRenderer(buf *bytes.Buffer, field widgets.FieldContext) error {
	items, _ := field.Value.([]any)
	fmt.Fprintf(buf, `<div class="ff-array" data-field=%q>`+"\n", field.Field.Name)
	for i, item := range items {
		record, _ := item.(map[string]any)
		fmt.Fprintf(buf, `<fieldset class="ff-array-item" data-index="%d">`+"\n", i)
		for _, sub := range field.Field.Item {
			name := fmt.Sprintf("%s.%d.%s", field.Field.Name, i, sub.Name)
			value := ""
			if record != nil {
				if typed, ok := record[sub.Name].(string); ok {
					value = typed
				}
			}
			fmt.Fprintf(buf, `<label for=%q>%s</label>`+"\n", controlID(name), html.EscapeString(sub.Label))
			fmt.Fprintf(buf, `<input type="text" id=%q name=%q value=%q />`+"\n",
				controlID(name), name, html.EscapeString(value))
		}
		buf.WriteString(`<button type="button" class="ff-array-remove">Remove</button>` + "\n")
		buf.WriteString("</fieldset>\n")
	}
	buf.WriteString(`<button type="button" class="ff-array-add">Add</button>` + "\n")
	buf.WriteString("</div>\n")
	return nil
}

func optionValue(opt config.Option) string {
	return fmt.Sprintf("%v", opt.Value)
}

func optionMatches(opt config.Option, value any) bool {
	if value == nil {
		return false
	}
	return fmt.Sprintf("%v", opt.Value) == fmt.Sprintf("%v", value)
}
