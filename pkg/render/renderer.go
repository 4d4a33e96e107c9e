// Package render composes whole form steps out of the widget registry. It
// owns the chrome around individual controls (labels, descriptions, error
// lists, step progress) while the controls themselves come from registered
// widget renderers.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"sort"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formflow/pkg/config"
	"github.com/goliatone/go-formflow/pkg/store"
	"github.com/goliatone/go-formflow/pkg/widgets"
)

// Diagnostic reports a non-fatal render condition, such as a field whose tag
// has no registered widget. The rest of the form proceeds.
type Diagnostic struct {
	Path    string
	Message string
}

// Result is the rendered output for one step plus any diagnostics emitted
// while producing it.
type Result struct {
	HTML        []byte
	Diagnostics []Diagnostic
}

// Option customises the renderer.
type Option func(*Renderer)

// WithRegistry injects the widget registry. Without one every field renders
// as a placeholder.
func WithRegistry(registry *widgets.Registry) Option {
	return func(r *Renderer) {
		r.registry = registry
	}
}

// WithSanitizer overrides the policy applied to field descriptions, which may
// carry limited markup. Defaults to bluemonday.UGCPolicy.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(r *Renderer) {
		if policy != nil {
			r.sanitizer = policy
		}
	}
}

// WithThemeSelector resolves a go-theme selection up front and emits its
// tokens as CSS custom properties on the form root, so themed stylesheets can
// pick them up without a second resolution pass.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(r *Renderer) {
		if selector == nil {
			return
		}
		selection, err := selector.Select(name, variant)
		if err != nil {
			r.themeErr = fmt.Errorf("render: select theme %q: %w", name, err)
			return
		}
		r.themeStyle = themeStyle(selection)
	}
}

// Renderer turns store snapshots into HTML for the current step.
type Renderer struct {
	registry   *widgets.Registry
	sanitizer  *bluemonday.Policy
	themeStyle string
	themeErr   error
}

// New constructs a renderer applying the provided options.
func New(options ...Option) *Renderer {
	r := &Renderer{
		sanitizer: bluemonday.UGCPolicy(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

const rootErrorKey = "root"

// RenderStep renders the step the snapshot is on: chrome, every field of the
// step, and either a next-step control or the submit control on the final
// step. Unknown widget tags degrade to placeholders with a diagnostic rather
// than failing the form.
func (r *Renderer) RenderStep(snap store.Snapshot) (Result, error) {
	if r.themeErr != nil {
		return Result{}, r.themeErr
	}
	if snap.Config == nil {
		return Result{}, errors.New("render: snapshot has no form config")
	}
	if snap.CurrentStep < 1 || snap.CurrentStep > len(snap.Config.Steps) {
		return Result{}, fmt.Errorf("render: step %d out of range", snap.CurrentStep)
	}
	step := snap.Config.Steps[snap.CurrentStep-1]

	var buf bytes.Buffer
	var diags []Diagnostic

	fmt.Fprintf(&buf, `<form class="ff-form" data-form-id="%s"`, html.EscapeString(snap.FormID))
	if r.themeStyle != "" {
		fmt.Fprintf(&buf, ` style="%s"`, html.EscapeString(r.themeStyle))
	}
	buf.WriteString(">\n")

	fmt.Fprintf(&buf, `<div class="ff-progress">Step %d of %d</div>`+"\n", snap.CurrentStep, snap.TotalSteps)
	fmt.Fprintf(&buf, `<h2 class="ff-step-title">%s</h2>`+"\n", html.EscapeString(step.Title))
	if step.Description != "" {
		fmt.Fprintf(&buf, `<p class="ff-step-description">%s</p>`+"\n", html.EscapeString(step.Description))
	}
	if root := snap.Errors[rootErrorKey]; len(root) > 0 {
		buf.WriteString(`<div class="ff-errors ff-errors-root">` + "\n")
		for _, message := range root {
			fmt.Fprintf(&buf, `<p class="ff-error">%s</p>`+"\n", html.EscapeString(message))
		}
		buf.WriteString("</div>\n")
	}

	for _, field := range step.Fields {
		diags = append(diags, r.renderField(&buf, field, snap)...)
	}

	if snap.CurrentStep == snap.TotalSteps {
		label := "Submit"
		if snap.Config.Submission != nil && snap.Config.Submission.ButtonText != "" {
			label = snap.Config.Submission.ButtonText
		}
		fmt.Fprintf(&buf, `<button type="submit" class="ff-submit">%s</button>`+"\n", html.EscapeString(label))
	} else {
		buf.WriteString(`<button type="button" class="ff-next">Next</button>` + "\n")
	}
	buf.WriteString("</form>\n")

	return Result{HTML: buf.Bytes(), Diagnostics: diags}, nil
}

func (r *Renderer) renderField(buf *bytes.Buffer, field config.FieldConfig, snap store.Snapshot) []Diagnostic {
	fmt.Fprintf(buf, `<div class="ff-field" data-field="%s">`+"\n", html.EscapeString(field.Name))
	fmt.Fprintf(buf, `<label class="ff-label" for="ff-%s">%s</label>`+"\n",
		html.EscapeString(field.Name), html.EscapeString(field.Label))

	var diags []Diagnostic

	registration, ok := r.resolve(field)
	if !ok {
		fmt.Fprintf(buf, `<div class="ff-placeholder" data-missing-widget="%s"></div>`+"\n", html.EscapeString(string(field.Type)))
		diags = append(diags, Diagnostic{
			Path:    field.Name,
			Message: fmt.Sprintf("no widget registered for type %q", field.Type),
		})
	} else {
		fieldCtx := widgets.FieldContext{
			Field:  field,
			Value:  snap.FormData[field.Name],
			Errors: snap.Errors[field.Name],
			Path:   field.Name,
		}
		var control bytes.Buffer
		if err := registration.Renderer(&control, fieldCtx); err != nil {
			fmt.Fprintf(buf, `<div class="ff-placeholder" data-render-error="%s"></div>`+"\n", html.EscapeString(field.Name))
			diags = append(diags, Diagnostic{
				Path:    field.Name,
				Message: fmt.Sprintf("render widget %q: %v", field.Type, err),
			})
		} else {
			buf.Write(control.Bytes())
		}
	}

	if field.Description != "" {
		fmt.Fprintf(buf, `<p class="ff-description">%s</p>`+"\n", r.sanitizer.Sanitize(field.Description))
	}
	for _, message := range snap.Errors[field.Name] {
		fmt.Fprintf(buf, `<p class="ff-error">%s</p>`+"\n", html.EscapeString(message))
	}
	buf.WriteString("</div>\n")
	return diags
}

func (r *Renderer) resolve(field config.FieldConfig) (widgets.Registration, bool) {
	if r.registry == nil {
		return widgets.Registration{}, false
	}
	return r.registry.Resolve(string(field.Type))
}

// themeStyle flattens the selection's tokens (variant tokens over base ones)
// into CSS custom properties.
func themeStyle(selection *theme.Selection) string {
	if selection == nil || selection.Manifest == nil {
		return ""
	}
	tokens := make(map[string]string, len(selection.Manifest.Tokens))
	for key, value := range selection.Manifest.Tokens {
		tokens[key] = value
	}
	if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Tokens {
			tokens[key] = value
		}
	}
	if len(tokens) == 0 {
		return ""
	}

	keys := make([]string, 0, len(tokens))
	for key := range tokens {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, key := range keys {
		fmt.Fprintf(&buf, "--%s: %s; ", key, tokens[key])
	}
	return buf.String()
}
