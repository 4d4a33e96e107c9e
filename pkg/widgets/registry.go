package widgets

import (
	"bytes"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formflow/pkg/config"
)

// FieldContext carries everything a widget renderer needs to emit a control:
// the declarative field config, the current value from the runtime state, any
// validation messages attached to the field, and its dotted path inside the
// form data.
type FieldContext struct {
	Field  config.FieldConfig
	Value  any
	Errors []string
	Path   string
}

// Renderer writes the markup for a single field into buf. Implementations
// receive the field context and are free to ignore parts of it.
type Renderer func(buf *bytes.Buffer, field FieldContext) error

// Registration bundles a renderer with the default validation ruleset applied
// to fields of its tag when the field declares none of its own.
type Registration struct {
	Tag               string
	Renderer          Renderer
	DefaultValidation []config.ValidationRule
}

// Registry maps field-type tags to widget registrations. It decouples the
// declarative schema (string tags) from concrete renderer implementations so
// new field types can be added without touching the engine core. Registration
// happens once per tag at startup; lookups run continuously during render.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Registration
}

// NewRegistry constructs an empty registry. Most callers will follow up with
// a defaults installer such as html.RegisterDefaults.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Registration),
	}
}

// Register adds or replaces the registration for a tag. Re-registering an
// existing tag overwrites the previous entry: last write wins. That is
// deliberate so applications can replace built-in widgets wholesale rather
// than erroring on collision.
func (r *Registry) Register(tag string, renderer Renderer, defaultValidation ...config.ValidationRule) {
	if r == nil || renderer == nil {
		return
	}
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[trimmed] = Registration{
		Tag:               trimmed,
		Renderer:          renderer,
		DefaultValidation: append([]config.ValidationRule(nil), defaultValidation...),
	}
}

// Resolve returns the registration for a tag. A missing tag is a normal
// outcome signalled through the boolean, not an error: callers decide whether
// to fall back to a placeholder.
func (r *Registry) Resolve(tag string) (Registration, bool) {
	if r == nil {
		return Registration{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[tag]
	return entry, ok
}

// Has reports whether a tag has a registered widget.
func (r *Registry) Has(tag string) bool {
	_, ok := r.Resolve(tag)
	return ok
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.entries))
	for tag := range r.entries {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Clear removes every registration. Intended for tests that need a pristine
// registry between cases.
func (r *Registry) Clear() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = make(map[string]Registration)
}

// EffectiveValidation merges a field's own rules with the registry defaults
// for its tag. Field-declared rules win; defaults only apply when the field
// declares none.
func (r *Registry) EffectiveValidation(field config.FieldConfig) []config.ValidationRule {
	if len(field.Validation) > 0 {
		return field.Validation
	}
	entry, ok := r.Resolve(string(field.Type))
	if !ok {
		return nil
	}
	return entry.DefaultValidation
}
