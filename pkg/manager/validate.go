package manager

import (
	"github.com/goliatone/go-formflow/pkg/config"
)

// Validation helpers delegate rule evaluation to the configured engine and
// write results into the store's error map. Validation failures are always
// data in state, never errors returned to the caller.

// SetFieldError attaches a manual error message to a field.
func (m *Manager) SetFieldError(name, message string) {
	m.store.SetFieldErrors(name, []string{message})
}

// ClearFieldError removes a field's error entry.
func (m *Manager) ClearFieldError(name string) {
	m.store.SetFieldErrors(name, nil)
}

// ValidateField re-runs validation for a single field and records the result.
// It reports whether the field passed. Unknown field names pass trivially.
func (m *Manager) ValidateField(name string) bool {
	snap := m.store.Snapshot()
	if snap.Config == nil {
		return true
	}
	field, ok := snap.Config.Field(name)
	if !ok {
		return true
	}
	messages := m.validateOne(field, snap.FormData[field.Name])
	m.store.SetFieldErrors(name, messages)
	return len(messages) == 0
}

// ValidateForm re-runs validation for every field and replaces the error map
// wholesale, preserving any existing root entry. It reports whether the whole
// form passed.
func (m *Manager) ValidateForm() bool {
	snap := m.store.Snapshot()
	if snap.Config == nil {
		return true
	}

	errs := make(map[string][]string)
	if root, ok := snap.Errors[RootErrorKey]; ok {
		errs[RootErrorKey] = root
	}
	for _, field := range snap.Config.Fields() {
		if messages := m.validateOne(field, snap.FormData[field.Name]); len(messages) > 0 {
			errs[field.Name] = messages
		}
	}
	m.store.SetErrors(errs)
	return onlyRoot(errs)
}

func onlyRoot(errs map[string][]string) bool {
	for name := range errs {
		if name != RootErrorKey {
			return false
		}
	}
	return true
}

func (m *Manager) validateOne(field config.FieldConfig, value any) []string {
	rules := field.Validation
	if len(rules) == 0 && m.registry != nil {
		rules = m.registry.EffectiveValidation(field)
	}
	if len(rules) == 0 || m.engine == nil {
		return nil
	}
	return m.engine.ValidateField(field, rules, value)
}
