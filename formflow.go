// Package formflow is a schema-driven, multi-step form engine: form
// structure is described declaratively (steps, fields, validation rules) and
// a generic runtime renders, validates, persists and submits forms without
// per-form code. The root package re-exports the common types and wires the
// default stack together.
package formflow

import (
	"github.com/goliatone/go-formflow/pkg/config"
	"github.com/goliatone/go-formflow/pkg/manager"
	"github.com/goliatone/go-formflow/pkg/render"
	htmlwidgets "github.com/goliatone/go-formflow/pkg/renderers/html"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/store"
	"github.com/goliatone/go-formflow/pkg/widgets"
)

// Re-exported configuration types.
type (
	FormConfig     = config.FormConfig
	StepConfig     = config.StepConfig
	FieldConfig    = config.FieldConfig
	ValidationRule = config.ValidationRule
	Option         = config.Option
	Issue          = config.Issue
	Issues         = config.Issues
)

// Re-exported runtime types.
type (
	Snapshot = store.Snapshot
	Manager  = manager.Manager
)

// Validate checks a form configuration; see config.Validate.
func Validate(cfg FormConfig) Issues {
	return config.Validate(cfg)
}

// NewRegistry returns a widget registry pre-populated with the built-in HTML
// widget set.
func NewRegistry() *widgets.Registry {
	reg := widgets.NewRegistry()
	htmlwidgets.RegisterDefaults(reg)
	return reg
}

// NewStore returns a store persisting into in-memory session storage.
func NewStore() *store.Store {
	return store.New(store.WithStorage(session.NewMemoryStorage()))
}

// NewManager validates the config and builds a manager wired with the default
// registry and a session-persisted store, applying any extra options on top.
func NewManager(formID string, cfg FormConfig, options ...manager.Option) (*Manager, error) {
	base := []manager.Option{
		manager.WithStore(NewStore()),
		manager.WithRegistry(NewRegistry()),
	}
	return manager.New(formID, cfg, append(base, options...)...)
}

// NewRenderer returns a step renderer over the default widget set.
func NewRenderer(options ...render.Option) *render.Renderer {
	base := []render.Option{render.WithRegistry(NewRegistry())}
	return render.New(append(base, options...)...)
}
