// Package manager coordinates the form data lifecycle around the state
// store: initial remote load, debounced autosave on dirty edits, explicit
// submission with cache updates, repeatable-group operations and field-level
// validation.
package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-formflow/pkg/config"
	"github.com/goliatone/go-formflow/pkg/source"
	"github.com/goliatone/go-formflow/pkg/store"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/widgets"
)

// RootErrorKey is the errors-map entry used for form-level failures such as a
// rejected submission, kept distinct from field-level entries.
const RootErrorKey = "root"

// DefaultAutosaveInterval is the quiescence window before a dirty form is
// written back: each edit inside the window cancels and rearms the timer.
const DefaultAutosaveInterval = 2 * time.Second

// Option customises the manager configuration.
type Option func(*Manager)

// WithStore injects a pre-built store, e.g. one rehydrated from session
// storage. When omitted the manager creates a bare store.
func WithStore(s *store.Store) Option {
	return func(m *Manager) {
		if s != nil {
			m.store = s
		}
	}
}

// WithSource injects the remote data layer used for load and save. Without a
// source the manager works purely locally: loads fall back to the seed data
// and submissions fail with ErrNoSource.
func WithSource(src source.DataSource) Option {
	return func(m *Manager) {
		m.src = src
	}
}

// WithCache injects the query cache updated after successful writes.
func WithCache(cache source.Cache) Option {
	return func(m *Manager) {
		m.cache = cache
	}
}

// WithValidator injects the validation engine rule evaluation is delegated
// to. Defaults to validation.NewRuleEngine.
func WithValidator(engine validation.Engine) Option {
	return func(m *Manager) {
		if engine != nil {
			m.engine = engine
		}
	}
}

// WithRegistry injects the widget registry consulted for per-tag default
// validation rules when composing and validating fields.
func WithRegistry(registry *widgets.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// WithAutosaveInterval overrides the debounce quiescence window. A zero or
// negative duration disables autosave entirely.
func WithAutosaveInterval(d time.Duration) Option {
	return func(m *Manager) {
		m.debounce = d
	}
}

// WithCallbacks registers the explicit-submission callbacks. onSuccess
// receives the server-returned data; onError receives the original error.
// Autosave never invokes either.
func WithCallbacks(onSuccess func(map[string]any), onError func(error)) Option {
	return func(m *Manager) {
		m.onSuccess = onSuccess
		m.onError = onError
	}
}

// WithSeedData supplies default field values used when initialising the form
// and when no remote copy exists.
func WithSeedData(seed map[string]any) Option {
	return func(m *Manager) {
		m.seed = seed
	}
}

// ErrNoSource is returned by Submit when no data source is configured.
var ErrNoSource = errors.New("manager: no data source configured")

// Manager owns one form's lifecycle. All field edits should flow through it
// (UpdateField, the array helpers) so dirty tracking and the autosave
// debounce stay correct.
type Manager struct {
	store    *store.Store
	src      source.DataSource
	cache    source.Cache
	engine   validation.Engine
	registry *widgets.Registry
	debounce time.Duration
	seed     map[string]any

	onSuccess func(map[string]any)
	onError   func(error)

	ctx    context.Context
	cancel context.CancelFunc

	// flight is a one-slot semaphore: exactly one autosave or submission
	// write is in flight at any time.
	flight chan struct{}

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	loading bool
	saving  bool
	loadErr error
	closed  bool
}

// New validates the config, initialises the runtime state and returns a
// manager ready for Load/Submit. An invalid config is fatal: the form must
// not come up at all.
func New(formID string, cfg config.FormConfig, options ...Option) (*Manager, error) {
	if iss := config.Validate(cfg); len(iss) > 0 {
		return nil, fmt.Errorf("manager: invalid form config: %w", iss)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		engine:   validation.NewRuleEngine(),
		debounce: DefaultAutosaveInterval,
		ctx:      ctx,
		cancel:   cancel,
		flight:   make(chan struct{}, 1),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(m)
	}
	if m.store == nil {
		m.store = store.New()
	}

	// A store rehydrated from session storage for the same form keeps its
	// in-progress data and step across the re-initialisation.
	seed := m.seed
	restoredStep := 0
	if snap := m.store.Snapshot(); snap.FormID == formID && len(snap.FormData) > 0 {
		seed = mergeSeed(m.seed, snap.FormData)
		restoredStep = snap.CurrentStep
	}

	m.store.InitializeForm(formID, cfg, seed)
	if restoredStep > 1 {
		m.store.SetStep(restoredStep)
	}
	return m, nil
}

func mergeSeed(defaults, restored map[string]any) map[string]any {
	merged := make(map[string]any, len(defaults)+len(restored))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range restored {
		merged[k] = v
	}
	return merged
}

// Store exposes the underlying state store for read access and subscription.
func (m *Manager) Store() *store.Store {
	return m.store
}

// Registry returns the widget registry, which may be nil.
func (m *Manager) Registry() *widgets.Registry {
	return m.registry
}

// Close tears the manager down: the pending autosave timer is released
// deterministically and any in-flight write keeps running to completion but
// no new ones are scheduled.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.pending = false
	m.mu.Unlock()
	m.cancel()
}

// UpdateField writes one field value through the store and rearms the
// autosave debounce. This is the edit path widgets should call.
func (m *Manager) UpdateField(name string, value any) {
	m.store.UpdateField(name, value)
	m.scheduleAutosave()
}

// IsLoading reports whether the initial load is in progress.
func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// IsSaving reports whether a write is in flight.
func (m *Manager) IsSaving() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saving
}

// LoadError returns the error from the most recent load attempt, nil when it
// succeeded or never ran.
func (m *Manager) LoadError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadErr
}

// Load seeds form data from the remote source. The loaded values merge over
// the seed defaults without marking the form dirty; this is the only path
// that may overwrite form data after initialisation without dirtying. A
// missing remote copy is not a failure. On failure the form data is left
// untouched and the error is both returned and retained for LoadError; the
// manager never retries on its own, calling Load again is the retry.
func (m *Manager) Load(ctx context.Context) error {
	if ctx == nil {
		return errors.New("manager: context is required")
	}
	if m.src == nil {
		return nil
	}

	m.mu.Lock()
	m.loading = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()

	formID := m.store.Snapshot().FormID

	if m.cache != nil {
		if data, ok := m.cache.Get(formID); ok {
			m.store.UpdateFormData(data)
			m.setLoadError(nil)
			return nil
		}
	}

	data, err := m.src.Load(ctx, formID)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			m.setLoadError(nil)
			return nil
		}
		m.setLoadError(err)
		return err
	}

	m.store.UpdateFormData(data)
	if m.cache != nil {
		m.cache.Set(formID, data)
	}
	m.setLoadError(nil)
	return nil
}

func (m *Manager) setLoadError(err error) {
	m.mu.Lock()
	m.loadErr = err
	m.mu.Unlock()
}

// Submit performs the explicit, user-triggered write. On success the cache is
// updated with the server copy, the success callback fires once with that
// exact data, lastSaved is stamped and any previous root error is cleared;
// the form is not reset, that is the caller's call. On failure a root-level
// error entry is attached, the error callback receives the original error and
// the form stays dirty so a retry re-sends the same data.
func (m *Manager) Submit(ctx context.Context) error {
	if ctx == nil {
		return errors.New("manager: context is required")
	}
	if m.src == nil {
		return ErrNoSource
	}

	select {
	case m.flight <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer m.releaseFlight()

	return m.doSave(ctx, true)
}

// doSave serializes the form data as it exists right now and performs one
// write. Callers must hold the flight slot.
func (m *Manager) doSave(ctx context.Context, explicit bool) error {
	snap := m.store.Snapshot()

	m.mu.Lock()
	m.saving = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.saving = false
		m.mu.Unlock()
	}()

	result, err := m.src.Save(ctx, snap.FormID, snap.FormData)
	if err != nil {
		m.store.SetFieldErrors(RootErrorKey, []string{err.Error()})
		if explicit && m.onError != nil {
			m.onError(err)
		}
		return err
	}

	if m.cache != nil {
		m.cache.Set(snap.FormID, result)
	}
	m.store.SetFieldErrors(RootErrorKey, nil)
	m.store.SetLastSaved(time.Now())
	if explicit && m.onSuccess != nil {
		m.onSuccess(result)
	}
	return nil
}

// scheduleAutosave arms (or rearms) the debounce timer. Edits inside the
// quiescence window cancel the scheduled write and restart the countdown.
func (m *Manager) scheduleAutosave() {
	if m.src == nil || m.debounce <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.debounce, m.autosaveFire)
}

// autosaveFire runs when the quiescence window elapses. If a write is already
// in flight the request coalesces: only the latest pending write survives and
// it serializes the data as of the moment it actually runs.
func (m *Manager) autosaveFire() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	select {
	case m.flight <- struct{}{}:
	default:
		m.mu.Lock()
		m.pending = true
		m.mu.Unlock()
		return
	}

	go func() {
		defer m.releaseFlight()
		_ = m.doSave(m.ctx, false)
	}()
}

// releaseFlight frees the write slot and, when a coalesced autosave is
// pending, fires it with the latest data.
func (m *Manager) releaseFlight() {
	<-m.flight

	m.mu.Lock()
	rerun := m.pending && !m.closed
	m.pending = false
	m.mu.Unlock()

	if rerun {
		m.autosaveFire()
	}
}
