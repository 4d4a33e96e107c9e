package store

import (
	"sync"
	"time"

	"github.com/goliatone/go-formflow/pkg/config"
)

// Snapshot is a copy-on-read view of the runtime state. Maps and slices are
// deep-copied so readers never observe a partial multi-field update and
// cannot mutate the store by accident.
type Snapshot struct {
	FormID      string
	CurrentStep int
	TotalSteps  int
	FormData    map[string]any
	IsDirty     bool
	Errors      map[string][]string
	Config      *config.FormConfig
	LastSaved   *time.Time
}

// Listener receives a snapshot after every store mutation.
type Listener func(Snapshot)

// Store is the multi-step form state machine. All mutation goes through the
// documented operations so the dirty and step-bounds invariants hold; state is
// guarded by a single mutex and exposed only through copied snapshots.
type Store struct {
	mu sync.Mutex

	formID      string
	currentStep int
	totalSteps  int
	formData    map[string]any
	isDirty     bool
	errors      map[string][]string
	config      *config.FormConfig
	lastSaved   *time.Time

	storage    Storage
	listeners  map[int]Listener
	nextListen int
}

// StoreOption customises store construction.
type StoreOption func(*Store)

// WithStorage attaches a session storage backend. The persisted subset
// (formId, formData, currentStep, lastSaved) is written on every mutation that
// touches one of those fields; config and errors are never persisted.
func WithStorage(storage Storage) StoreOption {
	return func(s *Store) {
		s.storage = storage
	}
}

// New constructs an empty store. State starts at the zero form: no id, no
// config, one phantom step so the step invariant holds before initialisation.
func New(options ...StoreOption) *Store {
	s := &Store{
		currentStep: 1,
		totalSteps:  1,
		formData:    make(map[string]any),
		errors:      make(map[string][]string),
		listeners:   make(map[int]Listener),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Subscribe registers a listener invoked synchronously after every mutation,
// outside the store lock. The returned function cancels the subscription.
func (s *Store) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextListen
	s.nextListen++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		FormID:      s.formID,
		CurrentStep: s.currentStep,
		TotalSteps:  s.totalSteps,
		FormData:    cloneValues(s.formData),
		IsDirty:     s.isDirty,
		Errors:      cloneErrors(s.errors),
		Config:      s.config,
		LastSaved:   s.lastSaved,
	}
}

// InitializeForm replaces the whole state for a new form. This is the only
// operation allowed to change the step count. The config must already have
// passed schema validation; seed data populates formData without dirtying.
func (s *Store) InitializeForm(formID string, cfg config.FormConfig, seed map[string]any) {
	s.mu.Lock()
	s.formID = formID
	s.config = &cfg
	s.formData = cloneValues(seed)
	if s.formData == nil {
		s.formData = make(map[string]any)
	}
	s.totalSteps = len(cfg.Steps)
	if s.totalSteps < 1 {
		s.totalSteps = 1
	}
	s.currentStep = 1
	s.isDirty = false
	s.errors = make(map[string][]string)
	s.finishMutation(true)
}

// UpdateField writes a single field value, merging into the existing data,
// and marks the form dirty.
func (s *Store) UpdateField(name string, value any) {
	s.mu.Lock()
	s.formData[name] = value
	s.isDirty = true
	s.finishMutation(true)
}

// UpdateFormData shallow-merges partial data into formData, preserving
// untouched keys. Unlike UpdateField it leaves the dirty flag alone; it
// exists for bulk hydration after a remote load.
func (s *Store) UpdateFormData(partial map[string]any) {
	s.mu.Lock()
	for k, v := range partial {
		s.formData[k] = v
	}
	s.finishMutation(true)
}

// SetStep moves to step n when 1 <= n <= totalSteps. Out-of-range values are
// rejected silently: no clamping to a boundary, no error.
func (s *Store) SetStep(n int) {
	s.mu.Lock()
	if n < 1 || n > s.totalSteps {
		s.mu.Unlock()
		return
	}
	s.currentStep = n
	s.finishMutation(true)
}

// MarkDirty sets the dirty flag explicitly.
func (s *Store) MarkDirty(dirty bool) {
	s.mu.Lock()
	s.isDirty = dirty
	s.finishMutation(false)
}

// SetErrors replaces the error map wholesale.
func (s *Store) SetErrors(errs map[string][]string) {
	s.mu.Lock()
	s.errors = cloneErrors(errs)
	if s.errors == nil {
		s.errors = make(map[string][]string)
	}
	s.finishMutation(false)
}

// SetFieldErrors replaces the error list for one field. An empty list clears
// the entry.
func (s *Store) SetFieldErrors(name string, messages []string) {
	s.mu.Lock()
	if len(messages) == 0 {
		delete(s.errors, name)
	} else {
		s.errors[name] = append([]string(nil), messages...)
	}
	s.finishMutation(false)
}

// ResetForm clears edit state (formData, errors, dirty flag) and returns to
// step one. Form identity is preserved: formId, config and totalSteps are
// untouched.
func (s *Store) ResetForm() {
	s.mu.Lock()
	s.formData = make(map[string]any)
	s.errors = make(map[string][]string)
	s.isDirty = false
	s.currentStep = 1
	s.finishMutation(true)
}

// SetLastSaved records the autosave/submit timestamp.
func (s *Store) SetLastSaved(ts time.Time) {
	s.mu.Lock()
	s.lastSaved = &ts
	s.finishMutation(true)
}

// finishMutation persists (when the mutation touched a persisted field),
// snapshots, releases the lock and notifies listeners. Callers must hold the
// lock on entry.
func (s *Store) finishMutation(persist bool) {
	if persist {
		s.persistLocked()
	}
	snap := s.snapshotLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func cloneValues(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = deepCopy(v)
	}
	return out
}

func cloneErrors(src map[string][]string) map[string][]string {
	if src == nil {
		return nil
	}
	out := make(map[string][]string, len(src))
	for k, v := range src {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	default:
		return typed
	}
}
