package store

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// StorageKey is the fixed namespace key the store persists under. One entry
// holds the whole persisted subset as JSON.
const StorageKey = "formflow:state"

// Storage is a string-keyed byte store scoped to the surrounding session
// (the sessionStorage analog). Implementations must be safe for use from the
// goroutine driving the store.
type Storage interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Delete(key string) error
}

// persistedState is the durable subset of the runtime state. Config is
// re-supplied by the caller on every start and errors are derived, so neither
// is persisted.
type persistedState struct {
	FormID      string         `json:"formId"`
	FormData    map[string]any `json:"formData"`
	CurrentStep int            `json:"currentStep"`
	LastSaved   *time.Time     `json:"lastSaved,omitempty"`
}

// persistLocked writes the persisted subset. Serialization failures are
// swallowed: persistence is best effort and must never fail a mutation.
func (s *Store) persistLocked() {
	if s.storage == nil {
		return
	}
	payload, err := json.Marshal(persistedState{
		FormID:      s.formID,
		FormData:    s.formData,
		CurrentStep: s.currentStep,
		LastSaved:   s.lastSaved,
	})
	if err != nil {
		return
	}
	_ = s.storage.Set(StorageKey, payload)
}

// Rehydrate restores the persisted subset from session storage. It is meant
// to run once at process start, before InitializeForm re-supplies the config.
// The restored step is kept even though totalSteps is still unknown; the next
// InitializeForm resets it, and SetStep keeps enforcing bounds meanwhile.
func (s *Store) Rehydrate() error {
	if s.storage == nil {
		return nil
	}
	payload, ok := s.storage.Get(StorageKey)
	if !ok {
		return nil
	}
	var state persistedState
	if err := json.Unmarshal(payload, &state); err != nil {
		return fmt.Errorf("store: rehydrate: %w", err)
	}

	s.mu.Lock()
	s.formID = state.FormID
	s.formData = state.FormData
	if s.formData == nil {
		s.formData = make(map[string]any)
	}
	if state.CurrentStep >= 1 {
		s.currentStep = state.CurrentStep
		if state.CurrentStep > s.totalSteps {
			s.totalSteps = state.CurrentStep
		}
	}
	s.lastSaved = state.LastSaved
	s.finishMutation(false)
	return nil
}

// ClearStorage drops the persisted entry, ending the session scope early.
func (s *Store) ClearStorage() error {
	if s.storage == nil {
		return nil
	}
	return s.storage.Delete(StorageKey)
}
