package manager

// Step navigation wraps the store's bounds-checked transitions. Moving past
// either end is a silent no-op, matching SetStep.

// CurrentStep returns the 1-based step the form is on.
func (m *Manager) CurrentStep() int {
	return m.store.Snapshot().CurrentStep
}

// NextStep advances one step when not already on the last one. When validate
// is true the current step's fields are validated first and the move is
// refused on failure.
func (m *Manager) NextStep(validate bool) bool {
	snap := m.store.Snapshot()
	if validate && !m.validateStep(snap.CurrentStep) {
		return false
	}
	if snap.CurrentStep >= snap.TotalSteps {
		return false
	}
	m.store.SetStep(snap.CurrentStep + 1)
	return true
}

// PreviousStep moves back one step. Going back never validates.
func (m *Manager) PreviousStep() bool {
	snap := m.store.Snapshot()
	if snap.CurrentStep <= 1 {
		return false
	}
	m.store.SetStep(snap.CurrentStep - 1)
	return true
}

// GoToStep jumps to an arbitrary step inside the bounds.
func (m *Manager) GoToStep(n int) {
	m.store.SetStep(n)
}

func (m *Manager) validateStep(stepNumber int) bool {
	snap := m.store.Snapshot()
	if snap.Config == nil || stepNumber < 1 || stepNumber > len(snap.Config.Steps) {
		return true
	}
	ok := true
	for _, field := range snap.Config.Steps[stepNumber-1].Fields {
		if !m.ValidateField(field.Name) {
			ok = false
		}
	}
	return ok
}
