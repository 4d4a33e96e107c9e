package manager

import (
	"testing"
)

func newStepManager(t *testing.T) *Manager {
	t.Helper()
	m, err := New("profile", managerConfig(), WithAutosaveInterval(0))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func TestNextStep_ValidationGate(t *testing.T) {
	m := newStepManager(t)

	// name is required and empty, so a validated advance is refused.
	if m.NextStep(true) {
		t.Fatal("advance should be refused while the step is invalid")
	}
	if m.CurrentStep() != 1 {
		t.Fatalf("current step = %d", m.CurrentStep())
	}
	if errs := m.Store().Snapshot().Errors["name"]; len(errs) != 1 || errs[0] != "name is required" {
		t.Fatalf("name errors = %v", errs)
	}

	m.UpdateField("name", "Ada")
	if !m.NextStep(true) {
		t.Fatal("advance should succeed once the step validates")
	}
	if m.CurrentStep() != 2 {
		t.Fatalf("current step = %d", m.CurrentStep())
	}
	if errs := m.Store().Snapshot().Errors["name"]; len(errs) != 0 {
		t.Fatalf("stale errors after revalidation: %v", errs)
	}
}

func TestNextStep_Unvalidated(t *testing.T) {
	m := newStepManager(t)

	if !m.NextStep(false) {
		t.Fatal("unvalidated advance should succeed")
	}
	if m.CurrentStep() != 2 {
		t.Fatalf("current step = %d", m.CurrentStep())
	}
	// Already on the last step.
	if m.NextStep(false) {
		t.Fatal("advance past the last step should be refused")
	}
	if m.CurrentStep() != 2 {
		t.Fatalf("current step = %d", m.CurrentStep())
	}
}

func TestPreviousStep(t *testing.T) {
	m := newStepManager(t)

	if m.PreviousStep() {
		t.Fatal("moving back from the first step should be refused")
	}
	m.NextStep(false)

	// Going back never validates, even with required fields unfilled.
	if !m.PreviousStep() {
		t.Fatal("moving back should succeed")
	}
	if m.CurrentStep() != 1 {
		t.Fatalf("current step = %d", m.CurrentStep())
	}
}

func TestGoToStep_Bounds(t *testing.T) {
	m := newStepManager(t)

	m.GoToStep(2)
	if m.CurrentStep() != 2 {
		t.Fatalf("current step = %d", m.CurrentStep())
	}
	m.GoToStep(0)
	if m.CurrentStep() != 2 {
		t.Fatal("out of range jump should leave the step unchanged")
	}
	m.GoToStep(5)
	if m.CurrentStep() != 2 {
		t.Fatal("out of range jump should leave the step unchanged")
	}
}
