package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formflow/pkg/config"
	"github.com/goliatone/go-formflow/pkg/manager"
)

// WalkerOption customises the walker.
type WalkerOption func(*Walker)

// WithDriver swaps the prompt driver, e.g. for a scripted test driver.
func WithDriver(driver PromptDriver) WalkerOption {
	return func(w *Walker) {
		if driver != nil {
			w.driver = driver
		}
	}
}

// Walker prompts through every step of a form, field by field, and submits at
// the end. Step bounds and validation stay with the manager; the walker only
// translates fields into prompts.
type Walker struct {
	mgr    *manager.Manager
	driver PromptDriver
}

// NewWalker constructs a walker over the given manager.
func NewWalker(mgr *manager.Manager, options ...WalkerOption) (*Walker, error) {
	if mgr == nil {
		return nil, errors.New("tui: manager is required")
	}
	w := &Walker{
		mgr:    mgr,
		driver: NewSurveyDriver(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}
	return w, nil
}

// Run walks the form from the current step to the last, prompting for each
// field, then asks for confirmation and submits. Validation failures keep the
// user on the current step and re-prompt.
func (w *Walker) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("tui: context is required")
	}

	for {
		snap := w.mgr.Store().Snapshot()
		if snap.Config == nil {
			return errors.New("tui: form is not initialised")
		}
		step := snap.Config.Steps[snap.CurrentStep-1]

		header := fmt.Sprintf("-- %s (step %d of %d) --", step.Title, snap.CurrentStep, snap.TotalSteps)
		if err := w.driver.Info(ctx, header); err != nil {
			return err
		}

		for _, field := range step.Fields {
			if err := w.promptField(ctx, field); err != nil {
				return err
			}
		}

		if snap.CurrentStep >= snap.TotalSteps {
			// The last step has no forward move to gate on, so validate it
			// here before offering the submit confirmation.
			if !w.validateFields(step) {
				if err := w.reportErrors(ctx, step); err != nil {
					return err
				}
				continue
			}
			break
		}
		if !w.mgr.NextStep(true) {
			if err := w.reportErrors(ctx, step); err != nil {
				return err
			}
			continue
		}
	}

	return w.confirmAndSubmit(ctx)
}

func (w *Walker) validateFields(step config.StepConfig) bool {
	ok := true
	for _, field := range step.Fields {
		if !w.mgr.ValidateField(field.Name) {
			ok = false
		}
	}
	return ok
}

func (w *Walker) promptField(ctx context.Context, field config.FieldConfig) error {
	snap := w.mgr.Store().Snapshot()
	current := snap.FormData[field.Name]

	switch field.Type {
	case config.FieldTypeSelect, config.FieldTypeRadio:
		labels := make([]string, len(field.Options))
		defaultIndex := 0
		for i, opt := range field.Options {
			labels[i] = opt.Label
			if current != nil && fmt.Sprintf("%v", opt.Value) == fmt.Sprintf("%v", current) {
				defaultIndex = i
			}
		}
		choice, err := w.driver.Select(ctx, SelectConfig{
			Message:      field.Label,
			Options:      labels,
			DefaultIndex: defaultIndex,
			Help:         field.Description,
		})
		if err != nil {
			return err
		}
		w.mgr.UpdateField(field.Name, field.Options[choice].Value)

	case config.FieldTypeCheckbox, config.FieldTypeSwitch:
		on, _ := current.(bool)
		answer, err := w.driver.Confirm(ctx, ConfirmConfig{
			Message: field.Label,
			Default: on,
			Help:    field.Description,
		})
		if err != nil {
			return err
		}
		w.mgr.UpdateField(field.Name, answer)

	case config.FieldTypeArray:
		return w.promptArray(ctx, field)

	default:
		text, _ := current.(string)
		answer, err := w.driver.Input(ctx, InputConfig{
			Message:     field.Label,
			Default:     text,
			Help:        field.Description,
			Placeholder: field.Placeholder,
		})
		if err != nil {
			return err
		}
		w.mgr.UpdateField(field.Name, answer)
	}
	return nil
}

func (w *Walker) promptArray(ctx context.Context, field config.FieldConfig) error {
	for {
		count := len(w.mgr.ArrayItems(field.Name))
		more, err := w.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("%s: add an entry? (%d so far)", field.Label, count),
			Default: count == 0,
			Help:    field.Description,
		})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}

		record := make(map[string]any, len(field.Item))
		for _, sub := range field.Item {
			answer, err := w.driver.Input(ctx, InputConfig{
				Message: fmt.Sprintf("%s › %s", field.Label, sub.Label),
				Help:    sub.Description,
			})
			if err != nil {
				return err
			}
			record[sub.Name] = answer
		}
		w.mgr.AppendItem(field.Name, record)
	}
}

func (w *Walker) confirmAndSubmit(ctx context.Context) error {
	snap := w.mgr.Store().Snapshot()
	label := "Submit"
	if snap.Config.Submission != nil && snap.Config.Submission.ButtonText != "" {
		label = snap.Config.Submission.ButtonText
	}

	ok, err := w.driver.Confirm(ctx, ConfirmConfig{Message: label + "?", Default: true})
	if err != nil {
		return err
	}
	if !ok {
		return ErrAborted
	}
	return w.mgr.Submit(ctx)
}

func (w *Walker) reportErrors(ctx context.Context, step config.StepConfig) error {
	snap := w.mgr.Store().Snapshot()
	var lines []string
	for _, field := range step.Fields {
		for _, message := range snap.Errors[field.Name] {
			lines = append(lines, fmt.Sprintf("%s: %s", field.Label, message))
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return w.driver.Info(ctx, strings.Join(lines, "\n"))
}
