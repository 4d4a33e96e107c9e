package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleYAML = `
id: contact
title: Contact us
steps:
  - id: 1
    title: About you
    fields:
      - type: text
        name: name
        label: Full name
        validation:
          - kind: required
            message: Name is required
      - type: select
        name: topic
        label: Topic
        options:
          - label: Support
            value: support
          - label: Sales
            value: sales
submission:
  buttonText: Send
`

const sampleJSON = `{
  "id": "contact",
  "title": "Contact us",
  "steps": [
    {
      "id": 1,
      "title": "About you",
      "fields": [
        {"type": "text", "name": "name", "label": "Full name"}
      ]
    }
  ]
}`

func TestParseYAML(t *testing.T) {
	cfg, err := ParseYAML([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("parse yaml: %v", err)
	}
	if cfg.ID != "contact" || len(cfg.Steps) != 1 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Submission == nil || cfg.Submission.ButtonText != "Send" {
		t.Fatalf("submission not decoded: %+v", cfg.Submission)
	}

	wantOptions := []Option{
		{Label: "Support", Value: "support"},
		{Label: "Sales", Value: "sales"},
	}
	field, ok := cfg.Field("topic")
	if !ok {
		t.Fatal("topic field missing")
	}
	if diff := cmp.Diff(wantOptions, field.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestParseJSON(t *testing.T) {
	cfg, err := ParseJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("parse json: %v", err)
	}
	if cfg.Title != "Contact us" {
		t.Fatalf("unexpected title %q", cfg.Title)
	}
}

func TestParseJSON_InvalidConfigSurfacesIssues(t *testing.T) {
	_, err := ParseJSON([]byte(`{"id": "x", "title": "X", "steps": []}`))
	if err == nil {
		t.Fatal("expected validation failure")
	}
	var iss Issues
	if !errors.As(err, &iss) {
		t.Fatalf("expected Issues in error chain, got %v", err)
	}
	if !hasIssueAt(iss, "steps") {
		t.Fatalf("expected steps issue, got %v", iss)
	}
}

func TestLoadFile_DispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "form.yaml")
	if err := os.WriteFile(yamlPath, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if _, err := LoadFile(yamlPath); err != nil {
		t.Fatalf("load yaml: %v", err)
	}

	txtPath := filepath.Join(dir, "form.txt")
	if err := os.WriteFile(txtPath, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write txt: %v", err)
	}
	if _, err := LoadFile(txtPath); err == nil {
		t.Fatal("expected unsupported extension error")
	}
}
