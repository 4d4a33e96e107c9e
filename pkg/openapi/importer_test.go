package openapi

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/config"
)

const registrationDoc = `
openapi: 3.0.3
info:
  title: Registration API
  version: 1.0.0
paths:
  /registrations:
    post:
      operationId: createRegistration
      summary: Register an attendee
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [full_name]
              properties:
                full_name:
                  type: string
                  minLength: 2
                  maxLength: 80
                phone:
                  type: string
                  format: tel
                ticket:
                  type: string
                  enum: [standard, vip]
                newsletter:
                  type: boolean
                guests:
                  type: array
                  x-formflow-step: 2
                  items:
                    type: object
                    properties:
                      name:
                        type: string
                      badges:
                        type: array
                        items:
                          type: string
`

func TestImport_BuildsFields(t *testing.T) {
	cfg, err := NewImporter().Import(context.Background(), []byte(registrationDoc), "createRegistration")
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if cfg.ID != "createRegistration" || cfg.Title != "Register an attendee" {
		t.Fatalf("header = %q / %q", cfg.ID, cfg.Title)
	}
	if len(cfg.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(cfg.Steps))
	}

	fullName, ok := cfg.Field("full_name")
	if !ok {
		t.Fatal("full_name missing")
	}
	if fullName.Type != config.FieldTypeText || fullName.Label != "Full Name" {
		t.Fatalf("full_name = %+v", fullName)
	}
	wantRules := []config.ValidationRule{
		{Kind: config.RuleRequired, Message: "Full Name is required"},
		{Kind: config.RuleMin, Message: "Full Name must be at least 2 characters", Value: 2},
		{Kind: config.RuleMax, Message: "Full Name must be at most 80 characters", Value: 80},
	}
	if diff := cmp.Diff(wantRules, fullName.Validation); diff != "" {
		t.Fatalf("full_name rules mismatch (-want +got):\n%s", diff)
	}

	phone, _ := cfg.Field("phone")
	if phone.Type != config.FieldTypeTel {
		t.Fatalf("phone type = %q", phone.Type)
	}

	ticket, _ := cfg.Field("ticket")
	if ticket.Type != config.FieldTypeSelect || len(ticket.Options) != 2 {
		t.Fatalf("ticket = %+v", ticket)
	}

	newsletter, _ := cfg.Field("newsletter")
	if newsletter.Type != config.FieldTypeSwitch {
		t.Fatalf("newsletter type = %q", newsletter.Type)
	}
}

func TestImport_StepExtensionGroupsFields(t *testing.T) {
	cfg, err := NewImporter().Import(context.Background(), []byte(registrationDoc), "createRegistration")
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	// guests is the only property tagged for step two.
	second := cfg.Steps[1]
	if len(second.Fields) != 1 || second.Fields[0].Name != "guests" {
		t.Fatalf("step 2 fields = %+v", second.Fields)
	}

	guests := second.Fields[0]
	if guests.Type != config.FieldTypeArray {
		t.Fatalf("guests type = %q", guests.Type)
	}
	// The nested badges array cannot be represented and is flattened away.
	if len(guests.Item) != 1 || guests.Item[0].Name != "name" {
		t.Fatalf("guests item template = %+v", guests.Item)
	}
}

func TestImport_DerivedConfigValidates(t *testing.T) {
	cfg, err := NewImporter().Import(context.Background(), []byte(registrationDoc), "createRegistration")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if iss := config.Validate(cfg); len(iss) > 0 {
		t.Fatalf("derived config invalid: %v", iss)
	}
}

func TestImport_ItemPropertyMayShadowTopLevelProperty(t *testing.T) {
	const doc = `
openapi: 3.0.3
info:
  title: t
  version: 1.0.0
paths:
  /teams:
    post:
      operationId: createTeam
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                name:
                  type: string
                members:
                  type: array
                  items:
                    type: object
                    properties:
                      name:
                        type: string
`
	cfg, err := NewImporter().Import(context.Background(), []byte(doc), "createTeam")
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	members, ok := cfg.Field("members")
	if !ok || members.Type != config.FieldTypeArray {
		t.Fatalf("members = %+v, %v", members, ok)
	}
	if len(members.Item) != 1 || members.Item[0].Name != "name" {
		t.Fatalf("item template = %+v", members.Item)
	}
}

func TestImport_UnknownOperation(t *testing.T) {
	_, err := NewImporter().Import(context.Background(), []byte(registrationDoc), "nope")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v", err)
	}
}

func TestImport_NoRequestBody(t *testing.T) {
	const doc = `
openapi: 3.0.3
info:
  title: t
  version: 1.0.0
paths:
  /things:
    get:
      operationId: listThings
      responses:
        "200":
          description: ok
`
	_, err := NewImporter().Import(context.Background(), []byte(doc), "listThings")
	if err == nil || !strings.Contains(err.Error(), "request body") {
		t.Fatalf("err = %v", err)
	}
}

func TestImport_LabelFromName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"full_name", "Full Name"},
		{"contact-email", "Contact Email"},
		{"plain", "Plain"},
	}
	for _, tc := range tests {
		if got := labelFromName(tc.in); got != tc.want {
			t.Errorf("labelFromName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
