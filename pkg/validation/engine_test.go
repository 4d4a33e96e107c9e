package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/config"
)

func TestRuleEngine_ValidateField(t *testing.T) {
	field := config.FieldConfig{Name: "f", Label: "Field", Type: config.FieldTypeText}

	tests := []struct {
		name  string
		rules []config.ValidationRule
		value any
		want  []string
	}{
		{
			name:  "required rejects nil",
			rules: []config.ValidationRule{{Kind: config.RuleRequired, Message: "needed"}},
			value: nil,
			want:  []string{"needed"},
		},
		{
			name:  "required rejects whitespace string",
			rules: []config.ValidationRule{{Kind: config.RuleRequired, Message: "needed"}},
			value: "   ",
			want:  []string{"needed"},
		},
		{
			name:  "required rejects false",
			rules: []config.ValidationRule{{Kind: config.RuleRequired, Message: "accept the terms"}},
			value: false,
			want:  []string{"accept the terms"},
		},
		{
			name:  "required rejects empty slice",
			rules: []config.ValidationRule{{Kind: config.RuleRequired, Message: "needed"}},
			value: []any{},
			want:  []string{"needed"},
		},
		{
			name:  "required passes zero number",
			rules: []config.ValidationRule{{Kind: config.RuleRequired, Message: "needed"}},
			value: 0,
			want:  nil,
		},
		{
			name:  "min measures string length",
			rules: []config.ValidationRule{{Kind: config.RuleMin, Value: 3, Message: "too short"}},
			value: "ab",
			want:  []string{"too short"},
		},
		{
			name:  "max measures slice length",
			rules: []config.ValidationRule{{Kind: config.RuleMax, Value: 2, Message: "too many"}},
			value: []any{"a", "b", "c"},
			want:  []string{"too many"},
		},
		{
			name:  "min compares numbers by value",
			rules: []config.ValidationRule{{Kind: config.RuleMin, Value: 18, Message: "too young"}},
			value: 17,
			want:  []string{"too young"},
		},
		{
			name:  "bound passes unmeasurable value",
			rules: []config.ValidationRule{{Kind: config.RuleMin, Value: 3, Message: "too short"}},
			value: map[string]any{"a": 1},
			want:  nil,
		},
		{
			name:  "malformed bound threshold fails with its message",
			rules: []config.ValidationRule{{Kind: config.RuleMin, Value: "three", Message: "broken rule"}},
			value: "abcdef",
			want:  []string{"broken rule"},
		},
		{
			name:  "pattern rejects mismatch",
			rules: []config.ValidationRule{{Kind: config.RulePattern, Value: `^[0-9]+$`, Message: "digits only"}},
			value: "12a",
			want:  []string{"digits only"},
		},
		{
			name:  "pattern passes match",
			rules: []config.ValidationRule{{Kind: config.RulePattern, Value: `^[0-9]+$`, Message: "digits only"}},
			value: "1234",
			want:  nil,
		},
		{
			name:  "pattern ignores absent value",
			rules: []config.ValidationRule{{Kind: config.RulePattern, Value: `^[0-9]+$`, Message: "digits only"}},
			value: "",
			want:  nil,
		},
		{
			name:  "invalid pattern fails with its message",
			rules: []config.ValidationRule{{Kind: config.RulePattern, Value: `([`, Message: "broken"}},
			value: "anything",
			want:  []string{"broken"},
		},
		{
			name: "custom predicate decides",
			rules: []config.ValidationRule{{
				Kind:      config.RuleCustom,
				Message:   "must be even",
				Predicate: func(v any) bool { n, _ := v.(int); return n%2 == 0 },
			}},
			value: 3,
			want:  []string{"must be even"},
		},
		{
			name:  "custom without predicate passes",
			rules: []config.ValidationRule{{Kind: config.RuleCustom, Message: "unused"}},
			value: "x",
			want:  nil,
		},
		{
			name:  "unknown kind is skipped",
			rules: []config.ValidationRule{{Kind: "future", Message: "unused"}},
			value: nil,
			want:  nil,
		},
		{
			name: "messages preserve rule order",
			rules: []config.ValidationRule{
				{Kind: config.RuleMin, Value: 10, Message: "too short"},
				{Kind: config.RulePattern, Value: `^[a-z]+$`, Message: "lowercase only"},
			},
			value: "Abc",
			want:  []string{"too short", "lowercase only"},
		},
	}

	engine := NewRuleEngine()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := engine.ValidateField(field, tc.rules, tc.value)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("messages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRuleEngine_PatternCacheReuse(t *testing.T) {
	engine := NewRuleEngine()
	field := config.FieldConfig{Name: "f", Type: config.FieldTypeText}
	rules := []config.ValidationRule{{Kind: config.RulePattern, Value: `^x+$`, Message: "bad"}}

	for i := 0; i < 3; i++ {
		if got := engine.ValidateField(field, rules, "xxx"); got != nil {
			t.Fatalf("unexpected messages: %v", got)
		}
	}
	if len(engine.patterns) != 1 {
		t.Fatalf("pattern cache holds %d entries, want 1", len(engine.patterns))
	}
}
