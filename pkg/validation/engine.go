// Package validation evaluates the opaque rule lists attached to form fields.
// The engine core never interprets rules itself; it hands them to an Engine
// and writes the resulting messages into runtime state.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/goliatone/go-formflow/pkg/config"
)

// Engine validates a single field value against its rule list. Violations are
// returned as user-facing messages in rule order; a nil return means the
// value passed.
type Engine interface {
	ValidateField(field config.FieldConfig, rules []config.ValidationRule, value any) []string
}

// RuleEngine is the built-in Engine. It understands the required, min, max,
// pattern and custom rule kinds; unknown kinds are skipped so configs stay
// forward compatible with richer engines.
type RuleEngine struct {
	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// NewRuleEngine constructs an engine with an empty pattern cache.
func NewRuleEngine() *RuleEngine {
	return &RuleEngine{
		patterns: make(map[string]*regexp.Regexp),
	}
}

// ValidateField evaluates every rule and collects the messages of those that
// fail. Rules never panic past this boundary: a malformed rule simply fails
// with its own message.
func (e *RuleEngine) ValidateField(field config.FieldConfig, rules []config.ValidationRule, value any) []string {
	var messages []string
	for _, rule := range rules {
		if e.ruleFails(field, rule, value) {
			messages = append(messages, rule.Message)
		}
	}
	return messages
}

func (e *RuleEngine) ruleFails(field config.FieldConfig, rule config.ValidationRule, value any) bool {
	switch rule.Kind {
	case config.RuleRequired:
		return isEmpty(value)
	case config.RuleMin:
		return failsBound(value, rule.Value, false)
	case config.RuleMax:
		return failsBound(value, rule.Value, true)
	case config.RulePattern:
		expr, ok := rule.Value.(string)
		if !ok {
			return true
		}
		text, ok := value.(string)
		if !ok || text == "" {
			// Pattern rules only constrain present string values; absence is
			// the required rule's job.
			return false
		}
		re, err := e.compile(expr)
		if err != nil {
			return true
		}
		return !re.MatchString(text)
	case config.RuleCustom:
		if rule.Predicate == nil {
			return false
		}
		return !rule.Predicate(value)
	default:
		return false
	}
}

func (e *RuleEngine) compile(expr string) (*regexp.Regexp, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if re, ok := e.patterns[expr]; ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("validation: compile pattern %q: %w", expr, err)
	}
	e.patterns[expr] = re
	return re, nil
}

func isEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case bool:
		return !typed
	case []any:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	default:
		return false
	}
}

// failsBound checks min/max rules. Strings and slices compare by length,
// numbers by value. Values of other shapes are out of the rule's reach and
// pass.
func failsBound(value, threshold any, max bool) bool {
	limit, ok := toFloat(threshold)
	if !ok {
		return true
	}

	var measured float64
	switch typed := value.(type) {
	case string:
		measured = float64(len(typed))
	case []any:
		measured = float64(len(typed))
	default:
		number, ok := toFloat(value)
		if !ok {
			return false
		}
		measured = number
	}

	if max {
		return measured > limit
	}
	return measured < limit
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case float32:
		return float64(typed), true
	case float64:
		return typed, true
	default:
		return 0, false
	}
}
