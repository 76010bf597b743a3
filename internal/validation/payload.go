// Package validation holds the ordered, side-effect free checks applied to
// request payloads before anything reaches storage. Each check returns a
// *model.Error naming the offending field; the first failure wins.
package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// Payload is the decoded "data" object of a request body.
type Payload map[string]any

// Body extracts the "data" object. Anything that is not a JSON object is
// reported as a missing body.
func Body(data any) (Payload, error) {
	m, ok := data.(map[string]any)
	if !ok || m == nil {
		return nil, model.Validation(model.CodeMissingBody, "data", "Body must include a request body data object")
	}
	return Payload(m), nil
}

// present reports whether key holds a non-empty value.
func (p Payload) present(key string) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// text returns the trimmed string at key and whether it is a string.
func (p Payload) text(key string) (string, bool) {
	s, ok := p[key].(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// whole returns the value at key as an int when it is a JSON number with no
// fractional part.
func (p Payload) whole(key string) (int, bool) {
	switch n := p[key].(type) {
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}

func missingField(field string) error {
	return model.Validation(model.CodeMissingField, field, fmt.Sprintf("Field required: '%s'", field))
}

func invalidField(field, reason string) error {
	return model.Validation(model.CodeInvalidField, field, fmt.Sprintf("'%s' field %s", field, reason))
}

// run applies rules in order and stops at the first failure.
func run[T any](target *T, rules ...func(*T) error) error {
	for _, rule := range rules {
		if err := rule(target); err != nil {
			return err
		}
	}
	return nil
}
