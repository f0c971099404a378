package tools

import (
	"strconv"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/outcome"
)

// Args are the decoded JSON arguments of one tool call.
type Args map[string]any

func invalidArg(format string, a ...any) error {
	return outcome.Errorf(outcome.Internal, format, a...)
}

// String returns a string argument, or fallback when it is absent or not a string.
func (a Args) String(name, fallback string) string {
	if s, ok := a[name].(string); ok {
		return s
	}
	return fallback
}

// ID returns a required identifier argument. Numbers are accepted and
// formatted without exponent.
func (a Args) ID(name string) (string, error) {
	switch v := a[name].(type) {
	case string:
		if v != "" {
			return v, nil
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return "", invalidArg("%s is required", name)
}

// Object returns an object argument. A present value that is not an object is an error.
func (a Args) Object(name string, required bool) (map[string]any, error) {
	v, ok := a[name]
	if !ok || v == nil {
		if required {
			return nil, invalidArg("%s is required", name)
		}
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, invalidArg("%s must be an object", name)
	}
	return obj, nil
}

// Number returns a numeric argument when present.
func (a Args) Number(name string) (float64, bool, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return 0, false, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, false, invalidArg("%s must be a number", name)
	}
	return f, true, nil
}

// Numbers returns an array-of-numbers argument when present.
func (a Args) Numbers(name string) ([]float64, bool, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return nil, false, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, false, invalidArg("%s must be an array of numbers", name)
	}
	out := make([]float64, 0, len(arr))
	for _, e := range arr {
		f, ok := e.(float64)
		if !ok {
			return nil, false, invalidArg("%s must be an array of numbers", name)
		}
		out = append(out, f)
	}
	return out, true, nil
}
