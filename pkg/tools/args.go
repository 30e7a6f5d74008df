package tools

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/uhyunpark/hyperlicked-mcp/pkg/trader"
)

// argError is a caller mistake in the tool arguments.
type argError struct{ msg string }

func (e *argError) Error() string { return e.msg }

func (e *argError) Unwrap() error { return trader.ErrValidation }

func missing(key string) error {
	return &argError{msg: fmt.Sprintf("missing required argument '%s'", key)}
}

// Args are the decoded JSON arguments of a tool call.
type Args map[string]any

func (a Args) present(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

func (a Args) String(key string) (string, error) {
	if !a.present(key) {
		return "", missing(key)
	}
	return a.stringValue(key)
}

func (a Args) StringOr(key, def string) (string, error) {
	if !a.present(key) {
		return def, nil
	}
	return a.stringValue(key)
}

// StringPtr returns nil when the argument is absent or null.
func (a Args) StringPtr(key string) (*string, error) {
	if !a.present(key) {
		return nil, nil
	}
	s, err := a.stringValue(key)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (a Args) stringValue(key string) (string, error) {
	s, ok := a[key].(string)
	if !ok {
		return "", &argError{msg: fmt.Sprintf("%s must be a string", key)}
	}
	return s, nil
}

func (a Args) Float(key string) (float64, error) {
	if !a.present(key) {
		return 0, missing(key)
	}
	return trader.ToFloat(a[key], key)
}

func (a Args) Bool(key string, def bool) (bool, error) {
	if !a.present(key) {
		return def, nil
	}
	switch v := a[key].(type) {
	case bool:
		return v, nil
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b, nil
		}
	}
	return false, &argError{msg: fmt.Sprintf("%s must be a boolean", key)}
}

func (a Args) Int(key string, def int) (int, error) {
	if !a.present(key) {
		return def, nil
	}
	n, err := trader.ToInt(a[key], key)
	return int(n), err
}

// IntPtr distinguishes three cases: absent yields def, null yields nil
// (no limit) and anything else must be an integer.
func (a Args) IntPtr(key string, def int) (*int, error) {
	v, ok := a[key]
	if !ok {
		return &def, nil
	}
	if v == nil {
		return nil, nil
	}
	n, err := trader.ToInt(v, key)
	if err != nil {
		return nil, err
	}
	out := int(n)
	return &out, nil
}
