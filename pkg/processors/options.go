package processors

import (
	"fmt"
	"strings"
)

// Options are the type-specific settings of a processor declaration.
type Options map[string]interface{}

// String returns the string option key. A missing key is an error when
// required is set.
func (o Options) String(key string, required bool) (string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("option %q is required", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("option %q must be a string, got %T", key, v)
	}
	return s, nil
}

// Strings returns a list option. A single string is split on commas.
func (o Options) Strings(key string, required bool) ([]string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		if required {
			return nil, fmt.Errorf("option %q is required", key)
		}
		return nil, nil
	}

	switch val := v.(type) {
	case []string:
		return val, nil
	case string:
		var out []string
		for _, s := range strings.Split(val, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case []interface{}:
		out := make([]string, 0, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("option %q[%d] must be a string, got %T", key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("option %q must be a list of strings, got %T", key, v)
	}
}

// Bool returns a boolean option, false when missing.
func (o Options) Bool(key string) (bool, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return false, nil
	}
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(val) {
		case "true", "yes", "1":
			return true, nil
		case "false", "no", "0", "":
			return false, nil
		}
	}
	return false, fmt.Errorf("option %q must be a boolean, got %v", key, v)
}
