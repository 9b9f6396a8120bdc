package inspect

import (
	"fmt"
	"strings"
)

// Options holds inspection configuration as decoded from YAML, TOML or JSON.
type Options map[string]interface{}

// With returns a copy of o with overrides applied on top.
func (o Options) With(overrides Options) Options {
	out := make(Options, len(o)+len(overrides))
	for k, v := range o {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Int reads an integer option.
func (o Options) Int(key string, fallback int) (int, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return fallback, nil
	}
	n, ok := toInt(v)
	if !ok {
		return 0, fmt.Errorf("option %q: expected integer, got %T", key, v)
	}
	return n, nil
}

// String reads a string option.
func (o Options) String(key, fallback string) (string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return fallback, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("option %q: expected string, got %T", key, v)
	}
	return s, nil
}

// Strings reads a list option. A single string is split on commas.
func (o Options) Strings(key string, fallback []string) ([]string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return fallback, nil
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
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("option %q: expected list of strings, found %T", key, item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("option %q: expected list of strings, got %T", key, v)
}

// toInt converts the numeric types decoders produce. Floats must be whole.
func toInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case uint64:
		return int(val), true
	case float64:
		if val != float64(int(val)) {
			return 0, false
		}
		return int(val), true
	default:
		return 0, false
	}
}
