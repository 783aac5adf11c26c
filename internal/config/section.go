package config

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Section is one tool's sub-configuration. Its contents are opaque to the
// engine; adapters read it through the typed accessors or Decode.
type Section map[string]any

// String returns the string value for key, or def when absent or not a string.
func (s Section) String(key, def string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return def
}

// Strings returns a list of strings for key. A single string is returned as a
// one-element list; non-string list elements are formatted with %v.
func (s Section) Strings(key string) []string {
	switch v := s[key].(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if str, ok := e.(string); ok {
				out = append(out, str)
			} else {
				out = append(out, fmt.Sprint(e))
			}
		}
		return out
	case []string:
		return append([]string(nil), v...)
	}
	return nil
}

// Bool returns the boolean value for key, or def.
func (s Section) Bool(key string, def bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return def
}

// Int returns the integer value for key, or def. Numeric strings are accepted.
func (s Section) Int(key string, def int) int {
	switch v := s[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Duration parses key as a Go duration string ("90s", "5m"). A bare number is
// taken as seconds. A missing key yields zero and no error.
func (s Section) Duration(key string) (time.Duration, error) {
	switch v := s[key].(type) {
	case nil:
		return 0, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return d, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("%s: expected duration, got %T", key, v)
	}
}

// Map returns the nested section for key, or an empty section.
func (s Section) Map(key string) Section {
	if v, ok := s[key].(map[string]any); ok {
		return Section(v)
	}
	return Section{}
}

// Decode copies the section into out, which should be a pointer to a struct
// with yaml tags. Unknown keys are rejected so typos surface at construction.
func (s Section) Decode(out any) error {
	if len(s) == 0 {
		return nil
	}
	data, err := yaml.Marshal(map[string]any(s))
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}
