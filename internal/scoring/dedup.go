package scoring

import (
	"fmt"
	"strconv"

	"github.com/openaudit/auditengine/internal/types"
)

// Deduplicate removes duplicate findings by (Tool, Check, File, Line) composite
// key, keeping the highest severity instance at the position of the first one.
func Deduplicate(findings []types.Finding) []types.Finding {
	index := make(map[string]int)
	result := make([]types.Finding, 0, len(findings))
	for _, f := range findings {
		k := f.ID()
		if i, ok := index[k]; ok {
			if f.Severity > result[i].Severity {
				result[i] = f
			}
			continue
		}
		index[k] = len(result)
		result = append(result, f)
	}
	return result
}

// Coerce turns one normalized finding into a types.Finding. Records from
// third-party adapters are read by their common key names; anything
// unrecognized becomes an info-level finding named after its value.
func Coerce(raw any) types.Finding {
	switch v := raw.(type) {
	case types.Finding:
		return v
	case *types.Finding:
		if v != nil {
			return *v
		}
	case map[string]any:
		return fromMap(v)
	}
	return types.Finding{Check: fmt.Sprint(raw), Severity: types.SeverityInfo}
}

func fromMap(m map[string]any) types.Finding {
	f := types.Finding{
		Tool:        str(m, "tool"),
		Check:       str(m, "check", "swc-id", "swc_id", "id", "title"),
		Title:       str(m, "title"),
		Confidence:  str(m, "confidence"),
		Description: str(m, "description"),
		File:        str(m, "file", "filename"),
	}
	if sev, err := types.ParseSeverity(str(m, "severity", "impact")); err == nil {
		f.Severity = sev
	}
	for _, k := range []string{"line", "lineno"} {
		if n, ok := number(m[k]); ok {
			f.Line = int(n)
			break
		}
		if s, ok := m[k].(string); ok {
			if n, err := strconv.Atoi(s); err == nil {
				f.Line = n
				break
			}
		}
	}
	return f
}

// str returns the first string value found under keys. Numbers are formatted,
// so a numeric "swc-id" still works.
func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case int, int64, float64:
			return fmt.Sprint(v)
		case fmt.Stringer:
			return v.String()
		}
	}
	return ""
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
