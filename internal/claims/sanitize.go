package claims

import (
	"strconv"
	"strings"

	"github.com/claimsight/claims-pipeline/constants"
)

// coerceString turns a loosely-typed candidate value into a usable string,
// falling back to the unknown sentinel. Numbers are rendered (a model often
// returns the year as a number), blanks and nulls become unknown, and
// anything structurally odd becomes unknown rather than leaking through.
func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.EqualFold(s, "null") {
			return constants.Unknown
		}
		return s
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return constants.Unknown
	}
}

// coerceSeverity maps a candidate value onto the severity enum; out-of-set
// values are coerced to unknown so downstream consumers never see free text
// where an enum is expected.
func coerceSeverity(v any) string {
	s, ok := v.(string)
	if !ok {
		return constants.Unknown
	}
	sev, _ := constants.CanonicalizeSeverity(s)
	return string(sev)
}

// subMap fetches a nested object; a missing or non-object value yields an
// empty map so field-level repair can proceed.
func subMap(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}

// fieldOrUnknown reads one string field with coercion applied.
func fieldOrUnknown(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return constants.Unknown
	}
	return coerceString(v)
}
