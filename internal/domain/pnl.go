package domain

import (
	"strconv"
	"strings"
)

// CoercePnL converts a PnL value of any extracted shape into a float64.
// Numeric inputs pass through; strings are stripped of everything that is not
// a digit, decimal point or sign (thousands separators removed first) and then
// parsed. Anything unparsable yields 0.0: "no PnL" is a safe default, not an
// error.
func CoercePnL(value any) float64 {
	amount, ok := ParsePnL(value)
	if !ok {
		return 0
	}
	return amount
}

// ParsePnL is the strict variant of CoercePnL: the second return value reports
// whether a numeric PnL could actually be determined. Store statistics use it
// to keep undetermined trades out of the aggregates.
func ParsePnL(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		cleaned := cleanPnLString(v)
		if cleaned == "" {
			return 0, false
		}
		amount, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return amount, true
	default:
		return 0, false
	}
}

func cleanPnLString(s string) string {
	s = strings.ReplaceAll(s, ",", "")

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
