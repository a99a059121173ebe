package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ToString converts a scanned or decoded value to its cell text.
// Null-equivalents (nil, NaN, infinities) become the empty string so they never
// reach a key. Floats use the shortest plain representation ("1000000", not "1e+06").
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case float64:
		return formatFloat(v, 64)
	case float32:
		return formatFloat(float64(v), 32)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(time.DateOnly)
		}
		return v.Format(time.DateTime)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatFloat(f float64, bits int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

// IsYes reports whether s is "yes", ignoring case and surrounding whitespace.
func IsYes(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "yes")
}
