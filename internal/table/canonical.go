package table

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// TimeLayout is the canonical rendering of date and time cells.
const TimeLayout = "2006-01-02 15:04:05"

// Missing is the canonical rendering of a missing cell: SQL NULL, NaN and
// blank file cells. It is an ordinary value in fingerprints.
const Missing = "nan"

// Canonical renders a cell value as the string used in fingerprints.
// NULL becomes Missing, integral floats keep a trailing ".0" and booleans
// are rendered as True and False.
func Canonical(v any) string {
	switch x := v.(type) {
	case nil:
		return Missing
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int:
		return strconv.FormatInt(int64(x), 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return formatFloat(float64(x), 32)
	case float64:
		return formatFloat(x, 64)
	case time.Time:
		if x.Nanosecond() != 0 {
			return x.Format(TimeLayout + ".000000")
		}
		return x.Format(TimeLayout)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return Missing
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs >= 1e16 || (abs != 0 && abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, bitSize)
	}
	s := strconv.FormatFloat(f, 'f', -1, bitSize)
	if f == math.Trunc(f) {
		s += ".0"
	}
	return s
}
