package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrTypeCoercion is returned when a value cannot be converted to the column type.
var ErrTypeCoercion = errors.New("type coercion failed")

// ParseID converts an identifier value to int64. Integral floats and numeric
// strings are accepted.
func ParseID(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case float64:
		return floatToID(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}

		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not numeric", ErrTypeCoercion, x.String())
		}

		return floatToID(f)
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not numeric", ErrTypeCoercion, x)
		}

		return floatToID(f)
	case nil:
		return 0, fmt.Errorf("%w: null identifier", ErrTypeCoercion)
	default:
		return 0, fmt.Errorf("%w: unsupported identifier type %T", ErrTypeCoercion, v)
	}
}

func floatToID(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %v is not an integer", ErrTypeCoercion, f)
	}

	return int64(f), nil
}

// ParseNumber converts a value to a finite float64. NaN and infinities are
// rejected like any other unparseable value.
func ParseNumber(v any) (float64, error) {
	var (
		f   float64
		err error
	)

	switch x := v.(type) {
	case float64:
		f = x
	case int64:
		f = float64(x)
	case int:
		f = float64(x)
	case json.Number:
		f, err = x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not numeric", ErrTypeCoercion, x.String())
		}
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not numeric", ErrTypeCoercion, x)
		}
	default:
		return 0, fmt.Errorf("%w: unsupported numeric type %T", ErrTypeCoercion, v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v is not a finite number", ErrTypeCoercion, v)
	}

	return f, nil
}

// ParseTime converts a date value to a UTC timestamp. Values without a zone
// are read as UTC.
func ParseTime(v any) (time.Time, error) {
	var s string

	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case string:
		s = strings.TrimSpace(x)
	case json.Number:
		s = x.String()
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported date type %T", ErrTypeCoercion, v)
	}

	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrTypeCoercion)
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrTypeCoercion, err)
	}

	return t.UTC(), nil
}
