package visux

import (
	"strings"

	"github.com/ghetzel/go-stockutil/stringutil"
	"github.com/pkg/errors"
)

// isBlank reports whether a cell holds no value (missing, null or an empty string).
func isBlank(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ``
	default:
		return false
	}
}

func toFloat(feature string, index int, value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case bool:
		if v {
			return 1, nil
		}

		return 0, nil
	default:
		if f, err := stringutil.ConvertToFloat(value); err == nil {
			return f, nil
		} else {
			return 0, errors.Wrapf(ErrValidation, "feature %q value %d: %v is not numeric", feature, index+1, value)
		}
	}
}

// toFloats converts a column of loosely typed values (numbers, numeric
// strings, bools) to float64. Blank cells are skipped, so the output may be
// shorter than the input.
func toFloats(feature string, values []interface{}) ([]float64, error) {
	output := make([]float64, 0, len(values))

	for i, value := range values {
		if isBlank(value) {
			continue
		}

		if f, err := toFloat(feature, i, value); err == nil {
			output = append(output, f)
		} else {
			return nil, err
		}
	}

	return output, nil
}

// toFloatPairs converts two columns row by row, dropping every row where
// either cell is blank so both outputs stay the same length.
func toFloatPairs(xFeature string, x []interface{}, yFeature string, y []interface{}) ([]float64, []float64, error) {
	n := len(x)

	if len(y) < n {
		n = len(y)
	}

	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)

	for i := 0; i < n; i++ {
		if isBlank(x[i]) || isBlank(y[i]) {
			continue
		}

		if xv, err := toFloat(xFeature, i, x[i]); err == nil {
			if yv, err := toFloat(yFeature, i, y[i]); err == nil {
				xs = append(xs, xv)
				ys = append(ys, yv)
			} else {
				return nil, nil, err
			}
		} else {
			return nil, nil, err
		}
	}

	return xs, ys, nil
}
