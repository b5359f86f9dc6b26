package nodes

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// addNumbers keeps integer results integral and falls back to float64,
// including when the integer sum would overflow.
func addNumbers(a, b any) (any, error) {
	ai, aInt := toInt(a)
	bi, bInt := toInt(b)
	if aInt && bInt {
		sum := ai + bi
		if (bi > 0 && sum >= ai) || (bi <= 0 && sum <= ai) {
			return sum, nil
		}
	}

	af, err := toFloat(a)
	if err != nil {
		return nil, fmt.Errorf("operand a: %w", err)
	}
	bf, err := toFloat(b)
	if err != nil {
		return nil, fmt.Errorf("operand b: %w", err)
	}
	return af + bf, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case nil:
		return 0, true
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		if uint64(n) > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}

func toFloat(v any) (float64, error) {
	if i, ok := toInt(v); ok {
		return float64(i), nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", n)
		}
		return f, nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%T is not a number", v)
}

// truthy follows loose scripting semantics for branch conditions
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if f, err := toFloat(v); err == nil {
		return f != 0
	}
	return true
}
