package binding

import (
	"math"
	"reflect"
)

// defaultEquals provides type-appropriate equality checking.
// Uses == for scalar types and reflect.DeepEqual for others.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int8:
		return av == any(b).(int8)
	case int16:
		return av == any(b).(int16)
	case int32:
		return av == any(b).(int32)
	case int64:
		return av == any(b).(int64)
	case uint:
		return av == any(b).(uint)
	case uint8:
		return av == any(b).(uint8)
	case uint16:
		return av == any(b).(uint16)
	case uint32:
		return av == any(b).(uint32)
	case uint64:
		return av == any(b).(uint64)
	case float32:
		return av == any(b).(float32)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}

// floatEquals treats NaN as equal to NaN so a NaN-producing computation
// does not notify on every pass.
func floatEquals(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

func intEquals(a, b int) bool {
	return a == b
}
