package model

// Eval applies op to (value, limit) and reports whether the comparison
// "hits" -- i.e. whether the condition the operator names is true. All
// percentage-like quantities must already be scaled by 10 (tenths of a
// percent) before reaching here; Eval never looks at floats, matching the
// original's Util_evalQExpression contract (spec.md §3 invariant 9).
func Eval(op Operator, value, limit int64) bool {
	switch op {
	case OpLess:
		return value < limit
	case OpLessEqual:
		return value <= limit
	case OpEqual:
		return value == limit
	case OpNotEqual:
		return value != limit
	case OpGreaterEqual:
		return value >= limit
	case OpGreater:
		return value > limit
	default:
		return false
	}
}
