package model

import "testing"

func TestEval(t *testing.T) {
	cases := []struct {
		op          Operator
		value, limit int64
		want        bool
	}{
		{OpLess, 5, 10, true},
		{OpLess, 10, 10, false},
		{OpLessEqual, 10, 10, true},
		{OpEqual, 7, 7, true},
		{OpEqual, 7, 8, false},
		{OpNotEqual, 7, 8, true},
		{OpGreaterEqual, 10, 10, true},
		{OpGreaterEqual, 9, 10, false},
		{OpGreater, 11, 10, true},
	}
	for _, c := range cases {
		if got := Eval(c.op, c.value, c.limit); got != c.want {
			t.Errorf("Eval(%v, %d, %d) = %v, want %v", c.op, c.value, c.limit, got, c.want)
		}
	}
}

func TestEvalUnknownOperator(t *testing.T) {
	if Eval(Operator(99), 1, 1) {
		t.Error("Eval with an unknown operator should not hit")
	}
}
