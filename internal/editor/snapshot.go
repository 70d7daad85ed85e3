package editor

import (
	"math"
	"strconv"
)

// ResultKind classifies the outcome of the last evaluation.
type ResultKind string

const (
	ResultEmpty             ResultKind = "empty"
	ResultNumeric           ResultKind = "numeric"
	ResultInvalidExpression ResultKind = "invalid_expression"
	ResultDivisionByZero    ResultKind = "division_by_zero"
	ResultEvaluationError   ResultKind = "evaluation_error"
)

// Result is the outcome of evaluate. Value is only meaningful for ResultNumeric.
type Result struct {
	Kind  ResultKind `json:"kind"`
	Value float64    `json:"value"`
}

// Numeric returns a numeric result.
func Numeric(v float64) Result {
	return Result{Kind: ResultNumeric, Value: v}
}

// IsEmpty reports whether no result is held. The zero Result is empty.
func (r Result) IsEmpty() bool {
	return r.Kind == "" || r.Kind == ResultEmpty
}

// IsError reports whether r is one of the three error kinds.
func (r Result) IsError() bool {
	switch r.Kind {
	case ResultInvalidExpression, ResultDivisionByZero, ResultEvaluationError:
		return true
	}
	return false
}

// Text is the human-readable rendering shown under the buffer.
func (r Result) Text() string {
	switch r.Kind {
	case ResultNumeric:
		return FormatNumber(r.Value)
	case ResultInvalidExpression:
		return "Invalid Expression"
	case ResultDivisionByZero:
		return "Cannot divide by zero"
	case ResultEvaluationError:
		return "Error"
	}
	return ""
}

// FormatNumber renders v with the shortest digits that round-trip, switching
// to exponent notation for very large or very small magnitudes.
func FormatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Snapshot is the complete editor state observed after every action.
type Snapshot struct {
	Buffer          string `json:"buffer"`
	Result          Result `json:"result"`
	OperatorLock    bool   `json:"operator_lock"`
	PostResultReset bool   `json:"post_result_reset"`
}

// Initial returns the state of a freshly created or cleared editor.
func Initial() Snapshot {
	return Snapshot{Result: Result{Kind: ResultEmpty}}
}

// Display is the buffer, or "0" while it is empty.
func (s Snapshot) Display() string {
	if s.Buffer == "" {
		return "0"
	}
	return s.Buffer
}

// endsInOperator reports whether the buffer's last character is an operator.
func (s Snapshot) endsInOperator() bool {
	return s.Buffer != "" && isOperator(s.Buffer[len(s.Buffer)-1])
}
