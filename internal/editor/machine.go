package editor

import (
	"math"
	"strings"
)

// Evaluator parses and evaluates a flat arithmetic expression.
//
// The expression handed over always matches ValidExpression. A division by
// zero must be reported as an infinite (or NaN, for 0/0) value rather than an
// error; any other failure is returned as an error.
type Evaluator interface {
	Evaluate(expression string) (float64, error)
}

// EvaluatorFunc adapts a plain function to Evaluator.
type EvaluatorFunc func(expression string) (float64, error)

func (f EvaluatorFunc) Evaluate(expression string) (float64, error) {
	return f(expression)
}

// Machine is the input state machine. Every operation takes the current
// snapshot and returns the next one; the machine itself holds no editing
// state and is safe to share.
type Machine struct {
	evaluator Evaluator
}

// NewMachine returns a machine that delegates evaluation to ev.
func NewMachine(ev Evaluator) *Machine {
	return &Machine{evaluator: ev}
}

// Apply dispatches a to the matching operation.
func (m *Machine) Apply(s Snapshot, a Action) Snapshot {
	switch a.Kind {
	case ActionAppend:
		return m.Append(s, a.Token)
	case ActionDelete:
		return m.DeleteLast(s)
	case ActionClear:
		return m.Clear(s)
	case ActionEvaluate:
		return m.Evaluate(s)
	}
	return s
}

// Append adds t to the buffer, or silently rejects it.
func (m *Machine) Append(s Snapshot, t Token) Snapshot {
	if !t.Valid() {
		return s
	}

	if s.PostResultReset {
		next := Initial()
		if !t.IsOperator() {
			next.Buffer = string(t)
		}
		return next
	}

	switch {
	case t.IsOperator() && s.endsInOperator():
		s.OperatorLock = true
		return s
	case t.IsOperator() && s.Buffer == "":
		return s
	case t == DecimalPoint && strings.Contains(currentRun(s.Buffer), "."):
		return s
	}

	s.Buffer += string(t)
	s.OperatorLock = false
	return s
}

// DeleteLast removes the last buffer character. The operator lock survives
// only while the buffer still ends in an operator.
func (m *Machine) DeleteLast(s Snapshot) Snapshot {
	if s.Buffer == "" {
		return s
	}
	s.Buffer = s.Buffer[:len(s.Buffer)-1]
	if !s.endsInOperator() {
		s.OperatorLock = false
	}
	return s
}

// Clear resets everything.
func (m *Machine) Clear(Snapshot) Snapshot {
	return Initial()
}

// Evaluate classifies the buffer. A syntactically invalid buffer keeps the
// editor in place so it can be corrected; anything that reaches the evaluator
// arms the post-result reset.
func (m *Machine) Evaluate(s Snapshot) Snapshot {
	if !ValidExpression(s.Buffer) {
		s.Result = Result{Kind: ResultInvalidExpression}
		return s
	}

	s.PostResultReset = true

	v, err := m.evaluator.Evaluate(s.Buffer)
	switch {
	case err != nil:
		s.Result = Result{Kind: ResultEvaluationError}
	case math.IsInf(v, 0) || math.IsNaN(v):
		s.Result = Result{Kind: ResultDivisionByZero}
	default:
		s.Result = Numeric(v)
	}
	return s
}
