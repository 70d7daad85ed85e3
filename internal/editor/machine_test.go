package editor_test

import (
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calc-editor/internal/editor"
)

// leftToRight evaluates without precedence; enough for the scenarios below.
func leftToRight(expr string) (float64, error) {
	var (
		acc float64
		op  byte = '+'
		num strings.Builder
	)
	apply := func() error {
		v, err := strconv.ParseFloat(num.String(), 64)
		if err != nil {
			return err
		}
		num.Reset()
		switch op {
		case '+':
			acc += v
		case '-':
			acc -= v
		case '*':
			acc *= v
		case '/':
			acc /= v
		}
		return nil
	}
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		if strings.IndexByte("+-*/", c) >= 0 {
			if err := apply(); err != nil {
				return 0, err
			}
			op = c
			continue
		}
		num.WriteByte(c)
	}
	if err := apply(); err != nil {
		return 0, err
	}
	return acc, nil
}

func newMachine() *editor.Machine {
	return editor.NewMachine(editor.EvaluatorFunc(leftToRight))
}

func appendAll(m *editor.Machine, s editor.Snapshot, tokens ...string) editor.Snapshot {
	for _, tok := range tokens {
		s = m.Append(s, editor.Token(tok))
	}
	return s
}

func TestScenarios(t *testing.T) {
	m := newMachine()

	t.Run("addition", func(t *testing.T) {
		s := appendAll(m, editor.Initial(), "1", "+", "2")
		s = m.Evaluate(s)
		assert.Equal(t, editor.Numeric(3), s.Result)
		assert.True(t, s.PostResultReset)
		assert.Equal(t, "1+2", s.Buffer)
	})

	t.Run("division by zero", func(t *testing.T) {
		s := appendAll(m, editor.Initial(), "5", "/", "0")
		s = m.Evaluate(s)
		assert.Equal(t, editor.ResultDivisionByZero, s.Result.Kind)
		assert.True(t, s.PostResultReset)
	})

	t.Run("leading operator ignored", func(t *testing.T) {
		s := m.Append(editor.Initial(), editor.Add)
		assert.Equal(t, "", s.Buffer)
		assert.False(t, s.OperatorLock)
	})

	t.Run("consecutive operator locks", func(t *testing.T) {
		s := appendAll(m, editor.Initial(), "1", "+", "+")
		assert.Equal(t, "1+", s.Buffer)
		assert.True(t, s.OperatorLock)
	})

	t.Run("second decimal point rejected", func(t *testing.T) {
		s := appendAll(m, editor.Initial(), "1", ".", ".")
		assert.Equal(t, "1.", s.Buffer)
	})

	t.Run("trailing operator is invalid", func(t *testing.T) {
		s := appendAll(m, editor.Initial(), "1", "+")
		s = m.Evaluate(s)
		assert.Equal(t, editor.ResultInvalidExpression, s.Result.Kind)
		assert.Equal(t, "1+", s.Buffer)
		assert.False(t, s.PostResultReset)
	})
}

func TestAppend_DecimalPointScopedToLastRun(t *testing.T) {
	m := newMachine()
	s := appendAll(m, editor.Initial(), "1", ".", "5", "+", "2", ".", "5")
	assert.Equal(t, "1.5+2.5", s.Buffer)

	s = m.Append(s, editor.DecimalPoint)
	assert.Equal(t, "1.5+2.5", s.Buffer)
}

func TestAppend_OperatorLockClearedByDigitAndDot(t *testing.T) {
	m := newMachine()
	s := appendAll(m, editor.Initial(), "7", "*", "/")
	require.True(t, s.OperatorLock)

	s = m.Append(s, editor.DecimalPoint)
	assert.Equal(t, "7*.", s.Buffer)
	assert.False(t, s.OperatorLock)
}

func TestAppend_LeadingOperatorKeepsLock(t *testing.T) {
	m := newMachine()
	s := editor.Initial()
	s.OperatorLock = true
	s = m.Append(s, editor.Subtract)
	assert.True(t, s.OperatorLock, "rule 2 must not touch the lock")
}

func TestAppend_DoubleZero(t *testing.T) {
	m := newMachine()
	s := appendAll(m, editor.Initial(), "1", "00", ".", "00")
	assert.Equal(t, "100.00", s.Buffer)
}

func TestAppend_InvalidTokenIsNoop(t *testing.T) {
	m := newMachine()
	s := appendAll(m, editor.Initial(), "1")
	assert.Equal(t, s, m.Append(s, editor.Token("x")))
	assert.Equal(t, s, m.Append(s, editor.Token("12")))
}

func TestAppend_AfterReset(t *testing.T) {
	m := newMachine()
	evaluated := m.Evaluate(appendAll(m, editor.Initial(), "2", "*", "3"))
	require.Equal(t, editor.Numeric(6), evaluated.Result)

	t.Run("digit starts a fresh buffer", func(t *testing.T) {
		s := m.Append(evaluated, editor.Token("9"))
		assert.Equal(t, editor.Snapshot{Buffer: "9", Result: editor.Result{Kind: editor.ResultEmpty}}, s)
	})

	t.Run("decimal point starts a fresh buffer", func(t *testing.T) {
		s := m.Append(evaluated, editor.DecimalPoint)
		assert.Equal(t, ".", s.Buffer)
		assert.False(t, s.PostResultReset)
	})

	t.Run("operator is dropped", func(t *testing.T) {
		locked := evaluated
		locked.OperatorLock = true
		s := m.Append(locked, editor.Add)
		assert.Equal(t, editor.Initial(), s)
	})
}

func TestDeleteLast(t *testing.T) {
	m := newMachine()

	t.Run("empty buffer", func(t *testing.T) {
		assert.Equal(t, editor.Initial(), m.DeleteLast(editor.Initial()))
	})

	t.Run("lock cleared when operator removed", func(t *testing.T) {
		s := appendAll(m, editor.Initial(), "1", "+", "+")
		require.True(t, s.OperatorLock)
		s = m.DeleteLast(s)
		assert.Equal(t, "1", s.Buffer)
		assert.False(t, s.OperatorLock)
	})

	t.Run("lock kept while buffer ends in operator", func(t *testing.T) {
		s := appendAll(m, editor.Initial(), "1", "+", "2")
		s = m.Append(s, editor.Multiply)
		s.OperatorLock = true
		s.Buffer += "3"
		s = m.DeleteLast(s)
		assert.Equal(t, "1+2*", s.Buffer)
		assert.True(t, s.OperatorLock)
	})

	t.Run("result and reset untouched", func(t *testing.T) {
		s := m.Evaluate(appendAll(m, editor.Initial(), "4", "-", "1"))
		d := m.DeleteLast(s)
		assert.Equal(t, "4-", d.Buffer)
		assert.Equal(t, s.Result, d.Result)
		assert.True(t, d.PostResultReset)
	})
}

func TestClear(t *testing.T) {
	m := newMachine()
	s := m.Evaluate(appendAll(m, editor.Initial(), "8", "/", "0"))
	s.OperatorLock = true
	assert.Equal(t, editor.Initial(), m.Clear(s))
}

func TestEvaluate(t *testing.T) {
	m := newMachine()

	t.Run("empty buffer", func(t *testing.T) {
		s := m.Evaluate(editor.Initial())
		assert.Equal(t, editor.ResultInvalidExpression, s.Result.Kind)
		assert.False(t, s.PostResultReset)
	})

	t.Run("bare decimal point", func(t *testing.T) {
		s := m.Evaluate(appendAll(m, editor.Initial(), ".", "5"))
		assert.Equal(t, editor.ResultInvalidExpression, s.Result.Kind)
	})

	t.Run("evaluator failure", func(t *testing.T) {
		failing := editor.NewMachine(editor.EvaluatorFunc(func(string) (float64, error) {
			return 0, errors.New("boom")
		}))
		s := failing.Evaluate(appendAll(failing, editor.Initial(), "1"))
		assert.Equal(t, editor.ResultEvaluationError, s.Result.Kind)
		assert.True(t, s.PostResultReset)
	})

	t.Run("zero over zero", func(t *testing.T) {
		s := m.Evaluate(appendAll(m, editor.Initial(), "0", "/", "0"))
		assert.Equal(t, editor.ResultDivisionByZero, s.Result.Kind)
	})

	t.Run("lock unchanged", func(t *testing.T) {
		s := appendAll(m, editor.Initial(), "1", "+", "+")
		s = m.Evaluate(s)
		assert.True(t, s.OperatorLock)
	})

	t.Run("idempotent classification", func(t *testing.T) {
		for _, buf := range [][]string{{"1", "+", "2"}, {"5", "/", "0"}, {"1", "+"}, {}} {
			once := m.Evaluate(appendAll(m, editor.Initial(), buf...))
			twice := m.Evaluate(once)
			assert.Equal(t, once.Result.Kind, twice.Result.Kind)
			assert.Equal(t, once.Buffer, twice.Buffer)
		}
	})
}

func TestApply(t *testing.T) {
	m := newMachine()
	s := editor.Initial()
	for _, a := range []editor.Action{
		editor.AppendAction("9"),
		editor.AppendAction(editor.Subtract),
		editor.AppendAction("4"),
		editor.AppendAction("4"),
		editor.DeleteAction,
		editor.EvaluateAction,
	} {
		s = m.Apply(s, a)
	}
	assert.Equal(t, editor.Numeric(5), s.Result)

	s = m.Apply(s, editor.ClearAction)
	assert.Equal(t, editor.Initial(), s)

	assert.Equal(t, s, m.Apply(s, editor.Action{Kind: "bogus"}))
}

func TestActionRejected(t *testing.T) {
	m := newMachine()
	locked := appendAll(m, editor.Initial(), "1", "+")
	evaluated := m.Evaluate(appendAll(m, editor.Initial(), "5"))

	tests := []struct {
		name   string
		before editor.Snapshot
		action editor.Action
		want   bool
	}{
		{"digit accepted", editor.Initial(), editor.AppendAction("7"), false},
		{"second operator sets lock but is rejected", locked, editor.AppendAction(editor.Multiply), true},
		{"leading operator", editor.Initial(), editor.AppendAction(editor.Add), true},
		{"second decimal point", appendAll(m, editor.Initial(), "1", "."), editor.AppendAction(editor.DecimalPoint), true},
		{"same digit after result starts a new expression", evaluated, editor.AppendAction("5"), false},
		{"delete on empty buffer", editor.Initial(), editor.DeleteAction, true},
		{"delete", locked, editor.DeleteAction, false},
		{"clear", editor.Initial(), editor.ClearAction, false},
		{"evaluate", editor.Initial(), editor.EvaluateAction, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			after := m.Apply(tc.before, tc.action)
			assert.Equal(t, tc.want, tc.action.Rejected(tc.before, after), spew.Sdump(tc.before, after))
		})
	}

	after := m.Apply(locked, editor.AppendAction(editor.Multiply))
	assert.True(t, after.OperatorLock)
	assert.NotEqual(t, locked, after)
}

var alphabet = []editor.Token{"0", "1", "5", "9", "00", ".", "+", "-", "*", "/"}

func TestAppendInvariants(t *testing.T) {
	m := newMachine()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		s := editor.Initial()
		for j := 0; j < 30; j++ {
			if rng.Intn(10) == 0 {
				s = m.DeleteLast(s)
				continue
			}
			s = m.Append(s, alphabet[rng.Intn(len(alphabet))])
		}

		buf := s.Buffer
		if buf != "" && strings.IndexByte("+-*/", buf[0]) >= 0 {
			t.Fatalf("buffer starts with operator:\n%s", spew.Sdump(s))
		}
		for k := 1; k < len(buf); k++ {
			if strings.IndexByte("+-*/", buf[k]) >= 0 && strings.IndexByte("+-*/", buf[k-1]) >= 0 {
				t.Fatalf("consecutive operators:\n%s", spew.Sdump(s))
			}
		}
		for _, run := range strings.FieldsFunc(buf, func(r rune) bool { return strings.ContainsRune("+-*/", r) }) {
			if strings.Count(run, ".") > 1 {
				t.Fatalf("digit-run %q has more than one decimal point:\n%s", run, spew.Sdump(s))
			}
		}
	}
}
