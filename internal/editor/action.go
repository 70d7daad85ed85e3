package editor

import (
	"errors"
	"fmt"
)

// ErrUnknownAction is returned by ParseAction for unrecognised action names.
var ErrUnknownAction = errors.New("unknown action")

// ActionKind names one of the four editor operations.
type ActionKind string

const (
	ActionAppend   ActionKind = "append"
	ActionDelete   ActionKind = "delete"
	ActionClear    ActionKind = "clear"
	ActionEvaluate ActionKind = "evaluate"
)

// Action is one user intent, whether it came from a button or a key press.
type Action struct {
	Kind  ActionKind
	Token Token // only set for ActionAppend
}

// AppendAction returns an append action for t.
func AppendAction(t Token) Action {
	return Action{Kind: ActionAppend, Token: t}
}

var (
	DeleteAction   = Action{Kind: ActionDelete}
	ClearAction    = Action{Kind: ActionClear}
	EvaluateAction = Action{Kind: ActionEvaluate}
)

// ParseAction builds an action from its wire name. token is only read for
// "append", where it must be a valid keypad token.
func ParseAction(name, token string) (Action, error) {
	switch ActionKind(name) {
	case ActionAppend:
		t, err := ParseToken(token)
		if err != nil {
			return Action{}, err
		}
		return AppendAction(t), nil
	case ActionDelete:
		return DeleteAction, nil
	case ActionClear:
		return ClearAction, nil
	case ActionEvaluate:
		return EvaluateAction, nil
	}
	return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

func (a Action) String() string {
	if a.Kind == ActionAppend {
		return fmt.Sprintf("append(%s)", a.Token)
	}
	return string(a.Kind)
}

// Rejected reports whether a left the buffer as it was: an append refused by
// the input rules, or a delete on an empty buffer. A refused second operator
// still counts as rejected even though it sets the operator lock. Clear and
// evaluate are never rejected.
func (a Action) Rejected(before, after Snapshot) bool {
	switch a.Kind {
	case ActionAppend:
		return !before.PostResultReset && before.Buffer == after.Buffer
	case ActionDelete:
		return before.Buffer == ""
	}
	return false
}
