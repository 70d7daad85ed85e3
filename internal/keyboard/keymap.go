package keyboard

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"calc-editor/internal/editor"
)

// ErrUnknownKey is returned by FromName for names outside the key map.
var ErrUnknownKey = errors.New("unknown key")

// Key names accepted by FromName besides the keypad tokens themselves.
const (
	KeyEnter     = "Enter"
	KeyBackspace = "Backspace"
	KeyEscape    = "Escape"
)

// FromName maps a key name ("7", "00", "+", ".", "Enter", "Backspace",
// "Escape", "=") to its editor action.
func FromName(name string) (editor.Action, error) {
	switch name {
	case KeyEnter, "=":
		return editor.EvaluateAction, nil
	case KeyBackspace:
		return editor.DeleteAction, nil
	case KeyEscape:
		return editor.ClearAction, nil
	}
	if t := editor.Token(name); t.Valid() {
		return editor.AppendAction(t), nil
	}
	return editor.Action{}, fmt.Errorf("%w: %q", ErrUnknownKey, name)
}

// FromRune maps a typed character to its action.
func FromRune(r rune) (editor.Action, bool) {
	if r == '=' {
		return editor.EvaluateAction, true
	}
	if t := editor.Token(string(r)); t.Valid() {
		return editor.AppendAction(t), true
	}
	return editor.Action{}, false
}

// Type maps each non-space character of text to its action, the way typing
// it on the keyboard would. Unmapped characters fail with ErrUnknownKey.
func Type(text string) ([]editor.Action, error) {
	actions := make([]editor.Action, 0, len(text))
	for i, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		a, ok := FromRune(r)
		if !ok {
			return nil, fmt.Errorf("position %d: %w: %q", i, ErrUnknownKey, string(r))
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// FromKey maps a terminal key event to its action.
func FromKey(ev *tcell.EventKey) (editor.Action, bool) {
	switch ev.Key() {
	case tcell.KeyEnter:
		return editor.EvaluateAction, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return editor.DeleteAction, true
	case tcell.KeyEscape:
		return editor.ClearAction, true
	case tcell.KeyRune:
		return FromRune(ev.Rune())
	}
	return editor.Action{}, false
}

// isQuit reports whether ev ends an interactive session.
func isQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlD:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q'
	}
	return false
}
