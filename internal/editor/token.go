package editor

import (
	"errors"
	"fmt"
)

// ErrInvalidToken is returned by ParseToken for input that is not a keypad token.
var ErrInvalidToken = errors.New("invalid token")

// Token is a single keypad input that can be appended to the buffer.
type Token string

const (
	Add          Token = "+"
	Subtract     Token = "-"
	Multiply     Token = "*"
	Divide       Token = "/"
	DecimalPoint Token = "."
	DoubleZero   Token = "00"
)

// ParseToken validates s as a keypad token.
func ParseToken(s string) (Token, error) {
	t := Token(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidToken, s)
	}
	return t, nil
}

// Valid reports whether t is a digit, "00", "." or one of the four operators.
func (t Token) Valid() bool {
	return t.IsDigits() || t.IsOperator() || t == DecimalPoint
}

// IsOperator reports whether t is one of + - * /.
func (t Token) IsOperator() bool {
	return len(t) == 1 && isOperator(t[0])
}

// IsDigits reports whether t is a single digit or the double-zero key.
func (t Token) IsDigits() bool {
	if t == DoubleZero {
		return true
	}
	return len(t) == 1 && isDigit(t[0])
}

func isOperator(c byte) bool {
	switch c {
	case '+', '-', '*', '/':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
