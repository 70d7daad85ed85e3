// Package evaluator turns flat arithmetic strings into numbers by delegating
// to the expr language.
//
// Division by zero is part of the contract: it is reported as an infinite
// value (or NaN for 0/0), never as an error. Callers classify it by value.
package evaluator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
)

var numberLiteral = regexp.MustCompile(`[0-9]+(\.[0-9]+)?`)

// Expr evaluates expressions with github.com/expr-lang/expr. The zero value
// is ready to use.
type Expr struct{}

// New returns an expr-backed evaluator.
func New() *Expr {
	return &Expr{}
}

// Evaluate computes expression with conventional precedence (* and / bind
// tighter than + and -). All arithmetic is done in float64.
func (e *Expr) Evaluate(expression string) (float64, error) {
	program, err := expr.Compile(Canonicalize(expression))
	if err != nil {
		return 0, fmt.Errorf("compile %q: %w", expression, err)
	}

	out, err := expr.Run(program, nil)
	if err != nil {
		return 0, fmt.Errorf("run %q: %w", expression, err)
	}

	switch v := out.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("expression %q produced %T, not a number", expression, out)
}

// Canonicalize rewrites every numeric literal into a float literal without
// redundant leading zeros: "007" becomes "7.0", "00.50" becomes "0.50".
// Everything else is left untouched.
func Canonicalize(expression string) string {
	return numberLiteral.ReplaceAllStringFunc(expression, func(lit string) string {
		whole, frac, hasFrac := strings.Cut(lit, ".")
		whole = strings.TrimLeft(whole, "0")
		if whole == "" {
			whole = "0"
		}
		if !hasFrac {
			frac = "0"
		}
		return whole + "." + frac
	})
}
