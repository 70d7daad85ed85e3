package editor

import (
	"regexp"
	"strings"
)

// expressionPattern accepts number (operator number)*, number = digits ("." digits)?.
var expressionPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?([-+*/][0-9]+(\.[0-9]+)?)*$`)

// ValidExpression reports whether expr is a complete flat arithmetic
// expression. The empty string is not valid.
func ValidExpression(expr string) bool {
	return expressionPattern.MatchString(expr)
}

// currentRun returns the digit-run after the last operator, or the whole
// buffer when it holds no operator.
func currentRun(buffer string) string {
	i := strings.LastIndexAny(buffer, "+-*/")
	return buffer[i+1:]
}
