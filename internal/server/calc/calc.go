// Package calc evaluates the calculator form. Operand parsing is shared
// with the validation pipeline so "1,5" and "1 234,56" work here too.
package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/avelichko/formdesk/internal/server/validate"
)

var (
	ErrBadOperand      = errors.New("please enter valid numbers (e.g., 12, 3.14, 1,5)")
	ErrDivisionByZero  = errors.New("division by zero is not allowed")
	ErrUnknownOperator = errors.New("unsupported operator")
)

// Evaluate parses both operands and applies op (+, -, *, /).
func Evaluate(rawA, rawB, op string) (float64, error) {
	a, err := validate.ParseDecimal(rawA)
	if err != nil {
		return 0, ErrBadOperand
	}
	b, err := validate.ParseDecimal(rawB)
	if err != nil {
		return 0, ErrBadOperand
	}

	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if math.Abs(b) < 1e-12 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	default:
		return 0, ErrUnknownOperator
	}
}

// Line formats a history entry for the session's calculator history.
func Line(rawA, rawB, op string, result float64) string {
	return fmt.Sprintf("%s %s %s = %s",
		rawA, op, rawB, strconv.FormatFloat(result, 'f', -1, 64))
}
