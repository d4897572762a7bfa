package lineindex

import (
	"errors"
	"fmt"
)

// ErrInconsistentNotification marks a notification whose fields contradict
// each other or the host document.
var ErrInconsistentNotification = errors.New("inconsistent modification notification")

// RangeError is the panic value for a line index or offset outside the
// range an operation accepts.
type RangeError struct {
	Op    string
	What  string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("lineindex: %s: %s %d out of range [%d,%d]", e.Op, e.What, e.Value, e.Min, e.Max)
}

func checkRange(op, what string, v, lo, hi int) {
	if v < lo || v > hi {
		panic(&RangeError{Op: op, What: what, Value: v, Min: lo, Max: hi})
	}
}

func inconsistent(op, format string, args ...any) {
	panic(fmt.Errorf("lineindex: %s: %s: %w", op, fmt.Sprintf(format, args...), ErrInconsistentNotification))
}
