package todotxt

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
)

// NotFoundError reports which task number a mutation missed.
// It still satisfies errors.Is(err, ErrNotFound).
type NotFoundError struct {
	Nr int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no task %d", e.Nr)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Anomaly records a structural token the parser tolerated as plain text.
// Anomalies are never errors; loads succeed and callers decide whether to
// warn about them.
type Anomaly struct {
	Nr  int
	Msg string
}

func (a Anomaly) String() string {
	return fmt.Sprintf("line %d: %s", a.Nr, a.Msg)
}
