package sandbox

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// MaxRows caps the rows returned for one query.
const MaxRows = 500

var ErrTimeout = errors.New("canceling statement due to statement timeout")

// ExecutionError carries the database's own message for a failed query.
type ExecutionError struct {
	Message string
}

func (e *ExecutionError) Error() string {
	return e.Message
}

func timeoutError(limit time.Duration) error {
	return fmt.Errorf("%w: execution was longer than %s seconds", ErrTimeout, strconv.FormatFloat(limit.Seconds(), 'f', -1, 64))
}
