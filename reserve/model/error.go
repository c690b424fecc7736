package model

import (
	"fmt"

	"github.com/egimarket/reserve/lib/errors"
	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// ErrUniqueConstraintViolation is returned when an object insertion violates
// a unique constraint.
type ErrUniqueConstraintViolation struct {
	Err error
}

func (e ErrUniqueConstraintViolation) Error() string {
	return fmt.Sprintf(
		"Unique constraint violation in %s", e.Err.Error())
}

// IsRetryable returns whether the error denotes a lost race at the store
// level (serialization failure, deadlock, locked database) that the caller
// is expected to retry a bounded number of times.
func IsRetryable(err error) bool {
	switch err := errors.Cause(err).(type) {
	case *pq.Error:
		switch err.Code.Name() {
		case "serialization_failure", "deadlock_detected":
			return true
		}
	case sqlite3.Error:
		switch err.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return true
		}
	}
	return false
}
