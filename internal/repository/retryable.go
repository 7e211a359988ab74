package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres error codes worth retrying the whole transaction for.
const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// IsRetryableError reports whether err, anywhere in its chain, is a
// serialization failure or deadlock.
func IsRetryableError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	switch pqErr.Code {
	case pqSerializationFailure, pqDeadlockDetected:
		return true
	}
	return false
}
