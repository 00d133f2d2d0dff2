package index

import (
	"context"
	"errors"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/studyvault/internal/domain"
)

// Op constants map to Redis command names for error context.
const (
	OpCreateIndex = "FT.CREATE"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpHSet        = "HSET"
	OpDel         = "DEL"
)

// Error wraps an underlying store error with the operation name. It always
// unwraps to domain.ErrIndex so callers can classify it by taxonomy.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() []error { return []error{e.Err, domain.ErrIndex} }

// IsRetryable classifies an index failure: schema mismatches and server-side
// command rejections are permanent, everything else (connection loss,
// timeouts) is transient.
func IsRetryable(err error) bool {
	if errors.Is(err, domain.ErrDimensionMismatch) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if _, ok := rueidis.IsRedisErr(unwrapStoreErr(err)); ok {
		return false
	}
	return true
}

func unwrapStoreErr(err error) error {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Err
	}
	return err
}
