package decorate

import (
	"errors"
	"fmt"
)

var (
	// ErrPostconditionFailed is matched by every error Post returns when its
	// condition rejects a result.
	ErrPostconditionFailed = errors.New("postcondition failed")

	// ErrRetriesExhausted is matched by every error Retry returns after all
	// attempts failed with retryable errors.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// PostconditionError reports a result rejected by a Post condition.
type PostconditionError struct {
	Name   string
	Result any
}

func (e *PostconditionError) Error() string {
	return fmt.Sprintf("%s: %s (result %v)", e.Name, ErrPostconditionFailed, e.Result)
}

func (e *PostconditionError) Is(target error) bool {
	return target == ErrPostconditionFailed
}

// RetriesExhaustedError reports that every attempt of a Retry-wrapped
// callable failed with a retryable error.
//
// Last holds the error of the final attempt. It is not returned by Unwrap:
// callers match the exhaustion with errors.Is(err, ErrRetriesExhausted) and
// must not mistake it for the underlying failure kind.
type RetriesExhaustedError struct {
	Name     string
	Attempts int
	Last     error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("%s: %s after %d attempts", e.Name, ErrRetriesExhausted, e.Attempts)
}

func (e *RetriesExhaustedError) Is(target error) bool {
	return target == ErrRetriesExhausted
}
