package store

import (
	"errors"
	"fmt"
)

// Sentinel errors, usable with errors.Is through a *StorageError.
var (
	ErrNotFound  = errors.New("not found")
	ErrEmptyWord = errors.New("empty word")
)

// ErrorKind categorizes storage failures.
type ErrorKind string

const (
	// KindOpen indicates the store file could not be opened or configured.
	KindOpen ErrorKind = "open"

	// KindSchema indicates schema creation, migration or verification failed.
	KindSchema ErrorKind = "schema"

	// KindQuery indicates a read failed.
	KindQuery ErrorKind = "query"

	// KindWrite indicates an insert, update or transaction step failed.
	KindWrite ErrorKind = "write"

	// KindReset indicates the store file could not be removed.
	KindReset ErrorKind = "reset"

	// KindInvalid indicates the caller passed a value the store refuses.
	KindInvalid ErrorKind = "invalid"
)

// StorageError is returned by every operation in this package that fails.
// Err holds the underlying driver or filesystem error.
type StorageError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func newError(op string, kind ErrorKind, err error) *StorageError {
	return &StorageError{Op: op, Kind: kind, Err: err}
}

// IsKind reports whether err is a *StorageError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Kind == kind
}
