package relationaldb

import (
	"errors"
	"fmt"
)

// Config validation errors.
var (
	ErrMissingHost           = errors.New("database host is required")
	ErrMissingDatabase       = errors.New("database name is required")
	ErrMissingUsername       = errors.New("database username is required")
	ErrInvalidPort           = errors.New("invalid database port")
	ErrInvalidDriver         = errors.New("invalid database driver")
	ErrInvalidMaxOpenConns   = errors.New("max open connections must be >= 0")
	ErrInvalidMaxIdleConns   = errors.New("max idle connections must be >= 0")
	ErrMaxIdleExceedsMaxOpen = errors.New("max idle connections cannot exceed max open connections")
	ErrInvalidTimeout        = errors.New("timeout must be positive")
)

var (
	ErrDatabaseClosed = errors.New("event store is closed")
	ErrInvalidLimit   = errors.New("invalid history limit")
)

// Stage is the event store step an error came from.
type Stage string

const (
	StageConfig  Stage = "config"
	StageConnect Stage = "connect"
	StageSchema  Stage = "schema"
	StageQuery   Stage = "query"
)

// StoreError wraps a driver or validation error with the event store
// operation that hit it.
type StoreError struct {
	Stage Stage
	Op    string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("loan events %s (%s): %v", e.Op, e.Stage, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeError(stage Stage, op string, err error) error {
	return &StoreError{Stage: stage, Op: op, Err: err}
}

// FailedAt reports whether err came from the given stage.
func FailedAt(err error, stage Stage) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Stage == stage
}
