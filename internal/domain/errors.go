package domain

import (
	"errors"
	"fmt"
)

// ErrJobNotFound is returned when a job with the given ID has no record.
var ErrJobNotFound = errors.New("jobrelay: job not found")

// ErrUnknownKind is returned when a job kind has no registered handler.
var ErrUnknownKind = errors.New("jobrelay: unknown job kind")

// ErrDuplicateJob is returned when Create is called with an ID that
// already exists in the store.
var ErrDuplicateJob = errors.New("jobrelay: duplicate job id")

// ConfigError signals missing required configuration. It is a
// deployment precondition failure, never a retry case.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("jobrelay: missing required config %q", e.Field)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
