package crud

import (
	"errors"
	"fmt"
)

// Common view error types
var (
	// ErrNotFound is returned when the requested object does not exist
	ErrNotFound = errors.New("object not found")

	// ErrNotPermitted is returned when dispatch resolves an operation that is
	// excluded from the view's allowed operations
	ErrNotPermitted = errors.New("view not permitted")

	// ErrNoMatch is returned when no operation matches the request method and path
	ErrNoMatch = errors.New("no view matches the request")

	// ErrImproperlyConfigured is returned for configuration faults that make
	// the view unusable (missing name, form, redirect target or templates)
	ErrImproperlyConfigured = errors.New("improperly configured")

	// ErrTemplateNotFound is returned when a resolved template name is not
	// present in the loaded template set
	ErrTemplateNotFound = errors.New("template not found")
)

// ConfigError wraps ErrImproperlyConfigured with the missing setting
func ConfigError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrImproperlyConfigured, fmt.Sprintf(format, args...))
}

// IsNotFound returns true if the error is ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNotPermitted returns true if the error is ErrNotPermitted
func IsNotPermitted(err error) bool {
	return errors.Is(err, ErrNotPermitted)
}

// IsImproperlyConfigured returns true if the error is a configuration fault
func IsImproperlyConfigured(err error) bool {
	return errors.Is(err, ErrImproperlyConfigured)
}
