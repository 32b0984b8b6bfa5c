// Package errs defines the error taxonomy shared by tests, preparation and
// matrix bookkeeping. Callers wrap these sentinels with context and check
// them with errors.Is.
package errs

import "errors"

var (
	// ErrConfiguration marks a malformed or missing action/opposed descriptor.
	ErrConfiguration = errors.New("configuration error")
	// ErrResolution marks a referenced actor, item or scene that no longer exists.
	ErrResolution = errors.New("resolution error")
	// ErrValidation marks a disallowed operation, e.g. extending a drain test.
	ErrValidation = errors.New("validation error")
	// ErrState marks an operation on a test outside the state that allows it.
	ErrState = errors.New("state error")
)
