package notification

import (
	"errors"

	"github.com/go-drift/notification/pkg/platform"
)

var (
	// ErrUnsupported is returned by New when the host has no notification support.
	ErrUnsupported = errors.New("notification: not supported by host")

	// ErrTimeout is returned by RequestPermissionContext when its deadline passes
	// before the user answers.
	ErrTimeout = platform.ErrTimeout

	// ErrCanceled is returned by RequestPermissionContext when its context is canceled.
	ErrCanceled = platform.ErrCanceled

	// ErrHostShutdown is returned by RequestPermissionContext when the host
	// shuts down before the user answers.
	ErrHostShutdown = errors.New("notification: host shut down")
)

// OptionsError reports options rejected by validation.
type OptionsError struct {
	Err error
}

func (e *OptionsError) Error() string {
	return "notification: invalid options: " + e.Err.Error()
}

func (e *OptionsError) Unwrap() error {
	return e.Err
}

func isOptionsError(err error) bool {
	var target *OptionsError
	return errors.As(err, &target)
}
