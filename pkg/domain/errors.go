package domain

import "errors"

// ErrInvalidWorkflow wraps every construction-time validation failure:
// unknown successor names, duplicate IDs, reserved characters, incomplete
// permit maps and cycles. These are caller bugs, raised before any run.
var ErrInvalidWorkflow = errors.New("invalid workflow")

// ErrNotSleeping is returned by Run when the engine has already run.
// Engines are single-shot; a new run requires a new instance.
var ErrNotSleeping = errors.New("engine is not sleeping")

// ErrStopped is returned by Run when the run ended in StateUserStopped.
var ErrStopped = errors.New("run stopped by user")

// ErrFailed is returned by Run when the run ended in StateFailed.
var ErrFailed = errors.New("run failed")
