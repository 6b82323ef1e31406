package capture

import "errors"

// Precondition reasons surfaced to the initiating surface. Each maps to one
// missing requirement; no network call is attempted when any of them fires.
const (
	ReasonSetupIncomplete    = "setup incomplete"
	ReasonLocked             = "locked"
	ReasonNoActiveSession    = "no active session"
	ReasonMissingAIKey       = "missing AI key"
	ReasonMissingStorageCred = "missing storage credentials"
)

// PreconditionError aborts a capture before any external call.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

// StorageError means the remote document operation failed. It is fatal to
// the capture and carries the remote-provided message when one was available.
type StorageError struct {
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Message != "" {
		return "storage failed: " + e.Message
	}
	return "storage failed: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsPrecondition reports whether err is a precondition failure.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
