package completion

import (
	"errors"
	"fmt"
)

// Resolution failures.
var (
	ErrNoConnection       = errors.New("no connection selected and no default connection configured")
	ErrNoSettings         = errors.New("no settings selected and no default settings configured")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrSettingsNotFound   = errors.New("settings not found")
	ErrNoBackend          = errors.New("no backend registered for connection type")
	ErrKeyUnresolved      = errors.New("connection key could not be resolved")
	ErrInvalidRequest     = errors.New("invalid request")
)

// Error annotates a dispatch failure with what was being dispatched. Fields
// are empty when the failure happened before they were known.
type Error struct {
	ConnectionID string
	Backend      string
	Model        string
	Err          error
}

func (e *Error) Error() string {
	if e.Backend != "" {
		return fmt.Sprintf("completion via %s (connection %q): %v", e.Backend, e.ConnectionID, e.Err)
	}
	if e.ConnectionID != "" {
		return fmt.Sprintf("completion (connection %q): %v", e.ConnectionID, e.Err)
	}
	return fmt.Sprintf("completion: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
