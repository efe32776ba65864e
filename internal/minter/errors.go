// =============================
// File: internal/minter/errors.go
// =============================
package minter

import (
	"errors"
	"fmt"

	"github.com/rovshanmuradov/founders-mint/internal/ledger"
)

var (
	// ErrUnauthorized is returned when a gated operation is invoked by an
	// identity other than the stored authority.
	ErrUnauthorized = errors.New("unauthorized: caller is not the configured authority")

	// ErrNotInitialized is returned when any operation other than Initialize
	// runs before the configuration record exists.
	ErrNotInitialized = errors.New("minter is not initialized")

	// ErrAlreadyInitialized is returned by a second Initialize. The
	// configuration record is a singleton; re-initialization is rejected and
	// the existing record is left untouched.
	ErrAlreadyInitialized = errors.New("minter is already initialized")

	// ErrInsufficientFunds mirrors the ledger error so callers can match on
	// either package.
	ErrInsufficientFunds = ledger.ErrInsufficientFunds
)

// CollaboratorError wraps a failure reported by one of the delegated
// programs. The enclosing operation is rolled back in full; the wrapped
// error says which collaborator and step failed.
type CollaboratorError struct {
	Collaborator string
	Op           string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Collaborator, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

func collaboratorErr(collaborator, op string, err error) error {
	if err == nil {
		return nil
	}
	// Funding failures inside a delegated step are still payment problems
	// from the caller's point of view.
	if errors.Is(err, ledger.ErrInsufficientFunds) {
		return err
	}
	return &CollaboratorError{Collaborator: collaborator, Op: op, Err: err}
}
