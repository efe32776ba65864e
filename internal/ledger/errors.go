// =============================
// File: internal/ledger/errors.go
// =============================
package ledger

import "errors"

var (
	// ErrInsufficientFunds is returned when a transfer would overdraw the
	// source account or strand it below its rent-exemption floor.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountExists is returned when account creation targets an address
	// that already holds lamports or data.
	ErrAccountExists = errors.New("account already exists")

	// ErrMissingSignature is returned when an operation debits or assigns an
	// address that neither signed the transaction nor was authorized through
	// a seed proof.
	ErrMissingSignature = errors.New("missing required signature")

	// ErrBadSeedProof is returned when a seed authority does not derive the
	// address it claims to control.
	ErrBadSeedProof = errors.New("seed proof does not match derived address")
)
