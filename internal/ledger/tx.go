// =========================
// File: internal/ledger/tx.go
// =========================
package ledger

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Tx is the transaction-scoped view of the ledger. Reads fall through to the
// committed state, writes land in an overlay that only Runtime.Execute can
// publish. A Tx also carries the transaction's authority set: key signers
// fixed at submission plus any seed authorities proven during execution.
type Tx struct {
	rt      *Runtime
	overlay map[solana.PublicKey]*Account
	signers map[solana.PublicKey]struct{}
}

func (tx *Tx) account(addr solana.PublicKey) *Account {
	if acc, ok := tx.overlay[addr]; ok {
		return acc
	}
	acc := tx.rt.accounts[addr].clone()
	tx.overlay[addr] = acc
	return acc
}

// Signed reports whether addr authorized this transaction, either by key
// signature or by an accepted seed proof.
func (tx *Tx) Signed(addr solana.PublicKey) bool {
	_, ok := tx.signers[addr]
	return ok
}

// AuthorizeSeed admits a program-controlled address into the transaction's
// authority set. The proof is the seed material itself: if it derives the
// expected address, that address may be debited and assigned for the rest of
// this transaction.
func (tx *Tx) AuthorizeSeed(auth SeedAuthority) (solana.PublicKey, error) {
	addr, _, err := auth.Address()
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %v", ErrBadSeedProof, err)
	}
	tx.signers[addr] = struct{}{}
	return addr, nil
}

// Load returns a copy of addr's current in-transaction state.
func (tx *Tx) Load(addr solana.PublicKey) (Account, bool) {
	acc := tx.account(addr)
	if !acc.Exists() {
		return Account{}, false
	}
	return *acc.clone(), true
}

// Store overwrites addr's state in the transaction overlay. Program packages
// use it to persist the records they own; nothing becomes visible outside
// the transaction until commit.
func (tx *Tx) Store(addr solana.PublicKey, acc Account) {
	tx.overlay[addr] = acc.clone()
}

// Balance returns addr's in-transaction lamport balance.
func (tx *Tx) Balance(addr solana.PublicKey) uint64 {
	return tx.account(addr).Lamports
}

// Transfer moves lamports between accounts. The source must have signed the
// transaction, cover the amount, and either close to exactly zero or stay at
// or above its rent-exemption floor.
func (tx *Tx) Transfer(from, to solana.PublicKey, lamports uint64) error {
	if !tx.Signed(from) {
		return fmt.Errorf("transfer from %s: %w", from, ErrMissingSignature)
	}
	src := tx.account(from)
	if src.Lamports < lamports {
		return fmt.Errorf("transfer of %d lamports from %s (balance %d): %w",
			lamports, from, src.Lamports, ErrInsufficientFunds)
	}
	remaining := src.Lamports - lamports
	if remaining > 0 && remaining < MinimumBalance(len(src.Data)) {
		return fmt.Errorf("transfer would leave %s below rent floor (%d < %d): %w",
			from, remaining, MinimumBalance(len(src.Data)), ErrInsufficientFunds)
	}
	dst := tx.account(to)
	src.Lamports = remaining
	dst.Lamports += lamports
	return nil
}

// CreateAccount allocates a fresh account at addr: the payer funds the
// rent-exemption minimum for space bytes, the account is sized and assigned
// to owner. Both the payer and the new address must be in the authority set.
// Creation at an address that already holds state fails, which is what makes
// re-initialization of singleton records impossible.
func (tx *Tx) CreateAccount(payer, addr solana.PublicKey, space int, owner solana.PublicKey) error {
	if !tx.Signed(payer) {
		return fmt.Errorf("create account payer %s: %w", payer, ErrMissingSignature)
	}
	if !tx.Signed(addr) {
		return fmt.Errorf("create account %s: %w", addr, ErrMissingSignature)
	}
	if tx.account(addr).Exists() {
		return fmt.Errorf("create account %s: %w", addr, ErrAccountExists)
	}

	rent := MinimumBalance(space)
	src := tx.account(payer)
	if src.Lamports < rent {
		return fmt.Errorf("rent of %d lamports for %s: %w", rent, addr, ErrInsufficientFunds)
	}
	remaining := src.Lamports - rent
	if remaining > 0 && remaining < MinimumBalance(len(src.Data)) {
		return fmt.Errorf("rent payment would leave %s below rent floor: %w", payer, ErrInsufficientFunds)
	}
	src.Lamports = remaining

	acc := tx.account(addr)
	acc.Lamports = rent
	acc.Owner = owner
	acc.Data = make([]byte, space)
	return nil
}
