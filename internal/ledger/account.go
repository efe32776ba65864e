// ==============================
// File: internal/ledger/account.go
// ==============================
package ledger

import "github.com/gagliardetto/solana-go"

// Account is the unit of persistent state in the runtime: a lamport balance,
// an owning program, and an opaque data blob the owner is free to interpret.
type Account struct {
	Lamports uint64
	Owner    solana.PublicKey
	Data     []byte
}

// Exists reports whether the account holds any state at all. An address that
// was never funded and never assigned data behaves as an absent account.
func (a *Account) Exists() bool {
	return a != nil && (a.Lamports > 0 || len(a.Data) > 0)
}

func (a *Account) clone() *Account {
	if a == nil {
		return &Account{}
	}
	c := &Account{
		Lamports: a.Lamports,
		Owner:    a.Owner,
	}
	if len(a.Data) > 0 {
		c.Data = make([]byte, len(a.Data))
		copy(c.Data, a.Data)
	}
	return c
}
