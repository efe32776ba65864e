// ===========================
// File: internal/ledger/seed.go
// ===========================
package ledger

import "github.com/gagliardetto/solana-go"

// SeedAuthority is the credential for a program-controlled address: no
// private key exists for it, control is proven by presenting the program ID
// and seed material the address derives from. It is deliberately a distinct
// type from key signers so the two kinds of authority never blur.
type SeedAuthority struct {
	ProgramID solana.PublicKey
	Seeds     [][]byte
}

// Address derives the program-controlled address and its bump for this
// authority. Deterministic: the same program and seeds always yield the same
// address.
func (s SeedAuthority) Address() (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(s.Seeds, s.ProgramID)
}
