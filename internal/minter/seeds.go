// ============================
// File: internal/minter/seeds.go
// ============================
package minter

import (
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/founders-mint/internal/ledger"
)

// ProgramID is the deployed address of the issuance program.
var ProgramID = solana.MustPublicKeyFromBase58("C4FiFWofsjxRGXrcF5i1RnxPHc7QDcSf9XzhFgLQyioh")

// Seed labels for the two program-controlled accounts. Fixed strings, so the
// config and vault addresses are a pure function of the program ID.
const (
	ConfigSeed = "config"
	VaultSeed  = "payment_vault"
)

// ConfigAddress derives the configuration record's address and bump for the
// given program deployment.
func ConfigAddress(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(ConfigSeed)}, programID)
}

// VaultAddress derives the payment vault's address and bump.
func VaultAddress(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(VaultSeed)}, programID)
}

func configAuthority(programID solana.PublicKey) ledger.SeedAuthority {
	return ledger.SeedAuthority{ProgramID: programID, Seeds: [][]byte{[]byte(ConfigSeed)}}
}

func vaultAuthority(programID solana.PublicKey) ledger.SeedAuthority {
	return ledger.SeedAuthority{ProgramID: programID, Seeds: [][]byte{[]byte(VaultSeed)}}
}
