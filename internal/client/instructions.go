// ===============================
// File: internal/client/instructions.go
// ===============================
package client

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/founders-mint/internal/metadata"
	"github.com/rovshanmuradov/founders-mint/internal/minter"
	"github.com/rovshanmuradov/founders-mint/internal/token"
)

// instructionDiscriminator computes the 8-byte tag for a named entry point
// of the deployed program.
func instructionDiscriminator(name string) []byte {
	sum := sha256.Sum256([]byte("global:" + name))
	return sum[:8]
}

// MintAccounts collects every address the mint entry points touch. The
// account list the program expects is ordered; builders below must not
// reorder it.
type MintAccounts struct {
	Config          solana.PublicKey
	Minter          solana.PublicKey
	PaymentVault    solana.PublicKey
	MasterMint      solana.PublicKey
	MasterEdition   solana.PublicKey
	MasterMetadata  solana.PublicKey
	EditionMint     solana.PublicKey
	EditionHolding  solana.PublicKey
	EditionMetadata solana.PublicKey
	Edition         solana.PublicKey
}

// DeriveMintAccounts fills in every derivable address for a mint by caller
// of a fresh editionMint under the given program deployment.
func DeriveMintAccounts(programID, caller, masterMint, editionMint solana.PublicKey) (MintAccounts, error) {
	accs := MintAccounts{
		Minter:      caller,
		MasterMint:  masterMint,
		EditionMint: editionMint,
	}
	var err error
	if accs.Config, _, err = minter.ConfigAddress(programID); err != nil {
		return accs, fmt.Errorf("derive config: %w", err)
	}
	if accs.PaymentVault, _, err = minter.VaultAddress(programID); err != nil {
		return accs, fmt.Errorf("derive vault: %w", err)
	}
	if accs.MasterMetadata, _, err = metadata.MetadataAddress(masterMint); err != nil {
		return accs, fmt.Errorf("derive master metadata: %w", err)
	}
	if accs.MasterEdition, _, err = metadata.EditionAddress(masterMint); err != nil {
		return accs, fmt.Errorf("derive master edition: %w", err)
	}
	if accs.EditionHolding, _, err = token.HoldingAddress(caller, editionMint); err != nil {
		return accs, fmt.Errorf("derive holding: %w", err)
	}
	if accs.EditionMetadata, _, err = metadata.MetadataAddress(editionMint); err != nil {
		return accs, fmt.Errorf("derive edition metadata: %w", err)
	}
	if accs.Edition, _, err = metadata.EditionAddress(editionMint); err != nil {
		return accs, fmt.Errorf("derive edition: %w", err)
	}
	return accs, nil
}

// BuildInitializeInstruction builds the initialize instruction: the signer
// becomes authority and funds the configuration record.
func BuildInitializeInstruction(programID, authority, masterMint solana.PublicKey) (solana.Instruction, error) {
	configAddr, _, err := minter.ConfigAddress(programID)
	if err != nil {
		return nil, fmt.Errorf("derive config: %w", err)
	}
	vaultAddr, _, err := minter.VaultAddress(programID)
	if err != nil {
		return nil, fmt.Errorf("derive vault: %w", err)
	}

	data := append(instructionDiscriminator("initialize"), masterMint.Bytes()...)

	accounts := []*solana.AccountMeta{
		{PublicKey: configAddr, IsSigner: false, IsWritable: true},
		{PublicKey: authority, IsSigner: true, IsWritable: true},
		{PublicKey: vaultAddr, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

// BuildMintEditionInstruction builds a standard-price mint.
func BuildMintEditionInstruction(programID solana.PublicKey, accs MintAccounts) solana.Instruction {
	return buildMintInstruction(programID, accs, "mint_edition")
}

// BuildMintDiscountedInstruction builds a discounted mint.
func BuildMintDiscountedInstruction(programID solana.PublicKey, accs MintAccounts) solana.Instruction {
	return buildMintInstruction(programID, accs, "mint_discounted")
}

func buildMintInstruction(programID solana.PublicKey, accs MintAccounts, name string) solana.Instruction {
	accounts := []*solana.AccountMeta{
		{PublicKey: accs.Config, IsSigner: false, IsWritable: true},
		{PublicKey: accs.Minter, IsSigner: true, IsWritable: true},
		{PublicKey: accs.PaymentVault, IsSigner: false, IsWritable: true},
		{PublicKey: accs.MasterMint, IsSigner: false, IsWritable: false},
		{PublicKey: accs.MasterEdition, IsSigner: false, IsWritable: false},
		{PublicKey: accs.MasterMetadata, IsSigner: false, IsWritable: false},
		{PublicKey: accs.EditionMint, IsSigner: true, IsWritable: true},
		{PublicKey: accs.EditionHolding, IsSigner: false, IsWritable: true},
		{PublicKey: accs.EditionMetadata, IsSigner: false, IsWritable: true},
		{PublicKey: accs.Edition, IsSigner: false, IsWritable: true},
		{PublicKey: metadata.ProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: token.ProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: token.AssociatedProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(programID, accounts, instructionDiscriminator(name))
}

// BuildUpdatePricingInstruction builds an update_pricing call. nil prices
// are encoded as absent and leave the stored tier untouched.
func BuildUpdatePricingInstruction(programID, authority solana.PublicKey, newStandard, newDiscounted *uint64) (solana.Instruction, error) {
	configAddr, _, err := minter.ConfigAddress(programID)
	if err != nil {
		return nil, fmt.Errorf("derive config: %w", err)
	}

	data := instructionDiscriminator("update_pricing")
	data = appendOptionalU64(data, newStandard)
	data = appendOptionalU64(data, newDiscounted)

	accounts := []*solana.AccountMeta{
		{PublicKey: configAddr, IsSigner: false, IsWritable: true},
		{PublicKey: authority, IsSigner: true, IsWritable: true},
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

// BuildWithdrawInstruction builds a withdraw call for the stored authority.
func BuildWithdrawInstruction(programID, authority solana.PublicKey, amount uint64) (solana.Instruction, error) {
	configAddr, _, err := minter.ConfigAddress(programID)
	if err != nil {
		return nil, fmt.Errorf("derive config: %w", err)
	}
	vaultAddr, _, err := minter.VaultAddress(programID)
	if err != nil {
		return nil, fmt.Errorf("derive vault: %w", err)
	}

	data := instructionDiscriminator("withdraw")
	amountBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(amountBytes, amount)
	data = append(data, amountBytes...)

	accounts := []*solana.AccountMeta{
		{PublicKey: configAddr, IsSigner: false, IsWritable: false},
		{PublicKey: authority, IsSigner: true, IsWritable: true},
		{PublicKey: vaultAddr, IsSigner: false, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

// appendOptionalU64 encodes a borsh Option<u64>: a presence byte, then the
// little-endian value when present.
func appendOptionalU64(data []byte, v *uint64) []byte {
	if v == nil {
		return append(data, 0)
	}
	data = append(data, 1)
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, *v)
	return append(data, b...)
}
