// ===========================
// File: internal/minter/mint.go
// ===========================
package minter

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/founders-mint/internal/ledger"
	"github.com/rovshanmuradov/founders-mint/internal/metadata"
)

// MintReceipt reports what a successful mint created.
type MintReceipt struct {
	Sequence uint64
	Name     string
	Price    uint64
	Mint     solana.PublicKey
	Holding  solana.PublicKey
	Metadata solana.PublicKey
	Edition  solana.PublicKey
}

// MintEdition mints the next sequentially numbered unit to the caller at the
// standard price. editionMint is the address of the fresh token-type
// keypair; both it and the caller authorize the transaction.
func (p *Program) MintEdition(ctx context.Context, caller, editionMint solana.PublicKey) (*MintReceipt, error) {
	return p.mint(ctx, caller, editionMint, false)
}

// MintDiscounted is MintEdition at the discounted tier. No eligibility check
// is applied beyond the choice of entry point.
func (p *Program) MintDiscounted(ctx context.Context, caller, editionMint solana.PublicKey) (*MintReceipt, error) {
	return p.mint(ctx, caller, editionMint, true)
}

// mint runs the whole issuance workflow as one unit of work: payment into
// the vault, counter increment, token-type creation, holding creation, unit
// issuance, metadata attachment, edition cap. If any step fails the runtime
// discards everything, including the payment.
func (p *Program) mint(ctx context.Context, caller, editionMint solana.PublicKey, discounted bool) (*MintReceipt, error) {
	configAddr, _, err := ConfigAddress(p.id)
	if err != nil {
		return nil, fmt.Errorf("derive config address: %w", err)
	}
	vaultAddr, _, err := VaultAddress(p.id)
	if err != nil {
		return nil, fmt.Errorf("derive vault address: %w", err)
	}

	var receipt MintReceipt
	err = p.runtime.Execute(ctx, []solana.PublicKey{caller, editionMint}, func(tx *ledger.Tx) error {
		cfg, err := p.loadConfig(tx, configAddr)
		if err != nil {
			return err
		}

		price := cfg.PriceFor(discounted)
		if err := tx.Transfer(caller, vaultAddr, price); err != nil {
			return err
		}

		cfg.TotalMinted++
		sequence := cfg.TotalMinted
		name := p.params.EditionName(sequence)

		freeze := caller
		if err := p.tokens.CreateMint(tx, caller, editionMint, caller, &freeze, 0); err != nil {
			return collaboratorErr("token-ledger", "create mint", err)
		}

		holding, err := p.tokens.CreateHolding(tx, caller, caller, editionMint)
		if err != nil {
			return collaboratorErr("token-ledger", "create holding", err)
		}

		if err := p.tokens.MintTo(tx, editionMint, holding, caller, 1); err != nil {
			return collaboratorErr("token-ledger", "issue unit", err)
		}

		metadataAddr, err := p.registry.CreateMetadata(tx, caller, caller, metadata.Metadata{
			UpdateAuthority:      caller,
			Mint:                 editionMint,
			Name:                 name,
			Symbol:               p.params.Symbol,
			URI:                  p.params.URI,
			SellerFeeBasisPoints: p.params.RoyaltyBps,
			Creators: []metadata.Creator{
				{Address: caller, Verified: true, Share: 100},
			},
			Collection: &metadata.Collection{Verified: false, Key: cfg.MasterMint},
			IsMutable:  true,
		})
		if err != nil {
			return collaboratorErr("metadata-registry", "create metadata", err)
		}

		// This unit is terminal: no further editions derivable from it.
		maxSupply := uint64(0)
		editionAddr, err := p.registry.CreateMasterEdition(tx, caller, caller, editionMint, &maxSupply)
		if err != nil {
			return collaboratorErr("metadata-registry", "create edition", err)
		}

		if err := p.storeConfig(tx, configAddr, cfg); err != nil {
			return err
		}

		receipt = MintReceipt{
			Sequence: sequence,
			Name:     name,
			Price:    price,
			Mint:     editionMint,
			Holding:  holding,
			Metadata: metadataAddr,
			Edition:  editionAddr,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tier := "standard"
	if discounted {
		tier = "discounted"
	}
	p.logger.Info("edition minted",
		zap.Uint64("sequence", receipt.Sequence),
		zap.String("name", receipt.Name),
		zap.String("tier", tier),
		zap.Uint64("price", receipt.Price),
		zap.String("minter", caller.String()),
		zap.String("mint", editionMint.String()))
	return &receipt, nil
}
