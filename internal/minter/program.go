// ==============================
// File: internal/minter/program.go
// ==============================

// Package minter implements the issuance program: a price-tiered,
// sequentially numbered collectible mint backed by a singleton configuration
// record and a program-controlled payment vault. Every entry point is one
// atomic unit of work on the ledger runtime; a failure at any step leaves no
// trace.
package minter

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/founders-mint/internal/ledger"
	"github.com/rovshanmuradov/founders-mint/internal/metadata"
	"github.com/rovshanmuradov/founders-mint/internal/token"
)

// CollectionParams fixes the identity shared by every minted unit.
type CollectionParams struct {
	NamePrefix string // display name becomes "<NamePrefix> #<sequence>"
	Symbol     string
	URI        string
	RoyaltyBps uint16
}

// EditionName returns the display name carried by the unit holding the
// given sequence number.
func (p CollectionParams) EditionName(sequence uint64) string {
	return fmt.Sprintf("%s #%d", p.NamePrefix, sequence)
}

// DefaultCollectionParams matches the deployed collection.
func DefaultCollectionParams() CollectionParams {
	return CollectionParams{
		NamePrefix: "AMMo Founder",
		Symbol:     "FAMMo",
		URI:        "https://plum-imperial-swordfish-193.mypinata.cloud/ipfs/bafkreiddegzxdo2h3sliwjfpp22f46mfwb7frb3aibdqtln74uiiv3wkmy",
		RoyaltyBps: 500,
	}
}

// Program wires the issuance logic to the runtime and its two
// collaborators.
type Program struct {
	id       solana.PublicKey
	runtime  *ledger.Runtime
	tokens   *token.Program
	registry *metadata.Registry
	params   CollectionParams
	logger   *zap.Logger
}

// Option adjusts program construction.
type Option func(*Program)

// WithProgramID overrides the deployed program address, mainly so tests can
// run several isolated deployments.
func WithProgramID(id solana.PublicKey) Option {
	return func(p *Program) { p.id = id }
}

// WithCollectionParams overrides the collection identity.
func WithCollectionParams(params CollectionParams) Option {
	return func(p *Program) { p.params = params }
}

func New(runtime *ledger.Runtime, tokens *token.Program, registry *metadata.Registry, logger *zap.Logger, opts ...Option) *Program {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Program{
		id:       ProgramID,
		runtime:  runtime,
		tokens:   tokens,
		registry: registry,
		params:   DefaultCollectionParams(),
		logger:   logger.Named("minter"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ID returns the program address this instance operates as.
func (p *Program) ID() solana.PublicKey { return p.id }

// Initialize creates the configuration record. The caller becomes the
// authority, the master mint is fixed for the life of the deployment, prices
// start at the defaults, and the counter starts at zero. A second call fails
// with ErrAlreadyInitialized and changes nothing.
func (p *Program) Initialize(ctx context.Context, authority, masterMint solana.PublicKey) error {
	configAddr, _, err := ConfigAddress(p.id)
	if err != nil {
		return fmt.Errorf("derive config address: %w", err)
	}
	vaultAddr, _, err := VaultAddress(p.id)
	if err != nil {
		return fmt.Errorf("derive vault address: %w", err)
	}

	err = p.runtime.Execute(ctx, []solana.PublicKey{authority}, func(tx *ledger.Tx) error {
		if _, ok := tx.Load(configAddr); ok {
			return ErrAlreadyInitialized
		}
		if _, err := tx.AuthorizeSeed(configAuthority(p.id)); err != nil {
			return err
		}
		if err := tx.CreateAccount(authority, configAddr, ConfigAccountSize, p.id); err != nil {
			return err
		}
		cfg := Config{
			Authority:       authority,
			MasterMint:      masterMint,
			MintPrice:       DefaultMintPrice,
			DiscountedPrice: DefaultDiscountedPrice,
			PaymentVault:    vaultAddr,
		}
		return p.storeConfig(tx, configAddr, cfg)
	})
	if err != nil {
		return err
	}

	p.logger.Info("minter initialized",
		zap.String("authority", authority.String()),
		zap.String("master_mint", masterMint.String()),
		zap.Uint64("mint_price", DefaultMintPrice),
		zap.Uint64("discounted_price", DefaultDiscountedPrice),
		zap.String("payment_vault", vaultAddr.String()))
	return nil
}

// UpdatePricing overwrites the supplied price tiers. nil leaves a tier
// untouched. Authority-gated.
func (p *Program) UpdatePricing(ctx context.Context, authority solana.PublicKey, newStandard, newDiscounted *uint64) error {
	configAddr, _, err := ConfigAddress(p.id)
	if err != nil {
		return fmt.Errorf("derive config address: %w", err)
	}

	return p.runtime.Execute(ctx, []solana.PublicKey{authority}, func(tx *ledger.Tx) error {
		cfg, err := p.loadConfig(tx, configAddr)
		if err != nil {
			return err
		}
		if !cfg.Authority.Equals(authority) || !tx.Signed(authority) {
			return ErrUnauthorized
		}
		if newStandard != nil {
			cfg.MintPrice = *newStandard
			p.logger.Info("standard price updated", zap.Uint64("lamports", *newStandard))
		}
		if newDiscounted != nil {
			cfg.DiscountedPrice = *newDiscounted
			p.logger.Info("discounted price updated", zap.Uint64("lamports", *newDiscounted))
		}
		return p.storeConfig(tx, configAddr, cfg)
	})
}

// Withdraw moves lamports from the payment vault to the authority. The
// vault has no key; the transfer is authorized by presenting its seed
// material. Fails if the remaining vault balance cannot keep the account
// alive.
func (p *Program) Withdraw(ctx context.Context, authority solana.PublicKey, amount uint64) error {
	configAddr, _, err := ConfigAddress(p.id)
	if err != nil {
		return fmt.Errorf("derive config address: %w", err)
	}

	err = p.runtime.Execute(ctx, []solana.PublicKey{authority}, func(tx *ledger.Tx) error {
		cfg, err := p.loadConfig(tx, configAddr)
		if err != nil {
			return err
		}
		if !cfg.Authority.Equals(authority) || !tx.Signed(authority) {
			return ErrUnauthorized
		}
		vaultAddr, err := tx.AuthorizeSeed(vaultAuthority(p.id))
		if err != nil {
			return err
		}
		return tx.Transfer(vaultAddr, authority, amount)
	})
	if err != nil {
		return err
	}

	p.logger.Info("withdrawn from vault",
		zap.Uint64("lamports", amount),
		zap.String("authority", authority.String()))
	return nil
}

// ReadConfig returns the committed configuration record, for observers.
func (p *Program) ReadConfig() (Config, error) {
	configAddr, _, err := ConfigAddress(p.id)
	if err != nil {
		return Config{}, err
	}
	acc, ok := p.runtime.Account(configAddr)
	if !ok {
		return Config{}, ErrNotInitialized
	}
	return DecodeConfig(acc.Data)
}

func (p *Program) loadConfig(tx *ledger.Tx, configAddr solana.PublicKey) (Config, error) {
	acc, ok := tx.Load(configAddr)
	if !ok {
		return Config{}, ErrNotInitialized
	}
	cfg, err := DecodeConfig(acc.Data)
	if err != nil {
		return Config{}, errors.Join(ErrNotInitialized, err)
	}
	return cfg, nil
}

func (p *Program) storeConfig(tx *ledger.Tx, configAddr solana.PublicKey, cfg Config) error {
	acc, ok := tx.Load(configAddr)
	if !ok {
		return ErrNotInitialized
	}
	data, err := cfg.Encode()
	if err != nil {
		return err
	}
	acc.Data = data
	tx.Store(configAddr, acc)
	return nil
}
