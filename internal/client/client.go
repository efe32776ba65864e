// =============================
// File: internal/client/client.go
// =============================

// Package client drives the deployed issuance program over RPC: it derives
// the account set each entry point needs, hand-builds the instructions, and
// submits signed transactions with retry.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/founders-mint/internal/minter"
	"github.com/rovshanmuradov/founders-mint/internal/wallet"
)

// Client wraps the RPC connection with the program-specific operations.
type Client struct {
	rpc       *rpc.Client
	programID solana.PublicKey
	logger    *zap.Logger
	maxTries  uint
}

func New(endpoint string, programID solana.PublicKey, retries int, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retries < 1 {
		retries = 1
	}
	return &Client{
		rpc:       rpc.New(endpoint),
		programID: programID,
		logger:    logger.Named("client"),
		maxTries:  uint(retries),
	}
}

// Initialize submits the initialize instruction signed by the authority
// wallet.
func (c *Client) Initialize(ctx context.Context, authority *wallet.Wallet, masterMint solana.PublicKey) (solana.Signature, error) {
	ix, err := BuildInitializeInstruction(c.programID, authority.PublicKey, masterMint)
	if err != nil {
		return solana.Signature{}, err
	}
	return c.submit(ctx, []solana.Instruction{ix}, authority)
}

// MintEdition mints one unit at the standard price. A fresh mint keypair is
// generated per call and co-signs the transaction.
func (c *Client) MintEdition(ctx context.Context, caller *wallet.Wallet, masterMint solana.PublicKey) (solana.Signature, solana.PublicKey, error) {
	return c.mint(ctx, caller, masterMint, false)
}

// MintDiscounted mints one unit at the discounted price.
func (c *Client) MintDiscounted(ctx context.Context, caller *wallet.Wallet, masterMint solana.PublicKey) (solana.Signature, solana.PublicKey, error) {
	return c.mint(ctx, caller, masterMint, true)
}

func (c *Client) mint(ctx context.Context, caller *wallet.Wallet, masterMint solana.PublicKey, discounted bool) (solana.Signature, solana.PublicKey, error) {
	editionKey, err := solana.NewRandomPrivateKey()
	if err != nil {
		return solana.Signature{}, solana.PublicKey{}, fmt.Errorf("generate edition mint key: %w", err)
	}
	editionMint := editionKey.PublicKey()

	accs, err := DeriveMintAccounts(c.programID, caller.PublicKey, masterMint, editionMint)
	if err != nil {
		return solana.Signature{}, solana.PublicKey{}, err
	}

	var ix solana.Instruction
	if discounted {
		ix = BuildMintDiscountedInstruction(c.programID, accs)
	} else {
		ix = BuildMintEditionInstruction(c.programID, accs)
	}

	sig, err := c.submit(ctx, []solana.Instruction{ix}, caller, editionKey)
	if err != nil {
		return solana.Signature{}, solana.PublicKey{}, err
	}
	return sig, editionMint, nil
}

// UpdatePricing submits an update_pricing call; nil tiers stay unchanged.
func (c *Client) UpdatePricing(ctx context.Context, authority *wallet.Wallet, newStandard, newDiscounted *uint64) (solana.Signature, error) {
	ix, err := BuildUpdatePricingInstruction(c.programID, authority.PublicKey, newStandard, newDiscounted)
	if err != nil {
		return solana.Signature{}, err
	}
	return c.submit(ctx, []solana.Instruction{ix}, authority)
}

// Withdraw submits a withdraw call for the given lamport amount.
func (c *Client) Withdraw(ctx context.Context, authority *wallet.Wallet, amount uint64) (solana.Signature, error) {
	ix, err := BuildWithdrawInstruction(c.programID, authority.PublicKey, amount)
	if err != nil {
		return solana.Signature{}, err
	}
	return c.submit(ctx, []solana.Instruction{ix}, authority)
}

// FetchConfig reads and decodes the on-chain configuration record.
func (c *Client) FetchConfig(ctx context.Context) (minter.Config, error) {
	configAddr, _, err := minter.ConfigAddress(c.programID)
	if err != nil {
		return minter.Config{}, err
	}
	info, err := c.rpc.GetAccountInfo(ctx, configAddr)
	if err != nil {
		return minter.Config{}, fmt.Errorf("get config account: %w", err)
	}
	if info == nil || info.Value == nil {
		return minter.Config{}, fmt.Errorf("config account not found: %s", configAddr)
	}
	if !info.Value.Owner.Equals(c.programID) {
		return minter.Config{}, fmt.Errorf("config account has incorrect owner: %s", info.Value.Owner)
	}
	return minter.DecodeConfig(info.Value.Data.GetBinary())
}

// Balance returns the lamport balance of addr at confirmed commitment.
func (c *Client) Balance(ctx context.Context, addr solana.PublicKey) (uint64, error) {
	out, err := c.rpc.GetBalance(ctx, addr, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("get balance of %s: %w", addr, err)
	}
	return out.Value, nil
}

// VaultBalance returns the payment vault's lamport balance.
func (c *Client) VaultBalance(ctx context.Context) (uint64, error) {
	vaultAddr, _, err := minter.VaultAddress(c.programID)
	if err != nil {
		return 0, err
	}
	return c.Balance(ctx, vaultAddr)
}

// submit assembles, signs, and sends a transaction, retrying transient send
// failures with exponential backoff.
func (c *Client) submit(ctx context.Context, instructions []solana.Instruction, payer *wallet.Wallet, extraSigners ...solana.PrivateKey) (solana.Signature, error) {
	blockhash, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		blockhash.Value.Blockhash,
		solana.TransactionPayer(payer.PublicKey),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}

	if err := payer.SignTransaction(tx, extraSigners...); err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := backoff.Retry(ctx, func() (solana.Signature, error) {
		s, sendErr := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
			PreflightCommitment: rpc.CommitmentConfirmed,
		})
		if sendErr != nil {
			c.logger.Warn("retrying transaction send", zap.Error(sendErr))
			return solana.Signature{}, sendErr
		}
		return s, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(c.maxTries))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}

	c.logger.Info("transaction sent", zap.String("signature", sig.String()))
	return sig, c.awaitConfirmation(ctx, sig)
}

func (c *Client) awaitConfirmation(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			res, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
			if err != nil || res == nil || len(res.Value) == 0 || res.Value[0] == nil {
				continue
			}
			status := res.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed: %v", sig, status.Err)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil
			}
		}
	}
}
