package minter_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/founders-mint/internal/ledger"
	"github.com/rovshanmuradov/founders-mint/internal/metadata"
	"github.com/rovshanmuradov/founders-mint/internal/minter"
	"github.com/rovshanmuradov/founders-mint/internal/token"
)

type fixture struct {
	runtime    *ledger.Runtime
	program    *minter.Program
	authority  solana.PublicKey
	masterMint solana.PublicKey
	vault      solana.PublicKey
}

func newKey(t *testing.T) solana.PublicKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key.PublicKey()
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rt := ledger.NewRuntime(nil)
	tokens := token.New(nil)
	registry := metadata.NewRegistry(tokens, nil)
	program := minter.New(rt, tokens, registry, nil)

	vault, _, err := minter.VaultAddress(program.ID())
	require.NoError(t, err)

	f := &fixture{
		runtime:    rt,
		program:    program,
		authority:  newKey(t),
		masterMint: newKey(t),
		vault:      vault,
	}
	rt.Fund(f.authority, 10_000_000_000)
	return f
}

func (f *fixture) initialize(t *testing.T) {
	t.Helper()
	require.NoError(t, f.program.Initialize(context.Background(), f.authority, f.masterMint))
}

func (f *fixture) fundedCaller(t *testing.T) solana.PublicKey {
	t.Helper()
	caller := newKey(t)
	f.runtime.Fund(caller, 10_000_000_000)
	return caller
}

func TestInitializeSetsDefaults(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	cfg, err := f.program.ReadConfig()
	require.NoError(t, err)
	assert.Equal(t, f.authority, cfg.Authority)
	assert.Equal(t, f.masterMint, cfg.MasterMint)
	assert.Equal(t, uint64(minter.DefaultMintPrice), cfg.MintPrice)
	assert.Equal(t, uint64(minter.DefaultDiscountedPrice), cfg.DiscountedPrice)
	assert.Equal(t, uint64(0), cfg.TotalMinted)
	assert.Equal(t, f.vault, cfg.PaymentVault)
}

func TestInitializeTwiceFails(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	other := f.fundedCaller(t)
	err := f.program.Initialize(context.Background(), other, newKey(t))
	require.ErrorIs(t, err, minter.ErrAlreadyInitialized)

	// The existing record is untouched.
	cfg, err := f.program.ReadConfig()
	require.NoError(t, err)
	assert.Equal(t, f.authority, cfg.Authority)
	assert.Equal(t, f.masterMint, cfg.MasterMint)
}

func TestMintBeforeInitializeFails(t *testing.T) {
	f := newFixture(t)
	caller := f.fundedCaller(t)

	_, err := f.program.MintEdition(context.Background(), caller, newKey(t))
	assert.ErrorIs(t, err, minter.ErrNotInitialized)
}

func TestMintStandard(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	caller := f.fundedCaller(t)
	callerBefore := f.runtime.Balance(caller)
	vaultBefore := f.runtime.Balance(f.vault)

	receipt, err := f.program.MintEdition(context.Background(), caller, newKey(t))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), receipt.Sequence)
	assert.Equal(t, "AMMo Founder #1", receipt.Name)
	assert.Equal(t, uint64(minter.DefaultMintPrice), receipt.Price)

	cfg, err := f.program.ReadConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cfg.TotalMinted)

	// The vault is credited exactly the price.
	assert.Equal(t, vaultBefore+minter.DefaultMintPrice, f.runtime.Balance(f.vault))

	// The caller paid the price plus rent for the four created records.
	var rent uint64
	for _, addr := range []solana.PublicKey{receipt.Mint, receipt.Holding, receipt.Metadata, receipt.Edition} {
		acc, ok := f.runtime.Account(addr)
		require.True(t, ok, "account %s should exist", addr)
		rent += acc.Lamports
	}
	assert.Equal(t, callerBefore-minter.DefaultMintPrice-rent, f.runtime.Balance(caller))

	// The unit: supply 1, zero decimals, caller holds it and controls it.
	mintRec, err := token.LoadMintState(f.runtime, receipt.Mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), mintRec.Supply)
	assert.Equal(t, uint8(0), mintRec.Decimals)
	assert.Equal(t, caller, mintRec.MintAuthority)
	require.NotNil(t, mintRec.FreezeAuthority)
	assert.Equal(t, caller, *mintRec.FreezeAuthority)

	holding, err := token.LoadHoldingState(f.runtime, receipt.Holding)
	require.NoError(t, err)
	assert.Equal(t, caller, holding.Owner)
	assert.Equal(t, uint64(1), holding.Amount)

	// The metadata record carries the collection identity.
	md, err := metadata.LoadMetadataState(f.runtime, receipt.Mint)
	require.NoError(t, err)
	assert.Equal(t, "AMMo Founder #1", md.Name)
	assert.Equal(t, "FAMMo", md.Symbol)
	assert.Equal(t, uint16(500), md.SellerFeeBasisPoints)
	assert.Equal(t, caller, md.UpdateAuthority)
	assert.True(t, md.IsMutable)
	require.Len(t, md.Creators, 1)
	assert.Equal(t, metadata.Creator{Address: caller, Verified: true, Share: 100}, md.Creators[0])
	require.NotNil(t, md.Collection)
	assert.False(t, md.Collection.Verified)
	assert.Equal(t, f.masterMint, md.Collection.Key)

	// The edition cap is terminal.
	ed, err := metadata.LoadEditionState(f.runtime, receipt.Mint)
	require.NoError(t, err)
	require.NotNil(t, ed.MaxSupply)
	assert.Equal(t, uint64(0), *ed.MaxSupply)
}

func TestMintDiscountedHalfPrice(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	first := f.fundedCaller(t)
	_, err := f.program.MintEdition(context.Background(), first, newKey(t))
	require.NoError(t, err)

	second := f.fundedCaller(t)
	vaultBefore := f.runtime.Balance(f.vault)

	receipt, err := f.program.MintDiscounted(context.Background(), second, newKey(t))
	require.NoError(t, err)

	assert.Equal(t, uint64(2), receipt.Sequence)
	assert.Equal(t, "AMMo Founder #2", receipt.Name)
	assert.Equal(t, uint64(minter.DefaultDiscountedPrice), receipt.Price)
	assert.Equal(t, vaultBefore+minter.DefaultDiscountedPrice, f.runtime.Balance(f.vault))

	cfg, err := f.program.ReadConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), cfg.TotalMinted)
}

func TestSequenceNumbersAreSequential(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	for n := uint64(1); n <= 5; n++ {
		caller := f.fundedCaller(t)
		receipt, err := f.program.MintEdition(context.Background(), caller, newKey(t))
		require.NoError(t, err)
		assert.Equal(t, n, receipt.Sequence)
		assert.Equal(t, fmt.Sprintf("AMMo Founder #%d", n), receipt.Name)
	}
}

func TestMintInsufficientFundsRollsBack(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	caller := newKey(t)
	f.runtime.Fund(caller, 1_000_000) // far below the price

	editionMint := newKey(t)
	_, err := f.program.MintEdition(context.Background(), caller, editionMint)
	require.ErrorIs(t, err, minter.ErrInsufficientFunds)

	assert.Equal(t, uint64(1_000_000), f.runtime.Balance(caller))
	assert.Equal(t, uint64(0), f.runtime.Balance(f.vault))

	cfg, err := f.program.ReadConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cfg.TotalMinted)

	_, ok := f.runtime.Account(editionMint)
	assert.False(t, ok)
}

func TestMintCollaboratorFailureRollsBackPayment(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	caller := f.fundedCaller(t)
	editionMint := newKey(t)

	// Occupy the holding address so unit creation fails after the payment
	// step has already run inside the transaction.
	holding, _, err := token.HoldingAddress(caller, editionMint)
	require.NoError(t, err)
	f.runtime.Fund(holding, 1)

	callerBefore := f.runtime.Balance(caller)
	_, err = f.program.MintEdition(context.Background(), caller, editionMint)
	require.Error(t, err)

	var collabErr *minter.CollaboratorError
	require.ErrorAs(t, err, &collabErr)
	assert.Equal(t, "token-ledger", collabErr.Collaborator)

	// The whole operation is gone, payment included.
	assert.Equal(t, callerBefore, f.runtime.Balance(caller))
	assert.Equal(t, uint64(0), f.runtime.Balance(f.vault))

	cfg, err := f.program.ReadConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cfg.TotalMinted)

	_, ok := f.runtime.Account(editionMint)
	assert.False(t, ok)
}

func TestMintMetadataFailureRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	caller := f.fundedCaller(t)
	editionMint := newKey(t)

	// Occupy the metadata record address so attachment fails after the
	// payment, token-type, holding, and issuance steps have all run.
	metaAddr, _, err := metadata.MetadataAddress(editionMint)
	require.NoError(t, err)
	f.runtime.Fund(metaAddr, 1)

	callerBefore := f.runtime.Balance(caller)
	_, err = f.program.MintEdition(context.Background(), caller, editionMint)
	require.Error(t, err)

	var collabErr *minter.CollaboratorError
	require.ErrorAs(t, err, &collabErr)
	assert.Equal(t, "metadata-registry", collabErr.Collaborator)
	assert.Equal(t, "create metadata", collabErr.Op)

	// Six completed steps are gone along with the failed one.
	assert.Equal(t, callerBefore, f.runtime.Balance(caller))
	assert.Equal(t, uint64(0), f.runtime.Balance(f.vault))

	cfg, err := f.program.ReadConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cfg.TotalMinted)

	_, ok := f.runtime.Account(editionMint)
	assert.False(t, ok)
	holding, _, err := token.HoldingAddress(caller, editionMint)
	require.NoError(t, err)
	_, ok = f.runtime.Account(holding)
	assert.False(t, ok)
}

func TestMintUsesCollectionParams(t *testing.T) {
	rt := ledger.NewRuntime(nil)
	tokens := token.New(nil)
	registry := metadata.NewRegistry(tokens, nil)
	params := minter.CollectionParams{
		NamePrefix: "Launch Pass",
		Symbol:     "PASS",
		URI:        "https://example.com/pass.json",
		RoyaltyBps: 250,
	}
	program := minter.New(rt, tokens, registry, nil, minter.WithCollectionParams(params))

	authority := newKey(t)
	rt.Fund(authority, 10_000_000_000)
	require.NoError(t, program.Initialize(context.Background(), authority, newKey(t)))

	caller := newKey(t)
	rt.Fund(caller, 10_000_000_000)
	receipt, err := program.MintEdition(context.Background(), caller, newKey(t))
	require.NoError(t, err)

	assert.Equal(t, "Launch Pass #1", receipt.Name)
	assert.Equal(t, "Launch Pass #7", params.EditionName(7))

	md, err := metadata.LoadMetadataState(rt, receipt.Mint)
	require.NoError(t, err)
	assert.Equal(t, "Launch Pass #1", md.Name)
	assert.Equal(t, "PASS", md.Symbol)
	assert.Equal(t, "https://example.com/pass.json", md.URI)
	assert.Equal(t, uint16(250), md.SellerFeeBasisPoints)
}

func TestUpdatePricing(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	newStandard := uint64(300_000_000)
	require.NoError(t, f.program.UpdatePricing(context.Background(), f.authority, &newStandard, nil))

	cfg, err := f.program.ReadConfig()
	require.NoError(t, err)
	assert.Equal(t, newStandard, cfg.MintPrice)
	assert.Equal(t, uint64(minter.DefaultDiscountedPrice), cfg.DiscountedPrice)

	// The new tier applies to the next mint.
	caller := f.fundedCaller(t)
	receipt, err := f.program.MintEdition(context.Background(), caller, newKey(t))
	require.NoError(t, err)
	assert.Equal(t, newStandard, receipt.Price)
}

func TestUpdatePricingUnauthorized(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	intruder := f.fundedCaller(t)
	price := uint64(1)
	err := f.program.UpdatePricing(context.Background(), intruder, &price, &price)
	require.ErrorIs(t, err, minter.ErrUnauthorized)

	cfg, err := f.program.ReadConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(minter.DefaultMintPrice), cfg.MintPrice)
	assert.Equal(t, uint64(minter.DefaultDiscountedPrice), cfg.DiscountedPrice)
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	caller := f.fundedCaller(t)
	_, err := f.program.MintEdition(context.Background(), caller, newKey(t))
	require.NoError(t, err)

	authorityBefore := f.runtime.Balance(f.authority)
	amount := uint64(50_000_000)
	require.NoError(t, f.program.Withdraw(context.Background(), f.authority, amount))

	assert.Equal(t, authorityBefore+amount, f.runtime.Balance(f.authority))
	assert.Equal(t, uint64(minter.DefaultMintPrice)-amount, f.runtime.Balance(f.vault))
}

func TestWithdrawUnauthorized(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	caller := f.fundedCaller(t)
	_, err := f.program.MintEdition(context.Background(), caller, newKey(t))
	require.NoError(t, err)

	intruder := f.fundedCaller(t)
	vaultBefore := f.runtime.Balance(f.vault)
	err = f.program.Withdraw(context.Background(), intruder, 1)
	require.ErrorIs(t, err, minter.ErrUnauthorized)
	assert.Equal(t, vaultBefore, f.runtime.Balance(f.vault))
}

func TestWithdrawMoreThanBalanceFails(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	caller := f.fundedCaller(t)
	_, err := f.program.MintEdition(context.Background(), caller, newKey(t))
	require.NoError(t, err)

	vaultBefore := f.runtime.Balance(f.vault)
	err = f.program.Withdraw(context.Background(), f.authority, vaultBefore+1)
	require.ErrorIs(t, err, minter.ErrInsufficientFunds)
	assert.Equal(t, vaultBefore, f.runtime.Balance(f.vault))
}

func TestConcurrentMintsSerialize(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	const n = 8
	callers := make([]solana.PublicKey, n)
	mints := make([]solana.PublicKey, n)
	for i := range callers {
		callers[i] = f.fundedCaller(t)
		mints[i] = newKey(t)
	}

	receipts := make([]*minter.MintReceipt, n)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			r, err := f.program.MintEdition(ctx, callers[i], mints[i])
			receipts[i] = r
			return err
		})
	}
	require.NoError(t, g.Wait())

	cfg, err := f.program.ReadConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(n), cfg.TotalMinted)

	seen := make(map[uint64]bool, n)
	for _, r := range receipts {
		require.NotNil(t, r)
		assert.False(t, seen[r.Sequence], "duplicate sequence %d", r.Sequence)
		seen[r.Sequence] = true
	}
	assert.Equal(t, uint64(n*minter.DefaultMintPrice), f.runtime.Balance(f.vault))
}
