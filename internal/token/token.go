// ===========================
// File: internal/token/token.go
// ===========================

// Package token is the token-ledger collaborator: it creates token-type
// records (mints), associated holding accounts, and issues units into them.
// All of its operations run inside the caller's ledger transaction, so a
// failure in any of them rolls the whole enclosing operation back.
package token

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/founders-mint/internal/ledger"
)

var (
	// ProgramID is the token-ledger program address. Accounts it creates are
	// assigned to it, matching the on-chain SPL token program.
	ProgramID = solana.TokenProgramID

	// AssociatedProgramID derives canonical holding-account addresses.
	AssociatedProgramID = solana.SPLAssociatedTokenAccountProgramID
)

const (
	// MintAccountSize is the serialized size of a mint record.
	MintAccountSize = 82
	// HoldingAccountSize is the serialized size of a holding record.
	HoldingAccountSize = 165
)

// Mint is a token-type record: who may issue units, who may freeze holdings,
// how many units exist, and the decimal scale.
type Mint struct {
	MintAuthority   solana.PublicKey
	FreezeAuthority *solana.PublicKey `bin:"optional"`
	Supply          uint64
	Decimals        uint8
	Initialized     bool
}

// Holding binds units of one mint to one owner.
type Holding struct {
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64
}

// HoldingAddress returns the canonical holding-account address for an owner
// and mint pair. Deterministic, so callers and observers derive the same
// address independently.
func HoldingAddress(owner, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindAssociatedTokenAddress(owner, mint)
}

// Program executes token-ledger operations against a transaction.
type Program struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Program {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Program{logger: logger.Named("token")}
}

// CreateMint allocates and initializes a new token-type account at mint.
// The payer funds rent; mintAuthority (and optionally freezeAuthority)
// control the new type afterwards. The mint address must be a transaction
// signer, the same as any fresh keypair account.
func (p *Program) CreateMint(tx *ledger.Tx, payer, mint, mintAuthority solana.PublicKey, freezeAuthority *solana.PublicKey, decimals uint8) error {
	if err := tx.CreateAccount(payer, mint, MintAccountSize, ProgramID); err != nil {
		return fmt.Errorf("create mint account: %w", err)
	}
	record := Mint{
		MintAuthority:   mintAuthority,
		FreezeAuthority: freezeAuthority,
		Decimals:        decimals,
		Initialized:     true,
	}
	if err := p.storeMint(tx, mint, record); err != nil {
		return err
	}
	p.logger.Debug("mint created",
		zap.String("mint", mint.String()),
		zap.String("authority", mintAuthority.String()),
		zap.Uint8("decimals", decimals))
	return nil
}

// CreateHolding allocates the associated holding account for owner and mint
// and returns its address.
func (p *Program) CreateHolding(tx *ledger.Tx, payer, owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := HoldingAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive holding address: %w", err)
	}
	// The holding address is program-derived; admit it via seed proof so
	// CreateAccount sees it as authorized.
	if _, err := tx.AuthorizeSeed(ledger.SeedAuthority{
		ProgramID: AssociatedProgramID,
		Seeds:     [][]byte{owner.Bytes(), ProgramID.Bytes(), mint.Bytes()},
	}); err != nil {
		return solana.PublicKey{}, err
	}
	if err := tx.CreateAccount(payer, addr, HoldingAccountSize, ProgramID); err != nil {
		return solana.PublicKey{}, fmt.Errorf("create holding account: %w", err)
	}
	if err := p.storeHolding(tx, addr, Holding{Mint: mint, Owner: owner}); err != nil {
		return solana.PublicKey{}, err
	}
	p.logger.Debug("holding created",
		zap.String("holding", addr.String()),
		zap.String("owner", owner.String()),
		zap.String("mint", mint.String()))
	return addr, nil
}

// MintTo issues amount units of mint into the holding account. The mint's
// authority must have signed the transaction.
func (p *Program) MintTo(tx *ledger.Tx, mint, holding, authority solana.PublicKey, amount uint64) error {
	record, err := p.LoadMint(tx, mint)
	if err != nil {
		return err
	}
	if !record.MintAuthority.Equals(authority) {
		return fmt.Errorf("mint %s: authority mismatch (have %s, want %s)",
			mint, authority, record.MintAuthority)
	}
	if !tx.Signed(authority) {
		return fmt.Errorf("mint to %s: %w", holding, ledger.ErrMissingSignature)
	}

	h, err := p.loadHolding(tx, holding)
	if err != nil {
		return err
	}
	if !h.Mint.Equals(mint) {
		return fmt.Errorf("holding %s is for mint %s, not %s", holding, h.Mint, mint)
	}

	record.Supply += amount
	h.Amount += amount
	if err := p.storeMint(tx, mint, record); err != nil {
		return err
	}
	return p.storeHolding(tx, holding, h)
}

// LoadMint decodes the mint record at addr from the transaction's view.
func (p *Program) LoadMint(tx *ledger.Tx, addr solana.PublicKey) (Mint, error) {
	acc, ok := tx.Load(addr)
	if !ok {
		return Mint{}, fmt.Errorf("mint %s does not exist", addr)
	}
	return decodeMint(acc.Data)
}

// LoadHoldingState decodes a holding record from committed runtime state,
// for observers outside any transaction.
func LoadHoldingState(rt *ledger.Runtime, addr solana.PublicKey) (Holding, error) {
	acc, ok := rt.Account(addr)
	if !ok {
		return Holding{}, fmt.Errorf("holding %s does not exist", addr)
	}
	var h Holding
	if err := bin.NewBorshDecoder(acc.Data).Decode(&h); err != nil {
		return Holding{}, fmt.Errorf("decode holding %s: %w", addr, err)
	}
	return h, nil
}

// LoadMintState decodes a mint record from committed runtime state.
func LoadMintState(rt *ledger.Runtime, addr solana.PublicKey) (Mint, error) {
	acc, ok := rt.Account(addr)
	if !ok {
		return Mint{}, fmt.Errorf("mint %s does not exist", addr)
	}
	return decodeMint(acc.Data)
}

func (p *Program) loadHolding(tx *ledger.Tx, addr solana.PublicKey) (Holding, error) {
	acc, ok := tx.Load(addr)
	if !ok {
		return Holding{}, fmt.Errorf("holding %s does not exist", addr)
	}
	var h Holding
	if err := bin.NewBorshDecoder(acc.Data).Decode(&h); err != nil {
		return Holding{}, fmt.Errorf("decode holding %s: %w", addr, err)
	}
	return h, nil
}

func (p *Program) storeMint(tx *ledger.Tx, addr solana.PublicKey, m Mint) error {
	acc, ok := tx.Load(addr)
	if !ok {
		return fmt.Errorf("mint %s does not exist", addr)
	}
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(m); err != nil {
		return fmt.Errorf("encode mint %s: %w", addr, err)
	}
	acc.Data = padTo(buf.Bytes(), MintAccountSize)
	tx.Store(addr, acc)
	return nil
}

func (p *Program) storeHolding(tx *ledger.Tx, addr solana.PublicKey, h Holding) error {
	acc, ok := tx.Load(addr)
	if !ok {
		return fmt.Errorf("holding %s does not exist", addr)
	}
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(h); err != nil {
		return fmt.Errorf("encode holding %s: %w", addr, err)
	}
	acc.Data = padTo(buf.Bytes(), HoldingAccountSize)
	tx.Store(addr, acc)
	return nil
}

func decodeMint(data []byte) (Mint, error) {
	var m Mint
	if err := bin.NewBorshDecoder(data).Decode(&m); err != nil {
		return Mint{}, fmt.Errorf("decode mint: %w", err)
	}
	if !m.Initialized {
		return Mint{}, fmt.Errorf("mint is not initialized")
	}
	return m, nil
}

func padTo(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}
	out := make([]byte, size)
	copy(out, b)
	return out
}
