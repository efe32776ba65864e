// =================================
// File: internal/metadata/metadata.go
// =================================

// Package metadata is the metadata-registry collaborator: it attaches
// descriptive records and edition caps to token types created by the token
// ledger. Record addresses are derived from the mint, so every token type
// has exactly one metadata record and one edition record.
package metadata

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/founders-mint/internal/ledger"
	"github.com/rovshanmuradov/founders-mint/internal/token"
)

// ProgramID is the metadata-registry program address.
var ProgramID = solana.TokenMetadataProgramID

const metadataSeed = "metadata"
const editionSeed = "edition"

// Creator is one entry of a record's creator list.
type Creator struct {
	Address  solana.PublicKey
	Verified bool
	Share    uint8
}

// Collection is a back-reference from a minted unit to its collection's
// master mint. It starts unverified; only the collection authority may flip
// it.
type Collection struct {
	Verified bool
	Key      solana.PublicKey
}

// Metadata is the descriptive record attached to a mint.
type Metadata struct {
	UpdateAuthority      solana.PublicKey
	Mint                 solana.PublicKey
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
	Collection           *Collection `bin:"optional"`
	IsMutable            bool
}

// MasterEdition caps how many further editions may ever be printed from a
// mint. MaxSupply of zero makes the unit terminal.
type MasterEdition struct {
	Supply    uint64
	MaxSupply *uint64 `bin:"optional"`
}

// MetadataAddress derives the metadata record address for a mint.
func MetadataAddress(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(metadataSeeds(mint), ProgramID)
}

// EditionAddress derives the edition record address for a mint.
func EditionAddress(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(editionSeeds(mint), ProgramID)
}

func metadataSeeds(mint solana.PublicKey) [][]byte {
	return [][]byte{[]byte(metadataSeed), ProgramID.Bytes(), mint.Bytes()}
}

func editionSeeds(mint solana.PublicKey) [][]byte {
	return [][]byte{[]byte(metadataSeed), ProgramID.Bytes(), mint.Bytes(), []byte(editionSeed)}
}

// Registry executes metadata operations against a transaction.
type Registry struct {
	tokens *token.Program
	logger *zap.Logger
}

func NewRegistry(tokens *token.Program, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{tokens: tokens, logger: logger.Named("metadata")}
}

// CreateMetadata attaches a descriptive record to md.Mint. The payer funds
// rent and the mint's authority must have signed the transaction.
func (r *Registry) CreateMetadata(tx *ledger.Tx, payer, mintAuthority solana.PublicKey, md Metadata) (solana.PublicKey, error) {
	m, err := r.tokens.LoadMint(tx, md.Mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if !m.MintAuthority.Equals(mintAuthority) || !tx.Signed(mintAuthority) {
		return solana.PublicKey{}, fmt.Errorf("metadata for %s: %w", md.Mint, ledger.ErrMissingSignature)
	}

	addr, err := r.createRecordAccount(tx, payer, metadataSeeds(md.Mint), encodedSize(&md))
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("create metadata account: %w", err)
	}
	if err := storeRecord(tx, addr, &md); err != nil {
		return solana.PublicKey{}, err
	}
	r.logger.Debug("metadata created",
		zap.String("mint", md.Mint.String()),
		zap.String("name", md.Name),
		zap.String("symbol", md.Symbol))
	return addr, nil
}

// CreateMasterEdition attaches an edition-cap record to mint. The registry
// requires the unit shape the cap is defined for: zero decimals and a supply
// of exactly one.
func (r *Registry) CreateMasterEdition(tx *ledger.Tx, payer, mintAuthority, mint solana.PublicKey, maxSupply *uint64) (solana.PublicKey, error) {
	m, err := r.tokens.LoadMint(tx, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if !m.MintAuthority.Equals(mintAuthority) || !tx.Signed(mintAuthority) {
		return solana.PublicKey{}, fmt.Errorf("edition for %s: %w", mint, ledger.ErrMissingSignature)
	}
	if m.Decimals != 0 || m.Supply != 1 {
		return solana.PublicKey{}, fmt.Errorf("edition for %s: mint must be a unique zero-decimal unit (decimals=%d supply=%d)",
			mint, m.Decimals, m.Supply)
	}
	if _, loadErr := r.loadMetadata(tx, mint); loadErr != nil {
		return solana.PublicKey{}, fmt.Errorf("edition for %s: %w", mint, loadErr)
	}

	ed := MasterEdition{MaxSupply: maxSupply}
	addr, err := r.createRecordAccount(tx, payer, editionSeeds(mint), encodedSize(&ed))
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("create edition account: %w", err)
	}
	if err := storeRecord(tx, addr, &ed); err != nil {
		return solana.PublicKey{}, err
	}
	r.logger.Debug("master edition created", zap.String("mint", mint.String()))
	return addr, nil
}

// VerifyCollection flips an unverified collection back-reference to
// verified. Only the update authority of the collection's master mint
// metadata may do this, and it must sign.
func (r *Registry) VerifyCollection(tx *ledger.Tx, authority, mint solana.PublicKey) error {
	md, err := r.loadMetadata(tx, mint)
	if err != nil {
		return err
	}
	if md.Collection == nil {
		return fmt.Errorf("metadata for %s has no collection reference", mint)
	}
	masterMD, err := r.loadMetadata(tx, md.Collection.Key)
	if err != nil {
		return fmt.Errorf("collection master %s: %w", md.Collection.Key, err)
	}
	if !masterMD.UpdateAuthority.Equals(authority) || !tx.Signed(authority) {
		return fmt.Errorf("verify collection on %s: %w", mint, ledger.ErrMissingSignature)
	}
	md.Collection.Verified = true
	addr, _, err := MetadataAddress(mint)
	if err != nil {
		return err
	}
	return storeRecord(tx, addr, &md)
}

// LoadMetadataState decodes the metadata record for mint from committed
// runtime state.
func LoadMetadataState(rt *ledger.Runtime, mint solana.PublicKey) (Metadata, error) {
	addr, _, err := MetadataAddress(mint)
	if err != nil {
		return Metadata{}, err
	}
	acc, ok := rt.Account(addr)
	if !ok {
		return Metadata{}, fmt.Errorf("metadata for %s does not exist", mint)
	}
	var md Metadata
	if err := bin.NewBorshDecoder(acc.Data).Decode(&md); err != nil {
		return Metadata{}, fmt.Errorf("decode metadata for %s: %w", mint, err)
	}
	return md, nil
}

// LoadEditionState decodes the edition record for mint from committed
// runtime state.
func LoadEditionState(rt *ledger.Runtime, mint solana.PublicKey) (MasterEdition, error) {
	addr, _, err := EditionAddress(mint)
	if err != nil {
		return MasterEdition{}, err
	}
	acc, ok := rt.Account(addr)
	if !ok {
		return MasterEdition{}, fmt.Errorf("edition for %s does not exist", mint)
	}
	var ed MasterEdition
	if err := bin.NewBorshDecoder(acc.Data).Decode(&ed); err != nil {
		return MasterEdition{}, fmt.Errorf("decode edition for %s: %w", mint, err)
	}
	return ed, nil
}

func (r *Registry) loadMetadata(tx *ledger.Tx, mint solana.PublicKey) (Metadata, error) {
	addr, _, err := MetadataAddress(mint)
	if err != nil {
		return Metadata{}, err
	}
	acc, ok := tx.Load(addr)
	if !ok {
		return Metadata{}, fmt.Errorf("metadata for %s does not exist", mint)
	}
	var md Metadata
	if err := bin.NewBorshDecoder(acc.Data).Decode(&md); err != nil {
		return Metadata{}, fmt.Errorf("decode metadata for %s: %w", mint, err)
	}
	return md, nil
}

func (r *Registry) createRecordAccount(tx *ledger.Tx, payer solana.PublicKey, seeds [][]byte, space int) (solana.PublicKey, error) {
	addr, err := tx.AuthorizeSeed(ledger.SeedAuthority{ProgramID: ProgramID, Seeds: seeds})
	if err != nil {
		return solana.PublicKey{}, err
	}
	if err := tx.CreateAccount(payer, addr, space, ProgramID); err != nil {
		return solana.PublicKey{}, err
	}
	return addr, nil
}

func storeRecord(tx *ledger.Tx, addr solana.PublicKey, v interface{}) error {
	acc, ok := tx.Load(addr)
	if !ok {
		return fmt.Errorf("record %s does not exist", addr)
	}
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(v); err != nil {
		return fmt.Errorf("encode record %s: %w", addr, err)
	}
	acc.Data = buf.Bytes()
	tx.Store(addr, acc)
	return nil
}

func encodedSize(v interface{}) int {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(v); err != nil {
		return 0
	}
	return buf.Len()
}
