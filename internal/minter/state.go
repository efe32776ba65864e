// ============================
// File: internal/minter/state.go
// ============================
package minter

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Config is the singleton configuration record: the administrative
// authority, the collection's master mint, the two price tiers, the running
// mint counter, and the vault address (stored for convenience, always equal
// to the derived one).
type Config struct {
	Authority       solana.PublicKey
	MasterMint      solana.PublicKey
	MintPrice       uint64
	DiscountedPrice uint64
	TotalMinted     uint64
	PaymentVault    solana.PublicKey
}

// ConfigAccountSize is the fixed serialized size of the record:
// 8-byte discriminator, three pubkeys, three u64 counters.
const ConfigAccountSize = 8 + 32 + 32 + 8 + 8 + 8 + 32

// Default price tiers in lamports: 0.2 SOL standard, 0.1 SOL discounted.
const (
	DefaultMintPrice       = 200_000_000
	DefaultDiscountedPrice = 100_000_000
)

var configDiscriminator = accountDiscriminator("Config")

// accountDiscriminator computes the 8-byte tag that prefixes a named account
// record, the same derivation the on-chain build uses.
func accountDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// Encode serializes the record, discriminator first.
func (c *Config) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(configDiscriminator[:])
	if err := bin.NewBorshEncoder(buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	out := make([]byte, ConfigAccountSize)
	copy(out, buf.Bytes())
	return out, nil
}

// DecodeConfig parses a configuration record from raw account data,
// rejecting data that does not carry the Config discriminator.
func DecodeConfig(data []byte) (Config, error) {
	if len(data) < ConfigAccountSize {
		return Config{}, fmt.Errorf("config data too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[:8], configDiscriminator[:]) {
		return Config{}, fmt.Errorf("config discriminator mismatch")
	}
	var c Config
	if err := bin.NewBorshDecoder(data[8:]).Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}
