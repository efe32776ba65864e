// ===========================
// File: internal/ledger/rent.go
// ===========================
package ledger

// Rent parameters mirror mainnet: 3480 lamports per byte-year, two years of
// rent buys exemption, and every account pays for 128 bytes of metadata
// overhead on top of its own data.
const (
	accountStorageOverhead = 128
	lamportsPerByteYear    = 3480
	rentExemptionYears     = 2
)

// MinimumBalance returns the smallest lamport balance that keeps an account
// with dataLen bytes of data alive. Transfers may empty an account completely,
// but may not leave it funded below this floor.
func MinimumBalance(dataLen int) uint64 {
	return uint64(accountStorageOverhead+dataLen) * lamportsPerByteYear * rentExemptionYears
}
