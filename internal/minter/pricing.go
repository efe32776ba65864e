// ==============================
// File: internal/minter/pricing.go
// ==============================
package minter

// PriceFor selects the price tier for a mint. Eligibility for the discount
// is decided entirely by which entry point the caller invoked; this policy
// performs no further checks.
func (c *Config) PriceFor(discounted bool) uint64 {
	if discounted {
		return c.DiscountedPrice
	}
	return c.MintPrice
}
