package orders

import (
	"github.com/shopspring/decimal"
)

// PlatformFeeCents is the flat marketplace fee added to every order.
const PlatformFeeCents = 500

// Quote carries the money amounts frozen onto an order at creation time.
type Quote struct {
	TotalCents             int
	DesignerRoyaltyCents   int
	SeamstressEarningCents int
	PlatformFeeCents       int
}

// BuildQuote computes the order total and the per-party split. The royalty
// is computed from basis points with decimal arithmetic and rounded half
// up to whole cents.
func BuildQuote(designPriceCents, offerPriceCents, royaltyRateBps int) Quote {
	royalty := decimal.NewFromInt(int64(designPriceCents)).
		Mul(decimal.NewFromInt(int64(royaltyRateBps))).
		Div(decimal.NewFromInt(10000)).
		Round(0)

	return Quote{
		TotalCents:             designPriceCents + offerPriceCents + PlatformFeeCents,
		DesignerRoyaltyCents:   int(royalty.IntPart()),
		SeamstressEarningCents: offerPriceCents,
		PlatformFeeCents:       PlatformFeeCents,
	}
}
