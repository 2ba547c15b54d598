package payments

import (
	"github.com/shopspring/decimal"
)

// ResidualFee is the card processing cost deducted from the seamstress
// payout. The designer royalty and the platform fee are not touched; the
// order total the customer paid never changes.
type ResidualFee struct {
	Bps        int
	FixedCents int
}

// Net returns the payout amount after the fee, rounded half up to whole
// cents and never below zero.
func (f ResidualFee) Net(amountCents int) int {
	if amountCents <= 0 {
		return 0
	}
	variable := decimal.NewFromInt(int64(amountCents)).
		Mul(decimal.NewFromInt(int64(f.Bps))).
		Div(decimal.NewFromInt(10000)).
		Round(0)
	net := amountCents - int(variable.IntPart()) - f.FixedCents
	if net < 0 {
		return 0
	}
	return net
}
