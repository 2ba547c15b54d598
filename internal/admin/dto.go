package admin

import (
	"github.com/stitchlink/stitchlink-backend/internal/payments"
)

// StatsDTO is the platform dashboard snapshot.
type StatsDTO struct {
	UsersByRole    map[string]int64       `json:"users_by_role"`
	OrdersByStatus map[string]int64       `json:"orders_by_status"`
	ActiveDesigns  int64                  `json:"active_designs"`
	Revenue        RevenueDTO             `json:"revenue"`
	FailedPayouts  []payments.TransferDTO `json:"failed_payouts"`
}

// RevenueDTO reports settled order money. All amounts are integer cents.
type RevenueDTO struct {
	PaidOrderCount         int64 `json:"paid_order_count"`
	GrossCents             int64 `json:"gross_cents"`
	PlatformFeeCents       int64 `json:"platform_fee_cents"`
	DesignerRoyaltyCents   int64 `json:"designer_royalty_cents"`
	SeamstressEarningCents int64 `json:"seamstress_earning_cents"`
}
