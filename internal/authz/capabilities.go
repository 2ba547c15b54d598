package authz

import (
	"github.com/stitchlink/stitchlink-backend/pkg/enums"
)

// Capability names a guarded operation. Checks are centralized here so
// handlers never compare role strings directly.
type Capability string

const (
	CapPlaceOrder        Capability = "place_order"
	CapPayOrder          Capability = "pay_order"
	CapDecideOrder       Capability = "decide_order"
	CapProgressOrder     Capability = "progress_order"
	CapManageDesigns     Capability = "manage_designs"
	CapManageProfile     Capability = "manage_profile"
	CapManageOffers      Capability = "manage_offers"
	CapViewAdminStats    Capability = "view_admin_stats"
	CapOverrideUserRole  Capability = "override_user_role"
	CapConnectPayouts    Capability = "connect_payouts"
)

// grants maps each role to its capability set. Admin rights come from the
// IsAdmin bit or the admin role.
var grants = map[enums.UserRole]map[Capability]bool{
	enums.UserRoleCustomer: {
		CapPlaceOrder: true,
		CapPayOrder:   true,
	},
	enums.UserRoleDesigner: {
		CapManageDesigns:  true,
		CapConnectPayouts: true,
	},
	enums.UserRoleSeamstress: {
		CapDecideOrder:    true,
		CapProgressOrder:  true,
		CapManageProfile:  true,
		CapManageOffers:   true,
		CapConnectPayouts: true,
	},
}

// adminOnly lists capabilities reserved for admins.
var adminOnly = map[Capability]bool{
	CapViewAdminStats:   true,
	CapOverrideUserRole: true,
}

// Actor is the authenticated principal extracted from the access token.
type Actor struct {
	Role    *enums.UserRole
	IsAdmin bool
}

// Admin reports whether the actor carries admin rights, either through
// the IsAdmin bit or the admin role.
func (a Actor) Admin() bool {
	return a.IsAdmin || (a.Role != nil && *a.Role == enums.UserRoleAdmin)
}

// Allows reports whether the actor holds the capability. Admins hold the
// admin capabilities but do not inherit marketplace write capabilities.
func Allows(actor Actor, cap Capability) bool {
	if adminOnly[cap] {
		return actor.Admin()
	}
	if actor.Role == nil {
		return false
	}
	return grants[*actor.Role][cap]
}
