package auth

import "strings"

// Roles.
const (
	RoleBuyer = "buyer"
	RoleAdmin = "admin"
)

// Capability is something a role may be allowed to do.
type Capability int

const (
	// CapShop covers browsing, checkout, and a buyer's own profile and orders.
	CapShop Capability = iota
	// CapManage covers catalog mutation, order status and account listing.
	CapManage
	// CapReadAnyOrders allows reading another buyer's orders.
	CapReadAnyOrders
)

// IsAdmin reports whether role is the admin role. Stored roles are compared
// case-insensitively so legacy "ADMIN" records keep working.
func IsAdmin(role string) bool {
	return strings.EqualFold(strings.TrimSpace(role), RoleAdmin)
}

// Allows is the single allow/deny decision for role-based access.
func Allows(role string, capability Capability) bool {
	switch capability {
	case CapShop:
		return true
	case CapManage, CapReadAnyOrders:
		return IsAdmin(role)
	default:
		return false
	}
}

// CanReadOrdersOf reports whether caller (holding role) may read buyerID's
// orders.
func CanReadOrdersOf(caller Identity, role, buyerID string) bool {
	if caller.UserID != "" && caller.UserID == buyerID {
		return true
	}
	return Allows(role, CapReadAnyOrders)
}
