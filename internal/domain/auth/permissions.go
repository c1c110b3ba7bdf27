package auth

import "slices"

// Permissions checked by the API.
const (
	PermVendorRead      = "vendor:read"
	PermVendorWrite     = "vendor:write"
	PermDocumentRead    = "document:read"
	PermDocumentWrite   = "document:write"
	PermDocumentTransit = "document:transition"
	PermInvoicePay      = "invoice:pay"
	PermReminderWrite   = "reminder:write"
	PermReminderRun     = "reminder:run"
	PermAuditRead       = "audit:read"
)

var rolePermissions = map[string][]string{
	RoleAccountant: {
		PermVendorRead, PermVendorWrite,
		PermDocumentRead, PermDocumentWrite, PermDocumentTransit,
		PermInvoicePay, PermReminderWrite,
	},
	RoleApprover: {
		PermVendorRead, PermDocumentRead, PermDocumentTransit, PermAuditRead,
	},
}

// IsAdmin reports whether roles include the admin role, which holds every
// permission.
func IsAdmin(roles []string) bool {
	return slices.Contains(roles, RoleAdmin)
}

// PermissionsFor returns the union of permissions granted by roles.
// Unknown roles grant nothing.
func PermissionsFor(roles []string) []string {
	var perms []string
	for _, role := range roles {
		for _, p := range rolePermissions[role] {
			if !slices.Contains(perms, p) {
				perms = append(perms, p)
			}
		}
	}
	return perms
}

// HasPermission reports whether roles grant perm.
func HasPermission(roles []string, perm string) bool {
	return IsAdmin(roles) || slices.Contains(PermissionsFor(roles), perm)
}
