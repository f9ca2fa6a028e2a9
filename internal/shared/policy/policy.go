// Package policy holds the role-based access rules as one pure lookup
// table. Services consult it explicitly before every mutating operation;
// there is no hidden permission hierarchy behind it.
package policy

import "github.com/google/uuid"

// Role is the closed set of user roles.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLibrarian Role = "librarian"
	RoleMember    Role = "member"
	RoleGuest     Role = "guest"
)

// ParseRole validates a raw role string against the closed enum.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleLibrarian, RoleMember, RoleGuest:
		return Role(s), true
	}
	return "", false
}

// Action enumerates everything the policy table can answer for.
type Action string

const (
	ActionReadCatalog   Action = "read_catalog"
	ActionWriteCatalog  Action = "write_catalog"  // create/update/delete books and authors
	ActionManageCopies  Action = "manage_copies"  // create/update/delete physical copies
	ActionBorrow        Action = "borrow"         // open a borrow record
	ActionManageBorrows Action = "manage_borrows" // return others' records, view all, mark fees paid
	ActionManageUsers   Action = "manage_users"   // list users, change roles
)

// rules is the authorization table. A missing entry means deny, so any
// unknown role or action fails closed.
var rules = map[Action]map[Role]bool{
	ActionReadCatalog: {
		RoleAdmin:     true,
		RoleLibrarian: true,
		RoleMember:    true,
		RoleGuest:     true,
	},
	ActionWriteCatalog: {
		RoleAdmin:     true,
		RoleLibrarian: true,
	},
	ActionManageCopies: {
		RoleAdmin:     true,
		RoleLibrarian: true,
	},
	ActionBorrow: {
		RoleAdmin:     true,
		RoleLibrarian: true,
		RoleMember:    true,
	},
	ActionManageBorrows: {
		RoleAdmin:     true,
		RoleLibrarian: true,
	},
	ActionManageUsers: {
		RoleAdmin:     true,
		RoleLibrarian: true,
	},
}

// Allowed reports whether role may perform action.
func Allowed(role Role, action Action) bool {
	perms, ok := rules[action]
	if !ok {
		return false
	}
	return perms[role]
}

// IsStaff reports whether the role is librarian or admin.
func IsStaff(role Role) bool {
	return role == RoleAdmin || role == RoleLibrarian
}

// Actor is the explicit caller identity passed into every service
// operation. It replaces any implicit request-scoped current user.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// CanTouchRecord answers the ownership rule for borrow records: staff may
// touch any record, everyone else only their own. A zero actor ID denies.
func CanTouchRecord(actor Actor, ownerID uuid.UUID) bool {
	if actor.ID == uuid.Nil {
		return false
	}
	if IsStaff(actor.Role) {
		return true
	}
	return actor.ID == ownerID
}
