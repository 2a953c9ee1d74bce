// Package authz is the single source of truth for row-level authorization.
// Every rule is a predicate over the server-resolved principal and the
// existing or proposed row; nothing here ever trusts a client-supplied value.
package authz

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/eventory/backend/internal/models"
)

// Principal is the resolved identity a request acts as. AgencyID is nil for
// MASTER principals.
type Principal struct {
	UserID   uuid.UUID
	Role     models.Role
	AgencyID *uuid.UUID
}

// Action is a row-level operation.
type Action string

const (
	ActionSelect Action = "SELECT"
	ActionInsert Action = "INSERT"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Resource identifies a policy-bearing table.
type Resource string

const (
	ResourceAgencies       Resource = "agencies"
	ResourceUsers          Resource = "users"
	ResourceUserRoles      Resource = "user_roles"
	ResourceProjects       Resource = "projects"
	ResourceParticipants   Resource = "participants"
	ResourceHotels         Resource = "hotels"
	ResourceHotelRoomTypes Resource = "hotel_room_types"
)

// Row carries the ownership attributes of the row being read or written.
// AgencyID is the tenant owning the row (for the agencies table, the agency's
// own id). OwnerID is the user a self-scoped row belongs to.
type Row struct {
	AgencyID *uuid.UUID
	OwnerID  *uuid.UUID
}

type rule func(p Principal, row Row) bool

func sameAgency(p Principal, row Row) bool {
	return p.AgencyID != nil && row.AgencyID != nil && *p.AgencyID == *row.AgencyID
}

func selfRow(p Principal, row Row) bool {
	return row.OwnerID != nil && *row.OwnerID == p.UserID
}

// agencyOwns grants AGENCY principals access to rows in their own tenant.
func agencyOwns(p Principal, row Row) bool {
	return p.Role == models.RoleAgency && sameAgency(p, row)
}

// masterOrAgencyOwn grants MASTER read over everything and AGENCY access to
// its own tenant's rows.
func masterOrAgencyOwn(p Principal, row Row) bool {
	if p.Role == models.RoleMaster {
		return true
	}
	return agencyOwns(p, row)
}

func selfOrMaster(p Principal, row Row) bool {
	return p.Role == models.RoleMaster || selfRow(p, row)
}

func anyone(Principal, Row) bool { return true }

// authenticated requires a resolved identity of a known role.
func authenticated(p Principal, _ Row) bool {
	return p.UserID != uuid.Nil && p.Role.Valid()
}

// policy mirrors the access table one row per resource, one rule per action.
// A missing action means the operation is never allowed through the API.
var policy = map[Resource]map[Action]rule{
	ResourceAgencies: {
		ActionSelect: masterOrAgencyOwn,
		ActionUpdate: agencyOwns,
	},
	ResourceUsers: {
		ActionSelect: selfOrMaster,
		ActionUpdate: func(p Principal, row Row) bool { return selfRow(p, row) },
	},
	ResourceUserRoles: {
		ActionSelect: selfOrMaster,
	},
	ResourceProjects: {
		ActionSelect: masterOrAgencyOwn,
		ActionInsert: agencyOwns,
		ActionUpdate: agencyOwns,
		ActionDelete: agencyOwns,
	},
	ResourceParticipants: {
		ActionSelect: masterOrAgencyOwn,
		ActionInsert: agencyOwns,
		ActionUpdate: agencyOwns,
		ActionDelete: agencyOwns,
	},
	ResourceHotels: {
		ActionSelect: anyone,
	},
	ResourceHotelRoomTypes: {
		ActionSelect: anyone,
		ActionInsert: authenticated,
	},
}

// Allowed evaluates the policy for one operation on one row. Unknown
// resources and actions are denied (fail closed).
func Allowed(p Principal, action Action, res Resource, row Row) bool {
	actions, ok := policy[res]
	if !ok {
		return false
	}
	r, ok := actions[action]
	if !ok {
		return false
	}
	return r(p, row)
}

// TenantCondition returns the SQL predicate that scopes a list/get query over
// the given agency column, with the bind arguments it consumes starting at
// argPos. Repositories must use this instead of hand-rolling tenant filters so
// read scoping has exactly one definition.
func TenantCondition(p Principal, column string, argPos int) (string, []any) {
	switch p.Role {
	case models.RoleMaster:
		return "TRUE", nil
	case models.RoleAgency:
		if p.AgencyID == nil {
			return "FALSE", nil
		}
		return fmt.Sprintf("%s = $%d", column, argPos), []any{*p.AgencyID}
	default:
		return "FALSE", nil
	}
}
