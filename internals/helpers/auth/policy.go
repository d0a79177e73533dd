// file: internals/helpers/auth/policy.go
package auth

import (
	"gorm.io/gorm"

	"cleantrack_backend/internals/constants"
)

// Caller is the authenticated identity a request acts as.
type Caller struct {
	ID   uint
	Role string
}

func (a Caller) IsAdmin() bool {
	return a.Role == constants.RoleAdmin
}

/*
Policy is the single place authorization decisions live. Handlers ask the
policy instead of branching on role strings, so the rules stay testable in
one spot:

  - catalog writes:     admin only, reads any authenticated caller
  - submission family:  the submission's staff owner, or admin
  - user listing:       admins see everyone, others only themselves

Ownership of a TaskRating or Photo always resolves transitively to the
owning submission's staff id before being checked here.
*/
type Policy struct{}

func NewPolicy() Policy {
	return Policy{}
}

// CanManageCatalog gates writes to locations and checklist items.
func (Policy) CanManageCatalog(caller Caller) bool {
	return caller.IsAdmin()
}

// CanManageUsers gates registration and role changes.
func (Policy) CanManageUsers(caller Caller) bool {
	return caller.IsAdmin()
}

// CanAccessSubmission gates reads and writes of a submission (or anything
// owned by one) given the owning staff id.
func (Policy) CanAccessSubmission(caller Caller, staffID uint) bool {
	return caller.IsAdmin() || caller.ID == staffID
}

// ScopeSubmissions narrows a submissions query to what the caller may see.
// Non-admins never select other staff's rows, so list endpoints cannot leak.
func (Policy) ScopeSubmissions(q *gorm.DB, caller Caller) *gorm.DB {
	if caller.IsAdmin() {
		return q
	}
	return q.Where("staff_id = ?", caller.ID)
}

// ScopeUsers narrows a users query: admins list everyone, everyone else only
// their own record.
func (Policy) ScopeUsers(q *gorm.DB, caller Caller) *gorm.DB {
	if caller.IsAdmin() {
		return q
	}
	return q.Where("id = ?", caller.ID)
}
