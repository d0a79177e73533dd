package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cleantrack_backend/internals/constants"
)

func TestCallerIsAdmin(t *testing.T) {
	assert.True(t, Caller{ID: 1, Role: constants.RoleAdmin}.IsAdmin())
	assert.False(t, Caller{ID: 1, Role: constants.RoleStaff}.IsAdmin())
	assert.False(t, Caller{ID: 1, Role: ""}.IsAdmin())
}

func TestCanManageCatalog(t *testing.T) {
	p := NewPolicy()
	assert.True(t, p.CanManageCatalog(Caller{ID: 1, Role: constants.RoleAdmin}))
	assert.False(t, p.CanManageCatalog(Caller{ID: 1, Role: constants.RoleStaff}))
}

func TestCanAccessSubmission(t *testing.T) {
	p := NewPolicy()
	owner := Caller{ID: 5, Role: constants.RoleStaff}
	other := Caller{ID: 6, Role: constants.RoleStaff}
	admin := Caller{ID: 1, Role: constants.RoleAdmin}

	assert.True(t, p.CanAccessSubmission(owner, 5))
	assert.False(t, p.CanAccessSubmission(other, 5))
	assert.True(t, p.CanAccessSubmission(admin, 5), "admins reach every submission")
}
