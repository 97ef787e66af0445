package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrgRole_KnownRoles(t *testing.T) {
	for _, s := range []string{"OWNER", "ADMIN", "MEMBER"} {
		role, ok := ParseOrgRole(s)
		assert.True(t, ok)
		assert.Equal(t, OrgRole(s), role)
	}
}

func TestParseOrgRole_UnknownDefaultsToMember(t *testing.T) {
	for _, s := range []string{"", "owner", "SUPERADMIN", "root"} {
		role, ok := ParseOrgRole(s)
		assert.False(t, ok, s)
		assert.Equal(t, OrgRoleMember, role)
	}
}
