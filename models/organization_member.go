package models

import (
	"time"
)

// OrgRole is the closed set of roles a user can hold inside an organization.
// It is resolved once at the trust boundary (middleware) and never re-parsed
// from raw strings downstream.
type OrgRole string

const (
	OrgRoleOwner  OrgRole = "OWNER"
	OrgRoleAdmin  OrgRole = "ADMIN"
	OrgRoleMember OrgRole = "MEMBER"
)

// ParseOrgRole maps a stored role string onto the closed OrgRole set.
// Unknown values resolve to the least-privileged role.
func ParseOrgRole(s string) (OrgRole, bool) {
	switch OrgRole(s) {
	case OrgRoleOwner, OrgRoleAdmin, OrgRoleMember:
		return OrgRole(s), true
	}
	return OrgRoleMember, false
}

type MemberStatus string

const (
	MemberInvited MemberStatus = "INVITED"
	MemberActive  MemberStatus = "ACTIVE"
)

type OrganizationMember struct {
	ID             string       `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	OrganizationID string       `json:"organizationId" gorm:"type:uuid;not null;uniqueIndex:idx_org_member"`
	UserID         string       `json:"userId" gorm:"type:uuid;uniqueIndex:idx_org_member"`
	InvitedEmail   string       `json:"invitedEmail"`
	Role           OrgRole      `json:"role" gorm:"type:varchar(20);default:'MEMBER'"`
	Status         MemberStatus `json:"status" gorm:"type:varchar(20);default:'INVITED'"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

type MemberInvite struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}

func (OrganizationMember) TableName() string {
	return "organization_members"
}
