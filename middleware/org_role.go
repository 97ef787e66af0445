package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vinimatheus/avocado-saas-starter-sub001/db"
	"github.com/vinimatheus/avocado-saas-starter-sub001/models"
)

func roleRank(r models.OrgRole) int {
	switch r {
	case models.OrgRoleOwner:
		return 3
	case models.OrgRoleAdmin:
		return 2
	case models.OrgRoleMember:
		return 1
	}
	return 0
}

// OrgRole resolves the caller's role inside the :orgId organization into
// the closed Owner|Admin|Member set, once, at the trust boundary. Handlers
// downstream read "org_role" from the context and never parse role strings
// again. Requests below minRole are rejected.
func OrgRole(minRole models.OrgRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("orgId")
		if _, err := uuid.Parse(orgID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organization ID"})
			c.Abort()
			return
		}

		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		var org models.Organization
		if err := db.DB.First(&org, "id = ?", orgID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading organization"})
			}
			c.Abort()
			return
		}

		var role models.OrgRole
		if org.OwnerUserID == userID {
			role = models.OrgRoleOwner
		} else {
			var member models.OrganizationMember
			err := db.DB.Where("organization_id = ? AND user_id = ? AND status = ?",
				orgID, userID, models.MemberActive).First(&member).Error
			if err != nil {
				c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this organization"})
				c.Abort()
				return
			}
			role, _ = models.ParseOrgRole(string(member.Role))
		}

		if roleRank(role) < roleRank(minRole) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient organization role"})
			c.Abort()
			return
		}

		c.Set("org_id", orgID)
		c.Set("org_role", role)
		c.Next()
	}
}
