package organizations

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vinimatheus/avocado-saas-starter-sub001/billing"
	"github.com/vinimatheus/avocado-saas-starter-sub001/db"
	"github.com/vinimatheus/avocado-saas-starter-sub001/models"
	"github.com/vinimatheus/avocado-saas-starter-sub001/utils"
	mailsmodels "github.com/vinimatheus/avocado-saas-starter-sub001/utils/mails-models"
)

// Handler serves organization and member management. The billing service
// is injected so seat and organization limits are enforced before any
// mutation.
type Handler struct {
	svc *billing.Service
}

func NewHandler(svc *billing.Service) *Handler {
	return &Handler{svc: svc}
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugCleaner.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "org"
	}
	return slug + "-" + uuid.NewString()[:8]
}

// @Summary Create an organization
// @Description Create an organization owned by the connected user. The owner's plan limits how many organizations they can have.
// @Tags organizations
// @Accept json
// @Produce json
// @Param organization body models.OrganizationCreate true "Organization information"
// @Security BearerAuth
// @Success 201 {object} models.Organization
// @Failure 402 {object} map[string]string "error: Organization limit reached"
// @Router /organizations [post]
func (h *Handler) Create(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.OrganizationCreate
	if !utils.ValidateRequestBody(c, &input) {
		return
	}

	ownerID, _ := userID.(string)
	if err := h.svc.AssertCanCreateOrganization(ownerID); err != nil {
		if errors.Is(err, billing.ErrQuotaExceeded) {
			utils.LogErrorWithUser(userID, nil, "Organization limit reached in Create")
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Your plan does not allow more organizations"})
			return
		}
		utils.LogErrorWithUser(userID, err, "Error checking the organization limit in Create")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking the organization limit"})
		return
	}

	slug := input.Slug
	if slug == "" {
		slug = slugify(input.Name)
	}

	org := models.Organization{
		Name:        input.Name,
		Slug:        slug,
		OwnerUserID: ownerID,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&org).Error; err != nil {
			return err
		}
		member := models.OrganizationMember{
			OrganizationID: org.ID,
			UserID:         ownerID,
			Role:           models.OrgRoleOwner,
			Status:         models.MemberActive,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Error creating the organization in Create")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating the organization"})
		return
	}

	// Every organization starts with a FREE subscription row.
	if _, err := h.svc.EnsureSubscription(org.ID); err != nil {
		utils.LogErrorWithUser(userID, err, "Error creating the default subscription in Create")
	}

	utils.LogSuccessWithUser(userID, "Organization created")
	c.JSON(http.StatusCreated, org)
}

// @Summary List the user's organizations
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Organization
// @Router /organizations [get]
func (h *Handler) List(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var orgs []models.Organization
	err := db.DB.
		Joins("JOIN organization_members ON organization_members.organization_id = organizations.id").
		Where("organization_members.user_id = ? AND organization_members.status = ?", userID, models.MemberActive).
		Order("organizations.created_at DESC").
		Find(&orgs).Error
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Error listing organizations in List")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching organizations"})
		return
	}

	c.JSON(http.StatusOK, orgs)
}

// @Summary Organization details
// @Tags organizations
// @Produce json
// @Param orgId path string true "Organization ID"
// @Security BearerAuth
// @Success 200 {object} models.Organization
// @Router /organizations/{orgId} [get]
func (h *Handler) Get(c *gin.Context) {
	orgID := c.GetString("org_id")

	var org models.Organization
	if err := db.DB.First(&org, "id = ?", orgID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}

	c.JSON(http.StatusOK, org)
}

// @Summary List organization members
// @Tags organizations
// @Produce json
// @Param orgId path string true "Organization ID"
// @Security BearerAuth
// @Success 200 {array} models.OrganizationMember
// @Router /organizations/{orgId}/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	orgID := c.GetString("org_id")

	var members []models.OrganizationMember
	if err := db.DB.Where("organization_id = ?", orgID).
		Order("created_at ASC").Find(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching members"})
		return
	}

	c.JSON(http.StatusOK, members)
}

// @Summary Invite a member
// @Description Invite a user to the organization by email. Rejected when the plan's seat limit is reached.
// @Tags organizations
// @Accept json
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param invite body models.MemberInvite true "Invitation"
// @Security BearerAuth
// @Success 201 {object} models.OrganizationMember
// @Failure 402 {object} map[string]string "error: Seat limit reached"
// @Failure 409 {object} map[string]string "error: Already invited"
// @Router /organizations/{orgId}/members [post]
func (h *Handler) InviteMember(c *gin.Context) {
	orgID := c.GetString("org_id")
	userID, _ := c.Get("user_id")

	var input models.MemberInvite
	if !utils.ValidateRequestBody(c, &input) {
		return
	}

	role, known := models.ParseOrgRole(input.Role)
	if !known {
		role = models.OrgRoleMember
	}
	if role == models.OrgRoleOwner {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot invite a member as owner"})
		return
	}

	// The seat check runs before the insert so the invitation is never
	// created past the limit.
	if err := h.svc.AssertCanAddMember(orgID); err != nil {
		switch {
		case errors.Is(err, billing.ErrQuotaExceeded):
			utils.LogErrorWithUser(userID, nil, "Seat limit reached in InviteMember")
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Your plan does not allow more members"})
		case errors.Is(err, billing.ErrOrganizationBlocked):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Organization is blocked, check your billing status"})
		default:
			utils.LogErrorWithUser(userID, err, "Error checking the seat limit in InviteMember")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking the seat limit"})
		}
		return
	}

	var existing models.OrganizationMember
	if err := db.DB.Where("organization_id = ? AND invited_email = ?", orgID, input.Email).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "This email is already invited"})
		return
	}

	member := models.OrganizationMember{
		OrganizationID: orgID,
		InvitedEmail:   input.Email,
		Role:           role,
		Status:         models.MemberInvited,
	}

	// Invited users that already have an account are attached right away.
	var invitee models.User
	if err := db.DB.Where("email = ?", input.Email).First(&invitee).Error; err == nil {
		member.UserID = invitee.ID
		member.Status = models.MemberActive
	}

	if err := db.DB.Create(&member).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error creating the invitation in InviteMember")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating the invitation"})
		return
	}

	utils.LogSuccessWithUser(userID, "Member invited")
	c.JSON(http.StatusCreated, member)
}

// @Summary Remove a member
// @Tags organizations
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param userId path string true "User ID of the member"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Member removed"
// @Router /organizations/{orgId}/members/{userId} [delete]
func (h *Handler) RemoveMember(c *gin.Context) {
	orgID := c.GetString("org_id")
	userID, _ := c.Get("user_id")
	memberUserID := c.Param("userId")

	if _, err := uuid.Parse(memberUserID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var org models.Organization
	if err := db.DB.First(&org, "id = ?", orgID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}
	if org.OwnerUserID == memberUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The owner cannot be removed from the organization"})
		return
	}

	var member models.OrganizationMember
	if err := db.DB.Where("organization_id = ? AND user_id = ?", orgID, memberUserID).
		First(&member).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}

	if err := db.DB.Delete(&member).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error removing the member in RemoveMember")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error removing the member"})
		return
	}

	// Best-effort notice; delivery failure never fails the removal.
	var removed models.User
	if err := db.DB.First(&removed, "id = ?", memberUserID).Error; err == nil {
		go mailsmodels.MemberRemoved(removed.Email, org.Name)
	}

	utils.LogSuccessWithUser(userID, "Member removed")
	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}
