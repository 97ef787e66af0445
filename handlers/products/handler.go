package products

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vinimatheus/avocado-saas-starter-sub001/billing"
	"github.com/vinimatheus/avocado-saas-starter-sub001/db"
	"github.com/vinimatheus/avocado-saas-starter-sub001/models"
	"github.com/vinimatheus/avocado-saas-starter-sub001/utils"
)

// Handler serves the product catalog CRUD. Every mutation is metered
// through the billing service before it touches the database.
type Handler struct {
	svc *billing.Service
}

func NewHandler(svc *billing.Service) *Handler {
	return &Handler{svc: svc}
}

// consume charges one metered action and maps billing errors to HTTP.
// Returns false when the request was already answered.
func (h *Handler) consume(c *gin.Context, orgID string) bool {
	err := h.svc.Consume(orgID, 1)
	if err == nil {
		return true
	}
	switch {
	case errors.Is(err, billing.ErrQuotaExceeded):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Your plan's usage limit for this period is reached"})
	case errors.Is(err, billing.ErrOrganizationBlocked):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Organization is blocked, check your billing status"})
	default:
		utils.LogError(err, "Error metering a product mutation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking your usage limit"})
	}
	return false
}

// @Summary List products
// @Tags products
// @Produce json
// @Param orgId path string true "Organization ID"
// @Security BearerAuth
// @Success 200 {array} models.Product
// @Router /organizations/{orgId}/products [get]
func (h *Handler) List(c *gin.Context) {
	orgID := c.GetString("org_id")

	var products []models.Product
	if err := db.DB.Where("organization_id = ?", orgID).
		Order("created_at DESC").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// @Summary Product details
// @Tags products
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param productId path string true "Product ID"
// @Security BearerAuth
// @Success 200 {object} models.Product
// @Router /organizations/{orgId}/products/{productId} [get]
func (h *Handler) Get(c *gin.Context) {
	orgID := c.GetString("org_id")
	productID := c.Param("productId")

	if _, err := uuid.Parse(productID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var product models.Product
	if err := db.DB.Where("id = ? AND organization_id = ?", productID, orgID).
		First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// @Summary Create a product
// @Description Create a product in the organization catalog. Counts against the plan's metered usage.
// @Tags products
// @Accept json
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param product body models.ProductCreate true "Product information"
// @Security BearerAuth
// @Success 201 {object} models.Product
// @Failure 402 {object} map[string]string "error: Usage limit reached"
// @Router /organizations/{orgId}/products [post]
func (h *Handler) Create(c *gin.Context) {
	orgID := c.GetString("org_id")
	userID, _ := c.Get("user_id")

	var input models.ProductCreate
	if !utils.ValidateRequestBody(c, &input) {
		return
	}

	if !h.consume(c, orgID) {
		return
	}

	product := models.Product{
		OrganizationID: orgID,
		Name:           input.Name,
		Description:    input.Description,
		SKU:            input.SKU,
		PriceCents:     input.PriceCents,
		Active:         true,
	}

	if err := db.DB.Create(&product).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error creating the product in Create")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating the product"})
		return
	}

	utils.LogSuccessWithUser(userID, "Product created")
	c.JSON(http.StatusCreated, product)
}

// @Summary Update a product
// @Tags products
// @Accept json
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param productId path string true "Product ID"
// @Param product body models.ProductUpdate true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} models.Product
// @Failure 402 {object} map[string]string "error: Usage limit reached"
// @Router /organizations/{orgId}/products/{productId} [put]
func (h *Handler) Update(c *gin.Context) {
	orgID := c.GetString("org_id")
	userID, _ := c.Get("user_id")
	productID := c.Param("productId")

	if _, err := uuid.Parse(productID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var input models.ProductUpdate
	if !utils.ValidateRequestBody(c, &input) {
		return
	}

	var product models.Product
	if err := db.DB.Where("id = ? AND organization_id = ?", productID, orgID).
		First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if !h.consume(c, orgID) {
		return
	}

	updates := map[string]interface{}{}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.Description != "" {
		updates["description"] = input.Description
	}
	if input.SKU != "" {
		updates["sku"] = input.SKU
	}
	if input.PriceCents != nil {
		updates["price_cents"] = *input.PriceCents
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&product).Updates(updates).Error; err != nil {
			utils.LogErrorWithUser(userID, err, "Error updating the product in Update")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating the product"})
			return
		}
	}

	c.JSON(http.StatusOK, product)
}

// @Summary Delete a product
// @Tags products
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param productId path string true "Product ID"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Product deleted"
// @Failure 402 {object} map[string]string "error: Usage limit reached"
// @Router /organizations/{orgId}/products/{productId} [delete]
func (h *Handler) Delete(c *gin.Context) {
	orgID := c.GetString("org_id")
	userID, _ := c.Get("user_id")
	productID := c.Param("productId")

	if _, err := uuid.Parse(productID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var product models.Product
	if err := db.DB.Where("id = ? AND organization_id = ?", productID, orgID).
		First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if !h.consume(c, orgID) {
		return
	}

	if err := db.DB.Delete(&product).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error deleting the product in Delete")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting the product"})
		return
	}

	utils.LogSuccessWithUser(userID, "Product deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// @Summary Upload a product image
// @Tags products
// @Accept multipart/form-data
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param productId path string true "Product ID"
// @Param image formData file true "Image file"
// @Security BearerAuth
// @Success 200 {object} models.Product
// @Router /organizations/{orgId}/products/{productId}/image [post]
func (h *Handler) UploadImage(c *gin.Context) {
	orgID := c.GetString("org_id")
	userID, _ := c.Get("user_id")
	productID := c.Param("productId")

	if _, err := uuid.Parse(productID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var product models.Product
	if err := db.DB.Where("id = ? AND organization_id = ?", productID, orgID).
		First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file missing"})
		return
	}

	if !h.consume(c, orgID) {
		return
	}

	imageURL, err := utils.UploadProductImage(product.ID, file)
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Error uploading the product image in UploadImage")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := db.DB.Model(&product).Update("image_url", imageURL).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving the image URL"})
		return
	}

	product.ImageURL = imageURL
	c.JSON(http.StatusOK, product)
}
