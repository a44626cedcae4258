package loyalty

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Handler handles HTTP requests for loyalty cards.
type Handler struct {
	repo Repository
}

// NewHandler creates a new loyalty handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterProtectedRoutes registers loyalty routes.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	loyalty := r.Group("/loyalty")
	{
		loyalty.GET("/:customerId", h.GetCard)
		loyalty.POST("/:customerId/credit", h.CreditPoints)
	}
}

// CreditPointsRequest is the request body for crediting points.
type CreditPointsRequest struct {
	Points decimal.Decimal `json:"points" binding:"required"`
}

// GetCard returns the customer's loyalty card.
func (h *Handler) GetCard(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "BAD_REQUEST", "message": "invalid customer id"}})
		return
	}

	card, err := h.repo.GetByCustomer(c.Request.Context(), customerID)
	if err != nil {
		if errors.Is(err, ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "loyalty card not found"}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "INTERNAL_ERROR", "message": "failed to load loyalty card"}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"card": card})
}

// CreditPoints adds points to the customer's card, creating it if needed.
func (h *Handler) CreditPoints(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "BAD_REQUEST", "message": "invalid customer id"}})
		return
	}

	var req CreditPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "BAD_REQUEST", "message": err.Error()}})
		return
	}
	if req.Points.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "BAD_REQUEST", "message": "points must not be negative"}})
		return
	}

	card, err := h.repo.Credit(c.Request.Context(), customerID, req.Points)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "INTERNAL_ERROR", "message": "failed to credit points"}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"card": card})
}
