package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for support conversations.
type Handler struct {
	repo Repository
}

// NewHandler creates a new chat handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterProtectedRoutes registers conversation routes for staff tooling.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	conversations := r.Group("/conversations")
	{
		conversations.GET("/:customerId", h.GetCustomerConversation)
	}
}

// GetCustomerConversation returns the customer's latest conversation
// with all messages, oldest first.
func (h *Handler) GetCustomerConversation(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "BAD_REQUEST", "message": "invalid customer id"}})
		return
	}

	conv, err := h.repo.FindLatestConversation(c.Request.Context(), customerID)
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "conversation not found"}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "INTERNAL_ERROR", "message": "failed to load conversation"}})
		return
	}

	full, err := h.repo.GetConversationWithMessages(c.Request.Context(), conv.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "INTERNAL_ERROR", "message": "failed to load messages"}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation": full})
}
