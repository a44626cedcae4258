package aftersales

import (
	"errors"
	"net/http"

	apperrors "github.com/diemthanh21/shopthoitrang-sub001/internal/shared/errors"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/shared/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for the after-sales workflows.
type Handler struct {
	returns   *ReturnService
	exchanges *ExchangeService
	enricher  *Enricher
	repo      Repository
}

// NewHandler creates a new after-sales handler.
func NewHandler(returns *ReturnService, exchanges *ExchangeService, enricher *Enricher, repo Repository) *Handler {
	return &Handler{returns: returns, exchanges: exchanges, enricher: enricher, repo: repo}
}

// RegisterRoutes registers after-sales routes on an authenticated group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	returns := r.Group("/returns")
	{
		returns.POST("", h.CreateReturn)
		returns.GET("", h.ListReturns)
		returns.GET("/:id", h.GetReturn)
		returns.GET("/:id/logs", h.GetReturnLogs)
		returns.POST("/:id/accept", h.AcceptReturn)
		returns.POST("/:id/reject", h.RejectReturn)
		returns.POST("/:id/receive", h.ReceiveReturn)
		returns.POST("/:id/invalid", h.InvalidateReturn)
		returns.POST("/:id/valid", h.ValidateReturn)
		returns.POST("/:id/refund/calculate", h.CalculateRefund)
		returns.GET("/:id/refund/preview", h.PreviewRefund)
		returns.POST("/:id/refund", h.ProcessRefund)
		returns.DELETE("/:id", middleware.RequireAdmin(), h.DeleteReturn)
	}

	exchanges := r.Group("/exchanges")
	{
		exchanges.POST("", h.CreateExchange)
		exchanges.GET("", h.ListExchanges)
		exchanges.POST("/sync", h.SyncExchanges)
		exchanges.GET("/:id", h.GetExchange)
		exchanges.GET("/:id/logs", h.GetExchangeLogs)
		exchanges.GET("/:id/diff", h.PreviewDiff)
		exchanges.POST("/:id/accept", h.AcceptExchange)
		exchanges.POST("/:id/reject", h.RejectExchange)
		exchanges.POST("/:id/receive", h.ReceiveExchange)
		exchanges.POST("/:id/invalid", h.InvalidateExchange)
		exchanges.POST("/:id/valid", h.ValidateExchange)
		exchanges.POST("/:id/new-order", h.CreateExchangeOrder)
		exchanges.POST("/:id/complete", h.CompleteExchange)
		exchanges.POST("/:id/sync", h.SyncExchange)
		exchanges.DELETE("/:id", middleware.RequireAdmin(), h.DeleteExchange)
	}
}

// --- Returns ---

// CreateReturn opens a new return request.
func (h *Handler) CreateReturn(c *gin.Context) {
	var dto CreateReturnDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		respondError(c, apperrors.BadRequest(err.Error()))
		return
	}

	actor := Actor{Type: ActorCustomer, ID: &dto.CustomerID}
	req, err := h.returns.Create(c.Request.Context(), CreateReturnInput{
		OrderID:    dto.OrderID,
		CustomerID: dto.CustomerID,
		VariantID:  dto.VariantID,
		Quantity:   dto.Quantity,
		Reason:     dto.Reason,
	}, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"return": h.enricher.Return(c.Request.Context(), req)})
}

// ListReturns returns a customer's return requests.
func (h *Handler) ListReturns(c *gin.Context) {
	customerID, err := uuid.Parse(c.Query("customer_id"))
	if err != nil {
		respondError(c, apperrors.BadRequest("customer_id query parameter is required"))
		return
	}

	reqs, err := h.returns.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"returns": h.enricher.Returns(c.Request.Context(), reqs)})
}

// GetReturn returns a single return request.
func (h *Handler) GetReturn(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, err := h.returns.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"return": h.enricher.Return(c.Request.Context(), req)})
}

// GetReturnLogs returns the audit trail of a return request.
func (h *Handler) GetReturnLogs(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if _, err := h.returns.Get(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	logs, err := h.returns.ListLogs(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// AcceptReturn approves a pending return.
func (h *Handler) AcceptReturn(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var dto AcceptDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		respondError(c, apperrors.BadRequest(err.Error()))
		return
	}

	req, err := h.returns.Accept(c.Request.Context(), id, dto.ShippingAddress, dto.PackagingInstructions, staffActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"return": req})
}

// RejectReturn declines a pending return.
func (h *Handler) RejectReturn(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var dto RejectDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		respondError(c, apperrors.BadRequest(err.Error()))
		return
	}

	req, err := h.returns.Reject(c.Request.Context(), id, dto.Reason, staffActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"return": req})
}

// ReceiveReturn records arrival of the returned goods.
func (h *Handler) ReceiveReturn(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, err := h.returns.MarkReceived(c.Request.Context(), id, staffActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"return": req})
}

// InvalidateReturn fails the inspection of a return.
func (h *Handler) InvalidateReturn(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var dto MarkInvalidDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		respondError(c, apperrors.BadRequest(err.Error()))
		return
	}

	req, err := h.returns.MarkInvalid(c.Request.Context(), id, dto.Note, staffActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"return": req})
}

// ValidateReturn passes the inspection of a return.
func (h *Handler) ValidateReturn(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, err := h.returns.MarkValid(c.Request.Context(), id, staffActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"return": req})
}

// CalculateRefund computes and stores the refund amount.
func (h *Handler) CalculateRefund(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, err := h.returns.CalculateRefund(c.Request.Context(), id, staffActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"return": req})
}

// PreviewRefund recomputes the refund amount without storing it.
func (h *Handler) PreviewRefund(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	amount, err := h.returns.RefundPreview(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refund_amount": amount})
}

// ProcessRefund executes the refund and closes the return.
func (h *Handler) ProcessRefund(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var dto ProcessRefundDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		respondError(c, apperrors.BadRequest(err.Error()))
		return
	}

	req, err := h.returns.ProcessRefund(c.Request.Context(), id, dto.Method, staffActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"return": req})
}

// DeleteReturn permanently removes a return request. Admin only.
func (h *Handler) DeleteReturn(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.repo.HardDeleteReturn(c.Request.Context(), id); err != nil {
		respondError(c, apperrors.Internal("failed to delete return request", err))
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Exchanges ---

// CreateExchange opens a new exchange request.
func (h *Handler) CreateExchange(c *gin.Context) {
	var dto CreateExchangeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		respondError(c, apperrors.BadRequest(err.Error()))
		return
	}

	actor := Actor{Type: ActorCustomer, ID: &dto.CustomerID}
	req, err := h.exchanges.Create(c.Request.Context(), CreateExchangeInput{
		OrderID:      dto.OrderID,
		CustomerID:   dto.CustomerID,
		OldVariantID: dto.OldVariantID,
		NewVariantID: dto.NewVariantID,
		Quantity:     dto.Quantity,
		Reason:       dto.Reason,
	}, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"exchange": h.enricher.Exchange(c.Request.Context(), req)})
}

// ListExchanges returns a customer's exchange requests.
func (h *Handler) ListExchanges(c *gin.Context) {
	customerID, err := uuid.Parse(c.Query("customer_id"))
	if err != nil {
		respondError(c, apperrors.BadRequest("customer_id query parameter is required"))
		return
	}

	reqs, err := h.exchanges.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"exchanges": h.enricher.Exchanges(c.Request.Context(), reqs)})
}

// GetExchange returns a single exchange request.
func (h *Handler) GetExchange(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, err := h.exchanges.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"exchange": h.enricher.Exchange(c.Request.Context(), req)})
}

// GetExchangeLogs returns the audit trail of an exchange request.
func (h *Handler) GetExchangeLogs(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if _, err := h.exchanges.Get(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	logs, err := h.exchanges.ListLogs(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// PreviewDiff returns the price-difference preview for an exchange.
func (h *Handler) PreviewDiff(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	diff, err := h.exchanges.DiffPreview(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"diff": diff})
}

// AcceptExchange approves a pending exchange.
func (h *Handler) AcceptExchange(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var dto AcceptDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		respondError(c, apperrors.BadRequest(err.Error()))
		return
	}

	req, err := h.exchanges.Accept(c.Request.Context(), id, dto.ShippingAddress, dto.PackagingInstructions, staffActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exchange": req})
}

// RejectExchange declines a pending exchange.
func (h *Handler) RejectExchange(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var dto RejectDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		respondError(c, apperrors.BadRequest(err.Error()))
		return
	}

	req, err := h.exchanges.Reject(c.Request.Context(), id, dto.Reason, staffActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exchange": req})
}

// ReceiveExchange records arrival of the old item.
func (h *Handler) ReceiveExchange(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, err := h.exchanges.MarkReceivedOld(c.Request.Context(), id, staffActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exchange": req})
}

// InvalidateExchange fails the inspection of an exchange.
func (h *Handler) InvalidateExchange(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var dto MarkInvalidDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		respondError(c, apperrors.BadRequest(err.Error()))
		return
	}

	req, err := h.exchanges.MarkInvalid(c.Request.Context(), id, dto.Note, staffActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exchange": req})
}

// ValidateExchange passes the inspection of an exchange.
func (h *Handler) ValidateExchange(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, err := h.exchanges.MarkValid(c.Request.Context(), id, staffActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exchange": req})
}

// CreateExchangeOrder creates the replacement order.
func (h *Handler) CreateExchangeOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, err := h.exchanges.CreateNewOrder(c.Request.Context(), id, staffActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exchange": req})
}

// CompleteExchange closes an exchange manually.
func (h *Handler) CompleteExchange(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, err := h.exchanges.MarkComplete(c.Request.Context(), id, staffActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exchange": req})
}

// SyncExchange reconciles one exchange against its replacement order's
// delivery status.
func (h *Handler) SyncExchange(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, err := h.exchanges.SyncOne(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exchange": req})
}

// SyncExchanges closes shipping exchanges whose replacement order has
// been delivered.
func (h *Handler) SyncExchanges(c *gin.Context) {
	completed, err := h.exchanges.SyncComplete(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completed": completed})
}

// DeleteExchange permanently removes an exchange request. Admin only.
func (h *Handler) DeleteExchange(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.repo.HardDeleteExchange(c.Request.Context(), id); err != nil {
		respondError(c, apperrors.Internal("failed to delete exchange request", err))
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Helpers ---

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.BadRequest("invalid request id"))
		return uuid.Nil, false
	}
	return id, true
}

// staffActor resolves the authenticated staff member into an audit actor.
func staffActor(c *gin.Context) Actor {
	actorType := ActorStaff
	if c.GetString(middleware.StaffRoleKey) == "admin" {
		actorType = ActorAdmin
	}
	if staffID, err := uuid.Parse(middleware.GetStaffID(c)); err == nil {
		return Actor{Type: actorType, ID: &staffID}
	}
	return Actor{Type: actorType}
}

func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode, appErr.ToResponse())
		return
	}
	c.JSON(apperrors.GetStatusCode(err), gin.H{
		"error": gin.H{"code": "INTERNAL_ERROR", "message": err.Error()},
	})
}
