package aftersales

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Module errors.
var (
	ErrReturnNotFound   = errors.New("return request not found")
	ErrExchangeNotFound = errors.New("exchange request not found")
)

// Repository defines the interface for after-sales data access.
type Repository interface {
	// Return requests
	CreateReturn(ctx context.Context, req *ReturnRequest) error
	GetReturn(ctx context.Context, id uuid.UUID) (*ReturnRequest, error)
	UpdateReturn(ctx context.Context, req *ReturnRequest) error
	ListReturnsByCustomer(ctx context.Context, customerID uuid.UUID) ([]*ReturnRequest, error)

	// Exchange requests
	CreateExchange(ctx context.Context, req *ExchangeRequest) error
	GetExchange(ctx context.Context, id uuid.UUID) (*ExchangeRequest, error)
	UpdateExchange(ctx context.Context, req *ExchangeRequest) error
	ListExchangesByCustomer(ctx context.Context, customerID uuid.UUID) ([]*ExchangeRequest, error)
	ListShippingExchanges(ctx context.Context) ([]*ExchangeRequest, error)

	// CountOpenForOrder counts non-terminal return and exchange requests
	// referencing the order. Used for parent-order status reconciliation.
	CountOpenForOrder(ctx context.Context, orderID uuid.UUID) (int64, error)

	// Audit log
	AppendAudit(ctx context.Context, entry *AuditLogEntry) error
	ListAudit(ctx context.Context, requestID uuid.UUID) ([]*AuditLogEntry, error)

	// HardDeleteReturn and HardDeleteExchange are administrative escape
	// hatches outside the workflow contract. They bypass terminal-state
	// guards; see DESIGN.md.
	HardDeleteReturn(ctx context.Context, id uuid.UUID) error
	HardDeleteExchange(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new after-sales repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// --- Return Requests ---

func (r *repository) CreateReturn(ctx context.Context, req *ReturnRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) GetReturn(ctx context.Context, id uuid.UUID) (*ReturnRequest, error) {
	var req ReturnRequest
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReturnNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *repository) UpdateReturn(ctx context.Context, req *ReturnRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *repository) ListReturnsByCustomer(ctx context.Context, customerID uuid.UUID) ([]*ReturnRequest, error) {
	var reqs []*ReturnRequest
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// --- Exchange Requests ---

func (r *repository) CreateExchange(ctx context.Context, req *ExchangeRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) GetExchange(ctx context.Context, id uuid.UUID) (*ExchangeRequest, error) {
	var req ExchangeRequest
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExchangeNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *repository) UpdateExchange(ctx context.Context, req *ExchangeRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *repository) ListExchangesByCustomer(ctx context.Context, customerID uuid.UUID) ([]*ExchangeRequest, error) {
	var reqs []*ExchangeRequest
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) ListShippingExchanges(ctx context.Context) ([]*ExchangeRequest, error) {
	var reqs []*ExchangeRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND new_order_id IS NOT NULL", ExchangeNewOrderShipping).
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) CountOpenForOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var returns, exchanges int64

	err := r.db.WithContext(ctx).Model(&ReturnRequest{}).
		Where("order_id = ? AND status NOT IN ?", orderID,
			[]ReturnStatus{ReturnRefunded, ReturnRejected, ReturnInvalid}).
		Count(&returns).Error
	if err != nil {
		return 0, err
	}

	err = r.db.WithContext(ctx).Model(&ExchangeRequest{}).
		Where("order_id = ? AND status NOT IN ?", orderID,
			[]ExchangeStatus{ExchangeCompleted, ExchangeRejected, ExchangeInvalid}).
		Count(&exchanges).Error
	if err != nil {
		return 0, err
	}

	return returns + exchanges, nil
}

// --- Audit Log ---

func (r *repository) AppendAudit(ctx context.Context, entry *AuditLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListAudit(ctx context.Context, requestID uuid.UUID) ([]*AuditLogEntry, error) {
	var entries []*AuditLogEntry
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// --- Administrative ---

func (r *repository) HardDeleteReturn(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&ReturnRequest{}, "id = ?", id).Error
}

func (r *repository) HardDeleteExchange(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&ExchangeRequest{}, "id = ?", id).Error
}
