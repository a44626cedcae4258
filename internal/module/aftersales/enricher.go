package aftersales

import (
	"context"

	"go.uber.org/zap"
)

// ReturnView is a return request decorated with display data resolved
// from the order and catalog modules.
type ReturnView struct {
	*ReturnRequest
	OrderNo     string `json:"order_no,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	SKU         string `json:"sku,omitempty"`
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
}

// ExchangeView is an exchange request decorated with display data for
// both variants.
type ExchangeView struct {
	*ExchangeRequest
	OrderNo     string `json:"order_no,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	OldSKU      string `json:"old_sku,omitempty"`
	OldSize     string `json:"old_size,omitempty"`
	OldColor    string `json:"old_color,omitempty"`
	NewSKU      string `json:"new_sku,omitempty"`
	NewSize     string `json:"new_size,omitempty"`
	NewColor    string `json:"new_color,omitempty"`
}

// Enricher resolves display fields for request views. Lookups are
// best-effort: a missing variant or order leaves the field blank
// rather than failing the read.
type Enricher struct {
	orders   OrderStore
	variants VariantStore
	logger   *zap.Logger
}

// NewEnricher creates a new view enricher.
func NewEnricher(orders OrderStore, variants VariantStore, logger *zap.Logger) *Enricher {
	return &Enricher{orders: orders, variants: variants, logger: logger}
}

// Return builds the display view for a single return request.
func (e *Enricher) Return(ctx context.Context, req *ReturnRequest) *ReturnView {
	view := &ReturnView{ReturnRequest: req}
	view.OrderNo = e.orderNo(ctx, req)

	variant, err := e.variants.GetVariant(ctx, req.VariantID)
	if err != nil {
		e.logger.Debug("enrichment skipped missing variant",
			zap.String("variant_id", req.VariantID.String()))
		return view
	}
	view.SKU = variant.SKU
	view.Size = variant.Size
	view.Color = variant.Color

	if product, err := e.variants.GetProduct(ctx, variant.ProductID); err == nil {
		view.ProductName = product.Name
	}
	return view
}

// Returns builds display views for a list of return requests.
func (e *Enricher) Returns(ctx context.Context, reqs []*ReturnRequest) []*ReturnView {
	views := make([]*ReturnView, 0, len(reqs))
	for _, req := range reqs {
		views = append(views, e.Return(ctx, req))
	}
	return views
}

// Exchange builds the display view for a single exchange request.
func (e *Enricher) Exchange(ctx context.Context, req *ExchangeRequest) *ExchangeView {
	view := &ExchangeView{ExchangeRequest: req}

	if ord, err := e.orders.GetOrder(ctx, req.OrderID); err == nil {
		view.OrderNo = ord.OrderNo
	}

	if old, err := e.variants.GetVariant(ctx, req.OldVariantID); err == nil {
		view.OldSKU = old.SKU
		view.OldSize = old.Size
		view.OldColor = old.Color
		if product, err := e.variants.GetProduct(ctx, old.ProductID); err == nil {
			view.ProductName = product.Name
		}
	}
	if nw, err := e.variants.GetVariant(ctx, req.NewVariantID); err == nil {
		view.NewSKU = nw.SKU
		view.NewSize = nw.Size
		view.NewColor = nw.Color
	}
	return view
}

// Exchanges builds display views for a list of exchange requests.
func (e *Enricher) Exchanges(ctx context.Context, reqs []*ExchangeRequest) []*ExchangeView {
	views := make([]*ExchangeView, 0, len(reqs))
	for _, req := range reqs {
		views = append(views, e.Exchange(ctx, req))
	}
	return views
}

func (e *Enricher) orderNo(ctx context.Context, req *ReturnRequest) string {
	ord, err := e.orders.GetOrder(ctx, req.OrderID)
	if err != nil {
		return ""
	}
	return ord.OrderNo
}
