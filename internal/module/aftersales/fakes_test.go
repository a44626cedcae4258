package aftersales

import (
	"context"
	"time"

	"github.com/diemthanh21/shopthoitrang-sub001/internal/module/catalog"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/module/chat"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/module/order"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/module/promotion"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// In-memory fakes for the collaborator interfaces. Get returns copies
// and Update stores copies so tests can assert that failed transitions
// leave the stored record untouched.

type memRepo struct {
	returns   map[uuid.UUID]ReturnRequest
	exchanges map[uuid.UUID]ExchangeRequest
	audits    []AuditLogEntry

	failAudit          bool
	failExchangeUpdate bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		returns:   make(map[uuid.UUID]ReturnRequest),
		exchanges: make(map[uuid.UUID]ExchangeRequest),
	}
}

func (m *memRepo) CreateReturn(_ context.Context, req *ReturnRequest) error {
	m.returns[req.ID] = *req
	return nil
}

func (m *memRepo) GetReturn(_ context.Context, id uuid.UUID) (*ReturnRequest, error) {
	req, ok := m.returns[id]
	if !ok {
		return nil, ErrReturnNotFound
	}
	copied := req
	return &copied, nil
}

func (m *memRepo) UpdateReturn(_ context.Context, req *ReturnRequest) error {
	m.returns[req.ID] = *req
	return nil
}

func (m *memRepo) ListReturnsByCustomer(_ context.Context, customerID uuid.UUID) ([]*ReturnRequest, error) {
	var out []*ReturnRequest
	for _, req := range m.returns {
		if req.CustomerID == customerID {
			copied := req
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memRepo) CreateExchange(_ context.Context, req *ExchangeRequest) error {
	m.exchanges[req.ID] = *req
	return nil
}

func (m *memRepo) GetExchange(_ context.Context, id uuid.UUID) (*ExchangeRequest, error) {
	req, ok := m.exchanges[id]
	if !ok {
		return nil, ErrExchangeNotFound
	}
	copied := req
	return &copied, nil
}

func (m *memRepo) UpdateExchange(_ context.Context, req *ExchangeRequest) error {
	if m.failExchangeUpdate {
		return context.DeadlineExceeded
	}
	m.exchanges[req.ID] = *req
	return nil
}

func (m *memRepo) ListExchangesByCustomer(_ context.Context, customerID uuid.UUID) ([]*ExchangeRequest, error) {
	var out []*ExchangeRequest
	for _, req := range m.exchanges {
		if req.CustomerID == customerID {
			copied := req
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memRepo) ListShippingExchanges(_ context.Context) ([]*ExchangeRequest, error) {
	var out []*ExchangeRequest
	for _, req := range m.exchanges {
		if req.Status == ExchangeNewOrderShipping && req.NewOrderID != nil {
			copied := req
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memRepo) CountOpenForOrder(_ context.Context, orderID uuid.UUID) (int64, error) {
	var open int64
	for _, req := range m.returns {
		if req.OrderID == orderID && !req.Status.IsTerminal() {
			open++
		}
	}
	for _, req := range m.exchanges {
		if req.OrderID == orderID && !req.Status.IsTerminal() {
			open++
		}
	}
	return open, nil
}

func (m *memRepo) AppendAudit(_ context.Context, entry *AuditLogEntry) error {
	if m.failAudit {
		return context.DeadlineExceeded
	}
	m.audits = append(m.audits, *entry)
	return nil
}

func (m *memRepo) ListAudit(_ context.Context, requestID uuid.UUID) ([]*AuditLogEntry, error) {
	var out []*AuditLogEntry
	for i := range m.audits {
		if m.audits[i].RequestID == requestID {
			copied := m.audits[i]
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memRepo) HardDeleteReturn(_ context.Context, id uuid.UUID) error {
	delete(m.returns, id)
	return nil
}

func (m *memRepo) HardDeleteExchange(_ context.Context, id uuid.UUID) error {
	delete(m.exchanges, id)
	return nil
}

// auditsFor filters recorded audit entries by request.
func (m *memRepo) auditsFor(requestID uuid.UUID) []AuditLogEntry {
	var out []AuditLogEntry
	for _, e := range m.audits {
		if e.RequestID == requestID {
			out = append(out, e)
		}
	}
	return out
}

type memOrders struct {
	orders map[uuid.UUID]*order.Order
	lines  map[uuid.UUID]map[uuid.UUID]*order.OrderLine
}

func newMemOrders() *memOrders {
	return &memOrders{
		orders: make(map[uuid.UUID]*order.Order),
		lines:  make(map[uuid.UUID]map[uuid.UUID]*order.OrderLine),
	}
}

func (m *memOrders) add(ord *order.Order, lines ...*order.OrderLine) {
	m.orders[ord.ID] = ord
	byVariant := make(map[uuid.UUID]*order.OrderLine)
	for _, line := range lines {
		byVariant[line.VariantID] = line
	}
	m.lines[ord.ID] = byVariant
}

func (m *memOrders) GetOrder(_ context.Context, id uuid.UUID) (*order.Order, error) {
	ord, ok := m.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return ord, nil
}

func (m *memOrders) SetStatus(_ context.Context, id uuid.UUID, status order.Status) error {
	ord, ok := m.orders[id]
	if !ok {
		return order.ErrOrderNotFound
	}
	ord.Status = status
	return nil
}

func (m *memOrders) GetLine(_ context.Context, orderID, variantID uuid.UUID) (*order.OrderLine, error) {
	line, ok := m.lines[orderID][variantID]
	if !ok {
		return nil, order.ErrLineNotFound
	}
	return line, nil
}

func (m *memOrders) GetUnitPrice(_ context.Context, orderID, variantID uuid.UUID) (decimal.Decimal, error) {
	line, err := m.GetLine(context.Background(), orderID, variantID)
	if err != nil {
		return decimal.Zero, err
	}
	return line.UnitPrice, nil
}

func (m *memOrders) CreateReplacementOrder(_ context.Context, customerID, variantID uuid.UUID, quantity int, unitPrice decimal.Decimal) (*order.Order, error) {
	amount := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	ord := &order.Order{
		ID:             uuid.New(),
		OrderNo:        "ORD-TEST-" + uuid.NewString()[:5],
		CustomerID:     customerID,
		Status:         order.StatusConfirmed,
		DeliveryStatus: order.DeliveryPreparing,
		Total:          amount,
		Currency:       "VND",
	}
	line := &order.OrderLine{
		ID:        uuid.New(),
		OrderID:   ord.ID,
		VariantID: variantID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    amount,
	}
	m.add(ord, line)
	return ord, nil
}

type memVariants struct {
	variants map[uuid.UUID]*catalog.ProductVariant
	products map[uuid.UUID]*catalog.Product
}

func newMemVariants() *memVariants {
	return &memVariants{
		variants: make(map[uuid.UUID]*catalog.ProductVariant),
		products: make(map[uuid.UUID]*catalog.Product),
	}
}

func (m *memVariants) GetVariant(_ context.Context, id uuid.UUID) (*catalog.ProductVariant, error) {
	v, ok := m.variants[id]
	if !ok {
		return nil, catalog.ErrVariantNotFound
	}
	return v, nil
}

func (m *memVariants) GetProduct(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func (m *memVariants) GetCurrentPrice(_ context.Context, variantID uuid.UUID) (decimal.Decimal, error) {
	v, ok := m.variants[variantID]
	if !ok {
		return decimal.Zero, catalog.ErrVariantNotFound
	}
	return v.Price, nil
}

type memPromotions struct {
	promos []*promotion.Promotion
}

func (m *memPromotions) FindActiveForProduct(_ context.Context, productID uuid.UUID, day time.Time) ([]*promotion.Promotion, error) {
	var out []*promotion.Promotion
	for _, p := range m.promos {
		if p.ProductID == productID && p.ActiveOn(day) {
			out = append(out, p)
		}
	}
	return out, nil
}

type memConversations struct {
	convos   map[uuid.UUID]*chat.Conversation
	messages map[uuid.UUID][]string
	fail     bool
}

func newMemConversations() *memConversations {
	return &memConversations{
		convos:   make(map[uuid.UUID]*chat.Conversation),
		messages: make(map[uuid.UUID][]string),
	}
}

func (m *memConversations) FindLatestConversation(_ context.Context, customerID uuid.UUID) (*chat.Conversation, error) {
	if m.fail {
		return nil, context.DeadlineExceeded
	}
	conv, ok := m.convos[customerID]
	if !ok {
		return nil, chat.ErrConversationNotFound
	}
	return conv, nil
}

func (m *memConversations) CreateConversation(_ context.Context, customerID, staffID uuid.UUID) (*chat.Conversation, error) {
	conv := &chat.Conversation{ID: uuid.New(), CustomerID: customerID, StaffID: staffID}
	m.convos[customerID] = conv
	return conv, nil
}

func (m *memConversations) PostSystemMessage(_ context.Context, conversationID uuid.UUID, body string) error {
	m.messages[conversationID] = append(m.messages[conversationID], body)
	return nil
}

func (m *memConversations) messagesFor(customerID uuid.UUID) []string {
	conv, ok := m.convos[customerID]
	if !ok {
		return nil
	}
	return m.messages[conv.ID]
}

// testEnv bundles a fully wired workflow stack over fakes, plus a
// seeded delivered order.
type testEnv struct {
	repo   *memRepo
	orders *memOrders
	vars   *memVariants
	promos *memPromotions
	convos *memConversations

	validator *EligibilityValidator
	returns   *ReturnService
	exchanges *ExchangeService

	customerID uuid.UUID
	orderID    uuid.UUID
	productID  uuid.UUID
	variantA   uuid.UUID // purchased, qty 2 at 150000
	variantB   uuid.UUID // same product, different size
	variantC   uuid.UUID // different product
	unitPrice  decimal.Decimal
}

func newTestEnv() *testEnv {
	env := &testEnv{
		repo:       newMemRepo(),
		orders:     newMemOrders(),
		vars:       newMemVariants(),
		promos:     &memPromotions{},
		convos:     newMemConversations(),
		customerID: uuid.New(),
		orderID:    uuid.New(),
		productID:  uuid.New(),
		variantA:   uuid.New(),
		variantB:   uuid.New(),
		variantC:   uuid.New(),
		unitPrice:  decimal.NewFromInt(150000),
	}

	env.vars.products[env.productID] = &catalog.Product{ID: env.productID, Name: "Ao thun basic"}
	env.vars.variants[env.variantA] = &catalog.ProductVariant{
		ID: env.variantA, ProductID: env.productID, SKU: "AT-BLK-M", Size: "M", Color: "black",
		Price: decimal.NewFromInt(180000),
	}
	env.vars.variants[env.variantB] = &catalog.ProductVariant{
		ID: env.variantB, ProductID: env.productID, SKU: "AT-BLK-L", Size: "L", Color: "black",
		Price: decimal.NewFromInt(180000),
	}
	otherProduct := uuid.New()
	env.vars.products[otherProduct] = &catalog.Product{ID: otherProduct, Name: "Quan jean"}
	env.vars.variants[env.variantC] = &catalog.ProductVariant{
		ID: env.variantC, ProductID: otherProduct, SKU: "QJ-BLU-32", Size: "32", Color: "blue",
		Price: decimal.NewFromInt(350000),
	}

	deliveredAt := time.Now().Add(-48 * time.Hour)
	env.orders.add(
		&order.Order{
			ID:             env.orderID,
			OrderNo:        "ORD-20260828-AAAAA",
			CustomerID:     env.customerID,
			Status:         order.StatusDelivered,
			DeliveryStatus: order.DeliveryDelivered,
			DeliveredAt:    &deliveredAt,
			Total:          decimal.NewFromInt(300000),
			Currency:       "VND",
		},
		&order.OrderLine{
			ID:        uuid.New(),
			OrderID:   env.orderID,
			VariantID: env.variantA,
			Quantity:  2,
			UnitPrice: env.unitPrice,
			Amount:    decimal.NewFromInt(300000),
		},
	)

	log := zap.NewNop()
	env.validator = NewEligibilityValidator(env.orders, env.vars, env.promos, 7*24*time.Hour)
	audit := NewAuditWriter(env.repo, log, nil)
	notifier := NewNotifier(env.convos, uuid.New(), log, nil)
	env.returns = NewReturnService(env.repo, env.orders, env.validator, audit, notifier, log, nil)
	env.exchanges = NewExchangeService(env.repo, env.orders, env.vars, env.validator, audit, notifier, log, nil)

	return env
}

func (env *testEnv) createReturn() CreateReturnInput {
	return CreateReturnInput{
		OrderID:    env.orderID,
		CustomerID: env.customerID,
		VariantID:  env.variantA,
		Quantity:   1,
		Reason:     "wrong size",
	}
}

func (env *testEnv) createExchange() CreateExchangeInput {
	return CreateExchangeInput{
		OrderID:      env.orderID,
		CustomerID:   env.customerID,
		OldVariantID: env.variantA,
		NewVariantID: env.variantB,
		Quantity:     1,
		Reason:       "need a larger size",
	}
}
