package aftersales

// ReturnStatus is the workflow status of a return request.
type ReturnStatus string

const (
	ReturnPending                    ReturnStatus = "pending"
	ReturnApprovedAwaitingShipment   ReturnStatus = "approved_awaiting_shipment"
	ReturnReceivedAwaitingInspection ReturnStatus = "received_awaiting_inspection"
	ReturnEligibleForRefund          ReturnStatus = "eligible_for_refund"
	ReturnRefunded                   ReturnStatus = "refunded"
	ReturnRejected                   ReturnStatus = "rejected"
	ReturnInvalid                    ReturnStatus = "invalid"
)

// IsTerminal returns true if no further transition is permitted.
func (s ReturnStatus) IsTerminal() bool {
	switch s {
	case ReturnRefunded, ReturnRejected, ReturnInvalid:
		return true
	}
	return false
}

// ExchangeStatus is the workflow status of an exchange request.
type ExchangeStatus string

const (
	ExchangePending                       ExchangeStatus = "pending"
	ExchangeApprovedAwaitingOldShipment   ExchangeStatus = "approved_awaiting_old_shipment"
	ExchangeOldReceivedAwaitingInspection ExchangeStatus = "old_received_awaiting_inspection"
	ExchangeAwaitingNewOrder              ExchangeStatus = "awaiting_new_order"
	ExchangeNewOrderShipping              ExchangeStatus = "new_order_shipping"
	ExchangeCompleted                     ExchangeStatus = "completed"
	ExchangeRejected                      ExchangeStatus = "rejected"
	ExchangeInvalid                       ExchangeStatus = "invalid"
)

// IsTerminal returns true if no further transition is permitted.
func (s ExchangeStatus) IsTerminal() bool {
	switch s {
	case ExchangeCompleted, ExchangeRejected, ExchangeInvalid:
		return true
	}
	return false
}

// InspectionStatus is the secondary classification set when returned
// goods are inspected.
type InspectionStatus string

const (
	InspectionEligible InspectionStatus = "eligible"
	InspectionInvalid  InspectionStatus = "invalid"
)

// ExtraPaymentStatus tracks the price-difference side-flow on exchanges.
// Only diff previews feed it today; the main transitions do not gate on it.
type ExtraPaymentStatus string

const (
	ExtraPaymentNone      ExtraPaymentStatus = "none"
	ExtraPaymentRequested ExtraPaymentStatus = "requested"
	ExtraPaymentPaid      ExtraPaymentStatus = "paid"
	ExtraPaymentRefundDue ExtraPaymentStatus = "refund_due"
)

// ActorType identifies who triggered a transition.
type ActorType string

const (
	ActorCustomer ActorType = "CUSTOMER"
	ActorStaff    ActorType = "STAFF"
	ActorAdmin    ActorType = "ADMIN"
	ActorSystem   ActorType = "SYSTEM"
)

// Action is the audit verb recorded for a transition.
type Action string

const (
	ActionCreate          Action = "CREATE"
	ActionAccept          Action = "ACCEPT"
	ActionReject          Action = "REJECT"
	ActionMarkReceived    Action = "MARK_RECEIVED"
	ActionMarkInvalid     Action = "MARK_INVALID"
	ActionMarkValid       Action = "MARK_VALID"
	ActionCalculateRefund Action = "CALCULATE_REFUND"
	ActionProcessRefund   Action = "PROCESS_REFUND"
	ActionCreateNewOrder  Action = "CREATE_NEW_ORDER"
	ActionComplete        Action = "COMPLETE"
	ActionAutoComplete    Action = "AUTO_COMPLETE"
)

// RequestKind distinguishes the two request types in shared records.
type RequestKind string

const (
	KindReturn   RequestKind = "return"
	KindExchange RequestKind = "exchange"
)
