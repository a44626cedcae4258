package order

import "errors"

// Module errors.
var (
	ErrOrderNotFound = errors.New("order not found")
	ErrLineNotFound  = errors.New("order line not found")
)
