package model

import "errors"

// Business-rule violations are returned as typed errors so handlers can map
// them to client statuses; anything else is treated as an infrastructure fault.
var (
	ErrInvalidTransition  = errors.New("status transition is not permitted")
	ErrNotFound           = errors.New("not found")
	ErrSignatureMismatch  = errors.New("payment signature mismatch")
	ErrInsufficientPoints = errors.New("insufficient reward points")
	ErrItemUnavailable    = errors.New("item is not available")
	ErrPaymentInit        = errors.New("failed to create payment order")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrLoginTaken         = errors.New("login is already taken")
	ErrAccessDenied       = errors.New("access denied")
)
