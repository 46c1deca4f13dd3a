// Package lifecycle defines the order status graph and the rules for
// walking it. It holds no state: callers load the order, check the
// transition here and persist the result themselves.
package lifecycle

import "github.com/kvvPro/foodcourt/internal/model"

// next lists the statuses reachable from each status. delivered and
// cancelled are terminal, cancelled is reachable from any non-terminal state.
var next = map[string][]string{
	model.OrderStatusPending:        {model.OrderStatusConfirmed, model.OrderStatusCancelled},
	model.OrderStatusConfirmed:      {model.OrderStatusPreparing, model.OrderStatusCancelled},
	model.OrderStatusPreparing:      {model.OrderStatusOutForDelivery, model.OrderStatusCancelled},
	model.OrderStatusOutForDelivery: {model.OrderStatusDelivered, model.OrderStatusCancelled},
	model.OrderStatusDelivered:      {},
	model.OrderStatusCancelled:      {},
}

func ValidStatus(status string) bool {
	_, ok := next[status]
	return ok
}

func IsTerminal(status string) bool {
	n, ok := next[status]
	return ok && len(n) == 0
}

func CanTransition(from, to string) bool {
	for _, s := range next[from] {
		if s == to {
			return true
		}
	}
	return false
}

// InitialStatus returns order and payment status for a new order.
// Cash orders are confirmed right away, payment is collected on delivery.
// Online orders stay pending until the gateway callback is verified.
func InitialStatus(paymentMethod string) (orderStatus, paymentStatus string) {
	if paymentMethod == model.PaymentMethodCash {
		return model.OrderStatusConfirmed, model.PaymentStatusPending
	}
	return model.OrderStatusPending, model.PaymentStatusPending
}
