package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jackc/pgerrcode"
	"github.com/kvvPro/foodcourt/internal/lifecycle"
	"github.com/kvvPro/foodcourt/internal/loyalty"
	"github.com/kvvPro/foodcourt/internal/model"
	"github.com/kvvPro/foodcourt/internal/payment"
	"github.com/kvvPro/foodcourt/internal/retry"
)

const (
	gatewayCurrency = "INR"
	// shown on reads of active orders, the kitchen has no real ETA feed
	estimatedDeliveryDelay = 45 * time.Minute
)

type PlaceOrderItem struct {
	FoodID   string `json:"foodId"`
	Quantity int64  `json:"quantity"`
}

type PlaceOrderRequest struct {
	Items           []PlaceOrderItem `json:"items"`
	DeliveryAddress model.Address    `json:"deliveryAddress"`
	PaymentMethod   string           `json:"paymentMethod"`
}

// GatewayCheckout is what the client needs to open the payment sheet for an
// online order.
type GatewayCheckout struct {
	Key            string `json:"key"`
	GatewayOrderID string `json:"orderId"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Name           string `json:"name"`
	Description    string `json:"description"`
}

// isConnErr marks storage errors worth another attempt.
func isConnErr(errAttempt error) bool {
	var pgErr *pgconn.PgError
	if errors.As(errAttempt, &pgErr) && pgerrcode.IsConnectionException(pgErr.Code) {
		return true
	}
	return false
}

func storageRetryOpts(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.RetryIf(isConnErr),
		retry.Attempts(3),
		retry.InitDelay(5 * time.Millisecond),
		retry.Step(2 * time.Millisecond),
		retry.Context(ctx),
	}
}

// PlaceOrder validates and re-prices the cart, persists the order and, for
// online payment, registers a checkout session with the gateway. If the
// gateway is unreachable the order is still persisted in pending with no
// gateway reference, so the client can retry payment initiation without
// creating a duplicate order.
func (srv *Server) PlaceOrder(ctx context.Context, userInfo *model.User, request *PlaceOrderRequest) (*model.Order, *GatewayCheckout, error) {
	if len(request.Items) == 0 {
		return nil, nil, fmt.Errorf("%w: order has no items", model.ErrInvalidRequest)
	}
	if request.PaymentMethod != model.PaymentMethodCash && request.PaymentMethod != model.PaymentMethodOnline {
		return nil, nil, fmt.Errorf("%w: unknown payment method %q", model.ErrInvalidRequest, request.PaymentMethod)
	}

	// re-fetch authoritative prices, never trust the client
	items := make([]model.LineItem, 0, len(request.Items))
	var total int64
	for _, requested := range request.Items {
		if requested.Quantity < 1 {
			return nil, nil, fmt.Errorf("%w: quantity must be at least 1", model.ErrInvalidRequest)
		}

		var food *model.FoodItem
		var err error
		err = retry.Do(func() error {
			food, err = srv.storage.GetFood(ctx, requested.FoodID)
			return err
		}, storageRetryOpts(ctx)...)
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %v", model.ErrItemUnavailable, requested.FoodID)
		}
		if err != nil {
			Sugar.Errorln(err)
			return nil, nil, err
		}
		if !food.Available {
			return nil, nil, fmt.Errorf("%w: %v", model.ErrItemUnavailable, requested.FoodID)
		}

		items = append(items, model.LineItem{
			FoodID:    food.ID,
			Name:      food.Name,
			Quantity:  requested.Quantity,
			UnitPrice: food.Price,
		})
		total += food.Price * requested.Quantity
	}

	now := time.Now()
	status, paymentStatus := lifecycle.InitialStatus(request.PaymentMethod)
	order := &model.Order{
		ID:              uuid.NewString(),
		Owner:           userInfo.Login,
		Items:           items,
		Total:           total,
		DeliveryAddress: request.DeliveryAddress,
		Status:          status,
		PaymentMethod:   request.PaymentMethod,
		PaymentStatus:   paymentStatus,
		StatusUpdates: []model.StatusUpdate{
			{Status: status, Timestamp: now, Note: "Order created"},
		},
		CreatedAt: now,
	}

	// the gateway call happens before any lock is taken, it is the only
	// external network hop in order placement
	var checkout *GatewayCheckout
	var gatewayErr error
	if request.PaymentMethod == model.PaymentMethodOnline {
		gatewayOrderID, err := srv.gateway.CreateOrder(ctx, total, gatewayCurrency, order.ID)
		if err != nil {
			Sugar.Errorln("gateway order creation failed: ", err.Error())
			gatewayErr = fmt.Errorf("%w: %v", model.ErrPaymentInit, err)
		} else {
			order.PaymentDetails.GatewayOrderID = gatewayOrderID
			checkout = &GatewayCheckout{
				Key:            srv.gateway.KeyID(),
				GatewayOrderID: gatewayOrderID,
				Amount:         total,
				Currency:       gatewayCurrency,
				Name:           "Food Delivery",
				Description:    "Food Order Payment",
			}
		}
	}

	err := retry.Do(func() error {
		return srv.storage.SaveOrder(ctx, order)
	}, storageRetryOpts(ctx)...)
	if err != nil {
		Sugar.Errorln(err)
		return nil, nil, err
	}

	if gatewayErr != nil {
		return order, nil, gatewayErr
	}

	// revenue is recognized at placement for cash orders
	if request.PaymentMethod == model.PaymentMethodCash {
		if err := srv.applyCompletedOrder(ctx, order); err != nil {
			Sugar.Errorln(err)
			return nil, nil, err
		}
	}

	srv.notifyUser(ctx, userInfo.Login,
		fmt.Sprintf("Your order #%v has been placed successfully.", order.ID),
		model.NotifyOrder)

	return order, checkout, nil
}

// ConfirmPayment handles the signed gateway callback. It is idempotent:
// verifying an already-completed payment returns the order unchanged and does
// not credit loyalty points again.
func (srv *Server) ConfirmPayment(ctx context.Context, gatewayOrderID, paymentID, signature string) (*model.Order, error) {
	verified, err := payment.Verify(gatewayOrderID, paymentID, signature, srv.gatewaySecret)
	if err != nil {
		return nil, err
	}

	found, err := srv.orderByGatewayID(ctx, gatewayOrderID)
	if err != nil {
		return nil, err
	}

	if !verified {
		// order stays pending, the client may retry with a correct signature
		return nil, model.ErrSignatureMismatch
	}

	unlock := srv.locks.Lock("order:" + found.ID)
	defer unlock()

	// reload under the lock, a concurrent callback may have won the race
	order, err := srv.getOrder(ctx, found.ID)
	if err != nil {
		return nil, err
	}

	if order.PaymentStatus == model.PaymentStatusCompleted {
		return order, nil
	}

	order.PaymentStatus = model.PaymentStatusCompleted
	order.PaymentDetails.GatewayPaymentID = paymentID
	order.PaymentDetails.Signature = signature
	if order.Status == model.OrderStatusPending {
		order.Status = model.OrderStatusConfirmed
		order.StatusUpdates = append(order.StatusUpdates, model.StatusUpdate{
			Status:    model.OrderStatusConfirmed,
			Timestamp: time.Now(),
			Note:      "Payment confirmed",
		})
	}

	if err := srv.updateOrder(ctx, order); err != nil {
		return nil, err
	}

	if err := srv.applyCompletedOrder(ctx, order); err != nil {
		Sugar.Errorln(err)
		return nil, err
	}

	srv.notifyUser(ctx, order.Owner,
		fmt.Sprintf("Payment for order #%v has been confirmed.", order.ID),
		model.NotifyPayment)
	srv.dispatcher.OrderUpdate(order.Owner, order.ID, order.Status, nil)

	return order, nil
}

// TransitionStatus moves the order along the lifecycle graph and appends the
// audit entry. The owning user gets an orderUpdate push.
func (srv *Server) TransitionStatus(ctx context.Context, orderID, newStatus, note string) (*model.Order, error) {
	if !lifecycle.ValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrInvalidRequest, newStatus)
	}

	unlock := srv.locks.Lock("order:" + orderID)
	defer unlock()

	order, err := srv.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !lifecycle.CanTransition(order.Status, newStatus) {
		return nil, fmt.Errorf("%w: %v -> %v", model.ErrInvalidTransition, order.Status, newStatus)
	}

	order.Status = newStatus
	order.StatusUpdates = append(order.StatusUpdates, model.StatusUpdate{
		Status:    newStatus,
		Timestamp: time.Now(),
		Note:      note,
	})

	if err := srv.updateOrder(ctx, order); err != nil {
		return nil, err
	}

	srv.dispatcher.OrderUpdate(order.Owner, order.ID, newStatus, nil)

	return order, nil
}

// UpdateLocation records the courier position and pushes it to the owner.
func (srv *Server) UpdateLocation(ctx context.Context, orderID string, latitude, longitude float64) (*model.Order, error) {
	unlock := srv.locks.Lock("order:" + orderID)
	defer unlock()

	order, err := srv.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.CurrentLocation = &model.Location{
		Latitude:  latitude,
		Longitude: longitude,
		UpdatedAt: time.Now(),
	}

	if err := srv.updateOrder(ctx, order); err != nil {
		return nil, err
	}

	srv.dispatcher.OrderUpdate(order.Owner, order.ID, "location_update", map[string]any{
		"location": order.CurrentLocation,
	})

	return order, nil
}

// OrderForUser loads a single order with the owner/admin access check.
func (srv *Server) OrderForUser(ctx context.Context, orderID string, userInfo *model.User) (*model.Order, error) {
	order, err := srv.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Owner != userInfo.Login && !userInfo.IsAdmin {
		return nil, model.ErrAccessDenied
	}

	withEstimate(order)
	return order, nil
}

func (srv *Server) OrderList(ctx context.Context, userInfo *model.User) ([]*model.Order, error) {
	var err error
	var orders []*model.Order

	err = retry.Do(func() error {
		orders, err = srv.storage.GetUserOrders(ctx, userInfo.Login)
		return err
	}, storageRetryOpts(ctx)...)
	if err != nil {
		Sugar.Errorln(err)
		return nil, err
	}

	for _, order := range orders {
		withEstimate(order)
	}
	return orders, nil
}

func (srv *Server) AdminOrderList(ctx context.Context, status string) ([]*model.Order, error) {
	if status != "" && !lifecycle.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrInvalidRequest, status)
	}

	var err error
	var orders []*model.Order

	err = retry.Do(func() error {
		orders, err = srv.storage.GetAllOrders(ctx, status)
		return err
	}, storageRetryOpts(ctx)...)
	if err != nil {
		Sugar.Errorln(err)
		return nil, err
	}

	return orders, nil
}

// applyCompletedOrder credits loyalty for an order exactly once, guarded by
// the persisted flag. Callers hold the order lock for any order that can see
// concurrent payment callbacks.
func (srv *Server) applyCompletedOrder(ctx context.Context, order *model.Order) error {
	if order.LoyaltyApplied {
		return nil
	}

	unlock := srv.locks.Lock("user:" + order.Owner)
	defer unlock()

	user, err := srv.getUser(ctx, order.Owner)
	if err != nil {
		return err
	}

	entry := loyalty.ApplyCompletedOrder(user, order.Total, order.ID)

	err = retry.Do(func() error {
		return srv.storage.UpdateUserLoyalty(ctx, user, entry)
	}, storageRetryOpts(ctx)...)
	if err != nil {
		return err
	}

	order.LoyaltyApplied = true
	return srv.updateOrder(ctx, order)
}

func (srv *Server) getOrder(ctx context.Context, orderID string) (*model.Order, error) {
	var err error
	var order *model.Order

	err = retry.Do(func() error {
		order, err = srv.storage.GetOrder(ctx, orderID)
		return err
	}, storageRetryOpts(ctx)...)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			Sugar.Errorln(err)
		}
		return nil, err
	}

	return order, nil
}

func (srv *Server) orderByGatewayID(ctx context.Context, gatewayOrderID string) (*model.Order, error) {
	var err error
	var order *model.Order

	err = retry.Do(func() error {
		order, err = srv.storage.GetOrderByGatewayID(ctx, gatewayOrderID)
		return err
	}, storageRetryOpts(ctx)...)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			Sugar.Errorln(err)
		}
		return nil, err
	}

	return order, nil
}

func (srv *Server) updateOrder(ctx context.Context, order *model.Order) error {
	err := retry.Do(func() error {
		return srv.storage.UpdateOrder(ctx, order)
	}, storageRetryOpts(ctx)...)
	if err != nil {
		Sugar.Errorln(err)
	}
	return err
}

// notifyUser persists the notification and pushes it to a live connection if
// one is registered. Neither path may fail the calling operation.
func (srv *Server) notifyUser(ctx context.Context, login, message, kind string) {
	err := retry.Do(func() error {
		return srv.storage.AddNotification(ctx, login, model.Notification{
			Message:   message,
			Kind:      kind,
			CreatedAt: time.Now(),
		})
	}, storageRetryOpts(ctx)...)
	if err != nil {
		Sugar.Errorln("can't save notification: ", err.Error())
	}

	srv.dispatcher.Notify(login, message, kind)
}

func withEstimate(order *model.Order) {
	if lifecycle.IsTerminal(order.Status) {
		return
	}
	estimate := time.Now().Add(estimatedDeliveryDelay)
	order.EstimatedTime = &estimate
}
