package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kvvPro/foodcourt/internal/gateway"
	"github.com/kvvPro/foodcourt/internal/keylock"
	"github.com/kvvPro/foodcourt/internal/model"
	"github.com/kvvPro/foodcourt/internal/payment"
	"github.com/kvvPro/foodcourt/internal/push"
	"github.com/kvvPro/foodcourt/internal/storage/memory"
)

const testSecret = "merchant-test-secret"

// fake gateway: issues "gw_<receipt>" so tests can predict the id
func newFakeGateway(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Receipt string `json:"receipt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad gateway request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "gw_" + req.Receipt})
	}))
}

func newTestServer(t *testing.T, gatewayURL string) (*Server, *memory.MemStorage) {
	t.Helper()
	Sugar = *zap.NewNop().Sugar()

	st := memory.NewMemStorage()
	st.AddFood(&model.FoodItem{ID: "food-1", Name: "Paneer Tikka", Price: 20000, Available: true})
	st.AddFood(&model.FoodItem{ID: "food-2", Name: "Masala Dosa", Price: 100000, Available: true})
	st.AddFood(&model.FoodItem{ID: "food-3", Name: "Seasonal Thali", Price: 150000, Available: true})
	st.AddFood(&model.FoodItem{ID: "food-off", Name: "Disabled dish", Price: 5000, Available: false})

	if err := st.AddUser(context.Background(), &model.User{Login: "user1", Name: "User One", Tier: model.TierBronze}); err != nil {
		t.Fatal(err)
	}

	registry := push.NewRegistry()
	srv := &Server{
		Address:       "localhost:8080",
		storage:       st,
		gateway:       gateway.New(gatewayURL, "key_test", testSecret),
		registry:      registry,
		dispatcher:    push.NewDispatcher(registry, time.Second, &Sugar),
		locks:         keylock.New(),
		gatewaySecret: testSecret,
	}
	return srv, st
}

func testUser(t *testing.T, st *memory.MemStorage, login string) *model.User {
	t.Helper()
	user, err := st.GetUser(context.Background(), login)
	if err != nil {
		t.Fatal(err)
	}
	return user
}

func addr() model.Address {
	return model.Address{
		Street:  "1 MG Road",
		City:    "Bengaluru",
		State:   "KA",
		Pincode: "560001",
		Phone:   "9999999999",
	}
}

// scenario: cash order of 2x200 rupees confirms immediately and credits
// loyalty at placement
func TestPlaceOrderCashOnDelivery(t *testing.T) {
	gw := newFakeGateway(t)
	defer gw.Close()
	srv, st := newTestServer(t, gw.URL)
	ctx := context.Background()
	user := testUser(t, st, "user1")

	order, checkout, err := srv.PlaceOrder(ctx, user, &PlaceOrderRequest{
		Items:           []PlaceOrderItem{{FoodID: "food-1", Quantity: 2}},
		DeliveryAddress: addr(),
		PaymentMethod:   model.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	if checkout != nil {
		t.Error("cash order must not return gateway checkout details")
	}
	if order.Total != 40000 {
		t.Errorf("Total = %d, want 40000", order.Total)
	}
	if order.Status != model.OrderStatusConfirmed {
		t.Errorf("Status = %v, want confirmed", order.Status)
	}
	if order.PaymentStatus != model.PaymentStatusPending {
		t.Errorf("PaymentStatus = %v, want pending (collected on delivery)", order.PaymentStatus)
	}
	if len(order.StatusUpdates) != 1 || order.StatusUpdates[0].Status != model.OrderStatusConfirmed {
		t.Errorf("unexpected audit trail: %+v", order.StatusUpdates)
	}

	user = testUser(t, st, "user1")
	if user.RewardPoints != 40 {
		t.Errorf("RewardPoints = %d, want 40", user.RewardPoints)
	}
	if user.TotalSpent != 40000 {
		t.Errorf("TotalSpent = %d, want 40000", user.TotalSpent)
	}

	history, _ := st.GetPointHistory(ctx, "user1")
	if len(history) != 1 || history[0].Kind != model.PointsEarned || history[0].Points != 40 {
		t.Errorf("unexpected point history: %+v", history)
	}
}

// the total is computed from catalog prices, not from anything the client sent
func TestPlaceOrderRepricesServerSide(t *testing.T) {
	gw := newFakeGateway(t)
	defer gw.Close()
	srv, st := newTestServer(t, gw.URL)
	user := testUser(t, st, "user1")

	order, _, err := srv.PlaceOrder(context.Background(), user, &PlaceOrderRequest{
		Items: []PlaceOrderItem{
			{FoodID: "food-1", Quantity: 1},
			{FoodID: "food-2", Quantity: 3},
		},
		DeliveryAddress: addr(),
		PaymentMethod:   model.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	if order.Total != 20000+3*100000 {
		t.Errorf("Total = %d, want 320000", order.Total)
	}
	for _, item := range order.Items {
		if item.UnitPrice == 0 {
			t.Errorf("line item %v has no price snapshot", item.FoodID)
		}
	}
}

func TestPlaceOrderItemUnavailable(t *testing.T) {
	gw := newFakeGateway(t)
	defer gw.Close()
	srv, st := newTestServer(t, gw.URL)
	user := testUser(t, st, "user1")

	tests := []struct {
		name   string
		foodID string
	}{
		{name: "unknown_item", foodID: "no-such-food"},
		{name: "disabled_item", foodID: "food-off"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := srv.PlaceOrder(context.Background(), user, &PlaceOrderRequest{
				Items:           []PlaceOrderItem{{FoodID: tt.foodID, Quantity: 1}},
				DeliveryAddress: addr(),
				PaymentMethod:   model.PaymentMethodCash,
			})
			if !errors.Is(err, model.ErrItemUnavailable) {
				t.Errorf("PlaceOrder() error = %v, want ErrItemUnavailable", err)
			}
		})
	}
}

// scenario: online order stays pending until the signed callback arrives,
// loyalty credits exactly once even when the callback is retried
func TestOnlinePaymentFlow(t *testing.T) {
	gw := newFakeGateway(t)
	defer gw.Close()
	srv, st := newTestServer(t, gw.URL)
	ctx := context.Background()
	user := testUser(t, st, "user1")

	order, checkout, err := srv.PlaceOrder(ctx, user, &PlaceOrderRequest{
		Items:           []PlaceOrderItem{{FoodID: "food-2", Quantity: 1}},
		DeliveryAddress: addr(),
		PaymentMethod:   model.PaymentMethodOnline,
	})
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	if order.Status != model.OrderStatusPending || order.PaymentStatus != model.PaymentStatusPending {
		t.Fatalf("online order must start pending/pending, got %v/%v", order.Status, order.PaymentStatus)
	}
	if checkout == nil || checkout.GatewayOrderID != "gw_"+order.ID {
		t.Fatalf("unexpected checkout details: %+v", checkout)
	}
	if checkout.Amount != 100000 || checkout.Currency != "INR" {
		t.Errorf("checkout amount/currency = %d/%v, want 100000/INR", checkout.Amount, checkout.Currency)
	}

	sig := payment.Sign(checkout.GatewayOrderID, "pay_1", testSecret)

	confirmed, err := srv.ConfirmPayment(ctx, checkout.GatewayOrderID, "pay_1", sig)
	if err != nil {
		t.Fatalf("ConfirmPayment() error = %v", err)
	}
	if confirmed.PaymentStatus != model.PaymentStatusCompleted {
		t.Errorf("PaymentStatus = %v, want completed", confirmed.PaymentStatus)
	}
	if confirmed.Status != model.OrderStatusConfirmed {
		t.Errorf("Status = %v, want confirmed", confirmed.Status)
	}
	if confirmed.PaymentDetails.GatewayPaymentID != "pay_1" {
		t.Errorf("GatewayPaymentID = %v, want pay_1", confirmed.PaymentDetails.GatewayPaymentID)
	}

	user = testUser(t, st, "user1")
	if user.RewardPoints != 100 {
		t.Errorf("RewardPoints = %d, want 100", user.RewardPoints)
	}

	// gateway retries the callback with the same valid signature
	again, err := srv.ConfirmPayment(ctx, checkout.GatewayOrderID, "pay_1", sig)
	if err != nil {
		t.Fatalf("repeated ConfirmPayment() error = %v", err)
	}
	if again.PaymentStatus != model.PaymentStatusCompleted {
		t.Errorf("repeated confirm: PaymentStatus = %v, want completed", again.PaymentStatus)
	}

	user = testUser(t, st, "user1")
	if user.RewardPoints != 100 {
		t.Errorf("RewardPoints after duplicate callback = %d, want 100 (no double credit)", user.RewardPoints)
	}
	if user.TotalSpent != 100000 {
		t.Errorf("TotalSpent after duplicate callback = %d, want 100000", user.TotalSpent)
	}
}

// scenario: tampered signature leaves the order untouched
func TestConfirmPaymentTamperedSignature(t *testing.T) {
	gw := newFakeGateway(t)
	defer gw.Close()
	srv, st := newTestServer(t, gw.URL)
	ctx := context.Background()
	user := testUser(t, st, "user1")

	order, checkout, err := srv.PlaceOrder(ctx, user, &PlaceOrderRequest{
		Items:           []PlaceOrderItem{{FoodID: "food-2", Quantity: 1}},
		DeliveryAddress: addr(),
		PaymentMethod:   model.PaymentMethodOnline,
	})
	if err != nil {
		t.Fatal(err)
	}

	sig := payment.Sign(checkout.GatewayOrderID, "pay_1", "wrong-secret")
	_, err = srv.ConfirmPayment(ctx, checkout.GatewayOrderID, "pay_1", sig)
	if !errors.Is(err, model.ErrSignatureMismatch) {
		t.Fatalf("ConfirmPayment() error = %v, want ErrSignatureMismatch", err)
	}

	stored, _ := st.GetOrder(ctx, order.ID)
	if stored.Status != model.OrderStatusPending || stored.PaymentStatus != model.PaymentStatusPending {
		t.Errorf("order changed after mismatch: %v/%v, want pending/pending", stored.Status, stored.PaymentStatus)
	}

	user = testUser(t, st, "user1")
	if user.RewardPoints != 0 {
		t.Errorf("RewardPoints = %d, want 0", user.RewardPoints)
	}
}

func TestConfirmPaymentUnknownOrder(t *testing.T) {
	gw := newFakeGateway(t)
	defer gw.Close()
	srv, _ := newTestServer(t, gw.URL)

	sig := payment.Sign("gw_ghost", "pay_1", testSecret)
	_, err := srv.ConfirmPayment(context.Background(), "gw_ghost", "pay_1", sig)
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("ConfirmPayment() error = %v, want ErrNotFound", err)
	}
}

// gateway down: the order is persisted pending with no gateway reference and
// the caller gets a retryable PaymentInit error
func TestPlaceOrderGatewayUnavailable(t *testing.T) {
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusServiceUnavailable)
	}))
	defer gw.Close()
	srv, st := newTestServer(t, gw.URL)
	ctx := context.Background()
	user := testUser(t, st, "user1")

	order, checkout, err := srv.PlaceOrder(ctx, user, &PlaceOrderRequest{
		Items:           []PlaceOrderItem{{FoodID: "food-1", Quantity: 1}},
		DeliveryAddress: addr(),
		PaymentMethod:   model.PaymentMethodOnline,
	})
	if !errors.Is(err, model.ErrPaymentInit) {
		t.Fatalf("PlaceOrder() error = %v, want ErrPaymentInit", err)
	}
	if checkout != nil {
		t.Error("no checkout details expected when the gateway is down")
	}
	if order == nil {
		t.Fatal("order must still be returned for retry")
	}

	stored, err := st.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("order must be persisted despite the gateway failure: %v", err)
	}
	if stored.Status != model.OrderStatusPending || stored.PaymentDetails.GatewayOrderID != "" {
		t.Errorf("stored order = %v with gateway ref %q, want pending with no ref",
			stored.Status, stored.PaymentDetails.GatewayOrderID)
	}
}

func TestTransitionStatus(t *testing.T) {
	gw := newFakeGateway(t)
	defer gw.Close()
	srv, st := newTestServer(t, gw.URL)
	ctx := context.Background()
	user := testUser(t, st, "user1")

	order, _, err := srv.PlaceOrder(ctx, user, &PlaceOrderRequest{
		Items:           []PlaceOrderItem{{FoodID: "food-1", Quantity: 1}},
		DeliveryAddress: addr(),
		PaymentMethod:   model.PaymentMethodCash,
	})
	if err != nil {
		t.Fatal(err)
	}

	walk := []string{
		model.OrderStatusPreparing,
		model.OrderStatusOutForDelivery,
		model.OrderStatusDelivered,
	}
	for _, status := range walk {
		if _, err := srv.TransitionStatus(ctx, order.ID, status, ""); err != nil {
			t.Fatalf("TransitionStatus(%v) error = %v", status, err)
		}
	}

	stored, _ := st.GetOrder(ctx, order.ID)
	if len(stored.StatusUpdates) != 4 {
		t.Fatalf("audit trail has %d entries, want 4", len(stored.StatusUpdates))
	}
	wantTrail := []string{
		model.OrderStatusConfirmed,
		model.OrderStatusPreparing,
		model.OrderStatusOutForDelivery,
		model.OrderStatusDelivered,
	}
	for i, want := range wantTrail {
		if stored.StatusUpdates[i].Status != want {
			t.Errorf("trail[%d] = %v, want %v", i, stored.StatusUpdates[i].Status, want)
		}
	}

	// scenario: a terminal order rejects further transitions, trail unchanged
	_, err = srv.TransitionStatus(ctx, order.ID, model.OrderStatusPreparing, "")
	if !errors.Is(err, model.ErrInvalidTransition) {
		t.Fatalf("TransitionStatus() after delivered error = %v, want ErrInvalidTransition", err)
	}
	stored, _ = st.GetOrder(ctx, order.ID)
	if len(stored.StatusUpdates) != 4 {
		t.Errorf("audit trail grew to %d entries after rejected transition", len(stored.StatusUpdates))
	}
}

func TestTransitionStatusUnknownOrder(t *testing.T) {
	gw := newFakeGateway(t)
	defer gw.Close()
	srv, _ := newTestServer(t, gw.URL)

	_, err := srv.TransitionStatus(context.Background(), "no-such-order", model.OrderStatusPreparing, "")
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("TransitionStatus() error = %v, want ErrNotFound", err)
	}
}

// scenario: one order pushes lifetime spend over the silver threshold
func TestTierUpgradeOnThreshold(t *testing.T) {
	gw := newFakeGateway(t)
	defer gw.Close()
	srv, st := newTestServer(t, gw.URL)
	ctx := context.Background()

	if err := st.AddUser(ctx, &model.User{
		Login: "spender", Name: "Big Spender",
		Tier: model.TierBronze, TotalSpent: 900000, // 9000 rupees
	}); err != nil {
		t.Fatal(err)
	}
	user := testUser(t, st, "spender")

	_, _, err := srv.PlaceOrder(ctx, user, &PlaceOrderRequest{
		Items:           []PlaceOrderItem{{FoodID: "food-3", Quantity: 1}}, // 1500 rupees
		DeliveryAddress: addr(),
		PaymentMethod:   model.PaymentMethodCash,
	})
	if err != nil {
		t.Fatal(err)
	}

	user = testUser(t, st, "spender")
	if user.TotalSpent != 1050000 {
		t.Errorf("TotalSpent = %d, want 1050000", user.TotalSpent)
	}
	if user.Tier != model.TierSilver {
		t.Errorf("Tier = %v, want Silver", user.Tier)
	}
}

func TestRedeemPoints(t *testing.T) {
	gw := newFakeGateway(t)
	defer gw.Close()
	srv, st := newTestServer(t, gw.URL)
	ctx := context.Background()
	user := testUser(t, st, "user1")

	order, _, err := srv.PlaceOrder(ctx, user, &PlaceOrderRequest{
		Items:           []PlaceOrderItem{{FoodID: "food-2", Quantity: 1}},
		DeliveryAddress: addr(),
		PaymentMethod:   model.PaymentMethodCash,
	})
	if err != nil {
		t.Fatal(err)
	}
	// balance is now 100

	if _, err := srv.RedeemPoints(ctx, "user1", 101, order.ID); !errors.Is(err, model.ErrInsufficientPoints) {
		t.Fatalf("RedeemPoints(101) error = %v, want ErrInsufficientPoints", err)
	}
	if got := testUser(t, st, "user1").RewardPoints; got != 100 {
		t.Errorf("balance after failed redeem = %d, want 100", got)
	}

	updated, err := srv.RedeemPoints(ctx, "user1", 60, order.ID)
	if err != nil {
		t.Fatalf("RedeemPoints(60) error = %v", err)
	}
	if updated.RewardPoints != 40 {
		t.Errorf("balance after redeem = %d, want 40", updated.RewardPoints)
	}

	history, _ := st.GetPointHistory(ctx, "user1")
	if len(history) != 2 || history[1].Kind != model.PointsRedeemed || history[1].Points != 60 {
		t.Errorf("unexpected point history: %+v", history)
	}
}

func TestUpdateLocationAndRead(t *testing.T) {
	gw := newFakeGateway(t)
	defer gw.Close()
	srv, st := newTestServer(t, gw.URL)
	ctx := context.Background()
	user := testUser(t, st, "user1")

	order, _, err := srv.PlaceOrder(ctx, user, &PlaceOrderRequest{
		Items:           []PlaceOrderItem{{FoodID: "food-1", Quantity: 1}},
		DeliveryAddress: addr(),
		PaymentMethod:   model.PaymentMethodCash,
	})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := srv.UpdateLocation(ctx, order.ID, 12.9716, 77.5946)
	if err != nil {
		t.Fatalf("UpdateLocation() error = %v", err)
	}
	if updated.CurrentLocation == nil ||
		updated.CurrentLocation.Latitude != 12.9716 ||
		updated.CurrentLocation.Longitude != 77.5946 {
		t.Errorf("unexpected location: %+v", updated.CurrentLocation)
	}

	got, err := srv.OrderForUser(ctx, order.ID, user)
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentLocation == nil {
		t.Error("location lost on read")
	}
	if got.EstimatedTime == nil {
		t.Error("active order must carry a delivery estimate")
	}

	// another user must not see the order
	if err := st.AddUser(ctx, &model.User{Login: "stranger", Tier: model.TierBronze}); err != nil {
		t.Fatal(err)
	}
	stranger := testUser(t, st, "stranger")
	if _, err := srv.OrderForUser(ctx, order.ID, stranger); !errors.Is(err, model.ErrAccessDenied) {
		t.Errorf("OrderForUser() for stranger error = %v, want ErrAccessDenied", err)
	}
}

// concurrent duplicate callbacks must serialize on the order lock and credit
// loyalty exactly once
func TestConcurrentConfirmPayment(t *testing.T) {
	gw := newFakeGateway(t)
	defer gw.Close()
	srv, st := newTestServer(t, gw.URL)
	ctx := context.Background()
	user := testUser(t, st, "user1")

	_, checkout, err := srv.PlaceOrder(ctx, user, &PlaceOrderRequest{
		Items:           []PlaceOrderItem{{FoodID: "food-2", Quantity: 1}},
		DeliveryAddress: addr(),
		PaymentMethod:   model.PaymentMethodOnline,
	})
	if err != nil {
		t.Fatal(err)
	}
	sig := payment.Sign(checkout.GatewayOrderID, "pay_1", testSecret)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := srv.ConfirmPayment(ctx, checkout.GatewayOrderID, "pay_1", sig); err != nil {
				t.Errorf("ConfirmPayment() error = %v", err)
			}
		}()
	}
	wg.Wait()

	user = testUser(t, st, "user1")
	if user.RewardPoints != 100 {
		t.Errorf("RewardPoints after concurrent callbacks = %d, want 100", user.RewardPoints)
	}
	history, _ := st.GetPointHistory(ctx, "user1")
	if len(history) != 1 {
		t.Errorf("point history has %d entries, want 1", len(history))
	}
}

// a transition pushes an orderUpdate frame to the registered connection
func TestTransitionDispatchesOrderUpdate(t *testing.T) {
	gw := newFakeGateway(t)
	defer gw.Close()
	srv, st := newTestServer(t, gw.URL)
	ctx := context.Background()
	user := testUser(t, st, "user1")

	conn := &capturingConn{}
	srv.registry.Register("user1", conn)

	order, _, err := srv.PlaceOrder(ctx, user, &PlaceOrderRequest{
		Items:           []PlaceOrderItem{{FoodID: "food-1", Quantity: 1}},
		DeliveryAddress: addr(),
		PaymentMethod:   model.PaymentMethodCash,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := srv.TransitionStatus(ctx, order.ID, model.OrderStatusPreparing, "kitchen started"); err != nil {
		t.Fatal(err)
	}

	frame := conn.frameOfType(t, "orderUpdate")
	if frame["orderId"] != order.ID || frame["status"] != model.OrderStatusPreparing {
		t.Errorf("unexpected orderUpdate frame: %v", frame)
	}
}

// a dead connection must not fail the transition that triggered the push
func TestBrokenPushConnectionDoesNotFailTransition(t *testing.T) {
	gw := newFakeGateway(t)
	defer gw.Close()
	srv, st := newTestServer(t, gw.URL)
	ctx := context.Background()
	user := testUser(t, st, "user1")

	srv.registry.Register("user1", &capturingConn{writeErr: errors.New("broken pipe")})

	order, _, err := srv.PlaceOrder(ctx, user, &PlaceOrderRequest{
		Items:           []PlaceOrderItem{{FoodID: "food-1", Quantity: 1}},
		DeliveryAddress: addr(),
		PaymentMethod:   model.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("PlaceOrder() with broken push connection error = %v", err)
	}
	if _, err := srv.TransitionStatus(ctx, order.ID, model.OrderStatusPreparing, ""); err != nil {
		t.Fatalf("TransitionStatus() with broken push connection error = %v", err)
	}
}

func TestNotificationsPersisted(t *testing.T) {
	gw := newFakeGateway(t)
	defer gw.Close()
	srv, st := newTestServer(t, gw.URL)
	ctx := context.Background()
	user := testUser(t, st, "user1")

	if _, _, err := srv.PlaceOrder(ctx, user, &PlaceOrderRequest{
		Items:           []PlaceOrderItem{{FoodID: "food-1", Quantity: 1}},
		DeliveryAddress: addr(),
		PaymentMethod:   model.PaymentMethodCash,
	}); err != nil {
		t.Fatal(err)
	}

	notifications, err := srv.Notifications(ctx, "user1")
	if err != nil {
		t.Fatal(err)
	}
	if len(notifications) != 1 || notifications[0].Kind != model.NotifyOrder {
		t.Errorf("unexpected notifications: %+v", notifications)
	}
}

type capturingConn struct {
	mu       sync.Mutex
	frames   []map[string]any
	writeErr error
}

func (c *capturingConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var frame map[string]any
	if err := json.Unmarshal(data, &frame); err != nil {
		return err
	}
	c.frames = append(c.frames, frame)
	return nil
}

func (c *capturingConn) SetWriteDeadline(time.Time) error { return nil }

func (c *capturingConn) Close() error { return nil }

func (c *capturingConn) frameOfType(t *testing.T, frameType string) map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, frame := range c.frames {
		if frame["type"] == frameType {
			return frame
		}
	}
	t.Fatalf("no %v frame delivered, got %v", frameType, c.frames)
	return nil
}
