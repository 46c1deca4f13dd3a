package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
			t.Errorf("unexpected request %v %v", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key_test" || pass != "secret_test" {
			t.Errorf("missing or wrong basic auth: %v %v", user, pass)
		}

		var req createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Amount != 100000 || req.Currency != "INR" || req.Receipt != "order-1" {
			t.Errorf("unexpected request body: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(createOrderResponse{ID: "gw_order_123"})
	}))
	defer srv.Close()

	client := New(srv.URL, "key_test", "secret_test")
	id, err := client.CreateOrder(context.Background(), 100000, "INR", "order-1")
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if id != "gw_order_123" {
		t.Errorf("CreateOrder() = %v, want gw_order_123", id)
	}
}

func TestCreateOrderGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, "key_test", "secret_test")
	if _, err := client.CreateOrder(context.Background(), 1000, "INR", "order-1"); err == nil {
		t.Fatal("CreateOrder() must fail on gateway 5xx")
	}
}

func TestCreateOrderEmptyID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "key_test", "secret_test")
	if _, err := client.CreateOrder(context.Background(), 1000, "INR", "order-1"); err == nil {
		t.Fatal("CreateOrder() must fail when the gateway returns no order id")
	}
}
