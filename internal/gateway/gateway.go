// Package gateway is the client for the external payment processor. The only
// call this core makes is creating a gateway order for an online checkout;
// the returned id is what the client-side payment sheet is initialized with
// and what the signed payment callback references later.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const requestTimeout = 10 * time.Second

type Client struct {
	client *resty.Client
	keyID  string
}

func New(address, keyID, keySecret string) *Client {
	client := resty.New().
		SetBaseURL(address).
		SetBasicAuth(keyID, keySecret).
		SetTimeout(requestTimeout)

	return &Client{
		client: client,
		keyID:  keyID,
	}
}

// KeyID is the public half of the merchant credentials, returned to clients
// for payment-sheet initialization.
func (c *Client) KeyID() string {
	return c.keyID
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID string `json:"id"`
}

// CreateOrder registers a checkout session with the gateway. Amount is in
// minor units. Receipt is our order id for reconciliation.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (string, error) {
	var result createOrderResponse
	response, err := c.client.R().
		SetContext(ctx).
		SetBody(createOrderRequest{
			Amount:   amount,
			Currency: currency,
			Receipt:  receipt,
		}).
		SetResult(&result).
		Post("/v1/orders")
	if err != nil {
		return "", fmt.Errorf("gateway order request failed: %w", err)
	}
	if response.StatusCode() != http.StatusOK && response.StatusCode() != http.StatusCreated {
		return "", fmt.Errorf("gateway order request failed with status %v", response.Status())
	}
	if result.ID == "" {
		return "", fmt.Errorf("gateway order response has no id")
	}

	return result.ID, nil
}
