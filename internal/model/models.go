package model

import "time"

// Money values are stored in paise (minor units) to avoid
// floating-point drift on lifetime totals.

type User struct {
	Login        string    `json:"login"`
	Name         string    `json:"name"`
	Password     string    `json:"password,omitempty"`
	IsAdmin      bool      `json:"-"`
	RewardPoints int64     `json:"rewardPoints"`
	Tier         string    `json:"membershipTier"`
	TotalSpent   int64     `json:"totalSpent"`
	OrderCount   int64     `json:"orderCount"`
	RegDate      time.Time `json:"registered_at,omitempty"`
}

const (
	TierBronze   = "Bronze"
	TierSilver   = "Silver"
	TierGold     = "Gold"
	TierPlatinum = "Platinum"
)

type PointEntry struct {
	Points      int64     `json:"points"`
	Kind        string    `json:"type"`
	OrderID     string    `json:"orderId,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

const (
	PointsEarned   = "earned"
	PointsRedeemed = "redeemed"
)

type Notification struct {
	Message   string    `json:"message"`
	Kind      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	NotifyOrder     = "order"
	NotifyPayment   = "payment"
	NotifyPromotion = "promotion"
	NotifySystem    = "system"
)

type FoodItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Available bool   `json:"available"`
}

type LineItem struct {
	FoodID   string `json:"foodId"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	// price snapshot at order time, never the client-supplied value
	UnitPrice int64 `json:"price"`
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type StatusUpdate struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

type PaymentDetails struct {
	GatewayOrderID   string `json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string `json:"gatewayPaymentId,omitempty"`
	Signature        string `json:"gatewaySignature,omitempty"`
}

type Order struct {
	ID              string         `json:"id"`
	Owner           string         `json:"user"`
	Items           []LineItem     `json:"items"`
	Total           int64          `json:"total"`
	DeliveryAddress Address        `json:"deliveryAddress"`
	CurrentLocation *Location      `json:"currentLocation,omitempty"`
	Status          string         `json:"status"`
	PaymentMethod   string         `json:"paymentMethod"`
	PaymentStatus   string         `json:"paymentStatus"`
	PaymentDetails  PaymentDetails `json:"paymentDetails"`
	StatusUpdates   []StatusUpdate `json:"statusUpdates"`
	LoyaltyApplied  bool           `json:"-"`
	EstimatedTime   *time.Time     `json:"estimatedDeliveryTime,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPreparing      = "preparing"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

const (
	PaymentMethodCash   = "cash_on_delivery"
	PaymentMethodOnline = "online_gateway"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)
