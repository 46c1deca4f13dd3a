package storage

import (
	"context"

	"github.com/kvvPro/foodcourt/internal/model"
)

// Storage is the persistence collaborator. Implementations return
// model.ErrNotFound for unknown keys and model.ErrLoginTaken for duplicate
// registrations; anything else is an infrastructure fault.
type Storage interface {
	Ping(ctx context.Context) error
	Quit(ctx context.Context)

	AddUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, login string) (*model.User, error)
	// UpdateUserLoyalty persists points/tier/spend counters together with the
	// history entry the recalculation produced.
	UpdateUserLoyalty(ctx context.Context, user *model.User, entry model.PointEntry) error
	GetPointHistory(ctx context.Context, login string) ([]model.PointEntry, error)

	AddNotification(ctx context.Context, login string, notification model.Notification) error
	GetNotifications(ctx context.Context, login string) ([]model.Notification, error)

	// GetFood is the catalog lookup used to re-price orders server-side.
	GetFood(ctx context.Context, id string) (*model.FoodItem, error)

	SaveOrder(ctx context.Context, order *model.Order) error
	UpdateOrder(ctx context.Context, order *model.Order) error
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	GetOrderByGatewayID(ctx context.Context, gatewayOrderID string) (*model.Order, error)
	GetUserOrders(ctx context.Context, login string) ([]*model.Order, error)
	GetAllOrders(ctx context.Context, status string) ([]*model.Order, error)
}
