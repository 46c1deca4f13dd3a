// Package memory holds all state in process maps. It backs unit tests and
// local runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kvvPro/foodcourt/internal/model"
)

type MemStorage struct {
	mu            sync.RWMutex
	users         map[string]*model.User
	history       map[string][]model.PointEntry
	notifications map[string][]model.Notification
	foods         map[string]*model.FoodItem
	orders        map[string]*model.Order
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		users:         make(map[string]*model.User),
		history:       make(map[string][]model.PointEntry),
		notifications: make(map[string][]model.Notification),
		foods:         make(map[string]*model.FoodItem),
		orders:        make(map[string]*model.Order),
	}
}

func (s *MemStorage) Ping(ctx context.Context) error { return nil }

func (s *MemStorage) Quit(ctx context.Context) {}

func (s *MemStorage) AddUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Login]; ok {
		return model.ErrLoginTaken
	}
	u := *user
	if u.RegDate.IsZero() {
		u.RegDate = time.Now()
	}
	s.users[user.Login] = &u
	return nil
}

func (s *MemStorage) GetUser(ctx context.Context, login string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[login]
	if !ok {
		return nil, model.ErrNotFound
	}
	u := *user
	return &u, nil
}

func (s *MemStorage) UpdateUserLoyalty(ctx context.Context, user *model.User, entry model.PointEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.Login]
	if !ok {
		return model.ErrNotFound
	}
	stored.RewardPoints = user.RewardPoints
	stored.Tier = user.Tier
	stored.TotalSpent = user.TotalSpent
	stored.OrderCount = user.OrderCount
	s.history[user.Login] = append(s.history[user.Login], entry)
	return nil
}

func (s *MemStorage) GetPointHistory(ctx context.Context, login string) ([]model.PointEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]model.PointEntry{}, s.history[login]...), nil
}

func (s *MemStorage) AddNotification(ctx context.Context, login string, notification model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications[login] = append([]model.Notification{notification}, s.notifications[login]...)
	return nil
}

func (s *MemStorage) GetNotifications(ctx context.Context, login string) ([]model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]model.Notification{}, s.notifications[login]...), nil
}

// AddFood seeds the catalog for tests.
func (s *MemStorage) AddFood(item *model.FoodItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := *item
	s.foods[item.ID] = &f
}

func (s *MemStorage) GetFood(ctx context.Context, id string) (*model.FoodItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.foods[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	f := *item
	return &f, nil
}

func (s *MemStorage) SaveOrder(ctx context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[order.ID] = copyOrder(order)
	return nil
}

func (s *MemStorage) UpdateOrder(ctx context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.ID]; !ok {
		return model.ErrNotFound
	}
	s.orders[order.ID] = copyOrder(order)
	return nil
}

func (s *MemStorage) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return copyOrder(order), nil
}

func (s *MemStorage) GetOrderByGatewayID(ctx context.Context, gatewayOrderID string) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, order := range s.orders {
		if order.PaymentDetails.GatewayOrderID != "" &&
			order.PaymentDetails.GatewayOrderID == gatewayOrderID {
			return copyOrder(order), nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *MemStorage) GetUserOrders(ctx context.Context, login string) ([]*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := []*model.Order{}
	for _, order := range s.orders {
		if order.Owner == login {
			orders = append(orders, copyOrder(order))
		}
	}
	sortNewestFirst(orders)
	return orders, nil
}

func (s *MemStorage) GetAllOrders(ctx context.Context, status string) ([]*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := []*model.Order{}
	for _, order := range s.orders {
		if status == "" || order.Status == status {
			orders = append(orders, copyOrder(order))
		}
	}
	sortNewestFirst(orders)
	return orders, nil
}

func sortNewestFirst(orders []*model.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

func copyOrder(order *model.Order) *model.Order {
	o := *order
	o.Items = append([]model.LineItem{}, order.Items...)
	o.StatusUpdates = append([]model.StatusUpdate{}, order.StatusUpdates...)
	if order.CurrentLocation != nil {
		loc := *order.CurrentLocation
		o.CurrentLocation = &loc
	}
	return &o
}
