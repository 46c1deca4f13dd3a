package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kvvPro/foodcourt/internal/model"
)

type PostgresStorage struct {
	ConnStr string
	pool    *pgxpool.Pool
}

func NewPSQLStorage(ctx context.Context, connection string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, connection)
	if err != nil {
		return nil, err
	}

	if _, err = pool.Exec(ctx, getInitQuery()); err != nil {
		return nil, err
	}

	return &PostgresStorage{
		ConnStr: connection,
		pool:    pool,
	}, nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStorage) Quit(ctx context.Context) {
	s.pool.Close()
}

func (s *PostgresStorage) AddUser(ctx context.Context, user *model.User) error {
	insertRes, err := s.pool.Exec(ctx, addUserQuery(),
		user.Login, user.Name, user.Password, user.IsAdmin,
		user.RewardPoints, user.Tier, user.TotalSpent, user.OrderCount)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return model.ErrLoginTaken
		}
		return err
	}
	if insertRes.RowsAffected() == 0 {
		return errors.New("can't add user")
	}

	return nil
}

func addUserQuery() string {
	return `
	INSERT INTO public.users(login, name, password, is_admin, reward_points, tier, total_spent, order_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
}

func (s *PostgresStorage) GetUser(ctx context.Context, login string) (*model.User, error) {
	var user model.User
	result := s.pool.QueryRow(ctx, getUserQuery(), login)
	err := result.Scan(&user.Login, &user.Name, &user.Password, &user.IsAdmin,
		&user.RewardPoints, &user.Tier, &user.TotalSpent, &user.OrderCount, &user.RegDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func getUserQuery() string {
	return `
	SELECT login, name, password, is_admin, reward_points, tier, total_spent, order_count, reg_date
		FROM public.users
	WHERE
		login = $1
	`
}

func (s *PostgresStorage) UpdateUserLoyalty(ctx context.Context, user *model.User, entry model.PointEntry) error {
	transaction, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer transaction.Rollback(ctx)

	updateRes, err := transaction.Exec(ctx, updateUserLoyaltyQuery(),
		user.RewardPoints, user.Tier, user.TotalSpent, user.OrderCount, user.Login)
	if err != nil {
		return err
	}
	if updateRes.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	_, err = transaction.Exec(ctx, addPointEntryQuery(),
		user.Login, entry.Points, entry.Kind, entry.OrderID, entry.Description, entry.CreatedAt)
	if err != nil {
		return err
	}

	return transaction.Commit(ctx)
}

func updateUserLoyaltyQuery() string {
	return `
	UPDATE public.users
		SET reward_points = $1, tier = $2, total_spent = $3, order_count = $4
	WHERE
		login = $5
	`
}

func addPointEntryQuery() string {
	return `
	INSERT INTO public.point_history(login, points, kind, order_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
}

func (s *PostgresStorage) GetPointHistory(ctx context.Context, login string) ([]model.PointEntry, error) {
	rows, err := s.pool.Query(ctx, getPointHistoryQuery(), login)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []model.PointEntry{}
	for rows.Next() {
		var entry model.PointEntry
		var orderID *string
		if err := rows.Scan(&entry.Points, &entry.Kind, &orderID, &entry.Description, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if orderID != nil {
			entry.OrderID = *orderID
		}
		history = append(history, entry)
	}

	return history, rows.Err()
}

func getPointHistoryQuery() string {
	return `
	SELECT points, kind, order_id, description, created_at
		FROM public.point_history
	WHERE
		login = $1
	ORDER BY created_at ASC, id ASC
	`
}

func (s *PostgresStorage) AddNotification(ctx context.Context, login string, notification model.Notification) error {
	_, err := s.pool.Exec(ctx, addNotificationQuery(),
		login, notification.Message, notification.Kind, notification.CreatedAt)
	return err
}

func addNotificationQuery() string {
	return `
	INSERT INTO public.notifications(login, message, kind, created_at)
		VALUES ($1, $2, $3, $4);
	`
}

func (s *PostgresStorage) GetNotifications(ctx context.Context, login string) ([]model.Notification, error) {
	rows, err := s.pool.Query(ctx, getNotificationsQuery(), login)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.Message, &n.Kind, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

func getNotificationsQuery() string {
	return `
	SELECT message, kind, created_at
		FROM public.notifications
	WHERE
		login = $1
	ORDER BY created_at DESC, id DESC
	`
}

func (s *PostgresStorage) GetFood(ctx context.Context, id string) (*model.FoodItem, error) {
	var item model.FoodItem
	result := s.pool.QueryRow(ctx, getFoodQuery(), id)
	err := result.Scan(&item.ID, &item.Name, &item.Price, &item.Available)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func getFoodQuery() string {
	return `
	SELECT id, name, price, available
		FROM public.foods
	WHERE
		id = $1
	`
}

// AddFood upserts a catalog item. The service itself never writes the
// catalog, this is for seeding tooling and tests.
func (s *PostgresStorage) AddFood(ctx context.Context, item *model.FoodItem) error {
	_, err := s.pool.Exec(ctx, addFoodQuery(),
		item.ID, item.Name, item.Price, item.Available)
	return err
}

func addFoodQuery() string {
	return `
	INSERT INTO public.foods(id, name, price, available)
		VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			price = EXCLUDED.price,
			available = EXCLUDED.available;
	`
}

func (s *PostgresStorage) SaveOrder(ctx context.Context, order *model.Order) error {
	items, address, location, updates, err := marshalOrderParts(order)
	if err != nil {
		return err
	}

	insertRes, err := s.pool.Exec(ctx, saveOrderQuery(),
		order.ID, order.Owner, items, order.Total, address, location,
		order.Status, order.PaymentMethod, order.PaymentStatus,
		nullable(order.PaymentDetails.GatewayOrderID),
		nullable(order.PaymentDetails.GatewayPaymentID),
		nullable(order.PaymentDetails.Signature),
		updates, order.LoyaltyApplied, order.CreatedAt)
	if err != nil {
		return err
	}
	if insertRes.RowsAffected() == 0 {
		return errors.New("can't add order")
	}

	return nil
}

func saveOrderQuery() string {
	return `
	INSERT INTO public.orders(id, owner, items, total, address, location,
			status, payment_method, payment_status,
			gateway_order_id, gateway_payment_id, gateway_signature,
			status_updates, loyalty_applied, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
}

func (s *PostgresStorage) UpdateOrder(ctx context.Context, order *model.Order) error {
	_, _, location, updates, err := marshalOrderParts(order)
	if err != nil {
		return err
	}

	updateRes, err := s.pool.Exec(ctx, updateOrderQuery(),
		location, order.Status, order.PaymentStatus,
		nullable(order.PaymentDetails.GatewayOrderID),
		nullable(order.PaymentDetails.GatewayPaymentID),
		nullable(order.PaymentDetails.Signature),
		updates, order.LoyaltyApplied, order.ID)
	if err != nil {
		return err
	}
	if updateRes.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func updateOrderQuery() string {
	return `
	UPDATE public.orders
		SET location = $1, status = $2, payment_status = $3,
			gateway_order_id = $4, gateway_payment_id = $5, gateway_signature = $6,
			status_updates = $7, loyalty_applied = $8
	WHERE
		id = $9
	`
}

func (s *PostgresStorage) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return s.getOneOrder(ctx, getOrderQuery(), id)
}

func getOrderQuery() string {
	return orderSelect() + `
	WHERE
		id = $1
	`
}

func (s *PostgresStorage) GetOrderByGatewayID(ctx context.Context, gatewayOrderID string) (*model.Order, error) {
	return s.getOneOrder(ctx, getOrderByGatewayIDQuery(), gatewayOrderID)
}

func getOrderByGatewayIDQuery() string {
	return orderSelect() + `
	WHERE
		gateway_order_id = $1
	`
}

func (s *PostgresStorage) GetUserOrders(ctx context.Context, login string) ([]*model.Order, error) {
	return s.getOrders(ctx, getUserOrdersQuery(), login)
}

func getUserOrdersQuery() string {
	return orderSelect() + `
	WHERE
		owner = $1
	ORDER BY created_at DESC
	`
}

func (s *PostgresStorage) GetAllOrders(ctx context.Context, status string) ([]*model.Order, error) {
	if status != "" {
		return s.getOrders(ctx, getAllOrdersByStatusQuery(), status)
	}

	rows, err := s.pool.Query(ctx, getAllOrdersQuery())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOrders(rows)
}

func getAllOrdersQuery() string {
	return orderSelect() + `
	ORDER BY created_at DESC
	`
}

func getAllOrdersByStatusQuery() string {
	return orderSelect() + `
	WHERE
		status = $1
	ORDER BY created_at DESC
	`
}

func orderSelect() string {
	return `
	SELECT id, owner, items, total, address, location,
			status, payment_method, payment_status,
			gateway_order_id, gateway_payment_id, gateway_signature,
			status_updates, loyalty_applied, created_at
		FROM public.orders
	`
}

func (s *PostgresStorage) getOneOrder(ctx context.Context, query string, arg any) (*model.Order, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, model.ErrNotFound
	}

	return orders[0], nil
}

func (s *PostgresStorage) getOrders(ctx context.Context, query string, arg any) ([]*model.Order, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOrders(rows)
}

func scanOrders(rows pgx.Rows) ([]*model.Order, error) {
	orders := []*model.Order{}
	for rows.Next() {
		var order model.Order
		var items, address, updates []byte
		var location []byte
		var gatewayOrderID, gatewayPaymentID, signature *string

		err := rows.Scan(&order.ID, &order.Owner, &items, &order.Total, &address, &location,
			&order.Status, &order.PaymentMethod, &order.PaymentStatus,
			&gatewayOrderID, &gatewayPaymentID, &signature,
			&updates, &order.LoyaltyApplied, &order.CreatedAt)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(items, &order.Items); err != nil {
			return nil, fmt.Errorf("can't read order items: %w", err)
		}
		if err := json.Unmarshal(address, &order.DeliveryAddress); err != nil {
			return nil, fmt.Errorf("can't read order address: %w", err)
		}
		if err := json.Unmarshal(updates, &order.StatusUpdates); err != nil {
			return nil, fmt.Errorf("can't read order status updates: %w", err)
		}
		if location != nil {
			order.CurrentLocation = &model.Location{}
			if err := json.Unmarshal(location, order.CurrentLocation); err != nil {
				return nil, fmt.Errorf("can't read order location: %w", err)
			}
		}
		if gatewayOrderID != nil {
			order.PaymentDetails.GatewayOrderID = *gatewayOrderID
		}
		if gatewayPaymentID != nil {
			order.PaymentDetails.GatewayPaymentID = *gatewayPaymentID
		}
		if signature != nil {
			order.PaymentDetails.Signature = *signature
		}

		orders = append(orders, &order)
	}

	return orders, rows.Err()
}

func marshalOrderParts(order *model.Order) (items, address, location, updates []byte, err error) {
	if items, err = json.Marshal(order.Items); err != nil {
		return nil, nil, nil, nil, err
	}
	if address, err = json.Marshal(order.DeliveryAddress); err != nil {
		return nil, nil, nil, nil, err
	}
	if order.CurrentLocation != nil {
		if location, err = json.Marshal(order.CurrentLocation); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	if updates, err = json.Marshal(order.StatusUpdates); err != nil {
		return nil, nil, nil, nil, err
	}
	return items, address, location, updates, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func getInitQuery() string {
	return `
	CREATE TABLE IF NOT EXISTS public.users
	(
		login character varying(50) NOT NULL,
		name character varying(100) NOT NULL,
		password character varying NOT NULL,
		is_admin boolean NOT NULL DEFAULT false,
		reward_points bigint NOT NULL DEFAULT 0,
		tier character varying(20) NOT NULL DEFAULT 'Bronze',
		total_spent bigint NOT NULL DEFAULT 0,
		order_count bigint NOT NULL DEFAULT 0,
		reg_date timestamp with time zone NOT NULL DEFAULT now(),
		CONSTRAINT users_pkey PRIMARY KEY (login)
	);

	CREATE TABLE IF NOT EXISTS public.point_history
	(
		id bigserial,
		login character varying(50) NOT NULL REFERENCES public.users (login),
		points bigint NOT NULL,
		kind character varying(10) NOT NULL,
		order_id character varying(50),
		description character varying,
		created_at timestamp with time zone NOT NULL DEFAULT now(),
		CONSTRAINT point_history_pkey PRIMARY KEY (id)
	);

	CREATE TABLE IF NOT EXISTS public.notifications
	(
		id bigserial,
		login character varying(50) NOT NULL REFERENCES public.users (login),
		message character varying NOT NULL,
		kind character varying(20) NOT NULL,
		created_at timestamp with time zone NOT NULL DEFAULT now(),
		CONSTRAINT notifications_pkey PRIMARY KEY (id)
	);

	CREATE TABLE IF NOT EXISTS public.foods
	(
		id character varying(50) NOT NULL,
		name character varying(100) NOT NULL,
		price bigint NOT NULL,
		available boolean NOT NULL DEFAULT true,
		CONSTRAINT foods_pkey PRIMARY KEY (id)
	);

	CREATE TABLE IF NOT EXISTS public.orders
	(
		id character varying(50) NOT NULL,
		owner character varying(50) NOT NULL REFERENCES public.users (login),
		items jsonb NOT NULL,
		total bigint NOT NULL,
		address jsonb NOT NULL,
		location jsonb,
		status character varying(20) NOT NULL,
		payment_method character varying(20) NOT NULL,
		payment_status character varying(20) NOT NULL,
		gateway_order_id character varying(100),
		gateway_payment_id character varying(100),
		gateway_signature character varying(100),
		status_updates jsonb NOT NULL,
		loyalty_applied boolean NOT NULL DEFAULT false,
		created_at timestamp with time zone NOT NULL DEFAULT now(),
		CONSTRAINT orders_pkey PRIMARY KEY (id)
	);

	CREATE INDEX IF NOT EXISTS orders_owner_idx ON public.orders (owner);
	CREATE UNIQUE INDEX IF NOT EXISTS orders_gateway_order_idx ON public.orders (gateway_order_id)
		WHERE gateway_order_id IS NOT NULL;
	`
}
