package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product referenced by order item not found")
)

// Repository persists orders. Create and CreateItems are deliberately
// separate calls: the order header and its line items are distinct failure
// domains, and a header can exist without items when the second call fails.
type Repository interface {
	Create(ctx context.Context, order *Order) (uuid.UUID, error)
	CreateItems(ctx context.Context, orderID uuid.UUID, items []OrderItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus OrderStatus, shippedDate *time.Time) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// Create inserts the order header and returns the assigned id.
func (r *postgresRepository) Create(ctx context.Context, orderInput *Order) (uuid.UUID, error) {
	orderID, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to generate order id: %w", err)
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO orders (id, user_id, status, total_amount, address, recipient_name, recipient_phone, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.Exec(ctx, query,
		orderID,
		orderInput.UserID,
		string(orderInput.Status),
		orderInput.TotalAmount,
		orderInput.Address,
		orderInput.RecipientName,
		orderInput.RecipientPhone,
		orderInput.Note,
		now,
		now,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to insert order: %w", err)
	}

	orderInput.ID = orderID
	orderInput.CreatedAt = now
	orderInput.UpdatedAt = now

	return orderID, nil
}

// CreateItems inserts the order's line items as one batch.
func (r *postgresRepository) CreateItems(ctx context.Context, orderID uuid.UUID, items []OrderItem) error {
	if len(items) == 0 {
		return errors.New("repository: order must contain at least one item")
	}

	batch := &pgx.Batch{}
	now := time.Now().UTC()

	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i := range items {
		item := &items[i]

		itemID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate order item id: %w", err)
		}
		item.ID = itemID
		item.OrderID = orderID
		item.CreatedAt = now

		batch.Queue(query, item.ID, orderID, item.ProductID, item.Quantity, item.UnitPrice, now)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range items {
		if _, err := results.Exec(); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
				return fmt.Errorf("repository: order item references missing row: %w", ErrProductNotFound)
			}
			return fmt.Errorf("repository: failed to insert order items for order %s: %w", orderID, err)
		}
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	query := `
		SELECT id, user_id, status, total_amount, address, recipient_name, recipient_phone, note, shipped_date, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var o Order
	err := r.db.QueryRow(ctx, query, orderID).Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.TotalAmount,
		&o.Address,
		&o.RecipientName,
		&o.RecipientPhone,
		&o.Note,
		&o.ShippedDate,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", orderID, err)
	}

	items, err := r.itemsForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.OrderItems = items

	return &o, nil
}

func (r *postgresRepository) itemsForOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for order %s: %w", orderID, err)
	}
	defer rows.Close()

	items := make([]OrderItem, 0)
	for rows.Next() {
		var item OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item for order %s: %w", orderID, err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items for order %s: %w", orderID, err)
	}

	return items, nil
}

func (r *postgresRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	ordersQuery := `
		SELECT id, user_id, status, total_amount, address, recipient_name, recipient_phone, note, shipped_date, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	orderRows, err := r.db.Query(ctx, ordersQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for user %s: %w", userID, err)
	}
	defer orderRows.Close()

	ordersMap := make(map[uuid.UUID]*Order)
	var orderIDs []uuid.UUID

	for orderRows.Next() {
		var o Order
		err := orderRows.Scan(
			&o.ID,
			&o.UserID,
			&o.Status,
			&o.TotalAmount,
			&o.Address,
			&o.RecipientName,
			&o.RecipientPhone,
			&o.Note,
			&o.ShippedDate,
			&o.CreatedAt,
			&o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order for user %s: %w", userID, err)
		}
		o.OrderItems = make([]OrderItem, 0)
		ordersMap[o.ID] = &o
		orderIDs = append(orderIDs, o.ID)
	}

	if err = orderRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders for user %s: %w", userID, err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	itemsQuery := `
		SELECT id, order_id, product_id, quantity, unit_price, created_at
		FROM order_items
		WHERE order_id = ANY($1)
	`
	itemRows, err := r.db.Query(ctx, itemsQuery, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for user %s: %w", userID, err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item OrderItem
		err := itemRows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item for user %s: %w", userID, err)
		}

		if o, ok := ordersMap[item.OrderID]; ok {
			o.OrderItems = append(o.OrderItems, item)
		}
	}

	if err = itemRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items for user %s: %w", userID, err)
	}

	result := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		if o, ok := ordersMap[id]; ok {
			result = append(result, *o)
		}
	}

	return result, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus OrderStatus, shippedDate *time.Time) error {
	query := `
		UPDATE orders
		SET status = $1, shipped_date = COALESCE($2, shipped_date), updated_at = $3
		WHERE id = $4
	`

	cmdTag, err := r.db.Exec(ctx, query,
		string(newStatus),
		shippedDate,
		time.Now().UTC(),
		orderID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update status for order %s: %w", orderID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}
