package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProductNotFound = errors.New("product not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetQuantity(ctx context.Context, id uuid.UUID) (int, error)
	SetQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	GetSellerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `
		SELECT id, seller_id, name, price, quantity, image_url, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var p Product
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.SellerID,
		&p.Name,
		&p.Price,
		&p.Quantity,
		&p.ImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}

	return &p, nil
}

func (r *postgresRepository) GetQuantity(ctx context.Context, id uuid.UUID) (int, error) {
	query := `SELECT quantity FROM products WHERE id = $1`

	var quantity int
	err := r.db.QueryRow(ctx, query, id).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrProductNotFound
		}
		return 0, fmt.Errorf("repository: failed to select quantity for product %s: %w", id, err)
	}

	return quantity, nil
}

func (r *postgresRepository) SetQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `UPDATE products SET quantity = $1, updated_at = $2 WHERE id = $3`

	cmdTag, err := r.db.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("repository: failed to update quantity for product %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *postgresRepository) GetSellerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	query := `SELECT seller_id FROM products WHERE id = $1`

	var sellerID uuid.UUID
	err := r.db.QueryRow(ctx, query, id).Scan(&sellerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrProductNotFound
		}
		return uuid.Nil, fmt.Errorf("repository: failed to select seller for product %s: %w", id, err)
	}

	return sellerID, nil
}
