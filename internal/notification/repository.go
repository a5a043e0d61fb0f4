package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]Notification, error)
	SetRead(ctx context.Context, id, sellerID uuid.UUID, read bool) error
	Delete(ctx context.Context, id, sellerID uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, n *Notification) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate notification id: %w", err)
	}
	n.ID = id
	n.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO seller_notifications (id, seller_id, title, content, type, is_read, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.Exec(ctx, query,
		n.ID,
		n.SellerID,
		n.Title,
		n.Content,
		n.Type,
		n.IsRead,
		n.Metadata,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert notification for seller %s: %w", n.SellerID, err)
	}

	return nil
}

func (r *postgresRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]Notification, error) {
	query := `
		SELECT id, seller_id, title, content, type, is_read, metadata, created_at
		FROM seller_notifications
		WHERE seller_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query notifications for seller %s: %w", sellerID, err)
	}
	defer rows.Close()

	notifications := make([]Notification, 0)
	for rows.Next() {
		var n Notification
		err := rows.Scan(
			&n.ID,
			&n.SellerID,
			&n.Title,
			&n.Content,
			&n.Type,
			&n.IsRead,
			&n.Metadata,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan notification for seller %s: %w", sellerID, err)
		}
		notifications = append(notifications, n)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating notifications for seller %s: %w", sellerID, err)
	}

	return notifications, nil
}

func (r *postgresRepository) SetRead(ctx context.Context, id, sellerID uuid.UUID, read bool) error {
	query := `UPDATE seller_notifications SET is_read = $1 WHERE id = $2 AND seller_id = $3`

	cmdTag, err := r.db.Exec(ctx, query, read, id, sellerID)
	if err != nil {
		return fmt.Errorf("repository: failed to update notification %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id, sellerID uuid.UUID) error {
	query := `DELETE FROM seller_notifications WHERE id = $1 AND seller_id = $2`

	cmdTag, err := r.db.Exec(ctx, query, id, sellerID)
	if err != nil {
		return fmt.Errorf("repository: failed to delete notification %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}

	return nil
}
