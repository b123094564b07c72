package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAlreadySubscribed    = errors.New("already subscribed to notifications for this product")
	ErrNotificationNotFound = errors.New("stock notification not found")
)

// NotificationRepo stores the restock waitlist: one row per
// (email, product), unique together.
type NotificationRepo struct{ DB *pgxpool.Pool }

const notificationColumns = `id, email, product_id, product_name, is_notified, notified_at, created_at`

func scanNotification(row pgx.Row) (*StockNotification, error) {
	var n StockNotification
	err := row.Scan(&n.ID, &n.Email, &n.ProductID, &n.ProductName, &n.IsNotified, &n.NotifiedAt, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepo) Create(ctx context.Context, email, productID, productName string) (*StockNotification, error) {
	n := &StockNotification{
		ID:          uuid.NewString(),
		Email:       email,
		ProductID:   productID,
		ProductName: productName,
		CreatedAt:   time.Now(),
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO stock_notifications(id, email, product_id, product_name, is_notified, created_at)
		VALUES ($1,$2,$3,$4,false,$5)`,
		n.ID, n.Email, n.ProductID, n.ProductName, n.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}
	return n, nil
}

func (r *NotificationRepo) ListAll(ctx context.Context) ([]StockNotification, error) {
	return r.list(ctx, `SELECT `+notificationColumns+` FROM stock_notifications ORDER BY created_at DESC`)
}

func (r *NotificationRepo) ListByProduct(ctx context.Context, productID string) ([]StockNotification, error) {
	return r.list(ctx, `
		SELECT `+notificationColumns+` FROM stock_notifications
		WHERE product_id=$1 ORDER BY created_at DESC`, productID)
}

// PendingForProduct returns the subscribers still waiting for a restock.
func (r *NotificationRepo) PendingForProduct(ctx context.Context, productID string) ([]StockNotification, error) {
	return r.list(ctx, `
		SELECT `+notificationColumns+` FROM stock_notifications
		WHERE product_id=$1 AND NOT is_notified ORDER BY created_at`, productID)
}

func (r *NotificationRepo) list(ctx context.Context, q string, args ...any) ([]StockNotification, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StockNotification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func (r *NotificationRepo) MarkNotified(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE stock_notifications SET is_notified=true, notified_at=now() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM stock_notifications WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// DeleteByEmailProduct backs the public unsubscribe.
func (r *NotificationRepo) DeleteByEmailProduct(ctx context.Context, email, productID string) error {
	ct, err := r.DB.Exec(ctx,
		`DELETE FROM stock_notifications WHERE email=$1 AND product_id=$2`, email, productID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
