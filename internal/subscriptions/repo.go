package subscriptions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("subscription not found")

type Subscription struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	IsSubscribed bool      `json:"isSubscribed"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Repo struct{ DB *pgxpool.Pool }

// Upsert stores the address with the given subscribed flag. Email is
// the natural key; resubscribing flips the existing row instead of
// inserting a duplicate.
func (r *Repo) Upsert(ctx context.Context, email string, subscribed bool) (*Subscription, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var s Subscription
	err := r.DB.QueryRow(ctx, `
		INSERT INTO newsletter_subscriptions(id, email, is_subscribed, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (email) DO UPDATE SET is_subscribed = EXCLUDED.is_subscribed, updated_at = now()
		RETURNING id, email, is_subscribed, created_at, updated_at`,
		uuid.NewString(), email, subscribed,
	).Scan(&s.ID, &s.Email, &s.IsSubscribed, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*Subscription, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var s Subscription
	err := r.DB.QueryRow(ctx, `
		SELECT id, email, is_subscribed, created_at, updated_at
		FROM newsletter_subscriptions WHERE email=$1`, email,
	).Scan(&s.ID, &s.Email, &s.IsSubscribed, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) ListSubscribed(ctx context.Context) ([]Subscription, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, email, is_subscribed, created_at, updated_at
		FROM newsletter_subscriptions WHERE is_subscribed ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Subscription
	for rows.Next() {
		var s Subscription
		if err := rows.Scan(&s.ID, &s.Email, &s.IsSubscribed, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
