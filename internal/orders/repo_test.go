package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key"}
}

func TestCreateRetriesOnNumberCollision(t *testing.T) {
	// Two rivals grab the same COUNT-derived number first; the third
	// recount lands on a free one.
	day := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	attempt := 0
	o, err := createWithRetry(context.Background(), func(context.Context) (*Order, error) {
		attempt++
		if attempt < 3 {
			return nil, uniqueViolation()
		}
		return &Order{OrderNumber: FormatNumber(day, attempt)}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempt)
	assert.Equal(t, "ORD-20260828-0003", o.OrderNumber)
}

func TestCreateGivesUpAfterBoundedRetries(t *testing.T) {
	attempt := 0
	_, err := createWithRetry(context.Background(), func(context.Context) (*Order, error) {
		attempt++
		return nil, uniqueViolation()
	})
	require.Error(t, err)
	assert.Equal(t, createRetries, attempt)

	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "23505", pgErr.Code)
}

func TestCreateDoesNotRetryOtherErrors(t *testing.T) {
	attempt := 0
	_, err := createWithRetry(context.Background(), func(context.Context) (*Order, error) {
		attempt++
		return nil, fmt.Errorf("insert order: %w", errors.New("connection refused"))
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempt)
}
