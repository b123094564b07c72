package shipping

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound         = errors.New("shipping fee not found")
	ErrDuplicateCountry = errors.New("shipping fee already exists for this country")
)

// Fee is the per-country shipping fee record. Order creation snapshots
// it; it is never referenced live from an order.
type Fee struct {
	ID            string          `json:"id"`
	Country       string          `json:"country"`
	Fee           decimal.Decimal `json:"shippingFee"`
	Currency      string          `json:"currency"`
	IsActive      bool            `json:"isActive"`
	CreatedBy     string          `json:"createdBy,omitempty"`
	CreatedByRole string          `json:"createdByRole,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type Repo struct{ DB *pgxpool.Pool }

const feeColumns = `id, country, fee, currency, is_active,
	COALESCE(created_by, ''), COALESCE(created_by_role, ''), created_at, updated_at`

func scanFee(row pgx.Row) (*Fee, error) {
	var f Fee
	err := row.Scan(&f.ID, &f.Country, &f.Fee, &f.Currency, &f.IsActive,
		&f.CreatedBy, &f.CreatedByRole, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *Repo) Create(ctx context.Context, f *Fee) (*Fee, error) {
	f.ID = uuid.NewString()
	f.Country = strings.TrimSpace(f.Country)
	now := time.Now()
	f.CreatedAt, f.UpdatedAt = now, now
	_, err := r.DB.Exec(ctx, `
		INSERT INTO shipping_fees(id, country, fee, currency, is_active,
			created_by, created_by_role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),NULLIF($7,''),$8,$8)`,
		f.ID, f.Country, f.Fee, f.Currency, f.IsActive, f.CreatedBy, f.CreatedByRole, now)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateCountry
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *Repo) Update(ctx context.Context, f *Fee) (*Fee, error) {
	f.Country = strings.TrimSpace(f.Country)
	f.UpdatedAt = time.Now()
	ct, err := r.DB.Exec(ctx, `
		UPDATE shipping_fees SET country=$2, fee=$3, currency=$4, is_active=$5, updated_at=$6
		WHERE id=$1`, f.ID, f.Country, f.Fee, f.Currency, f.IsActive, f.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateCountry
	}
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, f.ID)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Fee, error) {
	return scanFee(r.DB.QueryRow(ctx, `SELECT `+feeColumns+` FROM shipping_fees WHERE id=$1`, id))
}

// GetByCountry is the public lookup used at checkout; inactive entries
// are invisible to it.
func (r *Repo) GetByCountry(ctx context.Context, country string) (*Fee, error) {
	return scanFee(r.DB.QueryRow(ctx, `
		SELECT `+feeColumns+` FROM shipping_fees WHERE country=$1 AND is_active`, country))
}

func (r *Repo) ListAll(ctx context.Context) ([]Fee, error) {
	return r.list(ctx, `SELECT `+feeColumns+` FROM shipping_fees ORDER BY country`)
}

func (r *Repo) ListActive(ctx context.Context) ([]Fee, error) {
	return r.list(ctx, `SELECT `+feeColumns+` FROM shipping_fees WHERE is_active ORDER BY country`)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Fee, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Fee
	for rows.Next() {
		f, err := scanFee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM shipping_fees WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
