package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("product not found")

type Repo struct{ DB *pgxpool.Pool }

const productColumns = `
	id, name, price, currency, image, COALESCE(hover_image, ''),
	category, description, features, stock, is_active,
	COALESCE(created_by, ''), COALESCE(created_by_role, ''),
	created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.Currency, &p.Image, &p.HoverImage,
		&p.Category, &p.Description, &p.Features, &p.Stock, &p.IsActive,
		&p.CreatedBy, &p.CreatedByRole,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Create(ctx context.Context, p *Product) (*Product, error) {
	p.ID = uuid.NewString()
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products(id, name, price, currency, image, hover_image,
			category, description, features, stock, is_active,
			created_by, created_by_role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7,$8,$9,$10,$11,
		        NULLIF($12,''),NULLIF($13,''),$14,$14)`,
		p.ID, p.Name, p.Price, p.Currency, p.Image, p.HoverImage,
		p.Category, p.Description, p.Features, p.Stock, p.IsActive,
		p.CreatedBy, p.CreatedByRole, now,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Product, error) {
	return scanProduct(r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
}

func (r *Repo) ListActive(ctx context.Context) ([]Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE is_active ORDER BY created_at DESC`)
}

func (r *Repo) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	return r.list(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE is_active AND $1 = ANY(category)
		ORDER BY created_at DESC`, category)
}

func (r *Repo) Search(ctx context.Context, q string) ([]Product, error) {
	pattern := "%" + q + "%"
	return r.list(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE is_active AND (name ILIKE $1 OR description ILIKE $1
			OR EXISTS (SELECT 1 FROM unnest(category) c WHERE c ILIKE $1)
			OR EXISTS (SELECT 1 FROM unnest(features) f WHERE f ILIKE $1))
		ORDER BY created_at DESC`, pattern)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Product, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Update writes the full merged row back.
func (r *Repo) Update(ctx context.Context, p *Product) (*Product, error) {
	p.UpdatedAt = time.Now()
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET name=$2, price=$3, currency=$4, image=$5,
			hover_image=NULLIF($6,''), category=$7, description=$8, features=$9,
			stock=$10, is_active=$11, updated_at=$12
		WHERE id=$1`,
		p.ID, p.Name, p.Price, p.Currency, p.Image, p.HoverImage,
		p.Category, p.Description, p.Features, p.Stock, p.IsActive, p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return p, nil
}

// Delete removes the row and returns the deleted product so the caller
// can clean up its image files.
func (r *Repo) Delete(ctx context.Context, id string) (*Product, error) {
	return scanProduct(r.DB.QueryRow(ctx,
		`DELETE FROM products WHERE id=$1 RETURNING `+productColumns, id))
}
