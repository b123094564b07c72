package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("account with this email already exists")
)

type Repo struct{ DB *pgxpool.Pool }

const accountColumns = `id, email, name, role, password_hash, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.PasswordHash,
		&a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) Create(ctx context.Context, a *Account) (*Account, error) {
	a.ID = uuid.NewString()
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	_, err := r.DB.Exec(ctx, `
		INSERT INTO accounts(id, email, name, role, password_hash, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$7)`,
		a.ID, a.Email, a.Name, a.Role, a.PasswordHash, a.IsActive, now)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Account, error) {
	return scanAccount(r.DB.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id))
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanAccount(r.DB.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email=$1`, email))
}

func (r *Repo) ListByRole(ctx context.Context, role string) ([]Account, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE role=$1 ORDER BY created_at DESC`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateProfile(ctx context.Context, a *Account) (*Account, error) {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	row := r.DB.QueryRow(ctx, `
		UPDATE accounts SET email=$2, name=$3, password_hash=$4, updated_at=now()
		WHERE id=$1
		RETURNING `+accountColumns, a.ID, a.Email, a.Name, a.PasswordHash)
	out, err := scanAccount(row)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	return out, err
}

func (r *Repo) SetActive(ctx context.Context, id string, active bool) (*Account, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE accounts SET is_active=$2, updated_at=now() WHERE id=$1`, id, active)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, id)
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
