package orders

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
	ErrNotFound      = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid status")
)

// createRetries bounds the regenerate-and-reinsert loop for order-number
// collisions. The count-then-compose generation is not atomic; the unique
// index on order_number rejects the losing writer and we retry from scratch.
const createRetries = 3

type Repo struct{ DB *pgxpool.Pool }

const orderColumns = `
	id, order_number, status, payment_status, payment_method,
	COALESCE(payment_intent_id, ''),
	customer_first_name, customer_last_name, customer_email, customer_phone,
	ship_address, ship_city, COALESCE(ship_state, ''), ship_zip, ship_country,
	subtotal, shipping_fee, total, currency, shipping_country,
	COALESCE(fee_country, ''), COALESCE(fee_amount, 0), COALESCE(fee_currency, ''),
	COALESCE(created_by, ''), COALESCE(created_by_role, ''),
	created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&o.PaymentIntentID,
		&o.Customer.FirstName, &o.Customer.LastName, &o.Customer.Email, &o.Customer.Phone,
		&o.ShippingAddress.Address, &o.ShippingAddress.City, &o.ShippingAddress.State,
		&o.ShippingAddress.ZipCode, &o.ShippingAddress.Country,
		&o.Subtotal, &o.ShippingFee, &o.Total, &o.Currency, &o.ShippingCountry,
		&o.FeeDetails.Country, &o.FeeDetails.Fee, &o.FeeDetails.Currency,
		&o.CreatedBy, &o.CreatedByRole,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create validates nothing; callers run CreateInput.Validate first. It
// generates the order number by counting today's orders and retries the
// whole generation-and-insert step on a uniqueness collision.
func (r *Repo) Create(ctx context.Context, in *CreateInput, defaultCurrency string) (*Order, error) {
	in.defaults(defaultCurrency)
	return createWithRetry(ctx, func(ctx context.Context) (*Order, error) {
		return r.tryCreate(ctx, in)
	})
}

// createWithRetry reruns try while it fails on an order-number
// uniqueness collision, up to createRetries attempts. Concurrent
// same-day creates race on COUNT-derived numbers; the loser recounts
// and lands on the next free number.
func createWithRetry(ctx context.Context, try func(context.Context) (*Order, error)) (*Order, error) {
	var lastErr error
	for attempt := 0; attempt < createRetries; attempt++ {
		o, err := try(ctx)
		if err == nil {
			return o, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (r *Repo) tryCreate(ctx context.Context, in *CreateInput) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now()
	dayStart, dayEnd := dayBounds(now)
	var count int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE created_at >= $1 AND created_at < $2`,
		dayStart, dayEnd).Scan(&count)
	if err != nil {
		return nil, err
	}
	number := FormatNumber(now, count+1)
	id := uuid.NewString()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(
			id, order_number, status, payment_status, payment_method, payment_intent_id,
			customer_first_name, customer_last_name, customer_email, customer_phone,
			ship_address, ship_city, ship_state, ship_zip, ship_country,
			subtotal, shipping_fee, total, currency, shipping_country,
			fee_country, fee_amount, fee_currency,
			created_by, created_by_role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),
		        $7,$8,$9,$10,
		        $11,$12,NULLIF($13,''),$14,$15,
		        $16,$17,$18,$19,$20,
		        NULLIF($21,''),$22,NULLIF($23,''),
		        NULLIF($24,''),NULLIF($25,''),$26,$26)`,
		id, number, in.Status, in.PaymentStatus, in.PaymentMethod, in.PaymentIntentID,
		in.Customer.FirstName, in.Customer.LastName, in.Customer.Email, in.Customer.Phone,
		in.ShippingAddress.Address, in.ShippingAddress.City, in.ShippingAddress.State,
		in.ShippingAddress.ZipCode, in.ShippingAddress.Country,
		in.Subtotal, in.ShippingFee, in.Total, in.Currency, in.ShippingCountry,
		in.FeeDetails.Country, in.FeeDetails.Fee, in.FeeDetails.Currency,
		in.CreatedBy, in.CreatedByRole, now,
	)
	if err != nil {
		return nil, err
	}

	for i, it := range in.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(order_id, position, product_id, title, price, quantity, image)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			id, i, it.ProductID, it.Title, it.Price, it.Quantity, it.Image,
		)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	o := &Order{
		ID:              id,
		OrderNumber:     number,
		Status:          in.Status,
		Customer:        *in.Customer,
		ShippingAddress: *in.ShippingAddress,
		Items:           in.Items,
		Subtotal:        in.Subtotal,
		ShippingFee:     in.ShippingFee,
		Total:           in.Total,
		Currency:        in.Currency,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   in.PaymentStatus,
		PaymentIntentID: in.PaymentIntentID,
		ShippingCountry: in.ShippingCountry,
		FeeDetails:      in.FeeDetails,
		CreatedBy:       in.CreatedBy,
		CreatedByRole:   in.CreatedByRole,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return o, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, r.attachItems(ctx, o)
}

func (r *Repo) GetByNumber(ctx context.Context, number string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number=$1`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, r.attachItems(ctx, o)
}

// ListAll returns every order, newest first. No pagination; the admin
// dashboard consumes the whole set.
func (r *Repo) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *Repo) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE status=$1 ORDER BY created_at DESC`, status)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.attachItems(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Repo) attachItems(ctx context.Context, o *Order) error {
	rows, err := r.DB.Query(ctx, `
		SELECT product_id, title, price, quantity, COALESCE(image, '')
		FROM order_items WHERE order_id=$1 ORDER BY position`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	o.Items = o.Items[:0]
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Title, &it.Price, &it.Quantity, &it.Image); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (r *Repo) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	return r.updateAndFetch(ctx, id,
		`UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, status)
}

func (r *Repo) UpdatePaymentStatus(ctx context.Context, id string, status PaymentStatus) (*Order, error) {
	if !ValidPaymentStatus(status) {
		return nil, ErrInvalidStatus
	}
	return r.updateAndFetch(ctx, id,
		`UPDATE orders SET payment_status=$2, updated_at=now() WHERE id=$1`, status)
}

// UpdateCreatedAt is an administrative correction of the creation
// timestamp. The caller has already resolved the naive local input to an
// absolute instant.
func (r *Repo) UpdateCreatedAt(ctx context.Context, id string, t time.Time) (*Order, error) {
	return r.updateAndFetch(ctx, id,
		`UPDATE orders SET created_at=$2, updated_at=now() WHERE id=$1`, t)
}

func (r *Repo) updateAndFetch(ctx context.Context, id, q string, arg any) (*Order, error) {
	ct, err := r.DB.Exec(ctx, q, id, arg)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPaidByIntent flips the order correlated with a gateway payment
// intent to paid/confirmed. The WHERE guard makes re-delivery a no-op:
// transitioned is false both when no order carries the intent id and when
// the order is already paid, and notifications must not fire in either case.
func (r *Repo) MarkPaidByIntent(ctx context.Context, intentID string) (o *Order, transitioned bool, err error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE orders SET payment_status=$2, status=$3, updated_at=now()
		WHERE payment_intent_id=$1 AND payment_status <> $2
		RETURNING `+orderColumns, intentID, PaymentPaid, StatusConfirmed)
	o, err = scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return o, true, r.attachItems(ctx, o)
}

func (r *Repo) MarkFailedByIntent(ctx context.Context, intentID string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE orders SET payment_status=$2, status=$3, updated_at=now()
		WHERE payment_intent_id=$1`, intentID, PaymentFailed, StatusCancelled)
	return err
}

func (r *Repo) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status='pending'),
		       COUNT(*) FILTER (WHERE status='confirmed'),
		       COUNT(*) FILTER (WHERE status='processing'),
		       COUNT(*) FILTER (WHERE status='shipped'),
		       COUNT(*) FILTER (WHERE status='delivered'),
		       COUNT(*) FILTER (WHERE status='cancelled'),
		       COALESCE(SUM(total) FILTER (WHERE payment_status='paid'), 0)
		FROM orders`).Scan(
		&s.TotalOrders, &s.PendingOrders, &s.ConfirmedOrders, &s.ProcessingOrders,
		&s.ShippedOrders, &s.DeliveredOrders, &s.CancelledOrders, &s.TotalRevenue)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
