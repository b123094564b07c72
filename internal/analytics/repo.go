package analytics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Every aggregation here is stateless and recomputed per request.
// These are admin reporting calls, not hot-path reads, so no caching
// layer sits in front of them.
type Repo struct {
	DB *pgxpool.Pool

	// Products with stock below this count as low stock.
	LowStockThreshold int
}

func (r *Repo) lowStock() int {
	if r.LowStockThreshold > 0 {
		return r.LowStockThreshold
	}
	return 10
}

func (r *Repo) Dashboard(ctx context.Context) (*DashboardStats, error) {
	now := time.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	startOfYear := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())

	var s DashboardStats
	err := r.DB.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(subtotal) FILTER (WHERE payment_status = 'paid'), 0),
			COUNT(*) FILTER (WHERE created_at >= $1),
			COALESCE(SUM(subtotal) FILTER (WHERE created_at >= $1 AND payment_status = 'paid'), 0),
			COUNT(*) FILTER (WHERE created_at >= $2),
			COALESCE(SUM(subtotal) FILTER (WHERE created_at >= $2 AND payment_status = 'paid'), 0),
			COUNT(*) FILTER (WHERE status = 'pending')
		FROM orders`, startOfMonth, startOfYear,
	).Scan(&s.Total.Orders, &s.Total.Revenue,
		&s.Month.Orders, &s.Month.Revenue,
		&s.Year.Orders, &s.Year.Revenue,
		&s.PendingOrders)
	if err != nil {
		return nil, err
	}

	if err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE stock < $1`, r.lowStock(),
	).Scan(&s.LowStock); err != nil {
		return nil, err
	}

	if s.RecentOrders, err = r.recentOrders(ctx, 5); err != nil {
		return nil, err
	}
	if s.TopProducts, err = r.topProducts(ctx, 5); err != nil {
		return nil, err
	}
	if s.SalesByCountry, err = r.salesByCountry(ctx, 10); err != nil {
		return nil, err
	}
	if s.PaymentMethods, err = r.paymentSlices(ctx, `
		SELECT payment_method, COUNT(*), COALESCE(SUM(subtotal), 0)
		FROM orders GROUP BY payment_method`); err != nil {
		return nil, err
	}
	if s.OrderStatuses, err = r.statusSlices(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(subtotal), 0)
		FROM orders GROUP BY status`); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) recentOrders(ctx context.Context, limit int) ([]RecentOrder, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT order_number, customer_first_name || ' ' || customer_last_name, total, status, created_at
		FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecentOrder
	for rows.Next() {
		var o RecentOrder
		if err := rows.Scan(&o.OrderNumber, &o.Customer, &o.Total, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) topProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT i.title, SUM(i.quantity), COALESCE(SUM(i.price * i.quantity), 0)
		FROM order_items i
		GROUP BY i.title
		ORDER BY SUM(i.quantity) DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TopProduct
	for rows.Next() {
		var p TopProduct
		if err := rows.Scan(&p.Title, &p.TotalSold, &p.TotalRevenue); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) salesByCountry(ctx context.Context, limit int) ([]CountrySales, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT shipping_country, COUNT(*), COALESCE(SUM(subtotal), 0), COALESCE(AVG(subtotal), 0)
		FROM orders WHERE payment_status = 'paid'
		GROUP BY shipping_country
		ORDER BY SUM(subtotal) DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CountrySales
	for rows.Next() {
		var c CountrySales
		if err := rows.Scan(&c.Country, &c.Orders, &c.Revenue, &c.AverageOrderValue); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SalesOverTime buckets paid-order revenue by the requested
// granularity.
func (r *Repo) SalesOverTime(ctx context.Context, rng Range, groupBy GroupBy) ([]SalesBucket, error) {
	rng = rng.Normalize(time.Now())
	rows, err := r.DB.Query(ctx, `
		SELECT to_char(created_at, $3), COUNT(*), COALESCE(SUM(subtotal), 0), COALESCE(AVG(subtotal), 0)
		FROM orders
		WHERE created_at BETWEEN $1 AND $2 AND payment_status = 'paid'
		GROUP BY 1 ORDER BY 1`, rng.From, rng.To, bucketFormat(groupBy))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SalesBucket
	for rows.Next() {
		var b SalesBucket
		if err := rows.Scan(&b.Bucket, &b.Orders, &b.Revenue, &b.AverageOrderValue); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) ProductPerformance(ctx context.Context, rng Range, limit int) (*PerformanceReport, error) {
	rng = rng.Normalize(time.Now())
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.DB.Query(ctx, `
		SELECT i.title, SUM(i.quantity), COALESCE(SUM(i.price * i.quantity), 0),
			COALESCE(AVG(i.price), 0), COUNT(DISTINCT i.order_id)
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE o.created_at BETWEEN $1 AND $2 AND o.payment_status = 'paid'
		GROUP BY i.title
		ORDER BY SUM(i.price * i.quantity) DESC
		LIMIT $3`, rng.From, rng.To, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rep := &PerformanceReport{}
	for rows.Next() {
		var p ProductPerformance
		if err := rows.Scan(&p.Title, &p.TotalSold, &p.TotalRevenue, &p.AveragePrice, &p.OrderCount); err != nil {
			return nil, err
		}
		rep.Products = append(rep.Products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rep.Summary.TotalProducts = len(rep.Products)
	priceSum := decimal.Zero
	for _, p := range rep.Products {
		rep.Summary.TotalRevenue = rep.Summary.TotalRevenue.Add(p.TotalRevenue)
		rep.Summary.TotalUnitsSold += p.TotalSold
		priceSum = priceSum.Add(p.AveragePrice)
	}
	if n := len(rep.Products); n > 0 {
		rep.Summary.AveragePrice = priceSum.DivRound(decimal.NewFromInt(int64(n)), 2)
	}
	return rep, nil
}

func (r *Repo) OrderAnalytics(ctx context.Context, rng Range) (*OrderReport, error) {
	rng = rng.Normalize(time.Now())
	rep := &OrderReport{}

	var err error
	rep.StatusDistribution, err = r.statusSlices(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(subtotal), 0)
		FROM orders WHERE created_at BETWEEN $1 AND $2
		GROUP BY status`, rng.From, rng.To)
	if err != nil {
		return nil, err
	}

	rep.PaymentDistribution, err = r.paymentSlices(ctx, `
		SELECT payment_method, COUNT(*), COALESCE(SUM(subtotal), 0)
		FROM orders WHERE created_at BETWEEN $1 AND $2
		GROUP BY payment_method`, rng.From, rng.To)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT to_char(created_at, 'YYYY-MM-DD'), COUNT(*), COALESCE(SUM(subtotal), 0), COALESCE(AVG(subtotal), 0)
		FROM orders WHERE created_at BETWEEN $1 AND $2
		GROUP BY 1 ORDER BY 1`, rng.From, rng.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var b SalesBucket
		if err := rows.Scan(&b.Bucket, &b.Orders, &b.Revenue, &b.AverageOrderValue); err != nil {
			return nil, err
		}
		rep.DailyTrends = append(rep.DailyTrends, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.DB.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(subtotal), 0), COALESCE(AVG(subtotal), 0),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE payment_status = 'paid')
		FROM orders WHERE created_at BETWEEN $1 AND $2`, rng.From, rng.To,
	).Scan(&rep.Summary.TotalOrders, &rep.Summary.TotalRevenue,
		&rep.Summary.AverageOrderValue, &rep.Summary.PendingOrders, &rep.Summary.PaidOrders)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *Repo) GeographicSales(ctx context.Context, rng Range) (*GeoReport, error) {
	rng = rng.Normalize(time.Now())
	rep := &GeoReport{}

	rows, err := r.DB.Query(ctx, `
		SELECT shipping_country, COUNT(*), COALESCE(SUM(subtotal), 0), COALESCE(AVG(subtotal), 0)
		FROM orders
		WHERE created_at BETWEEN $1 AND $2 AND payment_status = 'paid'
		GROUP BY shipping_country
		ORDER BY SUM(subtotal) DESC`, rng.From, rng.To)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var c CountrySales
		if err := rows.Scan(&c.Country, &c.Orders, &c.Revenue, &c.AverageOrderValue); err != nil {
			rows.Close()
			return nil, err
		}
		rep.Countries = append(rep.Countries, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.DB.Query(ctx, `
		SELECT ship_city, COUNT(*), COALESCE(SUM(subtotal), 0), COALESCE(AVG(subtotal), 0)
		FROM orders
		WHERE created_at BETWEEN $1 AND $2 AND payment_status = 'paid'
		GROUP BY ship_city
		ORDER BY SUM(subtotal) DESC
		LIMIT 20`, rng.From, rng.To)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var c CitySales
		if err := rows.Scan(&c.City, &c.Orders, &c.Revenue, &c.AverageOrderValue); err != nil {
			rows.Close()
			return nil, err
		}
		rep.Cities = append(rep.Cities, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.DB.QueryRow(ctx, `
		SELECT COUNT(DISTINCT shipping_country), COUNT(DISTINCT ship_city),
			COUNT(*), COALESCE(SUM(subtotal), 0)
		FROM orders
		WHERE created_at BETWEEN $1 AND $2 AND payment_status = 'paid'`, rng.From, rng.To,
	).Scan(&rep.Summary.TotalCountries, &rep.Summary.TotalCities,
		&rep.Summary.TotalOrders, &rep.Summary.TotalRevenue)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *Repo) CustomerAnalytics(ctx context.Context, rng Range) (*CustomerReport, error) {
	rng = rng.Normalize(time.Now())
	rep := &CustomerReport{}

	rows, err := r.DB.Query(ctx, `
		SELECT customer_email, customer_first_name, customer_last_name,
			COUNT(*), COALESCE(SUM(subtotal), 0), COALESCE(AVG(subtotal), 0), MAX(created_at)
		FROM orders
		WHERE created_at BETWEEN $1 AND $2 AND payment_status = 'paid'
		GROUP BY customer_email, customer_first_name, customer_last_name
		ORDER BY SUM(subtotal) DESC
		LIMIT 20`, rng.From, rng.To)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var c TopCustomer
		if err := rows.Scan(&c.Email, &c.FirstName, &c.LastName,
			&c.OrderCount, &c.TotalSpent, &c.AverageOrderValue, &c.LastOrder); err != nil {
			rows.Close()
			return nil, err
		}
		rep.TopCustomers = append(rep.TopCustomers, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.DB.Query(ctx, `
		WITH spend AS (
			SELECT customer_email, SUM(subtotal) AS total_spent
			FROM orders
			WHERE created_at BETWEEN $1 AND $2 AND payment_status = 'paid'
			GROUP BY customer_email
		)
		SELECT
			CASE
				WHEN total_spent >= 1000 THEN 'VIP'
				WHEN total_spent >= 500 THEN 'Premium'
				WHEN total_spent >= 100 THEN 'Regular'
				ELSE 'New'
			END AS segment,
			COUNT(*), COALESCE(SUM(total_spent), 0), COALESCE(AVG(total_spent), 0)
		FROM spend
		GROUP BY segment`, rng.From, rng.To)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var s SegmentSlice
		if err := rows.Scan(&s.Segment, &s.Count, &s.TotalRevenue, &s.AverageOrderValue); err != nil {
			rows.Close()
			return nil, err
		}
		rep.Segments = append(rep.Segments, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.DB.QueryRow(ctx, `
		WITH counts AS (
			SELECT customer_email, COUNT(*) AS order_count
			FROM orders
			WHERE created_at BETWEEN $1 AND $2 AND payment_status = 'paid'
			GROUP BY customer_email
		)
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE order_count > 1),
			COUNT(*) FILTER (WHERE order_count <= 1)
		FROM counts`, rng.From, rng.To,
	).Scan(&rep.Retention.TotalCustomers, &rep.Retention.ReturningCustomers, &rep.Retention.NewCustomers)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *Repo) paymentSlices(ctx context.Context, q string, args ...any) ([]MethodSlice, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MethodSlice
	total := 0
	for rows.Next() {
		var m MethodSlice
		if err := rows.Scan(&m.Method, &m.Count, &m.Revenue); err != nil {
			return nil, err
		}
		total += m.Count
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	fillPercentages(total, out, func(m *MethodSlice) int { return m.Count }, func(m *MethodSlice, p float64) { m.Percentage = p })
	return out, nil
}

func (r *Repo) statusSlices(ctx context.Context, q string, args ...any) ([]StatusSlice, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusSlice
	total := 0
	for rows.Next() {
		var s StatusSlice
		if err := rows.Scan(&s.Status, &s.Count, &s.Revenue); err != nil {
			return nil, err
		}
		total += s.Count
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	fillPercentages(total, out, func(s *StatusSlice) int { return s.Count }, func(s *StatusSlice, p float64) { s.Percentage = p })
	return out, nil
}

func fillPercentages[T any](total int, xs []T, count func(*T) int, set func(*T, float64)) {
	if total == 0 {
		return
	}
	for i := range xs {
		set(&xs[i], float64(count(&xs[i]))*100/float64(total))
	}
}
