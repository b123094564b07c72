package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Range bounds every aggregation. Zero values fall back to calendar
// year-to-date.
type Range struct {
	From time.Time
	To   time.Time
}

// Normalize fills missing bounds and pushes To to the end of its day,
// so a date-only query parameter covers the whole final day.
func (r Range) Normalize(now time.Time) Range {
	if r.From.IsZero() {
		r.From = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	}
	if r.To.IsZero() {
		r.To = now
	}
	r.To = time.Date(r.To.Year(), r.To.Month(), r.To.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), r.To.Location())
	return r
}

type Totals struct {
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type RecentOrder struct {
	OrderNumber string          `json:"orderNumber"`
	Customer    string          `json:"customer"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type TopProduct struct {
	Title        string          `json:"title"`
	TotalSold    int             `json:"totalSold"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

type CountrySales struct {
	Country           string          `json:"country"`
	Orders            int             `json:"orders"`
	Revenue           decimal.Decimal `json:"revenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

type CitySales struct {
	City              string          `json:"city"`
	Orders            int             `json:"orders"`
	Revenue           decimal.Decimal `json:"revenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

type MethodSlice struct {
	Method     string          `json:"method"`
	Count      int             `json:"count"`
	Revenue    decimal.Decimal `json:"revenue"`
	Percentage float64         `json:"percentage"`
}

type StatusSlice struct {
	Status     string          `json:"status"`
	Count      int             `json:"count"`
	Revenue    decimal.Decimal `json:"revenue"`
	Percentage float64         `json:"percentage"`
}

// DashboardStats is the admin landing-page aggregate. Revenue figures
// count paid orders only.
type DashboardStats struct {
	Total          Totals         `json:"total"`
	Month          Totals         `json:"month"`
	Year           Totals         `json:"year"`
	PendingOrders  int            `json:"pendingOrders"`
	LowStock       int            `json:"lowStockProducts"`
	RecentOrders   []RecentOrder  `json:"recentOrders"`
	TopProducts    []TopProduct   `json:"topProducts"`
	SalesByCountry []CountrySales `json:"salesByCountry"`
	PaymentMethods []MethodSlice  `json:"paymentMethods"`
	OrderStatuses  []StatusSlice  `json:"orderStatuses"`
}

type SalesBucket struct {
	Bucket            string          `json:"bucket"`
	Orders            int             `json:"orders"`
	Revenue           decimal.Decimal `json:"revenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

type ProductPerformance struct {
	Title        string          `json:"title"`
	TotalSold    int             `json:"totalSold"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	AveragePrice decimal.Decimal `json:"averagePrice"`
	OrderCount   int             `json:"orderCount"`
}

type PerformanceSummary struct {
	TotalProducts  int             `json:"totalProducts"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TotalUnitsSold int             `json:"totalUnitsSold"`
	AveragePrice   decimal.Decimal `json:"averagePrice"`
}

type PerformanceReport struct {
	Products []ProductPerformance `json:"products"`
	Summary  PerformanceSummary   `json:"summary"`
}

type OrderSummary struct {
	TotalOrders       int             `json:"totalOrders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	PendingOrders     int             `json:"pendingOrders"`
	PaidOrders        int             `json:"paidOrders"`
}

type OrderReport struct {
	StatusDistribution  []StatusSlice `json:"orderStatusDistribution"`
	PaymentDistribution []MethodSlice `json:"paymentMethodDistribution"`
	DailyTrends         []SalesBucket `json:"dailyOrderTrends"`
	Summary             OrderSummary  `json:"summary"`
}

type GeoSummary struct {
	TotalCountries int             `json:"totalCountries"`
	TotalCities    int             `json:"totalCities"`
	TotalOrders    int             `json:"totalOrders"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
}

type GeoReport struct {
	Countries []CountrySales `json:"countries"`
	Cities    []CitySales    `json:"cities"`
	Summary   GeoSummary     `json:"summary"`
}

type TopCustomer struct {
	Email             string          `json:"email"`
	FirstName         string          `json:"firstName"`
	LastName          string          `json:"lastName"`
	OrderCount        int             `json:"orderCount"`
	TotalSpent        decimal.Decimal `json:"totalSpent"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	LastOrder         time.Time       `json:"lastOrder"`
}

type SegmentSlice struct {
	Segment           string          `json:"segment"`
	Count             int             `json:"count"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

type Retention struct {
	TotalCustomers     int `json:"totalCustomers"`
	ReturningCustomers int `json:"returningCustomers"`
	NewCustomers       int `json:"newCustomers"`
}

type CustomerReport struct {
	TopCustomers []TopCustomer  `json:"topCustomers"`
	Segments     []SegmentSlice `json:"customerSegments"`
	Retention    Retention      `json:"customerRetention"`
}
