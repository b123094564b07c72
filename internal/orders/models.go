package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type ShippingAddress struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// Item is a denormalized snapshot of a product at order time. Later
// product edits must not alter historical orders, so nothing here
// references a live product row.
type Item struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

// FeeSnapshot captures the shipping directory entry used for the order.
type FeeSnapshot struct {
	Country  string          `json:"country"`
	Fee      decimal.Decimal `json:"fee"`
	Currency string          `json:"currency"`
}

type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	Status          Status          `json:"status"`
	Customer        Customer        `json:"customer"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Items           []Item          `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingFee     decimal.Decimal `json:"shippingFee"`
	Total           decimal.Decimal `json:"total"`
	Currency        string          `json:"currency"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty"`
	ShippingCountry string          `json:"shippingCountry"`
	FeeDetails      FeeSnapshot     `json:"shippingFeeDetails"`
	CreatedBy       string          `json:"createdBy,omitempty"`
	CreatedByRole   string          `json:"createdByRole,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Stats are the per-status counts plus paid revenue for the admin list view.
type Stats struct {
	TotalOrders      int             `json:"totalOrders"`
	PendingOrders    int             `json:"pendingOrders"`
	ConfirmedOrders  int             `json:"confirmedOrders"`
	ProcessingOrders int             `json:"processingOrders"`
	ShippedOrders    int             `json:"shippedOrders"`
	DeliveredOrders  int             `json:"deliveredOrders"`
	CancelledOrders  int             `json:"cancelledOrders"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
}
