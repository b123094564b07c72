package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categories is the closed set of product tags.
var Categories = []string{
	"Development Boards",
	"Arduino",
	"Raspberry Pi",
	"ESP32",
	"STM32",
	"Microcontrollers",
	"Sensors",
	"Modules",
	"Other",
}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	Image         string          `json:"image"`
	HoverImage    string          `json:"hoverImage,omitempty"`
	Category      []string        `json:"category"`
	Description   string          `json:"description,omitempty"`
	Features      []string        `json:"features"`
	Stock         int             `json:"stock"`
	IsActive      bool            `json:"isActive"`
	CreatedBy     string          `json:"createdBy,omitempty"`
	CreatedByRole string          `json:"createdByRole,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// StockNotification is one (email, product) restock waitlist entry.
// productName is a snapshot taken at subscribe time.
type StockNotification struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	ProductID   string     `json:"productId"`
	ProductName string     `json:"productName"`
	IsNotified  bool       `json:"isNotified"`
	NotifiedAt  *time.Time `json:"notifiedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
