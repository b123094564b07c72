package catalog

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNameRequired    = errors.New("product name is required")
	ErrImageRequired   = errors.New("product image is required")
	ErrInvalidCategory = errors.New("unknown product category")
	ErrNegativeStock   = errors.New("stock must be non-negative")
)

type CreateInput struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Image       string          `json:"image"`
	HoverImage  string          `json:"hoverImage"`
	Category    []string        `json:"category"`
	Description string          `json:"description"`
	Features    []string        `json:"features"`
	Stock       int             `json:"stock"`
	IsActive    *bool           `json:"isActive"`
}

func (in *CreateInput) Validate() error {
	if in.Name == "" {
		return ErrNameRequired
	}
	if in.Image == "" {
		return ErrImageRequired
	}
	if in.Stock < 0 {
		return ErrNegativeStock
	}
	for _, c := range in.Category {
		if !ValidCategory(c) {
			return ErrInvalidCategory
		}
	}
	return nil
}

// UpdateInput is a partial update; nil fields keep the current value.
type UpdateInput struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Currency    *string          `json:"currency"`
	Image       *string          `json:"image"`
	HoverImage  *string          `json:"hoverImage"`
	Category    *[]string        `json:"category"`
	Description *string          `json:"description"`
	Features    *[]string        `json:"features"`
	Stock       *int             `json:"stock"`
	IsActive    *bool            `json:"isActive"`
}

// apply merges the patch onto a copy of p.
func (in *UpdateInput) apply(p Product) (Product, error) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Currency != nil {
		p.Currency = *in.Currency
	}
	if in.Image != nil {
		if *in.Image == "" {
			return p, ErrImageRequired
		}
		p.Image = *in.Image
	}
	if in.HoverImage != nil {
		p.HoverImage = *in.HoverImage
	}
	if in.Category != nil {
		for _, c := range *in.Category {
			if !ValidCategory(c) {
				return p, ErrInvalidCategory
			}
		}
		p.Category = *in.Category
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Features != nil {
		p.Features = *in.Features
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return p, ErrNegativeStock
		}
		p.Stock = *in.Stock
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return p, nil
}
