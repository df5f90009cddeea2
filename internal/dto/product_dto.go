package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Code        string          `json:"code"        validate:"required,max=64"`
	Name        string          `json:"name"        validate:"required,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price"       validate:"gte=0"`
	TaxRate     decimal.Decimal `json:"taxRate"     validate:"gte=0"`
	Unit        string          `json:"unit"        validate:"required,max=20"`
	Stock       int             `json:"stock"       validate:"min=0"`
	Category    string          `json:"category"    validate:"max=100"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Price       *decimal.Decimal `json:"price"       validate:"omitempty,gte=0"`
	TaxRate     *decimal.Decimal `json:"taxRate"     validate:"omitempty,gte=0"`
	Unit        *string          `json:"unit"        validate:"omitempty,min=1,max=20"`
	Stock       *int             `json:"stock"       validate:"omitempty,min=0"`
	Category    *string          `json:"category"    validate:"omitempty,max=100"`
	Active      *bool            `json:"active"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	PageQuery
	Active   string `form:"active"` // "true" | "false" | "" (all)
	Category string `form:"category"`
	Search   string `form:"search"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	Unit        string          `json:"unit"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	Pagination Pagination        `json:"pagination"`
}
