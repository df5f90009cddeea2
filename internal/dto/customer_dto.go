package dto

import "time"

// ── Request DTOs ──────────────────────────────────────────────────────────────

type AddressRequest struct {
	Street     *string `json:"street"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	PostalCode *string `json:"postalCode"`
	Country    *string `json:"country"`
}

type CreateCustomerRequest struct {
	TaxID   string          `json:"taxId"   validate:"required,max=32"`
	Name    string          `json:"name"    validate:"required,max=200"`
	Email   string          `json:"email"   validate:"required,email"`
	Phone   string          `json:"phone"   validate:"max=40"`
	Address *AddressRequest `json:"address"`
}

type UpdateCustomerRequest struct {
	Name    *string         `json:"name"    validate:"omitempty,min=1,max=200"`
	Email   *string         `json:"email"   validate:"omitempty,email"`
	Phone   *string         `json:"phone"   validate:"omitempty,max=40"`
	Address *AddressRequest `json:"address"`
	Active  *bool           `json:"active"`
}

// ── Filter ────────────────────────────────────────────────────────────────────

type CustomerFilter struct {
	PageQuery
	Active string `form:"active"` // "true" | "false" | "" (all)
	Search string `form:"search"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

type AddressResponse struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type CustomerResponse struct {
	ID        string          `json:"id"`
	TaxID     string          `json:"taxId"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	Address   AddressResponse `json:"address"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type CustomerListResponse struct {
	Customers  []CustomerResponse `json:"customers"`
	Pagination Pagination         `json:"pagination"`
}
