package dto

import (
	"time"

	"github.com/CuasDev/fel/internal/billing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// InvoiceItemRequest is one submitted line. Any subtotal/total sent by the
// client is not bound: totals are always recomputed.
type InvoiceItemRequest struct {
	Product     string          `json:"product"     validate:"required,uuid"`
	Description string          `json:"description" validate:"max=500"`
	Quantity    decimal.Decimal `json:"quantity"    validate:"gte=1"`
	UnitPrice   decimal.Decimal `json:"unitPrice"   validate:"gte=0"`
	TaxRate     decimal.Decimal `json:"taxRate"     validate:"gte=0"`
}

type CreateInvoiceRequest struct {
	InvoiceNumber string               `json:"invoiceNumber" validate:"required,max=64"`
	IssueDate     string               `json:"issueDate"`
	DueDate       string               `json:"dueDate"`
	Customer      string               `json:"customer"      validate:"required,uuid"`
	Items         []InvoiceItemRequest `json:"items"         validate:"min=1,dive"`
	PaymentMethod string               `json:"paymentMethod" validate:"omitempty,oneof=efectivo tarjeta transferencia cheque otro"`
	Notes         string               `json:"notes"         validate:"max=2000"`
}

type UpdateInvoiceStatusRequest struct {
	Status string `json:"status"`
}

type SendInvoiceRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

// PreviewItemRequest accepts loosely typed numbers, like the browser form.
type PreviewItemRequest struct {
	Quantity  billing.Amount `json:"quantity"`
	UnitPrice billing.Amount `json:"unitPrice"`
	TaxRate   billing.Amount `json:"taxRate"`
}

type PreviewInvoiceRequest struct {
	Items []PreviewItemRequest `json:"items"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

// InvoiceFilter is bound from the query string of GET /api/v1/invoices.
// Dates accept RFC3339 or YYYY-MM-DD.
type InvoiceFilter struct {
	PageQuery
	Status   string `form:"status"`
	Customer string `form:"customer"`
	FromDate string `form:"fromDate"`
	ToDate   string `form:"toDate"`
}

// InvoiceQuery is the parsed form of an InvoiceFilter handed to repositories.
// From and To bound issue_date inclusively.
type InvoiceQuery struct {
	PageQuery
	Status     string
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CustomerRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	TaxID string `json:"taxId"`
	Email string `json:"email"`
}

type ProductRef struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Unit string `json:"unit,omitempty"`
}

type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	Product     ProductRef      `json:"product"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	Total       decimal.Decimal `json:"total"`
}

type InvoiceResponse struct {
	ID            string                `json:"id"`
	InvoiceNumber string                `json:"invoiceNumber"`
	IssueDate     time.Time             `json:"issueDate"`
	DueDate       time.Time             `json:"dueDate"`
	Customer      CustomerRef           `json:"customer"`
	Items         []InvoiceItemResponse `json:"items,omitempty"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxAmount     decimal.Decimal       `json:"taxAmount"`
	Total         decimal.Decimal       `json:"total"`
	Status        string                `json:"status"`
	PaymentMethod string                `json:"paymentMethod"`
	Notes         string                `json:"notes"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

type InvoiceListResponse struct {
	Invoices   []InvoiceResponse `json:"invoices"`
	Pagination Pagination        `json:"pagination"`
}

type InvoiceStatusResponse struct {
	Message string          `json:"message"`
	Invoice InvoiceResponse `json:"invoice"`
}

type ReportSummary struct {
	Count         int             `json:"count"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	TotalTax      decimal.Decimal `json:"totalTax"`
	TotalSubtotal decimal.Decimal `json:"totalSubtotal"`
	ByStatus      map[string]int  `json:"byStatus"`
}

type InvoiceReportResponse struct {
	Invoices []InvoiceResponse `json:"invoices"`
	Summary  ReportSummary     `json:"summary"`
}

type PreviewLineResponse struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"taxAmount"`
	Total     decimal.Decimal `json:"total"`
}

type PreviewInvoiceResponse struct {
	Items     []PreviewLineResponse `json:"items"`
	Subtotal  decimal.Decimal       `json:"subtotal"`
	TaxAmount decimal.Decimal       `json:"taxAmount"`
	Total     decimal.Decimal       `json:"total"`
}
