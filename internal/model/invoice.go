package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice is the aggregate root of the billing domain.
// Subtotal, TaxAmount and Total are always the sums of the item fields;
// they are computed before insert and never taken from client input.
// Status: "emitida" | "pagada" | "cancelada"
type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceNumber string          `gorm:"uniqueIndex;not null"`
	IssueDate     time.Time       `gorm:"not null;index"`
	DueDate       time.Time       `gorm:"not null"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Subtotal      decimal.Decimal `gorm:"type:numeric;not null"`
	TaxAmount     decimal.Decimal `gorm:"type:numeric;not null"`
	Total         decimal.Decimal `gorm:"type:numeric;not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'emitida';index"`
	PaymentMethod string          `gorm:"type:varchar(20);not null;default:'efectivo'"`
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Customer *Customer     `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT"`
	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

func (Invoice) TableName() string { return "invoices" }

func (i *Invoice) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// InvoiceItem is one line of an invoice. Position keeps the submitted order.
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"not null"`
	Quantity    decimal.Decimal `gorm:"type:numeric;not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric;not null"`
	TaxRate     decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	Subtotal    decimal.Decimal `gorm:"type:numeric;not null"`
	TaxAmount   decimal.Decimal `gorm:"type:numeric;not null"`
	Total       decimal.Decimal `gorm:"type:numeric;not null"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }

func (it *InvoiceItem) BeforeCreate(*gorm.DB) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return nil
}
