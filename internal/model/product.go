package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry that invoice line items reference.
// TaxRate is a percentage (16 = 16%).
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code        string    `gorm:"uniqueIndex;not null"`
	Name        string    `gorm:"index;not null"`
	Description string
	Price       decimal.Decimal `gorm:"type:numeric;not null"`
	TaxRate     decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	Unit        string          `gorm:"not null"`
	Stock       int             `gorm:"not null;default:0"`
	Category    string
	Active      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
