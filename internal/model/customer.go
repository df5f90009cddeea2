package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address is embedded into customers as address_* columns.
type Address struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string `gorm:"default:'México'"`
}

// Customer is the billed party of an invoice.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TaxID     string    `gorm:"column:tax_id;uniqueIndex;not null"`
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"uniqueIndex;not null"`
	Phone     string
	Address   Address `gorm:"embedded;embeddedPrefix:address_"`
	Active    bool    `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Customer) TableName() string { return "customers" }

func (c *Customer) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
