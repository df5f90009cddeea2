package repository

import (
	"context"

	"github.com/CuasDev/fel/internal/dto"
	"github.com/CuasDev/fel/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceRepository is the persistence gateway for invoices. It stores the
// totals it is given and never recomputes them.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	FindByInvoiceNumber(ctx context.Context, number string) (*model.Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q dto.InvoiceQuery) ([]model.Invoice, int64, error)
	FindForReport(ctx context.Context, q dto.InvoiceQuery) ([]model.Invoice, error)
	Count(ctx context.Context) (int64, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

// Create inserts the invoice header and its items in one transaction.
// Associations are written explicitly so referenced customers and products
// are never upserted.
func (r *invoiceRepo) Create(ctx context.Context, inv *model.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := inv.Items
		if err := tx.Omit(clause.Associations).Create(inv).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].InvoiceID = inv.ID
			items[i].Position = i
		}
		if len(items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
				return err
			}
		}
		inv.Items = items
		return nil
	})
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Items.Product").
		First(&inv, "id = ?", id).Error
	return &inv, err
}

func (r *invoiceRepo) FindByInvoiceNumber(ctx context.Context, number string) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).Where("invoice_number = ?", number).First(&inv).Error
	return &inv, err
}

// UpdateStatus returns gorm.ErrRecordNotFound when no row matched.
func (r *invoiceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&model.Invoice{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *invoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&model.InvoiceItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Invoice{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *invoiceRepo) List(ctx context.Context, q dto.InvoiceQuery) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	base := r.filtered(ctx, q)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.filtered(ctx, q).
		Preload("Customer").
		Order("created_at DESC").
		Offset(q.Offset()).Limit(q.Limit).
		Find(&invoices).Error
	return invoices, total, err
}

func (r *invoiceRepo) FindForReport(ctx context.Context, q dto.InvoiceQuery) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.filtered(ctx, q).
		Preload("Customer").
		Order("issue_date DESC").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Invoice{}).Count(&n).Error
	return n, err
}

func (r *invoiceRepo) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Invoice{}).Where("customer_id = ?", customerID).Count(&n).Error
	return n, err
}

func (r *invoiceRepo) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.InvoiceItem{}).Where("product_id = ?", productID).Count(&n).Error
	return n, err
}

func (r *invoiceRepo) filtered(ctx context.Context, q dto.InvoiceQuery) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Invoice{})
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.CustomerID != nil {
		db = db.Where("customer_id = ?", *q.CustomerID)
	}
	if q.From != nil {
		db = db.Where("issue_date >= ?", *q.From)
	}
	if q.To != nil {
		db = db.Where("issue_date <= ?", *q.To)
	}
	return db
}
