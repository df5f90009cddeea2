package service

import (
	"context"
	"testing"

	"github.com/CuasDev/fel/internal/dto"
	"github.com/CuasDev/fel/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Customers ─────────────────────────────────────────────────────────────────

func TestCustomerCreate_NormalizesAndDefaultsCountry(t *testing.T) {
	svc := NewCustomerService(newStubCustomerRepo(), newStubInvoiceRepo())
	city := "Guadalajara"
	resp, err := svc.Create(context.Background(), dto.CreateCustomerRequest{
		TaxID:   " xaxx010101000 ",
		Name:    "Acme",
		Email:   "Billing@Acme.test",
		Address: &dto.AddressRequest{City: &city},
	})
	require.NoError(t, err)
	assert.Equal(t, "XAXX010101000", resp.TaxID)
	assert.Equal(t, "billing@acme.test", resp.Email)
	assert.Equal(t, "México", resp.Address.Country)
	assert.Equal(t, "Guadalajara", resp.Address.City)
	assert.True(t, resp.Active)
}

func TestCustomerCreate_Duplicates(t *testing.T) {
	repo := newStubCustomerRepo()
	repo.add(model.Customer{TaxID: "AAA", Name: "A", Email: "a@x.test"})
	svc := NewCustomerService(repo, newStubInvoiceRepo())

	var conflict *ConflictError
	_, err := svc.Create(context.Background(), dto.CreateCustomerRequest{TaxID: "aaa", Name: "B", Email: "b@x.test"})
	assert.ErrorAs(t, err, &conflict)
	_, err = svc.Create(context.Background(), dto.CreateCustomerRequest{TaxID: "BBB", Name: "B", Email: "A@x.test"})
	assert.ErrorAs(t, err, &conflict)

	_, err = svc.Create(context.Background(), dto.CreateCustomerRequest{TaxID: "CCC"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCustomerDelete_RefusedWhenInvoiced(t *testing.T) {
	customers := newStubCustomerRepo()
	invoices := newStubInvoiceRepo()
	c := customers.add(model.Customer{TaxID: "AAA", Name: "A", Email: "a@x.test"})
	free := customers.add(model.Customer{TaxID: "BBB", Name: "B", Email: "b@x.test"})
	invoices.byID[uuid.New()] = &model.Invoice{InvoiceNumber: "F-1", CustomerID: c.ID}
	svc := NewCustomerService(customers, invoices)

	var conflict *ConflictError
	assert.ErrorAs(t, svc.Delete(context.Background(), c.ID), &conflict)
	assert.NoError(t, svc.Delete(context.Background(), free.ID))

	var nf *NotFoundError
	assert.ErrorAs(t, svc.Delete(context.Background(), free.ID), &nf)
}

func TestCustomerDelete_InvoicedConcurrently(t *testing.T) {
	customers := newStubCustomerRepo()
	c := customers.add(model.Customer{TaxID: "AAA", Name: "A", Email: "a@x.test"})
	customers.deleteErr = gorm.ErrForeignKeyViolated
	svc := NewCustomerService(customers, newStubInvoiceRepo())

	var conflict *ConflictError
	require.ErrorAs(t, svc.Delete(context.Background(), c.ID), &conflict)
	assert.Equal(t, "No se puede eliminar un cliente con facturas asociadas", conflict.Message)
}

func TestCustomerUpdate(t *testing.T) {
	repo := newStubCustomerRepo()
	c := repo.add(model.Customer{TaxID: "AAA", Name: "A", Email: "a@x.test", Active: true})
	repo.add(model.Customer{TaxID: "BBB", Name: "B", Email: "b@x.test"})
	svc := NewCustomerService(repo, newStubInvoiceRepo())

	name, inactive := "Alfa", false
	resp, err := svc.Update(context.Background(), c.ID, dto.UpdateCustomerRequest{Name: &name, Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Alfa", resp.Name)
	assert.False(t, resp.Active)

	taken := "B@x.test"
	_, err = svc.Update(context.Background(), c.ID, dto.UpdateCustomerRequest{Email: &taken})
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}

// ── Products ──────────────────────────────────────────────────────────────────

func TestProductCreate(t *testing.T) {
	svc := NewProductService(newStubProductRepo(), newStubInvoiceRepo())
	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Code: "P-1", Name: "Licencia", Price: dec("999.99"), TaxRate: dec("16"), Unit: "servicio",
	})
	require.NoError(t, err)
	assert.True(t, resp.Price.Equal(dec("999.99")))

	_, err = svc.Create(context.Background(), dto.CreateProductRequest{Code: "P-1", Name: "Otra", Unit: "pieza"})
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)

	_, err = svc.Create(context.Background(), dto.CreateProductRequest{Code: "P-2", Name: "Neg", Price: dec("-1"), Unit: "pieza", Stock: -3})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}

func TestProductUpdateAndDelete(t *testing.T) {
	products := newStubProductRepo()
	invoices := newStubInvoiceRepo()
	used := products.add(model.Product{Code: "U", Name: "Usado", Price: dec("1"), Unit: "pieza"})
	unused := products.add(model.Product{Code: "N", Name: "Nuevo", Price: dec("1"), Unit: "pieza"})
	invoices.byID[uuid.New()] = &model.Invoice{InvoiceNumber: "F-1", Items: []model.InvoiceItem{{ProductID: used.ID}}}
	svc := NewProductService(products, invoices)

	price := dec("2.50")
	resp, err := svc.Update(context.Background(), unused.ID, dto.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.True(t, resp.Price.Equal(price))

	var conflict *ConflictError
	assert.ErrorAs(t, svc.Delete(context.Background(), used.ID), &conflict)
	assert.NoError(t, svc.Delete(context.Background(), unused.ID))

	_, err = svc.Get(context.Background(), unused.ID)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestProductDelete_InvoicedConcurrently(t *testing.T) {
	products := newStubProductRepo()
	p := products.add(model.Product{Code: "U", Name: "Usado", Price: dec("1"), Unit: "pieza"})
	products.deleteErr = gorm.ErrForeignKeyViolated
	svc := NewProductService(products, newStubInvoiceRepo())

	var conflict *ConflictError
	assert.ErrorAs(t, svc.Delete(context.Background(), p.ID), &conflict)
}
