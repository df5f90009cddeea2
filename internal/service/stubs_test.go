package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/CuasDev/fel/internal/dto"
	"github.com/CuasDev/fel/internal/model"
	"github.com/CuasDev/fel/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── In-memory Repository Stubs ────────────────────────────────────────────────

var (
	_ repository.InvoiceRepository  = (*stubInvoiceRepo)(nil)
	_ repository.CustomerRepository = (*stubCustomerRepo)(nil)
	_ repository.ProductRepository  = (*stubProductRepo)(nil)
	_ repository.UserRepository     = (*stubUserRepo)(nil)
)

type stubInvoiceRepo struct {
	byID      map[uuid.UUID]*model.Invoice
	creates   int
	updates   int
	deletes   int
	failErr   error // returned by every call when set
	createErr error // returned by Create only
}

func newStubInvoiceRepo() *stubInvoiceRepo {
	return &stubInvoiceRepo{byID: make(map[uuid.UUID]*model.Invoice)}
}

func (r *stubInvoiceRepo) Create(_ context.Context, inv *model.Invoice) error {
	if r.failErr != nil {
		return r.failErr
	}
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.byID {
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	r.creates++
	inv.ID = uuid.New()
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt
	for i := range inv.Items {
		inv.Items[i].ID = uuid.New()
		inv.Items[i].InvoiceID = inv.ID
	}
	cp := *inv
	cp.Items = append([]model.InvoiceItem(nil), inv.Items...)
	r.byID[inv.ID] = &cp
	return nil
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	inv, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *stubInvoiceRepo) FindByInvoiceNumber(_ context.Context, number string) (*model.Invoice, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	for _, inv := range r.byID {
		if inv.InvoiceNumber == number {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubInvoiceRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	inv, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.updates++
	inv.Status = status
	return nil
}

func (r *stubInvoiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.byID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.deletes++
	delete(r.byID, id)
	return nil
}

func (r *stubInvoiceRepo) matching(q dto.InvoiceQuery) []model.Invoice {
	var out []model.Invoice
	for _, inv := range r.byID {
		if q.Status != "" && inv.Status != q.Status {
			continue
		}
		if q.CustomerID != nil && inv.CustomerID != *q.CustomerID {
			continue
		}
		if q.From != nil && inv.IssueDate.Before(*q.From) {
			continue
		}
		if q.To != nil && inv.IssueDate.After(*q.To) {
			continue
		}
		out = append(out, *inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceNumber < out[j].InvoiceNumber })
	return out
}

func (r *stubInvoiceRepo) List(_ context.Context, q dto.InvoiceQuery) ([]model.Invoice, int64, error) {
	all := r.matching(q)
	start := q.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *stubInvoiceRepo) FindForReport(_ context.Context, q dto.InvoiceQuery) ([]model.Invoice, error) {
	return r.matching(q), nil
}

func (r *stubInvoiceRepo) Count(context.Context) (int64, error) { return int64(len(r.byID)), nil }

func (r *stubInvoiceRepo) CountByCustomer(_ context.Context, id uuid.UUID) (int64, error) {
	var n int64
	for _, inv := range r.byID {
		if inv.CustomerID == id {
			n++
		}
	}
	return n, nil
}

func (r *stubInvoiceRepo) CountByProduct(_ context.Context, id uuid.UUID) (int64, error) {
	var n int64
	for _, inv := range r.byID {
		for _, it := range inv.Items {
			if it.ProductID == id {
				n++
			}
		}
	}
	return n, nil
}

type stubCustomerRepo struct {
	byID      map[uuid.UUID]*model.Customer
	deleteErr error
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{byID: make(map[uuid.UUID]*model.Customer)}
}

func (r *stubCustomerRepo) add(c model.Customer) *model.Customer {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.byID[c.ID] = &c
	return &c
}

func (r *stubCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	for _, e := range r.byID {
		if e.TaxID == c.TaxID || e.Email == c.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	c.ID = uuid.New()
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCustomerRepo) FindByTaxID(_ context.Context, taxID string) (*model.Customer, error) {
	for _, c := range r.byID {
		if c.TaxID == taxID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCustomerRepo) FindByEmail(_ context.Context, email string) (*model.Customer, error) {
	for _, c := range r.byID {
		if strings.EqualFold(c.Email, email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCustomerRepo) List(_ context.Context, f dto.CustomerFilter) ([]model.Customer, int64, error) {
	var out []model.Customer
	for _, c := range r.byID {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCustomerRepo) Update(_ context.Context, c *model.Customer) error {
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *stubCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.byID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubProductRepo struct {
	byID      map[uuid.UUID]*model.Product
	deleteErr error
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{byID: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) add(p model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.byID[p.ID] = &p
	return &p
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	for _, e := range r.byID {
		if e.Code == p.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	p.ID = uuid.New()
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) FindByCode(_ context.Context, code string) (*model.Product, error) {
	for _, p := range r.byID {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, f dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.byID {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.byID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubUserRepo struct{ byID map[uuid.UUID]*model.User }

func newStubUserRepo() *stubUserRepo { return &stubUserRepo{byID: make(map[uuid.UUID]*model.User)} }

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	for _, e := range r.byID {
		if strings.EqualFold(e.Email, u.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) List(_ context.Context, f dto.UserFilter) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range r.byID {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.byID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.byID, id)
	return nil
}

// stubQueue records enqueued invoice emails.
type stubQueue struct {
	jobs []string
	err  error
}

func (q *stubQueue) EnqueueInvoiceEmail(_ context.Context, id uuid.UUID, to string) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, id.String()+"|"+to)
	return nil
}
