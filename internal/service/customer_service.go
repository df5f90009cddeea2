package service

import (
	"context"
	"errors"
	"strings"

	"github.com/CuasDev/fel/internal/dto"
	"github.com/CuasDev/fel/internal/model"
	"github.com/CuasDev/fel/internal/repository"
	"github.com/CuasDev/fel/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const defaultCountry = "México"

type CustomerService interface {
	Create(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error)
	List(ctx context.Context, filter dto.CustomerFilter) (*dto.CustomerListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type customerService struct {
	repo     repository.CustomerRepository
	invoices repository.InvoiceRepository
}

func NewCustomerService(repo repository.CustomerRepository, invoices repository.InvoiceRepository) CustomerService {
	return &customerService{repo: repo, invoices: invoices}
}

func (s *customerService) Create(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	req.TaxID = strings.ToUpper(strings.TrimSpace(req.TaxID))
	req.Email = normalizeEmail(req.Email)
	if fields := validation.Struct(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	if _, err := s.repo.FindByTaxID(ctx, req.TaxID); err == nil {
		return nil, &ConflictError{Message: "Ya existe un cliente con ese RFC"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistence("find customer", err)
	}
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, &ConflictError{Message: "Ya existe un cliente con ese correo electrónico"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistence("find customer", err)
	}

	c := &model.Customer{
		TaxID:   req.TaxID,
		Name:    strings.TrimSpace(req.Name),
		Email:   req.Email,
		Phone:   req.Phone,
		Address: model.Address{Country: defaultCountry},
		Active:  true,
	}
	applyAddress(&c.Address, req.Address)

	if err := s.repo.Create(ctx, c); err != nil {
		if isDuplicate(err) {
			return nil, &ConflictError{Message: "Ya existe un cliente con ese RFC o correo electrónico"}
		}
		return nil, persistence("create customer", err)
	}
	log.Info().Str("customer_id", c.ID.String()).Str("tax_id", c.TaxID).Msg("customer created")
	resp := toCustomerResponse(c)
	return &resp, nil
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(EntityCustomer, "find customer", err)
	}
	resp := toCustomerResponse(c)
	return &resp, nil
}

func (s *customerService) List(ctx context.Context, filter dto.CustomerFilter) (*dto.CustomerListResponse, error) {
	filter.Normalize()
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, persistence("list customers", err)
	}
	out := make([]dto.CustomerResponse, len(rows))
	for i := range rows {
		out[i] = toCustomerResponse(&rows[i])
	}
	return &dto.CustomerListResponse{Customers: out, Pagination: dto.NewPagination(total, filter.PageQuery)}, nil
}

func (s *customerService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	if req.Email != nil {
		e := normalizeEmail(*req.Email)
		req.Email = &e
	}
	if fields := validation.Struct(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(EntityCustomer, "find customer", err)
	}
	if req.Email != nil && *req.Email != c.Email {
		existing, err := s.repo.FindByEmail(ctx, *req.Email)
		if err == nil && existing.ID != c.ID {
			return nil, &ConflictError{Message: "Ya existe un cliente con ese correo electrónico"}
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, persistence("find customer", err)
		}
		c.Email = *req.Email
	}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	applyAddress(&c.Address, req.Address)

	if err := s.repo.Update(ctx, c); err != nil {
		if isDuplicate(err) {
			return nil, &ConflictError{Message: "Ya existe un cliente con ese correo electrónico"}
		}
		return nil, persistence("update customer", err)
	}
	resp := toCustomerResponse(c)
	return &resp, nil
}

// Delete refuses to remove a customer that invoices still reference.
func (s *customerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookup(EntityCustomer, "find customer", err)
	}
	n, err := s.invoices.CountByCustomer(ctx, id)
	if err != nil {
		return persistence("count invoices", err)
	}
	if n > 0 {
		return customerInUse()
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		// invoiced between the count and the delete
		if isForeignKeyViolation(err) {
			return customerInUse()
		}
		return lookup(EntityCustomer, "delete customer", err)
	}
	log.Info().Str("customer_id", id.String()).Msg("customer deleted")
	return nil
}

func customerInUse() error {
	return &ConflictError{Message: "No se puede eliminar un cliente con facturas asociadas"}
}

func applyAddress(a *model.Address, req *dto.AddressRequest) {
	if req == nil {
		return
	}
	if req.Street != nil {
		a.Street = *req.Street
	}
	if req.City != nil {
		a.City = *req.City
	}
	if req.State != nil {
		a.State = *req.State
	}
	if req.PostalCode != nil {
		a.PostalCode = *req.PostalCode
	}
	if req.Country != nil && strings.TrimSpace(*req.Country) != "" {
		a.Country = *req.Country
	}
}

func toCustomerResponse(c *model.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:    c.ID.String(),
		TaxID: c.TaxID,
		Name:  c.Name,
		Email: c.Email,
		Phone: c.Phone,
		Address: dto.AddressResponse{
			Street:     c.Address.Street,
			City:       c.Address.City,
			State:      c.Address.State,
			PostalCode: c.Address.PostalCode,
			Country:    c.Address.Country,
		},
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
