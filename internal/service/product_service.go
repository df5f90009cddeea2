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

// ProductService defines the business logic contract for catalog products.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo     repository.ProductRepository
	invoices repository.InvoiceRepository
}

func NewProductService(repo repository.ProductRepository, invoices repository.InvoiceRepository) ProductService {
	return &productService{repo: repo, invoices: invoices}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	req.Code = strings.TrimSpace(req.Code)
	if fields := validation.Struct(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	if _, err := s.repo.FindByCode(ctx, req.Code); err == nil {
		return nil, &ConflictError{Message: "Ya existe un producto con ese código"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistence("find product", err)
	}

	p := &model.Product{
		Code:        req.Code,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		TaxRate:     req.TaxRate,
		Unit:        req.Unit,
		Stock:       req.Stock,
		Category:    req.Category,
		Active:      true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if isDuplicate(err) {
			return nil, &ConflictError{Message: "Ya existe un producto con ese código"}
		}
		return nil, persistence("create product", err)
	}
	log.Info().Str("product_id", p.ID.String()).Str("code", p.Code).Msg("product created")
	resp := toProductResponse(p)
	return &resp, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(EntityProduct, "find product", err)
	}
	resp := toProductResponse(p)
	return &resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	filter.Normalize()
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, persistence("list products", err)
	}
	out := make([]dto.ProductResponse, len(rows))
	for i := range rows {
		out[i] = toProductResponse(&rows[i])
	}
	return &dto.ProductListResponse{Products: out, Pagination: dto.NewPagination(total, filter.PageQuery)}, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(EntityProduct, "find product", err)
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.TaxRate != nil {
		p.TaxRate = *req.TaxRate
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, persistence("update product", err)
	}
	resp := toProductResponse(p)
	return &resp, nil
}

// Delete refuses to remove a product that invoice items still reference.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookup(EntityProduct, "find product", err)
	}
	n, err := s.invoices.CountByProduct(ctx, id)
	if err != nil {
		return persistence("count invoice items", err)
	}
	if n > 0 {
		return productInUse()
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if isForeignKeyViolation(err) {
			return productInUse()
		}
		return lookup(EntityProduct, "delete product", err)
	}
	log.Info().Str("product_id", id.String()).Msg("product deleted")
	return nil
}

func productInUse() error {
	return &ConflictError{Message: "No se puede eliminar un producto incluido en facturas"}
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID.String(),
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		TaxRate:     p.TaxRate,
		Unit:        p.Unit,
		Stock:       p.Stock,
		Category:    p.Category,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
