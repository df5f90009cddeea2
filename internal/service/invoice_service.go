package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CuasDev/fel/internal/billing"
	"github.com/CuasDev/fel/internal/dto"
	"github.com/CuasDev/fel/internal/infra"
	"github.com/CuasDev/fel/internal/model"
	"github.com/CuasDev/fel/internal/repository"
	"github.com/CuasDev/fel/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dateOnly = "2006-01-02"

// ErrQueueUnavailable is returned by Send when no mail queue is configured.
var ErrQueueUnavailable = errors.New("el envío de correos no está disponible")

// MailQueue accepts invoice delivery jobs. worker.Dispatcher implements it.
type MailQueue interface {
	EnqueueInvoiceEmail(ctx context.Context, invoiceID uuid.UUID, to string) error
}

type InvoiceService interface {
	Create(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponse, error)
	List(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*dto.InvoiceResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Report(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceReportResponse, error)
	ExportReport(ctx context.Context, filter dto.InvoiceFilter) ([]byte, error)
	Preview(req dto.PreviewInvoiceRequest) dto.PreviewInvoiceResponse
	RenderPDF(ctx context.Context, id uuid.UUID) ([]byte, string, error)
	Send(ctx context.Context, id uuid.UUID, email string) (string, error)
}

// InvoiceOptions carries the configurable parts of invoice handling.
type InvoiceOptions struct {
	DueDays     int
	Lifecycle   billing.Lifecycle
	CompanyName string
}

type invoiceService struct {
	invoices  repository.InvoiceRepository
	customers repository.CustomerRepository
	products  repository.ProductRepository
	queue     MailQueue
	opts      InvoiceOptions
	now       func() time.Time
}

// NewInvoiceService wires the invoice use cases. queue may be nil, in which
// case Send fails with ErrQueueUnavailable.
func NewInvoiceService(
	invoices repository.InvoiceRepository,
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	queue MailQueue,
	opts InvoiceOptions,
) InvoiceService {
	return &invoiceService{
		invoices:  invoices,
		customers: customers,
		products:  products,
		queue:     queue,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func duplicateNumber() error {
	return &ConflictError{Message: "Ya existe una factura con ese número"}
}

// ── Create ────────────────────────────────────────────────────────────────────

func (s *invoiceService) Create(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	req.InvoiceNumber = strings.TrimSpace(req.InvoiceNumber)

	// A known duplicate number wins over any other problem with the request.
	if req.InvoiceNumber != "" {
		_, err := s.invoices.FindByInvoiceNumber(ctx, req.InvoiceNumber)
		if err == nil {
			return nil, duplicateNumber()
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, persistence("find invoice by number", err)
		}
	}

	fields := validation.Struct(req)
	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		fields = append(fields, validation.FieldError{Field: "issueDate", Message: "Fecha no válida"})
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		fields = append(fields, validation.FieldError{Field: "dueDate", Message: "Fecha no válida"})
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	customerID, _ := uuid.Parse(req.Customer)
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, lookup(EntityCustomer, "find customer", err)
	}

	products, err := s.resolveProducts(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	inputs := make([]billing.LineInput, len(req.Items))
	for i, it := range req.Items {
		inputs[i] = billing.LineInput{Quantity: it.Quantity, UnitPrice: it.UnitPrice, TaxRate: it.TaxRate}
	}
	lines, totals := billing.Compute(inputs)

	items := make([]model.InvoiceItem, len(req.Items))
	for i, it := range req.Items {
		p := products[i]
		desc := strings.TrimSpace(it.Description)
		if desc == "" {
			desc = p.Name
		}
		items[i] = model.InvoiceItem{
			Position:    i,
			ProductID:   p.ID,
			Description: desc,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
			Subtotal:    lines[i].Subtotal,
			TaxAmount:   lines[i].TaxAmount,
			Total:       lines[i].Total,
		}
	}

	if issueDate == nil {
		t := s.now()
		issueDate = &t
	}
	if dueDate == nil {
		t := issueDate.AddDate(0, 0, s.opts.DueDays)
		dueDate = &t
	}
	method := req.PaymentMethod
	if method == "" {
		method = billing.DefaultPaymentMethod
	}

	inv := &model.Invoice{
		InvoiceNumber: req.InvoiceNumber,
		IssueDate:     *issueDate,
		DueDate:       *dueDate,
		CustomerID:    customer.ID,
		Subtotal:      totals.Subtotal,
		TaxAmount:     totals.TaxAmount,
		Total:         totals.Total,
		Status:        string(billing.StatusIssued),
		PaymentMethod: method,
		Notes:         req.Notes,
		Items:         items,
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		if isDuplicate(err) {
			return nil, duplicateNumber()
		}
		// customer or a product removed after it was resolved above
		if isForeignKeyViolation(err) {
			return nil, &ConflictError{Message: "El cliente o un producto de la factura ya no existe"}
		}
		return nil, persistence("create invoice", err)
	}

	inv.Customer = customer
	for i := range inv.Items {
		inv.Items[i].Product = products[i]
	}
	log.Info().
		Str("invoice_id", inv.ID.String()).
		Str("invoice_number", inv.InvoiceNumber).
		Str("total", inv.Total.String()).
		Msg("invoice created")

	resp := toInvoiceResponse(inv)
	return &resp, nil
}

// resolveProducts returns the product of every item, index-aligned with items.
func (s *invoiceService) resolveProducts(ctx context.Context, items []dto.InvoiceItemRequest) ([]*model.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, it := range items {
		id, _ := uuid.Parse(it.Product)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, persistence("find products", err)
	}
	byID := make(map[uuid.UUID]*model.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	out := make([]*model.Product, len(items))
	for i, it := range items {
		id, _ := uuid.Parse(it.Product)
		p, ok := byID[id]
		if !ok {
			return nil, &NotFoundError{Entity: EntityProduct}
		}
		out[i] = p
	}
	return out, nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *invoiceService) Get(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponse, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(EntityInvoice, "find invoice", err)
	}
	resp := toInvoiceResponse(inv)
	return &resp, nil
}

func (s *invoiceService) List(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error) {
	q, err := parseInvoiceFilter(filter)
	if err != nil {
		return nil, err
	}
	rows, total, err := s.invoices.List(ctx, q)
	if err != nil {
		return nil, persistence("list invoices", err)
	}
	out := make([]dto.InvoiceResponse, len(rows))
	for i := range rows {
		out[i] = toInvoiceResponse(&rows[i])
	}
	return &dto.InvoiceListResponse{Invoices: out, Pagination: dto.NewPagination(total, q.PageQuery)}, nil
}

func (s *invoiceService) Report(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceReportResponse, error) {
	q, err := parseInvoiceFilter(filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.invoices.FindForReport(ctx, q)
	if err != nil {
		return nil, persistence("invoice report", err)
	}

	summary := dto.ReportSummary{
		Count:         len(rows),
		TotalAmount:   decimal.Zero,
		TotalTax:      decimal.Zero,
		TotalSubtotal: decimal.Zero,
		ByStatus:      make(map[string]int, len(billing.Statuses)),
	}
	for _, st := range billing.Statuses {
		summary.ByStatus[string(st)] = 0
	}
	out := make([]dto.InvoiceResponse, len(rows))
	for i := range rows {
		inv := &rows[i]
		summary.TotalAmount = summary.TotalAmount.Add(inv.Total)
		summary.TotalTax = summary.TotalTax.Add(inv.TaxAmount)
		summary.TotalSubtotal = summary.TotalSubtotal.Add(inv.Subtotal)
		summary.ByStatus[inv.Status]++
		out[i] = toInvoiceResponse(inv)
	}
	return &dto.InvoiceReportResponse{Invoices: out, Summary: summary}, nil
}

func (s *invoiceService) ExportReport(ctx context.Context, filter dto.InvoiceFilter) ([]byte, error) {
	report, err := s.Report(ctx, filter)
	if err != nil {
		return nil, err
	}
	data, err := infra.RenderReportXLSX(report)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return data, nil
}

// Preview runs the same calculator as Create over loosely typed input.
// Nothing is validated or stored.
func (s *invoiceService) Preview(req dto.PreviewInvoiceRequest) dto.PreviewInvoiceResponse {
	inputs := make([]billing.LineInput, len(req.Items))
	for i, it := range req.Items {
		inputs[i] = billing.LineInput{
			Quantity:  it.Quantity.Decimal(),
			UnitPrice: it.UnitPrice.Decimal(),
			TaxRate:   it.TaxRate.Decimal(),
		}
	}
	lines, totals := billing.Compute(inputs)
	out := dto.PreviewInvoiceResponse{
		Items:     make([]dto.PreviewLineResponse, len(lines)),
		Subtotal:  totals.Subtotal,
		TaxAmount: totals.TaxAmount,
		Total:     totals.Total,
	}
	for i, l := range lines {
		out.Items[i] = dto.PreviewLineResponse{Subtotal: l.Subtotal, TaxAmount: l.TaxAmount, Total: l.Total}
	}
	return out
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

// UpdateStatus checks the requested status before touching storage, so an
// illegal value never mutates anything.
func (s *invoiceService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*dto.InvoiceResponse, error) {
	if _, err := billing.ParseStatus(status); err != nil {
		return nil, err
	}
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(EntityInvoice, "find invoice", err)
	}
	from := billing.Status(inv.Status)
	to, err := s.opts.Lifecycle.Transition(from, status)
	if err != nil {
		return nil, err
	}
	if to != from {
		if err := s.invoices.UpdateStatus(ctx, id, string(to)); err != nil {
			return nil, lookup(EntityInvoice, "update invoice status", err)
		}
		inv.Status = string(to)
		inv.UpdatedAt = s.now()
		log.Info().
			Str("invoice_id", id.String()).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("invoice status updated")
	}
	resp := toInvoiceResponse(inv)
	return &resp, nil
}

func (s *invoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return lookup(EntityInvoice, "find invoice", err)
	}
	if err := billing.CanDelete(billing.Status(inv.Status)); err != nil {
		return err
	}
	if err := s.invoices.Delete(ctx, id); err != nil {
		return lookup(EntityInvoice, "delete invoice", err)
	}
	log.Info().Str("invoice_id", id.String()).Str("invoice_number", inv.InvoiceNumber).Msg("invoice deleted")
	return nil
}

// ── Documents ─────────────────────────────────────────────────────────────────

// RenderPDF returns the invoice document and a download file name.
func (s *invoiceService) RenderPDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, "", lookup(EntityInvoice, "find invoice", err)
	}
	data, err := infra.RenderInvoicePDF(inv, s.opts.CompanyName)
	if err != nil {
		return nil, "", fmt.Errorf("render invoice pdf: %w", err)
	}
	return data, infra.InvoiceFileName(inv), nil
}

// Send queues the invoice PDF for delivery and returns the recipient.
// An empty email falls back to the customer's address.
func (s *invoiceService) Send(ctx context.Context, id uuid.UUID, email string) (string, error) {
	email = normalizeEmail(email)
	if fields := validation.Struct(dto.SendInvoiceRequest{Email: email}); fields != nil {
		return "", &ValidationError{Fields: fields}
	}
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return "", lookup(EntityInvoice, "find invoice", err)
	}
	to := email
	if to == "" && inv.Customer != nil {
		to = inv.Customer.Email
	}
	if to == "" {
		return "", newValidationError("email", "El cliente no tiene correo electrónico")
	}
	if s.queue == nil {
		return "", ErrQueueUnavailable
	}
	if err := s.queue.EnqueueInvoiceEmail(ctx, inv.ID, to); err != nil {
		return "", persistence("enqueue invoice email", err)
	}
	log.Info().Str("invoice_id", id.String()).Str("to", to).Msg("invoice email queued")
	return to, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// parseDate accepts RFC3339 or YYYY-MM-DD. Empty input yields nil.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseInvoiceFilter(f dto.InvoiceFilter) (dto.InvoiceQuery, error) {
	f.Normalize()
	q := dto.InvoiceQuery{PageQuery: f.PageQuery}
	var fields []validation.FieldError

	if f.Status != "" {
		if _, err := billing.ParseStatus(f.Status); err != nil {
			fields = append(fields, validation.FieldError{Field: "status", Message: "Estado no válido"})
		}
		q.Status = f.Status
	}
	if f.Customer != "" {
		id, err := uuid.Parse(f.Customer)
		if err != nil {
			fields = append(fields, validation.FieldError{Field: "customer", Message: "Debe ser un identificador válido"})
		}
		q.CustomerID = &id
	}
	from, err := parseDate(f.FromDate)
	if err != nil {
		fields = append(fields, validation.FieldError{Field: "fromDate", Message: "Fecha no válida"})
	}
	q.From = from
	to, err := parseDate(f.ToDate)
	if err != nil {
		fields = append(fields, validation.FieldError{Field: "toDate", Message: "Fecha no válida"})
	}
	if to != nil && len(strings.TrimSpace(f.ToDate)) == len(dateOnly) {
		// A bare date covers the whole day.
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	q.To = to

	if len(fields) > 0 {
		return q, &ValidationError{Fields: fields}
	}
	return q, nil
}

func toInvoiceResponse(inv *model.Invoice) dto.InvoiceResponse {
	resp := dto.InvoiceResponse{
		ID:            inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Customer:      dto.CustomerRef{ID: inv.CustomerID.String()},
		Subtotal:      inv.Subtotal,
		TaxAmount:     inv.TaxAmount,
		Total:         inv.Total,
		Status:        inv.Status,
		PaymentMethod: inv.PaymentMethod,
		Notes:         inv.Notes,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
	if c := inv.Customer; c != nil {
		resp.Customer = dto.CustomerRef{ID: c.ID.String(), Name: c.Name, TaxID: c.TaxID, Email: c.Email}
	}
	if len(inv.Items) > 0 {
		resp.Items = make([]dto.InvoiceItemResponse, len(inv.Items))
		for i, it := range inv.Items {
			item := dto.InvoiceItemResponse{
				ID:          it.ID.String(),
				Product:     dto.ProductRef{ID: it.ProductID.String()},
				Description: it.Description,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				TaxRate:     it.TaxRate,
				Subtotal:    it.Subtotal,
				TaxAmount:   it.TaxAmount,
				Total:       it.Total,
			}
			if p := it.Product; p != nil {
				item.Product = dto.ProductRef{ID: p.ID.String(), Code: p.Code, Name: p.Name, Unit: p.Unit}
			}
			resp.Items[i] = item
		}
	}
	return resp
}
