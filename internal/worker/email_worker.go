package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/CuasDev/fel/internal/billing"
	"github.com/CuasDev/fel/internal/infra"
	"github.com/CuasDev/fel/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// InvoiceLoader is satisfied by repository.InvoiceRepository.
type InvoiceLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
}

// InvoiceSender is satisfied by *infra.Mailer.
type InvoiceSender interface {
	SendInvoice(to, subject, body, fileName string, pdf []byte) error
}

// EmailWorker renders an invoice PDF and mails it.
type EmailWorker struct {
	invoices InvoiceLoader
	mailer   InvoiceSender
	breaker  *infra.CircuitBreaker
	company  string
}

func NewEmailWorker(invoices InvoiceLoader, mailer InvoiceSender, breaker *infra.CircuitBreaker, company string) *EmailWorker {
	return &EmailWorker{invoices: invoices, mailer: mailer, breaker: breaker, company: company}
}

func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload InvoiceEmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return permanent(fmt.Errorf("email_worker: invalid payload: %w", err))
	}
	if payload.ToEmail == "" {
		return permanent(errors.New("email_worker: empty to_email"))
	}
	id, err := uuid.Parse(payload.InvoiceID)
	if err != nil {
		return permanent(fmt.Errorf("email_worker: invalid invoice id: %w", err))
	}

	inv, err := w.invoices.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return permanent(fmt.Errorf("email_worker: invoice %s not found", id))
		}
		return err
	}
	pdf, err := infra.RenderInvoicePDF(inv, w.company)
	if err != nil {
		return permanent(err)
	}

	subject := fmt.Sprintf("%s - Factura %s", w.company, inv.InvoiceNumber)
	body := fmt.Sprintf("Adjuntamos la factura %s por un total de $%s.\n\n%s",
		inv.InvoiceNumber, billing.Display(inv.Total), w.company)

	err = w.breaker.Execute(func() error {
		return w.mailer.SendInvoice(payload.ToEmail, subject, body, infra.InvoiceFileName(inv), pdf)
	})
	if err != nil {
		return fmt.Errorf("email_worker: send: %w", err)
	}
	log.Info().Str("invoice_id", id.String()).Str("to", payload.ToEmail).Msg("invoice email sent")
	return nil
}
