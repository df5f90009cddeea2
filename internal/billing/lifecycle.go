package billing

import (
	"errors"
	"fmt"
)

// Status is the coarse state of an invoice.
type Status string

const (
	StatusIssued    Status = "emitida"
	StatusPaid      Status = "pagada"
	StatusCancelled Status = "cancelada"
)

// Statuses lists every status an invoice can be stored with, in report order.
var Statuses = []Status{StatusIssued, StatusPaid, StatusCancelled}

// PaymentMethods accepted on invoice creation.
var PaymentMethods = []string{"efectivo", "tarjeta", "transferencia", "cheque", "otro"}

// DefaultPaymentMethod is applied when a request omits the payment method.
const DefaultPaymentMethod = "efectivo"

var (
	ErrIllegalStatus     = errors.New("estado de factura no válido")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrDeleteNotAllowed  = errors.New("solo se pueden eliminar facturas canceladas")
)

// TransitionError reports a rejected status change.
type TransitionError struct {
	From Status
	To   string
	Err  error
}

func (e *TransitionError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("%s: %q", e.Err.Error(), e.To)
	}
	return fmt.Sprintf("%s: %s → %s", e.Err.Error(), e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return e.Err }

// ParseStatus validates s against the allow-list.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", &TransitionError{To: s, Err: ErrIllegalStatus}
}

// ValidPaymentMethod reports whether m is one of PaymentMethods.
func ValidPaymentMethod(m string) bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// strictEdges is the transition table used when Lifecycle.Strict is set.
var strictEdges = map[Status][]Status{
	StatusIssued: {StatusPaid, StatusCancelled},
}

// Lifecycle decides which status changes are accepted.
// The zero value is permissive: any allowed status may follow any other.
type Lifecycle struct {
	Strict bool
}

// Transition validates moving an invoice from its current status to target.
func (l Lifecycle) Transition(from Status, target string) (Status, error) {
	to, err := ParseStatus(target)
	if err != nil {
		return "", err
	}
	if !l.Strict || from == to {
		return to, nil
	}
	for _, next := range strictEdges[from] {
		if next == to {
			return to, nil
		}
	}
	return "", &TransitionError{From: from, To: target, Err: ErrInvalidTransition}
}

// CanDelete enforces that only cancelled invoices are removed.
func CanDelete(s Status) error {
	if s != StatusCancelled {
		return ErrDeleteNotAllowed
	}
	return nil
}
