package service

import (
	"errors"
	"fmt"

	"github.com/CuasDev/fel/internal/validation"

	"gorm.io/gorm"
)

// ValidationError carries every field-level violation found in a request.
type ValidationError struct {
	Fields []validation.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Fields[0].Field, e.Fields[0].Message)
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: []validation.FieldError{{Field: field, Message: msg}}}
}

// NotFoundError reports a missing entity ("Factura", "Cliente", ...).
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	if e.Entity == EntityInvoice {
		return e.Entity + " no encontrada"
	}
	return e.Entity + " no encontrado"
}

const (
	EntityInvoice  = "Factura"
	EntityCustomer = "Cliente"
	EntityProduct  = "Producto"
	EntityUser     = "Usuario"
)

// ConflictError reports a uniqueness or referential conflict. Message is
// shown to clients as is.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// PersistenceError wraps an unexpected storage failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// lookup turns a gorm "first" error into NotFoundError or PersistenceError.
func lookup(entity, op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity}
	}
	return persistence(op, err)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isForeignKeyViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated)
}
