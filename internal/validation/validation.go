// Package validation wraps go-playground/validator with the conventions used by
// the API: JSON field names in error paths, decimal.Decimal support and
// Spanish messages.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// FieldError is one field-level violation as reported to clients.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var validate = validator.New()

func init() {
	// decimal.Decimal is a struct; expose it as float64 so numeric tags
	// (min, gte) work on money fields.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			return floorFloat(v)
		}
		return nil
	}, decimal.Decimal{})

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// floorFloat returns the largest float64 not greater than d. Lower-bound tags
// with integer params (gte=1, min=0) stay exact: 0.99999999999999999 must not
// round up to 1 and pass.
func floorFloat(d decimal.Decimal) float64 {
	f, exact := d.Float64()
	if !exact && decimal.NewFromFloat(f).GreaterThan(d) {
		f = math.Nextafter(f, math.Inf(-1))
	}
	return f
}

// Struct validates v and returns every violation, or nil when v is valid.
func Struct(v interface{}) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []FieldError{{Field: "", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ves))
	for _, fe := range ves {
		out = append(out, FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return out
}

// fieldPath drops the root struct name: "CreateInvoiceRequest.items[0].quantity" → "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "El campo es obligatorio"
	case "email":
		return "Debe proporcionar un correo electrónico válido"
	case "uuid":
		return "Debe ser un identificador válido"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Debe incluir al menos %s elemento(s)", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Debe tener al menos %s caracteres", fe.Param())
		}
		return fmt.Sprintf("Debe ser mayor o igual a %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Debe tener como máximo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("Debe ser menor o igual a %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Debe ser mayor o igual a %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Debe ser mayor que %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Debe ser uno de: %s", fe.Param())
	default:
		return "Valor no válido"
	}
}
