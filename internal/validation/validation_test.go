package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	Product  string          `json:"product"  validate:"required,uuid"`
	Quantity decimal.Decimal `json:"quantity" validate:"gte=1"`
	Price    decimal.Decimal `json:"unitPrice" validate:"gte=0"`
}

type doc struct {
	Number string `json:"invoiceNumber" validate:"required"`
	Email  string `json:"email"         validate:"omitempty,email"`
	Method string `json:"paymentMethod" validate:"omitempty,oneof=efectivo tarjeta"`
	Items  []line `json:"items"         validate:"min=1,dive"`
}

func TestStruct_Valid(t *testing.T) {
	v := doc{
		Number: "INV-1",
		Items: []line{{
			Product:  "6f1c2b1e-8a53-4a57-9d43-1ef0d3f0a111",
			Quantity: decimal.NewFromInt(3),
			Price:    decimal.NewFromInt(100),
		}},
	}
	assert.Nil(t, Struct(v))
}

func TestStruct_CollectsAllErrorsWithJSONPaths(t *testing.T) {
	v := doc{
		Email:  "not-an-email",
		Method: "bitcoin",
		Items: []line{{
			Product:  "nope",
			Quantity: decimal.Zero,
			Price:    decimal.NewFromInt(-1),
		}},
	}
	errs := Struct(v)
	require.Len(t, errs, 6)

	fields := map[string]string{}
	for _, fe := range errs {
		fields[fe.Field] = fe.Message
	}
	assert.Contains(t, fields, "invoiceNumber")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "paymentMethod")
	assert.Contains(t, fields, "items[0].product")
	assert.Contains(t, fields, "items[0].quantity")
	assert.Contains(t, fields, "items[0].unitPrice")
	assert.Equal(t, "El campo es obligatorio", fields["invoiceNumber"])
}

func TestStruct_EmptySlice(t *testing.T) {
	errs := Struct(doc{Number: "INV-2"})
	require.Len(t, errs, 1)
	assert.Equal(t, "items", errs[0].Field)
	assert.Equal(t, "Debe incluir al menos 1 elemento(s)", errs[0].Message)
}

func TestStruct_DecimalLowerBoundIsExact(t *testing.T) {
	item := line{
		Product:  "6f1c2b1e-8a53-4a57-9d43-1ef0d3f0a111",
		Quantity: decimal.RequireFromString("0.99999999999999999"),
		Price:    decimal.RequireFromString("-0.000000000000000001"),
	}
	errs := Struct(item)
	require.Len(t, errs, 2)
	assert.Equal(t, "quantity", errs[0].Field)
	assert.Equal(t, "unitPrice", errs[1].Field)

	item.Quantity = decimal.RequireFromString("1.00000000000000001")
	item.Price = decimal.Zero
	assert.Nil(t, Struct(item))
}

func TestFloorFloat(t *testing.T) {
	assert.Equal(t, 1.0, floorFloat(decimal.NewFromInt(1)))
	assert.Less(t, floorFloat(decimal.RequireFromString("0.99999999999999999")), 1.0)
	assert.Less(t, floorFloat(decimal.RequireFromString("-0.000000000000000001")), 0.0)
}
