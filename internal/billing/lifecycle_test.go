package billing

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"emitida", "pagada", "cancelada"} {
		st, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, Status(s), st)
	}

	for _, s := range []string{"", "vencida", "EMITIDA", "paid"} {
		_, err := ParseStatus(s)
		require.Error(t, err, s)
		assert.True(t, errors.Is(err, ErrIllegalStatus))
		var te *TransitionError
		assert.True(t, errors.As(err, &te))
	}
}

func TestLifecycle_PermissiveAcceptsAnyAllowedTarget(t *testing.T) {
	var l Lifecycle
	for _, from := range Statuses {
		for _, to := range Statuses {
			got, err := l.Transition(from, string(to))
			require.NoError(t, err)
			assert.Equal(t, to, got)
		}
	}
}

func TestLifecycle_PermissiveRejectsUnknownStatus(t *testing.T) {
	_, err := Lifecycle{}.Transition(StatusIssued, "vencida")
	assert.ErrorIs(t, err, ErrIllegalStatus)
}

func TestLifecycle_Strict(t *testing.T) {
	l := Lifecycle{Strict: true}

	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusIssued, StatusPaid, true},
		{StatusIssued, StatusCancelled, true},
		{StatusIssued, StatusIssued, true},
		{StatusPaid, StatusPaid, true},
		{StatusPaid, StatusIssued, false},
		{StatusPaid, StatusCancelled, false},
		{StatusCancelled, StatusIssued, false},
		{StatusCancelled, StatusPaid, false},
	}
	for _, tt := range tests {
		_, err := l.Transition(tt.from, string(tt.to))
		if tt.allowed {
			assert.NoError(t, err, "%s → %s", tt.from, tt.to)
		} else {
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s → %s", tt.from, tt.to)
		}
	}
}

func TestCanDelete(t *testing.T) {
	assert.NoError(t, CanDelete(StatusCancelled))
	assert.ErrorIs(t, CanDelete(StatusIssued), ErrDeleteNotAllowed)
	assert.ErrorIs(t, CanDelete(StatusPaid), ErrDeleteNotAllowed)
}

func TestValidPaymentMethod(t *testing.T) {
	for _, m := range PaymentMethods {
		assert.True(t, ValidPaymentMethod(m))
	}
	assert.False(t, ValidPaymentMethod("bitcoin"))
	assert.False(t, ValidPaymentMethod(""))
}

func TestAmount_Coercion(t *testing.T) {
	var item struct {
		Quantity  Amount `json:"quantity"`
		UnitPrice Amount `json:"unitPrice"`
		TaxRate   Amount `json:"taxRate"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"quantity":"3","unitPrice":100,"taxRate":"abc"}`), &item))
	assert.True(t, item.Quantity.Decimal().Equal(d("3")))
	assert.True(t, item.UnitPrice.Decimal().Equal(d("100")))
	assert.True(t, item.TaxRate.Decimal().IsZero())

	require.NoError(t, json.Unmarshal([]byte(`{"quantity":null,"unitPrice":true}`), &item))
	assert.True(t, item.Quantity.Decimal().IsZero())
	assert.True(t, item.UnitPrice.Decimal().IsZero())
}

func TestCoerceString(t *testing.T) {
	assert.True(t, CoerceString(" 12.50 ").Equal(d("12.5")))
	assert.True(t, CoerceString("").IsZero())
	assert.True(t, CoerceString("1e2").Equal(d("100")))
	assert.True(t, CoerceString("12abc").IsZero())
}
