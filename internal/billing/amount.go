package billing

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a lenient numeric input. It decodes JSON numbers and numeric
// strings; null, empty or non-numeric values decode to zero instead of failing.
type Amount decimal.Decimal

// Decimal returns the underlying value.
func (a Amount) Decimal() decimal.Decimal { return decimal.Decimal(a) }

func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount(Coerce(data))
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return decimal.Decimal(a).MarshalJSON()
}

// Coerce turns a raw JSON token into a decimal, falling back to zero.
func Coerce(raw []byte) decimal.Decimal {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero
		}
		return CoerceString(s)
	}
	return CoerceString(string(raw))
}

// CoerceString parses s as a decimal, returning zero when it is not numeric.
func CoerceString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
