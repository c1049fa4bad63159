package discount

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidConfig is returned when a metafield value is not a usable tier configuration.
	ErrInvalidConfig = errors.New("invalid tier config")

	maxPercent  = decimal.NewFromInt(100)
	minQuantity = decimal.NewFromInt(1)
	maxQuantity = decimal.NewFromInt(math.MaxInt32)
)

// Decimal arithmetic costs grow with the exponent, so values outside these bounds are
// rejected before any comparison. 100 is 1e2; quantities stay below 1e10.
const (
	maxDecimalScale     = 10
	maxDiscountExponent = 2
	maxQuantityExponent = 9
)

// Tier is one volume rule: at Quantity units the line gets Discount percent off.
type Tier struct {
	Quantity int             `json:"quantity"`
	Discount decimal.Decimal `json:"discount"`
	Message  string          `json:"message,omitempty"`
}

// Percentage renders the tier discount as a canonical decimal string.
func (t Tier) Percentage() string {
	return t.Discount.String()
}

// ConfigError describes why a metafield value was rejected. Index is -1 when the
// document as a whole could not be decoded.
type ConfigError struct {
	Index   int
	Details map[string]string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(ErrInvalidConfig.Error())
	if e.Index >= 0 {
		fmt.Fprintf(&b, ": tier %d", e.Index)
	}
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+" "+e.Details[k])
		}
		b.WriteString(": ")
		b.WriteString(strings.Join(parts, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both ErrInvalidConfig and the underlying cause to errors.Is/As.
func (e *ConfigError) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return []error{ErrInvalidConfig}
	}
	return []error{ErrInvalidConfig, e.Err}
}

// wholeNumber is a JSON number literal that must hold an integer value. 5 and 5.0 are
// equal; the quoted string "5" is not a number.
type wholeNumber struct {
	decimal.Decimal
}

func (n *wholeNumber) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return errors.New("quantity must be a JSON number")
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("quantity: %w", err)
	}
	n.Decimal = d
	return nil
}

type tierPayload struct {
	Quantity *wholeNumber     `json:"quantity" validate:"required"`
	Discount *decimal.Decimal `json:"discount" validate:"required"`
	Message  *string          `json:"message" validate:"omitempty,max=255"`
}

// ParseTiers decodes a metafield value into typed tiers. The value must be a JSON
// array of {quantity, discount, message?} objects; any malformed entry rejects the
// whole document. Tier order is preserved.
func ParseTiers(raw string) ([]Tier, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &ConfigError{Index: -1, Err: errors.New("empty value")}
	}
	var payloads []*tierPayload
	if err := json.Unmarshal([]byte(trimmed), &payloads); err != nil {
		return nil, &ConfigError{Index: -1, Err: err}
	}
	if payloads == nil {
		return nil, &ConfigError{Index: -1, Err: errors.New("expected an array of tiers")}
	}

	tiers := make([]Tier, 0, len(payloads))
	for i, p := range payloads {
		if p == nil {
			return nil, &ConfigError{Index: i, Err: errors.New("tier is null")}
		}
		if err := validate.Struct(p); err != nil {
			if details := validationDetails(err); len(details) > 0 {
				return nil, &ConfigError{Index: i, Details: details}
			}
			return nil, &ConfigError{Index: i, Err: err}
		}
		quantity, rule := checkQuantity(p.Quantity.Decimal)
		if rule != "" {
			return nil, &ConfigError{Index: i, Details: map[string]string{"quantity": rule}}
		}
		if rule := checkDiscount(*p.Discount); rule != "" {
			return nil, &ConfigError{Index: i, Details: map[string]string{"discount": rule}}
		}
		tier := Tier{Quantity: quantity, Discount: *p.Discount}
		if p.Message != nil {
			tier.Message = *p.Message
		}
		tiers = append(tiers, tier)
	}
	return tiers, nil
}

func withinScale(d decimal.Decimal, maxExponent int32) bool {
	exp := d.Exponent()
	return exp >= -maxDecimalScale && exp <= maxExponent
}

// checkQuantity returns the quantity as an int, or the name of the violated rule.
func checkQuantity(q decimal.Decimal) (int, string) {
	switch {
	case !withinScale(q, maxQuantityExponent):
		return 0, "precision"
	case !q.IsInteger():
		return 0, "integer"
	case q.LessThan(minQuantity):
		return 0, "gte=1"
	case q.GreaterThan(maxQuantity):
		return 0, fmt.Sprintf("lte=%d", math.MaxInt32)
	}
	return int(q.IntPart()), ""
}

func checkDiscount(d decimal.Decimal) string {
	switch {
	case !withinScale(d, maxDiscountExponent):
		return "precision"
	case d.IsNegative(), d.GreaterThan(maxPercent):
		return "between=0,100"
	}
	return ""
}
