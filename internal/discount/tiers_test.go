package discount

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTiers(t *testing.T) {
	tiers, err := ParseTiers(` [{"quantity":5,"discount":10,"message":"5+"},{"quantity":10,"discount":"17.5","extra":true}] `)
	require.NoError(t, err)
	require.Len(t, tiers, 2)
	require.Equal(t, 5, tiers[0].Quantity)
	require.Equal(t, "10", tiers[0].Percentage())
	require.Equal(t, "5+", tiers[0].Message)
	require.Equal(t, 10, tiers[1].Quantity)
	require.Equal(t, "17.5", tiers[1].Percentage())
	require.Empty(t, tiers[1].Message)
}

func TestParseTiersIntegralQuantities(t *testing.T) {
	tiers, err := ParseTiers(`[{"quantity":5.0,"discount":10},{"quantity":1e1,"discount":"12.50"},{"quantity":20,"discount":1e2}]`)
	require.NoError(t, err)
	require.Len(t, tiers, 3)
	require.Equal(t, 5, tiers[0].Quantity)
	require.Equal(t, 10, tiers[1].Quantity)
	require.Equal(t, "12.5", tiers[1].Percentage())
	require.Equal(t, 20, tiers[2].Quantity)
	require.Equal(t, "100", tiers[2].Percentage())
}

func TestParseTiersEmptyArray(t *testing.T) {
	tiers, err := ParseTiers(`[]`)
	require.NoError(t, err)
	require.Empty(t, tiers)
}

func TestParseTiersRejectsMalformedDocuments(t *testing.T) {
	cases := map[string]string{
		"blank":              "  ",
		"truncated":          `[{"quantity":5`,
		"null":               `null`,
		"object":             `{"quantity":5,"discount":10}`,
		"string":             `"10"`,
		"string qty":         `[{"quantity":"5","discount":10}]`,
		"boolean discount":   `[{"quantity":5,"discount":true}]`,
		"non-string message": `[{"quantity":5,"discount":10,"message":7}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTiers(raw)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidConfig))

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			require.Equal(t, -1, cfgErr.Index)
		})
	}
}

func TestParseTiersRejectsInvalidTiers(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		index int
		field string
		rule  string
	}{
		{name: "missing quantity", raw: `[{"discount":10}]`, index: 0, field: "quantity", rule: "required"},
		{name: "zero quantity", raw: `[{"quantity":1,"discount":1},{"quantity":0,"discount":10}]`, index: 1, field: "quantity", rule: "gte=1"},
		{name: "missing discount", raw: `[{"quantity":3}]`, index: 0, field: "discount", rule: "required"},
		{name: "negative discount", raw: `[{"quantity":3,"discount":-1}]`, index: 0, field: "discount", rule: "between=0,100"},
		{name: "over one hundred", raw: `[{"quantity":3,"discount":100.01}]`, index: 0, field: "discount", rule: "between=0,100"},
		{name: "fractional quantity", raw: `[{"quantity":2.5,"discount":10}]`, index: 0, field: "quantity", rule: "integer"},
		{name: "quantity beyond int32", raw: `[{"quantity":3000000000,"discount":10}]`, index: 0, field: "quantity", rule: "lte=2147483647"},
		{name: "huge quantity exponent", raw: `[{"quantity":1e200000000,"discount":10}]`, index: 0, field: "quantity", rule: "precision"},
		{name: "huge discount exponent", raw: `[{"quantity":3,"discount":1e200000000}]`, index: 0, field: "discount", rule: "precision"},
		{name: "tiny discount exponent", raw: `[{"quantity":3,"discount":1e-200000000}]`, index: 0, field: "discount", rule: "precision"},
		{name: "too many decimals", raw: `[{"quantity":3,"discount":0.00000000001}]`, index: 0, field: "discount", rule: "precision"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start := time.Now()
			_, err := ParseTiers(tc.raw)
			require.Less(t, time.Since(start), time.Second)
			require.ErrorIs(t, err, ErrInvalidConfig)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			require.Equal(t, tc.index, cfgErr.Index)
			require.Equal(t, tc.rule, cfgErr.Details[tc.field])
		})
	}
}

func TestParseTiersRejectsNullTier(t *testing.T) {
	_, err := ParseTiers(`[{"quantity":1,"discount":1},null]`)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, 1, cfgErr.Index)
	require.Contains(t, err.Error(), "tier 1")
}
