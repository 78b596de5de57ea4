package rate_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbridge/colend/internal/domain/rate"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBlended_ReferenceVector(t *testing.T) {
	// R_O=16.5%, R_L=14.2%, w_O=0.25, w_L=0.75 -> R_B=14.775%
	got, err := rate.Blended(d("0.165"), d("0.142"), d("0.25"), d("0.75"))
	require.NoError(t, err)
	assert.True(t, got.Equal(d("0.14775")), "expected 0.14775, got %s", got)
}

func TestBlended_EqualRates(t *testing.T) {
	got, err := rate.Blended(d("0.15"), d("0.15"), d("0.3"), d("0.7"))
	require.NoError(t, err)
	assert.True(t, got.Equal(d("0.15")), "blending equal rates must preserve them, got %s", got)
}

func TestBlended_ConvexCombination(t *testing.T) {
	// For valid weights the blended rate stays within [min(R_O,R_L), max(R_O,R_L)].
	cases := []struct {
		origRate, lenderRate, origWeight string
	}{
		{"0.165", "0.142", "0.25"},
		{"0.10", "0.30", "0.50"},
		{"0.22", "0.08", "0.15"},
		{"0.18", "0.18", "0.99"},
		{"0.0", "1.0", "0.35"},
	}
	for _, tc := range cases {
		origRate, lenderRate := d(tc.origRate), d(tc.lenderRate)
		origWeight := d(tc.origWeight)
		lenderWeight := decimal.NewFromInt(1).Sub(origWeight)

		got, err := rate.Blended(origRate, lenderRate, origWeight, lenderWeight)
		require.NoError(t, err)

		lo, hi := origRate, lenderRate
		if lo.GreaterThan(hi) {
			lo, hi = hi, lo
		}
		assert.True(t, got.GreaterThanOrEqual(lo) && got.LessThanOrEqual(hi),
			"blended rate %s outside [%s, %s]", got, lo, hi)
	}
}

func TestBlended_WeightValidation(t *testing.T) {
	_, err := rate.Blended(d("0.165"), d("0.142"), d("0.6"), d("0.5"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, rate.ErrInvalidWeight))

	_, err = rate.Blended(d("0.165"), d("0.142"), d("-0.1"), d("1.1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, rate.ErrInvalidWeight))
}

func TestBlended_WeightEpsilon(t *testing.T) {
	// Drift below 1e-9 is tolerated.
	_, err := rate.Blended(d("0.165"), d("0.142"), d("0.25"), d("0.7500000000002"))
	assert.NoError(t, err)

	_, err = rate.Blended(d("0.165"), d("0.142"), d("0.25"), d("0.7500001"))
	assert.Error(t, err)
}

func TestBlended_NegativeRate(t *testing.T) {
	_, err := rate.Blended(d("-0.01"), d("0.142"), d("0.25"), d("0.75"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, rate.ErrInvalidRate))
}

func TestReport_Rounds(t *testing.T) {
	assert.Equal(t, "0.1478", rate.Report(d("0.14775")).String())
	assert.True(t, rate.Report(d("0.1")).Equal(d("0.1")))
}
