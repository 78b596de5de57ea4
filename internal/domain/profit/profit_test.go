package profit_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbridge/colend/internal/domain/profit"
	"github.com/finbridge/colend/internal/domain/rate"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// referenceInput matches the documented worked example:
// R_O=16.5%, R_L=14.2%, w_O=0.25, S=1.8%, C_O=9.2%, C_L=8.5%.
func referenceInput() profit.Input {
	return profit.Input{
		OriginatorRate:     d("0.165"),
		LenderRate:         d("0.142"),
		OriginatorWeight:   d("0.25"),
		LenderWeight:       d("0.75"),
		ServiceFeeRate:     d("0.018"),
		OriginatorCostRate: d("0.092"),
		LenderCostRate:     d("0.085"),
	}
}

func TestCompute_ReferenceVector(t *testing.T) {
	bd, err := profit.Compute(referenceInput())
	require.NoError(t, err)

	assert.True(t, bd.BlendedRate.Equal(d("0.14775")), "blended rate: got %s", bd.BlendedRate)
	// P_O = 0.25*0.14775 + 0.018 - 0.25*0.092 = 0.0319375
	assert.True(t, bd.OriginatorProfit.Equal(d("0.0319375")), "originator profit: got %s", bd.OriginatorProfit)
	// P_L = 0.75*0.14775 - 0.75*0.085 - 0.018 = 0.0290625
	assert.True(t, bd.LenderProfit.Equal(d("0.0290625")), "lender profit: got %s", bd.LenderProfit)
	assert.True(t, bd.BothProfitable)

	// Reported to 4 decimal places the margins match 3.194% and 2.906%.
	assert.Equal(t, "0.0319", rate.Report(bd.OriginatorProfit).String())
	assert.Equal(t, "0.0291", rate.Report(bd.LenderProfit).String())
}

func TestCompute_NegativeMarginDoesNotFail(t *testing.T) {
	in := referenceInput()
	in.LenderCostRate = d("0.30") // cost of funds above the blended rate

	bd, err := profit.Compute(in)
	require.NoError(t, err)
	assert.True(t, bd.LenderProfit.IsNegative())
	assert.False(t, bd.BothProfitable)
}

func TestCompute_PropagatesWeightError(t *testing.T) {
	in := referenceInput()
	in.LenderWeight = d("0.80")

	_, err := profit.Compute(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, rate.ErrInvalidWeight))
}

func TestOptimizeParticipation_FindsProfitableRatio(t *testing.T) {
	in := referenceInput()
	opt, err := profit.OptimizeParticipation(in, profit.DefaultGrid())
	require.NoError(t, err)

	assert.True(t, opt.Breakdown.BothProfitable)
	assert.True(t, opt.OriginatorWeight.Add(opt.LenderWeight).Equal(d("1")),
		"weights must sum to 1, got %s + %s", opt.OriginatorWeight, opt.LenderWeight)
	assert.True(t, opt.OriginatorWeight.GreaterThanOrEqual(d("0.15")))
	assert.True(t, opt.OriginatorWeight.LessThanOrEqual(d("0.50")))
}

func TestOptimizeParticipation_PicksMaxCombinedProfit(t *testing.T) {
	in := referenceInput()
	grid := profit.DefaultGrid()

	opt, err := profit.OptimizeParticipation(in, grid)
	require.NoError(t, err)

	// Walk the grid independently and confirm no feasible point beats it.
	best := opt.Breakdown.OriginatorProfit.Add(opt.Breakdown.LenderProfit)
	for w := grid.Min; w.LessThanOrEqual(grid.Max); w = w.Add(grid.Step) {
		probe := in
		probe.OriginatorWeight = w
		probe.LenderWeight = d("1").Sub(w)
		bd, err := profit.Compute(probe)
		require.NoError(t, err)
		if bd.BothProfitable {
			assert.True(t, best.GreaterThanOrEqual(bd.OriginatorProfit.Add(bd.LenderProfit)))
		}
	}
}

func TestOptimizeParticipation_NoFeasibleSolution(t *testing.T) {
	in := referenceInput()
	in.OriginatorCostRate = d("0.90")
	in.LenderCostRate = d("0.90")
	in.ServiceFeeRate = d("0")

	_, err := profit.OptimizeParticipation(in, profit.DefaultGrid())
	require.Error(t, err)
	assert.True(t, errors.Is(err, profit.ErrNoFeasibleSolution))
}

func TestOptimizeParticipation_InvalidGrid(t *testing.T) {
	_, err := profit.OptimizeParticipation(referenceInput(), profit.Grid{
		Min:  d("0.5"),
		Max:  d("0.2"),
		Step: d("0.05"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, profit.ErrInvalidGrid))

	_, err = profit.OptimizeParticipation(referenceInput(), profit.Grid{
		Min:  d("0.1"),
		Max:  d("0.5"),
		Step: d("0"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, profit.ErrInvalidGrid))
}
