package positions

import (
	"testing"

	"github.com/bcdannyboy/bsmrisk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPnL_LongAndShort(t *testing.T) {
	calc := NewCalculator(100)
	long := Position{Contracts: 2, Side: models.Long, EntryPrice: 4}
	short := Position{Contracts: 2, Side: models.Short, EntryPrice: 4}

	assert.Equal(t, "300.00", calc.PnL(long, 5.5).StringFixed(2))
	assert.Equal(t, "-300.00", calc.PnL(short, 5.5).StringFixed(2))
	assert.Equal(t, "-800.00", calc.PnL(long, 0).StringFixed(2))
	assert.Equal(t, "800.00", calc.Notional(long).StringFixed(2))
}

func TestPnL_RoundsToCents(t *testing.T) {
	calc := NewCalculator(100)
	p := Position{Contracts: 1, Side: models.Long, EntryPrice: 4.614997129602855}
	assert.Equal(t, "-20.39", calc.PnL(p, 4.411056477429618).StringFixed(2))
}

func TestPnLPct(t *testing.T) {
	calc := NewCalculator(100)
	pct, err := calc.PnLPct(Position{Contracts: 2, Side: models.Long, EntryPrice: 4}, 5.5)
	require.NoError(t, err)
	assert.InDelta(t, 37.5, pct, 1e-9)

	_, err = calc.PnLPct(Position{Contracts: 2, Side: models.Long}, 5.5)
	assert.True(t, models.IsDegenerate(err))
}

func TestPosition_Validate(t *testing.T) {
	tests := []struct {
		name string
		p    Position
		ok   bool
	}{
		{"long", Position{Contracts: 1, Side: models.Long}, true},
		{"short with entry", Position{Contracts: 5, Side: models.Short, EntryPrice: 2.5}, true},
		{"zero contracts", Position{Contracts: 0, Side: models.Long}, false},
		{"bad side", Position{Contracts: 1, Side: "flat"}, false},
		{"negative entry", Position{Contracts: 1, Side: models.Long, EntryPrice: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, models.IsDegenerate(err))
			}
		})
	}
}

func TestHedge_LongCall(t *testing.T) {
	calc := NewCalculator(100)
	g := models.GreeksResult{RawDelta: 0.5694601832076737}
	h := calc.Hedge(Position{Contracts: 10, Side: models.Long}, 100, g)

	assert.InDelta(t, 56.94601832076737, h.DeltaPerContract, 1e-9)
	assert.InDelta(t, 569.4601832076737, h.DeltaExposure, 1e-9)
	assert.InDelta(t, -569.4601832076737, h.Shares, 1e-9)
	assert.Equal(t, HedgeShort, h.Direction)
	assert.Equal(t, "56946.02", h.Capital.StringFixed(2))
	assert.Equal(t, "-2847.30", h.PnL(0.05).StringFixed(2))
	assert.Equal(t, "2847.30", h.PnL(-0.05).StringFixed(2))
}

func TestHedge_ShortPutAndFlat(t *testing.T) {
	calc := NewCalculator(100)

	// Short put: positive position delta, hedged by shorting stock.
	h := calc.Hedge(Position{Contracts: 1, Side: models.Short}, 100, models.GreeksResult{RawDelta: -0.43})
	assert.InDelta(t, 43, h.DeltaExposure, 1e-9)
	assert.Equal(t, HedgeShort, h.Direction)

	h = calc.Hedge(Position{Contracts: 1, Side: models.Long}, 100, models.GreeksResult{RawDelta: -0.43})
	assert.Equal(t, HedgeLong, h.Direction)

	h = calc.Hedge(Position{Contracts: 3, Side: models.Long}, 100, models.GreeksResult{})
	assert.Equal(t, HedgeNone, h.Direction)
	assert.True(t, h.Capital.IsZero())
	assert.True(t, h.PnL(0.1).IsZero())
}
