package pricing

import (
	"math"
	"sync"
	"testing"

	"github.com/bcdannyboy/bsmrisk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func atmCall() models.OptionContract {
	return models.OptionContract{Spot: 100, Strike: 100, Expiry: 0.25, Rate: 0.05, Volatility: 0.20, Kind: models.Call}
}

func withKind(c models.OptionContract, k models.OptionKind) models.OptionContract {
	c.Kind = k
	return c
}

func TestPrice_ReferenceCase(t *testing.T) {
	bs := NewBlackScholes(DefaultConfig())

	call, err := bs.Price(atmCall())
	require.NoError(t, err)
	assert.InDelta(t, 4.614997129602855, call.Price, 1e-9)
	assert.InDelta(t, 0.175, call.D1, 1e-12)
	assert.InDelta(t, 0.075, call.D2, 1e-12)
	assert.False(t, call.Intrinsic)

	put, err := bs.Price(withKind(atmCall(), models.Put))
	require.NoError(t, err)
	assert.InDelta(t, 3.372777178991008, put.Price, 1e-9)
}

func TestPrice_PutCallParity(t *testing.T) {
	bs := NewBlackScholes(DefaultConfig())
	for _, spot := range []float64{50, 90, 100, 110, 250} {
		for _, expiry := range []float64{0, 0.01, 0.25, 1, 5} {
			for _, vol := range []float64{0, 0.05, 0.2, 0.8} {
				for _, q := range []float64{0, 0.03} {
					c := models.OptionContract{Spot: spot, Strike: 100, Expiry: expiry, Rate: 0.04, Volatility: vol, DividendYield: q, Kind: models.Call}
					call, err := bs.Price(c)
					require.NoError(t, err)
					put, err := bs.Price(withKind(c, models.Put))
					require.NoError(t, err)

					T := call.Contract.Expiry
					want := spot*math.Exp(-q*T) - 100*math.Exp(-0.04*T)
					assert.InDeltaf(t, want, call.Price-put.Price, 1e-6, "S=%g T=%g vol=%g q=%g", spot, expiry, vol, q)
				}
			}
		}
	}
}

func TestPrice_Monotonicity(t *testing.T) {
	bs := NewBlackScholes(DefaultConfig())
	base := atmCall()

	t.Run("spot", func(t *testing.T) {
		prevCall, prevPut := -1.0, math.Inf(1)
		for s := 40.0; s <= 200; s += 5 {
			c := base
			c.Spot = s
			call, err := bs.Price(c)
			require.NoError(t, err)
			put, err := bs.Price(withKind(c, models.Put))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, call.Price, prevCall-1e-12)
			assert.LessOrEqual(t, put.Price, prevPut+1e-12)
			prevCall, prevPut = call.Price, put.Price
		}
	})

	t.Run("volatility", func(t *testing.T) {
		prevCall, prevPut := -1.0, -1.0
		for v := 0.0; v <= 1.5; v += 0.05 {
			c := base
			c.Volatility = v
			call, err := bs.Price(c)
			require.NoError(t, err)
			put, err := bs.Price(withKind(c, models.Put))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, call.Price, prevCall-1e-12)
			assert.GreaterOrEqual(t, put.Price, prevPut-1e-12)
			prevCall, prevPut = call.Price, put.Price
		}
	})
}

func TestPrice_TimeFloor(t *testing.T) {
	bs := NewBlackScholes(DefaultConfig())
	tiny := atmCall()
	tiny.Expiry = 0.00001
	floored := atmCall()
	floored.Expiry = DefaultTimeFloor

	a, err := bs.Price(tiny)
	require.NoError(t, err)
	b, err := bs.Price(floored)
	require.NoError(t, err)

	assert.False(t, math.IsNaN(a.Price) || math.IsInf(a.Price, 0))
	assert.Equal(t, b.Price, a.Price)
	assert.Equal(t, DefaultTimeFloor, a.Contract.Expiry)
	assert.Equal(t, 0.00001, tiny.Expiry, "caller's contract must not change")

	zero := atmCall()
	zero.Expiry = 0
	z, err := bs.Price(zero)
	require.NoError(t, err)
	assert.Equal(t, b.Price, z.Price)
}

func TestPrice_ZeroVolatilityIntrinsic(t *testing.T) {
	bs := NewBlackScholes(DefaultConfig())

	itm := models.OptionContract{Spot: 110, Strike: 100, Expiry: 1, Rate: 0.05, Volatility: 0, Kind: models.Call}
	pr, err := bs.Price(itm)
	require.NoError(t, err)
	assert.True(t, pr.Intrinsic)
	assert.InDelta(t, 110-100*math.Exp(-0.05), pr.Price, 1e-12)

	put, err := bs.Price(withKind(itm, models.Put))
	require.NoError(t, err)
	assert.Equal(t, 0.0, put.Price)

	q := itm
	q.DividendYield = 0.02
	pr, err = bs.Price(q)
	require.NoError(t, err)
	assert.InDelta(t, 110*math.Exp(-0.02)-100*math.Exp(-0.05), pr.Price, 1e-12)
}

func TestPrice_RejectsInvalidContracts(t *testing.T) {
	bs := NewBlackScholes(DefaultConfig())
	tests := []struct {
		name  string
		mod   func(*models.OptionContract)
		field string
	}{
		{"zero spot", func(c *models.OptionContract) { c.Spot = 0 }, "spot"},
		{"negative spot", func(c *models.OptionContract) { c.Spot = -1 }, "spot"},
		{"zero strike", func(c *models.OptionContract) { c.Strike = 0 }, "strike"},
		{"negative vol", func(c *models.OptionContract) { c.Volatility = -0.01 }, "volatility"},
		{"negative expiry", func(c *models.OptionContract) { c.Expiry = -0.1 }, "expiry"},
		{"nan rate", func(c *models.OptionContract) { c.Rate = math.NaN() }, "rate"},
		{"unknown kind", func(c *models.OptionContract) { c.Kind = "straddle" }, "kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := atmCall()
			tt.mod(&c)
			_, err := bs.Price(c)
			require.Error(t, err)
			var ice *models.InvalidContractError
			require.ErrorAs(t, err, &ice)
			assert.Equal(t, tt.field, ice.Field)
		})
	}
}

func TestPrice_DeterministicUnderConcurrency(t *testing.T) {
	bs := NewBlackScholes(DefaultConfig())
	want, err := bs.Price(atmCall())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]models.PricingResult, 256)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = bs.Price(atmCall())
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, math.Float64bits(want.Price), math.Float64bits(got.Price))
		assert.Equal(t, want.D1, got.D1)
	}
}

func TestNormCDF_Accuracy(t *testing.T) {
	tests := []struct {
		x, want float64
	}{
		{0, 0.5},
		{1, 0.8413447460685429},
		{-1, 0.15865525393145707},
		{1.96, 0.9750021048517795},
		{3, 0.9986501019683699},
		{-3, 0.0013498980316301},
		{-10, 7.619853024160527e-24},
		{10, 1},
	}
	for _, tt := range tests {
		assert.InDeltaf(t, tt.want, normCDF(tt.x), 1e-12, "N(%g)", tt.x)
	}
	assert.InDelta(t, 0.3989422804014327, normPDF(0), 1e-15)
}
