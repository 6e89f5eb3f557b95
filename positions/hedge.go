package positions

import (
	"github.com/bcdannyboy/bsmrisk/models"
	"github.com/shopspring/decimal"
)

type HedgeDirection string

const (
	HedgeShort HedgeDirection = "SHORT"
	HedgeLong  HedgeDirection = "LONG"
	HedgeNone  HedgeDirection = "NONE"
)

// HedgePlan is the stock position that flattens a position's delta.
type HedgePlan struct {
	DeltaPerContract float64         `json:"delta_per_contract" yaml:"delta_per_contract"`
	DeltaExposure    float64         `json:"delta_exposure" yaml:"delta_exposure"`
	Shares           float64         `json:"shares" yaml:"shares"`
	Direction        HedgeDirection  `json:"direction" yaml:"direction"`
	Capital          decimal.Decimal `json:"capital" yaml:"capital"`
	Spot             float64         `json:"spot" yaml:"spot"`
}

// Hedge sizes the share hedge from per-share delta. Long calls carry positive
// delta and are hedged by shorting stock.
func (c Calculator) Hedge(p Position, spot float64, g models.GreeksResult) HedgePlan {
	size, _ := c.size(p).Float64()
	exposure := g.RawDelta * size * p.Side.Sign()
	shares := -exposure

	dir := HedgeNone
	switch {
	case shares < 0:
		dir = HedgeShort
	case shares > 0:
		dir = HedgeLong
	}
	perContract, _ := c.multiplier.Float64()
	return HedgePlan{
		DeltaPerContract: g.RawDelta * perContract * p.Side.Sign(),
		DeltaExposure:    exposure,
		Shares:           shares,
		Direction:        dir,
		Capital:          decimal.NewFromFloat(shares).Abs().Mul(decimal.NewFromFloat(spot)).Round(2),
		Spot:             spot,
	}
}

// PnL is the hedge's gain for a fractional spot move.
func (h HedgePlan) PnL(move float64) decimal.Decimal {
	spot := decimal.NewFromFloat(h.Spot)
	moved := spot.Mul(decimal.NewFromFloat(1 + move))
	return decimal.NewFromFloat(h.Shares).Mul(moved.Sub(spot)).Round(2)
}
