package positions

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/bsmrisk/models"
	"github.com/shopspring/decimal"
)

// Position is a holding of identical option contracts. EntryPrice is the
// per-share premium paid (long) or received (short).
type Position struct {
	Contracts  int         `json:"contracts" yaml:"contracts"`
	Side       models.Side `json:"side" yaml:"side"`
	EntryPrice float64     `json:"entry_price" yaml:"entry_price"`
}

func (p Position) Validate() error {
	if p.Contracts < 1 {
		return &models.DegenerateInputError{Op: "position", Reason: fmt.Sprintf("contracts %d must be >= 1", p.Contracts)}
	}
	if !p.Side.Valid() {
		return &models.DegenerateInputError{Op: "position", Reason: fmt.Sprintf("unknown side %q", p.Side)}
	}
	if math.IsNaN(p.EntryPrice) || math.IsInf(p.EntryPrice, 0) || p.EntryPrice < 0 {
		return &models.DegenerateInputError{Op: "position", Reason: fmt.Sprintf("entry price %g must be finite and >= 0", p.EntryPrice)}
	}
	return nil
}

// Calculator scales per-share option values to position money amounts.
type Calculator struct {
	multiplier decimal.Decimal
}

func NewCalculator(contractMultiplier float64) Calculator {
	return Calculator{multiplier: decimal.NewFromFloat(contractMultiplier)}
}

func (c Calculator) size(p Position) decimal.Decimal {
	return c.multiplier.Mul(decimal.NewFromInt(int64(p.Contracts)))
}

// PnL is the position profit when the option is worth price per share,
// rounded to cents.
func (c Calculator) PnL(p Position, price float64) decimal.Decimal {
	move := decimal.NewFromFloat(price).Sub(decimal.NewFromFloat(p.EntryPrice))
	return move.Mul(c.size(p)).Mul(decimal.NewFromFloat(p.Side.Sign())).Round(2)
}

// PnLPct is PnL as a percentage of the premium at entry.
func (c Calculator) PnLPct(p Position, price float64) (float64, error) {
	if p.EntryPrice <= 0 {
		return 0, &models.DegenerateInputError{Op: "position", Reason: "entry price must be > 0 for a percentage return"}
	}
	premium := decimal.NewFromFloat(p.EntryPrice).Mul(c.size(p))
	pct, _ := c.PnL(p, price).Div(premium).Mul(decimal.NewFromInt(100)).Float64()
	return pct, nil
}

// Notional is the premium paid or received at entry.
func (c Calculator) Notional(p Position) decimal.Decimal {
	return decimal.NewFromFloat(p.EntryPrice).Mul(c.size(p)).Round(2)
}
