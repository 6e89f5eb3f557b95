package pricing

import (
	"math"

	"github.com/bcdannyboy/bsmrisk/models"
)

// Pricer values a single contract. Any model that can be expressed as a pure
// function of the contract can stand behind it.
type Pricer interface {
	Price(c models.OptionContract) (models.PricingResult, error)
}

// GreeksEngine derives sensitivities from a result produced by the same model.
type GreeksEngine interface {
	Greeks(c models.OptionContract, pr models.PricingResult) (models.GreeksResult, error)
}

// BlackScholes is the closed-form Black-Scholes-Merton model with an optional
// continuous dividend yield. It holds only its configuration and is safe for
// concurrent use.
type BlackScholes struct {
	cfg Config
}

func NewBlackScholes(cfg Config) BlackScholes {
	return BlackScholes{cfg: cfg}
}

func (b BlackScholes) Config() Config {
	return b.cfg
}

func (b BlackScholes) Price(c models.OptionContract) (models.PricingResult, error) {
	snap, err := b.cfg.Normalize(c)
	if err != nil {
		return models.PricingResult{}, err
	}
	return b.price(snap), nil
}

// price assumes snap has already been through Normalize.
func (b BlackScholes) price(snap models.OptionContract) models.PricingResult {
	S, K, T := snap.Spot, snap.Strike, snap.Expiry
	r, q, sigma := snap.Rate, snap.DividendYield, snap.Volatility

	dq := math.Exp(-q * T)
	dr := math.Exp(-r * T)

	if sigma <= b.cfg.VolEpsilon {
		fwd := S*dq - K*dr
		if !snap.IsCall() {
			fwd = -fwd
		}
		return models.PricingResult{
			Price:     math.Max(fwd, 0),
			Intrinsic: true,
			Contract:  snap,
		}
	}

	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r-q+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	var price float64
	if snap.IsCall() {
		price = S*dq*normCDF(d1) - K*dr*normCDF(d2)
	} else {
		price = K*dr*normCDF(-d2) - S*dq*normCDF(-d1)
	}

	return models.PricingResult{
		Price:    math.Max(price, 0),
		D1:       d1,
		D2:       d2,
		Contract: snap,
	}
}

// withVolatility reprices snap at a different sigma. Used by the implied
// volatility search, which works on an already normalized contract.
func (b BlackScholes) withVolatility(snap models.OptionContract, sigma float64) models.PricingResult {
	snap.Volatility = sigma
	return b.price(snap)
}
