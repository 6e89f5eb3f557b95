package pricing

import (
	"math"

	"github.com/bcdannyboy/bsmrisk/models"
	"github.com/pkg/errors"
)

// Greeks derives sensitivities for c from pr, reusing pr's d1 and d2. pr must
// have been produced for c by a BlackScholes with the same configuration.
func (b BlackScholes) Greeks(c models.OptionContract, pr models.PricingResult) (models.GreeksResult, error) {
	snap, err := b.cfg.Normalize(c)
	if err != nil {
		return models.GreeksResult{}, err
	}
	if !sameSnapshot(snap, pr.Contract) {
		return models.GreeksResult{}, errors.Wrapf(models.ErrResultMismatch,
			"greeks: contract %+v vs result snapshot %+v", snap, pr.Contract)
	}

	S, K, T := snap.Spot, snap.Strike, snap.Expiry
	r, q, sigma := snap.Rate, snap.DividendYield, snap.Volatility
	dq := math.Exp(-q * T)
	dr := math.Exp(-r * T)
	sqrtT := math.Sqrt(T)

	// In the zero-volatility limit N(d1) and N(d2) collapse to a step on the
	// forward moneyness and the density terms vanish.
	var nd1, nd2, pdf float64
	if pr.Intrinsic {
		fwd := S*dq - K*dr
		switch {
		case fwd > 0:
			nd1, nd2 = 1, 1
		case fwd < 0:
			nd1, nd2 = 0, 0
		default:
			nd1, nd2 = 0.5, 0.5
		}
	} else {
		nd1, nd2 = normCDF(pr.D1), normCDF(pr.D2)
		pdf = normPDF(pr.D1)
	}

	var rawDelta, theta, rho float64
	decay := 0.0
	if !pr.Intrinsic {
		decay = -S * dq * pdf * sigma / (2 * sqrtT)
	}
	if snap.IsCall() {
		rawDelta = dq * nd1
		theta = decay - r*K*dr*nd2 + q*S*dq*nd1
		rho = K * T * dr * nd2
	} else {
		rawDelta = dq * (nd1 - 1)
		theta = decay + r*K*dr*(1-nd2) - q*S*dq*(1-nd1)
		rho = -K * T * dr * (1 - nd2)
	}

	var gamma, vega float64
	if !pr.Intrinsic {
		gamma = dq * pdf / (S * sigma * sqrtT)
		vega = S * dq * pdf * sqrtT
	}

	return models.GreeksResult{
		RawDelta: rawDelta,
		Delta:    rawDelta * b.cfg.ContractMultiplier,
		Gamma:    gamma,
		Theta:    theta / b.cfg.DaysPerYear,
		Vega:     vega / 100,
		Rho:      rho / 100,
	}, nil
}

// PriceWithGreeks prices c once and derives Greeks from that result.
func (b BlackScholes) PriceWithGreeks(c models.OptionContract) (models.PricingResult, models.GreeksResult, error) {
	pr, err := b.Price(c)
	if err != nil {
		return models.PricingResult{}, models.GreeksResult{}, err
	}
	g, err := b.Greeks(c, pr)
	if err != nil {
		return models.PricingResult{}, models.GreeksResult{}, err
	}
	return pr, g, nil
}

func sameSnapshot(a, b models.OptionContract) bool {
	return a.Spot == b.Spot &&
		a.Strike == b.Strike &&
		a.Expiry == b.Expiry &&
		a.Rate == b.Rate &&
		a.Volatility == b.Volatility &&
		a.Kind == b.Kind &&
		a.DividendYield == b.DividendYield
}
