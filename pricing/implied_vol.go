package pricing

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/bsmrisk/models"
	"gonum.org/v1/gonum/optimize"
)

const (
	maxIterations = 100
	epsilon       = 1e-8
	initialSigma  = 0.5
)

// ImpliedVolatility solves for the sigma that reproduces marketPrice. The
// contract's own Volatility is ignored.
func (b BlackScholes) ImpliedVolatility(c models.OptionContract, marketPrice float64) (float64, error) {
	c.Volatility = 0
	snap, err := b.cfg.Normalize(c)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(marketPrice) || math.IsInf(marketPrice, 0) {
		return 0, &models.DegenerateInputError{Op: "implied volatility", Reason: "market price is not finite"}
	}

	lower, upper := priceBounds(snap)
	switch {
	case marketPrice < lower-epsilon:
		return 0, &models.DegenerateInputError{Op: "implied volatility",
			Reason: fmt.Sprintf("market price %g below intrinsic bound %g", marketPrice, lower)}
	case marketPrice >= upper:
		return 0, &models.DegenerateInputError{Op: "implied volatility",
			Reason: fmt.Sprintf("market price %g at or above upper bound %g", marketPrice, upper)}
	case marketPrice <= lower+epsilon:
		return 0, nil
	}

	if sigma, ok := b.newtonIV(snap, marketPrice); ok {
		return sigma, nil
	}
	if sigma, ok := b.simplexIV(snap, marketPrice); ok {
		return sigma, nil
	}
	return 0, &models.DegenerateInputError{Op: "implied volatility", Reason: "solver did not converge"}
}

func (b BlackScholes) newtonIV(snap models.OptionContract, target float64) (float64, bool) {
	sigma := initialSigma
	sqrtT := math.Sqrt(snap.Expiry)
	dq := math.Exp(-snap.DividendYield * snap.Expiry)
	for i := 0; i < maxIterations; i++ {
		pr := b.withVolatility(snap, sigma)
		diff := pr.Price - target
		if math.Abs(diff) < epsilon {
			return sigma, true
		}
		if pr.Intrinsic {
			return 0, false
		}
		vega := snap.Spot * dq * normPDF(pr.D1) * sqrtT
		if vega < epsilon {
			return 0, false
		}
		sigma -= diff / vega
		if sigma <= 0 {
			sigma = 0.0001
		}
	}
	return 0, false
}

// simplexIV is the fallback for deep in/out of the money quotes where vega is
// too flat for Newton steps.
func (b BlackScholes) simplexIV(snap models.OptionContract, target float64) (float64, bool) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			d := b.withVolatility(snap, math.Abs(x[0])).Price - target
			return d * d
		},
	}
	result, err := optimize.Minimize(problem, []float64{initialSigma}, nil, &optimize.NelderMead{})
	if err != nil || result == nil {
		return 0, false
	}
	sigma := math.Abs(result.X[0])
	if math.Abs(b.withVolatility(snap, sigma).Price-target) > 1e-6 {
		return 0, false
	}
	return sigma, true
}

// priceBounds returns the no-arbitrage range of a European option price.
func priceBounds(snap models.OptionContract) (lower, upper float64) {
	fwdS := snap.Spot * math.Exp(-snap.DividendYield*snap.Expiry)
	pvK := snap.Strike * math.Exp(-snap.Rate*snap.Expiry)
	if snap.IsCall() {
		return math.Max(fwdS-pvK, 0), fwdS
	}
	return math.Max(pvK-fwdS, 0), pvK
}
