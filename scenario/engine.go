package scenario

import (
	"fmt"
	"math"
	"runtime"

	"github.com/bcdannyboy/bsmrisk/models"
	"github.com/bcdannyboy/bsmrisk/pricing"
)

// Engine re-prices perturbed copies of a contract. It never approximates the
// new price from Greeks: convexity in spot and in volatility is captured by
// the full re-valuation.
type Engine struct {
	pricer  pricing.Pricer
	cfg     pricing.Config
	workers int
}

func NewEngine(p pricing.Pricer, cfg pricing.Config) *Engine {
	return &Engine{pricer: p, cfg: cfg}
}

// WithWorkers bounds RunBatch concurrency to n. n < 1 means one goroutine
// per logical CPU.
func (e *Engine) WithWorkers(n int) *Engine {
	e.workers = n
	return e
}

func (e *Engine) batchLimit() int {
	if e.workers > 0 {
		return e.workers
	}
	return runtime.NumCPU()
}

func (e *Engine) Config() pricing.Config {
	return e.cfg
}

// Baseline is a contract priced once. Every scenario in a batch measures its
// P&L against the same Result.
type Baseline struct {
	Contract models.OptionContract
	Result   models.PricingResult
}

func (e *Engine) Baseline(c models.OptionContract) (Baseline, error) {
	pr, err := e.pricer.Price(c)
	if err != nil {
		return Baseline{}, err
	}
	return Baseline{Contract: c, Result: pr}, nil
}

// Perturb returns a shocked copy of c. Volatility is clamped at zero and the
// expiry at the time floor; neither is an error.
func (e *Engine) Perturb(c models.OptionContract, spec models.ScenarioSpec) (models.OptionContract, error) {
	if err := validateSpec(spec); err != nil {
		return models.OptionContract{}, err
	}
	c.Spot = c.Spot * (1 + spec.SpotShockPct)
	c.Volatility = math.Max(c.Volatility+spec.VolShockAbs, 0)
	c.Expiry = e.cfg.FloorExpiry(c.Expiry - e.cfg.YearsFromDays(spec.TimeShockDays))
	return c, nil
}

// Run prices c, then the scenario. Use RunFrom when several scenarios share a
// base contract.
func (e *Engine) Run(c models.OptionContract, spec models.ScenarioSpec) (models.ScenarioResult, error) {
	b, err := e.Baseline(c)
	if err != nil {
		return models.ScenarioResult{}, err
	}
	return e.RunFrom(b, spec)
}

func (e *Engine) RunFrom(b Baseline, spec models.ScenarioSpec) (models.ScenarioResult, error) {
	shocked, err := e.Perturb(b.Contract, spec)
	if err != nil {
		return models.ScenarioResult{}, err
	}
	pr, err := e.pricer.Price(shocked)
	if err != nil {
		return models.ScenarioResult{}, err
	}
	return models.ScenarioResult{
		Spec:      spec,
		BasePrice: b.Result.Price,
		Price:     pr.Price,
		PnL:       pr.Price - b.Result.Price,
		Contract:  pr.Contract,
	}, nil
}

func validateSpec(spec models.ScenarioSpec) error {
	for _, v := range []float64{spec.SpotShockPct, spec.VolShockAbs, spec.TimeShockDays} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &models.DegenerateInputError{Op: "scenario", Reason: fmt.Sprintf("non-finite shock in %+v", spec)}
		}
	}
	if spec.TimeShockDays < 0 {
		return &models.DegenerateInputError{Op: "scenario", Reason: fmt.Sprintf("time shock %g days must be >= 0", spec.TimeShockDays)}
	}
	return nil
}
