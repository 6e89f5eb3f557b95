package analysis

import (
	"context"

	"github.com/bcdannyboy/bsmrisk/config"
	"github.com/bcdannyboy/bsmrisk/logger"
	"github.com/bcdannyboy/bsmrisk/mispricing"
	"github.com/bcdannyboy/bsmrisk/models"
	"github.com/bcdannyboy/bsmrisk/positions"
	"github.com/bcdannyboy/bsmrisk/pricing"
	"github.com/bcdannyboy/bsmrisk/scenario"
	"github.com/bcdannyboy/bsmrisk/surface"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// HedgeMoves are the spot moves reported for the delta hedge.
var HedgeMoves = []float64{-0.10, -0.05, 0.05, 0.10}

// Request describes one contract to analyse. Contract.Volatility is the
// pricing volatility. HistoricalVol defaults to it when zero.
type Request struct {
	Contract      models.OptionContract `json:"contract" yaml:"contract"`
	ImpliedVol    *float64              `json:"implied_vol,omitempty" yaml:"implied_vol,omitempty"`
	HistoricalVol float64               `json:"historical_vol,omitempty" yaml:"historical_vol,omitempty"`
	Position      positions.Position    `json:"position" yaml:"position"`
	Surface       *SurfaceRequest       `json:"surface,omitempty" yaml:"surface,omitempty"`
}

// SurfaceRequest overrides the configured surface axes. Zero fields keep the
// configured value.
type SurfaceRequest struct {
	VolMin       float64 `json:"vol_min,omitempty" yaml:"vol_min,omitempty"`
	VolMax       float64 `json:"vol_max,omitempty" yaml:"vol_max,omitempty"`
	VolSteps     int     `json:"vol_steps,omitempty" yaml:"vol_steps,omitempty"`
	TimePoints   int     `json:"time_points,omitempty" yaml:"time_points,omitempty"`
	SpotShockPct float64 `json:"spot_shock_pct,omitempty" yaml:"spot_shock_pct,omitempty"`
}

type ScenarioRow struct {
	Name        string              `json:"name" yaml:"name"`
	Spec        models.ScenarioSpec `json:"spec" yaml:"spec"`
	Price       float64             `json:"price" yaml:"price"`
	PnL         float64             `json:"pnl" yaml:"pnl"`
	PositionPnL decimal.Decimal     `json:"position_pnl" yaml:"position_pnl"`
	PnLPct      float64             `json:"pnl_pct" yaml:"pnl_pct"`
}

type HedgeMove struct {
	Move float64         `json:"move" yaml:"move"`
	PnL  decimal.Decimal `json:"pnl" yaml:"pnl"`
}

// Report is the full analysis of one contract. HistoricalPricing is the same
// contract valued at the supplied historical volatility.
type Report struct {
	Contract          models.OptionContract      `json:"contract" yaml:"contract"`
	Pricing           models.PricingResult       `json:"pricing" yaml:"pricing"`
	HistoricalPricing *models.PricingResult      `json:"historical_pricing,omitempty" yaml:"historical_pricing,omitempty"`
	Greeks            models.GreeksResult        `json:"greeks" yaml:"greeks"`
	PositionGreeks    models.GreeksResult        `json:"position_greeks" yaml:"position_greeks"`
	ImpliedVol        *float64                   `json:"implied_vol,omitempty" yaml:"implied_vol,omitempty"`
	Verdict           *models.MispricingVerdict  `json:"verdict,omitempty" yaml:"verdict,omitempty"`
	Position          positions.Position         `json:"position" yaml:"position"`
	Scenarios         []ScenarioRow              `json:"scenarios" yaml:"scenarios"`
	Best              string                     `json:"best" yaml:"best"`
	Worst             string                     `json:"worst" yaml:"worst"`
	Hedge             positions.HedgePlan        `json:"hedge" yaml:"hedge"`
	HedgePnL          []HedgeMove                `json:"hedge_pnl" yaml:"hedge_pnl"`
	Surface           *models.SensitivitySurface `json:"surface,omitempty" yaml:"surface,omitempty"`
	Warnings          []string                   `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Analyzer runs price, Greeks, mispricing, preset scenarios, hedge and an
// optional surface for one contract. It is safe for concurrent use.
type Analyzer struct {
	pricer      pricing.BlackScholes
	scenarios   *scenario.Engine
	classifier  mispricing.Classifier
	calc        positions.Calculator
	surfaceOpts surface.Options
	contracts   int
	log         *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) *Analyzer {
	bs := pricing.NewBlackScholes(cfg.Pricing)
	log = logger.OrNop(log)
	opts := cfg.SurfaceOptions()
	opts.Logger = log.Named("surface")
	return &Analyzer{
		pricer:      bs,
		scenarios:   scenario.NewEngine(bs, cfg.Pricing).WithWorkers(cfg.Surface.Workers),
		classifier:  mispricing.NewClassifier(cfg.Bands()),
		calc:        positions.NewCalculator(cfg.Pricing.ContractMultiplier),
		surfaceOpts: opts,
		contracts:   cfg.Position.Contracts,
		log:         log,
	}
}

func (a *Analyzer) Pricer() pricing.BlackScholes      { return a.pricer }
func (a *Analyzer) Scenarios() *scenario.Engine       { return a.scenarios }
func (a *Analyzer) Classifier() mispricing.Classifier { return a.classifier }
func (a *Analyzer) Positions() positions.Calculator   { return a.calc }

// SurfaceOptionsFor returns the configured surface options with r applied on
// top. r may be nil.
func (a *Analyzer) SurfaceOptionsFor(r *SurfaceRequest) surface.Options {
	opts := a.surfaceOpts
	if r == nil {
		return opts
	}
	if r.VolMin != 0 {
		opts.VolMultipliers.Min = r.VolMin
	}
	if r.VolMax != 0 {
		opts.VolMultipliers.Max = r.VolMax
	}
	if r.VolSteps != 0 {
		opts.VolMultipliers.Steps = r.VolSteps
	}
	if r.TimePoints != 0 {
		opts.TimePoints = r.TimePoints
	}
	opts.SpotShockPct = r.SpotShockPct
	return opts
}

func (a *Analyzer) SurfaceBuilder(r *SurfaceRequest) *surface.Builder {
	return surface.NewBuilder(a.scenarios, a.SurfaceOptionsFor(r))
}

func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Report, error) {
	c := req.Contract
	pr, g, err := a.pricer.PriceWithGreeks(c)
	if err != nil {
		return nil, err
	}

	pos := req.Position
	if pos.Contracts == 0 {
		pos.Contracts = a.contracts
	}
	if pos.Side == "" {
		pos.Side = models.Long
	}
	market, hasMarket := c.Market()
	if pos.EntryPrice == 0 {
		pos.EntryPrice = pr.Price
		if hasMarket {
			pos.EntryPrice = market
		}
	}
	if err := pos.Validate(); err != nil {
		return nil, err
	}

	rep := &Report{
		Contract:       c,
		Pricing:        pr,
		Greeks:         g,
		PositionGreeks: g.ForSide(pos.Side),
		Position:       pos,
	}

	if req.HistoricalVol > 0 {
		hc := c
		hc.Volatility = req.HistoricalVol
		if hp, err := a.pricer.Price(hc); err != nil {
			rep.Warnings = append(rep.Warnings, "historical vol pricing: "+err.Error())
		} else {
			rep.HistoricalPricing = &hp
		}
	}
	if hasMarket {
		a.classify(rep, req, market)
	}

	if err := a.runScenarios(ctx, rep, pr); err != nil {
		return nil, err
	}

	rep.Hedge = a.calc.Hedge(pos, c.Spot, g)
	for _, m := range HedgeMoves {
		rep.HedgePnL = append(rep.HedgePnL, HedgeMove{Move: m, PnL: rep.Hedge.PnL(m)})
	}

	if req.Surface != nil {
		s, err := a.SurfaceBuilder(req.Surface).Build(ctx, c)
		if err != nil {
			return nil, errors.Wrap(err, "building surface")
		}
		rep.Surface = s
		if s.Truncated {
			rep.Warnings = append(rep.Warnings, "sensitivity surface truncated")
		}
	}

	a.log.Debug("analysis complete",
		zap.String("kind", string(c.Kind)),
		zap.Float64("price", pr.Price),
		zap.Int("warnings", len(rep.Warnings)))
	return rep, nil
}

func (a *Analyzer) classify(rep *Report, req Request, market float64) {
	c := req.Contract
	var iv float64
	if req.ImpliedVol != nil {
		iv = *req.ImpliedVol
	} else {
		solved, err := a.pricer.ImpliedVolatility(c, market)
		if err != nil {
			a.log.Warn("implied volatility unavailable", zap.Float64("market", market), zap.Error(err))
			rep.Warnings = append(rep.Warnings, "implied volatility: "+err.Error())
			return
		}
		iv = solved
	}
	rep.ImpliedVol = &iv

	hv := req.HistoricalVol
	if hv == 0 {
		hv = c.Volatility
	}
	v, err := a.classifier.Classify(rep.Pricing.Price, market, iv, hv)
	if err != nil {
		rep.Warnings = append(rep.Warnings, "mispricing: "+err.Error())
		return
	}
	rep.Verdict = &v
}

func (a *Analyzer) runScenarios(ctx context.Context, rep *Report, pr models.PricingResult) error {
	base := scenario.Baseline{Contract: rep.Contract, Result: pr}
	results, err := a.scenarios.RunBatch(ctx, base, scenario.Presets())
	if err != nil {
		return err
	}

	pos := rep.Position
	for _, r := range results {
		row := ScenarioRow{
			Name:        r.Name,
			Spec:        r.Result.Spec,
			Price:       r.Result.Price,
			PnL:         r.Result.PnL,
			PositionPnL: a.calc.PnL(pos, r.Result.Price),
		}
		if pct, err := a.calc.PnLPct(pos, r.Result.Price); err == nil {
			row.PnLPct = pct
		}
		rep.Scenarios = append(rep.Scenarios, row)
	}

	// Position P&L is monotone in the option price, so the long-side
	// ordering flips for a short.
	if sum, ok := scenario.Summarize(results); ok {
		rep.Best, rep.Worst = sum.Best.Name, sum.Worst.Name
		if pos.Side == models.Short {
			rep.Best, rep.Worst = rep.Worst, rep.Best
		}
	}
	return nil
}
