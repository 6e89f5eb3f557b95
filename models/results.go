package models

type PricingResult struct {
	Price float64 `json:"price" yaml:"price"`
	D1    float64 `json:"d1" yaml:"d1"`
	D2    float64 `json:"d2" yaml:"d2"`
	// Intrinsic is set when the zero-volatility limit was used; D1 and D2 are
	// zero in that case and must not be read.
	Intrinsic bool `json:"intrinsic" yaml:"intrinsic"`
	// Contract is the validated snapshot the price was computed from, with
	// Expiry already floored.
	Contract OptionContract `json:"contract" yaml:"contract"`
}

// GreeksResult holds sensitivities in trader units for one long contract.
type GreeksResult struct {
	RawDelta float64 `json:"raw_delta" yaml:"raw_delta"`
	Delta    float64 `json:"delta" yaml:"delta"` // share equivalents per contract
	Gamma    float64 `json:"gamma" yaml:"gamma"`
	Theta    float64 `json:"theta" yaml:"theta"` // per calendar day
	Vega     float64 `json:"vega" yaml:"vega"`   // per vol point
	Rho      float64 `json:"rho" yaml:"rho"`     // per rate point
}

// ForSide returns the Greeks as seen by a position on the given side.
func (g GreeksResult) ForSide(side Side) GreeksResult {
	s := side.Sign()
	return GreeksResult{
		RawDelta: s * g.RawDelta,
		Delta:    s * g.Delta,
		Gamma:    s * g.Gamma,
		Theta:    s * g.Theta,
		Vega:     s * g.Vega,
		Rho:      s * g.Rho,
	}
}

type Classification string

const (
	Expensive Classification = "EXPENSIVE"
	Cheap     Classification = "CHEAP"
	Fair      Classification = "FAIR"
)

type VRPSignal string

const (
	SellingOpportunity VRPSignal = "selling-opportunity"
	BuyingOpportunity  VRPSignal = "buying-opportunity"
	Neutral            VRPSignal = "neutral"
)

type MispricingVerdict struct {
	MispricingPct  float64        `json:"mispricing_pct" yaml:"mispricing_pct"`
	Classification Classification `json:"classification" yaml:"classification"`
	VRP            float64        `json:"vrp" yaml:"vrp"`
	VRPSignal      VRPSignal      `json:"vrp_signal" yaml:"vrp_signal"`
}

// ScenarioSpec describes one perturbation. VolShockAbs is in absolute
// volatility units (0.05 = five vol points).
type ScenarioSpec struct {
	SpotShockPct  float64 `json:"spot_shock_pct" yaml:"spot_shock_pct"`
	VolShockAbs   float64 `json:"vol_shock_abs" yaml:"vol_shock_abs"`
	TimeShockDays float64 `json:"time_shock_days" yaml:"time_shock_days"`
}

type ScenarioResult struct {
	Spec      ScenarioSpec   `json:"spec" yaml:"spec"`
	BasePrice float64        `json:"base_price" yaml:"base_price"`
	Price     float64        `json:"price" yaml:"price"`
	PnL       float64        `json:"pnl" yaml:"pnl"`
	Contract  OptionContract `json:"contract" yaml:"contract"`
}

type CellStatus string

const (
	CellOK      CellStatus = "ok"
	CellFailed  CellStatus = "failed"
	CellSkipped CellStatus = "skipped" // never evaluated, build was cancelled
)

type Cell struct {
	VolMultiplier float64        `json:"vol_multiplier" yaml:"vol_multiplier"`
	ElapsedDays   float64        `json:"elapsed_days" yaml:"elapsed_days"`
	Status        CellStatus     `json:"status" yaml:"status"`
	Result        ScenarioResult `json:"result" yaml:"result"`
	Error         string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// SensitivitySurface is indexed Cells[vol][time], both axes ascending.
type SensitivitySurface struct {
	Base           PricingResult `json:"base" yaml:"base"`
	VolMultipliers []float64     `json:"vol_multipliers" yaml:"vol_multipliers"`
	ElapsedDays    []float64     `json:"elapsed_days" yaml:"elapsed_days"`
	Cells          [][]Cell      `json:"cells" yaml:"cells"`
	Truncated      bool          `json:"truncated" yaml:"truncated"`
	Failed         int           `json:"failed" yaml:"failed"`
}

// Cell returns the cell at (vol index, time index).
func (s *SensitivitySurface) Cell(i, j int) Cell {
	return s.Cells[i][j]
}

// PnLGrid flattens the surface into P&L values; non-OK cells are NaN.
func (s *SensitivitySurface) PnLGrid() [][]float64 {
	grid := make([][]float64, len(s.Cells))
	for i, row := range s.Cells {
		grid[i] = make([]float64, len(row))
		for j, c := range row {
			if c.Status == CellOK {
				grid[i][j] = c.Result.PnL
			} else {
				grid[i][j] = nan
			}
		}
	}
	return grid
}
