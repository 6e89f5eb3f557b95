package surface

import (
	"fmt"
	"math"
	"runtime"

	"github.com/bcdannyboy/bsmrisk/models"
	"github.com/shirou/gopsutil/cpu"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultVolMin     = 0.5
	DefaultVolMax     = 2.0
	DefaultVolSteps   = 20
	DefaultTimePoints = 30
	DefaultMaxCells   = 250000
)

// Range is an inclusive, evenly spaced axis of Steps points.
type Range struct {
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
	Steps int     `json:"steps" yaml:"steps"`
}

func (r Range) points() []float64 {
	if r.Steps == 1 {
		return []float64{r.Min}
	}
	return floats.Span(make([]float64, r.Steps), r.Min, r.Max)
}

type Options struct {
	// VolMultipliers scale the base volatility, one row per point.
	VolMultipliers Range

	// TimePoints columns run from zero elapsed days to the full expiry.
	TimePoints int

	// SpotShockPct is applied to every cell; zero keeps spot fixed.
	SpotShockPct float64

	// MaxCells caps rows*columns. Zero means DefaultMaxCells.
	MaxCells int
	Workers  int

	// Progress is called with the number of finished cells. Calls are
	// serialized.
	Progress func(done, total int)
	Logger   *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		VolMultipliers: Range{Min: DefaultVolMin, Max: DefaultVolMax, Steps: DefaultVolSteps},
		TimePoints:     DefaultTimePoints,
		MaxCells:       DefaultMaxCells,
	}
}

func (o Options) validate() error {
	r := o.VolMultipliers
	switch {
	case r.Steps < 1:
		return &models.DegenerateInputError{Op: "surface", Reason: fmt.Sprintf("vol steps %d must be >= 1", r.Steps)}
	case math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0):
		return &models.DegenerateInputError{Op: "surface", Reason: "non-finite vol multiplier range"}
	case r.Min < 0 || r.Max < r.Min:
		return &models.DegenerateInputError{Op: "surface", Reason: fmt.Sprintf("vol multiplier range [%g, %g] is invalid", r.Min, r.Max)}
	case o.TimePoints < 1:
		return &models.DegenerateInputError{Op: "surface", Reason: fmt.Sprintf("time points %d must be >= 1", o.TimePoints)}
	case math.IsNaN(o.SpotShockPct) || math.IsInf(o.SpotShockPct, 0):
		return &models.DegenerateInputError{Op: "surface", Reason: "non-finite spot shock"}
	}
	return nil
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

func (o Options) maxCells() int {
	if o.MaxCells > 0 {
		return o.MaxCells
	}
	return DefaultMaxCells
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}
