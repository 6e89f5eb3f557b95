package scenario

import (
	"context"

	"github.com/bcdannyboy/bsmrisk/models"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type Named struct {
	Name string              `json:"name" yaml:"name"`
	Spec models.ScenarioSpec `json:"spec" yaml:"spec"`
}

type NamedResult struct {
	Name   string                `json:"name" yaml:"name"`
	Result models.ScenarioResult `json:"result" yaml:"result"`
}

// Presets are the desk's standard one-week stress moves.
func Presets() []Named {
	return []Named{
		{"Bull Rally", models.ScenarioSpec{SpotShockPct: 0.15, VolShockAbs: -0.05, TimeShockDays: 7}},
		{"Moderate Up", models.ScenarioSpec{SpotShockPct: 0.05, VolShockAbs: 0, TimeShockDays: 7}},
		{"Flat", models.ScenarioSpec{SpotShockPct: 0, VolShockAbs: 0, TimeShockDays: 7}},
		{"Moderate Down", models.ScenarioSpec{SpotShockPct: -0.05, VolShockAbs: 0.05, TimeShockDays: 7}},
		{"Crash", models.ScenarioSpec{SpotShockPct: -0.15, VolShockAbs: 0.20, TimeShockDays: 7}},
		{"Vol Spike", models.ScenarioSpec{SpotShockPct: 0, VolShockAbs: 0.10, TimeShockDays: 7}},
		{"Vol Crush", models.ScenarioSpec{SpotShockPct: 0, VolShockAbs: -0.10, TimeShockDays: 7}},
	}
}

// RunBatch evaluates every scenario against b concurrently. Results keep the
// order of scenarios.
func (e *Engine) RunBatch(ctx context.Context, b Baseline, scenarios []Named) ([]NamedResult, error) {
	results := make([]NamedResult, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.batchLimit())

	for i, s := range scenarios {
		i, s := i, s
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.RunFrom(b, s.Spec)
			if err != nil {
				return errors.Wrapf(err, "scenario %q", s.Name)
			}
			results[i] = NamedResult{Name: s.Name, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type Summary struct {
	Best  NamedResult `json:"best" yaml:"best"`
	Worst NamedResult `json:"worst" yaml:"worst"`
}

// Summarize picks the highest and lowest P&L. Ties keep the earliest entry.
func Summarize(results []NamedResult) (Summary, bool) {
	if len(results) == 0 {
		return Summary{}, false
	}
	s := Summary{Best: results[0], Worst: results[0]}
	for _, r := range results[1:] {
		if r.Result.PnL > s.Best.Result.PnL {
			s.Best = r
		}
		if r.Result.PnL < s.Worst.Result.PnL {
			s.Worst = r
		}
	}
	return s, true
}
