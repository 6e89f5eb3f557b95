package cli

import (
	"context"
	"time"

	"github.com/bcdannyboy/bsmrisk/analysis"
	"github.com/bcdannyboy/bsmrisk/surface"
	"github.com/spf13/cobra"
	mpb "github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"go.uber.org/zap"
)

func newSurfaceCmd(a *app) *cobra.Command {
	var (
		cf      contractFlags
		of      outputFlags
		sr      analysis.SurfaceRequest
		timeout time.Duration
		workers int
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "surface",
		Short: "Build the volatility by elapsed-time P&L surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cf.contract(a.cfg.Pricing)
			if err != nil {
				return err
			}

			an := analysis.New(a.cfg, a.log)
			opts := an.SurfaceOptionsFor(&sr)
			if workers != 0 {
				opts.Workers = workers
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			var (
				p   *mpb.Progress
				bar *mpb.Bar
			)
			if !quiet {
				total := opts.VolMultipliers.Steps * opts.TimePoints
				p = mpb.New(mpb.WithWidth(64), mpb.WithOutput(cmd.ErrOrStderr()))
				bar = p.AddBar(int64(total),
					mpb.PrependDecorators(
						decor.Name("Progress"),
						decor.Percentage(decor.WCSyncSpace),
					),
					mpb.AppendDecorators(
						decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
					),
				)
				opts.Progress = func(done, total int) {
					bar.SetCurrent(int64(done))
				}
			}

			s, err := surface.NewBuilder(an.Scenarios(), opts).Build(ctx, c)
			if p != nil {
				if !bar.Completed() {
					bar.Abort(false)
				}
				p.Wait()
			}
			if err != nil {
				return err
			}
			if s.Truncated {
				a.log.Warn("surface truncated", zap.Duration("timeout", timeout))
			}
			return of.write(cmd, s)
		},
	}

	cf.register(cmd)
	of.register(cmd)
	fl := cmd.Flags()
	fl.Float64Var(&sr.VolMin, "vol-min", 0, "lowest volatility multiplier (default surface.vol_min)")
	fl.Float64Var(&sr.VolMax, "vol-max", 0, "highest volatility multiplier (default surface.vol_max)")
	fl.IntVar(&sr.VolSteps, "vol-steps", 0, "volatility rows (default surface.vol_steps)")
	fl.IntVar(&sr.TimePoints, "time-steps", 0, "elapsed-time columns (default surface.time_points)")
	fl.Float64Var(&sr.SpotShockPct, "spot-shock", 0, "spot move applied to every cell, 0.1 = +10%")
	fl.IntVar(&workers, "workers", 0, "worker goroutines (default surface.workers)")
	fl.DurationVar(&timeout, "timeout", 0, "stop after this long and return a truncated surface")
	fl.BoolVar(&quiet, "quiet", false, "hide the progress bar")
	return cmd
}
