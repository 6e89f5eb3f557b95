package cli

import (
	"github.com/bcdannyboy/bsmrisk/analysis"
	"github.com/bcdannyboy/bsmrisk/models"
	"github.com/bcdannyboy/bsmrisk/positions"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		cf        contractFlags
		of        outputFlags
		market    float64
		iv        float64
		hv        float64
		entry     float64
		contracts int
		short     bool
		surface   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Price one contract and report Greeks, mispricing, scenarios and hedge",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cf.contract(a.cfg.Pricing)
			if err != nil {
				return err
			}
			req := analysis.Request{
				Contract:      c,
				HistoricalVol: hv,
				Position:      positions.Position{Contracts: contracts, Side: models.Long, EntryPrice: entry},
			}
			if cmd.Flags().Changed("market") {
				req.Contract = c.WithMarketPrice(market)
			}
			if cmd.Flags().Changed("iv") {
				req.ImpliedVol = &iv
			}
			if short {
				req.Position.Side = models.Short
			}
			if surface {
				req.Surface = &analysis.SurfaceRequest{}
			}

			rep, err := analysis.New(a.cfg, a.log).Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}
			return of.write(cmd, rep)
		},
	}

	cf.register(cmd)
	of.register(cmd)
	fl := cmd.Flags()
	fl.Float64Var(&market, "market", 0, "observed option price")
	fl.Float64Var(&iv, "iv", 0, "market implied volatility; solved from --market when omitted")
	fl.Float64Var(&hv, "hv", 0, "historical volatility for the risk premium (default --vol)")
	fl.Float64Var(&entry, "entry", 0, "entry premium per share (default market or theoretical)")
	fl.IntVar(&contracts, "contracts", 0, "position size (default position.contracts)")
	fl.BoolVar(&short, "short", false, "treat the position as short")
	fl.BoolVar(&surface, "surface", false, "include the sensitivity surface")
	return cmd
}
