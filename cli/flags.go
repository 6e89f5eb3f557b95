package cli

import (
	"os"

	"github.com/bcdannyboy/bsmrisk/models"
	"github.com/bcdannyboy/bsmrisk/pricing"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/xhhuango/json"
	"gopkg.in/yaml.v2"
)

type contractFlags struct {
	spot, strike float64
	days         float64
	rate, vol    float64
	yield        float64
	kind         string
}

func (f *contractFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.Float64Var(&f.spot, "spot", 0, "underlying price")
	fl.Float64Var(&f.strike, "strike", 0, "strike price")
	fl.Float64Var(&f.days, "days", 0, "calendar days to expiry")
	fl.Float64Var(&f.rate, "rate", 0, "continuously compounded risk-free rate, 0.05 = 5%")
	fl.Float64Var(&f.vol, "vol", 0, "annualized volatility, 0.2 = 20%")
	fl.Float64Var(&f.yield, "yield", 0, "continuous dividend yield")
	fl.StringVar(&f.kind, "kind", "call", "call or put")
	_ = cmd.MarkFlagRequired("spot")
	_ = cmd.MarkFlagRequired("strike")
	_ = cmd.MarkFlagRequired("days")
	_ = cmd.MarkFlagRequired("vol")
}

func (f *contractFlags) contract(cfg pricing.Config) (models.OptionContract, error) {
	kind, err := models.ParseOptionKind(f.kind)
	if err != nil {
		return models.OptionContract{}, err
	}
	return models.OptionContract{
		Spot:          f.spot,
		Strike:        f.strike,
		Expiry:        cfg.YearsFromDays(f.days),
		Rate:          f.rate,
		Volatility:    f.vol,
		Kind:          kind,
		DividendYield: f.yield,
	}, nil
}

type outputFlags struct {
	format string
	out    string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write output to file instead of stdout")
}

func (f *outputFlags) write(cmd *cobra.Command, v interface{}) error {
	var (
		data []byte
		err  error
	)
	switch f.format {
	case "json":
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(v)
	default:
		return errors.Errorf("unknown format %q", f.format)
	}
	if err != nil {
		return errors.Wrap(err, "encoding output")
	}

	if f.out != "" {
		return errors.Wrapf(os.WriteFile(f.out, data, 0o644), "writing %s", f.out)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
