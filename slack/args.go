package bsmslack

import (
	"strconv"
	"strings"

	"github.com/bcdannyboy/bsmrisk/models"
	"github.com/bcdannyboy/bsmrisk/pricing"
	"github.com/pkg/errors"
)

// contractArgs parses "<spot> <strike> <days> <rate> <vol> <call|put>" and
// returns the remaining optional fields.
func contractArgs(text string, cfg pricing.Config) (models.OptionContract, []float64, error) {
	args := strings.Fields(text)
	if len(args) < 6 {
		return models.OptionContract{}, nil, errors.Errorf("expected at least 6 arguments, got %d", len(args))
	}

	names := []string{"spot", "strike", "days", "rate", "vol"}
	vals := make([]float64, len(names))
	for i, name := range names {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return models.OptionContract{}, nil, errors.Errorf("%s: %q is not a number", name, args[i])
		}
		vals[i] = v
	}
	kind, err := models.ParseOptionKind(args[5])
	if err != nil {
		return models.OptionContract{}, nil, err
	}

	var extra []float64
	for _, a := range args[6:] {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return models.OptionContract{}, nil, errors.Errorf("%q is not a number", a)
		}
		extra = append(extra, v)
	}

	c := models.OptionContract{
		Spot:       vals[0],
		Strike:     vals[1],
		Expiry:     cfg.YearsFromDays(vals[2]),
		Rate:       vals[3],
		Volatility: vals[4],
		Kind:       kind,
	}
	return c, extra, models.ValidateContract(c)
}
