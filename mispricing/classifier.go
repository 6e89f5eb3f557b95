package mispricing

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/bsmrisk/models"
	"github.com/pkg/errors"
)

const DefaultThreshold = 0.20

// Bands are the relative mispricing thresholds. A value exactly on a band
// edge is FAIR.
type Bands struct {
	Expensive float64 `yaml:"expensive"`
	Cheap     float64 `yaml:"cheap"`
}

func DefaultBands() Bands {
	return Bands{Expensive: DefaultThreshold, Cheap: -DefaultThreshold}
}

func (b Bands) Validate() error {
	if b.Cheap > b.Expensive {
		return errors.Errorf("mispricing: cheap band %g above expensive band %g", b.Cheap, b.Expensive)
	}
	return nil
}

type Classifier struct {
	bands Bands
}

func NewClassifier(b Bands) Classifier {
	return Classifier{bands: b}
}

// Classify compares the market price to the model price and implied to
// historical volatility. The two signals are computed independently.
func (c Classifier) Classify(theoreticalPrice, marketPrice, impliedVol, historicalVol float64) (models.MispricingVerdict, error) {
	inputs := []struct {
		name string
		v    float64
	}{
		{"theoretical price", theoreticalPrice},
		{"market price", marketPrice},
		{"implied volatility", impliedVol},
		{"historical volatility", historicalVol},
	}
	for _, in := range inputs {
		if math.IsNaN(in.v) || math.IsInf(in.v, 0) {
			return models.MispricingVerdict{}, &models.DegenerateInputError{Op: "classify", Reason: in.name + " is not finite"}
		}
	}
	if theoreticalPrice <= 0 {
		return models.MispricingVerdict{}, &models.DegenerateInputError{
			Op:     "classify",
			Reason: fmt.Sprintf("theoretical price %g must be > 0", theoreticalPrice),
		}
	}

	pct := (marketPrice - theoreticalPrice) / theoreticalPrice
	vrp := impliedVol - historicalVol

	return models.MispricingVerdict{
		MispricingPct:  pct,
		Classification: c.band(pct),
		VRP:            vrp,
		VRPSignal:      signal(vrp),
	}, nil
}

func (c Classifier) band(pct float64) models.Classification {
	switch {
	case pct > c.bands.Expensive:
		return models.Expensive
	case pct < c.bands.Cheap:
		return models.Cheap
	}
	return models.Fair
}

func signal(vrp float64) models.VRPSignal {
	switch {
	case vrp > 0:
		return models.SellingOpportunity
	case vrp < 0:
		return models.BuyingOpportunity
	}
	return models.Neutral
}
