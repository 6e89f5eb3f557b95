package pricing

import (
	"github.com/bcdannyboy/bsmrisk/models"
	"github.com/pkg/errors"
)

const (
	DefaultTimeFloor          = 0.001
	DefaultVolEpsilon         = 1e-12
	DefaultContractMultiplier = 100
	DefaultDaysPerYear        = 365
)

// Config carries the numeric conventions shared by pricing and Greeks. It is
// passed by value into every engine; nothing here is package state.
type Config struct {
	TimeFloor          float64 `yaml:"time_floor"`
	VolEpsilon         float64 `yaml:"vol_epsilon"`
	ContractMultiplier float64 `yaml:"contract_multiplier"`
	DaysPerYear        float64 `yaml:"days_per_year"`
}

func DefaultConfig() Config {
	return Config{
		TimeFloor:          DefaultTimeFloor,
		VolEpsilon:         DefaultVolEpsilon,
		ContractMultiplier: DefaultContractMultiplier,
		DaysPerYear:        DefaultDaysPerYear,
	}
}

func (c Config) Validate() error {
	if c.TimeFloor <= 0 {
		return errors.Errorf("pricing: time floor must be > 0, got %g", c.TimeFloor)
	}
	if c.VolEpsilon < 0 {
		return errors.Errorf("pricing: vol epsilon must be >= 0, got %g", c.VolEpsilon)
	}
	if c.ContractMultiplier <= 0 {
		return errors.Errorf("pricing: contract multiplier must be > 0, got %g", c.ContractMultiplier)
	}
	if c.DaysPerYear <= 0 {
		return errors.Errorf("pricing: days per year must be > 0, got %g", c.DaysPerYear)
	}
	return nil
}

// Normalize validates c and returns the snapshot every engine computes from:
// a copy with Expiry floored at TimeFloor.
func (c Config) Normalize(contract models.OptionContract) (models.OptionContract, error) {
	if err := models.ValidateContract(contract); err != nil {
		return models.OptionContract{}, err
	}
	contract.Expiry = c.FloorExpiry(contract.Expiry)
	return contract, nil
}

func (c Config) FloorExpiry(t float64) float64 {
	if t < c.TimeFloor {
		return c.TimeFloor
	}
	return t
}

// YearsFromDays converts calendar days to a year fraction.
func (c Config) YearsFromDays(days float64) float64 {
	return days / c.DaysPerYear
}
