package models

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

var nan = math.NaN()

var (
	ErrSurfaceTooLarge = errors.New("surface exceeds maximum cell count")
	ErrResultMismatch  = errors.New("pricing result does not belong to contract")
)

// InvalidContractError is returned at the entry boundary, before any
// arithmetic, when a contract violates a precondition.
type InvalidContractError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidContractError) Error() string {
	return fmt.Sprintf("invalid contract: %s=%g: %s", e.Field, e.Value, e.Reason)
}

// DegenerateInputError marks inputs that cannot be recovered by flooring or
// clamping.
type DegenerateInputError struct {
	Op     string
	Reason string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("%s: degenerate input: %s", e.Op, e.Reason)
}

// CellFailure is confined to one surface cell.
type CellFailure struct {
	VolMultiplier float64
	ElapsedDays   float64
	Err           error
}

func (e *CellFailure) Error() string {
	return fmt.Sprintf("cell vol=%gx elapsed=%gd: %v", e.VolMultiplier, e.ElapsedDays, e.Err)
}

func (e *CellFailure) Unwrap() error {
	return e.Err
}

func IsInvalidContract(err error) bool {
	var ice *InvalidContractError
	return errors.As(err, &ice)
}

func IsDegenerate(err error) bool {
	var de *DegenerateInputError
	return errors.As(err, &de)
}

// ValidateContract checks the preconditions every engine relies on.
func ValidateContract(c OptionContract) error {
	switch {
	case !finite(c.Spot) || c.Spot <= 0:
		return &InvalidContractError{Field: "spot", Value: c.Spot, Reason: "must be > 0"}
	case !finite(c.Strike) || c.Strike <= 0:
		return &InvalidContractError{Field: "strike", Value: c.Strike, Reason: "must be > 0"}
	case !finite(c.Volatility) || c.Volatility < 0:
		return &InvalidContractError{Field: "volatility", Value: c.Volatility, Reason: "must be >= 0"}
	case !finite(c.Expiry) || c.Expiry < 0:
		return &InvalidContractError{Field: "expiry", Value: c.Expiry, Reason: "must be >= 0"}
	case !finite(c.Rate):
		return &InvalidContractError{Field: "rate", Value: c.Rate, Reason: "must be finite"}
	case !finite(c.DividendYield):
		return &InvalidContractError{Field: "dividend_yield", Value: c.DividendYield, Reason: "must be finite"}
	case c.Kind != Call && c.Kind != Put:
		return &InvalidContractError{Field: "kind", Value: nan, Reason: fmt.Sprintf("unknown kind %q", c.Kind)}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
