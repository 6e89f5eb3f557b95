package models

import (
	"strings"

	"github.com/pkg/errors"
)

type OptionKind string

const (
	Call OptionKind = "call"
	Put  OptionKind = "put"
)

// ParseOptionKind accepts "call"/"put" in any case, plus the single-letter forms.
func ParseOptionKind(s string) (OptionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return "", errors.Errorf("unknown option kind %q", s)
}

type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

func (s Side) Valid() bool {
	return s == Long || s == Short
}

// Sign is +1 for long and -1 for short positions.
func (s Side) Sign() float64 {
	if s == Short {
		return -1
	}
	return 1
}

// OptionContract is a single European option. Engines take it by value and
// never write through MarketPrice.
type OptionContract struct {
	Spot          float64    `json:"spot" yaml:"spot"`
	Strike        float64    `json:"strike" yaml:"strike"`
	Expiry        float64    `json:"expiry" yaml:"expiry"` // years
	Rate          float64    `json:"rate" yaml:"rate"`
	Volatility    float64    `json:"volatility" yaml:"volatility"`
	Kind          OptionKind `json:"kind" yaml:"kind"`
	DividendYield float64    `json:"dividend_yield,omitempty" yaml:"dividend_yield,omitempty"`
	MarketPrice   *float64   `json:"market_price,omitempty" yaml:"market_price,omitempty"`
}

func (c OptionContract) IsCall() bool {
	return c.Kind != Put
}

// Market returns the observed market price, if one was supplied.
func (c OptionContract) Market() (float64, bool) {
	if c.MarketPrice == nil {
		return 0, false
	}
	return *c.MarketPrice, true
}

// WithMarketPrice returns a copy of c carrying the given market price.
func (c OptionContract) WithMarketPrice(p float64) OptionContract {
	c.MarketPrice = &p
	return c
}
