package dash

import (
	"errors"
	"fmt"

	"github.com/sig-0/fxboard/provider/currencies"
	"github.com/sig-0/fxboard/rates/types"
)

// DefaultMaxLookback is the maximum historical span, in days,
// a single time-series query may request
const DefaultMaxLookback = 365

var (
	ErrInvalidLookback = errors.New("invalid max lookback (must be > 0)")
	ErrEmptyBasket     = errors.New("empty overview basket")
)

// Config defines the core dashboard configuration
type Config struct {
	// The currency amounts are expressed in before conversion
	DefaultBase types.Currency

	// The currency being converted to
	DefaultTarget types.Currency

	// The currency set shown in the rate overview
	Basket []types.Currency

	// The maximum historical lookback window, in days
	MaxLookback int
}

// DefaultConfig returns the default dashboard configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultBase:   currencies.USD,
		DefaultTarget: currencies.EUR,
		Basket:        currencies.Top10(),
		MaxLookback:   DefaultMaxLookback,
	}
}

// ValidateConfig validates the dashboard configuration
func ValidateConfig(config *Config) error {
	if _, err := types.ParseCurrency(config.DefaultBase.String()); err != nil {
		return fmt.Errorf("invalid default base: %w", err)
	}

	if _, err := types.ParseCurrency(config.DefaultTarget.String()); err != nil {
		return fmt.Errorf("invalid default target: %w", err)
	}

	if config.MaxLookback <= 0 {
		return ErrInvalidLookback
	}

	if len(config.Basket) == 0 {
		return ErrEmptyBasket
	}

	for _, c := range config.Basket {
		if _, err := types.ParseCurrency(c.String()); err != nil {
			return fmt.Errorf("invalid basket currency %q: %w", c, err)
		}
	}

	return nil
}
