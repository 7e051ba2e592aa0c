package rates

import (
	"context"

	"github.com/sig-0/fxboard/rates/types"
)

// Source is an abstraction over remote exchange rate data
type Source interface {
	// Symbols fetches the supported currency symbols
	Symbols(context.Context) (map[types.Currency]types.Symbol, error)

	// Latest fetches the latest rates for the given base currency
	Latest(context.Context, types.Currency) (*types.RateSnapshot, error)

	// TimeSeries fetches the historical rate series for a currency pair,
	// over the given date range (inclusive). It is the caller's
	// responsibility to ensure start <= end
	TimeSeries(
		ctx context.Context,
		base types.Currency,
		target types.Currency,
		start types.Date,
		end types.Date,
	) ([]types.TimeSeriesPoint, error)

	// Convert performs a single point-in-time conversion.
	// The rate lookup and multiplication happen provider-side
	Convert(
		ctx context.Context,
		amount float64,
		from types.Currency,
		to types.Currency,
	) (*types.ConversionResult, error)
}
