package mock

import (
	"context"

	"github.com/sig-0/fxboard/rates/types"
)

type (
	SymbolsDelegate    func(context.Context) (map[types.Currency]types.Symbol, error)
	LatestDelegate     func(context.Context, types.Currency) (*types.RateSnapshot, error)
	TimeSeriesDelegate func(
		context.Context,
		types.Currency,
		types.Currency,
		types.Date,
		types.Date,
	) ([]types.TimeSeriesPoint, error)
	ConvertDelegate func(
		context.Context,
		float64,
		types.Currency,
		types.Currency,
	) (*types.ConversionResult, error)
)

type Source struct {
	SymbolsFn    SymbolsDelegate
	LatestFn     LatestDelegate
	TimeSeriesFn TimeSeriesDelegate
	ConvertFn    ConvertDelegate
}

func (m *Source) Symbols(ctx context.Context) (map[types.Currency]types.Symbol, error) {
	if m.SymbolsFn != nil {
		return m.SymbolsFn(ctx)
	}

	return nil, nil
}

func (m *Source) Latest(ctx context.Context, base types.Currency) (*types.RateSnapshot, error) {
	if m.LatestFn != nil {
		return m.LatestFn(ctx, base)
	}

	return nil, nil
}

func (m *Source) TimeSeries(
	ctx context.Context,
	base types.Currency,
	target types.Currency,
	start types.Date,
	end types.Date,
) ([]types.TimeSeriesPoint, error) {
	if m.TimeSeriesFn != nil {
		return m.TimeSeriesFn(ctx, base, target, start, end)
	}

	return nil, nil
}

func (m *Source) Convert(
	ctx context.Context,
	amount float64,
	from types.Currency,
	to types.Currency,
) (*types.ConversionResult, error) {
	if m.ConvertFn != nil {
		return m.ConvertFn(ctx, amount, from, to)
	}

	return nil, nil
}
