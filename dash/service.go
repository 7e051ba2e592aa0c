package dash

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/sig-0/fxboard/nlparse"
	"github.com/sig-0/fxboard/rates"
	"github.com/sig-0/fxboard/rates/types"
)

var (
	ErrInvalidAmount = errors.New("invalid amount (must be >= 0)")
	ErrInvalidRange  = errors.New("invalid date range (start must be <= end)")
)

// ConversionError is a failed point-in-time conversion,
// wrapping the underlying provider failure
type ConversionError struct {
	Err error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion failed: %v", e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Refresher invalidates cached rate data on demand
type Refresher interface {
	Invalidate()
}

// Service orchestrates conversions, rate overviews and historical
// lookups for the presentation layer. All calls are short-lived
// request/response operations against the rate source
type Service struct {
	source    rates.Source
	refresher Refresher
	parser    *nlparse.Parser
	logger    *slog.Logger
	config    *Config
}

// New creates a new dashboard service over the given rate source
func New(source rates.Source, opts ...Option) (*Service, error) {
	s := &Service{
		source: source,
		parser: nlparse.NewParser(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		config: DefaultConfig(),
	}

	// Apply the options
	for _, opt := range opts {
		opt(s)
	}

	// Validate the configuration
	if err := ValidateConfig(s.config); err != nil {
		return nil, fmt.Errorf("invalid configuration, %w", err)
	}

	return s, nil
}

// Config returns the active dashboard configuration
func (s *Service) Config() *Config {
	return s.config
}

// Symbols lists the supported currency symbols
func (s *Service) Symbols(ctx context.Context) (map[types.Currency]types.Symbol, error) {
	return s.source.Symbols(ctx)
}

// Snapshot fetches the latest rate snapshot for the given base
func (s *Service) Snapshot(ctx context.Context, base types.Currency) (*types.RateSnapshot, error) {
	return s.source.Latest(ctx, base)
}

// Overview assembles the basket rate rows for the given base.
// Basket currencies with no available rate are dropped
func (s *Service) Overview(ctx context.Context, base types.Currency) ([]types.BasketRate, error) {
	var (
		symbols  map[types.Currency]types.Symbol
		snapshot *types.RateSnapshot
	)

	// The two fetches are independent, run them concurrently
	group, gCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		var err error

		symbols, err = s.source.Symbols(gCtx)

		return err
	})

	group.Go(func() error {
		var err error

		snapshot, err = s.source.Latest(gCtx, base)

		return err
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := make([]types.BasketRate, 0, len(s.config.Basket))

	for _, currency := range s.config.Basket {
		rate, ok := snapshot.Rates[currency]
		if !ok {
			continue // no rate available
		}

		out = append(out, types.BasketRate{
			Currency: currency,
			Rate:     rate,
			Name:     symbols[currency].Description,
		})
	}

	return out, nil
}

// History fetches the historical rate series for a currency pair.
// The requested range is clamped to the configured maximum lookback
// before the provider call is issued
func (s *Service) History(
	ctx context.Context,
	base types.Currency,
	target types.Currency,
	start types.Date,
	end types.Date,
) ([]types.TimeSeriesPoint, error) {
	if start.After(end) {
		return nil, ErrInvalidRange
	}

	clamped := clampStart(start, end, s.config.MaxLookback)
	if !clamped.Equal(start) {
		s.logger.Debug(
			"history range clamped",
			"requested_start", start.String(),
			"clamped_start", clamped.String(),
			"end", end.String(),
		)
	}

	return s.source.TimeSeries(ctx, base, target, clamped, end)
}

// Convert performs a single point-in-time conversion.
// The FX arithmetic happens provider-side and is not duplicated here
func (s *Service) Convert(
	ctx context.Context,
	amount float64,
	from types.Currency,
	to types.Currency,
) (*types.ConversionResult, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}

	result, err := s.source.Convert(ctx, amount, from, to)
	if err != nil {
		return nil, &ConversionError{Err: err}
	}

	return result, nil
}

// Parse extracts a structured conversion request from free-text input
func (s *Service) Parse(text string) (*types.ConversionRequest, error) {
	return s.parser.Parse(text)
}

// ParseAndConvert parses free-text input and performs the conversion
func (s *Service) ParseAndConvert(ctx context.Context, text string) (*types.ConversionResult, error) {
	request, err := s.parser.Parse(text)
	if err != nil {
		return nil, err
	}

	return s.Convert(ctx, request.Amount, request.From, request.To)
}

// Refresh invalidates all cached rate data, so the next lookups
// hit the provider again
func (s *Service) Refresh() {
	if s.refresher == nil {
		return
	}

	s.refresher.Invalidate()
	s.logger.Info("rate cache invalidated")
}

// clampStart bounds the (start, end) range to at most maxDays days.
// The end date is never altered
func clampStart(start, end types.Date, maxDays int) types.Date {
	if start.DaysUntil(end) > maxDays {
		return end.AddDays(-maxDays)
	}

	return start
}
