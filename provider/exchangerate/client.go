package exchangerate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sig-0/fxboard/rates/types"
)

const (
	// DefaultBaseURL is the keyless exchangerate.host API
	DefaultBaseURL = "https://api.exchangerate.host"

	// DefaultTimeout is the fixed per-call budget
	DefaultTimeout = time.Second * 15
)

var (
	errMissingSymbols = errors.New("missing symbols field")
	errMissingRates   = errors.New("missing rates field")
	errMissingResult  = errors.New("missing result field")
)

// ProviderError is a failed remote provider call: network failure,
// non-2xx status, or a malformed response body
type ProviderError struct {
	Err        error
	Op         string
	StatusCode int
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s failed (status %d): %v", e.Op, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("provider %s failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Client is a thin HTTP client for the remote rate provider.
// It carries no business logic and never retries
type Client struct {
	client *http.Client
	url    string
}

// NewClient creates a new rate provider client
func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultBaseURL
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		url: url,
	}
}

// symbolEntry is a single entry in the provider's symbols map
type symbolEntry struct {
	Description string `json:"description"`
	Code        string `json:"code"`
}

// upper normalizes a currency code for the wire, the provider
// expects uppercase codes
func upper(c types.Currency) types.Currency {
	return types.Currency(strings.ToUpper(c.String()))
}

// symbolsResponse is the response from the /symbols endpoint
type symbolsResponse struct {
	Symbols map[string]symbolEntry `json:"symbols"`
}

// latestResponse is the response from the /latest endpoint
type latestResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// timeSeriesResponse is the response from the /timeseries endpoint
type timeSeriesResponse struct {
	Rates map[string]map[string]float64 `json:"rates"`
}

func (c *Client) Symbols(ctx context.Context) (map[types.Currency]types.Symbol, error) {
	const op = "symbols"

	var resp symbolsResponse

	if err := c.get(ctx, op, "/symbols", nil, &resp); err != nil {
		return nil, err
	}

	if resp.Symbols == nil {
		return nil, &ProviderError{Op: op, Err: errMissingSymbols}
	}

	out := make(map[types.Currency]types.Symbol, len(resp.Symbols))

	for code, entry := range resp.Symbols {
		currency, err := types.ParseCurrency(code)
		if err != nil {
			continue // skip non-standard provider codes
		}

		out[currency] = types.Symbol{
			Code:        currency,
			Description: entry.Description,
		}
	}

	return out, nil
}

func (c *Client) Latest(ctx context.Context, base types.Currency) (*types.RateSnapshot, error) {
	const op = "latest"

	base = upper(base)

	params := url.Values{
		"base": []string{base.String()},
	}

	var resp latestResponse

	if err := c.get(ctx, op, "/latest", params, &resp); err != nil {
		return nil, err
	}

	if resp.Rates == nil {
		return nil, &ProviderError{Op: op, Err: errMissingRates}
	}

	out := make(map[types.Currency]float64, len(resp.Rates))
	for code, rate := range resp.Rates {
		out[types.Currency(code)] = rate
	}

	return &types.RateSnapshot{
		Base:  base,
		Rates: out,
	}, nil
}

func (c *Client) TimeSeries(
	ctx context.Context,
	base types.Currency,
	target types.Currency,
	start types.Date,
	end types.Date,
) ([]types.TimeSeriesPoint, error) {
	const op = "timeseries"

	base = upper(base)
	target = upper(target)

	params := url.Values{
		"start_date": []string{start.String()},
		"end_date":   []string{end.String()},
		"base":       []string{base.String()},
		"symbols":    []string{target.String()},
	}

	var resp timeSeriesResponse

	if err := c.get(ctx, op, "/timeseries", params, &resp); err != nil {
		return nil, err
	}

	if resp.Rates == nil {
		return nil, &ProviderError{Op: op, Err: errMissingRates}
	}

	// Order the reported days chronologically
	days := make([]string, 0, len(resp.Rates))
	for day := range resp.Rates {
		days = append(days, day)
	}

	sort.Strings(days)

	points := make([]types.TimeSeriesPoint, 0, len(days))

	for _, day := range days {
		date, err := types.ParseDate(day)
		if err != nil {
			return nil, &ProviderError{
				Op:  op,
				Err: fmt.Errorf("invalid date key %q: %w", day, err),
			}
		}

		point := types.TimeSeriesPoint{
			Date: date,
		}

		// A day with no reported rate for the target stays in the
		// series with a nil rate, it is not omitted
		if rate, ok := resp.Rates[day][target.String()]; ok {
			r := rate
			point.Rate = &r
		}

		points = append(points, point)
	}

	return points, nil
}

func (c *Client) Convert(
	ctx context.Context,
	amount float64,
	from types.Currency,
	to types.Currency,
) (*types.ConversionResult, error) {
	const op = "convert"

	from = upper(from)
	to = upper(to)

	params := url.Values{
		"from":   []string{from.String()},
		"to":     []string{to.String()},
		"amount": []string{strconv.FormatFloat(amount, 'f', -1, 64)},
	}

	var body map[string]any

	if err := c.get(ctx, op, "/convert", params, &body); err != nil {
		return nil, err
	}

	result, ok := body["result"].(float64)
	if !ok {
		return nil, &ProviderError{Op: op, Err: errMissingResult}
	}

	return &types.ConversionResult{
		Request: types.ConversionRequest{
			Amount: amount,
			From:   from,
			To:     to,
		},
		Result: result,
		Meta:   body,
	}, nil
}

// get executes a GET request against the provider and decodes the JSON body
func (c *Client) get(
	ctx context.Context,
	op string,
	path string,
	params url.Values,
	out any,
) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+path, http.NoBody)
	if err != nil {
		return &ProviderError{
			Op:  op,
			Err: fmt.Errorf("unable to create GET request: %w", err),
		}
	}

	if params != nil {
		req.URL.RawQuery = params.Encode()
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &ProviderError{
			Op:  op,
			Err: fmt.Errorf("unable to execute GET request: %w", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ProviderError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        errors.New("invalid status code received"),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProviderError{
			Op:  op,
			Err: fmt.Errorf("unable to decode response: %w", err),
		}
	}

	return nil
}
