package exchangerate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/fxboard/rates/types"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, time.Second*5)
}

func TestClient_Symbols(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/symbols", r.URL.Path)

			_, _ = w.Write([]byte(`{
				"symbols": {
					"USD": {"code": "USD", "description": "United States Dollar"},
					"EUR": {"code": "EUR", "description": "Euro"},
					"XBT*": {"code": "XBT*", "description": "Non-standard code"}
				}
			}`))
		})

		symbols, err := client.Symbols(context.Background())

		require.NoError(t, err)
		require.Len(t, symbols, 2) // the non-standard code is skipped

		assert.Equal(t, "United States Dollar", symbols["USD"].Description)
		assert.Equal(t, types.Currency("EUR"), symbols["EUR"].Code)
	})

	t.Run("missing symbols field", func(t *testing.T) {
		t.Parallel()

		client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"success": true}`))
		})

		_, err := client.Symbols(context.Background())

		var providerErr *ProviderError

		require.ErrorAs(t, err, &providerErr)
		assert.ErrorIs(t, err, errMissingSymbols)
	})

	t.Run("non-2xx status", func(t *testing.T) {
		t.Parallel()

		client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := client.Symbols(context.Background())

		var providerErr *ProviderError

		require.ErrorAs(t, err, &providerErr)
		assert.Equal(t, http.StatusServiceUnavailable, providerErr.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		})

		_, err := client.Symbols(context.Background())

		var providerErr *ProviderError

		assert.ErrorAs(t, err, &providerErr)
	})
}

func TestClient_Latest(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		var capturedQuery url.Values

		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			capturedQuery = r.URL.Query()

			_, _ = w.Write([]byte(`{"rates": {"EUR": 0.91, "PKR": 278.5}}`))
		})

		snapshot, err := client.Latest(context.Background(), "USD")

		require.NoError(t, err)
		assert.Equal(t, "USD", capturedQuery.Get("base"))

		assert.Equal(t, types.Currency("USD"), snapshot.Base)
		assert.InDelta(t, 0.91, snapshot.Rates["EUR"], 0.0001)
		assert.InDelta(t, 278.5, snapshot.Rates["PKR"], 0.0001)
	})

	t.Run("lowercase base uppercased on the wire", func(t *testing.T) {
		t.Parallel()

		var capturedQuery url.Values

		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			capturedQuery = r.URL.Query()

			_, _ = w.Write([]byte(`{"rates": {"EUR": 0.91}}`))
		})

		snapshot, err := client.Latest(context.Background(), "usd")

		require.NoError(t, err)
		assert.Equal(t, "USD", capturedQuery.Get("base"))
		assert.Equal(t, types.Currency("USD"), snapshot.Base)
	})

	t.Run("missing rates field", func(t *testing.T) {
		t.Parallel()

		client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})

		_, err := client.Latest(context.Background(), "USD")

		assert.ErrorIs(t, err, errMissingRates)
	})

	t.Run("network failure", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(nil)
		srv.Close() // connection refused

		client := NewClient(srv.URL, time.Second)

		_, err := client.Latest(context.Background(), "USD")

		var providerErr *ProviderError

		assert.ErrorAs(t, err, &providerErr)
	})
}

func TestClient_TimeSeries(t *testing.T) {
	t.Parallel()

	t.Run("ordered points with gaps", func(t *testing.T) {
		t.Parallel()

		var capturedQuery url.Values

		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			capturedQuery = r.URL.Query()

			// Out of order on purpose, with a day missing the target rate
			_, _ = w.Write([]byte(`{
				"rates": {
					"2026-01-03": {"EUR": 0.93},
					"2026-01-01": {"EUR": 0.91},
					"2026-01-02": {}
				}
			}`))
		})

		points, err := client.TimeSeries(
			context.Background(),
			"USD",
			"EUR",
			types.NewDate(2026, time.January, 1),
			types.NewDate(2026, time.January, 3),
		)

		require.NoError(t, err)

		assert.Equal(t, "2026-01-01", capturedQuery.Get("start_date"))
		assert.Equal(t, "2026-01-03", capturedQuery.Get("end_date"))
		assert.Equal(t, "USD", capturedQuery.Get("base"))
		assert.Equal(t, "EUR", capturedQuery.Get("symbols"))

		require.Len(t, points, 3)

		assert.Equal(t, "2026-01-01", points[0].Date.String())
		require.NotNil(t, points[0].Rate)
		assert.InDelta(t, 0.91, *points[0].Rate, 0.0001)

		// The day with no reported rate is present, not omitted
		assert.Equal(t, "2026-01-02", points[1].Date.String())
		assert.Nil(t, points[1].Rate)

		assert.Equal(t, "2026-01-03", points[2].Date.String())
		require.NotNil(t, points[2].Rate)
		assert.InDelta(t, 0.93, *points[2].Rate, 0.0001)
	})

	t.Run("invalid date key", func(t *testing.T) {
		t.Parallel()

		client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"rates": {"not-a-date": {"EUR": 0.9}}}`))
		})

		_, err := client.TimeSeries(
			context.Background(),
			"USD",
			"EUR",
			types.NewDate(2026, time.January, 1),
			types.NewDate(2026, time.January, 2),
		)

		var providerErr *ProviderError

		assert.ErrorAs(t, err, &providerErr)
	})
}

func TestClient_Convert(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		var capturedQuery url.Values

		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			capturedQuery = r.URL.Query()

			_, _ = w.Write([]byte(`{
				"result": 455.25,
				"info": {"rate": 0.9105},
				"date": "2026-08-30",
				"historical": false
			}`))
		})

		result, err := client.Convert(context.Background(), 500, "USD", "EUR")

		require.NoError(t, err)

		assert.Equal(t, "USD", capturedQuery.Get("from"))
		assert.Equal(t, "EUR", capturedQuery.Get("to"))
		assert.Equal(t, "500", capturedQuery.Get("amount"))

		assert.InDelta(t, 455.25, result.Result, 0.0001)
		assert.Equal(t, float64(500), result.Request.Amount)

		// Metadata is passed through opaquely
		assert.Equal(t, "2026-08-30", result.Meta["date"])
		assert.NotNil(t, result.Meta["info"])
	})

	t.Run("lowercase codes uppercased on the wire", func(t *testing.T) {
		t.Parallel()

		var capturedQuery url.Values

		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			capturedQuery = r.URL.Query()

			_, _ = w.Write([]byte(`{"result": 455.25}`))
		})

		result, err := client.Convert(context.Background(), 500, "usd", "eur")

		require.NoError(t, err)

		assert.Equal(t, "USD", capturedQuery.Get("from"))
		assert.Equal(t, "EUR", capturedQuery.Get("to"))

		assert.Equal(t, types.Currency("USD"), result.Request.From)
		assert.Equal(t, types.Currency("EUR"), result.Request.To)
	})

	t.Run("missing result field", func(t *testing.T) {
		t.Parallel()

		client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"info": {}}`))
		})

		_, err := client.Convert(context.Background(), 500, "USD", "EUR")

		assert.ErrorIs(t, err, errMissingResult)
	})
}
