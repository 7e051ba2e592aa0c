// Package exchangerate provides the remote rate provider client.
//
// The provider is an exchangerate.host-style HTTP/JSON API, keyless,
// reached over four read endpoints:
//
//	GET /symbols                  supported currency symbols
//	GET /latest?base=             latest rates for a base currency
//	GET /timeseries?start_date=&end_date=&base=&symbols=
//	                              historical series for a single pair
//	GET /convert?from=&to=&amount=
//	                              server-side point conversion
//
// The client is pure transport and decoding. Any network failure,
// non-2xx status, or missing expected top-level field is reported as
// a *ProviderError. Retrying, caching and range policy are the
// callers' concern.
package exchangerate
