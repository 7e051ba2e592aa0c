package types

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidCurrency = errors.New("invalid currency (must be 3 letters A-Z)")

type Currency string

func (c Currency) String() string {
	return string(c)
}

// ParseCurrency normalizes the given value into a currency code.
// Normalization is idempotent
func ParseCurrency(v string) (Currency, error) {
	s := strings.ToUpper(strings.TrimSpace(v))
	if len(s) != 3 {
		return "", ErrInvalidCurrency
	}

	for i := 0; i < 3; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return "", ErrInvalidCurrency
		}
	}

	return Currency(s), nil
}

// Symbol is a single supported currency, as reported by the provider
type Symbol struct {
	Code        Currency `json:"code"`
	Description string   `json:"description"`
}

// RateSnapshot is a point-in-time rate mapping for a base currency.
// A snapshot is never mutated, it is superseded wholesale on refresh.
// A missing code in Rates means "no rate available"
type RateSnapshot struct {
	Rates map[Currency]float64 `json:"rates"`
	Base  Currency             `json:"base"`
}

const dateLayout = "2006-01-02"

// Date is a calendar day without a time component (UTC)
type Date time.Time

// NewDate creates a date for the given calendar day
func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf truncates the given time to its UTC calendar day
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()

	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(v string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return Date{}, err
	}

	return Date(t), nil
}

func (d Date) Time() time.Time {
	return time.Time(d)
}

func (d Date) String() string {
	return time.Time(d).Format(dateLayout)
}

// AddDays returns the date shifted by the given number of days
func (d Date) AddDays(days int) Date {
	return DateOf(time.Time(d).AddDate(0, 0, days))
}

// DaysUntil returns the number of whole days between d and the given date
func (d Date) DaysUntil(other Date) int {
	return int(time.Time(other).Sub(time.Time(d)).Hours() / 24)
}

func (d Date) After(other Date) bool {
	return time.Time(d).After(time.Time(other))
}

func (d Date) Equal(other Date) bool {
	return time.Time(d).Equal(time.Time(other))
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDate(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

// TimeSeriesPoint is a single day in a historical rate series.
// A nil rate means the provider reported no data for that day
type TimeSeriesPoint struct {
	Rate *float64 `json:"rate"`
	Date Date     `json:"date"`
}

// ConversionRequest is a single point-in-time conversion ask
type ConversionRequest struct {
	Amount float64  `json:"amount"`
	From   Currency `json:"from"`
	To     Currency `json:"to"`
}

// ConversionResult is a completed conversion, along with the
// raw provider metadata (opaque, passed through unvalidated)
type ConversionResult struct {
	Meta    map[string]any    `json:"meta"`
	Request ConversionRequest `json:"request"`
	Result  float64           `json:"result"`
}

// BasketRate is a single basket row for the rate overview
type BasketRate struct {
	Currency Currency `json:"currency"`
	Name     string   `json:"name"`
	Rate     float64  `json:"rate"`
}
