package currencies

import "github.com/sig-0/fxboard/rates/types"

var (
	USD types.Currency = "USD"
	EUR types.Currency = "EUR"
	JPY types.Currency = "JPY"
	GBP types.Currency = "GBP"
	AUD types.Currency = "AUD"
	CAD types.Currency = "CAD"
	CHF types.Currency = "CHF"
	CNY types.Currency = "CNY"
	SEK types.Currency = "SEK"
	NZD types.Currency = "NZD"
	PKR types.Currency = "PKR"
	INR types.Currency = "INR"
)

// Top10 is the most-traded currency set, used for the overview basket
func Top10() []types.Currency {
	return []types.Currency{
		USD, EUR, JPY, GBP, AUD,
		CAD, CHF, CNY, SEK, NZD,
	}
}
