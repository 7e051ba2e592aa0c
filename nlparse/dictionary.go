package nlparse

import (
	"github.com/sig-0/fxboard/provider/currencies"
	"github.com/sig-0/fxboard/rates/types"
)

// defaultWords is the common currency-name dictionary.
// Keys are normalized tokens (uppercase, letters only)
func defaultWords() map[string]types.Currency {
	return map[string]types.Currency{
		"DOLLAR":   currencies.USD,
		"DOLLARS":  currencies.USD,
		"USD":      currencies.USD,
		"EURO":     currencies.EUR,
		"EUROS":    currencies.EUR,
		"EUR":      currencies.EUR,
		"POUND":    currencies.GBP,
		"POUNDS":   currencies.GBP,
		"STERLING": currencies.GBP,
		"GBP":      currencies.GBP,
		"RUPEE":    currencies.PKR,
		"PKR":      currencies.PKR,
		"INR":      currencies.INR,
		"YEN":      currencies.JPY,
		"JPY":      currencies.JPY,
		"YUAN":     currencies.CNY,
		"RENMINBI": currencies.CNY,
		"CNY":      currencies.CNY,
		"SWISS":    currencies.CHF,
		"FRANC":    currencies.CHF,
		"CHF":      currencies.CHF,
		"AUD":      currencies.AUD,
		"CAD":      currencies.CAD,
		"NZD":      currencies.NZD,
		"SEK":      currencies.SEK,
	}
}

type Option func(p *Parser)

// WithWords extends the currency-name dictionary with extra mappings.
// Keys are normalized before insertion
func WithWords(words map[string]types.Currency) Option {
	return func(p *Parser) {
		for word, code := range words {
			p.words[normalizeToken(word)] = code
		}
	}
}
