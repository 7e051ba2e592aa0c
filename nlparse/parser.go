package nlparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sig-0/fxboard/rates/types"
)

var (
	ErrInvalidFormat   = errors.New("unable to parse input, expected format: 'convert 500 USD to PKR'")
	ErrUnknownCurrency = errors.New("unknown currency token")
)

// requestRegex matches "<number> <token> to|in <token>" anywhere
// in the input, case-insensitive. Surrounding text is ignored
var requestRegex = regexp.MustCompile(
	`(?i)([0-9]+(?:\.[0-9]+)?)\s*([A-Za-z]+)\s+(?:to|in)\s+([A-Za-z]+)`,
)

// Parser extracts structured conversion requests from free-text
// input like "convert 500 USD to PKR"
type Parser struct {
	words map[string]types.Currency
}

// NewParser creates a new natural language conversion parser
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		words: defaultWords(),
	}

	// Apply the options
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse extracts a conversion request from the given text.
// Currency tokens resolve through the word dictionary, or pass through
// verbatim when they are exactly 3 letters. Resolved codes are NOT
// validated against the live symbol set here, that is deferred to the
// rate lookup downstream
func (p *Parser) Parse(text string) (*types.ConversionRequest, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidFormat
	}

	match := requestRegex.FindStringSubmatch(text)
	if match == nil {
		return nil, ErrInvalidFormat
	}

	amount, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return nil, fmt.Errorf("unable to parse amount %q: %w", match[1], err)
	}

	from, err := p.resolve(match[2])
	if err != nil {
		return nil, err
	}

	to, err := p.resolve(match[3])
	if err != nil {
		return nil, err
	}

	return &types.ConversionRequest{
		Amount: amount,
		From:   from,
		To:     to,
	}, nil
}

// resolve maps a raw currency token to a 3-letter code
func (p *Parser) resolve(token string) (types.Currency, error) {
	normalized := normalizeToken(token)

	if code, ok := p.words[normalized]; ok {
		return code, nil
	}

	// Any 3-letter token passes through as a literal code
	if len(normalized) == 3 {
		return types.Currency(normalized), nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, token)
}

// normalizeToken uppercases the token and strips any non-letter runes
func normalizeToken(token string) string {
	return strings.Map(func(r rune) rune {
		if r < 'A' || r > 'Z' {
			return -1
		}

		return r
	}, strings.ToUpper(token))
}
