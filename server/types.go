package server

import "github.com/sig-0/fxboard/rates/types"

type SymbolsResponse struct {
	Symbols map[types.Currency]types.Symbol `json:"symbols"`
}

type OverviewResponse struct {
	Base    types.Currency     `json:"base"`
	Results []types.BasketRate `json:"results"`
}

type HistoryResponse struct {
	Base   types.Currency          `json:"base"`
	Target types.Currency          `json:"target"`
	Points []types.TimeSeriesPoint `json:"points"`
}

type ParseRequest struct {
	Text string `json:"text"`
}

type ParseResponse struct {
	Request *types.ConversionRequest `json:"request"`
	Result  *types.ConversionResult  `json:"result"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
