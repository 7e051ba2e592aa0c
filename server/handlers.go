package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sig-0/fxboard/dash"
	"github.com/sig-0/fxboard/nlparse"
	"github.com/sig-0/fxboard/provider/exchangerate"
	"github.com/sig-0/fxboard/rates/types"
)

// defaultHistoryDays is the history span served when the
// request carries no explicit range
const defaultHistoryDays = 30

var (
	errProviderUnavailable = errors.New("rate provider unavailable")
	errInternal            = errors.New("internal error")

	errInvalidAmount = errors.New("invalid amount")
	errInvalidDays   = errors.New("invalid days")
	errInvalidStart  = errors.New("invalid start date (must be YYYY-MM-DD)")
	errInvalidEnd    = errors.New("invalid end date (must be YYYY-MM-DD)")
	errInvalidBody   = errors.New("invalid request body")
)

func (s *Server) Symbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := s.service.Symbols(r.Context())
	if err != nil {
		s.writeServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, &SymbolsResponse{Symbols: symbols})
}

func (s *Server) Rates(w http.ResponseWriter, r *http.Request) {
	base, err := types.ParseCurrency(chi.URLParam(r, "base"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	snapshot, err := s.service.Snapshot(r.Context(), base)
	if err != nil {
		s.writeServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) Overview(w http.ResponseWriter, r *http.Request) {
	base, err := types.ParseCurrency(chi.URLParam(r, "base"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	results, err := s.service.Overview(r.Context(), base)
	if err != nil {
		s.writeServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, &OverviewResponse{
		Base:    base,
		Results: results,
	})
}

func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	base, err := types.ParseCurrency(chi.URLParam(r, "base"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	target, err := types.ParseCurrency(chi.URLParam(r, "target"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	start, end, err := parseHistoryRange(
		r.URL.Query().Get("start"),
		r.URL.Query().Get("end"),
		r.URL.Query().Get("days"),
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	points, err := s.service.History(r.Context(), base, target, start, end)
	if err != nil {
		s.writeServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, &HistoryResponse{
		Base:   base,
		Target: target,
		Points: points,
	})
}

func (s *Server) Convert(w http.ResponseWriter, r *http.Request) {
	from, err := types.ParseCurrency(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	to, err := types.ParseCurrency(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(r.URL.Query().Get("amount")), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errInvalidAmount)

		return
	}

	result, err := s.service.Convert(r.Context(), amount, from, to)
	if err != nil {
		s.writeServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) ParseText(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)

		return
	}

	parsed, err := s.service.Parse(req.Text)
	if err != nil {
		s.writeServiceError(w, err)

		return
	}

	// Convert right away, so the dashboard can show a preview
	result, err := s.service.Convert(r.Context(), parsed.Amount, parsed.From, parsed.To)
	if err != nil {
		s.writeServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, &ParseResponse{
		Request: parsed,
		Result:  result,
	})
}

func (s *Server) Refresh(w http.ResponseWriter, _ *http.Request) {
	s.service.Refresh()

	w.WriteHeader(http.StatusNoContent)
}

// parseHistoryRange resolves the requested history range.
// Explicit start/end dates win over the days shorthand,
// the default is the last 30 days up to today
func parseHistoryRange(startRaw, endRaw, daysRaw string) (types.Date, types.Date, error) {
	end := types.DateOf(time.Now())

	if v := strings.TrimSpace(endRaw); v != "" {
		parsed, err := types.ParseDate(v)
		if err != nil {
			return types.Date{}, types.Date{}, errInvalidEnd
		}

		end = parsed
	}

	if v := strings.TrimSpace(startRaw); v != "" {
		start, err := types.ParseDate(v)
		if err != nil {
			return types.Date{}, types.Date{}, errInvalidStart
		}

		return start, end, nil
	}

	days := defaultHistoryDays

	if v := strings.TrimSpace(daysRaw); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return types.Date{}, types.Date{}, errInvalidDays
		}

		days = parsed
	}

	return end.AddDays(-days), end, nil
}

// writeServiceError maps core failures onto response status codes
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	s.logger.Debug(
		"request failed",
		"err", err,
	)

	var providerErr *exchangerate.ProviderError

	switch {
	case errors.Is(err, nlparse.ErrInvalidFormat),
		errors.Is(err, nlparse.ErrUnknownCurrency):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, dash.ErrInvalidAmount),
		errors.Is(err, dash.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, err)
	case errors.As(err, &providerErr):
		writeError(w, http.StatusBadGateway, errProviderUnavailable)
	default:
		writeError(w, http.StatusInternalServerError, errInternal)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	writeJSON(w, status, resp)
}
