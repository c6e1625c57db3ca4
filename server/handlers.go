package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sig-0/twdrates/rates"
)

// cacheAgeHeader carries the snapshot age, in whole seconds
const cacheAgeHeader = "X-Cache-Age"

var (
	errUnableToFetchRates = errors.New("unable to fetch rates")

	errInvalidAmount = errors.New("invalid amount")
	errMissingCode   = errors.New("missing currency code")
	errInvalidFlag   = errors.New("invalid flag")
)

// Rates returns the rate board snapshot.
// The rows can be narrowed down to the tradable ones, and cleaned for display
func (s *Server) Rates(w http.ResponseWriter, r *http.Request) {
	var (
		tradableParam = r.URL.Query().Get("tradable")
		displayParam  = r.URL.Query().Get("display")
	)

	tradable, err := parseFlag("tradable", tradableParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	display, err := parseFlag("display", displayParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	result := s.source.Get(r.Context())
	if result == nil {
		writeError(w, http.StatusServiceUnavailable, errUnableToFetchRates)

		return
	}

	s.setCacheAge(w)

	view := result
	if tradable {
		view = view.Tradable()
	}

	if display {
		writeJSON(w, http.StatusOK, view.Display())

		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Convert converts a local currency amount into the given currency
func (s *Server) Convert(w http.ResponseWriter, r *http.Request) {
	var (
		amountParam = r.URL.Query().Get("amount")
		codeParam   = r.URL.Query().Get("code")
		typeParam   = r.URL.Query().Get("type")
	)

	// Parse the amount
	amount, err := strconv.ParseFloat(strings.TrimSpace(amountParam), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %q", errInvalidAmount, amountParam))

		return
	}

	// Parse the currency code
	code := strings.TrimSpace(codeParam)
	if code == "" {
		writeError(w, http.StatusBadRequest, errMissingCode)

		return
	}

	// Parse the rate type
	rateType, err := rates.ParseRateType(typeParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	result := s.source.Get(r.Context())
	if result == nil || (result.Failed() && len(result.Rows) == 0) {
		s.logger.Debug(
			"unable to fetch rates",
			"err", failureOf(result),
		)

		writeError(
			w,
			http.StatusServiceUnavailable,
			fmt.Errorf("%w: %s", errUnableToFetchRates, failureOf(result)),
		)

		return
	}

	s.setCacheAge(w)

	conversion, err := rates.Resolve(result.Rows, rates.ConversionRequest{
		Code:     code,
		RateType: rateType,
		Amount:   amount,
	})
	if err != nil {
		writeError(w, conversionStatus(err), err)

		return
	}

	writeJSON(w, http.StatusOK, conversion)
}

// Refresh drops the cached snapshot, and fetches a new one
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	result := s.source.Refresh(r.Context())
	if result == nil {
		writeError(w, http.StatusServiceUnavailable, errUnableToFetchRates)

		return
	}

	if result.Failed() {
		s.logger.Warn(
			"rate board refresh failed",
			"err", result.Error,
		)
	}

	s.setCacheAge(w)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) setCacheAge(w http.ResponseWriter) {
	age, ok := s.source.Age()
	if !ok {
		return
	}

	w.Header().Set(cacheAgeHeader, strconv.FormatInt(int64(age/time.Second), 10))
}

// conversionStatus maps the conversion error to a response status
func conversionStatus(err error) int {
	switch {
	case errors.Is(err, rates.ErrUnknownCurrency):
		return http.StatusNotFound
	case errors.Is(err, rates.ErrRateUnavailable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func failureOf(result *rates.FetchResult) string {
	if result == nil {
		return "no result"
	}

	return result.Error
}

func parseFlag(name, raw string) (bool, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return false, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", errInvalidFlag, name, raw)
	}

	return b, nil
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
