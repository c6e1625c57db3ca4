package rates

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// conversionPrecision is the number of fractional digits kept when dividing
const conversionPrecision = 16

var (
	ErrInvalidRateType = errors.New("invalid rate type")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrRateUnavailable = errors.New("rate unavailable")
)

// ConversionRequest converts Amount of local currency into Code,
// using the rate of the given type
type ConversionRequest struct {
	Code     string   `json:"code"`
	RateType RateType `json:"rate_type"`
	Amount   float64  `json:"amount"`
}

// ConversionResult is a resolved conversion
type ConversionResult struct {
	Code      string   `json:"code"`
	RateType  RateType `json:"rate_type"`
	Rate      string   `json:"rate"`
	Amount    float64  `json:"amount"`
	Converted float64  `json:"converted"`
}

// Convert converts the local currency amount using the posted rate
// (local currency per unit of foreign currency).
// The conversion is unavailable if the rate is absent, malformed or zero
func Convert(amount float64, rate *string) (float64, bool) {
	if rate == nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, false
	}

	r, ok := parseDecimal(*rate)
	if !ok || r.IsZero() {
		return 0, false
	}

	return decimal.NewFromFloat(amount).DivRound(r, conversionPrecision).InexactFloat64(), true
}

// Resolve resolves the conversion request against the tradable rows
func Resolve(rows []RateRow, req ConversionRequest) (*ConversionResult, error) {
	if req.Amount < 0 || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, req.Amount)
	}

	rateType, err := ParseRateType(req.RateType.String())
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))

	for _, row := range FilterTradable(rows) {
		if !strings.EqualFold(row.Code, code) {
			continue
		}

		rate := row.Rate(rateType)

		converted, ok := Convert(req.Amount, rate)
		if !ok {
			return nil, fmt.Errorf("%w: %s %s", ErrRateUnavailable, code, rateType)
		}

		return &ConversionResult{
			Code:      row.Code,
			RateType:  rateType,
			Rate:      *rate,
			Amount:    req.Amount,
			Converted: converted,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
}
