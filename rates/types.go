package rates

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RateType is one of the four posted rate kinds
type RateType string

const (
	RateTypeCashBuy  RateType = "cash_buy"
	RateTypeCashSell RateType = "cash_sell"
	RateTypeSpotBuy  RateType = "spot_buy"
	RateTypeSpotSell RateType = "spot_sell"
)

// RateTypes lists the rate kinds in table column order
var RateTypes = []RateType{
	RateTypeCashBuy,
	RateTypeCashSell,
	RateTypeSpotBuy,
	RateTypeSpotSell,
}

func (r RateType) String() string {
	return string(r)
}

// ParseRateType parses the rate type name (case-insensitive)
func ParseRateType(v string) (RateType, error) {
	t := RateType(strings.ToLower(strings.TrimSpace(v)))

	switch t {
	case RateTypeCashBuy, RateTypeCashSell, RateTypeSpotBuy, RateTypeSpotSell:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRateType, v)
	}
}

// RateRow is a single currency's quoted rates at fetch time.
// A nil rate means the bank does not quote that rate type right now
type RateRow struct {
	CashBuy  *string `json:"cash_buy"`
	CashSell *string `json:"cash_sell"`
	SpotBuy  *string `json:"spot_buy"`
	SpotSell *string `json:"spot_sell"`

	Currency string `json:"currency"` // raw label, ex. "美金 (USD)"
	Code     string `json:"code"`

	Tradable bool `json:"tradable"`
}

// NewRateRow creates a row and derives its tradable flag
func NewRateRow(currency, code string, cashBuy, cashSell, spotBuy, spotSell *string) RateRow {
	row := RateRow{
		Currency: currency,
		Code:     code,
		CashBuy:  cashBuy,
		CashSell: cashSell,
		SpotBuy:  spotBuy,
		SpotSell: spotSell,
	}

	row.Tradable = row.HasRate()

	return row
}

// HasRate returns true if at least one of the four rates is quoted
func (r RateRow) HasRate() bool {
	return r.CashBuy != nil || r.CashSell != nil || r.SpotBuy != nil || r.SpotSell != nil
}

// Rate returns the raw value for the given rate type
func (r RateRow) Rate(t RateType) *string {
	switch t {
	case RateTypeCashBuy:
		return r.CashBuy
	case RateTypeCashSell:
		return r.CashSell
	case RateTypeSpotBuy:
		return r.SpotBuy
	case RateTypeSpotSell:
		return r.SpotSell
	default:
		return nil
	}
}

// UnmarshalJSON decodes the row, deriving the tradable flag
// when upstream data does not carry it.
// A row without any rate is never tradable
func (r *RateRow) UnmarshalJSON(data []byte) error {
	type alias RateRow

	aux := struct {
		*alias

		Tradable *bool `json:"tradable"`
	}{
		alias: (*alias)(r),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.Tradable != nil {
		r.Tradable = *aux.Tradable && r.HasRate()

		return nil
	}

	r.Tradable = r.HasRate()

	return nil
}

// FetchResult is the outcome of a single fetch cycle
type FetchResult struct {
	FetchedAt time.Time `json:"fetched_at"`
	Error     string    `json:"error,omitempty"`
	Rows      []RateRow `json:"rows"`
}

// NewFetchResult creates a successful fetch result
func NewFetchResult(rows []RateRow, fetchedAt time.Time) *FetchResult {
	if rows == nil {
		rows = []RateRow{}
	}

	return &FetchResult{
		Rows:      rows,
		FetchedAt: fetchedAt.UTC(),
	}
}

// NewFailedFetchResult creates a fetch result for a total fetch failure
func NewFailedFetchResult(err error, fetchedAt time.Time) *FetchResult {
	msg := "unknown fetch failure"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}

	return &FetchResult{
		Rows:      []RateRow{},
		FetchedAt: fetchedAt.UTC(),
		Error:     msg,
	}
}

// Failed returns true if both the preferred and fallback fetch failed
func (f *FetchResult) Failed() bool {
	return f.Error != ""
}

// Record is a sparse row, keyed by the RateRow JSON field names
type Record map[string]string

// Record field names
const (
	FieldCurrency = "currency"
	FieldCode     = "code"
	FieldCashBuy  = "cash_buy"
	FieldCashSell = "cash_sell"
	FieldSpotBuy  = "spot_buy"
	FieldSpotSell = "spot_sell"
	FieldTradable = "tradable"
)
