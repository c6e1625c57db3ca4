package rates

import (
	"strconv"
	"strings"
	"time"
)

// SuspendedLabel is shown in place of a rate the bank is not quoting
const SuspendedLabel = "暫停交易"

// DisplayRow is a display-only rendition of a RateRow.
// Its values are never fed back into conversion
type DisplayRow struct {
	Currency string `json:"currency"`
	Code     string `json:"code"`
	CashBuy  string `json:"cash_buy"`
	CashSell string `json:"cash_sell"`
	SpotBuy  string `json:"spot_buy"`
	SpotSell string `json:"spot_sell"`
	Tradable bool   `json:"tradable"`
}

// DisplayResult is a fetch result, cleaned for display
type DisplayResult struct {
	FetchedAt time.Time    `json:"fetched_at"`
	Error     string       `json:"error,omitempty"`
	Rows      []DisplayRow `json:"rows"`
}

// Complete turns sparse records into full rows.
// Missing fields default to absent, and a missing (or malformed)
// tradable flag is derived from the rates.
// An explicit tradable flag can only clear a row, never mark a row
// without any rate as tradable
func Complete(records []Record) []RateRow {
	rows := make([]RateRow, 0, len(records))

	for _, rec := range records {
		row := RateRow{
			Currency: strings.TrimSpace(rec[FieldCurrency]),
			Code:     strings.TrimSpace(rec[FieldCode]),
			CashBuy:  CleanCell(rec[FieldCashBuy]),
			CashSell: CleanCell(rec[FieldCashSell]),
			SpotBuy:  CleanCell(rec[FieldSpotBuy]),
			SpotSell: CleanCell(rec[FieldSpotSell]),
		}

		if row.Code == "" && row.Currency != "" {
			row.Code = ExtractCode(row.Currency)
		}

		row.Tradable = row.HasRate()

		if raw, ok := rec[FieldTradable]; ok {
			if tradable, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
				row.Tradable = tradable && row.HasRate()
			}
		}

		rows = append(rows, row)
	}

	return rows
}

// FilterTradable keeps only the tradable rows, in source order
func FilterTradable(rows []RateRow) []RateRow {
	out := make([]RateRow, 0, len(rows))

	for _, row := range rows {
		if !row.Tradable {
			continue
		}

		out = append(out, row)
	}

	return out
}

// Tradable returns a copy of the result, holding only the tradable rows
func (f *FetchResult) Tradable() *FetchResult {
	return &FetchResult{
		FetchedAt: f.FetchedAt,
		Error:     f.Error,
		Rows:      FilterTradable(f.Rows),
	}
}

// Display returns the result cleaned for display
func (f *FetchResult) Display() *DisplayResult {
	return &DisplayResult{
		FetchedAt: f.FetchedAt,
		Error:     f.Error,
		Rows:      Display(f.Rows),
	}
}

// Display converts the rows for display, replacing absent rates
// with the suspended label
func Display(rows []RateRow) []DisplayRow {
	out := make([]DisplayRow, 0, len(rows))

	for _, row := range rows {
		out = append(out, DisplayRow{
			Currency: row.Currency,
			Code:     row.Code,
			CashBuy:  deref(row.CashBuy),
			CashSell: deref(row.CashSell),
			SpotBuy:  deref(row.SpotBuy),
			SpotSell: deref(row.SpotSell),
			Tradable: row.Tradable,
		})
	}

	return CleanDisplay(out)
}

// CleanDisplay replaces blank rates with the suspended label.
// Applying it more than once has no further effect
func CleanDisplay(rows []DisplayRow) []DisplayRow {
	out := make([]DisplayRow, len(rows))

	for i, row := range rows {
		row.CashBuy = orSuspended(row.CashBuy)
		row.CashSell = orSuspended(row.CashSell)
		row.SpotBuy = orSuspended(row.SpotBuy)
		row.SpotSell = orSuspended(row.SpotSell)

		out[i] = row
	}

	return out
}

func orSuspended(v string) string {
	if strings.TrimSpace(v) == "" {
		return SuspendedLabel
	}

	return v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}

	return *v
}
