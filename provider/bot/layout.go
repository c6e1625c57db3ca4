package bot

import (
	"errors"
	"fmt"
)

const (
	// DefaultURL is the Bank of Taiwan posted rate board
	DefaultURL = "https://rate.bot.com.tw/xrt?Lang=zh-TW"

	// DefaultTableSelector identifies the posted rate table
	DefaultTableSelector = "table[title='牌告匯率']"

	userAgent = "twdrates/1.0 (+https://github.com/sig-0/twdrates)"
)

var (
	errMissingSelector = errors.New("missing table selector")
	errInvalidColumn   = errors.New("invalid column index")
	errDuplicateColumn = errors.New("duplicate column index")
)

// Layout describes where the rate table lives and
// which (0-based) cell holds which value
type Layout struct {
	TableSelector string

	Currency int
	CashBuy  int
	CashSell int
	SpotBuy  int
	SpotSell int
}

// DefaultLayout returns the current board layout
func DefaultLayout() Layout {
	return Layout{
		TableSelector: DefaultTableSelector,
		Currency:      0,
		CashBuy:       1,
		CashSell:      2,
		SpotBuy:       3,
		SpotSell:      4,
	}
}

// Validate validates the layout
func (l Layout) Validate() error {
	if l.TableSelector == "" {
		return errMissingSelector
	}

	columns := map[string]int{
		"currency":  l.Currency,
		"cash_buy":  l.CashBuy,
		"cash_sell": l.CashSell,
		"spot_buy":  l.SpotBuy,
		"spot_sell": l.SpotSell,
	}

	seen := make(map[int]string, len(columns))

	for name, idx := range columns {
		if idx < 0 {
			return fmt.Errorf("%w: %s=%d", errInvalidColumn, name, idx)
		}

		if other, ok := seen[idx]; ok {
			return fmt.Errorf("%w: %s and %s (%d)", errDuplicateColumn, name, other, idx)
		}

		seen[idx] = name
	}

	return nil
}
