package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/twdrates/rates"
)

const boardPage = `<html><body><table title="牌告匯率">
<tr><th>幣別</th><th>現金買入</th><th>現金賣出</th><th>即期買入</th><th>即期賣出</th></tr>
<tr><td>美金 (USD)</td><td>31.985</td><td>32.655</td><td>32.335</td><td>32.485</td></tr>
<tr><td>南非幣 (ZAR)</td><td>-</td><td>-</td><td>-</td><td>1.855</td></tr>
</table></body></html>`

// newBoardServer serves the rate board page
func newBoardServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(boardPage))
	}))

	t.Cleanup(srv.Close)

	return srv
}

func TestConvert_Exec(t *testing.T) {
	t.Parallel()

	t.Run("default request", func(t *testing.T) {
		t.Parallel()

		var (
			srv = newBoardServer(t)
			out bytes.Buffer
			cmd = newConvertCmd(&out, &bytes.Buffer{})
		)

		require.NoError(t, cmd.ParseAndRun(context.Background(), []string{"-url", srv.URL}))

		var result rates.ConversionResult

		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, "USD", result.Code)
		assert.Equal(t, rates.RateTypeSpotSell, result.RateType)
		assert.Equal(t, float64(defaultAmount), result.Amount)
		assert.InDelta(t, 30.78343851, result.Converted, 1e-8)
	})

	t.Run("rate unavailable", func(t *testing.T) {
		t.Parallel()

		var (
			srv = newBoardServer(t)
			cmd = newConvertCmd(&bytes.Buffer{}, &bytes.Buffer{})
		)

		err := cmd.ParseAndRun(
			context.Background(),
			[]string{"-url", srv.URL, "-code", "zar", "-type", "cash_buy"},
		)

		assert.ErrorIs(t, err, rates.ErrRateUnavailable)
	})

	t.Run("unknown currency", func(t *testing.T) {
		t.Parallel()

		var (
			srv = newBoardServer(t)
			cmd = newConvertCmd(&bytes.Buffer{}, &bytes.Buffer{})
		)

		err := cmd.ParseAndRun(context.Background(), []string{"-url", srv.URL, "-code", "XAU"})

		assert.ErrorIs(t, err, rates.ErrUnknownCurrency)
	})

	t.Run("invalid rate type", func(t *testing.T) {
		t.Parallel()

		var requested bool

		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			requested = true
		}))
		t.Cleanup(srv.Close)

		cmd := newConvertCmd(&bytes.Buffer{}, &bytes.Buffer{})

		err := cmd.ParseAndRun(context.Background(), []string{"-url", srv.URL, "-type", "mid"})

		assert.ErrorIs(t, err, rates.ErrInvalidRateType)
		assert.False(t, requested)
	})
}
