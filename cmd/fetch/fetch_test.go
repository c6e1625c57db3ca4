package fetch

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
<tr><td>澳門幣 (MOP)</td><td>-</td><td>-</td><td>-</td><td>-</td></tr>
</table></body></html>`

// newBoardServer serves the rate board page with the given status
func newBoardServer(t *testing.T, status int) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)

		_, _ = w.Write([]byte(boardPage))
	}))

	t.Cleanup(srv.Close)

	return srv
}

func TestFetch_Exec(t *testing.T) {
	t.Parallel()

	t.Run("prints the board", func(t *testing.T) {
		t.Parallel()

		var (
			srv = newBoardServer(t, http.StatusOK)
			out bytes.Buffer
			cmd = newFetchCmd(&out, &bytes.Buffer{})
		)

		require.NoError(t, cmd.ParseAndRun(context.Background(), []string{"-url", srv.URL}))

		var result rates.FetchResult

		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Len(t, result.Rows, 2)
		assert.Empty(t, result.Error)
		assert.False(t, result.FetchedAt.IsZero())
	})

	t.Run("tradable display rows", func(t *testing.T) {
		t.Parallel()

		var (
			srv = newBoardServer(t, http.StatusOK)
			out bytes.Buffer
			cmd = newFetchCmd(&out, &bytes.Buffer{})
		)

		require.NoError(t, cmd.ParseAndRun(
			context.Background(),
			[]string{"-url", srv.URL, "-tradable", "-display"},
		))

		var result rates.DisplayResult

		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Len(t, result.Rows, 1)
		assert.Equal(t, "USD", result.Rows[0].Code)
	})

	t.Run("failed fetch", func(t *testing.T) {
		t.Parallel()

		var (
			srv  = newBoardServer(t, http.StatusInternalServerError)
			out  bytes.Buffer
			logs bytes.Buffer
			cmd  = newFetchCmd(&out, &logs)
		)

		err := cmd.ParseAndRun(context.Background(), []string{"-url", srv.URL, "-verbose"})
		require.ErrorIs(t, err, errFetchFailed)

		// The failed result is still printed
		var result rates.FetchResult

		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Empty(t, result.Rows)
		assert.Contains(t, result.Error, "500")
		assert.NotEmpty(t, logs.String())
	})
}
