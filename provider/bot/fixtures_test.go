package bot

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// boardHTML mirrors the posted rate board markup: a two-row header,
// a fully quoted currency and a currency with only a spot sell rate
const boardHTML = `<!DOCTYPE html>
<html>
<body>
<table title="牌告匯率" class="table table-striped table-bordered table-condensed table-hover">
  <thead>
    <tr class="hidden-phone">
      <th rowspan="2">幣別</th>
      <th colspan="2">現金匯率</th>
      <th colspan="2">即期匯率</th>
    </tr>
    <tr>
      <th>本行買入</th>
      <th>本行賣出</th>
      <th>本行買入</th>
      <th>本行賣出</th>
    </tr>
  </thead>
  <tbody>
    <tr>
      <td data-table="幣別" class="currency phone-small-font">
        <div class="hidden-phone print_show xrt-cur-indent">
          <img src="/Content/images/flags/America.png" alt="">
          <div class="visible-phone print_hide">美金 (USD)</div>
          <div class="hidden-phone print_show">美金 (USD)</div>
        </div>
      </td>
      <td data-table="本行現金買入" class="rate-content-cash text-right print_hide">31.985</td>
      <td data-table="本行現金賣出" class="rate-content-cash text-right print_hide">32.655</td>
      <td data-table="本行即期買入" class="rate-content-sight text-right print_hide">1,032.335</td>
      <td data-table="本行即期賣出" class="rate-content-sight text-right print_hide">32.485</td>
      <td class="text-center print_hide"><a href="/xrt/quote/day/USD">查詢</a></td>
    </tr>
    <tr>
      <td data-table="幣別" class="currency phone-small-font">
        <div class="hidden-phone print_show">南非幣 (ZAR)</div>
      </td>
      <td data-table="本行現金買入" class="rate-content-cash text-right print_hide">-</td>
      <td data-table="本行現金賣出" class="rate-content-cash text-right print_hide">-</td>
      <td data-table="本行即期買入" class="rate-content-sight text-right print_hide"></td>
      <td data-table="本行即期賣出" class="rate-content-sight text-right print_hide">1.855</td>
      <td class="text-center print_hide"><a href="/xrt/quote/day/ZAR">查詢</a></td>
    </tr>
  </tbody>
</table>
</body>
</html>`

// noTableHTML is a page without the rate board
const noTableHTML = `<!DOCTYPE html>
<html><body><table title="其他"><tr><th>x</th></tr><tr><td>美金 (USD)</td><td>1</td></tr></table></body></html>`

// newBoardServer serves the given body with the given status,
// recording the request headers
func newBoardServer(t *testing.T, status int, body string, headers chan<- http.Header) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if headers != nil {
			headers <- r.Header.Clone()
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)

		_, _ = w.Write([]byte(body))
	}))

	t.Cleanup(srv.Close)

	return srv
}

// newSlowServer serves a request only once release is closed
func newSlowServer(t *testing.T, release <-chan struct{}) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}

		w.WriteHeader(http.StatusOK)
	}))

	t.Cleanup(srv.Close)

	return srv
}
