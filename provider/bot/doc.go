// Package bot provides exchange rate providers for the Bank of Taiwan
// posted rate board (牌告匯率).
//
// # Providers
//
// ## Structured
//
// Name: "BOT Structured"
// URL: https://rate.bot.com.tw/xrt?Lang=zh-TW
//
// Runs a CSS schema against the page, mapping each table row into a sparse
// record that is then completed into a rate row. The request is sent with
// caching disabled. The provider can be switched off in configuration, in which
// case it reports itself as unavailable and the next provider is used.
//
// ## HTML
//
// Name: "BOT HTML"
// URL: https://rate.bot.com.tw/xrt?Lang=zh-TW
//
// Plain GET of the page, followed by a positional table walk: the header row is
// skipped, rows without cells are skipped, and the currency label plus the four
// rates are read from fixed column indexes (see Layout).
//
// # Columns
//
// The board lists, per currency: cash buy, cash sell, spot buy, spot sell.
// Rates are TWD per unit of foreign currency. A "-" or empty cell means the bank
// is not quoting that rate.
//
// The column indexes are configuration, not code. If the bank reorders the
// table, the layout has to be updated, as a reordered table is not detected.
package bot
