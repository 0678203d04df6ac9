package domain

import "strings"

// tickerAliases maps instrument spellings seen in chart screenshots to their
// canonical symbol. Lookup happens after upper-casing and trimming, so the
// keys are already canonicalized on that axis. The historical one-off mapping
// of bare "USD" to "USDJPY" is deliberately not part of this table.
var tickerAliases = map[string]string{
	"BITCOIN / USD": "BTCUSD",
	"BITCOIN/USD":   "BTCUSD",
	"BTC/USD":       "BTCUSD",
	"ETH/USD":       "ETHUSD",
	"SOL/USD":       "SOLUSD",
}

// StandardizeTicker normalizes an instrument symbol: trims, upper-cases and
// resolves known aliases. Unrecognized tickers pass through unchanged apart
// from the upper-casing, so the function is idempotent.
func StandardizeTicker(ticker string) string {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if canonical, ok := tickerAliases[ticker]; ok {
		return canonical
	}
	return ticker
}
