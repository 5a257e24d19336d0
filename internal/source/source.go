package source

import (
	"net/http"
	"time"
)

// upstreamTimeout bounds every adapter call so a hung provider cannot
// stall a whole scheduler tick.
const upstreamTimeout = 10 * time.Second

// Quote is the result of one upstream price lookup. OK is false when the
// provider failed or does not know the symbol; in that case Price is 0.
// The resolver layer still treats a literal zero price as "no data", so a
// zero-priced-but-listed instrument is indistinguishable from a miss.
type Quote struct {
	Symbol string
	Price  float64
	Source string
	OK     bool
}

// Source is a single upstream market-data provider. FetchPrice never
// returns an error: provider-level failures are swallowed, logged and
// reported as a failed Quote so one broken upstream cannot unwind a batch.
type Source interface {
	Name() string
	FetchPrice(symbol string) Quote
}

func failedQuote(name, symbol string) Quote {
	return Quote{Symbol: symbol, Source: name}
}

func goodQuote(name, symbol string, price float64) Quote {
	return Quote{Symbol: symbol, Source: name, Price: price, OK: true}
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: upstreamTimeout}
}
