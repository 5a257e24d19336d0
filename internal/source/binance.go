package source

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/vozzhaevsn/BOT-ITMO/internal/metrics"
)

const binanceBaseURL = "https://api.binance.com"

// Binance is the primary crypto price source.
type Binance struct {
	baseURL string
	client  *http.Client
}

func NewBinance() *Binance {
	return &Binance{
		baseURL: binanceBaseURL,
		client:  newHTTPClient(),
	}
}

func (b *Binance) Name() string { return "Binance" }

func (b *Binance) FetchPrice(symbol string) Quote {
	resp, err := b.client.Get(fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", b.baseURL, symbol))
	if err != nil {
		return b.fail(symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return b.fail(symbol, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var ticker struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ticker); err != nil {
		return b.fail(symbol, err)
	}

	price, err := strconv.ParseFloat(ticker.Price, 64)
	if err != nil {
		return b.fail(symbol, err)
	}
	return goodQuote(b.Name(), symbol, price)
}

func (b *Binance) fail(symbol string, err error) Quote {
	log.Errorf("❌ Binance error for %s: %v", symbol, err)
	metrics.FetchFailures.WithLabelValues(b.Name()).Inc()
	return failedQuote(b.Name(), symbol)
}
