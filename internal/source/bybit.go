package source

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/vozzhaevsn/BOT-ITMO/internal/metrics"
)

const bybitBaseURL = "https://api.bybit.com"

// Bybit is the secondary crypto source, queried for display only.
type Bybit struct {
	baseURL string
	client  *http.Client
}

func NewBybit() *Bybit {
	return &Bybit{
		baseURL: bybitBaseURL,
		client:  newHTTPClient(),
	}
}

func (b *Bybit) Name() string { return "Bybit" }

func (b *Bybit) FetchPrice(symbol string) Quote {
	resp, err := b.client.Get(fmt.Sprintf("%s/v5/market/tickers?category=spot&symbol=%s", b.baseURL, symbol))
	if err != nil {
		return b.fail(symbol, err)
	}
	defer resp.Body.Close()

	var response struct {
		RetCode int    `json:"retCode"`
		RetMsg  string `json:"retMsg"`
		Result  struct {
			List []struct {
				Symbol    string `json:"symbol"`
				LastPrice string `json:"lastPrice"`
			} `json:"list"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return b.fail(symbol, err)
	}

	if response.RetCode != 0 {
		return b.fail(symbol, fmt.Errorf("api error %d: %s", response.RetCode, response.RetMsg))
	}
	if len(response.Result.List) == 0 {
		return b.fail(symbol, fmt.Errorf("symbol not found"))
	}

	price, err := strconv.ParseFloat(response.Result.List[0].LastPrice, 64)
	if err != nil {
		return b.fail(symbol, err)
	}
	return goodQuote(b.Name(), symbol, price)
}

func (b *Bybit) fail(symbol string, err error) Quote {
	log.Errorf("❌ Bybit error for %s: %v", symbol, err)
	metrics.FetchFailures.WithLabelValues(b.Name()).Inc()
	return failedQuote(b.Name(), symbol)
}
