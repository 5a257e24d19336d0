package source

import (
	"encoding/json"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vozzhaevsn/BOT-ITMO/internal/metrics"
)

const moexBaseURL = "https://iss.moex.com"

// MOEX is the fallback equity source (public ISS API, no credentials).
type MOEX struct {
	baseURL string
	client  *http.Client
}

func NewMOEX() *MOEX {
	return &MOEX{
		baseURL: moexBaseURL,
		client:  newHTTPClient(),
	}
}

func (m *MOEX) Name() string { return "MOEX" }

func (m *MOEX) FetchPrice(symbol string) Quote {
	url := fmt.Sprintf("%s/iss/engines/stock/markets/shares/securities/%s.json", m.baseURL, symbol)
	resp, err := m.client.Get(url)
	if err != nil {
		return m.fail(symbol, err)
	}
	defer resp.Body.Close()

	var response struct {
		MarketData struct {
			Columns []string `json:"columns"`
			Data    [][]any  `json:"data"`
		} `json:"marketdata"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return m.fail(symbol, err)
	}

	// ISS returns one row per trading board; LAST is null outside
	// trading hours on some boards, so take the first row that has it.
	lastIdx := -1
	for i, column := range response.MarketData.Columns {
		if column == "LAST" {
			lastIdx = i
			break
		}
	}
	if lastIdx < 0 {
		return m.fail(symbol, fmt.Errorf("no LAST column in response"))
	}

	for _, row := range response.MarketData.Data {
		if lastIdx >= len(row) {
			continue
		}
		if price, ok := row[lastIdx].(float64); ok {
			return goodQuote(m.Name(), symbol, price)
		}
	}
	return m.fail(symbol, fmt.Errorf("no market data for symbol"))
}

func (m *MOEX) fail(symbol string, err error) Quote {
	log.Errorf("❌ MOEX error for %s: %v", symbol, err)
	metrics.FetchFailures.WithLabelValues(m.Name()).Inc()
	return failedQuote(m.Name(), symbol)
}
