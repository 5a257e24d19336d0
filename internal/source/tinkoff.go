package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vozzhaevsn/BOT-ITMO/internal/metrics"
)

const (
	tinkoffBaseURL     = "https://invest-public-api.tinkoff.ru/rest"
	instrumentCacheTTL = time.Hour
)

// Tinkoff is the primary equity source. Symbol lookups go through the
// instruments listing, which is cached because it is large and changes
// rarely; the price itself is fetched per call.
type Tinkoff struct {
	baseURL string
	token   string
	client  *http.Client

	mu           sync.Mutex
	figiBySymbol map[string]string
	cachedAt     time.Time
}

func NewTinkoff(token string) *Tinkoff {
	return &Tinkoff{
		baseURL: tinkoffBaseURL,
		token:   token,
		client:  newHTTPClient(),
	}
}

func (t *Tinkoff) Name() string { return "Tinkoff" }

func (t *Tinkoff) FetchPrice(symbol string) Quote {
	figi, err := t.lookupFIGI(symbol)
	if err != nil {
		return t.fail(symbol, err)
	}

	var response struct {
		LastPrices []struct {
			Price struct {
				Units string `json:"units"`
				Nano  int64  `json:"nano"`
			} `json:"price"`
		} `json:"lastPrices"`
	}
	err = t.post("/tinkoff.public.invest.api.contract.v1.MarketDataService/GetLastPrices",
		map[string]any{"figi": []string{figi}}, &response)
	if err != nil {
		return t.fail(symbol, err)
	}
	if len(response.LastPrices) == 0 {
		return t.fail(symbol, fmt.Errorf("no last price for figi %s", figi))
	}

	price := quotationToFloat(response.LastPrices[0].Price.Units, response.LastPrices[0].Price.Nano)
	return goodQuote(t.Name(), symbol, price)
}

func (t *Tinkoff) lookupFIGI(symbol string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.figiBySymbol == nil || time.Since(t.cachedAt) > instrumentCacheTTL {
		var response struct {
			Instruments []struct {
				Ticker string `json:"ticker"`
				FIGI   string `json:"figi"`
			} `json:"instruments"`
		}
		err := t.post("/tinkoff.public.invest.api.contract.v1.InstrumentsService/Shares",
			map[string]any{"instrumentStatus": "INSTRUMENT_STATUS_BASE"}, &response)
		if err != nil {
			return "", err
		}

		t.figiBySymbol = make(map[string]string, len(response.Instruments))
		for _, instrument := range response.Instruments {
			t.figiBySymbol[strings.ToUpper(instrument.Ticker)] = instrument.FIGI
		}
		t.cachedAt = time.Now()
	}

	figi, ok := t.figiBySymbol[strings.ToUpper(symbol)]
	if !ok {
		return "", fmt.Errorf("unknown ticker %s", symbol)
	}
	return figi, nil
}

func (t *Tinkoff) post(path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (t *Tinkoff) fail(symbol string, err error) Quote {
	log.Errorf("❌ Tinkoff error for %s: %v", symbol, err)
	metrics.FetchFailures.WithLabelValues(t.Name()).Inc()
	return failedQuote(t.Name(), symbol)
}

// quotationToFloat converts the API's units/nano money representation.
func quotationToFloat(units string, nano int64) float64 {
	whole, _ := strconv.ParseFloat(units, 64)
	return whole + float64(nano)/1e9
}
