package source

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBinanceFetchPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "BTCUSDT" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"50000.12"}`))
	}))
	defer server.Close()

	b := NewBinance()
	b.baseURL = server.URL

	quote := b.FetchPrice("BTCUSDT")
	if !quote.OK {
		t.Fatal("expected a successful quote")
	}
	if quote.Price != 50000.12 {
		t.Errorf("price = %f, want 50000.12", quote.Price)
	}
	if quote.Source != "Binance" {
		t.Errorf("source = %q", quote.Source)
	}
}

func TestBinanceFetchPriceFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}},
		{"unparseable price", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"symbol":"BTCUSDT","price":"n/a"}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			b := NewBinance()
			b.baseURL = server.URL

			quote := b.FetchPrice("BTCUSDT")
			if quote.OK || quote.Price != 0 {
				t.Errorf("expected failed zero quote, got %+v", quote)
			}
		})
	}
}

func TestBinanceFetchPriceConnectionRefused(t *testing.T) {
	b := NewBinance()
	b.baseURL = "http://127.0.0.1:1"

	if quote := b.FetchPrice("BTCUSDT"); quote.OK {
		t.Errorf("expected failed quote, got %+v", quote)
	}
}

func TestBybitFetchPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retCode":0,"retMsg":"OK","result":{"list":[{"symbol":"BTCUSDT","lastPrice":"50010.5"}]}}`))
	}))
	defer server.Close()

	b := NewBybit()
	b.baseURL = server.URL

	quote := b.FetchPrice("BTCUSDT")
	if !quote.OK || quote.Price != 50010.5 {
		t.Errorf("quote = %+v, want OK 50010.5", quote)
	}
}

func TestBybitFetchPriceAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retCode":10001,"retMsg":"params error","result":{"list":[]}}`))
	}))
	defer server.Close()

	b := NewBybit()
	b.baseURL = server.URL

	if quote := b.FetchPrice("BTCUSDT"); quote.OK {
		t.Errorf("expected failed quote on api error, got %+v", quote)
	}
}

func TestBybitFetchPriceEmptyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retCode":0,"retMsg":"OK","result":{"list":[]}}`))
	}))
	defer server.Close()

	b := NewBybit()
	b.baseURL = server.URL

	if quote := b.FetchPrice("UNKNOWN"); quote.OK {
		t.Errorf("expected failed quote for unknown symbol, got %+v", quote)
	}
}

func TestMOEXFetchPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"marketdata":{"columns":["SECID","BOARDID","LAST"],"data":[["SBER","SMAL",null],["SBER","TQBR",309.25]]}}`))
	}))
	defer server.Close()

	m := NewMOEX()
	m.baseURL = server.URL

	quote := m.FetchPrice("SBER")
	if !quote.OK || quote.Price != 309.25 {
		t.Errorf("quote = %+v, want OK 309.25 from the first row with data", quote)
	}
}

func TestMOEXFetchPriceNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"marketdata":{"columns":["SECID","LAST"],"data":[["NOSUCH",null]]}}`))
	}))
	defer server.Close()

	m := NewMOEX()
	m.baseURL = server.URL

	if quote := m.FetchPrice("NOSUCH"); quote.OK {
		t.Errorf("expected failed quote, got %+v", quote)
	}
}

func TestTinkoffFetchPrice(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tinkoff.public.invest.api.contract.v1.InstrumentsService/Shares",
		func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer test-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"instruments":[{"ticker":"SBER","figi":"BBG004730N88"}]}`))
		})
	mux.HandleFunc("/tinkoff.public.invest.api.contract.v1.MarketDataService/GetLastPrices",
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"lastPrices":[{"price":{"units":"309","nano":250000000}}]}`))
		})
	server := httptest.NewServer(mux)
	defer server.Close()

	tk := NewTinkoff("test-token")
	tk.baseURL = server.URL

	quote := tk.FetchPrice("sber")
	if !quote.OK {
		t.Fatalf("expected a successful quote, got %+v", quote)
	}
	if quote.Price != 309.25 {
		t.Errorf("price = %f, want 309.25", quote.Price)
	}
}

func TestTinkoffFetchPriceUnknownTicker(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tinkoff.public.invest.api.contract.v1.InstrumentsService/Shares",
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"instruments":[{"ticker":"SBER","figi":"BBG004730N88"}]}`))
		})
	server := httptest.NewServer(mux)
	defer server.Close()

	tk := NewTinkoff("test-token")
	tk.baseURL = server.URL

	if quote := tk.FetchPrice("NOSUCH"); quote.OK {
		t.Errorf("expected failed quote, got %+v", quote)
	}
}

func TestQuotationToFloat(t *testing.T) {
	tests := []struct {
		units string
		nano  int64
		want  float64
	}{
		{"309", 250000000, 309.25},
		{"0", 500000000, 0.5},
		{"100", 0, 100.0},
	}

	for _, tt := range tests {
		if got := quotationToFloat(tt.units, tt.nano); got != tt.want {
			t.Errorf("quotationToFloat(%s, %d) = %f, want %f", tt.units, tt.nano, got, tt.want)
		}
	}
}
