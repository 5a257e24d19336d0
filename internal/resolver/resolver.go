package resolver

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vozzhaevsn/BOT-ITMO/internal/source"
)

// Resolver routes a symbol to its asset-class adapter chain and returns
// the first usable price. 0.0 means resolution failed everywhere.
type Resolver struct {
	cryptoSuffixes []string
	cryptoChain    []source.Source
	equityChain    []source.Source
}

type Config struct {
	// CryptoSuffixes are quote-currency endings that mark a symbol as
	// crypto (e.g. USDT, BTC, ETH).
	CryptoSuffixes []string
	// CryptoChain holds crypto adapters, primary first. Only the primary
	// participates in resolution; the rest are display sources.
	CryptoChain []source.Source
	// EquityChain holds equity adapters in fallback order.
	EquityChain []source.Source
}

func New(cfg Config) *Resolver {
	return &Resolver{
		cryptoSuffixes: cfg.CryptoSuffixes,
		cryptoChain:    cfg.CryptoChain,
		equityChain:    cfg.EquityChain,
	}
}

// IsCrypto reports whether the symbol routes to the crypto chain.
func (r *Resolver) IsCrypto(symbol string) bool {
	for _, suffix := range r.cryptoSuffixes {
		if strings.HasSuffix(symbol, suffix) {
			return true
		}
	}
	return false
}

// Resolve returns the unified price for a symbol, or 0.0 when every
// adapter in the routed chain failed.
func (r *Resolver) Resolve(symbol string) float64 {
	if r.IsCrypto(symbol) {
		if len(r.cryptoChain) == 0 {
			return 0.0
		}
		// The primary crypto source alone defines the unified price;
		// secondary crypto sources are display-only.
		return resolveChain(symbol, r.cryptoChain[:1])
	}
	return resolveChain(symbol, r.equityChain)
}

// DisplayQuotes queries every adapter of the symbol's asset class
// independently, for side-by-side display.
func (r *Resolver) DisplayQuotes(symbol string) []source.Quote {
	chain := r.equityChain
	if r.IsCrypto(symbol) {
		chain = r.cryptoChain
	}

	quotes := make([]source.Quote, 0, len(chain))
	for _, s := range chain {
		quotes = append(quotes, s.FetchPrice(symbol))
	}
	return quotes
}

func resolveChain(symbol string, chain []source.Source) float64 {
	for _, s := range chain {
		quote := s.FetchPrice(symbol)
		if quote.OK && quote.Price != 0 {
			return quote.Price
		}
		log.Debugf("source %s could not resolve %s, trying next", s.Name(), symbol)
	}
	return 0.0
}
