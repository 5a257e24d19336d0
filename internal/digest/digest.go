package digest

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vozzhaevsn/BOT-ITMO/internal/metrics"
	"github.com/vozzhaevsn/BOT-ITMO/internal/source"
	"github.com/vozzhaevsn/BOT-ITMO/internal/types"
)

// Store is the slice of the user repository the engine needs.
type Store interface {
	FindUsersWithAnySubscription() ([]types.User, error)
}

// Notifier delivers an outbound message, fire-and-forget.
type Notifier interface {
	Notify(chatID int64, text string) error
}

// Engine composes the once-daily summary. Each subscribed category is
// represented by one benchmark instrument fetched from that category's
// dedicated source, not through the generic resolver.
type Engine struct {
	Store    Store
	Notifier Notifier

	Crypto          source.Source
	Stocks          source.Source
	CryptoBenchmark string
	StocksBenchmark string
}

// SendDailyDigest sends one summary message per subscribed user. Users
// whose categories all fail to produce a line get no message at all.
func (e *Engine) SendDailyDigest() {
	log.Debug("🔄 Sending daily digest...")

	users, err := e.Store.FindUsersWithAnySubscription()
	if err != nil {
		log.Errorf("❌ Failed to fetch subscribed users: %v", err)
		return
	}

	for _, user := range users {
		lines := e.composeLines(user.Subscriptions)
		if len(lines) == 0 {
			continue
		}

		text := "📰 Daily digest:\n" + strings.Join(lines, "\n")
		if err := e.Notifier.Notify(user.TelegramID, text); err != nil {
			log.Errorf("❌ Failed to send digest to %d: %v", user.TelegramID, err)
			continue
		}
		metrics.DigestsSent.Inc()
	}

	log.Debug("✅ Daily digest completed.")
}

func (e *Engine) composeLines(subs types.Subscriptions) []string {
	var lines []string

	if subs[types.CategoryCrypto] {
		if quote := e.Crypto.FetchPrice(e.CryptoBenchmark); quote.OK && quote.Price != 0 {
			lines = append(lines, fmt.Sprintf("₿ Bitcoin: $%.2f", quote.Price))
		} else {
			log.Errorf("❌ Failed to fetch %s for digest", e.CryptoBenchmark)
		}
	}

	if subs[types.CategoryStocks] {
		if quote := e.Stocks.FetchPrice(e.StocksBenchmark); quote.OK && quote.Price != 0 {
			lines = append(lines, fmt.Sprintf("🏦 Sberbank: %.2f RUB", quote.Price))
		} else {
			log.Errorf("❌ Failed to fetch %s for digest", e.StocksBenchmark)
		}
	}

	// The news category has no representative instrument, it only gates
	// the separate news delivery pipeline.
	return lines
}
