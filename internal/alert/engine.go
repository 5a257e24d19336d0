package alert

import (
	"fmt"
	"math"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vozzhaevsn/BOT-ITMO/internal/metrics"
	"github.com/vozzhaevsn/BOT-ITMO/internal/types"
)

// Store is the slice of the user repository the engine needs.
type Store interface {
	FindUsersWithTrackedTickers() ([]types.User, error)
	SaveUser(user *types.User) error
}

// Resolver produces a unified price for a symbol, 0.0 when unresolved.
type Resolver interface {
	Resolve(symbol string) float64
}

// Notifier delivers an outbound message, fire-and-forget.
type Notifier interface {
	Notify(chatID int64, text string) error
}

// Engine runs the per-ticker threshold check. One instance is driven by
// the scheduler; a failing ticker or user never aborts the pass.
type Engine struct {
	Store    Store
	Resolver Resolver
	Notifier Notifier
}

// CheckAlerts walks every tracked ticker of every user, compares the
// freshly resolved price against the last observation and sends one
// batched notification per user with all fired alerts.
func (e *Engine) CheckAlerts() {
	log.Debug("🔄 Checking alerts...")

	users, err := e.Store.FindUsersWithTrackedTickers()
	if err != nil {
		log.Errorf("❌ Failed to fetch tracked users: %v", err)
		return
	}

	for i := range users {
		e.checkUser(&users[i])
	}

	log.Debug("✅ Alert check completed.")
}

func (e *Engine) checkUser(user *types.User) {
	var alerts []string
	now := time.Now()

	for i := range user.Tracked {
		ticker := &user.Tracked[i]
		if ticker.Symbol == "" {
			continue
		}

		current := e.Resolver.Resolve(ticker.Symbol)
		if current == 0 {
			// Unresolved this tick: keep the stored observation so the
			// next successful pass compares against real data.
			log.Warnf("⚠️ No price data for ticker: %s", ticker.Symbol)
			continue
		}

		if ticker.LastPrice == nil {
			// First observation only records a baseline.
			ticker.LastPrice = &current
			ticker.UpdatedAt = &now
			continue
		}

		change := math.Abs((current - *ticker.LastPrice) / *ticker.LastPrice * 100)
		if change >= ticker.Threshold {
			alerts = append(alerts, fmt.Sprintf(
				"🚨 %s: %.2f%% (%.2f → %.2f)",
				ticker.Symbol, change, *ticker.LastPrice, current,
			))
		}

		// Always advance the baseline so each tick compares against the
		// immediately preceding observation.
		price := current
		ticker.LastPrice = &price
		ticker.UpdatedAt = &now
	}

	if len(alerts) > 0 {
		text := "🔔 Threshold alerts:\n" + strings.Join(alerts, "\n")
		if err := e.Notifier.Notify(user.TelegramID, text); err != nil {
			log.Errorf("❌ Failed to send alert notification to %d: %v", user.TelegramID, err)
		} else {
			metrics.AlertsSent.Inc()
		}
	}

	if err := e.Store.SaveUser(user); err != nil {
		log.Errorf("❌ Failed to persist tickers for user %d: %v", user.TelegramID, err)
	}
}
