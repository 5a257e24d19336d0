package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/vozzhaevsn/BOT-ITMO/internal/types"
	"github.com/vozzhaevsn/BOT-ITMO/lib/helpers"
	"github.com/vozzhaevsn/BOT-ITMO/lib/translation"
)

const defaultThreshold = 5.0

// Track adds, updates or removes a tracked ticker. The literal argument
// "remove" after the symbol deletes the entry; "list" shows the current
// tracking list.
func (c *Commands) Track(telegramID int64, args string) string {
	log.Debugf("processing command /track with arguments: %s", args)

	fields := strings.Fields(args)
	if len(fields) == 0 {
		return trackUsage()
	}

	if strings.EqualFold(fields[0], "list") {
		return c.TrackList(telegramID)
	}

	symbol := strings.ToUpper(fields[0])

	if len(fields) > 1 && strings.EqualFold(fields[1], "remove") {
		return c.untrack(telegramID, symbol)
	}

	threshold := defaultThreshold
	if len(fields) > 1 {
		parsed, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || parsed <= 0 {
			return trackUsage()
		}
		threshold = parsed
	}

	currentPrice := c.Resolver.Resolve(symbol)
	if currentPrice == 0 {
		log.Warnf("could not resolve price for %s", symbol)
		return helpers.EscapeMarkdownV2(translation.Translate("⚠️ Could not retrieve the current price. Check the symbol."))
	}

	user, err := c.loadOrCreateUser(telegramID)
	if err != nil {
		log.Error(err)
		return helpers.EscapeMarkdownV2(translation.Translate("⚠️ Something went wrong. Try again later."))
	}

	now := time.Now()
	if i := user.FindTicker(symbol); i >= 0 {
		user.Tracked[i].Threshold = threshold
		user.Tracked[i].LastPrice = &currentPrice
		user.Tracked[i].UpdatedAt = &now
	} else {
		user.Tracked = append(user.Tracked, types.TrackedTicker{
			Symbol:    symbol,
			Threshold: threshold,
			LastPrice: &currentPrice,
			AddedAt:   now,
		})
	}

	if err := c.Repo.SaveUser(user); err != nil {
		log.Errorf("failed to save tracking list for %d: %v", telegramID, err)
		return helpers.EscapeMarkdownV2(translation.Translate("⚠️ Something went wrong. Try again later."))
	}

	return fmt.Sprintf(
		"✅ Now tracking *%s*\n▫️ Current price: %s\n▫️ Alert threshold: %s",
		symbol,
		helpers.FormatPriceUS(currentPrice, true),
		helpers.EscapeMarkdownV2(helpers.FormatPercentage(threshold)),
	)
}

// untrack removes the symbol; removing an untracked symbol is not an error.
func (c *Commands) untrack(telegramID int64, symbol string) string {
	user, err := c.loadOrCreateUser(telegramID)
	if err != nil {
		log.Error(err)
		return helpers.EscapeMarkdownV2(translation.Translate("⚠️ Something went wrong. Try again later."))
	}

	if i := user.FindTicker(symbol); i >= 0 {
		user.Tracked = append(user.Tracked[:i], user.Tracked[i+1:]...)
		if err := c.Repo.SaveUser(user); err != nil {
			log.Errorf("failed to save tracking list for %d: %v", telegramID, err)
			return helpers.EscapeMarkdownV2(translation.Translate("⚠️ Something went wrong. Try again later."))
		}
	}

	return fmt.Sprintf("🗑 Stopped tracking *%s*", symbol)
}

// TrackList renders the user's tracking list with humanized timestamps.
func (c *Commands) TrackList(telegramID int64) string {
	user, err := c.loadOrCreateUser(telegramID)
	if err != nil {
		log.Error(err)
		return helpers.EscapeMarkdownV2(translation.Translate("⚠️ Something went wrong. Try again later."))
	}

	if len(user.Tracked) == 0 {
		return helpers.EscapeMarkdownV2(translation.Translate("You are not tracking any tickers yet."))
	}

	var list strings.Builder
	list.WriteString("*Tracked tickers:*\n")
	for _, ticker := range user.Tracked {
		lastPrice := translation.Translate("no data yet")
		if ticker.LastPrice != nil {
			lastPrice = helpers.FormatPriceUS(*ticker.LastPrice, false)
		}

		updated := ticker.AddedAt
		if ticker.UpdatedAt != nil {
			updated = *ticker.UpdatedAt
		}

		list.WriteString(fmt.Sprintf(
			"▫️ *%s*: threshold %s, last price %s, updated %s\n",
			ticker.Symbol,
			helpers.EscapeMarkdownV2(helpers.FormatPercentage(ticker.Threshold)),
			helpers.EscapeMarkdownV2(lastPrice),
			helpers.EscapeMarkdownV2(humanize.Time(updated)),
		))
	}
	return list.String()
}

func trackUsage() string {
	return helpers.EscapeMarkdownV2(translation.Translate(
		"Usage: /track <ticker> [threshold%]\n" +
			"Example: /track BTCUSDT 5 - notify on 5% price moves\n" +
			"/track <ticker> remove - stop tracking\n" +
			"/track list - show tracked tickers"))
}
