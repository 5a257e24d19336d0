package commands

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vozzhaevsn/BOT-ITMO/lib/helpers"
	"github.com/vozzhaevsn/BOT-ITMO/lib/translation"
)

// Quote shows the current price of one instrument from every provider of
// its asset class side by side. Read-only, tracking state is untouched.
func (c *Commands) Quote(args string) string {
	log.Debugf("processing command /stock with arguments: %s", args)

	fields := strings.Fields(args)
	if len(fields) == 0 {
		return helpers.EscapeMarkdownV2(translation.Translate(
			"Usage: /stock <ticker>\n" +
				"/stock BTCUSDT - crypto (Binance/Bybit)\n" +
				"/stock SBER - equities (Tinkoff/MOEX)"))
	}

	symbol := strings.ToUpper(fields[0])
	crypto := c.Resolver.IsCrypto(symbol)

	var lines []string
	for _, quote := range c.Resolver.DisplayQuotes(symbol) {
		if !quote.OK || quote.Price == 0 {
			continue
		}
		if crypto {
			lines = append(lines, fmt.Sprintf("▫️ %s: $%s", quote.Source, helpers.FormatPriceUS(quote.Price, true)))
		} else {
			lines = append(lines, fmt.Sprintf("▫️ %s: %s RUB", quote.Source, helpers.FormatPriceUS(quote.Price, true)))
		}
	}

	if len(lines) == 0 {
		return helpers.EscapeMarkdownV2(translation.Translate("⚠️ Could not retrieve the current price. Check the symbol."))
	}

	return fmt.Sprintf("📊 *%s*\n%s", symbol, strings.Join(lines, "\n"))
}
