package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/vozzhaevsn/BOT-ITMO/internal/commands"
	"github.com/vozzhaevsn/BOT-ITMO/lib/helpers"
	"github.com/vozzhaevsn/BOT-ITMO/lib/translation"
)

// NewBot creates new telegram bot
func NewBot(c BotConfig, cmds *commands.Commands) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(c.Token)
	if err != nil {
		return nil, errors.Wrap(err, "could not create telegram bot")
	}

	bot.Debug = c.Debug

	return &Bot{
		Bot:      bot,
		Config:   c,
		Commands: cmds,
	}, nil
}

// GetUpdatesChannel gets new updates
func (b *Bot) GetUpdatesChannel() (tgbotapi.UpdatesChannel, error) {
	updatesConfig := tgbotapi.NewUpdate(0)
	if b.Config.UpdatesTimeout > 0 {
		updatesConfig.Timeout = b.Config.UpdatesTimeout
	}
	return b.Bot.GetUpdatesChan(updatesConfig), nil
}

// SendMessage sends a MarkdownV2-formatted command reply
func (b *Bot) SendMessage(m Message) error {
	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	msg.ReplyToMessageID = m.MessageID
	msg.DisableWebPagePreview = true
	msg.ParseMode = "MarkdownV2"
	_, err := b.Bot.Send(msg)
	return errors.Wrapf(err, "could not send message: %v", m)
}

// Notify sends a plain-text notification. The engines use this for alert
// and digest delivery; a failure is logged by the caller, never surfaced
// into engine state.
func (b *Bot) Notify(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	_, err := b.Bot.Send(msg)
	return errors.Wrapf(err, "could not notify chat %d", chatID)
}

// HandleUpdate processes Telegram commands and returns the reply text
func (b *Bot) HandleUpdate(u tgbotapi.Update) string {
	text := helpers.EscapeMarkdownV2(translation.Translate(helpMessage))
	log.Debugf("received command: %s", u.Message.Command())

	chatID := u.Message.Chat.ID

	switch u.Message.Command() {
	case "start":
		text = helpers.EscapeMarkdownV2(translation.Translate(
			"📈 Finance bot is ready!\nUse /help for the command list"))
	case "help":
		text = helpers.EscapeMarkdownV2(translation.Translate(helpMessage))
	case "stock":
		text = b.Commands.Quote(u.Message.CommandArguments())
	case "track":
		text = b.Commands.Track(chatID, u.Message.CommandArguments())
	case "subscriptions":
		b.sendSubscriptionKeyboard(chatID)
		return ""
	}

	return text
}

const helpMessage = "📋 Available commands:\n\n" +
	"• /stock <ticker> - current quotes\n" +
	"• /track <ticker> [threshold%] - price move alerts\n" +
	"• /track <ticker> remove - stop tracking\n" +
	"• /track list - your tracked tickers\n" +
	"• /subscriptions - daily digest categories"

// sendSubscriptionKeyboard shows the category toggle buttons.
func (b *Bot) sendSubscriptionKeyboard(chatID int64) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(translation.Translate("Crypto"), "crypto"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(translation.Translate("Stocks"), "stocks"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(translation.Translate("News"), "news"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, translation.Translate("🔔 Pick categories for the daily digest:"))
	msg.ReplyMarkup = keyboard
	if _, err := b.Bot.Send(msg); err != nil {
		log.Error("Failed to send subscription keyboard: ", err)
	}
}

// HandleCallbackQuery toggles a digest category picked on the inline
// keyboard.
func (b *Bot) HandleCallbackQuery(callbackQuery *tgbotapi.CallbackQuery) {
	category := callbackQuery.Data
	chatID := callbackQuery.Message.Chat.ID

	if !commands.ValidCategory(category) {
		b.Bot.Send(tgbotapi.NewCallback(callbackQuery.ID, translation.Translate("Unknown action. Please try again.")))
		return
	}

	enabled, err := b.Commands.ToggleSubscription(chatID, category)
	if err != nil {
		log.Error("Failed to toggle subscription: ", err)
		b.Bot.Send(tgbotapi.NewCallback(callbackQuery.ID, translation.Translate("Failed to update subscription. Please try again later.")))
		return
	}

	state := translation.Translate("enabled")
	if !enabled {
		state = translation.Translate("disabled")
	}

	edit := tgbotapi.NewEditMessageText(chatID, callbackQuery.Message.MessageID,
		fmt.Sprintf(translation.Translate("Subscription to '%s' is now %s."), category, state))
	if _, err := b.Bot.Send(edit); err != nil {
		log.Error("Failed to edit subscription message: ", err)
	}

	b.Bot.Send(tgbotapi.NewCallback(callbackQuery.ID, translation.Translate("Subscription updated.")))
}
