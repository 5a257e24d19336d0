package types

import "time"

// Subscription category names used across the bot.
const (
	CategoryCrypto = "crypto"
	CategoryStocks = "stocks"
	CategoryNews   = "news"
)

// Subscriptions maps a category name to its enabled flag. Missing
// categories count as disabled.
type Subscriptions map[string]bool

// TrackedTicker is one entry of a user's tracking list. LastPrice is nil
// until the first successful price observation.
type TrackedTicker struct {
	Symbol    string     `json:"ticker"`
	Threshold float64    `json:"threshold"`
	LastPrice *float64   `json:"last_price,omitempty"`
	AddedAt   time.Time  `json:"added_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// User holds everything the engines need to know about one Telegram user.
type User struct {
	ID            int64           `json:"id"`
	TelegramID    int64           `json:"telegram_id"`
	Subscriptions Subscriptions   `json:"subscriptions"`
	Tracked       []TrackedTicker `json:"tracked_tickers"`
	CreatedAt     string          `json:"created_at"`
}

// NewUser creates a user record with default (all disabled) subscriptions.
func NewUser(telegramID int64) *User {
	return &User{
		TelegramID: telegramID,
		Subscriptions: Subscriptions{
			CategoryCrypto: false,
			CategoryStocks: false,
			CategoryNews:   false,
		},
	}
}

// FindTicker returns the index of symbol in the tracking list, or -1.
func (u *User) FindTicker(symbol string) int {
	for i := range u.Tracked {
		if u.Tracked[i].Symbol == symbol {
			return i
		}
	}
	return -1
}
