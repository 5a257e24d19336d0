package commands

import (
	"github.com/pkg/errors"

	"github.com/vozzhaevsn/BOT-ITMO/internal/source"
	"github.com/vozzhaevsn/BOT-ITMO/internal/types"
)

// Repo is the user repository slice the command handlers need.
type Repo interface {
	FindUserByTelegramID(telegramID int64) (*types.User, error)
	SaveUser(user *types.User) error
}

// Resolver routes symbols to price sources.
type Resolver interface {
	Resolve(symbol string) float64
	DisplayQuotes(symbol string) []source.Quote
	IsCrypto(symbol string) bool
}

// Commands implements the user-facing command logic. The transport layer
// routes parsed command arguments here and sends back whatever text the
// handlers return.
type Commands struct {
	Repo     Repo
	Resolver Resolver
}

// loadOrCreateUser returns the user record for a chat, creating a fresh
// one with default subscriptions on first contact.
func (c *Commands) loadOrCreateUser(telegramID int64) (*types.User, error) {
	user, err := c.Repo.FindUserByTelegramID(telegramID)
	if err != nil {
		return nil, errors.Wrap(err, "could not load user")
	}
	if user == nil {
		user = types.NewUser(telegramID)
	}
	return user, nil
}
