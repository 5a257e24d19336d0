package commands

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/vozzhaevsn/BOT-ITMO/internal/types"
)

// ValidCategory reports whether a callback payload names a known digest
// category.
func ValidCategory(category string) bool {
	switch category {
	case types.CategoryCrypto, types.CategoryStocks, types.CategoryNews:
		return true
	}
	return false
}

// ToggleSubscription flips one digest category for a user and returns the
// new state.
func (c *Commands) ToggleSubscription(telegramID int64, category string) (bool, error) {
	if !ValidCategory(category) {
		return false, errors.Errorf("unknown subscription category: %s", category)
	}

	user, err := c.loadOrCreateUser(telegramID)
	if err != nil {
		return false, err
	}

	if user.Subscriptions == nil {
		user.Subscriptions = types.Subscriptions{}
	}
	enabled := !user.Subscriptions[category]
	user.Subscriptions[category] = enabled

	if err := c.Repo.SaveUser(user); err != nil {
		return false, errors.Wrap(err, "could not save subscriptions")
	}

	log.Debugf("subscription %s for user %d is now %t", category, telegramID, enabled)
	return enabled, nil
}
