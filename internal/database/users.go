package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vozzhaevsn/BOT-ITMO/internal/types"
)

// FindUserByTelegramID fetches a single user record, nil if none exists.
func (db *DB) FindUserByTelegramID(telegramID int64) (*types.User, error) {
	query := `SELECT id, telegram_id, subscriptions, tracked_tickers, created_at FROM users WHERE telegram_id = ?;`

	user, err := scanUser(db.conn.QueryRow(query, telegramID))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to query user %d: %w", telegramID, err)
	}
	return user, nil
}

// FindUsersWithAnySubscription returns users with at least one digest
// category enabled.
func (db *DB) FindUsersWithAnySubscription() ([]types.User, error) {
	users, err := db.queryUsers(`SELECT id, telegram_id, subscriptions, tracked_tickers, created_at FROM users WHERE subscriptions != '{}';`)
	if err != nil {
		return nil, err
	}

	subscribed := users[:0]
	for _, u := range users {
		for _, enabled := range u.Subscriptions {
			if enabled {
				subscribed = append(subscribed, u)
				break
			}
		}
	}
	return subscribed, nil
}

// FindUsersWithTrackedTickers returns users with a non-empty tracking list.
func (db *DB) FindUsersWithTrackedTickers() ([]types.User, error) {
	return db.queryUsers(`SELECT id, telegram_id, subscriptions, tracked_tickers, created_at FROM users WHERE tracked_tickers != '[]';`)
}

// SaveUser upserts the user's subscriptions and tracking list keyed by
// telegram id.
func (db *DB) SaveUser(user *types.User) error {
	subs, err := json.Marshal(user.Subscriptions)
	if err != nil {
		return fmt.Errorf("failed to encode subscriptions: %w", err)
	}
	tracked, err := json.Marshal(user.Tracked)
	if err != nil {
		return fmt.Errorf("failed to encode tracked tickers: %w", err)
	}
	if user.Tracked == nil {
		tracked = []byte("[]")
	}

	query := `
	INSERT INTO users (telegram_id, subscriptions, tracked_tickers)
	VALUES (?, ?, ?)
	ON CONFLICT(telegram_id) DO UPDATE SET
		subscriptions = excluded.subscriptions,
		tracked_tickers = excluded.tracked_tickers;`

	if _, err := db.conn.Exec(query, user.TelegramID, string(subs), string(tracked)); err != nil {
		return fmt.Errorf("failed to save user %d: %w", user.TelegramID, err)
	}
	return nil
}

func (db *DB) queryUsers(query string) ([]types.User, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*types.User, error) {
	var (
		user    types.User
		subs    string
		tracked string
	)
	if err := row.Scan(&user.ID, &user.TelegramID, &subs, &tracked, &user.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(subs), &user.Subscriptions); err != nil {
		return nil, fmt.Errorf("failed to decode subscriptions: %w", err)
	}
	if err := json.Unmarshal([]byte(tracked), &user.Tracked); err != nil {
		return nil, fmt.Errorf("failed to decode tracked tickers: %w", err)
	}
	return &user, nil
}
