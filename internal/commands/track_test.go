package commands

import (
	"strings"
	"testing"
	"time"

	"github.com/vozzhaevsn/BOT-ITMO/internal/source"
	"github.com/vozzhaevsn/BOT-ITMO/internal/types"
)

type fakeRepo struct {
	users map[int64]*types.User
	saved []*types.User
}

func newFakeRepo() *fakeRepo { return &fakeRepo{users: make(map[int64]*types.User)} }

func (r *fakeRepo) FindUserByTelegramID(telegramID int64) (*types.User, error) {
	user, ok := r.users[telegramID]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *fakeRepo) SaveUser(user *types.User) error {
	copied := *user
	r.users[user.TelegramID] = &copied
	r.saved = append(r.saved, &copied)
	return nil
}

type fakeResolver struct {
	prices map[string]float64
	quotes []source.Quote
}

func (f *fakeResolver) Resolve(symbol string) float64 { return f.prices[symbol] }

func (f *fakeResolver) DisplayQuotes(symbol string) []source.Quote { return f.quotes }

func (f *fakeResolver) IsCrypto(symbol string) bool {
	for _, suffix := range []string{"USDT", "BTC", "ETH"} {
		if strings.HasSuffix(symbol, suffix) {
			return true
		}
	}
	return false
}

func newCommands(repo *fakeRepo, res *fakeResolver) *Commands {
	return &Commands{Repo: repo, Resolver: res}
}

func TestTrackNoArgumentsShowsUsage(t *testing.T) {
	c := newCommands(newFakeRepo(), &fakeResolver{})
	reply := c.Track(1, "")
	if !strings.Contains(reply, "Usage") {
		t.Errorf("expected usage text, got %q", reply)
	}
}

func TestTrackAddsTickerWithDefaultThreshold(t *testing.T) {
	repo := newFakeRepo()
	c := newCommands(repo, &fakeResolver{prices: map[string]float64{"BTCUSDT": 50000.0}})

	reply := c.Track(1, "btcusdt")

	if !strings.Contains(reply, "Now tracking") || !strings.Contains(reply, "BTCUSDT") {
		t.Errorf("unexpected ack: %q", reply)
	}

	user := repo.users[1]
	if user == nil || len(user.Tracked) != 1 {
		t.Fatalf("expected 1 tracked ticker, got %+v", user)
	}
	ticker := user.Tracked[0]
	if ticker.Symbol != "BTCUSDT" {
		t.Errorf("symbol = %q, want normalized BTCUSDT", ticker.Symbol)
	}
	if ticker.Threshold != 5.0 {
		t.Errorf("threshold = %f, want default 5.0", ticker.Threshold)
	}
	if ticker.LastPrice == nil || *ticker.LastPrice != 50000.0 {
		t.Errorf("lastPrice = %v, want 50000.0", ticker.LastPrice)
	}
	if ticker.AddedAt.IsZero() {
		t.Error("addedAt must be set at creation")
	}
}

func TestTrackExplicitThreshold(t *testing.T) {
	repo := newFakeRepo()
	c := newCommands(repo, &fakeResolver{prices: map[string]float64{"BTCUSDT": 50000.0}})

	c.Track(1, "BTCUSDT 7.5")

	if got := repo.users[1].Tracked[0].Threshold; got != 7.5 {
		t.Errorf("threshold = %f, want 7.5", got)
	}
}

func TestTrackInvalidThresholdShowsUsage(t *testing.T) {
	repo := newFakeRepo()
	c := newCommands(repo, &fakeResolver{prices: map[string]float64{"BTCUSDT": 50000.0}})

	for _, args := range []string{"BTCUSDT abc", "BTCUSDT -3", "BTCUSDT 0"} {
		if reply := c.Track(1, args); !strings.Contains(reply, "Usage") {
			t.Errorf("Track(%q) = %q, want usage text", args, reply)
		}
	}
	if len(repo.saved) != 0 {
		t.Error("invalid input must not persist anything")
	}
}

func TestTrackSameSymbolTwiceUpdatesInPlace(t *testing.T) {
	repo := newFakeRepo()
	res := &fakeResolver{prices: map[string]float64{"BTCUSDT": 50000.0}}
	c := newCommands(repo, res)

	c.Track(1, "BTCUSDT 5")
	added := repo.users[1].Tracked[0].AddedAt

	res.prices["BTCUSDT"] = 51000.0
	c.Track(1, "BTCUSDT 10")

	user := repo.users[1]
	if len(user.Tracked) != 1 {
		t.Fatalf("expected single entry after re-track, got %d", len(user.Tracked))
	}
	ticker := user.Tracked[0]
	if ticker.Threshold != 10.0 {
		t.Errorf("threshold = %f, want updated 10.0", ticker.Threshold)
	}
	if ticker.LastPrice == nil || *ticker.LastPrice != 51000.0 {
		t.Errorf("lastPrice = %v, want refreshed 51000.0", ticker.LastPrice)
	}
	if !ticker.AddedAt.Equal(added) {
		t.Error("addedAt must be immutable on update")
	}
	if ticker.UpdatedAt == nil {
		t.Error("updatedAt must be set on update")
	}
}

func TestTrackUnresolvedPriceRejected(t *testing.T) {
	repo := newFakeRepo()
	c := newCommands(repo, &fakeResolver{prices: map[string]float64{}})

	reply := c.Track(1, "NOSUCH")
	if !strings.Contains(reply, "Check the symbol") {
		t.Errorf("expected symbol hint, got %q", reply)
	}
	if len(repo.saved) != 0 {
		t.Error("unresolved symbol must not be tracked")
	}
}

func TestTrackRemoveDeletesTicker(t *testing.T) {
	repo := newFakeRepo()
	now := time.Now()
	repo.users[1] = &types.User{
		TelegramID: 1,
		Tracked: []types.TrackedTicker{
			{Symbol: "BTCUSDT", Threshold: 5.0, AddedAt: now},
			{Symbol: "ETHUSDT", Threshold: 5.0, AddedAt: now},
		},
	}
	c := newCommands(repo, &fakeResolver{})

	reply := c.Track(1, "BTCUSDT remove")

	if !strings.Contains(reply, "Stopped tracking") {
		t.Errorf("unexpected reply: %q", reply)
	}
	user := repo.users[1]
	if len(user.Tracked) != 1 || user.Tracked[0].Symbol != "ETHUSDT" {
		t.Errorf("remaining tickers wrong: %+v", user.Tracked)
	}
}

func TestTrackRemoveMissingTickerIsNoop(t *testing.T) {
	repo := newFakeRepo()
	c := newCommands(repo, &fakeResolver{})

	reply := c.Track(1, "BTCUSDT remove")

	if !strings.Contains(reply, "Stopped tracking") {
		t.Errorf("removing an untracked symbol must not error, got %q", reply)
	}
}

func TestTrackListEmpty(t *testing.T) {
	c := newCommands(newFakeRepo(), &fakeResolver{})
	reply := c.Track(1, "list")
	if !strings.Contains(reply, "not tracking") {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestTrackListShowsEntries(t *testing.T) {
	repo := newFakeRepo()
	last := 50000.0
	now := time.Now().Add(-10 * time.Minute)
	repo.users[1] = &types.User{
		TelegramID: 1,
		Tracked: []types.TrackedTicker{
			{Symbol: "BTCUSDT", Threshold: 5.0, LastPrice: &last, AddedAt: now, UpdatedAt: &now},
		},
	}
	c := newCommands(repo, &fakeResolver{})

	reply := c.Track(1, "list")

	if !strings.Contains(reply, "BTCUSDT") {
		t.Errorf("list missing symbol: %q", reply)
	}
	if !strings.Contains(reply, "minutes ago") {
		t.Errorf("list missing humanized timestamp: %q", reply)
	}
}
