// Package leaderboard ranks accounts by balance. The projection may be
// served from a cache; it is never used for reward decisions.
package leaderboard

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"server-tonix-app/internal/app/metrics"
	"server-tonix-app/internal/app/notify"
	"server-tonix-app/internal/dao"
	"server-tonix-app/internal/model"
)

// Cache stores the latest ranking. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context) ([]model.LeaderboardEntry, bool, error)
	Set(ctx context.Context, entries []model.LeaderboardEntry) error
	Invalidate(ctx context.Context) error
}

type Board struct {
	q     dao.Querier
	size  int
	cache Cache
}

// New builds a board of the given size. cache may be nil.
func New(q dao.Querier, size int, cache Cache) *Board {
	return &Board{q: q, size: size, cache: cache}
}

// Rank numbers accounts already ordered by balance desc, creation asc.
func Rank(accounts []model.Account) []model.LeaderboardEntry {
	out := make([]model.LeaderboardEntry, 0, len(accounts))
	for i, a := range accounts {
		out = append(out, model.LeaderboardEntry{
			Rank:         i + 1,
			AccountID:    a.ID,
			Name:         a.DisplayName(),
			PhotoURL:     a.PhotoURL,
			TotalBalance: a.TotalBalance,
		})
	}
	return out
}

// Top serves the cached ranking when there is one and rebuilds it otherwise.
func (b *Board) Top(ctx context.Context) ([]model.LeaderboardEntry, error) {
	if b.cache != nil {
		entries, ok, err := b.cache.Get(ctx)
		if err != nil {
			log.Warnf("read leaderboard cache: %v", err)
		} else if ok {
			return entries, nil
		}
	}
	return b.Refresh(ctx)
}

// Refresh rebuilds the ranking from the accounts table and caches it.
func (b *Board) Refresh(ctx context.Context) ([]model.LeaderboardEntry, error) {
	start := time.Now()
	accounts, err := dao.Account.Top(ctx, b.q, b.size)
	if err != nil {
		return nil, errors.Wrap(err, "rank accounts")
	}
	entries := Rank(accounts)
	metrics.LeaderboardRefresh.Observe(time.Since(start).Seconds())

	if b.cache != nil {
		if err = b.cache.Set(ctx, entries); err != nil {
			log.Warnf("write leaderboard cache: %v", err)
		}
	}
	return entries, nil
}

// Publish drops the cached ranking whenever a balance changes, so the board
// satisfies notify.Publisher and can sit next to the broker publisher.
func (b *Board) Publish(ctx context.Context, e notify.Event) error {
	if b.cache == nil || !e.Amount.IsPositive() {
		return nil
	}
	return b.cache.Invalidate(ctx)
}
