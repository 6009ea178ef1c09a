package dao

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"server-tonix-app/internal/db"
	"server-tonix-app/internal/model"
)

// Querier lets every DAO method run on the pool or inside a transaction.
type Querier = db.Querier

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

var (
	maxRank = decimal.NewFromInt(math.MaxInt64)
	minRank = decimal.NewFromInt(math.MinInt64)
)

// rankKey is the balance in units of 1e-8, the integer the leaderboard
// orders by. The balance column itself stays exact; balances beyond the
// int64 range share the extreme key and fall back to creation order.
func rankKey(balance decimal.Decimal) int64 {
	units := balance.Shift(model.AmountPlaces).Truncate(0)
	switch {
	case units.GreaterThan(maxRank):
		return math.MaxInt64
	case units.LessThan(minRank):
		return math.MinInt64
	}
	return units.IntPart()
}
