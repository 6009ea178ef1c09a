// Package ledger is the append-only record of credits. Append is the only
// code path that changes an account balance.
package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"server-tonix-app/internal/app/account"
	"server-tonix-app/internal/dao"
	"server-tonix-app/internal/model"
	"server-tonix-app/internal/pkg/generr"
	"server-tonix-app/internal/pkg/util"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

type Ledger struct {
	levelUnit decimal.Decimal
	loc       *time.Location
	now       func() time.Time
}

func New(rules model.Rules, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{levelUnit: rules.LevelUnit, loc: rules.Location, now: now}
}

// Append credits the account with the given id. It must run inside the
// caller's transaction.
func (l *Ledger) Append(ctx context.Context, q dao.Querier, accountID int64, amount decimal.Decimal,
	kind model.EntryKind, sourceID, description string) (*model.LedgerEntry, error) {
	acc, err := dao.Account.Get(ctx, q, accountID)
	if err == sql.ErrNoRows {
		return nil, generr.Validation.With("account %d does not exist", accountID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load account %d", accountID)
	}
	return l.Credit(ctx, q, acc, amount, kind, sourceID, description)
}

// Credit appends an entry for an account already read in this transaction
// and writes its cached balance and level together with whatever derived
// fields the caller changed on acc. The write is guarded by acc.Version,
// so a concurrent credit makes it fail with db.ErrConflict.
func (l *Ledger) Credit(ctx context.Context, q dao.Querier, acc *model.Account, amount decimal.Decimal,
	kind model.EntryKind, sourceID, description string) (*model.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, generr.Validation.With("amount must be positive, got %s", amount)
	}
	if !amount.Equal(amount.Truncate(model.AmountPlaces)) {
		return nil, generr.Validation.With("amount %s has more than %d decimal places", amount, model.AmountPlaces)
	}
	if _, err := model.ParseEntryKind(string(kind)); err != nil {
		return nil, generr.Validation.With("%v", err)
	}

	now := l.now()
	e := &model.LedgerEntry{
		ID:          uuid.NewString(),
		AccountID:   acc.ID,
		Amount:      amount,
		Kind:        kind,
		SourceID:    sourceID,
		Description: description,
		CreatedAt:   now,
	}
	if err := dao.Ledger.Insert(ctx, q, e); err != nil {
		return nil, errors.Wrapf(err, "insert %s entry for %d", kind, acc.ID)
	}

	acc.TotalBalance = acc.TotalBalance.Add(amount)
	if level := account.RecomputeLevel(acc.TotalBalance, l.levelUnit); level > acc.Level {
		acc.Level = level
	}
	acc.UpdatedAt = now
	if err := dao.Account.SaveState(ctx, q, acc); err != nil {
		return nil, errors.Wrapf(err, "save balance of %d", acc.ID)
	}
	return e, nil
}

// TotalFor sums every entry of the account.
func (l *Ledger) TotalFor(ctx context.Context, q dao.Querier, accountID int64) (decimal.Decimal, error) {
	if _, err := account.Get(ctx, q, accountID); err != nil {
		return decimal.Zero, err
	}
	total, err := dao.Ledger.Sum(ctx, q, accountID)
	return total, errors.Wrapf(err, "sum ledger of %d", accountID)
}

// EntriesFor pages through an account's history, newest first. An empty
// kind lists every kind.
func (l *Ledger) EntriesFor(ctx context.Context, q dao.Querier, accountID int64, kind model.EntryKind,
	limit, offset int) ([]model.LedgerEntry, error) {
	if limit < 0 || offset < 0 {
		return nil, generr.Validation.With("limit and offset must not be negative")
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if kind != "" {
		if _, err := model.ParseEntryKind(string(kind)); err != nil {
			return nil, generr.Validation.With("%v", err)
		}
	}
	if _, err := account.Get(ctx, q, accountID); err != nil {
		return nil, err
	}
	entries, err := dao.Ledger.List(ctx, q, accountID, kind, limit, offset)
	if err != nil {
		return nil, errors.Wrapf(err, "list ledger of %d", accountID)
	}
	if entries == nil {
		entries = []model.LedgerEntry{}
	}
	return entries, nil
}

// TodayEarnings sums the credits since the current day began in the
// program calendar.
func (l *Ledger) TodayEarnings(ctx context.Context, q dao.Querier, accountID int64) (decimal.Decimal, error) {
	since := util.StartOfDay(l.now(), l.loc)
	total, err := dao.Ledger.SumSince(ctx, q, accountID, since)
	return total, errors.Wrapf(err, "sum today's ledger of %d", accountID)
}

// Drift is a mismatch between the cached balance and the ledger sum.
type Drift struct {
	AccountID int64           `json:"account_id"`
	Cached    decimal.Decimal `json:"cached"`
	Ledger    decimal.Decimal `json:"ledger"`
}

// Reconcile compares every account's cached balance against its entries.
func (l *Ledger) Reconcile(ctx context.Context, q dao.Querier) ([]Drift, error) {
	const page = 500
	var (
		drifts  []Drift
		lastSeq int64
	)
	for {
		accounts, err := dao.Account.Page(ctx, q, lastSeq, page)
		if err != nil {
			return nil, errors.Wrap(err, "page accounts")
		}
		for _, acc := range accounts {
			sum, err := dao.Ledger.Sum(ctx, q, acc.ID)
			if err != nil {
				return nil, errors.Wrapf(err, "sum ledger of %d", acc.ID)
			}
			if !sum.Equal(acc.TotalBalance) {
				drifts = append(drifts, Drift{AccountID: acc.ID, Cached: acc.TotalBalance, Ledger: sum})
			}
			lastSeq = acc.Seq
		}
		if len(accounts) < page {
			return drifts, nil
		}
	}
}
