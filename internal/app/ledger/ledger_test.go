package ledger

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"server-tonix-app/internal/app/account"
	"server-tonix-app/internal/dao"
	"server-tonix-app/internal/db"
	"server-tonix-app/internal/model"
	"server-tonix-app/internal/pkg/generr"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func setup(t *testing.T) (*sql.DB, *Ledger, *clock) {
	t.Helper()
	cli, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = cli.Close() })

	// 10:00 at UTC+4
	c := &clock{t: time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)}
	_, _, err = account.GetOrCreate(context.Background(), cli, 1, model.Profile{FirstName: "A"}, c.t)
	require.NoError(t, err)
	return cli, New(model.DefaultRules(), c.now), c
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAppendUpdatesBalanceAndLevel(t *testing.T) {
	cli, l, _ := setup(t)
	ctx := context.Background()

	e, err := l.Append(ctx, cli, 1, dec("25"), model.KindTaskCompletion, "task-1", "Completed task")
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)

	acc, err := account.Get(ctx, cli, 1)
	require.NoError(t, err)
	assert.Equal(t, "25", acc.TotalBalance.String())
	assert.Equal(t, int64(2), acc.Level)
}

func TestAppendValidation(t *testing.T) {
	cli, l, _ := setup(t)
	ctx := context.Background()

	_, err := l.Append(ctx, cli, 1, decimal.Zero, model.KindTaskCompletion, "", "")
	assert.True(t, errors.Is(err, generr.Validation))
	_, err = l.Append(ctx, cli, 1, dec("-1"), model.KindTaskCompletion, "", "")
	assert.True(t, errors.Is(err, generr.Validation))
	_, err = l.Append(ctx, cli, 99, dec("1"), model.KindTaskCompletion, "", "")
	assert.True(t, errors.Is(err, generr.Validation))
	_, err = l.Append(ctx, cli, 1, dec("1"), model.EntryKind("gift"), "", "")
	assert.True(t, errors.Is(err, generr.Validation))
	_, err = l.Append(ctx, cli, 1, dec("0.000000001"), model.KindReferralCommission, "", "")
	assert.True(t, errors.Is(err, generr.Validation))

	// tiny commissions are still positive
	_, err = l.Append(ctx, cli, 1, dec("0.00000001"), model.KindReferralCommission, "", "")
	assert.NoError(t, err)
}

func TestSumInvariant(t *testing.T) {
	cli, l, c := setup(t)
	ctx := context.Background()

	for i, amount := range []string{"5", "0.1", "0.25", "100", "50"} {
		c.t = c.t.Add(time.Duration(i) * time.Minute)
		_, err := l.Append(ctx, cli, 1, dec(amount), model.KindTaskCompletion, "", "")
		require.NoError(t, err)

		total, err := l.TotalFor(ctx, cli, 1)
		require.NoError(t, err)
		acc, err := account.Get(ctx, cli, 1)
		require.NoError(t, err)
		assert.True(t, total.Equal(acc.TotalBalance), "ledger %s, cached %s", total, acc.TotalBalance)
	}

	drifts, err := l.Reconcile(ctx, cli)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestReconcileReportsDrift(t *testing.T) {
	cli, l, _ := setup(t)
	ctx := context.Background()
	_, err := l.Append(ctx, cli, 1, dec("10"), model.KindTaskCompletion, "", "")
	require.NoError(t, err)

	_, err = cli.Exec(`UPDATE accounts SET total_balance = '15' WHERE id = 1`)
	require.NoError(t, err)

	drifts, err := l.Reconcile(ctx, cli)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, int64(1), drifts[0].AccountID)
	assert.Equal(t, "15", drifts[0].Cached.String())
	assert.Equal(t, "10", drifts[0].Ledger.String())
}

func TestLongBalancesDoNotDrift(t *testing.T) {
	cli, l, _ := setup(t)
	ctx := context.Background()

	for _, amount := range []string{"123456789.1", "0.00000003", "0.00000001"} {
		_, err := l.Append(ctx, cli, 1, dec(amount), model.KindReferralCommission, "", "")
		require.NoError(t, err)
	}

	acc, err := account.Get(ctx, cli, 1)
	require.NoError(t, err)
	assert.Equal(t, "123456789.10000004", acc.TotalBalance.String())

	drifts, err := l.Reconcile(ctx, cli)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestCreditConflictOnStaleAccount(t *testing.T) {
	cli, l, _ := setup(t)
	ctx := context.Background()

	stale, err := dao.Account.Get(ctx, cli, 1)
	require.NoError(t, err)
	_, err = l.Append(ctx, cli, 1, dec("1"), model.KindTaskCompletion, "", "")
	require.NoError(t, err)

	_, err = l.Credit(ctx, cli, stale, dec("1"), model.KindTaskCompletion, "", "")
	assert.True(t, errors.Is(err, db.ErrConflict))
}

func TestEntriesFor(t *testing.T) {
	cli, l, c := setup(t)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		c.t = c.t.Add(time.Second)
		kind := model.KindTaskCompletion
		if i%2 == 0 {
			kind = model.KindDailyCheckin
		}
		_, err := l.Append(ctx, cli, 1, decimal.NewFromInt(int64(i+1)), kind, "", "")
		require.NoError(t, err)
	}

	entries, err := l.EntriesFor(ctx, cli, 1, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, entries, DefaultLimit)
	assert.Equal(t, "60", entries[0].Amount.String(), "newest first")

	entries, err = l.EntriesFor(ctx, cli, 1, model.KindDailyCheckin, 500, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 30)

	entries, err = l.EntriesFor(ctx, cli, 1, "", 10, 55)
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	_, err = l.EntriesFor(ctx, cli, 1, "", -1, 0)
	assert.True(t, errors.Is(err, generr.Validation))
	_, err = l.EntriesFor(ctx, cli, 1, "bogus", 10, 0)
	assert.True(t, errors.Is(err, generr.Validation))
	_, err = l.EntriesFor(ctx, cli, 2, "", 10, 0)
	assert.True(t, errors.Is(err, generr.NotFound))

	entries, err = l.EntriesFor(ctx, cli, 1, model.KindReferralBonus, 10, 0)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestTodayEarnings(t *testing.T) {
	cli, l, c := setup(t)
	ctx := context.Background()

	// 23:30 at UTC+4 on April 30
	c.t = time.Date(2024, 4, 30, 19, 30, 0, 0, time.UTC)
	_, err := l.Append(ctx, cli, 1, dec("7"), model.KindTaskCompletion, "", "")
	require.NoError(t, err)

	// 00:30 at UTC+4 on May 1
	c.t = time.Date(2024, 4, 30, 20, 30, 0, 0, time.UTC)
	_, err = l.Append(ctx, cli, 1, dec("3"), model.KindTaskCompletion, "", "")
	require.NoError(t, err)

	today, err := l.TodayEarnings(ctx, cli, 1)
	require.NoError(t, err)
	assert.Equal(t, "3", today.String())
}
