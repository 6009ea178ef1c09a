package referral

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
	"server-tonix-app/internal/app/ledger"
	"server-tonix-app/internal/dao"
	"server-tonix-app/internal/db"
	"server-tonix-app/internal/model"
	"server-tonix-app/internal/pkg/generr"
)

var now = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func setup(t *testing.T, ids ...int64) (*sql.DB, *Engine) {
	t.Helper()
	cli, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = cli.Close() })

	for _, id := range ids {
		_, _, err = account.GetOrCreate(context.Background(), cli, id, model.Profile{FirstName: "u"}, now)
		require.NoError(t, err)
	}
	rules := model.DefaultRules()
	return cli, New(rules, ledger.New(rules, clock), clock)
}

// apply runs Apply the way the orchestrator does, inside one transaction.
func apply(t *testing.T, cli *sql.DB, e *Engine, referredID int64, code string) (*Bonus, error) {
	t.Helper()
	var bonus *Bonus
	err := db.WithTx(context.Background(), cli, func(tx *sql.Tx) error {
		acc, err := dao.Account.Get(context.Background(), tx, referredID)
		if err != nil {
			return err
		}
		bonus, err = e.Apply(context.Background(), tx, acc, code)
		return err
	})
	return bonus, err
}

func balance(t *testing.T, cli *sql.DB, id int64) string {
	t.Helper()
	acc, err := account.Get(context.Background(), cli, id)
	require.NoError(t, err)
	return acc.TotalBalance.String()
}

func TestApplyCreditsBothSides(t *testing.T) {
	cli, e := setup(t, 1, 2)

	bonus, err := apply(t, cli, e, 2, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), bonus.ReferrerID)
	assert.Equal(t, "50", bonus.BonusToReferred.String())
	assert.Equal(t, "50", bonus.BonusToReferrer.String())

	assert.Equal(t, "50", balance(t, cli, 1))
	assert.Equal(t, "50", balance(t, cli, 2))

	entries, err := dao.Ledger.List(context.Background(), cli, 2, model.KindReferralBonus, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, bonus.ReferralID, entries[0].SourceID)
}

func TestApplyRejections(t *testing.T) {
	cli, e := setup(t, 1, 2, 3)

	_, err := apply(t, cli, e, 2, "404")
	assert.True(t, errors.Is(err, generr.InvalidCode))

	_, err = apply(t, cli, e, 2, "  ")
	assert.True(t, errors.Is(err, generr.Validation))

	_, err = apply(t, cli, e, 2, "2")
	assert.True(t, errors.Is(err, generr.SelfReferral))

	_, err = apply(t, cli, e, 2, "1")
	require.NoError(t, err)
	_, err = apply(t, cli, e, 2, "3")
	assert.True(t, errors.Is(err, generr.AlreadyReferred))

	// rejected attempts left no credit behind
	assert.Equal(t, "0", balance(t, cli, 3))
	assert.Equal(t, "50", balance(t, cli, 2))
}

func TestApplyDuplicateInsertIsAlreadyReferred(t *testing.T) {
	cli, e := setup(t, 1, 2, 3)
	ctx := context.Background()

	// a concurrent signup committed between the lookup and the insert
	require.NoError(t, dao.Referral.Insert(ctx, cli, &model.Referral{
		ID: "other", ReferrerAccountID: 3, ReferredAccountID: 2,
		BonusTonix: decimal.NewFromInt(50), CommissionEarned: decimal.Zero, CreatedAt: now,
	}))
	_, err := apply(t, cli, e, 2, "1")
	assert.True(t, errors.Is(err, generr.AlreadyReferred))
}

func TestAccrueCommission(t *testing.T) {
	cli, e := setup(t, 1, 2, 3)
	ctx := context.Background()
	_, err := apply(t, cli, e, 2, "1")
	require.NoError(t, err)

	c, err := e.AccrueCommission(ctx, cli, 2, decimal.NewFromInt(100), "completion-1")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, int64(1), c.ReferrerID)
	assert.Equal(t, "10", c.Amount.String())
	assert.Equal(t, "60", balance(t, cli, 1))

	entries, err := dao.Ledger.List(ctx, cli, 1, model.KindReferralCommission, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "completion-1", entries[0].SourceID)

	_, err = e.AccrueCommission(ctx, cli, 2, decimal.RequireFromString("0.5"), "completion-2")
	require.NoError(t, err)
	r, err := dao.Referral.GetByReferred(ctx, cli, 2)
	require.NoError(t, err)
	assert.Equal(t, "10.05", r.CommissionEarned.String())

	// no referrer: nothing to do
	c, err = e.AccrueCommission(ctx, cli, 3, decimal.NewFromInt(100), "completion-3")
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestCommissionPrecision(t *testing.T) {
	_, e := setup(t)
	assert.Equal(t, "0.00000001", e.Commission(decimal.RequireFromString("0.0000001")).String())
	assert.True(t, e.Commission(decimal.RequireFromString("0.00000001")).IsZero())
}

func TestStats(t *testing.T) {
	cli, e := setup(t, 1, 2, 3)
	ctx := context.Background()
	_, err := apply(t, cli, e, 2, "1")
	require.NoError(t, err)
	_, err = apply(t, cli, e, 3, "1")
	require.NoError(t, err)
	_, err = e.AccrueCommission(ctx, cli, 3, decimal.NewFromInt(20), "c")
	require.NoError(t, err)

	st, err := e.Stats(ctx, cli, 1, "@TonixBot")
	require.NoError(t, err)
	assert.Equal(t, "1", st.ReferralCode)
	assert.Equal(t, "https://t.me/TonixBot?start=1", st.InviteLink)
	assert.Equal(t, 2, st.TotalReferrals)
	assert.Equal(t, "100", st.BonusEarned.String())
	assert.Equal(t, "2", st.CommissionEarned.String())
	assert.Equal(t, "102", st.TotalEarned.String())
	assert.Nil(t, st.ReferredBy)
	assert.Len(t, st.Referees, 2)

	st, err = e.Stats(ctx, cli, 2, "")
	require.NoError(t, err)
	assert.Empty(t, st.InviteLink)
	require.NotNil(t, st.ReferredBy)
	assert.Equal(t, int64(1), *st.ReferredBy)

	_, err = e.Stats(ctx, cli, 9, "")
	assert.True(t, errors.Is(err, generr.NotFound))
}
