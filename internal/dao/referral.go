package dao

import (
	"context"
	"database/sql"

	"server-tonix-app/internal/model"
)

type referral struct {
}

var Referral = new(referral)

const referralColumns = `id, referrer_account_id, referred_account_id, bonus_tonix, commission_earned, created_at`

func scanReferral(row scanner) (*model.Referral, error) {
	var (
		r         model.Referral
		createdAt int64
	)
	err := row.Scan(&r.ID, &r.ReferrerAccountID, &r.ReferredAccountID, &r.BonusTonix, &r.CommissionEarned, &createdAt)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = fromMillis(createdAt)
	return &r, nil
}

// Insert fails with a duplicate key error when the referred account already
// has a referrer.
func (*referral) Insert(ctx context.Context, q Querier, r *model.Referral) error {
	_, err := q.ExecContext(ctx, `
insert into referrals
	(`+referralColumns+`)
values
	(?,?,?,?,?,?)`,
		r.ID, r.ReferrerAccountID, r.ReferredAccountID, r.BonusTonix.String(), r.CommissionEarned.String(),
		toMillis(r.CreatedAt))
	return err
}

// GetByReferred returns nil when the account was never referred.
func (*referral) GetByReferred(ctx context.Context, q Querier, referredID int64) (*model.Referral, error) {
	r, err := scanReferral(q.QueryRowContext(ctx, `select `+referralColumns+` from referrals
where referred_account_id = ?`, referredID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

func (*referral) ListByReferrer(ctx context.Context, q Querier, referrerID int64) ([]model.Referral, error) {
	rows, err := q.QueryContext(ctx, `select `+referralColumns+` from referrals
where referrer_account_id = ? order by created_at desc, seq desc`, referrerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Referral
	for rows.Next() {
		r, err := scanReferral(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// SetCommission stores the accrued total; callers compute it inside the
// same transaction that appends the commission entry.
func (*referral) SetCommission(ctx context.Context, q Querier, id string, total string) error {
	_, err := q.ExecContext(ctx, `update referrals set commission_earned = ? where id = ?`, total, id)
	return err
}
