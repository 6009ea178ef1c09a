package dao

import (
	"context"

	"github.com/pkg/errors"

	"server-tonix-app/internal/db"
	"server-tonix-app/internal/model"
)

type account struct {
}

var Account = new(account)

const accountColumns = `seq, id, first_name, last_name, username, photo_url, referral_code, total_balance, level,
	current_streak, last_checkin_date, total_days, version, created_at, updated_at`

func scanAccount(row scanner) (*model.Account, error) {
	var (
		a                    model.Account
		createdAt, updatedAt int64
	)
	err := row.Scan(&a.Seq, &a.ID, &a.FirstName, &a.LastName, &a.Username, &a.PhotoURL, &a.ReferralCode,
		&a.TotalBalance, &a.Level, &a.CurrentStreak, &a.LastCheckinDate, &a.TotalDays, &a.Version,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updatedAt)
	return &a, nil
}

// Insert creates the row and fills in Seq. A duplicate id or referral code
// surfaces as a driver error, see db.IsDuplicate.
func (*account) Insert(ctx context.Context, q Querier, a *model.Account) error {
	res, err := q.ExecContext(ctx, `
insert into accounts
	(id, first_name, last_name, username, photo_url, referral_code, total_balance, balance_rank, level,
	current_streak, last_checkin_date, total_days, version, created_at, updated_at)
values
	(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.ID, a.FirstName, a.LastName, a.Username, a.PhotoURL, a.ReferralCode, a.TotalBalance.String(),
		rankKey(a.TotalBalance), a.Level,
		a.CurrentStreak, a.LastCheckinDate, a.TotalDays, a.Version, toMillis(a.CreatedAt), toMillis(a.UpdatedAt))
	if err != nil {
		return err
	}
	a.Seq, err = res.LastInsertId()
	return err
}

// Get returns sql.ErrNoRows for an unknown id.
func (*account) Get(ctx context.Context, q Querier, id int64) (*model.Account, error) {
	row := q.QueryRowContext(ctx, `select `+accountColumns+` from accounts where id = ?`, id)
	return scanAccount(row)
}

func (*account) GetByReferralCode(ctx context.Context, q Querier, code string) (*model.Account, error) {
	row := q.QueryRowContext(ctx, `select `+accountColumns+` from accounts where referral_code = ?`, code)
	return scanAccount(row)
}

func (*account) UpdateProfile(ctx context.Context, q Querier, a *model.Account) error {
	_, err := q.ExecContext(ctx, `
update accounts
set
	first_name = ?, last_name = ?, username = ?, photo_url = ?, updated_at = ?
where
	id = ?`,
		a.FirstName, a.LastName, a.Username, a.PhotoURL, toMillis(a.UpdatedAt), a.ID)
	return err
}

// SaveState writes the derived fields guarded by the version the caller
// read. A lost race returns db.ErrConflict; on success a.Version advances.
func (*account) SaveState(ctx context.Context, q Querier, a *model.Account) error {
	res, err := q.ExecContext(ctx, `
update accounts
set
	total_balance = ?, balance_rank = ?, level = ?, current_streak = ?, last_checkin_date = ?,
	total_days = ?, version = version + 1, updated_at = ?
where
	id = ? and version = ?`,
		a.TotalBalance.String(), rankKey(a.TotalBalance), a.Level, a.CurrentStreak, a.LastCheckinDate,
		a.TotalDays, toMillis(a.UpdatedAt), a.ID, a.Version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrapf(db.ErrConflict, "account %d version %d", a.ID, a.Version)
	}
	a.Version++
	return nil
}

// Top ranks by balance, earliest account first on ties.
func (*account) Top(ctx context.Context, q Querier, limit int) ([]model.Account, error) {
	rows, err := q.QueryContext(ctx, `select `+accountColumns+` from accounts
order by balance_rank desc, seq asc limit ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// Page walks all accounts in creation order.
func (*account) Page(ctx context.Context, q Querier, afterSeq int64, limit int) ([]model.Account, error) {
	rows, err := q.QueryContext(ctx, `select `+accountColumns+` from accounts
where seq > ? order by seq asc limit ?`, afterSeq, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func collectAccounts(rows interface {
	scanner
	Next() bool
	Err() error
}) ([]model.Account, error) {
	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
