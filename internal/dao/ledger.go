package dao

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"server-tonix-app/internal/model"
)

type ledger struct {
}

var Ledger = new(ledger)

func (*ledger) Insert(ctx context.Context, q Querier, e *model.LedgerEntry) error {
	_, err := q.ExecContext(ctx, `
insert into ledger_entries
	(id, account_id, amount, kind, source_id, description, created_at)
values
	(?,?,?,?,?,?,?)`,
		e.ID, e.AccountID, e.Amount.String(), string(e.Kind), e.SourceID, e.Description, toMillis(e.CreatedAt))
	return err
}

// Sum adds amounts in Go so the total stays exact on both drivers.
func (*ledger) Sum(ctx context.Context, q Querier, accountID int64) (decimal.Decimal, error) {
	return sumAmounts(ctx, q, `select amount from ledger_entries where account_id = ?`, accountID)
}

// SumSince is the total credited at or after since.
func (*ledger) SumSince(ctx context.Context, q Querier, accountID int64, since time.Time) (decimal.Decimal, error) {
	return sumAmounts(ctx, q, `select amount from ledger_entries where account_id = ? and created_at >= ?`,
		accountID, toMillis(since))
}

func sumAmounts(ctx context.Context, q Querier, query string, args ...interface{}) (decimal.Decimal, error) {
	total := decimal.Zero
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return total, err
	}
	defer rows.Close()
	for rows.Next() {
		var amount decimal.Decimal
		if err = rows.Scan(&amount); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}
	return total, rows.Err()
}

// List is newest first. An empty kind matches every kind.
func (*ledger) List(ctx context.Context, q Querier, accountID int64, kind model.EntryKind, limit, offset int) ([]model.LedgerEntry, error) {
	query := `select id, account_id, amount, kind, source_id, description, created_at
from ledger_entries where account_id = ?`
	args := []interface{}{accountID}
	if kind != "" {
		query += ` and kind = ?`
		args = append(args, string(kind))
	}
	query += ` order by created_at desc, seq desc limit ? offset ?`
	args = append(args, limit, offset)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LedgerEntry
	for rows.Next() {
		var (
			e         model.LedgerEntry
			kindStr   string
			createdAt int64
		)
		err = rows.Scan(&e.ID, &e.AccountID, &e.Amount, &kindStr, &e.SourceID, &e.Description, &createdAt)
		if err != nil {
			return nil, err
		}
		e.Kind = model.EntryKind(kindStr)
		e.CreatedAt = fromMillis(createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}
