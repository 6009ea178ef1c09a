package dao

import (
	"context"
	"database/sql"

	"server-tonix-app/internal/model"
)

type completion struct {
}

var Completion = new(completion)

const completionColumns = `id, account_id, task_id, status, completed_at, next_available_at, tonix_earned`

func scanCompletion(row scanner) (*model.TaskCompletion, error) {
	var (
		c           model.TaskCompletion
		completedAt int64
		nextAt      sql.NullInt64
	)
	err := row.Scan(&c.ID, &c.AccountID, &c.TaskID, &c.Status, &completedAt, &nextAt, &c.TonixEarned)
	if err != nil {
		return nil, err
	}
	c.CompletedAt = fromMillis(completedAt)
	if nextAt.Valid {
		t := fromMillis(nextAt.Int64)
		c.NextAvailableAt = &t
	}
	return &c, nil
}

func (*completion) Insert(ctx context.Context, q Querier, c *model.TaskCompletion) error {
	var nextAt sql.NullInt64
	if c.NextAvailableAt != nil {
		nextAt = sql.NullInt64{Int64: toMillis(*c.NextAvailableAt), Valid: true}
	}
	_, err := q.ExecContext(ctx, `
insert into task_completions
	(`+completionColumns+`)
values
	(?,?,?,?,?,?,?)`,
		c.ID, c.AccountID, c.TaskID, c.Status, toMillis(c.CompletedAt), nextAt, c.TonixEarned.String())
	return err
}

// Last returns the most recent completion of a task, or nil if there is none.
func (*completion) Last(ctx context.Context, q Querier, accountID int64, taskID string) (*model.TaskCompletion, error) {
	row := q.QueryRowContext(ctx, `select `+completionColumns+` from task_completions
where account_id = ? and task_id = ? order by completed_at desc, seq desc limit 1`, accountID, taskID)
	c, err := scanCompletion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// LastByTask maps each task the account has completed to its latest completion.
func (*completion) LastByTask(ctx context.Context, q Querier, accountID int64) (map[string]*model.TaskCompletion, error) {
	rows, err := q.QueryContext(ctx, `select `+completionColumns+` from task_completions
where account_id = ? order by completed_at desc, seq desc`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]*model.TaskCompletion)
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		if _, ok := out[c.TaskID]; !ok {
			out[c.TaskID] = c
		}
	}
	return out, rows.Err()
}

func (*completion) Count(ctx context.Context, q Querier, accountID int64, taskID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `select count(*) from task_completions where account_id = ? and task_id = ?`,
		accountID, taskID).Scan(&n)
	return n, err
}
