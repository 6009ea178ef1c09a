package dao

import (
	"context"

	"server-tonix-app/internal/db"
	"server-tonix-app/internal/model"
)

type task struct {
}

var Task = new(task)

const taskColumns = `id, name, description, category, frequency, reward, cooldown_hours, is_active, action_url, created_at`

func scanTask(row scanner) (*model.TaskDefinition, error) {
	var (
		t                   model.TaskDefinition
		category, frequency string
		createdAt           int64
	)
	err := row.Scan(&t.ID, &t.Name, &t.Description, &category, &frequency, &t.Reward, &t.CooldownHours,
		&t.IsActive, &t.ActionURL, &createdAt)
	if err != nil {
		return nil, err
	}
	t.Category = model.Category(category)
	t.Frequency = model.Frequency(frequency)
	t.CreatedAt = fromMillis(createdAt)
	return &t, nil
}

// Upsert inserts the definition or overwrites the catalogue fields of an
// existing one. created_at is kept from the first insert.
func (*task) Upsert(ctx context.Context, q Querier, t *model.TaskDefinition) error {
	_, err := q.ExecContext(ctx, `
insert into tasks
	(`+taskColumns+`)
values
	(?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.Name, t.Description, string(t.Category), string(t.Frequency), t.Reward.String(),
		t.CooldownHours, t.IsActive, t.ActionURL, toMillis(t.CreatedAt))
	if err == nil || !db.IsDuplicate(err) {
		return err
	}
	_, err = q.ExecContext(ctx, `
update tasks
set
	name = ?, description = ?, category = ?, frequency = ?, reward = ?, cooldown_hours = ?,
	is_active = ?, action_url = ?
where
	id = ?`,
		t.Name, t.Description, string(t.Category), string(t.Frequency), t.Reward.String(), t.CooldownHours,
		t.IsActive, t.ActionURL, t.ID)
	return err
}

// Get returns sql.ErrNoRows for an unknown id.
func (*task) Get(ctx context.Context, q Querier, id string) (*model.TaskDefinition, error) {
	return scanTask(q.QueryRowContext(ctx, `select `+taskColumns+` from tasks where id = ?`, id))
}

func (*task) List(ctx context.Context, q Querier, activeOnly bool) ([]model.TaskDefinition, error) {
	query := `select ` + taskColumns + ` from tasks`
	if activeOnly {
		query += ` where is_active = 1`
	}
	query += ` order by id`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TaskDefinition
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (*task) SetActive(ctx context.Context, q Querier, id string, active bool) error {
	_, err := q.ExecContext(ctx, `update tasks set is_active = ? where id = ?`, active, id)
	return err
}
