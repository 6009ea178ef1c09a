package eligibility

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"server-tonix-app/internal/dao"
	"server-tonix-app/internal/db"
	"server-tonix-app/internal/model"
	"server-tonix-app/internal/pkg/generr"
	"server-tonix-app/internal/pkg/util"
)

var done = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func task(f model.Frequency, cooldown int64) *model.TaskDefinition {
	return &model.TaskDefinition{
		ID:            "t",
		Name:          "t",
		Category:      model.CategoryDaily,
		Frequency:     f,
		Reward:        decimal.NewFromInt(10),
		CooldownHours: cooldown,
		IsActive:      true,
	}
}

func completedAt(at time.Time) *model.TaskCompletion {
	return &model.TaskCompletion{ID: "c", TaskID: "t", CompletedAt: at}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		task     *model.TaskDefinition
		last     *model.TaskCompletion
		after    time.Duration
		can      bool
		reason   string
		nextWait time.Duration
	}{
		{"once never done", task(model.FrequencyOnce, 0), nil, 0, true, "", 0},
		{"once done", task(model.FrequencyOnce, 0), completedAt(done), 365 * Day, false, ReasonCompleted, 0},
		{"daily never done", task(model.FrequencyDaily, 0), nil, 0, true, "", 0},
		{"daily after 23h", task(model.FrequencyDaily, 0), completedAt(done), 23 * time.Hour, false, ReasonCooldown, Day},
		{"daily at 24h", task(model.FrequencyDaily, 0), completedAt(done), Day, true, "", 0},
		{"daily short cooldown", task(model.FrequencyDaily, 2), completedAt(done), 3 * time.Hour, false, ReasonCooldown, Day},
		{"daily 36h cooldown at 25h", task(model.FrequencyDaily, 36), completedAt(done), 25 * time.Hour, false, ReasonCooldown, 36 * time.Hour},
		{"daily 36h cooldown at 36h", task(model.FrequencyDaily, 36), completedAt(done), 36 * time.Hour, true, "", 0},
		{"weekly after 6 days", task(model.FrequencyWeekly, 0), completedAt(done), 6 * Day, false, ReasonCooldown, Week},
		{"weekly after 7 days", task(model.FrequencyWeekly, 0), completedAt(done), Week, true, "", 0},
		{"weekly long cooldown", task(model.FrequencyWeekly, 200), completedAt(done), Week + time.Hour, false, ReasonCooldown, 200 * time.Hour},
		{"unknown frequency", task("monthly", 0), nil, 0, false, ReasonUnknown, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.task, tt.last, done.Add(tt.after))
			assert.Equal(t, tt.can, d.CanComplete)
			assert.Equal(t, tt.reason, d.Reason)
			if tt.nextWait > 0 {
				require.NotNil(t, d.NextAvailableAt)
				assert.True(t, d.NextAvailableAt.Equal(done.Add(tt.nextWait)), "next %s", d.NextAvailableAt)
			} else {
				assert.Nil(t, d.NextAvailableAt)
			}
		})
	}
}

func TestInactiveIsNeverEligible(t *testing.T) {
	tk := task(model.FrequencyDaily, 0)
	tk.IsActive = false
	d := Evaluate(tk, nil, done)
	assert.False(t, d.CanComplete)
	assert.Equal(t, ReasonInactive, d.Reason)

	d = Evaluate(tk, completedAt(done), done.Add(Week))
	assert.False(t, d.CanComplete)
	require.NotNil(t, d.LastCompletedAt)
}

func TestDecisionErr(t *testing.T) {
	loc := util.FixedOffset(4)
	assert.NoError(t, Decision{CanComplete: true}.Err(loc))

	d := Evaluate(task(model.FrequencyDaily, 0), completedAt(done), done.Add(time.Hour))
	err := d.Err(loc)
	assert.True(t, errors.Is(err, generr.NotEligible))
	assert.Equal(t, "task not yet available, retry after 2024-05-02 12:00 UTC+4", generr.From(err).Msg)

	err = Decision{Reason: ReasonCompleted}.Err(loc)
	assert.Equal(t, ReasonCompleted, generr.From(err).Msg)
}

func TestNextAvailable(t *testing.T) {
	assert.Nil(t, NextAvailable(task(model.FrequencyOnce, 48), done))
	next := NextAvailable(task(model.FrequencyWeekly, 0), done)
	require.NotNil(t, next)
	assert.True(t, next.Equal(done.Add(Week)))
}

func TestCheck(t *testing.T) {
	cli, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer cli.Close()
	ctx := context.Background()

	_, _, err = Check(ctx, cli, 1, "missing", done)
	assert.True(t, errors.Is(err, generr.NotFound))

	tk := task(model.FrequencyOnce, 0)
	tk.CreatedAt = done
	require.NoError(t, dao.Task.Upsert(ctx, cli, tk))

	got, d, err := Check(ctx, cli, 1, "t", done)
	require.NoError(t, err)
	assert.Equal(t, "t", got.ID)
	assert.True(t, d.CanComplete, "missing history is never done")
}
