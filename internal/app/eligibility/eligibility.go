// Package eligibility decides whether a task may be completed now.
package eligibility

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"server-tonix-app/internal/dao"
	"server-tonix-app/internal/model"
	"server-tonix-app/internal/pkg/generr"
)

const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

// Reason values explain a negative decision.
const (
	ReasonInactive  = "task is not active"
	ReasonCompleted = "task already completed"
	ReasonCooldown  = "task not yet available"
	ReasonUnknown   = "task frequency is not supported"
)

type Decision struct {
	CanComplete     bool       `json:"can_complete"`
	Reason          string     `json:"reason,omitempty"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`
	NextAvailableAt *time.Time `json:"next_available_at,omitempty"`
}

// Err turns a negative decision into a user-presentable error.
func (d Decision) Err(loc *time.Location) error {
	if d.CanComplete {
		return nil
	}
	if d.NextAvailableAt != nil {
		return generr.NotEligible.With("%s, retry after %s", d.Reason,
			d.NextAvailableAt.In(loc).Format("2006-01-02 15:04 MST"))
	}
	return generr.NotEligible.With("%s", d.Reason)
}

// Cooldown is the wait after a completion: the larger of the frequency's
// natural period and the configured cooldown. It is false for one-off
// tasks, which never reopen.
func Cooldown(task *model.TaskDefinition) (time.Duration, bool) {
	var period time.Duration
	switch task.Frequency {
	case model.FrequencyOnce:
		return 0, false
	case model.FrequencyDaily:
		period = Day
	case model.FrequencyWeekly:
		period = Week
	default:
		return 0, false
	}
	if c := time.Duration(task.CooldownHours) * time.Hour; c > period {
		return c, true
	}
	return period, true
}

// NextAvailable is the instant a completion at completedAt reopens the task,
// or nil for one-off tasks.
func NextAvailable(task *model.TaskDefinition, completedAt time.Time) *time.Time {
	c, ok := Cooldown(task)
	if !ok {
		return nil
	}
	next := completedAt.Add(c)
	return &next
}

// Evaluate decides on the task given the latest completion, nil meaning the
// account never completed it.
func Evaluate(task *model.TaskDefinition, last *model.TaskCompletion, now time.Time) Decision {
	var d Decision
	if last != nil {
		at := last.CompletedAt
		d.LastCompletedAt = &at
	}
	if !task.IsActive {
		d.Reason = ReasonInactive
		return d
	}

	switch task.Frequency {
	case model.FrequencyOnce:
		if last != nil {
			d.Reason = ReasonCompleted
			return d
		}
	case model.FrequencyDaily, model.FrequencyWeekly:
		if last != nil {
			next := NextAvailable(task, last.CompletedAt)
			if now.Before(*next) {
				d.Reason = ReasonCooldown
				d.NextAvailableAt = next
				return d
			}
		}
	default:
		d.Reason = ReasonUnknown
		return d
	}
	d.CanComplete = true
	return d
}

// Lookup loads a task definition; an unknown id is generr.NotFound.
func Lookup(ctx context.Context, q dao.Querier, taskID string) (*model.TaskDefinition, error) {
	task, err := dao.Task.Get(ctx, q, taskID)
	if err == sql.ErrNoRows {
		return nil, generr.NotFound.With("task %q not found", taskID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get task %s", taskID)
	}
	return task, nil
}

// Check reads the task and the account's latest completion and evaluates
// them. Run it on the same transaction that records the completion.
func Check(ctx context.Context, q dao.Querier, accountID int64, taskID string, now time.Time) (*model.TaskDefinition, Decision, error) {
	task, err := Lookup(ctx, q, taskID)
	if err != nil {
		return nil, Decision{}, err
	}
	last, err := dao.Completion.Last(ctx, q, accountID, taskID)
	if err != nil {
		return nil, Decision{}, errors.Wrapf(err, "last completion of %s by %d", taskID, accountID)
	}
	return task, Evaluate(task, last, now), nil
}
