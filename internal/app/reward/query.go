package reward

import (
	"context"
	"database/sql"
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"server-tonix-app/internal/app/account"
	"server-tonix-app/internal/app/checkin"
	"server-tonix-app/internal/app/eligibility"
	"server-tonix-app/internal/app/ledger"
	"server-tonix-app/internal/app/metrics"
	"server-tonix-app/internal/app/referral"
	"server-tonix-app/internal/dao"
	"server-tonix-app/internal/model"
	"server-tonix-app/internal/pkg/generr"
)

func (s *Service) Account(ctx context.Context, accountID int64) (*model.Account, error) {
	acc, err := account.Get(ctx, s.cli, accountID)
	return acc, s.outcome("get_account", err)
}

func (s *Service) CheckinStatus(ctx context.Context, accountID int64) (*checkin.Status, error) {
	acc, err := account.Get(ctx, s.cli, accountID)
	if err != nil {
		return nil, s.outcome("checkin_status", err)
	}
	st := checkin.StatusOf(acc, s.now(), s.rules.Location)
	return &st, nil
}

type BoardItem struct {
	model.TaskDefinition
	eligibility.Decision
}

// TaskBoard lists the active tasks with the account's availability, daily
// tasks first and the best paid first within a category.
func (s *Service) TaskBoard(ctx context.Context, accountID int64) ([]BoardItem, error) {
	if _, err := account.Get(ctx, s.cli, accountID); err != nil {
		return nil, s.outcome("task_board", err)
	}
	tasks, err := dao.Task.List(ctx, s.cli, true)
	if err != nil {
		return nil, s.outcome("task_board", errors.Wrap(err, "list tasks"))
	}
	last, err := dao.Completion.LastByTask(ctx, s.cli, accountID)
	if err != nil {
		return nil, s.outcome("task_board", errors.Wrapf(err, "completions of %d", accountID))
	}

	now := s.now()
	items := make([]BoardItem, 0, len(tasks))
	for i := range tasks {
		items = append(items, BoardItem{
			TaskDefinition: tasks[i],
			Decision:       eligibility.Evaluate(&tasks[i], last[tasks[i].ID], now),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := items[i].Category.Rank(), items[j].Category.Rank()
		if ri != rj {
			return ri < rj
		}
		return items[i].Reward.GreaterThan(items[j].Reward)
	})
	return items, nil
}

func (s *Service) Transactions(ctx context.Context, accountID int64, kind model.EntryKind, limit, offset int) ([]model.LedgerEntry, error) {
	entries, err := s.ledger.EntriesFor(ctx, s.cli, accountID, kind, limit, offset)
	return entries, s.outcome("transactions", err)
}

type Balance struct {
	AccountID     int64           `json:"account_id"`
	Total         decimal.Decimal `json:"total"`
	Level         int64           `json:"level"`
	TodayEarnings decimal.Decimal `json:"today_earnings"`
}

// Balance reads the ledger sum rather than the cached column.
func (s *Service) Balance(ctx context.Context, accountID int64) (*Balance, error) {
	acc, err := account.Get(ctx, s.cli, accountID)
	if err != nil {
		return nil, s.outcome("balance", err)
	}
	total, err := s.ledger.TotalFor(ctx, s.cli, accountID)
	if err != nil {
		return nil, s.outcome("balance", err)
	}
	today, err := s.ledger.TodayEarnings(ctx, s.cli, accountID)
	if err != nil {
		return nil, s.outcome("balance", err)
	}
	return &Balance{AccountID: accountID, Total: total, Level: acc.Level, TodayEarnings: today}, nil
}

func (s *Service) ReferralStats(ctx context.Context, accountID int64) (*referral.Stats, error) {
	st, err := s.referrals.Stats(ctx, s.cli, accountID, s.bot)
	return st, s.outcome("referral_stats", err)
}

// SetTaskActive is the admin switch; it is the only mutation of a task
// definition outside a catalogue sync.
func (s *Service) SetTaskActive(ctx context.Context, taskID string, active bool) (*model.TaskDefinition, error) {
	var task *model.TaskDefinition
	err := s.atomically(ctx, "set_task_active", func(tx *sql.Tx) error {
		var err error
		if task, err = eligibility.Lookup(ctx, tx, taskID); err != nil {
			return err
		}
		if err = dao.Task.SetActive(ctx, tx, taskID, active); err != nil {
			return errors.Wrapf(err, "set task %s active=%v", taskID, active)
		}
		task.IsActive = active
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Infof("task %s active=%v", taskID, active)
	return task, nil
}

// SyncTasks upserts a catalogue. Each definition is validated before
// anything is written.
func (s *Service) SyncTasks(ctx context.Context, tasks []model.TaskDefinition) error {
	seen := make(map[string]bool, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if t.ID == "" || t.Name == "" {
			return generr.Validation.With("task #%d needs an id and a name", i+1)
		}
		if seen[t.ID] {
			return generr.Validation.With("task %q is listed twice", t.ID)
		}
		seen[t.ID] = true
		if _, err := model.ParseCategory(string(t.Category)); err != nil {
			return generr.Validation.With("task %q: %v", t.ID, err)
		}
		if _, err := model.ParseFrequency(string(t.Frequency)); err != nil {
			return generr.Validation.With("task %q: %v", t.ID, err)
		}
		if t.Reward.IsNegative() {
			return generr.Validation.With("task %q: reward must not be negative", t.ID)
		}
		if !t.Reward.Equal(t.Reward.Truncate(model.AmountPlaces)) {
			return generr.Validation.With("task %q: reward %s has more than %d decimal places",
				t.ID, t.Reward, model.AmountPlaces)
		}
		if t.CooldownHours < 0 {
			return generr.Validation.With("task %q: cooldown_hours must not be negative", t.ID)
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = s.now()
		}
	}
	return s.atomically(ctx, "sync_tasks", func(tx *sql.Tx) error {
		for i := range tasks {
			if err := dao.Task.Upsert(ctx, tx, &tasks[i]); err != nil {
				return errors.Wrapf(err, "upsert task %s", tasks[i].ID)
			}
		}
		return nil
	})
}

// Reconcile reports accounts whose cached balance drifted from the ledger.
func (s *Service) Reconcile(ctx context.Context) ([]ledger.Drift, error) {
	drifts, err := s.ledger.Reconcile(ctx, s.cli)
	if err != nil {
		return nil, s.outcome("reconcile", err)
	}
	metrics.BalanceDrift.Set(float64(len(drifts)))
	for _, d := range drifts {
		log.Warnf("balance drift on %d: cached %s, ledger %s", d.AccountID, d.Cached, d.Ledger)
	}
	return drifts, nil
}
