package reward

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"server-tonix-app/internal/app/account"
	"server-tonix-app/internal/app/checkin"
	"server-tonix-app/internal/app/eligibility"
	"server-tonix-app/internal/app/metrics"
	"server-tonix-app/internal/app/notify"
	"server-tonix-app/internal/app/referral"
	"server-tonix-app/internal/dao"
	"server-tonix-app/internal/model"
	"server-tonix-app/internal/pkg/generr"
)

type CheckinResult struct {
	Account    *model.Account     `json:"account"`
	Transition checkin.Transition `json:"transition"`
	Reward     decimal.Decimal    `json:"reward"`
	Entry      *model.LedgerEntry `json:"entry"`
}

// CheckIn records today's check-in and pays the check-in reward.
func (s *Service) CheckIn(ctx context.Context, accountID int64) (*CheckinResult, error) {
	var res *CheckinResult
	err := s.atomically(ctx, "checkin", func(tx *sql.Tx) error {
		acc, err := account.Get(ctx, tx, accountID)
		if err != nil {
			return err
		}
		t, err := checkin.Apply(acc, s.now(), s.rules.Location)
		if err != nil {
			return err
		}
		entry, err := s.ledger.Credit(ctx, tx, acc, s.rules.CheckinReward, model.KindDailyCheckin, t.Today,
			fmt.Sprintf("Daily check-in, day %d of streak", t.Streak))
		if err != nil {
			return err
		}
		res = &CheckinResult{Account: acc, Transition: t, Reward: s.rules.CheckinReward, Entry: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	credited(model.KindDailyCheckin, res.Reward)
	s.publish(ctx, notify.Event{
		Type:      notify.EventCheckin,
		AccountID: accountID,
		Amount:    res.Reward,
		Balance:   res.Account.TotalBalance,
		SourceID:  res.Entry.ID,
	})
	return res, nil
}

type TaskResult struct {
	Completion *model.TaskCompletion `json:"completion"`
	Reward     decimal.Decimal       `json:"reward"`
	NewBalance decimal.Decimal       `json:"new_balance"`
	Level      int64                 `json:"level"`
	Entry      *model.LedgerEntry    `json:"entry,omitempty"`
	Commission *referral.Commission  `json:"commission,omitempty"`
	Warnings   []string              `json:"warnings,omitempty"`
}

// CompleteTask records a completion when the task is currently available and
// pays its reward. The referrer's commission is accrued afterwards in its
// own transaction; a failure there is returned as a warning.
func (s *Service) CompleteTask(ctx context.Context, accountID int64, taskID string) (*TaskResult, error) {
	var res *TaskResult
	err := s.atomically(ctx, "complete_task", func(tx *sql.Tx) error {
		acc, err := account.Get(ctx, tx, accountID)
		if err != nil {
			return err
		}
		now := s.now()
		task, decision, err := eligibility.Check(ctx, tx, accountID, taskID, now)
		if err != nil {
			return err
		}
		if !decision.CanComplete {
			return decision.Err(s.rules.Location)
		}

		c := &model.TaskCompletion{
			ID:              uuid.NewString(),
			AccountID:       accountID,
			TaskID:          task.ID,
			Status:          model.CompletionStatusCompleted,
			CompletedAt:     now,
			NextAvailableAt: eligibility.NextAvailable(task, now),
			TonixEarned:     task.Reward,
		}
		if err = dao.Completion.Insert(ctx, tx, c); err != nil {
			return errors.Wrapf(err, "insert completion of %s", task.ID)
		}

		var entry *model.LedgerEntry
		if task.Reward.IsPositive() {
			entry, err = s.ledger.Credit(ctx, tx, acc, task.Reward, model.KindTaskCompletion, c.ID,
				fmt.Sprintf("Completed task: %s", task.Name))
			if err != nil {
				return err
			}
		} else {
			// no credit, but the version bump still serializes racing completions
			acc.UpdatedAt = now
			if err = dao.Account.SaveState(ctx, tx, acc); err != nil {
				return errors.Wrapf(err, "save account %d", accountID)
			}
		}
		res = &TaskResult{
			Completion: c,
			Reward:     task.Reward,
			NewBalance: acc.TotalBalance,
			Level:      acc.Level,
			Entry:      entry,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Entry != nil {
		credited(model.KindTaskCompletion, res.Reward)
		s.publish(ctx, notify.Event{
			Type:      notify.EventTaskCompleted,
			AccountID: accountID,
			Amount:    res.Reward,
			Balance:   res.NewBalance,
			SourceID:  res.Completion.ID,
		})
		res.Commission, err = s.accrueCommission(ctx, accountID, res.Reward, res.Completion.ID)
		if err != nil {
			metrics.CommissionFailures.Inc()
			log.Warnf("commission for completion %s of %d: %+v", res.Completion.ID, accountID, err)
			res.Warnings = append(res.Warnings, "referral commission could not be credited")
		}
	}
	return res, nil
}

func (s *Service) accrueCommission(ctx context.Context, referredID int64, earned decimal.Decimal,
	sourceID string) (*referral.Commission, error) {
	var c *referral.Commission
	err := s.atomically(ctx, "commission", func(tx *sql.Tx) error {
		var err error
		c, err = s.referrals.AccrueCommission(ctx, tx, referredID, earned, sourceID)
		return err
	})
	if err != nil || c == nil {
		return nil, err
	}

	credited(model.KindReferralCommission, c.Amount)
	s.publish(ctx, notify.Event{
		Type:      notify.EventCommission,
		AccountID: c.ReferrerID,
		Amount:    c.Amount,
		SourceID:  c.EntryID,
	})
	return c, nil
}

type ReferralResult struct {
	referral.Bonus
	Account *model.Account `json:"account"`
}

// ApplyReferral links the account to the owner of code. The signup bonus is
// credited to both sides in the same transaction.
func (s *Service) ApplyReferral(ctx context.Context, accountID int64, code string) (*ReferralResult, error) {
	var res *ReferralResult
	err := s.atomically(ctx, "apply_referral", func(tx *sql.Tx) error {
		acc, err := account.Get(ctx, tx, accountID)
		if err != nil {
			return err
		}
		bonus, err := s.referrals.Apply(ctx, tx, acc, code)
		if err != nil {
			return err
		}
		res = &ReferralResult{Bonus: *bonus, Account: acc}
		return nil
	})
	if err != nil {
		return nil, err
	}

	credited(model.KindReferralBonus, res.BonusToReferred.Add(res.BonusToReferrer))
	s.publish(ctx, notify.Event{
		Type:      notify.EventReferral,
		AccountID: accountID,
		Amount:    res.BonusToReferred,
		Balance:   res.Account.TotalBalance,
		SourceID:  res.ReferralID,
	})
	s.publish(ctx, notify.Event{
		Type:      notify.EventReferral,
		AccountID: res.ReferrerID,
		Amount:    res.BonusToReferrer,
		SourceID:  res.ReferralID,
	})
	return res, nil
}

type SessionResult struct {
	Account  *model.Account  `json:"account"`
	Created  bool            `json:"created"`
	Referral *ReferralResult `json:"referral,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// StartSession registers the verified identity. A new account that arrived
// through an invite link gets the referral applied; a rejected code is
// reported as a warning and never fails the session.
func (s *Service) StartSession(ctx context.Context, accountID int64, profile model.Profile, startParam string) (*SessionResult, error) {
	var res SessionResult
	err := s.atomically(ctx, "session", func(tx *sql.Tx) error {
		var err error
		res.Account, res.Created, err = account.GetOrCreate(ctx, tx, accountID, profile, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	if res.Created {
		s.publish(ctx, notify.Event{Type: notify.EventAccount, AccountID: accountID, Balance: decimal.Zero})
	}

	if !res.Created || startParam == "" {
		return &res, nil
	}
	ref, err := s.ApplyReferral(ctx, accountID, startParam)
	if err != nil {
		log.Warnf("start param %q for %d: %v", startParam, accountID, err)
		res.Warnings = append(res.Warnings, generr.From(err).Msg)
		return &res, nil
	}
	res.Referral = ref
	res.Account = ref.Account
	return &res, nil
}
