// Package referral links new accounts to the account that invited them and
// pays the signup bonus and the ongoing commission.
package referral

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"server-tonix-app/internal/app/account"
	"server-tonix-app/internal/app/ledger"
	"server-tonix-app/internal/dao"
	"server-tonix-app/internal/db"
	"server-tonix-app/internal/model"
	"server-tonix-app/internal/pkg/generr"
)

type Engine struct {
	bonus  decimal.Decimal
	rate   decimal.Decimal
	ledger *ledger.Ledger
	now    func() time.Time
}

func New(rules model.Rules, l *ledger.Ledger, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{bonus: rules.ReferralBonus, rate: rules.CommissionRate, ledger: l, now: now}
}

type Bonus struct {
	ReferralID      string          `json:"referral_id"`
	ReferrerID      int64           `json:"referrer_id"`
	BonusToReferred decimal.Decimal `json:"bonus_to_referred"`
	BonusToReferrer decimal.Decimal `json:"bonus_to_referrer"`
}

// Apply links referred to the owner of code and credits both sides.
// referred must have been read on q; its version guards the credit.
func (e *Engine) Apply(ctx context.Context, q dao.Querier, referred *model.Account, code string) (*Bonus, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, generr.Validation.With("referral code is required")
	}

	referrer, err := dao.Account.GetByReferralCode(ctx, q, code)
	if err == sql.ErrNoRows {
		return nil, generr.InvalidCode.With("referral code %q not found", code)
	}
	if err != nil {
		return nil, errors.Wrap(err, "resolve referral code")
	}
	if referrer.ID == referred.ID {
		return nil, generr.SelfReferral
	}

	existing, err := dao.Referral.GetByReferred(ctx, q, referred.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "get referral of %d", referred.ID)
	}
	if existing != nil {
		return nil, generr.AlreadyReferred
	}

	r := &model.Referral{
		ID:                uuid.NewString(),
		ReferrerAccountID: referrer.ID,
		ReferredAccountID: referred.ID,
		BonusTonix:        e.bonus,
		CommissionEarned:  decimal.Zero,
		CreatedAt:         e.now(),
	}
	if err = dao.Referral.Insert(ctx, q, r); err != nil {
		if db.IsDuplicate(err) {
			return nil, generr.AlreadyReferred
		}
		return nil, errors.Wrap(err, "insert referral")
	}

	_, err = e.ledger.Credit(ctx, q, referred, e.bonus, model.KindReferralBonus, r.ID,
		fmt.Sprintf("Joined with referral code %s", code))
	if err != nil {
		return nil, err
	}
	_, err = e.ledger.Credit(ctx, q, referrer, e.bonus, model.KindReferralBonus, r.ID,
		fmt.Sprintf("Referral bonus for inviting %s", referred.DisplayName()))
	if err != nil {
		return nil, err
	}

	return &Bonus{
		ReferralID:      r.ID,
		ReferrerID:      referrer.ID,
		BonusToReferred: e.bonus,
		BonusToReferrer: e.bonus,
	}, nil
}

type Commission struct {
	ReferrerID int64           `json:"referrer_id"`
	Amount     decimal.Decimal `json:"amount"`
	EntryID    string          `json:"entry_id"`
}

// Commission is earned * rate, truncated to the stored precision.
func (e *Engine) Commission(earned decimal.Decimal) decimal.Decimal {
	return earned.Mul(e.rate).Truncate(model.AmountPlaces)
}

// AccrueCommission credits the referrer of referredID with its share of
// earned. Accounts without a referrer, or a share that rounds to zero,
// yield nil.
func (e *Engine) AccrueCommission(ctx context.Context, q dao.Querier, referredID int64, earned decimal.Decimal,
	sourceID string) (*Commission, error) {
	r, err := dao.Referral.GetByReferred(ctx, q, referredID)
	if err != nil {
		return nil, errors.Wrapf(err, "get referral of %d", referredID)
	}
	if r == nil {
		return nil, nil
	}
	amount := e.Commission(earned)
	if !amount.IsPositive() {
		return nil, nil
	}

	referrer, err := dao.Account.Get(ctx, q, r.ReferrerAccountID)
	if err != nil {
		return nil, errors.Wrapf(err, "load referrer %d", r.ReferrerAccountID)
	}
	entry, err := e.ledger.Credit(ctx, q, referrer, amount, model.KindReferralCommission, sourceID,
		fmt.Sprintf("Commission from account %d", referredID))
	if err != nil {
		return nil, err
	}
	total := r.CommissionEarned.Add(amount)
	if err = dao.Referral.SetCommission(ctx, q, r.ID, total.String()); err != nil {
		return nil, errors.Wrapf(err, "update commission of referral %s", r.ID)
	}
	return &Commission{ReferrerID: referrer.ID, Amount: amount, EntryID: entry.ID}, nil
}

type Referee struct {
	AccountID        int64           `json:"account_id"`
	JoinedAt         time.Time       `json:"joined_at"`
	CommissionEarned decimal.Decimal `json:"commission_earned"`
}

type Stats struct {
	ReferralCode     string          `json:"referral_code"`
	InviteLink       string          `json:"invite_link"`
	TotalReferrals   int             `json:"total_referrals"`
	BonusEarned      decimal.Decimal `json:"bonus_earned"`
	CommissionEarned decimal.Decimal `json:"commission_earned"`
	TotalEarned      decimal.Decimal `json:"total_earned"`
	ReferredBy       *int64          `json:"referred_by,omitempty"`
	Referees         []Referee       `json:"referees"`
}

// InviteLink opens the bot with the code as start parameter.
func InviteLink(botUsername, code string) string {
	if botUsername == "" {
		return ""
	}
	return fmt.Sprintf("https://t.me/%s?start=%s", strings.TrimPrefix(botUsername, "@"), code)
}

func (e *Engine) Stats(ctx context.Context, q dao.Querier, accountID int64, botUsername string) (*Stats, error) {
	acc, err := account.Get(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	rows, err := dao.Referral.ListByReferrer(ctx, q, accountID)
	if err != nil {
		return nil, errors.Wrapf(err, "list referrals of %d", accountID)
	}

	s := &Stats{
		ReferralCode:     acc.ReferralCode,
		InviteLink:       InviteLink(botUsername, acc.ReferralCode),
		TotalReferrals:   len(rows),
		BonusEarned:      decimal.Zero,
		CommissionEarned: decimal.Zero,
		Referees:         make([]Referee, 0, len(rows)),
	}
	for _, r := range rows {
		s.BonusEarned = s.BonusEarned.Add(r.BonusTonix)
		s.CommissionEarned = s.CommissionEarned.Add(r.CommissionEarned)
		s.Referees = append(s.Referees, Referee{
			AccountID:        r.ReferredAccountID,
			JoinedAt:         r.CreatedAt,
			CommissionEarned: r.CommissionEarned,
		})
	}
	s.TotalEarned = s.BonusEarned.Add(s.CommissionEarned)

	by, err := dao.Referral.GetByReferred(ctx, q, accountID)
	if err != nil {
		return nil, errors.Wrapf(err, "get referral of %d", accountID)
	}
	if by != nil {
		s.ReferredBy = &by.ReferrerAccountID
	}
	return s, nil
}
