// Package account owns account creation and the values derived from a
// balance.
package account

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"server-tonix-app/internal/dao"
	"server-tonix-app/internal/db"
	"server-tonix-app/internal/model"
	"server-tonix-app/internal/pkg/generr"
)

// RecomputeLevel is floor(balance / unit). A non-positive balance is level 0.
func RecomputeLevel(balance, unit decimal.Decimal) int64 {
	if !balance.IsPositive() || !unit.IsPositive() {
		return 0
	}
	return balance.Div(unit).Floor().IntPart()
}

// ReferralCode is the code assigned at creation: the decimal account id.
func ReferralCode(id int64) string {
	return strconv.FormatInt(id, 10)
}

// GetOrCreate returns the account with the given id, creating it on first
// contact. Profile fields are refreshed only when they changed, so repeated
// identical calls leave the row untouched. Losing a creation race yields a
// wrapped db.ErrConflict; run it under db.Retry.
func GetOrCreate(ctx context.Context, q dao.Querier, id int64, profile model.Profile, now time.Time) (*model.Account, bool, error) {
	if id <= 0 {
		return nil, false, generr.Validation.With("account id must be positive")
	}

	acc, err := dao.Account.Get(ctx, q, id)
	switch {
	case err == nil:
		if acc.Profile == profile || profile == (model.Profile{}) {
			return acc, false, nil
		}
		acc.Profile = profile
		acc.UpdatedAt = now
		if err = dao.Account.UpdateProfile(ctx, q, acc); err != nil {
			return nil, false, errors.Wrapf(err, "update profile of %d", id)
		}
		return acc, false, nil
	case err != sql.ErrNoRows:
		return nil, false, errors.Wrapf(err, "get account %d", id)
	}

	acc = &model.Account{
		ID:           id,
		Profile:      profile,
		ReferralCode: ReferralCode(id),
		TotalBalance: decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = dao.Account.Insert(ctx, q, acc)
	if err == nil {
		log.Infof("account %d created", id)
		return acc, true, nil
	}
	if db.IsDuplicate(err) {
		// a concurrent first contact won; its row is only visible to a
		// fresh transaction, so the caller reruns the whole operation
		return nil, false, errors.Wrapf(db.ErrConflict, "account %d created concurrently", id)
	}
	return nil, false, errors.Wrapf(err, "insert account %d", id)
}

// Get maps a missing row to generr.NotFound.
func Get(ctx context.Context, q dao.Querier, id int64) (*model.Account, error) {
	acc, err := dao.Account.Get(ctx, q, id)
	if err == sql.ErrNoRows {
		return nil, generr.NotFound.With("account %d not found", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get account %d", id)
	}
	return acc, nil
}
