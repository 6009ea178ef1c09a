package model

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"server-tonix-app/config"
	"server-tonix-app/internal/pkg/util"
)

// Rules are the parsed program constants shared by every engine.
type Rules struct {
	CheckinReward   decimal.Decimal
	ReferralBonus   decimal.Decimal
	CommissionRate  decimal.Decimal
	LevelUnit       decimal.Decimal
	Location        *time.Location // the single calendar used for check-ins
	LeaderboardSize int
	MaxRetries      int
}

// LoadRules validates the reward section of the configuration.
func LoadRules(c config.RewardConf) (Rules, error) {
	var (
		r   Rules
		err error
	)
	if r.CheckinReward, err = positive("checkin_reward", c.CheckinReward); err != nil {
		return r, err
	}
	if r.ReferralBonus, err = positive("referral_bonus", c.ReferralBonus); err != nil {
		return r, err
	}
	if r.CommissionRate, err = decimal.NewFromString(c.CommissionRate); err != nil {
		return r, errors.Wrap(err, "parse commission_rate")
	}
	if r.CommissionRate.IsNegative() || r.CommissionRate.GreaterThan(decimal.NewFromInt(1)) {
		return r, errors.Errorf("commission_rate %s out of [0,1]", c.CommissionRate)
	}
	if r.LevelUnit, err = positive("level_unit", c.LevelUnit); err != nil {
		return r, err
	}
	if c.UTCOffsetHours < -12 || c.UTCOffsetHours > 14 {
		return r, errors.Errorf("utc_offset_hours %d out of range", c.UTCOffsetHours)
	}
	r.Location = util.FixedOffset(c.UTCOffsetHours)
	r.LeaderboardSize = c.LeaderboardSize
	if r.LeaderboardSize <= 0 {
		r.LeaderboardSize = 100
	}
	r.MaxRetries = c.MaxRetries
	if r.MaxRetries <= 0 {
		r.MaxRetries = 1
	}
	return r, nil
}

// DefaultRules is LoadRules over the shipped defaults.
func DefaultRules() Rules {
	r, err := LoadRules(config.DefaultReward())
	if err != nil {
		panic(err)
	}
	return r
}

func positive(name, v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return d, errors.Wrapf(err, "parse %s", name)
	}
	if !d.IsPositive() {
		return d, errors.Errorf("%s must be positive, got %s", name, v)
	}
	if !d.Equal(d.Truncate(AmountPlaces)) {
		return d, errors.Errorf("%s %s has more than %d decimal places", name, v, AmountPlaces)
	}
	return d, nil
}
