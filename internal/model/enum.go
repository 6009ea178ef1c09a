package model

import "github.com/pkg/errors"

// EntryKind is the business reason behind a ledger credit.
type EntryKind string

const (
	KindTaskCompletion     EntryKind = "task_completion"
	KindDailyCheckin       EntryKind = "daily_checkin"
	KindReferralBonus      EntryKind = "referral_bonus"
	KindReferralCommission EntryKind = "referral_commission"
)

func ParseEntryKind(s string) (EntryKind, error) {
	switch k := EntryKind(s); k {
	case KindTaskCompletion, KindDailyCheckin, KindReferralBonus, KindReferralCommission:
		return k, nil
	}
	return "", errors.Errorf("unknown entry kind %q", s)
}

// Category groups tasks on the board.
type Category string

const (
	CategoryDaily   Category = "daily"
	CategoryWeekly  Category = "weekly"
	CategorySpecial Category = "special"
)

func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryDaily, CategoryWeekly, CategorySpecial:
		return c, nil
	}
	return "", errors.Errorf("unknown task category %q", s)
}

// Rank orders categories on the task board.
func (c Category) Rank() int {
	switch c {
	case CategoryDaily:
		return 0
	case CategoryWeekly:
		return 1
	case CategorySpecial:
		return 2
	}
	return 3
}

// Frequency is how often a task may be repeated.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyOnce   Frequency = "once"
)

func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(s); f {
	case FrequencyDaily, FrequencyWeekly, FrequencyOnce:
		return f, nil
	}
	return "", errors.Errorf("unknown task frequency %q", s)
}
