package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile is the verified identity tuple handed over by the host client.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	PhotoURL  string `json:"photo_url"`
}

// Account is one user of the reward program.
type Account struct {
	Seq             int64           `json:"-"`  // creation order
	ID              int64           `json:"id"` // telegram user id
	Profile                         // display fields
	ReferralCode    string          `json:"referral_code"`
	TotalBalance    decimal.Decimal `json:"total_balance"` // cached Σ ledger
	Level           int64           `json:"level"`
	CurrentStreak   int64           `json:"current_streak"`
	LastCheckinDate string          `json:"last_checkin_date,omitempty"` // YYYY-MM-DD in the program offset
	TotalDays       int64           `json:"total_days"`
	Version         int64           `json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// DisplayName prefers the username, then the first/last name pair.
func (a Account) DisplayName() string {
	if a.Username != "" {
		return "@" + a.Username
	}
	if a.LastName != "" {
		return a.FirstName + " " + a.LastName
	}
	return a.FirstName
}

// AmountPlaces is the number of decimal places every stored amount keeps.
const AmountPlaces = 8

type LedgerEntry struct {
	ID          string          `json:"id"`
	AccountID   int64           `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        EntryKind       `json:"kind"`
	SourceID    string          `json:"source_id,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type TaskDefinition struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      Category        `json:"category"`
	Frequency     Frequency       `json:"frequency"`
	Reward        decimal.Decimal `json:"reward"`
	CooldownHours int64           `json:"cooldown_hours"`
	IsActive      bool            `json:"is_active"`
	ActionURL     string          `json:"action_url,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TaskCompletion is a finished attempt. NextAvailableAt is nil for
// tasks that can only be done once.
type TaskCompletion struct {
	ID              string          `json:"id"`
	AccountID       int64           `json:"account_id"`
	TaskID          string          `json:"task_id"`
	Status          string          `json:"status"`
	CompletedAt     time.Time       `json:"completed_at"`
	NextAvailableAt *time.Time      `json:"next_available_at,omitempty"`
	TonixEarned     decimal.Decimal `json:"tonix_earned"`
}

const CompletionStatusCompleted = "completed"

type Referral struct {
	ID                string          `json:"id"`
	ReferrerAccountID int64           `json:"referrer_account_id"`
	ReferredAccountID int64           `json:"referred_account_id"`
	BonusTonix        decimal.Decimal `json:"bonus_tonix"`
	CommissionEarned  decimal.Decimal `json:"commission_earned"`
	CreatedAt         time.Time       `json:"created_at"`
}

type LeaderboardEntry struct {
	Rank         int             `json:"rank"`
	AccountID    int64           `json:"account_id"`
	Name         string          `json:"name"`
	PhotoURL     string          `json:"photo_url,omitempty"`
	TotalBalance decimal.Decimal `json:"total_balance"`
}
