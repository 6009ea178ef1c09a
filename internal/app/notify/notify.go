// Package notify publishes committed account changes to out-of-band
// subscribers such as the realtime UI gateway.
package notify

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	EventCheckin       = "checkin"
	EventTaskCompleted = "task_completed"
	EventReferral      = "referral_applied"
	EventCommission    = "commission"
	EventAccount       = "account_created"
)

// Event is emitted after the transaction that caused it committed.
type Event struct {
	Type      string          `json:"type"`
	AccountID int64           `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
	SourceID  string          `json:"source_id,omitempty"`
	At        time.Time       `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Log writes events to the process log; used when no broker is configured.
type Log struct{}

func (Log) Publish(_ context.Context, e Event) error {
	log.WithFields(log.Fields{
		"type":    e.Type,
		"account": e.AccountID,
		"amount":  e.Amount.String(),
		"balance": e.Balance.String(),
	}).Debug("account event")
	return nil
}

// Multi fans an event out to every publisher and returns the first failure.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var first error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
