// Package reward is the single entry point that applies check-ins, task
// completions and referral signups. Each operation runs in one database
// transaction and is retried as a whole after a version conflict.
package reward

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"server-tonix-app/internal/app/ledger"
	"server-tonix-app/internal/app/metrics"
	"server-tonix-app/internal/app/notify"
	"server-tonix-app/internal/app/referral"
	"server-tonix-app/internal/db"
	"server-tonix-app/internal/model"
	"server-tonix-app/internal/pkg/generr"
)

type Service struct {
	cli       *sql.DB
	rules     model.Rules
	ledger    *ledger.Ledger
	referrals *referral.Engine
	pub       notify.Publisher
	now       func() time.Time
	bot       string
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithPublisher(p notify.Publisher) Option {
	return func(s *Service) { s.pub = p }
}

// WithBotUsername sets the bot used in invite links.
func WithBotUsername(name string) Option {
	return func(s *Service) { s.bot = name }
}

func New(cli *sql.DB, rules model.Rules, opts ...Option) *Service {
	s := &Service{
		cli:   cli,
		rules: rules,
		pub:   notify.Log{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ledger = ledger.New(rules, s.now)
	s.referrals = referral.New(rules, s.ledger, s.now)
	return s
}

func (s *Service) Ledger() *ledger.Ledger {
	return s.ledger
}

func (s *Service) Rules() model.Rules {
	return s.rules
}

// atomically runs fn in a transaction, rerunning it on retryable storage
// failures. Nothing fn wrote survives a failed attempt.
func (s *Service) atomically(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	attempt := 0
	err := db.Retry(ctx, s.rules.MaxRetries, func() error {
		attempt++
		if attempt > 1 {
			metrics.Retries.WithLabelValues(op).Inc()
		}
		return db.WithTx(ctx, s.cli, fn)
	})
	return s.outcome(op, err)
}

// outcome keeps domain errors as they are and hides everything else behind
// generr.Persistence after logging the cause.
func (s *Service) outcome(op string, err error) error {
	if err == nil {
		metrics.Operations.WithLabelValues(op, "ok").Inc()
		return nil
	}
	var e *generr.Error
	if errors.As(err, &e) {
		metrics.Operations.WithLabelValues(op, strconv.Itoa(e.Code)).Inc()
		return e
	}
	metrics.Operations.WithLabelValues(op, "persistence").Inc()
	log.Errorf("err: %+v", errors.WithMessage(err, op))
	return generr.Persistence
}

func (s *Service) publish(ctx context.Context, e notify.Event) {
	if e.At.IsZero() {
		e.At = s.now()
	}
	if err := s.pub.Publish(ctx, e); err != nil {
		log.Warnf("publish %s event for %d: %v", e.Type, e.AccountID, err)
	}
}

func credited(kind model.EntryKind, amount decimal.Decimal) {
	metrics.Credited.WithLabelValues(string(kind)).Add(amount.InexactFloat64())
}
