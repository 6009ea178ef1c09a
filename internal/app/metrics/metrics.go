// Package metrics holds the prometheus collectors of the reward service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tonix"

// Operations counts orchestrator calls by operation and outcome code.
var Operations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "operations_total",
	Help:      "Reward operations by operation and result.",
}, []string{"op", "result"})

var Credited = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "credited_total",
	Help:      "Points credited to the ledger by entry kind.",
}, []string{"kind"})

var CommissionFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "commission_failures_total",
	Help:      "Commission accruals that failed after the task completion committed.",
})

var Retries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "tx_retries_total",
	Help:      "Transactions rerun after a version conflict or lock timeout.",
}, []string{"op"})

var BalanceDrift = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "balance_drift_accounts",
	Help:      "Accounts whose cached balance differs from the ledger at the last reconciliation.",
})

var LeaderboardRefresh = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "leaderboard_refresh_seconds",
	Help:      "Time to rebuild the leaderboard projection.",
	Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
})

var JobFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "job_failures_total",
	Help:      "Failed runs of scheduled jobs.",
}, []string{"job"})
