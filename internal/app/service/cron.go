package service

import (
	"context"

	"github.com/robfig/cron"
	log "github.com/sirupsen/logrus"

	"server-tonix-app/config"
	"server-tonix-app/internal/app/leaderboard"
	"server-tonix-app/internal/app/reward"
	"server-tonix-app/internal/app/warn"
)

// RewardTicker keeps the leaderboard warm and reconciles balances nightly.
func RewardTicker(svc *reward.Service, board *leaderboard.Board) *cron.Cron {
	c := cron.New()
	rewardCfg := config.Reward
	err := c.AddFunc(rewardCfg.LeaderboardSchedule, func() {
		_, err := board.Refresh(context.Background())
		_ = warn.Must("refresh leaderboard", err)
	})
	if err != nil {
		log.Fatalf("bad leaderboard_schedule %q: %v", rewardCfg.LeaderboardSchedule, err)
	}
	err = c.AddFunc(rewardCfg.ReconcileSchedule, func() {
		drifts, err := svc.Reconcile(context.Background())
		if warn.Must("reconcile balances", err) == nil {
			log.Infof("reconciliation finished, %d accounts drifted", len(drifts))
		}
	})
	if err != nil {
		log.Fatalf("bad reconcile_schedule %q: %v", rewardCfg.ReconcileSchedule, err)
	}
	c.Start()
	return c
}
