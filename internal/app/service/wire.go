package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"server-tonix-app/config"
	"server-tonix-app/internal/app/api"
	"server-tonix-app/internal/app/leaderboard"
	"server-tonix-app/internal/app/notify"
	"server-tonix-app/internal/app/reward"
	"server-tonix-app/internal/db"
	"server-tonix-app/internal/model"
)

// App is the wired reward service with its optional backends.
type App struct {
	Reward  *reward.Service
	Board   *leaderboard.Board
	Handler *api.Handler

	closers []func()
}

// Build wires the service from the loaded configuration. Redis and NATS are
// used only when configured.
func Build() (*App, error) {
	rules, err := model.LoadRules(config.Reward)
	if err != nil {
		return nil, errors.Wrap(err, "load reward rules")
	}

	app := &App{}
	var cache leaderboard.Cache
	if config.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err = rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Warnf("redis %s unreachable, leaderboard served uncached: %v", config.Redis.Addr, err)
			_ = rdb.Close()
		} else {
			cache = leaderboard.NewRedisCache(rdb, time.Duration(config.Redis.TTLSeconds)*time.Second)
			app.closers = append(app.closers, func() { _ = rdb.Close() })
			log.Infof("conn redis %s success", config.Redis.Addr)
		}
	}
	app.Board = leaderboard.New(db.Cli, rules.LeaderboardSize, cache)

	pubs := notify.Multi{notify.Log{}, app.Board}
	if config.Nats.URL != "" {
		nc, err := notify.NewNats(config.Nats.URL, config.Nats.SubjectPrefix)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, nc)
		app.closers = append(app.closers, nc.Close)
		log.Infof("conn nats %s success", config.Nats.URL)
	}

	app.Reward = reward.New(db.Cli, rules,
		reward.WithPublisher(pubs),
		reward.WithBotUsername(config.Server.BotUsername))
	app.Handler = api.New(app.Reward, app.Board)
	return app, nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
