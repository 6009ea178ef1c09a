package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"server-tonix-app/config"
	"server-tonix-app/internal/app/service"
	"server-tonix-app/internal/db"
)

func main() {
	flag.Parse()
	config.Init()
	setupLog()
	db.Init()

	app, err := service.Build()
	if err != nil {
		log.Fatalf("build service: %+v", err)
	}
	go service.RunHttp(app.Handler)
	ticker := service.RewardTicker(app.Reward, app.Board)

	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	// kill (no param) default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be catch, so don't need add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown Server ...")
	ticker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if srv := service.GetHttp(); srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			log.Fatal("Server Shutdown:", err)
		}
	}
	app.Close()
	if err := db.Cli.Close(); err != nil {
		log.Warnf("close db: %v", err)
	}
	log.Info("Server exiting")
}

func setupLog() {
	if config.Server.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(config.Server.LogLevel)
	if err != nil {
		log.Warnf("unknown log_level %q, using info", config.Server.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
