package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZJUSCT/TopTSP/internal/api/admin"
	"github.com/ZJUSCT/TopTSP/internal/api/user"
	"github.com/ZJUSCT/TopTSP/internal/competition"
	"github.com/ZJUSCT/TopTSP/internal/config"
	"github.com/ZJUSCT/TopTSP/internal/database"
	"github.com/ZJUSCT/TopTSP/internal/pubsub"

	"go.uber.org/zap"
)

var Version = "dev-build"

func main() {

	fmt.Fprintf(os.Stderr, "ZJUSCT TopTSP %s - Travelling Salesman Competition Server\n\n", Version)

	// config
	var configPath string
	flag.StringVar(&configPath, "c", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// logger
	var logger *zap.Logger
	if cfg.Logger.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if cfg.Auth.JWT.Secret == "" {
		zap.S().Fatal("auth.jwt.secret must be set")
	}

	// database
	db, err := database.Init(cfg.Storage.Database)
	if err != nil {
		zap.S().Fatalf("failed to initialize database: %v", err)
	}
	zap.S().Info("database initialized successfully")

	// competition service
	broker := pubsub.GetBroker()
	svc := competition.NewService(database.NewStore(db),
		competition.WithPublisher(broker),
		competition.WithDefaultInstanceName(cfg.Competition.InstanceName),
	)
	if err := svc.Bootstrap(cfg); err != nil {
		zap.S().Fatalf("failed to bootstrap competition: %v", err)
	}

	// API routers
	userEngine := user.NewUserRouter(cfg, svc, broker)
	adminEngine := admin.NewAdminRouter(cfg, svc)

	// start servers
	go func() {
		zap.S().Infof("starting user server at %s", cfg.Listen)
		if err := userEngine.Run(cfg.Listen); err != nil {
			zap.S().Fatalf("failed to start user server: %v", err)
		}
	}()

	if cfg.Admin.Enabled {
		go func() {
			zap.S().Infof("starting admin server at %s", cfg.Admin.Listen)
			if err := adminEngine.Run(cfg.Admin.Listen); err != nil {
				zap.S().Fatalf("failed to start admin server: %v", err)
			}
		}()
	}

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.S().Info("shutting down server...")
	broker.CloseTopic(pubsub.TopicRanking)
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
