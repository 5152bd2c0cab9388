// main.go
package main

import (
	"context"
	"log"
	"os"
	"time"

	"book-recommendation/cmd"
	"book-recommendation/internal/data/repository"
	"book-recommendation/internal/wire"
	"book-recommendation/pkg/cache"
	"book-recommendation/pkg/database"
	"book-recommendation/pkg/mailer"
	"book-recommendation/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	cancel()

	// Connect to redis
	rdb, err := cache.InitRedis(config.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Initialize all repositories
	repos := repository.NewRepository(db, rdb, logger)

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	if purged, err := repos.Session.CleanExpiredSessions(ctx); err != nil {
		logger.Warn("Failed to purge expired sessions", zap.Error(err))
	} else {
		logger.Info("Expired sessions purged", zap.Int64("count", purged))
	}
	cancel()

	// Wire all dependencies
	app := wire.Wiring(wire.Deps{
		Repo:   repos,
		Config: config,
		Tokens: utils.NewTokenManager(config.JWT),
		Mailer: mailer.New(config.Email, logger),
		Logger: logger,
	})

	// Start server
	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server error", zap.Error(err))
		os.Exit(1)
	}
}
