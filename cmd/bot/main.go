// cmd/bot/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"acebot/config"
	"acebot/internal/ai"
	"acebot/internal/bot"
	"acebot/internal/catalog"
	"acebot/internal/db"
	"acebot/internal/history"
	"acebot/internal/server"
	"acebot/internal/storage"
	"acebot/pkg/logger"
)

func main() {
	l := logger.New()
	l.Info("Starting AceBot...")

	cfg, err := config.Load()
	if err != nil {
		l.Fatal("Failed to load config", err)
	}

	if cfg.Telegram.Token == "" {
		l.Fatal("Telegram token is not configured")
	}
	if cfg.AI.APIKey == "" {
		l.Fatal("AI API key is not configured")
	}
	if len(cfg.Telegram.Moderators) == 0 {
		l.Warn("No payment moderators configured; upgrade requests cannot be resolved")
	}

	// Record store, with connect retry for slow database startup.
	database, err := connectWithRetry(5, func() (*db.PostgresDB, error) {
		return db.NewPostgresDB(cfg.DB)
	}, time.Sleep, l)
	if err != nil {
		l.Fatal("Failed to connect to database after multiple attempts", err)
	}
	defer database.Close()

	files, err := storage.NewClient(cfg.Storage)
	if err != nil {
		l.Fatal("Failed to create storage client", err)
	}

	completer := ai.NewClient(cfg.AI.APIKey).WithModel(cfg.AI.Model)

	// Chat history is optional: without Redis the AI chat still works,
	// each question just stands alone.
	var hist bot.ChatHistory
	if cfg.Redis.Addr != "" {
		redisHist, err := history.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			cfg.Redis.HistoryLimit, cfg.Redis.HistoryTTL)
		if err != nil {
			l.Fatal("Failed to connect to redis", err)
		}
		defer redisHist.Close()
		hist = redisHist
	} else {
		l.Warn("Redis not configured; AI chat runs without conversation history")
	}

	cat := catalog.Default().Merge(cfg.Catalog)

	telegramBot, err := bot.New(cfg.Telegram.Token, database, files, completer, hist, cat,
		bot.Options{
			Moderators:     cfg.Telegram.Moderators,
			SupportContact: cfg.Telegram.SupportContact,
			ReferralReward: cfg.Referral.Reward,
		}, l)
	if err != nil {
		l.Fatal("Failed to create Telegram bot", err)
	}

	if err := telegramBot.Start(context.Background()); err != nil {
		l.Fatal("Failed to start Telegram bot", err)
	}
	l.Info("Telegram bot started successfully")

	httpServer := server.New(cfg.Server.Port, database, l)
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("Failed to start HTTP server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("Shutting down bot...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		l.Error("Error during HTTP server shutdown", err)
	}
	if err := telegramBot.Stop(ctx); err != nil {
		l.Error("Error during bot shutdown", err)
	}

	l.Info("Bot stopped successfully")
}

// connectWithRetry retries the database connection with a linear backoff.
// No sleep follows the final failed attempt.
func connectWithRetry(attempts int, connect func() (*db.PostgresDB, error),
	sleep func(time.Duration), l *logger.Logger) (*db.PostgresDB, error) {

	var database *db.PostgresDB
	var err error
	for i := 0; i < attempts; i++ {
		database, err = connect()
		if err == nil {
			return database, nil
		}
		l.Error("Failed to connect to database, retrying...", err)
		if i < attempts-1 {
			sleep(time.Duration(i+1) * time.Second)
		}
	}
	return nil, err
}
