package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	tele "gopkg.in/telebot.v4"
	"log/slog"

	coreconfig "github.com/m3rciful/fishbot/core/config"
	coredatabase "github.com/m3rciful/fishbot/core/database"
	"github.com/m3rciful/fishbot/core/logger"
	coretelegram "github.com/m3rciful/fishbot/core/telegram"
	"github.com/m3rciful/fishbot/core/telegram/middleware"
	"github.com/m3rciful/fishbot/moltin"
	"github.com/m3rciful/fishbot/session"
	"github.com/m3rciful/fishbot/shop"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fishbot exited", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := coreconfig.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.InitLogger(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Shutdown() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	defer closeStore()

	httpClient := coretelegram.BuildHTTPClient()
	tokens := moltin.NewTokenSource(
		cfg.Moltin.BaseURL,
		cfg.Moltin.ClientID,
		cfg.Moltin.ClientSecret,
		time.Duration(cfg.Moltin.RefreshMarginSeconds)*time.Second,
		httpClient,
	)
	commerce := moltin.NewClient(cfg.Moltin.BaseURL, tokens, httpClient)

	transport := shop.NewBotTransport()
	machine := shop.NewMachine(store, commerce, transport)

	middlewares := []coretelegram.Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logging", Use: middleware.LoggerMiddleware},
	}
	if cfg.RateLimit.IntervalMS > 0 {
		exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, kind := range cfg.RateLimit.ExcludeUpdates {
			exclude[kind] = struct{}{}
		}
		middlewares = append(middlewares, coretelegram.Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval: time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
				Exclude:  exclude,
			}),
		})
	}

	return coretelegram.RunTelegram(ctx, coretelegram.RunOptions{
		Config:      cfg,
		Middlewares: middlewares,
		Routes:      shop.Routes(machine),
		OnStart: func(_ context.Context, bot *tele.Bot) error {
			transport.Bind(bot)
			return nil
		},
	})
}

func buildStore(ctx context.Context, cfg *coreconfig.Config) (session.Store, func(), error) {
	ttl := time.Duration(cfg.Session.TTLSeconds) * time.Second

	switch cfg.Session.Backend {
	case coreconfig.SessionBackendRedis:
		store, err := session.NewRedisStore(ctx, cfg.Redis, ttl)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	case coreconfig.SessionBackendPostgres:
		dbCfg := coredatabase.Config{
			Host:           cfg.Database.Host,
			Port:           cfg.Database.Port,
			User:           cfg.Database.User,
			Password:       cfg.Database.Password,
			Name:           cfg.Database.Name,
			SSLMode:        cfg.Database.SSLMode,
			MaxConnections: cfg.Database.MaxConnections,
		}
		if err := coredatabase.RunMigrations(dbCfg); err != nil {
			return nil, nil, err
		}
		db, err := coredatabase.Connect(dbCfg)
		if err != nil {
			return nil, nil, err
		}
		return session.NewPostgresStore(db), func() { _ = db.Close() }, nil
	}

	return session.NewMemoryStore(), func() {}, nil
}
