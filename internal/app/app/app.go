package app

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/go-redis/redis/v8"
	"topupmart/internal/app/config"
	"topupmart/internal/app/feed"
	"topupmart/internal/app/logger"
	"topupmart/internal/app/metrics"
	"topupmart/internal/app/service/orders"
	"topupmart/internal/app/service/payment"
	"topupmart/internal/app/service/sweeper"
	walletsvc "topupmart/internal/app/service/wallet"
	"topupmart/internal/app/session"
	"topupmart/internal/app/storage"
	"topupmart/internal/app/storage/postgres"
	"topupmart/pkg/sslcommerz"
)

type App struct {
	config       config.Config
	logger       logger.Logger
	users        storage.UserRepository
	transactions storage.TransactionRepository
	orders       storage.OrderRepository
	gateways     storage.GatewayRepository
	session      session.Manager
	feed         *feed.Publisher
	payments     *payment.Service
	orderSvc     *orders.Service
	wallet       *walletsvc.Service
	sweeper      *sweeper.Service
	stopCh       chan struct{}
}

func New(cfg config.Config, l logger.Logger, e embed.FS) (*App, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if err := applyMigrations(e, db); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}

	users, err := postgres.NewUserRepository(db)
	if err != nil {
		return nil, fmt.Errorf("user repository init: %w", err)
	}

	transactions, err := postgres.NewTransactionRepository(db)
	if err != nil {
		return nil, fmt.Errorf("transaction repository init: %w", err)
	}

	orderRepo, err := postgres.NewOrderRepository(db)
	if err != nil {
		return nil, fmt.Errorf("order repository init: %w", err)
	}

	gateways, err := postgres.NewGatewayRepository(db)
	if err != nil {
		return nil, fmt.Errorf("gateway repository init: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		// feeds degrade to logged drops, everything else keeps working
		l.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, realtime feeds disabled")
	}
	pub := feed.NewPublisher(rdb)

	metrics.Init()

	gatewayClient := sslcommerz.NewService(sslcommerz.WithLogger(l.Logger))

	a := &App{
		config:       cfg,
		logger:       l,
		stopCh:       make(chan struct{}),
		users:        users,
		transactions: transactions,
		orders:       orderRepo,
		gateways:     gateways,
		session:      session.NewMemory(cfg.SecretKey, users),
		feed:         pub,
		payments: payment.New(transactions, gateways, gatewayClient, pub,
			cfg.Payment.ServerBaseURL, cfg.Payment.ClientBaseURL),
		orderSvc: orders.New(db, orderRepo, transactions, pub),
		wallet:   walletsvc.New(transactions, pub),
		sweeper:  sweeper.New(transactions, cfg.Sweeper.Interval, cfg.Sweeper.MaxPendingAge),
	}

	a.sweeper.Start()

	go func() {
		<-a.stopCh
		a.logger.Info().Msg("Shutting down application")
	}()

	return a, nil
}

func (a *App) Stop() {
	a.sweeper.Stop()
	close(a.stopCh)
}
