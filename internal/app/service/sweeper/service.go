// Package sweeper expires abandoned pending top-ups. A user who never returns
// from the hosted payment page leaves a pending entry no notification will
// ever settle; the sweep rejects those after a configured age.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"topupmart/internal/app/logger"
	"topupmart/internal/app/metrics"
	"topupmart/internal/app/storage"
)

type Service struct {
	logger       logger.Logger
	transactions storage.TransactionRepository

	interval time.Duration
	maxAge   time.Duration
	stopCh   chan struct{}
}

func New(transactions storage.TransactionRepository, interval, maxAge time.Duration) *Service {
	s := &Service{
		logger:       logger.Global().WithComponent("Sweeper.Service"),
		transactions: transactions,
		interval:     interval,
		maxAge:       maxAge,
		stopCh:       make(chan struct{}),
	}

	return s
}

func (s *Service) Start() {
	go func() {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-t.C:
				n, err := s.Sweep(context.Background())
				if err != nil {
					s.logger.Error().Err(err).Msg("Sweep failed")
					continue
				}
				if n > 0 {
					s.logger.Info().Int64("count", n).Msg("Expired stale pending top-ups")
				}
			}
		}
	}()
}

func (s *Service) Stop() {
	s.logger.Debug().Msg("Service shutdown")
	close(s.stopCh)
}

// Sweep rejects pending top-ups older than the configured age and returns how
// many were expired.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := s.transactions.RejectStalePending(ctx, time.Now().Add(-s.maxAge))
	if err != nil {
		return 0, fmt.Errorf("reject stale pending: %w", err)
	}

	metrics.PendingSwept.Add(float64(n))

	return n, nil
}
