package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/beatme/internal/auth/tokenstore"
)

// HousekeepingService periodically sweeps expired entries from token stores
// that don't expire on their own. Users are never deleted.
type HousekeepingService struct {
	Sweeper  tokenstore.Sweeper // nil for Redis
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(sweeper tokenstore.Sweeper, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Sweeper:  sweeper,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	s.Logger.DebugContext(ctx, "starting housekeeping cleanup")

	swept := 0
	if s.Sweeper != nil {
		swept = s.Sweeper.Sweep(s.Now())
	}

	s.Logger.InfoContext(ctx, "housekeeping cleanup completed", "tokens_swept", swept)
}
