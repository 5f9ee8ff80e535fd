package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/oakmontlabs/gatehouse/internal/auth/store"
)

// HousekeepingService periodically drops expired token records and aged
// device session rows so neither table grows without bound. Revocation is
// soft; this is hygiene, not correctness.
type HousekeepingService struct {
	Tokens           store.Tokens
	DeviceSessions   store.DeviceSessions
	Logger           *slog.Logger
	Interval         time.Duration
	SessionRetention time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService builds the service. A non-positive interval
// defaults to 1 hour and a non-positive retention to 90 days.
func NewHousekeepingService(
	tokens store.Tokens,
	sessions store.DeviceSessions,
	logger *slog.Logger,
	interval, retention time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}

	return &HousekeepingService{
		Tokens:           tokens,
		DeviceSessions:   sessions,
		Logger:           logger,
		Interval:         interval,
		SessionRetention: retention,
		stopCh:           make(chan struct{}),
		doneCh:           make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts the worker down, blocking until any in-progress cleanup ends.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup deletes expired records. Each deletion is independent; a failure
// in one does not stop the others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()

	if err := s.Tokens.DeleteExpired(ctx); err != nil {
		s.Logger.Error("failed to delete expired tokens", "error", err)
	}

	cutoff := time.Now().Add(-s.SessionRetention)
	if err := s.DeviceSessions.DeleteOlderThan(ctx, cutoff); err != nil {
		s.Logger.Error("failed to delete aged device sessions", "error", err)
	}
}
