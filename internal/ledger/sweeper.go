package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Sweeper periodically expires past-due policies so reported status tracks
// the clock.
type Sweeper struct {
	ledger    *Ledger
	interval  time.Duration
	scheduler *gocron.Scheduler
	logger    *slog.Logger
}

// NewSweeper creates a sweeper running ExpireDue on the given interval.
func NewSweeper(l *Ledger, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		ledger:    l,
		interval:  interval,
		scheduler: gocron.NewScheduler(time.UTC),
		logger:    logger,
	}
}

// Start schedules the periodic sweep job.
func (s *Sweeper) Start() error {
	seconds := int(s.interval.Seconds())
	if seconds <= 0 {
		seconds = 600
	}

	_, err := s.scheduler.Every(seconds).Seconds().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.ledger.ExpireDue(ctx); err != nil {
			s.logger.ErrorContext(ctx, "expiry sweep failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Sweeper) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
