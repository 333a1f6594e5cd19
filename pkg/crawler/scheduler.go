package crawler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mdolezal/sreality-alert/pkg/model"
)

// Runner is one ingestion run. Satisfied by *Crawler.
type Runner interface {
	RunOnce(ctx context.Context) ([]model.Listing, error)
}

// Notifier receives the listings a run inserted. Satisfied by the telegram
// notifier; nil disables notifications.
type Notifier interface {
	NotifyNew(listings []model.Listing)
}

// Scheduler runs the crawler on a fixed interval until its context is
// cancelled. A failed run is logged and the loop keeps going; there is no
// backoff, no jitter and no overlap guard.
type Scheduler struct {
	runner   Runner
	notifier Notifier
	interval time.Duration
	log      zerolog.Logger
}

// NewScheduler creates a scheduler invoking runner every interval.
func NewScheduler(runner Runner, notifier Notifier, interval time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		notifier: notifier,
		interval: interval,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// Run executes one run immediately and then once per interval. It blocks
// until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		s.runOne(ctx)

		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return
		case <-time.After(s.interval):
		}
	}
}

func (s *Scheduler) runOne(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("crawl run panicked")
		}
	}()

	inserted, err := s.runner.RunOnce(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("crawl run failed")
		return
	}

	s.log.Info().Int("new", len(inserted)).Msg("crawl run finished")

	if s.notifier != nil && len(inserted) > 0 {
		s.notifier.NotifyNew(inserted)
	}
}
