// Package poll refreshes the mood report on a schedule and keeps the
// latest snapshot for the dashboard's cached endpoint.
package poll

import (
	"context"
	"fmt"
	"sync"

	rcron "github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/kmatsu/vibecheck/internal/mood"
)

// Runner runs one pipeline pass. Satisfied by mood.Service.Report.
type Runner func(ctx context.Context) (*mood.Report, error)

type Service struct {
	schedule string
	runner   Runner
	cron     *rcron.Cron
	log      zerolog.Logger

	// OnReport fires after every successful refresh with the previous
	// and the new report. Previous is nil on the first run.
	OnReport func(prev, cur *mood.Report)

	mu     sync.RWMutex
	latest *mood.Report
}

func NewService(schedule string, runner Runner, log zerolog.Logger) *Service {
	return &Service{
		schedule: schedule,
		runner:   runner,
		log:      log,
	}
}

// Start registers the schedule and kicks off an immediate first
// refresh so /api/mood/latest has data without waiting a full period.
func (s *Service) Start(ctx context.Context) error {
	s.cron = rcron.New()
	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.Refresh(ctx)
	}); err != nil {
		return fmt.Errorf("parse poll schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("poll service started")

	go s.Refresh(ctx)
	return nil
}

func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.log.Info().Msg("poll service stopped")
}

// Refresh runs one pipeline pass and swaps the snapshot. A failed run
// keeps the previous snapshot; the poll loop never aborts.
func (s *Service) Refresh(ctx context.Context) {
	report, err := s.runner(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("scheduled mood refresh failed")
		return
	}

	s.mu.Lock()
	prev := s.latest
	s.latest = report
	s.mu.Unlock()

	if s.OnReport != nil {
		s.OnReport(prev, report)
	}
}

// Latest returns the most recent successful report, or nil before the
// first refresh completes.
func (s *Service) Latest() *mood.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
