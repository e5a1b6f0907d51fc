package mood

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Collector produces the weighted message sequence. Satisfied by
// aggregate.Aggregator.
type Collector interface {
	Collect(ctx context.Context) ([]string, error)
}

// Analyzer classifies a weighted message sequence. Satisfied by
// Classifier; an interface so server tests can stub the oracle.
type Analyzer interface {
	Classify(ctx context.Context, messages []string) (*Analysis, error)
}

// Service runs the full pipeline: aggregate, classify, translate
// emojis, attach the playlist and envelope. One run per call; the first
// failure anywhere aborts the run.
type Service struct {
	collector Collector
	analyzer  Analyzer
	emoji     *EmojiDirectory
	now       func() time.Time
	log       zerolog.Logger
}

func NewService(collector Collector, analyzer Analyzer, emoji *EmojiDirectory, log zerolog.Logger) *Service {
	return &Service{
		collector: collector,
		analyzer:  analyzer,
		emoji:     emoji,
		now:       time.Now,
		log:       log,
	}
}

// WithClock overrides the wall clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Report(ctx context.Context) (*Report, error) {
	started := s.now()

	weighted, err := s.collector.Collect(ctx)
	if err != nil {
		return nil, err
	}
	if len(weighted) == 0 {
		return nil, ErrNoMessages
	}

	analysis, err := s.analyzer.Classify(ctx, weighted)
	if err != nil {
		return nil, err
	}
	analysis.TopEmojis = s.emoji.Translate(ctx, analysis.TopEmojis)

	report := &Report{
		Analysis:    *analysis,
		Playlist:    PlaylistFor(analysis.MoodLabel),
		SampleSize:  len(weighted),
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
	}
	s.log.Info().
		Str("mood_label", report.MoodLabel).
		Int("mood_score", report.MoodScore).
		Int("sample_size", report.SampleSize).
		Dur("took", s.now().Sub(started)).
		Msg("mood report generated")
	return report, nil
}
