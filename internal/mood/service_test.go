package mood

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type stubCollector struct {
	weighted []string
	err      error
}

func (s *stubCollector) Collect(_ context.Context) ([]string, error) {
	return s.weighted, s.err
}

type stubAnalyzer struct {
	analysis *Analysis
	err      error
	got      []string
}

func (s *stubAnalyzer) Classify(_ context.Context, messages []string) (*Analysis, error) {
	s.got = messages
	if s.err != nil {
		return nil, s.err
	}
	a := *s.analysis
	return &a, nil
}

func newTestService(collector Collector, analyzer Analyzer) *Service {
	emoji := NewEmojiDirectory(&stubEmojiSource{emoji: map[string]string{}}, zerolog.Nop())
	return NewService(collector, analyzer, emoji, zerolog.Nop()).
		WithClock(func() time.Time { return time.Unix(1700000000, 0) })
}

func TestReportEnvelope(t *testing.T) {
	collector := &stubCollector{weighted: []string{"a", "a", "a", "b", "b"}}
	analyzer := &stubAnalyzer{analysis: &Analysis{
		MoodScore: 90,
		MoodLabel: LabelVibes,
		Summary:   "party",
		TopEmojis: []string{":tada:"},
	}}

	report, err := newTestService(collector, analyzer).Report(context.Background())
	if err != nil {
		t.Fatalf("Report error: %v", err)
	}
	if report.SampleSize != 5 {
		t.Fatalf("sample_size = %d, want the weighted length 5", report.SampleSize)
	}
	if report.Playlist.Name != "Office Party Bangers" {
		t.Fatalf("playlist = %q, want the Vibes entry", report.Playlist.Name)
	}
	if report.GeneratedAt == "" {
		t.Fatal("generated_at not set")
	}
	if _, err := time.Parse(time.RFC3339, report.GeneratedAt); err != nil {
		t.Fatalf("generated_at %q is not RFC-3339: %v", report.GeneratedAt, err)
	}
	if report.TopEmojis[0] != "🎉" {
		t.Fatalf("top_emojis = %v, want translated glyph", report.TopEmojis)
	}
	if len(analyzer.got) != 5 {
		t.Fatalf("analyzer saw %d messages, want the full weighted sequence", len(analyzer.got))
	}
}

func TestReportEmptyWindow(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: &Analysis{MoodScore: 50, MoodLabel: LabelNeutral}}
	svc := newTestService(&stubCollector{weighted: nil}, analyzer)

	_, err := svc.Report(context.Background())
	if !errors.Is(err, ErrNoMessages) {
		t.Fatalf("error = %v, want ErrNoMessages", err)
	}
	if analyzer.got != nil {
		t.Fatal("oracle must not be called for an empty window")
	}
}

func TestReportCollectorFailurePropagates(t *testing.T) {
	collectErr := errors.New("channel C02BBBBBB: fetch history: invalid_auth")
	svc := newTestService(&stubCollector{err: collectErr}, &stubAnalyzer{})

	_, err := svc.Report(context.Background())
	if !errors.Is(err, collectErr) {
		t.Fatalf("error = %v, want the collector error unchanged", err)
	}
}

func TestReportAnalyzerFailurePropagates(t *testing.T) {
	oracleErr := errors.New("OpenAI API error: rate limited")
	svc := newTestService(&stubCollector{weighted: []string{"hello there"}}, &stubAnalyzer{err: oracleErr})

	_, err := svc.Report(context.Background())
	if !errors.Is(err, oracleErr) {
		t.Fatalf("error = %v, want the oracle error unchanged", err)
	}
}
