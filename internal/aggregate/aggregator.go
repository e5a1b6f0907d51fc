// Package aggregate collects recent channel history and expands it into
// the recency-weighted message sequence fed to the mood classifier.
package aggregate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"golang.org/x/sync/errgroup"

	"github.com/kmatsu/vibecheck/internal/slackapi"
)

// Recency tiers. A message's cleaned text is repeated in the weighted
// sequence according to its age: the upper boundary of each tier is
// exclusive, so a message exactly one hour old falls into the middle
// tier.
const (
	recentTierAge = time.Hour
	mediumTierAge = 6 * time.Hour

	recentWeight = 3
	mediumWeight = 2
	olderWeight  = 1
)

// CleanedMessage is one surviving history entry after filtering and
// normalization.
type CleanedMessage struct {
	Text      string
	Timestamp float64
}

type Aggregator struct {
	source   slackapi.HistorySource
	channels []string
	lookback time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

func New(source slackapi.HistorySource, channels []string, lookback time.Duration, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		source:   source,
		channels: channels,
		lookback: lookback,
		now:      time.Now,
		log:      log,
	}
}

// WithClock overrides the wall clock, for tests.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Collect fetches every configured channel concurrently, filters and
// cleans the histories, sorts the union newest-first and expands it
// into the weighted sequence. The first channel failure cancels the
// remaining fetches and aborts the whole aggregation; there are no
// partial results.
func (a *Aggregator) Collect(ctx context.Context) ([]string, error) {
	now := a.now()
	oldest := now.Add(-a.lookback)

	g, gctx := errgroup.WithContext(ctx)
	perChannel := make([][]CleanedMessage, len(a.channels))

	for i, channelID := range a.channels {
		g.Go(func() error {
			raw, err := a.source.History(gctx, channelID, oldest)
			if err != nil {
				return fmt.Errorf("channel %s: fetch history: %w", channelID, err)
			}
			perChannel[i] = Clean(raw)
			a.log.Debug().
				Str("channel", channelID).
				Int("fetched", len(raw)).
				Int("kept", len(perChannel[i])).
				Msg("channel history collected")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []CleanedMessage
	for _, msgs := range perChannel {
		all = append(all, msgs...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Timestamp > all[j].Timestamp
	})

	weighted := Weight(all, now)
	a.log.Info().
		Int("messages", len(all)).
		Int("weighted", len(weighted)).
		Msg("aggregation complete")
	return weighted, nil
}

// keep applies the filter chain to one raw history entry. Each stage
// strictly narrows the previous: ordinary messages only, no system
// subtypes except thread broadcasts, no bot posts, no file attachments,
// non-empty text.
func keep(m slack.Message) bool {
	if m.Type != "message" {
		return false
	}
	if m.SubType != "" && m.SubType != "thread_broadcast" {
		return false
	}
	if m.BotID != "" {
		return false
	}
	if len(m.Files) > 0 {
		return false
	}
	return m.Text != ""
}

// Clean filters raw history entries and normalizes the survivors.
// Entries whose cleaned text is too short to carry signal are dropped,
// as are entries with unparseable timestamps.
func Clean(raw []slack.Message) []CleanedMessage {
	var out []CleanedMessage
	for _, m := range raw {
		if !keep(m) {
			continue
		}
		text := Normalize(m.Text)
		if len(text) <= minCleanedLength {
			continue
		}
		ts, err := slackapi.ParseTimestamp(m.Timestamp)
		if err != nil {
			continue
		}
		out = append(out, CleanedMessage{Text: text, Timestamp: ts})
	}
	return out
}

// Weight expands cleaned messages into the flat weighted sequence:
// each text appears once per tier weight, preserving input order. The
// sequence length, not the unique message count, is what gets reported
// downstream as the sample size.
func Weight(msgs []CleanedMessage, now time.Time) []string {
	nowSec := float64(now.UnixNano()) / 1e9
	var out []string
	for _, m := range msgs {
		w := tierWeight(nowSec - m.Timestamp)
		for i := 0; i < w; i++ {
			out = append(out, m.Text)
		}
	}
	return out
}

func tierWeight(ageSeconds float64) int {
	switch {
	case ageSeconds < recentTierAge.Seconds():
		return recentWeight
	case ageSeconds < mediumTierAge.Seconds():
		return mediumWeight
	default:
		return olderWeight
	}
}
