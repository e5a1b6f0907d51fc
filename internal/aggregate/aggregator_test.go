package aggregate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/kmatsu/vibecheck/internal/slackapi"
)

type stubSource struct {
	histories map[string][]slack.Message
	errs      map[string]error
}

func (s *stubSource) History(_ context.Context, channelID string, _ time.Time) ([]slack.Message, error) {
	if err := s.errs[channelID]; err != nil {
		return nil, err
	}
	return s.histories[channelID], nil
}

func message(text, ts string) slack.Message {
	return slack.Message{Msg: slack.Msg{Type: "message", Text: text, Timestamp: ts}}
}

func TestCleanFilterChain(t *testing.T) {
	tests := []struct {
		name string
		msg  slack.Message
		kept bool
	}{
		{
			name: "ordinary message survives",
			msg:  message("shipped the release :tada:", "1700000000.000100"),
			kept: true,
		},
		{
			name: "non-message type dropped",
			msg:  slack.Message{Msg: slack.Msg{Type: "reaction_added", Text: "something here", Timestamp: "1700000000.000100"}},
			kept: false,
		},
		{
			name: "channel join subtype dropped",
			msg:  slack.Message{Msg: slack.Msg{Type: "message", SubType: "channel_join", Text: "someone joined the channel", Timestamp: "1700000000.000100"}},
			kept: false,
		},
		{
			name: "thread broadcast subtype survives",
			msg:  slack.Message{Msg: slack.Msg{Type: "message", SubType: "thread_broadcast", Text: "broadcasting this update", Timestamp: "1700000000.000100"}},
			kept: true,
		},
		{
			name: "bot post dropped",
			msg:  slack.Message{Msg: slack.Msg{Type: "message", BotID: "B024BE7LH", Text: "automated deploy notice", Timestamp: "1700000000.000100"}},
			kept: false,
		},
		{
			name: "file attachment dropped",
			msg:  slack.Message{Msg: slack.Msg{Type: "message", Text: "see attached", Timestamp: "1700000000.000100", Files: []slack.File{{ID: "F123"}}}},
			kept: false,
		},
		{
			name: "empty text dropped",
			msg:  message("", "1700000000.000100"),
			kept: false,
		},
		{
			name: "too short after cleaning dropped",
			msg:  message("<@U123ABC> ok", "1700000000.000100"),
			kept: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Clean([]slack.Message{tt.msg})
			if got := len(out) == 1; got != tt.kept {
				t.Fatalf("kept = %v, want %v (out: %+v)", got, tt.kept, out)
			}
		})
	}
}

func TestTierWeight(t *testing.T) {
	tests := []struct {
		name string
		age  float64
		want int
	}{
		{"just posted", 0, 3},
		{"just under an hour", 3599.9, 3},
		{"exactly one hour falls to middle tier", 3600, 2},
		{"two hours", 7200, 2},
		{"just under six hours", 21599.9, 2},
		{"exactly six hours falls to oldest tier", 21600, 1},
		{"a day old", 86400, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tierWeight(tt.age); got != tt.want {
				t.Fatalf("tierWeight(%v) = %d, want %d", tt.age, got, tt.want)
			}
		})
	}
}

func TestWeightExpansion(t *testing.T) {
	now := time.Unix(1700000000, 0)
	nowSec := float64(now.Unix())

	msgs := []CleanedMessage{
		{Text: "fresh", Timestamp: nowSec - 60},
		{Text: "recent", Timestamp: nowSec - 2*3600},
		{Text: "old", Timestamp: nowSec - 20*3600},
	}

	got := Weight(msgs, now)
	want := []string{"fresh", "fresh", "fresh", "recent", "recent", "old"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCollectFanOutAndOrdering(t *testing.T) {
	now := time.Unix(1700000000, 0)

	source := &stubSource{histories: map[string][]slack.Message{
		"C01AAAAAA": {message("channel a is on fire :fire:", slackapi.Timestamp(now))},
		"C02BBBBBB": {message("channel b checking in", slackapi.Timestamp(now.Add(-2*time.Hour)))},
	}}

	agg := New(source, []string{"C01AAAAAA", "C02BBBBBB"}, 24*time.Hour, zerolog.Nop()).
		WithClock(func() time.Time { return now })

	got, err := agg.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("weighted length = %d, want 5 (%v)", len(got), got)
	}
	for i := 0; i < 3; i++ {
		if !strings.Contains(got[i], "channel a") {
			t.Fatalf("got[%d] = %q, want channel a text first", i, got[i])
		}
	}
	for i := 3; i < 5; i++ {
		if !strings.Contains(got[i], "channel b") {
			t.Fatalf("got[%d] = %q, want channel b text", i, got[i])
		}
	}
}

func TestCollectChannelFailureAborts(t *testing.T) {
	now := time.Unix(1700000000, 0)

	source := &stubSource{
		histories: map[string][]slack.Message{
			"C01AAAAAA": {message("all good here today", slackapi.Timestamp(now))},
		},
		errs: map[string]error{
			"C02BBBBBB": errors.New("invalid_auth"),
		},
	}

	agg := New(source, []string{"C01AAAAAA", "C02BBBBBB"}, 24*time.Hour, zerolog.Nop()).
		WithClock(func() time.Time { return now })

	_, err := agg.Collect(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "C02BBBBBB") {
		t.Fatalf("error %q does not name the failing channel", err)
	}
	if !strings.Contains(err.Error(), "invalid_auth") {
		t.Fatalf("error %q does not carry the upstream reason", err)
	}
}
