// Package slackapi wraps the slack-go client behind small interfaces so
// the aggregator and emoji directory can be tested against stub servers.
package slackapi

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/slack-go/slack"
)

const historyPageLimit = 200

// HistorySource fetches the recent message history of one channel.
type HistorySource interface {
	History(ctx context.Context, channelID string, oldest time.Time) ([]slack.Message, error)
}

// EmojiSource fetches the workspace emoji directory. Values are either
// image URLs for custom emoji or "alias:<name>" references.
type EmojiSource interface {
	EmojiList(ctx context.Context) (map[string]string, error)
}

type Client struct {
	api *slack.Client
}

// New builds a Client from a bot token. apiURL overrides the Slack API
// base URL and is only set in tests; it must end with a slash.
func New(token, apiURL string) *Client {
	opts := []slack.Option{}
	if apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}
	return &Client{api: slack.New(token, opts...)}
}

func (c *Client) History(ctx context.Context, channelID string, oldest time.Time) ([]slack.Message, error) {
	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Oldest:    Timestamp(oldest),
		Limit:     historyPageLimit,
	})
	if err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (c *Client) EmojiList(ctx context.Context) (map[string]string, error) {
	return c.api.GetEmojiContext(ctx)
}

// Timestamp renders a time in Slack's fractional-seconds form, the
// format used by message ts fields and the history oldest bound.
func Timestamp(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
}

// ParseTimestamp converts a Slack ts string back to seconds since epoch.
func ParseTimestamp(ts string) (float64, error) {
	v, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return 0, fmt.Errorf("parse slack timestamp %q: %w", ts, err)
	}
	return v, nil
}
