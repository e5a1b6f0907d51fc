package mood

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/rs/zerolog"

	"github.com/kmatsu/vibecheck/internal/config"
)

const (
	classifierTemperature = 0.2
	classifierTimeout     = 60 * time.Second
	parseExcerptLen       = 200
)

const systemPrompt = `You are a workplace mood analyst. You read a team's recent Slack messages and judge its collective mood. Respond with a JSON object only.`

const promptTemplate = `Analyze the current mood of a team from its recent Slack messages.

Positive indicators: gratitude, shipped work and launches, jokes and banter, offers to help, celebratory emoji codes like :tada: :fire: :rocket:.
Negative indicators: incidents and outages, blockers, deadline pressure, apologies, frustration, alarm emoji codes like :rotating_light: :sob: :skull:.
Neutral indicators: status updates, scheduling, routine questions.

Score the mood from 0 to 100 and pick the matching label:
0-20 Chaos, 21-40 Stressed, 41-60 Neutral, 61-80 Good, 81-100 Vibes.

A message that appears multiple times below is more recent; weight it more heavily.

Return a JSON object with exactly these keys:
{"mood_score": <integer>, "mood_label": "<Chaos|Stressed|Neutral|Good|Vibes>", "summary": "<one or two sentences>", "positive_signals": ["..."], "negative_signals": ["..."], "top_emojis": [":code:"]}

Messages, newest first:
%s`

// Classifier sends the weighted message sequence to the completion API
// and parses the mood analysis out of the JSON-mode response. One call,
// no retries; the first failure is surfaced as-is.
type Classifier struct {
	client    openaigo.Client
	model     string
	maxTokens int
	log       zerolog.Logger
}

func NewClassifier(cfg config.OpenAIConfig, httpClient *http.Client, log zerolog.Logger) *Classifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: classifierTimeout}
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		// The SDK resolves request paths against the base URL, so the
		// trailing slash matters.
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}
	return &Classifier{
		client:    openaigo.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		log:       log,
	}
}

func (c *Classifier) Classify(ctx context.Context, messages []string) (*Analysis, error) {
	prompt := fmt.Sprintf(promptTemplate, strings.Join(messages, "\n"))

	resp, err := c.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model:       openaigo.ChatModel(c.model),
		Temperature: openaigo.Float(classifierTemperature),
		MaxTokens:   openaigo.Int(int64(c.maxTokens)),
		ResponseFormat: openaigo.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.SystemMessage(systemPrompt),
			openaigo.UserMessage(prompt),
		},
	})
	if err != nil {
		var apierr *openaigo.Error
		if errors.As(err, &apierr) && apierr.Message != "" {
			return nil, fmt.Errorf("OpenAI API error: %s", apierr.Message)
		}
		return nil, fmt.Errorf("completion request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no content in completion response")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, fmt.Errorf("no content in completion response")
	}

	analysis, err := parseAnalysis(content)
	if err != nil {
		return nil, err
	}
	c.log.Debug().
		Int("mood_score", analysis.MoodScore).
		Str("mood_label", analysis.MoodLabel).
		Msg("mood classified")
	return analysis, nil
}

// parseAnalysis decodes and structurally validates the model output.
// A decode failure reports a truncated excerpt of the payload, never
// the whole thing. Scores outside [0,100] pass through unchanged.
func parseAnalysis(content string) (*Analysis, error) {
	var wire struct {
		MoodScore       *int     `json:"mood_score"`
		MoodLabel       string   `json:"mood_label"`
		Summary         string   `json:"summary"`
		PositiveSignals []string `json:"positive_signals"`
		NegativeSignals []string `json:"negative_signals"`
		TopEmojis       []string `json:"top_emojis"`
	}
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		return nil, fmt.Errorf("parse completion response %q: %w", excerpt(content), err)
	}
	if wire.MoodScore == nil {
		return nil, fmt.Errorf("completion response missing mood_score")
	}
	if wire.MoodLabel == "" {
		return nil, fmt.Errorf("completion response missing mood_label")
	}
	if !validLabel(wire.MoodLabel) {
		return nil, fmt.Errorf("completion response has unknown mood_label %q", wire.MoodLabel)
	}
	return &Analysis{
		MoodScore:       *wire.MoodScore,
		MoodLabel:       wire.MoodLabel,
		Summary:         wire.Summary,
		PositiveSignals: wire.PositiveSignals,
		NegativeSignals: wire.NegativeSignals,
		TopEmojis:       wire.TopEmojis,
	}, nil
}

func excerpt(s string) string {
	if len(s) <= parseExcerptLen {
		return s
	}
	return s[:parseExcerptLen] + "..."
}
