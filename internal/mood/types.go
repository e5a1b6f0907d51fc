// Package mood turns the weighted message sequence into a mood report:
// prompt construction, the completion call, emoji translation and the
// playlist match.
package mood

import "errors"

// Mood labels, from worst to best. The classifier must return one of
// these; anything else is a validation failure.
const (
	LabelChaos    = "Chaos"
	LabelStressed = "Stressed"
	LabelNeutral  = "Neutral"
	LabelGood     = "Good"
	LabelVibes    = "Vibes"
)

// ErrNoMessages is returned when the lookback window produced nothing
// to classify. The oracle is never called with an empty prompt.
var ErrNoMessages = errors.New("no recent messages to analyze")

// Analysis is the parsed classifier output. MoodScore is passed through
// as returned; no clamping to [0,100] is applied.
type Analysis struct {
	MoodScore       int      `json:"mood_score"`
	MoodLabel       string   `json:"mood_label"`
	Summary         string   `json:"summary"`
	PositiveSignals []string `json:"positive_signals"`
	NegativeSignals []string `json:"negative_signals"`
	TopEmojis       []string `json:"top_emojis"`
}

// Report is the wire payload served to the dashboard: the analysis
// flattened together with the playlist match and a sample envelope.
// SampleSize counts weighted entries, not unique messages.
type Report struct {
	Analysis
	Playlist    Playlist `json:"playlist"`
	SampleSize  int      `json:"sample_size"`
	GeneratedAt string   `json:"generated_at"`
}

func validLabel(label string) bool {
	switch label {
	case LabelChaos, LabelStressed, LabelNeutral, LabelGood, LabelVibes:
		return true
	}
	return false
}
