package mood

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kmatsu/vibecheck/internal/slackapi"
)

const emojiCacheTTL = time.Hour

// fallbackEmoji covers the standard codes that Slack's emoji.list does
// not return (it only lists custom emoji and aliases). Last resort when
// a code is missing from the workspace directory or the fetch failed.
var fallbackEmoji = map[string]string{
	"smile":                 "😄",
	"grin":                  "😁",
	"joy":                   "😂",
	"rofl":                  "🤣",
	"sweat_smile":           "😅",
	"slightly_smiling_face": "🙂",
	"wink":                  "😉",
	"heart":                 "❤️",
	"heart_eyes":            "😍",
	"tada":                  "🎉",
	"partying_face":         "🥳",
	"fire":                  "🔥",
	"rocket":                "🚀",
	"sparkles":              "✨",
	"star":                  "⭐",
	"sunglasses":            "😎",
	"thumbsup":              "👍",
	"+1":                    "👍",
	"thumbsdown":            "👎",
	"-1":                    "👎",
	"clap":                  "👏",
	"raised_hands":          "🙌",
	"muscle":                "💪",
	"pray":                  "🙏",
	"eyes":                  "👀",
	"thinking_face":         "🤔",
	"neutral_face":          "😐",
	"sweat":                 "😓",
	"cry":                   "😢",
	"sob":                   "😭",
	"scream":                "😱",
	"skull":                 "💀",
	"melting_face":          "🫠",
	"facepalm":              "🤦",
	"shrug":                 "🤷",
	"rotating_light":        "🚨",
	"warning":               "⚠️",
	"white_check_mark":      "✅",
	"x":                     "❌",
	"coffee":                "☕",
	"beers":                 "🍻",
	"pizza":                 "🍕",
	"100":                   "💯",
	"zzz":                   "💤",
	"wave":                  "👋",
	"bug":                   "🐛",
	"ship":                  "🚢",

	"chart_with_upwards_trend":   "📈",
	"chart_with_downwards_trend": "📉",
}

const aliasPrefix = "alias:"

// EmojiDirectory is the process-wide cache of the workspace emoji
// mapping. It is rebuilt wholesale once the snapshot is older than the
// TTL; concurrent requests inside the freshness window share the same
// snapshot.
type EmojiDirectory struct {
	mu        sync.Mutex
	source    slackapi.EmojiSource
	ttl       time.Duration
	now       func() time.Time
	value     map[string]string
	fetchedAt time.Time
	log       zerolog.Logger
}

func NewEmojiDirectory(source slackapi.EmojiSource, log zerolog.Logger) *EmojiDirectory {
	return &EmojiDirectory{
		source: source,
		ttl:    emojiCacheTTL,
		now:    time.Now,
		log:    log,
	}
}

// WithClock overrides the wall clock, for tests.
func (d *EmojiDirectory) WithClock(now func() time.Time) *EmojiDirectory {
	d.now = now
	return d
}

// Snapshot returns the cached directory, rebuilding it when stale. A
// failed rebuild returns nil and translation falls through to the
// static table.
func (d *EmojiDirectory) Snapshot(ctx context.Context) map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if d.value != nil && now.Sub(d.fetchedAt) < d.ttl {
		return d.value
	}

	raw, err := d.source.EmojiList(ctx)
	if err != nil {
		d.log.Warn().Err(err).Msg("emoji directory fetch failed, using static fallback")
		return nil
	}

	d.value = buildDirectory(raw)
	d.fetchedAt = now
	d.log.Debug().Int("entries", len(d.value)).Msg("emoji directory rebuilt")
	return d.value
}

// buildDirectory resolves the raw emoji.list payload into a flat code
// mapping. Custom image emoji keep their literal :code: form (there is
// no glyph to substitute). Aliases resolve to their target's entry if
// present, else to the static table's guess for the target, else to
// their own literal code.
func buildDirectory(raw map[string]string) map[string]string {
	dir := make(map[string]string, len(raw))
	aliases := make(map[string]string)
	for name, val := range raw {
		if target, ok := strings.CutPrefix(val, aliasPrefix); ok {
			aliases[name] = target
			continue
		}
		dir[name] = ":" + name + ":"
	}
	for name, target := range aliases {
		switch {
		case dir[target] != "":
			dir[name] = dir[target]
		case fallbackEmoji[target] != "":
			dir[name] = fallbackEmoji[target]
		default:
			dir[name] = ":" + name + ":"
		}
	}
	return dir
}

// Translate rewrites classifier emoji codes to display strings. Total:
// every code resolves to the directory entry, the static fallback, or
// the original code unchanged.
func (d *EmojiDirectory) Translate(ctx context.Context, codes []string) []string {
	if len(codes) == 0 {
		return codes
	}
	dir := d.Snapshot(ctx)
	out := make([]string, len(codes))
	for i, code := range codes {
		out[i] = translateOne(code, dir)
	}
	return out
}

func translateOne(code string, dir map[string]string) string {
	name := strings.Trim(code, ":")
	// ":thumbsup::skin-tone-3:" resolves by its base name
	if base, _, found := strings.Cut(name, "::"); found {
		name = base
	}
	if v, ok := dir[name]; ok && v != "" {
		return v
	}
	if v, ok := fallbackEmoji[name]; ok {
		return v
	}
	return code
}
