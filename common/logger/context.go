package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// The interaction handler sets the Discord identifiers once and every stage of the
// deferred pipeline inherits them, so no log call has to repeat them.
type LogFields struct {
	RunID         *int64  // Snowflake id of the deferred pipeline run
	InteractionID *string // Discord interaction id
	GuildID       *string // Conversation group (guild id or "dm")
	ChannelID     *string // Discord channel id
	Command       *string // Slash command name
	Component     string  // Component name (e.g. "gerard.brain.orchestrator")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.RunID != nil {
		result.RunID = new.RunID
	}
	if new.InteractionID != nil {
		result.InteractionID = new.InteractionID
	}
	if new.GuildID != nil {
		result.GuildID = new.GuildID
	}
	if new.ChannelID != nil {
		result.ChannelID = new.ChannelID
	}
	if new.Command != nil {
		result.Command = new.Command
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen bytes, appending "..." if truncated.
// The cut never splits a UTF-8 sequence, prompts here are full of accents and emoji.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
