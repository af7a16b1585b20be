package domain

import (
	"encoding/json"
	"strings"
)

// DirectMessageGroup is the conversation group used when a command is invoked outside a guild.
const DirectMessageGroup = "dm"

// CommandEvent is a slash-command invocation as received from Discord. It is built once by
// the interaction handler and never mutated; the deferred pipeline reads it to fetch context
// and to address the placeholder edit.
type CommandEvent struct {
	InteractionID string
	AppID         string
	Name          string            // slash command name
	Options       map[string]string // option name -> stringified value
	UserName      string            // display name of the invoking user
	GroupID       string            // guild id, or DirectMessageGroup
	ChannelID     string
	Token         string // continuation token for the deferred edit, valid 15 minutes
	Locale        string
	Raw           json.RawMessage // original interaction payload
}

// Option returns the trimmed value of a named option and whether it is non-blank.
func (e CommandEvent) Option(name string) (string, bool) {
	v, ok := e.Options[name]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// IsDirectMessage reports whether the command was invoked outside a guild.
func (e CommandEvent) IsDirectMessage() bool {
	return e.GroupID == DirectMessageGroup
}
