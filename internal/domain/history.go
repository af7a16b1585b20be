package domain

import "time"

// MessageKind tags the shape of a channel message so text extraction can be explicit per kind.
type MessageKind int

const (
	MessageKindUnknown      MessageKind = iota
	MessageKindPlain                    // Discord type 0
	MessageKindReply                    // Discord type 19, a user reply to another message
	MessageKindCommandReply             // Discord type 20, the response to a slash command
)

// HistoryMessage is one prior message of the channel, read-only and never persisted.
type HistoryMessage struct {
	ID            string
	Kind          MessageKind
	AuthorName    string // display name (global name, falling back to handle)
	AuthorHandle  string
	Automated     bool
	Content       string
	ComponentText string // text of the first structured component, if any
	CreatedAt     time.Time
	Mentions      map[string]string // user id -> handle
}

// Text extracts the user-visible text of the message. Kinds without a known shape carry no
// text and are skipped by the prompt composer.
func (m HistoryMessage) Text() string {
	switch m.Kind {
	case MessageKindPlain, MessageKindReply:
		return m.Content
	case MessageKindCommandReply:
		// Replies built from components keep their text there; plain edits use content.
		if m.ComponentText != "" {
			return m.ComponentText
		}
		return m.Content
	default:
		return ""
	}
}

// ConversationContext is the per-invocation view of the channel handed to the composer.
type ConversationContext struct {
	ChannelName string
	History     []string // formatted lines, oldest first
}
