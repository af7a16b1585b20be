package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"gerard.app/bot/internal/domain"
)

// apiMessage is decoded by hand: discordgo rejects unknown component types, and bot replies
// built from layout components would make the whole history page fail to decode.
type apiMessage struct {
	ID         string                `json:"id"`
	Type       discordgo.MessageType `json:"type"`
	Content    string                `json:"content"`
	Timestamp  time.Time             `json:"timestamp"`
	Author     apiUser               `json:"author"`
	Mentions   []apiUser             `json:"mentions"`
	Components []apiComponent        `json:"components"`
}

type apiUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
	Bot        bool   `json:"bot"`
}

type apiComponent struct {
	Type       int            `json:"type"`
	Content    string         `json:"content"`
	Components []apiComponent `json:"components"`
}

func (u apiUser) displayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

func messageKind(t discordgo.MessageType) domain.MessageKind {
	switch t {
	case discordgo.MessageTypeDefault:
		return domain.MessageKindPlain
	case discordgo.MessageTypeReply:
		return domain.MessageKindReply
	case discordgo.MessageTypeChatInputCommand:
		return domain.MessageKindCommandReply
	default:
		return domain.MessageKindUnknown
	}
}

// firstComponentText returns the first text found walking the components depth-first.
func firstComponentText(components []apiComponent) string {
	for _, c := range components {
		if c.Content != "" {
			return c.Content
		}
		if text := firstComponentText(c.Components); text != "" {
			return text
		}
	}
	return ""
}

func toHistoryMessage(m apiMessage) domain.HistoryMessage {
	mentions := make(map[string]string, len(m.Mentions))
	for _, u := range m.Mentions {
		mentions[u.ID] = u.Username
	}

	return domain.HistoryMessage{
		ID:            m.ID,
		Kind:          messageKind(m.Type),
		AuthorName:    m.Author.displayName(),
		AuthorHandle:  m.Author.Username,
		Automated:     m.Author.Bot,
		Content:       m.Content,
		ComponentText: firstComponentText(m.Components),
		CreatedAt:     m.Timestamp,
		Mentions:      mentions,
	}
}
