package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"gerard.app/bot/internal/domain"
)

// MaxContentLength is Discord's limit on message content, in characters.
const MaxContentLength = 2000

// ErrInteractionExpired is returned when Discord no longer knows the interaction token.
var ErrInteractionExpired = errors.New("interaction token expired or unknown")

// Publisher owns both halves of the deferred reply: the synchronous acknowledgment and the
// later edit of the original response.
type Publisher struct {
	session *discordgo.Session
}

func NewPublisher(session *discordgo.Session) *Publisher {
	return &Publisher{session: session}
}

// Acknowledge is the "thinking..." response written synchronously to the interaction request.
func (p *Publisher) Acknowledge() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}
}

// EditOriginal replaces the deferred placeholder. Mentions in content never ping anyone.
// No retry: a failed edit is terminal for the invocation.
func (p *Publisher) EditOriginal(ctx context.Context, event domain.CommandEvent, content string) error {
	content = TruncateContent(content)
	edit := &discordgo.WebhookEdit{
		Content: &content,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{},
		},
	}

	interaction := &discordgo.Interaction{AppID: event.AppID, Token: event.Token}
	if _, err := p.session.InteractionResponseEdit(interaction, edit, discordgo.WithContext(ctx)); err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return fmt.Errorf("editing original response: %w", ErrInteractionExpired)
		}
		return fmt.Errorf("editing original response: %w", err)
	}
	return nil
}

// TruncateContent cuts content to MaxContentLength characters, ending with an ellipsis when cut.
func TruncateContent(content string) string {
	if utf8.RuneCountInString(content) <= MaxContentLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:MaxContentLength-1]) + "…"
}
