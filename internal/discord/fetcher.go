package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"gerard.app/bot/internal/domain"
)

// DefaultHistoryLimit is the number of prior messages pulled for context.
const DefaultHistoryLimit = 50

// Fetcher reads channel metadata and recent history over the REST API.
// The two reads are independent; callers decide how to degrade when one fails.
type Fetcher struct {
	session *discordgo.Session
	limit   int
}

func NewFetcher(session *discordgo.Session, limit int) *Fetcher {
	if limit <= 0 || limit > 100 {
		limit = DefaultHistoryLimit
	}
	return &Fetcher{session: session, limit: limit}
}

// Limit is the history depth requested from Discord.
func (f *Fetcher) Limit() int {
	return f.limit
}

// ChannelName returns the channel's display name. DM channels have no name and yield "".
func (f *Fetcher) ChannelName(ctx context.Context, channelID string) (string, error) {
	ch, err := f.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("fetching channel %s: %w", channelID, err)
	}
	return ch.Name, nil
}

// History returns the latest messages of the channel, newest first as Discord delivers them.
func (f *Fetcher) History(ctx context.Context, channelID string) ([]domain.HistoryMessage, error) {
	endpoint := discordgo.EndpointChannelMessages(channelID)
	body, err := f.session.RequestWithBucketID(
		http.MethodGet,
		endpoint+"?limit="+strconv.Itoa(f.limit),
		nil,
		endpoint,
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching messages of %s: %w", channelID, err)
	}

	var raw []apiMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding messages of %s: %w", channelID, err)
	}

	messages := make([]domain.HistoryMessage, 0, len(raw))
	for _, m := range raw {
		messages = append(messages, toHistoryMessage(m))
	}
	return messages, nil
}
