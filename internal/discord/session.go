package discord

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
)

// NewSession creates a REST-only session. The bot never opens the gateway websocket:
// interactions arrive over HTTP and every outbound call is a plain REST request.
func NewSession(botToken string) (*discordgo.Session, error) {
	if botToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	s, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	s.Client = &http.Client{Timeout: 20 * time.Second}
	s.UserAgent = "DiscordBot (https://github.com/bwmarrin/discordgo, gerard)"
	return s, nil
}
