package command

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"gerard.app/bot/internal/domain"
)

const PingName = "ping"

type Ping struct{}

func NewPing() *Ping {
	return &Ping{}
}

func (p *Ping) Definition() *discordgo.ApplicationCommand {
	return installEverywhere(&discordgo.ApplicationCommand{
		Name:        PingName,
		Description: "Ping :)",
		Type:        discordgo.ChatApplicationCommand,
	})
}

func (p *Ping) Respond(context.Context, domain.CommandEvent) (Reply, error) {
	return Reply{Response: Message("Pong !")}, nil
}
