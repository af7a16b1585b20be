package command

import (
	"context"
	"sort"

	"github.com/bwmarrin/discordgo"

	"gerard.app/bot/internal/domain"
	"gerard.app/bot/internal/worker"
)

// Reply is what a command hands back to the interaction handler: the synchronous response,
// plus an optional task to run after that response has been sent.
type Reply struct {
	Response *discordgo.InteractionResponse
	Deferred worker.Task
}

// Command is a slash command: its registration payload and its behavior.
type Command interface {
	Definition() *discordgo.ApplicationCommand
	Respond(ctx context.Context, event domain.CommandEvent) (Reply, error)
}

type Registry struct {
	commands map[string]Command
}

func NewRegistry(commands ...Command) *Registry {
	r := &Registry{commands: make(map[string]Command, len(commands))}
	for _, c := range commands {
		r.commands[c.Definition().Name] = c
	}
	return r
}

func (r *Registry) Lookup(name string) (Command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// Definitions returns every command definition sorted by name, ready for a bulk overwrite.
func (r *Registry) Definitions() []*discordgo.ApplicationCommand {
	defs := make([]*discordgo.ApplicationCommand, 0, len(r.commands))
	for _, c := range r.commands {
		defs = append(defs, c.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Message is an immediate, public reply.
func Message(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	}
}

// EphemeralMessage is an immediate reply only the invoking user sees.
func EphemeralMessage(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}

// Guild and user installs, usable in guilds, bot DMs and group DMs.
func installEverywhere(def *discordgo.ApplicationCommand) *discordgo.ApplicationCommand {
	integrations := []discordgo.ApplicationIntegrationType{
		discordgo.ApplicationIntegrationGuildInstall,
		discordgo.ApplicationIntegrationUserInstall,
	}
	contexts := []discordgo.InteractionContextType{
		discordgo.InteractionContextGuild,
		discordgo.InteractionContextBotDM,
		discordgo.InteractionContextPrivateChannel,
	}
	def.IntegrationTypes = &integrations
	def.Contexts = &contexts
	return def
}
