package mapper

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"gerard.app/bot/internal/domain"
)

// ErrNotACommand is returned for interactions that are not slash-command invocations.
var ErrNotACommand = errors.New("interaction is not an application command")

type InteractionMapper struct{}

func NewInteractionMapper() *InteractionMapper {
	return &InteractionMapper{}
}

// Map converts a decoded application-command interaction into a CommandEvent.
// raw is kept on the event for logging and debugging.
func (m *InteractionMapper) Map(i *discordgo.Interaction, raw json.RawMessage) (domain.CommandEvent, error) {
	if i == nil || i.Type != discordgo.InteractionApplicationCommand {
		return domain.CommandEvent{}, ErrNotACommand
	}

	data := i.ApplicationCommandData()
	if data.Name == "" {
		return domain.CommandEvent{}, fmt.Errorf("%w: missing command name", ErrNotACommand)
	}

	options := make(map[string]string)
	flattenOptions(data.Options, options)

	groupID := i.GuildID
	if groupID == "" {
		groupID = domain.DirectMessageGroup
	}

	return domain.CommandEvent{
		InteractionID: i.ID,
		AppID:         i.AppID,
		Name:          data.Name,
		Options:       options,
		UserName:      DisplayName(i),
		GroupID:       groupID,
		ChannelID:     i.ChannelID,
		Token:         i.Token,
		Locale:        string(i.Locale),
		Raw:           raw,
	}, nil
}

// Subcommand options are merged into the same map; names are unique per command.
func flattenOptions(opts []*discordgo.ApplicationCommandInteractionDataOption, into map[string]string) {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt.Type {
		case discordgo.ApplicationCommandOptionSubCommand, discordgo.ApplicationCommandOptionSubCommandGroup:
			flattenOptions(opt.Options, into)
		default:
			if opt.Value != nil {
				into[opt.Name] = fmt.Sprint(opt.Value)
			}
		}
	}
}

// DisplayName resolves the invoking user's name: guild nickname, then global name, then
// username, looking at the guild member first and the bare user (DMs) second.
func DisplayName(i *discordgo.Interaction) string {
	if i.Member != nil {
		if i.Member.Nick != "" {
			return i.Member.Nick
		}
		if u := i.Member.User; u != nil {
			if u.GlobalName != "" {
				return u.GlobalName
			}
			if u.Username != "" {
				return u.Username
			}
		}
	}
	if u := i.User; u != nil {
		if u.GlobalName != "" {
			return u.GlobalName
		}
		return u.Username
	}
	return ""
}
