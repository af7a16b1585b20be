package command

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"gerard.app/bot/internal/brain"
	"gerard.app/bot/internal/domain"
)

const AskName = "ollama"

const missingQuestionMessage = "Il me faut une question ! Utilise `/ollama question:...`"

// Answerer runs the deferred pipeline for an acknowledged ask.
type Answerer interface {
	Answer(ctx context.Context, event domain.CommandEvent) error
}

// Acknowledger builds the deferred "thinking" response.
type Acknowledger interface {
	Acknowledge() *discordgo.InteractionResponse
}

// Ask forwards a question to the model. The answer arrives later by editing the placeholder.
type Ask struct {
	answerer Answerer
	ack      Acknowledger
}

func NewAsk(answerer Answerer, ack Acknowledger) *Ask {
	return &Ask{answerer: answerer, ack: ack}
}

func (a *Ask) Definition() *discordgo.ApplicationCommand {
	return installEverywhere(&discordgo.ApplicationCommand{
		Name:        AskName,
		Description: "Pose une question à Ollama",
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        brain.QuestionOption,
				Description: "La question à poser",
				Required:    true,
			},
		},
	})
}

// Respond rejects a blank question before anything is acknowledged.
func (a *Ask) Respond(_ context.Context, event domain.CommandEvent) (Reply, error) {
	if _, ok := event.Option(brain.QuestionOption); !ok {
		return Reply{Response: EphemeralMessage(missingQuestionMessage)}, nil
	}

	return Reply{
		Response: a.ack.Acknowledge(),
		Deferred: func(ctx context.Context) error {
			return a.answerer.Answer(ctx, event)
		},
	}, nil
}
