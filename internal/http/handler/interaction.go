package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"

	"gerard.app/bot/common/id"
	"gerard.app/bot/common/logger"
	"gerard.app/bot/internal/command"
	"gerard.app/bot/internal/domain"
	"gerard.app/bot/internal/worker"
)

const maxInteractionBodyBytes = 1 << 20

const restartingMessage = "Redémarrage en cours, réessaie dans un instant."

// Dispatcher schedules deferred work keyed by conversation group.
type Dispatcher interface {
	Submit(ctx context.Context, key string, task worker.Task) error
}

// Mapper turns a decoded interaction into a CommandEvent.
type Mapper interface {
	Map(i *discordgo.Interaction, raw json.RawMessage) (domain.CommandEvent, error)
}

type InteractionHandler struct {
	registry   *command.Registry
	mapper     Mapper
	dispatcher Dispatcher
}

func NewInteractionHandler(registry *command.Registry, mapper Mapper, dispatcher Dispatcher) *InteractionHandler {
	return &InteractionHandler{
		registry:   registry,
		mapper:     mapper,
		dispatcher: dispatcher,
	}
}

// Handle answers Discord within its 3 second window. Deferred work is submitted only after
// the synchronous response has been flushed.
func (h *InteractionHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxInteractionBodyBytes))
	if err != nil {
		slog.WarnContext(ctx, "failed to read interaction body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var interaction discordgo.Interaction
	if err := json.Unmarshal(body, &interaction); err != nil {
		slog.WarnContext(ctx, "invalid interaction payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	switch interaction.Type {
	case discordgo.InteractionPing:
		c.JSON(http.StatusOK, discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong})
	case discordgo.InteractionApplicationCommand:
		h.handleCommand(c, &interaction, body)
	default:
		slog.WarnContext(ctx, "unknown interaction type", "type", int(interaction.Type))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown interaction type"})
	}
}

func (h *InteractionHandler) handleCommand(c *gin.Context, interaction *discordgo.Interaction, body []byte) {
	event, err := h.mapper.Map(interaction, body)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "unmappable command interaction", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
		InteractionID: logger.Ptr(event.InteractionID),
		GuildID:       logger.Ptr(event.GroupID),
		ChannelID:     logger.Ptr(event.ChannelID),
		Command:       logger.Ptr(event.Name),
		Component:     "gerard.http.interactions",
	})

	cmd, ok := h.registry.Lookup(event.Name)
	if !ok {
		slog.WarnContext(ctx, "unknown command")
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown command"})
		return
	}

	reply, err := cmd.Respond(ctx, event)
	if err != nil {
		slog.ErrorContext(ctx, "command failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "command failed"})
		return
	}

	if reply.Deferred == nil {
		c.JSON(http.StatusOK, reply.Response)
		return
	}

	// Queued before the ack is written; the task starts only once the ack is flushed.
	flushed := make(chan struct{})
	defer close(flushed)

	deferred := reply.Deferred
	runID := id.New()
	taskCtx := logger.WithLogFields(context.WithoutCancel(ctx), logger.LogFields{RunID: logger.Ptr(runID)})
	err = h.dispatcher.Submit(taskCtx, event.GroupID, func(ctx context.Context) error {
		<-flushed
		return deferred(ctx)
	})
	if err != nil {
		if errors.Is(err, worker.ErrStopped) {
			slog.WarnContext(taskCtx, "dispatcher stopped, refusing deferred command")
		} else {
			slog.ErrorContext(taskCtx, "failed to submit deferred task", "error", err)
		}
		c.JSON(http.StatusOK, command.EphemeralMessage(restartingMessage))
		return
	}

	c.JSON(http.StatusOK, reply.Response)
	c.Writer.Flush()

	slog.InfoContext(taskCtx, "deferred task submitted")
}
