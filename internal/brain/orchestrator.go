package brain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"gerard.app/bot/common/llm"
	"gerard.app/bot/common/logger"
	"gerard.app/bot/internal/domain"
	"gerard.app/bot/internal/store"
)

// QuestionOption is the option of the ask command carrying the user's question.
const QuestionOption = "question"

// ContextFetcher reads the channel around the invocation. Both reads may fail on their own.
type ContextFetcher interface {
	ChannelName(ctx context.Context, channelID string) (string, error)
	History(ctx context.Context, channelID string) ([]domain.HistoryMessage, error)
}

// ReplyPublisher delivers the final content into the deferred placeholder.
type ReplyPublisher interface {
	EditOriginal(ctx context.Context, event domain.CommandEvent, content string) error
}

type OrchestratorConfig struct {
	MaxTokens   int
	Temperature *float64
}

// Orchestrator runs the deferred half of an ask command: gather context, call the model,
// persist memory and edit the placeholder. Every run ends in exactly one edit attempt.
type Orchestrator struct {
	cfg       OrchestratorConfig
	fetcher   ContextFetcher
	slots     store.SlotStore
	client    llm.Client
	publisher ReplyPublisher
	composer  *PromptComposer
	now       func() time.Time
}

func NewOrchestrator(
	cfg OrchestratorConfig,
	fetcher ContextFetcher,
	slots store.SlotStore,
	client llm.Client,
	publisher ReplyPublisher,
	composer *PromptComposer,
) *Orchestrator {
	slog.InfoContext(context.Background(), "orchestrator initialized",
		"model", client.Model())

	return &Orchestrator{
		cfg:       cfg,
		fetcher:   fetcher,
		slots:     slots,
		client:    client,
		publisher: publisher,
		composer:  composer,
		now:       time.Now,
	}
}

// WithClock replaces the wall clock used for the system prompt.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

type slotTexts struct {
	memory  string
	system  string
	context string
}

// Answer runs the pipeline for one acknowledged event. Failures before delivery are absorbed
// into degraded context or the fallback message; the returned error is the delivery error.
func (o *Orchestrator) Answer(ctx context.Context, event domain.CommandEvent) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "gerard.brain.orchestrator",
	})

	question, _ := event.Option(QuestionOption)

	slog.InfoContext(ctx, "answering question",
		"user", event.UserName,
		"question", logger.Truncate(question, 200))

	conversation := o.fetchContext(ctx, event)
	slots := o.readSlots(ctx, event.GroupID)

	prompt := o.composer.Compose(PromptInput{
		Now:          o.now(),
		Conversation: conversation,
		Memory:       slots.memory,
		ExtraSystem:  slots.system,
		ExtraContext: slots.context,
		UserName:     event.UserName,
		Question:     question,
	})

	raw, err := o.complete(ctx, event, prompt)
	if err != nil {
		slog.ErrorContext(ctx, "model call failed, sending fallback",
			"reason", llm.ReasonOf(err),
			"retryable", llm.IsRetryable(err),
			"error", err)
		return o.deliver(ctx, event, FallbackMessage)
	}

	reply := SplitReply(raw)

	slog.InfoContext(ctx, "model replied",
		"answer_len", len(reply.Answer),
		"memory_update", reply.HasMemoryUpdate())

	// The edit never waits on the memory write; the run waits for both.
	var wg sync.WaitGroup
	if reply.HasMemoryUpdate() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.writeMemory(ctx, event.GroupID, reply.MemoryUpdate)
		}()
	}

	content := FormatAnswer(event.UserName, question, reply.Answer)
	if reply.Answer == "" {
		slog.WarnContext(ctx, "model reply holds only a memory section, sending fallback")
		content = FallbackMessage
	}

	err = o.deliver(ctx, event, content)
	wg.Wait()
	return err
}

func (o *Orchestrator) fetchContext(ctx context.Context, event domain.CommandEvent) domain.ConversationContext {
	sc := logger.StartSpan(ctx, "brain.fetch_context")
	defer sc.End()
	ctx = sc.Context()

	conversation := domain.ConversationContext{ChannelName: UnknownChannel}

	name, err := o.fetcher.ChannelName(ctx, event.ChannelID)
	switch {
	case err != nil:
		sc.RecordError(err)
		slog.WarnContext(ctx, "channel metadata unavailable, using fallback name", "error", err)
	case name != "":
		conversation.ChannelName = name
	}

	history, err := o.fetcher.History(ctx, event.ChannelID)
	if err != nil {
		sc.RecordError(err)
		slog.WarnContext(ctx, "channel history unavailable, continuing without it", "error", err)
		return conversation
	}

	conversation.History = o.composer.FormatHistory(history)
	sc.SetAttributes(
		attribute.Int("history.fetched", len(history)),
		attribute.Int("history.kept", len(conversation.History)),
	)
	return conversation
}

func (o *Orchestrator) readSlots(ctx context.Context, groupID string) slotTexts {
	sc := logger.StartSpan(ctx, "brain.read_memory")
	defer sc.End()
	ctx = sc.Context()

	read := func(slot domain.Slot) string {
		text, err := o.slots.Read(ctx, groupID, slot)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				sc.RecordError(err)
				slog.WarnContext(ctx, "slot read failed, continuing without it",
					"slot", slot,
					"error", err)
			}
			return ""
		}
		return text
	}

	return slotTexts{
		memory:  read(domain.SlotMemory),
		system:  read(domain.SlotSystem),
		context: read(domain.SlotContext),
	}
}

func (o *Orchestrator) complete(ctx context.Context, event domain.CommandEvent, prompt domain.ComposedPrompt) (string, error) {
	sc := logger.StartSpan(ctx, "brain.complete")
	defer sc.End()
	ctx = sc.Context()

	sc.SetAttributes(
		attribute.String("llm.model", o.client.Model()),
		attribute.Int("llm.system_len", len(prompt.System)),
		attribute.Int("llm.user_len", len(prompt.User)),
	)

	start := time.Now()
	raw, err := o.client.Complete(ctx, llm.Request{
		SystemPrompt: prompt.System,
		UserPrompt:   prompt.User,
		UserName:     event.UserName,
		MaxTokens:    o.cfg.MaxTokens,
		Temperature:  o.cfg.Temperature,
	})
	if err != nil {
		sc.RecordError(err)
		sc.SetAttributes(attribute.String("llm.failure_reason", string(llm.ReasonOf(err))))
		return "", err
	}

	slog.DebugContext(ctx, "completion received",
		"duration_ms", time.Since(start).Milliseconds(),
		"reply", logger.Truncate(raw, 300))
	return raw, nil
}

func (o *Orchestrator) writeMemory(ctx context.Context, groupID, text string) {
	sc := logger.StartSpan(ctx, "brain.write_memory")
	defer sc.End()
	ctx = sc.Context()

	if err := o.slots.Write(ctx, groupID, domain.SlotMemory, text); err != nil {
		sc.RecordError(err)
		slog.ErrorContext(ctx, "memory write failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "memory updated", "memory_len", len(text))
}

func (o *Orchestrator) deliver(ctx context.Context, event domain.CommandEvent, content string) error {
	sc := logger.StartSpan(ctx, "brain.deliver")
	defer sc.End()
	ctx = sc.Context()

	if err := o.publisher.EditOriginal(ctx, event, content); err != nil {
		sc.RecordError(err)
		slog.ErrorContext(ctx, "delivering reply failed", "error", err)
		return fmt.Errorf("delivering reply: %w", err)
	}

	slog.InfoContext(ctx, "reply delivered", "content_len", len(content))
	return nil
}
