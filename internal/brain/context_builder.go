package brain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gerard.app/bot/internal/domain"
)

var mentionPattern = regexp.MustCompile(`<@!?(\d+)>`)

// PromptComposer builds the system and user prompts of one invocation.
// Output depends only on its inputs and the clock passed in.
type PromptComposer struct {
	loc          *time.Location
	historyLimit int
}

func NewPromptComposer(loc *time.Location, historyLimit int) *PromptComposer {
	if loc == nil {
		loc = time.UTC
	}
	return &PromptComposer{loc: loc, historyLimit: historyLimit}
}

// PromptInput gathers everything the composer reads. Empty fields degrade to placeholders.
type PromptInput struct {
	Now          time.Time
	Conversation domain.ConversationContext
	Memory       string // persisted "memory" slot
	ExtraSystem  string // persisted "system" slot
	ExtraContext string // persisted "context" slot
	UserName     string
	Question     string
}

func (c *PromptComposer) Compose(in PromptInput) domain.ComposedPrompt {
	return domain.ComposedPrompt{
		System: c.ComposeSystem(in.Now, in.ExtraSystem),
		User:   c.ComposeUser(in),
	}
}

// ComposeSystem returns persona, current date/time, memory instructions and server rules.
func (c *PromptComposer) ComposeSystem(now time.Time, extra string) string {
	local := now.In(c.loc)
	parts := []string{
		personaPrompt,
		fmt.Sprintf(timePromptFormat, FrenchLongDate(local), FrenchClock(local)),
		memoryPrompt,
	}
	if extra = strings.TrimSpace(extra); extra != "" {
		parts = append(parts, extraInstructionsHeader+"\n"+extra)
	}
	parts = append(parts, guardPrompt)
	return strings.Join(parts, "\n\n")
}

// ComposeUser lays out channel, memory, history and question in that order.
func (c *PromptComposer) ComposeUser(in PromptInput) string {
	channel := in.Conversation.ChannelName
	if channel == "" {
		channel = UnknownChannel
	}
	contextSection := "📍 CONTEXTE :\nCanal : #" + channel
	if extra := strings.TrimSpace(in.ExtraContext); extra != "" {
		contextSection += "\n" + extra
	}

	memory := strings.TrimSpace(in.Memory)
	if memory == "" {
		memory = noMemoryText
	}
	memorySection := "🧠 MÉMOIRE :\n" + memory

	history := strings.Join(in.Conversation.History, historySeparator)
	if history == "" {
		history = noHistoryText
	}
	historySection := fmt.Sprintf("📜 HISTORIQUE DES %d DERNIERS MESSAGES :\n%s", c.historyLimit, history)

	questionSection := fmt.Sprintf("❓ QUESTION DE %s :\n%s\n\nRéponds à cette question en tenant compte de l'historique si pertinent.",
		in.UserName, in.Question)

	return strings.Join([]string{contextSection, memorySection, historySection, questionSection},
		"\n\n"+sectionSeparator+"\n\n")
}

// FormatHistory turns messages received newest-first into chronological prompt entries,
// dropping messages without extractable text.
func (c *PromptComposer) FormatHistory(newestFirst []domain.HistoryMessage) []string {
	lines := make([]string, 0, len(newestFirst))
	for _, m := range ReverseMessages(newestFirst) {
		if line, ok := c.FormatMessage(m); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

// FormatMessage renders one history entry, or false when it carries no text.
func (c *PromptComposer) FormatMessage(m domain.HistoryMessage) (string, bool) {
	text := m.Text()
	if text == "" {
		return "", false
	}
	text = ResolveMentions(text, m.Mentions)

	name := m.AuthorName
	if name == "" {
		name = m.AuthorHandle
	}
	if m.Automated {
		name = botPrefix + name
	}

	at := m.CreatedAt.In(c.loc)
	return fmt.Sprintf("👤 %s (@%s) • 🕐 %s %s\n%s",
		name, m.AuthorHandle, FrenchDayMonth(at), FrenchClock(at), text), true
}

// ReverseMessages returns a reversed copy; the input is left untouched.
func ReverseMessages(msgs []domain.HistoryMessage) []domain.HistoryMessage {
	out := make([]domain.HistoryMessage, len(msgs))
	for i, m := range msgs {
		out[len(msgs)-1-i] = m
	}
	return out
}

// ResolveMentions replaces <@id> tokens with @handle using the message's own mention list.
// Unknown ids are left as-is.
func ResolveMentions(content string, mentions map[string]string) string {
	if len(mentions) == 0 {
		return content
	}
	return mentionPattern.ReplaceAllStringFunc(content, func(token string) string {
		id := mentionPattern.FindStringSubmatch(token)[1]
		if handle, ok := mentions[id]; ok {
			return "@" + handle
		}
		return token
	})
}
