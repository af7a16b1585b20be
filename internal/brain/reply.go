package brain

import (
	"fmt"
	"strings"

	"gerard.app/bot/internal/domain"
)

// MemoryMarker separates the visible answer from the memory note in a model reply.
const MemoryMarker = "### [MÉMOIRE]"

// FallbackMessage is the only failure text users ever see after the acknowledgment.
const FallbackMessage = "Une erreur est survenue lors de la requête Ollama."

// SplitReply separates the answer from the trailing memory section.
// Only the first marker counts; later ones stay inside the memory text.
func SplitReply(raw string) domain.ModelReply {
	answer, memory, found := strings.Cut(raw, MemoryMarker)
	if !found {
		return domain.ModelReply{Answer: strings.TrimSpace(raw)}
	}
	return domain.ModelReply{
		Answer:       strings.TrimSpace(answer),
		MemoryUpdate: strings.TrimSpace(memory),
	}
}

// FormatAnswer restates the question above the answer, as shown in the edited message.
func FormatAnswer(userName, question, answer string) string {
	return fmt.Sprintf("**Question de %s :** %s\n\n%s", userName, question, answer)
}
