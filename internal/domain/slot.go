package domain

import "fmt"

// Slot names a persisted text bucket of a conversation group.
type Slot string

const (
	SlotSystem  Slot = "system"  // extra system-prompt text, edited by admins
	SlotMemory  Slot = "memory"  // notes written by the model itself
	SlotContext Slot = "context" // extra channel context, edited by admins
)

// Slots lists every valid slot in display order.
var Slots = []Slot{SlotContext, SlotSystem, SlotMemory}

func (s Slot) Valid() bool {
	switch s {
	case SlotSystem, SlotMemory, SlotContext:
		return true
	}
	return false
}

// ParseSlot validates a slot name coming from outside (URL, config).
func ParseSlot(name string) (Slot, error) {
	s := Slot(name)
	if !s.Valid() {
		return "", fmt.Errorf("invalid slot %q", name)
	}
	return s, nil
}

// ComposedPrompt is the pair of messages sent to the model for one invocation.
type ComposedPrompt struct {
	System string
	User   string
}

// ModelReply is the model output split into the part shown to users and the memory note.
type ModelReply struct {
	Answer       string
	MemoryUpdate string
}

func (r ModelReply) HasMemoryUpdate() bool {
	return r.MemoryUpdate != ""
}
