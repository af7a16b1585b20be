package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"gerard.app/bot/internal/domain"
)

// ErrNotFound is returned when a slot has never been written for a group.
var ErrNotFound = errors.New("not found")

// ErrInvalidSlot is returned before any I/O when the slot name is not one of domain.Slots.
var ErrInvalidSlot = errors.New("invalid slot")

// ErrInvalidGroup is returned before any I/O when the group id cannot be used as a key.
var ErrInvalidGroup = errors.New("invalid group id")

// SlotStore persists free text per (conversation group, slot). Last write wins.
type SlotStore interface {
	Read(ctx context.Context, groupID string, slot domain.Slot) (string, error)
	Write(ctx context.Context, groupID string, slot domain.Slot, text string) error
	ListGroups(ctx context.Context) ([]string, error)
	ListSlots(ctx context.Context, groupID string) ([]domain.Slot, error)
	Close() error
}

// Guild ids are snowflakes; the DM sentinel and admin-made names fit the same pattern.
var groupIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateKey checks a (group, slot) pair. Every backend calls it before touching storage.
func ValidateKey(groupID string, slot domain.Slot) error {
	if err := ValidateGroup(groupID); err != nil {
		return err
	}
	if !slot.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	return nil
}

func ValidateGroup(groupID string) error {
	if !groupIDPattern.MatchString(groupID) {
		return fmt.Errorf("%w: %q", ErrInvalidGroup, groupID)
	}
	return nil
}
