package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gerard.app/bot/internal/domain"
)

const slotFileExt = ".txt"

type fileStore struct {
	root string
}

// NewFileStore stores each slot as <root>/<group>/<slot>.txt.
func NewFileStore(root string) (SlotStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving files dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating files dir %s: %w", abs, err)
	}
	return &fileStore{root: abs}, nil
}

func (s *fileStore) path(groupID string, slot domain.Slot) string {
	return filepath.Join(s.root, groupID, string(slot)+slotFileExt)
}

func (s *fileStore) Read(ctx context.Context, groupID string, slot domain.Slot) (string, error) {
	if err := ValidateKey(groupID, slot); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(s.path(groupID, slot))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("reading %s/%s: %w", groupID, slot, err)
	}
	return string(data), nil
}

// Write replaces the slot through a temp file + rename so readers never see a partial file.
func (s *fileStore) Write(ctx context.Context, groupID string, slot domain.Slot, text string) error {
	if err := ValidateKey(groupID, slot); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Join(s.root, groupID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating group dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+string(slot)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s/%s: %w", groupID, slot, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path(groupID, slot)); err != nil {
		return fmt.Errorf("replacing %s/%s: %w", groupID, slot, err)
	}
	return nil
}

func (s *fileStore) ListGroups(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("listing files dir: %w", err)
	}

	groups := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && ValidateGroup(e.Name()) == nil {
			groups = append(groups, e.Name())
		}
	}
	sort.Strings(groups)
	return groups, nil
}

func (s *fileStore) ListSlots(ctx context.Context, groupID string) ([]domain.Slot, error) {
	if err := ValidateGroup(groupID); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(s.root, groupID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.Slot{}, nil
		}
		return nil, fmt.Errorf("listing group %s: %w", groupID, err)
	}

	present := make(map[domain.Slot]bool, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), slotFileExt)
		if !ok || e.IsDir() {
			continue
		}
		present[domain.Slot(name)] = true
	}

	slots := make([]domain.Slot, 0, len(domain.Slots))
	for _, slot := range domain.Slots {
		if present[slot] {
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

func (s *fileStore) Close() error {
	return nil
}
