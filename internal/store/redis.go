package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"gerard.app/bot/internal/domain"
)

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore keeps each slot under "<prefix>:slot:<group>:<slot>".
func NewRedisStore(client *redis.Client, prefix string) SlotStore {
	if prefix == "" {
		prefix = "gerard"
	}
	return &redisStore{client: client, prefix: prefix}
}

func (s *redisStore) key(groupID string, slot domain.Slot) string {
	return fmt.Sprintf("%s:slot:%s:%s", s.prefix, groupID, slot)
}

func (s *redisStore) Read(ctx context.Context, groupID string, slot domain.Slot) (string, error) {
	if err := ValidateKey(groupID, slot); err != nil {
		return "", err
	}

	text, err := s.client.Get(ctx, s.key(groupID, slot)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis get %s/%s: %w", groupID, slot, err)
	}
	return text, nil
}

func (s *redisStore) Write(ctx context.Context, groupID string, slot domain.Slot, text string) error {
	if err := ValidateKey(groupID, slot); err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.key(groupID, slot), text, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s/%s: %w", groupID, slot, err)
	}
	return nil
}

func (s *redisStore) ListGroups(ctx context.Context) ([]string, error) {
	pattern := s.prefix + ":slot:*"
	seen := make(map[string]bool)

	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		rest := strings.TrimPrefix(iter.Val(), s.prefix+":slot:")
		group, _, ok := strings.Cut(rest, ":")
		if ok && ValidateGroup(group) == nil {
			seen[group] = true
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups, nil
}

func (s *redisStore) ListSlots(ctx context.Context, groupID string) ([]domain.Slot, error) {
	if err := ValidateGroup(groupID); err != nil {
		return nil, err
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.IntCmd, len(domain.Slots))
	for i, slot := range domain.Slots {
		cmds[i] = pipe.Exists(ctx, s.key(groupID, slot))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis exists: %w", err)
	}

	slots := make([]domain.Slot, 0, len(domain.Slots))
	for i, cmd := range cmds {
		if cmd.Val() > 0 {
			slots = append(slots, domain.Slots[i])
		}
	}
	return slots, nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
