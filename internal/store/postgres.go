package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gerard.app/bot/internal/domain"
)

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore uses the memory_slots table created by db.Migrate.
// The pool is owned by the caller; Close does not close it.
func NewPostgresStore(pool *pgxpool.Pool) SlotStore {
	return &postgresStore{pool: pool}
}

func (s *postgresStore) Read(ctx context.Context, groupID string, slot domain.Slot) (string, error) {
	if err := ValidateKey(groupID, slot); err != nil {
		return "", err
	}

	var content string
	err := s.pool.QueryRow(ctx,
		`SELECT content FROM memory_slots WHERE group_id = $1 AND slot = $2`,
		groupID, string(slot),
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("selecting %s/%s: %w", groupID, slot, err)
	}
	return content, nil
}

func (s *postgresStore) Write(ctx context.Context, groupID string, slot domain.Slot, text string) error {
	if err := ValidateKey(groupID, slot); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO memory_slots (group_id, slot, content, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (group_id, slot) DO UPDATE
		SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at`,
		groupID, string(slot), text,
	)
	if err != nil {
		return fmt.Errorf("upserting %s/%s: %w", groupID, slot, err)
	}
	return nil
}

func (s *postgresStore) ListGroups(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT group_id FROM memory_slots ORDER BY group_id`)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	groups, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning groups: %w", err)
	}
	return groups, nil
}

func (s *postgresStore) ListSlots(ctx context.Context, groupID string) ([]domain.Slot, error) {
	if err := ValidateGroup(groupID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `SELECT slot FROM memory_slots WHERE group_id = $1`, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing slots: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning slots: %w", err)
	}

	present := make(map[domain.Slot]bool, len(names))
	for _, n := range names {
		present[domain.Slot(n)] = true
	}
	slots := make([]domain.Slot, 0, len(domain.Slots))
	for _, slot := range domain.Slots {
		if present[slot] {
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

func (s *postgresStore) Close() error {
	return nil
}
