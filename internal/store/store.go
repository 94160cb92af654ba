// Package store persists game snapshots behind a version-checked
// compare-and-swap.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vibe-in-the-dark/internal/game"
	"vibe-in-the-dark/internal/logger"
)

var (
	// ErrVersionConflict means the row changed since it was loaded.
	ErrVersionConflict = errors.New("store: version conflict")
	// ErrCodeTaken means a game with the code already exists.
	ErrCodeTaken = errors.New("store: code taken")
)

const DefaultCommitAttempts = 3

// Store is the persistence gateway. Load returns an independent copy whose
// Version is the revision to pass back to Commit.
type Store interface {
	Create(ctx context.Context, g *game.Game) error
	Load(ctx context.Context, code string) (*game.Game, error)
	Commit(ctx context.Context, g *game.Game, expected int64) (int64, error)
	Delete(ctx context.Context, code string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
	ListByStatus(ctx context.Context, statuses ...game.Status) ([]*game.Game, error)
}

// UpdateGame loads the game, applies fn and commits, reloading and
// reapplying on version conflicts. fn must be safe to call more than once.
func UpdateGame(ctx context.Context, s Store, code string, attempts int, fn func(*game.Game) error) (*game.Game, error) {
	if attempts <= 0 {
		attempts = DefaultCommitAttempts
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, err := s.Load(ctx, code)
		if err != nil {
			return nil, err
		}
		expected := g.Version
		if err := fn(g); err != nil {
			return nil, err
		}
		version, err := s.Commit(ctx, g, expected)
		if errors.Is(err, ErrVersionConflict) {
			logger.Debug("commit conflict, retrying",
				zap.String("game_code", code),
				zap.Int64("version", expected),
				zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("commit game %s: %w", code, err)
		}
		g.Version = version
		return g, nil
	}
	logger.Warn("commit attempts exhausted", zap.String("game_code", code), zap.Int("attempts", attempts))
	return nil, game.ErrContention
}
