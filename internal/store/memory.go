package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"vibe-in-the-dark/internal/game"
)

type memoryRecord struct {
	data      []byte
	version   int64
	status    game.Status
	createdAt time.Time
}

// MemoryStore keeps serialized snapshots in a map. It honours the same CAS
// contract as the database store so callers cannot tell them apart.
type MemoryStore struct {
	mu    sync.Mutex
	games map[string]memoryRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string]memoryRecord)}
}

func (s *MemoryStore) Create(_ context.Context, g *game.Game) error {
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[g.Code]; ok {
		return ErrCodeTaken
	}
	s.games[g.Code] = memoryRecord{data: data, version: 1, status: g.Status, createdAt: g.CreatedAt}
	g.Version = 1
	return nil
}

func (s *MemoryStore) Load(_ context.Context, code string) (*game.Game, error) {
	s.mu.Lock()
	rec, ok := s.games[code]
	s.mu.Unlock()
	if !ok {
		return nil, game.ErrGameNotFound
	}
	return decodeGame(rec.data, rec.version)
}

func (s *MemoryStore) Commit(_ context.Context, g *game.Game, expected int64) (int64, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.games[g.Code]
	if !ok {
		return 0, game.ErrGameNotFound
	}
	if rec.version != expected {
		return 0, ErrVersionConflict
	}
	rec.data = data
	rec.version++
	rec.status = g.Status
	s.games[g.Code] = rec
	return rec.version, nil
}

func (s *MemoryStore) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, code)
	return nil
}

func (s *MemoryStore) DeleteOlderThan(_ context.Context, cutoff time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var codes []string
	for code, rec := range s.games {
		if rec.createdAt.Before(cutoff) {
			codes = append(codes, code)
			delete(s.games, code)
		}
	}
	sort.Strings(codes)
	return codes, nil
}

func (s *MemoryStore) ListByStatus(_ context.Context, statuses ...game.Status) ([]*game.Game, error) {
	want := make(map[game.Status]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}
	s.mu.Lock()
	matched := make([]memoryRecord, 0)
	for _, rec := range s.games {
		if want[rec.status] {
			matched = append(matched, rec)
		}
	}
	s.mu.Unlock()

	out := make([]*game.Game, 0, len(matched))
	for _, rec := range matched {
		g, err := decodeGame(rec.data, rec.version)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func decodeGame(data []byte, version int64) (*game.Game, error) {
	var g game.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, err
	}
	g.Version = version
	return &g, nil
}
