package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"vibe-in-the-dark/internal/db"
	"vibe-in-the-dark/internal/game"
)

// GormStore keeps one row per game in the games table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(conn *gorm.DB) *GormStore {
	return &GormStore{db: conn}
}

func (s *GormStore) Create(ctx context.Context, g *game.Game) error {
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	record := db.GameRecord{
		Code:      g.Code,
		Status:    string(g.Status),
		GameData:  datatypes.JSON(data),
		Version:   1,
		CreatedAt: g.CreatedAt,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrCodeTaken
		}
		return err
	}
	g.Version = 1
	return nil
}

func (s *GormStore) Load(ctx context.Context, code string) (*game.Game, error) {
	var record db.GameRecord
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, game.ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeGame(record.GameData, record.Version)
}

func (s *GormStore) Commit(ctx context.Context, g *game.Game, expected int64) (int64, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).
		Model(&db.GameRecord{}).
		Where("code = ? AND version = ?", g.Code, expected).
		Updates(map[string]any{
			"game_data":  datatypes.JSON(data),
			"status":     string(g.Status),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 1 {
		return expected + 1, nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&db.GameRecord{}).Where("code = ?", g.Code).Count(&count).Error; err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, game.ErrGameNotFound
	}
	return 0, ErrVersionConflict
}

func (s *GormStore) Delete(ctx context.Context, code string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_code = ?", code).Delete(&db.GameEvent{}).Error; err != nil {
			return err
		}
		return tx.Where("code = ?", code).Delete(&db.GameRecord{}).Error
	})
}

func (s *GormStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	var codes []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.GameRecord{}).
			Where("created_at < ?", cutoff).
			Order("code").
			Pluck("code", &codes).Error; err != nil {
			return err
		}
		if len(codes) == 0 {
			return nil
		}
		if err := tx.Where("game_code IN ?", codes).Delete(&db.GameEvent{}).Error; err != nil {
			return err
		}
		return tx.Where("code IN ?", codes).Delete(&db.GameRecord{}).Error
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (s *GormStore) ListByStatus(ctx context.Context, statuses ...game.Status) ([]*game.Game, error) {
	if len(statuses) == 0 {
		return []*game.Game{}, nil
	}
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	var records []db.GameRecord
	if err := s.db.WithContext(ctx).Where("status IN ?", names).Order("code").Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]*game.Game, 0, len(records))
	for _, record := range records {
		g, err := decodeGame(record.GameData, record.Version)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
