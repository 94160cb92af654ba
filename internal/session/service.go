// Package session is the game orchestrator. It is the only caller of the
// status-changing methods on game.Game, owns the per-game phase timers and
// publishes room events after each successful commit.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vibe-in-the-dark/internal/config"
	"vibe-in-the-dark/internal/fanout"
	"vibe-in-the-dark/internal/game"
	"vibe-in-the-dark/internal/generator"
	"vibe-in-the-dark/internal/logger"
	"vibe-in-the-dark/internal/store"
)

var errNoFreeCode = errors.New("session: no free game code")

type Options struct {
	CommitAttempts         int
	CodeLength             int
	CodeAttempts           int
	MaxParticipants        int
	DefaultMaxPrompts      int
	DefaultMaxCharacters   int
	RevealDuration         time.Duration
	FinishedGameTTL        time.Duration
	Retention              time.Duration
	PromptCooldown         time.Duration
	GlobalPromptsPerMinute int
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		CommitAttempts:         cfg.CommitAttempts,
		CodeLength:             cfg.CodeLength,
		CodeAttempts:           cfg.CodeAttempts,
		MaxParticipants:        cfg.MaxParticipants,
		DefaultMaxPrompts:      cfg.DefaultMaxPrompts,
		DefaultMaxCharacters:   cfg.DefaultMaxCharacters,
		RevealDuration:         cfg.RevealDuration,
		FinishedGameTTL:        cfg.FinishedGameTTL,
		Retention:              cfg.GameRetention,
		PromptCooldown:         cfg.PromptCooldown,
		GlobalPromptsPerMinute: cfg.GlobalPromptsPerMinute,
	}
}

func (o Options) withDefaults() Options {
	if o.CommitAttempts <= 0 {
		o.CommitAttempts = store.DefaultCommitAttempts
	}
	if o.CodeLength == 0 {
		o.CodeLength = game.MinCodeLength
	}
	if o.CodeAttempts <= 0 {
		o.CodeAttempts = 10
	}
	if o.MaxParticipants <= 0 {
		o.MaxParticipants = game.MaxParticipants
	}
	if o.DefaultMaxPrompts <= 0 {
		o.DefaultMaxPrompts = game.DefaultMaxPrompts
	}
	if o.DefaultMaxCharacters <= 0 {
		o.DefaultMaxCharacters = game.DefaultMaxCharacters
	}
	if o.Retention <= 0 {
		o.Retention = 2 * time.Hour
	}
	return o
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func withScheduler(after scheduler) Option {
	return func(s *Service) { s.timers = newTimerSet(after) }
}

// WithRoomCloser registers a hook called after a game is deleted.
func WithRoomCloser(fn func(code string)) Option {
	return func(s *Service) { s.closeRoom = fn }
}

type Service struct {
	store     store.Store
	pub       fanout.Publisher
	gen       generator.Generator
	opts      Options
	now       func() time.Time
	timers    *timerSet
	limiter   *promptLimiter
	closeRoom func(code string)
}

func New(st store.Store, pub fanout.Publisher, gen generator.Generator, opts Options, options ...Option) *Service {
	opts = opts.withDefaults()
	s := &Service{
		store:   st,
		pub:     pub,
		gen:     gen,
		opts:    opts,
		now:     time.Now,
		limiter: newPromptLimiter(opts.PromptCooldown, opts.GlobalPromptsPerMinute),
	}
	for _, o := range options {
		o(s)
	}
	if s.timers == nil {
		s.timers = newTimerSet(nil)
	}
	return s
}

// Now is the service clock in UTC.
func (s *Service) Now() time.Time {
	return s.now().UTC()
}

// Close stops every pending timer.
func (s *Service) Close() {
	s.timers.stopAll()
}

func (s *Service) update(ctx context.Context, code string, fn func(*game.Game) error) (*game.Game, error) {
	return store.UpdateGame(ctx, s.store, game.NormalizeCode(code), s.opts.CommitAttempts, fn)
}

func (s *Service) publish(ctx context.Context, code string, events ...fanout.Event) {
	if s.pub == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, e := range events {
		if err := s.pub.Publish(ctx, code, e); err != nil {
			logger.Warn("publish failed",
				zap.String("game_code", code),
				zap.String("event", string(e.Type())),
				zap.Error(err))
		}
	}
}

func (s *Service) publishStatus(ctx context.Context, g *game.Game) {
	now := s.Now()
	s.publish(ctx, g.Code, fanout.NewStatusUpdate(g, now), fanout.NewState(g, now))
}

// CreateGame validates cfg and stores a new lobby. A custom code may reclaim
// a finished game's code but never an unfinished one.
func (s *Service) CreateGame(ctx context.Context, cfg game.Config) (*game.Game, error) {
	cfg = cfg.WithDefaults(s.opts.DefaultMaxPrompts, s.opts.DefaultMaxCharacters)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	now := s.Now()

	if cfg.CustomCode != "" {
		g, err := s.createWithCustomCode(ctx, cfg, now)
		if err != nil {
			return nil, err
		}
		s.logCreated(g)
		return g, nil
	}

	for attempt := 0; attempt < s.opts.CodeAttempts; attempt++ {
		code, err := game.NewCode(s.opts.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("generate game code: %w", err)
		}
		g, err := game.New(cfg, code, now)
		if err != nil {
			return nil, err
		}
		err = s.store.Create(ctx, g)
		if errors.Is(err, store.ErrCodeTaken) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create game: %w", err)
		}
		s.logCreated(g)
		return g, nil
	}
	logger.Error("could not allocate a game code", zap.Int("attempts", s.opts.CodeAttempts))
	return nil, errNoFreeCode
}

func (s *Service) createWithCustomCode(ctx context.Context, cfg game.Config, now time.Time) (*game.Game, error) {
	g, err := game.New(cfg, cfg.CustomCode, now)
	if err != nil {
		return nil, err
	}
	err = s.store.Create(ctx, g)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, store.ErrCodeTaken) {
		return nil, fmt.Errorf("create game: %w", err)
	}

	existing, err := s.store.Load(ctx, g.Code)
	if errors.Is(err, game.ErrGameNotFound) {
		return s.retryCustomCode(ctx, g)
	}
	if err != nil {
		return nil, err
	}
	if existing.Status != game.StatusFinished {
		return nil, game.ErrCodeInUse
	}
	logger.Info("reclaiming finished game code", zap.String("game_code", g.Code))
	if err := s.deleteGame(ctx, g.Code); err != nil {
		return nil, err
	}
	return s.retryCustomCode(ctx, g)
}

func (s *Service) retryCustomCode(ctx context.Context, g *game.Game) (*game.Game, error) {
	err := s.store.Create(ctx, g)
	if errors.Is(err, store.ErrCodeTaken) {
		return nil, game.ErrCodeInUse
	}
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return g, nil
}

func (s *Service) logCreated(g *game.Game) {
	logger.Info("game created",
		zap.String("game_code", g.Code),
		zap.String("render_mode", string(g.RenderMode)),
		zap.Int("duration", g.Duration),
		zap.Bool("sabotage_mode", g.SabotageMode))
}

func (s *Service) GetState(ctx context.Context, code string) (*game.Game, error) {
	return s.store.Load(ctx, game.NormalizeCode(code))
}

func (s *Service) GetStatus(ctx context.Context, code string) (game.Status, error) {
	g, err := s.GetState(ctx, code)
	if err != nil {
		return "", err
	}
	return g.Status, nil
}

func (s *Service) JoinGame(ctx context.Context, code, name string) (game.Participant, error) {
	now := s.Now()
	var joined game.Participant
	g, err := s.update(ctx, code, func(g *game.Game) error {
		p, err := g.Join(name, s.opts.MaxParticipants, now)
		if err != nil {
			return err
		}
		joined = *p
		return nil
	})
	if err != nil {
		return game.Participant{}, err
	}
	logger.Info("participant joined",
		zap.String("game_code", g.Code),
		zap.String("participant_id", joined.ID),
		zap.Int("participants", len(g.Participants)))
	s.publish(ctx, g.Code, fanout.ParticipantJoined{ID: joined.ID, Name: joined.Name})
	return joined, nil
}
