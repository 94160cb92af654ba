package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"vibe-in-the-dark/internal/fanout"
	"vibe-in-the-dark/internal/game"
	"vibe-in-the-dark/internal/logger"
)

// StartGame leaves the lobby, entering reveal when a reveal duration is
// configured and going straight to active otherwise.
func (s *Service) StartGame(ctx context.Context, code string) (*game.Game, error) {
	now := s.Now()
	withReveal := s.opts.RevealDuration > 0
	g, err := s.update(ctx, code, func(g *game.Game) error {
		return g.Start(withReveal, now)
	})
	if err != nil {
		return nil, err
	}
	logTransition(g)
	s.armTimers(g)
	s.publishStatus(ctx, g)
	return g, nil
}

func (s *Service) AdvanceToActive(ctx context.Context, code string) (*game.Game, error) {
	now := s.Now()
	g, err := s.update(ctx, code, func(g *game.Game) error {
		return g.AdvanceToActive(now)
	})
	if err != nil {
		return nil, err
	}
	s.timers.cancel(g.Code, timerReveal)
	logTransition(g)
	s.armTimers(g)
	s.publishStatus(ctx, g)
	return g, nil
}

// OpenVoting ends the active phase, whether called by an operator or by the
// deadline timer. Whichever commits first wins; the other sees ErrGameNotActive.
func (s *Service) OpenVoting(ctx context.Context, code string) (*game.Game, error) {
	now := s.Now()
	g, err := s.update(ctx, code, func(g *game.Game) error {
		return g.OpenVoting(now)
	})
	if err != nil {
		return nil, err
	}
	if s.timers.cancel(g.Code, timerDeadline) {
		logger.Info("deadline timer cancelled", zap.String("game_code", g.Code))
	}
	logTransition(g)
	s.publishStatus(ctx, g)
	return g, nil
}

func (s *Service) DeclareWinner(ctx context.Context, code string) (*game.Game, []game.Standing, error) {
	var standings []game.Standing
	g, err := s.update(ctx, code, func(g *game.Game) error {
		var err error
		standings, err = g.DeclareWinner()
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	logTransition(g)
	logger.Info("winner declared", zap.String("game_code", g.Code), zap.String("participant_id", g.WinnerID))
	now := s.Now()
	s.publish(ctx, g.Code,
		fanout.WinnerDeclared{WinnerID: g.WinnerID, Standings: standings},
		fanout.NewStatusUpdate(g, now),
		fanout.NewState(g, now))
	s.armTimers(g)
	return g, standings, nil
}

// armTimers schedules whatever timer the game's current status needs.
func (s *Service) armTimers(g *game.Game) {
	code := g.Code
	switch g.Status {
	case game.StatusReveal:
		if s.opts.RevealDuration <= 0 || g.RevealStartTime == nil {
			return
		}
		wait := g.RevealStartTime.Add(s.opts.RevealDuration).Sub(s.Now())
		s.timers.schedule(code, timerReveal, wait, func() { s.revealElapsed(code) })
	case game.StatusActive:
		deadline, ok := g.Deadline()
		if !ok {
			return
		}
		wait := deadline.Sub(s.Now())
		s.timers.schedule(code, timerDeadline, wait, func() { s.expire(code) })
		logger.Debug("deadline timer armed", zap.String("game_code", code), zap.Duration("in", wait))
	case game.StatusFinished:
		if s.opts.FinishedGameTTL <= 0 {
			return
		}
		s.timers.schedule(code, timerCleanup, s.opts.FinishedGameTTL, func() { s.cleanupFinished(code) })
	}
}

func (s *Service) revealElapsed(code string) {
	_, err := s.AdvanceToActive(context.Background(), code)
	if errors.Is(err, game.ErrInvalidTransition) || errors.Is(err, game.ErrGameNotFound) {
		logger.Debug("reveal timer fired after transition", zap.String("game_code", code))
		return
	}
	if err != nil {
		logger.Error("reveal timer failed", zap.String("game_code", code), zap.Error(err))
	}
}

// expire runs when the active phase's time is up.
func (s *Service) expire(code string) {
	logger.Info("deadline timer fired", zap.String("game_code", code))
	_, err := s.OpenVoting(context.Background(), code)
	if errors.Is(err, game.ErrGameNotActive) || errors.Is(err, game.ErrGameNotFound) {
		logger.Debug("deadline timer fired after transition", zap.String("game_code", code))
		return
	}
	if err != nil {
		logger.Error("deadline timer failed", zap.String("game_code", code), zap.Error(err))
	}
}

func (s *Service) cleanupFinished(code string) {
	ctx := context.Background()
	g, err := s.store.Load(ctx, code)
	if err != nil {
		return
	}
	if g.Status != game.StatusFinished {
		return
	}
	if err := s.deleteGame(ctx, code); err != nil {
		logger.Error("finished game cleanup failed", zap.String("game_code", code), zap.Error(err))
		return
	}
	logger.Info("finished game deleted", zap.String("game_code", code))
}

func (s *Service) deleteGame(ctx context.Context, code string) error {
	if err := s.store.Delete(ctx, code); err != nil {
		return err
	}
	s.forget(code)
	return nil
}

func (s *Service) forget(code string) {
	s.timers.cancelAll(code)
	s.limiter.forget(code)
	if s.closeRoom != nil {
		s.closeRoom(code)
	}
}

// Recover re-arms timers for games that were mid-phase when the process
// stopped. Deadlines already in the past fire immediately.
func (s *Service) Recover(ctx context.Context) error {
	games, err := s.store.ListByStatus(ctx, game.StatusReveal, game.StatusActive)
	if err != nil {
		return err
	}
	for _, g := range games {
		s.armTimers(g)
	}
	logger.Info("timers recovered", zap.Int("games", len(games)))
	return nil
}

// Reap deletes games older than the retention window.
func (s *Service) Reap(ctx context.Context) ([]string, error) {
	cutoff := s.Now().Add(-s.opts.Retention)
	codes, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	for _, code := range codes {
		s.forget(code)
	}
	if len(codes) > 0 {
		logger.Info("reaper removed games", zap.Int("count", len(codes)), zap.Strings("game_codes", codes))
	}
	return codes, nil
}

// RunReaper calls Reap every interval until ctx is done.
func (s *Service) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Reap(ctx); err != nil && ctx.Err() == nil {
				logger.Error("reaper sweep failed", zap.Error(err))
			}
		}
	}
}

func logTransition(g *game.Game) {
	logger.Info("game status changed",
		zap.String("game_code", g.Code),
		zap.String("status", string(g.Status)),
		zap.Int64("version", g.Version))
}
