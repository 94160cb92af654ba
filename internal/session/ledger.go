package session

import (
	"context"
	"maps"
	"slices"

	"go.uber.org/zap"

	"vibe-in-the-dark/internal/fanout"
	"vibe-in-the-dark/internal/game"
	"vibe-in-the-dark/internal/logger"
)

// Vote records one vote per voter identity. A retried request observes
// ErrAlreadyVoted rather than counting twice.
func (s *Service) Vote(ctx context.Context, code, participantID, voterID string) (int, error) {
	now := s.Now()
	var count int
	g, err := s.update(ctx, code, func(g *game.Game) error {
		p, err := g.ApplyVote(participantID, voterID, now)
		if err != nil {
			return err
		}
		count = p.VoteCount
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.publish(ctx, g.Code, fanout.VoteUpdate{ParticipantID: participantID, VoteCount: count})
	return count, nil
}

// RetractVote removes the voter's vote and reports whose tally dropped.
func (s *Service) RetractVote(ctx context.Context, code, voterID string) (fanout.VoteUpdate, error) {
	var update fanout.VoteUpdate
	g, err := s.update(ctx, code, func(g *game.Game) error {
		p, err := g.RetractVote(voterID)
		if err != nil {
			return err
		}
		update = fanout.VoteUpdate{}
		if p != nil {
			update = fanout.VoteUpdate{ParticipantID: p.ID, VoteCount: p.VoteCount}
		}
		return nil
	})
	if err != nil {
		return fanout.VoteUpdate{}, err
	}
	if update.ParticipantID != "" {
		s.publish(ctx, g.Code, update)
	}
	return update, nil
}

func (s *Service) React(ctx context.Context, code, participantID, voterID string, kind game.ReactionType) (map[game.ReactionType]int, error) {
	now := s.Now()
	var counts map[game.ReactionType]int
	g, err := s.update(ctx, code, func(g *game.Game) error {
		p, err := g.ApplyReaction(participantID, voterID, kind, now)
		if err != nil {
			return err
		}
		counts = maps.Clone(p.Reactions)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, g.Code, fanout.ReactionUpdate{ParticipantID: participantID, Reactions: counts})
	return counts, nil
}

func (s *Service) ApplySabotage(ctx context.Context, code, sourceID, targetID string, kind game.SabotageType) ([]game.SabotageType, error) {
	now := s.Now()
	var active []game.SabotageType
	g, err := s.update(ctx, code, func(g *game.Game) error {
		target, err := g.ApplySabotage(sourceID, targetID, kind, now)
		if err != nil {
			return err
		}
		active = slices.Clone(target.ActiveSabotages)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("sabotage applied",
		zap.String("game_code", g.Code),
		zap.String("participant_id", targetID),
		zap.String("source_id", sourceID),
		zap.String("sabotage", string(kind)))
	s.publish(ctx, g.Code, fanout.SabotageUpdate{ParticipantID: targetID, ActiveSabotages: active})
	return active, nil
}

// CancelSabotages clears every sabotage on the participant. During the active
// phase it costs a prompt, so the preview count is republished too.
func (s *Service) CancelSabotages(ctx context.Context, code, participantID string) (game.Participant, error) {
	now := s.Now()
	var updated game.Participant
	g, err := s.update(ctx, code, func(g *game.Game) error {
		p, err := g.CancelSabotages(participantID, now)
		if err != nil {
			return err
		}
		updated = *p
		return nil
	})
	if err != nil {
		return game.Participant{}, err
	}
	logger.Info("sabotages cancelled", zap.String("game_code", g.Code), zap.String("participant_id", participantID))
	events := []fanout.Event{fanout.SabotageUpdate{ParticipantID: participantID, ActiveSabotages: []game.SabotageType{}}}
	if g.Status == game.StatusActive {
		events = append(events, fanout.PreviewUpdate{
			ParticipantID: participantID,
			Artifact:      updated.CurrentArtifact,
			PromptCount:   len(updated.PromptHistory),
		})
	}
	s.publish(ctx, g.Code, events...)
	return updated, nil
}
