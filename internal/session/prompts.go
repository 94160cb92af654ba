package session

import (
	"context"

	"go.uber.org/zap"

	"vibe-in-the-dark/internal/fanout"
	"vibe-in-the-dark/internal/game"
	"vibe-in-the-dark/internal/generator"
	"vibe-in-the-dark/internal/logger"
)

// SubmitPrompt runs a participant's prompt through the generator. The game is
// checked before the call and re-checked at commit; nothing is held while the
// generator works. A failed generation leaves history and artifact untouched.
func (s *Service) SubmitPrompt(ctx context.Context, code, participantID, prompt string) (game.Participant, error) {
	code = game.NormalizeCode(code)
	snapshot, err := s.store.Load(ctx, code)
	if err != nil {
		return game.Participant{}, err
	}
	p, err := snapshot.CheckPrompt(participantID, prompt)
	if err != nil {
		return game.Participant{}, err
	}
	if !s.limiter.allow(code, participantID, s.Now()) {
		logger.Debug("prompt rate limited", zap.String("game_code", code), zap.String("participant_id", participantID))
		return game.Participant{}, game.ErrRateLimited
	}

	artifact, err := s.gen.Generate(ctx, generator.Request{
		Prompt:  prompt,
		Current: p.CurrentArtifact,
		Mode:    snapshot.RenderMode,
	})
	if err != nil {
		logger.Warn("generation failed",
			zap.String("game_code", code),
			zap.String("participant_id", participantID),
			zap.Error(err))
		if game.KindOf(err) == game.KindUnknown {
			err = game.External("generator error: " + err.Error())
		}
		return game.Participant{}, err
	}

	now := s.Now()
	var updated game.Participant
	g, err := s.update(ctx, code, func(g *game.Game) error {
		p, err := g.RecordPrompt(participantID, prompt, artifact, now)
		if err != nil {
			return err
		}
		updated = *p
		return nil
	})
	if err != nil {
		return game.Participant{}, err
	}
	logger.Info("prompt accepted",
		zap.String("game_code", g.Code),
		zap.String("participant_id", participantID),
		zap.Int("prompt_count", len(updated.PromptHistory)))
	s.publish(ctx, g.Code, fanout.PreviewUpdate{
		ParticipantID: participantID,
		Artifact:      updated.CurrentArtifact,
		PromptCount:   len(updated.PromptHistory),
	})
	return updated, nil
}
