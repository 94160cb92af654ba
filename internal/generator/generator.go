// Package generator turns a prompt and the current artifact into a new
// artifact by asking a chat-completion model.
package generator

import (
	"context"

	"vibe-in-the-dark/internal/game"
)

type Request struct {
	Prompt  string
	Current game.Artifact
	Mode    game.RenderMode
}

// Generator produces the next artifact. Failures are returned as
// game.External errors carrying a message fit for the participant.
type Generator interface {
	Generate(ctx context.Context, req Request) (game.Artifact, error)
}

// Func adapts a function to Generator.
type Func func(ctx context.Context, req Request) (game.Artifact, error)

func (f Func) Generate(ctx context.Context, req Request) (game.Artifact, error) {
	return f(ctx, req)
}
