package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vibe-in-the-dark/internal/game"
	"vibe-in-the-dark/internal/logger"
	"vibe-in-the-dark/internal/web"
)

func (s *Server) handleHome(c *gin.Context) {
	templ.Handler(web.Home()).ServeHTTP(c.Writer, c.Request)
}

func (s *Server) handleGameView(c *gin.Context) {
	code := game.NormalizeCode(c.Param("code"))
	g, err := s.svc.GetState(c.Request.Context(), code)
	if errors.Is(err, game.ErrGameNotFound) {
		logger.Debug("game view missing game", zap.String("game_code", code))
		c.Redirect(http.StatusFound, "/")
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	templ.Handler(web.Game(gamePage(g, s.svc.Now()))).ServeHTTP(c.Writer, c.Request)
}

func gamePage(g *game.Game, now time.Time) web.GamePage {
	page := web.GamePage{
		Code:              g.Code,
		Status:            string(g.Status),
		RenderMode:        string(g.RenderMode),
		TargetDescription: g.Target.Description,
		TimeRemaining:     g.TimeRemaining(now),
		MaxPrompts:        g.MaxPrompts,
		Players:           make([]web.PagePlayer, 0, len(g.Participants)),
	}
	for _, p := range g.Participants {
		page.Players = append(page.Players, web.PagePlayer{
			Name:    p.Name,
			Prompts: len(p.PromptHistory),
			Votes:   p.VoteCount,
		})
		if p.ID == g.WinnerID {
			page.WinnerName = p.Name
		}
	}
	return page
}
