package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vibe-in-the-dark/internal/config"
	"vibe-in-the-dark/internal/fanout"
	"vibe-in-the-dark/internal/logger"
	"vibe-in-the-dark/internal/session"
)

type Server struct {
	svc   *session.Service
	rooms *fanout.Broker
	cfg   config.Config
}

func New(svc *session.Service, rooms *fanout.Broker, cfg config.Config) *Server {
	registerValidators()
	return &Server{svc: svc, rooms: rooms, cfg: cfg}
}

func (s *Server) Handler() http.Handler {
	if s.cfg.Env == "production" || s.cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/", s.handleHome)
	r.GET("/games/:code", s.handleGameView)

	api := r.Group("/api/games")
	api.POST("", s.handleCreateGame)
	api.GET("/:code", s.handleGetState)
	api.GET("/:code/status", s.handleGetStatus)
	api.POST("/:code/join", s.handleJoin)
	api.POST("/:code/start", s.phaseHandler(s.svc.StartGame))
	api.POST("/:code/advance", s.phaseHandler(s.svc.AdvanceToActive))
	api.POST("/:code/open-voting", s.phaseHandler(s.svc.OpenVoting))
	api.POST("/:code/declare-winner", s.handleDeclareWinner)
	api.POST("/:code/prompts", s.handleSubmitPrompt)
	api.POST("/:code/votes", s.handleVote)
	api.DELETE("/:code/votes", s.handleRetractVote)
	api.POST("/:code/reactions", s.handleReact)
	api.POST("/:code/sabotages", s.handleApplySabotage)
	api.DELETE("/:code/sabotages", s.handleCancelSabotages)

	r.GET("/ws/games/:code", s.handleWebsocket)
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
