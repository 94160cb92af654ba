package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"vibe-in-the-dark/internal/fanout"
	"vibe-in-the-dark/internal/game"
)

type createGameRequest struct {
	RenderMode        game.RenderMode `json:"renderMode" binding:"required"`
	TargetType        game.TargetType `json:"targetType" binding:"required"`
	TargetImageURL    string          `json:"targetImageUrl"`
	TargetText        string          `json:"targetText"`
	TargetDescription string          `json:"targetDescription"`
	Duration          int             `json:"duration" binding:"required"`
	MaxPrompts        int             `json:"maxPrompts"`
	MaxCharacters     int             `json:"maxCharacters"`
	SabotageMode      bool            `json:"sabotageMode"`
	CustomCode        string          `json:"customCode" binding:"omitempty,gamecode"`
}

type joinRequest struct {
	Name string `json:"name" binding:"required,name"`
}

type promptRequest struct {
	ParticipantID string `json:"participantId" binding:"required"`
	Prompt        string `json:"prompt" binding:"required"`
}

type voteRequest struct {
	ParticipantID string `json:"participantId" binding:"required"`
	VoterID       string `json:"voterId" binding:"required,voter"`
}

type retractRequest struct {
	VoterID string `json:"voterId" binding:"required,voter"`
}

type reactionRequest struct {
	ParticipantID string            `json:"participantId" binding:"required"`
	VoterID       string            `json:"voterId" binding:"required,voter"`
	ReactionType  game.ReactionType `json:"reactionType" binding:"required,reaction"`
}

type sabotageRequest struct {
	SourceID     string            `json:"sourceId" binding:"required"`
	TargetID     string            `json:"targetId" binding:"required"`
	SabotageType game.SabotageType `json:"sabotageType" binding:"required,sabotage"`
}

type cancelSabotageRequest struct {
	ParticipantID string `json:"participantId" binding:"required"`
}

var createMessages = bindMessages{
	"RenderMode": {"required": "render mode is required"},
	"TargetType": {"required": "target type is required"},
	"Duration":   {"required": "duration is required"},
	"CustomCode": {"gamecode": "custom code must be 4-6 letters or digits"},
}

var joinMessages = bindMessages{
	"Name": {
		"required": "name is required",
		"name":     "name must be 1-40 characters",
	},
}

var voterMessages = bindMessages{
	"ParticipantID": {"required": "participant id is required"},
	"VoterID": {
		"required": "voter id is required",
		"voter":    "voter id is invalid",
	},
	"ReactionType": {
		"required": "reaction type is required",
		"reaction": "unknown reaction type",
	},
}

var promptMessages = bindMessages{
	"ParticipantID": {"required": "participant id is required"},
	"Prompt":        {"required": "prompt is required"},
}

var sabotageMessages = bindMessages{
	"SourceID":      {"required": "source id is required"},
	"TargetID":      {"required": "target id is required"},
	"ParticipantID": {"required": "participant id is required"},
	"SabotageType": {
		"required": "sabotage type is required",
		"sabotage": "unknown sabotage type",
	},
}

func (s *Server) handleCreateGame(c *gin.Context) {
	var req createGameRequest
	if !bindJSON(c, &req, createMessages, "invalid game settings") {
		return
	}
	g, err := s.svc.CreateGame(c.Request.Context(), game.Config{
		RenderMode:        req.RenderMode,
		TargetType:        req.TargetType,
		TargetImageURL:    req.TargetImageURL,
		TargetText:        req.TargetText,
		TargetDescription: req.TargetDescription,
		Duration:          req.Duration,
		MaxPrompts:        req.MaxPrompts,
		MaxCharacters:     req.MaxCharacters,
		SabotageMode:      req.SabotageMode,
		CustomCode:        req.CustomCode,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fanout.NewState(g, s.svc.Now()))
}

func (s *Server) handleGetState(c *gin.Context) {
	code, ok := bindCode(c)
	if !ok {
		return
	}
	g, err := s.svc.GetState(c.Request.Context(), code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fanout.NewState(g, s.svc.Now()))
}

func (s *Server) handleGetStatus(c *gin.Context) {
	code, ok := bindCode(c)
	if !ok {
		return
	}
	status, err := s.svc.GetStatus(c.Request.Context(), code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code, "status": status})
}

func (s *Server) handleJoin(c *gin.Context) {
	code, ok := bindCode(c)
	if !ok {
		return
	}
	var req joinRequest
	if !bindJSON(c, &req, joinMessages, "") {
		return
	}
	p, err := s.svc.JoinGame(c.Request.Context(), code, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// phaseHandler adapts the parameterless phase operations.
func (s *Server) phaseHandler(op func(ctx context.Context, code string) (*game.Game, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := bindCode(c)
		if !ok {
			return
		}
		g, err := op(c.Request.Context(), code)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, fanout.NewState(g, s.svc.Now()))
	}
}

func (s *Server) handleDeclareWinner(c *gin.Context) {
	code, ok := bindCode(c)
	if !ok {
		return
	}
	g, standings, err := s.svc.DeclareWinner(c.Request.Context(), code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"winnerId":  g.WinnerID,
		"standings": standings,
		"state":     fanout.NewState(g, s.svc.Now()),
	})
}

func (s *Server) handleSubmitPrompt(c *gin.Context) {
	code, ok := bindCode(c)
	if !ok {
		return
	}
	var req promptRequest
	if !bindJSON(c, &req, promptMessages, "") {
		return
	}
	p, err := s.svc.SubmitPrompt(c.Request.Context(), code, req.ParticipantID, req.Prompt)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleVote(c *gin.Context) {
	code, ok := bindCode(c)
	if !ok {
		return
	}
	var req voteRequest
	if !bindJSON(c, &req, voterMessages, "") {
		return
	}
	count, err := s.svc.Vote(c.Request.Context(), code, req.ParticipantID, req.VoterID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fanout.VoteUpdate{ParticipantID: req.ParticipantID, VoteCount: count})
}

func (s *Server) handleRetractVote(c *gin.Context) {
	code, ok := bindCode(c)
	if !ok {
		return
	}
	var req retractRequest
	if !bindJSON(c, &req, voterMessages, "") {
		return
	}
	update, err := s.svc.RetractVote(c.Request.Context(), code, req.VoterID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, update)
}

func (s *Server) handleReact(c *gin.Context) {
	code, ok := bindCode(c)
	if !ok {
		return
	}
	var req reactionRequest
	if !bindJSON(c, &req, voterMessages, "") {
		return
	}
	counts, err := s.svc.React(c.Request.Context(), code, req.ParticipantID, req.VoterID, req.ReactionType)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fanout.ReactionUpdate{ParticipantID: req.ParticipantID, Reactions: counts})
}

func (s *Server) handleApplySabotage(c *gin.Context) {
	code, ok := bindCode(c)
	if !ok {
		return
	}
	var req sabotageRequest
	if !bindJSON(c, &req, sabotageMessages, "") {
		return
	}
	active, err := s.svc.ApplySabotage(c.Request.Context(), code, req.SourceID, req.TargetID, req.SabotageType)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fanout.SabotageUpdate{ParticipantID: req.TargetID, ActiveSabotages: active})
}

func (s *Server) handleCancelSabotages(c *gin.Context) {
	code, ok := bindCode(c)
	if !ok {
		return
	}
	var req cancelSabotageRequest
	if !bindJSON(c, &req, sabotageMessages, "") {
		return
	}
	p, err := s.svc.CancelSabotages(c.Request.Context(), code, req.ParticipantID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
