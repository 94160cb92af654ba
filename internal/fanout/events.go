package fanout

import (
	"encoding/json"
	"fmt"
	"time"

	"vibe-in-the-dark/internal/game"
)

type Type string

const (
	TypeState             Type = "state"
	TypeStatusUpdate      Type = "statusUpdate"
	TypeParticipantJoined Type = "participantJoined"
	TypePreviewUpdate     Type = "previewUpdate"
	TypeVoteUpdate        Type = "voteUpdate"
	TypeReactionUpdate    Type = "reactionUpdate"
	TypeWinnerDeclared    Type = "winnerDeclared"
	TypeSabotageUpdate    Type = "sabotageUpdate"
)

// Event is one of the room notifications below. The set is closed: only
// types in this package implement it.
type Event interface {
	Type() Type
	isEvent()
}

// State carries a full snapshot. Clients treat it as authoritative.
type State struct {
	*game.Game
	TimeRemaining int `json:"timeRemaining"`
}

type StatusUpdate struct {
	Status        game.Status `json:"status"`
	StartTime     *time.Time  `json:"startTime"`
	TimeRemaining int         `json:"timeRemaining"`
}

type ParticipantJoined struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PreviewUpdate struct {
	ParticipantID string        `json:"participantId"`
	Artifact      game.Artifact `json:"artifact"`
	PromptCount   int           `json:"promptCount"`
}

type VoteUpdate struct {
	ParticipantID string `json:"participantId"`
	VoteCount     int    `json:"voteCount"`
}

type ReactionUpdate struct {
	ParticipantID string                    `json:"participantId"`
	Reactions     map[game.ReactionType]int `json:"reactions"`
}

type WinnerDeclared struct {
	WinnerID  string          `json:"winnerId"`
	Standings []game.Standing `json:"standings"`
}

type SabotageUpdate struct {
	ParticipantID   string              `json:"participantId"`
	ActiveSabotages []game.SabotageType `json:"activeSabotages"`
}

func (State) Type() Type             { return TypeState }
func (StatusUpdate) Type() Type      { return TypeStatusUpdate }
func (ParticipantJoined) Type() Type { return TypeParticipantJoined }
func (PreviewUpdate) Type() Type     { return TypePreviewUpdate }
func (VoteUpdate) Type() Type        { return TypeVoteUpdate }
func (ReactionUpdate) Type() Type    { return TypeReactionUpdate }
func (WinnerDeclared) Type() Type    { return TypeWinnerDeclared }
func (SabotageUpdate) Type() Type    { return TypeSabotageUpdate }

func (State) isEvent()             {}
func (StatusUpdate) isEvent()      {}
func (ParticipantJoined) isEvent() {}
func (PreviewUpdate) isEvent()     {}
func (VoteUpdate) isEvent()        {}
func (ReactionUpdate) isEvent()    {}
func (WinnerDeclared) isEvent()    {}
func (SabotageUpdate) isEvent()    {}

// NewState snapshots g for broadcast.
func NewState(g *game.Game, now time.Time) State {
	return State{Game: g.Clone(), TimeRemaining: g.TimeRemaining(now)}
}

func NewStatusUpdate(g *game.Game, now time.Time) StatusUpdate {
	return StatusUpdate{Status: g.Status, StartTime: g.StartTime, TimeRemaining: g.TimeRemaining(now)}
}

type envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode renders e as the {"type", "payload"} wire envelope.
func Encode(e Event) ([]byte, error) {
	var payload any
	switch ev := e.(type) {
	case State:
		payload = ev
	case StatusUpdate:
		payload = ev
	case ParticipantJoined:
		payload = ev
	case PreviewUpdate:
		payload = ev
	case VoteUpdate:
		payload = ev
	case ReactionUpdate:
		payload = ev
	case WinnerDeclared:
		payload = ev
	case SabotageUpdate:
		payload = ev
	default:
		return nil, fmt.Errorf("fanout: unknown event %T", e)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("fanout: encode %s: %w", e.Type(), err)
	}
	return json.Marshal(envelope{Type: e.Type(), Payload: raw})
}

// Decode parses a wire envelope back into its typed event.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("fanout: decode envelope: %w", err)
	}
	var (
		ev  Event
		err error
	)
	switch env.Type {
	case TypeState:
		var v State
		err = json.Unmarshal(env.Payload, &v)
		ev = v
	case TypeStatusUpdate:
		var v StatusUpdate
		err = json.Unmarshal(env.Payload, &v)
		ev = v
	case TypeParticipantJoined:
		var v ParticipantJoined
		err = json.Unmarshal(env.Payload, &v)
		ev = v
	case TypePreviewUpdate:
		var v PreviewUpdate
		err = json.Unmarshal(env.Payload, &v)
		ev = v
	case TypeVoteUpdate:
		var v VoteUpdate
		err = json.Unmarshal(env.Payload, &v)
		ev = v
	case TypeReactionUpdate:
		var v ReactionUpdate
		err = json.Unmarshal(env.Payload, &v)
		ev = v
	case TypeWinnerDeclared:
		var v WinnerDeclared
		err = json.Unmarshal(env.Payload, &v)
		ev = v
	case TypeSabotageUpdate:
		var v SabotageUpdate
		err = json.Unmarshal(env.Payload, &v)
		ev = v
	default:
		return nil, fmt.Errorf("fanout: unknown event type %q", env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("fanout: decode %s: %w", env.Type, err)
	}
	return ev, nil
}
