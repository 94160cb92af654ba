package game

import "time"

type Status string

const (
	StatusLobby    Status = "lobby"
	StatusReveal   Status = "reveal"
	StatusActive   Status = "active"
	StatusVoting   Status = "voting"
	StatusFinished Status = "finished"
)

// rank orders statuses along the only permitted direction of travel.
func (s Status) rank() int {
	switch s {
	case StatusLobby:
		return 0
	case StatusReveal:
		return 1
	case StatusActive:
		return 2
	case StatusVoting:
		return 3
	case StatusFinished:
		return 4
	default:
		return -1
	}
}

type RenderMode string

const (
	RenderRetro RenderMode = "retro"
	RenderTurbo RenderMode = "turbo"
)

func (m RenderMode) Valid() bool {
	return m == RenderRetro || m == RenderTurbo
}

type TargetType string

const (
	TargetImage TargetType = "image"
	TargetText  TargetType = "text"
)

type ReactionType string

const (
	ReactionFire  ReactionType = "fire"
	ReactionLaugh ReactionType = "laugh"
	ReactionThink ReactionType = "think"
	ReactionShock ReactionType = "shock"
	ReactionCool  ReactionType = "cool"
)

var ReactionTypes = []ReactionType{ReactionFire, ReactionLaugh, ReactionThink, ReactionShock, ReactionCool}

func (r ReactionType) Valid() bool {
	for _, t := range ReactionTypes {
		if t == r {
			return true
		}
	}
	return false
}

type SabotageType string

const (
	SabotageLightsOff      SabotageType = "lights-off"
	SabotageRotate         SabotageType = "rotate-180"
	SabotageInvertedColors SabotageType = "inverted-colors"
	SabotageGlitterBomb    SabotageType = "glitter-bomb"
	SabotageComicSans      SabotageType = "comic-sans"
)

var SabotageTypes = []SabotageType{
	SabotageLightsOff,
	SabotageRotate,
	SabotageInvertedColors,
	SabotageGlitterBomb,
	SabotageComicSans,
}

func (t SabotageType) Valid() bool {
	for _, s := range SabotageTypes {
		if s == t {
			return true
		}
	}
	return false
}

// Artifact is the generated UI a participant iterates on. Retro games use
// HTML and CSS; turbo games use Source.
type Artifact struct {
	HTML   string `json:"html,omitempty"`
	CSS    string `json:"css,omitempty"`
	Source string `json:"source,omitempty"`
}

type PromptEntry struct {
	Prompt string    `json:"prompt"`
	At     time.Time `json:"at"`
}

type Target struct {
	Type        TargetType `json:"type"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Text        string     `json:"text,omitempty"`
	Description string     `json:"description"`
}

type Participant struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	CurrentArtifact Artifact             `json:"currentArtifact"`
	PromptHistory   []PromptEntry        `json:"promptHistory"`
	VoteCount       int                  `json:"voteCount"`
	Reactions       map[ReactionType]int `json:"reactions"`
	ActiveSabotages []SabotageType       `json:"activeSabotages"`
	SabotageUsed    bool                 `json:"sabotageUsed"`
	JoinedAt        time.Time            `json:"joinedAt"`
}

// PromptsRemaining reports how many prompts the participant may still submit.
func (p *Participant) PromptsRemaining(maxPrompts int) int {
	left := maxPrompts - len(p.PromptHistory)
	if left < 0 {
		return 0
	}
	return left
}

type Vote struct {
	ID            string    `json:"id"`
	ParticipantID string    `json:"participantId"`
	VoterID       string    `json:"voterId"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Reaction struct {
	ID            string       `json:"id"`
	ParticipantID string       `json:"participantId"`
	VoterID       string       `json:"voterId"`
	Type          ReactionType `json:"type"`
	CreatedAt     time.Time    `json:"createdAt"`
}

type Sabotage struct {
	ID        string       `json:"id"`
	SourceID  string       `json:"sourceId"`
	TargetID  string       `json:"targetId"`
	Type      SabotageType `json:"type"`
	Cancelled bool         `json:"cancelled"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Game is the authoritative record for one session. Version is owned by the
// store and reflects the revision the snapshot was loaded at.
type Game struct {
	Code            string        `json:"code"`
	Status          Status        `json:"status"`
	RenderMode      RenderMode    `json:"renderMode"`
	Target          Target        `json:"target"`
	Duration        int           `json:"duration"`
	MaxPrompts      int           `json:"maxPrompts"`
	MaxCharacters   int           `json:"maxCharacters"`
	SabotageMode    bool          `json:"sabotageMode"`
	CreatedAt       time.Time     `json:"createdAt"`
	RevealStartTime *time.Time    `json:"revealStartTime"`
	StartTime       *time.Time    `json:"startTime"`
	VotingStartTime *time.Time    `json:"votingStartTime"`
	Participants    []Participant `json:"participants"`
	Votes           []Vote        `json:"votes"`
	Reactions       []Reaction    `json:"reactions"`
	Sabotages       []Sabotage    `json:"sabotages"`
	WinnerID        string        `json:"winnerId,omitempty"`
	Version         int64         `json:"version"`
}

// Standing is one row of the final ranking.
type Standing struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	VoteCount     int    `json:"voteCount"`
}
