package game

import (
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	MinDuration          = 60
	MaxDuration          = 600
	DefaultMaxPrompts    = 3
	DefaultMaxCharacters = 1000
	MaxPromptsLimit      = 50
	MaxCharactersLimit   = 5000
	MaxParticipants      = 20
	MaxNameLength        = 40

	DefaultTargetDescription = "recreate this"
	CancelledSabotagePrompt  = "[sabotage cancelled]"
)

// Config is the admin's request for a new game.
type Config struct {
	RenderMode        RenderMode
	TargetType        TargetType
	TargetImageURL    string
	TargetText        string
	TargetDescription string
	Duration          int
	MaxPrompts        int
	MaxCharacters     int
	SabotageMode      bool
	CustomCode        string
}

// WithDefaults fills unset quotas.
func (c Config) WithDefaults(maxPrompts, maxCharacters int) Config {
	if c.MaxPrompts == 0 {
		c.MaxPrompts = maxPrompts
	}
	if c.MaxCharacters == 0 {
		c.MaxCharacters = maxCharacters
	}
	if strings.TrimSpace(c.TargetDescription) == "" {
		c.TargetDescription = DefaultTargetDescription
	}
	c.CustomCode = NormalizeCode(c.CustomCode)
	return c
}

func (c Config) Validate() error {
	if !c.RenderMode.Valid() {
		return Invalid("invalid_render_mode", "renderMode must be retro or turbo")
	}
	if c.Duration < MinDuration || c.Duration > MaxDuration {
		return Invalid("invalid_duration", "duration must be between 60 and 600 seconds")
	}
	switch c.TargetType {
	case TargetImage:
		u, err := url.Parse(strings.TrimSpace(c.TargetImageURL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Invalid("invalid_target", "an image target needs an http(s) image URL")
		}
	case TargetText:
		if strings.TrimSpace(c.TargetText) == "" {
			return Invalid("invalid_target", "a text target needs a description")
		}
	default:
		return Invalid("invalid_target", "targetType must be image or text")
	}
	if c.MaxPrompts < 1 || c.MaxPrompts > MaxPromptsLimit {
		return Invalid("invalid_max_prompts", "maxPrompts must be between 1 and 50")
	}
	if c.MaxCharacters < 1 || c.MaxCharacters > MaxCharactersLimit {
		return Invalid("invalid_max_characters", "maxCharacters must be between 1 and 5000")
	}
	if c.CustomCode != "" && !ValidCode(c.CustomCode) {
		return Invalid("invalid_code", "custom code must be 4-6 letters or digits")
	}
	return nil
}

// New builds a lobby-state game from a validated config.
func New(cfg Config, code string, now time.Time) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	target := Target{Type: cfg.TargetType, Description: strings.TrimSpace(cfg.TargetDescription)}
	if cfg.TargetType == TargetImage {
		target.ImageURL = strings.TrimSpace(cfg.TargetImageURL)
	} else {
		target.Text = strings.TrimSpace(cfg.TargetText)
	}
	return &Game{
		Code:          code,
		Status:        StatusLobby,
		RenderMode:    cfg.RenderMode,
		Target:        target,
		Duration:      cfg.Duration,
		MaxPrompts:    cfg.MaxPrompts,
		MaxCharacters: cfg.MaxCharacters,
		SabotageMode:  cfg.SabotageMode,
		CreatedAt:     now,
		Participants:  []Participant{},
		Votes:         []Vote{},
		Reactions:     []Reaction{},
		Sabotages:     []Sabotage{},
	}, nil
}

func (g *Game) Participant(id string) *Participant {
	for i := range g.Participants {
		if g.Participants[i].ID == id {
			return &g.Participants[i]
		}
	}
	return nil
}

// Join adds a participant during the lobby. limit caps the roster size.
func (g *Game) Join(name string, limit int, now time.Time) (*Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Invalid("invalid_name", "name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, Invalid("invalid_name", "name is too long")
	}
	if g.Status != StatusLobby {
		return nil, ErrNotJoinable
	}
	for _, p := range g.Participants {
		if strings.EqualFold(p.Name, name) {
			return nil, ErrDuplicateName
		}
	}
	if limit <= 0 || limit > MaxParticipants {
		limit = MaxParticipants
	}
	if len(g.Participants) >= limit {
		return nil, ErrGameFull
	}
	reactions := make(map[ReactionType]int, len(ReactionTypes))
	for _, t := range ReactionTypes {
		reactions[t] = 0
	}
	g.Participants = append(g.Participants, Participant{
		ID:              uuid.NewString(),
		Name:            name,
		CurrentArtifact: DefaultArtifact(g.RenderMode),
		PromptHistory:   []PromptEntry{},
		Reactions:       reactions,
		ActiveSabotages: []SabotageType{},
		JoinedAt:        now,
	})
	return &g.Participants[len(g.Participants)-1], nil
}

// Start leaves the lobby. With reveal the game pauses in the reveal phase;
// without it the game goes straight to active.
func (g *Game) Start(withReveal bool, now time.Time) error {
	if g.Status != StatusLobby {
		return ErrInvalidTransition
	}
	if withReveal {
		g.Status = StatusReveal
		g.RevealStartTime = timePtr(now)
		return nil
	}
	g.Status = StatusActive
	g.StartTime = timePtr(now)
	return nil
}

func (g *Game) AdvanceToActive(now time.Time) error {
	if g.Status != StatusReveal {
		return ErrInvalidTransition
	}
	g.Status = StatusActive
	g.StartTime = timePtr(now)
	return nil
}

// OpenVoting ends the active phase and starts a fresh tally.
func (g *Game) OpenVoting(now time.Time) error {
	if g.Status != StatusActive {
		return ErrGameNotActive
	}
	g.Status = StatusVoting
	g.VotingStartTime = timePtr(now)
	g.Votes = []Vote{}
	for i := range g.Participants {
		g.Participants[i].VoteCount = 0
	}
	return nil
}

func (g *Game) voteIndex(voterID string) int {
	for i, v := range g.Votes {
		if v.VoterID == voterID {
			return i
		}
	}
	return -1
}

// HasVoted reports whether voterID holds a live vote.
func (g *Game) HasVoted(voterID string) bool {
	return g.voteIndex(voterID) >= 0
}

func (g *Game) ApplyVote(participantID, voterID string, now time.Time) (*Participant, error) {
	if strings.TrimSpace(voterID) == "" {
		return nil, Invalid("invalid_voter", "voter identity is required")
	}
	if g.Status != StatusVoting {
		return nil, ErrVotingNotOpen
	}
	if g.HasVoted(voterID) {
		return nil, ErrAlreadyVoted
	}
	p := g.Participant(participantID)
	if p == nil {
		return nil, ErrParticipantNotFound
	}
	g.Votes = append(g.Votes, Vote{
		ID:            uuid.NewString(),
		ParticipantID: participantID,
		VoterID:       voterID,
		CreatedAt:     now,
	})
	p.VoteCount++
	return p, nil
}

// RetractVote removes the voter's live vote. The returned participant is the
// one who lost the vote, or nil if they no longer exist.
func (g *Game) RetractVote(voterID string) (*Participant, error) {
	if g.Status != StatusVoting && g.Status != StatusFinished {
		return nil, ErrVotingNotOpen
	}
	idx := g.voteIndex(voterID)
	if idx < 0 {
		return nil, ErrNoVoteFound
	}
	vote := g.Votes[idx]
	g.Votes = append(g.Votes[:idx], g.Votes[idx+1:]...)
	p := g.Participant(vote.ParticipantID)
	if p != nil && p.VoteCount > 0 {
		p.VoteCount--
	}
	return p, nil
}

func (g *Game) ApplyReaction(participantID, voterID string, kind ReactionType, now time.Time) (*Participant, error) {
	if !kind.Valid() {
		return nil, Invalid("invalid_reaction", "unknown reaction type")
	}
	if g.Status.rank() < StatusActive.rank() {
		return nil, ErrReactionsClosed
	}
	p := g.Participant(participantID)
	if p == nil {
		return nil, ErrParticipantNotFound
	}
	id, err := gonanoid.New()
	if err != nil {
		id = uuid.NewString()
	}
	g.Reactions = append(g.Reactions, Reaction{
		ID:            id,
		ParticipantID: participantID,
		VoterID:       voterID,
		Type:          kind,
		CreatedAt:     now,
	})
	if p.Reactions == nil {
		p.Reactions = make(map[ReactionType]int, len(ReactionTypes))
	}
	p.Reactions[kind]++
	return p, nil
}

// Standings ranks participants by votes, ties going to the earliest joiner.
func (g *Game) Standings() []Standing {
	out := make([]Standing, len(g.Participants))
	for i, p := range g.Participants {
		out[i] = Standing{ParticipantID: p.ID, Name: p.Name, VoteCount: p.VoteCount}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VoteCount > out[j].VoteCount
	})
	return out
}

func (g *Game) DeclareWinner() ([]Standing, error) {
	if g.Status != StatusVoting {
		return nil, ErrInvalidTransition
	}
	if len(g.Participants) == 0 {
		return nil, ErrNoParticipants
	}
	standings := g.Standings()
	g.WinnerID = standings[0].ParticipantID
	g.Status = StatusFinished
	return standings, nil
}

// CheckPrompt runs the quota checks a prompt must pass before and after generation.
func (g *Game) CheckPrompt(participantID, prompt string) (*Participant, error) {
	if g.Status != StatusActive {
		return nil, ErrGameNotActive
	}
	p := g.Participant(participantID)
	if p == nil {
		return nil, ErrParticipantNotFound
	}
	if len(p.PromptHistory) >= g.MaxPrompts {
		return nil, ErrPromptLimitReached
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, Invalid("invalid_prompt", "prompt is required")
	}
	if utf8.RuneCountInString(prompt) > g.MaxCharacters {
		return nil, ErrPromptTooLong
	}
	return p, nil
}

// RecordPrompt stores a generated artifact together with the prompt that produced it.
func (g *Game) RecordPrompt(participantID, prompt string, artifact Artifact, now time.Time) (*Participant, error) {
	p, err := g.CheckPrompt(participantID, prompt)
	if err != nil {
		return nil, err
	}
	p.PromptHistory = append(p.PromptHistory, PromptEntry{Prompt: prompt, At: now})
	p.CurrentArtifact = artifact
	return p, nil
}

// ApplySabotage lets source inflict one cosmetic effect on target.
func (g *Game) ApplySabotage(sourceID, targetID string, kind SabotageType, now time.Time) (*Participant, error) {
	if !g.SabotageMode {
		return nil, ErrSabotageDisabled
	}
	if !kind.Valid() {
		return nil, Invalid("invalid_sabotage", "unknown sabotage type")
	}
	if g.Status != StatusActive {
		return nil, ErrGameNotActive
	}
	source := g.Participant(sourceID)
	if source == nil {
		return nil, ErrParticipantNotFound
	}
	if source.SabotageUsed {
		return nil, ErrSabotageUsed
	}
	if source.PromptsRemaining(g.MaxPrompts) == 0 {
		return nil, ErrPromptLimitReached
	}
	target := g.Participant(targetID)
	if target == nil {
		return nil, ErrParticipantNotFound
	}
	if sourceID == targetID {
		return nil, ErrSabotageSelf
	}
	g.Sabotages = append(g.Sabotages, Sabotage{
		ID:        uuid.NewString(),
		SourceID:  sourceID,
		TargetID:  targetID,
		Type:      kind,
		CreatedAt: now,
	})
	target.ActiveSabotages = append(target.ActiveSabotages, kind)
	source.SabotageUsed = true
	return target, nil
}

// CancelSabotages clears every sabotage on the participant. While the game is
// active this costs one prompt.
func (g *Game) CancelSabotages(participantID string, now time.Time) (*Participant, error) {
	if !g.SabotageMode {
		return nil, ErrSabotageDisabled
	}
	if g.Status != StatusActive && g.Status != StatusVoting {
		return nil, ErrSabotageNotAllowed
	}
	p := g.Participant(participantID)
	if p == nil {
		return nil, ErrParticipantNotFound
	}
	if len(p.ActiveSabotages) == 0 {
		return nil, ErrNoActiveSabotage
	}
	if g.Status == StatusActive {
		if p.PromptsRemaining(g.MaxPrompts) == 0 {
			return nil, ErrPromptLimitReached
		}
		p.PromptHistory = append(p.PromptHistory, PromptEntry{Prompt: CancelledSabotagePrompt, At: now})
	}
	p.ActiveSabotages = []SabotageType{}
	for i := range g.Sabotages {
		if g.Sabotages[i].TargetID == participantID {
			g.Sabotages[i].Cancelled = true
		}
	}
	return p, nil
}

// Deadline is when the active phase ends, if it has started.
func (g *Game) Deadline() (time.Time, bool) {
	if g.StartTime == nil {
		return time.Time{}, false
	}
	return g.StartTime.Add(time.Duration(g.Duration) * time.Second), true
}

// TimeRemaining is the whole seconds left in the active phase.
func (g *Game) TimeRemaining(now time.Time) int {
	if g.Status != StatusActive {
		return 0
	}
	deadline, ok := g.Deadline()
	if !ok {
		return g.Duration
	}
	left := deadline.Sub(now)
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

// Clone returns a deep copy.
func (g *Game) Clone() *Game {
	c := *g
	c.RevealStartTime = copyTime(g.RevealStartTime)
	c.StartTime = copyTime(g.StartTime)
	c.VotingStartTime = copyTime(g.VotingStartTime)
	c.Participants = make([]Participant, len(g.Participants))
	for i, p := range g.Participants {
		cp := p
		cp.PromptHistory = append([]PromptEntry{}, p.PromptHistory...)
		cp.ActiveSabotages = append([]SabotageType{}, p.ActiveSabotages...)
		cp.Reactions = make(map[ReactionType]int, len(p.Reactions))
		for k, v := range p.Reactions {
			cp.Reactions[k] = v
		}
		c.Participants[i] = cp
	}
	c.Votes = append([]Vote{}, g.Votes...)
	c.Reactions = append([]Reaction{}, g.Reactions...)
	c.Sabotages = append([]Sabotage{}, g.Sabotages...)
	return &c
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
