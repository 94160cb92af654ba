package game

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func textConfig() Config {
	return Config{
		RenderMode:    RenderRetro,
		TargetType:    TargetText,
		TargetText:    "a login form",
		Duration:      60,
		MaxPrompts:    2,
		MaxCharacters: 100,
	}.WithDefaults(DefaultMaxPrompts, DefaultMaxCharacters)
}

func newGame(t *testing.T, cfg Config) *Game {
	t.Helper()
	g, err := New(cfg, "ABCD", testNow)
	require.NoError(t, err)
	return g
}

func join(t *testing.T, g *Game, names ...string) []string {
	t.Helper()
	ids := make([]string, 0, len(names))
	for _, name := range names {
		p, err := g.Join(name, MaxParticipants, testNow)
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	return ids
}

func votingGame(t *testing.T, names ...string) (*Game, []string) {
	t.Helper()
	g := newGame(t, textConfig())
	ids := join(t, g, names...)
	require.NoError(t, g.Start(false, testNow))
	require.NoError(t, g.OpenVoting(testNow))
	return g, ids
}

func TestConfigValidate(t *testing.T) {
	base := textConfig()
	cases := []struct {
		name   string
		mutate func(*Config)
		code   string
	}{
		{"render mode", func(c *Config) { c.RenderMode = "pixel" }, "invalid_render_mode"},
		{"short duration", func(c *Config) { c.Duration = 59 }, "invalid_duration"},
		{"long duration", func(c *Config) { c.Duration = 601 }, "invalid_duration"},
		{"blank text", func(c *Config) { c.TargetText = "  " }, "invalid_target"},
		{"image without url", func(c *Config) { c.TargetType = TargetImage }, "invalid_target"},
		{"image bad scheme", func(c *Config) {
			c.TargetType = TargetImage
			c.TargetImageURL = "ftp://example.com/a.png"
		}, "invalid_target"},
		{"unknown target", func(c *Config) { c.TargetType = "video" }, "invalid_target"},
		{"prompts", func(c *Config) { c.MaxPrompts = 51 }, "invalid_max_prompts"},
		{"characters", func(c *Config) { c.MaxCharacters = 5001 }, "invalid_max_characters"},
		{"custom code", func(c *Config) { c.CustomCode = "AB0O" }, "invalid_code"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
			assert.Equal(t, tc.code, CodeOf(err))
		})
	}

	image := base
	image.TargetType = TargetImage
	image.TargetImageURL = "https://example.com/target.png"
	assert.NoError(t, image.Validate())
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{CustomCode: " wxyz "}.WithDefaults(3, 1000)
	assert.Equal(t, 3, cfg.MaxPrompts)
	assert.Equal(t, 1000, cfg.MaxCharacters)
	assert.Equal(t, DefaultTargetDescription, cfg.TargetDescription)
	assert.Equal(t, "WXYZ", cfg.CustomCode)
}

func TestNewGameStartsInLobby(t *testing.T) {
	g := newGame(t, textConfig())
	assert.Equal(t, StatusLobby, g.Status)
	assert.Nil(t, g.StartTime)
	assert.Nil(t, g.VotingStartTime)
	assert.Empty(t, g.WinnerID)
	assert.Equal(t, "a login form", g.Target.Text)
}

func TestJoin(t *testing.T) {
	g := newGame(t, textConfig())
	ids := join(t, g, "Alice")
	p := g.Participant(ids[0])
	require.NotNil(t, p)
	assert.Equal(t, DefaultArtifact(RenderRetro), p.CurrentArtifact)
	assert.Len(t, p.Reactions, len(ReactionTypes))
	assert.Empty(t, p.PromptHistory)

	_, err := g.Join("alice", MaxParticipants, testNow)
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = g.Join("   ", MaxParticipants, testNow)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestJoinTurboGetsComponentArtifact(t *testing.T) {
	cfg := textConfig()
	cfg.RenderMode = RenderTurbo
	g := newGame(t, cfg)
	ids := join(t, g, "Alice")
	assert.Contains(t, g.Participant(ids[0]).CurrentArtifact.Source, "export default")
}

func TestJoinCapsParticipants(t *testing.T) {
	g := newGame(t, textConfig())
	for i := 0; i < MaxParticipants; i++ {
		join(t, g, fmt.Sprintf("player-%d", i))
	}
	_, err := g.Join("one-too-many", MaxParticipants, testNow)
	assert.ErrorIs(t, err, ErrGameFull)
	assert.Len(t, g.Participants, MaxParticipants)
}

func TestJoinAfterStartFails(t *testing.T) {
	g := newGame(t, textConfig())
	require.NoError(t, g.Start(false, testNow))
	_, err := g.Join("Late", MaxParticipants, testNow)
	assert.ErrorIs(t, err, ErrNotJoinable)
}

func TestStartWithReveal(t *testing.T) {
	g := newGame(t, textConfig())
	require.NoError(t, g.Start(true, testNow))
	assert.Equal(t, StatusReveal, g.Status)
	assert.NotNil(t, g.RevealStartTime)
	assert.Nil(t, g.StartTime)

	assert.ErrorIs(t, g.Start(true, testNow), ErrInvalidTransition)

	later := testNow.Add(5 * time.Second)
	require.NoError(t, g.AdvanceToActive(later))
	assert.Equal(t, StatusActive, g.Status)
	require.NotNil(t, g.StartTime)
	assert.True(t, g.StartTime.Equal(later))
	assert.ErrorIs(t, g.AdvanceToActive(later), ErrInvalidTransition)
}

func TestStartSkippingReveal(t *testing.T) {
	g := newGame(t, textConfig())
	require.NoError(t, g.Start(false, testNow))
	assert.Equal(t, StatusActive, g.Status)
	require.NotNil(t, g.StartTime)
	assert.ErrorIs(t, g.AdvanceToActive(testNow), ErrInvalidTransition)
}

func TestOpenVotingFromLobbyFailsWithoutMutation(t *testing.T) {
	g := newGame(t, textConfig())
	join(t, g, "Alice")
	before := g.Clone()
	assert.ErrorIs(t, g.OpenVoting(testNow), ErrGameNotActive)
	assert.Equal(t, before, g)
}

func TestOpenVotingResetsTally(t *testing.T) {
	g := newGame(t, textConfig())
	ids := join(t, g, "Alice", "Bob")
	require.NoError(t, g.Start(false, testNow))
	g.Participants[0].VoteCount = 4
	g.Votes = []Vote{{ID: "stale", ParticipantID: ids[0], VoterID: "x"}}

	require.NoError(t, g.OpenVoting(testNow))
	assert.Equal(t, StatusVoting, g.Status)
	assert.NotNil(t, g.VotingStartTime)
	assert.Empty(t, g.Votes)
	for _, p := range g.Participants {
		assert.Zero(t, p.VoteCount)
	}
}

func TestVoteLedger(t *testing.T) {
	g, ids := votingGame(t, "Alice", "Bob")
	alice, bob := ids[0], ids[1]

	p, err := g.ApplyVote(alice, "voterX", testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, p.VoteCount)

	_, err = g.ApplyVote(bob, "voterX", testNow)
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	p, err = g.RetractVote("voterX")
	require.NoError(t, err)
	assert.Equal(t, alice, p.ID)
	assert.Zero(t, p.VoteCount)

	after := g.Clone()
	_, err = g.RetractVote("voterX")
	assert.ErrorIs(t, err, ErrNoVoteFound)
	assert.Equal(t, after, g)

	p, err = g.ApplyVote(bob, "voterX", testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, p.VoteCount)

	_, err = g.ApplyVote("ghost", "voterY", testNow)
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestVoteBeforeVotingFails(t *testing.T) {
	g := newGame(t, textConfig())
	ids := join(t, g, "Alice")
	require.NoError(t, g.Start(false, testNow))
	_, err := g.ApplyVote(ids[0], "voter", testNow)
	assert.ErrorIs(t, err, ErrVotingNotOpen)
	_, err = g.RetractVote("voter")
	assert.ErrorIs(t, err, ErrVotingNotOpen)
}

func TestVoteCountsMatchLedger(t *testing.T) {
	g, ids := votingGame(t, "Alice", "Bob", "Cara")
	for i := 0; i < 30; i++ {
		voter := fmt.Sprintf("voter-%d", i%12)
		if i%4 == 3 {
			_, _ = g.RetractVote(voter)
			continue
		}
		_, _ = g.ApplyVote(ids[i%len(ids)], voter, testNow)
	}

	seen := map[string]bool{}
	perParticipant := map[string]int{}
	for _, v := range g.Votes {
		assert.False(t, seen[v.VoterID], "voter %s has two live votes", v.VoterID)
		seen[v.VoterID] = true
		perParticipant[v.ParticipantID]++
	}
	total := 0
	for _, p := range g.Participants {
		assert.Equal(t, perParticipant[p.ID], p.VoteCount, p.Name)
		total += p.VoteCount
	}
	assert.Equal(t, len(g.Votes), total)
}

func TestReactions(t *testing.T) {
	g := newGame(t, textConfig())
	ids := join(t, g, "Alice")

	_, err := g.ApplyReaction(ids[0], "v", ReactionFire, testNow)
	assert.ErrorIs(t, err, ErrReactionsClosed)

	require.NoError(t, g.Start(false, testNow))
	for i := 0; i < 3; i++ {
		_, err = g.ApplyReaction(ids[0], "v", ReactionFire, testNow)
		require.NoError(t, err)
	}
	p, err := g.ApplyReaction(ids[0], "v", ReactionCool, testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Reactions[ReactionFire])
	assert.Equal(t, 1, p.Reactions[ReactionCool])
	assert.Len(t, g.Reactions, 4)

	_, err = g.ApplyReaction(ids[0], "v", "meh", testNow)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestDeclareWinnerTieGoesToEarliestJoiner(t *testing.T) {
	g, ids := votingGame(t, "Alice", "Bob", "Cara")
	_, err := g.ApplyVote(ids[1], "v1", testNow)
	require.NoError(t, err)
	_, err = g.ApplyVote(ids[2], "v2", testNow)
	require.NoError(t, err)

	standings, err := g.DeclareWinner()
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, g.Status)
	assert.Equal(t, ids[1], g.WinnerID)
	require.Len(t, standings, 3)
	assert.Equal(t, "Bob", standings[0].Name)
	assert.Equal(t, "Cara", standings[1].Name)
	assert.Equal(t, "Alice", standings[2].Name)

	_, err = g.DeclareWinner()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDeclareWinnerWithoutParticipants(t *testing.T) {
	g, _ := votingGame(t)
	_, err := g.DeclareWinner()
	assert.ErrorIs(t, err, ErrNoParticipants)
	assert.Equal(t, StatusVoting, g.Status)
	assert.Empty(t, g.WinnerID)
}

func TestFinishedGameStillAcceptsRetractAndReact(t *testing.T) {
	g, ids := votingGame(t, "Alice")
	_, err := g.ApplyVote(ids[0], "v", testNow)
	require.NoError(t, err)
	_, err = g.DeclareWinner()
	require.NoError(t, err)

	_, err = g.RetractVote("v")
	require.NoError(t, err)
	_, err = g.ApplyReaction(ids[0], "v", ReactionLaugh, testNow)
	require.NoError(t, err)
	assert.Equal(t, ids[0], g.WinnerID)

	_, err = g.ApplyVote(ids[0], "v", testNow)
	assert.ErrorIs(t, err, ErrVotingNotOpen)
}

func TestPromptQuota(t *testing.T) {
	g := newGame(t, textConfig())
	ids := join(t, g, "Alice")
	_, err := g.RecordPrompt(ids[0], "make it pink", Artifact{HTML: "<p>pink</p>"}, testNow)
	assert.ErrorIs(t, err, ErrGameNotActive)

	require.NoError(t, g.Start(false, testNow))
	for i := 0; i < 2; i++ {
		p, err := g.RecordPrompt(ids[0], "make it pink", Artifact{HTML: fmt.Sprintf("<p>%d</p>", i)}, testNow)
		require.NoError(t, err)
		assert.Len(t, p.PromptHistory, i+1)
	}

	before := g.Clone()
	_, err = g.RecordPrompt(ids[0], "one more", Artifact{HTML: "<p>nope</p>"}, testNow)
	assert.ErrorIs(t, err, ErrPromptLimitReached)
	assert.Equal(t, before, g)
}

func TestPromptTooLong(t *testing.T) {
	g := newGame(t, textConfig())
	ids := join(t, g, "Alice")
	require.NoError(t, g.Start(false, testNow))
	_, err := g.CheckPrompt(ids[0], strings.Repeat("a", 101))
	assert.ErrorIs(t, err, ErrPromptTooLong)
	_, err = g.CheckPrompt(ids[0], strings.Repeat("é", 100))
	assert.NoError(t, err)
	_, err = g.CheckPrompt("ghost", "hi")
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func sabotageGame(t *testing.T) (*Game, []string) {
	t.Helper()
	cfg := textConfig()
	cfg.SabotageMode = true
	g := newGame(t, cfg)
	ids := join(t, g, "Alice", "Bob")
	require.NoError(t, g.Start(false, testNow))
	return g, ids
}

func TestSabotage(t *testing.T) {
	g, ids := sabotageGame(t)
	alice, bob := ids[0], ids[1]

	_, err := g.ApplySabotage(alice, alice, SabotageComicSans, testNow)
	assert.ErrorIs(t, err, ErrSabotageSelf)

	target, err := g.ApplySabotage(alice, bob, SabotageComicSans, testNow)
	require.NoError(t, err)
	assert.Equal(t, []SabotageType{SabotageComicSans}, target.ActiveSabotages)
	assert.True(t, g.Participant(alice).SabotageUsed)

	_, err = g.ApplySabotage(alice, bob, SabotageLightsOff, testNow)
	assert.ErrorIs(t, err, ErrSabotageUsed)

	_, err = g.CancelSabotages(alice, testNow)
	assert.ErrorIs(t, err, ErrNoActiveSabotage)

	p, err := g.CancelSabotages(bob, testNow)
	require.NoError(t, err)
	assert.Empty(t, p.ActiveSabotages)
	require.Len(t, p.PromptHistory, 1)
	assert.Equal(t, CancelledSabotagePrompt, p.PromptHistory[0].Prompt)
	assert.True(t, g.Sabotages[0].Cancelled)
}

func TestSabotageNeedsPromptRemaining(t *testing.T) {
	g, ids := sabotageGame(t)
	for i := 0; i < 2; i++ {
		_, err := g.RecordPrompt(ids[0], "more", Artifact{HTML: "x"}, testNow)
		require.NoError(t, err)
	}
	_, err := g.ApplySabotage(ids[0], ids[1], SabotageRotate, testNow)
	assert.ErrorIs(t, err, ErrPromptLimitReached)
}

func TestCancelSabotageDuringVotingIsFree(t *testing.T) {
	g, ids := sabotageGame(t)
	_, err := g.ApplySabotage(ids[0], ids[1], SabotageGlitterBomb, testNow)
	require.NoError(t, err)
	require.NoError(t, g.OpenVoting(testNow))

	p, err := g.CancelSabotages(ids[1], testNow)
	require.NoError(t, err)
	assert.Empty(t, p.ActiveSabotages)
	assert.Empty(t, p.PromptHistory)
}

func TestSabotageDisabled(t *testing.T) {
	g := newGame(t, textConfig())
	ids := join(t, g, "Alice", "Bob")
	require.NoError(t, g.Start(false, testNow))
	_, err := g.ApplySabotage(ids[0], ids[1], SabotageRotate, testNow)
	assert.ErrorIs(t, err, ErrSabotageDisabled)
}

func TestTimeRemaining(t *testing.T) {
	g := newGame(t, textConfig())
	assert.Zero(t, g.TimeRemaining(testNow))
	require.NoError(t, g.Start(false, testNow))
	assert.Equal(t, 60, g.TimeRemaining(testNow))
	assert.Equal(t, 30, g.TimeRemaining(testNow.Add(30*time.Second)))
	assert.Equal(t, 1, g.TimeRemaining(testNow.Add(59500*time.Millisecond)))
	assert.Zero(t, g.TimeRemaining(testNow.Add(2*time.Minute)))

	deadline, ok := g.Deadline()
	require.True(t, ok)
	assert.True(t, deadline.Equal(testNow.Add(time.Minute)))
}

func TestCloneIsDeep(t *testing.T) {
	g := newGame(t, textConfig())
	ids := join(t, g, "Alice")
	require.NoError(t, g.Start(false, testNow))
	c := g.Clone()
	c.Participants[0].Reactions[ReactionFire] = 9
	c.Participants[0].PromptHistory = append(c.Participants[0].PromptHistory, PromptEntry{Prompt: "x"})
	*c.StartTime = c.StartTime.Add(time.Hour)

	p := g.Participant(ids[0])
	assert.Zero(t, p.Reactions[ReactionFire])
	assert.Empty(t, p.PromptHistory)
	assert.True(t, g.StartTime.Equal(testNow))
}

func TestCodes(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := NewCode(4)
		require.NoError(t, err)
		assert.True(t, ValidCode(code), code)
	}
	code, err := NewCode(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)

	assert.Equal(t, "AB23", NormalizeCode(" ab23 "))
	assert.False(t, ValidCode("ABC"))
	assert.False(t, ValidCode("ABCDEFG"))
	assert.False(t, ValidCode("ABCI"))
}
