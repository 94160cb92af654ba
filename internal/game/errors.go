package game

import "errors"

// Kind classifies a failure for callers that need to decide how to report it.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindPrecondition
	KindNotFound
	KindRateLimited
	KindContention
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindContention:
		return "contention"
	case KindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Error is a domain failure with a stable machine code and a user-facing message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrGameNotFound        = newError(KindNotFound, "game_not_found", "game not found")
	ErrParticipantNotFound = newError(KindNotFound, "participant_not_found", "participant not found")

	ErrCodeInUse          = newError(KindPrecondition, "code_in_use", "game code already in use by an active game")
	ErrNotJoinable        = newError(KindPrecondition, "not_joinable", "game already started")
	ErrDuplicateName      = newError(KindPrecondition, "duplicate_name", "that name is already taken")
	ErrGameFull           = newError(KindPrecondition, "game_full", "game is full")
	ErrInvalidTransition  = newError(KindPrecondition, "invalid_transition", "game is not in the right phase for that")
	ErrGameNotActive      = newError(KindPrecondition, "game_not_active", "game is not active")
	ErrVotingNotOpen      = newError(KindPrecondition, "voting_not_open", "voting not open yet")
	ErrAlreadyVoted       = newError(KindPrecondition, "already_voted", "you already voted, greedy!")
	ErrNoVoteFound        = newError(KindPrecondition, "no_vote_found", "no vote found to undo")
	ErrReactionsClosed    = newError(KindPrecondition, "reactions_closed", "reactions open once the game starts")
	ErrNoParticipants     = newError(KindPrecondition, "no_participants", "no participants to declare a winner")
	ErrPromptLimitReached = newError(KindPrecondition, "prompt_limit_reached", "you've used all of your prompts")
	ErrPromptTooLong      = newError(KindPrecondition, "prompt_too_long", "prompt exceeds the character limit")

	ErrSabotageDisabled   = newError(KindPrecondition, "sabotage_disabled", "sabotage mode is not enabled for this game")
	ErrSabotageUsed       = newError(KindPrecondition, "sabotage_used", "you have already used your sabotage")
	ErrSabotageSelf       = newError(KindPrecondition, "sabotage_self", "you cannot sabotage yourself")
	ErrNoActiveSabotage   = newError(KindPrecondition, "no_active_sabotage", "you have no active sabotages to cancel")
	ErrSabotageNotAllowed = newError(KindPrecondition, "sabotage_not_allowed", "cannot change sabotages at this time")

	ErrRateLimited = newError(KindRateLimited, "rate_limited", "slow down! the generator needs to breathe")
	ErrContention  = newError(KindContention, "contention", "game is busy, try again")
)

// Invalid builds a validation failure.
func Invalid(code, message string) error {
	return newError(KindValidation, code, message)
}

// External builds a failure caused by a collaborator outside this process.
func External(message string) error {
	return newError(KindExternal, "generator_failed", message)
}

// KindOf reports the kind of err, or KindUnknown when err is not a domain error.
func KindOf(err error) Kind {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Kind
	}
	return KindUnknown
}

// CodeOf reports the machine code of err, or "internal" when err is not a domain error.
func CodeOf(err error) string {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Code
	}
	return "internal"
}
