package session

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// promptLimiter enforces the per-participant cooldown and an optional
// process-wide cap on generator calls. Its state is ephemeral.
type promptLimiter struct {
	mu       sync.Mutex
	cooldown time.Duration
	global   *rate.Limiter
	perGame  map[string]map[string]*rate.Limiter
}

func newPromptLimiter(cooldown time.Duration, perMinute int) *promptLimiter {
	l := &promptLimiter{
		cooldown: cooldown,
		perGame:  make(map[string]map[string]*rate.Limiter),
	}
	if perMinute > 0 {
		l.global = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	return l
}

// allow reserves a prompt slot for the participant at now.
func (l *promptLimiter) allow(code, participantID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	var personal *rate.Limiter
	if l.cooldown > 0 {
		byParticipant, ok := l.perGame[code]
		if !ok {
			byParticipant = make(map[string]*rate.Limiter)
			l.perGame[code] = byParticipant
		}
		personal, ok = byParticipant[participantID]
		if !ok {
			personal = rate.NewLimiter(rate.Every(l.cooldown), 1)
			byParticipant[participantID] = personal
		}
		if personal.TokensAt(now) < 1 {
			return false
		}
	}
	if l.global != nil && !l.global.AllowN(now, 1) {
		return false
	}
	if personal != nil {
		personal.AllowN(now, 1)
	}
	return true
}

func (l *promptLimiter) forget(code string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.perGame, code)
}
