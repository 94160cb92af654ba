package server

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"vibe-in-the-dark/internal/game"
)

const maxVoterIDLength = 128

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("name", func(fl validator.FieldLevel) bool {
			return validName(fl.Field().String())
		})
		_ = engine.RegisterValidation("voter", func(fl validator.FieldLevel) bool {
			return validVoter(fl.Field().String())
		})
		_ = engine.RegisterValidation("gamecode", func(fl validator.FieldLevel) bool {
			return game.ValidCode(game.NormalizeCode(fl.Field().String()))
		})
		_ = engine.RegisterValidation("reaction", func(fl validator.FieldLevel) bool {
			return game.ReactionType(fl.Field().String()).Valid()
		})
		_ = engine.RegisterValidation("sabotage", func(fl validator.FieldLevel) bool {
			return game.SabotageType(fl.Field().String()).Valid()
		})
	})
}

func validName(name string) bool {
	trimmed := strings.TrimSpace(name)
	return trimmed != "" && utf8.RuneCountInString(trimmed) <= game.MaxNameLength
}

// validVoter accepts any opaque, printable client identity.
func validVoter(id string) bool {
	if id == "" || len(id) > maxVoterIDLength {
		return false
	}
	for _, r := range id {
		if r <= ' ' || r == 0x7f {
			return false
		}
	}
	return true
}
