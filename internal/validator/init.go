package validator

import (
	"ctchen222/tictactoe/internal/game"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())
	if err := registerGameValidations(validate); err != nil {
		panic(err)
	}
}

func GetValidator() *validator.Validate {
	return validate
}

// RegisterGin installs the game validations on gin's binding engine so request models
// can use the same tags as websocket frames.
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return registerGameValidations(v)
}

func registerGameValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("difficulty", validateDifficulty); err != nil {
		return err
	}
	return v.RegisterValidation("mark", validateMark)
}

func validateDifficulty(fl validator.FieldLevel) bool {
	_, err := game.ParseDifficulty(fl.Field().String())
	return err == nil
}

func validateMark(fl validator.FieldLevel) bool {
	_, err := game.ParseMark(fl.Field().String())
	return err == nil
}
