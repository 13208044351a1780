package handlers

import (
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// NewValidator builds the validator instance with the two custom rules
// the register payload needs.
func NewValidator() *validator.Validate {
	v := validator.New()
	// Alphanumeric plus underscore only.
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	// At least one uppercase letter, one lowercase letter, one digit.
	// Length is handled by the min tag.
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		var upper, lower, digit bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			}
		}
		return upper && lower && digit
	})
	return v
}

// validationMessages turns validator failures into one entry per
// violated field, so a single response reports every problem at once.
func validationMessages(err error) []fiber.Map {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []fiber.Map{{"field": "", "message": err.Error()}}
	}
	out := make([]fiber.Map, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fiber.Map{
			"field":   fe.Field(),
			"message": messageForTag(fe),
		})
	}
	return out
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Must be at least " + fe.Param() + " characters"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	case "username":
		return "Username must be alphanumeric with underscores only"
	case "password":
		return "Password must contain at least one uppercase letter, one lowercase letter, and one number"
	default:
		return "Invalid value"
	}
}

// unprocessable reports every field violation in one 422 response.
func unprocessable(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"message": "Validation error",
		"errors":  validationMessages(err),
		"success": false,
		"status":  fiber.StatusUnprocessableEntity,
	})
}
