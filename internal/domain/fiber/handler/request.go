package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fadilmartias/persona-match/internal/personality"
	"github.com/fadilmartias/persona-match/internal/usecase"
	"github.com/fadilmartias/persona-match/internal/util"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("archetype", func(fl validator.FieldLevel) bool {
		return personality.IsValid(personality.Key(fl.Field().String()))
	})
	if err != nil {
		panic(fmt.Sprintf("register archetype validation: %v", err))
	}
	return v
}

// bindJSON decodes and validates the request body into dst.
func bindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return util.NewFormError("Invalid request body", map[string]string{"body": "must be valid JSON"})
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[lowerFirst(fe.Field())] = fieldMessage(fe)
		}
		return util.NewFormError("Validation failed", fields)
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must have at least %s items", fe.Param())
	case "archetype":
		return "is not a known personality type"
	default:
		return "is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// respondError maps usecase errors onto HTTP status codes.
func respondError(c *fiber.Ctx, err error) error {
	var formErr *util.FormError
	switch {
	case errors.As(err, &formErr):
		return util.ErrorResponse(c, util.ErrorResponseFormat{Message: formErr.Message}, formErr)
	case errors.Is(err, usecase.ErrUnauthenticated):
		return util.ErrorResponse(c, util.ErrorResponseFormat{Code: fiber.StatusUnauthorized, Message: "Not logged in"}, err)
	case errors.Is(err, usecase.ErrUserNotFound):
		return util.ErrorResponse(c, util.ErrorResponseFormat{Code: fiber.StatusNotFound, Message: "Target user not found"}, err)
	case errors.Is(err, usecase.ErrMatchNotFound):
		return util.ErrorResponse(c, util.ErrorResponseFormat{Code: fiber.StatusNotFound, Message: "Match not found"}, err)
	case errors.Is(err, usecase.ErrForbidden):
		return util.ErrorResponse(c, util.ErrorResponseFormat{Code: fiber.StatusForbidden, Message: "You cannot view this match"}, err)
	case errors.Is(err, usecase.ErrSelfMatch):
		return util.ErrorResponse(c, util.ErrorResponseFormat{Code: fiber.StatusBadRequest, Message: "You cannot match with yourself"}, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return util.ErrorResponse(c, util.ErrorResponseFormat{Code: fiber.StatusBadRequest, Message: strings.TrimPrefix(err.Error(), usecase.ErrInvalidInput.Error()+": ")}, err)
	default:
		logrus.WithField("path", c.Path()).Errorf("request failed: %v", err)
		return util.ErrorResponse(c, util.ErrorResponseFormat{Message: "Internal server error"}, err)
	}
}
