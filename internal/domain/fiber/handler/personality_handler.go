package handler

import (
	"github.com/fadilmartias/persona-match/internal/dto"
	"github.com/fadilmartias/persona-match/internal/middleware"
	"github.com/fadilmartias/persona-match/internal/usecase"
	"github.com/fadilmartias/persona-match/internal/util"
	"github.com/gofiber/fiber/v2"
)

type PersonalityHandler struct {
	uc      *usecase.PersonalityUsecase
	session fiber.Handler
}

func NewPersonalityHandler(uc *usecase.PersonalityUsecase, session fiber.Handler) *PersonalityHandler {
	return &PersonalityHandler{uc: uc, session: session}
}

func (h *PersonalityHandler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api/personality", h.session)
	api.Post("/generate", h.Generate)
	api.Post("/quiz", h.Quiz)
}

func (h *PersonalityHandler) Generate(c *fiber.Ctx) error {
	res, err := h.uc.Generate(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success generate personality",
		Data:    res,
	})
}

func (h *PersonalityHandler) Quiz(c *fiber.Ctx) error {
	var req dto.QuizRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	res, err := h.uc.SubmitQuiz(c.UserContext(), middleware.CurrentUserID(c), req.Answers)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success submit quiz",
		Data:    res,
	})
}
