package handler

import (
	"time"

	"github.com/fadilmartias/persona-match/internal/dto"
	"github.com/fadilmartias/persona-match/internal/middleware"
	"github.com/fadilmartias/persona-match/internal/usecase"
	"github.com/fadilmartias/persona-match/internal/util"
	"github.com/gofiber/fiber/v2"
)

type MatchHandler struct {
	uc      *usecase.MatchUsecase
	session fiber.Handler
}

func NewMatchHandler(uc *usecase.MatchUsecase, session fiber.Handler) *MatchHandler {
	return &MatchHandler{uc: uc, session: session}
}

func (h *MatchHandler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api/match", h.session)
	api.Post("/start", middleware.StartMatchLimiter(10, 1*time.Minute), h.Start)
	api.Get("/", h.List)
	api.Get("/:id", h.Get)
}

func (h *MatchHandler) Start(c *fiber.Ctx) error {
	var req dto.StartMatchRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	res, err := h.uc.StartMatch(c.UserContext(), middleware.CurrentUserID(c), req.TargetUserID)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Match started",
		Data:    res,
	})
}

func (h *MatchHandler) Get(c *fiber.Ctx) error {
	view, err := h.uc.GetMatch(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get match",
		Data:    view,
	})
}

func (h *MatchHandler) List(c *fiber.Ctx) error {
	matches, err := h.uc.ListMatches(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get matches",
		Data:    matches,
	})
}
