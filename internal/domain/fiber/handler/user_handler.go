package handler

import (
	"github.com/fadilmartias/persona-match/internal/middleware"
	"github.com/fadilmartias/persona-match/internal/usecase"
	"github.com/fadilmartias/persona-match/internal/util"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	uc      *usecase.UserUsecase
	session fiber.Handler
}

func NewUserHandler(uc *usecase.UserUsecase, session fiber.Handler) *UserHandler {
	return &UserHandler{uc: uc, session: session}
}

func (h *UserHandler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api/users", h.session)
	api.Get("/", h.List)
	api.Get("/similar", h.Similar)
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, pagination, err := h.uc.ListUsers(c.UserContext(), middleware.CurrentUserID(c),
		c.QueryInt("page", 1), c.QueryInt("page_size", 20))
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get users",
		Data:       users,
		Pagination: pagination,
	})
}

func (h *UserHandler) Similar(c *fiber.Ctx) error {
	users, err := h.uc.Similar(c.UserContext(), middleware.CurrentUserID(c), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get similar users",
		Data:    users,
	})
}
