package handler

import (
	"time"

	"github.com/fadilmartias/persona-match/internal/dto"
	"github.com/fadilmartias/persona-match/internal/middleware"
	"github.com/fadilmartias/persona-match/internal/usecase"
	"github.com/fadilmartias/persona-match/internal/util"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	uc         *usecase.UserUsecase
	session    fiber.Handler
	sessionTTL time.Duration
	secure     bool
}

func NewAuthHandler(uc *usecase.UserUsecase, session fiber.Handler, sessionTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{uc: uc, session: session, sessionTTL: sessionTTL, secure: secure}
}

func (h *AuthHandler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api/auth")
	api.Post("/register", middleware.RateLimiter(10, 1*time.Minute), h.Register)
	api.Get("/me", h.session, h.Me)
	api.Post("/logout", h.Logout)
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterGuestRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	res, err := h.uc.RegisterGuest(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    res.Token,
		Path:     "/",
		Expires:  time.Now().Add(h.sessionTTL),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Guest registered",
		Data:    res,
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	me, err := h.uc.Me(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get current user",
		Data:    me,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.ClearCookie(middleware.SessionCookie)
	return util.SuccessResponse(c, util.SuccessResponseFormat{Message: "Logged out"})
}
