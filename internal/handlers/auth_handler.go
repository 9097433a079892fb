package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sahanr03/devcamper/internal/httperr"
	"github.com/sahanr03/devcamper/internal/middleware"
	"github.com/sahanr03/devcamper/internal/services"
)

type AuthHandler struct {
	svc          *services.AuthService
	cookieExpire time.Duration
	secureCookie bool
}

func NewAuthHandler(svc *services.AuthService, cookieExpire time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{svc: svc, cookieExpire: cookieExpire, secureCookie: secureCookie}
}

// sendToken writes the token both as a cookie and in the body.
func (h *AuthHandler) sendToken(c *fiber.Ctx, status int, token string) error {
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(h.cookieExpire),
		HTTPOnly: true,
		Secure:   h.secureCookie,
	})
	return c.Status(status).JSON(fiber.Map{"success": true, "token": token})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}

	_, token, err := h.svc.Register(c.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}
	return h.sendToken(c, fiber.StatusCreated, token)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}

	_, token, err := h.svc.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.sendToken(c, fiber.StatusOK, token)
}

// Logout clears the token cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    "none",
		Expires:  time.Now().Add(10 * time.Second),
		HTTPOnly: true,
	})
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.JSON(fiber.Map{"success": true, "data": user})
}

func (h *AuthHandler) UpdateDetails(c *fiber.Ctx) error {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}

	user, err := h.svc.UpdateDetails(c.Context(), middleware.CurrentUser(c).ID, req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": user})
}

func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}

	_, token, err := h.svc.UpdatePassword(c.Context(), middleware.CurrentUser(c).ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return h.sendToken(c, fiber.StatusOK, token)
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}

	resetBase := fmt.Sprintf("%s://%s/api/v1/auth/resetpassword", c.Protocol(), c.Hostname())
	if err := h.svc.ForgotPassword(c.Context(), req.Email, resetBase); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": "email sent"})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}

	_, token, err := h.svc.ResetPassword(c.Context(), c.Params("resettoken"), req.Password)
	if err != nil {
		return err
	}
	return h.sendToken(c, fiber.StatusOK, token)
}
