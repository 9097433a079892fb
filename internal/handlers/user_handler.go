package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sahanr03/devcamper/internal/httperr"
	"github.com/sahanr03/devcamper/internal/models"
	"github.com/sahanr03/devcamper/internal/query"
	"github.com/sahanr03/devcamper/internal/services"
)

// UserHandler is the admin-only user management surface.
type UserHandler struct {
	svc *services.UserService
}

func NewUserHandler(svc *services.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	opts := query.Parse(c.Queries())
	users, total, err := h.svc.List(c.Context(), opts)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"count":      len(users),
		"pagination": opts.Paginate(total),
		"data":       users,
	})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	user, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": user})
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}

	user, err := h.svc.Create(c.Context(), models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": user})
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}

	user, err := h.svc.Update(c.Context(), c.Params("id"), models.User{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": user})
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
}
