package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sahanr03/devcamper/internal/httperr"
	"github.com/sahanr03/devcamper/internal/middleware"
	"github.com/sahanr03/devcamper/internal/models"
	"github.com/sahanr03/devcamper/internal/query"
	"github.com/sahanr03/devcamper/internal/services"
)

type ReviewHandler struct {
	svc *services.ReviewService
}

func NewReviewHandler(svc *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

func (h *ReviewHandler) List(c *fiber.Ctx) error {
	opts := query.Parse(c.Queries())
	reviews, total, err := h.svc.List(c.Context(), opts)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"count":      len(reviews),
		"pagination": opts.Paginate(total),
		"data":       reviews,
	})
}

func (h *ReviewHandler) ListByBootcamp(c *fiber.Ctx) error {
	reviews, err := h.svc.ListByBootcamp(c.Context(), c.Params("bootcampId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "count": len(reviews), "data": reviews})
}

func (h *ReviewHandler) Get(c *fiber.Ctx) error {
	review, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": review})
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	var review models.Review
	if err := c.BodyParser(&review); err != nil {
		return httperr.BadRequest("invalid request body")
	}

	created, err := h.svc.Create(c.Context(), middleware.CurrentUser(c), c.Params("bootcampId"), review)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": created})
}

func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	updated, err := h.svc.Update(c.Context(), middleware.CurrentUser(c), c.Params("id"), c.Body())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": updated})
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), middleware.CurrentUser(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
}
