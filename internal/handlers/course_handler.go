package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sahanr03/devcamper/internal/httperr"
	"github.com/sahanr03/devcamper/internal/middleware"
	"github.com/sahanr03/devcamper/internal/models"
	"github.com/sahanr03/devcamper/internal/query"
	"github.com/sahanr03/devcamper/internal/services"
)

type CourseHandler struct {
	svc *services.CourseService
}

func NewCourseHandler(svc *services.CourseService) *CourseHandler {
	return &CourseHandler{svc: svc}
}

func (h *CourseHandler) List(c *fiber.Ctx) error {
	opts := query.Parse(c.Queries())
	courses, total, err := h.svc.List(c.Context(), opts)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"count":      len(courses),
		"pagination": opts.Paginate(total),
		"data":       courses,
	})
}

func (h *CourseHandler) ListByBootcamp(c *fiber.Ctx) error {
	courses, err := h.svc.ListByBootcamp(c.Context(), c.Params("bootcampId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "count": len(courses), "data": courses})
}

func (h *CourseHandler) Get(c *fiber.Ctx) error {
	course, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": course})
}

func (h *CourseHandler) Create(c *fiber.Ctx) error {
	var course models.Course
	if err := c.BodyParser(&course); err != nil {
		return httperr.BadRequest("invalid request body")
	}

	created, err := h.svc.Create(c.Context(), middleware.CurrentUser(c), c.Params("bootcampId"), course)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": created})
}

func (h *CourseHandler) Update(c *fiber.Ctx) error {
	updated, err := h.svc.Update(c.Context(), middleware.CurrentUser(c), c.Params("id"), c.Body())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": updated})
}

func (h *CourseHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), middleware.CurrentUser(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
}
