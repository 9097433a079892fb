package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/sahanr03/devcamper/internal/httperr"
	"github.com/sahanr03/devcamper/internal/middleware"
	"github.com/sahanr03/devcamper/internal/models"
	"github.com/sahanr03/devcamper/internal/query"
	"github.com/sahanr03/devcamper/internal/services"
)

type BootcampHandler struct {
	svc *services.BootcampService
}

func NewBootcampHandler(svc *services.BootcampService) *BootcampHandler {
	return &BootcampHandler{svc: svc}
}

func (h *BootcampHandler) List(c *fiber.Ctx) error {
	opts := query.Parse(c.Queries())
	bootcamps, total, err := h.svc.List(c.Context(), opts)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"count":      len(bootcamps),
		"pagination": opts.Paginate(total),
		"data":       bootcamps,
	})
}

func (h *BootcampHandler) Get(c *fiber.Ctx) error {
	bootcamp, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": bootcamp})
}

func (h *BootcampHandler) Create(c *fiber.Ctx) error {
	var bootcamp models.Bootcamp
	if err := c.BodyParser(&bootcamp); err != nil {
		return httperr.BadRequest("invalid request body")
	}

	created, err := h.svc.Create(c.Context(), middleware.CurrentUser(c), bootcamp)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": created})
}

func (h *BootcampHandler) Update(c *fiber.Ctx) error {
	updated, err := h.svc.Update(c.Context(), middleware.CurrentUser(c), c.Params("id"), c.Body())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": updated})
}

func (h *BootcampHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), middleware.CurrentUser(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
}

func (h *BootcampHandler) InRadius(c *fiber.Ctx) error {
	distance, err := strconv.ParseFloat(c.Params("distance"), 64)
	if err != nil || distance <= 0 {
		return httperr.BadRequest("distance must be a positive number of miles")
	}

	bootcamps, err := h.svc.InRadius(c.Context(), c.Params("zipcode"), distance)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(bootcamps),
		"data":    bootcamps,
	})
}

func (h *BootcampHandler) UploadPhoto(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return httperr.BadRequest("please upload a file")
	}

	name, err := h.svc.UploadPhoto(c.Context(), middleware.CurrentUser(c), c.Params("id"), file)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": name})
}
