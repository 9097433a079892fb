package httperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// Error is the single error type handlers return. The fiber error
// handler turns it into the {success:false, error:...} envelope.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(status int, format string, args ...interface{}) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

func NotFound(resource, id string) *Error {
	return New(fiber.StatusNotFound, "%s not found with id of %s", resource, id)
}

func BadRequest(format string, args ...interface{}) *Error {
	return New(fiber.StatusBadRequest, format, args...)
}

func Unauthorized(message string) *Error {
	return New(fiber.StatusUnauthorized, message)
}

func Forbidden(format string, args ...interface{}) *Error {
	return New(fiber.StatusForbidden, format, args...)
}

// FromMongo classifies driver failures: no-document lookups become 404,
// unique index violations become 400 duplicates, the rest stay internal.
func FromMongo(err error, resource, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return NotFound(resource, id)
	}
	if mongo.IsDuplicateKeyError(err) {
		return BadRequest("duplicate field value entered")
	}
	return err
}

// FromValidation flattens validator.v10 field errors into one message,
// mirroring how mongoose concatenates schema failures.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("please add a %s", strings.ToLower(fe.Field())))
		case "email":
			msgs = append(msgs, "please add a valid email")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", strings.ToLower(fe.Field()), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s can not be more than %s characters", strings.ToLower(fe.Field()), fe.Param()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", strings.ToLower(fe.Field()), fe.Param()))
		case "gte", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be between bounds (%s %s)", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return BadRequest("%s", strings.Join(msgs, ", "))
}

// Handler builds the fiber error handler used as the one place that
// formats error responses. In production unclassified errors collapse
// to a generic message.
func Handler(log *logrus.Logger, production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var apiErr *Error
		if errors.As(err, &apiErr) {
			return c.Status(apiErr.Status).JSON(fiber.Map{
				"success": false,
				"error":   apiErr.Message,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"success": false,
				"error":   fiberErr.Message,
			})
		}

		log.WithError(err).Error("unhandled error")
		msg := "server error"
		if !production {
			msg = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   msg,
		})
	}
}
