package httperr

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestFromMongo(t *testing.T) {
	t.Run("no documents maps to 404", func(t *testing.T) {
		err := FromMongo(mongo.ErrNoDocuments, "bootcamp", "abc123")
		var apiErr *Error
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
			t.Fatalf("got %v, want 404 error", err)
		}
		if !strings.Contains(apiErr.Message, "abc123") {
			t.Errorf("message %q should name the id", apiErr.Message)
		}
	})

	t.Run("duplicate key maps to 400", func(t *testing.T) {
		dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
		err := FromMongo(dup, "review", "abc")
		var apiErr *Error
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
			t.Fatalf("got %v, want 400 error", err)
		}
	})

	t.Run("other errors pass through", func(t *testing.T) {
		underlying := errors.New("socket closed")
		if err := FromMongo(underlying, "x", "y"); !errors.Is(err, underlying) {
			t.Errorf("got %v, want passthrough", err)
		}
	})

	t.Run("nil stays nil", func(t *testing.T) {
		if err := FromMongo(nil, "x", "y"); err != nil {
			t.Errorf("got %v, want nil", err)
		}
	})
}

func TestFromValidation(t *testing.T) {
	type form struct {
		Name  string `validate:"required"`
		Email string `validate:"required,email"`
		Skill string `validate:"oneof=beginner intermediate advanced"`
	}
	v := validator.New()
	err := v.Struct(form{Email: "nope", Skill: "wizard"})
	if err == nil {
		t.Fatal("expected validation errors")
	}

	out := FromValidation(err)
	var apiErr *Error
	if !errors.As(out, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("got %v, want 400 error", out)
	}
	for _, want := range []string{"please add a name", "valid email", "skill must be one of"} {
		if !strings.Contains(apiErr.Message, want) {
			t.Errorf("message %q missing %q", apiErr.Message, want)
		}
	}
}

func TestHandler(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	newApp := func(production bool, route fiber.Handler) *fiber.App {
		app := fiber.New(fiber.Config{ErrorHandler: Handler(log, production)})
		app.Get("/x", route)
		return app
	}

	type envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}

	do := func(t *testing.T, app *fiber.App) (int, envelope) {
		t.Helper()
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatal(err)
		}
		return resp.StatusCode, env
	}

	t.Run("typed error keeps status and message", func(t *testing.T) {
		app := newApp(false, func(c *fiber.Ctx) error {
			return NotFound("bootcamp", "42")
		})
		status, env := do(t, app)
		if status != http.StatusNotFound || env.Success || env.Error == "" {
			t.Errorf("status=%d env=%+v", status, env)
		}
	})

	t.Run("unknown error hidden in production", func(t *testing.T) {
		app := newApp(true, func(c *fiber.Ctx) error {
			return errors.New("db password leaked")
		})
		status, env := do(t, app)
		if status != http.StatusInternalServerError {
			t.Fatalf("status = %d", status)
		}
		if env.Error != "server error" {
			t.Errorf("error = %q, want generic message", env.Error)
		}
	})

	t.Run("unknown error surfaced in development", func(t *testing.T) {
		app := newApp(false, func(c *fiber.Ctx) error {
			return errors.New("explain me")
		})
		_, env := do(t, app)
		if env.Error != "explain me" {
			t.Errorf("error = %q, want underlying message", env.Error)
		}
	})
}
