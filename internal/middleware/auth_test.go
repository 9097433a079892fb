package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sahanr03/devcamper/internal/httperr"
	"github.com/sahanr03/devcamper/internal/models"
)

const testSecret = "unit-test-secret"

type stubLoader struct {
	user models.User
	err  error
}

func (s stubLoader) UserByID(_ context.Context, id string) (models.User, error) {
	if s.err != nil {
		return models.User{}, s.err
	}
	return s.user, nil
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func newProtectedApp(loader UserLoader, extra ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: httperr.Handler(logrus.New(), false)})
	auth := NewAuth(loader, testSecret)
	chain := append([]fiber.Handler{auth.Protect}, extra...)
	chain = append(chain, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user": CurrentUser(c).Email})
	})
	app.Get("/secure", chain...)
	return app
}

func validClaims(userID string) jwt.MapClaims {
	return jwt.MapClaims{
		"user_id": userID,
		"role":    models.RolePublisher,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
}

func TestProtect(t *testing.T) {
	user := models.User{ID: primitive.NewObjectID(), Email: "pub@example.com", Role: models.RolePublisher}

	t.Run("missing token", func(t *testing.T) {
		app := newProtectedApp(stubLoader{user: user})
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/secure", nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("valid bearer token", func(t *testing.T) {
		app := newProtectedApp(stubLoader{user: user})
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims(user.ID.Hex())))
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("token from cookie", func(t *testing.T) {
		app := newProtectedApp(stubLoader{user: user})
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: signToken(t, testSecret, validClaims(user.ID.Hex()))})
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("wrong signing key", func(t *testing.T) {
		app := newProtectedApp(stubLoader{user: user})
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", validClaims(user.ID.Hex())))
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		app := newProtectedApp(stubLoader{user: user})
		claims := validClaims(user.ID.Hex())
		claims["exp"] = time.Now().Add(-time.Minute).Unix()
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, claims))
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("user no longer exists", func(t *testing.T) {
		app := newProtectedApp(stubLoader{err: errors.New("gone")})
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims(user.ID.Hex())))
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})
}

func TestAuthorize(t *testing.T) {
	publisher := models.User{ID: primitive.NewObjectID(), Email: "pub@example.com", Role: models.RolePublisher}

	t.Run("allowed role passes", func(t *testing.T) {
		app := newProtectedApp(stubLoader{user: publisher}, Authorize(models.RolePublisher, models.RoleAdmin))
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims(publisher.ID.Hex())))
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("role outside set is forbidden", func(t *testing.T) {
		app := newProtectedApp(stubLoader{user: publisher}, Authorize(models.RoleAdmin))
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims(publisher.ID.Hex())))
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("status = %d, want 403", resp.StatusCode)
		}
	})
}
