package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sahanr03/devcamper/internal/httperr"
	"github.com/sahanr03/devcamper/internal/models"
)

const userKey = "user"

// UserLoader resolves a token subject to a live account.
type UserLoader interface {
	UserByID(ctx context.Context, id string) (models.User, error)
}

type Auth struct {
	loader UserLoader
	secret []byte
}

func NewAuth(loader UserLoader, secret string) *Auth {
	return &Auth{loader: loader, secret: []byte(secret)}
}

// Protect validates the bearer token from the Authorization header or
// the token cookie, loads the user and stores it on the request.
func (a *Auth) Protect(c *fiber.Ctx) error {
	tokenString := ""
	if header := c.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		tokenString = strings.TrimPrefix(header, "Bearer ")
	} else if cookie := c.Cookies("token"); cookie != "" {
		tokenString = cookie
	}
	if tokenString == "" {
		return httperr.Unauthorized("not authorized to access this route")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return httperr.Unauthorized("not authorized to access this route")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return httperr.Unauthorized("not authorized to access this route")
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return httperr.Unauthorized("not authorized to access this route")
	}

	user, err := a.loader.UserByID(c.Context(), userID)
	if err != nil {
		return httperr.Unauthorized("not authorized to access this route")
	}

	c.Locals(userKey, user)
	return c.Next()
}

// Authorize restricts a route to the given roles. Must run after
// Protect.
func Authorize(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals(userKey).(models.User)
		if !ok {
			return httperr.Unauthorized("not authorized to access this route")
		}
		if !allowed[user.Role] {
			return httperr.Forbidden("user role %s is not authorized to access this route", user.Role)
		}
		return c.Next()
	}
}

// CurrentUser returns the user Protect attached to the request.
func CurrentUser(c *fiber.Ctx) models.User {
	user, _ := c.Locals(userKey).(models.User)
	return user
}
