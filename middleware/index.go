package middleware

import (
	"errors"
	"strings"

	"easyticket/config"
	"easyticket/model"
	"easyticket/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func parseToken(tokenString string) (*model.TokenClaim, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.Config("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	claim := &model.TokenClaim{}
	if v, ok := claims["userId"].(float64); ok {
		claim.UserID = uint(v)
	}
	if v, ok := claims["email"].(string); ok {
		claim.Email = v
	}
	if v, ok := claims["userType"].(string); ok {
		claim.UserType = v
	}
	if claim.UserID == 0 {
		return nil, errors.New("token carries no user id")
	}
	return claim, nil
}

func bearerToken(c *fiber.Ctx) string {
	token := c.Cookies("access_token")
	if token == "" {
		auth := c.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	return token
}

// Protected rejects requests without a valid JWT and stashes the claim.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "missing token", nil)
		}
		claim, err := parseToken(token)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "invalid token", err)
		}
		c.Locals("claim", claim)
		return c.Next()
	}
}

// OptionalJWT stashes the claim when a valid token is present and continues
// anonymously otherwise.
func OptionalJWT() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if claim, err := parseToken(token); err == nil {
				c.Locals("claim", claim)
			}
		}
		return c.Next()
	}
}
