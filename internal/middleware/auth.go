// Package middleware provides authentication, logging, tracing and rate limiting for the HTTP layer.
package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"inkwell/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// Locals keys set by the auth middleware.
const (
	LocalUserID    = "userID"
	LocalUserLogin = "userLogin"
)

var (
	errMissingHeader = errors.New("authorization header required")
	errHeaderFormat  = errors.New("invalid authorization header format")
	errInvalidToken  = errors.New("invalid or expired token")
	errSubject       = errors.New("invalid token subject")
)

// AccessClaims is the identity carried by an access token.
type AccessClaims struct {
	UserID uint
	Login  string
}

// ParseAccessToken validates an HS256 token and extracts its identity.
func ParseAccessToken(tokenString string) (AccessClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return AccessClaims{}, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return AccessClaims{}, errInvalidToken
	}

	// Subject claim per RFC 7519 carries the user id as a string.
	subStr, ok := claims["sub"].(string)
	if !ok {
		return AccessClaims{}, errSubject
	}
	userIDVal, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil || userIDVal == 0 {
		return AccessClaims{}, errSubject
	}

	login, _ := claims["login"].(string)
	return AccessClaims{UserID: uint(userIDVal), Login: login}, nil
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", errMissingHeader
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errHeaderFormat
	}
	return parts[1], nil
}

func setIdentity(c *fiber.Ctx, claims AccessClaims) {
	c.Locals(LocalUserID, claims.UserID)
	c.Locals(LocalUserLogin, claims.Login)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, claims.UserID))
}

// AuthRequired is a middleware that enforces bearer authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	tokenString, err := bearerToken(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	claims, err := ParseAccessToken(tokenString)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	setIdentity(c, claims)
	return c.Next()
}

// OptionalAuth resolves the viewer when a valid bearer token is present.
// Missing or invalid tokens leave the request anonymous.
func OptionalAuth(c *fiber.Ctx) error {
	tokenString, err := bearerToken(c)
	if err != nil {
		return c.Next()
	}
	if claims, err := ParseAccessToken(tokenString); err == nil {
		setIdentity(c, claims)
	}
	return c.Next()
}

// SuperAdmin guards /sa routes with HTTP basic auth against ADMIN_LOGIN/ADMIN_PASSWORD.
func SuperAdmin() fiber.Handler {
	return basicauth.New(basicauth.Config{
		Users: map[string]string{cfg.AdminLogin: cfg.AdminPassword},
		Realm: "inkwell-sa",
		Unauthorized: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="inkwell-sa"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "super-admin credentials required",
			})
		},
	})
}

// UserID returns the authenticated user id, or 0 for anonymous requests.
func UserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals(LocalUserID).(uint); ok {
		return uid
	}
	return 0
}

// UserLogin returns the login from the access token, or "" for anonymous requests.
func UserLogin(c *fiber.Ctx) string {
	login, _ := c.Locals(LocalUserLogin).(string)
	return login
}
