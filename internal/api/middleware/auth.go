package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/ports"
)

// Context keys set by the auth middleware.
const (
	SessionKey = "session"
	RoleKey    = "role"
)

// Auth requires a valid bearer token and injects the resolved session and
// the caller's role into the context.
func Auth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return err
			}
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			sess, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidToken) || errors.Is(err, domain.ErrUnauthenticated) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				return err
			}

			setSession(c, sess)
			return next(c)
		}
	}
}

// OptionalAuth resolves a bearer token when one is present and otherwise
// leaves the request anonymous. Invalid tokens are treated as anonymous.
func OptionalAuth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil || token == "" {
				return next(c)
			}
			if sess, err := auth.Authenticate(c.Request().Context(), token); err == nil {
				setSession(c, sess)
			}
			return next(c)
		}
	}
}

// SessionFrom returns the session injected by Auth or OptionalAuth, or an
// anonymous session.
func SessionFrom(c echo.Context) domain.Session {
	sess, _ := c.Get(SessionKey).(domain.Session)
	return sess
}

func setSession(c echo.Context, sess domain.Session) {
	c.Set(SessionKey, sess)
	if sess.UserInfo != nil {
		c.Set(RoleKey, string(sess.UserInfo.UserType))
	}
}

// bearerToken extracts the token from the Authorization header. An absent
// header yields an empty token and no error.
func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", nil
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return parts[1], nil
}
