package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nexus-console/internal/api/dto"
	"github.com/spec-kit/nexus-console/internal/auth"
	"github.com/spec-kit/nexus-console/internal/service"
)

// AuthHandler manages the session endpoints.
type AuthHandler struct {
	service      *service.AuthService
	middleware   *auth.AuthMiddleware
	cookieName   string
	cookieSecure bool
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, middleware *auth.AuthMiddleware, cookieName string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{service: authService, middleware: middleware, cookieName: cookieName, cookieSecure: cookieSecure}
}

// Login POST /auth/login. The identity is the body; the token rides in an
// HttpOnly cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	identity, token, expires, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	c.Cookie(auth.SessionCookie(h.cookieName, token, expires, h.cookieSecure))
	return c.JSON(identity)
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, err := h.middleware.Resolve(c)
	if err != nil {
		return err
	}
	return c.JSON(principal.Staff)
}

// Logout POST /auth/logout. It always expires the cookie, even without a
// valid session; a valid token is also revoked.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(auth.ExpiredCookie(h.cookieName, h.cookieSecure))
	if principal, err := h.middleware.Resolve(c); err == nil {
		if err := h.middleware.Revoke(c, principal); err != nil {
			return err
		}
		if err := h.service.Logout(c.UserContext(), principal.Staff); err != nil {
			return err
		}
	}
	return c.JSON(dto.StatusResponse{Status: "logged_out"})
}
