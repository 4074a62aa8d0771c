// Package handlers serves the console API. Responses are the bare JSON
// records the console decodes; errors use the DomainError envelope.
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nexus-console/internal/auth"
	"github.com/spec-kit/nexus-console/internal/domain"
	apperrors "github.com/spec-kit/nexus-console/pkg/util"
)

func actor(c *fiber.Ctx) (domain.Identity, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return domain.Identity{}, apperrors.NewUnauthorized("authentication required")
	}
	return principal.Staff, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}
