package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nexus-console/internal/authz"
	apperrors "github.com/spec-kit/nexus-console/pkg/util"
)

// RequireCapability ensures the principal's role may perform every listed
// capability.
func RequireCapability(capabilities ...authz.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		for _, capability := range capabilities {
			if !authz.CanPerform(capability, principal.Role()) {
				return apperrors.NewForbidden("insufficient role")
			}
		}
		return c.Next()
	}
}

// RequireAnyRole ensures the caller is authenticated.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
