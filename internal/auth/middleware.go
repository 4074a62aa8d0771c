package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nexus-console/internal/domain"
	"github.com/spec-kit/nexus-console/internal/repository"
	apperrors "github.com/spec-kit/nexus-console/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Staff     domain.Identity
	TokenID   string
	ExpiresAt time.Time
}

// Role is the caller's current role.
func (p *Principal) Role() domain.Role {
	return p.Staff.Role
}

// AuthMiddleware validates session tokens and loads principals. The token is
// read from the session cookie, or from a bearer header for scripted callers.
type AuthMiddleware struct {
	tokens      *TokenManager
	staff       repository.StaffRepository
	revocations RevocationList
	cookieName  string
}

// NewAuthMiddleware constructs middleware. revocations may be nil, in which
// case logout only clears the client's cookie.
func NewAuthMiddleware(tokens *TokenManager, staff repository.StaffRepository, revocations RevocationList, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, staff: staff, revocations: revocations, cookieName: cookieName}
}

// Revoke ends the principal's session before its token expires.
func (m *AuthMiddleware) Revoke(c *fiber.Ctx, principal *Principal) error {
	if m.revocations == nil || principal.TokenID == "" {
		return nil
	}
	return m.revocations.Revoke(c.UserContext(), principal.TokenID, principal.ExpiresAt)
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, err := m.Resolve(c)
	if err != nil {
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// Resolve loads the principal behind the request's session token. The role
// comes from the stored account, so a role change applies to live sessions.
func (m *AuthMiddleware) Resolve(c *fiber.Ctx) (*Principal, error) {
	token, err := m.token(c)
	if err != nil {
		return nil, err
	}

	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	if m.revocations != nil && claims.ID != "" {
		revoked, err := m.revocations.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		if revoked {
			return nil, apperrors.NewUnauthorized("session ended")
		}
	}

	staff, err := m.staff.GetByID(c.UserContext(), claims.Subject)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("staff not found")
		}
		return nil, apperrors.MapError(err)
	}
	principal := &Principal{Staff: staff.Identity, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}
	return principal, nil
}

func (m *AuthMiddleware) token(c *fiber.Ctx) (string, error) {
	if cookie := c.Cookies(m.cookieName); cookie != "" {
		return cookie, nil
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", apperrors.NewUnauthorized("missing session")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperrors.NewUnauthorized("invalid authorization header")
	}
	return parts[1], nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
