package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/nexus-console/internal/auth"
	"github.com/spec-kit/nexus-console/internal/domain"
	"github.com/spec-kit/nexus-console/internal/events"
	"github.com/spec-kit/nexus-console/internal/repository"
	apperrors "github.com/spec-kit/nexus-console/pkg/util"
)

// AuthService coordinates staff login and logout.
type AuthService struct {
	staff      repository.StaffRepository
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	StaffRepo  repository.StaffRepository
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		staff:      deps.StaffRepo,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Login authenticates staff and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Identity, string, time.Time, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("email and password are required", nil)
	}

	staff, err := s.staff.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(staff.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokens.GenerateToken(staff.ID, staff.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	identity := staff.Identity
	if err := s.staff.UpdatePresence(ctx, staff.ID, domain.PresenceOnline); err != nil {
		s.logger.Warn("presence update failed", zap.String("staff_id", staff.ID), zap.Error(err))
	} else {
		identity.Status = domain.PresenceOnline
	}
	publish(ctx, s.dispatcher, events.New(events.EventSessionChanged, staff.ID, staff.ID, events.SessionPayload{Identity: &identity}))
	return &identity, token, exp, nil
}

// Logout marks the caller offline. Tokens are stateless, so the session ends
// when the client drops its cookie.
func (s *AuthService) Logout(ctx context.Context, actor domain.Identity) error {
	if err := s.staff.UpdatePresence(ctx, actor.ID, domain.PresenceOffline); err != nil && !apperrors.IsNotFound(err) {
		return apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, events.New(events.EventSessionChanged, actor.ID, actor.ID, events.SessionPayload{}))
	return nil
}

func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	_ = dispatcher.Publish(ctx, event)
}
