package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/planbookai/platform/pkg/events"
	"github.com/planbookai/platform/pkg/hash"
	"github.com/planbookai/platform/pkg/logging"
	"github.com/planbookai/platform/pkg/tokens"
	"github.com/planbookai/platform/services/auth/internal/models"
	"github.com/planbookai/platform/services/auth/internal/transport"
)

const eventTimeout = 2 * time.Second

type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*models.User, error)
	Save(ctx context.Context, u *models.User) error
}

type Revoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error)
}

type AuthService struct {
	Users       UserStore
	Hasher      *hash.Hasher
	Issuer      *tokens.Issuer
	Validator   *tokens.Validator
	Revocations Revoker
	Events      events.Publisher
}

func identityOf(u *models.User) tokens.Identity {
	return tokens.Identity{Subject: u.Username, UserID: u.ID.String(), Role: string(u.Role)}
}

func (s *AuthService) issue(u *models.User) (*transport.AuthResult, error) {
	pair, err := s.Issuer.IssuePair(identityOf(u))
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &transport.AuthResult{
		AccessToken:      pair.Access.Value,
		RefreshToken:     pair.Refresh.Value,
		TokenType:        "Bearer",
		AccessExpiresAt:  pair.Access.ExpiresAt,
		RefreshExpiresAt: pair.Refresh.ExpiresAt,
		User:             transport.ProfileOf(u),
	}, nil
}

// publish never fails the caller; the broker is not part of the auth path.
func (s *AuthService) publish(ctx context.Context, typ string, id tokens.Identity) {
	if s.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventTimeout)
	defer cancel()

	ev := events.UserEvent{
		Type:       typ,
		UserID:     id.UserID,
		Username:   id.Subject,
		Role:       id.Role,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.Events.Publish(ctx, ev.UserID, ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", typ, "error", err)
	}
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*transport.AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	c, err := normalizeRegistration(req)
	if err != nil {
		return nil, err
	}

	pwHash, err := s.Hasher.HashPassword(c.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     c.Username,
		Email:        c.Email,
		PasswordHash: pwHash,
		Role:         c.Role,
		DisplayName:  c.DisplayName,
	}
	if err := s.Users.Save(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateIdentity) {
			l.Warn("register_error", "status", 409, "reason", "identity taken")
			return nil, err
		}
		l.Error("register_error", "status", 500, "error", err)
		return nil, err
	}

	res, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	l.Info("register_successful", "user_id", user.ID.String(), "role", string(user.Role))
	s.publish(ctx, events.TypeUserRegistered, identityOf(user))
	return res, nil
}

// Authenticate does not reveal whether the identifier exists: unknown users
// and wrong passwords produce the same error after the same amount of work.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (*transport.AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if identifier == "" || password == "" {
		s.Hasher.DummyCheck(password)
		return nil, ErrInvalidCredentials
	}

	user, err := s.Users.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			l.Error("login_error", "status", 500, "error", err)
			return nil, err
		}
		s.Hasher.DummyCheck(password)
		l.Warn("login_failed", "status", 401)
		return nil, ErrInvalidCredentials
	}
	if !s.Hasher.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401)
		return nil, ErrInvalidCredentials
	}

	res, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	l.Info("login_successful", "user_id", user.ID.String())
	s.publish(ctx, events.TypeUserLoggedIn, identityOf(user))
	return res, nil
}

// Refresh mints a new access token. The refresh token is returned unchanged.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*transport.AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	value := stripBearer(refreshToken)
	if value == "" {
		return nil, ErrInvalidToken
	}

	claims, err := s.Validator.ValidateKind(ctx, value, tokens.KindRefresh)
	if err != nil {
		if tokens.IsTokenError(err) {
			l.Warn("refresh_failed", "status", 401, "reason", err.Error())
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
		l.Error("refresh_error", "status", 500, "error", err)
		return nil, err
	}

	user, err := s.Users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			l.Warn("refresh_failed", "status", 404, "reason", "user not found")
		}
		return nil, err
	}
	if user.ID.String() != claims.UserID {
		l.Warn("refresh_failed", "status", 401, "reason", "user id mismatch")
		return nil, ErrInvalidToken
	}

	access, err := s.Issuer.IssueAccessToken(identityOf(user))
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &transport.AuthResult{
		AccessToken:      access.Value,
		RefreshToken:     value,
		TokenType:        "Bearer",
		AccessExpiresAt:  access.ExpiresAt,
		RefreshExpiresAt: claims.ExpiresAtTime(),
		User:             transport.ProfileOf(user),
	}, nil
}

func (s *AuthService) Me(ctx context.Context, identifier string) (*transport.Profile, error) {
	user, err := s.Users.FindByEmail(ctx, identifier)
	if errors.Is(err, ErrUserNotFound) {
		user, err = s.Users.FindByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}
	p := transport.ProfileOf(user)
	return &p, nil
}

// Logout revokes the presented token until its own expiry. Tokens that could
// not be admitted anyway are accepted silently.
func (s *AuthService) Logout(ctx context.Context, tokenValue string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	value := stripBearer(tokenValue)
	if value == "" {
		return nil
	}

	claims, err := s.Validator.Codec.Decode(value)
	if err != nil {
		l.Info("logout_noop", "reason", err.Error())
		return nil
	}

	created, err := s.Revocations.Revoke(ctx, claims.ID, claims.ExpiresAtTime())
	if err != nil {
		l.Error("logout_failed", "status", 500, "reason", "cannot revoke token", "error", err)
		return fmt.Errorf("revoke token: %w", err)
	}
	if !created {
		l.Info("logout_repeated", "user_id", claims.UserID, "kind", string(claims.Kind))
		return nil
	}

	l.Info("logout_successful", "user_id", claims.UserID, "kind", string(claims.Kind))
	s.publish(ctx, events.TypeUserLoggedOut, claims.Identity())
	return nil
}
