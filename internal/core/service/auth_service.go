package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/ports"
)

// AuthService implements the stateless account API on top of the directory
// and token issuer. Each request carries its own token.
type AuthService struct {
	users  *UserDirectory
	tokens *TokenIssuer
	log    zerolog.Logger
}

func NewAuthService(users *UserDirectory, tokens *TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, log: log}
}

var _ ports.AuthService = (*AuthService)(nil)

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.users.Register(ctx, in)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return "", nil, err
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	s.log.Info().Str("user_id", user.UserID).Msg("login")
	return token, user, nil
}

// Authenticate resolves token into a session carrying the user's current
// profile. A token whose subject no longer exists is invalid.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, domain.ErrUnauthenticated
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return domain.Session{}, err
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.Session{}, fmt.Errorf("%w: unknown subject", domain.ErrInvalidToken)
	}
	if err != nil {
		return domain.Session{}, err
	}
	return domain.NewSession(token, user), nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
	return s.users.Update(ctx, userID, patch)
}
