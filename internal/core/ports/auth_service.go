package ports

import (
	"context"
	"time"

	"github.com/haofuwu/service-market/internal/core/domain"
)

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Username string
	Password string
	RealName string
	Phone    string
}

// TokenClaims is the decoded content of a session token.
type TokenClaims struct {
	UserID    string
	Username  string
	UserType  domain.UserType
	TokenID   string
	ExpiresAt time.Time
}

// AuthService is the stateless account API used by the HTTP surface.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	Authenticate(ctx context.Context, token string) (domain.Session, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error)
}

// UsernameChecker answers whether a username is still free.
// A false result is always returned together with any error (fail closed).
type UsernameChecker interface {
	IsUnique(ctx context.Context, username string) (bool, error)
}
