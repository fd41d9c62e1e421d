package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/ports"
	"github.com/haofuwu/service-market/internal/core/validate"
)

// UserDirectory owns the user table persisted under ports.KeyUsers.
// Every call reads the table from storage so that other readers of the key
// (the local uniqueness check) observe the same data.
type UserDirectory struct {
	kv   ports.KVStore
	log  zerolog.Logger
	cost int
	now  func() time.Time
	mu   sync.Mutex
}

// NewUserDirectory returns a directory over kv. A zero bcryptCost selects
// bcrypt.DefaultCost.
func NewUserDirectory(kv ports.KVStore, bcryptCost int, log zerolog.Logger) *UserDirectory {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserDirectory{kv: kv, log: log, cost: bcryptCost, now: time.Now}
}

// Seed writes the demo accounts when no user table exists yet.
func (d *UserDirectory) Seed(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var existing []*domain.User
	found, err := loadSnapshot(ctx, d.kv, ports.KeyUsers, &existing)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	users, err := demoUsers(d.cost)
	if err != nil {
		return err
	}
	if err := saveSnapshot(ctx, d.kv, ports.KeyUsers, users); err != nil {
		return err
	}
	d.log.Info().Int("count", len(users)).Msg("seeded demo users")
	return nil
}

// Register appends a regular user. Format and uniqueness rules are the
// caller's job; an exact duplicate username is still refused.
func (d *UserDirectory) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	users, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Username == username {
			return nil, domain.ErrUserExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), d.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	realName := in.RealName
	if realName == "" {
		realName = username
	}
	now := d.now().UTC()
	user := &domain.User{
		UserID:       strconv.Itoa(len(users) + 1),
		Username:     username,
		PasswordHash: string(hash),
		UserType:     domain.UserTypeRegular,
		RealName:     realName,
		Phone:        in.Phone,
		RegisterTime: now,
		UpdateTime:   now,
	}

	if err := saveSnapshot(ctx, d.kv, ports.KeyUsers, append(users, user)); err != nil {
		return nil, err
	}
	d.log.Info().Str("user_id", user.UserID).Str("username", username).Msg("user registered")
	return user.Profile(), nil
}

// Authenticate checks the credentials and returns the user's profile.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (d *UserDirectory) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := d.find(ctx, func(u *domain.User) bool { return u.Username == username })
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user.Profile(), nil
}

// FindByID returns the profile of userID.
func (d *UserDirectory) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	u, err := d.find(ctx, func(u *domain.User) bool { return u.UserID == userID })
	if err != nil {
		return nil, err
	}
	return u.Profile(), nil
}

// Exists reports whether username is already registered.
func (d *UserDirectory) Exists(ctx context.Context, username string) (bool, error) {
	_, err := d.find(ctx, func(u *domain.User) bool { return u.Username == username })
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Update applies patch to userID and returns the new profile.
func (d *UserDirectory) Update(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}
	if patch.Phone != nil && !validate.Phone(*patch.Phone) {
		return nil, fmt.Errorf("%w: phone must be an 11-digit number starting with 1", domain.ErrValidation)
	}
	if patch.RealName != nil && strings.TrimSpace(*patch.RealName) == "" {
		return nil, fmt.Errorf("%w: realName must not be blank", domain.ErrValidation)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	users, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, u := range users {
		if u.UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, domain.ErrUserNotFound
	}

	next := make([]*domain.User, len(users))
	copy(next, users)
	updated := *users[idx]
	if patch.RealName != nil {
		updated.RealName = *patch.RealName
	}
	if patch.Phone != nil {
		updated.Phone = *patch.Phone
	}
	if patch.Intro != nil {
		updated.Intro = *patch.Intro
	}
	updated.UpdateTime = d.now().UTC()
	next[idx] = &updated

	if err := saveSnapshot(ctx, d.kv, ports.KeyUsers, next); err != nil {
		return nil, err
	}
	d.log.Info().Str("user_id", userID).Msg("profile updated")
	return updated.Profile(), nil
}

func (d *UserDirectory) find(ctx context.Context, match func(*domain.User) bool) (*domain.User, error) {
	users, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if match(u) {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (d *UserDirectory) load(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	if _, err := loadSnapshot(ctx, d.kv, ports.KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}
