package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/ports"
)

// CheckUsernamePath is the remote uniqueness endpoint.
const CheckUsernamePath = "/api/check-username"

// CodeOK is the envelope code that signals a successful check.
const CodeOK = 200

const defaultRemoteTimeout = 5 * time.Second

// UsernameCheckData is the payload of a successful uniqueness check.
type UsernameCheckData struct {
	IsUnique bool `json:"isUnique"`
}

// UsernameCheckResponse is the envelope returned by CheckUsernamePath.
type UsernameCheckResponse struct {
	Code int                `json:"code"`
	Data *UsernameCheckData `json:"data"`
	Msg  string             `json:"msg,omitempty"`
}

// LocalChecker scans the persisted user list for a collision.
type LocalChecker struct {
	kv ports.KVStore
}

// NewLocalChecker returns a checker over the user table stored in kv.
func NewLocalChecker(kv ports.KVStore) *LocalChecker {
	return &LocalChecker{kv: kv}
}

// IsUnique satisfies ports.UsernameChecker.
func (c *LocalChecker) IsUnique(ctx context.Context, username string) (bool, error) {
	if strings.TrimSpace(username) == "" {
		return false, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	raw, ok, err := c.kv.Get(ctx, ports.KeyUsers)
	if err != nil {
		return false, fmt.Errorf("%w: read users: %v", domain.ErrStorage, err)
	}
	if !ok {
		return true, nil
	}
	var users []domain.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return false, fmt.Errorf("%w: decode users: %v", domain.ErrStorage, err)
	}
	for _, u := range users {
		if u.Username == username {
			return false, nil
		}
	}
	return true, nil
}

// RemoteChecker asks the marketplace API whether a username is free.
type RemoteChecker struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewRemoteChecker builds a checker against baseURL (scheme://host[:port]).
// A non-positive timeout falls back to five seconds.
func NewRemoteChecker(baseURL string, timeout time.Duration, log zerolog.Logger) *RemoteChecker {
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	return &RemoteChecker{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

// IsUnique satisfies ports.UsernameChecker. Transport and decode failures are
// logged and reported as domain.ErrUniquenessUnavailable with a false result.
func (c *RemoteChecker) IsUnique(ctx context.Context, username string) (bool, error) {
	if strings.TrimSpace(username) == "" {
		return false, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}

	endpoint := c.baseURL + CheckUsernamePath + "?" + url.Values{"username": {username}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrUniquenessUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("username", username).Msg("username check request failed")
		return false, fmt.Errorf("%w: %v", domain.ErrUniquenessUnavailable, err)
	}
	defer resp.Body.Close()

	var env UsernameCheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.log.Warn().Err(err).Int("status", resp.StatusCode).Msg("username check response undecodable")
		return false, fmt.Errorf("%w: decode response: %v", domain.ErrUniquenessUnavailable, err)
	}

	if env.Code != CodeOK {
		msg := env.Msg
		if msg == "" {
			msg = "username already taken"
		}
		return false, fmt.Errorf("%w: %s", domain.ErrUsernameTaken, msg)
	}
	if env.Data == nil {
		return false, fmt.Errorf("%w: response carried no data", domain.ErrUniquenessUnavailable)
	}
	return env.Data.IsUnique, nil
}

// Checker dispatches between the local and remote modes.
type Checker struct {
	mock   bool
	local  ports.UsernameChecker
	remote ports.UsernameChecker
}

// NewChecker returns a checker that uses local when mock is true and remote
// otherwise.
func NewChecker(mock bool, local, remote ports.UsernameChecker) *Checker {
	return &Checker{mock: mock, local: local, remote: remote}
}

// Mode names the active mode for logs and metrics.
func (c *Checker) Mode() string {
	if c.mock || c.remote == nil {
		return "local"
	}
	return "remote"
}

// IsUnique satisfies ports.UsernameChecker.
func (c *Checker) IsUnique(ctx context.Context, username string) (bool, error) {
	if c.mock || c.remote == nil {
		return c.local.IsUnique(ctx, username)
	}
	return c.remote.IsUnique(ctx, username)
}
