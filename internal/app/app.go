// Package app wires the storage backend and the core services shared by the
// HTTP server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/haofuwu/service-market/internal/core/guard"
	"github.com/haofuwu/service-market/internal/core/ports"
	"github.com/haofuwu/service-market/internal/core/service"
	"github.com/haofuwu/service-market/internal/core/validate"
	"github.com/haofuwu/service-market/internal/infrastructure/db/memory"
	mongokv "github.com/haofuwu/service-market/internal/infrastructure/db/mongo"
	rediskv "github.com/haofuwu/service-market/internal/infrastructure/db/redis"
	sqlitekv "github.com/haofuwu/service-market/internal/infrastructure/db/sqlite"
	"github.com/haofuwu/service-market/internal/pkg/config"
)

// Store is an opened key-value backend.
type Store struct {
	KV      ports.KVStore
	Backend string
	// Pingers are the dependencies checked by readiness probes.
	Pingers map[string]ports.Pinger
	closeFn func(ctx context.Context) error
}

// Close releases the backend connection.
func (s *Store) Close(ctx context.Context) error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn(ctx)
}

// OpenStore connects the backend selected by cfg.KV.Backend.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.KV.Backend {
	case config.BackendMemory:
		return &Store{KV: memory.NewKVStore(), Backend: cfg.KV.Backend}, nil

	case config.BackendRedis:
		client, err := rediskv.Connect(ctx, rediskv.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, err
		}
		kv := rediskv.NewKVStore(client, cfg.KV.Prefix)
		return &Store{
			KV:      kv,
			Backend: cfg.KV.Backend,
			Pingers: map[string]ports.Pinger{"redis": kv},
			closeFn: func(context.Context) error { return client.Close() },
		}, nil

	case config.BackendMongo:
		client, db, err := mongokv.Connect(ctx, mongokv.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		kv := mongokv.NewKVStore(db)
		return &Store{
			KV:      kv,
			Backend: cfg.KV.Backend,
			Pingers: map[string]ports.Pinger{"mongodb": kv},
			closeFn: client.Disconnect,
		}, nil

	case config.BackendSQLite:
		kv, err := sqlitekv.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return &Store{
			KV:      kv,
			Backend: cfg.KV.Backend,
			Pingers: map[string]ports.Pinger{"sqlite": kv},
			closeFn: func(context.Context) error { return kv.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown kv backend %q", cfg.KV.Backend)
}

// Options tunes NewServices.
type Options struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
	// Seed writes the demo users, needs and offers when their keys are absent.
	Seed bool
	// RoutesFile is an optional YAML route table; empty uses the defaults.
	RoutesFile string
	// UsernameCheckURL selects the remote uniqueness check when non-empty.
	UsernameCheckURL     string
	UsernameCheckTimeout time.Duration
}

// Services are the core components built over one KV store.
type Services struct {
	Users   *service.UserDirectory
	Tokens  *service.TokenIssuer
	Auth    *service.AuthService
	Session *service.SessionManager
	Market  *service.MarketStore
	Stats   *service.StatsService
	Checker *validate.Checker
	Guard   *guard.Guard
}

// NewServices builds every core component over kv.
func NewServices(ctx context.Context, kv ports.KVStore, opts Options, log zerolog.Logger) (*Services, error) {
	if opts.JWTSecret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}

	users := service.NewUserDirectory(kv, opts.BcryptCost, log.With().Str("component", "users").Logger())
	if opts.Seed {
		if err := users.Seed(ctx); err != nil {
			return nil, fmt.Errorf("seed users: %w", err)
		}
	}

	market, err := service.NewMarketStore(ctx, kv, opts.Seed, log.With().Str("component", "market").Logger())
	if err != nil {
		return nil, fmt.Errorf("load market: %w", err)
	}

	routes := guard.DefaultRoutes()
	if opts.RoutesFile != "" {
		if routes, err = guard.LoadRoutesFile(opts.RoutesFile); err != nil {
			return nil, fmt.Errorf("load routes: %w", err)
		}
	}

	var remote ports.UsernameChecker
	if opts.UsernameCheckURL != "" {
		remote = validate.NewRemoteChecker(opts.UsernameCheckURL, opts.UsernameCheckTimeout, log.With().Str("component", "username_check").Logger())
	}

	tokens := service.NewTokenIssuer(opts.JWTSecret, opts.TokenTTL)
	return &Services{
		Users:   users,
		Tokens:  tokens,
		Auth:    service.NewAuthService(users, tokens, log.With().Str("component", "auth").Logger()),
		Session: service.NewSessionManager(kv, users, tokens, log.With().Str("component", "session").Logger()),
		Market:  market,
		Stats:   service.NewStatsService(market, log.With().Str("component", "stats").Logger()),
		Checker: validate.NewChecker(remote == nil, validate.NewLocalChecker(kv), remote),
		Guard:   guard.New(routes),
	}, nil
}
