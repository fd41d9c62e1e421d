package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// KV backends accepted by KV_BACKEND.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

type Config struct {
	Port      string        `env:"PORT,       default=8080"`
	Env       string        `env:"ENV,        default=development"`
	JWTSecret string        `env:"JWT_SECRET, default=change-me"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=24h"`
	LogLevel  string        `env:"LOG_LEVEL,  default=info"`

	KV          KVConfig
	Seed        bool   `env:"SEED_DEMO_DATA, default=true"`
	BcryptCost  int    `env:"BCRYPT_COST,    default=10"`
	RoutesFile  string `env:"ROUTES_FILE"`
	UsernameAPI UsernameAPIConfig

	Mongo  MongoConfig
	Redis  RedisConfig
	SQLite SQLiteConfig
}

type KVConfig struct {
	Backend string `env:"KV_BACKEND, default=memory"`
	Prefix  string `env:"KV_PREFIX,  default=market:"`
}

// UsernameAPIConfig selects the remote uniqueness endpoint. An empty URL
// keeps the check local.
type UsernameAPIConfig struct {
	URL     string        `env:"USERNAME_CHECK_URL"`
	Timeout time.Duration `env:"USERNAME_CHECK_TIMEOUT, default=5s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=service_market"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=data/market.db"`
}

// Development reports whether debug routes and pretty logs are enabled.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Validate checks the cross-field rules envconfig cannot express.
func (c *Config) Validate() error {
	switch c.KV.Backend {
	case BackendMemory, BackendRedis, BackendMongo, BackendSQLite:
	default:
		return fmt.Errorf("config: unknown KV_BACKEND %q", c.KV.Backend)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET must not be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: TOKEN_TTL must be positive")
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
