// Package cli implements marketctl, a single-session marketplace client
// whose state lives in a local sqlite key-value file.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/haofuwu/service-market/internal/app"
	"github.com/haofuwu/service-market/internal/core/domain"
	sqlitekv "github.com/haofuwu/service-market/internal/infrastructure/db/sqlite"
	"github.com/haofuwu/service-market/pkg/logger"
)

// EnvPrefix prefixes every environment fallback, e.g. MARKETCTL_STATE.
const EnvPrefix = "MARKETCTL_"

const tokenTTL = 24 * time.Hour

// Config holds the CLI settings. Flags override the environment.
type Config struct {
	StatePath  string `env:"STATE"`
	Server     string `env:"SERVER, default=http://localhost:8080"`
	Remote     bool   `env:"REMOTE, default=false"`
	LogLevel   string `env:"LOG_LEVEL, default=warn"`
	Secret     string `env:"SECRET, default=marketctl-local-secret"`
	BcryptCost int    `env:"BCRYPT_COST, default=10"`
}

// LoadConfig reads MARKETCTL_* variables from l. An empty state path
// defaults to $HOME/.marketctl/state.db.
func LoadConfig(ctx context.Context, l envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, l),
	}); err != nil {
		return Config{}, err
	}
	if cfg.StatePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.StatePath = filepath.Join(home, ".marketctl", "state.db")
	}
	return cfg, nil
}

// runtime is the per-invocation state shared by all commands.
type runtime struct {
	cfg   Config
	store *sqlitekv.KVStore
	svc   *app.Services
	log   zerolog.Logger
}

// NewRootCmd builds the marketctl command tree with cfg as flag defaults.
func NewRootCmd(cfg Config) *cobra.Command {
	rt := &runtime{cfg: cfg}

	root := &cobra.Command{
		Use:   "marketctl",
		Short: "Community service marketplace client",
		Long: `marketctl keeps one login session and the marketplace data in a local
state file, the way a single browser tab would.

Every command restores the persisted session before it runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&rt.cfg.StatePath, "state", cfg.StatePath, "path of the sqlite state file ($MARKETCTL_STATE)")
	f.BoolVar(&rt.cfg.Remote, "remote", cfg.Remote, "check username uniqueness against --server ($MARKETCTL_REMOTE)")
	f.StringVar(&rt.cfg.Server, "server", cfg.Server, "base URL of the marketd API ($MARKETCTL_SERVER)")
	f.StringVar(&rt.cfg.LogLevel, "log-level", cfg.LogLevel, "log level: trace, debug, info, warn, error ($MARKETCTL_LOG_LEVEL)")

	root.AddCommand(
		newRegisterCmd(rt),
		newLoginCmd(rt),
		newLogoutCmd(rt),
		newWhoamiCmd(rt),
		newProfileCmd(rt),
		newCheckUsernameCmd(rt),
		newNavCmd(rt),
		newNeedCmd(rt),
		newServiceCmd(rt),
		newStatsCmd(rt),
	)
	return root
}

// Execute runs marketctl with args and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	cfg, err := LoadConfig(ctx, envconfig.OsLookuper())
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	root := NewRootCmd(cfg)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", err)
		return 1
	}
	return 0
}

// wrap opens the state file, restores the session and closes the store
// after fn returns.
func (rt *runtime) wrap(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
			cmd.SetContext(ctx)
		}
		if err := rt.open(ctx, cmd); err != nil {
			return err
		}
		defer rt.close()

		if err := rt.svc.Session.InitLoginState(ctx); err != nil {
			return err
		}
		return fn(cmd, args)
	}
}

func (rt *runtime) open(ctx context.Context, cmd *cobra.Command) error {
	rt.log = logger.New(logger.Options{
		Level:  rt.cfg.LogLevel,
		Pretty: true,
		Output: cmd.ErrOrStderr(),
		App:    "marketctl",
	})

	store, err := sqlitekv.Open(ctx, rt.cfg.StatePath)
	if err != nil {
		return fmt.Errorf("open state %s: %w", rt.cfg.StatePath, err)
	}

	opts := app.Options{
		JWTSecret:  rt.cfg.Secret,
		TokenTTL:   tokenTTL,
		BcryptCost: rt.cfg.BcryptCost,
		Seed:       true,
	}
	if rt.cfg.Remote {
		opts.UsernameCheckURL = rt.cfg.Server
	}
	svc, err := app.NewServices(ctx, store, opts, rt.log)
	if err != nil {
		_ = store.Close()
		return err
	}

	rt.store, rt.svc = store, svc
	return nil
}

func (rt *runtime) close() {
	if rt.store == nil {
		return
	}
	if err := rt.store.Close(); err != nil {
		rt.log.Warn().Err(err).Msg("close state")
	}
	rt.store, rt.svc = nil, nil
}

func (rt *runtime) session() domain.Session {
	return rt.svc.Session.Current()
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
