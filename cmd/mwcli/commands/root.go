package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	devenv "marketwatch-backend/dev/env"
	"marketwatch-backend/internal/components/chrono"
	"marketwatch-backend/internal/components/telemetry"
	"marketwatch-backend/internal/pagecache"
	"marketwatch-backend/internal/scrapers/marketwatch"
	"marketwatch-backend/lib/configutil"
	"marketwatch-backend/lib/sqliteutil"

	"github.com/spf13/cobra"
)

type Config struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// game id or name used when --game is not given
	Game string `json:"game"`
	// badger directory for cached pages, caching is off when empty
	Cache     string            `json:"cache"`
	Snapshots sqliteutil.Config `json:"snapshots"`
}

var (
	configPath string
	gameFlag   string
	verbose    bool
	dumpDir    string
)

var rootCmd = &cobra.Command{
	Use:           "mwcli",
	Short:         "mwcli is a CLI for the MarketWatch virtual stock exchange.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "mwcli.json5", "The config file, searched for from the cwd upwards.")
	rootCmd.PersistentFlags().StringVarP(&gameFlag, "game", "g", "", "The game id or name, defaults to the game in the config.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug messages.")
	rootCmd.PersistentFlags().StringVar(&dumpDir, "dump", "", "Write every HTTP exchange to a new run directory inside this directory.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// readConfig reads the config file, credentials can also come from
// MARKETWATCH_USERNAME and MARKETWATCH_PASSWORD.
func readConfig() (Config, error) {
	cfg, err := configutil.ReadRecursively[Config](configPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if cfg.Username == "" {
		cfg.Username = os.Getenv("MARKETWATCH_USERNAME")
	}
	if cfg.Password == "" {
		cfg.Password = os.Getenv("MARKETWATCH_PASSWORD")
	}
	if cfg.Game == "" {
		cfg.Game = os.Getenv("MARKETWATCH_GAME_ID")
	}
	return cfg, nil
}

type session struct {
	config Config
	client *marketwatch.Client
	tel    telemetry.API
	clock  chrono.TimeAPI
	close  func()
}

// newSession creates a client, login is skipped for commands that read
// public pages.
func newSession(ctx context.Context, login bool) (session, error) {
	cfg, err := readConfig()
	if err != nil {
		return session{}, err
	}
	tel := telemetry.SlogAPI{}

	clock, err := chrono.NewStandardImpl()
	if err != nil {
		return session{}, err
	}

	opts := marketwatch.ClientOptions{}
	closeFn := func() {}
	if cfg.Cache != "" {
		dir, err := devenv.ResolvePath(cfg.Cache)
		if err != nil {
			return session{}, err
		}
		cacheDb, err := pagecache.Open(dir)
		if err != nil {
			return session{}, err
		}
		cache := pagecache.New(cacheDb, "marketwatch", clock)
		opts.Cache = &cache
		closeFn = func() {
			cacheDb.Close()
		}
	}
	if dumpDir != "" {
		out, err := telemetry.NewFilesystemOutput(dumpDir)
		if err != nil {
			closeFn()
			return session{}, err
		}
		opts.Output = out
		slog.Info("writing http exchanges", "dir", out.Dir())
	}

	client, err := marketwatch.NewClient(opts, tel)
	if err != nil {
		closeFn()
		return session{}, err
	}

	if login {
		if cfg.Username == "" || cfg.Password == "" {
			closeFn()
			return session{}, fmt.Errorf("no credentials, set username and password in %s or MARKETWATCH_USERNAME and MARKETWATCH_PASSWORD", configPath)
		}
		loginCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		err = client.Login(loginCtx, cfg.Username, cfg.Password)
		if err != nil {
			closeFn()
			return session{}, err
		}
		slog.Debug("logged in", "username", cfg.Username)
	}

	return session{
		config: cfg,
		client: client,
		tel:    tel,
		clock:  clock,
		close:  closeFn,
	}, nil
}

// gameId resolves --game (or the configured game) to a game id.
func (s session) gameId(ctx context.Context) (string, error) {
	query := gameFlag
	if query == "" {
		query = s.config.Game
	}
	games, err := s.client.Games(ctx)
	if errors.Is(err, marketwatch.ErrNoGames) && query != "" {
		return query, nil
	}
	if err != nil {
		return "", err
	}
	return matchGame(query, games)
}
