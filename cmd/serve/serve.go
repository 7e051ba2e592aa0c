package serve

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"golang.org/x/sync/errgroup"

	"github.com/sig-0/fxboard/cmd/env"
	"github.com/sig-0/fxboard/dash"
	"github.com/sig-0/fxboard/provider/exchangerate"
	"github.com/sig-0/fxboard/rates/cache"
	"github.com/sig-0/fxboard/refresh"
	"github.com/sig-0/fxboard/server"
	"github.com/sig-0/fxboard/server/config"
)

// serveCfg wraps the serve configuration
type serveCfg struct {
	config *config.Config

	configPath  string
	autoRefresh bool
}

// NewServeCmd creates the serve subcommand
func NewServeCmd() *ffcli.Command {
	cfg := &serveCfg{
		config: config.DefaultConfig(),
	}

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "serve",
		ShortUsage: "serve [flags]",
		LongHelp:   "Serves the fxboard backend",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *serveCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.config.ListenAddress,
		"listen",
		config.DefaultListenAddress,
		"the IP:PORT URL for the server",
	)

	fs.StringVar(
		&c.configPath,
		"config",
		"",
		"the path to the server TOML configuration, if any",
	)

	fs.StringVar(
		&c.config.Provider.URL,
		"provider-url",
		config.DefaultProviderURL,
		"the rate provider API base URL",
	)

	fs.IntVar(
		&c.config.Provider.TimeoutSeconds,
		"provider-timeout",
		config.DefaultTimeoutSeconds,
		"the rate provider call timeout, in seconds",
	)

	fs.BoolVar(
		&c.autoRefresh,
		"auto-refresh",
		false,
		"periodically re-warm cached rates in the background",
	)
}

// exec executes the server serve command
func (c *serveCfg) exec(ctx context.Context, _ []string) error {
	// Read the server configuration, if any
	if c.configPath != "" {
		serverCfg, err := config.Read(c.configPath)
		if err != nil {
			return fmt.Errorf("unable to read server config, %w", err)
		}

		c.config = serverCfg
	}

	// Create a new logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Warn("unable to load .env file")
	}

	// Resolve the dashboard configuration
	dashCfg := dash.DefaultConfig()

	if c.config.Defaults != nil {
		resolved, err := c.config.Defaults.DashConfig()
		if err != nil {
			return fmt.Errorf("unable to resolve dashboard defaults, %w", err)
		}

		dashCfg = resolved
	}

	// Build the cached rate source
	client := exchangerate.NewClient(
		c.config.Provider.URL,
		time.Duration(c.config.Provider.TimeoutSeconds)*time.Second,
	)

	cached := cache.New(client)

	// Create the dashboard service
	service, err := dash.New(
		cached,
		dash.WithConfig(dashCfg),
		dash.WithLogger(logger),
		dash.WithRefresher(cached),
	)
	if err != nil {
		return fmt.Errorf("unable to create service, %w", err)
	}

	// Create the server instance
	s, err := server.New(
		service,
		server.WithLogger(logger),
		server.WithConfig(c.config),
	)
	if err != nil {
		return fmt.Errorf("unable to create server, %w", err)
	}

	runCtx, cancelFn := signal.NotifyContext(
		ctx,
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancelFn()

	group, gCtx := errgroup.WithContext(runCtx)

	// Start the cache warmer, if requested
	if c.autoRefresh {
		scheduler := refresh.New(refresh.WithLogger(logger))

		for _, job := range defaultJobs(service, dashCfg) {
			if err := scheduler.Register(job); err != nil {
				return fmt.Errorf("unable to register refresh job, %w", err)
			}
		}

		group.Go(func() error {
			return scheduler.Start(gCtx)
		})
	}

	group.Go(func() error {
		return s.Serve(gCtx)
	})

	return group.Wait()
}
