package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"hikvision-integration/config"
	"hikvision-integration/pkg/paseto"
	"hikvision-integration/repository"
	"hikvision-integration/router"
	"hikvision-integration/scheduler"
)

const shutdownTimeout = 15 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Port     string
	NoCron   bool
	DedupTTL time.Duration
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook and report API with the auto-close scheduler",
		Long: `Starts the HTTP server (camera webhook, report API, uploads, docs) and
schedules every company's auto-close sweep. SIGINT or SIGTERM shuts both
down gracefully.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Port, "port", "p", "", "listen port (overrides PORT)")
	cmd.Flags().BoolVar(&opts.NoCron, "no-cron", false, "do not schedule auto-close sweeps")
	cmd.Flags().DurationVar(&opts.DedupTTL, "dedup-ttl", repository.DefaultDedupTTL, "how long a delivered event is remembered")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, opts *ServeOptions) error {
	a, err := buildApp(ctx, opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.log

	key, err := a.cfg.PasetoKey()
	if err != nil {
		return fmt.Errorf("report API needs a token key (run keygen): %w", err)
	}
	tokens, err := paseto.NewMaker(key)
	if err != nil {
		return err
	}

	var dedup repository.Deduplicator = repository.NewMemoryDeduplicator(opts.DedupTTL)
	if a.cfg.RedisURL != "" {
		rdb, err := config.RedisConnect(ctx, a.cfg.RedisURL)
		if err != nil {
			return err
		}
		defer closeRedis(rdb, log)
		dedup = repository.NewRedisDeduplicator(rdb, opts.DedupTTL)
	}

	port := a.cfg.Port
	if opts.Port != "" {
		port = opts.Port
	}

	server := fiber.New(fiber.Config{
		AppName:               "hikvision-integration",
		DisableStartupMessage: true,
	})
	config.SetupCORS(server, a.cfg.AllowedOrigins)
	server.Use(logger.New())

	router.SetupRoutes(server, router.Deps{
		Engine:    a.engine(),
		Dedup:     dedup,
		Companies: a.registry,
		Stores:    a.stores,
		Schedules: repository.NewScheduleRepository(a.cfg.DataDir),
		Tokens:    tokens,
		DataDir:   a.cfg.DataDir,
		Logger:    log,
	})

	sched := scheduler.New(log)
	if !opts.NoCron {
		n, err := sched.RegisterSweeps(a.registry.All(), a.sweeper)
		if err != nil {
			return err
		}
		log.Info("auto-close sweeps scheduled", "jobs", n)
	}
	sched.Start()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", port, "docs", "http://localhost:"+port+"/docs/index.html")
		errCh <- server.Listen(":" + port)
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
		log.Error("server stopped", "error", serveErr)
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		log.Warn("scheduler jobs still running at shutdown", "error", err)
	}
	log.Info("stopped")
	return serveErr
}

func closeRedis(rdb *redis.Client, log *slog.Logger) {
	if err := rdb.Close(); err != nil {
		log.Error("error closing redis", "error", err)
	}
}
