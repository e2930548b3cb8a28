package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/medport/internal/api"
	"github.com/terraincognita07/medport/internal/cli"
	"github.com/terraincognita07/medport/internal/clock"
	"github.com/terraincognita07/medport/internal/config"
	"github.com/terraincognita07/medport/internal/db"
	"github.com/terraincognita07/medport/internal/i18n"
	"github.com/terraincognita07/medport/internal/logging"
	"github.com/terraincognita07/medport/internal/metrics"
	"github.com/terraincognita07/medport/internal/services"
)

const (
	Version = "0.1.0"
	appName = "medport"

	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := rootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd(out io.Writer) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Medication reminder tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	cmd.AddCommand(
		serveCmd(&configPath),
		dueCmd(&configPath),
		migrateCmd(&configPath),
		tokenCmd(&configPath),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder poller",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func dueCmd(configPath *string) *cobra.Command {
	var (
		at           string
		medicationID uint
		language     string
	)

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List reminders due now or at --at",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}

			options := cli.DueOptions{Language: language, Location: cfg.Location()}
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at must be RFC 3339: %w", err)
				}
				options.At = parsed
			}
			if medicationID != 0 {
				options.MedicationID = &medicationID
			}
			if options.Language == "" {
				options.Language = cfg.Telegram.Language
			}

			database, err := db.Open(cfg.Database, logger)
			if err != nil {
				return fmt.Errorf("database init failed: %w", err)
			}
			handler, err := api.NewHandler(database, api.Options{Location: cfg.Location(), Logger: logger})
			if err != nil {
				return fmt.Errorf("handler init failed: %w", err)
			}
			messages, err := i18n.NewManager(i18n.LangEN)
			if err != nil {
				return fmt.Errorf("i18n init failed: %w", err)
			}
			return cli.RunDueCommand(cmd.Context(), cmd.OutOrStdout(), handler.Scheduler(), messages, options)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Evaluation instant (RFC 3339), defaults to now")
	cmd.Flags().UintVar(&medicationID, "medication", 0, "Only reminders of this medication id")
	cmd.Flags().StringVar(&language, "lang", "", "Output language (en, ru)")
	return cmd
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			return cli.RunMigrateCommand(cmd.OutOrStdout(), cfg.Database, logger)
		},
	}
}

func tokenCmd(configPath *string) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for /api",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}
			return cli.RunIssueTokenCommand(cmd.OutOrStdout(), cfg.Auth.Secret, subject, ttl, time.Now())
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "cli", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime, defaults to auth.token_ttl")
	return cmd
}

func loadRuntime(configPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, levelErr := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if levelErr != nil {
		logger.Warn("invalid log level, using info", "value", cfg.Log.Level, "error", levelErr)
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	location := cfg.Location()

	database, err := db.Open(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	registry := metrics.New()
	handler, err := api.NewHandler(database, api.Options{
		Location: location,
		Clock:    clock.NewSystem(location),
		Secret:   cfg.Auth.Secret,
		Metrics:  registry,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := api.NewApp(handler, api.AppOptions{AppName: cfg.Server.AppName, AccessLog: true})

	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	if err := startNotifier(sigCtx, cfg, handler.Scheduler(), registry, logger); err != nil {
		return err
	}

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("medport listening",
		"addr", "0.0.0.0:"+cfg.Server.Port,
		"driver", cfg.Database.Driver,
		"timezone", location.String(),
		"auth", cfg.AuthEnabled(),
	)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func startNotifier(ctx context.Context, cfg *config.Config, source services.DueSource, registry *metrics.Metrics, logger *slog.Logger) error {
	if !cfg.Scheduler.Enabled {
		logger.Info("reminder poller disabled")
		return nil
	}
	if !cfg.TelegramEnabled() {
		logger.Info("reminder poller idle: no telegram sender configured")
		return nil
	}

	sender, err := services.NewTelegramSender(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if err != nil {
		return fmt.Errorf("telegram init failed: %w", err)
	}
	messages, err := i18n.NewManager(i18n.LangEN)
	if err != nil {
		return fmt.Errorf("i18n init failed: %w", err)
	}

	notifier := services.NewNotificationService(source, sender, messages, services.NotificationOptions{
		Spec:       cfg.Scheduler.Spec,
		Language:   cfg.Telegram.Language,
		RatePerSec: cfg.Telegram.RatePerSec,
		Location:   cfg.Location(),
	}, registry, logger)
	if err := notifier.Start(ctx); err != nil {
		return fmt.Errorf("start reminder poller: %w", err)
	}
	logger.Info("reminder poller started", "spec", cfg.Scheduler.Spec, "chat_id", strconv.FormatInt(cfg.Telegram.ChatID, 10))
	return nil
}
