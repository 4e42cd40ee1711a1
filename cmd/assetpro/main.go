package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/assetpro/internal/api"
	"github.com/erazemk/assetpro/internal/config"
	"github.com/erazemk/assetpro/internal/db"
	"github.com/erazemk/assetpro/internal/inventory"
	"github.com/erazemk/assetpro/internal/logging"
	"github.com/erazemk/assetpro/internal/notify"
	"github.com/erazemk/assetpro/internal/store"
)

func main() {
	fs := flag.NewFlagSet("assetpro", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "")
	fs.StringVar(&configPath, "c", "", "")

	var envFile string
	fs.StringVar(&envFile, "env", ".env", "")
	fs.StringVar(&envFile, "e", ".env", "")

	config.RegisterFlags(fs)

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: assetpro [flags]

Flags:
  -c, -config <path>        YAML config file (default: none)
  -e, -env <path>           dotenv file (default: .env, ignored if missing)
  -d, -db <path>            SQLite database path (default: assetpro.sqlite3)
  -a, -addr <host:port>     listen address (default: :8080)
  -l, -log <path>           log file path (default: no file, stdout/stderr only)
  -v, -log-level <level>    debug, info, warn or error (default: info)
  -f, -log-format <format>  text or json (default: text)
  -b, -base-url <url>       public URL encoded in QR labels (default: text labels)
  -p, -prefix <prefix>      asset code prefix (default: TV)
  -w, -width <digits>       asset code number width (default: 3)
  -t, -busy-timeout <dur>   wait for the database write lock (default: 5s)
  -h, -help                 show this help and exit

Every setting can also be given as an ASSETPRO_* environment variable.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(configPath, envFile)
	if err == nil {
		err = cfg.ApplyFlags(fs)
	}
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := logging.Setup(cfg.Logging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg); err != nil {
		slog.Error("fatal", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	database, err := db.Open(cfg.DBPath, cfg.BusyTimeout)
	if err != nil {
		return err
	}
	defer database.Close()

	// Create missing tables and columns (idempotent).
	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	slog.Info("database ready", "path", cfg.DBPath)

	var notifier notify.Notifier = notify.Log{Logger: slog.Default()}
	if cfg.SMTP.Enabled() {
		notifier = notify.NewSMTP(cfg.SMTP)
		slog.Info("custody notices by email", "host", cfg.SMTP.Host)
	}

	inv, err := inventory.New(database, notifier, inventory.Config{
		Codes:   cfg.CodeScheme(),
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	created, err := inv.Bootstrap(ctx, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created && cfg.AdminPassword == config.DefaultAdminPassword {
		slog.Warn("admin account uses the default password, change it after logging in",
			"username", "admin")
	}

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewRouter(inv, database, jwtSecret))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}
