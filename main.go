package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/inject-portal/accounts"
	"github.com/danielhkuo/inject-portal/auth"
	"github.com/danielhkuo/inject-portal/cliparse"
	"github.com/danielhkuo/inject-portal/competition"
	"github.com/danielhkuo/inject-portal/db"
	"github.com/danielhkuo/inject-portal/router"
	"github.com/danielhkuo/inject-portal/scenarios"
)

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	dialect, err := db.ParseDialect(cfg.DatabaseType)
	if err != nil {
		slog.Error("invalid database type", "error", err)
		os.Exit(1)
	}

	// Open and verify the database
	dbConn, err := db.Open(dialect, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Apply pending migrations
	ctx := context.Background()
	if err := db.Migrate(ctx, dbConn); err != nil {
		slog.Error("schema migration failed", "error", err)
		os.Exit(1)
	}
	version, err := db.SchemaVersion(ctx, dbConn)
	if err != nil {
		slog.Warn("could not read schema version", "error", err)
	}
	slog.Info("Database schema ready", "type", dialect, "version", version)

	// First start: admin account plus one invite token
	accts := accounts.NewManager(dbConn, auth.NewPasswordHasher(cfg.PasswordCost))
	result, err := accts.Bootstrap(ctx, cfg.DefaultAdminPassword)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	if result.Created {
		slog.Warn("Created default admin account; change its password after logging in",
			"username", result.Admin.Username,
		)
		slog.Info("Initial registration token", "token", result.Token.Token, "uses_left", result.Token.UsesLeft)
	}

	catalog := scenarios.Load(cfg.ScenariosFile)

	client := competition.NewClient(cfg.APIKey, cfg.APIServer)
	if !client.Configured() {
		slog.Warn("Competition API key not configured; API features are disabled")
	}

	// Create router
	handler, err := router.NewRouter(dbConn, cfg, client, catalog)
	if err != nil {
		slog.Error("router setup failed", "error", err)
		os.Exit(1)
	}

	// Create server
	server := http.Server{
		Handler:           handler,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Warn("Graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}
