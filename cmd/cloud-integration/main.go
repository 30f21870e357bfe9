package main

// @title           Cloud Integration API
// @version         1.0
// @description     Connects users to Notion over OAuth, stores their credentials and proxies page and file operations on their behalf.

// @contact.name   Custodia Labs
// @contact.url    https://github.com/custodia-labs/cloud-integration/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /
// @schemes   http https

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/cloud-integration/docs"
	"github.com/custodia-labs/cloud-integration/internal/adapters/driven/auth"
	"github.com/custodia-labs/cloud-integration/internal/adapters/driven/notion"
	"github.com/custodia-labs/cloud-integration/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/cloud-integration/internal/adapters/driven/redis"
	"github.com/custodia-labs/cloud-integration/internal/adapters/driven/secrets"
	"github.com/custodia-labs/cloud-integration/internal/adapters/driven/sqlite"
	"github.com/custodia-labs/cloud-integration/internal/adapters/driving/http"
	"github.com/custodia-labs/cloud-integration/internal/config"
	"github.com/custodia-labs/cloud-integration/internal/core/ports/driven"
	"github.com/custodia-labs/cloud-integration/internal/core/services"
	"github.com/custodia-labs/cloud-integration/internal/worker"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if len(os.Args) > 1 {
		cfg.RunMode = os.Args[1]
		if err := cfg.Validate(); err != nil {
			slog.Error("invalid configuration", "error", err)
			os.Exit(1)
		}
	}

	logger := newLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("cloud-integration exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("cloud-integration starting", "version", version, "mode", cfg.RunMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cipher, err := secrets.NewCipherFromSecret(cfg.CredentialsSecret)
	if err != nil {
		return err
	}

	// ===== Credential store =====
	var (
		integrations driven.IntegrationStore
		sessions     driven.OAuthSessionStore
		dbPinger     http.Pinger
	)
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		store, err := sqlite.NewStore(cfg.Database.SQLitePath, cipher)
		if err != nil {
			return err
		}
		defer store.Close()
		integrations = store.IntegrationStore()
		sessions = store.OAuthSessionStore()
		dbPinger = store
		logger.Info("using sqlite credential store", "path", store.Path())
	default:
		db, err := postgres.Connect(ctx, postgres.Config{
			URL:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
			PingTimeout:     postgres.DefaultConfig(cfg.Database.URL).PingTimeout,
		})
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.InitSchema(ctx); err != nil {
			return err
		}
		integrations = postgres.NewIntegrationStore(db.DB, cipher)
		sessions = postgres.NewOAuthSessionStore(db.DB)
		dbPinger = db
		logger.Info("postgres connected and schema initialized")
	}

	// ===== OAuth session store (Redis if available) =====
	if cfg.RedisURL != "" {
		client, err := redisadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		sessions = redisadapter.NewOAuthSessionStore(client)
		logger.Info("using redis oauth session store")
	}

	// ===== Provider client =====
	var provider driven.ProviderClient
	if cfg.Notion.Enabled {
		provider = notion.NewClient(notion.Config{
			ClientID:     cfg.Notion.ClientID,
			ClientSecret: cfg.Notion.ClientSecret,
			RedirectURI:  cfg.Notion.RedirectURI,
			BaseURL:      cfg.Notion.APIBaseURL,
			APIVersion:   cfg.Notion.APIVersion,
			Timeout:      cfg.Notion.HTTPTimeout,
		}, logger)
		logger.Info("notion client enabled", "api_version", cfg.Notion.APIVersion)
	} else {
		provider = notion.NewMockClient(logger)
		logger.Warn("NOTION_ENABLED is false, using mock notion client")
	}

	// ===== Services =====
	oauthService := services.NewOAuthService(services.OAuthServiceConfig{
		Provider:     provider,
		Sessions:     sessions,
		Integrations: integrations,
		Logger:       logger,
	})
	notionService := services.NewNotionService(services.NotionServiceConfig{
		Provider:     provider,
		Integrations: integrations,
		Logger:       logger,
	})
	integrationService := services.NewIntegrationService(integrations, logger)

	// ===== Expired session cleanup =====
	janitor := worker.NewWorker(worker.WorkerConfig{
		Sessions: sessions,
		Logger:   logger,
		Interval: cfg.Session.CleanupInterval,
	})
	if cfg.RunMode == config.ModeWorker || cfg.RunMode == config.ModeAll {
		if err := janitor.Start(ctx); err != nil {
			return err
		}
		defer janitor.Stop()
	}
	if cfg.RunMode == config.ModeWorker {
		<-ctx.Done()
		logger.Info("shutdown signal received")
		return nil
	}

	docs.SwaggerInfo.Version = version

	server := http.NewServer(
		http.Config{
			Host:                cfg.Host,
			Port:                cfg.Port,
			Version:             version,
			AuthSuccessRedirect: cfg.Notion.SuccessRedirect,
			AuthFailureRedirect: cfg.Notion.FailureRedirect,
			MaxUploadBytes:      cfg.HTTP.MaxUploadBytes,
			CORSAllowedOrigins:  cfg.HTTP.CORSAllowedOrigins,
			Session: http.SessionConfig{
				CookieName: cfg.Session.CookieName,
				TTL:        cfg.Session.TTL,
				Secure:     cfg.Session.CookieSecure,
			},
		},
		oauthService,
		notionService,
		integrationService,
		auth.NewAdapter(cfg.Session.Secret),
		dbPinger,
		sessions,
		logger,
	)
	if cfg.RunMode == config.ModeAll {
		server.SetSessionCleanup(janitor)
	}

	return server.Start(ctx)
}

func newLogger(cfg config.LogConfig, out io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(out, opts))
	}
	return slog.New(slog.NewJSONHandler(out, opts))
}
