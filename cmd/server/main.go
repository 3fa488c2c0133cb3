package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/workspace-insights/internal/api"
	"github.com/Rrens/workspace-insights/internal/api/handler"
	"github.com/Rrens/workspace-insights/internal/config"
	"github.com/Rrens/workspace-insights/internal/connector"
	"github.com/Rrens/workspace-insights/internal/connector/confluence"
	"github.com/Rrens/workspace-insights/internal/connector/database"
	dbMongo "github.com/Rrens/workspace-insights/internal/connector/database/mongo"
	dbMySQL "github.com/Rrens/workspace-insights/internal/connector/database/mysql"
	dbPostgres "github.com/Rrens/workspace-insights/internal/connector/database/postgres"
	dbSQLite "github.com/Rrens/workspace-insights/internal/connector/database/sqlite"
	"github.com/Rrens/workspace-insights/internal/connector/gdrive"
	"github.com/Rrens/workspace-insights/internal/connector/gmail"
	"github.com/Rrens/workspace-insights/internal/connector/notion"
	"github.com/Rrens/workspace-insights/internal/connector/trello"
	"github.com/Rrens/workspace-insights/internal/domain"
	"github.com/Rrens/workspace-insights/internal/identity/google"
	"github.com/Rrens/workspace-insights/internal/llm"
	"github.com/Rrens/workspace-insights/internal/llm/anthropic"
	"github.com/Rrens/workspace-insights/internal/llm/deepseek"
	"github.com/Rrens/workspace-insights/internal/llm/gemini"
	"github.com/Rrens/workspace-insights/internal/llm/ollama"
	"github.com/Rrens/workspace-insights/internal/llm/openai"
	"github.com/Rrens/workspace-insights/internal/logger"
	"github.com/Rrens/workspace-insights/internal/repository/redis"
	"github.com/Rrens/workspace-insights/internal/repository/sqlstore"
	"github.com/Rrens/workspace-insights/internal/security"
	"github.com/Rrens/workspace-insights/internal/service"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	closer, err := logger.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("database", cfg.Database.Driver).
		Msg("Starting workspace-insights API server")

	// Initialize database
	store, err := sqlstore.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		return err
	}

	checks := map[string]handler.Pinger{"database": store}

	// Redis is optional; it backs the listing cache and the rate limiter
	var (
		cache   service.ListingCache
		limiter *redis.RateLimiter
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()

		cache = redis.NewListingCache(redisClient, cfg.Redis.ListingCacheTTL)
		limiter = redis.NewRateLimiter(
			redisClient,
			cfg.Security.RateLimit.RequestsPerMinute,
			cfg.Security.RateLimit.Burst,
		)
		checks["redis"] = redisClient
	}

	encryptor, err := security.NewEncryptorFromSecret(cfg.Security.EncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to create encryptor: %w", err)
	}

	identity := google.NewProvider(cfg.Auth.Google)
	if !identity.IsConfigured() {
		log.Warn().Msg("Google client credentials are empty, sign-in will fail")
	}

	llmRouter := newLLMRouter(cfg.LLM)

	services := service.New(service.Deps{
		Store:      store,
		Encryptor:  encryptor,
		Sources:    newRegistry(identity),
		Text:       llm.NewTextService(llmRouter),
		Identity:   identity,
		States:     security.NewStateManager(cfg.Auth.StateSecret, cfg.Auth.StateTTL),
		Cache:      cache,
		SessionTTL: cfg.Auth.SessionTTL,
		Limits: service.ArtifactLimits{
			MaxContentBytes: cfg.Artifacts.MaxContentBytes,
			MaxUploadBytes:  cfg.Artifacts.MaxUploadBytes,
		},
	})

	deps := api.Deps{
		Config:   cfg,
		Services: services,
		LLM:      llmRouter,
		Checks:   checks,
	}
	if limiter != nil {
		deps.Limiter = limiter
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
	return nil
}

// newRegistry registers a connector for every binding type
func newRegistry(identity *google.Provider) *connector.Registry {
	registry := connector.NewRegistry()

	databases := database.NewSource()
	databases.RegisterAdapter("postgres", dbPostgres.NewAdapter)
	databases.RegisterAdapter("mysql", dbMySQL.NewAdapter)
	databases.RegisterAdapter("sqlite", dbSQLite.NewAdapter)
	databases.RegisterAdapter("mongodb", dbMongo.NewAdapter)

	mailbox := gmail.NewSource(identity.OAuthConfig())

	registry.Register(mailbox)
	registry.RegisterMailbox(domain.BindingMailbox, mailbox)
	registry.Register(gdrive.NewSource(identity.OAuthConfig()))
	registry.Register(trello.NewSource(""))
	registry.Register(confluence.NewSource())
	registry.Register(notion.NewSource(""))
	registry.Register(databases)

	log.Info().Interface("types", registry.Types()).Msg("Registered source connectors")
	return registry
}

// newLLMRouter registers every provider with credentials
func newLLMRouter(cfg config.LLMConfig) *llm.Router {
	router := llm.NewRouter(cfg.DefaultProvider)

	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.DefaultProvider)

	if cfg.Ollama.Host != "" {
		log.Info().Str("host", cfg.Ollama.Host).Msg("Registering Ollama provider")
		router.RegisterProvider(ollama.NewProvider(cfg.Ollama.Host, cfg.Ollama.DefaultModel))
	}
	if cfg.OpenAI.APIKey != "" {
		var opts []openai.Option
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		router.RegisterProvider(openai.NewProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model, opts...))
	}
	if cfg.Anthropic.APIKey != "" {
		router.RegisterProvider(anthropic.NewProvider(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.BaseURL))
	}
	if cfg.DeepSeek.APIKey != "" {
		router.RegisterProvider(deepseek.NewProvider(cfg.DeepSeek.APIKey, cfg.DeepSeek.Model, cfg.DeepSeek.BaseURL))
	}
	if cfg.Gemini.APIKey != "" {
		router.RegisterProvider(gemini.NewProvider(cfg.Gemini))
	} else {
		log.Warn().Msg("Gemini API Key is empty, skipping registration")
	}

	return router
}
