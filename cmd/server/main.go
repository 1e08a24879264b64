package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	braveAdapter "tabkeep/internal/adapter/brave"
	githubAdapter "tabkeep/internal/adapter/github"
	googleAdapter "tabkeep/internal/adapter/google"
	redditAdapter "tabkeep/internal/adapter/reddit"
	spotifyAdapter "tabkeep/internal/adapter/spotify"
	youtubeAdapter "tabkeep/internal/adapter/youtube"
	"tabkeep/internal/auth"
	"tabkeep/internal/cache"
	"tabkeep/internal/config"
	searchModels "tabkeep/internal/domain/models/search"
	searchSvc "tabkeep/internal/domain/services/search"
	"tabkeep/internal/handler"
	"tabkeep/internal/handler/sse"
	"tabkeep/internal/middleware"
	"tabkeep/internal/repository/postgres"
	aiService "tabkeep/internal/service/ai"
	searchService "tabkeep/internal/service/search"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// JWT verification is optional: without a JWKS URL every endpoint is open
	// (local development).
	var jwtVerifier auth.JWTVerifier
	if cfg.JWKSURL != "" {
		var err error
		jwtVerifier, err = auth.NewJWTVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwtVerifier.Close()
	} else {
		logger.Warn("no JWKS URL configured, authentication disabled")
	}

	// Session persistence is optional as well; without a database the server
	// still answers, it just keeps no history.
	ctx := context.Background()
	var recorder *searchService.Recorder
	if cfg.DatabaseURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		logger.Info("database connected",
			"max_conns", 25,
			"min_conns", 5,
		)

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		sessionRepo := postgres.NewSessionRepository(repoConfig)
		platformResultRepo := postgres.NewPlatformResultRepository(repoConfig)
		txManager := postgres.NewTransactionManager(pool, logger)
		recorder = searchService.NewRecorder(sessionRepo, platformResultRepo, txManager, logger)
	} else {
		logger.Warn("no database configured, sessions will not be persisted")
	}

	// Platform adapters - only those with credentials are registered; a
	// request naming an unregistered platform settles as an error result.
	var adapters []searchSvc.PlatformAdapter
	var brave *braveAdapter.Adapter
	if cfg.BraveAPIKey != "" {
		queryCache := cache.New(cache.DefaultSize, cache.DefaultTTL)
		brave = braveAdapter.NewAdapter(braveAdapter.NewClient(cfg.BraveAPIKey, queryCache))
		adapters = append(adapters, brave)
	}
	if cfg.GoogleSearchAPIKey != "" && cfg.GoogleSearchEngineID != "" {
		adapters = append(adapters, googleAdapter.NewAdapter(cfg.GoogleSearchAPIKey, cfg.GoogleSearchEngineID))
	}
	if cfg.YouTubeAPIKey != "" {
		adapters = append(adapters, youtubeAdapter.NewAdapter(cfg.YouTubeAPIKey))
	}
	adapters = append(adapters, redditAdapter.NewAdapter())
	adapters = append(adapters, githubAdapter.NewAdapter(cfg.GitHubToken))
	if cfg.SpotifyClientID != "" && cfg.SpotifyClientSecret != "" {
		adapters = append(adapters, spotifyAdapter.NewAdapter(cfg.SpotifyClientID, cfg.SpotifyClientSecret))
	}
	logger.Info("platform adapters registered", "count", len(adapters))

	// AI collaborator
	aiSvc := aiService.NewService(cfg.OpenAIAPIKey, logger)
	if !aiSvc.Configured() {
		logger.Warn("no OpenAI API key configured, chat and ranking degrade to fallbacks")
	}

	// Orchestration services
	counts := func(p searchModels.Platform) int {
		return cfg.Search.Count(string(p), searchService.DefaultResultCount)
	}
	executor := searchService.NewExecutor(adapters, cfg.Search.Timeout(), counts, logger)
	ranker := searchService.NewAIRanker(aiSvc, logger)

	var media searchSvc.MediaSearcher
	var news searchService.NewsSearcher
	if brave != nil {
		media = brave
		news = brave
	}
	pipeline := searchService.NewPipeline(aiSvc, aiSvc, executor, ranker, recorder, media, news, logger)
	multiSearch := searchService.NewMultiSearchService(aiSvc, aiSvc, executor, ranker, recorder, logger)

	// Handlers
	chatHandler := handler.NewChatHandler(pipeline, aiSvc.Configured(), sse.DefaultConfig(), logger)
	searchHandler := handler.NewSearchHandler(multiSearch, logger)
	sessionsHandler := handler.NewSessionsHandler(recorder, logger)
	suggestHandler := handler.NewSuggestHandler(aiSvc, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Answer streaming
	mux.HandleFunc("POST /api/chat", chatHandler.StreamChat)

	// Multi-platform search
	mux.HandleFunc("POST /api/search", searchHandler.MultiSearch)

	// Session retrieval
	mux.HandleFunc("GET /api/sessions", sessionsHandler.ListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", sessionsHandler.GetSession)

	// Suggestions
	mux.HandleFunc("POST /api/suggest", suggestHandler.Suggest)

	// Build middleware chain
	var httpHandler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	httpHandler = middleware.Auth(jwtVerifier, logger)(httpHandler)
	httpHandler = middleware.Recovery(logger)(httpHandler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID"},
		AllowCredentials: true,
	})
	httpHandler = corsHandler.Handler(httpHandler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
