package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bioscout/internal/config"
	"github.com/kailas-cloud/bioscout/internal/db"
	dbMemory "github.com/kailas-cloud/bioscout/internal/db/memory"
	dbRedis "github.com/kailas-cloud/bioscout/internal/db/redis"
	logpkg "github.com/kailas-cloud/bioscout/internal/logger"
	"github.com/kailas-cloud/bioscout/internal/metrics"
	"github.com/kailas-cloud/bioscout/internal/repository/obscache"
	chiTransport "github.com/kailas-cloud/bioscout/internal/transport/chi"
	"github.com/kailas-cloud/bioscout/internal/transport/observations"
	openaiTransport "github.com/kailas-cloud/bioscout/internal/transport/openai"
	"github.com/kailas-cloud/bioscout/internal/transport/rag"
	"github.com/kailas-cloud/bioscout/internal/usecase/health"
	"github.com/kailas-cloud/bioscout/internal/usecase/mapsync"
	queryuc "github.com/kailas-cloud/bioscout/internal/usecase/query"
	"github.com/kailas-cloud/bioscout/internal/version"
)

func serveCommand() *cobra.Command {
	var env string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if env == "" {
				env = config.GetEnv()
			}
			return serve(cmd.Context(), env)
		},
	}
	cmd.Flags().StringVar(&env, "env", "", "Config environment (default: $ENV or local)")
	return cmd
}

func serve(ctx context.Context, env string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting bioscout API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.Bool("rag", cfg.RAGEnabled()),
		zap.Bool("fallback", cfg.FallbackEnabled()),
	)

	// Register domain metrics explicitly (no init())
	metrics.Register()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obsClient, err := observations.New(observations.Config{
		BaseURL: cfg.Observations.BaseURL,
		Timeout: time.Duration(cfg.Observations.TimeoutSec) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("observations client: %w", err)
	}

	store, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}

	// Pass nil interfaces (not typed nil pointers!) for disabled components.
	var (
		source      mapsync.ObservationSource = obsClient
		cachePinger health.CachePinger
	)
	if store != nil {
		defer store.Close()
		source = obscache.New(obsClient, store,
			time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.ObservationCacheTotal, logger)
		cachePinger = store
	}

	answerer, ragChecker, fallbackChecker, err := buildAnswerer(cfg, source, logger)
	if err != nil {
		return err
	}

	healthSvc := health.New(obsClient, ragChecker, fallbackChecker, cachePinger)

	registry := queryuc.NewRegistry(logger,
		queryuc.WithTTL(time.Duration(cfg.Sessions.IdleTTLSec)*time.Second))
	go registry.Run(ctx, time.Duration(cfg.Sessions.EvictIntervalSec)*time.Second)

	synchronizer := mapsync.New(source,
		mapsync.WithPadding(cfg.Map.Padding),
		mapsync.WithFlashDuration(time.Duration(cfg.Map.FlashDurationMs)*time.Millisecond),
	)
	querySvc := queryuc.New(registry, synchronizer, answerer, logger)

	server := chiTransport.NewServer(querySvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
				Code:    chiTransport.ErrorResponseCodeBadRequest,
				Message: "invalid request: " + err.Error(),
			})
		},
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// openCache returns the observation cache store, or nil when caching is disabled.
func openCache(ctx context.Context, cfg config.CacheConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.CacheDriverNone:
		return nil, nil
	case config.CacheDriverMemory:
		return dbMemory.NewStore(0), nil
	case config.CacheDriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create cache store: %w", err)
		}
		if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return nil, fmt.Errorf("cache not ready: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

// buildAnswerer assembles the question-answering chain: RAG -> chat fallback.
// It returns a nil Answerer when neither is configured.
func buildAnswerer(
	cfg config.Config,
	source mapsync.ObservationSource,
	logger *zap.Logger,
) (queryuc.Answerer, health.Checker, health.Checker, error) {
	var (
		primary, fallback           queryuc.Answerer
		ragChecker, fallbackChecker health.Checker
	)

	if cfg.RAGEnabled() {
		client, err := rag.New(rag.Config{
			BaseURL: cfg.RAG.BaseURL,
			Timeout: time.Duration(cfg.RAG.TimeoutSec) * time.Second,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("rag client: %w", err)
		}
		primary, ragChecker = client, client
	}

	if cfg.FallbackEnabled() {
		chat := openaiTransport.NewAnswerer(&openaiTransport.Config{
			APIKey:       cfg.Fallback.APIKey,
			BaseURL:      cfg.Fallback.BaseURL,
			Model:        cfg.Fallback.Model,
			MaxTokens:    cfg.Fallback.MaxTokens,
			ContextLimit: cfg.Fallback.ContextLimit,
			Context:      queryuc.NewObservationContext(source),
			Logger:       logger,
		})
		fallback, fallbackChecker = chat, chat
	}

	if primary == nil && fallback == nil {
		logger.Warn("No question answering configured, free-text queries use keyword extraction only")
		return nil, nil, nil, nil
	}
	return queryuc.NewFallbackAnswerer(primary, fallback, logger), ragChecker, fallbackChecker, nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorResponseCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", route),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
