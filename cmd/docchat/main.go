package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Ruchi2117/Doc-Chat-bot/internal/config"
	dbRedis "github.com/Ruchi2117/Doc-Chat-bot/internal/db/redis"
	logpkg "github.com/Ruchi2117/Doc-Chat-bot/internal/logger"
	"github.com/Ruchi2117/Doc-Chat-bot/internal/metrics"
	"github.com/Ruchi2117/Doc-Chat-bot/internal/repository/embcache"
	"github.com/Ruchi2117/Doc-Chat-bot/internal/repository/respcache"
	"github.com/Ruchi2117/Doc-Chat-bot/internal/repository/vectorindex"
	chiTransport "github.com/Ruchi2117/Doc-Chat-bot/internal/transport/chi"
	openaiTransport "github.com/Ruchi2117/Doc-Chat-bot/internal/transport/openai"
	proseTransport "github.com/Ruchi2117/Doc-Chat-bot/internal/transport/prose"
	answeruc "github.com/Ruchi2117/Doc-Chat-bot/internal/usecase/answer"
	healthuc "github.com/Ruchi2117/Doc-Chat-bot/internal/usecase/health"
	normalizeuc "github.com/Ruchi2117/Doc-Chat-bot/internal/usecase/normalize"
	rankuc "github.com/Ruchi2117/Doc-Chat-bot/internal/usecase/rank"
	"github.com/Ruchi2117/Doc-Chat-bot/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docchat API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("index", cfg.Index.Name),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	// Composition root: embedder chain, analyzer, generator, pipeline services
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})
	cachedEmbedder := embcache.New(
		baseEmbedder,
		cfg.Embedding.CacheCapacity,
		cfg.Embedding.BatchSize,
		metrics.EmbeddingCacheTotal,
		logger,
	)

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		Stream:      cfg.Generation.Stream,
		Provider:    "groq",
		Logger:      logger,
	})

	analyzer := proseTransport.New()

	index := vectorindex.New(store, cachedEmbedder, cfg.Index.Name, logger)

	normalizeSvc := normalizeuc.NewService(analyzer, cfg.Pipeline.QueryCacheCapacity, logger)
	rankSvc := rankuc.NewService(index, analyzer, rankuc.Config{
		TopK:          cfg.Pipeline.TopK,
		VectorWeight:  cfg.Pipeline.VectorWeight,
		KeywordWeight: cfg.Pipeline.KeywordWeight,
	}, logger)
	answers := respcache.New(
		cfg.Pipeline.ResponseCacheCapacity,
		time.Duration(cfg.Pipeline.ResponseCacheTTLSec)*time.Second,
		metrics.ResponseCacheTotal,
		logger,
	)
	answerSvc := answeruc.NewService(normalizeSvc, rankSvc, generator, answers, logger)

	healthSvc := healthuc.New(store, cachedEmbedder, generator)

	server := chiTransport.NewServer(answerSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		// No WriteTimeout: answer streams stay open for as long as
		// generation takes.
		ReadTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
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
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
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

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
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
