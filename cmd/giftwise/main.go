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
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/giftwise/giftwise/internal/cache"
	cacheMemory "github.com/giftwise/giftwise/internal/cache/memory"
	cacheRedis "github.com/giftwise/giftwise/internal/cache/redis"
	"github.com/giftwise/giftwise/internal/config"
	logpkg "github.com/giftwise/giftwise/internal/logger"
	"github.com/giftwise/giftwise/internal/metrics"
	catalogrepo "github.com/giftwise/giftwise/internal/repository/catalog"
	chiTransport "github.com/giftwise/giftwise/internal/transport/chi"
	openaiTransport "github.com/giftwise/giftwise/internal/transport/openai"
	"github.com/giftwise/giftwise/internal/usecase/health"
	"github.com/giftwise/giftwise/internal/usecase/pipeline"
	"github.com/giftwise/giftwise/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting giftwise API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_url", cfg.Catalog.BaseURL),
		zap.String("llm_model", cfg.LLM.Model),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	// Create cache store based on driver
	var store cache.Store
	switch cfg.Cache.Driver {
	case "memory":
		store = cacheMemory.NewStore()
	case "redis":
		redisStore, err := cacheRedis.NewStore(cacheRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create redis cache", zap.Error(err))
		}
		defer redisStore.Close()
		store = redisStore
	default:
		logger.Fatal("Unknown cache driver", zap.String("driver", cfg.Cache.Driver))
	}

	// Catalog client chain: HTTP -> cached -> multi-keyword fan-out
	catalogClient := catalogrepo.NewClient(catalogrepo.Config{
		BaseURL:    cfg.Catalog.BaseURL,
		SearchPath: cfg.Catalog.SearchPath,
		Timeout:    time.Duration(cfg.Catalog.TimeoutSec) * time.Second,
		Logger:     logger,
	})
	cachedCatalog := catalogrepo.NewCached(
		catalogClient, store, time.Duration(cfg.Catalog.CacheTTLSec)*time.Second, logger,
	)
	multiCatalog := catalogrepo.NewMulti(cachedCatalog, logger)

	// Inference gateway
	llm, err := openaiTransport.NewClient(openaiTransport.Config{
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("Failed to create inference client", zap.Error(err))
	}

	// Use case services
	pipelineSvc := pipeline.New(multiCatalog, llm, logger)
	healthSvc := health.New(catalogClient, llm, store)

	// HTTP server
	server := chiTransport.NewServer(pipelineSvc, healthSvc, cfg.Catalog.BaseURL, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(requestIDMiddleware)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.RegisterRoutes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
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

// requestIDMiddleware assigns each request an identifier, honoring one the
// client already sent.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type requestIDKey struct{}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
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

// wideEventMiddleware emits a canonical log line per request and places a
// per-request logger into the context.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLogger := logger.With(zap.String("request_id", requestIDFrom(r.Context())))
			ctx := logpkg.WithContext(r.Context(), reqLogger)

			ww := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
			)
		})
	}
}

// statusRecorder captures the response status for the canonical log line.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush keeps streaming responses working through the wrapper.
func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer for http.ResponseController.
func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
