package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/symptodex/internal/catalog"
	"github.com/kailas-cloud/symptodex/internal/config"
	dbRedis "github.com/kailas-cloud/symptodex/internal/db/redis"
	logpkg "github.com/kailas-cloud/symptodex/internal/logger"
	"github.com/kailas-cloud/symptodex/internal/metrics"
	"github.com/kailas-cloud/symptodex/internal/repository/diagcache"
	chiTransport "github.com/kailas-cloud/symptodex/internal/transport/chi"
	openaiExt "github.com/kailas-cloud/symptodex/internal/transport/openai"
	diagnosisuc "github.com/kailas-cloud/symptodex/internal/usecase/diagnosis"
	healthuc "github.com/kailas-cloud/symptodex/internal/usecase/health"
	"github.com/kailas-cloud/symptodex/internal/version"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

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

	logger.Info("Starting symptodex API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("extractor_enabled", cfg.Extractor.Enabled()),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterDiagnosisMetrics()

	var source diagnosisuc.CatalogSource = catalog.EmbeddedSource{}
	if cfg.Engine.CatalogPath != "" {
		source = catalog.FileSource{Path: cfg.Engine.CatalogPath}
	}

	diagSvc := diagnosisuc.New(source, diagnosisuc.Options{
		ConfidenceFloor: *cfg.Engine.ConfidenceFloor,
		TopK:            cfg.Engine.TopK,
		MaxFeatures:     cfg.Engine.MaxFeatures,
	}, logger).WithPagination(cfg.Engine.DefaultPageSize, cfg.Engine.MaxPageSize)

	ctx := context.Background()
	info, err := diagSvc.Reload(ctx)
	if err != nil {
		logger.Fatal("Failed to build diagnosis model", zap.String("source", source.Name()), zap.Error(err))
	}
	logger.Info("Diagnosis model ready",
		zap.String("version", info.Version),
		zap.String("source", info.Source),
		zap.Int("conditions", info.Conditions),
		zap.Int("vocabulary", info.VocabularySize),
	)

	healthSvc := healthuc.New(diagSvc)

	if cfg.Cache.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:       cfg.Cache.Addrs,
			Username:    cfg.Cache.Username,
			Password:    cfg.Cache.Password,
			DB:          cfg.Cache.DB,
			DialTimeout: time.Duration(cfg.Cache.DialTimeoutSec) * time.Second,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))

		diagSvc.WithScorer(diagcache.New(
			diagnosisuc.EngineScorer{},
			store,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.DiagnosisCacheTotal,
			logger,
		))
		healthSvc.WithCache(store)
	}

	if cfg.Extractor.Enabled() {
		metrics.RegisterExtractorMetrics()
		extractor := openaiExt.NewExtractor(&openaiExt.Config{
			APIKey:           cfg.Extractor.APIKey,
			BaseURL:          cfg.Extractor.BaseURL,
			Model:            cfg.Extractor.Model,
			Timeout:          time.Duration(cfg.Extractor.TimeoutSec) * time.Second,
			FailureThreshold: uint32(cfg.Extractor.FailureThreshold), //nolint:gosec // validated positive
			OpenTimeout:      time.Duration(cfg.Extractor.OpenTimeoutSec) * time.Second,
			Logger:           logger,
		})
		diagSvc.WithExtractor(extractor)
		healthSvc.WithExtractor(extractor)
		logger.Info("Symptom extractor enabled", zap.String("model", cfg.Extractor.Model))
	}

	server := chiTransport.NewServer(diagSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// One line per request. Request bodies carry health data and are never logged.
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
