package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	cfg "github.com/ma-ji/miscite-sub001/internal/config"
	"github.com/ma-ji/miscite-sub001/internal/httpapi"
	_ "github.com/ma-ji/miscite-sub001/internal/metrics" // Import for side effects
	"github.com/ma-ji/miscite-sub001/internal/recommend"
)

func main() {
	config, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(config.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	scorePolicy := recommend.DefaultScorePolicy()
	if path := config.Recommend.ScorePolicyFile; path != "" {
		scorePolicy, err = recommend.LoadScorePolicy(path)
		if err != nil {
			logger.Warn("Falling back to default score policy", zap.String("path", path), zap.Error(err))
		} else {
			logger.Info("Loaded score policy", zap.String("path", path))
		}
	}

	builder := recommend.NewBuilder(recommend.BuilderConfig{
		Options: recommend.Options{
			MaxGlobalActions:     config.Recommend.MaxGlobalActions,
			MaxActionsPerSection: config.Recommend.MaxActionsPerSection,
		},
		Score: scorePolicy,
	}, logger)

	var limiter *rate.Limiter
	if config.API.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.API.RateLimitRPS), config.API.RateLimitBurst)
	}

	mux := http.NewServeMux()
	httpapi.NewRecommendHandler(builder, logger, limiter, config.Service.MaxBodyBytes).RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(config.Service.Port),
		Handler:      mux,
		ReadTimeout:  config.Service.ReadTimeout,
		WriteTimeout: config.Service.WriteTimeout,
	}

	go func() {
		logger.Info("Recommendation service listening", zap.Int("port", config.Service.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down recommendation service")

	ctx, cancel := context.WithTimeout(context.Background(), config.Service.GracefulTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(lc cfg.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lc.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if lc.Level != "" {
		level, err := zap.ParseAtomicLevel(lc.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = level
	}
	return zc.Build()
}
