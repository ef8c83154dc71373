package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/mediaid/platform/pkg/analysis"
	"github.com/mediaid/platform/pkg/common/config"
	"github.com/mediaid/platform/pkg/common/database"
	"github.com/mediaid/platform/pkg/common/kafka"
	"github.com/mediaid/platform/pkg/common/logger"
	"github.com/mediaid/platform/pkg/common/middleware"
	"github.com/mediaid/platform/pkg/observability/metrics"
	"github.com/mediaid/platform/pkg/symptoms"
)

func main() {
	cfg := config.Load()
	logger.Init()

	detector, err := symptoms.LoadDetector(cfg.ConceptsPath, cfg.RulesPath, symptoms.NegationScope(cfg.NegationScope))
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to build symptom detector")
	}
	stats := detector.Statistics()
	logger.Log.WithFields(map[string]interface{}{
		"concepts": stats.TotalConcepts,
		"keywords": stats.IndexedKeywords,
	}).Info("Symptom detector ready")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	opts := analysis.Options{Metrics: m}

	if cfg.CacheEnabled {
		client, err := database.OpenRedis(ctx, cfg)
		if err != nil {
			logger.Log.WithError(err).Warn("result cache disabled")
		} else {
			defer client.Close()
			opts.Cache = analysis.NewRedisCache(client, cfg.CacheTTL)
		}
	}

	var repo *analysis.Repository
	if cfg.HistoryEnabled {
		db, err := database.OpenPostgres(cfg)
		if err != nil {
			logger.Log.WithError(err).Fatal("failed to connect to postgres")
		}
		defer database.ClosePostgres(db)

		repo = analysis.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Fatal("failed to migrate analysis tables")
		}
		opts.History = repo
	}

	var consumer *kafka.Consumer
	if cfg.KafkaEnabled {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaOutputTopic)
		defer producer.Close()
		opts.Publisher = producer

		if cfg.KafkaDLQTopic != "" {
			dlq := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaDLQTopic)
			defer dlq.Close()
			opts.DeadLetter = dlq
		}

		consumer = kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaInputTopic, cfg.KafkaGroupID)
		defer consumer.Close()
	}

	svc := analysis.NewService(detector, analysis.NewValidator(cfg.MaxTextLength), opts)
	handler := analysis.NewHTTPHandler(svc, cfg.MaxRequestBody)

	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging, middleware.CORS)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst), middleware.BodyLimit(cfg.MaxRequestBody))
	handler.Register(api)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Log.WithField("addr", addr).Info("Symptom Service started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("Shutting down Symptom Service...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if consumer != nil {
		g.Go(func() error {
			logger.Log.WithField("topic", cfg.KafkaInputTopic).Info("Consuming symptom-text events")
			if err := consumer.Consume(gctx, svc.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("kafka consumer: %w", err)
			}
			return nil
		})
	}

	if repo != nil && cfg.HistoryRetention > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(12 * time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					n, err := repo.CleanupExpired(gctx, cfg.HistoryRetention)
					if err != nil {
						logger.Log.WithError(err).Warn("history cleanup failed")
						continue
					}
					logger.Log.WithField("deleted", n).Info("history cleanup finished")
				case <-gctx.Done():
					return nil
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		logger.Log.WithError(err).Error("Symptom Service stopped with error")
		return
	}
	logger.Log.Info("Symptom Service stopped")
}
