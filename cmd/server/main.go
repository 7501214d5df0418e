package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/lib/pq"

	"proofguard/internal/cache"
	"proofguard/internal/consent"
	consentmetrics "proofguard/internal/consent/metrics"
	"proofguard/internal/platform/config"
	"proofguard/internal/platform/httpserver"
	"proofguard/internal/platform/logger"
	platformredis "proofguard/internal/platform/redis"
	"proofguard/internal/proof"
	"proofguard/internal/security"
	securitymetrics "proofguard/internal/security/metrics"
	"proofguard/internal/security/sink"
	httptransport "proofguard/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	var (
		store       proof.Store
		viewCounter proof.ViewCounter
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store = proof.NewPostgresStore(db)
		viewCounter = proof.NewPostgresViewCounter(db)
	} else {
		log.Warn("no postgres DSN configured, using in-memory proof store")
		store = proof.NewInMemoryStore()
		viewCounter = proof.NewInMemoryViewCounter()
	}

	var tokenCache cache.Cache
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		tokenCache = cache.NewRedis(redisClient.Client)
	} else {
		log.Warn("no redis configured, access token revocation is process-local")
		tokenCache = cache.NewInMemory()
	}

	var eventSink sink.Sink = sink.NewSlogSink(log)
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := sink.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		eventSink = kafkaSink
	}

	consentSvc := consent.NewService(store, consent.NewLogMailer(log), log, consentmetrics.New(), consent.Config{
		RetentionYears:    cfg.ConsentRetentionYears,
		WithdrawalBaseURL: cfg.WithdrawalBaseURL,
	})

	securitySvc, err := security.NewService(viewCounter, tokenCache, eventSink, log, securitymetrics.New(), security.Config{
		MasterSecret: cfg.MasterSecret,
	})
	if err != nil {
		log.Error("init security service", "error", err)
		os.Exit(1)
	}

	handler := httptransport.NewHandler(store, consentSvc, securitySvc, log)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	log.Info("starting proofguard", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
