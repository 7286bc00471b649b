// main wires the stores, services, handlers and server lifecycle. Business
// logic lives in the internal service packages; this file only chooses
// implementations from config and connects them.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	adherenceservice "medtrack/internal/adherence/service"
	adherencestore "medtrack/internal/adherence/store"
	dashboardhandler "medtrack/internal/dashboard/handler"
	dashboardservice "medtrack/internal/dashboard/service"
	identityhandler "medtrack/internal/identity/handler"
	identityservice "medtrack/internal/identity/service"
	identitystore "medtrack/internal/identity/store"
	medicationhandler "medtrack/internal/medication/handler"
	medicationservice "medtrack/internal/medication/service"
	medicationstore "medtrack/internal/medication/store"
	pairingservice "medtrack/internal/pairing/service"
	pairingstore "medtrack/internal/pairing/store"
	"medtrack/internal/platform/config"
	"medtrack/internal/platform/httpserver"
	"medtrack/internal/platform/logger"
	"medtrack/internal/platform/metrics"
	"medtrack/internal/platform/postgres"
	platformredis "medtrack/internal/platform/redis"
	sessionservice "medtrack/internal/session/service"
	sessionstore "medtrack/internal/session/store"
	"medtrack/internal/token"
	httptransport "medtrack/internal/transport/http"
	audit "medtrack/pkg/platform/audit"
	auditpublisher "medtrack/pkg/platform/audit/publisher"
	auditkafka "medtrack/pkg/platform/audit/publishers/kafka"
	auditmemory "medtrack/pkg/platform/audit/store/memory"
	auditpostgres "medtrack/pkg/platform/audit/store/postgres"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	health := map[string]httptransport.HealthChecker{}

	// Stores: Postgres when configured, memory otherwise.
	var (
		db          *sql.DB
		users       identitystore.Store
		assignments pairingstore.Store
		medications medicationstore.Store
		logs        adherenceservice.Store
		pairingTx   pairingservice.StoreTx
		auditStore  audit.Store
	)
	if cfg.Postgres.URL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			log.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		health["postgres"] = db.PingContext

		users = identitystore.NewPostgres(db)
		assignments = pairingstore.NewPostgres(db)
		medications = medicationstore.NewPostgres(db)
		logs = adherencestore.NewPostgres(db)
		pairingTx = pairingservice.NewSQLTx(db)
		auditStore = auditpostgres.New(db)
	} else {
		users = identitystore.NewInMemory()
		assignments = pairingstore.NewInMemory()
		medications = medicationstore.NewInMemory()
		logs = adherencestore.NewInMemory()
		pairingTx = pairingservice.NewInMemoryTx()
		auditStore = auditmemory.NewInMemoryStore()
	}

	// Sessions: Redis when configured, memory otherwise.
	var sessions sessionservice.Store = sessionstore.NewInMemory()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		sessions = sessionstore.NewRedis(redisClient.Client)
		health["redis"] = redisClient.Health
	}

	// Audit: async publisher over the store, with an optional Kafka sink.
	publisherOpts := []auditpublisher.Option{
		auditpublisher.WithAsyncBuffer(256),
		auditpublisher.WithLogger(log),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := auditkafka.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("kafka unavailable", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		publisherOpts = append(publisherOpts, auditpublisher.WithSink(kafkaSink))
	}
	auditor := auditpublisher.NewPublisher(auditStore, publisherOpts...)
	defer auditor.Close()

	// Services.
	pairing := pairingservice.NewService(users, assignments, pairingTx, log,
		pairingservice.WithAudit(auditor),
		pairingservice.WithMetrics(m),
	)
	identity := identityservice.NewService(users, pairing, assignments, log,
		identityservice.WithAudit(auditor),
		identityservice.WithMetrics(m),
	)
	adherence := adherenceservice.NewService(logs, log,
		adherenceservice.WithWindowDays(cfg.BackfillWindow),
		adherenceservice.WithAudit(auditor),
		adherenceservice.WithMetrics(m),
	)
	medication := medicationservice.NewService(medications, log,
		medicationservice.WithAudit(auditor),
		medicationservice.WithMetrics(m),
	)
	session := sessionservice.NewService(
		sessions,
		token.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience),
		log,
		sessionservice.WithTTL(cfg.SessionTTL),
	)
	dashboard := dashboardservice.NewService(users, assignments, adherence, medication, log,
		dashboardservice.WithMetrics(m),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Identity:   identityhandler.New(identity, session, log),
		Medication: medicationhandler.New(medication, adherence, log),
		Dashboard:  dashboardhandler.New(dashboard, log),
		Sessions:   session,
		Logger:     log,
		Metrics:    m,
		Registry:   registry,
		Health:     health,
	})

	srv := httpserver.New(cfg.Addr, router)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
