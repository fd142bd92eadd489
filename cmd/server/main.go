package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"f3-catalog/backend/internal/audit"
	auditrepo "f3-catalog/backend/internal/audit/repository"
	"f3-catalog/backend/internal/config"
	"f3-catalog/backend/internal/db"
	eventrepo "f3-catalog/backend/internal/event/repository"
	eventservice "f3-catalog/backend/internal/event/service"
	"f3-catalog/backend/internal/org/catalog"
	orgrepo "f3-catalog/backend/internal/org/repository"
	orgservice "f3-catalog/backend/internal/org/service"
	"f3-catalog/backend/internal/platform/logger"
	"f3-catalog/backend/internal/policy/engine"
	"f3-catalog/backend/internal/security"
	"f3-catalog/backend/internal/server"
	"f3-catalog/backend/internal/telemetry"
	"f3-catalog/backend/internal/telemetry/otel"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LoggerMode())
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	sqlDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database", "error", err)
	}
	defer sqlDB.Close()

	providers, err := otel.NewProviders(ctx, cfg.OTelEndpoint, cfg.OTelServiceName, cfg.OTelInsecure)
	if err != nil {
		log.Fatal("otel", "error", err)
	}
	providers.SetGlobal()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(sctx); err != nil {
			log.Warn("otel shutdown", "error", err)
		}
	}()

	globalCatalog := catalog.NewProvider(orgrepo.NewCatalogSource(sqlDB), cfg.CatalogTTL(), catalog.WithLogger(log))
	orgs := orgrepo.NewPostgresRepository(sqlDB, globalCatalog)
	events := eventrepo.NewPostgresRepository(sqlDB)
	audits := auditrepo.NewPostgresRepository(sqlDB)

	changes := telemetry.NewChangeEmitter(otel.NewEventEmitter(providers.LoggerProvider), log)
	deps := server.Deps{
		OrgCommands:   orgservice.NewCommandHandler(orgs, log, orgservice.WithEmitter(changes)),
		EventCommands: eventservice.NewCommandHandler(events, log),
		OrgRepo:       orgs,
		AuditRepo:     audits,
		HealthPinger:  sqlDB,
		Logger:        log,
	}
	chain := server.Chain{Audit: audit.NewLogger(audits, log), Logger: log}

	if cfg.AuthEnabled() {
		signer, pub, err := security.LoadKeys(cfg.JWTPrivateKey, cfg.JWTPublicKey)
		if err != nil {
			log.Fatal("jwt keys", "error", err)
		}
		chain.Tokens = security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())

		authz, err := engine.NewAuthorizer(ctx, cfg.AuthzPolicyFile)
		if err != nil {
			log.Fatal("authorization policy", "error", err)
		}
		deps.Policy = authz
		deps.HealthPolicyChecker = authz
	} else {
		log.Warn("JWT keys not configured: every caller is anonymous and admin checks are disabled")
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal("listen", "error", err)
	}
	defer lis.Close()

	s := grpc.NewServer(server.ServerOptions(chain)...)
	server.RegisterServices(s, deps)

	go func() {
		log.Info("gRPC server listening", "addr", cfg.GRPCAddr, "auth", cfg.AuthEnabled())
		if err := s.Serve(lis); err != nil {
			log.Fatal("serve", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down gRPC server")
	s.GracefulStop()
	if !telemetry.Drain(telemetry.ShutdownDrainDuration) {
		log.Warn("change record emits still in flight at shutdown")
	}
	log.Info("gRPC server stopped")
}
