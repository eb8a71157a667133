// Package main provides the ERP core server entry point. It hosts the entity
// screens, the BOM write path, the approval queue and the decision event
// stream under a single process.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang/glog"

	"github.com/strideworks/erp-core/internal/db"
	"github.com/strideworks/erp-core/pkg/activity"
	"github.com/strideworks/erp-core/pkg/apply"
	"github.com/strideworks/erp-core/pkg/approval"
	"github.com/strideworks/erp-core/pkg/masterdata"
	"github.com/strideworks/erp-core/pkg/notify"
	"github.com/strideworks/erp-core/pkg/permissions"
	"github.com/strideworks/erp-core/pkg/scopes"
	"github.com/strideworks/erp-core/pkg/screens"
)

func main() {
	var (
		listenAddr    string
		navPath       string
		redisAddr     string
		retentionDays int
		dbCfg         db.Config
	)

	flag.StringVar(&listenAddr, "listen", ":8080", "Address to listen on")
	flag.StringVar(&navPath, "navigation", "", "Path to navigation tree YAML (built-in tree when empty)")
	flag.IntVar(&retentionDays, "activity-retention-days", 365, "Days of activity log to keep (0 disables the sweeper)")
	flag.StringVar(&redisAddr, "redis-addr", envOrDefault("REDIS_ADDR", "127.0.0.1:6379"), "Redis address for approval notices")
	flag.StringVar(&dbCfg.Host, "db-host", envOrDefault("DB_HOST", "127.0.0.1"), "Database host")
	flag.IntVar(&dbCfg.Port, "db-port", 5432, "Database port")
	flag.StringVar(&dbCfg.User, "db-user", envOrDefault("DB_USER", "erp"), "Database user")
	flag.StringVar(&dbCfg.Password, "db-password", os.Getenv("DB_PASSWORD"), "Database password")
	flag.StringVar(&dbCfg.Name, "db-name", envOrDefault("DB_NAME", "erp"), "Database name")
	flag.StringVar(&dbCfg.SSLMode, "db-sslmode", envOrDefault("DB_SSLMODE", "disable"), "Database sslmode")
	flag.Parse()

	_ = flag.Set("logtostderr", "true")

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		glog.Fatal("JWT_SECRET is required")
	}
	csrfSecret := os.Getenv("CSRF_SECRET")
	if csrfSecret == "" {
		csrfSecret = jwtSecret
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	gdb, err := db.Open(dbCfg)
	if err != nil {
		glog.Fatalf("Failed to connect to database: %v", err)
	}
	nav, err := scopes.LoadNavigation(navPath)
	if err != nil {
		glog.Fatalf("Failed to load navigation tree: %v", err)
	}

	users := permissions.NewStore(gdb)
	scopeStore := scopes.NewStore(gdb)
	requests := approval.NewRequestStore(gdb)
	policies := approval.NewPolicyStore(gdb)
	log := activity.NewStore(gdb)

	// The migration lock serializes schema work across replicas. AutoMigrate
	// keeps dev and test schemas aligned with the models; the SQL migrations
	// remain authoritative for production changes.
	err = db.NewMigrationLocker(gdb).WithLock(ctx, func() error {
		if err := db.Migrate(gdb); err != nil {
			return err
		}
		for _, fn := range []func() error{
			users.AutoMigrate,
			scopeStore.AutoMigrate,
			requests.AutoMigrate,
			policies.AutoMigrate,
			log.AutoMigrate,
			func() error { return masterdata.AutoMigrate(gdb) },
		} {
			if err := fn(); err != nil {
				return err
			}
		}
		return scopeStore.Seed(nav)
	})
	if err != nil {
		glog.Fatalf("Failed to migrate schema: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		glog.Fatalf("Failed to connect to redis at %s: %v", redisAddr, err)
	}
	notices := approval.NewNoticeStore(rdb, 72*time.Hour)

	resolver := permissions.NewResolver(nav)
	gateway := approval.NewGateway(resolver, policies, requests, notices)
	applier := apply.NewApplier()
	bus := notify.NewBus()
	moderator := approval.NewModerator(gdb, requests, applier, log, bus)
	issuer := permissions.NewTokenIssuer([]byte(jwtSecret), 12*time.Hour)

	go activity.NewRetentionWorker(log, retentionDays, logger).Run(ctx)

	router := screens.NewRouter(screens.RouterDeps{
		DB:        gdb,
		Users:     users,
		Issuer:    issuer,
		Gateway:   gateway,
		Applier:   applier,
		Requests:  requests,
		Moderator: moderator,
		Notices:   notices,
		Log:       log,
		Bus:       bus,
		CSRF:      screens.NewCSRF([]byte(csrfSecret)),
	})

	logger.Info("erp server ready", "listen", listenAddr, "db", dbCfg.Host, "redis", redisAddr)

	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: router,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			glog.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := rdb.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	logger.Info("erp server stopped")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
