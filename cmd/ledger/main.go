package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avbelov/mini-ledger/backend/internal/account/store"
	"github.com/avbelov/mini-ledger/backend/internal/common/config"
	"github.com/avbelov/mini-ledger/backend/internal/common/db"
	commonhttp "github.com/avbelov/mini-ledger/backend/internal/common/http"
	"github.com/avbelov/mini-ledger/backend/internal/common/logger"
	srv "github.com/avbelov/mini-ledger/backend/internal/common/server"
	ledgerhttp "github.com/avbelov/mini-ledger/backend/internal/ledger/http"
	"github.com/avbelov/mini-ledger/backend/internal/ledger/service"
	"github.com/avbelov/mini-ledger/backend/internal/persistence"
	"github.com/avbelov/mini-ledger/backend/internal/session"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(os.Getenv("LOG_DIR"), "ledger", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	cfg, err := config.LoadLedgerConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var persistStore persistence.Store
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool := db.NewPool(log, cfg.DatabaseURL)
		defer pool.Close()

		pg, err := persistence.NewPgStore(context.Background(), pool)
		if err != nil {
			log.Fatalf("failed to initialize postgres snapshot store: %v", err)
		}
		persistStore = pg
	default:
		persistStore = persistence.NewJSONFileStore(cfg.SnapshotPath)
	}

	accounts := store.New()
	sessions := session.NewManager()

	snap, err := persistStore.Load(context.Background())
	if err != nil {
		log.Fatalf("failed to load ledger snapshot: %v", err)
	}
	accounts.Restore(snap)
	if snap.LoggedInUser != "" {
		sessions.SetCurrent(snap.LoggedInUser)
	}
	log.Infof("ledger restored: %d accounts (driver: %s)", len(snap.Accounts), cfg.StoreDriver)

	ledger := service.NewLedgerService(service.LedgerServiceDeps{
		Accounts:    accounts,
		Sessions:    sessions,
		Persistence: persistStore,
		Log:         log,
	}, service.LedgerServiceConfig{
		AdminUsername: cfg.AdminUsername,
	})

	handler := ledgerhttp.NewHandler(ledger, log, ledgerhttp.HandlerConfig{
		RequestTimeout: cfg.RequestTimeout,
	})

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.Handle("/metrics", promhttp.Handler())

	rateLimiter := commonhttp.NewStrictRateLimiter()
	baseHandler := commonhttp.BuildBaseHandler(log, mux)

	rateLimitMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if path == "/health" || path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}
			rateLimiter.MiddlewareForPath(path)(next).ServeHTTP(w, r)
		})
	}

	finalHandler := rateLimitMiddleware(baseHandler)

	serverConfig := srv.DefaultServerConfig(cfg.HTTPPort)
	server := srv.NewServer(serverConfig, finalHandler)

	shutdownHooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Infof("ledger service: saving final snapshot")
			snap := accounts.Snapshot()
			if current, ok := sessions.Current(); ok {
				snap.LoggedInUser = current
			}
			return persistStore.Save(ctx, snap)
		},
	}

	srv.StartWithGracefulShutdownAndHooks(server, log, "ledger", shutdownHooks)
}
