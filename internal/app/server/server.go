package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"privacydesk/internal/domain/export"
	"privacydesk/internal/domain/request"
	"privacydesk/internal/platform/config"
	"privacydesk/internal/platform/metrics"
	"privacydesk/internal/platform/seed"
	"privacydesk/internal/platform/storage"
	consenthandler "privacydesk/internal/transport/http/handlers/consents"
	dashboardhandler "privacydesk/internal/transport/http/handlers/dashboard"
	requesthandler "privacydesk/internal/transport/http/handlers/requests"
	settingshandler "privacydesk/internal/transport/http/handlers/settings"
	"privacydesk/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	Store  *request.Store
	Router http.Handler
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx := context.Background()
	db, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("storage open failed: %v", err)
	}
	defer db.Close()

	opts := []request.Option{}
	if cfg.RunSeed {
		opts = append(opts, request.WithSeeder(seed.NewLoader()))
	}
	store := request.NewStore(db, opts...)
	if err := store.Load(ctx); err != nil {
		log.Fatalf("store load failed: %v", err)
	}

	collector := metrics.New()
	exports := export.NewService(cfg.ExportDir, []byte(cfg.ExportTokenSecret), cfg.ExportTokenTTL)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if _, err := db.GetAll(ctx, storage.CollectionSettings); err != nil {
			http.Error(w, "storage not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		requestHandler := requesthandler.NewHandler(store, collector, exports)
		requestHandler.RegisterRoutes(r)

		settingsHandler := settingshandler.NewHandler(store)
		settingsHandler.RegisterRoutes(r)

		consentHandler := consenthandler.NewHandler(store)
		consentHandler.RegisterRoutes(r)

		dashboardHandler := dashboardhandler.NewHandler(store, collector)
		dashboardHandler.RegisterRoutes(r)
	})

	log.Printf("privacydesk server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// openStorage picks the Postgres driver when DATABASE_URL is set and
// falls back to the embedded SQLite file otherwise.
func openStorage(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.DatabaseURL != "" {
		return storage.OpenPostgres(ctx, cfg.DatabaseURL)
	}
	return storage.OpenSQLite(ctx, cfg.DataPath)
}
