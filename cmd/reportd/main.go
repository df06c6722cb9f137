package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/classlens/growthreport/internal/api/http"
	"github.com/classlens/growthreport/internal/config"
	"github.com/classlens/growthreport/internal/norms"
	"github.com/classlens/growthreport/internal/report"
	"github.com/classlens/growthreport/internal/slicestore"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := slicestore.Open(ctx, slicestore.Driver(cfg.StoreDriver), cfg.StoreDSN)
	if err != nil {
		log.Fatalf("slice store open failed: %v", err)
	}

	tbl, err := norms.Load()
	if cfg.NormsPath != "" {
		tbl, err = norms.LoadFile(cfg.NormsPath)
	}
	if err != nil {
		log.Fatalf("norms tables: %v", err)
	}

	svc := report.NewService(store, tbl, cfg.CacheTTL)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/index", api.IndexHandler(svc))
	r.Get("/report", api.ReportHandler(svc))
	r.Get("/report/chart", api.ChartHandler(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (store=%s)", cfg.HTTPAddr, cfg.StoreDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
