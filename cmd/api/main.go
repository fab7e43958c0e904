package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docuvault/internal/config"
	"docuvault/internal/database"
	"docuvault/internal/database/migration"
	"docuvault/internal/email"
	handlers "docuvault/internal/http/handler"
	"docuvault/internal/http/middleware"
	"docuvault/internal/otel"
	"docuvault/internal/repository/postgres"
	"docuvault/internal/service"
	"docuvault/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.UTC

	ctx := context.Background()

	// Tracing is optional; the exporter is controlled by OTEL_* env vars.
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Printf("tracing disabled: %v", err)
	} else {
		defer shutdownTracing(context.Background())
	}

	// PostgreSQL connection with pooling via database/sql.
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	// Make sure the schema exists before serving traffic.
	ensurer := migration.NewEnsurer(db, loc, cfg.Database.Host)
	if err := ensurer.Ensure(ctx); err != nil {
		log.Fatalf("failed to ensure database schema: %v", err)
	}

	// S3-compatible object storage (Cloudflare R2 / MinIO).
	objStore, err := storage.NewR2(cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Repositories, services.
	userRepo := postgres.NewUserPostgres(db)
	docRepo := postgres.NewDocumentPostgres(db)
	commRepo := postgres.NewCommunityPostgres(db)

	mailer := email.NewSMTPSender(cfg.Email)
	authSvc := service.NewAuthService(userRepo, mailer, cfg.Auth)
	docSvc := service.NewDocumentService(objStore, docRepo)
	commSvc := service.NewCommunityService(commRepo)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.MaxUploadBytes),
	})

	// Global middleware: request IDs first so the logger can pick them up.
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(loc))
	app.Use(otelfiber.Middleware())

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, authSvc, docSvc, commSvc)

	addr := ":" + cfg.Port
	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
