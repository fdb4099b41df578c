package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/inkwell/backend/internal/auth"
	"github.com/anonto42/inkwell/backend/internal/logging"
	"github.com/anonto42/inkwell/backend/internal/metrics"
	"github.com/anonto42/inkwell/backend/internal/notifications"
	"github.com/anonto42/inkwell/backend/internal/realtime"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/internal/router"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/anonto42/inkwell/backend/internal/storage"
	"github.com/anonto42/inkwell/backend/pkg/config"
	"github.com/anonto42/inkwell/backend/pkg/firebase"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.LogFile,
		LogToStdout:   cfg.LogToStdout,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
	})

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			log.Fatal("JWT_SECRET must be set in production")
		}
		log.Warn("JWT_SECRET not set, using an insecure development secret")
		cfg.JWTSecret = "inkwell-dev-secret"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("inkwell", "server", promRegistry)

	store, err := storage.New(ctx, storage.Options{
		Backend:        cfg.StorageBackend,
		Bucket:         cfg.StorageBucket,
		PublicURL:      cfg.StoragePublicURL,
		S3Region:       cfg.S3Region,
		S3Endpoint:     cfg.S3Endpoint,
		MinioEndpoint:  cfg.MinioEndpoint,
		MinioAccessKey: cfg.MinioAccessKey,
		MinioSecretKey: cfg.MinioSecretKey,
		MinioUseSSL:    cfg.MinioUseSSL,
	}, db.MongoDatabase(cfg.MongoDatabase), metricsManager)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	publisher, err := realtime.New(ctx, realtime.Options{
		Backend:       cfg.RealtimeBackend,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		NATSURL:       cfg.NATSURL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize realtime publisher: %v", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Errorf("Error closing realtime publisher: %v", err)
		}
	}()

	repos := repositories.NewRepositories(db.Postgres)
	engine := notifications.NewEngine(repos.Notifications, publisher, metricsManager, cfg.DispatchTimeout)
	svc := services.New(services.Deps{
		UnitOfWork: repositories.NewUnitOfWork(db.Postgres),
		Repos:      repos,
		Storage:    store,
		Engine:     engine,
	})

	// Identity: local JWTs always, Firebase ID tokens when configured
	jwtVerifier := auth.NewJWTVerifier(cfg.JWTSecret)
	verifier := auth.Chain{jwtVerifier}
	var firebaseVerifier auth.Verifier
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	switch {
	case errors.Is(err, firebase.ErrNotConfigured):
		log.Info("Firebase login disabled")
	case err != nil:
		log.Fatalf("Failed to initialize Firebase: %v", err)
	default:
		firebaseVerifier = auth.NewFirebaseVerifier(firebaseApp.AuthClient, repos.Users)
		verifier = append(verifier, firebaseVerifier)
	}

	e, err := router.New(router.Dependencies{
		DB:       db.Postgres,
		Services: svc,
		Verifier: verifier,
		Issuer:   jwtVerifier,
		Firebase: firebaseVerifier,
		Storage:  store,
		Metrics:  metricsManager,
	})
	if err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{Registry: promRegistry}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Infof("metrics listening on %s", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server: %v", err)
		}
	}()

	// Start server
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http shutdown: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("metrics shutdown: %v", err)
	}
	engine.Flush()
}
