package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/iotmonitor/api/internal/app/system"
	"github.com/iotmonitor/api/internal/app/todo"
	"github.com/iotmonitor/api/internal/httpmiddleware"
	"github.com/iotmonitor/api/internal/platform/dbpool"
	"github.com/iotmonitor/api/internal/platform/env"
	"github.com/iotmonitor/api/internal/platform/natsutil"
)

func main() {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env file is fine; the environment itself still applies.
	_ = godotenv.Load()

	addr := ":" + env.String("PORT", env.DefaultPort)
	pgURL := env.String("DATABASE_URL", env.DefaultDatabaseURL)
	allowedOrigin := env.String("ALLOWED_ORIGIN", "*")
	natsURL := env.String("NATS_URL", "")
	shutdownTimeout := env.Duration("SHUTDOWN_TIMEOUT", 10*time.Second)

	pool, err := dbpool.New(runCtx, pgURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	repo := todo.NewPostgresRepository(pool)
	if err := waitForSchema(runCtx, repo, 30*time.Second); err != nil {
		log.Fatal(err)
	}

	service := todo.NewService(repo)
	if natsURL != "" {
		client, err := natsutil.ConnectWithRetry(natsURL, 20*time.Second)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()
		service.Publish = client.Publish
		log.Printf("change feed enabled on %s", natsURL)
	}

	todoHandler := todo.NewHandler(service)
	systemHandler := system.NewHandler(func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 1500*time.Millisecond)
		defer cancel()
		return pool.Ping(pingCtx)
	})

	r := chi.NewRouter()
	r.Use(httpmiddleware.RequestID)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Metrics)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(allowedOrigin))
	r.Options("/*", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	todoHandler.Register(r)
	systemHandler.Register(r)
	r.NotFound(systemHandler.NotFound)
	r.MethodNotAllowed(systemHandler.NotFound)

	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("IoT Monitor API listening on %s", addr)
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Fatal(err)
	case <-runCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

// waitForSchema retries EnsureSchema until the database accepts it or the
// timeout passes, so the server can start before Postgres finishes booting.
func waitForSchema(ctx context.Context, repo *todo.PostgresRepository, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		attemptCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		lastErr = repo.EnsureSchema(attemptCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
		log.Printf("waiting for todos schema readiness: %v", lastErr)
		time.Sleep(500 * time.Millisecond)
	}
	return lastErr
}
