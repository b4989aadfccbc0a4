// placement-service
//
// Lifecycle of job placements between trainees and companies:
//   - create application (eligibility gated: seats, availability, cooldown)
//   - select / reject / hire / note — state machine transitions
//   - daily expiration sweep over the business-day response window
//   - deadline views with opportunistic expiry on the read path
//
// Publishes EVENT_APPLICATION_* and EVENT_DEADLINE_REMINDER to Redis for the
// notification collaborator.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sgva/placement-service/internal/config"
	"sgva/placement-service/internal/db"
	"sgva/placement-service/internal/placement"
	"sgva/placement-service/internal/scheduler"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[placement-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[placement-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[placement-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[placement-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[placement-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[placement-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[placement-service] Redis connected ✓")

	// ── Core service ─────────────────────────────────────────────────────────
	svc := placement.NewService(placement.NewPGStore(pool), rdb, cfg.ResponseWindowDays)

	// ── Scheduler ────────────────────────────────────────────────────────────
	sched := scheduler.New(svc, cfg.SweepCron, cfg.ReminderCron)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[placement-service] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := placement.NewHandler(svc)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[placement-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[placement-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[placement-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[placement-service] Shutdown error: %v", err)
	}
	log.Println("[placement-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "placement-service",
		"version": version,
	})
}
