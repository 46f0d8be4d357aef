package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dieKrake/life-leveler-sub000/internal/auth"
	"github.com/dieKrake/life-leveler-sub000/internal/config"
	"github.com/dieKrake/life-leveler-sub000/internal/db"
	"github.com/dieKrake/life-leveler-sub000/internal/engine"
	api "github.com/dieKrake/life-leveler-sub000/internal/http"
	"github.com/dieKrake/life-leveler-sub000/internal/repo"
	"github.com/dieKrake/life-leveler-sub000/internal/service"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	authManager := auth.NewManager(cfg.JWTSecret)
	repository := repo.New(pool)
	svc := service.New(repository, authManager)
	eng := engine.New(repository)

	var origins []string
	if cfg.CORSOrigin != "" {
		origins = strings.Split(cfg.CORSOrigin, ",")
	}
	handler := &api.API{
		Repo:         repository,
		Service:      svc,
		Engine:       eng,
		Auth:         authManager,
		Origins:      origins,
		AdminUserIDs: cfg.AdminUserIDs,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}
