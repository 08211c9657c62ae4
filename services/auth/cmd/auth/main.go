package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/planbookai/platform/pkg/db"
	"github.com/planbookai/platform/pkg/events"
	"github.com/planbookai/platform/pkg/hash"
	"github.com/planbookai/platform/pkg/logging"
	"github.com/planbookai/platform/pkg/revocation"
	"github.com/planbookai/platform/pkg/tokens"
	"github.com/planbookai/platform/services/auth/internal/config"
	"github.com/planbookai/platform/services/auth/internal/httpserver"
	"github.com/planbookai/platform/services/auth/internal/middleware"
	"github.com/planbookai/platform/services/auth/internal/repo"
	"github.com/planbookai/platform/services/auth/internal/seed"
	"github.com/planbookai/platform/services/auth/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New("auth", cfg.LogLevel)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gdb, err := db.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close(gdb)

	users := repo.NewGormRepo(gdb)
	if err := users.Migrate(); err != nil {
		log.Fatalf("migrate users: %v", err)
	}

	store, closeStore, err := revocation.Open(initCtx, cfg.Revocation, gdb)
	if err != nil {
		log.Fatalf("revocation store: %v", err)
	}
	defer closeStore()

	purger := revocation.NewPurger(store, logger)
	if err := purger.Start(cfg.Revocation.PurgeSchedule); err != nil {
		log.Fatalf("revocation purge schedule: %v", err)
	}
	defer purger.Stop()

	codec, err := tokens.NewCodec(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	validator := tokens.NewValidator(codec, store)

	publisher := events.New(cfg.KafkaBrokers, cfg.EventsTopic)
	defer publisher.Close()

	hasher := hash.NewHasher(cfg.BcryptCost)

	if cfg.SeedUsers {
		n, err := seed.DefaultUsers(logging.IntoContext(initCtx, logger), users, hasher, cfg.SeedPassword)
		if err != nil {
			log.Fatalf("seed default users: %v", err)
		}
		logger.Info("seed_completed", "created", n)
	}

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{
			Svc: &service.AuthService{
				Users:       users,
				Hasher:      hasher,
				Issuer:      tokens.NewIssuer(codec),
				Validator:   validator,
				Revocations: store,
				Events:      publisher,
			},
		},
		Auth:   middleware.NewBearerAuth(validator),
		DB:     gdb,
		Logger: logger,
	})

	go func() {
		logger.Info("auth_listening", "addr", cfg.Addr, "revocation_store", cfg.Revocation.Kind)
		if err := e.Start(cfg.Addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
